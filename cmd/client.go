package cmd

import (
	"github.com/jacobfgrant/chonky/internal/cachestore"
	"github.com/jacobfgrant/chonky/internal/creds"
	"github.com/jacobfgrant/chonky/internal/manifest"
	"github.com/jacobfgrant/chonky/internal/reconciler"
	"github.com/jacobfgrant/chonky/internal/remote"
)

// openReconciler wires a reconciler.Client from scratch: load the
// manifest at configPath, open the local cache, resolve credentials,
// and build the configured Remote backend.
func openReconciler(configPath string) (*reconciler.Client, error) {
	peek, err := manifest.Load(configPath)
	if err != nil {
		return nil, err
	}

	cache, err := cachestore.Open(cachestore.DefaultDir())
	if err != nil {
		return nil, err
	}

	credsFile, err := creds.Load(creds.DefaultPath())
	if err != nil {
		return nil, err
	}

	backend, err := remote.Make(remote.ManifestConfig{
		Type:     peek.Type(),
		Bucket:   peek.Bucket(),
		Endpoint: peek.Endpoint(),
		Root:     peek.Root(),
		Region:   peek.Region(),
	}, credsFile, cache)
	if err != nil {
		return nil, err
	}

	client, err := reconciler.Open(configPath, cache, backend)
	if err != nil {
		return nil, err
	}
	client.Verbose = verbose
	client.WorkersOverride = credsFile.ResolveTuning(peek.Bucket()).Workers

	return client, nil
}

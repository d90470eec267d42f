// Package reconciler implements chonky's four core operations —
// status, sync, submit, revert — against a shared manifest, a
// per-client local manifest, and the workspace on disk (spec.md §4.7).
// It is a direct translation of original_source/chonky/client.py's
// Client into the package/struct idiom the teacher repo uses for its
// own sync engine (internal/sync/sync.go).
package reconciler

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"syscall"

	"github.com/jacobfgrant/chonky/internal/cachestore"
	"github.com/jacobfgrant/chonky/internal/errs"
	"github.com/jacobfgrant/chonky/internal/hash"
	"github.com/jacobfgrant/chonky/internal/manifest"
	"github.com/jacobfgrant/chonky/internal/remote"
	"github.com/jacobfgrant/chonky/internal/walker"
	"github.com/jacobfgrant/chonky/internal/workerpool"
)

const localManifestName = ".HEAD"
const lockName = "chonky.lock"

// Client holds the state a single chonky invocation needs: the shared
// manifest (as last loaded from config path), this client's local
// manifest, the workspace it shadows, and a cache/remote pair to move
// bytes through.
type Client struct {
	configPath    string
	workspacePath string
	localPath     string

	remoteManifest *manifest.Manifest
	localManifest  *manifest.Manifest

	cache   *cachestore.Store
	backend remote.Remote

	Verbose bool

	// DryRun, when set, makes Sync/Submit compute and return their
	// report without touching the workspace, cache, remote, or either
	// manifest, and without taking the workspace lock. Revert does not
	// consult it.
	DryRun bool

	// WorkersOverride, when > 0, caps concurrent workspace-hashing
	// workers for this invocation; 0 falls back to workerpool's
	// default. The CLI sets this from the credentials file's
	// per-bucket "workers" tuning, then lets an explicit --workers
	// flag override it. Transfer concurrency is set on the backend by
	// remote.Make from the credentials file and is not changed by
	// this field.
	WorkersOverride int
}

// Open loads the shared manifest at configPath, resolves the
// workspace it declares, and loads (or creates) the local manifest
// shadowing it. cache and backend are provided by the caller so tests
// can substitute a remote.Mock.
func Open(configPath string, cache *cachestore.Store, backend remote.Remote) (*Client, error) {
	absConfig, err := filepath.Abs(configPath)
	if err != nil {
		return nil, errs.IO(fmt.Sprintf("resolving %s", configPath), err)
	}

	remoteManifest, err := manifest.Load(absConfig)
	if err != nil {
		return nil, err
	}

	workspace := remoteManifest.Workspace()
	if workspace == "" {
		return nil, errs.Config(fmt.Sprintf("manifest %s has no [config] workspace", absConfig), nil)
	}
	workspacePath := filepath.Join(filepath.Dir(absConfig), workspace)

	if err := os.MkdirAll(workspacePath, 0o755); err != nil {
		return nil, errs.IO(fmt.Sprintf("creating workspace %s", workspacePath), err)
	}

	localPath := filepath.Join(workspacePath, localManifestName)
	var localManifest *manifest.Manifest
	if _, statErr := os.Stat(localPath); statErr == nil {
		localManifest, err = manifest.Load(localPath)
		if err != nil {
			return nil, err
		}
	} else {
		localManifest = manifest.New()
		if err := localManifest.Save(localPath); err != nil {
			return nil, err
		}
	}

	return &Client{
		configPath:     absConfig,
		workspacePath:  workspacePath,
		localPath:      localPath,
		remoteManifest: remoteManifest,
		localManifest:  localManifest,
		cache:          cache,
		backend:        backend,
	}, nil
}

// Workspace returns the resolved workspace path.
func (c *Client) Workspace() string {
	return c.workspacePath
}

// buildWorking hashes every non-ignored file in the workspace,
// producing a fresh manifest reflecting the working tree's current
// state (spec.md §4.7 "working manifest"). Hashing is parallelized
// over a bounded pool; any single file's hash failure aborts the scan.
func (c *Client) buildWorking(ctx context.Context) (*manifest.Manifest, error) {
	rel, err := walker.Walk(c.workspacePath, c.remoteManifest.IgnorePatterns())
	if err != nil {
		return nil, err
	}

	working := manifest.New()
	var mu sync.Mutex

	err = workerpool.Run(ctx, c.WorkersOverride, rel, func(_ context.Context, path string) error {
		sum, err := hash.File(filepath.Join(c.workspacePath, filepath.FromSlash(path)))
		if err != nil {
			return err
		}
		mu.Lock()
		working.HeadSet(path, sum)
		mu.Unlock()
		return nil
	})
	if err != nil {
		return nil, err
	}

	return working, nil
}

// lock acquires an exclusive advisory lock scoped to the workspace, so
// sync/submit/revert serialize across concurrent local invocations
// (status is read-only and doesn't need it). Grounded on the teacher's
// acquireLock/releaseLock in internal/sync/sync.go.
func (c *Client) lock() (*os.File, error) {
	path := filepath.Join(c.workspacePath, lockName)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, errs.IO(fmt.Sprintf("opening lock file %s", path), err)
	}
	if err := syscall.Flock(int(f.Fd()), syscall.LOCK_EX|syscall.LOCK_NB); err != nil {
		f.Close()
		return nil, errs.IO("another chonky instance is already running in this workspace", err)
	}
	return f, nil
}

func unlock(f *os.File) {
	syscall.Flock(int(f.Fd()), syscall.LOCK_UN)
	f.Close()
}

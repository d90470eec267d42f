package remote

import (
	"fmt"

	"github.com/jacobfgrant/chonky/internal/cachestore"
	"github.com/jacobfgrant/chonky/internal/creds"
	"github.com/jacobfgrant/chonky/internal/errs"
	"github.com/jacobfgrant/chonky/internal/ratelimit"
)

// ManifestConfig is the subset of manifest.Manifest's [config] section
// a Remote needs to construct itself. Defined here, rather than
// accepting *manifest.Manifest directly, so this package stays free of
// the manifest codec. Per-machine tuning (bandwidth limit, worker
// count) deliberately isn't here: it comes from the credentials file,
// never the shared manifest (spec.md §3, §9 Open Questions).
type ManifestConfig struct {
	Type     string
	Bucket   string
	Endpoint string
	Root     string
	Region   string
}

// Make builds the configured Remote backend. It is the single place
// that switches on config.type, matching spec.md §9's capability
// construction (no backend inheritance hierarchy).
func Make(cfg ManifestConfig, credsFile *creds.File, cache *cachestore.Store) (Remote, error) {
	switch cfg.Type {
	case "s3", "":
		pair, err := credsFile.Resolve(cfg.Bucket)
		if err != nil {
			return nil, err
		}
		s3r := NewS3Remote(Config{
			Bucket:      cfg.Bucket,
			EndpointURL: cfg.Endpoint,
			Region:      cfg.Region,
			KeyPrefix:   cfg.Root,
		}, pair, cache)
		tuning := credsFile.ResolveTuning(cfg.Bucket)
		if tuning.BandwidthLimit > 0 {
			s3r.SetLimiter(ratelimit.NewLimiter(tuning.BandwidthLimit))
		}
		s3r.SetWorkers(tuning.Workers)
		return s3r, nil
	default:
		return nil, errs.Config(fmt.Sprintf("unsupported remote type %q", cfg.Type), nil)
	}
}

// Package creds loads the local, unversioned credentials file that
// supplies S3 access keys for buckets named in a shared manifest. The
// manifest itself is synced and must never carry secrets, so
// credentials live in a separate file scoped to this machine
// (spec.md §4.6, §9 Open Questions).
package creds

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/jacobfgrant/chonky/internal/errs"
)

// Pair is a resolved access key ID / secret access key.
type Pair struct {
	KeyID     string
	SecretKey string
}

// Tuning is the per-machine knobs a client may set alongside its
// credentials: a worker-count override and a transfer bandwidth cap.
// Neither belongs in the shared manifest, since the manifest is meant
// to be checked into source control and shared verbatim across
// machines with different link speeds and core counts (spec.md §3,
// §9 Open Questions).
type Tuning struct {
	Workers        int   // 0 = no override, caller falls back to its own default
	BandwidthLimit int64 // bytes/sec, 0 = unlimited
}

// entry mirrors one [default] or [backends."bucket"] table.
type entry struct {
	KeyID          string `toml:"key_id"`
	SecretKey      string `toml:"secret_key"`
	BandwidthLimit string `toml:"bandwidth_limit"`
	Workers        int    `toml:"workers"`
}

// File is the parsed contents of the credentials file.
type File struct {
	Default  entry            `toml:"default"`
	Backends map[string]entry `toml:"backends"`
}

// DefaultPath returns the platform-appropriate credentials file path,
// ~/.config/chonky/credentials.toml on Linux and its equivalents
// elsewhere (mirroring the teacher's DefaultConfigPath).
func DefaultPath() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "chonky", "credentials.toml")
	}
	return filepath.Join(os.Getenv("HOME"), ".config", "chonky", "credentials.toml")
}

// Load reads and parses the credentials file at path. A missing file
// is not an error: Resolve falls back to environment variables.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &File{}, nil
	}
	if err != nil {
		return nil, errs.IO(fmt.Sprintf("reading credentials file %s", path), err)
	}

	var f File
	if err := toml.Unmarshal(data, &f); err != nil {
		return nil, errs.Parse(fmt.Sprintf("parsing credentials file %s", path), err)
	}
	return &f, nil
}

// Resolve returns the access key pair for bucket, trying, in order:
// the bucket's own [backends."bucket"] table, the [default] table,
// and the CHONKY_KEY_ID / CHONKY_SECRET_KEY environment variables.
func (f *File) Resolve(bucket string) (Pair, error) {
	if e, ok := f.Backends[bucket]; ok && e.KeyID != "" && e.SecretKey != "" {
		return Pair{KeyID: e.KeyID, SecretKey: e.SecretKey}, nil
	}
	if f.Default.KeyID != "" && f.Default.SecretKey != "" {
		return Pair{KeyID: f.Default.KeyID, SecretKey: f.Default.SecretKey}, nil
	}
	if id, key := os.Getenv("CHONKY_KEY_ID"), os.Getenv("CHONKY_SECRET_KEY"); id != "" && key != "" {
		return Pair{KeyID: id, SecretKey: key}, nil
	}
	return Pair{}, errs.Config(fmt.Sprintf("no credentials found for bucket %q (checked credentials file and CHONKY_KEY_ID/CHONKY_SECRET_KEY)", bucket), nil)
}

// ResolveTuning returns the worker-count and bandwidth-limit knobs for
// bucket, trying the bucket's own [backends."bucket"] table first,
// then falling back field-by-field to [default]. Unset or unparsable
// fields resolve to zero (no override).
func (f *File) ResolveTuning(bucket string) Tuning {
	var t Tuning

	if e, ok := f.Backends[bucket]; ok {
		t.Workers = e.Workers
		t.BandwidthLimit = parseSize(e.BandwidthLimit)
	}
	if t.Workers == 0 {
		t.Workers = f.Default.Workers
	}
	if t.BandwidthLimit == 0 {
		t.BandwidthLimit = parseSize(f.Default.BandwidthLimit)
	}
	return t
}

// parseSize parses a byte-count string like "10MB", "512KB", or a
// bare number of bytes. Returns 0 (unlimited) if v is empty or
// unparsable.
func parseSize(v string) int64 {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0
	}

	units := []struct {
		suffix string
		factor int64
	}{
		{"GB", 1 << 30},
		{"MB", 1 << 20},
		{"KB", 1 << 10},
		{"B", 1},
	}
	upper := strings.ToUpper(v)
	for _, u := range units {
		if strings.HasSuffix(upper, u.suffix) {
			numPart := strings.TrimSpace(v[:len(v)-len(u.suffix)])
			n, err := strconv.ParseFloat(numPart, 64)
			if err != nil || n < 0 {
				return 0
			}
			return int64(n * float64(u.factor))
		}
	}

	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

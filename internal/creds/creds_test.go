package creds

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jacobfgrant/chonky/internal/errs"
)

func TestResolveMissingFileFallsBackToEnv(t *testing.T) {
	f, err := Load(filepath.Join(t.TempDir(), "does-not-exist.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	t.Setenv("CHONKY_KEY_ID", "env-id")
	t.Setenv("CHONKY_SECRET_KEY", "env-secret")

	pair, err := f.Resolve("my-bucket")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if pair.KeyID != "env-id" || pair.SecretKey != "env-secret" {
		t.Errorf("pair = %+v, want env fallback", pair)
	}
}

func TestResolvePrefersBucketOverDefault(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "credentials.toml")
	data := `[default]
key_id = "default-id"
secret_key = "default-secret"

[backends."my-bucket"]
key_id = "bucket-id"
secret_key = "bucket-secret"
`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	f, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	pair, err := f.Resolve("my-bucket")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if pair.KeyID != "bucket-id" {
		t.Errorf("KeyID = %q, want bucket-id", pair.KeyID)
	}

	other, err := f.Resolve("other-bucket")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if other.KeyID != "default-id" {
		t.Errorf("KeyID = %q, want default-id", other.KeyID)
	}
}

func TestResolveNoCredentialsIsConfigError(t *testing.T) {
	f, _ := Load(filepath.Join(t.TempDir(), "missing.toml"))
	os.Unsetenv("CHONKY_KEY_ID")
	os.Unsetenv("CHONKY_SECRET_KEY")

	_, err := f.Resolve("some-bucket")
	if err == nil {
		t.Fatal("expected error when no credentials are configured")
	}
	if errs.KindOf(err) != errs.KindConfig {
		t.Errorf("Kind = %v, want ConfigError", errs.KindOf(err))
	}
}

func TestResolveTuningPerBucketOverridesDefault(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "credentials.toml")
	data := `[default]
key_id = "default-id"
secret_key = "default-secret"
workers = 4
bandwidth_limit = "1MB"

[backends."my-bucket"]
key_id = "bucket-id"
secret_key = "bucket-secret"
workers = 32
`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	f, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	tuning := f.ResolveTuning("my-bucket")
	if tuning.Workers != 32 {
		t.Errorf("Workers = %d, want 32 (bucket override)", tuning.Workers)
	}
	if tuning.BandwidthLimit != 1<<20 {
		t.Errorf("BandwidthLimit = %d, want %d (falls back to default)", tuning.BandwidthLimit, 1<<20)
	}

	other := f.ResolveTuning("other-bucket")
	if other.Workers != 4 {
		t.Errorf("Workers = %d, want 4 (default)", other.Workers)
	}
}

func TestParseSizeUnits(t *testing.T) {
	cases := map[string]int64{
		"":      0,
		"1024":  1024,
		"10KB":  10 << 10,
		"10MB":  10 << 20,
		"2GB":   2 << 30,
		"1.5MB": int64(1.5 * (1 << 20)),
		"bogus": 0,
		"-1MB":  0,
	}
	for in, want := range cases {
		if got := parseSize(in); got != want {
			t.Errorf("parseSize(%q) = %d, want %d", in, got, want)
		}
	}
}

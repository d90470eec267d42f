package hash

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jacobfgrant/chonky/internal/errs"
)

func TestFileKnownDigest(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.txt")
	if err := os.WriteFile(path, []byte("hello world"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	sum, err := File(path)
	if err != nil {
		t.Fatalf("File: %v", err)
	}
	// echo -n "hello world" | sha1sum
	want := "2aae6c35c94fcfb415dbe95f408b9ce91ee846ed"
	if sum != want {
		t.Errorf("File() = %q, want %q", sum, want)
	}
}

func TestFileMissing(t *testing.T) {
	_, err := File(filepath.Join(t.TempDir(), "missing.txt"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if errs.KindOf(err) != errs.KindIO {
		t.Errorf("Kind = %v, want IoError", errs.KindOf(err))
	}
}

func TestFileEmpty(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "empty.txt")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	sum, err := File(path)
	if err != nil {
		t.Fatalf("File: %v", err)
	}
	want := "da39a3ee5e6b4b0d3255bfef95601890afd80709"
	if sum != want {
		t.Errorf("File() = %q, want %q", sum, want)
	}
}

package reconciler

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/jacobfgrant/chonky/internal/cachestore"
	"github.com/jacobfgrant/chonky/internal/errs"
	"github.com/jacobfgrant/chonky/internal/hash"
	"github.com/jacobfgrant/chonky/internal/manifest"
	"github.com/jacobfgrant/chonky/internal/remote"
)

// harness bundles a reconciler.Client with the pieces a test needs to
// manipulate directly: the shared manifest's on-disk path, the cache,
// and the mock remote backing it.
type harness struct {
	client    *Client
	cache     *cachestore.Store
	backend   *remote.Mock
	configDir string
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	root := t.TempDir()
	configDir := filepath.Join(root, "repo")
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	m := manifest.New()
	m.ConfigSet("type", "s3")
	m.ConfigSet("bucket", "test-bucket")
	m.ConfigSet("workspace", "work")
	configPath := filepath.Join(configDir, "CHONKY")
	if err := m.Save(configPath); err != nil {
		t.Fatalf("saving manifest: %v", err)
	}

	cache, err := cachestore.Open(filepath.Join(root, "cache"))
	if err != nil {
		t.Fatalf("cachestore.Open: %v", err)
	}
	backend := remote.NewMock(cache)

	client, err := Open(configPath, cache, backend)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	return &harness{client: client, cache: cache, backend: backend, configDir: configDir}
}

// seedRemote adds a file to the shared manifest and mock remote as if
// another client had already submitted it.
func (h *harness) seedRemote(t *testing.T, path, content string) {
	t.Helper()
	sum := sumBytes(t, content)
	h.backend.Seed(sum, []byte(content))
	h.client.remoteManifest.HeadSet(path, sum)
	if err := h.client.remoteManifest.Save(h.client.configPath); err != nil {
		t.Fatalf("saving remote manifest: %v", err)
	}
}

// writeWorkspaceFile writes content into the workspace at path.
func (h *harness) writeWorkspaceFile(t *testing.T, path, content string) {
	t.Helper()
	full := filepath.Join(h.client.workspacePath, path)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func sumBytes(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	p := filepath.Join(dir, "tmp")
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	sum, err := hash.File(p)
	if err != nil {
		t.Fatalf("hash.File: %v", err)
	}
	return sum
}

func TestStatusCleanWorkspace(t *testing.T) {
	h := newHarness(t)
	report, err := h.client.Status(context.Background())
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if !report.RemoteDiff.IsEmpty() || !report.WorkingDiff.IsEmpty() {
		t.Errorf("expected no diffs, got %+v", report)
	}
}

func TestSyncPullsNewRemoteFile(t *testing.T) {
	h := newHarness(t)
	h.seedRemote(t, "roms/game.rom", "game data")

	report, err := h.client.Sync(context.Background())
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if len(report.Updated) != 1 || report.Updated[0] != "roms/game.rom" {
		t.Errorf("Updated = %v, want [roms/game.rom]", report.Updated)
	}

	data, err := os.ReadFile(filepath.Join(h.client.workspacePath, "roms/game.rom"))
	if err != nil {
		t.Fatalf("reading materialized file: %v", err)
	}
	if string(data) != "game data" {
		t.Errorf("content = %q, want 'game data'", data)
	}

	loaded, err := manifest.Load(h.client.localPath)
	if err != nil {
		t.Fatalf("Load local manifest: %v", err)
	}
	if loaded.HeadLen() != 1 {
		t.Errorf("local manifest has %d entries, want 1", loaded.HeadLen())
	}
}

func TestSyncNoOpWhenRemoteUnchanged(t *testing.T) {
	h := newHarness(t)
	report, err := h.client.Sync(context.Background())
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if len(report.Updated) != 0 || len(report.Removed) != 0 {
		t.Errorf("expected no-op sync, got %+v", report)
	}
}

func TestSubmitPushesNewWorkspaceFile(t *testing.T) {
	h := newHarness(t)
	h.writeWorkspaceFile(t, "notes.txt", "hello world")

	report, err := h.client.Submit(context.Background())
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if len(report.Submitted) != 1 || report.Submitted[0] != "notes.txt" {
		t.Errorf("Submitted = %v, want [notes.txt]", report.Submitted)
	}

	sum := sumBytes(t, "hello world")
	if _, ok := h.backend.Objects[sum]; !ok {
		t.Error("expected object to be pushed to the mock remote")
	}

	reloaded, err := manifest.Load(h.client.configPath)
	if err != nil {
		t.Fatalf("reloading shared manifest: %v", err)
	}
	if got, ok := reloaded.HeadGet("notes.txt"); !ok || got != sum {
		t.Errorf("remote manifest hash = %q, ok=%v, want %q", got, ok, sum)
	}
}

func TestSubmitDedupesIdenticalContent(t *testing.T) {
	h := newHarness(t)
	h.writeWorkspaceFile(t, "a.txt", "same content")
	h.writeWorkspaceFile(t, "b.txt", "same content")

	if _, err := h.client.Submit(context.Background()); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	calls := 0
	for _, c := range h.backend.Calls {
		if len(c) >= 5 && c[:5] == "Push:" {
			calls++
		}
	}
	if calls != 1 {
		t.Errorf("expected 1 push call for deduplicated content, got %d", calls)
	}
}

func TestSubmitRefusesWithPendingRemoteChanges(t *testing.T) {
	h := newHarness(t)
	h.seedRemote(t, "roms/game.rom", "game data")
	h.writeWorkspaceFile(t, "notes.txt", "hello")

	_, err := h.client.Submit(context.Background())
	if err == nil {
		t.Fatal("expected PendingRemoteError")
	}
	if errs.KindOf(err) != errs.KindPendingRemote {
		t.Errorf("Kind = %v, want PendingRemoteError", errs.KindOf(err))
	}
}

func TestSyncRefusesOnConflict(t *testing.T) {
	h := newHarness(t)

	// Submit a baseline file so both remote and local HEAD agree on it.
	h.writeWorkspaceFile(t, "shared.txt", "base")
	if _, err := h.client.Submit(context.Background()); err != nil {
		t.Fatalf("baseline Submit: %v", err)
	}

	// Remote changes the file (simulating another client's submit)...
	h.seedRemote(t, "shared.txt", "remote edit")
	// ...while the workspace independently changes it too.
	h.writeWorkspaceFile(t, "shared.txt", "local edit")

	_, err := h.client.Sync(context.Background())
	if err == nil {
		t.Fatal("expected ConflictError")
	}
	if errs.KindOf(err) != errs.KindConflict {
		t.Errorf("Kind = %v, want ConflictError", errs.KindOf(err))
	}
}

func TestRevertRestoresModifiedFile(t *testing.T) {
	h := newHarness(t)
	h.writeWorkspaceFile(t, "save.dat", "original")
	if _, err := h.client.Submit(context.Background()); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	h.writeWorkspaceFile(t, "save.dat", "corrupted")

	report, err := h.client.Revert(context.Background())
	if err != nil {
		t.Fatalf("Revert: %v", err)
	}
	if len(report.Restored) != 1 || report.Restored[0] != "save.dat" {
		t.Errorf("Restored = %v, want [save.dat]", report.Restored)
	}

	data, err := os.ReadFile(filepath.Join(h.client.workspacePath, "save.dat"))
	if err != nil {
		t.Fatalf("reading reverted file: %v", err)
	}
	if string(data) != "original" {
		t.Errorf("content = %q, want original", data)
	}
}

func TestRevertRemovesUnsubmittedFile(t *testing.T) {
	h := newHarness(t)
	h.writeWorkspaceFile(t, "scratch.tmp", "untracked")

	report, err := h.client.Revert(context.Background())
	if err != nil {
		t.Fatalf("Revert: %v", err)
	}
	if len(report.Removed) != 1 || report.Removed[0] != "scratch.tmp" {
		t.Errorf("Removed = %v, want [scratch.tmp]", report.Removed)
	}
	if _, err := os.Stat(filepath.Join(h.client.workspacePath, "scratch.tmp")); !os.IsNotExist(err) {
		t.Error("expected scratch.tmp to be deleted")
	}
}

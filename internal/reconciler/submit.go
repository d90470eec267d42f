package reconciler

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/jacobfgrant/chonky/internal/errs"
	"github.com/jacobfgrant/chonky/internal/manifest"
)

// SubmitReport lists what Submit pushed to the remote.
type SubmitReport struct {
	Submitted []string
}

// Submit records the workspace's current state as the new shared HEAD
// and pushes the changed objects to the remote (spec.md §4.7
// "submit"). It refuses if the remote has unsynced changes; run Sync
// first.
//
// Cache ingestion runs strictly sequentially (not over the worker
// pool): each file is copied to a temp object and its mtime checked
// against the time hashing started, one at a time, so the TOCTOU guard
// stays tightly coupled to the copy it's guarding (spec.md §4.7 step
// 4, matching original_source/chonky/client.py's submit()).
func (c *Client) Submit(ctx context.Context) (*SubmitReport, error) {
	var lock *os.File
	if !c.DryRun {
		var err error
		lock, err = c.lock()
		if err != nil {
			return nil, err
		}
		defer unlock(lock)
	}

	startTime := time.Now()

	working, err := c.buildWorking(ctx)
	if err != nil {
		return nil, err
	}

	workingDiff := manifest.Compute(c.localManifest, working)
	if workingDiff.IsEmpty() {
		return &SubmitReport{}, nil
	}

	remoteDiff := manifest.Compute(c.localManifest, c.remoteManifest)
	if !remoteDiff.IsEmpty() {
		return nil, errs.PendingRemote()
	}

	changed := append(append([]string{}, workingDiff.Added...), workingDiff.Modified...)

	if c.DryRun {
		return &SubmitReport{Submitted: changed}, nil
	}

	for _, path := range changed {
		hash, _ := working.HeadGet(path)
		if c.cache.Has(hash) {
			continue
		}

		srcPath := filepath.Join(c.workspacePath, filepath.FromSlash(path))
		tmp, info, err := c.cache.Ingest(srcPath, hash)
		if err != nil {
			return nil, err
		}
		if info.ModTime().After(startTime) {
			c.cache.Abort(tmp)
			return nil, errs.ModifiedDuringRun(path)
		}
		if err := c.cache.Commit(tmp, hash); err != nil {
			return nil, err
		}
	}

	pushKeys := dedupeHashes(working, changed)
	if len(pushKeys) > 0 {
		if err := c.backend.Push(ctx, pushKeys); err != nil {
			return nil, err
		}
	}

	c.localManifest.SetHead(working.CloneHead())
	c.remoteManifest.SetHead(working.CloneHead())

	if err := c.localManifest.Save(c.localPath); err != nil {
		return nil, err
	}
	if err := c.remoteManifest.Save(c.configPath); err != nil {
		return nil, err
	}

	return &SubmitReport{Submitted: changed}, nil
}

// dedupeHashes maps paths to their working-manifest hash, collapsing
// paths whose content is identical (spec.md §4.5 dedup: identical
// content pushes once regardless of how many paths reference it).
func dedupeHashes(working *manifest.Manifest, paths []string) []string {
	seen := make(map[string]bool, len(paths))
	var out []string
	for _, path := range paths {
		hash, ok := working.HeadGet(path)
		if !ok || seen[hash] {
			continue
		}
		seen[hash] = true
		out = append(out, hash)
	}
	return out
}

package reconciler

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jacobfgrant/chonky/internal/errs"
	"github.com/jacobfgrant/chonky/internal/manifest"
)

// SyncReport summarizes what Sync changed in the workspace.
type SyncReport struct {
	Updated []string // added or modified by the remote, materialized locally
	Removed []string // removed from the remote, deleted locally
}

// Sync pulls remote changes into the workspace (spec.md §4.7 "sync").
// It refuses if the incoming remote changes conflict with unsubmitted
// workspace changes; run Status first to see why.
func (c *Client) Sync(ctx context.Context) (*SyncReport, error) {
	var lock *os.File
	if !c.DryRun {
		var err error
		lock, err = c.lock()
		if err != nil {
			return nil, err
		}
		defer unlock(lock)
	}

	working, err := c.buildWorking(ctx)
	if err != nil {
		return nil, err
	}

	remoteDiff := manifest.Compute(c.localManifest, c.remoteManifest)
	if remoteDiff.IsEmpty() {
		return &SyncReport{}, nil
	}

	workingDiff := manifest.Compute(c.localManifest, working)
	if conflicts := manifest.Conflicts(remoteDiff, workingDiff); len(conflicts) > 0 {
		return nil, errs.Conflict(conflicts)
	}

	toFetch := append(append([]string{}, remoteDiff.Added...), remoteDiff.Modified...)

	if c.DryRun {
		report := &SyncReport{Updated: toFetch, Removed: remoteDiff.Missing}
		return report, nil
	}

	var pullKeys []string
	for _, path := range toFetch {
		hash, ok := c.remoteManifest.HeadGet(path)
		if ok && !c.cache.Has(hash) {
			pullKeys = append(pullKeys, hash)
		}
	}
	if len(pullKeys) > 0 {
		if err := c.backend.Pull(ctx, pullKeys); err != nil {
			return nil, err
		}
	}

	report := &SyncReport{}
	newLocalHead := c.localManifest.CloneHead()

	for _, path := range toFetch {
		hash, _ := c.remoteManifest.HeadGet(path)
		newLocalHead[path] = hash
		dst := filepath.Join(c.workspacePath, filepath.FromSlash(path))
		if err := c.cache.Materialize(hash, dst); err != nil {
			return nil, err
		}
		report.Updated = append(report.Updated, path)
	}

	for _, path := range remoteDiff.Missing {
		delete(newLocalHead, path)
		target := filepath.Join(c.workspacePath, filepath.FromSlash(path))
		if err := os.Remove(target); err != nil && !os.IsNotExist(err) {
			return nil, errs.IO(fmt.Sprintf("removing %s", path), err)
		}
		report.Removed = append(report.Removed, path)
	}

	c.localManifest.SetHead(newLocalHead)
	if err := c.localManifest.Save(c.localPath); err != nil {
		return nil, err
	}

	return report, nil
}

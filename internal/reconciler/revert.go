package reconciler

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jacobfgrant/chonky/internal/errs"
	"github.com/jacobfgrant/chonky/internal/manifest"
)

// RevertReport lists what Revert restored or removed.
type RevertReport struct {
	Restored []string // modified or deleted files, copied back from the local cache
	Removed  []string // files added since the last submit, deleted
}

// Revert discards uncommitted workspace changes, restoring every file
// to its last-submitted (local HEAD) state (spec.md §4.7 "revert").
// Unlike sync/submit it never touches the remote or local manifest —
// the local manifest already records the state being restored to.
func (c *Client) Revert(ctx context.Context) (*RevertReport, error) {
	lock, err := c.lock()
	if err != nil {
		return nil, err
	}
	defer unlock(lock)

	working, err := c.buildWorking(ctx)
	if err != nil {
		return nil, err
	}

	workingDiff := manifest.Compute(c.localManifest, working)
	if workingDiff.IsEmpty() {
		return &RevertReport{}, nil
	}

	report := &RevertReport{}

	toRestore := append(append([]string{}, workingDiff.Modified...), workingDiff.Missing...)
	for _, path := range toRestore {
		hash, ok := c.localManifest.HeadGet(path)
		if !ok {
			continue
		}
		dst := filepath.Join(c.workspacePath, filepath.FromSlash(path))
		if err := c.cache.Materialize(hash, dst); err != nil {
			return nil, err
		}
		report.Restored = append(report.Restored, path)
	}

	for _, path := range workingDiff.Added {
		target := filepath.Join(c.workspacePath, filepath.FromSlash(path))
		if err := os.Remove(target); err != nil && !os.IsNotExist(err) {
			return nil, errs.IO(fmt.Sprintf("removing %s", path), err)
		}
		report.Removed = append(report.Removed, path)
	}

	return report, nil
}

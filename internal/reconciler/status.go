package reconciler

import (
	"context"

	"github.com/jacobfgrant/chonky/internal/manifest"
)

// StatusReport is read-only: the diffs status computes and whatever
// conflicts arise between them.
type StatusReport struct {
	RemoteDiff  manifest.Diff
	WorkingDiff manifest.Diff
	Conflicts   []string
}

// Status reports how the workspace compares to both the local shadow
// state and the shared remote manifest, without mutating anything
// (spec.md §4.7 "status"). It takes no lock.
func (c *Client) Status(ctx context.Context) (*StatusReport, error) {
	working, err := c.buildWorking(ctx)
	if err != nil {
		return nil, err
	}

	remoteDiff := manifest.Compute(c.localManifest, c.remoteManifest)
	workingDiff := manifest.Compute(c.localManifest, working)
	conflicts := manifest.Conflicts(remoteDiff, workingDiff)

	return &StatusReport{
		RemoteDiff:  remoteDiff,
		WorkingDiff: workingDiff,
		Conflicts:   conflicts,
	}, nil
}

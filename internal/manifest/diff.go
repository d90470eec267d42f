package manifest

import "sort"

// Diff holds the three disjoint path sets spec.md §4.4 defines between
// two manifests A (base) and B (candidate): added = keys(B)\keys(A),
// missing = keys(A)\keys(B), modified = keys in both with differing
// hashes.
type Diff struct {
	Added    []string
	Missing  []string
	Modified []string
}

// Compute computes the diff of b against a.
func Compute(a, b *Manifest) Diff {
	var d Diff

	for path, bHash := range b.head {
		aHash, ok := a.head[path]
		if !ok {
			d.Added = append(d.Added, path)
		} else if aHash != bHash {
			d.Modified = append(d.Modified, path)
		}
	}
	for path := range a.head {
		if _, ok := b.head[path]; !ok {
			d.Missing = append(d.Missing, path)
		}
	}

	sort.Strings(d.Added)
	sort.Strings(d.Missing)
	sort.Strings(d.Modified)
	return d
}

// Changed returns the union of added, missing, and modified paths.
func (d Diff) Changed() []string {
	out := make([]string, 0, len(d.Added)+len(d.Missing)+len(d.Modified))
	out = append(out, d.Added...)
	out = append(out, d.Missing...)
	out = append(out, d.Modified...)
	return out
}

// changedSet returns Changed() as a set for intersection.
func (d Diff) changedSet() map[string]struct{} {
	s := make(map[string]struct{}, len(d.Added)+len(d.Missing)+len(d.Modified))
	for _, p := range d.Changed() {
		s[p] = struct{}{}
	}
	return s
}

// IsEmpty reports whether the diff carries no changes at all.
func (d Diff) IsEmpty() bool {
	return len(d.Added) == 0 && len(d.Missing) == 0 && len(d.Modified) == 0
}

// Conflicts returns the sorted intersection of two diffs' changed
// paths: a path changed by both the remote (since last sync) and the
// workspace (since last sync/submit) is a conflict that must be
// resolved manually (spec.md §4.7 "Conflict definition").
func Conflicts(remoteDiff, workingDiff Diff) []string {
	remoteChanged := remoteDiff.changedSet()
	var out []string
	for _, p := range workingDiff.Changed() {
		if _, ok := remoteChanged[p]; ok {
			out = append(out, p)
		}
	}
	sort.Strings(out)
	return out
}

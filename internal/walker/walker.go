// Package walker enumerates workspace files, pruning anything that
// matches an ignore pattern.
package walker

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/jacobfgrant/chonky/internal/errs"
)

// pattern is an ignore pattern split into its glob and a dir-only flag
// (a trailing "/" restricts the match to directories, spec.md §4.3).
type pattern struct {
	glob    string
	dirOnly bool
}

func compile(patterns []string) []pattern {
	out := make([]pattern, 0, len(patterns))
	for _, p := range patterns {
		dirOnly := strings.HasSuffix(p, "/")
		out = append(out, pattern{glob: strings.TrimSuffix(p, "/"), dirOnly: dirOnly})
	}
	return out
}

func matches(patterns []pattern, relPath string, isDir bool) bool {
	for _, p := range patterns {
		if p.dirOnly && !isDir {
			continue
		}
		if ok, _ := doublestar.Match(p.glob, relPath); ok {
			return true
		}
		// also match just the base name, so "build/" prunes a "build"
		// directory found at any depth without requiring "**/build/".
		if ok, _ := doublestar.Match(p.glob, filepath.Base(relPath)); ok {
			return true
		}
	}
	return false
}

// Walk enumerates every non-ignored file under root, depth-first,
// returning POSIX-relative paths. Symlinks are not followed (spec.md
// §4.3 permits the simplification of never following them).
func Walk(root string, ignore []string) ([]string, error) {
	patterns := compile(ignore)
	var out []string

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == root {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return fmt.Errorf("computing relative path for %s: %w", path, err)
		}
		relSlash := filepath.ToSlash(rel)

		if d.Type()&fs.ModeSymlink != 0 {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			if matches(patterns, relSlash, true) {
				return filepath.SkipDir
			}
			return nil
		}

		if matches(patterns, relSlash, false) {
			return nil
		}

		out = append(out, relSlash)
		return nil
	})
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errs.IO(fmt.Sprintf("walking %s", root), err)
		}
		return nil, errs.IO(fmt.Sprintf("walking %s", root), err)
	}

	return out, nil
}

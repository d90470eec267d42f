// Package cmd implements chonky's command-line surface: status, sync,
// submit, revert, and stats, each a thin wrapper around
// internal/reconciler.
package cmd

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "chonky",
	Short: "Content-addressed file sync for shared, versioned workspaces",
	Long: `chonky keeps a workspace in sync with a shared, content-addressed
manifest backed by an S3-compatible bucket. Run it from inside a
workspace, or point it at a manifest with --config.`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "path to the CHONKY manifest (default: discover every CHONKY manifest under the working directory)")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "enable debug logging")
}

func Execute() error {
	return rootCmd.Execute()
}

// resolveConfigPaths returns the manifest path(s) to operate on: the
// --config flag alone if given, or every file literally named "CHONKY"
// found by walking the current directory depth-first, skipping
// dotfiles and directories starting with "__" (caches, build output).
func resolveConfigPaths() ([]string, error) {
	if cfgFile != "" {
		return []string{cfgFile}, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("getting working directory: %w", err)
	}

	var found []string
	err = filepath.WalkDir(cwd, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		name := d.Name()
		if d.IsDir() && path != cwd && (strings.HasPrefix(name, ".") || strings.HasPrefix(name, "__")) {
			return filepath.SkipDir
		}
		if !d.IsDir() && name == "CHONKY" {
			found = append(found, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("searching for a CHONKY manifest: %w", err)
	}
	if len(found) == 0 {
		return nil, fmt.Errorf("no CHONKY manifest found under %s (pass --config)", cwd)
	}
	sort.Strings(found)
	return found, nil
}

// forEachWorkspace resolves the manifest path(s) for this invocation
// and runs fn against each in turn, printing a "Workspace:" header
// whenever more than one manifest was discovered. It stops at the
// first error: already-processed workspaces are not rolled back,
// since each one's sync/submit/revert is already atomic on its own.
func forEachWorkspace(fn func(configPath string) error) error {
	paths, err := resolveConfigPaths()
	if err != nil {
		return err
	}

	cwd, _ := os.Getwd()
	multi := len(paths) > 1

	for _, path := range paths {
		if multi {
			rel, err := filepath.Rel(cwd, path)
			if err != nil {
				rel = path
			}
			fmt.Printf("Workspace: %s\n", rel)
		}
		if err := fn(path); err != nil {
			return err
		}
	}
	return nil
}

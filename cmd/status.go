package cmd

import (
	"context"
	"fmt"

	"github.com/jacobfgrant/chonky/internal/manifest"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show differences between the remote, local, and working state",
	RunE: func(cmd *cobra.Command, args []string) error {
		return forEachWorkspace(func(configPath string) error {
			client, err := openReconciler(configPath)
			if err != nil {
				return err
			}

			report, err := client.Status(context.Background())
			if err != nil {
				return err
			}

			if len(report.Conflicts) > 0 {
				fmt.Printf("Conflicts must be resolved before you can sync or submit: %v\n", report.Conflicts)
			}

			if !report.RemoteDiff.IsEmpty() {
				fmt.Println(`Remote changes are available, run "chonky sync" to update:`)
				printDiff(report.RemoteDiff)
			} else {
				fmt.Println("Workspace is up to date with the remote.")
			}

			if !report.WorkingDiff.IsEmpty() {
				fmt.Println("Workspace has changes:")
				printDiff(report.WorkingDiff)
			} else {
				fmt.Println("Workspace has no changes to submit.")
			}

			return nil
		})
	},
}

func printDiff(d manifest.Diff) {
	for _, f := range d.Added {
		fmt.Printf("  added     %s\n", f)
	}
	for _, f := range d.Missing {
		fmt.Printf("  missing   %s\n", f)
	}
	for _, f := range d.Modified {
		fmt.Printf("  modified  %s\n", f)
	}
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

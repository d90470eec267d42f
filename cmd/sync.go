package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	syncDryRun  bool
	syncWorkers int
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Pull remote changes into the workspace",
	Long: `Downloads objects the shared manifest has that the workspace doesn't,
writes them in, and removes files the remote no longer tracks. Refuses
if incoming remote changes conflict with unsubmitted workspace changes.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return forEachWorkspace(func(configPath string) error {
			client, err := openReconciler(configPath)
			if err != nil {
				return err
			}
			client.DryRun = syncDryRun
			if syncWorkers > 0 {
				client.WorkersOverride = syncWorkers
			}

			report, err := client.Sync(context.Background())
			if err != nil {
				return err
			}

			if len(report.Updated) == 0 && len(report.Removed) == 0 {
				fmt.Println("Already up to date.")
				return nil
			}
			verb := "  updated  "
			if syncDryRun {
				verb = "  would update  "
			}
			for _, f := range report.Updated {
				fmt.Printf("%s%s\n", verb, f)
			}
			removeVerb := "  removed  "
			if syncDryRun {
				removeVerb = "  would remove  "
			}
			for _, f := range report.Removed {
				fmt.Printf("%s%s\n", removeVerb, f)
			}
			if syncDryRun {
				fmt.Printf("Would sync %d file(s).\n", len(report.Updated)+len(report.Removed))
			} else {
				fmt.Printf("Synced %d file(s).\n", len(report.Updated)+len(report.Removed))
			}
			return nil
		})
	},
}

func init() {
	syncCmd.Flags().BoolVar(&syncDryRun, "dry-run", false, "show what sync would do without changing anything")
	syncCmd.Flags().IntVar(&syncWorkers, "workers", 0, "override the credentials file's worker cap for workspace hashing in this run")
	rootCmd.AddCommand(syncCmd)
}

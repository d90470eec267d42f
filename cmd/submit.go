package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	submitDryRun  bool
	submitWorkers int
)

var submitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Record the workspace's current state as the new shared HEAD",
	Long: `Hashes the workspace, pushes any new or changed content to the
remote, and rewrites the shared manifest. Refuses if the remote has
changes this workspace hasn't synced yet.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return forEachWorkspace(func(configPath string) error {
			client, err := openReconciler(configPath)
			if err != nil {
				return err
			}
			client.DryRun = submitDryRun
			if submitWorkers > 0 {
				client.WorkersOverride = submitWorkers
			}

			report, err := client.Submit(context.Background())
			if err != nil {
				return err
			}

			if len(report.Submitted) == 0 {
				fmt.Println("Nothing to submit.")
				return nil
			}
			verb := "  submitted  "
			if submitDryRun {
				verb = "  would submit  "
			}
			for _, f := range report.Submitted {
				fmt.Printf("%s%s\n", verb, f)
			}
			if submitDryRun {
				fmt.Printf("Would submit %d file(s).\n", len(report.Submitted))
			} else {
				fmt.Printf("Submitted %d file(s).\n", len(report.Submitted))
			}
			return nil
		})
	},
}

func init() {
	submitCmd.Flags().BoolVar(&submitDryRun, "dry-run", false, "show what submit would do without changing anything")
	submitCmd.Flags().IntVar(&submitWorkers, "workers", 0, "override the credentials file's worker cap for workspace hashing in this run")
	rootCmd.AddCommand(submitCmd)
}

package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var revertCmd = &cobra.Command{
	Use:   "revert",
	Short: "Discard uncommitted workspace changes",
	Long:  `Restores every file to its last-submitted state and removes files added since.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return forEachWorkspace(func(configPath string) error {
			client, err := openReconciler(configPath)
			if err != nil {
				return err
			}

			report, err := client.Revert(context.Background())
			if err != nil {
				return err
			}

			if len(report.Restored) == 0 && len(report.Removed) == 0 {
				fmt.Println("Nothing to revert.")
				return nil
			}
			fmt.Println("Reverting:")
			for _, f := range report.Restored {
				fmt.Printf("  restored  %s\n", f)
			}
			for _, f := range report.Removed {
				fmt.Printf("  removed   %s\n", f)
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(revertCmd)
}

package cmd

import (
	"fmt"

	"github.com/jacobfgrant/chonky/internal/cachestore"
	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show local cache size",
	Long:  `Reports on the local object cache only; it isn't tied to any one workspace.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cache, err := cachestore.Open(cachestore.DefaultDir())
		if err != nil {
			return err
		}

		stats, err := cache.Summarize()
		if err != nil {
			return err
		}

		fmt.Printf("Cache dir:     %s\n", stats.Dir)
		fmt.Printf("Cache objects: %d\n", stats.ObjectCount)
		fmt.Printf("Cache size:    %d bytes\n", stats.TotalBytes)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

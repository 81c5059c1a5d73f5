package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show collection statistics",
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	store, err := openStore(cmd.Context())
	if err != nil {
		return err
	}
	defer store.Close()

	count, err := store.Count(cmd.Context())
	if err != nil {
		return err
	}

	fmt.Printf("collection: %s\n", store.Collection())
	fmt.Printf("documents:  %d\n", count)

	meta := store.CollectionMeta()
	keys := make([]string, 0, len(meta))
	for k := range meta {
		if k == "name" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Printf("%s: %v\n", k, meta[k])
	}
	return nil
}

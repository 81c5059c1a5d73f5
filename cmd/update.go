package cmd

import (
	"github.com/spf13/cobra"
)

var updateCmd = &cobra.Command{
	Use:   "update [id] [text]",
	Short: "Replace a document's text and metadata",
	Long: `Replace a document's text and metadata in full. Without --meta the
metadata becomes an update timestamp only; existing fields are not preserved.

Examples:
  semstore update notes-1 "goroutines are multiplexed onto OS threads"
  semstore update notes-1 "updated text" --meta topic=go --meta reviewed=true`,
	Args: cobra.ExactArgs(2),
	RunE: runUpdate,
}

func init() {
	rootCmd.AddCommand(updateCmd)

	updateCmd.Flags().StringSlice("meta", nil, "replacement metadata key=value pairs")
}

func runUpdate(cmd *cobra.Command, args []string) error {
	metaPairs, _ := cmd.Flags().GetStringSlice("meta")
	meta, err := parseMetadata(metaPairs)
	if err != nil {
		return err
	}

	store, err := openStore(cmd.Context())
	if err != nil {
		return err
	}
	defer store.Close()

	return store.Update(cmd.Context(), args[0], args[1], meta)
}

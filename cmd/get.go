package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var getCmd = &cobra.Command{
	Use:   "get [id]",
	Short: "Retrieve a document by id",
	Args:  cobra.ExactArgs(1),
	RunE:  runGet,
}

func init() {
	rootCmd.AddCommand(getCmd)
}

func runGet(cmd *cobra.Command, args []string) error {
	store, err := openStore(cmd.Context())
	if err != nil {
		return err
	}
	defer store.Close()

	doc, err := store.Get(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	if doc == nil {
		fmt.Printf("document %s not found\n", args[0])
		return nil
	}

	fmt.Printf("id: %s\n", doc.ID)
	if len(doc.Metadata) > 0 {
		fmt.Printf("metadata: %v\n", doc.Metadata)
	}
	fmt.Println(doc.Text)
	return nil
}

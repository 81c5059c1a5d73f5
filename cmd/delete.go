package cmd

import (
	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:   "delete [id...]",
	Short: "Remove documents by id",
	Long: `Remove the given document ids from the collection. Unknown ids are
ignored, so repeating a delete is harmless.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runDelete,
}

func init() {
	rootCmd.AddCommand(deleteCmd)
}

func runDelete(cmd *cobra.Command, args []string) error {
	store, err := openStore(cmd.Context())
	if err != nil {
		return err
	}
	defer store.Close()

	return store.Delete(cmd.Context(), args)
}

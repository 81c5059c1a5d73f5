package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"semstore/internal/document"
)

var addCmd = &cobra.Command{
	Use:   "add [text...]",
	Short: "Add documents to the collection",
	Long: `Add documents given as arguments, or loaded from files with --file.
Each document gets a generated id unless --id is given, and a creation
timestamp unless --meta pairs are given. Files can be split into word-bounded
chunks before indexing.

Examples:
  semstore add "go is a statically typed language"
  semstore add --id notes-1 --meta topic=go "goroutines are cheap"
  semstore add --file README.md --chunk-size 200 --chunk-overlap 50`,
	RunE: runAdd,
}

func init() {
	rootCmd.AddCommand(addCmd)

	addCmd.Flags().StringSlice("file", nil, "files to load as documents")
	addCmd.Flags().StringSlice("id", nil, "explicit document ids, one per document")
	addCmd.Flags().StringSlice("meta", nil, "metadata key=value pairs applied to every document")
	addCmd.Flags().Int("chunk-size", 0, "split files into chunks of at most this many words (0 = no splitting)")
	addCmd.Flags().Int("chunk-overlap", 0, "words repeated between consecutive chunks")
}

func runAdd(cmd *cobra.Command, args []string) error {
	files, _ := cmd.Flags().GetStringSlice("file")
	ids, _ := cmd.Flags().GetStringSlice("id")
	metaPairs, _ := cmd.Flags().GetStringSlice("meta")
	chunkSize, _ := cmd.Flags().GetInt("chunk-size")
	chunkOverlap, _ := cmd.Flags().GetInt("chunk-overlap")

	common, err := parseMetadata(metaPairs)
	if err != nil {
		return err
	}

	texts := append([]string(nil), args...)
	var metadatas []map[string]any
	for range args {
		metadatas = append(metadatas, cloneMeta(common))
	}
	for _, path := range files {
		loaded, err := document.LoadFromFile(path)
		if err != nil {
			return err
		}
		for _, chunk := range document.Chunk(loaded.Content, chunkSize, chunkOverlap) {
			texts = append(texts, chunk)
			meta := cloneMeta(common)
			if meta == nil {
				meta = map[string]any{}
			}
			for k, v := range loaded.Metadata {
				meta[k] = v
			}
			metadatas = append(metadatas, meta)
		}
	}
	if len(texts) == 0 {
		return fmt.Errorf("nothing to add: give document texts or --file")
	}
	// With defaulted metadata the store stamps created_at itself.
	allNil := true
	for _, m := range metadatas {
		if m != nil {
			allNil = false
			break
		}
	}
	if allNil {
		metadatas = nil
	}
	if len(ids) == 0 {
		ids = nil
	}

	store, err := openStore(cmd.Context())
	if err != nil {
		return err
	}
	defer store.Close()

	resolved, err := store.Add(cmd.Context(), texts, metadatas, ids)
	if err != nil {
		return err
	}
	for _, id := range resolved {
		fmt.Println(id)
	}
	return nil
}

func cloneMeta(meta map[string]any) map[string]any {
	if meta == nil {
		return nil
	}
	clone := make(map[string]any, len(meta))
	for k, v := range meta {
		clone[k] = v
	}
	return clone
}

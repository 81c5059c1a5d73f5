package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"semstore/internal/vectorstore"
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Find documents by semantic similarity",
	Long: `Search the collection for the documents most similar to the query text,
best match first. Filters restrict candidates by metadata equality or
numeric range.

Examples:
  semstore search "how do goroutines work"
  semstore search "memory model" --top-k 10
  semstore search "scheduling" --filter topic=go --filter "year>=2020"`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)

	searchCmd.Flags().IntP("top-k", "k", 5, "maximum number of results")
	searchCmd.Flags().StringSlice("filter", nil, "metadata filter: key=value, key>=n, key<=n")
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := args[0]
	topK, _ := cmd.Flags().GetInt("top-k")
	filterExprs, _ := cmd.Flags().GetStringSlice("filter")

	filter, err := parseFilter(filterExprs)
	if err != nil {
		return err
	}

	store, err := openStore(cmd.Context())
	if err != nil {
		return err
	}
	defer store.Close()

	results, err := store.SimilaritySearch(cmd.Context(), query, topK, filter)
	if err != nil {
		return err
	}
	if len(results) == 0 {
		fmt.Println("no matching documents")
		return nil
	}

	for i, r := range results {
		distance := "n/a"
		if r.Distance != nil {
			distance = fmt.Sprintf("%.4f", *r.Distance)
		}
		fmt.Printf("[%d] %s  distance=%s\n", i+1, r.ID, distance)
		if len(r.Metadata) > 0 {
			fmt.Printf("    metadata: %v\n", r.Metadata)
		}
		fmt.Printf("    %s\n", truncate(r.Text, 200))
	}
	return nil
}

// parseFilter turns filter expressions into an engine filter. "key=value" is
// equality, "key>=n" and "key<=n" are numeric bounds; bounds on the same key
// merge into one range.
func parseFilter(exprs []string) (vectorstore.Filter, error) {
	if len(exprs) == 0 {
		return nil, nil
	}
	filter := vectorstore.Filter{}
	for _, expr := range exprs {
		switch {
		case strings.Contains(expr, ">="):
			key, bound, err := splitBound(expr, ">=")
			if err != nil {
				return nil, err
			}
			r, _ := filter[key].(vectorstore.Range)
			r.GTE = &bound
			filter[key] = r
		case strings.Contains(expr, "<="):
			key, bound, err := splitBound(expr, "<=")
			if err != nil {
				return nil, err
			}
			r, _ := filter[key].(vectorstore.Range)
			r.LTE = &bound
			filter[key] = r
		case strings.Contains(expr, "="):
			key, raw, _ := strings.Cut(expr, "=")
			if key == "" {
				return nil, fmt.Errorf("invalid filter %q", expr)
			}
			filter[key] = inferValue(raw)
		default:
			return nil, fmt.Errorf("invalid filter %q, expected key=value, key>=n or key<=n", expr)
		}
	}
	return filter, nil
}

func splitBound(expr, op string) (string, float64, error) {
	key, raw, _ := strings.Cut(expr, op)
	if key == "" {
		return "", 0, fmt.Errorf("invalid filter %q", expr)
	}
	n, ok := inferValue(raw).(int64)
	if ok {
		return key, float64(n), nil
	}
	f, isFloat := inferValue(raw).(float64)
	if !isFloat {
		return "", 0, fmt.Errorf("filter %q: %q is not numeric", expr, raw)
	}
	return key, f, nil
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

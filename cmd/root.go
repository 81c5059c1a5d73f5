package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"semstore/internal/docstore"
	"semstore/internal/embedding"
	"semstore/internal/observability"
	"semstore/internal/vectorstore"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "semstore",
	Short: "semstore - semantic document store with vector similarity search",
	Long: `semstore manages a corpus of textual documents for retrieval by semantic
similarity: it assigns identity and metadata to documents, persists them
alongside vector embeddings, and answers nearest-neighbor queries.

Documents live in named collections. By default they are stored in a local
SQLite database with offline hash embeddings; an Ollama server can provide
real semantic embeddings and a Qdrant server can replace the local engine.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.semstore.yaml)")
	rootCmd.PersistentFlags().String("data-dir", "", "persistence directory (default is $HOME/.semstore)")
	rootCmd.PersistentFlags().String("collection", "documents", "collection name")
	rootCmd.PersistentFlags().String("engine", "sqlite", "vector engine: sqlite, memory or qdrant")
	rootCmd.PersistentFlags().String("embedder", "hash", "embedding provider: hash or ollama")
	rootCmd.PersistentFlags().String("ollama-url", "http://localhost:11434", "Ollama server URL")
	rootCmd.PersistentFlags().String("ollama-model", "nomic-embed-text", "Ollama embedding model")
	rootCmd.PersistentFlags().String("qdrant-host", "localhost", "Qdrant server host")
	rootCmd.PersistentFlags().Int("qdrant-port", 6334, "Qdrant gRPC port")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "suppress operation logging")

	viper.BindPFlag("data_dir", rootCmd.PersistentFlags().Lookup("data-dir"))
	viper.BindPFlag("collection", rootCmd.PersistentFlags().Lookup("collection"))
	viper.BindPFlag("engine", rootCmd.PersistentFlags().Lookup("engine"))
	viper.BindPFlag("embedder", rootCmd.PersistentFlags().Lookup("embedder"))
	viper.BindPFlag("ollama_url", rootCmd.PersistentFlags().Lookup("ollama-url"))
	viper.BindPFlag("ollama_model", rootCmd.PersistentFlags().Lookup("ollama-model"))
	viper.BindPFlag("qdrant_host", rootCmd.PersistentFlags().Lookup("qdrant-host"))
	viper.BindPFlag("qdrant_port", rootCmd.PersistentFlags().Lookup("qdrant-port"))
	viper.BindPFlag("quiet", rootCmd.PersistentFlags().Lookup("quiet"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".semstore")
	}

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func dataDir() string {
	if dir := viper.GetString("data_dir"); dir != "" {
		return dir
	}
	return filepath.Join(os.Getenv("HOME"), ".semstore")
}

// openStore builds the store from the configured engine, embedder and hooks.
func openStore(ctx context.Context) (*docstore.Store, error) {
	collection := viper.GetString("collection")

	var provider embedding.Provider
	switch viper.GetString("embedder") {
	case "hash":
		provider = embedding.NewHashProvider(0)
	case "ollama":
		provider = embedding.NewOllamaProvider(viper.GetString("ollama_url"), viper.GetString("ollama_model"))
	default:
		return nil, fmt.Errorf("unknown embedder %q", viper.GetString("embedder"))
	}

	opts := &docstore.Options{
		Provider: provider,
		Hooks:    buildHooks(),
	}

	switch viper.GetString("engine") {
	case "sqlite":
		// Default engine, opened by the store itself under data-dir.
	case "memory":
		opts.Engine = vectorstore.NewMemoryStore(collection)
	case "qdrant":
		dim := provider.Dimension()
		if dim == 0 {
			probed, err := provider.(*embedding.OllamaProvider).Probe(ctx)
			if err != nil {
				return nil, fmt.Errorf("probe embedding dimension: %w", err)
			}
			dim = probed
		}
		engine, err := vectorstore.OpenQdrant(ctx,
			viper.GetString("qdrant_host"), viper.GetInt("qdrant_port"), collection, dim)
		if err != nil {
			return nil, err
		}
		opts.Engine = engine
	default:
		return nil, fmt.Errorf("unknown engine %q", viper.GetString("engine"))
	}

	return docstore.Open(ctx, dataDir(), collection, opts)
}

func buildHooks() observability.Hooks {
	if viper.GetBool("quiet") {
		return observability.NewTracing()
	}
	return observability.Multi{
		observability.NewCLILogger(os.Stderr),
		observability.NewTracing(),
	}
}

// parseMetadata turns key=value pairs into a metadata mapping, inferring
// bool, int and float values.
func parseMetadata(pairs []string) (map[string]any, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	meta := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		key, raw, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid metadata %q, expected key=value", pair)
		}
		meta[key] = inferValue(raw)
	}
	return meta, nil
}

func inferValue(raw string) any {
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return f
	}
	switch raw {
	case "true":
		return true
	case "false":
		return false
	}
	return raw
}

package embedding

import "context"

// Provider maps document text to a fixed-dimension vector. Implementations
// must be deterministic for a given model version.
type Provider interface {
	// Embed returns the embedding for a single text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch returns one embedding per text, in input order.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimension returns the embedding dimension, or 0 if not yet known.
	Dimension() int
}

package vectorstore

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned by Update when no document exists for an id.
	ErrNotFound = errors.New("vectorstore: document not found")

	// ErrDimension is returned when a vector does not match the collection dimension.
	ErrDimension = errors.New("vectorstore: embedding dimension mismatch")

	// ErrClosed is returned when the engine has been closed.
	ErrClosed = errors.New("vectorstore: engine closed")
)

// QueryResult holds similarity-search matches as parallel slices, ordered by
// ascending distance. Distances is nil when the engine does not report them.
type QueryResult struct {
	IDs       []string
	Texts     []string
	Metadatas []map[string]any
	Distances []float64
}

// GetResult holds point-lookup matches as parallel slices. Ids that were not
// found are simply absent.
type GetResult struct {
	IDs       []string
	Texts     []string
	Metadatas []map[string]any
}

// Engine is the vector index engine contract: a durable store of
// (id, vector, text, metadata) tuples with similarity search.
type Engine interface {
	// Insert stores the given documents as one batch.
	Insert(ctx context.Context, ids []string, vectors [][]float32, texts []string, metadatas []map[string]any) error

	// Query returns up to k documents nearest to vector, optionally restricted
	// by a metadata filter, ordered by ascending distance.
	Query(ctx context.Context, vector []float32, k int, filter Filter) (*QueryResult, error)

	// Get looks up documents by id. Missing ids are omitted from the result.
	Get(ctx context.Context, ids []string) (*GetResult, error)

	// Delete removes the given ids. Unknown ids are ignored.
	Delete(ctx context.Context, ids []string) error

	// Update replaces vector, text and metadata for existing ids.
	// Returns ErrNotFound if any id does not exist; it never creates.
	Update(ctx context.Context, ids []string, vectors [][]float32, texts []string, metadatas []map[string]any) error

	// Count returns the number of stored documents.
	Count(ctx context.Context) (int, error)

	// Meta returns collection metadata, including its creation timestamp.
	Meta() map[string]any

	// Close releases engine resources.
	Close() error
}

// TextInserter is an optional capability for engines that compute embeddings
// internally. Callers should use type assertion:
//
//	if ti, ok := engine.(TextInserter); ok { ... }
type TextInserter interface {
	InsertText(ctx context.Context, ids []string, texts []string, metadatas []map[string]any) error
}

// TextQuerier is an optional capability for engines that embed query text
// internally.
type TextQuerier interface {
	QueryText(ctx context.Context, query string, k int, filter Filter) (*QueryResult, error)
}

// Package docstore is the document lifecycle layer between application
// callers and a pluggable vector index engine: it assigns identity, defaults
// metadata, shapes results and normalizes failures, independent of which
// engine or embedding provider is plugged in.
package docstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"semstore/internal/embedding"
	"semstore/internal/observability"
	"semstore/internal/vectorstore"
)

// DefaultNumResults bounds similarity searches when the caller passes n <= 0.
const DefaultNumResults = 5

// Document is a stored text with its identity and metadata.
type Document struct {
	ID       string
	Text     string
	Metadata map[string]any
}

// SearchResult is one similarity-search match. Distance is nil when the
// engine does not report one; that is a degraded-but-valid state.
type SearchResult struct {
	ID       string
	Text     string
	Metadata map[string]any
	Distance *float64
}

// Options tunes store construction. All fields are optional.
type Options struct {
	// Provider computes embeddings. When nil and the engine cannot embed
	// text itself, the offline hash provider is used.
	Provider embedding.Provider

	// Hooks observes operation lifecycles. Defaults to observability.Nop.
	Hooks observability.Hooks

	// Engine overrides the default SQLite engine opened under the store's
	// data directory. Useful for in-memory or remote engines.
	Engine vectorstore.Engine
}

// Store is a synchronous façade over one collection. Every operation blocks
// until the engine responds; concurrency discipline is the engine's.
type Store struct {
	engine     vectorstore.Engine
	provider   embedding.Provider
	hooks      observability.Hooks
	collection string

	// engineEmbeds is set when no provider was configured and the engine
	// embeds text internally; text is then passed through raw.
	engineEmbeds bool
}

// Open creates a store bound to one collection at dataDir, creating both if
// needed. Reopening an existing collection keeps its documents.
func Open(ctx context.Context, dataDir, collection string, opts *Options) (*Store, error) {
	if opts == nil {
		opts = &Options{}
	}

	engine := opts.Engine
	if engine == nil {
		var err error
		engine, err = vectorstore.OpenSQLite(ctx, dataDir, collection)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
		}
	}

	s := &Store{
		engine:     engine,
		provider:   opts.Provider,
		hooks:      opts.Hooks,
		collection: collection,
	}
	if s.hooks == nil {
		s.hooks = observability.Nop{}
	}
	if s.provider == nil {
		_, canInsert := engine.(vectorstore.TextInserter)
		_, canQuery := engine.(vectorstore.TextQuerier)
		if canInsert && canQuery {
			s.engineEmbeds = true
		} else {
			s.provider = embedding.NewHashProvider(0)
		}
	}
	return s, nil
}

// Add stores the given texts as one batch and returns their ids in input
// order. Omitted ids are generated; omitted metadatas default to a creation
// timestamp. Length mismatches fail before any engine write, and any engine
// failure aborts the whole batch.
func (s *Store) Add(ctx context.Context, texts []string, metadatas []map[string]any, ids []string) (resolved []string, err error) {
	done := s.begin(ctx, "add", observability.Fields{"count": len(texts)})
	defer func() { done(err) }()

	if len(texts) == 0 {
		return nil, fmt.Errorf("%w: no documents given", ErrValidation)
	}
	if metadatas != nil && len(metadatas) != len(texts) {
		return nil, fmt.Errorf("%w: %d documents but %d metadatas", ErrValidation, len(texts), len(metadatas))
	}
	if ids != nil && len(ids) != len(texts) {
		return nil, fmt.Errorf("%w: %d documents but %d ids", ErrValidation, len(texts), len(ids))
	}

	if ids == nil {
		ids = make([]string, len(texts))
		for i := range ids {
			ids[i] = uuid.NewString()
		}
	}
	if metadatas == nil {
		stamp := timestamp()
		metadatas = make([]map[string]any, len(texts))
		for i := range metadatas {
			metadatas[i] = map[string]any{"created_at": stamp}
		}
	} else {
		// Metadata is never absent on a stored document.
		normalized := make([]map[string]any, len(metadatas))
		for i, m := range metadatas {
			if m == nil {
				m = map[string]any{}
			}
			normalized[i] = m
		}
		metadatas = normalized
	}

	if s.engineEmbeds {
		ti := s.engine.(vectorstore.TextInserter)
		if err := ti.InsertText(ctx, ids, texts, metadatas); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrStorageWrite, err)
		}
		return ids, nil
	}

	vectors, err := s.provider.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embed documents: %w", err)
	}
	if err := s.engine.Insert(ctx, ids, vectors, texts, metadatas); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageWrite, err)
	}
	return ids, nil
}

// SimilaritySearch returns up to n documents nearest to query, best match
// first. An empty collection yields an empty result, not an error.
func (s *Store) SimilaritySearch(ctx context.Context, query string, n int, filter vectorstore.Filter) (results []SearchResult, err error) {
	if n <= 0 {
		n = DefaultNumResults
	}
	done := s.begin(ctx, "search", observability.Fields{"query": query, "n": n})
	defer func() { done(err) }()

	if filter != nil {
		if err := filter.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrValidation, err)
		}
	}

	var qr *vectorstore.QueryResult
	if s.engineEmbeds {
		tq := s.engine.(vectorstore.TextQuerier)
		qr, err = tq.QueryText(ctx, query, n, filter)
	} else {
		var vector []float32
		vector, err = s.provider.Embed(ctx, query)
		if err != nil {
			return nil, fmt.Errorf("embed query: %w", err)
		}
		qr, err = s.engine.Query(ctx, vector, n, filter)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageRead, err)
	}

	results = make([]SearchResult, len(qr.IDs))
	for i := range qr.IDs {
		results[i] = SearchResult{
			ID:       qr.IDs[i],
			Text:     qr.Texts[i],
			Metadata: qr.Metadatas[i],
		}
		if qr.Distances != nil {
			d := qr.Distances[i]
			results[i].Distance = &d
		}
	}
	return results, nil
}

// Get looks up one document by id. A missing id returns (nil, nil); only a
// storage failure is an error.
func (s *Store) Get(ctx context.Context, id string) (doc *Document, err error) {
	done := s.begin(ctx, "get", observability.Fields{"id": id})
	defer func() { done(err) }()

	gr, err := s.engine.Get(ctx, []string{id})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageRead, err)
	}
	if len(gr.IDs) == 0 {
		return nil, nil
	}
	return &Document{
		ID:       gr.IDs[0],
		Text:     gr.Texts[0],
		Metadata: gr.Metadatas[0],
	}, nil
}

// Update replaces a document's text and metadata in full. Omitted metadata
// is replaced with an update timestamp only — an overwrite, not a merge;
// callers who want to keep fields must read-then-write. Updating an unknown
// id is ErrNotFound; it never creates.
func (s *Store) Update(ctx context.Context, id, text string, metadata map[string]any) (err error) {
	done := s.begin(ctx, "update", observability.Fields{"id": id})
	defer func() { done(err) }()

	if metadata == nil {
		metadata = map[string]any{"updated_at": timestamp()}
	}

	if s.engineEmbeds {
		gr, err := s.engine.Get(ctx, []string{id})
		if err != nil {
			return fmt.Errorf("%w: %v", ErrStorageRead, err)
		}
		if len(gr.IDs) == 0 {
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		ti := s.engine.(vectorstore.TextInserter)
		if err := ti.InsertText(ctx, []string{id}, []string{text}, []map[string]any{metadata}); err != nil {
			return fmt.Errorf("%w: %v", ErrStorageWrite, err)
		}
		return nil
	}

	vector, err := s.provider.Embed(ctx, text)
	if err != nil {
		return fmt.Errorf("embed document: %w", err)
	}
	err = s.engine.Update(ctx, []string{id}, [][]float32{vector}, []string{text}, []map[string]any{metadata})
	if errors.Is(err, vectorstore.ErrNotFound) {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStorageWrite, err)
	}
	return nil
}

// Delete removes the given ids. Unknown ids are ignored, so deletion is
// idempotent best-effort.
func (s *Store) Delete(ctx context.Context, ids []string) (err error) {
	done := s.begin(ctx, "delete", observability.Fields{"count": len(ids)})
	defer func() { done(err) }()

	if len(ids) == 0 {
		return nil
	}
	if err := s.engine.Delete(ctx, ids); err != nil {
		return fmt.Errorf("%w: %v", ErrStorageWrite, err)
	}
	return nil
}

// Count returns the number of documents in the collection.
func (s *Store) Count(ctx context.Context) (n int, err error) {
	done := s.begin(ctx, "count", nil)
	defer func() { done(err) }()

	n, err = s.engine.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrStorageRead, err)
	}
	return n, nil
}

// CollectionMeta returns the collection's metadata, including its creation
// timestamp.
func (s *Store) CollectionMeta() map[string]any {
	return s.engine.Meta()
}

// Collection returns the collection name the store is bound to.
func (s *Store) Collection() string {
	return s.collection
}

// Close releases the underlying engine.
func (s *Store) Close() error {
	return s.engine.Close()
}

func timestamp() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

package vectorstore

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"
)

type memoryDoc struct {
	id        string
	embedding []float32
	text      string
	metadata  map[string]any
	seq       int
}

// MemoryStore is an in-memory Engine, used for tests and throwaway
// collections. Safe for concurrent use.
type MemoryStore struct {
	mu     sync.RWMutex
	docs   map[string]*memoryDoc
	meta   map[string]any
	seq    int
	closed bool
}

// NewMemoryStore creates an empty in-memory engine.
func NewMemoryStore(collection string) *MemoryStore {
	return &MemoryStore{
		docs: make(map[string]*memoryDoc),
		meta: map[string]any{
			"name":       collection,
			"created_at": time.Now().UTC().Format(time.RFC3339Nano),
		},
	}
}

func (m *MemoryStore) Insert(ctx context.Context, ids []string, vectors [][]float32, texts []string, metadatas []map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	for i, id := range ids {
		m.seq++
		m.docs[id] = &memoryDoc{
			id:        id,
			embedding: vectors[i],
			text:      texts[i],
			metadata:  metadatas[i],
			seq:       m.seq,
		}
	}
	return nil
}

func (m *MemoryStore) Query(ctx context.Context, vector []float32, k int, filter Filter) (*QueryResult, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, ErrClosed
	}

	type scored struct {
		doc      *memoryDoc
		distance float64
	}
	var candidates []scored
	for _, doc := range m.docs {
		if len(doc.embedding) != len(vector) {
			return nil, fmt.Errorf("%w: stored %d, query %d", ErrDimension, len(doc.embedding), len(vector))
		}
		if filter != nil && !filter.Matches(doc.metadata) {
			continue
		}
		candidates = append(candidates, scored{doc: doc, distance: cosineDistance(vector, doc.embedding)})
	}

	// Ascending distance; insertion order breaks ties so results are stable.
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].distance != candidates[j].distance {
			return candidates[i].distance < candidates[j].distance
		}
		return candidates[i].doc.seq < candidates[j].doc.seq
	})
	if k > 0 && len(candidates) > k {
		candidates = candidates[:k]
	}

	result := &QueryResult{}
	for _, c := range candidates {
		result.IDs = append(result.IDs, c.doc.id)
		result.Texts = append(result.Texts, c.doc.text)
		result.Metadatas = append(result.Metadatas, c.doc.metadata)
		result.Distances = append(result.Distances, c.distance)
	}
	return result, nil
}

func (m *MemoryStore) Get(ctx context.Context, ids []string) (*GetResult, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, ErrClosed
	}
	result := &GetResult{}
	for _, id := range ids {
		doc, ok := m.docs[id]
		if !ok {
			continue
		}
		result.IDs = append(result.IDs, doc.id)
		result.Texts = append(result.Texts, doc.text)
		result.Metadatas = append(result.Metadatas, doc.metadata)
	}
	return result, nil
}

func (m *MemoryStore) Delete(ctx context.Context, ids []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	for _, id := range ids {
		delete(m.docs, id)
	}
	return nil
}

func (m *MemoryStore) Update(ctx context.Context, ids []string, vectors [][]float32, texts []string, metadatas []map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	for _, id := range ids {
		if _, ok := m.docs[id]; !ok {
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		}
	}
	for i, id := range ids {
		doc := m.docs[id]
		doc.embedding = vectors[i]
		doc.text = texts[i]
		doc.metadata = metadatas[i]
	}
	return nil
}

func (m *MemoryStore) Count(ctx context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return 0, ErrClosed
	}
	return len(m.docs), nil
}

func (m *MemoryStore) Meta() map[string]any {
	m.mu.RLock()
	defer m.mu.RUnlock()
	meta := make(map[string]any, len(m.meta))
	for k, v := range m.meta {
		meta[k] = v
	}
	return meta
}

func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	m.docs = nil
	return nil
}

// cosineDistance returns 1 - cosine similarity, so that 0 means identical
// direction and larger values mean less similar.
func cosineDistance(a, b []float32) float64 {
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 1
	}
	return 1 - dot/(math.Sqrt(normA)*math.Sqrt(normB))
}

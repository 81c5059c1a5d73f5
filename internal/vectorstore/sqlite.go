package vectorstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore is the durable Engine. Embeddings are stored as BLOBs
// (little-endian float32 arrays) and metadata as JSON; similarity is computed
// in Go over the candidate set, which is sub-millisecond below ~10K documents.
type SQLiteStore struct {
	db         *sql.DB
	collection string
	createdAt  string
	dimension  int
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS collections (
	name       TEXT PRIMARY KEY,
	created_at TEXT NOT NULL,
	dimension  INTEGER NOT NULL DEFAULT 0
);
CREATE TABLE IF NOT EXISTS documents (
	collection TEXT NOT NULL REFERENCES collections(name),
	id         TEXT NOT NULL,
	content    TEXT NOT NULL,
	embedding  BLOB,
	metadata   TEXT NOT NULL DEFAULT '{}',
	PRIMARY KEY (collection, id)
);
`

// OpenSQLite opens or creates a collection inside dir. The directory is
// created if missing. Reopening an existing collection keeps its documents
// and its original creation timestamp.
func OpenSQLite(ctx context.Context, dir, collection string) (*SQLiteStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	db, err := sql.Open("sqlite", filepath.Join(dir, "semstore.db"))
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("apply pragma: %w", err)
		}
	}
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	s := &SQLiteStore{db: db, collection: collection}
	if err := s.openOrCreate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) openOrCreate(ctx context.Context) error {
	row := s.db.QueryRowContext(ctx,
		`SELECT created_at, dimension FROM collections WHERE name = ?`, s.collection)
	err := row.Scan(&s.createdAt, &s.dimension)
	if err == nil {
		return nil
	}
	if err != sql.ErrNoRows {
		return fmt.Errorf("read collection: %w", err)
	}

	s.createdAt = time.Now().UTC().Format(time.RFC3339Nano)
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO collections (name, created_at, dimension) VALUES (?, ?, 0)`,
		s.collection, s.createdAt)
	if err != nil {
		return fmt.Errorf("create collection: %w", err)
	}
	return nil
}

// setDimension pins the collection dimension on first insert.
func (s *SQLiteStore) setDimension(ctx context.Context, tx *sql.Tx, dim int) error {
	if s.dimension != 0 {
		if dim != s.dimension {
			return fmt.Errorf("%w: collection %d, got %d", ErrDimension, s.dimension, dim)
		}
		return nil
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE collections SET dimension = ? WHERE name = ?`, dim, s.collection); err != nil {
		return fmt.Errorf("record dimension: %w", err)
	}
	s.dimension = dim
	return nil
}

func (s *SQLiteStore) Insert(ctx context.Context, ids []string, vectors [][]float32, texts []string, metadatas []map[string]any) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin insert: %w", err)
	}
	defer tx.Rollback()

	if len(vectors) > 0 {
		if err := s.setDimension(ctx, tx, len(vectors[0])); err != nil {
			return err
		}
	}
	for i, id := range ids {
		if len(vectors[i]) != s.dimension {
			return fmt.Errorf("%w: collection %d, got %d", ErrDimension, s.dimension, len(vectors[i]))
		}
		meta, err := json.Marshal(metadatas[i])
		if err != nil {
			return fmt.Errorf("encode metadata for %s: %w", id, err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO documents (collection, id, content, embedding, metadata)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT(collection, id) DO UPDATE SET
				content = excluded.content,
				embedding = excluded.embedding,
				metadata = excluded.metadata
		`, s.collection, id, texts[i], encodeFloat32s(vectors[i]), string(meta))
		if err != nil {
			return fmt.Errorf("insert %s: %w", id, err)
		}
	}
	return tx.Commit()
}

func (s *SQLiteStore) Query(ctx context.Context, vector []float32, k int, filter Filter) (*QueryResult, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, content, embedding, metadata
		FROM documents
		WHERE collection = ? AND embedding IS NOT NULL
		ORDER BY rowid
	`, s.collection)
	if err != nil {
		return nil, fmt.Errorf("query documents: %w", err)
	}
	defer rows.Close()

	type scored struct {
		id       string
		text     string
		metadata map[string]any
		distance float64
		seq      int
	}
	var candidates []scored
	seq := 0
	for rows.Next() {
		var id, text, rawMeta string
		var blob []byte
		if err := rows.Scan(&id, &text, &blob, &rawMeta); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		seq++

		stored := decodeFloat32s(blob)
		if len(stored) != len(vector) {
			return nil, fmt.Errorf("%w: stored %d, query %d", ErrDimension, len(stored), len(vector))
		}
		var meta map[string]any
		if err := json.Unmarshal([]byte(rawMeta), &meta); err != nil {
			return nil, fmt.Errorf("decode metadata for %s: %w", id, err)
		}
		if meta == nil {
			meta = map[string]any{}
		}
		if filter != nil && !filter.Matches(meta) {
			continue
		}
		candidates = append(candidates, scored{
			id:       id,
			text:     text,
			metadata: meta,
			distance: cosineDistance(vector, stored),
			seq:      seq,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w", err)
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].distance != candidates[j].distance {
			return candidates[i].distance < candidates[j].distance
		}
		return candidates[i].seq < candidates[j].seq
	})
	if k > 0 && len(candidates) > k {
		candidates = candidates[:k]
	}

	result := &QueryResult{}
	for _, c := range candidates {
		result.IDs = append(result.IDs, c.id)
		result.Texts = append(result.Texts, c.text)
		result.Metadatas = append(result.Metadatas, c.metadata)
		result.Distances = append(result.Distances, c.distance)
	}
	return result, nil
}

func (s *SQLiteStore) Get(ctx context.Context, ids []string) (*GetResult, error) {
	if len(ids) == 0 {
		return &GetResult{}, nil
	}
	placeholders := strings.Repeat("?,", len(ids))
	args := make([]any, 0, len(ids)+1)
	args = append(args, s.collection)
	for _, id := range ids {
		args = append(args, id)
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, content, metadata
		FROM documents
		WHERE collection = ? AND id IN (`+placeholders[:len(placeholders)-1]+`)
		ORDER BY rowid
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("get documents: %w", err)
	}
	defer rows.Close()

	result := &GetResult{}
	for rows.Next() {
		var id, text, rawMeta string
		if err := rows.Scan(&id, &text, &rawMeta); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		var meta map[string]any
		if err := json.Unmarshal([]byte(rawMeta), &meta); err != nil {
			return nil, fmt.Errorf("decode metadata for %s: %w", id, err)
		}
		if meta == nil {
			meta = map[string]any{}
		}
		result.IDs = append(result.IDs, id)
		result.Texts = append(result.Texts, text)
		result.Metadatas = append(result.Metadatas, meta)
	}
	return result, rows.Err()
}

func (s *SQLiteStore) Delete(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	placeholders := strings.Repeat("?,", len(ids))
	args := make([]any, 0, len(ids)+1)
	args = append(args, s.collection)
	for _, id := range ids {
		args = append(args, id)
	}
	// Unknown ids simply match no rows; deletion stays idempotent.
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM documents WHERE collection = ? AND id IN (`+placeholders[:len(placeholders)-1]+`)`,
		args...)
	if err != nil {
		return fmt.Errorf("delete documents: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Update(ctx context.Context, ids []string, vectors [][]float32, texts []string, metadatas []map[string]any) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin update: %w", err)
	}
	defer tx.Rollback()

	for i, id := range ids {
		meta, err := json.Marshal(metadatas[i])
		if err != nil {
			return fmt.Errorf("encode metadata for %s: %w", id, err)
		}
		res, err := tx.ExecContext(ctx, `
			UPDATE documents SET content = ?, embedding = ?, metadata = ?
			WHERE collection = ? AND id = ?
		`, texts[i], encodeFloat32s(vectors[i]), string(meta), s.collection, id)
		if err != nil {
			return fmt.Errorf("update %s: %w", id, err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("update %s: %w", id, err)
		}
		if affected == 0 {
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		}
	}
	return tx.Commit()
}

func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM documents WHERE collection = ?`, s.collection).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count documents: %w", err)
	}
	return n, nil
}

func (s *SQLiteStore) Meta() map[string]any {
	return map[string]any{
		"name":       s.collection,
		"created_at": s.createdAt,
		"dimension":  s.dimension,
	}
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

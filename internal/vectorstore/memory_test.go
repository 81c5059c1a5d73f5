package vectorstore

import (
	"context"
	"errors"
	"testing"
)

func insertThree(t *testing.T, e Engine) {
	t.Helper()
	err := e.Insert(context.Background(),
		[]string{"a", "b", "c"},
		[][]float32{{1, 0, 0}, {0.9, 0.1, 0}, {0, 0, 1}},
		[]string{"text a", "text b", "text c"},
		[]map[string]any{
			{"group": "x", "rank": 1},
			{"group": "x", "rank": 2},
			{"group": "y", "rank": 3},
		})
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
}

func TestMemoryStore_QueryOrdersByDistance(t *testing.T) {
	store := NewMemoryStore("test")
	defer store.Close()
	insertThree(t, store)

	result, err := store.Query(context.Background(), []float32{1, 0, 0}, 3, nil)
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if got := result.IDs; len(got) != 3 || got[0] != "a" || got[1] != "b" || got[2] != "c" {
		t.Fatalf("ids = %v, want [a b c]", got)
	}
	for i := 1; i < len(result.Distances); i++ {
		if result.Distances[i-1] > result.Distances[i] {
			t.Errorf("distances not ascending: %v", result.Distances)
		}
	}
	if result.Distances[0] > 1e-6 {
		t.Errorf("identical vector should have ~0 distance, got %f", result.Distances[0])
	}
}

func TestMemoryStore_QueryHonorsKAndFilter(t *testing.T) {
	store := NewMemoryStore("test")
	defer store.Close()
	insertThree(t, store)
	ctx := context.Background()

	result, err := store.Query(ctx, []float32{1, 0, 0}, 1, nil)
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(result.IDs) != 1 {
		t.Fatalf("got %d results, want 1", len(result.IDs))
	}

	result, err = store.Query(ctx, []float32{1, 0, 0}, 10, Filter{"group": "y"})
	if err != nil {
		t.Fatalf("filtered Query failed: %v", err)
	}
	if len(result.IDs) != 1 || result.IDs[0] != "c" {
		t.Fatalf("filtered ids = %v, want [c]", result.IDs)
	}
}

func TestMemoryStore_QueryEmpty(t *testing.T) {
	store := NewMemoryStore("test")
	defer store.Close()

	result, err := store.Query(context.Background(), []float32{1, 0, 0}, 5, nil)
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(result.IDs) != 0 {
		t.Fatalf("got %d results from empty store", len(result.IDs))
	}
}

func TestMemoryStore_GetSkipsMissing(t *testing.T) {
	store := NewMemoryStore("test")
	defer store.Close()
	insertThree(t, store)

	result, err := store.Get(context.Background(), []string{"a", "missing", "c"})
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if len(result.IDs) != 2 {
		t.Fatalf("ids = %v, want a and c only", result.IDs)
	}
}

func TestMemoryStore_UpdateMissingIsNotFound(t *testing.T) {
	store := NewMemoryStore("test")
	defer store.Close()
	insertThree(t, store)
	ctx := context.Background()

	err := store.Update(ctx, []string{"ghost"}, [][]float32{{1, 0, 0}}, []string{"t"}, []map[string]any{{}})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}

	// A batch with one missing id must not partially apply.
	err = store.Update(ctx,
		[]string{"a", "ghost"},
		[][]float32{{0, 1, 0}, {0, 1, 0}},
		[]string{"changed", "t"},
		[]map[string]any{{}, {}})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	got, err := store.Get(ctx, []string{"a"})
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Texts[0] != "text a" {
		t.Errorf("text = %q, update partially applied", got.Texts[0])
	}
}

func TestMemoryStore_DeleteIsIdempotent(t *testing.T) {
	store := NewMemoryStore("test")
	defer store.Close()
	insertThree(t, store)
	ctx := context.Background()

	if err := store.Delete(ctx, []string{"a", "never-there"}); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if err := store.Delete(ctx, []string{"a"}); err != nil {
		t.Fatalf("repeated Delete failed: %v", err)
	}
	n, err := store.Count(ctx)
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if n != 2 {
		t.Errorf("count = %d, want 2", n)
	}
}

func TestMemoryStore_DimensionMismatch(t *testing.T) {
	store := NewMemoryStore("test")
	defer store.Close()
	insertThree(t, store)

	_, err := store.Query(context.Background(), []float32{1, 0}, 5, nil)
	if !errors.Is(err, ErrDimension) {
		t.Fatalf("err = %v, want ErrDimension", err)
	}
}

func TestMemoryStore_MetaHasCreationTimestamp(t *testing.T) {
	store := NewMemoryStore("notes")
	defer store.Close()

	meta := store.Meta()
	if meta["name"] != "notes" {
		t.Errorf("name = %v", meta["name"])
	}
	if meta["created_at"] == "" || meta["created_at"] == nil {
		t.Error("created_at missing")
	}
}

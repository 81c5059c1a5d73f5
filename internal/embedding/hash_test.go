package embedding

import (
	"context"
	"math"
	"testing"
)

func TestHashProvider_Deterministic(t *testing.T) {
	p := NewHashProvider(0)
	ctx := context.Background()

	a, err := p.Embed(ctx, "Go is expressive, concise, clean, and efficient")
	if err != nil {
		t.Fatalf("Embed failed: %v", err)
	}
	b, err := p.Embed(ctx, "Go is expressive, concise, clean, and efficient")
	if err != nil {
		t.Fatalf("Embed failed: %v", err)
	}
	if len(a) != DefaultDimension {
		t.Fatalf("dimension = %d, want %d", len(a), DefaultDimension)
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("embeddings differ at %d: %f != %f", i, a[i], b[i])
		}
	}
}

func TestHashProvider_OutputIsNormalized(t *testing.T) {
	p := NewHashProvider(64)
	v, err := p.Embed(context.Background(), "some text with several tokens")
	if err != nil {
		t.Fatalf("Embed failed: %v", err)
	}
	var norm float64
	for _, x := range v {
		norm += float64(x) * float64(x)
	}
	if math.Abs(norm-1) > 1e-5 {
		t.Errorf("squared norm = %f, want 1", norm)
	}
}

func TestHashProvider_SimilarTextsAreCloser(t *testing.T) {
	p := NewHashProvider(0)
	ctx := context.Background()

	base, _ := p.Embed(ctx, "goroutines and channels in go")
	near, _ := p.Embed(ctx, "channels and goroutines in go programs")
	far, _ := p.Embed(ctx, "sourdough bread baking recipe")

	if dot(base, near) <= dot(base, far) {
		t.Errorf("similar text scored %f, unrelated %f", dot(base, near), dot(base, far))
	}
}

func TestHashProvider_EmptyText(t *testing.T) {
	p := NewHashProvider(0)
	v, err := p.Embed(context.Background(), "")
	if err != nil {
		t.Fatalf("Embed failed: %v", err)
	}
	if len(v) != DefaultDimension {
		t.Fatalf("dimension = %d", len(v))
	}
}

func TestHashProvider_EmbedBatchKeepsOrder(t *testing.T) {
	p := NewHashProvider(0)
	ctx := context.Background()

	texts := []string{"first", "second", "third"}
	batch, err := p.EmbedBatch(ctx, texts)
	if err != nil {
		t.Fatalf("EmbedBatch failed: %v", err)
	}
	if len(batch) != len(texts) {
		t.Fatalf("got %d vectors, want %d", len(batch), len(texts))
	}
	for i, text := range texts {
		single, _ := p.Embed(ctx, text)
		for j := range single {
			if batch[i][j] != single[j] {
				t.Fatalf("batch[%d] differs from single embedding", i)
			}
		}
	}
}

func dot(a, b []float32) float64 {
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}

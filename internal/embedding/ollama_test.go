package embedding

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newOllamaTestServer(t *testing.T, embedding []float32) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/embeddings" {
			http.NotFound(w, r)
			return
		}
		var req ollamaEmbedRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if req.Model == "" || req.Prompt == "" {
			http.Error(w, "missing model or prompt", http.StatusBadRequest)
			return
		}
		json.NewEncoder(w).Encode(ollamaEmbedResponse{Embedding: embedding})
	}))
}

func TestOllamaProvider_Embed(t *testing.T) {
	server := newOllamaTestServer(t, []float32{0.1, 0.2, 0.3})
	defer server.Close()

	p := NewOllamaProvider(server.URL, "nomic-embed-text")
	v, err := p.Embed(context.Background(), "hello world")
	if err != nil {
		t.Fatalf("Embed failed: %v", err)
	}
	if len(v) != 3 || v[0] != 0.1 {
		t.Fatalf("embedding = %v", v)
	}
	if p.Dimension() != 3 {
		t.Errorf("Dimension = %d, want 3", p.Dimension())
	}
}

func TestOllamaProvider_Probe(t *testing.T) {
	server := newOllamaTestServer(t, []float32{1, 2, 3, 4})
	defer server.Close()

	p := NewOllamaProvider(server.URL, "nomic-embed-text")
	if p.Dimension() != 0 {
		t.Fatalf("Dimension before probe = %d, want 0", p.Dimension())
	}
	dim, err := p.Probe(context.Background())
	if err != nil {
		t.Fatalf("Probe failed: %v", err)
	}
	if dim != 4 {
		t.Errorf("probed dimension = %d, want 4", dim)
	}
}

func TestOllamaProvider_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer server.Close()

	p := NewOllamaProvider(server.URL, "missing-model")
	if _, err := p.Embed(context.Background(), "text"); err == nil {
		t.Fatal("expected error from server failure")
	}
}

func TestOllamaProvider_EmptyEmbedding(t *testing.T) {
	server := newOllamaTestServer(t, nil)
	defer server.Close()

	p := NewOllamaProvider(server.URL, "nomic-embed-text")
	if _, err := p.Embed(context.Background(), "text"); err == nil {
		t.Fatal("expected error for empty embedding")
	}
}

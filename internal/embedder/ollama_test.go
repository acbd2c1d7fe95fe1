package embedder

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/54b3r/analyst-go/internal/rag"
)

func Test_OllamaEmbedder_PrefixesByIntent(t *testing.T) {
	t.Parallel()

	var gotInputs []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req ollamaEmbedRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		gotInputs = req.Input
		resp := ollamaEmbedResponse{Embeddings: make([][]float32, len(req.Input))}
		for i := range resp.Embeddings {
			resp.Embeddings[i] = []float32{0.1, 0.2}
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	emb := NewOllamaEmbedder(&OllamaConfig{Host: srv.URL, Model: "nomic-embed-text"})

	if _, err := emb.Embed(context.Background(), []string{"quarterly revenue"}, rag.IntentDocument); err != nil {
		t.Fatalf("Embed document: %v", err)
	}
	if len(gotInputs) != 1 || !strings.HasPrefix(gotInputs[0], "search_document: ") {
		t.Errorf("document input = %v, want search_document prefix", gotInputs)
	}

	if _, err := emb.Embed(context.Background(), []string{"what was revenue?"}, rag.IntentQuery); err != nil {
		t.Fatalf("Embed query: %v", err)
	}
	if len(gotInputs) != 1 || !strings.HasPrefix(gotInputs[0], "search_query: ") {
		t.Errorf("query input = %v, want search_query prefix", gotInputs)
	}
}

func Test_OllamaEmbedder_ServerError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(ollamaEmbedResponse{Error: "model not found"})
	}))
	defer srv.Close()

	emb := NewOllamaEmbedder(&OllamaConfig{Host: srv.URL, Model: "missing"})
	_, err := emb.Embed(context.Background(), []string{"x"}, rag.IntentDocument)
	if err == nil {
		t.Fatal("expected error from 500 response")
	}
	if !strings.Contains(err.Error(), "model not found") {
		t.Errorf("error %q does not surface the server message", err)
	}
}

func Test_OllamaEmbedder_CountMismatch(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(ollamaEmbedResponse{Embeddings: [][]float32{{0.1}}})
	}))
	defer srv.Close()

	emb := NewOllamaEmbedder(&OllamaConfig{Host: srv.URL, Model: "nomic-embed-text"})
	_, err := emb.Embed(context.Background(), []string{"a", "b"}, rag.IntentDocument)
	if err == nil {
		t.Fatal("expected error when embedding count mismatches input count")
	}
}

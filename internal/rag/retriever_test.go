package rag

import (
	"context"
	"errors"
	"testing"
)

// stubEmbedder returns a fixed embedding and records the intent it was
// called with.
type stubEmbedder struct {
	embedding  []float32
	err        error
	lastIntent Intent
	lastTexts  []string
}

func (s *stubEmbedder) Embed(_ context.Context, texts []string, intent Intent) ([][]float32, error) {
	s.lastIntent = intent
	s.lastTexts = texts
	if s.err != nil {
		return nil, s.err
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = s.embedding
	}
	return out, nil
}

// stubStore records the search it received and replays canned documents.
type stubStore struct {
	docs      []Document
	err       error
	lastQuery []float32
	lastTopK  int
}

func (s *stubStore) Upsert(context.Context, []Document, [][]float32) error { return nil }
func (s *stubStore) Count(context.Context) (uint64, error)                 { return uint64(len(s.docs)), nil }
func (s *stubStore) Close() error                                          { return nil }

func (s *stubStore) Search(_ context.Context, query []float32, topK int) ([]Document, error) {
	s.lastQuery = query
	s.lastTopK = topK
	return s.docs, s.err
}

func Test_NewRetriever_Validation(t *testing.T) {
	t.Parallel()

	if _, err := NewRetriever(nil, &stubStore{}, 5); err == nil {
		t.Error("expected error for nil embedder")
	}
	if _, err := NewRetriever(&stubEmbedder{}, nil, 5); err == nil {
		t.Error("expected error for nil store")
	}
}

func Test_Retrieve_UsesQueryIntent(t *testing.T) {
	t.Parallel()

	emb := &stubEmbedder{embedding: []float32{0.1, 0.2}}
	store := &stubStore{docs: []Document{{ID: "chunk_0"}}}
	r, err := NewRetriever(emb, store, 5)
	if err != nil {
		t.Fatalf("new retriever: %v", err)
	}

	docs, err := r.Retrieve(context.Background(), "market share?", 3)
	if err != nil {
		t.Fatalf("retrieve: %v", err)
	}
	if emb.lastIntent != IntentQuery {
		t.Errorf("intent: want query, got %s", emb.lastIntent)
	}
	if len(emb.lastTexts) != 1 || emb.lastTexts[0] != "market share?" {
		t.Errorf("embedded texts: got %v", emb.lastTexts)
	}
	if store.lastTopK != 3 {
		t.Errorf("topK: want 3, got %d", store.lastTopK)
	}
	if len(docs) != 1 || docs[0].ID != "chunk_0" {
		t.Errorf("docs: got %v", docs)
	}
}

func Test_Retrieve_DefaultTopK(t *testing.T) {
	t.Parallel()

	emb := &stubEmbedder{embedding: []float32{1}}
	store := &stubStore{}
	r, err := NewRetriever(emb, store, 7)
	if err != nil {
		t.Fatalf("new retriever: %v", err)
	}

	if _, err := r.Retrieve(context.Background(), "q", 0); err != nil {
		t.Fatalf("retrieve: %v", err)
	}
	if store.lastTopK != 7 {
		t.Errorf("default topK: want 7, got %d", store.lastTopK)
	}
}

func Test_Retrieve_EmbedderFailure(t *testing.T) {
	t.Parallel()

	emb := &stubEmbedder{err: errors.New("backend down")}
	r, err := NewRetriever(emb, &stubStore{}, 5)
	if err != nil {
		t.Fatalf("new retriever: %v", err)
	}

	if _, err := r.Retrieve(context.Background(), "q", 1); err == nil {
		t.Error("expected error when embedder fails")
	}
}

func Test_Retrieve_SearchFailure(t *testing.T) {
	t.Parallel()

	emb := &stubEmbedder{embedding: []float32{1}}
	store := &stubStore{err: errors.New("search failed")}
	r, err := NewRetriever(emb, store, 5)
	if err != nil {
		t.Fatalf("new retriever: %v", err)
	}

	if _, err := r.Retrieve(context.Background(), "q", 1); err == nil {
		t.Error("expected error when search fails")
	}
}

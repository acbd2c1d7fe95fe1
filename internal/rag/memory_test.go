package rag

import (
	"context"
	"math"
	"testing"
)

// upsertTestDocs loads three orthogonal unit vectors into a fresh store.
func upsertTestDocs(t *testing.T) *MemoryStore {
	t.Helper()
	s := NewMemoryStore()
	docs := []Document{
		{ID: "chunk_0", Content: "market share", ChunkIndex: 0},
		{ID: "chunk_1", Content: "growth rate", ChunkIndex: 1},
		{ID: "chunk_2", Content: "competitors", ChunkIndex: 2},
	}
	embeddings := [][]float32{
		{1, 0, 0},
		{0, 1, 0},
		{0, 0, 1},
	}
	if err := s.Upsert(context.Background(), docs, embeddings); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	return s
}

func Test_MemoryStore_SearchRanksBySimilarity(t *testing.T) {
	t.Parallel()
	s := upsertTestDocs(t)

	docs, err := s.Search(context.Background(), []float32{1, 0, 0}, 3)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(docs) != 3 {
		t.Fatalf("want 3 results, got %d", len(docs))
	}
	if docs[0].ID != "chunk_0" {
		t.Errorf("top result: want chunk_0, got %s", docs[0].ID)
	}
	if math.Abs(float64(docs[0].Score)-1.0) > 1e-6 {
		t.Errorf("identity query: want score 1.0, got %v", docs[0].Score)
	}
	for i := 1; i < len(docs); i++ {
		if docs[i].Score > docs[i-1].Score {
			t.Errorf("results not descending at %d: %v > %v", i, docs[i].Score, docs[i-1].Score)
		}
	}
}

func Test_MemoryStore_TopKClamped(t *testing.T) {
	t.Parallel()
	s := upsertTestDocs(t)

	docs, err := s.Search(context.Background(), []float32{1, 0, 0}, 50)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(docs) != 3 {
		t.Errorf("topK beyond store size: want 3 results, got %d", len(docs))
	}
}

func Test_MemoryStore_EmptySearch(t *testing.T) {
	t.Parallel()
	s := NewMemoryStore()

	docs, err := s.Search(context.Background(), []float32{1, 0, 0}, 5)
	if err != nil {
		t.Fatalf("search on empty store: %v", err)
	}
	if len(docs) != 0 {
		t.Errorf("want empty result, got %d docs", len(docs))
	}
}

func Test_MemoryStore_DimensionMismatchRejected(t *testing.T) {
	t.Parallel()
	s := upsertTestDocs(t)

	if err := s.Upsert(context.Background(), []Document{{ID: "bad"}}, [][]float32{{1, 0}}); err == nil {
		t.Error("expected error for mismatched upsert dimension")
	}
	if _, err := s.Search(context.Background(), []float32{1, 0}, 1); err == nil {
		t.Error("expected error for mismatched query dimension")
	}
}

func Test_MemoryStore_ParallelMismatchRejected(t *testing.T) {
	t.Parallel()
	s := NewMemoryStore()

	err := s.Upsert(context.Background(), []Document{{ID: "a"}, {ID: "b"}}, [][]float32{{1}})
	if err == nil {
		t.Error("expected error when docs and embeddings lengths differ")
	}
}

func Test_MemoryStore_TieBreakIsInsertionOrder(t *testing.T) {
	t.Parallel()
	s := NewMemoryStore()
	docs := []Document{{ID: "first"}, {ID: "second"}}
	// Identical vectors: both score equally against any query.
	embeddings := [][]float32{{1, 1, 0}, {1, 1, 0}}
	if err := s.Upsert(context.Background(), docs, embeddings); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	out, err := s.Search(context.Background(), []float32{1, 1, 0}, 2)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if out[0].ID != "first" || out[1].ID != "second" {
		t.Errorf("tie-break: want insertion order, got %s, %s", out[0].ID, out[1].ID)
	}
}

func Test_MemoryStore_Count(t *testing.T) {
	t.Parallel()
	s := upsertTestDocs(t)

	n, err := s.Count(context.Background())
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 3 {
		t.Errorf("want count 3, got %d", n)
	}
}

func Test_Cosine(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical", []float32{1, 2, 3}, []float32{1, 2, 3}, 1.0},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0.0},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, -1.0},
		{"zero vector", []float32{0, 0}, []float32{1, 1}, 0.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := float64(Cosine(tt.a, tt.b))
			if math.Abs(got-tt.want) > 1e-6 {
				t.Errorf("Cosine(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

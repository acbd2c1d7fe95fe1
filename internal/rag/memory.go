package rag

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
)

// MemoryStore is a flat in-process VectorStore using brute-force cosine
// similarity. It backs unit tests and offline runs where no Qdrant instance
// is available. The store holds a few dozen vectors at most, so a linear scan
// per query is the whole retrieval algorithm.
type MemoryStore struct {
	// mu guards the parallel slices below. Writes happen once at startup;
	// reads dominate afterwards.
	mu sync.RWMutex

	// dimension is fixed by the first upserted embedding; later inserts and
	// queries must match it.
	dimension int

	// docs and embeddings are parallel, in insertion order. Insertion order
	// is the tie-break for equal similarity scores.
	docs       []Document
	embeddings [][]float32
}

// NewMemoryStore constructs an empty MemoryStore.
func NewMemoryStore() *MemoryStore { return &MemoryStore{} }

// Upsert appends documents with their embeddings. The first batch fixes the
// store's dimension; any later dimension mismatch is rejected.
func (s *MemoryStore) Upsert(_ context.Context, docs []Document, embeddings [][]float32) error {
	if len(docs) != len(embeddings) {
		return fmt.Errorf("memory store: %d documents but %d embeddings", len(docs), len(embeddings))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i, emb := range embeddings {
		if s.dimension == 0 {
			s.dimension = len(emb)
		}
		if len(emb) != s.dimension {
			return fmt.Errorf("memory store: embedding %d has dimension %d, store expects %d",
				i, len(emb), s.dimension)
		}
	}

	s.docs = append(s.docs, docs...)
	s.embeddings = append(s.embeddings, embeddings...)
	return nil
}

// Search returns the topK stored documents closest to the query embedding by
// cosine similarity, descending. Ties resolve to the earlier-inserted entry.
// An empty store yields an empty result, not an error.
func (s *MemoryStore) Search(_ context.Context, queryEmbedding []float32, topK int) ([]Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.docs) == 0 {
		return []Document{}, nil
	}
	if s.dimension != len(queryEmbedding) {
		return nil, fmt.Errorf("memory store: query has dimension %d, store expects %d",
			len(queryEmbedding), s.dimension)
	}
	if topK > len(s.docs) {
		topK = len(s.docs)
	}
	if topK < 1 {
		topK = 1
	}

	idx := make([]int, len(s.docs))
	scores := make([]float32, len(s.docs))
	for i := range s.docs {
		idx[i] = i
		scores[i] = Cosine(s.embeddings[i], queryEmbedding)
	}

	// Stable sort keeps insertion order among equal scores.
	sort.SliceStable(idx, func(a, b int) bool {
		return scores[idx[a]] > scores[idx[b]]
	})

	out := make([]Document, 0, topK)
	for _, i := range idx[:topK] {
		doc := s.docs[i]
		doc.Score = scores[i]
		out = append(out, doc)
	}
	return out, nil
}

// Count returns the number of stored documents.
func (s *MemoryStore) Count(_ context.Context) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return uint64(len(s.docs)), nil
}

// Close is a no-op for the in-process store.
func (s *MemoryStore) Close() error { return nil }

// Cosine returns the cosine similarity of a and b. Either vector having zero
// magnitude yields 0 rather than NaN.
func Cosine(a, b []float32) float32 {
	var dot, na, nb float64
	n := min(len(a), len(b))
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(na) * math.Sqrt(nb)))
}

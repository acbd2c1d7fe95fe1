// Package rag defines the interfaces for retrieval-augmented generation
// components: vector storage, document retrieval, and embedding.
// Concrete implementations (Qdrant, in-memory) satisfy these interfaces so the
// agent layer never depends on a specific backend.
package rag

import (
	"context"
)

// Document represents a unit of retrieved or stored knowledge — one chunk of
// the source document plus its positional metadata.
type Document struct {
	// ID is the unique identifier for this document chunk.
	ID string

	// Content is the raw text content of the chunk.
	Content string

	// ChunkIndex is the 0-based position of this chunk in the source document.
	ChunkIndex int

	// StartOffset is the chunk's starting character offset in the source document.
	StartOffset int

	// EndOffset is the chunk's ending character offset (exclusive).
	EndOffset int

	// Score is the similarity score assigned during retrieval (0.0–1.0).
	// Zero value means the score was not computed.
	Score float32
}

// Length returns the chunk's character length, derived from its offsets.
func (d Document) Length() int { return d.EndOffset - d.StartOffset }

// Intent selects which embedding-space variant the model produces.
// Document and query vectors are commensurable (comparable via cosine
// similarity) but not identical for the same text.
type Intent string

const (
	// IntentDocument embeds text that will be stored and searched against.
	IntentDocument Intent = "document"
	// IntentQuery embeds a search query.
	IntentQuery Intent = "query"
)

// VectorStore is the interface for persisting and searching document embeddings.
// Implementations must be safe to call from multiple goroutines. The store is
// written once at startup and read-only during request serving.
type VectorStore interface {
	// Upsert stores or updates a batch of documents with their pre-computed embeddings.
	// The embeddings slice must be parallel to docs — embeddings[i] is the vector for docs[i].
	Upsert(ctx context.Context, docs []Document, embeddings [][]float32) error

	// Search performs a cosine similarity search and returns the top-k most
	// relevant documents for the given query embedding, descending by score.
	// topK is clamped to the number of stored entries; searching an empty
	// store returns an empty slice, not an error.
	Search(ctx context.Context, queryEmbedding []float32, topK int) ([]Document, error)

	// Count returns the number of stored documents. Used at startup to decide
	// whether a previously built index can be reused without re-embedding.
	Count(ctx context.Context) (uint64, error)

	// Close releases any resources held by the store.
	Close() error
}

// Embedder is the interface for converting text into dense vector embeddings.
// Implementations must be safe to call from multiple goroutines.
type Embedder interface {
	// Embed converts a batch of texts into their corresponding embeddings
	// under the given intent. The returned slice is parallel to the input
	// slice — implementations that fan out per-item calls must gather
	// results back into input order.
	Embed(ctx context.Context, texts []string, intent Intent) ([][]float32, error)
}

// Retriever is the high-level interface used by the agents to fetch relevant
// context for a given query. It combines embedding and vector search.
// Implementations must be safe to call from multiple goroutines.
type Retriever interface {
	// Retrieve returns the top-k most relevant documents for the given query.
	Retrieve(ctx context.Context, query string, topK int) ([]Document, error)
}

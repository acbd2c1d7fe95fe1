// Package embedder provides implementations of the rag.Embedder interface for
// converting text into dense vector embeddings. The Gemini backend uses the
// official SDK; OpenAI, Azure OpenAI, and Ollama are reached via plain HTTP
// with no additional dependencies. All implementations are intent-aware:
// document chunks and search queries are projected differently, which matters
// for asymmetric retrieval models.
package embedder

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"github.com/54b3r/analyst-go/internal/rag"
)

// GeminiEmbedder implements rag.Embedder using the Gemini embedContent API.
// It is safe for concurrent use.
type GeminiEmbedder struct {
	// client is the shared Gemini SDK client.
	client *genai.Client
	// model is the embedding model name (e.g. "text-embedding-004").
	model string
}

// GeminiConfig holds the settings for constructing a GeminiEmbedder.
type GeminiConfig struct {
	// APIKey is the Gemini API key.
	APIKey string
	// Model is the embedding model name (e.g. "text-embedding-004").
	Model string
}

// NewGeminiEmbedder constructs a GeminiEmbedder from the given config.
func NewGeminiEmbedder(ctx context.Context, cfg *GeminiConfig) (*GeminiEmbedder, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini embedder: create client: %w", err)
	}
	return &GeminiEmbedder{client: client, model: cfg.Model}, nil
}

// geminiTaskType maps a retrieval intent onto the embedContent task type.
// Indexed chunks and search queries must use their respective task types;
// mixing them silently degrades retrieval quality.
func geminiTaskType(intent rag.Intent) string {
	if intent == rag.IntentQuery {
		return "RETRIEVAL_QUERY"
	}
	return "RETRIEVAL_DOCUMENT"
}

// Embed converts a batch of texts into their corresponding embeddings.
// The returned slice is parallel to the input slice.
func (e *GeminiEmbedder) Embed(ctx context.Context, texts []string, intent rag.Intent) ([][]float32, error) {
	contents := make([]*genai.Content, len(texts))
	for i, t := range texts {
		contents[i] = genai.NewContentFromText(t, genai.RoleUser)
	}

	resp, err := e.client.Models.EmbedContent(ctx, e.model, contents, &genai.EmbedContentConfig{
		TaskType: geminiTaskType(intent),
	})
	if err != nil {
		return nil, fmt.Errorf("gemini embedder: embed content: %w", err)
	}

	if len(resp.Embeddings) != len(texts) {
		return nil, fmt.Errorf("gemini embedder: expected %d embeddings, got %d", len(texts), len(resp.Embeddings))
	}

	embeddings := make([][]float32, len(texts))
	for i, emb := range resp.Embeddings {
		if emb == nil || len(emb.Values) == 0 {
			return nil, fmt.Errorf("gemini embedder: empty embedding at index %d", i)
		}
		embeddings[i] = emb.Values
	}
	return embeddings, nil
}

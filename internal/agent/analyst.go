// Package agent implements the market analyst agents on top of the Eino chat
// model abstraction: retrieval-augmented question answering, whole-document
// summarization, structured JSON extraction, and LLM-based routing between
// the three. Each agent builds its own prompt, calls the generation backend
// at a task-specific temperature, and post-processes the raw model output
// into a well-typed result.
package agent

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/54b3r/analyst-go/internal/budget"
	"github.com/54b3r/analyst-go/internal/logging"
	"github.com/54b3r/analyst-go/internal/rag"
)

// Per-task decoding temperatures. Routing and extraction run near
// deterministic; summarization gets slightly more freedom.
const (
	qaTemperature        float32 = 0.2
	summarizeTemperature float32 = 0.3
	extractTemperature   float32 = 0.1
	routeTemperature     float32 = 0.1
)

// Generator is the minimal generation surface the agents need from a chat
// model. Any Eino chat model satisfies it; tests substitute a fake.
type Generator interface {
	Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error)
}

// Config holds the dependencies required to construct an Analyst.
type Config struct {
	// ChatModel is the LLM backend constructed by the provider factory.
	ChatModel Generator

	// Retriever serves top-K document chunks for Q&A queries.
	Retriever rag.Retriever

	// Document is the full source document text, used by the summarizer and
	// extractor which operate on the whole document rather than a retrieval
	// subset.
	Document string

	// DocumentTitle labels the document in prompts. Optional.
	DocumentTitle string

	// DefaultTopK is the retrieval depth used when a request does not specify
	// one. Defaults to 5 if zero.
	DefaultTopK int

	// MaxQuestionLen bounds the accepted question/query length in characters.
	// Defaults to 500 if zero.
	MaxQuestionLen int

	// MaxContextTokens is the estimated token budget for prompt context.
	// Retrieved chunks are dropped lowest-similarity-first and the full
	// document is truncated to fit. Defaults to budget.DefaultMaxContextTokens
	// if zero.
	MaxContextTokens int
}

// Analyst bundles the four market research agents around a shared chat model,
// retriever, and source document. It is safe for concurrent use: all fields
// are set at construction and never mutated.
type Analyst struct {
	model            Generator
	retriever        rag.Retriever
	document         string
	documentTitle    string
	defaultTopK      int
	maxQuestionLen   int
	maxContextTokens int
}

// New constructs an Analyst from the provided Config.
func New(cfg *Config) (*Analyst, error) {
	if cfg.ChatModel == nil {
		return nil, fmt.Errorf("agent: ChatModel must not be nil")
	}
	if cfg.Retriever == nil {
		return nil, fmt.Errorf("agent: Retriever must not be nil")
	}

	topK := cfg.DefaultTopK
	if topK <= 0 {
		topK = 5
	}
	maxLen := cfg.MaxQuestionLen
	if maxLen <= 0 {
		maxLen = 500
	}
	maxCtx := cfg.MaxContextTokens
	if maxCtx <= 0 {
		maxCtx = budget.DefaultMaxContextTokens
	}

	return &Analyst{
		model:            cfg.ChatModel,
		retriever:        cfg.Retriever,
		document:         cfg.Document,
		documentTitle:    cfg.DocumentTitle,
		defaultTopK:      topK,
		maxQuestionLen:   maxLen,
		maxContextTokens: maxCtx,
	}, nil
}

// generate calls the chat model and maps failures onto UpstreamError.
func (a *Analyst) generate(ctx context.Context, messages []*schema.Message, opts ...model.Option) (string, error) {
	msg, err := a.model.Generate(ctx, messages, opts...)
	if err != nil {
		return "", &UpstreamError{Stage: "generation", Err: err}
	}
	if msg == nil || strings.TrimSpace(msg.Content) == "" {
		return "", &UpstreamError{Stage: "generation", Err: fmt.Errorf("model returned empty response")}
	}
	return msg.Content, nil
}

// documentContext returns the full document text truncated to the context
// budget, logging when content is dropped.
func (a *Analyst) documentContext(ctx context.Context, fixedTokens int) string {
	doc := budget.TruncateText(a.document, a.maxContextTokens-fixedTokens)
	if len(doc) < len(a.document) {
		logging.FromContext(ctx).Warn("budget: truncated document to fit context window",
			slog.Int("document_chars", len(a.document)),
			slog.Int("retained_chars", len(doc)),
			slog.Int("max_tokens", a.maxContextTokens),
		)
	}
	return doc
}

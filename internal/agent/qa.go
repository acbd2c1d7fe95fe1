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

// qaSystemPrompt grounds the model in the retrieved context and forbids
// answering from outside it.
const qaSystemPrompt = `You are a helpful AI assistant answering questions about a market research document.

Answer the question based ONLY on the provided context.
If the information is not in the context, say "I don't have sufficient information to answer this question."
Cite sources in your answer using [Source N] notation.
Be concise but comprehensive.`

// noContextInstruction replaces the retrieved context when the index returns
// nothing. The model must acknowledge the gap instead of fabricating an
// answer.
const noContextInstruction = `No context is available from the document index for this question.
State clearly that you do not have sufficient information to answer, and do not invent facts.`

// SourceMetadata describes one retrieved chunk backing an answer.
type SourceMetadata struct {
	// ChunkIndex is the chunk's position in the source document.
	ChunkIndex int `json:"chunk_index"`
	// StartOffset and EndOffset locate the chunk in the original text.
	StartOffset int `json:"start_offset"`
	EndOffset   int `json:"end_offset"`
	// Score is the cosine similarity between the query and this chunk.
	Score float32 `json:"score"`
}

// QAResult is the Q&A agent's response.
type QAResult struct {
	// Answer is the generated answer text.
	Answer string `json:"answer"`
	// Sources lists the IDs of the chunks used as context.
	Sources []string `json:"sources"`
	// Confidence estimates answer reliability in [0, 1].
	Confidence float64 `json:"confidence"`
	// SourceMetadata carries per-chunk positional metadata and scores.
	SourceMetadata []SourceMetadata `json:"source_metadata"`
}

// Answer runs the retrieval-augmented Q&A flow: embed the question, retrieve
// the top-K most similar chunks, prompt the model with that context, and
// score the answer's confidence. topK values outside [1, 10] are clamped;
// zero selects the configured default.
func (a *Analyst) Answer(ctx context.Context, question string, topK int) (*QAResult, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, fmt.Errorf("%w: question must not be empty", ErrInvalidInput)
	}
	if len(question) > a.maxQuestionLen {
		return nil, fmt.Errorf("%w: question exceeds %d characters", ErrInvalidInput, a.maxQuestionLen)
	}
	if topK <= 0 {
		topK = a.defaultTopK
	}
	if topK > 10 {
		topK = 10
	}

	docs, err := a.retriever.Retrieve(ctx, question, topK)
	if err != nil {
		return nil, &UpstreamError{Stage: "retrieval", Err: err}
	}

	fixed := budget.Estimate(qaSystemPrompt) + budget.Estimate(question)
	docs, dropped := budget.TrimContext(docs, fixed, a.maxContextTokens)
	if dropped > 0 {
		logging.FromContext(ctx).Warn("budget: dropped retrieved chunks to fit context window",
			slog.Int("dropped", dropped),
			slog.Int("retained", len(docs)),
		)
	}

	contextBlock := noContextInstruction
	if len(docs) > 0 {
		contextBlock = buildSourceContext(docs)
	}

	messages := []*schema.Message{
		schema.SystemMessage(qaSystemPrompt),
		schema.UserMessage(fmt.Sprintf("Context:\n%s\n\nQuestion: %s", contextBlock, question)),
	}

	answer, err := a.generate(ctx, messages,
		model.WithTemperature(qaTemperature),
		model.WithMaxTokens(512),
	)
	if err != nil {
		return nil, err
	}

	result := &QAResult{
		Answer:     answer,
		Sources:    make([]string, 0, len(docs)),
		Confidence: scoreConfidence(question, answer, docs),
	}
	for _, doc := range docs {
		result.Sources = append(result.Sources, doc.ID)
		result.SourceMetadata = append(result.SourceMetadata, SourceMetadata{
			ChunkIndex:  doc.ChunkIndex,
			StartOffset: doc.StartOffset,
			EndOffset:   doc.EndOffset,
			Score:       doc.Score,
		})
	}
	return result, nil
}

// buildSourceContext formats retrieved chunks as numbered sources so the
// model can cite them with [Source N] notation.
func buildSourceContext(docs []rag.Document) string {
	var sb strings.Builder
	for i, doc := range docs {
		fmt.Fprintf(&sb, "[Source %d]\n%s\n\n", i+1, doc.Content)
	}
	return strings.TrimRight(sb.String(), "\n")
}

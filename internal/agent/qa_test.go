package agent

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/54b3r/analyst-go/internal/rag"
)

func marketDocs() []rag.Document {
	return []rag.Document{
		{ID: "chunk_0", Content: "Company X holds 12% market share.", ChunkIndex: 0, StartOffset: 0, EndOffset: 33, Score: 0.92},
		{ID: "chunk_1", Content: "The market is projected to grow at 14% CAGR.", ChunkIndex: 1, StartOffset: 25, EndOffset: 69, Score: 0.81},
	}
}

func Test_Answer_RejectsInvalidQuestions(t *testing.T) {
	t.Parallel()
	a := newTestAnalyst(t, &fakeModel{responses: []string{"x"}}, &fakeRetriever{}, "doc")

	if _, err := a.Answer(context.Background(), "   ", 5); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("empty question: err = %v, want ErrInvalidInput", err)
	}
	long := strings.Repeat("q", 501)
	if _, err := a.Answer(context.Background(), long, 5); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("oversized question: err = %v, want ErrInvalidInput", err)
	}
}

func Test_Answer_PromptCarriesRetrievedContext(t *testing.T) {
	t.Parallel()
	m := &fakeModel{responses: []string{"Company X holds 12% market share [Source 1]."}}
	r := &fakeRetriever{docs: marketDocs()}
	a := newTestAnalyst(t, m, r, "doc")

	result, err := a.Answer(context.Background(), "What is Company X's market share?", 1)
	if err != nil {
		t.Fatalf("Answer: %v", err)
	}

	prompt := m.lastPrompt(t)
	if !strings.Contains(prompt, "12%") {
		t.Error("prompt does not carry the retrieved chunk text")
	}
	if !strings.Contains(prompt, "[Source 1]") {
		t.Error("prompt does not number the sources")
	}
	if r.lastTopK != 1 {
		t.Errorf("retriever called with topK %d, want 1", r.lastTopK)
	}
	if len(result.Sources) != 1 || result.Sources[0] != "chunk_0" {
		t.Errorf("Sources = %v, want [chunk_0]", result.Sources)
	}
	if len(result.SourceMetadata) != 1 || result.SourceMetadata[0].ChunkIndex != 0 {
		t.Errorf("SourceMetadata = %+v", result.SourceMetadata)
	}
	if result.Confidence <= 0 || result.Confidence > 1 {
		t.Errorf("Confidence = %f, want in (0, 1]", result.Confidence)
	}
}

func Test_Answer_TopKDefaultsAndClamp(t *testing.T) {
	t.Parallel()
	r := &fakeRetriever{docs: marketDocs()}
	a := newTestAnalyst(t, &fakeModel{responses: []string{"answer 42"}}, r, "doc")

	if _, err := a.Answer(context.Background(), "what?", 0); err != nil {
		t.Fatalf("Answer: %v", err)
	}
	if r.lastTopK != 5 {
		t.Errorf("zero topK resolved to %d, want default 5", r.lastTopK)
	}

	if _, err := a.Answer(context.Background(), "what?", 99); err != nil {
		t.Fatalf("Answer: %v", err)
	}
	if r.lastTopK != 10 {
		t.Errorf("oversized topK resolved to %d, want clamp 10", r.lastTopK)
	}
}

func Test_Answer_EmptyIndexStillGenerates(t *testing.T) {
	t.Parallel()
	m := &fakeModel{responses: []string{"I don't have sufficient information to answer this question."}}
	a := newTestAnalyst(t, m, &fakeRetriever{}, "doc")

	result, err := a.Answer(context.Background(), "What is the market share?", 5)
	if err != nil {
		t.Fatalf("Answer: %v", err)
	}
	if len(m.calls) != 1 {
		t.Fatal("generation must still run with an empty index")
	}
	if !strings.Contains(m.lastPrompt(t), "No context is available") {
		t.Error("prompt missing the explicit no-context instruction")
	}
	if result.Confidence != noContextConfidence {
		t.Errorf("Confidence = %f, want floor %f", result.Confidence, noContextConfidence)
	}
	if len(result.Sources) != 0 {
		t.Errorf("Sources = %v, want empty", result.Sources)
	}
}

func Test_Answer_RetrievalFailureIsUpstream(t *testing.T) {
	t.Parallel()
	a := newTestAnalyst(t, &fakeModel{responses: []string{"x"}}, &fakeRetriever{err: errors.New("qdrant unavailable")}, "doc")

	_, err := a.Answer(context.Background(), "what?", 5)
	if !IsUpstream(err) {
		t.Errorf("err = %v, want UpstreamError", err)
	}
}

func Test_Answer_GenerationFailureIsUpstream(t *testing.T) {
	t.Parallel()
	a := newTestAnalyst(t, &fakeModel{err: errors.New("model overloaded")}, &fakeRetriever{docs: marketDocs()}, "doc")

	_, err := a.Answer(context.Background(), "what?", 5)
	if !IsUpstream(err) {
		t.Errorf("err = %v, want UpstreamError", err)
	}
}

package agent

import (
	"context"
	"errors"
	"testing"
)

func Test_Route_EmptyQueryRejected(t *testing.T) {
	t.Parallel()
	a := newTestAnalyst(t, &fakeModel{responses: []string{"x"}}, &fakeRetriever{}, "doc")
	if _, err := a.Route(context.Background(), "  "); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("err = %v, want ErrInvalidInput", err)
	}
}

func Test_Route_DispatchesSummarize(t *testing.T) {
	t.Parallel()
	m := &fakeModel{responses: []string{
		`{"tool": "summarize", "confidence": 0.9, "reasoning": "user asked for an overview"}`,
		"A concise summary.",
	}}
	a := newTestAnalyst(t, m, &fakeRetriever{}, "full document")

	result, err := a.Route(context.Background(), "summarize the document for me")
	if err != nil {
		t.Fatalf("Route: %v", err)
	}
	if result.Routing.Tool != ToolSummarize {
		t.Errorf("Tool = %q, want summarize", result.Routing.Tool)
	}
	if result.Routing.Confidence != 0.9 {
		t.Errorf("Confidence = %f, want 0.9", result.Routing.Confidence)
	}
	summary, ok := result.Result.(*SummaryResult)
	if !ok {
		t.Fatalf("Result = %T, want *SummaryResult", result.Result)
	}
	if summary.Style != StyleComprehensive {
		t.Errorf("dispatched style = %q, want default comprehensive", summary.Style)
	}
	if len(m.calls) != 2 {
		t.Errorf("model called %d times, want routing + summarize", len(m.calls))
	}
}

func Test_Route_DispatchesQA(t *testing.T) {
	t.Parallel()
	m := &fakeModel{responses: []string{
		`{"tool": "qa", "confidence": 0.85, "reasoning": "specific question"}`,
		"Company X holds 12% market share [Source 1].",
	}}
	r := &fakeRetriever{docs: marketDocs()}
	a := newTestAnalyst(t, m, r, "doc")

	result, err := a.Route(context.Background(), "What is Company X's market share?")
	if err != nil {
		t.Fatalf("Route: %v", err)
	}
	if _, ok := result.Result.(*QAResult); !ok {
		t.Fatalf("Result = %T, want *QAResult", result.Result)
	}
	if r.lastTopK != 5 {
		t.Errorf("dispatched topK = %d, want default 5", r.lastTopK)
	}
}

func Test_Route_DispatchesExtract(t *testing.T) {
	t.Parallel()
	m := &fakeModel{responses: []string{
		`{"tool": "extract", "confidence": 0.95, "reasoning": "structured data requested"}`,
		`{"company_name": "TechVision"}`,
	}}
	a := newTestAnalyst(t, m, &fakeRetriever{}, "full document")

	result, err := a.Route(context.Background(), "give me the data as JSON")
	if err != nil {
		t.Fatalf("Route: %v", err)
	}
	extracted, ok := result.Result.(*ExtractResult)
	if !ok {
		t.Fatalf("Result = %T, want *ExtractResult", result.Result)
	}
	if !extracted.Success {
		t.Errorf("dispatched extraction failed: %q", extracted.Error)
	}
}

func Test_Route_UnknownToolFallsBackToQA(t *testing.T) {
	t.Parallel()
	m := &fakeModel{responses: []string{
		`{"tool": "translate", "confidence": 0.9, "reasoning": "looks like translation"}`,
		"answer text 42",
	}}
	a := newTestAnalyst(t, m, &fakeRetriever{docs: marketDocs()}, "doc")

	result, err := a.Route(context.Background(), "translate the report")
	if err != nil {
		t.Fatalf("Route: %v", err)
	}
	if result.Routing.Tool != ToolQA {
		t.Errorf("Tool = %q, want qa fallback", result.Routing.Tool)
	}
	if result.Routing.Confidence != fallbackConfidence {
		t.Errorf("Confidence = %f, want reduced %f", result.Routing.Confidence, fallbackConfidence)
	}
	if _, ok := result.Result.(*QAResult); !ok {
		t.Fatalf("Result = %T, want *QAResult", result.Result)
	}
}

func Test_Route_MalformedDecisionFallsBackToQA(t *testing.T) {
	t.Parallel()
	m := &fakeModel{responses: []string{
		"I think you should use the summarizer.",
		"answer text",
	}}
	a := newTestAnalyst(t, m, &fakeRetriever{docs: marketDocs()}, "doc")

	result, err := a.Route(context.Background(), "do something with the report")
	if err != nil {
		t.Fatalf("Route: %v", err)
	}
	if result.Routing.Tool != ToolQA {
		t.Errorf("Tool = %q, want qa fallback", result.Routing.Tool)
	}
}

func Test_Route_GenerationFailureIsUpstream(t *testing.T) {
	t.Parallel()
	a := newTestAnalyst(t, &fakeModel{err: errors.New("overloaded")}, &fakeRetriever{}, "doc")
	_, err := a.Route(context.Background(), "summarize this")
	if !IsUpstream(err) {
		t.Errorf("err = %v, want UpstreamError", err)
	}
}

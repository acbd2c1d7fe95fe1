package agent

import (
	"testing"

	"github.com/54b3r/analyst-go/internal/rag"
)

func docsWithScore(score float32) []rag.Document {
	return []rag.Document{{ID: "chunk_0", Content: "Company X holds 12% market share.", Score: score}}
}

func Test_scoreConfidence_EmptyRetrievalFloor(t *testing.T) {
	t.Parallel()
	got := scoreConfidence("what is the share?", "some answer", nil)
	if got != noContextConfidence {
		t.Errorf("scoreConfidence = %f, want floor %f", got, noContextConfidence)
	}
}

func Test_scoreConfidence_UncertaintyZeroes(t *testing.T) {
	t.Parallel()
	answers := []string{
		"I don't have sufficient information to answer this question.",
		"The report leaves this unclear.",
		"This value is not specified in the document.",
	}
	for _, answer := range answers {
		if got := scoreConfidence("market share?", answer, docsWithScore(0.9)); got != 0 {
			t.Errorf("scoreConfidence(%q) = %f, want 0", answer, got)
		}
	}
}

func Test_scoreConfidence_MoreRelevantRetrievalScoresHigher(t *testing.T) {
	t.Parallel()
	question := "What is Company X's market share?"
	answer := "Company X holds 12% market share."

	low := scoreConfidence(question, answer, docsWithScore(0.2))
	high := scoreConfidence(question, answer, docsWithScore(0.95))
	if high <= low {
		t.Errorf("confidence should increase with similarity: low=%f high=%f", low, high)
	}
}

func Test_scoreConfidence_Clamped(t *testing.T) {
	t.Parallel()
	question := "What is Company X's market share?"
	answer := "Company X holds 12% market share."

	if got := scoreConfidence(question, answer, docsWithScore(2.0)); got > 1 {
		t.Errorf("scoreConfidence = %f, want <= 1", got)
	}
	if got := scoreConfidence("zzz qqq", "unrelated", docsWithScore(-1.0)); got < 0 {
		t.Errorf("scoreConfidence = %f, want >= 0", got)
	}
}

func Test_lexicalOverlap(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name     string
		question string
		target   string
		want     float64
	}{
		{"full overlap", "market share", "the market share is 12%", 1.0},
		{"no overlap", "revenue margin", "the weather is sunny", 0.0},
		{"half overlap", "market weather", "the market is growing", 0.5},
		{"stopwords only", "what is the", "anything", 0.0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := lexicalOverlap(tc.question, tc.target); got != tc.want {
				t.Errorf("lexicalOverlap(%q, %q) = %f, want %f", tc.question, tc.target, got, tc.want)
			}
		})
	}
}

func Test_containsNumeric(t *testing.T) {
	t.Parallel()
	if !containsNumeric("grew by 14% in Q3") {
		t.Error("expected numeric content to be detected")
	}
	if containsNumeric("no figures here") {
		t.Error("expected no numeric content")
	}
}

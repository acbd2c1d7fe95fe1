// Package budget provides token budget estimation and context trimming for
// the analyst agents. Because the agents support multiple LLM backends with
// different tokenizers, this package uses a conservative character-based
// heuristic: 1 token ≈ 4 characters (English prose). This deliberately
// under-estimates token counts to leave headroom for model-specific overhead.
package budget

import (
	"github.com/cloudwego/eino/schema"

	"github.com/54b3r/analyst-go/internal/rag"
)

const (
	// charsPerToken is the conservative character-to-token ratio used for
	// estimation. 4 chars/token is standard for English; using 3 would be
	// more aggressive but risks overflowing context windows.
	charsPerToken = 4

	// DefaultMaxContextTokens is the default input context budget in tokens.
	// Conservative enough to fit within 8k-context models while leaving room
	// for the output. Override via the agent config.
	DefaultMaxContextTokens = 6000
)

// Estimate returns a rough token count for s using the character heuristic.
func Estimate(s string) int {
	n := len(s) / charsPerToken
	if n == 0 && len(s) > 0 {
		return 1
	}
	return n
}

// EstimateMessages returns the estimated total token count for a slice of
// schema.Message values, summing role + content for each message.
func EstimateMessages(msgs []*schema.Message) int {
	total := 0
	for _, m := range msgs {
		// Each message has a small per-message overhead (~4 tokens in most APIs).
		total += 4
		total += Estimate(string(m.Role))
		total += Estimate(m.Content)
	}
	return total
}

// TrimContext drops retrieved documents from the tail of docs until the total
// estimated token count of fixedTokens + remaining documents fits within
// maxTokens. docs arrive sorted by descending similarity, so the tail holds
// the least relevant context. Returns the trimmed slice and the number of
// documents dropped. If even a single document exceeds the budget, the empty
// slice is returned; the caller decides how to degrade.
func TrimContext(docs []rag.Document, fixedTokens, maxTokens int) ([]rag.Document, int) {
	dropped := 0
	for len(docs) > 0 {
		total := fixedTokens
		for _, d := range docs {
			total += Estimate(d.Content)
		}
		if total <= maxTokens {
			break
		}
		docs = docs[:len(docs)-1]
		dropped++
	}
	return docs, dropped
}

// TruncateText shortens s so its estimated token count fits within maxTokens,
// cutting at the last whitespace before the limit where possible. Returns s
// unchanged when it already fits.
func TruncateText(s string, maxTokens int) string {
	if Estimate(s) <= maxTokens {
		return s
	}
	limit := maxTokens * charsPerToken
	if limit >= len(s) {
		return s
	}
	cut := s[:limit]
	for i := len(cut) - 1; i > 0; i-- {
		if cut[i] == ' ' || cut[i] == '\n' {
			return cut[:i]
		}
	}
	return cut
}

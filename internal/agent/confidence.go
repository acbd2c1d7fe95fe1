package agent

import (
	"strings"
	"unicode"

	"github.com/54b3r/analyst-go/internal/rag"
)

// noContextConfidence is the fixed confidence floor reported when the index
// returned no chunks and the model answered without grounding.
const noContextConfidence = 0.1

// Weighted blend used by scoreConfidence. Retrieval similarity dominates;
// lexical overlap and numeric content act as secondary signals.
const (
	similarityWeight = 0.6
	overlapWeight    = 0.3
	numericWeight    = 0.1
)

// uncertaintyPhrases are answer fragments signalling the model could not
// ground a response in the provided context. Their presence zeroes the score
// regardless of retrieval quality.
var uncertaintyPhrases = []string{
	"i don't have",
	"insufficient information",
	"not mentioned",
	"unclear",
	"cannot determine",
	"not specified",
}

// qaStopwords are excluded from keyword overlap so common function words do
// not inflate the score.
var qaStopwords = map[string]struct{}{
	"the": {}, "and": {}, "for": {}, "are": {}, "was": {}, "were": {},
	"what": {}, "which": {}, "who": {}, "when": {}, "where": {}, "why": {},
	"how": {}, "does": {}, "did": {}, "has": {}, "have": {}, "had": {},
	"its": {}, "their": {}, "this": {}, "that": {}, "with": {}, "about": {},
}

// scoreConfidence estimates answer reliability as a weighted blend of the
// average retrieval similarity, the lexical overlap between question keywords
// and the answer-plus-context text, and a binary indicator for numeric
// content. The result is clamped to [0, 1]. An answer that admits uncertainty
// scores zero; an empty retrieval set scores the fixed floor.
func scoreConfidence(question, answer string, docs []rag.Document) float64 {
	if len(docs) == 0 {
		return noContextConfidence
	}

	lower := strings.ToLower(answer)
	for _, phrase := range uncertaintyPhrases {
		if strings.Contains(lower, phrase) {
			return 0.0
		}
	}

	var simSum float64
	var contextText strings.Builder
	for _, doc := range docs {
		simSum += float64(doc.Score)
		contextText.WriteString(doc.Content)
		contextText.WriteByte(' ')
	}
	avgSimilarity := simSum / float64(len(docs))

	overlap := lexicalOverlap(question, answer+" "+contextText.String())

	numeric := 0.0
	if containsNumeric(answer) {
		numeric = 1.0
	}

	score := similarityWeight*avgSimilarity + overlapWeight*overlap + numericWeight*numeric
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}

// lexicalOverlap returns the fraction of question keywords that appear in
// target. Keywords are lowercase alphanumeric tokens of three or more
// characters that are not stopwords. No keywords yields zero.
func lexicalOverlap(question, target string) float64 {
	keywords := extractKeywords(question)
	if len(keywords) == 0 {
		return 0
	}
	lowerTarget := strings.ToLower(target)
	matched := 0
	for _, kw := range keywords {
		if strings.Contains(lowerTarget, kw) {
			matched++
		}
	}
	return float64(matched) / float64(len(keywords))
}

// extractKeywords tokenizes text into deduplicated lowercase keywords.
func extractKeywords(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	seen := make(map[string]struct{}, len(fields))
	var keywords []string
	for _, f := range fields {
		if len(f) < 3 {
			continue
		}
		if _, stop := qaStopwords[f]; stop {
			continue
		}
		if _, dup := seen[f]; dup {
			continue
		}
		seen[f] = struct{}{}
		keywords = append(keywords, f)
	}
	return keywords
}

// containsNumeric reports whether s contains at least one digit.
func containsNumeric(s string) bool {
	for _, r := range s {
		if unicode.IsDigit(r) {
			return true
		}
	}
	return false
}

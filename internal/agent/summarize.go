package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/54b3r/analyst-go/internal/budget"
)

// Style selects the summary template.
type Style string

const (
	// StyleComprehensive produces full prose covering the whole document.
	StyleComprehensive Style = "comprehensive"
	// StyleExecutive produces brief, action-oriented prose for decision-makers.
	StyleExecutive Style = "executive"
	// StyleKeyFindings produces a bulleted list of the most important points.
	StyleKeyFindings Style = "key_findings"
)

// Summarizer defaults and accepted max_words bounds.
const (
	DefaultMaxWords = 200
	MinMaxWords     = 50
	MaxMaxWords     = 500
)

// ParseStyle validates a style string from an API request or CLI flag.
// Empty input selects the comprehensive style.
func ParseStyle(s string) (Style, error) {
	switch Style(s) {
	case "":
		return StyleComprehensive, nil
	case StyleComprehensive, StyleExecutive, StyleKeyFindings:
		return Style(s), nil
	default:
		return "", fmt.Errorf("%w: unknown summary_type %q (valid: comprehensive, executive, key_findings)", ErrInvalidInput, s)
	}
}

// styleInstructions holds the per-style prompt block.
var styleInstructions = map[Style]string{
	StyleComprehensive: `Include:
- Company overview and main product
- Market size and growth projections
- Competitive position and key competitors
- Main strengths, weaknesses, opportunities, and threats
- Strategic recommendations`,
	StyleExecutive: `Focus on:
- Key business metrics (market share, market size)
- Critical insights for decision-makers
- Top 3 strategic priorities
Keep it concise and action-oriented.`,
	StyleKeyFindings: `Extract only:
- Most important market insights
- Critical competitive intelligence
- Key strategic recommendations
Present as bullet points.`,
}

// SummaryResult is the summarizer agent's response.
type SummaryResult struct {
	// Summary is the generated summary text.
	Summary string `json:"summary"`
	// Style echoes the requested summary style.
	Style Style `json:"summary_type"`
	// WordCount is the whitespace-token count of Summary.
	WordCount int `json:"word_count"`
	// RequestedMaxWords echoes the requested ceiling. The ceiling is a prompt
	// instruction, not a hard limit: if the model overshoots, the overshoot
	// is reported rather than truncated mid-thought.
	RequestedMaxWords int `json:"requested_max_words"`
}

// Summarize generates a summary of the full source document in the given
// style. maxWords of zero selects the default; out-of-range values are
// rejected as InvalidInput.
func (a *Analyst) Summarize(ctx context.Context, style Style, maxWords int) (*SummaryResult, error) {
	if _, ok := styleInstructions[style]; !ok {
		return nil, fmt.Errorf("%w: unknown summary_type %q", ErrInvalidInput, style)
	}
	if maxWords == 0 {
		maxWords = DefaultMaxWords
	}
	if maxWords < MinMaxWords || maxWords > MaxMaxWords {
		return nil, fmt.Errorf("%w: max_words %d outside [%d, %d]", ErrInvalidInput, maxWords, MinMaxWords, MaxMaxWords)
	}
	if strings.TrimSpace(a.document) == "" {
		return nil, fmt.Errorf("agent: no document loaded")
	}

	instruction := fmt.Sprintf("Summarize the following market research document in approximately %d words or less.\n\n%s",
		maxWords, styleInstructions[style])

	doc := a.documentContext(ctx, budget.Estimate(instruction))
	prompt := fmt.Sprintf("%s\n\nDocument:\n%s\n\nSummary:", instruction, doc)

	summary, err := a.generate(ctx, []*schema.Message{schema.UserMessage(prompt)},
		model.WithTemperature(summarizeTemperature),
		model.WithMaxTokens(maxWords*2),
	)
	if err != nil {
		return nil, err
	}

	return &SummaryResult{
		Summary:           summary,
		Style:             style,
		WordCount:         len(strings.Fields(summary)),
		RequestedMaxWords: maxWords,
	}, nil
}

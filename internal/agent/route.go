package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/54b3r/analyst-go/internal/logging"
)

// Tool names the three dispatchable agents.
const (
	ToolQA        = "qa"
	ToolSummarize = "summarize"
	ToolExtract   = "extract"
)

// fallbackConfidence is reported when the model's routing decision could not
// be used and the query defaulted to Q&A.
const fallbackConfidence = 0.5

// routingPrompt asks the model to pick exactly one tool and justify it.
const routingPrompt = `You are a routing assistant that decides which tool should handle a user's query.

Available Tools:
1. "qa" - Question Answering: Answer specific questions about the document. Use when user asks 'what', 'who', 'when', 'where', 'why', or 'how' questions.
2. "summarize" - Summarization: Generate summaries or overviews. Use when user wants a summary, overview, main points, or key takeaways.
3. "extract" - Data Extraction: Extract structured data as JSON. Use when user wants specific data points, metrics, lists, or structured information.

Analyze the user's query and select the most appropriate tool.

User Query: %q

Respond with ONLY a JSON object in this format:
{
  "tool": "qa" | "summarize" | "extract",
  "confidence": 0.0 to 1.0,
  "reasoning": "brief explanation of why this tool was chosen"
}

JSON Response:`

// RoutingDecision is the model's tool choice.
type RoutingDecision struct {
	// Tool is one of "qa", "summarize", or "extract".
	Tool string `json:"tool"`
	// Confidence is the model's self-reported confidence in [0, 1].
	Confidence float64 `json:"confidence"`
	// Reasoning is a one-sentence explanation of the choice.
	Reasoning string `json:"reasoning"`
}

// RouteResult pairs the routing decision with the dispatched agent's result.
type RouteResult struct {
	// Routing is the (possibly fallback-adjusted) decision.
	Routing RoutingDecision `json:"routing"`
	// Result is a *QAResult, *SummaryResult, or *ExtractResult, matching
	// Routing.Tool.
	Result any `json:"result"`
}

// Route asks the model which tool should handle the query, then dispatches to
// that agent with default parameters. An unusable decision — unparseable
// JSON or a tool outside the fixed set — falls back to Q&A with reduced
// confidence; generation failures propagate as UpstreamError.
func (a *Analyst) Route(ctx context.Context, query string) (*RouteResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: query must not be empty", ErrInvalidInput)
	}
	if len(query) > a.maxQuestionLen {
		return nil, fmt.Errorf("%w: query exceeds %d characters", ErrInvalidInput, a.maxQuestionLen)
	}

	raw, err := a.generate(ctx, []*schema.Message{
		schema.UserMessage(fmt.Sprintf(routingPrompt, query)),
	},
		model.WithTemperature(routeTemperature),
		model.WithMaxTokens(256),
	)
	if err != nil {
		return nil, err
	}

	decision := parseRoutingDecision(ctx, raw)

	result := &RouteResult{Routing: decision}
	switch decision.Tool {
	case ToolQA:
		qa, err := a.Answer(ctx, query, 0)
		if err != nil {
			return nil, err
		}
		result.Result = qa
	case ToolSummarize:
		summary, err := a.Summarize(ctx, StyleComprehensive, DefaultMaxWords)
		if err != nil {
			return nil, err
		}
		result.Result = summary
	case ToolExtract:
		extracted, err := a.Extract(ctx)
		if err != nil {
			return nil, err
		}
		result.Result = extracted
	}
	return result, nil
}

// parseRoutingDecision recovers the decision JSON from raw model output,
// substituting the Q&A fallback when the output is unusable. The tool set is
// closed: any name outside the three known tools is treated as invalid, never
// dispatched dynamically.
func parseRoutingDecision(ctx context.Context, raw string) RoutingDecision {
	candidate, err := extractJSON(raw)
	if err != nil {
		logging.FromContext(ctx).Warn("router: no JSON in routing response, defaulting to qa",
			slog.String("response", raw))
		return RoutingDecision{
			Tool:       ToolQA,
			Confidence: fallbackConfidence,
			Reasoning:  "Defaulting to Q&A: routing response contained no JSON decision",
		}
	}

	var decision RoutingDecision
	if err := json.Unmarshal([]byte(candidate), &decision); err != nil {
		logging.FromContext(ctx).Warn("router: malformed routing decision, defaulting to qa",
			slog.Any("error", err))
		return RoutingDecision{
			Tool:       ToolQA,
			Confidence: fallbackConfidence,
			Reasoning:  "Defaulting to Q&A: routing decision was malformed JSON",
		}
	}

	switch decision.Tool {
	case ToolQA, ToolSummarize, ToolExtract:
		return decision
	default:
		logging.FromContext(ctx).Warn("router: unknown tool in routing decision, defaulting to qa",
			slog.String("tool", decision.Tool))
		return RoutingDecision{
			Tool:       ToolQA,
			Confidence: fallbackConfidence,
			Reasoning:  fmt.Sprintf("Defaulting to Q&A: model selected unknown tool %q", decision.Tool),
		}
	}
}

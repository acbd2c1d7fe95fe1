package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/xeipuuv/gojsonschema"

	"github.com/54b3r/analyst-go/internal/budget"
	"github.com/54b3r/analyst-go/internal/logging"
)

// extractionPrompt embeds the fixed output schema with inline type hints.
// The schema mirrors the market research report structure: company identity,
// market position, competitors, SWOT, and strategic priorities.
const extractionPrompt = `You are a data extraction assistant. Extract structured information from the market research document below.

IMPORTANT: Output ONLY valid JSON. Do not include any explanatory text, markdown formatting, or code blocks.

Extract the following information into this exact JSON structure:
{
  "company_name": "string - name of the company",
  "product_name": "string - flagship product name",
  "industry_sector": "string - primary industry sector",
  "report_period": "string - report period (e.g., Q3 2025)",
  "market_size_current": "string - current market size with units",
  "market_size_projected": "string - projected market size with units",
  "cagr": "string - compound annual growth rate",
  "market_share": "number - company's market share as percentage (just number)",
  "competitors": [
    {
      "name": "string - competitor name",
      "market_share": "number - their market share as percentage"
    }
  ],
  "swot": {
    "strengths": ["list of strings"],
    "weaknesses": ["list of strings"],
    "opportunities": ["list of strings"],
    "threats": ["list of strings"]
  },
  "key_metrics": {
    "total_competitors": "number - count of competitors mentioned",
    "growth_drivers": ["list of key growth drivers"]
  },
  "strategic_priorities": ["list of strategic priorities or recommendations"]
}`

// extractionSchema is the JSON Schema the recovered object is checked
// against. Violations become caveats on the result, not failures — partial
// extractions are still useful to the caller.
const extractionSchema = `{
  "type": "object",
  "properties": {
    "company_name": {"type": "string"},
    "product_name": {"type": "string"},
    "industry_sector": {"type": "string"},
    "report_period": {"type": "string"},
    "market_size_current": {"type": "string"},
    "market_size_projected": {"type": "string"},
    "cagr": {"type": "string"},
    "market_share": {"type": "number"},
    "competitors": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "name": {"type": "string"},
          "market_share": {"type": "number"}
        }
      }
    },
    "swot": {
      "type": "object",
      "properties": {
        "strengths": {"type": "array", "items": {"type": "string"}},
        "weaknesses": {"type": "array", "items": {"type": "string"}},
        "opportunities": {"type": "array", "items": {"type": "string"}},
        "threats": {"type": "array", "items": {"type": "string"}}
      }
    },
    "key_metrics": {"type": "object"},
    "strategic_priorities": {"type": "array", "items": {"type": "string"}}
  }
}`

// numericPattern pulls the first numeric token out of strings like "12%",
// "$4.2B", or "12".
var numericPattern = regexp.MustCompile(`(\d+\.?\d*)`)

// swotCategories are the four lists every extraction result must carry.
var swotCategories = []string{"strengths", "weaknesses", "opportunities", "threats"}

// ExtractResult is the extractor agent's response. Parse failures are a
// normal, observable outcome: Success is false and Error carries the detail,
// but no Go error is returned.
type ExtractResult struct {
	// Data is the extracted object, empty when Success is false.
	Data map[string]any `json:"data"`
	// Success reports whether a JSON object was recovered from the model output.
	Success bool `json:"success"`
	// Error holds the parse failure detail when Success is false.
	Error string `json:"error,omitempty"`
	// Caveats lists non-fatal issues: fields left as strings because they
	// could not be coerced to numbers, and schema violations.
	Caveats []string `json:"caveats,omitempty"`
}

// Extract prompts the model with the full document and the fixed schema, then
// recovers, repairs, and type-casts the returned JSON. Generation failures
// propagate as UpstreamError; malformed JSON yields a {success: false} result
// with a nil error.
func (a *Analyst) Extract(ctx context.Context) (*ExtractResult, error) {
	if strings.TrimSpace(a.document) == "" {
		return nil, fmt.Errorf("agent: no document loaded")
	}

	doc := a.documentContext(ctx, budget.Estimate(extractionPrompt))
	prompt := fmt.Sprintf("%s\n\nDocument:\n%s\n\nJSON Output:", extractionPrompt, doc)

	raw, err := a.generate(ctx, []*schema.Message{schema.UserMessage(prompt)},
		model.WithTemperature(extractTemperature),
		model.WithMaxTokens(1024),
	)
	if err != nil {
		return nil, err
	}

	candidate, err := extractJSON(raw)
	if err != nil {
		return &ExtractResult{Data: map[string]any{}, Success: false, Error: err.Error()}, nil
	}

	var data map[string]any
	if err := json.Unmarshal([]byte(candidate), &data); err != nil {
		return &ExtractResult{Data: map[string]any{}, Success: false, Error: fmt.Sprintf("parse JSON: %v", err)}, nil
	}

	result := &ExtractResult{Data: data, Success: true}
	coerceNumericFields(result)
	fillSWOT(data)
	result.Caveats = append(result.Caveats, validateExtraction(ctx, data)...)
	return result, nil
}

// coerceNumericFields converts numeric-looking string fields to float64,
// tolerating trailing "%" or currency symbols. Fields that carry no
// recognizable number stay strings and are noted as caveats.
func coerceNumericFields(result *ExtractResult) {
	data := result.Data

	if s, ok := data["market_share"].(string); ok {
		if v, ok := parseNumeric(s); ok {
			data["market_share"] = v
		} else {
			result.Caveats = append(result.Caveats, fmt.Sprintf("market_share %q is not numeric", s))
		}
	}

	competitors, ok := data["competitors"].([]any)
	if !ok {
		return
	}
	for i, c := range competitors {
		comp, ok := c.(map[string]any)
		if !ok {
			continue
		}
		if s, ok := comp["market_share"].(string); ok {
			if v, ok := parseNumeric(s); ok {
				comp["market_share"] = v
			} else {
				result.Caveats = append(result.Caveats, fmt.Sprintf("competitors[%d].market_share %q is not numeric", i, s))
			}
		}
	}
}

// parseNumeric extracts the first number from a string like "12%" → 12.0.
func parseNumeric(s string) (float64, bool) {
	match := numericPattern.FindString(s)
	if match == "" {
		return 0, false
	}
	var v float64
	if _, err := fmt.Sscanf(match, "%g", &v); err != nil {
		return 0, false
	}
	return v, true
}

// fillSWOT guarantees the four SWOT categories exist as lists, creating
// empty ones for anything the model omitted.
func fillSWOT(data map[string]any) {
	swot, ok := data["swot"].(map[string]any)
	if !ok {
		swot = map[string]any{}
		data["swot"] = swot
	}
	for _, category := range swotCategories {
		if _, ok := swot[category].([]any); !ok {
			swot[category] = []any{}
		}
	}
}

// validateExtraction checks the recovered object against the extraction
// schema and returns one caveat per violation. Validator errors are logged
// and swallowed: schema validation is advisory.
func validateExtraction(ctx context.Context, data map[string]any) []string {
	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(extractionSchema),
		gojsonschema.NewGoLoader(data),
	)
	if err != nil {
		logging.FromContext(ctx).Warn("extract: schema validation unavailable", slog.Any("error", err))
		return nil
	}
	if result.Valid() {
		return nil
	}
	caveats := make([]string, 0, len(result.Errors()))
	for _, violation := range result.Errors() {
		caveats = append(caveats, fmt.Sprintf("schema: %s", violation.String()))
	}
	return caveats
}

package agent

import (
	"fmt"
	"strings"
)

// extractJSON recovers a JSON object from raw model output. Models routinely
// wrap JSON in markdown code fences or surround it with commentary despite
// instructions; this strips any fence markers, then slices from the first '{'
// to the last '}'. It returns an error only when no brace-delimited candidate
// exists at all — the caller still has to parse the candidate.
func extractJSON(raw string) (string, error) {
	cleaned := strings.TrimSpace(raw)

	for _, prefix := range []string{"```json", "```"} {
		if rest, ok := strings.CutPrefix(cleaned, prefix); ok {
			cleaned = rest
			break
		}
	}
	cleaned = strings.TrimSuffix(strings.TrimSpace(cleaned), "```")
	cleaned = strings.TrimSpace(cleaned)

	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start == -1 || end <= start {
		return "", fmt.Errorf("agent: no JSON object found in model output")
	}
	return cleaned[start : end+1], nil
}

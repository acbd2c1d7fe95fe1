package ingestion

import (
	"path"
	"strings"
)

// InferredMetadata holds the title and document kind inferred from a source's
// location and content. Explicit CLI flags take precedence over inferred
// values; this is the best-effort fallback when the user doesn't specify
// metadata.
type InferredMetadata struct {
	// Title is the document title, taken from the first Markdown heading when
	// present, otherwise derived from the file name.
	Title string
	// Kind classifies the document (report, filing, transcript, news, generic).
	Kind string
	// Format is the source format (markdown, text).
	Format string
}

// kindKeywords maps file-name fragments to a document kind. Checked in order;
// the first match wins.
var kindKeywords = []struct {
	fragment string
	kind     string
}{
	{"10-k", "filing"},
	{"10-q", "filing"},
	{"10k", "filing"},
	{"10q", "filing"},
	{"annual", "filing"},
	{"filing", "filing"},
	{"transcript", "transcript"},
	{"earnings-call", "transcript"},
	{"call", "transcript"},
	{"press", "news"},
	{"news", "news"},
	{"release", "news"},
	{"research", "report"},
	{"report", "report"},
	{"analysis", "report"},
	{"market", "report"},
}

// InferMetadata inspects a source location and its content and returns
// best-effort metadata. Unrecognised sources get kind "generic" and a title
// derived from the file name.
func InferMetadata(location, content string) InferredMetadata {
	m := InferredMetadata{
		Kind:   "generic",
		Format: "text",
	}

	base := path.Base(strings.TrimSuffix(location, "/"))
	ext := strings.ToLower(path.Ext(base))
	if ext == ".md" || ext == ".markdown" {
		m.Format = "markdown"
	}

	lower := strings.ToLower(base)
	for _, kw := range kindKeywords {
		if strings.Contains(lower, kw.fragment) {
			m.Kind = kw.kind
			break
		}
	}

	if title := firstHeading(content); title != "" {
		m.Title = title
		return m
	}

	// Fall back to the file name, cleaned up.
	name := strings.TrimSuffix(base, path.Ext(base))
	name = strings.NewReplacer("-", " ", "_", " ").Replace(name)
	m.Title = strings.TrimSpace(name)
	return m
}

// firstHeading returns the text of the first Markdown "#" heading in content,
// or empty string when none appears in the opening lines.
func firstHeading(content string) string {
	lines := strings.Split(content, "\n")
	limit := len(lines)
	if limit > 20 {
		limit = 20
	}
	for _, line := range lines[:limit] {
		trimmed := strings.TrimSpace(line)
		if rest, ok := strings.CutPrefix(trimmed, "# "); ok {
			return strings.TrimSpace(rest)
		}
	}
	return ""
}

package ingestion

import "testing"

func Test_InferMetadata(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		location string
		content  string
		want     InferredMetadata
	}{
		{
			name:     "markdown report with heading",
			location: "/data/market-research-report.md",
			content:  "# Global Cloud Market 2026\n\nBody text.",
			want:     InferredMetadata{Title: "Global Cloud Market 2026", Kind: "report", Format: "markdown"},
		},
		{
			name:     "plain text filing",
			location: "/data/acme-10-K-2025.txt",
			content:  "ANNUAL REPORT\nItem 1. Business.",
			want:     InferredMetadata{Title: "acme 10 K 2025", Kind: "filing", Format: "text"},
		},
		{
			name:     "earnings transcript",
			location: "https://example.com/docs/q3-earnings-call-transcript.txt",
			content:  "Operator: good morning.",
			want:     InferredMetadata{Title: "q3 earnings call transcript", Kind: "transcript", Format: "text"},
		},
		{
			name:     "press release",
			location: "press-release.md",
			content:  "no heading here",
			want:     InferredMetadata{Title: "press release", Kind: "news", Format: "markdown"},
		},
		{
			name:     "unrecognised source",
			location: "/tmp/notes.txt",
			content:  "misc",
			want:     InferredMetadata{Title: "notes", Kind: "generic", Format: "text"},
		},
		{
			name:     "heading beyond scan window ignored",
			location: "doc.txt",
			content:  repeatLines(25) + "# Late Heading\n",
			want:     InferredMetadata{Title: "doc", Kind: "generic", Format: "text"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := InferMetadata(tc.location, tc.content)
			if got != tc.want {
				t.Errorf("InferMetadata(%q) = %+v, want %+v", tc.location, got, tc.want)
			}
		})
	}
}

func repeatLines(n int) string {
	s := ""
	for range n {
		s += "line\n"
	}
	return s
}

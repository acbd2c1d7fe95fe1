package budget

import (
	"strings"
	"testing"

	"github.com/cloudwego/eino/schema"

	"github.com/54b3r/analyst-go/internal/rag"
)

func Test_Estimate(t *testing.T) {
	t.Parallel()
	cases := []struct {
		input string
		want  int
	}{
		{"", 0},
		{"a", 1},        // < 4 chars → 1
		{"abcd", 1},     // exactly 4 chars → 1
		{"abcde", 1},    // 5 chars → 1
		{"abcdefgh", 2}, // 8 chars → 2
		{strings.Repeat("x", 400), 100},
	}
	for _, tc := range cases {
		got := Estimate(tc.input)
		if got != tc.want {
			t.Errorf("Estimate(%q) = %d, want %d", tc.input, got, tc.want)
		}
	}
}

func Test_EstimateMessages(t *testing.T) {
	t.Parallel()
	msgs := []*schema.Message{
		schema.UserMessage("hello world"), // 4 overhead + 1 (role) + 2 (content) = 7
		schema.UserMessage("hello world"),
	}
	got := EstimateMessages(msgs)
	if got != 14 {
		t.Errorf("EstimateMessages = %d, want 14", got)
	}
}

func contextDocs(n, contentLen int) []rag.Document {
	docs := make([]rag.Document, n)
	for i := range docs {
		docs[i] = rag.Document{
			ID:      "chunk",
			Content: strings.Repeat("x", contentLen),
			Score:   float32(n - i), // descending similarity
		}
	}
	return docs
}

func Test_TrimContext_NoTrimNeeded(t *testing.T) {
	t.Parallel()
	docs := contextDocs(3, 40) // 10 tokens each
	got, dropped := TrimContext(docs, 10, 100)
	if len(got) != 3 || dropped != 0 {
		t.Errorf("TrimContext = %d docs, %d dropped; want 3, 0", len(got), dropped)
	}
}

func Test_TrimContext_DropsTail(t *testing.T) {
	t.Parallel()
	docs := contextDocs(5, 40) // 10 tokens each, 50 total
	got, dropped := TrimContext(docs, 10, 40)
	if len(got) != 3 || dropped != 2 {
		t.Fatalf("TrimContext = %d docs, %d dropped; want 3, 2", len(got), dropped)
	}
	// The most similar documents survive.
	if got[0].Score < got[len(got)-1].Score {
		t.Error("TrimContext changed document ordering")
	}
}

func Test_TrimContext_AllDropped(t *testing.T) {
	t.Parallel()
	docs := contextDocs(2, 400) // 100 tokens each
	got, dropped := TrimContext(docs, 50, 60)
	if len(got) != 0 || dropped != 2 {
		t.Errorf("TrimContext = %d docs, %d dropped; want 0, 2", len(got), dropped)
	}
}

func Test_TruncateText(t *testing.T) {
	t.Parallel()

	short := "fits easily"
	if got := TruncateText(short, 100); got != short {
		t.Errorf("TruncateText modified text that fits: %q", got)
	}

	long := strings.Repeat("word ", 200) // 1000 chars, 250 tokens
	got := TruncateText(long, 50)
	if Estimate(got) > 50 {
		t.Errorf("TruncateText result estimates to %d tokens, want <= 50", Estimate(got))
	}
	if strings.HasSuffix(got, " ") {
		t.Errorf("TruncateText left trailing whitespace: %q", got[len(got)-10:])
	}
}

package agent

import "testing"

func Test_extractJSON(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{
			name:  "bare object",
			input: `{"tool": "qa"}`,
			want:  `{"tool": "qa"}`,
		},
		{
			name:  "json fence",
			input: "```json\n{\"tool\": \"qa\"}\n```",
			want:  `{"tool": "qa"}`,
		},
		{
			name:  "plain fence",
			input: "```\n{\"tool\": \"extract\"}\n```",
			want:  `{"tool": "extract"}`,
		},
		{
			name:  "surrounding prose",
			input: "Sure! Here is the decision:\n{\"tool\": \"summarize\"}\nHope that helps.",
			want:  `{"tool": "summarize"}`,
		},
		{
			name:  "nested braces",
			input: `prefix {"a": {"b": 1}} suffix`,
			want:  `{"a": {"b": 1}}`,
		},
		{
			name:    "no object",
			input:   "there is nothing structured here",
			wantErr: true,
		},
		{
			name:    "empty",
			input:   "",
			wantErr: true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, err := extractJSON(tc.input)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("extractJSON(%q) succeeded with %q, want error", tc.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("extractJSON(%q): %v", tc.input, err)
			}
			if got != tc.want {
				t.Errorf("extractJSON(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}

package commands

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

// NewAskCmd constructs the `analyst ask` command, which answers a single
// question about the document using retrieval-augmented generation.
func NewAskCmd() *cobra.Command {
	var topK int
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "ask [question]",
		Short: "Ask a question about the document",
		Long: `Ask a natural language question about the configured document.

The question is embedded, the most similar document chunks are retrieved
from the vector store, and the answer is generated from that context only.
The response includes the cited source chunks and a confidence score.

Examples:
  analyst ask "What is Company X's market share?"
  analyst ask --top-k 3 "How fast is the market growing?"
  analyst ask --json "Who are the main competitors?"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			log := slog.Default()

			stack, err := buildStack(ctx, log, false)
			if err != nil {
				return fmt.Errorf("ask: %w", err)
			}
			defer stack.close()

			question := strings.Join(args, " ")
			res, err := stack.analyst.Answer(ctx, question, topK)
			if err != nil {
				return fmt.Errorf("ask: %w", err)
			}

			if asJSON {
				return printJSON(res)
			}

			fmt.Println(res.Answer)
			fmt.Printf("\nconfidence: %.2f\n", res.Confidence)
			if len(res.Sources) > 0 {
				fmt.Printf("sources: %s\n", strings.Join(res.Sources, ", "))
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&topK, "top-k", "k", 0, "Number of chunks to retrieve (1-10, default from TOP_K or 5)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the full result as JSON")

	return cmd
}

// printJSON writes v to stdout as indented JSON.
func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	return nil
}

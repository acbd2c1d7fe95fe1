package commands

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"
)

// NewQueryCmd constructs the `analyst query` command, which routes a
// free-form query to the right tool (Q&A, summarize, or extract) and runs it.
func NewQueryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "query [text]",
		Short: "Route a free-form query to the right analysis tool",
		Long: `Ask the model which tool fits the query — Q&A, summarization, or
extraction — then dispatch to it with default parameters. The output
includes the routing decision (tool, confidence, reasoning) alongside
the tool's result.

If the routing decision cannot be parsed, the query falls back to Q&A.

Examples:
  analyst query "What is the projected CAGR?"
  analyst query "Give me an executive overview of this report"
  analyst query "Pull out the key figures as structured data"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			log := slog.Default()

			stack, err := buildStack(ctx, log, false)
			if err != nil {
				return fmt.Errorf("query: %w", err)
			}
			defer stack.close()

			res, err := stack.analyst.Route(ctx, strings.Join(args, " "))
			if err != nil {
				return fmt.Errorf("query: %w", err)
			}

			fmt.Printf("routed to: %s (confidence %.2f)\n", res.Routing.Tool, res.Routing.Confidence)
			if res.Routing.Reasoning != "" {
				fmt.Printf("reasoning: %s\n\n", res.Routing.Reasoning)
			}
			return printJSON(res.Result)
		},
	}

	return cmd
}

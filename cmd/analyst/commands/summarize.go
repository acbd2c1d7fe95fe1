package commands

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/54b3r/analyst-go/internal/agent"
)

// NewSummarizeCmd constructs the `analyst summarize` command, which produces
// a styled summary of the whole document.
func NewSummarizeCmd() *cobra.Command {
	var style string
	var maxWords int
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "summarize",
		Short: "Summarize the document",
		Long: `Generate a summary of the configured document.

Styles:
  comprehensive  balanced coverage of the whole document (default)
  executive      brief, decision-oriented, key numbers up front
  key_findings   bullet list of the most important findings

Examples:
  analyst summarize
  analyst summarize --style executive --max-words 100
  analyst summarize --style key_findings --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			log := slog.Default()

			parsed, err := agent.ParseStyle(style)
			if err != nil {
				return fmt.Errorf("summarize: %w", err)
			}

			stack, err := buildStack(ctx, log, false)
			if err != nil {
				return fmt.Errorf("summarize: %w", err)
			}
			defer stack.close()

			res, err := stack.analyst.Summarize(ctx, parsed, maxWords)
			if err != nil {
				return fmt.Errorf("summarize: %w", err)
			}

			if asJSON {
				return printJSON(res)
			}

			fmt.Println(res.Summary)
			fmt.Printf("\n(%s, %d words)\n", res.Style, res.WordCount)
			return nil
		},
	}

	cmd.Flags().StringVarP(&style, "style", "s", "", "Summary style: comprehensive, executive, key_findings")
	cmd.Flags().IntVarP(&maxWords, "max-words", "w", 0, "Requested summary length ceiling (50-500, default 200)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the full result as JSON")

	return cmd
}

package commands

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

// NewExtractCmd constructs the `analyst extract` command, which pulls
// structured market metrics out of the document as JSON.
func NewExtractCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Extract structured market data from the document as JSON",
		Long: `Extract structured data from the configured document.

The model is prompted with a fixed schema covering market size, growth
rate, market share, competitors, trends, and a SWOT analysis. Values the
document does not state are returned as null; numeric fields returned as
strings (e.g. "12%") are coerced to numbers where possible.

A parse failure is reported in the result (success: false), not as a
command error.

Examples:
  analyst extract
  analyst extract | jq '.data.swot'`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			log := slog.Default()

			stack, err := buildStack(ctx, log, false)
			if err != nil {
				return fmt.Errorf("extract: %w", err)
			}
			defer stack.close()

			res, err := stack.analyst.Extract(ctx)
			if err != nil {
				return fmt.Errorf("extract: %w", err)
			}

			if !res.Success {
				fmt.Fprintf(os.Stderr, "warning: extraction failed: %s\n", res.Error)
			}
			for _, caveat := range res.Caveats {
				fmt.Fprintf(os.Stderr, "caveat: %s\n", caveat)
			}

			return printJSON(res)
		},
	}

	return cmd
}

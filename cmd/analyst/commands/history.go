package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/54b3r/analyst-go/internal/store"
)

// NewHistoryCmd constructs the `analyst history` command, which prints the
// most recent recorded requests.
func NewHistoryCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent request history",
		Long: `Print the most recent requests recorded by the server, newest-first.

History is stored in a local SQLite database (~/.analyst/history.db by
default; override with ANALYST_HISTORY_DB).

Examples:
  analyst history
  analyst history --limit 50`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			dbPath := getEnvOrDefault("ANALYST_HISTORY_DB", "")
			if dbPath == "disabled" {
				return fmt.Errorf("history: disabled via ANALYST_HISTORY_DB=disabled")
			}
			if dbPath == "" {
				var err error
				dbPath, err = store.DefaultDBPath()
				if err != nil {
					return fmt.Errorf("history: %w", err)
				}
			}

			hs, err := store.Open(dbPath)
			if err != nil {
				return fmt.Errorf("history: %w", err)
			}
			defer hs.Close()

			recs, err := hs.Recent(ctx, limit)
			if err != nil {
				return fmt.Errorf("history: %w", err)
			}
			if len(recs) == 0 {
				fmt.Println("no recorded requests")
				return nil
			}

			for _, rec := range recs {
				line := fmt.Sprintf("%s  %-9s", rec.CreatedAt.Format(time.RFC3339), rec.Operation)
				if rec.Tool != "" {
					line += fmt.Sprintf("  -> %s", rec.Tool)
				}
				if rec.Confidence > 0 {
					line += fmt.Sprintf("  (%.2f)", rec.Confidence)
				}
				if rec.Query != "" {
					line += "  " + rec.Query
				}
				fmt.Println(line)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of requests to show")

	return cmd
}

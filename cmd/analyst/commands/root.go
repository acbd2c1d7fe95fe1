// Package commands defines all Cobra CLI commands for the analyst binary.
package commands

import (
	"github.com/spf13/cobra"

	"github.com/54b3r/analyst-go/internal/audit"
	"github.com/54b3r/analyst-go/internal/config"
	"github.com/54b3r/analyst-go/internal/logging"
)

// configPath holds the --config flag value for YAML config file override.
var configPath string

// loadedConfigPath stores the resolved config file path for audit logging.
var loadedConfigPath string

// NewRootCmd constructs the root Cobra command that all subcommands attach to.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "analyst",
		Short: "Market research analyst powered by retrieval-augmented LLMs",
		Long: `Analyst answers questions about a market research document using
retrieval-augmented generation: the document is chunked, embedded, and
indexed in a vector store, and every answer is grounded in the retrieved
chunks with cited sources and a confidence score.

Beyond Q&A it can summarize the whole document in several styles, extract
structured metrics as JSON, and auto-route free-form queries to the right
tool.

The document is selected via DOCUMENT_PATH; the model provider via the
MODEL_PROVIDER environment variable or a YAML config file
(~/.analyst/config.yaml). See 'analyst --help' for available commands.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			log := logging.New()

			// Load YAML config (env vars always override YAML values).
			path, err := config.Load(configPath, log)
			if err != nil {
				return err
			}
			loadedConfigPath = path

			// Emit structured audit log for every command invocation.
			audit.LogCommandStart(log, cmd.Name(), loadedConfigPath)

			return nil
		},
	}

	root.PersistentFlags().StringVar(&configPath, "config", "", "Path to YAML config file (default: ~/.analyst/config.yaml)")

	root.AddCommand(
		NewAskCmd(),
		NewSummarizeCmd(),
		NewExtractCmd(),
		NewQueryCmd(),
		NewServeCmd(),
		NewIngestCmd(),
		NewHistoryCmd(),
		NewVersionCmd(),
	)

	return root
}

package commands

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/cloudwego/eino/callbacks"
	"github.com/spf13/cobra"

	"github.com/54b3r/analyst-go/internal/embedder"
	"github.com/54b3r/analyst-go/internal/logging"
	"github.com/54b3r/analyst-go/internal/provider"
	"github.com/54b3r/analyst-go/internal/server"
	"github.com/54b3r/analyst-go/internal/store"
	"github.com/54b3r/analyst-go/internal/tracing"
)

// NewServeCmd constructs the `analyst serve` command, which starts the HTTP
// server exposing the REST API.
func NewServeCmd() *cobra.Command {
	var host string
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the analyst HTTP server",
		Long: `Start the analyst HTTP server on localhost.

The server indexes the configured document at startup (reusing an already
populated Qdrant collection) and exposes the REST API:

  POST /api/v1/qa         retrieval-augmented question answering
  POST /api/v1/summarize  whole-document summarization
  POST /api/v1/extract    structured data extraction
  POST /api/v1/auto       auto-routed free-form queries
  GET  /api/v1/history    recent request history
  GET  /api/health        liveness
  GET  /api/ready         readiness (probes the LLM and Qdrant)
  GET  /metrics           Prometheus metrics

Examples:
  analyst serve
  analyst serve --port 9090
  MODEL_PROVIDER=ollama analyst serve`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			log := logging.New()
			ctx = logging.WithLogger(ctx, log)

			log.Info("serve starting", slog.String("provider", os.Getenv("MODEL_PROVIDER")))

			// Setup Langfuse tracing — opt-in, no-op if keys are absent.
			handler, flush, ok := tracing.Setup()
			if ok {
				callbacks.AppendGlobalHandlers(handler)
				defer flush()
				log.Info("langfuse tracing enabled")
			} else {
				log.Info("langfuse tracing disabled", slog.String("reason", "LANGFUSE_PUBLIC_KEY not set"))
			}

			stack, err := buildStack(ctx, log, false)
			if err != nil {
				return fmt.Errorf("serve: %w", err)
			}
			defer stack.close()

			// Open request history store. ANALYST_HISTORY_DB overrides the
			// default path (~/.analyst/history.db). Set to "disabled" to disable.
			var historyStore store.HistoryStore
			dbPath := os.Getenv("ANALYST_HISTORY_DB")
			if dbPath != "disabled" {
				if dbPath == "" {
					dbPath, err = store.DefaultDBPath()
					if err != nil {
						log.Warn("history: could not resolve default DB path, disabling", slog.Any("error", err))
					}
				}
				if dbPath != "" {
					hs, hsErr := store.Open(dbPath)
					if hsErr != nil {
						log.Warn("history: failed to open store, disabling", slog.Any("error", hsErr))
					} else {
						historyStore = hs
						defer func() { _ = hs.Close() }()
						log.Info("history: store opened", slog.String("path", dbPath))
					}
				}
			} else {
				log.Info("history: disabled via ANALYST_HISTORY_DB=disabled")
			}

			backend, modelID := provider.DescribeFromEnv()

			pingers := []server.Pinger{
				server.NewLLMPinger(stack.chatModel, backend),
			}
			if stack.qdrant != nil {
				pingers = append(pingers, server.NewQdrantPinger(stack.qdrant.Client()))
			}

			srv, err := server.New(stack.analyst, &server.Config{
				Host:    host,
				Port:    port,
				Logger:  log,
				Pingers: pingers,
				APIKey:  os.Getenv("ANALYST_API_KEY"),
				History: historyStore,
				Status: server.StatusInfo{
					Provider:          backend,
					Model:             modelID,
					EmbeddingProvider: embedder.ResolveBackend(),
					DocumentTitle:     os.Getenv("DOCUMENT_TITLE"),
					IndexedChunks:     stack.chunks,
				},
			})
			if err != nil {
				return fmt.Errorf("serve: failed to create server: %w", err)
			}

			return srv.Start(ctx)
		},
	}

	cmd.Flags().StringVar(&host, "host", "127.0.0.1", "Host address to bind to")
	cmd.Flags().IntVarP(&port, "port", "p", 8080, "TCP port to listen on")

	return cmd
}

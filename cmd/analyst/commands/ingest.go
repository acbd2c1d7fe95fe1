package commands

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/54b3r/analyst-go/internal/embedder"
	"github.com/54b3r/analyst-go/internal/ingestion"
)

// NewIngestCmd constructs the `analyst ingest` command, which chunks, embeds,
// and indexes the configured document into the vector store without running
// any analysis.
func NewIngestCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Chunk, embed, and index the document into the vector store",
		Long: `Run the ingestion pipeline for the configured document: split it into
overlapping chunks, embed each chunk, and upsert the vectors into the
vector store. With a persistent Qdrant store this is a one-time step that
later commands and the server reuse.

If the target collection is already populated the pipeline is skipped;
pass --force to rebuild the index anyway.

Required environment variables:
  DOCUMENT_PATH        Path or URL of the document to index
  QDRANT_HOST          Qdrant server hostname (omit to use the in-memory store)
  QDRANT_PORT          Qdrant gRPC port (default: 6334)
  QDRANT_COLLECTION    Collection name (default: analyst-docs)
  EMBEDDING_*          Embedding backend overrides (see README)

Examples:
  analyst ingest
  analyst ingest --force
  DOCUMENT_PATH=./reports/q2.md QDRANT_HOST=localhost analyst ingest`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			log := slog.Default()

			docPath := getEnvOrDefault("DOCUMENT_PATH", "")
			if docPath == "" {
				return fmt.Errorf("ingest: DOCUMENT_PATH is required")
			}

			if err := embedder.Validate(log); err != nil {
				return fmt.Errorf("ingest: %w", err)
			}
			emb, err := embedder.NewFromEnv(ctx)
			if err != nil {
				return fmt.Errorf("ingest: failed to initialise embedder: %w", err)
			}
			log.Info("embedder initialised", slog.String("backend", embedder.ResolveBackend()))

			store, _, err := buildVectorStore(ctx, log)
			if err != nil {
				return fmt.Errorf("ingest: %w", err)
			}
			defer store.Close()

			pipeline, err := ingestion.NewPipeline(emb, store, &ingestion.Config{
				ChunkSize:    getEnvInt("CHUNK_SIZE", 0),
				ChunkOverlap: getEnvInt("CHUNK_OVERLAP", 0),
			})
			if err != nil {
				return fmt.Errorf("ingest: failed to create pipeline: %w", err)
			}

			sources := []ingestion.Source{{
				Location: docPath,
				Title:    getEnvOrDefault("DOCUMENT_TITLE", ""),
			}}

			result, err := pipeline.EnsureIndexed(ctx, sources, force, func(msg string) {
				log.Info(msg)
			})
			if err != nil {
				return fmt.Errorf("ingest: pipeline failed: %w", err)
			}

			if result.Reused {
				log.Info("index already populated, nothing to do (use --force to rebuild)",
					slog.Int("chunks", result.Chunks))
				return nil
			}

			log.Info("ingestion complete",
				slog.Int("sources", result.Sources),
				slog.Int("chunks", result.Chunks),
			)
			for _, meta := range result.Documents {
				log.Info("document indexed",
					slog.String("title", meta.Title),
					slog.String("kind", meta.Kind),
					slog.String("format", meta.Format),
				)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Rebuild the index even if the collection is already populated")

	return cmd
}

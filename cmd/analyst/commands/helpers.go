package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cloudwego/eino/components/model"

	"github.com/54b3r/analyst-go/internal/agent"
	"github.com/54b3r/analyst-go/internal/embedder"
	"github.com/54b3r/analyst-go/internal/ingestion"
	"github.com/54b3r/analyst-go/internal/provider"
	"github.com/54b3r/analyst-go/internal/rag"
)

// analystStack bundles everything the CLI commands need: the assembled
// analyst, the chat model and vector store for readiness probes, and a
// close function that releases all held resources.
type analystStack struct {
	// analyst is the fully wired agent.
	analyst *agent.Analyst
	// chatModel is the LLM used by the analyst, exposed for pingers.
	chatModel model.ToolCallingChatModel
	// qdrant is the Qdrant store when one is in use, nil for the in-memory store.
	qdrant *rag.QdrantStore
	// chunks is the number of chunks in the vector index after startup.
	chunks int
	// close releases the vector store connection.
	close func()
}

// buildStack assembles the full analysis pipeline from environment config:
// load the document, chunk/embed/index it (skipped when the index is already
// populated), and wire the retriever and chat model into an agent.
// Set forceReindex to rebuild the index even when it is populated.
func buildStack(ctx context.Context, log *slog.Logger, forceReindex bool) (*analystStack, error) {
	docPath := os.Getenv("DOCUMENT_PATH")
	if docPath == "" {
		return nil, fmt.Errorf("DOCUMENT_PATH is required (path or URL of the document to analyze)")
	}

	document, err := readDocument(ctx, docPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load document: %w", err)
	}

	if err := embedder.Validate(log); err != nil {
		return nil, err
	}
	emb, err := embedder.NewFromEnv(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to initialise embedder: %w", err)
	}
	log.Info("embedder initialised", slog.String("backend", embedder.ResolveBackend()))

	store, qdrantStore, err := buildVectorStore(ctx, log)
	if err != nil {
		return nil, err
	}
	closeStore := func() { _ = store.Close() }

	pipeline, err := ingestion.NewPipeline(emb, store, &ingestion.Config{
		ChunkSize:    getEnvInt("CHUNK_SIZE", 0),
		ChunkOverlap: getEnvInt("CHUNK_OVERLAP", 0),
	})
	if err != nil {
		closeStore()
		return nil, fmt.Errorf("failed to create ingestion pipeline: %w", err)
	}

	sources := []ingestion.Source{{
		Location: docPath,
		Title:    os.Getenv("DOCUMENT_TITLE"),
	}}
	result, err := pipeline.EnsureIndexed(ctx, sources, forceReindex, func(msg string) {
		log.Info(msg)
	})
	if err != nil {
		closeStore()
		return nil, fmt.Errorf("indexing failed: %w", err)
	}
	if result.Reused {
		log.Info("index already populated, reusing", slog.Int("chunks", result.Chunks))
	} else {
		log.Info("document indexed", slog.Int("chunks", result.Chunks))
	}

	retriever, err := rag.NewRetriever(emb, store, getEnvInt("TOP_K", 0))
	if err != nil {
		closeStore()
		return nil, fmt.Errorf("failed to create retriever: %w", err)
	}

	chatModel, err := provider.NewFromEnv(ctx)
	if err != nil {
		closeStore()
		return nil, fmt.Errorf("failed to initialise model provider: %w", err)
	}

	analyst, err := agent.New(&agent.Config{
		ChatModel:        chatModel,
		Retriever:        retriever,
		Document:         document,
		DocumentTitle:    os.Getenv("DOCUMENT_TITLE"),
		DefaultTopK:      getEnvInt("TOP_K", 0),
		MaxContextTokens: getEnvInt("MAX_CONTEXT_TOKENS", 0),
	})
	if err != nil {
		closeStore()
		return nil, fmt.Errorf("failed to initialise analyst: %w", err)
	}

	return &analystStack{
		analyst:   analyst,
		chatModel: chatModel,
		qdrant:    qdrantStore,
		chunks:    result.Chunks,
		close:     closeStore,
	}, nil
}

// buildVectorStore selects the vector store backend. Qdrant is used when
// QDRANT_HOST is set or VECTOR_STORE=qdrant; otherwise the process-local
// in-memory store is used, which suits one-shot CLI runs.
func buildVectorStore(ctx context.Context, log *slog.Logger) (rag.VectorStore, *rag.QdrantStore, error) {
	backend := getEnvOrDefault("VECTOR_STORE", "")
	if backend == "" {
		if os.Getenv("QDRANT_HOST") != "" {
			backend = "qdrant"
		} else {
			backend = "memory"
		}
	}

	switch backend {
	case "memory":
		log.Info("using in-memory vector store")
		return rag.NewMemoryStore(), nil, nil
	case "qdrant":
		host := getEnvOrDefault("QDRANT_HOST", "localhost")
		port := getEnvInt("QDRANT_PORT", 6334)
		collection := getEnvOrDefault("QDRANT_COLLECTION", "analyst-docs")
		vectorSize := uint64(embedder.DefaultDimensions(embedder.ResolveBackend())) //nolint:gosec // dimensions are bounded

		qs, err := rag.NewQdrantStore(ctx, &rag.QdrantConfig{
			Host:       host,
			Port:       port,
			Collection: collection,
			VectorSize: vectorSize,
			APIKey:     os.Getenv("QDRANT_API_KEY"),
			UseTLS:     os.Getenv("QDRANT_TLS") == "true",
		})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to Qdrant at %s:%d: %w", host, port, err)
		}
		log.Info("qdrant store ready",
			slog.String("host", host),
			slog.Int("port", port),
			slog.String("collection", collection),
		)
		return qs, qs, nil
	default:
		return nil, nil, fmt.Errorf("unknown VECTOR_STORE %q (valid: memory, qdrant)", backend)
	}
}

// readDocument loads the document at the given location: a local file path,
// or an http(s) URL fetched with a bounded timeout.
func readDocument(ctx context.Context, location string) (string, error) {
	if strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://") {
		client := &http.Client{Timeout: 30 * time.Second}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
		if err != nil {
			return "", fmt.Errorf("build request for %s: %w", location, err)
		}
		resp, err := client.Do(req)
		if err != nil {
			return "", fmt.Errorf("fetch %s: %w", location, err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return "", fmt.Errorf("fetch %s: unexpected status %d", location, resp.StatusCode)
		}
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return "", fmt.Errorf("read %s: %w", location, err)
		}
		return string(body), nil
	}

	data, err := os.ReadFile(location)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", location, err)
	}
	return string(data), nil
}

// getEnvOrDefault returns the env var value, or fallback when unset or empty.
func getEnvOrDefault(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

// getEnvInt returns the env var parsed as an int, or fallback when unset or
// unparseable.
func getEnvInt(key string, fallback int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

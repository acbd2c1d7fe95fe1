// Package ingestion implements the document ingestion pipeline.
// It loads market research documents from local files or HTTP(S) URLs,
// chunks the content, embeds each chunk, and upserts the results into the
// vector store. The pipeline is invoked at server startup and by the
// `analyst ingest` CLI command.
package ingestion

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/54b3r/analyst-go/internal/chunker"
	"github.com/54b3r/analyst-go/internal/rag"
)

// Source describes a document to be ingested, either a local file path or an
// HTTP(S) URL.
type Source struct {
	// Location is the file path or URL of the document.
	Location string

	// Title optionally overrides the inferred document title.
	Title string
}

// Config holds the configuration for the ingestion pipeline.
type Config struct {
	// ChunkSize is the maximum number of characters per document chunk.
	// Defaults to 1000 if zero.
	ChunkSize int

	// ChunkOverlap is the number of characters to overlap between consecutive
	// chunks. Defaults to 200 if zero or out of range.
	ChunkOverlap int

	// HTTPTimeout is the timeout for each URL fetch. Defaults to 30s if zero.
	HTTPTimeout time.Duration

	// UserAgent is the HTTP User-Agent header sent with fetch requests.
	UserAgent string

	// EmbedBatchSize caps the number of chunks sent to the embedder per call.
	// Defaults to 64 if zero.
	EmbedBatchSize int
}

// Result summarises an ingestion run.
type Result struct {
	// Sources is the number of documents processed.
	Sources int
	// Chunks is the total number of chunks embedded and stored.
	Chunks int
	// Reused is true when the vector store was already populated and the run
	// skipped re-embedding entirely.
	Reused bool
	// Documents holds the inferred metadata for each processed source.
	Documents []InferredMetadata
}

// Pipeline orchestrates the load → chunk → embed → upsert flow for a set of
// document sources.
type Pipeline struct {
	// embedder converts text chunks into dense vector embeddings.
	embedder rag.Embedder

	// store persists the embedded chunks.
	store rag.VectorStore

	// splitter produces overlapping chunks with source offsets.
	splitter *chunker.Chunker

	// cfg holds the resolved pipeline configuration.
	cfg *Config

	// httpClient is the HTTP client used for fetching URL sources.
	httpClient *http.Client
}

// NewPipeline constructs a Pipeline from the provided dependencies and config.
func NewPipeline(embedder rag.Embedder, store rag.VectorStore, cfg *Config) (*Pipeline, error) {
	if embedder == nil {
		return nil, fmt.Errorf("ingestion: embedder must not be nil")
	}
	if store == nil {
		return nil, fmt.Errorf("ingestion: store must not be nil")
	}
	if cfg == nil {
		cfg = &Config{}
	}
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = chunker.DefaultSize
	}
	if cfg.ChunkOverlap <= 0 || cfg.ChunkOverlap >= cfg.ChunkSize {
		cfg.ChunkOverlap = cfg.ChunkSize / 5
	}
	if cfg.HTTPTimeout <= 0 {
		cfg.HTTPTimeout = 30 * time.Second
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "analyst-go/1.0 (market research ingestion)"
	}
	if cfg.EmbedBatchSize <= 0 {
		cfg.EmbedBatchSize = 64
	}

	splitter, err := chunker.New(cfg.ChunkSize, cfg.ChunkOverlap)
	if err != nil {
		return nil, fmt.Errorf("ingestion: %w", err)
	}

	return &Pipeline{
		embedder: embedder,
		store:    store,
		splitter: splitter,
		cfg:      cfg,
		httpClient: &http.Client{
			Timeout: cfg.HTTPTimeout,
		},
	}, nil
}

// EnsureIndexed populates the vector store from sources unless it already
// holds documents. When force is true the existing contents are ignored and
// every source is re-embedded. This makes server startup cheap on restart:
// an already-populated collection is reused as-is.
func (p *Pipeline) EnsureIndexed(ctx context.Context, sources []Source, force bool, progress func(msg string)) (*Result, error) {
	if !force {
		count, err := p.store.Count(ctx)
		if err != nil {
			return nil, fmt.Errorf("ingestion: count existing documents: %w", err)
		}
		if count > 0 {
			return &Result{Reused: true, Chunks: int(count)}, nil
		}
	}
	return p.Ingest(ctx, sources, progress)
}

// Ingest loads, chunks, embeds, and stores all provided sources.
// It processes sources sequentially and returns the first error encountered.
// Progress is reported via the optional progress callback.
func (p *Pipeline) Ingest(ctx context.Context, sources []Source, progress func(msg string)) (*Result, error) {
	if progress == nil {
		progress = func(string) {}
	}

	result := &Result{}
	nextIndex := 0
	for _, src := range sources {
		progress(fmt.Sprintf("loading %s", src.Location))

		content, err := p.load(ctx, src.Location)
		if err != nil {
			return nil, fmt.Errorf("ingestion: load failed for %s: %w", src.Location, err)
		}

		meta := InferMetadata(src.Location, content)
		if src.Title != "" {
			meta.Title = src.Title
		}

		chunks := p.splitter.Split(strings.TrimSpace(content))
		if len(chunks) == 0 {
			return nil, fmt.Errorf("ingestion: %s is empty", src.Location)
		}
		progress(fmt.Sprintf("chunked %s (%s) into %d chunks", src.Location, meta.Kind, len(chunks)))

		if err := p.index(ctx, chunks, &nextIndex); err != nil {
			return nil, fmt.Errorf("ingestion: %s: %w", src.Location, err)
		}

		result.Sources++
		result.Chunks += len(chunks)
		result.Documents = append(result.Documents, meta)
		progress(fmt.Sprintf("ingested %d chunks from %s", len(chunks), src.Location))
	}

	return result, nil
}

// index embeds chunks in batches and upserts them into the store. nextIndex
// numbers chunks globally across sources so IDs stay unique.
func (p *Pipeline) index(ctx context.Context, chunks []chunker.Chunk, nextIndex *int) error {
	for offset := 0; offset < len(chunks); offset += p.cfg.EmbedBatchSize {
		end := offset + p.cfg.EmbedBatchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		batch := chunks[offset:end]

		texts := make([]string, len(batch))
		for i, ch := range batch {
			texts[i] = ch.Text
		}

		embeddings, err := p.embedder.Embed(ctx, texts, rag.IntentDocument)
		if err != nil {
			return fmt.Errorf("embedding failed: %w", err)
		}

		docs := make([]rag.Document, len(batch))
		for i, ch := range batch {
			idx := *nextIndex + i
			docs[i] = rag.Document{
				ID:          fmt.Sprintf("chunk_%d", idx),
				Content:     ch.Text,
				ChunkIndex:  idx,
				StartOffset: ch.Start,
				EndOffset:   ch.End,
			}
		}

		if err := p.store.Upsert(ctx, docs, embeddings); err != nil {
			return fmt.Errorf("upsert failed: %w", err)
		}
		*nextIndex += len(batch)
	}
	return nil
}

// load retrieves the raw text of a source, dispatching on whether the
// location looks like a URL or a local path.
func (p *Pipeline) load(ctx context.Context, location string) (string, error) {
	if strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://") {
		return p.fetch(ctx, location)
	}
	data, err := os.ReadFile(location)
	if err != nil {
		return "", fmt.Errorf("reading file: %w", err)
	}
	return string(data), nil
}

// fetch retrieves the raw text content of a URL.
func (p *Pipeline) fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", p.cfg.UserAgent)
	req.Header.Set("Accept", "text/plain, text/markdown, text/html")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("http get: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %d for %s", resp.StatusCode, url)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading body: %w", err)
	}

	return string(body), nil
}

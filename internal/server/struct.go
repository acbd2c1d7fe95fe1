package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/54b3r/analyst-go/internal/agent"
	"github.com/54b3r/analyst-go/internal/store"
)

// Config holds the HTTP server configuration.
type Config struct {
	// Host is the address to bind to (default: 127.0.0.1).
	Host string
	// Port is the TCP port to listen on (default: 8080).
	Port int
	// ReadTimeout is the maximum duration for reading the request.
	ReadTimeout time.Duration
	// WriteTimeout is the maximum duration for writing the response.
	// Must be long enough for a full model generation round trip.
	WriteTimeout time.Duration
	// ShutdownTimeout is the maximum duration for a graceful shutdown.
	ShutdownTimeout time.Duration
	// Logger is the structured logger used by the server and its handlers.
	// If nil, [slog.Default] is used.
	Logger *slog.Logger
	// Pingers is the ordered list of dependency probes run by GET /api/ready.
	// If empty, /api/ready returns 200 with no checks (liveness-only mode).
	Pingers []Pinger
	// RateLimit is the sustained request rate allowed per IP on rate-limited
	// endpoints (requests/second). Defaults to 10 if zero.
	RateLimit float64
	// RateBurst is the maximum instantaneous burst per IP. Defaults to 20 if zero.
	RateBurst int
	// APIKey is the Bearer token required on all protected /api/v1/* routes.
	// If empty, authentication is disabled (development mode).
	APIKey string
	// History records completed requests when non-nil. A nil store disables
	// history without affecting request handling.
	History store.HistoryStore
	// MetricsRegistry receives the server's Prometheus metrics. Defaults to
	// [prometheus.DefaultRegisterer].
	MetricsRegistry prometheus.Registerer
	// MetricsGatherer backs the GET /metrics endpoint. Defaults to
	// [prometheus.DefaultGatherer].
	MetricsGatherer prometheus.Gatherer
	// Status describes the running deployment in the GET /api/health payload.
	// Zero-value fields are omitted from the response.
	Status StatusInfo
}

// StatusInfo is the deployment metadata reported by GET /api/health.
type StatusInfo struct {
	// Provider is the chat model provider in use.
	Provider string `json:"provider,omitempty"`
	// Model is the chat model identifier.
	Model string `json:"model,omitempty"`
	// EmbeddingProvider is the embedding backend in use.
	EmbeddingProvider string `json:"embedding_provider,omitempty"`
	// DocumentTitle is the title of the indexed document.
	DocumentTitle string `json:"document_title,omitempty"`
	// IndexedChunks is the number of chunks in the vector index.
	IndexedChunks int `json:"indexed_chunks,omitempty"`
}

// analystService is the interface the handlers call. *agent.Analyst satisfies
// it; tests inject a fake.
type analystService interface {
	// Answer runs retrieval-augmented Q&A over the indexed document.
	Answer(ctx context.Context, question string, topK int) (*agent.QAResult, error)
	// Summarize produces a styled summary of the whole document.
	Summarize(ctx context.Context, style agent.Style, maxWords int) (*agent.SummaryResult, error)
	// Extract pulls structured metrics out of the document.
	Extract(ctx context.Context) (*agent.ExtractResult, error)
	// Route picks the right tool for a free-form query and dispatches to it.
	Route(ctx context.Context, query string) (*agent.RouteResult, error)
}

// Server is the HTTP server that exposes the analyst over a REST API.
type Server struct {
	// analyst handles all analysis requests.
	analyst analystService
	// cfg holds the resolved server configuration.
	cfg *Config
	// httpServer is the underlying net/http server.
	httpServer *http.Server
	// log is the structured logger for this server instance.
	log *slog.Logger
	// pingers is the ordered list of dependency probes for GET /api/ready.
	pingers []Pinger
	// history records completed requests; nil disables history.
	history store.HistoryStore
	// metrics holds the Prometheus instruments owned by this server.
	metrics *serverMetrics
	// stopRL stops the rate limiter's background eviction goroutine on shutdown.
	stopRL func()
}

// qaRequest is the JSON body for POST /api/v1/qa.
type qaRequest struct {
	// Question is the natural language question to answer.
	Question string `json:"question"`
	// TopK is the number of chunks to retrieve. Zero selects the default.
	TopK int `json:"top_k"`
}

// summarizeRequest is the JSON body for POST /api/v1/summarize.
type summarizeRequest struct {
	// SummaryType selects the summary style: comprehensive, executive,
	// or key_findings. Empty selects comprehensive.
	SummaryType string `json:"summary_type"`
	// MaxWords is the requested summary length ceiling. Zero selects the default.
	MaxWords int `json:"max_words"`
}

// autoRequest is the JSON body for POST /api/v1/auto.
type autoRequest struct {
	// Query is the free-form query to route to the right tool.
	Query string `json:"query"`
}

// healthResponse is the JSON body for GET /api/health.
type healthResponse struct {
	// Status is always "ok" when the process is serving.
	Status string `json:"status"`
	// Version is the build version of the running binary.
	Version string `json:"version"`
	// StatusInfo carries the deployment metadata configured at startup.
	StatusInfo
}

// errorResponse is the JSON body for all error status codes.
type errorResponse struct {
	// Error is a human-readable description of what went wrong.
	Error string `json:"error"`
}

// historyEntry is one record in the GET /api/v1/history response.
type historyEntry struct {
	// Operation is the capability that served the request.
	Operation string `json:"operation"`
	// Query is the question or query text, when the operation takes one.
	Query string `json:"query,omitempty"`
	// Tool is where a routed request was dispatched. Empty for direct requests.
	Tool string `json:"tool,omitempty"`
	// Confidence is the response confidence, when the operation produces one.
	Confidence float64 `json:"confidence,omitempty"`
	// CreatedAt is the RFC3339 timestamp of the request.
	CreatedAt string `json:"created_at"`
}

// historyResponse is the JSON body for GET /api/v1/history.
type historyResponse struct {
	// Requests lists the most recent requests, newest-first.
	Requests []historyEntry `json:"requests"`
}

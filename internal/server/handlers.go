package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/54b3r/analyst-go/internal/agent"
	"github.com/54b3r/analyst-go/internal/logging"
	"github.com/54b3r/analyst-go/internal/store"
	"github.com/54b3r/analyst-go/internal/version"
)

// handleQA handles POST /api/v1/qa: retrieval-augmented question answering.
func (s *Server) handleQA(w http.ResponseWriter, r *http.Request) {
	var req qaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	start := time.Now()
	res, err := s.analyst.Answer(r.Context(), req.Question, req.TopK)
	if err != nil {
		s.observe("qa", outcomeOf(err), start)
		s.writeAgentError(w, r, err)
		return
	}
	s.observe("qa", "ok", start)
	s.metrics.answerConfidence.WithLabelValues("qa").Observe(res.Confidence)

	s.record(r, store.Record{Operation: store.OpQA, Query: req.Question, Confidence: res.Confidence})
	writeJSON(w, http.StatusOK, res)
}

// handleSummarize handles POST /api/v1/summarize: whole-document summarization.
func (s *Server) handleSummarize(w http.ResponseWriter, r *http.Request) {
	var req summarizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	style, err := agent.ParseStyle(req.SummaryType)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	start := time.Now()
	res, err := s.analyst.Summarize(r.Context(), style, req.MaxWords)
	if err != nil {
		s.observe("summarize", outcomeOf(err), start)
		s.writeAgentError(w, r, err)
		return
	}
	s.observe("summarize", "ok", start)

	s.record(r, store.Record{Operation: store.OpSummarize, Query: req.SummaryType})
	writeJSON(w, http.StatusOK, res)
}

// handleExtract handles POST /api/v1/extract: structured data extraction.
// A parse failure is a successful HTTP exchange — the result carries
// success:false with the failure detail, not an error status.
func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	res, err := s.analyst.Extract(r.Context())
	if err != nil {
		s.observe("extract", outcomeOf(err), start)
		s.writeAgentError(w, r, err)
		return
	}
	s.observe("extract", "ok", start)

	s.record(r, store.Record{Operation: store.OpExtract})
	writeJSON(w, http.StatusOK, res)
}

// handleAuto handles POST /api/v1/auto: routes a free-form query to the
// right tool and returns the routing decision alongside the tool's result.
func (s *Server) handleAuto(w http.ResponseWriter, r *http.Request) {
	var req autoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	start := time.Now()
	res, err := s.analyst.Route(r.Context(), req.Query)
	if err != nil {
		s.observe("auto", outcomeOf(err), start)
		s.writeAgentError(w, r, err)
		return
	}
	s.observe("auto", "ok", start)
	s.metrics.answerConfidence.WithLabelValues("auto").Observe(res.Routing.Confidence)

	s.record(r, store.Record{
		Operation:  store.OpRoute,
		Query:      req.Query,
		Tool:       res.Routing.Tool,
		Confidence: res.Routing.Confidence,
	})
	writeJSON(w, http.StatusOK, res)
}

// historyDefaultLimit is the number of records returned by GET /api/v1/history
// when no limit parameter is supplied.
const historyDefaultLimit = 20

// historyMaxLimit caps the limit parameter of GET /api/v1/history.
const historyMaxLimit = 100

// handleHistory handles GET /api/v1/history: recent request records,
// newest-first. Accepts an optional ?limit= query parameter.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		writeError(w, http.StatusNotFound, "history is disabled")
		return
	}

	limit := historyDefaultLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, historyMaxLimit)
	}

	recs, err := s.history.Recent(r.Context(), limit)
	if err != nil {
		logging.FromContext(r.Context()).Error("history query failed", slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, "could not read history")
		return
	}

	resp := historyResponse{Requests: make([]historyEntry, 0, len(recs))}
	for _, rec := range recs {
		resp.Requests = append(resp.Requests, historyEntry{
			Operation:  string(rec.Operation),
			Query:      rec.Query,
			Tool:       rec.Tool,
			Confidence: rec.Confidence,
			CreatedAt:  rec.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleHealth handles GET /api/health for liveness checks. The payload
// carries deployment metadata so operators can see at a glance which model
// and document a running instance serves.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:     "ok",
		Version:    version.Version,
		StatusInfo: s.cfg.Status,
	})
}

// writeAgentError maps an agent error to the right HTTP status: invalid
// input is the caller's fault (400), an upstream failure is a bad gateway
// (502), anything else is internal (500).
func (s *Server) writeAgentError(w http.ResponseWriter, r *http.Request, err error) {
	log := logging.FromContext(r.Context())

	switch {
	case errors.Is(err, agent.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err.Error())
	case agent.IsUpstream(err):
		log.Error("upstream failure", slog.Any("error", err))
		writeError(w, http.StatusBadGateway, err.Error())
	default:
		log.Error("request failed", slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

// record appends a request record to the history store. History failures are
// logged and swallowed — they must never fail the request that produced them.
func (s *Server) record(r *http.Request, rec store.Record) {
	if s.history == nil {
		return
	}
	if err := s.history.Append(r.Context(), rec); err != nil {
		logging.FromContext(r.Context()).Warn("history append failed", slog.Any("error", err))
	}
}

// observe updates the per-operation request counter and duration histogram.
func (s *Server) observe(operation, outcome string, start time.Time) {
	s.metrics.requestsTotal.WithLabelValues(operation, outcome).Inc()
	s.metrics.requestDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

// outcomeOf classifies an agent error for the outcome metric label.
func outcomeOf(err error) string {
	switch {
	case errors.Is(err, agent.ErrInvalidInput):
		return "invalid"
	case agent.IsUpstream(err):
		return "upstream_error"
	default:
		return "error"
	}
}

// writeJSON encodes v as the JSON response body with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error body with the given status.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

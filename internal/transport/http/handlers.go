package httptransport

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"procsync/internal/process/models"
	"procsync/pkg/platform/sentinel"
)

// Pinger reports whether a backing dependency is reachable.
type Pinger interface {
	Health(ctx context.Context) error
}

// HealthCheck names one dependency probed by /healthz.
type HealthCheck struct {
	Name   string
	Pinger Pinger
}

// Dispatcher enqueues jobs triggered over HTTP.
type Dispatcher interface {
	DispatchRefresh(ctx context.Context, number string) error
	DispatchDiscover(ctx context.Context, tier string, window time.Duration, maxResults, page int) error
	DispatchSweep(ctx context.Context, limit int) error
}

// ProcessReader is the read slice of the process stores the API exposes.
type ProcessReader interface {
	Find(ctx context.Context, number string) (*models.Process, error)
}

type EventReader interface {
	ListByProcess(ctx context.Context, number string) ([]models.Event, error)
}

type PartyReader interface {
	ListByProcess(ctx context.Context, number string) ([]models.Party, error)
}

type Handler struct {
	processes  ProcessReader
	events     EventReader
	parties    PartyReader
	dispatcher Dispatcher
	checks     []HealthCheck
	sweepLimit int
	logger     *slog.Logger
}

// NewHandler builds the operational handler set. sweepLimit caps sweep jobs
// triggered without an explicit limit; zero means unbounded.
func NewHandler(processes ProcessReader, events EventReader, parties PartyReader, dispatcher Dispatcher, checks []HealthCheck, sweepLimit int, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		processes:  processes,
		events:     events,
		parties:    parties,
		dispatcher: dispatcher,
		checks:     checks,
		sweepLimit: sweepLimit,
		logger:     logger,
	}
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	status := http.StatusOK
	deps := make(map[string]string, len(h.checks))
	for _, check := range h.checks {
		if err := check.Pinger.Health(ctx); err != nil {
			deps[check.Name] = err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		deps[check.Name] = "ok"
	}
	overall := "ok"
	if status != http.StatusOK {
		overall = "degraded"
	}
	writeJSON(w, status, map[string]any{
		"status":       overall,
		"dependencies": deps,
	})
}

func (h *Handler) handleGetProcess(w http.ResponseWriter, r *http.Request) {
	number := chi.URLParam(r, "number")
	proc, err := h.processes.Find(r.Context(), number)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, proc)
}

func (h *Handler) handleListEvents(w http.ResponseWriter, r *http.Request) {
	number := chi.URLParam(r, "number")
	events, err := h.events.ListByProcess(r.Context(), number)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"process": number,
		"events":  events,
	})
}

func (h *Handler) handleListParties(w http.ResponseWriter, r *http.Request) {
	number := chi.URLParam(r, "number")
	parties, err := h.parties.ListByProcess(r.Context(), number)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"process": number,
		"parties": parties,
	})
}

func (h *Handler) handleDispatchRefresh(w http.ResponseWriter, r *http.Request) {
	number := chi.URLParam(r, "number")
	if err := h.dispatcher.DispatchRefresh(r.Context(), number); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{
		"status":  "queued",
		"process": number,
	})
}

type discoverRequest struct {
	Tier          string `json:"tier"`
	WindowMinutes int    `json:"window_minutes"`
	MaxResults    int    `json:"max_results"`
	Page          int    `json:"page"`
}

func (h *Handler) handleDispatchDiscover(w http.ResponseWriter, r *http.Request) {
	var req discoverRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Tier == "" || req.WindowMinutes <= 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "tier and window_minutes are required"})
		return
	}

	window := time.Duration(req.WindowMinutes) * time.Minute
	if err := h.dispatcher.DispatchDiscover(r.Context(), req.Tier, window, req.MaxResults, req.Page); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{
		"status": "queued",
		"tier":   req.Tier,
	})
}

type sweepRequest struct {
	Limit int `json:"limit"`
}

// handleDispatchSweep queues a staleness sweep. The body is optional; an
// absent or zero limit falls back to the configured default.
func (h *Handler) handleDispatchSweep(w http.ResponseWriter, r *http.Request) {
	var req sweepRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	limit := req.Limit
	if limit <= 0 {
		limit = h.sweepLimit
	}

	if err := h.dispatcher.DispatchSweep(r.Context(), limit); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]any{
		"status": "queued",
		"limit":  limit,
	})
}

// writeError translates sentinel errors to HTTP status codes; anything else
// is a 500 with the detail kept server-side.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
	case errors.Is(err, sentinel.ErrUnavailable):
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "upstream unavailable"})
	default:
		h.logger.ErrorContext(r.Context(), "request failed",
			"path", r.URL.Path,
			"error", err,
		)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

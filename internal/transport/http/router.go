// Package httptransport is the thin HTTP layer. It delegates to the process
// service and stores without embedding business logic so transport concerns
// remain isolated.
package httptransport

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter wires the operational surface: health, metrics, process reads
// and job triggers.
func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)

	r.Get("/healthz", h.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/processes", func(r chi.Router) {
		r.Get("/{number}", h.handleGetProcess)
		r.Get("/{number}/events", h.handleListEvents)
		r.Get("/{number}/parties", h.handleListParties)
	})

	r.Route("/jobs", func(r chi.Router) {
		r.Post("/refresh/{number}", h.handleDispatchRefresh)
		r.Post("/discover", h.handleDispatchDiscover)
		r.Post("/sweep", h.handleDispatchSweep)
	})

	return r
}

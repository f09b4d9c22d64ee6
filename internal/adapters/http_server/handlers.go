// internal/adapters/http_server/handlers.go
package httpserver

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"hostel_rates/internal/app"
	"hostel_rates/internal/domain"
)

type Handlers struct{ R *app.RateService }

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })
	s.mux.Post("/v1/rates", h.runRates)
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

type ratesRequest struct {
	Start string `json:"start"`
	End   string `json:"end,omitempty"`
}

// runRates executes one scrape-and-derive run for the requested window and
// returns the full report: rows plus failures, both in property order.
func (h *Handlers) runRates(w http.ResponseWriter, r *http.Request) {
	var req ratesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid body", "body must be JSON with a start date")
		return
	}

	start, err := time.Parse("2006-01-02", req.Start)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid start", "start must be YYYY-MM-DD")
		return
	}
	window := domain.DateWindow{Start: start}
	if req.End != "" {
		end, err := time.Parse("2006-01-02", req.End)
		if err != nil {
			writeProblem(w, http.StatusBadRequest, "Invalid end", "end must be YYYY-MM-DD")
			return
		}
		if end.Before(start) {
			writeProblem(w, http.StatusBadRequest, "Invalid range", "end must not precede start")
			return
		}
		window.End = &end
	}

	report, err := h.R.Run(r.Context(), window)
	if err != nil {
		log.Error().Err(err).Msg("rates run failed")
		writeProblem(w, http.StatusInternalServerError, "Run failed", "could not load properties")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(report); err != nil {
		log.Error().Err(err).Msg("failed to write rates response")
	}
}

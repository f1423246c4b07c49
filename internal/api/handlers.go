package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"ticketsim/internal/domain/flight"
	"ticketsim/internal/domain/passport"
	"ticketsim/internal/domain/run"
	"ticketsim/internal/domain/ticket"
	"ticketsim/internal/usecase"

	"github.com/go-chi/chi/v5"
)

type RunStarter interface {
	Execute(ctx context.Context, params usecase.RunSimulationParams) (*run.Run, error)
}

type RunGetter interface {
	Execute(ctx context.Context, runID string) (*run.Run, error)
}

type TicketLister interface {
	Execute(ctx context.Context, transactionID string) ([]ticket.Ticket, error)
}

type Handlers struct {
	startRun    RunStarter
	getRun      RunGetter
	listTickets TicketLister
}

func NewHandlers(startRun RunStarter, getRun RunGetter, listTickets TicketLister) *Handlers {
	return &Handlers{
		startRun:    startRun,
		getRun:      getRun,
		listTickets: listTickets,
	}
}

type startRunRequest struct {
	CooldownDays *int    `json:"cooldown_days"`
	ForceFill    *bool   `json:"force_fill"`
	Seed         *uint64 `json:"seed"`
}

// StartRun runs a simulation synchronously and answers with the finished run.
// An empty body uses the configured defaults.
func (h *Handlers) StartRun(w http.ResponseWriter, r *http.Request) {
	var req startRunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.startRun.Execute(r.Context(), usecase.RunSimulationParams{
		Trigger:      "http",
		CooldownDays: req.CooldownDays,
		ForceFill:    req.ForceFill,
		Seed:         req.Seed,
	})
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, result)
}

func (h *Handlers) GetRun(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing run id")
		return
	}

	result, err := h.getRun.Execute(r.Context(), id)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}

	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	writeJSON(w, http.StatusOK, result)
}

func (h *Handlers) ListFlightTickets(w http.ResponseWriter, r *http.Request) {
	transactionID := chi.URLParam(r, "transactionID")
	if transactionID == "" {
		writeError(w, http.StatusBadRequest, "missing transaction id")
		return
	}

	tickets, err := h.listTickets.Execute(r.Context(), transactionID)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	if tickets == nil {
		tickets = []ticket.Ticket{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"transaction_id": transactionID,
		"tickets":        tickets,
	})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, run.ErrRunNotFound):
		return http.StatusNotFound
	case errors.Is(err, run.ErrRunInProgress):
		return http.StatusConflict
	case errors.Is(err, usecase.ErrInvalidParams):
		return http.StatusBadRequest
	case errors.Is(err, flight.ErrInvalidFlight), errors.Is(err, passport.ErrInvalidPassport):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"ticketsim/internal/domain/flight"
	"ticketsim/internal/domain/run"
	"ticketsim/internal/domain/ticket"
	"ticketsim/internal/usecase"
)

type fakeStarter struct {
	got usecase.RunSimulationParams
	err error
}

func (f *fakeStarter) Execute(_ context.Context, params usecase.RunSimulationParams) (*run.Run, error) {
	f.got = params
	if f.err != nil {
		return nil, f.err
	}
	return &run.Run{ID: "run-1", Status: run.StatusFinished, Tickets: 3}, nil
}

type fakeGetter map[string]*run.Run

func (f fakeGetter) Execute(_ context.Context, id string) (*run.Run, error) {
	r, ok := f[id]
	if !ok {
		return nil, fmt.Errorf("get run: %w", run.ErrRunNotFound)
	}
	return r, nil
}

type fakeLister map[string][]ticket.Ticket

func (f fakeLister) Execute(_ context.Context, tx string) ([]ticket.Ticket, error) {
	return f[tx], nil
}

func newTestServer(starter *fakeStarter) http.Handler {
	getter := fakeGetter{"run-1": {ID: "run-1", Status: run.StatusFinished}}
	lister := fakeLister{"TX1": {{
		UniqueID:       ticket.UniqueID("TX1", 4),
		TransactionID:  "TX1",
		SeatNumber:     4,
		PassportNumber: "P1",
		CheckInType:    ticket.CheckInOnline,
		CheckinTime:    time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC),
	}}}
	return NewRouter(NewHandlers(starter, getter, lister), nil)
}

func TestStartRun(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		err        error
		wantStatus int
	}{
		{name: "empty body uses defaults", body: "", wantStatus: http.StatusCreated},
		{name: "overrides", body: `{"cooldown_days":3,"force_fill":true,"seed":7}`, wantStatus: http.StatusCreated},
		{name: "malformed body", body: `{"cooldown_days":`, wantStatus: http.StatusBadRequest},
		{name: "run in progress", err: run.ErrRunInProgress, wantStatus: http.StatusConflict},
		{name: "invalid params", err: fmt.Errorf("%w: negative", usecase.ErrInvalidParams), wantStatus: http.StatusBadRequest},
		{name: "invalid flight data", err: fmt.Errorf("simulate tickets: %w", flight.ErrInvalidFlight), wantStatus: http.StatusUnprocessableEntity},
		{name: "store failure", err: fmt.Errorf("create run: boom"), wantStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			starter := &fakeStarter{err: tt.err}
			req := httptest.NewRequest(http.MethodPost, "/runs", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()

			newTestServer(starter).ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if tt.wantStatus == http.StatusCreated && starter.got.Trigger != "http" {
				t.Fatalf("trigger = %q, want http", starter.got.Trigger)
			}
		})
	}
}

func TestStartRunPassesOverrides(t *testing.T) {
	starter := &fakeStarter{}
	req := httptest.NewRequest(http.MethodPost, "/runs", strings.NewReader(`{"cooldown_days":0,"seed":42}`))
	rec := httptest.NewRecorder()

	newTestServer(starter).ServeHTTP(rec, req)

	if starter.got.CooldownDays == nil || *starter.got.CooldownDays != 0 {
		t.Fatalf("cooldown override lost: %+v", starter.got)
	}
	if starter.got.Seed == nil || *starter.got.Seed != 42 {
		t.Fatalf("seed override lost: %+v", starter.got)
	}
	if starter.got.ForceFill != nil {
		t.Fatalf("force_fill should stay unset: %+v", starter.got)
	}

	var got run.Run
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.ID != "run-1" || got.Tickets != 3 {
		t.Fatalf("unexpected run %+v", got)
	}
}

func TestGetRun(t *testing.T) {
	srv := newTestServer(&fakeStarter{})

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/runs/run-1", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/runs/missing", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestListFlightTickets(t *testing.T) {
	srv := newTestServer(&fakeStarter{})

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/flights/TX1/tickets", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body struct {
		TransactionID string          `json:"transaction_id"`
		Tickets       []ticket.Ticket `json:"tickets"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.TransactionID != "TX1" || len(body.Tickets) != 1 || body.Tickets[0].UniqueID != "TX1-S:4" {
		t.Fatalf("unexpected body %+v", body)
	}
	if body.Tickets[0].PassedSecurityTime != nil {
		t.Fatalf("security time should be absent")
	}

	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/flights/TX9/tickets", nil))
	if !strings.Contains(rec.Body.String(), `"tickets":[]`) {
		t.Fatalf("expected empty ticket list, got %s", rec.Body.String())
	}
}

func TestHealth(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestServer(&fakeStarter{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK || rec.Body.String() != "OK" {
		t.Fatalf("unexpected health response %d %q", rec.Code, rec.Body.String())
	}
}

package event

import (
	"encoding/json"
	"time"
)

const (
	TypeFlightsUpserted  = "FlightsUpserted"
	TypeTicketsSimulated = "TicketsSimulated"
)

// Message is the envelope exchanged over Kafka.
// Payload stays raw JSON owned by the producer.
type Message struct {
	ID            string          `json:"id"`
	Type          string          `json:"type"`
	CorrelationID string          `json:"correlation_id"`
	CausationID   string          `json:"causation_id,omitempty"`
	Producer      string          `json:"producer"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Payload       json.RawMessage `json:"payload"`
}

// FlightsUpserted is emitted by the flight ingestion pipeline once a window
// of flights has been written. Absent fields fall back to configuration.
type FlightsUpserted struct {
	CooldownDays *int    `json:"cooldown_days,omitempty"`
	ForceFill    *bool   `json:"force_fill,omitempty"`
	Seed         *uint64 `json:"seed,omitempty"`
}

// TicketsSimulated summarises a finished run.
type TicketsSimulated struct {
	RunID              string `json:"run_id"`
	Flights            int    `json:"flights"`
	Tickets            int    `json:"tickets"`
	UnderfilledFlights int    `json:"underfilled_flights"`
	ForcedSeats        int    `json:"forced_seats"`
}

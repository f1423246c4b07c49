package outbox

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"ticketsim/internal/domain/event"

	"github.com/google/uuid"
)

const (
	StatusNew        = "new"
	StatusProcessing = "processing"
	StatusProcessed  = "processed"
)

// Event is a message waiting in the outbox table until the poller publishes it.
type Event struct {
	ID            string    `json:"id"`
	EventType     string    `json:"event_type"`
	Payload       []byte    `json:"payload"`
	Status        string    `json:"status"`
	CorrelationID string    `json:"correlation_id"`
	CausationID   string    `json:"causation_id"`
	Producer      string    `json:"producer"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// NewEvent marshals payload into a new outbox row with a fresh id.
func NewEvent(eventType string, payload any, correlationID, causationID, producer string, at time.Time) (*Event, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", eventType, err)
	}
	return &Event{
		ID:            uuid.New().String(),
		EventType:     eventType,
		Payload:       raw,
		Status:        StatusNew,
		CorrelationID: correlationID,
		CausationID:   causationID,
		Producer:      producer,
		CreatedAt:     at,
	}, nil
}

// PartitionKey keeps events of one correlation on one partition.
func (e *Event) PartitionKey() []byte {
	if e.CorrelationID != "" {
		return []byte(e.CorrelationID)
	}
	return []byte(e.ID)
}

func (e *Event) Envelope() event.Message {
	return event.Message{
		ID:            e.ID,
		Type:          e.EventType,
		CorrelationID: e.CorrelationID,
		CausationID:   e.CausationID,
		Producer:      e.Producer,
		OccurredAt:    e.CreatedAt.UTC(),
		Payload:       e.Payload,
	}
}

type Repository interface {
	Create(ctx context.Context, event *Event) error
	FetchBatch(ctx context.Context, limit int) ([]*Event, error)
	MarkProcessed(ctx context.Context, ids []string) error
	MarkFailed(ctx context.Context, ids []string) error
}

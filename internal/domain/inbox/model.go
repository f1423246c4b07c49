package inbox

import "time"

// Event marks a Kafka message as handled by a consumer.
type Event struct {
	Consumer      string    `json:"consumer"`
	EventID       string    `json:"event_id"`
	EventType     string    `json:"event_type"`
	CorrelationID string    `json:"correlation_id"`
	ProcessedAt   time.Time `json:"processed_at"`
}

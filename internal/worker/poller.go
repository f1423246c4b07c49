package worker

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"ticketsim/internal/domain/outbox"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	eventsPublished = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ticketsim_outbox_events_published_total",
		Help: "The total number of events published to Kafka",
	})
	publishErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ticketsim_outbox_publish_errors_total",
		Help: "The total number of failed publish attempts",
	})
)

const sendTimeout = 5 * time.Second

type Publisher interface {
	SendMessage(ctx context.Context, key, value []byte) error
	Topic() string
}

type OutboxPoller struct {
	outboxRepo outbox.Repository
	publisher  Publisher
	interval   time.Duration
	batchSize  int
	logger     *slog.Logger
}

func NewOutboxPoller(outboxRepo outbox.Repository, publisher Publisher, interval time.Duration, batchSize int) *OutboxPoller {
	return &OutboxPoller{
		outboxRepo: outboxRepo,
		publisher:  publisher,
		interval:   interval,
		batchSize:  batchSize,
		logger:     slog.Default().With("component", "outbox-poller"),
	}
}

func (p *OutboxPoller) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.logger.Info("outbox poller started", "topic", p.publisher.Topic(), "interval", p.interval, "batch_size", p.batchSize)

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := p.ProcessBatch(ctx); err != nil {
				p.logger.Error("failed to process batch", "error", err)
			}
		}
	}
}

// ProcessBatch claims up to batchSize new events, publishes them keyed by
// correlation id and settles each as processed or back to new.
func (p *OutboxPoller) ProcessBatch(ctx context.Context) error {
	events, err := p.outboxRepo.FetchBatch(ctx, p.batchSize)
	if err != nil {
		return err
	}

	if len(events) == 0 {
		return nil
	}

	var processedIDs []string
	var failedIDs []string

	for _, e := range events {
		key := e.PartitionKey()
		value, err := json.Marshal(e.Envelope())
		if err != nil {
			p.logger.Error("failed to marshal event", "event_id", e.ID, "error", err)
			publishErrors.Inc()
			failedIDs = append(failedIDs, e.ID)
			continue
		}

		sendCtx, cancel := context.WithTimeout(ctx, sendTimeout)
		err = p.publisher.SendMessage(sendCtx, key, value)
		cancel()

		if err != nil {
			p.logger.Error("failed to send event to kafka", "event_id", e.ID, "error", err)
			publishErrors.Inc()
			failedIDs = append(failedIDs, e.ID)
			continue
		}

		eventsPublished.Inc()
		processedIDs = append(processedIDs, e.ID)
	}

	if len(processedIDs) > 0 {
		if err := p.outboxRepo.MarkProcessed(ctx, processedIDs); err != nil {
			return err
		}
		p.logger.Info("outbox events published", "count", len(processedIDs))
	}

	if len(failedIDs) > 0 {
		if err := p.outboxRepo.MarkFailed(ctx, failedIDs); err != nil {
			p.logger.Error("failed to mark events as failed", "error", err)
		}
	}

	return nil
}

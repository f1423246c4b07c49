package kafka

import (
	"context"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

const (
	defaultMaxAttempts  = 5
	defaultWriteTimeout = 10 * time.Second
)

type Config struct {
	Brokers      []string
	Topic        string
	MaxAttempts  int
	WriteTimeout time.Duration
}

// Producer publishes outbox events. Writes are synchronous and wait for all
// in-sync replicas, so a nil error means the event may be marked processed.
type Producer struct {
	writer *kafka.Writer
}

func NewProducer(cfg Config) *Producer {
	return &Producer{writer: newWriter(cfg)}
}

func newWriter(cfg Config) *kafka.Writer {
	attempts := cfg.MaxAttempts
	if attempts <= 0 {
		attempts = defaultMaxAttempts
	}
	timeout := cfg.WriteTimeout
	if timeout <= 0 {
		timeout = defaultWriteTimeout
	}

	return &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  cfg.Topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		MaxAttempts:            attempts,
		BatchTimeout:           10 * time.Millisecond,
		ReadTimeout:            timeout,
		WriteTimeout:           timeout,
		AllowAutoTopicCreation: true,
	}
}

// SendMessage writes one message; messages with the same key land on the
// same partition, so every event of a run stays ordered.
func (p *Producer) SendMessage(ctx context.Context, key, value []byte) error {
	err := p.writer.WriteMessages(ctx, kafka.Message{
		Key:   key,
		Value: value,
		Time:  time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("write message to %s: %w", p.writer.Topic, err)
	}
	return nil
}

func (p *Producer) Topic() string {
	return p.writer.Topic
}

func (p *Producer) Close() error {
	return p.writer.Close()
}

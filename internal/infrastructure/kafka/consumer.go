package kafka

import (
	"context"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
)

type Consumer struct {
	reader *kafka.Reader
}

// NewConsumer joins groupID on topic. startOffset applies only while the
// group has no committed offset: "latest" or "earliest" (default).
func NewConsumer(brokers []string, topic string, groupID string, startOffset string) *Consumer {
	dialer := &kafka.Dialer{
		Timeout:   10 * time.Second,
		DualStack: false, // Force IPv4
	}

	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     brokers,
		Topic:       topic,
		GroupID:     groupID,
		MinBytes:    1,    // Process immediately
		MaxBytes:    10e6, // 10MB
		MaxWait:     1 * time.Second,
		Dialer:      dialer,
		StartOffset: parseStartOffset(startOffset),
	})
	return &Consumer{reader: r}
}

func parseStartOffset(v string) int64 {
	if strings.EqualFold(strings.TrimSpace(v), "latest") {
		return kafka.LastOffset
	}
	return kafka.FirstOffset
}

func (c *Consumer) FetchMessage(ctx context.Context) (kafka.Message, error) {
	return c.reader.FetchMessage(ctx)
}

func (c *Consumer) CommitMessages(ctx context.Context, msgs ...kafka.Message) error {
	return c.reader.CommitMessages(ctx, msgs...)
}

func (c *Consumer) Close() error {
	return c.reader.Close()
}

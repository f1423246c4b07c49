package kafka

import (
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
)

func TestNewWriterDefaults(t *testing.T) {
	w := newWriter(Config{Brokers: []string{"k1:9092", "k2:9092"}, Topic: "airport-events"})

	if w.Topic != "airport-events" {
		t.Fatalf("topic = %q", w.Topic)
	}
	if w.MaxAttempts != defaultMaxAttempts || w.WriteTimeout != defaultWriteTimeout {
		t.Fatalf("defaults not applied: attempts=%d timeout=%s", w.MaxAttempts, w.WriteTimeout)
	}
	if w.RequiredAcks != kafka.RequireAll {
		t.Fatalf("required acks = %v, want RequireAll", w.RequiredAcks)
	}
	if _, ok := w.Balancer.(*kafka.Hash); !ok {
		t.Fatalf("expected key hash balancer, got %T", w.Balancer)
	}
	if w.Addr == nil {
		t.Fatal("broker address not set")
	}
}

func TestNewWriterOverrides(t *testing.T) {
	w := newWriter(Config{Topic: "t", MaxAttempts: 2, WriteTimeout: time.Second})
	if w.MaxAttempts != 2 || w.WriteTimeout != time.Second || w.ReadTimeout != time.Second {
		t.Fatalf("overrides ignored: %+v", w)
	}
}

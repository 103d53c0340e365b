package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
)

// KafkaEmitter publishes completion events to a Kafka topic. Messages are
// keyed by tenant id so all events for one tenant land on one partition and
// stay ordered.
type KafkaEmitter struct {
	writer  *kafka.Writer
	timeout time.Duration
}

// NewKafkaEmitter builds an emitter from config. The writer is lazy: no
// connection is made until the first publish.
func NewKafkaEmitter(cfg Config) *KafkaEmitter {
	timeout := cfg.TimeoutSeconds
	if timeout <= 0 {
		timeout = 10
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(strings.Split(cfg.Brokers, ",")...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		WriteTimeout: time.Duration(timeout) * time.Second,
	}

	return &KafkaEmitter{
		writer:  writer,
		timeout: time.Duration(timeout) * time.Second,
	}
}

func (e *KafkaEmitter) Publish(ctx context.Context, payload Payload) error {
	value, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal completion event: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	err = e.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(payload.TenantID),
		Value: value,
	})
	if err != nil {
		return fmt.Errorf("publish completion event for run %s: %w", payload.RunID, err)
	}
	return nil
}

// Close flushes and closes the underlying writer.
func (e *KafkaEmitter) Close() error {
	return e.writer.Close()
}

var _ Emitter = (*KafkaEmitter)(nil)

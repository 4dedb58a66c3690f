package contact

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Publisher hands payloads to the mail relay.
type Publisher interface {
	Publish(ctx context.Context, key string, p Payload) error
	Close() error
}

// MessageWriter is the part of *kafka.Writer the publisher uses, so tests can
// replace it.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes each payload as one JSON message keyed by provider.
type KafkaPublisher struct {
	writer MessageWriter
}

func NewKafkaPublisher(broker, topic string) *KafkaPublisher {
	return NewKafkaPublisherWithWriter(&kafka.Writer{
		Addr:         kafka.TCP(broker),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		BatchTimeout: 50 * time.Millisecond,
	})
}

func NewKafkaPublisherWithWriter(w MessageWriter) *KafkaPublisher {
	return &KafkaPublisher{writer: w}
}

func (p *KafkaPublisher) Publish(ctx context.Context, key string, payload Payload) error {
	value, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode contact payload: %w", err)
	}
	msg := kafka.Message{
		Key:     []byte(key),
		Value:   value,
		Headers: []kafka.Header{{Key: "content-type", Value: []byte("application/json")}},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish contact request: %w", err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// LogPublisher only logs payloads. It is used when no broker is configured.
type LogPublisher struct {
	log *zap.SugaredLogger
}

func NewLogPublisher(log *zap.SugaredLogger) *LogPublisher {
	return &LogPublisher{log: log}
}

func (p *LogPublisher) Publish(ctx context.Context, key string, payload Payload) error {
	p.log.Infow("contact request (no broker configured)",
		"provider", key,
		"electrician", payload.ElectricianName,
		"client", payload.ClientName,
		"date", payload.RequestDate,
	)
	return nil
}

func (p *LogPublisher) Close() error { return nil }

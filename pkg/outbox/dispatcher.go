package outbox

import (
	"context"
	"log/slog"

	"github.com/segmentio/kafka-go"

	"github.com/dmehra2102/foodhub/pkg/tracing"
)

type Producer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

type Dispatcher struct {
	log      *slog.Logger
	producer Producer
	topic    string
}

func NewDispatcher(log *slog.Logger, producer Producer, topic string) *Dispatcher {
	return &Dispatcher{log: log, producer: producer, topic: topic}
}

// Dispatch publishes ev keyed by its aggregate so that events of one order
// stay on one partition in order.
func (d *Dispatcher) Dispatch(ctx context.Context, ev Event) error {
	headers := make([]kafka.Header, 0, len(ev.Headers)+2)
	for k, v := range ev.Headers {
		headers = append(headers, kafka.Header{Key: k, Value: []byte(v)})
	}
	headers = append(headers, kafka.Header{Key: "event_type", Value: []byte(ev.Type)})
	if ev.Traceparent != "" {
		headers = append(headers, kafka.Header{Key: tracing.TraceparentHeader, Value: []byte(ev.Traceparent)})
	}

	msg := kafka.Message{
		Topic:   d.topic,
		Key:     []byte(ev.AggregateID),
		Value:   ev.Payload,
		Headers: headers,
	}
	if err := d.producer.WriteMessages(ctx, msg); err != nil {
		d.log.Error("outbox dispatch failed", "event_id", ev.ID, "err", err)
		return err
	}
	d.log.Debug("outbox dispatched", "event_id", ev.ID, "type", ev.Type)
	return nil
}

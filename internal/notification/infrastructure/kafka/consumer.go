package kafka

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/dmehra2102/foodhub/pkg/apperr"
	"github.com/dmehra2102/foodhub/pkg/idempotency"
	"github.com/dmehra2102/foodhub/pkg/tracing"
)

type Reader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type Deduper interface {
	Seen(ctx context.Context, key string) (bool, error)
	Forget(ctx context.Context, key string) error
}

type EventHandler interface {
	Handle(ctx context.Context, eventType string, payload []byte) error
}

type Consumer struct {
	log     *slog.Logger
	reader  Reader
	handler EventHandler
	idem    Deduper
	tracer  trace.Tracer

	retryBase time.Duration
	retryMax  time.Duration
}

func NewReader(brokers []string, topic, group string) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers: brokers,
		Topic:   topic,
		GroupID: group,
	})
}

func NewConsumer(log *slog.Logger, reader Reader, handler EventHandler, idem Deduper) *Consumer {
	return &Consumer{
		log:     log,
		reader:  reader,
		handler: handler,
		idem:    idem,
		tracer:  otel.Tracer("notification-consumer"),

		retryBase: 500 * time.Millisecond,
		retryMax:  30 * time.Second,
	}
}

// Run consumes until ctx is cancelled. A message that fails transiently is
// retried in place; committing a later offset would skip past it.
func (c *Consumer) Run(ctx context.Context) error {
	defer c.reader.Close()

	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		if !c.processUntilDone(ctx, msg) {
			return nil
		}
		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			c.log.Error("commit failed", "offset", msg.Offset, "err", err)
		}
	}
}

// processUntilDone retries msg with exponential backoff. It returns false
// only when ctx ends first, leaving msg uncommitted.
func (c *Consumer) processUntilDone(ctx context.Context, msg kafka.Message) bool {
	delay := c.retryBase
	for attempt := 1; ; attempt++ {
		if c.process(ctx, msg) {
			return true
		}
		c.log.Warn("retrying message", "offset", msg.Offset, "attempt", attempt, "delay", delay)
		t := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			t.Stop()
			return false
		case <-t.C:
		}
		delay = min(delay*2, c.retryMax)
	}
}

// process reports whether msg is done with and may be committed.
func (c *Consumer) process(ctx context.Context, msg kafka.Message) bool {
	key := idempotency.Key(msg.Topic, msg.Partition, msg.Offset)
	seen, err := c.idem.Seen(ctx, key)
	if err != nil {
		c.log.Error("idempotency check failed", "key", key, "err", err)
		return false
	}
	if seen {
		c.log.Info("duplicate message skipped", "key", key)
		return true
	}

	eventType := tracing.HeaderValue(msg.Headers, "event_type")
	msgCtx := tracing.ExtractKafkaHeaders(ctx, msg.Headers)
	msgCtx, span := c.tracer.Start(msgCtx, "Consume"+eventType)
	defer span.End()
	span.SetAttributes(
		attribute.String("messaging.kafka.key", string(msg.Key)),
		attribute.Int64("messaging.kafka.offset", msg.Offset),
	)

	err = c.handler.Handle(msgCtx, eventType, msg.Value)
	switch {
	case err == nil:
		c.log.Info("event handled", "event_type", eventType, "order_id", string(msg.Key))
		return true
	case errors.Is(err, apperr.ErrValidation):
		span.SetStatus(codes.Error, err.Error())
		c.log.Error("poison message dropped", "key", key, "err", err)
		return true
	default:
		span.SetStatus(codes.Error, err.Error())
		c.log.Error("event handling failed", "key", key, "err", err)
		if ferr := c.idem.Forget(ctx, key); ferr != nil {
			c.log.Error("idempotency release failed", "key", key, "err", ferr)
		}
		return false
	}
}

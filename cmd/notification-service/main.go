package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dmehra2102/foodhub/internal/config"
	"github.com/dmehra2102/foodhub/internal/notification/application"
	notifykafka "github.com/dmehra2102/foodhub/internal/notification/infrastructure/kafka"
	"github.com/dmehra2102/foodhub/internal/notification/infrastructure/logsender"
	"github.com/dmehra2102/foodhub/pkg/idempotency"
	"github.com/dmehra2102/foodhub/pkg/logging"
	"github.com/dmehra2102/foodhub/pkg/shutdown"
	"github.com/dmehra2102/foodhub/pkg/tracing"
)

func main() {
	cfg, err := config.Load("notification-service")
	if err != nil {
		slog.Error("config load failed", "err", err)
		os.Exit(1)
	}
	log := logging.New(cfg.ServiceName, cfg.LogLevel)

	ctx, cancel := shutdown.WithSignals(context.Background())
	defer cancel()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("notification-service stopped with error", "err", err)
		os.Exit(1)
	}
	log.Info("notification-service shutdown complete")
}

func run(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	tp, err := tracing.Init(ctx, cfg.ServiceName, cfg.OTelEndpoint, log)
	if err != nil {
		return fmt.Errorf("otel init: %w", err)
	}
	defer func() { _ = tp.Shutdown(context.Background()) }()

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer rdb.Close()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	idem := idempotency.NewStore(rdb, 24*time.Hour)

	notifier := application.NewNotifier(log, logsender.New(log))
	reader := notifykafka.NewReader(cfg.KafkaBrokers, cfg.OutboxTopic, cfg.NotifyGroup)
	consumer := notifykafka.NewConsumer(log, reader, notifier, idem)

	log.Info("consuming order events", "topic", cfg.OutboxTopic, "group", cfg.NotifyGroup)
	return consumer.Run(ctx)
}

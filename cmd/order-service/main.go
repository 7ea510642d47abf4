package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	catalogapp "github.com/dmehra2102/foodhub/internal/catalog/application"
	catalogmem "github.com/dmehra2102/foodhub/internal/catalog/infrastructure/memory"
	"github.com/dmehra2102/foodhub/internal/config"
	identityapp "github.com/dmehra2102/foodhub/internal/identity/application"
	identitymem "github.com/dmehra2102/foodhub/internal/identity/infrastructure/memory"
	"github.com/dmehra2102/foodhub/internal/identity/password"
	"github.com/dmehra2102/foodhub/internal/identity/token"
	orderapp "github.com/dmehra2102/foodhub/internal/order/application"
	orderkafka "github.com/dmehra2102/foodhub/internal/order/infrastructure/kafka"
	orderpg "github.com/dmehra2102/foodhub/internal/order/infrastructure/postgres"
	"github.com/dmehra2102/foodhub/pkg/logging"
	"github.com/dmehra2102/foodhub/pkg/outbox"
	"github.com/dmehra2102/foodhub/pkg/shutdown"
	"github.com/dmehra2102/foodhub/pkg/tracing"
)

func main() {
	cfg, err := config.Load("order-service")
	if err != nil {
		slog.Error("config load failed", "err", err)
		os.Exit(1)
	}
	log := logging.New(cfg.ServiceName, cfg.LogLevel)

	ctx, cancel := shutdown.WithSignals(context.Background())
	defer cancel()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("order-service stopped with error", "err", err)
		os.Exit(1)
	}
	log.Info("order-service shutdown complete")
}

// eventStore is an outbox the ledger writes to and the relay drains.
type eventStore interface {
	outbox.Recorder
	outbox.Store
}

func run(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	tp, err := tracing.Init(ctx, cfg.ServiceName, cfg.OTelEndpoint, log)
	if err != nil {
		return fmt.Errorf("otel init: %w", err)
	}
	defer func() { _ = tp.Shutdown(context.Background()) }()

	// Identity
	accounts := identityapp.NewService(log, identitymem.NewUserStore(), password.NewBcrypt(), token.NewSigner(cfg.JWTSecret, cfg.TokenTTL))
	admin, err := accounts.SeedAdmin(ctx, identityapp.RegisterInput{Name: cfg.AdminName, Email: cfg.AdminEmail, Password: cfg.AdminPassword})
	if err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	log.Info("admin account ready", "email", admin.Email)

	// Catalog
	menu := catalogapp.NewService(log, catalogmem.NewSeededMenuStore(time.Now().UTC()))

	// Orders and their event outbox
	var (
		opts  []orderapp.Option
		relay *outbox.Relay
	)
	if cfg.EventsEnabled {
		store, closeStore, err := openOutbox(ctx, cfg, log)
		if err != nil {
			return err
		}
		defer closeStore()

		writer := orderkafka.NewWriter(cfg.KafkaBrokers)
		defer writer.Close()

		dispatch := outbox.NewDispatcher(log, writer, cfg.OutboxTopic)
		relay = outbox.NewRelay(log, store, dispatch, cfg.ServiceName+"-relay")
		opts = append(opts, orderapp.WithRecorder(store))
	}
	ledger := orderapp.NewLedger(log, menu, opts...)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           newRouter(log, cfg.Environment, reg, accounts, menu, ledger),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return shutdown.Serve(gctx, log, srv, 10*time.Second)
	})
	if relay != nil {
		g.Go(func() error {
			return relay.Run(gctx)
		})
	}
	return g.Wait()
}

// openOutbox uses Postgres when PG_URL is set and an in-process store
// otherwise.
func openOutbox(ctx context.Context, cfg config.Config, log *slog.Logger) (eventStore, func(), error) {
	if cfg.PostgresURL == "" {
		log.Info("outbox: in-memory store")
		return outbox.NewMemoryStore(), func() {}, nil
	}

	pool, err := pgxpool.New(ctx, cfg.PostgresURL)
	if err != nil {
		return nil, nil, fmt.Errorf("pg connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("pg ping: %w", err)
	}
	store := orderpg.NewOutboxStore(log, pool)
	if err := store.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, nil, err
	}
	log.Info("outbox: postgres store")
	return store, pool.Close, nil
}

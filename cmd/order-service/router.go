package main

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"

	catalogapp "github.com/dmehra2102/foodhub/internal/catalog/application"
	cataloghttp "github.com/dmehra2102/foodhub/internal/catalog/infrastructure/http"
	identityapp "github.com/dmehra2102/foodhub/internal/identity/application"
	identityhttp "github.com/dmehra2102/foodhub/internal/identity/infrastructure/http"
	orderapp "github.com/dmehra2102/foodhub/internal/order/application"
	orderhttp "github.com/dmehra2102/foodhub/internal/order/infrastructure/http"
	"github.com/dmehra2102/foodhub/pkg/httpx"
	"github.com/dmehra2102/foodhub/pkg/metrics"
)

type health struct {
	Status      string    `json:"status"`
	Message     string    `json:"message"`
	Timestamp   time.Time `json:"timestamp"`
	Environment string    `json:"environment"`
}

func newRouter(log *slog.Logger, environment string, reg *prometheus.Registry, accounts *identityapp.Service, menu *catalogapp.Service, ledger *orderapp.Ledger) http.Handler {
	serverMetrics := metrics.NewServerMetrics(reg, "order-service")
	authenticate := identityhttp.Authenticate(accounts, log)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
	}))
	r.Use(serverMetrics.Middleware)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(health{
			Status:      "ok",
			Message:     "Service is healthy",
			Timestamp:   time.Now().UTC(),
			Environment: environment,
		})
	})
	r.Handle("/metrics", metrics.Handler(reg))

	r.Mount("/auth", identityhttp.NewHandler(log, accounts).Routes())
	r.Mount("/menu", cataloghttp.NewHandler(log, menu, authenticate, identityhttp.RequireAdmin).Routes())
	r.Group(func(r chi.Router) {
		r.Use(authenticate)
		r.Mount("/orders", orderhttp.NewHandler(log, ledger, identityhttp.RequireAdmin).Routes())
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteMessage(w, http.StatusNotFound, "Not found")
	})
	return r
}

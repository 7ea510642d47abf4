package main

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/crypto/bcrypt"

	catalogapp "github.com/dmehra2102/foodhub/internal/catalog/application"
	catalogmem "github.com/dmehra2102/foodhub/internal/catalog/infrastructure/memory"
	identityapp "github.com/dmehra2102/foodhub/internal/identity/application"
	identitymem "github.com/dmehra2102/foodhub/internal/identity/infrastructure/memory"
	"github.com/dmehra2102/foodhub/internal/identity/password"
	"github.com/dmehra2102/foodhub/internal/identity/token"
	orderapp "github.com/dmehra2102/foodhub/internal/order/application"
)

func newTestRouter(t *testing.T) (http.Handler, *identityapp.Service) {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	accounts := identityapp.NewService(log, identitymem.NewUserStore(), password.Bcrypt{Cost: bcrypt.MinCost}, token.NewSigner("dev-secret", time.Hour))
	menu := catalogapp.NewService(log, catalogmem.NewSeededMenuStore(time.Now().UTC()))
	ledger := orderapp.NewLedger(log, menu)
	return newRouter(log, "test", prometheus.NewRegistry(), accounts, menu, ledger), accounts
}

func get(h http.Handler, path, bearer string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestHealth(t *testing.T) {
	h, _ := newTestRouter(t)
	rr := get(h, "/", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var body health
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Status != "ok" || body.Environment != "test" || body.Timestamp.IsZero() {
		t.Fatalf("unexpected health %+v", body)
	}
}

func TestRoutesAreWired(t *testing.T) {
	h, accounts := newTestRouter(t)
	ctx := context.Background()
	if _, err := accounts.Register(ctx, identityapp.RegisterInput{Name: "Alice", Email: "alice@example.com", Password: "pw"}); err != nil {
		t.Fatalf("register: %v", err)
	}
	res, err := accounts.Login(ctx, identityapp.LoginInput{Email: "alice@example.com", Password: "pw"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	tests := []struct {
		path   string
		bearer string
		want   int
	}{
		{path: "/menu", want: http.StatusOK},
		{path: "/menu/m_001", want: http.StatusOK},
		{path: "/orders", want: http.StatusUnauthorized},
		{path: "/orders", bearer: res.Token, want: http.StatusOK},
		{path: "/nowhere", want: http.StatusNotFound},
	}
	for _, tt := range tests {
		if rr := get(h, tt.path, tt.bearer); rr.Code != tt.want {
			t.Fatalf("GET %s: expected %d, got %d", tt.path, tt.want, rr.Code)
		}
	}

	req := httptest.NewRequest(http.MethodPost, "/menu", strings.NewReader(`{"name":"Tea","price":1}`))
	req.Header.Set("Authorization", "Bearer "+res.Token)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusForbidden {
		t.Fatalf("menu write as user: expected 403, got %d", rr.Code)
	}

	if rr := get(h, "/metrics", ""); !strings.Contains(rr.Body.String(), "foodhub_order_service_http_requests_total") {
		t.Fatalf("metrics missing request counter:\n%s", rr.Body.String())
	}
}

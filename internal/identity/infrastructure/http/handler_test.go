package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/dmehra2102/foodhub/internal/identity/application"
	"github.com/dmehra2102/foodhub/internal/identity/domain"
	"github.com/dmehra2102/foodhub/internal/identity/infrastructure/memory"
	"github.com/dmehra2102/foodhub/internal/identity/password"
	"github.com/dmehra2102/foodhub/internal/identity/token"
)

type testEnv struct {
	router http.Handler
	svc    *application.Service
}

func newTestEnv(t *testing.T) testEnv {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := application.NewService(log, memory.NewUserStore(), password.Bcrypt{Cost: bcrypt.MinCost}, token.NewSigner("dev-secret", time.Hour))

	r := chi.NewRouter()
	r.Mount("/auth", NewHandler(log, svc).Routes())
	r.Group(func(r chi.Router) {
		r.Use(Authenticate(svc, log))
		r.Get("/me", func(w http.ResponseWriter, r *http.Request) {
			a, _ := ActorFrom(r.Context())
			_ = json.NewEncoder(w).Encode(a)
		})
		r.With(RequireAdmin).Get("/admin", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		})
	})
	return testEnv{router: r, svc: svc}
}

func (e testEnv) do(method, path, body, bearer string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)
	return rr
}

func TestRegisterThenLogin(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(http.MethodPost, "/auth/register", `{"name":"Alice","email":"alice@example.com","password":"pw"}`, "")
	if rr.Code != http.StatusCreated {
		t.Fatalf("register: expected 201, got %d body=%s", rr.Code, rr.Body.String())
	}
	if bytes.Contains(rr.Body.Bytes(), []byte("pw")) {
		t.Fatalf("register response leaks password material: %s", rr.Body.String())
	}

	rr = env.do(http.MethodPost, "/auth/register", `{"name":"Alice","email":"ALICE@example.com","password":"pw"}`, "")
	if rr.Code != http.StatusConflict {
		t.Fatalf("duplicate register: expected 409, got %d", rr.Code)
	}

	rr = env.do(http.MethodPost, "/auth/login", `{"email":"alice@example.com","password":"pw"}`, "")
	if rr.Code != http.StatusOK {
		t.Fatalf("login: expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}
	var resp struct {
		Status string    `json:"status"`
		Data   loginResp `json:"data"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Status != "success" || resp.Data.Token == "" || resp.Data.User.Role != domain.RoleUser {
		t.Fatalf("unexpected login body %+v", resp)
	}

	rr = env.do(http.MethodGet, "/me", "", resp.Data.Token)
	if rr.Code != http.StatusOK {
		t.Fatalf("me: expected 200, got %d", rr.Code)
	}
	rr = env.do(http.MethodGet, "/admin", "", resp.Data.Token)
	if rr.Code != http.StatusForbidden {
		t.Fatalf("admin as user: expected 403, got %d", rr.Code)
	}
}

func TestLoginFailures(t *testing.T) {
	env := newTestEnv(t)

	if rr := env.do(http.MethodPost, "/auth/login", `{"email":"x@y.z","password":"nope"}`, ""); rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
	if rr := env.do(http.MethodPost, "/auth/login", `{"email":"x@y.z"}`, ""); rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
	if rr := env.do(http.MethodPost, "/auth/login", `{not json`, ""); rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed body, got %d", rr.Code)
	}
}

func TestAuthenticateMiddleware(t *testing.T) {
	env := newTestEnv(t)
	admin, err := env.svc.SeedAdmin(context.Background(), application.RegisterInput{Name: "Admin", Email: "admin@foodhub.local", Password: "admin123"})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	res, err := env.svc.Login(context.Background(), application.LoginInput{Email: admin.Email, Password: "admin123"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	ghost, _ := token.NewSigner("dev-secret", time.Hour).Issue(token.Identity{Subject: "u_ghost", Role: domain.RoleAdmin})

	tests := []struct {
		name   string
		header string
		path   string
		want   int
	}{
		{name: "missing header", path: "/me", want: http.StatusUnauthorized},
		{name: "wrong scheme", header: "Basic abc", path: "/me", want: http.StatusUnauthorized},
		{name: "garbage token", header: "Bearer a.b.c", path: "/me", want: http.StatusUnauthorized},
		{name: "deleted user", header: "Bearer " + ghost, path: "/me", want: http.StatusUnauthorized},
		{name: "admin ok", header: "Bearer " + res.Token, path: "/admin", want: http.StatusNoContent},
		{name: "lowercase scheme", header: "bearer " + res.Token, path: "/me", want: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rr := httptest.NewRecorder()
			env.router.ServeHTTP(rr, req)
			if rr.Code != tt.want {
				t.Fatalf("expected %d, got %d body=%s", tt.want, rr.Code, rr.Body.String())
			}
		})
	}
}

package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/dmehra2102/foodhub/internal/identity/application"
	"github.com/dmehra2102/foodhub/internal/identity/domain"
	"github.com/dmehra2102/foodhub/pkg/httpx"
)

type Accounts interface {
	Register(ctx context.Context, in application.RegisterInput) (domain.User, error)
	Login(ctx context.Context, in application.LoginInput) (application.LoginResult, error)
}

type Handler struct {
	log      *slog.Logger
	accounts Accounts
	tracer   trace.Tracer
}

func NewHandler(log *slog.Logger, accounts Accounts) *Handler {
	return &Handler{
		log:      log,
		accounts: accounts,
		tracer:   otel.Tracer("identity-http"),
	}
}

type registerReq struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userDTO struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	Email     string      `json:"email"`
	Role      domain.Role `json:"role"`
	CreatedAt *time.Time  `json:"createdAt,omitempty"`
}

type loginResp struct {
	Token string  `json:"token"`
	User  userDTO `json:"user"`
}

func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Post("/register", h.register)
	r.Post("/login", h.login)
	return r
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "Register")
	defer span.End()

	var req registerReq
	if err := httpx.Decode(r, &req); err != nil {
		httpx.WriteError(w, h.log, err)
		return
	}
	u, err := h.accounts.Register(ctx, application.RegisterInput{Name: req.Name, Email: req.Email, Password: req.Password})
	if err != nil {
		httpx.WriteError(w, h.log, err)
		return
	}
	dto := toUserDTO(u)
	dto.CreatedAt = &u.CreatedAt
	httpx.WriteJSON(w, http.StatusCreated, dto)
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "Login")
	defer span.End()

	var req loginReq
	if err := httpx.Decode(r, &req); err != nil {
		httpx.WriteError(w, h.log, err)
		return
	}
	res, err := h.accounts.Login(ctx, application.LoginInput{Email: req.Email, Password: req.Password})
	if err != nil {
		httpx.WriteError(w, h.log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, loginResp{Token: res.Token, User: toUserDTO(res.User)})
}

func toUserDTO(u domain.User) userDTO {
	return userDTO{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
}

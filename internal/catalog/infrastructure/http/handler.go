package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/dmehra2102/foodhub/internal/catalog/application"
	"github.com/dmehra2102/foodhub/internal/catalog/domain"
	"github.com/dmehra2102/foodhub/pkg/apperr"
	"github.com/dmehra2102/foodhub/pkg/httpx"
)

type Menu interface {
	List(ctx context.Context, f application.Filter) ([]domain.MenuItem, error)
	Get(ctx context.Context, id string) (domain.MenuItem, error)
	Create(ctx context.Context, in application.CreateInput) (domain.MenuItem, error)
	Update(ctx context.Context, id string, p domain.Patch) (domain.MenuItem, error)
	Delete(ctx context.Context, id string) (domain.MenuItem, error)
}

type Handler struct {
	log    *slog.Logger
	menu   Menu
	admin  []func(http.Handler) http.Handler
	tracer trace.Tracer
}

// NewHandler serves the menu. Reads are public; writes go through admin,
// the middleware chain that authenticates and requires the admin role.
func NewHandler(log *slog.Logger, menu Menu, admin ...func(http.Handler) http.Handler) *Handler {
	return &Handler{
		log:    log,
		menu:   menu,
		admin:  admin,
		tracer: otel.Tracer("catalog-http"),
	}
}

type itemDTO struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category"`
	Available   bool            `json:"available"`
	ImageURL    string          `json:"imageUrl"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

type createReq struct {
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	Category    string           `json:"category"`
	Available   *bool            `json:"available"`
	ImageURL    string           `json:"imageUrl"`
}

type updateReq struct {
	Name        *string          `json:"name"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	Category    *string          `json:"category"`
	Available   *bool            `json:"available"`
	ImageURL    *string          `json:"imageUrl"`
}

func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Get("/", h.list)
	r.Get("/{id}", h.get)
	r.Group(func(r chi.Router) {
		r.Use(h.admin...)
		r.Post("/", h.create)
		r.Put("/{id}", h.update)
		r.Delete("/{id}", h.remove)
	})
	return r
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "ListMenu")
	defer span.End()

	f := application.Filter{Category: r.URL.Query().Get("category")}
	if raw := r.URL.Query().Get("available"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			httpx.WriteError(w, h.log, fmt.Errorf("%w: available must be a boolean", apperr.ErrValidation))
			return
		}
		f.Available = &v
	}

	items, err := h.menu.List(ctx, f)
	if err != nil {
		httpx.WriteError(w, h.log, err)
		return
	}
	out := make([]itemDTO, 0, len(items))
	for _, it := range items {
		out = append(out, toDTO(it))
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "GetMenuItem")
	defer span.End()

	it, err := h.menu.Get(ctx, chi.URLParam(r, "id"))
	if err != nil {
		httpx.WriteError(w, h.log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toDTO(it))
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "CreateMenuItem")
	defer span.End()

	var req createReq
	if err := httpx.Decode(r, &req); err != nil {
		httpx.WriteError(w, h.log, err)
		return
	}
	it, err := h.menu.Create(ctx, application.CreateInput{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Category:    req.Category,
		Available:   req.Available,
		ImageURL:    req.ImageURL,
	})
	if err != nil {
		httpx.WriteError(w, h.log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, toDTO(it))
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "UpdateMenuItem")
	defer span.End()

	var req updateReq
	if err := httpx.Decode(r, &req); err != nil {
		httpx.WriteError(w, h.log, err)
		return
	}
	it, err := h.menu.Update(ctx, chi.URLParam(r, "id"), domain.Patch{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Category:    req.Category,
		Available:   req.Available,
		ImageURL:    req.ImageURL,
	})
	if err != nil {
		httpx.WriteError(w, h.log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toDTO(it))
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "DeleteMenuItem")
	defer span.End()

	it, err := h.menu.Delete(ctx, chi.URLParam(r, "id"))
	if err != nil {
		httpx.WriteError(w, h.log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toDTO(it))
}

func toDTO(it domain.MenuItem) itemDTO {
	return itemDTO{
		ID:          it.ID,
		Name:        it.Name,
		Description: it.Description,
		Price:       it.Price,
		Category:    it.Category,
		Available:   it.Available,
		ImageURL:    it.ImageURL,
		CreatedAt:   it.CreatedAt,
		UpdatedAt:   it.UpdatedAt,
	}
}

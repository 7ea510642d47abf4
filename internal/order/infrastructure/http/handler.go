package http

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	identity "github.com/dmehra2102/foodhub/internal/identity/domain"
	identityhttp "github.com/dmehra2102/foodhub/internal/identity/infrastructure/http"
	"github.com/dmehra2102/foodhub/internal/order/application"
	"github.com/dmehra2102/foodhub/internal/order/domain"
	"github.com/dmehra2102/foodhub/pkg/apperr"
	"github.com/dmehra2102/foodhub/pkg/httpx"
)

var maxQuantity = decimal.NewFromInt(math.MaxInt32)

type Orders interface {
	Place(ctx context.Context, in application.PlaceInput) (domain.Order, error)
	Get(ctx context.Context, id string, actor identity.Actor) (domain.Order, error)
	List(ctx context.Context, actor identity.Actor, status string) ([]domain.Order, error)
	UpdateStatus(ctx context.Context, id, status string, actor identity.Actor) (domain.Order, error)
	Cancel(ctx context.Context, id string, actor identity.Actor) (domain.Order, error)
}

type Handler struct {
	log    *slog.Logger
	orders Orders
	admin  []func(http.Handler) http.Handler
	tracer trace.Tracer
}

// NewHandler expects to be mounted behind the authentication middleware.
// admin guards the status route.
func NewHandler(log *slog.Logger, orders Orders, admin ...func(http.Handler) http.Handler) *Handler {
	return &Handler{
		log:    log,
		orders: orders,
		admin:  admin,
		tracer: otel.Tracer("order-http"),
	}
}

type placeItemReq struct {
	MenuItemID string          `json:"menuItemId"`
	Quantity   decimal.Decimal `json:"quantity"`
}

type placeOrderReq struct {
	Items          []placeItemReq `json:"items"`
	Notes          string         `json:"notes"`
	DeliveryMethod string         `json:"deliveryMethod"`
}

type updateStatusReq struct {
	Status string `json:"status"`
}

type lineDTO struct {
	MenuItemID string `json:"menuItemId"`
	Name       string `json:"name"`
	Price      string `json:"price"`
	Quantity   int    `json:"quantity"`
	Total      string `json:"total"`
}

type chargesDTO struct {
	Subtotal string `json:"subtotal"`
	Tax      string `json:"tax"`
	Total    string `json:"total"`
	Currency string `json:"currency"`
}

type timelineDTO struct {
	At     time.Time          `json:"at"`
	Status domain.OrderStatus `json:"status"`
	By     string             `json:"by"`
}

type orderDTO struct {
	ID             string                `json:"id"`
	UserID         string                `json:"userId"`
	Status         domain.OrderStatus    `json:"status"`
	DeliveryMethod domain.DeliveryMethod `json:"deliveryMethod"`
	Notes          string                `json:"notes"`
	Items          []lineDTO             `json:"items"`
	Charges        chargesDTO            `json:"charges"`
	Timeline       []timelineDTO         `json:"timeline"`
	CreatedAt      time.Time             `json:"createdAt"`
	UpdatedAt      time.Time             `json:"updatedAt"`
}

func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Get("/", h.listOrders)
	r.Post("/", h.placeOrder)
	r.Get("/{id}", h.getOrder)
	r.With(h.admin...).Patch("/{id}/status", h.updateStatus)
	r.Post("/{id}/cancel", h.cancelOrder)
	return r
}

func (h *Handler) placeOrder(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "PlaceOrder")
	defer span.End()

	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	var req placeOrderReq
	if err := httpx.Decode(r, &req); err != nil {
		httpx.WriteError(w, h.log, err)
		return
	}

	in := application.PlaceInput{UserID: actor.ID, Notes: req.Notes, DeliveryMethod: req.DeliveryMethod}
	for _, it := range req.Items {
		if it.Quantity.GreaterThan(maxQuantity) {
			httpx.WriteError(w, h.log, fmt.Errorf("%w: quantity must not exceed %s", apperr.ErrValidation, maxQuantity))
			return
		}
		// Fractions truncate; the ledger clamps what is left.
		in.Items = append(in.Items, application.ItemRequest{CatalogItemID: it.MenuItemID, Quantity: int(it.Quantity.IntPart())})
	}

	o, err := h.orders.Place(ctx, in)
	if err != nil {
		httpx.WriteError(w, h.log, err)
		return
	}
	span.SetAttributes(attribute.String("order.id", o.ID))
	httpx.WriteJSON(w, http.StatusCreated, toDTO(o))
}

func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "ListOrders")
	defer span.End()

	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	orders, err := h.orders.List(ctx, actor, r.URL.Query().Get("status"))
	if err != nil {
		httpx.WriteError(w, h.log, err)
		return
	}
	out := make([]orderDTO, 0, len(orders))
	for _, o := range orders {
		out = append(out, toDTO(o))
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "GetOrder")
	defer span.End()

	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	o, err := h.orders.Get(ctx, chi.URLParam(r, "id"), actor)
	if err != nil {
		httpx.WriteError(w, h.log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toDTO(o))
}

func (h *Handler) updateStatus(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "UpdateOrderStatus")
	defer span.End()

	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	var req updateStatusReq
	if err := httpx.Decode(r, &req); err != nil {
		httpx.WriteError(w, h.log, err)
		return
	}
	o, err := h.orders.UpdateStatus(ctx, chi.URLParam(r, "id"), req.Status, actor)
	if err != nil {
		httpx.WriteError(w, h.log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toDTO(o))
}

func (h *Handler) cancelOrder(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "CancelOrder")
	defer span.End()

	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	o, err := h.orders.Cancel(ctx, chi.URLParam(r, "id"), actor)
	if err != nil {
		httpx.WriteError(w, h.log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toDTO(o))
}

func (h *Handler) actor(w http.ResponseWriter, r *http.Request) (identity.Actor, bool) {
	a, ok := identityhttp.ActorFrom(r.Context())
	if !ok {
		httpx.WriteMessage(w, http.StatusUnauthorized, "Missing token")
	}
	return a, ok
}

func toDTO(o domain.Order) orderDTO {
	items := make([]lineDTO, 0, len(o.LineItems))
	for _, li := range o.LineItems {
		items = append(items, lineDTO{
			MenuItemID: li.CatalogItemID,
			Name:       li.Name,
			Price:      li.UnitPrice.StringFixed(2),
			Quantity:   li.Quantity,
			Total:      li.LineTotal.StringFixed(2),
		})
	}
	timeline := make([]timelineDTO, 0, len(o.Timeline))
	for _, e := range o.Timeline {
		timeline = append(timeline, timelineDTO{At: e.At, Status: e.Status, By: e.ActorID})
	}
	return orderDTO{
		ID:             o.ID,
		UserID:         o.UserID,
		Status:         o.Status,
		DeliveryMethod: o.DeliveryMethod,
		Notes:          o.Notes,
		Items:          items,
		Charges: chargesDTO{
			Subtotal: o.Charges.Subtotal.StringFixed(2),
			Tax:      o.Charges.Tax.StringFixed(2),
			Total:    o.Charges.Total.StringFixed(2),
			Currency: o.Charges.Currency,
		},
		Timeline:  timeline,
		CreatedAt: o.CreatedAt,
		UpdatedAt: o.UpdatedAt,
	}
}

package application

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	identity "github.com/dmehra2102/foodhub/internal/identity/domain"
	"github.com/dmehra2102/foodhub/internal/order/domain"
	"github.com/dmehra2102/foodhub/internal/order/policy"
	"github.com/dmehra2102/foodhub/pkg/apperr"
	"github.com/dmehra2102/foodhub/pkg/outbox"
	"github.com/dmehra2102/foodhub/pkg/tracing"
)

// SystemActor is recorded on the timeline when a transition has no actor id.
const SystemActor = "system"

const aggregateType = "order"

// Ledger owns every order in the process. Callers only ever see copies.
type Ledger struct {
	log     *slog.Logger
	catalog CatalogGateway
	events  outbox.Recorder
	now     func() time.Time

	mu     sync.RWMutex
	orders []*domain.Order
	index  map[string]int
}

type Option func(*Ledger)

func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

// WithRecorder makes the ledger record an outbox event for every placement
// and transition.
func WithRecorder(r outbox.Recorder) Option {
	return func(l *Ledger) { l.events = r }
}

func NewLedger(log *slog.Logger, catalog CatalogGateway, opts ...Option) *Ledger {
	l := &Ledger{
		log:     log,
		catalog: catalog,
		now:     time.Now,
		index:   make(map[string]int),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

type ItemRequest struct {
	CatalogItemID string
	Quantity      int
}

type PlaceInput struct {
	UserID         string
	Items          []ItemRequest
	Notes          string
	DeliveryMethod string
}

func (l *Ledger) Place(ctx context.Context, in PlaceInput) (domain.Order, error) {
	if strings.TrimSpace(in.UserID) == "" {
		return domain.Order{}, fmt.Errorf("%w: user id is required", apperr.ErrValidation)
	}
	if len(in.Items) == 0 {
		return domain.Order{}, fmt.Errorf("%w: items array required", apperr.ErrValidation)
	}
	method, err := domain.ParseDeliveryMethod(in.DeliveryMethod)
	if err != nil {
		return domain.Order{}, err
	}

	lines := make([]domain.LineItem, 0, len(in.Items))
	for _, req := range in.Items {
		item, err := l.catalog.Lookup(ctx, req.CatalogItemID)
		if err != nil {
			return domain.Order{}, err
		}
		if !item.Available {
			return domain.Order{}, fmt.Errorf("%w: menu item %s is not available", apperr.ErrUnavailable, req.CatalogItemID)
		}
		lines = append(lines, domain.LineItem{
			CatalogItemID: req.CatalogItemID,
			Name:          item.Name,
			UnitPrice:     item.Price,
			Quantity:      domain.NormalizeQuantity(req.Quantity),
		})
	}

	id := "o_" + uuid.Must(uuid.NewV7()).String()
	o := domain.NewOrder(id, in.UserID, lines, in.Notes, method, l.now().UTC())

	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.record(ctx, o.ID, domain.EventOrderPlaced, domain.NewOrderPlaced(o)); err != nil {
		return domain.Order{}, err
	}
	l.index[o.ID] = len(l.orders)
	l.orders = append(l.orders, &o)

	l.log.Info("order placed", "order_id", o.ID, "user_id", o.UserID, "total", o.Charges.Total.StringFixed(2))
	return o.Clone(), nil
}

func (l *Ledger) Get(ctx context.Context, id string, actor identity.Actor) (domain.Order, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	o, err := l.find(id)
	if err != nil {
		return domain.Order{}, err
	}
	if !policy.CanView(actor, *o) {
		return domain.Order{}, fmt.Errorf("%w: not allowed to view order %s", apperr.ErrForbidden, id)
	}
	return o.Clone(), nil
}

// List returns the orders actor may see, oldest first. An empty status
// matches every order.
func (l *Ledger) List(ctx context.Context, actor identity.Actor, status string) ([]domain.Order, error) {
	var want domain.OrderStatus
	if status != "" {
		s, err := domain.ParseStatus(status)
		if err != nil {
			return nil, err
		}
		want = s
	}

	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]domain.Order, 0)
	for _, o := range l.orders {
		if !policy.CanView(actor, *o) {
			continue
		}
		if want != "" && o.Status != want {
			continue
		}
		out = append(out, o.Clone())
	}
	return out, nil
}

func (l *Ledger) UpdateStatus(ctx context.Context, id, status string, actor identity.Actor) (domain.Order, error) {
	next, err := domain.ParseStatus(status)
	if err != nil {
		return domain.Order{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	o, err := l.find(id)
	if err != nil {
		return domain.Order{}, err
	}
	if !policy.CanTransition(actor) {
		return domain.Order{}, fmt.Errorf("%w: admin access required", apperr.ErrForbidden)
	}
	actorID := actor.ID
	if actorID == "" {
		actorID = SystemActor
	}
	return l.transition(ctx, o, next, actorID)
}

// Cancel lets the owner withdraw an order that is not ready yet.
func (l *Ledger) Cancel(ctx context.Context, id string, actor identity.Actor) (domain.Order, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	o, err := l.find(id)
	if err != nil {
		return domain.Order{}, err
	}
	if !policy.IsOwner(actor, *o) {
		return domain.Order{}, fmt.Errorf("%w: only the owner may cancel order %s", apperr.ErrForbidden, id)
	}
	if !policy.CanCancel(actor, *o) {
		return domain.Order{}, fmt.Errorf("%w: cannot cancel an order that is %s", apperr.ErrInvalidState, o.Status)
	}
	return l.transition(ctx, o, domain.StatusCancelled, actor.ID)
}

// transition applies the move to a copy and swaps it in only after the event
// is recorded. Callers hold the write lock.
func (l *Ledger) transition(ctx context.Context, cur *domain.Order, next domain.OrderStatus, actorID string) (domain.Order, error) {
	updated := cur.Clone()
	if err := updated.Transition(next, actorID, l.now().UTC()); err != nil {
		return domain.Order{}, err
	}

	changed := domain.OrderStatusChanged{
		OrderID: updated.ID,
		UserID:  updated.UserID,
		From:    cur.Status,
		To:      next,
		ActorID: actorID,
		At:      updated.UpdatedAt,
	}
	if err := l.record(ctx, updated.ID, domain.EventOrderStatusChanged, changed); err != nil {
		return domain.Order{}, err
	}
	l.orders[l.index[updated.ID]] = &updated

	l.log.Info("order status changed", "order_id", updated.ID, "from", cur.Status, "to", next, "actor_id", actorID)
	return updated.Clone(), nil
}

func (l *Ledger) find(id string) (*domain.Order, error) {
	i, ok := l.index[id]
	if !ok {
		return nil, fmt.Errorf("%w: order %s", apperr.ErrNotFound, id)
	}
	return l.orders[i], nil
}

func (l *Ledger) record(ctx context.Context, orderID, eventType string, payload any) error {
	if l.events == nil {
		return nil
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", eventType, err)
	}
	ev := outbox.Event{
		AggregateType: aggregateType,
		AggregateID:   orderID,
		Type:          eventType,
		Payload:       body,
		Headers:       map[string]string{"content-type": "application/json"},
		Traceparent:   tracing.Traceparent(ctx),
	}
	if err := l.events.Record(ctx, ev); err != nil {
		l.log.Error("outbox record failed", "order_id", orderID, "event_type", eventType, "err", err)
		return fmt.Errorf("record %s: %w", eventType, err)
	}
	return nil
}

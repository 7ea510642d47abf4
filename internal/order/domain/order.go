package domain

import (
	"fmt"
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dmehra2102/foodhub/pkg/apperr"
)

type OrderStatus string

const (
	StatusPlaced    OrderStatus = "placed"
	StatusPreparing OrderStatus = "preparing"
	StatusReady     OrderStatus = "ready"
	StatusCompleted OrderStatus = "completed"
	StatusCancelled OrderStatus = "cancelled"
)

// transitions lists every allowed move. Statuses missing from the map, or
// mapped to nothing, are terminal.
var transitions = map[OrderStatus][]OrderStatus{
	StatusPlaced:    {StatusPreparing, StatusReady, StatusCompleted, StatusCancelled},
	StatusPreparing: {StatusReady, StatusCompleted, StatusCancelled},
	StatusReady:     {StatusCompleted},
}

func ParseStatus(s string) (OrderStatus, error) {
	switch st := OrderStatus(s); st {
	case StatusPlaced, StatusPreparing, StatusReady, StatusCompleted, StatusCancelled:
		return st, nil
	}
	return "", fmt.Errorf("%w: invalid status %q", apperr.ErrValidation, s)
}

func CanTransition(from, to OrderStatus) bool {
	return slices.Contains(transitions[from], to)
}

// Terminal reports whether no transition leaves s.
func (s OrderStatus) Terminal() bool {
	return len(transitions[s]) == 0
}

// Cancellable reports whether an owner may still cancel from s.
func (s OrderStatus) Cancellable() bool {
	return s == StatusPlaced || s == StatusPreparing
}

type DeliveryMethod string

const (
	DeliveryPickup   DeliveryMethod = "pickup"
	DeliveryDelivery DeliveryMethod = "delivery"
)

// ParseDeliveryMethod defaults an empty value to pickup.
func ParseDeliveryMethod(s string) (DeliveryMethod, error) {
	switch m := DeliveryMethod(s); m {
	case "":
		return DeliveryPickup, nil
	case DeliveryPickup, DeliveryDelivery:
		return m, nil
	}
	return "", fmt.Errorf("%w: deliveryMethod must be pickup or delivery", apperr.ErrValidation)
}

type LineItem struct {
	CatalogItemID string
	Name          string
	UnitPrice     decimal.Decimal
	Quantity      int
	LineTotal     decimal.Decimal
}

type TimelineEntry struct {
	At      time.Time
	Status  OrderStatus
	ActorID string
}

type Order struct {
	ID             string
	UserID         string
	Status         OrderStatus
	DeliveryMethod DeliveryMethod
	Notes          string
	LineItems      []LineItem
	Charges        Charges
	Timeline       []TimelineEntry
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// NewOrder prices the lines and opens the timeline with a placed entry
// attributed to the owner.
func NewOrder(id, userID string, lines []LineItem, notes string, method DeliveryMethod, now time.Time) Order {
	lines = slices.Clone(lines)
	charges := ComputeCharges(lines)
	return Order{
		ID:             id,
		UserID:         userID,
		Status:         StatusPlaced,
		DeliveryMethod: method,
		Notes:          notes,
		LineItems:      lines,
		Charges:        charges,
		Timeline:       []TimelineEntry{{At: now, Status: StatusPlaced, ActorID: userID}},
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// Transition moves the order to next and appends the timeline entry. Only
// Status, Timeline and UpdatedAt change.
func (o *Order) Transition(next OrderStatus, actorID string, now time.Time) error {
	if !CanTransition(o.Status, next) {
		return fmt.Errorf("%w: cannot move order from %s to %s", apperr.ErrInvalidState, o.Status, next)
	}
	o.Status = next
	o.Timeline = append(o.Timeline, TimelineEntry{At: now, Status: next, ActorID: actorID})
	o.UpdatedAt = now
	return nil
}

func (o *Order) Clone() Order {
	c := *o
	c.LineItems = slices.Clone(o.LineItems)
	c.Timeline = slices.Clone(o.Timeline)
	return c
}

// NormalizeQuantity clamps a requested quantity to at least one.
func NormalizeQuantity(q int) int {
	return max(q, 1)
}

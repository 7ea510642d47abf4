package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	EventOrderPlaced        = "OrderPlaced"
	EventOrderStatusChanged = "OrderStatusChanged"
)

type OrderPlacedLine struct {
	CatalogItemID string          `json:"catalogItemId"`
	Quantity      int             `json:"quantity"`
	LineTotal     decimal.Decimal `json:"lineTotal"`
}

type OrderPlaced struct {
	OrderID        string            `json:"orderId"`
	UserID         string            `json:"userId"`
	DeliveryMethod DeliveryMethod    `json:"deliveryMethod"`
	Lines          []OrderPlacedLine `json:"lines"`
	Total          decimal.Decimal   `json:"total"`
	Currency       string            `json:"currency"`
	PlacedAt       time.Time         `json:"placedAt"`
}

type OrderStatusChanged struct {
	OrderID string      `json:"orderId"`
	UserID  string      `json:"userId"`
	From    OrderStatus `json:"from"`
	To      OrderStatus `json:"to"`
	ActorID string      `json:"actorId"`
	At      time.Time   `json:"at"`
}

func NewOrderPlaced(o Order) OrderPlaced {
	lines := make([]OrderPlacedLine, 0, len(o.LineItems))
	for _, li := range o.LineItems {
		lines = append(lines, OrderPlacedLine{CatalogItemID: li.CatalogItemID, Quantity: li.Quantity, LineTotal: li.LineTotal})
	}
	return OrderPlaced{
		OrderID:        o.ID,
		UserID:         o.UserID,
		DeliveryMethod: o.DeliveryMethod,
		Lines:          lines,
		Total:          o.Charges.Total,
		Currency:       o.Charges.Currency,
		PlacedAt:       o.CreatedAt,
	}
}

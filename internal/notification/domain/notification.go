package domain

import "time"

type Kind string

const (
	KindOrderPlaced   Kind = "order_placed"
	KindStatusChanged Kind = "order_status_changed"
)

// Notification is a message for the customer who owns an order.
type Notification struct {
	OrderID string
	UserID  string
	Kind    Kind
	Message string
	At      time.Time
}

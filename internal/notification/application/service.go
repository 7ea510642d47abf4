package application

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/dmehra2102/foodhub/internal/notification/domain"
	orderdomain "github.com/dmehra2102/foodhub/internal/order/domain"
	"github.com/dmehra2102/foodhub/pkg/apperr"
)

// Notifier turns order events into customer notifications.
type Notifier struct {
	log    *slog.Logger
	sender Sender
}

func NewNotifier(log *slog.Logger, sender Sender) *Notifier {
	return &Notifier{log: log, sender: sender}
}

// Handle ignores event types it has no message for. A payload that does not
// decode is a validation error.
func (n *Notifier) Handle(ctx context.Context, eventType string, payload []byte) error {
	var note domain.Notification
	switch eventType {
	case orderdomain.EventOrderPlaced:
		var ev orderdomain.OrderPlaced
		if err := json.Unmarshal(payload, &ev); err != nil {
			return fmt.Errorf("%w: decode %s: %w", apperr.ErrValidation, eventType, err)
		}
		note = domain.Notification{
			OrderID: ev.OrderID,
			UserID:  ev.UserID,
			Kind:    domain.KindOrderPlaced,
			Message: fmt.Sprintf("Your order %s has been placed. Total %s %s", ev.OrderID, ev.Total.StringFixed(2), ev.Currency),
			At:      ev.PlacedAt,
		}
	case orderdomain.EventOrderStatusChanged:
		var ev orderdomain.OrderStatusChanged
		if err := json.Unmarshal(payload, &ev); err != nil {
			return fmt.Errorf("%w: decode %s: %w", apperr.ErrValidation, eventType, err)
		}
		note = domain.Notification{
			OrderID: ev.OrderID,
			UserID:  ev.UserID,
			Kind:    domain.KindStatusChanged,
			Message: statusMessage(ev.OrderID, ev.To),
			At:      ev.At,
		}
	default:
		n.log.Debug("event ignored", "event_type", eventType)
		return nil
	}

	if err := n.sender.Send(ctx, note); err != nil {
		return fmt.Errorf("send notification for %s: %w", note.OrderID, err)
	}
	return nil
}

func statusMessage(orderID string, s orderdomain.OrderStatus) string {
	switch s {
	case orderdomain.StatusCancelled:
		return fmt.Sprintf("Your order %s has been cancelled", orderID)
	case orderdomain.StatusCompleted:
		return fmt.Sprintf("Your order %s is complete. Enjoy your meal!", orderID)
	default:
		return fmt.Sprintf("Your order %s is now %s", orderID, s)
	}
}

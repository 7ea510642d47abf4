package application

import (
	"context"

	"github.com/dmehra2102/foodhub/internal/notification/domain"
)

type Sender interface {
	Send(ctx context.Context, n domain.Notification) error
}

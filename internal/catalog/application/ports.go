package application

import (
	"context"

	"github.com/dmehra2102/foodhub/internal/catalog/domain"
)

type MenuRepository interface {
	List(ctx context.Context) ([]domain.MenuItem, error)
	Get(ctx context.Context, id string) (domain.MenuItem, error)
	Save(ctx context.Context, item domain.MenuItem) error
	Update(ctx context.Context, id string, fn func(domain.MenuItem) domain.MenuItem) (domain.MenuItem, error)
	Delete(ctx context.Context, id string) (domain.MenuItem, error)
}

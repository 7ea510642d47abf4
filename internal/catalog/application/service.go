package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dmehra2102/foodhub/internal/catalog/domain"
	orderapp "github.com/dmehra2102/foodhub/internal/order/application"
	"github.com/dmehra2102/foodhub/pkg/apperr"
)

type Service struct {
	log  *slog.Logger
	repo MenuRepository
	now  func() time.Time
}

func NewService(log *slog.Logger, repo MenuRepository) *Service {
	return &Service{log: log, repo: repo, now: time.Now}
}

type Filter struct {
	Category  string
	Available *bool
}

type CreateInput struct {
	Name        string
	Description string
	Price       *decimal.Decimal
	Category    string
	Available   *bool
	ImageURL    string
}

func (s *Service) List(ctx context.Context, f Filter) ([]domain.MenuItem, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := items[:0]
	for _, it := range items {
		if f.Category != "" && !strings.EqualFold(it.Category, f.Category) {
			continue
		}
		if f.Available != nil && it.Available != *f.Available {
			continue
		}
		out = append(out, it)
	}
	return out, nil
}

func (s *Service) Get(ctx context.Context, id string) (domain.MenuItem, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, in CreateInput) (domain.MenuItem, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" || in.Price == nil {
		return domain.MenuItem{}, fmt.Errorf("%w: missing required fields: name (string), price (number)", apperr.ErrValidation)
	}
	if in.Price.IsNegative() {
		return domain.MenuItem{}, fmt.Errorf("%w: price must not be negative", apperr.ErrValidation)
	}

	category := strings.TrimSpace(in.Category)
	if category == "" {
		category = domain.DefaultCategory
	}
	available := true
	if in.Available != nil {
		available = *in.Available
	}

	now := s.now().UTC()
	item := domain.MenuItem{
		ID:          "m_" + uuid.Must(uuid.NewV7()).String(),
		Name:        name,
		Description: in.Description,
		Price:       *in.Price,
		Category:    category,
		Available:   available,
		ImageURL:    in.ImageURL,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Save(ctx, item); err != nil {
		return domain.MenuItem{}, err
	}
	s.log.Info("menu item created", "item_id", item.ID)
	return item, nil
}

func (s *Service) Update(ctx context.Context, id string, p domain.Patch) (domain.MenuItem, error) {
	if p.Name != nil && strings.TrimSpace(*p.Name) == "" {
		return domain.MenuItem{}, fmt.Errorf("%w: name must not be empty", apperr.ErrValidation)
	}
	if p.Price != nil && p.Price.IsNegative() {
		return domain.MenuItem{}, fmt.Errorf("%w: price must not be negative", apperr.ErrValidation)
	}

	now := s.now().UTC()
	updated, err := s.repo.Update(ctx, id, func(current domain.MenuItem) domain.MenuItem {
		return current.Apply(p, now)
	})
	if err != nil {
		return domain.MenuItem{}, err
	}
	s.log.Info("menu item updated", "item_id", id)
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, id string) (domain.MenuItem, error) {
	item, err := s.repo.Delete(ctx, id)
	if err != nil {
		return domain.MenuItem{}, err
	}
	s.log.Info("menu item deleted", "item_id", id)
	return item, nil
}

// Lookup serves the order ledger: the item's state at call time.
func (s *Service) Lookup(ctx context.Context, id string) (orderapp.CatalogItem, error) {
	item, err := s.repo.Get(ctx, id)
	if err != nil {
		return orderapp.CatalogItem{}, err
	}
	return orderapp.CatalogItem{Name: item.Name, Price: item.Price, Available: item.Available}, nil
}

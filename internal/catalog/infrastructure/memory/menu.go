package memory

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dmehra2102/foodhub/internal/catalog/domain"
	"github.com/dmehra2102/foodhub/pkg/apperr"
)

// MenuStore keeps menu items in creation order.
type MenuStore struct {
	mu    sync.RWMutex
	order []string
	items map[string]domain.MenuItem
}

func NewMenuStore() *MenuStore {
	return &MenuStore{items: make(map[string]domain.MenuItem)}
}

// NewSeededMenuStore returns a store holding the house menu.
func NewSeededMenuStore(now time.Time) *MenuStore {
	s := NewMenuStore()
	for _, it := range []domain.MenuItem{
		{
			ID:          "m_001",
			Name:        "Margherita Pizza",
			Description: "Classic pizza with tomatoes, mozzarella, basil.",
			Price:       decimal.RequireFromString("9.99"),
			Category:    "Pizza",
			Available:   true,
		},
		{
			ID:          "m_002",
			Name:        "Veggie Burger",
			Description: "Plant-based patty with fresh veggies.",
			Price:       decimal.RequireFromString("8.49"),
			Category:    "Burgers",
			Available:   true,
		},
	} {
		it.CreatedAt, it.UpdatedAt = now, now
		s.order = append(s.order, it.ID)
		s.items[it.ID] = it
	}
	return s
}

func (s *MenuStore) List(ctx context.Context) ([]domain.MenuItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.MenuItem, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.items[id])
	}
	return out, nil
}

func (s *MenuStore) Get(ctx context.Context, id string) (domain.MenuItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	it, ok := s.items[id]
	if !ok {
		return domain.MenuItem{}, fmt.Errorf("%w: menu item %s", apperr.ErrNotFound, id)
	}
	return it, nil
}

func (s *MenuStore) Save(ctx context.Context, item domain.MenuItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.items[item.ID]; !exists {
		s.order = append(s.order, item.ID)
	}
	s.items[item.ID] = item
	return nil
}

// Update applies fn to the stored item under the write lock, so an item
// deleted concurrently stays deleted.
func (s *MenuStore) Update(ctx context.Context, id string, fn func(domain.MenuItem) domain.MenuItem) (domain.MenuItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	it, ok := s.items[id]
	if !ok {
		return domain.MenuItem{}, fmt.Errorf("%w: menu item %s", apperr.ErrNotFound, id)
	}
	it = fn(it)
	it.ID = id
	s.items[id] = it
	return it, nil
}

func (s *MenuStore) Delete(ctx context.Context, id string) (domain.MenuItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	it, ok := s.items[id]
	if !ok {
		return domain.MenuItem{}, fmt.Errorf("%w: menu item %s", apperr.ErrNotFound, id)
	}
	delete(s.items, id)
	s.order = slices.DeleteFunc(s.order, func(v string) bool { return v == id })
	return it, nil
}

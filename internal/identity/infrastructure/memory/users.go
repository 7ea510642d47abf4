package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/dmehra2102/foodhub/internal/identity/domain"
	"github.com/dmehra2102/foodhub/pkg/apperr"
)

type UserStore struct {
	mu        sync.RWMutex
	byID      map[string]domain.User
	idByEmail map[string]string
}

func NewUserStore() *UserStore {
	return &UserStore{
		byID:      make(map[string]domain.User),
		idByEmail: make(map[string]string),
	}
}

func (s *UserStore) Create(ctx context.Context, u domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	email := strings.ToLower(u.Email)
	if _, exists := s.idByEmail[email]; exists {
		return fmt.Errorf("%w: email already registered", apperr.ErrConflict)
	}
	if _, exists := s.byID[u.ID]; exists {
		return fmt.Errorf("%w: user id %s already exists", apperr.ErrConflict, u.ID)
	}
	s.byID[u.ID] = u
	s.idByEmail[email] = u.ID
	return nil
}

func (s *UserStore) FindByEmail(ctx context.Context, email string) (domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.idByEmail[strings.ToLower(email)]
	if !ok {
		return domain.User{}, fmt.Errorf("%w: user %s", apperr.ErrNotFound, email)
	}
	return s.byID[id], nil
}

func (s *UserStore) FindByID(ctx context.Context, id string) (domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.byID[id]
	if !ok {
		return domain.User{}, fmt.Errorf("%w: user %s", apperr.ErrNotFound, id)
	}
	return u, nil
}

package application

import (
	"context"

	"github.com/dmehra2102/foodhub/internal/identity/domain"
	"github.com/dmehra2102/foodhub/internal/identity/token"
)

type UserRepository interface {
	Create(ctx context.Context, u domain.User) error
	FindByEmail(ctx context.Context, email string) (domain.User, error)
	FindByID(ctx context.Context, id string) (domain.User, error)
}

type PasswordHasher interface {
	Hash(plain string) (string, error)
	Compare(hash, plain string) bool
}

type TokenService interface {
	Issue(id token.Identity) (string, error)
	Verify(raw string) (token.Claims, error)
}

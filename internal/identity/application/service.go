package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dmehra2102/foodhub/internal/identity/domain"
	"github.com/dmehra2102/foodhub/internal/identity/password"
	"github.com/dmehra2102/foodhub/internal/identity/token"
	"github.com/dmehra2102/foodhub/pkg/apperr"
)

type Service struct {
	log    *slog.Logger
	users  UserRepository
	hasher PasswordHasher
	tokens TokenService
	now    func() time.Time
}

func NewService(log *slog.Logger, users UserRepository, hasher PasswordHasher, tokens TokenService) *Service {
	return &Service{log: log, users: users, hasher: hasher, tokens: tokens, now: time.Now}
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

type LoginInput struct {
	Email    string
	Password string
}

type LoginResult struct {
	Token string
	User  domain.User
}

func (s *Service) Register(ctx context.Context, in RegisterInput) (domain.User, error) {
	return s.create(ctx, in, domain.RoleUser)
}

// SeedAdmin creates the bootstrap admin account unless the email is taken.
func (s *Service) SeedAdmin(ctx context.Context, in RegisterInput) (domain.User, error) {
	u, err := s.create(ctx, in, domain.RoleAdmin)
	if errors.Is(err, apperr.ErrConflict) {
		existing, findErr := s.users.FindByEmail(ctx, normalizeEmail(in.Email))
		existing.PasswordHash = ""
		return existing, findErr
	}
	return u, err
}

func (s *Service) create(ctx context.Context, in RegisterInput, role domain.Role) (domain.User, error) {
	name := strings.TrimSpace(in.Name)
	email := normalizeEmail(in.Email)
	if name == "" || email == "" || in.Password == "" {
		return domain.User{}, fmt.Errorf("%w: missing required fields: name, email, password", apperr.ErrValidation)
	}

	hash, err := s.hasher.Hash(in.Password)
	if errors.Is(err, password.ErrTooLong) {
		return domain.User{}, fmt.Errorf("%w: %v", apperr.ErrValidation, err)
	}
	if err != nil {
		return domain.User{}, err
	}

	now := s.now().UTC()
	u := domain.User{
		ID:           "u_" + uuid.Must(uuid.NewV7()).String(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return domain.User{}, err
	}
	s.log.Info("user registered", "user_id", u.ID, "role", u.Role)

	u.PasswordHash = ""
	return u, nil
}

func (s *Service) Login(ctx context.Context, in LoginInput) (LoginResult, error) {
	email := normalizeEmail(in.Email)
	if email == "" || in.Password == "" {
		return LoginResult{}, fmt.Errorf("%w: missing required fields: email, password", apperr.ErrValidation)
	}

	u, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, apperr.ErrNotFound) || (err == nil && !s.hasher.Compare(u.PasswordHash, in.Password)) {
		return LoginResult{}, fmt.Errorf("%w: invalid credentials", apperr.ErrUnauthenticated)
	}
	if err != nil {
		return LoginResult{}, err
	}

	raw, err := s.tokens.Issue(token.Identity{Subject: u.ID, Email: u.Email, Role: u.Role})
	if err != nil {
		return LoginResult{}, err
	}
	u.PasswordHash = ""
	return LoginResult{Token: raw, User: u}, nil
}

// Authenticate resolves a bearer token to the actor it names. The subject
// must still exist; role and profile come from the stored user.
func (s *Service) Authenticate(ctx context.Context, raw string) (domain.Actor, error) {
	if strings.TrimSpace(raw) == "" {
		return domain.Actor{}, fmt.Errorf("%w: missing token", apperr.ErrUnauthenticated)
	}
	claims, err := s.tokens.Verify(raw)
	if err != nil {
		s.log.Debug("token rejected", "err", err)
		return domain.Actor{}, fmt.Errorf("%w: %w", apperr.ErrUnauthenticated, err)
	}

	u, err := s.users.FindByID(ctx, claims.Subject)
	if errors.Is(err, apperr.ErrNotFound) {
		return domain.Actor{}, fmt.Errorf("%w: user not found", apperr.ErrUnauthenticated)
	}
	if err != nil {
		return domain.Actor{}, err
	}
	return u.Actor(), nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Package token issues and verifies the signed, time-limited identity tokens
// the API uses for bearer authentication.
//
// A token is three base64url segments, header.claims.signature, where the
// signature is HMAC-SHA256 over the exact bytes "header.claims". Tokens are
// self-contained: the server keeps no session table, so a token stays valid
// until it expires and cannot be revoked earlier.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/dmehra2102/foodhub/internal/identity/domain"
)

// ErrInvalidToken wraps every verification failure: malformed structure,
// signature mismatch, unexpected algorithm or expiry.
var ErrInvalidToken = errors.New("invalid token")

type Identity struct {
	Subject string
	Email   string
	Role    domain.Role
}

type Claims struct {
	Identity
	IssuedAt  time.Time
	ExpiresAt time.Time
}

type wireClaims struct {
	Email string      `json:"email"`
	Role  domain.Role `json:"role"`
	jwt.RegisteredClaims
}

func Issue(id Identity, secret []byte, ttl time.Duration) (string, error) {
	return issueAt(id, secret, ttl, time.Now())
}

func Verify(raw string, secret []byte) (Claims, error) {
	return verifyAt(raw, secret, time.Now())
}

func issueAt(id Identity, secret []byte, ttl time.Duration, now time.Time) (string, error) {
	if len(secret) == 0 {
		return "", errors.New("token: empty signing secret")
	}
	claims := wireClaims{
		Email: id.Email,
		Role:  id.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.Subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

func verifyAt(raw string, secret []byte, now time.Time) (Claims, error) {
	var wc wireClaims
	_, err := jwt.ParseWithClaims(raw, &wc,
		func(*jwt.Token) (any, error) { return secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)
	if err != nil {
		return Claims{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	c := Claims{
		Identity:  Identity{Subject: wc.Subject, Email: wc.Email, Role: wc.Role},
		ExpiresAt: wc.ExpiresAt.Time,
	}
	if wc.IssuedAt != nil {
		c.IssuedAt = wc.IssuedAt.Time
	}
	return c, nil
}

// Signer binds a secret, lifetime and clock for the service layer.
type Signer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewSigner(secret string, ttl time.Duration) *Signer {
	return &Signer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// WithClock returns a copy of s reading time from now.
func (s *Signer) WithClock(now func() time.Time) *Signer {
	c := *s
	c.now = now
	return &c
}

func (s *Signer) TTL() time.Duration { return s.ttl }

func (s *Signer) Issue(id Identity) (string, error) {
	return issueAt(id, s.secret, s.ttl, s.now())
}

func (s *Signer) Verify(raw string) (Claims, error) {
	return verifyAt(raw, s.secret, s.now())
}

package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/dmehra2102/foodhub/internal/identity/domain"
	"github.com/dmehra2102/foodhub/internal/identity/token"
	"github.com/dmehra2102/foodhub/pkg/apperr"
	"github.com/dmehra2102/foodhub/pkg/httpx"
)

type Authenticator interface {
	Authenticate(ctx context.Context, raw string) (domain.Actor, error)
}

type actorKey struct{}

func WithActor(ctx context.Context, a domain.Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, a)
}

func ActorFrom(ctx context.Context) (domain.Actor, bool) {
	a, ok := ctx.Value(actorKey{}).(domain.Actor)
	return a, ok
}

// Authenticate requires an "Authorization: Bearer <token>" header and puts
// the resolved actor into the request context.
func Authenticate(auth Authenticator, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := bearerToken(r.Header.Get("Authorization"))
			if raw == "" {
				httpx.WriteMessage(w, http.StatusUnauthorized, "Missing token")
				return
			}

			actor, err := auth.Authenticate(r.Context(), raw)
			switch {
			case errors.Is(err, token.ErrInvalidToken):
				httpx.WriteMessage(w, http.StatusUnauthorized, "Invalid or expired token")
				return
			case errors.Is(err, apperr.ErrUnauthenticated):
				httpx.WriteMessage(w, http.StatusUnauthorized, "User not found")
				return
			case err != nil:
				httpx.WriteError(w, log, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), actor)))
		})
	}
}

func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, ok := ActorFrom(r.Context())
		if !ok || !actor.IsAdmin() {
			httpx.WriteMessage(w, http.StatusForbidden, "Admin access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func bearerToken(header string) string {
	scheme, raw, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(raw)
}

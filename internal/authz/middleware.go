// Package authz enforces authentication, role, and ownership checks as
// composable HTTP middleware. The chain is always authenticate → authorize →
// handle; handlers behind it can assume a valid identity in context.
package authz

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/tidytask/tidytask/internal/platform/httpx"
	"github.com/tidytask/tidytask/internal/shared"
)

// TokenVerifier resolves a bearer token into the caller's identity.
type TokenVerifier interface {
	Verify(token string) (*shared.Identity, error)
}

// OwnerLookup resolves the owning user of a todo. It returns
// shared.ErrNotFound when the todo does not exist.
type OwnerLookup interface {
	OwnerID(ctx context.Context, todoID uuid.UUID) (uuid.UUID, error)
}

// Middleware wires authorization helpers for HTTP handlers.
type Middleware struct {
	Tokens TokenVerifier
	Todos  OwnerLookup
	Logger *slog.Logger
}

// Authenticate resolves the bearer token and stores the identity in context.
// Requests without a valid token are rejected with 401.
func (m Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := bearerToken(r)
		if raw == "" {
			httpx.Fail(w, r, http.StatusUnauthorized, "Missing bearer token")
			return
		}
		identity, err := m.Tokens.Verify(raw)
		if err != nil {
			if m.Logger != nil {
				m.Logger.Warn("token rejected", slog.Any("error", err))
			}
			httpx.Fail(w, r, http.StatusUnauthorized, "Invalid or expired token")
			return
		}
		ctx := shared.ContextWithIdentity(r.Context(), identity)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRole restricts the wrapped routes to callers holding the role.
func (m Middleware) RequireRole(role shared.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity := shared.IdentityFromContext(r.Context())
			if identity == nil {
				httpx.Fail(w, r, http.StatusUnauthorized, "Missing bearer token")
				return
			}
			if identity.Role != role {
				httpx.Fail(w, r, http.StatusForbidden, "Insufficient role")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireTodoOwner gates id-bearing todo routes. Admins pass unconditionally.
// A missing todo yields 404 before any ownership decision, so existence
// information does not depend on who is asking; an existing todo owned by
// someone else yields 403.
func (m Middleware) RequireTodoOwner(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity := shared.IdentityFromContext(r.Context())
		if identity == nil {
			httpx.Fail(w, r, http.StatusUnauthorized, "Missing bearer token")
			return
		}

		todoID, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			httpx.Fail(w, r, http.StatusBadRequest, "Validation failed (uuid is expected)")
			return
		}

		if identity.IsAdmin() {
			next.ServeHTTP(w, r)
			return
		}

		ownerID, err := m.Todos.OwnerID(r.Context(), todoID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				httpx.Fail(w, r, http.StatusNotFound, "Todo not found")
				return
			}
			if m.Logger != nil {
				m.Logger.Error("ownership lookup failed", slog.String("todo", todoID.String()), slog.Any("error", err))
			}
			httpx.RespondError(w, r, err)
			return
		}
		if ownerID != identity.UserID {
			httpx.Fail(w, r, http.StatusForbidden, "You do not own this todo")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

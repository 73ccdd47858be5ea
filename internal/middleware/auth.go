package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/lunchorder/api/internal/auth"
	"github.com/lunchorder/api/internal/database"
	"github.com/lunchorder/api/internal/enum"
)

type contextKey string

const principalKey contextKey = "principal"

// UserLookup resolves the account behind a token.
// Satisfied by *appdata.State.
type UserLookup interface {
	User(id uuid.UUID) (database.User, bool)
}

// Authenticate validates the bearer token and resolves it against the
// current user list. A deleted account is rejected even while its token is
// unexpired, and a renamed or re-roled account acts with its current name
// and role.
func Authenticate(jwtSecret string, users UserLookup) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "missing or malformed authorization header"})
				return
			}

			claims, err := auth.ValidateToken(jwtSecret, token)
			if err != nil {
				writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid token"})
				return
			}

			u, ok := users.User(claims.UserID)
			if !ok {
				writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "account no longer exists"})
				return
			}

			p := auth.Principal{UserID: u.ID, Name: u.Name, Role: u.Role}
			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), p)))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "bearer") || token == "" {
		return "", false
	}
	return token, true
}

// RequireRole admits only the listed roles; everyone else gets 403.
func RequireRole(roles ...enum.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := PrincipalFrom(r.Context())
			if !ok {
				writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
				return
			}
			if !slices.Contains(roles, p.Role) {
				writeJSON(w, http.StatusForbidden, map[string]string{"error": "insufficient permissions"})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequirePrivileged admits admins and collectors.
func RequirePrivileged(next http.Handler) http.Handler {
	return RequireRole(enum.RoleAdmin, enum.RoleCollector)(next)
}

func PrincipalFrom(ctx context.Context) (auth.Principal, bool) {
	p, ok := ctx.Value(principalKey).(auth.Principal)
	return p, ok
}

func WithPrincipal(ctx context.Context, p auth.Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

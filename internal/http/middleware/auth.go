// Package middleware carries the request-auth plumbing: resolving a
// bearer token to a user once per request and gating the routes that
// demand an authenticated caller.
package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/nileshdj/pavti/internal/user"
)

type ctxKey int

const userCtxKey ctxKey = iota

// Authenticator looks up the Authorization token and, when valid, attaches
// the user to the request context. Requests without a token pass through
// anonymously; a token that fails the lookup is rejected outright.
// Both the "Token <key>" and "Bearer <key>" schemes are accepted.
func Authenticator(svc *user.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key, ok := bearerToken(r)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			u, err := svc.Authenticate(r.Context(), key)
			if err != nil {
				if errors.Is(err, user.ErrNotFound) {
					writeError(w, http.StatusUnauthorized, "Invalid token")
					return
				}

				writeError(w, http.StatusInternalServerError, "internal error")

				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), u)))
		})
	}
}

// RequireAuth rejects requests that carry no authenticated user. It sits
// behind Authenticator, which has already done the lookup.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if UserFrom(r.Context()) == nil {
			writeError(w, http.StatusUnauthorized, "Authentication required")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// WithUser returns a context carrying the authenticated user.
func WithUser(ctx context.Context, u *user.User) context.Context {
	return context.WithValue(ctx, userCtxKey, u)
}

// UserFrom returns the authenticated user, or nil for anonymous requests.
func UserFrom(ctx context.Context) *user.User {
	u, _ := ctx.Value(userCtxKey).(*user.User)
	return u
}

func bearerToken(r *http.Request) (string, bool) {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if header == "" {
		return "", false
	}

	parts := strings.Fields(header)
	if len(parts) != 2 {
		return "", false
	}

	switch strings.ToLower(parts[0]) {
	case "token", "bearer":
		return parts[1], true
	default:
		return "", false
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(map[string]string{"error": msg}); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

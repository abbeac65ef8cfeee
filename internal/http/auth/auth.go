// Package auth resolves the session of a request from its bearer token.
package auth

import (
	"context"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/MrJamesThe3rd/budget/internal/http/render"
)

type contextKey struct{}

// Verifier returns the session id carried by a token.
type Verifier interface {
	Verify(token string) (string, error)
}

// Middleware rejects requests without a valid bearer token and stores the session id in the
// request context.
func Middleware(tokens Verifier, log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || token == "" {
				render.Error(w, log, http.StatusUnauthorized, "authorization token required")
				return
			}

			id, err := tokens.Verify(token)
			if err != nil {
				log.Debug("rejected session token", zap.Error(err))
				render.Error(w, log, http.StatusUnauthorized, "invalid or expired token")

				return
			}

			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), id)))
		})
	}
}

func WithSession(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

// SessionID returns the session stored by Middleware.
func SessionID(ctx context.Context) string {
	id, _ := ctx.Value(contextKey{}).(string)
	return id
}

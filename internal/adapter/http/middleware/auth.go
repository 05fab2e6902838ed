package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/iho/fundledger/internal/infrastructure/auth"
)

// ContextKey is the type for context keys
type ContextKey string

const (
	// CallerContextKey is the context key for the authenticated caller address
	CallerContextKey ContextKey = "caller"
)

// AuthMiddleware requires a bearer token and stores its subject as the caller.
func AuthMiddleware(jwtManager *auth.JWTManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Extract token from Authorization header
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				http.Error(w, "missing authorization header", http.StatusUnauthorized)
				return
			}

			// Parse Bearer token
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || parts[0] != "Bearer" {
				http.Error(w, "invalid authorization header format", http.StatusUnauthorized)
				return
			}

			claims, err := jwtManager.Verify(parts[1])
			if err != nil {
				http.Error(w, "invalid or expired token", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithCaller(r.Context(), claims.Address())))
		})
	}
}

// WithCaller returns a context carrying the authenticated caller address.
func WithCaller(ctx context.Context, address string) context.Context {
	return context.WithValue(ctx, CallerContextKey, address)
}

// CallerFromContext extracts the authenticated caller address from context
func CallerFromContext(ctx context.Context) (string, bool) {
	caller, ok := ctx.Value(CallerContextKey).(string)
	return caller, ok && caller != ""
}

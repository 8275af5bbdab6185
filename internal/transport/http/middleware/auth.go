package middleware

import (
	"context"
	"net/http"
	"strings"
)

type contextKey string

const EmailKey contextKey = "email"

// TokenVerifier resolves a bearer token to the account email it was issued for.
type TokenVerifier interface {
	Verify(token string) (string, error)
}

// Auth returns middleware that validates the Bearer JWT and injects the account email into context.
func Auth(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, "Bearer ") {
				writeUnauthorized(w, "", "missing or invalid authorization header")
				return
			}
			email, err := verifier.Verify(strings.TrimPrefix(authHeader, "Bearer "))
			if err != nil {
				writeUnauthorized(w, "invalid_token", "invalid or expired token")
				return
			}
			ctx := context.WithValue(r.Context(), EmailKey, email)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// EmailFromContext extracts the authenticated email from the request context.
func EmailFromContext(ctx context.Context) (string, bool) {
	e, ok := ctx.Value(EmailKey).(string)
	return e, ok && e != ""
}

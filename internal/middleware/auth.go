// Package middleware provides HTTP middleware for identity resolution
// and request protection.
package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/openexam/examtrail/internal/auth"
)

// ContextKey is the type used for request context keys.
type ContextKey string

// ContextKeyIdentity is the context key for resolved identity claims.
const ContextKeyIdentity ContextKey = "identity"

// writeAuthError writes the error envelope used across the API.
func writeAuthError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"success": false,
		"message": message,
	})
}

// BearerToken extracts the bearer credential from the Authorization
// header. The ok result is false when the header is missing or not in
// Bearer form.
func BearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", false
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

// RequireUser creates middleware that resolves the bearer credential to
// an identity and stores it in the request context. Requests without a
// resolvable credential are rejected with 401 and never reach the
// handler.
func RequireUser(secret []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := BearerToken(r)
			if !ok {
				writeAuthError(w, http.StatusUnauthorized, "Missing Authorization header")
				return
			}

			claims, err := auth.ResolveToken(secret, token)
			if err != nil {
				writeAuthError(w, http.StatusUnauthorized, "Invalid or expired token")
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeyIdentity, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Identity retrieves the resolved identity from the request context.
// Returns nil if the request did not pass through RequireUser.
func Identity(r *http.Request) *auth.Claims {
	claims, ok := r.Context().Value(ContextKeyIdentity).(*auth.Claims)
	if !ok {
		return nil
	}
	return claims
}

package middleware

import (
	"context"
	"net/http"

	"github.com/go-chi/jwtauth/v5"

	"github.com/shiftsync/shiftsync_backend/config"
	"github.com/shiftsync/shiftsync_backend/internal/pkg/response"
)

// AddUserToContext copies the username and role claims from the verified
// JWT into the request context.
func AddUserToContext() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, _, err := jwtauth.FromContext(r.Context())
			if err != nil || token == nil {
				next.ServeHTTP(w, r)
				return
			}
			claims := token.PrivateClaims()

			ctx := r.Context()
			if username, ok := claims["username"].(string); ok && username != "" {
				ctx = context.WithValue(ctx, config.UsernameKey, username)
			}
			if role, ok := claims["role"].(string); ok && role != "" {
				ctx = context.WithValue(ctx, config.RoleKey, role)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ManagerOnly rejects requests whose token does not carry the manager role.
func ManagerOnly() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, _, err := jwtauth.FromContext(r.Context())
			if err != nil || token == nil {
				response.RespondWithError(w, http.StatusUnauthorized, "Invalid token")
				return
			}
			claims, err := token.AsMap(r.Context())
			if err != nil {
				response.RespondWithError(w, http.StatusUnauthorized, "Invalid claims")
				return
			}
			if claims["role"] != "manager" {
				response.RespondWithError(w, http.StatusForbidden, "Manager access required")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Username returns the authenticated username from the request context.
func Username(r *http.Request) string {
	if username, ok := r.Context().Value(config.UsernameKey).(string); ok {
		return username
	}
	return ""
}

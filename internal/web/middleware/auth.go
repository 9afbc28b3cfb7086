package middleware

import (
	"net/http"

	"warren/internal/auth"
)

// Auth returns a middleware that requires a logged-in user.
func Auth(authService *auth.Service) func(http.Handler) http.Handler {
	return authService.RequireLogin
}

// WithUser returns a middleware that puts the current user on the
// request context.
func WithUser(authService *auth.Service) func(http.Handler) http.Handler {
	return authService.WithUser
}

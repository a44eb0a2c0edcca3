package httpapi

import (
	"context"
	"net/http"
	"strings"

	"github.com/svalekar/voterreg/internal/server/models"
)

// TokenVerifier checks a bearer token and resolves it to a live user row.
// Deactivated or deleted users fail verification even with an unexpired
// token.
type TokenVerifier interface {
	VerifyToken(ctx context.Context, token string) (*models.User, error)
}

// RequireAuth gates next behind bearer authentication and, when required is
// non-empty, a hierarchical role check: an admin passes supervisor gates, a
// supervisor passes volunteer gates.
func RequireAuth(v TokenVerifier, required models.Role, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		header := r.Header.Get("Authorization")
		if header == "" {
			ErrorResponse(w, http.StatusUnauthorized, "missing token")
			return
		}

		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			ErrorResponse(w, http.StatusUnauthorized, "invalid authorization header")
			return
		}

		user, err := v.VerifyToken(r.Context(), token)
		if err != nil {
			WriteError(w, err)
			return
		}

		if required != "" && !user.Role.Covers(required) {
			ErrorResponse(w, http.StatusForbidden, "insufficient role")
			return
		}

		next(w, r.WithContext(WithUser(r.Context(), user)))
	}
}

// OptionalAuth attaches the user when a valid bearer token is present and
// lets the request through anonymously otherwise. Used by the submit-form
// route, which serves both the public form and the team dashboard.
func OptionalAuth(v TokenVerifier, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		header := r.Header.Get("Authorization")
		if token, ok := strings.CutPrefix(header, "Bearer "); ok && token != "" {
			if user, err := v.VerifyToken(r.Context(), token); err == nil {
				r = r.WithContext(WithUser(r.Context(), user))
			}
		}

		next(w, r)
	}
}

// Package httpapi exposes the registration server's REST surface: JSON
// helpers, logging/CORS middleware, the bearer-token auth gate, and the
// route handlers.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/svalekar/voterreg/internal/common"
	"github.com/svalekar/voterreg/internal/logging"
	"github.com/svalekar/voterreg/internal/server/models"
)

type ctxKey string

const userKey ctxKey = "user"

// WithUser returns a context carrying the authenticated user.
func WithUser(ctx context.Context, u *models.User) context.Context {
	return context.WithValue(ctx, userKey, u)
}

// UserFromContext returns the authenticated user, or nil for public routes.
func UserFromContext(ctx context.Context) *models.User {
	u, _ := ctx.Value(userKey).(*models.User)
	return u
}

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// JSONResponse writes a JSON response.
func JSONResponse(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

// ErrorResponse writes a JSON error response.
func ErrorResponse(w http.ResponseWriter, statusCode int, message string) {
	JSONResponse(w, statusCode, errorBody{
		Error:   http.StatusText(statusCode),
		Message: message,
	})
}

// ParseJSONBody parses the request body into the given struct.
func ParseJSONBody(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

// WriteError maps domain sentinels to HTTP status codes. Internal detail is
// never leaked; opaque failures surface as a bare 500.
func WriteError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, common.ErrorValidation):
		ErrorResponse(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, common.ErrorDuplicateSubmission), errors.Is(err, common.ErrorDuplicateEmail):
		ErrorResponse(w, http.StatusConflict, err.Error())
	case errors.Is(err, common.ErrorNotFound):
		ErrorResponse(w, http.StatusNotFound, "not found")
	case errors.Is(err, common.ErrorNoFieldsToUpdate):
		ErrorResponse(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, common.ErrorUnauthorized), errors.Is(err, common.ErrInvalidToken), errors.Is(err, common.ErrTokenExpired):
		ErrorResponse(w, http.StatusUnauthorized, "unauthorized")
	case errors.Is(err, common.ErrorForbidden):
		ErrorResponse(w, http.StatusForbidden, "forbidden")
	default:
		ErrorResponse(w, http.StatusInternalServerError, "internal error")
	}
}

// WithLogging wraps a handler with request logging.
func WithLogging(logger logging.Logger, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		logger.Info(r.Context(), "request started",
			"method", r.Method,
			"path", r.URL.Path,
			"remote", r.RemoteAddr,
		)

		next(w, r)

		logger.Info(r.Context(), "request completed",
			"method", r.Method,
			"path", r.URL.Path,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}
}

// CORS allows cross-origin requests from the web front end.
func CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin == "" {
			origin = "*"
		}

		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Allow-Credentials", "true")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

package httpapi

import (
	"context"
	"net/http"

	"github.com/svalekar/voterreg/internal/logging"
	"github.com/svalekar/voterreg/internal/server/models"
)

type authService interface {
	Authenticate(ctx context.Context, login, password, loginType string) (string, *models.User, error)
}

type AuthHandler struct {
	svc    authService
	logger logging.Logger
}

func NewAuthHandler(svc authService, logger logging.Logger) *AuthHandler {
	return &AuthHandler{svc: svc, logger: logger}
}

// Login handles POST /api/login. Failures are uniformly "unauthorized" so
// the response does not reveal whether the account exists.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {

	var req struct {
		Login     string `json:"login"`
		Password  string `json:"password"`
		LoginType string `json:"loginType"` // email (default) | phone
	}
	if err := ParseJSONBody(r, &req); err != nil {
		ErrorResponse(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.Login == "" || req.Password == "" {
		ErrorResponse(w, http.StatusBadRequest, "login and password are required")
		return
	}

	token, user, err := h.svc.Authenticate(r.Context(), req.Login, req.Password, req.LoginType)
	if err != nil {
		ErrorResponse(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	h.logger.Info(r.Context(), "login succeeded", "user_id", user.ID)
	JSONResponse(w, http.StatusOK, map[string]any{
		"token": token,
		"user":  user,
	})
}

package httpapi

import (
	"context"
	"net/http"
	"strconv"

	"github.com/svalekar/voterreg/internal/logging"
	"github.com/svalekar/voterreg/internal/server/models"
	"github.com/svalekar/voterreg/internal/server/services"
)

type userService interface {
	Create(ctx context.Context, u *models.User, password string, actor *models.User) (*models.User, error)
	Get(ctx context.Context, id int64) (*models.User, error)
	List(ctx context.Context, f models.UserFilter) ([]*models.User, int64, error)
	Update(ctx context.Context, id int64, req services.UpdateRequest, actor *models.User) error
	Deactivate(ctx context.Context, id int64, actor *models.User) error
	Stats(ctx context.Context) (*models.UserStats, error)
}

type UserHandler struct {
	svc    userService
	logger logging.Logger
}

func NewUserHandler(svc userService, logger logging.Logger) *UserHandler {
	return &UserHandler{svc: svc, logger: logger}
}

type createUserRequest struct {
	Email     string      `json:"email"`
	Password  string      `json:"password"`
	FirstName string      `json:"firstName"`
	LastName  string      `json:"lastName"`
	Phone     string      `json:"phone"`
	District  string      `json:"district"`
	Taluka    string      `json:"taluka"`
	Role      models.Role `json:"role"`
}

// Create handles POST /api/users (admin).
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {

	var req createUserRequest
	if err := ParseJSONBody(r, &req); err != nil {
		ErrorResponse(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	u := &models.User{
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
		District:  req.District,
		Taluka:    req.Taluka,
		Role:      req.Role,
		IsActive:  true,
	}

	created, err := h.svc.Create(r.Context(), u, req.Password, UserFromContext(r.Context()))
	if err != nil {
		WriteError(w, err)
		return
	}

	h.logger.Info(r.Context(), "user created", "user_id", created.ID, "role", created.Role)
	JSONResponse(w, http.StatusCreated, created)
}

// TeamSignup handles POST /api/team-signup: a public volunteer application.
// The account is created inactive and must be activated by an admin before
// login succeeds.
func (h *UserHandler) TeamSignup(w http.ResponseWriter, r *http.Request) {

	var req createUserRequest
	if err := ParseJSONBody(r, &req); err != nil {
		ErrorResponse(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	u := &models.User{
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
		District:  req.District,
		Taluka:    req.Taluka,
		Role:      models.RoleVolunteer,
		IsActive:  false,
	}

	created, err := h.svc.Create(r.Context(), u, req.Password, nil)
	if err != nil {
		WriteError(w, err)
		return
	}

	h.logger.Info(r.Context(), "team signup received", "user_id", created.ID)
	JSONResponse(w, http.StatusCreated, created)
}

// List handles GET /api/users with role, district, taluka, active, search,
// limit, and offset query parameters.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {

	q := r.URL.Query()
	f := models.UserFilter{}

	if v := q.Get("role"); v != "" {
		role := models.Role(v)
		if !role.Valid() {
			ErrorResponse(w, http.StatusBadRequest, "invalid role filter")
			return
		}
		f.Role = &role
	}
	if v := q.Get("district"); v != "" {
		f.District = &v
	}
	if v := q.Get("taluka"); v != "" {
		f.Taluka = &v
	}
	if v := q.Get("active"); v != "" {
		active := v == "true"
		f.Active = &active
	}
	if v := q.Get("search"); v != "" {
		f.Search = &v
	}
	f.Limit, _ = strconv.Atoi(q.Get("limit"))
	f.Offset, _ = strconv.Atoi(q.Get("offset"))

	users, total, err := h.svc.List(r.Context(), f)
	if err != nil {
		WriteError(w, err)
		return
	}

	JSONResponse(w, http.StatusOK, map[string]any{
		"users": users,
		"total": total,
	})
}

func parseUserID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	return id, err == nil
}

// Get handles GET /api/users/{id}.
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUserID(r)
	if !ok {
		ErrorResponse(w, http.StatusBadRequest, "invalid user id")
		return
	}

	u, err := h.svc.Get(r.Context(), id)
	if err != nil {
		WriteError(w, err)
		return
	}
	JSONResponse(w, http.StatusOK, u)
}

// Update handles PATCH /api/users/{id}. Only the supplied fields change.
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUserID(r)
	if !ok {
		ErrorResponse(w, http.StatusBadRequest, "invalid user id")
		return
	}

	var req services.UpdateRequest
	if err := ParseJSONBody(r, &req); err != nil {
		ErrorResponse(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	if err := h.svc.Update(r.Context(), id, req, UserFromContext(r.Context())); err != nil {
		WriteError(w, err)
		return
	}

	h.logger.Info(r.Context(), "user updated", "user_id", id)
	JSONResponse(w, http.StatusOK, map[string]int64{"id": id})
}

// Deactivate handles DELETE /api/users/{id} (soft delete).
func (h *UserHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUserID(r)
	if !ok {
		ErrorResponse(w, http.StatusBadRequest, "invalid user id")
		return
	}

	if err := h.svc.Deactivate(r.Context(), id, UserFromContext(r.Context())); err != nil {
		WriteError(w, err)
		return
	}

	h.logger.Info(r.Context(), "user deactivated", "user_id", id)
	JSONResponse(w, http.StatusOK, map[string]any{"id": id, "isActive": false})
}

// Stats handles GET /api/users/stats.
func (h *UserHandler) Stats(w http.ResponseWriter, r *http.Request) {
	st, err := h.svc.Stats(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}
	JSONResponse(w, http.StatusOK, st)
}

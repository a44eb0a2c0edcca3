package httpapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/svalekar/voterreg/internal/common"
	"github.com/svalekar/voterreg/internal/server/models"
)

const createUserJSON = `{
	"email": "asha@example.org", "password": "longenough",
	"firstName": "Asha", "lastName": "Patil",
	"phone": "9876543210", "district": "Pune", "role": "supervisor"
}`

func TestUserCreate_ActiveByDefault(t *testing.T) {
	svc := &stubUserService{}
	h := NewUserHandler(svc, testLogger())

	r := httptest.NewRequest(http.MethodPost, "/api/users", strings.NewReader(createUserJSON))
	r = r.WithContext(WithUser(r.Context(), &models.User{ID: 1, Role: models.RoleAdmin}))

	w := httptest.NewRecorder()
	h.Create(w, r)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.True(t, svc.created.IsActive)
	assert.Equal(t, models.RoleSupervisor, svc.created.Role)
	assert.Equal(t, "longenough", svc.password)
	require.NotNil(t, svc.actor)
	assert.Equal(t, int64(1), svc.actor.ID)
}

func TestUserCreate_DuplicateEmail(t *testing.T) {
	h := NewUserHandler(&stubUserService{err: common.ErrorDuplicateEmail}, testLogger())

	r := httptest.NewRequest(http.MethodPost, "/api/users", strings.NewReader(createUserJSON))

	w := httptest.NewRecorder()
	h.Create(w, r)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestTeamSignup_InactiveVolunteer(t *testing.T) {
	svc := &stubUserService{}
	h := NewUserHandler(svc, testLogger())

	r := httptest.NewRequest(http.MethodPost, "/api/team-signup", strings.NewReader(createUserJSON))

	w := httptest.NewRecorder()
	h.TeamSignup(w, r)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.False(t, svc.created.IsActive)
	assert.Equal(t, models.RoleVolunteer, svc.created.Role)
	assert.Nil(t, svc.actor)
}

func TestUserList_ParsesFilters(t *testing.T) {
	svc := &stubUserService{}
	h := NewUserHandler(svc, testLogger())

	r := httptest.NewRequest(http.MethodGet,
		"/api/users?role=volunteer&active=true&search=asha&limit=5", nil)

	w := httptest.NewRecorder()
	h.List(w, r)

	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, svc.filter.Role)
	assert.Equal(t, models.RoleVolunteer, *svc.filter.Role)
	require.NotNil(t, svc.filter.Active)
	assert.True(t, *svc.filter.Active)
	require.NotNil(t, svc.filter.Search)
	assert.Equal(t, "asha", *svc.filter.Search)
	assert.Equal(t, 5, svc.filter.Limit)
}

func TestUserList_RejectsBogusRole(t *testing.T) {
	h := NewUserHandler(&stubUserService{}, testLogger())

	w := httptest.NewRecorder()
	h.List(w, httptest.NewRequest(http.MethodGet, "/api/users?role=root", nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUserUpdate_PartialPatch(t *testing.T) {
	svc := &stubUserService{}
	h := NewUserHandler(svc, testLogger())

	r := httptest.NewRequest(http.MethodPatch, "/api/users/5",
		strings.NewReader(`{"role": "supervisor", "isActive": false}`))
	r.SetPathValue("id", "5")

	w := httptest.NewRecorder()
	h.Update(w, r)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(5), svc.updateID)
	require.NotNil(t, svc.update.Role)
	assert.Equal(t, models.RoleSupervisor, *svc.update.Role)
	require.NotNil(t, svc.update.IsActive)
	assert.False(t, *svc.update.IsActive)
	assert.Nil(t, svc.update.FirstName)
	assert.Nil(t, svc.update.Password)
}

func TestUserUpdate_BadID(t *testing.T) {
	h := NewUserHandler(&stubUserService{}, testLogger())

	r := httptest.NewRequest(http.MethodPatch, "/api/users/abc", strings.NewReader(`{}`))
	r.SetPathValue("id", "abc")

	w := httptest.NewRecorder()
	h.Update(w, r)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUserUpdate_EmptyPatch(t *testing.T) {
	h := NewUserHandler(&stubUserService{err: common.ErrorNoFieldsToUpdate}, testLogger())

	r := httptest.NewRequest(http.MethodPatch, "/api/users/5", strings.NewReader(`{}`))
	r.SetPathValue("id", "5")

	w := httptest.NewRecorder()
	h.Update(w, r)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUserDeactivate(t *testing.T) {
	svc := &stubUserService{}
	h := NewUserHandler(svc, testLogger())

	r := httptest.NewRequest(http.MethodDelete, "/api/users/4", nil)
	r.SetPathValue("id", "4")

	w := httptest.NewRecorder()
	h.Deactivate(w, r)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(4), svc.deactiveID)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, false, resp["isActive"])
}

func TestUserGet_NotFound(t *testing.T) {
	h := NewUserHandler(&stubUserService{err: common.ErrorNotFound}, testLogger())

	r := httptest.NewRequest(http.MethodGet, "/api/users/99", nil)
	r.SetPathValue("id", "99")

	w := httptest.NewRecorder()
	h.Get(w, r)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

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

func TestLogin_Success(t *testing.T) {
	svc := &stubAuthService{
		token: "signed.jwt.token",
		user:  &models.User{ID: 8, Email: "asha@example.org", Role: models.RoleSupervisor},
	}
	h := NewAuthHandler(svc, testLogger())

	r := httptest.NewRequest(http.MethodPost, "/api/login",
		strings.NewReader(`{"login": "asha@example.org", "password": "correct-pass"}`))

	w := httptest.NewRecorder()
	h.Login(w, r)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "asha@example.org", svc.login)
	assert.Equal(t, "", svc.loginType)

	var resp struct {
		Token string      `json:"token"`
		User  models.User `json:"user"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "signed.jwt.token", resp.Token)
	assert.Equal(t, int64(8), resp.User.ID)
}

func TestLogin_PhoneType(t *testing.T) {
	svc := &stubAuthService{token: "t", user: &models.User{ID: 8}}
	h := NewAuthHandler(svc, testLogger())

	r := httptest.NewRequest(http.MethodPost, "/api/login",
		strings.NewReader(`{"login": "9876543210", "password": "correct-pass", "loginType": "phone"}`))

	w := httptest.NewRecorder()
	h.Login(w, r)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "phone", svc.loginType)
}

func TestLogin_BadCredentialsAreGeneric(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{err: common.ErrorUnauthorized}, testLogger())

	r := httptest.NewRequest(http.MethodPost, "/api/login",
		strings.NewReader(`{"login": "asha@example.org", "password": "wrong"}`))

	w := httptest.NewRecorder()
	h.Login(w, r)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "invalid credentials")
	assert.NotContains(t, w.Body.String(), "password")
}

func TestLogin_MissingFields(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{}, testLogger())

	r := httptest.NewRequest(http.MethodPost, "/api/login", strings.NewReader(`{"login": "asha@example.org"}`))

	w := httptest.NewRecorder()
	h.Login(w, r)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLogin_BadJSON(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{}, testLogger())

	r := httptest.NewRequest(http.MethodPost, "/api/login", strings.NewReader("{broken"))

	w := httptest.NewRecorder()
	h.Login(w, r)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/svalekar/voterreg/internal/common"
)

func TestWriteError_StatusMapping(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("%w: mobileNumber", common.ErrorValidation), http.StatusUnprocessableEntity},
		{common.ErrorDuplicateSubmission, http.StatusConflict},
		{common.ErrorDuplicateEmail, http.StatusConflict},
		{common.ErrorNotFound, http.StatusNotFound},
		{common.ErrorNoFieldsToUpdate, http.StatusBadRequest},
		{common.ErrorUnauthorized, http.StatusUnauthorized},
		{common.ErrInvalidToken, http.StatusUnauthorized},
		{common.ErrTokenExpired, http.StatusUnauthorized},
		{common.ErrorForbidden, http.StatusForbidden},
		{errors.New("connection refused"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		w := httptest.NewRecorder()
		WriteError(w, tt.err)
		assert.Equal(t, tt.want, w.Code, "error: %v", tt.err)
	}
}

func TestWriteError_HidesInternalDetail(t *testing.T) {
	w := httptest.NewRecorder()
	WriteError(w, errors.New("dial tcp 10.0.0.5:5432: connection refused"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "10.0.0.5")
	assert.Contains(t, w.Body.String(), "internal error")
}

func TestCORS_Preflight(t *testing.T) {
	inner := http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatal("preflight must not reach the handler")
	})

	r := httptest.NewRequest(http.MethodOptions, "/api/submit-form", nil)
	r.Header.Set("Origin", "https://forms.example.org")

	w := httptest.NewRecorder()
	CORS(inner).ServeHTTP(w, r)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "https://forms.example.org", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), "Authorization")
}

func TestCORS_PassesRequestThrough(t *testing.T) {
	called := false
	inner := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		called = true
		w.WriteHeader(http.StatusTeapot)
	})

	w := httptest.NewRecorder()
	CORS(inner).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/healthz", nil))

	assert.True(t, called)
	assert.Equal(t, http.StatusTeapot, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestJSONResponse_ContentType(t *testing.T) {
	w := httptest.NewRecorder()
	JSONResponse(w, http.StatusOK, map[string]string{"ok": "yes"})

	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"ok": "yes"}`, w.Body.String())
}

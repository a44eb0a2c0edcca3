package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/svalekar/voterreg/internal/common"
	"github.com/svalekar/voterreg/internal/server/auth"
	"github.com/svalekar/voterreg/internal/server/config"
	"github.com/svalekar/voterreg/internal/server/models"
)

func newAuthServiceForTest(t *testing.T) (*AuthService, *stubRepoManager) {
	t.Helper()
	pool, _ := newMockPool(t)
	repos := newStubRepoManager()
	cfg := &config.Config{SecretKey: "test-secret", TokenValidityDuration: time.Hour}
	return NewAuthService(pool, repos, cfg, testLogger()), repos
}

func activeUser(t *testing.T) *models.User {
	t.Helper()
	hash, err := auth.HashPassword("correct-pass")
	require.NoError(t, err)
	return &models.User{
		ID:           8,
		Email:        "asha@example.org",
		Phone:        "9876543210",
		PasswordHash: hash,
		Role:         models.RoleSupervisor,
		IsActive:     true,
	}
}

func TestAuthenticate_ByEmail(t *testing.T) {
	svc, repos := newAuthServiceForTest(t)

	u := activeUser(t)
	repos.users.byEmail = map[string]*models.User{u.Email: u}
	repos.users.lastLogins = make(chan int64, 1)

	token, got, err := svc.Authenticate(context.Background(), u.Email, "correct-pass", "")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	claims, err := auth.ParseToken(token, []byte("test-secret"))
	require.NoError(t, err)
	assert.Equal(t, u.ID, claims.UserID)
	assert.Equal(t, models.RoleSupervisor, claims.Role)

	select {
	case id := <-repos.users.lastLogins:
		assert.Equal(t, u.ID, id)
	case <-time.After(2 * time.Second):
		t.Fatal("last login never stamped")
	}
}

func TestAuthenticate_ByPhone(t *testing.T) {
	svc, repos := newAuthServiceForTest(t)

	u := activeUser(t)
	repos.users.byPhone = map[string]*models.User{u.Phone: u}

	_, got, err := svc.Authenticate(context.Background(), u.Phone, "correct-pass", "phone")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
}

func TestAuthenticate_Failures(t *testing.T) {
	svc, repos := newAuthServiceForTest(t)

	u := activeUser(t)
	inactive := activeUser(t)
	inactive.Email = "gone@example.org"
	inactive.IsActive = false
	repos.users.byEmail = map[string]*models.User{u.Email: u, inactive.Email: inactive}

	tests := []struct {
		name     string
		login    string
		password string
	}{
		{"unknown login", "nobody@example.org", "correct-pass"},
		{"wrong password", u.Email, "wrong-pass"},
		{"deactivated account", inactive.Email, "correct-pass"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, got, err := svc.Authenticate(context.Background(), tt.login, tt.password, "")
			assert.ErrorIs(t, err, common.ErrorUnauthorized)
			assert.Empty(t, token)
			assert.Nil(t, got)
		})
	}
}

func TestVerifyToken_OK(t *testing.T) {
	svc, repos := newAuthServiceForTest(t)

	u := activeUser(t)
	repos.users.byID = map[int64]*models.User{u.ID: u}

	token, err := auth.GenerateToken(u, []byte("test-secret"), time.Hour)
	require.NoError(t, err)

	got, err := svc.VerifyToken(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
}

func TestVerifyToken_DeactivatedSinceIssue(t *testing.T) {
	svc, repos := newAuthServiceForTest(t)

	u := activeUser(t)
	token, err := auth.GenerateToken(u, []byte("test-secret"), time.Hour)
	require.NoError(t, err)

	u.IsActive = false
	repos.users.byID = map[int64]*models.User{u.ID: u}

	_, err = svc.VerifyToken(context.Background(), token)
	assert.ErrorIs(t, err, common.ErrorUnauthorized)
}

func TestVerifyToken_UserGone(t *testing.T) {
	svc, repos := newAuthServiceForTest(t)
	repos.users.byID = map[int64]*models.User{}

	token, err := auth.GenerateToken(activeUser(t), []byte("test-secret"), time.Hour)
	require.NoError(t, err)

	_, err = svc.VerifyToken(context.Background(), token)
	assert.ErrorIs(t, err, common.ErrorUnauthorized)
}

func TestVerifyToken_Garbage(t *testing.T) {
	svc, _ := newAuthServiceForTest(t)

	_, err := svc.VerifyToken(context.Background(), "not.a.token")
	assert.ErrorIs(t, err, common.ErrInvalidToken)
}

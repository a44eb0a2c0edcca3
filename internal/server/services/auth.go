package services

import (
	"context"
	"errors"
	"time"

	"github.com/svalekar/voterreg/internal/common"
	"github.com/svalekar/voterreg/internal/logging"
	"github.com/svalekar/voterreg/internal/server/auth"
	"github.com/svalekar/voterreg/internal/server/config"
	"github.com/svalekar/voterreg/internal/server/db"
	"github.com/svalekar/voterreg/internal/server/models"
)

// dummyHash absorbs a bcrypt comparison when the login does not resolve, so
// "no such user" and "wrong password" take comparable time.
const dummyHash = "$2a$12$R9h/cIPz0gi.URNNX3kh2OPST9/PgBkqquzi.Ss7KIUgO2t0jWMUW"

// AuthService verifies credentials and mints stateless bearer tokens.
// Any failure surfaces as ErrorUnauthorized; callers cannot distinguish an
// unknown login from a wrong password.
type AuthService struct {
	pool   *db.Pool
	repos  db.RepositoryManager
	secret []byte
	expiry time.Duration
	logger logging.Logger
}

func NewAuthService(pool *db.Pool, repos db.RepositoryManager, cfg *config.Config, logger logging.Logger) *AuthService {
	return &AuthService{
		pool:   pool,
		repos:  repos,
		secret: []byte(cfg.SecretKey),
		expiry: cfg.TokenValidityDuration,
		logger: logger.With("component", "auth"),
	}
}

// Authenticate looks up an active user by email or phone, verifies the
// password, and issues a token embedding {id, email, role}. The lastLogin
// stamp is written asynchronously; its failure does not fail the login.
func (s *AuthService) Authenticate(ctx context.Context, login, password, loginType string) (string, *models.User, error) {

	repo := s.repos.Users(s.pool)

	var user *models.User
	var err error
	switch loginType {
	case "phone":
		user, err = repo.GetByPhone(ctx, login)
	default:
		user, err = repo.GetByEmail(ctx, login)
	}

	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			auth.CheckPassword(dummyHash, password)
			return "", nil, common.ErrorUnauthorized
		}
		return "", nil, common.ErrorInternal
	}

	if !user.IsActive || !auth.CheckPassword(user.PasswordHash, password) {
		return "", nil, common.ErrorUnauthorized
	}

	token, err := auth.GenerateToken(user, s.secret, s.expiry)
	if err != nil {
		return "", nil, common.ErrorInternal
	}

	bg := context.WithoutCancel(ctx)
	go func() {
		if err := repo.UpdateLastLogin(bg, user.ID); err != nil {
			s.logger.Warn(bg, "last login update failed", "user_id", user.ID, "error", err.Error())
		}
	}()

	return token, user, nil
}

// VerifyToken checks signature and expiry, then re-fetches the user row and
// rejects missing or deactivated accounts. Stale token claims are never
// trusted for identity beyond the subject id.
func (s *AuthService) VerifyToken(ctx context.Context, tokenString string) (*models.User, error) {

	claims, err := auth.ParseToken(tokenString, s.secret)
	if err != nil {
		return nil, err
	}

	user, err := s.repos.Users(s.pool).GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, common.ErrorInternal
	}

	if !user.IsActive {
		return nil, common.ErrorUnauthorized
	}

	return user, nil
}

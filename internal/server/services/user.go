package services

import (
	"context"
	"fmt"
	"net/mail"

	"github.com/svalekar/voterreg/internal/common"
	"github.com/svalekar/voterreg/internal/dbx"
	"github.com/svalekar/voterreg/internal/logging"
	"github.com/svalekar/voterreg/internal/server/auth"
	"github.com/svalekar/voterreg/internal/server/db"
	"github.com/svalekar/voterreg/internal/server/models"
	"github.com/svalekar/voterreg/internal/server/notify"
)

// UserService administers team members. The welcome message is best-effort:
// it fires after the creation transaction commits and its failure is logged
// and swallowed.
type UserService struct {
	pool     *db.Pool
	repos    db.RepositoryManager
	notifier notify.Notifier
	logger   logging.Logger
}

func NewUserService(pool *db.Pool, repos db.RepositoryManager, notifier notify.Notifier, logger logging.Logger) *UserService {
	return &UserService{
		pool:     pool,
		repos:    repos,
		notifier: notifier,
		logger:   logger.With("component", "users"),
	}
}

// Create validates, hashes the password, and inserts the user with an email
// uniqueness check inside the transaction.
func (s *UserService) Create(ctx context.Context, u *models.User, password string, actor *models.User) (*models.User, error) {

	if _, err := mail.ParseAddress(u.Email); err != nil {
		return nil, fmt.Errorf("%w: email", common.ErrorValidation)
	}
	if u.FirstName == "" {
		return nil, fmt.Errorf("%w: firstName", common.ErrorValidation)
	}
	if !u.Role.Valid() {
		return nil, fmt.Errorf("%w: role", common.ErrorValidation)
	}
	if len(password) < 8 {
		return nil, fmt.Errorf("%w: password", common.ErrorValidation)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, common.ErrorInternal
	}
	u.PasswordHash = hash

	var actorID *int64
	if actor != nil {
		actorID = &actor.ID
	}

	err = dbx.WithTx(ctx, s.pool, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repos.Users(tx)

		exists, err := repo.EmailExists(ctx, u.Email)
		if err != nil {
			return err
		}
		if exists {
			return common.ErrorDuplicateEmail
		}

		if _, err := repo.Create(ctx, u); err != nil {
			return err
		}

		return s.repos.Audit(tx).Record(ctx, actorID, "user.create", "user", fmt.Sprint(u.ID), nil)
	})
	if err != nil {
		return nil, err
	}

	s.sendWelcome(ctx, u)

	return u, nil
}

func (s *UserService) sendWelcome(ctx context.Context, u *models.User) {
	if u.Phone == "" {
		return
	}

	bg := context.WithoutCancel(ctx)
	go func() {
		msg := fmt.Sprintf("Welcome %s! Your team account (%s) has been created.", u.FirstName, u.Email)
		if err := s.notifier.Send(bg, u.Phone, msg); err != nil {
			s.logger.Warn(bg, "welcome notification failed", "user_id", u.ID, "error", err.Error())
		}
	}()
}

func (s *UserService) Get(ctx context.Context, id int64) (*models.User, error) {
	return s.repos.Users(s.pool).GetByID(ctx, id)
}

func (s *UserService) List(ctx context.Context, f models.UserFilter) ([]*models.User, int64, error) {
	if f.Limit <= 0 {
		f.Limit = 50
	}
	return s.repos.Users(s.pool).List(ctx, f)
}

// UpdateRequest is the service-level patch; Password, when set, is re-hashed
// before it reaches the repository.
type UpdateRequest struct {
	FirstName *string      `json:"firstName"`
	LastName  *string      `json:"lastName"`
	Phone     *string      `json:"phone"`
	District  *string      `json:"district"`
	Taluka    *string      `json:"taluka"`
	Role      *models.Role `json:"role"`
	IsActive  *bool        `json:"isActive"`
	Password  *string      `json:"password"`
}

func (s *UserService) Update(ctx context.Context, id int64, req UpdateRequest, actor *models.User) error {

	patch := models.UserPatch{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
		District:  req.District,
		Taluka:    req.Taluka,
		Role:      req.Role,
		IsActive:  req.IsActive,
	}

	if req.Role != nil && !req.Role.Valid() {
		return fmt.Errorf("%w: role", common.ErrorValidation)
	}

	if req.Password != nil {
		if len(*req.Password) < 8 {
			return fmt.Errorf("%w: password", common.ErrorValidation)
		}
		hash, err := auth.HashPassword(*req.Password)
		if err != nil {
			return common.ErrorInternal
		}
		patch.PasswordHash = &hash
	}

	var actorID *int64
	if actor != nil {
		actorID = &actor.ID
	}

	return dbx.WithTx(ctx, s.pool, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repos.Users(tx).Update(ctx, id, patch); err != nil {
			return err
		}
		return s.repos.Audit(tx).Record(ctx, actorID, "user.update", "user", fmt.Sprint(id), nil)
	})
}

// Deactivate soft-deletes the account. Already-issued tokens keep verifying
// but the middleware's row re-fetch locks the user out on their next request.
func (s *UserService) Deactivate(ctx context.Context, id int64, actor *models.User) error {

	var actorID *int64
	if actor != nil {
		actorID = &actor.ID
	}

	return dbx.WithTx(ctx, s.pool, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repos.Users(tx).Deactivate(ctx, id); err != nil {
			return err
		}
		return s.repos.Audit(tx).Record(ctx, actorID, "user.deactivate", "user", fmt.Sprint(id), nil)
	})
}

func (s *UserService) Stats(ctx context.Context) (*models.UserStats, error) {
	return s.repos.Users(s.pool).Stats(ctx)
}

// Package users is the only code path permitted to read or write the users
// table. Deactivation is a soft delete: the row stays, login and role checks
// reject it.
package users

import (
	"context"

	"github.com/svalekar/voterreg/internal/server/models"
)

type Repository interface {
	// Create inserts a new user. Email uniqueness violations surface as
	// ErrorDuplicateEmail when the caller pre-checks with EmailExists in the
	// same transaction.
	Create(ctx context.Context, u *models.User) (*models.User, error)

	EmailExists(ctx context.Context, email string) (bool, error)

	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByPhone(ctx context.Context, phone string) (*models.User, error)

	// List returns a page plus the total count under the same filter.
	List(ctx context.Context, f models.UserFilter) ([]*models.User, int64, error)

	// Update applies only the non-nil patch fields. ErrorNoFieldsToUpdate on
	// an empty patch, ErrorNotFound when the id does not exist.
	Update(ctx context.Context, id int64, p models.UserPatch) error

	// Deactivate sets is_active = false, keeping the row.
	Deactivate(ctx context.Context, id int64) error

	// UpdateLastLogin stamps last_login; called only after successful
	// authentication.
	UpdateLastLogin(ctx context.Context, id int64) error

	Stats(ctx context.Context) (*models.UserStats, error)
}

package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/svalekar/voterreg/internal/common"
	"github.com/svalekar/voterreg/internal/dbx"
	"github.com/svalekar/voterreg/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const userColumns = `id, email, password_hash, first_name, last_name, phone, district, taluka,
		role, is_active, created_at, updated_at, last_login`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*models.User, error) {
	u := &models.User{}
	err := row.Scan(
		&u.ID, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName, &u.Phone, &u.District, &u.Taluka,
		&u.Role, &u.IsActive, &u.CreatedAt, &u.UpdatedAt, &u.LastLogin,
	)
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (r *PostgresRepository) Create(ctx context.Context, u *models.User) (*models.User, error) {

	query :=
		`INSERT INTO users (email, password_hash, first_name, last_name, phone, district, taluka, role, is_active)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING id, created_at, updated_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		u.Email, u.PasswordHash, u.FirstName, u.LastName, u.Phone, u.District, u.Taluka, u.Role, u.IsActive,
	).Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return u, nil
}

func (r *PostgresRepository) EmailExists(ctx context.Context, email string) (bool, error) {

	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)`, email).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}

	return exists, nil
}

func (r *PostgresRepository) getBy(ctx context.Context, clause string, arg any) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE ` + clause

	u, err := scanUser(r.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return u, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	return r.getBy(ctx, `id = $1`, id)
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getBy(ctx, `email = $1`, email)
}

func (r *PostgresRepository) GetByPhone(ctx context.Context, phone string) (*models.User, error) {
	return r.getBy(ctx, `phone = $1`, phone)
}

func buildFilter(f models.UserFilter) (string, []any) {
	clauses := []string{"TRUE"}
	args := []any{}

	if f.Role != nil {
		args = append(args, *f.Role)
		clauses = append(clauses, fmt.Sprintf("role = $%d", len(args)))
	}
	if f.District != nil {
		args = append(args, *f.District)
		clauses = append(clauses, fmt.Sprintf("district = $%d", len(args)))
	}
	if f.Taluka != nil {
		args = append(args, *f.Taluka)
		clauses = append(clauses, fmt.Sprintf("taluka = $%d", len(args)))
	}
	if f.Active != nil {
		args = append(args, *f.Active)
		clauses = append(clauses, fmt.Sprintf("is_active = $%d", len(args)))
	}
	if f.Search != nil {
		args = append(args, "%"+*f.Search+"%")
		n := len(args)
		clauses = append(clauses, fmt.Sprintf(
			"(first_name ILIKE $%d OR last_name ILIKE $%d OR email ILIKE $%d OR phone ILIKE $%d)", n, n, n, n))
	}

	return strings.Join(clauses, " AND "), args
}

func (r *PostgresRepository) List(ctx context.Context, f models.UserFilter) ([]*models.User, int64, error) {

	where, args := buildFilter(f)

	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("db error: %w", err)
	}

	pageQuery := fmt.Sprintf(`SELECT %s FROM users WHERE %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		userColumns, where, len(args)+1, len(args)+2)
	args = append(args, f.Limit, f.Offset)

	rows, err := r.db.QueryContext(ctx, pageQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := []*models.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("db error: %w", err)
		}
		result = append(result, u)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("db error: %w", err)
	}

	return result, total, nil
}

// Update emits a SET list from only the non-nil patch fields; parameter
// numbering is deterministic in struct field order.
func (r *PostgresRepository) Update(ctx context.Context, id int64, p models.UserPatch) error {

	if p.Empty() {
		return common.ErrorNoFieldsToUpdate
	}

	sets := []string{}
	args := []any{id}

	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if p.FirstName != nil {
		add("first_name", *p.FirstName)
	}
	if p.LastName != nil {
		add("last_name", *p.LastName)
	}
	if p.Phone != nil {
		add("phone", *p.Phone)
	}
	if p.District != nil {
		add("district", *p.District)
	}
	if p.Taluka != nil {
		add("taluka", *p.Taluka)
	}
	if p.Role != nil {
		add("role", *p.Role)
	}
	if p.IsActive != nil {
		add("is_active", *p.IsActive)
	}
	if p.PasswordHash != nil {
		add("password_hash", *p.PasswordHash)
	}

	query := fmt.Sprintf(`UPDATE users SET %s, updated_at = now() WHERE id = $1`, strings.Join(sets, ", "))

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}

	return nil
}

func (r *PostgresRepository) Deactivate(ctx context.Context, id int64) error {

	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET is_active = FALSE, updated_at = now() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}

	return nil
}

func (r *PostgresRepository) UpdateLastLogin(ctx context.Context, id int64) error {

	if _, err := r.db.ExecContext(ctx,
		`UPDATE users SET last_login = now() WHERE id = $1`, id); err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

func (r *PostgresRepository) Stats(ctx context.Context) (*models.UserStats, error) {

	st := &models.UserStats{}

	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COUNT(*) FILTER (WHERE is_active) FROM users`).Scan(&st.Total, &st.Active)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	roleRows, err := r.db.QueryContext(ctx,
		`SELECT role, COUNT(*) FROM users GROUP BY role ORDER BY role`)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer roleRows.Close()
	for roleRows.Next() {
		rc := models.RoleCount{}
		if err := roleRows.Scan(&rc.Role, &rc.Count); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		st.ByRole = append(st.ByRole, rc)
	}
	if err := roleRows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	distRows, err := r.db.QueryContext(ctx,
		`SELECT district, COUNT(*) FROM users WHERE district <> '' GROUP BY district ORDER BY COUNT(*) DESC LIMIT 10`)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer distRows.Close()
	for distRows.Next() {
		dc := models.DistrictCount{}
		if err := distRows.Scan(&dc.District, &dc.Count); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		st.ByDistrict = append(st.ByDistrict, dc)
	}
	if err := distRows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return st, nil
}

package submissions

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

// submissionColumns is the canonical column list shared by every SELECT.
const submissionColumns = `id, surname, first_name, fathers_name, sex, qualification, occupation,
		date_of_birth, age_years, age_months,
		district, taluka, village, house_no, street, pin_code,
		mobile_number, email, aadhaar_number,
		year_of_passing, degree_name, university_name, diploma_name, education_type, document_type,
		name_changed, previous_name, name_change_doc_type,
		files, status, filled_by_user_id, form_source,
		submitted_at, updated_at, approved_by, approved_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSubmission(row rowScanner) (*models.Submission, error) {
	s := &models.Submission{}
	err := row.Scan(
		&s.ID, &s.Surname, &s.FirstName, &s.FathersName, &s.Sex, &s.Qualification, &s.Occupation,
		&s.DateOfBirth, &s.AgeYears, &s.AgeMonths,
		&s.District, &s.Taluka, &s.Village, &s.HouseNo, &s.Street, &s.PinCode,
		&s.MobileNumber, &s.Email, &s.AadhaarNumber,
		&s.YearOfPassing, &s.DegreeName, &s.UniversityName, &s.DiplomaName, &s.EducationType, &s.DocumentType,
		&s.NameChanged, &s.PreviousName, &s.NameChangeDocType,
		&s.Files, &s.Status, &s.FilledByUserID, &s.FormSource,
		&s.SubmittedAt, &s.UpdatedAt, &s.ApprovedBy, &s.ApprovedAt,
	)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (r *PostgresRepository) Insert(ctx context.Context, s *models.Submission) error {

	query :=
		`INSERT INTO submissions (
			id, surname, first_name, fathers_name, sex, qualification, occupation,
			date_of_birth, age_years, age_months,
			district, taluka, village, house_no, street, pin_code,
			mobile_number, email, aadhaar_number,
			year_of_passing, degree_name, university_name, diploma_name, education_type, document_type,
			name_changed, previous_name, name_change_doc_type,
			files, status, filled_by_user_id, form_source)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10,
			$11, $12, $13, $14, $15, $16, $17, $18, $19, $20,
			$21, $22, $23, $24, $25, $26, $27, $28, $29, $30, $31, $32)
		 RETURNING submitted_at, updated_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		s.ID, s.Surname, s.FirstName, s.FathersName, s.Sex, s.Qualification, s.Occupation,
		s.DateOfBirth, s.AgeYears, s.AgeMonths,
		s.District, s.Taluka, s.Village, s.HouseNo, s.Street, s.PinCode,
		s.MobileNumber, s.Email, s.AadhaarNumber,
		s.YearOfPassing, s.DegreeName, s.UniversityName, s.DiplomaName, s.EducationType, s.DocumentType,
		s.NameChanged, s.PreviousName, s.NameChangeDocType,
		s.Files, s.Status, s.FilledByUserID, s.FormSource,
	).Scan(&s.SubmittedAt, &s.UpdatedAt)

	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

func (r *PostgresRepository) InsertAttachments(ctx context.Context, submissionID string, files models.FileMap) error {

	query :=
		`INSERT INTO file_attachments (submission_id, field_name, filename, original_name, size, mime_type, uploaded_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 `

	for field, meta := range files {
		if _, err := r.db.ExecContext(ctx, query,
			submissionID, field, meta.Filename, meta.OriginalName, meta.Size, meta.MimeType, meta.UploadedAt); err != nil {
			return fmt.Errorf("db error: %w", err)
		}
	}

	return nil
}

func (r *PostgresRepository) CheckDuplicates(ctx context.Context, mobile, aadhaar string) (bool, bool, error) {

	query :=
		`SELECT
			EXISTS (SELECT 1 FROM submissions WHERE mobile_number = $1 AND status <> 'deleted'),
			EXISTS (SELECT 1 FROM submissions WHERE aadhaar_number = $2 AND status <> 'deleted')
		 `

	var mobileTaken, aadhaarTaken bool
	err := r.db.QueryRowContext(ctx, query, mobile, aadhaar).Scan(&mobileTaken, &aadhaarTaken)
	if err != nil {
		return false, false, fmt.Errorf("db error: %w", err)
	}

	return mobileTaken, aadhaarTaken, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string, forUpdate bool) (*models.Submission, error) {

	query := `SELECT ` + submissionColumns + ` FROM submissions WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	s, err := scanSubmission(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return s, nil
}

// buildFilter assembles the WHERE clause from the supplied optional fields.
// Soft-deleted rows are always excluded.
func buildFilter(f models.SubmissionFilter) (string, []any) {
	clauses := []string{"status <> 'deleted'"}
	args := []any{}

	if f.Status != nil {
		args = append(args, *f.Status)
		clauses = append(clauses, fmt.Sprintf("status = $%d", len(args)))
	}
	if f.District != nil {
		args = append(args, *f.District)
		clauses = append(clauses, fmt.Sprintf("district = $%d", len(args)))
	}
	if f.Taluka != nil {
		args = append(args, *f.Taluka)
		clauses = append(clauses, fmt.Sprintf("taluka = $%d", len(args)))
	}

	return strings.Join(clauses, " AND "), args
}

func (r *PostgresRepository) List(ctx context.Context, f models.SubmissionFilter) ([]*models.Submission, int64, error) {

	where, args := buildFilter(f)

	var total int64
	countQuery := `SELECT COUNT(*) FROM submissions WHERE ` + where
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("db error: %w", err)
	}

	pageQuery := fmt.Sprintf(`SELECT %s FROM submissions WHERE %s ORDER BY submitted_at DESC LIMIT $%d OFFSET $%d`,
		submissionColumns, where, len(args)+1, len(args)+2)
	args = append(args, f.Limit, f.Offset)

	rows, err := r.db.QueryContext(ctx, pageQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := []*models.Submission{}
	for rows.Next() {
		s, err := scanSubmission(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("db error: %w", err)
		}
		result = append(result, s)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("db error: %w", err)
	}

	return result, total, nil
}

func (r *PostgresRepository) SetStatus(ctx context.Context, id string, status models.SubmissionStatus, actorID *int64) error {

	query :=
		`UPDATE submissions
		 SET status = $2,
		     updated_at = now(),
		     approved_by = CASE WHEN $2 = 'approved' THEN $3 ELSE approved_by END,
		     approved_at = CASE WHEN $2 = 'approved' THEN now() ELSE approved_at END
		 WHERE id = $1
		 `

	res, err := r.db.ExecContext(ctx, query, id, status, actorID)
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

func (r *PostgresRepository) SoftDelete(ctx context.Context, id string) error {

	query :=
		`UPDATE submissions SET status = 'deleted', updated_at = now()
		 WHERE id = $1 AND status <> 'deleted'
		 `

	res, err := r.db.ExecContext(ctx, query, id)
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

func (r *PostgresRepository) HardDelete(ctx context.Context, id string) error {

	res, err := r.db.ExecContext(ctx, `DELETE FROM submissions WHERE id = $1`, id)
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

func (r *PostgresRepository) Search(ctx context.Context, text string) ([]*models.Submission, error) {

	query := `SELECT ` + submissionColumns + `
		 FROM submissions
		 WHERE search_vector @@ plainto_tsquery('simple', $1) AND status <> 'deleted'
		 ORDER BY submitted_at DESC
		 LIMIT 20`

	rows, err := r.db.QueryContext(ctx, query, text)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := []*models.Submission{}
	for rows.Next() {
		s, err := scanSubmission(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

func (r *PostgresRepository) Statistics(ctx context.Context) (*models.SubmissionStats, error) {

	query :=
		`SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE status = 'pending'),
			COUNT(*) FILTER (WHERE status = 'approved'),
			COUNT(*) FILTER (WHERE status = 'rejected'),
			COUNT(*) FILTER (WHERE submitted_at >= date_trunc('day', now())),
			COUNT(*) FILTER (WHERE submitted_at >= now() - interval '7 days'),
			COUNT(*) FILTER (WHERE submitted_at >= now() - interval '30 days')
		 FROM submissions
		 WHERE status <> 'deleted'
		 `

	st := &models.SubmissionStats{}
	err := r.db.QueryRowContext(ctx, query).Scan(
		&st.Total, &st.Pending, &st.Approved, &st.Rejected, &st.Today, &st.Week, &st.Month)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return st, nil
}

func (r *PostgresRepository) SaveStatistics(ctx context.Context, st *models.SubmissionStats) error {

	query :=
		`INSERT INTO statistics (name, value, computed_at)
		 VALUES ($1, $2, now())
		 ON CONFLICT (name) DO UPDATE SET value = EXCLUDED.value, computed_at = now()
		 `

	counters := []struct {
		name  string
		value int64
	}{
		{"submissions_total", st.Total},
		{"submissions_pending", st.Pending},
		{"submissions_approved", st.Approved},
		{"submissions_rejected", st.Rejected},
		{"submissions_today", st.Today},
		{"submissions_week", st.Week},
		{"submissions_month", st.Month},
	}

	for _, c := range counters {
		if _, err := r.db.ExecContext(ctx, query, c.name, c.value); err != nil {
			return fmt.Errorf("db error: %w", err)
		}
	}

	return nil
}

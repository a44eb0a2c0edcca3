// Package submissions is the only code path permitted to read or write the
// submissions table. List, Search, and Statistics exclude soft-deleted rows
// by construction; GetByID and HardDelete are the only methods that see them.
package submissions

import (
	"context"

	"github.com/svalekar/voterreg/internal/server/models"
)

type Repository interface {
	// Insert writes one new row. Uniqueness of mobile/aadhaar among live rows
	// is enforced by partial unique indexes; callers run CheckDuplicates in
	// the same transaction first to map conflicts to a domain error.
	Insert(ctx context.Context, s *models.Submission) error

	// InsertAttachments mirrors the files map into file_attachments rows.
	InsertAttachments(ctx context.Context, submissionID string, files models.FileMap) error

	// CheckDuplicates reports whether mobile or aadhaar is already used by a
	// live submission. Advisory outside a transaction; authoritative inside
	// the Insert transaction.
	CheckDuplicates(ctx context.Context, mobile, aadhaar string) (mobileTaken, aadhaarTaken bool, err error)

	// GetByID returns the row regardless of status. forUpdate takes a row
	// lock for use inside a surrounding transaction.
	GetByID(ctx context.Context, id string, forUpdate bool) (*models.Submission, error)

	// List returns a page ordered by submitted_at descending plus the total
	// count under the same filter.
	List(ctx context.Context, f models.SubmissionFilter) ([]*models.Submission, int64, error)

	// SetStatus writes the status and, for approvals, stamps approved_by and
	// approved_at. Returns ErrorNotFound when the id does not exist.
	SetStatus(ctx context.Context, id string, status models.SubmissionStatus, actorID *int64) error

	// SoftDelete marks a live row deleted; ErrorNotFound if no live row.
	SoftDelete(ctx context.Context, id string) error

	// HardDelete removes the row irreversibly. Administrative cleanup only.
	HardDelete(ctx context.Context, id string) error

	// Search runs a full-text query over name/mobile/aadhaar, newest first,
	// at most 20 rows.
	Search(ctx context.Context, text string) ([]*models.Submission, error)

	// Statistics aggregates live rows: per-status totals and today/week/month
	// submission counts.
	Statistics(ctx context.Context) (*models.SubmissionStats, error)

	// SaveStatistics upserts the aggregate into the statistics snapshot table.
	SaveStatistics(ctx context.Context, st *models.SubmissionStats) error
}

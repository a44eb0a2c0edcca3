// Package services contains the server-side business logic: submission
// lifecycle, team user administration, and authentication. Services own
// transaction boundaries; repositories only run statements.
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/svalekar/voterreg/internal/common"
	"github.com/svalekar/voterreg/internal/dbx"
	"github.com/svalekar/voterreg/internal/logging"
	"github.com/svalekar/voterreg/internal/server/db"
	"github.com/svalekar/voterreg/internal/server/models"
	"github.com/svalekar/voterreg/internal/server/notify"
	"github.com/svalekar/voterreg/internal/server/storage"
)

// SubmissionService implements the registration lifecycle over the
// submissions DAL. The confirmation message is sent only after the insert
// transaction commits, and its failure never unwinds the write.
type SubmissionService struct {
	pool     *db.Pool
	repos    db.RepositoryManager
	store    *storage.DocumentStore
	notifier notify.Notifier
	logger   logging.Logger
}

func NewSubmissionService(pool *db.Pool, repos db.RepositoryManager, store *storage.DocumentStore, notifier notify.Notifier, logger logging.Logger) *SubmissionService {
	return &SubmissionService{
		pool:     pool,
		repos:    repos,
		store:    store,
		notifier: notifier,
		logger:   logger.With("component", "submissions"),
	}
}

// NewSubmissionID returns an opaque token of the form SUB_<unix-ms>_<random>.
func NewSubmissionID() string {
	random, _ := common.MakeRandHexString(4)
	return fmt.Sprintf("SUB_%d_%s", time.Now().UnixMilli(), random)
}

// Create validates and inserts one submission. The duplicate check and the
// insert share a transaction, so a conflicting concurrent create serializes
// on the partial unique indexes; either zero or one row is written.
func (s *SubmissionService) Create(ctx context.Context, sub *models.Submission) (*models.Submission, error) {

	if err := sub.Validate(); err != nil {
		return nil, err
	}

	sub.ID = NewSubmissionID()
	sub.Status = models.StatusPending

	err := dbx.WithTx(ctx, s.pool, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repos.Submissions(tx)

		mobileTaken, aadhaarTaken, err := repo.CheckDuplicates(ctx, sub.MobileNumber, sub.AadhaarNumber)
		if err != nil {
			return err
		}
		if mobileTaken || aadhaarTaken {
			return common.ErrorDuplicateSubmission
		}

		if err := repo.Insert(ctx, sub); err != nil {
			return err
		}
		if len(sub.Files) > 0 {
			if err := repo.InsertAttachments(ctx, sub.ID, sub.Files); err != nil {
				return err
			}
		}

		return s.repos.Audit(tx).Record(ctx, sub.FilledByUserID, "submission.create", "submission", sub.ID, nil)
	})
	if err != nil {
		return nil, err
	}

	s.sendConfirmation(ctx, sub)

	return sub, nil
}

// sendConfirmation fires the post-commit confirmation message. Detached from
// the request context so client disconnects do not cancel it.
func (s *SubmissionService) sendConfirmation(ctx context.Context, sub *models.Submission) {
	if sub.MobileNumber == "" {
		return
	}

	bg := context.WithoutCancel(ctx)
	go func() {
		msg := fmt.Sprintf("Namaste %s %s, your registration %s has been received and is pending review.",
			sub.FirstName, sub.Surname, sub.ID)
		if err := s.notifier.Send(bg, sub.MobileNumber, msg); err != nil {
			s.logger.Warn(bg, "confirmation notification failed", "id", sub.ID, "error", err.Error())
		}
	}()
}

func (s *SubmissionService) Get(ctx context.Context, id string) (*models.Submission, error) {
	return s.repos.Submissions(s.pool).GetByID(ctx, id, false)
}

func (s *SubmissionService) List(ctx context.Context, f models.SubmissionFilter) ([]*models.Submission, int64, error) {
	if f.Limit <= 0 {
		f.Limit = 50
	}
	return s.repos.Submissions(s.pool).List(ctx, f)
}

// UpdateStatus moves one submission between pending/approved/rejected under
// a row lock, so concurrent updates serialize rather than lose writes.
func (s *SubmissionService) UpdateStatus(ctx context.Context, id string, status models.SubmissionStatus, actor *models.User) error {

	if !status.Settable() {
		return fmt.Errorf("%w: status", common.ErrorValidation)
	}

	var actorID *int64
	if actor != nil {
		actorID = &actor.ID
	}

	return dbx.WithTx(ctx, s.pool, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repos.Submissions(tx)

		if _, err := repo.GetByID(ctx, id, true); err != nil {
			return err
		}
		if err := repo.SetStatus(ctx, id, status, actorID); err != nil {
			return err
		}

		detail, _ := json.Marshal(map[string]string{"status": string(status)})
		return s.repos.Audit(tx).Record(ctx, actorID, "submission.status", "submission", id, detail)
	})
}

// BulkUpdateStatus applies UpdateStatus semantics per id inside one
// transaction, collecting ids that do not resolve instead of failing the
// whole batch. Database errors still abort everything.
func (s *SubmissionService) BulkUpdateStatus(ctx context.Context, ids []string, status models.SubmissionStatus, actor *models.User) (*models.BulkStatusResult, error) {

	if !status.Settable() {
		return nil, fmt.Errorf("%w: status", common.ErrorValidation)
	}

	var actorID *int64
	if actor != nil {
		actorID = &actor.ID
	}

	result := &models.BulkStatusResult{Failed: []string{}}

	err := dbx.WithTx(ctx, s.pool, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repos.Submissions(tx)

		for _, id := range ids {
			if _, err := repo.GetByID(ctx, id, true); err != nil {
				if errors.Is(err, common.ErrorNotFound) {
					result.Failed = append(result.Failed, id)
					continue
				}
				return err
			}
			if err := repo.SetStatus(ctx, id, status, actorID); err != nil {
				if errors.Is(err, common.ErrorNotFound) {
					result.Failed = append(result.Failed, id)
					continue
				}
				return err
			}
			result.Updated++
		}

		detail, _ := json.Marshal(map[string]any{"status": status, "updated": result.Updated, "failed": result.Failed})
		return s.repos.Audit(tx).Record(ctx, actorID, "submission.bulk_status", "submission", "", detail)
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// Delete soft-deletes: the row stays, disappears from listings, and frees
// its mobile/aadhaar numbers for re-registration.
func (s *SubmissionService) Delete(ctx context.Context, id string, actor *models.User) error {

	var actorID *int64
	if actor != nil {
		actorID = &actor.ID
	}

	return dbx.WithTx(ctx, s.pool, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repos.Submissions(tx).SoftDelete(ctx, id); err != nil {
			return err
		}
		return s.repos.Audit(tx).Record(ctx, actorID, "submission.delete", "submission", id, nil)
	})
}

// HardDelete removes the row for good. Administrative cleanup only.
func (s *SubmissionService) HardDelete(ctx context.Context, id string, actor *models.User) error {

	var actorID *int64
	if actor != nil {
		actorID = &actor.ID
	}

	return dbx.WithTx(ctx, s.pool, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repos.Submissions(tx).HardDelete(ctx, id); err != nil {
			return err
		}
		return s.repos.Audit(tx).Record(ctx, actorID, "submission.hard_delete", "submission", id, nil)
	})
}

func (s *SubmissionService) Search(ctx context.Context, text string) ([]*models.Submission, error) {
	return s.repos.Submissions(s.pool).Search(ctx, text)
}

func (s *SubmissionService) Statistics(ctx context.Context) (*models.SubmissionStats, error) {
	return s.repos.Submissions(s.pool).Statistics(ctx)
}

// RefreshStatistics recomputes the aggregate and persists it into the
// statistics snapshot table for dashboards that read precomputed values.
func (s *SubmissionService) RefreshStatistics(ctx context.Context) (*models.SubmissionStats, error) {
	repo := s.repos.Submissions(s.pool)

	st, err := repo.Statistics(ctx)
	if err != nil {
		return nil, err
	}
	if err := repo.SaveStatistics(ctx, st); err != nil {
		return nil, err
	}

	return st, nil
}

// CheckDuplicates is the advisory pre-check clients may call before a full
// create. The create transaction remains the authoritative guard.
func (s *SubmissionService) CheckDuplicates(ctx context.Context, mobile, aadhaar string) (bool, bool, error) {
	return s.repos.Submissions(s.pool).CheckDuplicates(ctx, mobile, aadhaar)
}

// PresignUpload returns an object key and a URL the client PUTs document
// bytes to before submitting the form.
func (s *SubmissionService) PresignUpload(ctx context.Context) (string, string, error) {
	return s.store.PresignPut(ctx)
}

// PresignDownload returns a temporary URL for a stored document.
func (s *SubmissionService) PresignDownload(ctx context.Context, key string) (string, error) {
	return s.store.PresignGet(ctx, key)
}

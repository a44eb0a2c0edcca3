package httpapi

import (
	"context"
	"io"
	"log/slog"

	"github.com/svalekar/voterreg/internal/logging"
	"github.com/svalekar/voterreg/internal/server/models"
	"github.com/svalekar/voterreg/internal/server/services"
)

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// stubVerifier resolves any token to the configured user, or fails with err.
type stubVerifier struct {
	user *models.User
	err  error
}

func (v *stubVerifier) VerifyToken(context.Context, string) (*models.User, error) {
	return v.user, v.err
}

type stubSubmissionService struct {
	created *models.Submission
	sub     *models.Submission
	listed  []*models.Submission
	total   int64
	filter  models.SubmissionFilter
	bulk    *models.BulkStatusResult
	bulkIDs []string
	stats   *models.SubmissionStats
	err     error

	statusID  string
	newStatus models.SubmissionStatus
	actor     *models.User
}

func (s *stubSubmissionService) Create(_ context.Context, sub *models.Submission) (*models.Submission, error) {
	if s.err != nil {
		return nil, s.err
	}
	sub.ID = "SUB_1700000000000_abcd1234"
	sub.Status = models.StatusPending
	s.created = sub
	return sub, nil
}

func (s *stubSubmissionService) Get(context.Context, string) (*models.Submission, error) {
	return s.sub, s.err
}

func (s *stubSubmissionService) List(_ context.Context, f models.SubmissionFilter) ([]*models.Submission, int64, error) {
	s.filter = f
	return s.listed, s.total, s.err
}

func (s *stubSubmissionService) UpdateStatus(_ context.Context, id string, status models.SubmissionStatus, actor *models.User) error {
	s.statusID, s.newStatus, s.actor = id, status, actor
	return s.err
}

func (s *stubSubmissionService) BulkUpdateStatus(_ context.Context, ids []string, status models.SubmissionStatus, actor *models.User) (*models.BulkStatusResult, error) {
	s.bulkIDs, s.newStatus, s.actor = ids, status, actor
	return s.bulk, s.err
}

func (s *stubSubmissionService) Delete(_ context.Context, id string, actor *models.User) error {
	s.statusID, s.actor = id, actor
	return s.err
}

func (s *stubSubmissionService) HardDelete(_ context.Context, id string, actor *models.User) error {
	s.statusID, s.actor = id, actor
	return s.err
}

func (s *stubSubmissionService) Search(context.Context, string) ([]*models.Submission, error) {
	return s.listed, s.err
}

func (s *stubSubmissionService) Statistics(context.Context) (*models.SubmissionStats, error) {
	return s.stats, s.err
}

func (s *stubSubmissionService) RefreshStatistics(context.Context) (*models.SubmissionStats, error) {
	return s.stats, s.err
}

func (s *stubSubmissionService) CheckDuplicates(context.Context, string, string) (bool, bool, error) {
	return true, false, s.err
}

func (s *stubSubmissionService) PresignUpload(context.Context) (string, string, error) {
	return "attachments/key", "https://bucket/put", s.err
}

func (s *stubSubmissionService) PresignDownload(context.Context, string) (string, error) {
	return "https://bucket/get", s.err
}

type stubUserService struct {
	created    *models.User
	password   string
	actor      *models.User
	user       *models.User
	filter     models.UserFilter
	updateID   int64
	update     services.UpdateRequest
	deactiveID int64
	stats      *models.UserStats
	err        error
}

func (s *stubUserService) Create(_ context.Context, u *models.User, password string, actor *models.User) (*models.User, error) {
	if s.err != nil {
		return nil, s.err
	}
	u.ID = 101
	s.created, s.password, s.actor = u, password, actor
	return u, nil
}

func (s *stubUserService) Get(context.Context, int64) (*models.User, error) {
	return s.user, s.err
}

func (s *stubUserService) List(_ context.Context, f models.UserFilter) ([]*models.User, int64, error) {
	s.filter = f
	return []*models.User{}, 0, s.err
}

func (s *stubUserService) Update(_ context.Context, id int64, req services.UpdateRequest, actor *models.User) error {
	s.updateID, s.update, s.actor = id, req, actor
	return s.err
}

func (s *stubUserService) Deactivate(_ context.Context, id int64, actor *models.User) error {
	s.deactiveID, s.actor = id, actor
	return s.err
}

func (s *stubUserService) Stats(context.Context) (*models.UserStats, error) {
	return s.stats, s.err
}

type stubAuthService struct {
	token string
	user  *models.User
	err   error

	login     string
	password  string
	loginType string
}

func (s *stubAuthService) Authenticate(_ context.Context, login, password, loginType string) (string, *models.User, error) {
	s.login, s.password, s.loginType = login, password, loginType
	if s.err != nil {
		return "", nil, s.err
	}
	return s.token, s.user, nil
}

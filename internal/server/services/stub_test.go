package services

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/svalekar/voterreg/internal/common"
	"github.com/svalekar/voterreg/internal/dbx"
	"github.com/svalekar/voterreg/internal/logging"
	"github.com/svalekar/voterreg/internal/server/db"
	"github.com/svalekar/voterreg/internal/server/models"
	"github.com/svalekar/voterreg/internal/server/repositories/audit"
	"github.com/svalekar/voterreg/internal/server/repositories/submissions"
	"github.com/svalekar/voterreg/internal/server/repositories/users"
)

// newMockPool returns a pool over a sqlmock connection. Repositories are
// stubbed in these tests, so the mock only sees transaction control.
func newMockPool(t *testing.T) (*db.Pool, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { sqlDB.Close() })
	return db.NewPoolWithDB(sqlDB), mock
}

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

type stubRepoManager struct {
	submissions *stubSubmissionsRepo
	users       *stubUsersRepo
	audit       *stubAuditRepo
}

func newStubRepoManager() *stubRepoManager {
	return &stubRepoManager{
		submissions: &stubSubmissionsRepo{rows: map[string]*models.Submission{}},
		users:       &stubUsersRepo{},
		audit:       &stubAuditRepo{},
	}
}

func (m *stubRepoManager) Submissions(dbx.DBTX) submissions.Repository { return m.submissions }
func (m *stubRepoManager) Users(dbx.DBTX) users.Repository            { return m.users }
func (m *stubRepoManager) Audit(dbx.DBTX) audit.Repository            { return m.audit }

type stubSubmissionsRepo struct {
	rows map[string]*models.Submission

	mobileTaken  bool
	aadhaarTaken bool
	stats        *models.SubmissionStats

	insertCalls     int
	attachmentCalls int
	savedStats      *models.SubmissionStats
	lastFilter      models.SubmissionFilter
	statusWrites    map[string]models.SubmissionStatus
}

func (r *stubSubmissionsRepo) Insert(_ context.Context, s *models.Submission) error {
	r.insertCalls++
	r.rows[s.ID] = s
	return nil
}

func (r *stubSubmissionsRepo) InsertAttachments(context.Context, string, models.FileMap) error {
	r.attachmentCalls++
	return nil
}

func (r *stubSubmissionsRepo) CheckDuplicates(context.Context, string, string) (bool, bool, error) {
	return r.mobileTaken, r.aadhaarTaken, nil
}

func (r *stubSubmissionsRepo) GetByID(_ context.Context, id string, _ bool) (*models.Submission, error) {
	s, ok := r.rows[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return s, nil
}

func (r *stubSubmissionsRepo) List(_ context.Context, f models.SubmissionFilter) ([]*models.Submission, int64, error) {
	r.lastFilter = f
	return []*models.Submission{}, 0, nil
}

func (r *stubSubmissionsRepo) SetStatus(_ context.Context, id string, status models.SubmissionStatus, _ *int64) error {
	if _, ok := r.rows[id]; !ok {
		return common.ErrorNotFound
	}
	if r.statusWrites == nil {
		r.statusWrites = map[string]models.SubmissionStatus{}
	}
	r.statusWrites[id] = status
	return nil
}

func (r *stubSubmissionsRepo) SoftDelete(_ context.Context, id string) error {
	if _, ok := r.rows[id]; !ok {
		return common.ErrorNotFound
	}
	r.rows[id].Status = models.StatusDeleted
	return nil
}

func (r *stubSubmissionsRepo) HardDelete(_ context.Context, id string) error {
	if _, ok := r.rows[id]; !ok {
		return common.ErrorNotFound
	}
	delete(r.rows, id)
	return nil
}

func (r *stubSubmissionsRepo) Search(context.Context, string) ([]*models.Submission, error) {
	return []*models.Submission{}, nil
}

func (r *stubSubmissionsRepo) Statistics(context.Context) (*models.SubmissionStats, error) {
	return r.stats, nil
}

func (r *stubSubmissionsRepo) SaveStatistics(_ context.Context, st *models.SubmissionStats) error {
	r.savedStats = st
	return nil
}

type stubUsersRepo struct {
	byEmail map[string]*models.User
	byPhone map[string]*models.User
	byID    map[int64]*models.User

	emailExists bool

	created    *models.User
	lastPatch  models.UserPatch
	lastLogins chan int64
	lastFilter models.UserFilter
}

func (r *stubUsersRepo) Create(_ context.Context, u *models.User) (*models.User, error) {
	u.ID = 101
	r.created = u
	return u, nil
}

func (r *stubUsersRepo) EmailExists(context.Context, string) (bool, error) {
	return r.emailExists, nil
}

func (r *stubUsersRepo) GetByID(_ context.Context, id int64) (*models.User, error) {
	u, ok := r.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return u, nil
}

func (r *stubUsersRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	u, ok := r.byEmail[email]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return u, nil
}

func (r *stubUsersRepo) GetByPhone(_ context.Context, phone string) (*models.User, error) {
	u, ok := r.byPhone[phone]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return u, nil
}

func (r *stubUsersRepo) List(_ context.Context, f models.UserFilter) ([]*models.User, int64, error) {
	r.lastFilter = f
	return []*models.User{}, 0, nil
}

func (r *stubUsersRepo) Update(_ context.Context, id int64, p models.UserPatch) error {
	r.lastPatch = p
	return nil
}

func (r *stubUsersRepo) Deactivate(context.Context, int64) error { return nil }

func (r *stubUsersRepo) UpdateLastLogin(_ context.Context, id int64) error {
	if r.lastLogins != nil {
		r.lastLogins <- id
	}
	return nil
}

func (r *stubUsersRepo) Stats(context.Context) (*models.UserStats, error) {
	return &models.UserStats{}, nil
}

type auditRecord struct {
	action   string
	entityID string
	detail   json.RawMessage
}

type stubAuditRepo struct {
	records []auditRecord
}

func (r *stubAuditRepo) Record(_ context.Context, _ *int64, action, _, entityID string, detail json.RawMessage) error {
	r.records = append(r.records, auditRecord{action: action, entityID: entityID, detail: detail})
	return nil
}

func (r *stubAuditRepo) actions() []string {
	out := make([]string, 0, len(r.records))
	for _, rec := range r.records {
		out = append(out, rec.action)
	}
	return out
}

// stubNotifier delivers sends on a channel so tests can wait for the
// post-commit goroutine.
type stubNotifier struct {
	sent chan string
}

func newStubNotifier() *stubNotifier {
	return &stubNotifier{sent: make(chan string, 1)}
}

func (n *stubNotifier) Send(_ context.Context, _, message string) error {
	n.sent <- message
	return nil
}

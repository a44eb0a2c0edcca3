package httpapi

import (
	"context"
	"encoding/json"
	"mime"
	"net/http"
	"strconv"
	"time"

	"github.com/svalekar/voterreg/internal/logging"
	"github.com/svalekar/voterreg/internal/server/models"
)

// maxFormMemory bounds in-memory multipart parsing; document bytes go to
// object storage through presigned URLs, never through this server.
const maxFormMemory = 4 << 20

type submissionService interface {
	Create(ctx context.Context, sub *models.Submission) (*models.Submission, error)
	Get(ctx context.Context, id string) (*models.Submission, error)
	List(ctx context.Context, f models.SubmissionFilter) ([]*models.Submission, int64, error)
	UpdateStatus(ctx context.Context, id string, status models.SubmissionStatus, actor *models.User) error
	BulkUpdateStatus(ctx context.Context, ids []string, status models.SubmissionStatus, actor *models.User) (*models.BulkStatusResult, error)
	Delete(ctx context.Context, id string, actor *models.User) error
	HardDelete(ctx context.Context, id string, actor *models.User) error
	Search(ctx context.Context, text string) ([]*models.Submission, error)
	Statistics(ctx context.Context) (*models.SubmissionStats, error)
	RefreshStatistics(ctx context.Context) (*models.SubmissionStats, error)
	CheckDuplicates(ctx context.Context, mobile, aadhaar string) (bool, bool, error)
	PresignUpload(ctx context.Context) (string, string, error)
	PresignDownload(ctx context.Context, key string) (string, error)
}

type SubmissionHandler struct {
	svc    submissionService
	logger logging.Logger
}

func NewSubmissionHandler(svc submissionService, logger logging.Logger) *SubmissionHandler {
	return &SubmissionHandler{svc: svc, logger: logger}
}

// uploadedFile is the client-side record of a document already PUT to object
// storage through a presigned URL.
type uploadedFile struct {
	Key          string `json:"key"`
	OriginalName string `json:"originalName"`
	Size         int64  `json:"size"`
	MimeType     string `json:"mimeType"`
}

// SubmitForm handles POST /api/submit-form. The public form posts multipart
// with a "data" part (submission JSON) and a "files" part (JSON map of field
// name to uploadedFile); the team dashboard posts plain JSON.
func (h *SubmissionHandler) SubmitForm(w http.ResponseWriter, r *http.Request) {

	var sub models.Submission
	var files map[string]uploadedFile

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		if err := r.ParseMultipartForm(maxFormMemory); err != nil {
			ErrorResponse(w, http.StatusBadRequest, "invalid multipart form")
			return
		}
		if err := json.Unmarshal([]byte(r.FormValue("data")), &sub); err != nil {
			ErrorResponse(w, http.StatusBadRequest, "invalid submission data")
			return
		}
		if raw := r.FormValue("files"); raw != "" {
			if err := json.Unmarshal([]byte(raw), &files); err != nil {
				ErrorResponse(w, http.StatusBadRequest, "invalid files metadata")
				return
			}
		}
	} else {
		payload := struct {
			models.Submission
			Files map[string]uploadedFile `json:"files"`
		}{}
		if err := ParseJSONBody(r, &payload); err != nil {
			ErrorResponse(w, http.StatusBadRequest, "invalid JSON")
			return
		}
		sub = payload.Submission
		files = payload.Files
	}

	sub.Files = models.FileMap{}
	now := time.Now()
	for field, f := range files {
		sub.Files[field] = models.FileMeta{
			Filename:     f.Key,
			OriginalName: f.OriginalName,
			Size:         f.Size,
			MimeType:     f.MimeType,
			UploadedAt:   now,
		}
	}

	if user := UserFromContext(r.Context()); user != nil {
		sub.FilledByUserID = &user.ID
		sub.FormSource = "team"
	} else if sub.FormSource == "" {
		sub.FormSource = "public"
	}

	created, err := h.svc.Create(r.Context(), &sub)
	if err != nil {
		WriteError(w, err)
		return
	}

	h.logger.Info(r.Context(), "submission created", "id", created.ID, "source", created.FormSource)
	JSONResponse(w, http.StatusCreated, created)
}

// Get handles GET /api/submissions/{id}.
func (h *SubmissionHandler) Get(w http.ResponseWriter, r *http.Request) {
	sub, err := h.svc.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		WriteError(w, err)
		return
	}
	JSONResponse(w, http.StatusOK, sub)
}

// List handles GET /api/admin/submissions with optional status, district,
// taluka, limit, and offset query parameters.
func (h *SubmissionHandler) List(w http.ResponseWriter, r *http.Request) {

	q := r.URL.Query()
	f := models.SubmissionFilter{}

	if v := q.Get("status"); v != "" {
		status := models.SubmissionStatus(v)
		if !status.Settable() {
			ErrorResponse(w, http.StatusBadRequest, "invalid status filter")
			return
		}
		f.Status = &status
	}
	if v := q.Get("district"); v != "" {
		f.District = &v
	}
	if v := q.Get("taluka"); v != "" {
		f.Taluka = &v
	}
	f.Limit, _ = strconv.Atoi(q.Get("limit"))
	f.Offset, _ = strconv.Atoi(q.Get("offset"))

	subs, total, err := h.svc.List(r.Context(), f)
	if err != nil {
		WriteError(w, err)
		return
	}

	JSONResponse(w, http.StatusOK, map[string]any{
		"submissions": subs,
		"total":       total,
	})
}

// UpdateStatus handles PATCH /api/submissions/{id}/status.
func (h *SubmissionHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {

	var req struct {
		Status models.SubmissionStatus `json:"status"`
	}
	if err := ParseJSONBody(r, &req); err != nil {
		ErrorResponse(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	id := r.PathValue("id")
	actor := UserFromContext(r.Context())

	if err := h.svc.UpdateStatus(r.Context(), id, req.Status, actor); err != nil {
		WriteError(w, err)
		return
	}

	h.logger.Info(r.Context(), "submission status updated", "id", id, "status", req.Status)
	JSONResponse(w, http.StatusOK, map[string]any{"id": id, "status": req.Status})
}

// BulkUpdateStatus handles POST /api/submissions/bulk-status. Partial
// success is a 200 with the failed ids listed, not an error.
func (h *SubmissionHandler) BulkUpdateStatus(w http.ResponseWriter, r *http.Request) {

	var req struct {
		IDs    []string                `json:"ids"`
		Status models.SubmissionStatus `json:"status"`
	}
	if err := ParseJSONBody(r, &req); err != nil {
		ErrorResponse(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if len(req.IDs) == 0 {
		ErrorResponse(w, http.StatusBadRequest, "ids is required")
		return
	}

	result, err := h.svc.BulkUpdateStatus(r.Context(), req.IDs, req.Status, UserFromContext(r.Context()))
	if err != nil {
		WriteError(w, err)
		return
	}

	JSONResponse(w, http.StatusOK, result)
}

// Delete handles DELETE /api/submissions/{id} (soft delete).
func (h *SubmissionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.svc.Delete(r.Context(), id, UserFromContext(r.Context())); err != nil {
		WriteError(w, err)
		return
	}
	JSONResponse(w, http.StatusOK, map[string]string{"id": id, "status": string(models.StatusDeleted)})
}

// HardDelete handles DELETE /api/admin/submissions/{id}/hard.
func (h *SubmissionHandler) HardDelete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.svc.HardDelete(r.Context(), id, UserFromContext(r.Context())); err != nil {
		WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Search handles GET /api/submissions/search?q=.
func (h *SubmissionHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		ErrorResponse(w, http.StatusBadRequest, "q is required")
		return
	}

	subs, err := h.svc.Search(r.Context(), q)
	if err != nil {
		WriteError(w, err)
		return
	}
	JSONResponse(w, http.StatusOK, map[string]any{"submissions": subs})
}

// Stats handles GET /api/admin/submissions/stats.
func (h *SubmissionHandler) Stats(w http.ResponseWriter, r *http.Request) {
	st, err := h.svc.Statistics(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}
	JSONResponse(w, http.StatusOK, st)
}

// RefreshStats handles POST /api/admin/submissions/stats/refresh.
func (h *SubmissionHandler) RefreshStats(w http.ResponseWriter, r *http.Request) {
	st, err := h.svc.RefreshStatistics(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}
	JSONResponse(w, http.StatusOK, st)
}

// CheckDuplicates handles GET /api/submissions/check-duplicates. Advisory
// only; the create transaction is the authoritative uniqueness guard.
func (h *SubmissionHandler) CheckDuplicates(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	mobile, aadhaar := q.Get("mobile"), q.Get("aadhaar")
	if mobile == "" && aadhaar == "" {
		ErrorResponse(w, http.StatusBadRequest, "mobile or aadhaar is required")
		return
	}

	mobileTaken, aadhaarTaken, err := h.svc.CheckDuplicates(r.Context(), mobile, aadhaar)
	if err != nil {
		WriteError(w, err)
		return
	}

	JSONResponse(w, http.StatusOK, map[string]bool{
		"mobileTaken":  mobileTaken,
		"aadhaarTaken": aadhaarTaken,
	})
}

// PresignUpload handles GET /api/uploads/presign.
func (h *SubmissionHandler) PresignUpload(w http.ResponseWriter, r *http.Request) {
	key, url, err := h.svc.PresignUpload(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}
	JSONResponse(w, http.StatusOK, map[string]string{"key": key, "uploadUrl": url})
}

// PresignDownload handles GET /api/uploads/download?key=.
func (h *SubmissionHandler) PresignDownload(w http.ResponseWriter, r *http.Request) {
	key := r.URL.Query().Get("key")
	if key == "" {
		ErrorResponse(w, http.StatusBadRequest, "key is required")
		return
	}

	url, err := h.svc.PresignDownload(r.Context(), key)
	if err != nil {
		WriteError(w, err)
		return
	}
	JSONResponse(w, http.StatusOK, map[string]string{"downloadUrl": url})
}

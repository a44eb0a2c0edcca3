package httpapi

import (
	"net/http"

	"github.com/svalekar/voterreg/internal/logging"
	"github.com/svalekar/voterreg/internal/server/models"
)

// NewRouter wires every route behind its middleware stack. Role gates are
// hierarchical: admin passes supervisor gates, supervisor passes volunteer
// gates.
func NewRouter(verifier TokenVerifier, subH *SubmissionHandler, userH *UserHandler, authH *AuthHandler, healthH *HealthHandler, logger logging.Logger) http.Handler {

	mux := http.NewServeMux()

	public := func(h http.HandlerFunc) http.HandlerFunc {
		return WithLogging(logger, h)
	}
	gated := func(role models.Role, h http.HandlerFunc) http.HandlerFunc {
		return WithLogging(logger, RequireAuth(verifier, role, h))
	}

	// Public surface.
	mux.HandleFunc("POST /api/login", public(authH.Login))
	mux.HandleFunc("POST /api/submit-form", WithLogging(logger, OptionalAuth(verifier, subH.SubmitForm)))
	mux.HandleFunc("POST /api/team-signup", public(userH.TeamSignup))
	mux.HandleFunc("GET /api/submissions/check-duplicates", public(subH.CheckDuplicates))
	mux.HandleFunc("GET /api/healthz", public(healthH.Health))

	// Submission review.
	mux.HandleFunc("GET /api/submissions/search", gated(models.RoleSupervisor, subH.Search))
	mux.HandleFunc("GET /api/submissions/{id}", gated(models.RoleSupervisor, subH.Get))
	mux.HandleFunc("PATCH /api/submissions/{id}/status", gated(models.RoleSupervisor, subH.UpdateStatus))
	mux.HandleFunc("POST /api/submissions/bulk-status", gated(models.RoleSupervisor, subH.BulkUpdateStatus))
	mux.HandleFunc("DELETE /api/submissions/{id}", gated(models.RoleAdmin, subH.Delete))

	// Admin dashboards.
	mux.HandleFunc("GET /api/admin/submissions", gated(models.RoleSupervisor, subH.List))
	mux.HandleFunc("GET /api/admin/submissions/stats", gated(models.RoleSupervisor, subH.Stats))
	mux.HandleFunc("POST /api/admin/submissions/stats/refresh", gated(models.RoleAdmin, subH.RefreshStats))
	mux.HandleFunc("DELETE /api/admin/submissions/{id}/hard", gated(models.RoleAdmin, subH.HardDelete))

	// User administration. The /api/admin aliases serve the admin dashboard.
	mux.HandleFunc("GET /api/users", gated(models.RoleAdmin, userH.List))
	mux.HandleFunc("POST /api/users", gated(models.RoleAdmin, userH.Create))
	mux.HandleFunc("GET /api/users/stats", gated(models.RoleAdmin, userH.Stats))
	mux.HandleFunc("GET /api/users/{id}", gated(models.RoleAdmin, userH.Get))
	mux.HandleFunc("PATCH /api/users/{id}", gated(models.RoleAdmin, userH.Update))
	mux.HandleFunc("DELETE /api/users/{id}", gated(models.RoleAdmin, userH.Deactivate))
	mux.HandleFunc("GET /api/admin/users", gated(models.RoleAdmin, userH.List))
	mux.HandleFunc("GET /api/admin/users/stats", gated(models.RoleAdmin, userH.Stats))

	// Document storage.
	mux.HandleFunc("GET /api/uploads/presign", gated(models.RoleVolunteer, subH.PresignUpload))
	mux.HandleFunc("GET /api/uploads/download", gated(models.RoleSupervisor, subH.PresignDownload))

	return CORS(mux)
}

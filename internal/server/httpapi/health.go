package httpapi

import (
	"context"
	"net/http"

	"github.com/svalekar/voterreg/internal/server/db"
)

type healthChecker interface {
	HealthCheck(ctx context.Context) (*db.Health, error)
}

type HealthHandler struct {
	pool healthChecker
}

func NewHealthHandler(pool healthChecker) *HealthHandler {
	return &HealthHandler{pool: pool}
}

// Health handles GET /api/healthz: a trivial query plus pool saturation.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	health, err := h.pool.HealthCheck(r.Context())
	if err != nil {
		JSONResponse(w, http.StatusServiceUnavailable, map[string]any{"healthy": false})
		return
	}
	JSONResponse(w, http.StatusOK, health)
}

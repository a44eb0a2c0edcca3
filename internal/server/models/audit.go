package models

import (
	"encoding/json"
	"time"
)

// AuditEntry is one append-only audit trail row. ActorID is nil for actions
// taken by unauthenticated flows (public form submission).
type AuditEntry struct {
	ID        int64           `json:"id"`
	ActorID   *int64          `json:"actorId,omitempty"`
	Action    string          `json:"action"`
	Entity    string          `json:"entity"`
	EntityID  string          `json:"entityId"`
	Detail    json.RawMessage `json:"detail,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
}

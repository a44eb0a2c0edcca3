// Package audit appends rows to the audit_logs table. Entries are written
// inside the transaction of the action they describe.
package audit

import (
	"context"
	"encoding/json"
)

type Repository interface {
	Record(ctx context.Context, actorID *int64, action, entity, entityID string, detail json.RawMessage) error
}

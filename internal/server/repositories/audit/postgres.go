package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/svalekar/voterreg/internal/dbx"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Record(ctx context.Context, actorID *int64, action, entity, entityID string, detail json.RawMessage) error {

	if detail == nil {
		detail = json.RawMessage(`{}`)
	}

	query :=
		`INSERT INTO audit_logs (actor_id, action, entity, entity_id, detail)
		 VALUES ($1, $2, $3, $4, $5)
		 `

	if _, err := r.db.ExecContext(ctx, query, actorID, action, entity, entityID, detail); err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

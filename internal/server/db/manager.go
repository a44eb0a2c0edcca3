package db

import (
	"github.com/svalekar/voterreg/internal/dbx"
	"github.com/svalekar/voterreg/internal/server/repositories/audit"
	"github.com/svalekar/voterreg/internal/server/repositories/submissions"
	"github.com/svalekar/voterreg/internal/server/repositories/users"
)

// RepositoryManager hands out repositories bound to a particular handle.
// Passing the pool yields autocommit repositories; passing the dbx.DBTX from
// dbx.WithTx yields repositories that participate in that transaction.
type RepositoryManager interface {
	Submissions(db dbx.DBTX) submissions.Repository
	Users(db dbx.DBTX) users.Repository
	Audit(db dbx.DBTX) audit.Repository
}

type PostgresRepositoryManager struct{}

func NewPostgresRepositoryManager() *PostgresRepositoryManager {
	return &PostgresRepositoryManager{}
}

func (m *PostgresRepositoryManager) Submissions(db dbx.DBTX) submissions.Repository {
	return submissions.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Users(db dbx.DBTX) users.Repository {
	return users.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Audit(db dbx.DBTX) audit.Repository {
	return audit.NewPostgresRepository(db)
}

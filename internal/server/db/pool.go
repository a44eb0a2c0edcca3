// Package db owns the process-wide connection pool: static sizing from
// configuration, startup migrations, health reporting, and a single
// close-once shutdown path. All durable state flows through it.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"sync/atomic"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/svalekar/voterreg/internal/common"
	"github.com/svalekar/voterreg/internal/server/config"
	"github.com/svalekar/voterreg/internal/server/migrations"
)

// Pool wraps *sql.DB with the registration server's lifecycle rules:
// sizing is fixed at construction, Close is idempotent, and queries or
// transactions attempted after Close fail with common.ErrPoolClosed.
type Pool struct {
	db        *sql.DB
	closed    atomic.Bool
	closeOnce sync.Once
}

// Health is a point-in-time snapshot of pool saturation.
type Health struct {
	Healthy     bool    `json:"healthy"`
	OpenConns   int     `json:"openConns"`
	InUse       int     `json:"inUse"`
	Idle        int     `json:"idle"`
	Utilization float64 `json:"utilization"`
}

// NewPool opens the database and applies the configured static sizing.
// It does not ping; the startup migration run is the first real traffic.
func NewPool(cfg *config.Config) (*Pool, error) {
	sqlDB, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.DBMaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.DBMaxIdleConns)
	sqlDB.SetConnMaxIdleTime(cfg.DBConnMaxIdleTime)
	sqlDB.SetConnMaxLifetime(cfg.DBConnMaxLifetime)

	return &Pool{db: sqlDB}, nil
}

// NewPoolWithDB wraps an already-open handle. Used by tests and tools that
// manage the connection themselves.
func NewPoolWithDB(sqlDB *sql.DB) *Pool {
	return &Pool{db: sqlDB}
}

// DB exposes the underlying handle for repositories and dbx.WithTx.
func (p *Pool) DB() *sql.DB {
	return p.db
}

// BeginTx guards transaction starts behind the closed flag so that
// dbx.WithTx callers observe ErrPoolClosed after shutdown.
func (p *Pool) BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error) {
	if p.closed.Load() {
		return nil, common.ErrPoolClosed
	}
	return p.db.BeginTx(ctx, opts)
}

func (p *Pool) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	if p.closed.Load() {
		return nil, common.ErrPoolClosed
	}
	return p.db.ExecContext(ctx, query, args...)
}

func (p *Pool) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	if p.closed.Load() {
		return nil, common.ErrPoolClosed
	}
	return p.db.QueryContext(ctx, query, args...)
}

func (p *Pool) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	return p.db.QueryRowContext(ctx, query, args...)
}

// RunMigrations applies the embedded goose migrations.
func (p *Pool) RunMigrations(ctx context.Context) error {
	goose.SetBaseFS(migrations.Migrations)

	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}

	if err := goose.UpContext(ctx, p.db, "."); err != nil {
		return fmt.Errorf("migration error: %w", err)
	}

	return nil
}

// HealthCheck runs a trivial query and reports pool saturation
// (utilization = busy/total).
func (p *Pool) HealthCheck(ctx context.Context) (*Health, error) {
	if p.closed.Load() {
		return nil, common.ErrPoolClosed
	}

	h := &Health{}

	var one int
	if err := p.db.QueryRowContext(ctx, "SELECT 1").Scan(&one); err != nil {
		return h, fmt.Errorf("db error: %w", err)
	}
	h.Healthy = true

	stats := p.db.Stats()
	h.OpenConns = stats.OpenConnections
	h.InUse = stats.InUse
	h.Idle = stats.Idle
	if stats.MaxOpenConnections > 0 {
		h.Utilization = float64(stats.InUse) / float64(stats.MaxOpenConnections)
	}

	return h, nil
}

// Close drains and closes the pool exactly once.
func (p *Pool) Close() error {
	var err error
	p.closeOnce.Do(func() {
		p.closed.Store(true)
		err = p.db.Close()
	})
	return err
}

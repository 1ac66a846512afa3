package postgres

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/joaofns/authsessions/userdir"
	"github.com/joaofns/authsessions/userdir/postgres/migrations"
)

// seam for tests
var gooseUpContext = goose.UpContext

// Manager owns the database handle and exposes the directory plus its
// transactional unit of work.
type Manager struct {
	db *sql.DB
	*Repository
}

// Open connects to dsn through the pgx stdlib driver and returns a [Manager].
// Migrations are not run; call [Manager.RunMigrations] explicitly.
func Open(dsn string) (*Manager, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}
	return NewManager(db), nil
}

// NewManager wraps an existing database handle.
func NewManager(db *sql.DB) *Manager {
	return &Manager{
		db:         db,
		Repository: NewRepository(db),
	}
}

// Conn returns the underlying database handle.
func (m *Manager) Conn() *sql.DB { return m.db }

// Close releases the database handle.
func (m *Manager) Close() error { return m.db.Close() }

// RunMigrations sets up goose with the embedded migrations and runs them
// against the managed database.
func (m *Manager) RunMigrations(ctx context.Context) error {
	goose.SetBaseFS(migrations.FS)
	return gooseUpContext(ctx, m.db, ".")
}

// Do runs fn inside one transaction; fn sees a Directory bound to that
// transaction. Implements userdir.UnitOfWork.
func (m *Manager) Do(ctx context.Context, fn func(ctx context.Context, dir userdir.Directory) error) error {
	return withTx(ctx, m.db, func(ctx context.Context, tx DBTX) error {
		return fn(ctx, NewRepository(tx))
	})
}

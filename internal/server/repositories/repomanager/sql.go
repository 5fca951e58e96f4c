// Package repomanager provides a concrete RepositoryManager for the supported
// SQL drivers, wiring together repository constructors and database
// migrations (via goose).
package repomanager

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/scorekeeper/internal/dbx"
	"github.com/dmitrijs2005/scorekeeper/internal/logging"
	"github.com/dmitrijs2005/scorekeeper/internal/server/migrations"
	"github.com/dmitrijs2005/scorekeeper/internal/server/repositories/sessions"
	"github.com/dmitrijs2005/scorekeeper/internal/server/repositories/users"
	"github.com/pressly/goose/v3"
)

// SQLRepositoryManager vends SQL-backed repository implementations and
// exposes a schema migration hook.
type SQLRepositoryManager struct {
	dialect string
	logger  logging.Logger
}

// Users returns a users.Repository bound to the provided DBTX.
func (m *SQLRepositoryManager) Users(db dbx.DBTX) users.Repository {
	return users.NewSQLRepository(db)
}

// Sessions returns a sessions.Repository bound to the provided DBTX.
func (m *SQLRepositoryManager) Sessions(db dbx.DBTX) sessions.Repository {
	return sessions.NewSQLRepository(db)
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations sets up goose with the embedded migrations and runs them
// against the provided database connection.
func (m *SQLRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	goose.SetLogger(&gooseLogger{ctx: ctx, logger: m.logger})
	if err := goose.SetDialect(m.dialect); err != nil {
		return err
	}
	if err := gooseUpContext(ctx, db, "."); err != nil {
		return err
	}
	return nil
}

// NewSQLRepositoryManager constructs a RepositoryManager for a database/sql
// driver name as accepted by dbx.Open. Migration progress is reported
// through logger.
func NewSQLRepositoryManager(driver string, logger logging.Logger) (RepositoryManager, error) {
	logger = logger.With("module", "migrations")
	switch driver {
	case dbx.DriverPostgres:
		return &SQLRepositoryManager{dialect: "pgx", logger: logger}, nil
	case dbx.DriverSQLite:
		return &SQLRepositoryManager{dialect: "sqlite3", logger: logger}, nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
}

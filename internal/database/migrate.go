package database

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"

	"github.com/pressly/goose/v3"
	"go.uber.org/zap"
)

// Migrator applies the embedded goose migrations for one dialect.
type Migrator struct {
	db      *sql.DB
	dialect string
	fsys    fs.FS
	log     *zap.SugaredLogger
}

// NewMigrator returns a Migrator reading "<dialect>/*.sql" from fsys.
func NewMigrator(db *sql.DB, driver string, fsys fs.FS, log *zap.SugaredLogger) *Migrator {
	return &Migrator{
		db:      db,
		dialect: Dialect(driver),
		fsys:    fsys,
		log:     log.Named("migrator"),
	}
}

// Migration commands accepted by Run.
const (
	MigrateUp     = "up"
	MigrateDown   = "down"
	MigrateStatus = "status"
)

// Run dispatches one of the Migrate* commands.
func (m *Migrator) Run(ctx context.Context, cmd string) error {
	switch cmd {
	case MigrateUp:
		return m.Up(ctx)
	case MigrateDown:
		return m.Down(ctx)
	case MigrateStatus:
		return m.Status(ctx)
	default:
		return fmt.Errorf("unknown migrate command %q (want up, down, or status)", cmd)
	}
}

// Up runs all pending migrations.
func (m *Migrator) Up(ctx context.Context) error {
	m.log.Infow("running database migrations", "dialect", m.dialect)

	if err := m.prepare(); err != nil {
		return err
	}
	if err := goose.UpContext(ctx, m.db, m.dialect); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	m.log.Infow("migrations completed successfully")
	return nil
}

// Down rolls back the last migration.
func (m *Migrator) Down(ctx context.Context) error {
	m.log.Infow("rolling back last migration", "dialect", m.dialect)

	if err := m.prepare(); err != nil {
		return err
	}
	if err := goose.DownContext(ctx, m.db, m.dialect); err != nil {
		return fmt.Errorf("failed to roll back migration: %w", err)
	}
	return nil
}

// Status logs the applied/pending state of every migration.
func (m *Migrator) Status(ctx context.Context) error {
	if err := m.prepare(); err != nil {
		return err
	}
	return goose.StatusContext(ctx, m.db, m.dialect)
}

// prepare points goose's package-level state at this migrator.
func (m *Migrator) prepare() error {
	goose.SetBaseFS(m.fsys)
	goose.SetLogger(gooseLogger{m.log})
	if err := goose.SetDialect(m.dialect); err != nil {
		return fmt.Errorf("failed to set dialect: %w", err)
	}
	return nil
}

// gooseLogger adapts a sugared zap logger to goose.Logger.
type gooseLogger struct{ l *zap.SugaredLogger }

func (g gooseLogger) Printf(format string, v ...any) { g.l.Infof(format, v...) }
func (g gooseLogger) Fatalf(format string, v ...any) { g.l.Fatalf(format, v...) }

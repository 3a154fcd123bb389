// Package database applies the embedded schema migrations.
package database

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"regexp"
	"sort"
	"strings"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"

	"github.com/bibujohny/rentalAI/internal/utils"
)

//go:embed migrations/*.up.sql
var embedded embed.FS

// Conn is the part of *pgxpool.Pool the migrator uses.
type Conn interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Migration is one versioned schema change.
type Migration struct {
	Version string
	SQL     string
}

// MigrationStatus pairs a migration version with whether it ran.
type MigrationStatus struct {
	Version string
	Applied bool
}

var versionPattern = regexp.MustCompile(`^[0-9]{4}_[a-z0-9_]+$`)

const createMigrationsTable = `
CREATE TABLE IF NOT EXISTS schema_migrations (
    version    TEXT PRIMARY KEY,
    applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

type Migrator struct {
	conn       Conn
	migrations []Migration
}

// NewMigrator uses the migrations compiled into the binary.
func NewMigrator(conn Conn) (*Migrator, error) {
	sub, err := fs.Sub(embedded, "migrations")
	if err != nil {
		return nil, err
	}
	return NewMigratorFS(conn, sub)
}

// NewMigratorFS loads every *.up.sql file at the root of fsys, ordered by
// file name.
func NewMigratorFS(conn Conn, fsys fs.FS) (*Migrator, error) {
	names, err := fs.Glob(fsys, "*.up.sql")
	if err != nil {
		return nil, err
	}
	sort.Strings(names)

	migrations := make([]Migration, 0, len(names))
	for _, name := range names {
		version := strings.TrimSuffix(name, ".up.sql")
		if !versionPattern.MatchString(version) {
			return nil, fmt.Errorf("migration %q: name must look like 0001_description.up.sql", name)
		}
		body, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, fmt.Errorf("read migration %s: %w", name, err)
		}
		if strings.TrimSpace(string(body)) == "" {
			return nil, fmt.Errorf("migration %s is empty", name)
		}
		migrations = append(migrations, Migration{Version: version, SQL: string(body)})
	}
	return &Migrator{conn: conn, migrations: migrations}, nil
}

func (m *Migrator) Migrations() []Migration {
	return m.migrations
}

// Up applies every pending migration and returns the versions it applied.
// Each migration and its bookkeeping row commit together, so a second run
// applies nothing.
func (m *Migrator) Up(ctx context.Context) ([]string, error) {
	if _, err := m.conn.Exec(ctx, createMigrationsTable); err != nil {
		return nil, fmt.Errorf("ensure schema_migrations: %w", err)
	}

	var applied []string
	for _, mig := range m.migrations {
		done, err := m.isApplied(ctx, mig.Version)
		if err != nil {
			return applied, err
		}
		if done {
			utils.Logger.Debugf("Migration %s already applied", mig.Version)
			continue
		}

		// No bind arguments: pgx sends this over the simple protocol, which
		// runs the statements as one implicit transaction block.
		script := fmt.Sprintf(
			"BEGIN;\n%s\n;INSERT INTO schema_migrations (version) VALUES ('%s');\nCOMMIT;",
			mig.SQL, mig.Version,
		)
		if _, err := m.conn.Exec(ctx, script); err != nil {
			return applied, fmt.Errorf("apply migration %s: %w", mig.Version, err)
		}
		utils.Logger.Infof("Applied migration %s", mig.Version)
		applied = append(applied, mig.Version)
	}
	return applied, nil
}

// Status reports which migrations have run.
func (m *Migrator) Status(ctx context.Context) ([]MigrationStatus, error) {
	if _, err := m.conn.Exec(ctx, createMigrationsTable); err != nil {
		return nil, fmt.Errorf("ensure schema_migrations: %w", err)
	}
	out := make([]MigrationStatus, 0, len(m.migrations))
	for _, mig := range m.migrations {
		done, err := m.isApplied(ctx, mig.Version)
		if err != nil {
			return nil, err
		}
		out = append(out, MigrationStatus{Version: mig.Version, Applied: done})
	}
	return out, nil
}

func (m *Migrator) isApplied(ctx context.Context, version string) (bool, error) {
	var exists bool
	err := m.conn.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM schema_migrations WHERE version = $1)`, version,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check migration %s: %w", version, err)
	}
	return exists, nil
}

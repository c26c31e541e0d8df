package migrations

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/yigit/ssis/internal/pkg/logger"
)

//go:embed sql/*.sql
var files embed.FS

// FS holds the schema migrations shipped with the binary
var FS fs.FS = mustSub(files, "sql")

func mustSub(fsys fs.FS, dir string) fs.FS {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		panic(err)
	}
	return sub
}

// Migrator manages database migrations
type Migrator struct {
	db *sql.DB
	sb squirrel.StatementBuilderType
}

// NewMigrator creates a new migrator. Postgres uses $n placeholders, sqlite uses ?.
func NewMigrator(db *sql.DB, postgres bool) *Migrator {
	format := squirrel.PlaceholderFormat(squirrel.Question)
	if postgres {
		format = squirrel.Dollar
	}
	return &Migrator{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(format),
	}
}

// ensureMigrationTableExists creates the migration tracking table if it doesn't exist
func (m *Migrator) ensureMigrationTableExists(ctx context.Context) error {
	createTableSQL := `
	CREATE TABLE IF NOT EXISTS schema_migrations (
		version VARCHAR(255) PRIMARY KEY,
		applied_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`

	if _, err := m.db.ExecContext(ctx, createTableSQL); err != nil {
		return fmt.Errorf("failed to create migration tracking table: %w", err)
	}
	return nil
}

// isMigrationApplied checks if a specific migration has already been applied
func (m *Migrator) isMigrationApplied(ctx context.Context, version string) (bool, error) {
	query, args, err := m.sb.Select("1").
		From("schema_migrations").
		Where(squirrel.Eq{"version": version}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build migration status query: %w", err)
	}

	var found int
	err = m.db.QueryRowContext(ctx, query, args...).Scan(&found)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check migration status: %w", err)
	}
	return true, nil
}

// Applied returns the versions recorded in schema_migrations in ascending order
func (m *Migrator) Applied(ctx context.Context) ([]string, error) {
	if err := m.ensureMigrationTableExists(ctx); err != nil {
		return nil, err
	}

	query, args, err := m.sb.Select("version").From("schema_migrations").OrderBy("version ASC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build applied migrations query: %w", err)
	}

	rows, err := m.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list applied migrations: %w", err)
	}
	defer rows.Close()

	var versions []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("failed to scan migration version: %w", err)
		}
		versions = append(versions, v)
	}
	return versions, rows.Err()
}

// Migrate applies every pending migration from FS
func (m *Migrator) Migrate(ctx context.Context) (int, error) {
	return m.MigrateFromFS(ctx, FS)
}

// MigrateFromFS applies the .sql files at the root of fsys in name order.
// Each file runs in its own transaction and is recorded by its numeric prefix.
func (m *Migrator) MigrateFromFS(ctx context.Context, fsys fs.FS) (int, error) {
	if err := m.ensureMigrationTableExists(ctx); err != nil {
		return 0, err
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return 0, fmt.Errorf("failed to read migration directory: %w", err)
	}

	var sqlFiles []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".sql") {
			sqlFiles = append(sqlFiles, entry.Name())
		}
	}
	sort.Strings(sqlFiles)

	applied := 0
	for _, name := range sqlFiles {
		ok, err := m.migrateFile(ctx, fsys, name)
		if err != nil {
			return applied, err
		}
		if ok {
			applied++
		}
	}
	return applied, nil
}

func (m *Migrator) migrateFile(ctx context.Context, fsys fs.FS, name string) (bool, error) {
	// "001_init.sql" => "001"
	version := strings.SplitN(path.Base(name), "_", 2)[0]

	done, err := m.isMigrationApplied(ctx, version)
	if err != nil {
		return false, err
	}
	if done {
		logger.Debug().Str("migration", name).Msg("Migration already applied, skipping")
		return false, nil
	}

	content, err := fs.ReadFile(fsys, name)
	if err != nil {
		return false, fmt.Errorf("failed to read migration file %s: %w", name, err)
	}

	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	for _, stmt := range SplitStatements(string(content)) {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return false, fmt.Errorf("error occurred during SQL migration %s: %w", name, err)
		}
	}

	insertSQL, args, err := m.sb.Insert("schema_migrations").Columns("version").Values(version).ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build migration record: %w", err)
	}
	if _, err := tx.ExecContext(ctx, insertSQL, args...); err != nil {
		return false, fmt.Errorf("failed to record migration: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit transaction: %w", err)
	}

	logger.Info().Str("migration", name).Msg("Migration file successfully applied")
	return true, nil
}

// SplitStatements splits a migration script on semicolons, dropping empty statements.
// Migration files must not contain semicolons inside literals.
func SplitStatements(script string) []string {
	var out []string
	for _, part := range strings.Split(script, ";") {
		if s := strings.TrimSpace(part); s != "" {
			out = append(out, s)
		}
	}
	return out
}

package db

import (
	"context"
	"crypto/sha256"
	"embed"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	embeddedmigrations "github.com/solatis/fieldfilter/migrations"
)

// MigrationStatus represents the state of a single migration.
type MigrationStatus struct {
	ID          string
	Checksum    string
	Applied     bool
	AppliedAt   *time.Time
	ExecutionMs int64
}

// migration represents a parsed migration file
type migration struct {
	ID       string
	Checksum string
	SQL      string
}

// migrationSource selects the embedded migration set for a driver.
func migrationSource(driver string) (embed.FS, string, error) {
	switch driver {
	case "sqlite3":
		return embeddedmigrations.SqliteMigrations, "sqlite", nil
	case "postgres":
		return embeddedmigrations.PostgresMigrations, "postgres", nil
	default:
		return embed.FS{}, "", fmt.Errorf("unsupported database driver: %s", driver)
	}
}

// loadMigrations ensures the tracking table exists and parses embedded files.
func loadMigrations(ctx context.Context, db *sqlx.DB) ([]migration, error) {
	fsys, dir, err := migrationSource(db.DriverName())
	if err != nil {
		return nil, err
	}
	if err := createMigrationsTable(ctx, db); err != nil {
		return nil, fmt.Errorf("failed to create migrations table: %w", err)
	}
	migrations, err := parseMigrationFiles(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to parse migrations: %w", err)
	}
	return migrations, nil
}

// MigrateUp applies pending migrations in filename order.
// Checksums of applied migrations are verified first; an edited migration
// aborts the run. Returns the IDs applied by this call.
func MigrateUp(ctx context.Context, db *sqlx.DB) ([]string, error) {
	migrations, err := loadMigrations(ctx, db)
	if err != nil {
		return nil, err
	}

	if err := validateChecksums(ctx, db, migrations); err != nil {
		return nil, fmt.Errorf("migration checksum validation failed: %w", err)
	}

	applied, err := getAppliedMigrations(ctx, db)
	if err != nil {
		return nil, fmt.Errorf("failed to query applied migrations: %w", err)
	}

	var ran []string
	for _, m := range migrations {
		if applied[m.ID] {
			continue
		}

		start := time.Now()

		// Migration and its record commit together
		tx, err := db.BeginTxx(ctx, nil)
		if err != nil {
			return ran, fmt.Errorf("failed to begin transaction for migration %s: %w", m.ID, err)
		}

		if err := applyMigration(ctx, tx, m); err != nil {
			tx.Rollback()
			return ran, fmt.Errorf("failed to apply migration %s: %w", m.ID, err)
		}

		if err := recordMigration(ctx, tx, m.ID, m.Checksum, time.Since(start)); err != nil {
			tx.Rollback()
			return ran, fmt.Errorf("failed to record migration %s: %w", m.ID, err)
		}

		if err := tx.Commit(); err != nil {
			return ran, fmt.Errorf("failed to commit migration %s: %w", m.ID, err)
		}
		ran = append(ran, m.ID)
	}

	return ran, nil
}

// MigrateStatus returns the status of all migrations (applied and pending).
func MigrateStatus(ctx context.Context, db *sqlx.DB) ([]MigrationStatus, error) {
	migrations, err := loadMigrations(ctx, db)
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryxContext(ctx, "SELECT migration_id, checksum, applied_at, execution_ms FROM migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to query migrations: %w", err)
	}
	defer rows.Close()

	applied := make(map[string]MigrationStatus)
	for rows.Next() {
		var status MigrationStatus
		var appliedAt time.Time
		if err := rows.Scan(&status.ID, &status.Checksum, &appliedAt, &status.ExecutionMs); err != nil {
			return nil, err
		}
		status.AppliedAt = &appliedAt
		status.Applied = true
		applied[status.ID] = status
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	statuses := make([]MigrationStatus, 0, len(migrations))
	for _, m := range migrations {
		if s, ok := applied[m.ID]; ok {
			statuses = append(statuses, s)
			continue
		}
		statuses = append(statuses, MigrationStatus{ID: m.ID, Checksum: m.Checksum})
	}

	return statuses, nil
}

// parseMigrationFiles extracts an ordered list of migrations from fsys.
func parseMigrationFiles(fsys fs.FS, dir string) ([]migration, error) {
	var migrations []migration

	err := fs.WalkDir(fsys, dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".sql") {
			return nil
		}

		content, err := fs.ReadFile(fsys, path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}

		migrations = append(migrations, migration{
			ID:       filepath.Base(path),
			Checksum: fmt.Sprintf("%x", sha256.Sum256(content)),
			SQL:      string(content),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].ID < migrations[j].ID
	})

	return migrations, nil
}

// createMigrationsTable ensures the tracking table exists.
// Schema must match the migrations table in 001_initial_schema.sql.
func createMigrationsTable(ctx context.Context, db *sqlx.DB) error {
	createSQL := `
		CREATE TABLE IF NOT EXISTS migrations (
			migration_id TEXT PRIMARY KEY,
			checksum TEXT NOT NULL,
			applied_at TIMESTAMP NOT NULL,
			execution_ms INTEGER NOT NULL
		)
	`
	if db.DriverName() == "postgres" {
		createSQL = strings.Replace(createSQL, "TIMESTAMP", "TIMESTAMP WITHOUT TIME ZONE", 1)
	}

	_, err := db.ExecContext(ctx, createSQL)
	return err
}

// getAppliedMigrations returns the set of applied migration IDs.
func getAppliedMigrations(ctx context.Context, db *sqlx.DB) (map[string]bool, error) {
	var ids []string
	if err := db.SelectContext(ctx, &ids, "SELECT migration_id FROM migrations"); err != nil {
		return nil, err
	}

	applied := make(map[string]bool, len(ids))
	for _, id := range ids {
		applied[id] = true
	}
	return applied, nil
}

// validateChecksums verifies all applied migrations match embedded checksums.
func validateChecksums(ctx context.Context, db *sqlx.DB, migrations []migration) error {
	var recorded []struct {
		ID       string `db:"migration_id"`
		Checksum string `db:"checksum"`
	}
	if err := db.SelectContext(ctx, &recorded, "SELECT migration_id, checksum FROM migrations"); err != nil {
		return err
	}

	expected := make(map[string]string, len(migrations))
	for _, m := range migrations {
		expected[m.ID] = m.Checksum
	}

	for _, r := range recorded {
		checksum, ok := expected[r.ID]
		if !ok {
			return fmt.Errorf("migration %s exists in database but not in embedded files", r.ID)
		}
		if r.Checksum != checksum {
			return fmt.Errorf("checksum mismatch for migration %s: expected %s, got %s", r.ID, checksum, r.Checksum)
		}
	}

	return nil
}

// splitStatements breaks a migration into executable statements.
// lib/pq rejects multiple statements per Exec, so each runs separately.
// Full-line comments are dropped before splitting.
func splitStatements(sql string) []string {
	var b strings.Builder
	for _, line := range strings.Split(sql, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "--") {
			continue
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}

	var statements []string
	for _, stmt := range strings.Split(b.String(), ";") {
		if stmt = strings.TrimSpace(stmt); stmt != "" {
			statements = append(statements, stmt)
		}
	}
	return statements
}

// applyMigration executes a single migration within tx.
func applyMigration(ctx context.Context, tx *sqlx.Tx, m migration) error {
	for _, stmt := range splitStatements(m.SQL) {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("statement failed: %w", err)
		}
	}
	return nil
}

// recordMigration stores migration metadata within tx.
func recordMigration(ctx context.Context, tx *sqlx.Tx, id, checksum string, duration time.Duration) error {
	_, err := tx.ExecContext(ctx,
		tx.Rebind("INSERT INTO migrations (migration_id, checksum, applied_at, execution_ms) VALUES (?, ?, ?, ?)"),
		id, checksum, time.Now().UTC(), duration.Milliseconds(),
	)
	return err
}

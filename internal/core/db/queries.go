package db

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/qustavo/dotsql"
)

//go:embed queries/*.sql
var queriesFS embed.FS

// Queries provides access to named SQL queries loaded from embedded .sql files.
// Uses dotsql for named query management and sqlx for execution. The same
// Queries value runs against the pool or, via WithTx, inside a transaction.
type Queries struct {
	dot *dotsql.DotSql
	ext sqlx.ExtContext
}

// LoadQueries loads all .sql files from the embedded filesystem.
// Named queries are addressed by their "-- name:" tag (e.g. "get-dataset").
func LoadQueries(db *sqlx.DB) (*Queries, error) {
	var combined strings.Builder

	err := fs.WalkDir(queriesFS, "queries", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || filepath.Ext(path) != ".sql" {
			return nil
		}

		content, err := queriesFS.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}

		combined.Write(content)
		combined.WriteString("\n")
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load query files: %w", err)
	}

	dot, err := dotsql.LoadFromString(combined.String())
	if err != nil {
		return nil, fmt.Errorf("failed to parse queries: %w", err)
	}

	return &Queries{dot: dot, ext: db}, nil
}

// WithTx returns a Queries that runs inside tx.
func (q *Queries) WithTx(tx *sqlx.Tx) *Queries {
	return &Queries{dot: q.dot, ext: tx}
}

// query resolves name and rebinds ? placeholders for the active driver.
func (q *Queries) query(name string) (string, error) {
	raw, err := q.dot.Raw(name)
	if err != nil {
		return "", fmt.Errorf("query not found: %s", name)
	}
	return q.ext.Rebind(raw), nil
}

// Exec executes a named statement.
func (q *Queries) Exec(ctx context.Context, name string, args ...any) (sql.Result, error) {
	query, err := q.query(name)
	if err != nil {
		return nil, err
	}
	return q.ext.ExecContext(ctx, query, args...)
}

// Get scans a single row into dest.
func (q *Queries) Get(ctx context.Context, name string, dest any, args ...any) error {
	query, err := q.query(name)
	if err != nil {
		return err
	}
	return sqlx.GetContext(ctx, q.ext, dest, query, args...)
}

// Select scans all rows into the dest slice.
func (q *Queries) Select(ctx context.Context, name string, dest any, args ...any) error {
	query, err := q.query(name)
	if err != nil {
		return err
	}
	return sqlx.SelectContext(ctx, q.ext, dest, query, args...)
}

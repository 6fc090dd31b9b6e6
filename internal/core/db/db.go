// Package db provides the dataset store: connection management, embedded
// migrations and named queries.
//
// Supports SQLite (development, tests) and PostgreSQL (production) via sqlx.
// Schema changes ship as embedded SQL files applied by MigrateUp.
package db

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// Pool limits sized for a read-mostly query service
const (
	maxOpenConns    = 16
	maxIdleConns    = 4
	connMaxIdleTime = 5 * time.Minute
	connMaxLifetime = 30 * time.Minute
	pingTimeout     = 5 * time.Second
)

// driverFor maps a URL to its sqlx driver name and data source.
// sqlite://file.db is relative (host+path); sqlite:///abs/path is absolute.
func driverFor(dbURL string) (driverName, dataSource string, err error) {
	u, err := url.Parse(dbURL)
	if err != nil {
		return "", "", fmt.Errorf("invalid database URL: %w", err)
	}

	switch u.Scheme {
	case "sqlite":
		path := u.Path
		if u.Host != "" {
			path = u.Host + u.Path
		}
		if path == "" {
			return "", "", fmt.Errorf("sqlite URL has no path: %s", dbURL)
		}
		// foreign keys are off by default in SQLite; records cascade on dataset delete
		return "sqlite3", path + "?_foreign_keys=on", nil
	case "postgres", "postgresql":
		return "postgres", dbURL, nil
	default:
		return "", "", fmt.Errorf("unsupported database scheme: %s (expected sqlite or postgres)", u.Scheme)
	}
}

// Open establishes a database connection from a URL and configures pooling.
// Supported URL schemes: sqlite://, postgres://
func Open(ctx context.Context, dbURL string) (*sqlx.DB, error) {
	driverName, dataSource, err := driverFor(dbURL)
	if err != nil {
		return nil, err
	}

	db, err := sqlx.Open(driverName, dataSource)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(maxIdleConns)
	db.SetConnMaxIdleTime(connMaxIdleTime)
	db.SetConnMaxLifetime(connMaxLifetime)

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

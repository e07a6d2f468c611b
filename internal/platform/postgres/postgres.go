// Package postgres opens database/sql pools over the pgx stdlib driver.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// DB wraps a sql.DB with a health probe for the health endpoint.
type DB struct {
	*sql.DB
}

// Open connects a pool and verifies connectivity. Returns nil when the URL
// is empty (backend not configured).
func Open(ctx context.Context, url string) (*DB, error) {
	if url == "" {
		return nil, nil
	}

	db, err := sql.Open("pgx", url)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres ping failed: %w", err)
	}
	return &DB{DB: db}, nil
}

// Health checks connectivity.
func (d *DB) Health(ctx context.Context) error {
	return d.PingContext(ctx)
}

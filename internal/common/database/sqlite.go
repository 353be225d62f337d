// internal/common/database/sqlite.go
package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"legal-rag-workers/internal/common/config"

	_ "modernc.org/sqlite"
)

// SQLiteClient holds the citation graph database
type SQLiteClient struct {
	DB *sql.DB
}

// NewSQLite opens the graph file, creating its directory if needed. ":memory:" is accepted.
func NewSQLite(cfg config.GraphConfig) (*SQLiteClient, error) {
	dsn := cfg.Path
	if dsn != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dsn), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create graph directory: %w", err)
		}
		dsn += "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}
	// A single connection keeps ":memory:" databases shared across calls.
	db.SetMaxOpenConns(1)

	return &SQLiteClient{DB: db}, nil
}

func (c *SQLiteClient) Ping(ctx context.Context) error {
	return c.DB.PingContext(ctx)
}

func (c *SQLiteClient) Close() error {
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}

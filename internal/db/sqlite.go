package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"
	_ "modernc.org/sqlite"

	"github.com/tordrt/ddlkit/internal/metadata"
)

// SQLite driver names as registered with database/sql.
const (
	SQLiteCgoDriver  = "sqlite3" // github.com/mattn/go-sqlite3
	SQLitePureDriver = "sqlite"  // modernc.org/sqlite
)

// SQLiteClient manages the connection to SQLite
type SQLiteClient struct {
	db *sql.DB
}

// NewSQLiteClient creates a new SQLite client on one of the registered
// drivers. path may carry a sqlite:// or jdbc:sqlite: prefix.
func NewSQLiteClient(ctx context.Context, driverName, path string) (*SQLiteClient, error) {
	db, err := sql.Open(driverName, sqlitePath(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// an in-memory database lives and dies with its single connection
	db.SetMaxOpenConns(1)

	// Test the connection
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &SQLiteClient{db: db}, nil
}

func sqlitePath(url string) string {
	for _, prefix := range []string{"jdbc:sqlite:", "sqlite://"} {
		if strings.HasPrefix(url, prefix) {
			return strings.TrimPrefix(url, prefix)
		}
	}
	return url
}

// Exec runs a single statement.
func (c *SQLiteClient) Exec(ctx context.Context, stmt string) error {
	_, err := c.db.ExecContext(ctx, stmt)
	return err
}

// MetaData returns the catalog reader of the connection.
func (c *SQLiteClient) MetaData() metadata.MetaData {
	return &SQLiteMetaData{db: c.db}
}

// Close closes the database connection
func (c *SQLiteClient) Close() error {
	return c.db.Close()
}

// GetDB returns the underlying database connection
func (c *SQLiteClient) GetDB() *sql.DB {
	return c.db
}

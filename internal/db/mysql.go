package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"

	"github.com/tordrt/ddlkit/internal/metadata"
)

// MySQLClient manages the connection to MySQL
type MySQLClient struct {
	db *sql.DB
}

// NewMySQLClient creates a new MySQL client. The connection string is a
// driver DSN, optionally prefixed with mysql://. Non-empty credentials
// override those of the DSN.
func NewMySQLClient(ctx context.Context, connString, username, password string) (*MySQLClient, error) {
	cfg, err := mysql.ParseDSN(strings.TrimPrefix(connString, "mysql://"))
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection string: %w", err)
	}
	if username != "" {
		cfg.User = username
	}
	if password != "" {
		cfg.Passwd = password
	}

	connector, err := mysql.NewConnector(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db := sql.OpenDB(connector)

	// Test the connection
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &MySQLClient{db: db}, nil
}

// Exec runs a single statement.
func (c *MySQLClient) Exec(ctx context.Context, stmt string) error {
	_, err := c.db.ExecContext(ctx, stmt)
	return err
}

// MetaData returns the catalog reader of the connection.
func (c *MySQLClient) MetaData() metadata.MetaData {
	return &MySQLMetaData{db: c.db}
}

// Close closes the database connection
func (c *MySQLClient) Close() error {
	return c.db.Close()
}

// GetDB returns the underlying database connection
func (c *MySQLClient) GetDB() *sql.DB {
	return c.db
}

//go:build integration
// +build integration

package integration

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/tordrt/ddlkit/internal/db"
	"github.com/tordrt/ddlkit/internal/platform"
)

func sqlitePath(t *testing.T) string {
	// Use environment variable if set, otherwise use a scratch database
	if path := os.Getenv("SQLITE_TEST_PATH"); path != "" {
		return path
	}
	return filepath.Join(t.TempDir(), "test.db")
}

func TestSQLiteLifecycle(t *testing.T) {
	for _, driver := range []string{db.SQLiteCgoDriver, db.SQLitePureDriver} {
		t.Run(driver, func(t *testing.T) {
			ctx := context.Background()

			client, err := db.NewSQLiteClient(ctx, driver, sqlitePath(t))
			if err != nil {
				t.Fatalf("Failed to connect to SQLite: %v", err)
			}
			defer client.Close()

			runShopLifecycle(t, newPlatform(t, "sqlite"), client, platform.ReadOptions{})
		})
	}
}

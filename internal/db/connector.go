package db

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tordrt/ddlkit/internal/platform"
)

// ErrUnsupportedDriver is returned for drivers no client exists for.
var ErrUnsupportedDriver = errors.New("unsupported driver")

// Kind identifies the client implementation behind a driver name.
type Kind string

const (
	KindPostgres Kind = "postgres"
	KindMySQL    Kind = "mysql"
	KindSQLite   Kind = "sqlite"
)

var driverKinds = map[string]Kind{
	"pgx":                      KindPostgres,
	"postgres":                 KindPostgres,
	"postgresql":               KindPostgres,
	"org.postgresql.driver":    KindPostgres,
	"mysql":                    KindMySQL,
	"com.mysql.jdbc.driver":    KindMySQL,
	"com.mysql.cj.jdbc.driver": KindMySQL,
	SQLiteCgoDriver:            KindSQLite,
	SQLitePureDriver:           KindSQLite,
	"org.sqlite.jdbc":          KindSQLite,
}

var urlKinds = []struct {
	prefix string
	kind   Kind
}{
	{"postgres://", KindPostgres},
	{"postgresql://", KindPostgres},
	{"mysql://", KindMySQL},
	{"sqlite://", KindSQLite},
	{"jdbc:sqlite:", KindSQLite},
	{"file:", KindSQLite},
}

// KindOf resolves the client kind from a driver name, falling back to the
// URL scheme when the driver is empty.
func KindOf(driver, url string) (Kind, error) {
	if driver != "" {
		if kind, ok := driverKinds[strings.ToLower(driver)]; ok {
			return kind, nil
		}
		return "", fmt.Errorf("%w: %s", ErrUnsupportedDriver, driver)
	}
	lower := strings.ToLower(url)
	for _, u := range urlKinds {
		if strings.HasPrefix(lower, u.prefix) {
			return u.kind, nil
		}
	}
	return "", fmt.Errorf("%w: cannot tell the driver of %q", ErrUnsupportedDriver, url)
}

// Connector opens live connections for the platform layer.
type Connector struct {
	// SQLiteDriver picks the SQLite driver; empty means the pure Go one.
	SQLiteDriver string
}

var _ platform.Connector = (*Connector)(nil)

// Connect opens a connection to url with the client matching driver.
func (c *Connector) Connect(ctx context.Context, driver, url, username, password string) (platform.ConnectionCloser, error) {
	kind, err := KindOf(driver, url)
	if err != nil {
		return nil, err
	}

	switch kind {
	case KindPostgres:
		return NewPostgresClient(ctx, url, username, password)
	case KindMySQL:
		return NewMySQLClient(ctx, url, username, password)
	default:
		name := c.SQLiteDriver
		if strings.EqualFold(driver, SQLiteCgoDriver) {
			name = SQLiteCgoDriver
		}
		if name == "" {
			name = SQLitePureDriver
		}
		return NewSQLiteClient(ctx, name, url)
	}
}

package dialect

import (
	"context"
	"sort"

	"github.com/tordrt/ddlkit/internal/ddlerr"
	"github.com/tordrt/ddlkit/internal/platform"
)

// withConnection opens a connection to url, runs fn and closes the
// connection on every exit path. A nil fn only opens and closes, which is
// how URL-driven dialects create databases.
func withConnection(ctx context.Context, connector platform.Connector, cfg platform.ConnectionConfig, url string, fn func(platform.Connection) error) (err error) {
	if connector == nil {
		return &ddlerr.ResourceError{Op: "open connection", Err: errNoConnector}
	}
	conn, err := connector.Connect(ctx, cfg.Driver, url, cfg.Username, cfg.Password)
	if err != nil {
		return &ddlerr.ResourceError{Op: "open connection", Err: err}
	}
	defer func() {
		if cerr := conn.Close(); cerr != nil && err == nil {
			err = &ddlerr.ResourceError{Op: "close connection", Err: cerr}
		}
	}()
	if fn == nil {
		return nil
	}
	return fn(conn)
}

func execOne(ctx context.Context, conn platform.Connection, stmt string) error {
	if err := conn.Exec(ctx, stmt); err != nil {
		return &ddlerr.ExecutionError{Index: 0, Statement: stmt, Err: err}
	}
	return nil
}

// sortedKeys returns the parameter names in a stable order.
func sortedKeys(params map[string]string) []string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

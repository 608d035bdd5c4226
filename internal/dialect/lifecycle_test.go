package dialect

import (
	"context"
	"errors"

	"github.com/tordrt/ddlkit/internal/metadata"
	"github.com/tordrt/ddlkit/internal/platform"
)

type fakeConnection struct {
	executed []string
	execErr  error
	closeErr error
	closed   bool
}

func (c *fakeConnection) Exec(_ context.Context, stmt string) error {
	if c.execErr != nil {
		return c.execErr
	}
	c.executed = append(c.executed, stmt)
	return nil
}

func (c *fakeConnection) MetaData() metadata.MetaData { return &metadata.Memory{} }

func (c *fakeConnection) Close() error {
	c.closed = true
	return c.closeErr
}

// fakeConnector hands out a single recorded connection.
type fakeConnector struct {
	conn       *fakeConnection
	connectErr error
	urls       []string
}

func (f *fakeConnector) Connect(_ context.Context, _, url, _, _ string) (platform.ConnectionCloser, error) {
	f.urls = append(f.urls, url)
	if f.connectErr != nil {
		return nil, f.connectErr
	}
	return f.conn, nil
}

func newFakeConnector() *fakeConnector {
	return &fakeConnector{conn: &fakeConnection{}}
}

var errBackend = errors.New("backend said no")

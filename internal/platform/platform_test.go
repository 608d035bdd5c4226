package platform

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tordrt/ddlkit/internal/ddlerr"
	"github.com/tordrt/ddlkit/internal/metadata"
	"github.com/tordrt/ddlkit/internal/model"
)

var errRejected = errors.New("rejected by backend")

// recordingConn records executed statements and rejects those containing failOn.
type recordingConn struct {
	failOn   string
	executed []string
	md       metadata.MetaData
}

func (c *recordingConn) Exec(_ context.Context, stmt string) error {
	if c.failOn != "" && strings.Contains(stmt, c.failOn) {
		return errRejected
	}
	c.executed = append(c.executed, stmt)
	return nil
}

func (c *recordingConn) MetaData() metadata.MetaData { return c.md }

func newTestPlatform(opts ...Option) *Platform {
	return New(Definition{Info: NewInfo("test")}, opts...)
}

func TestPlatformOptions(t *testing.T) {
	p := newTestPlatform(WithStrict(true), WithCaseSensitive(true), WithDelimitedIdentifiers(true))
	assert.Equal(t, "test", p.Name())
	assert.True(t, p.Info().Strict)
	assert.True(t, p.Info().CaseSensitive)
	assert.True(t, p.Info().DelimitedIdentifierMode)

	script, err := p.CreateTablesSQL(companyModel(), false)
	require.NoError(t, err)
	assert.Contains(t, script.Statements()[0], `CREATE TABLE "dept"`)
}

func TestCreateTablesSQLDropFirst(t *testing.T) {
	p := newTestPlatform()
	db := companyModel()

	create, err := p.CreateTablesSQL(db, false)
	require.NoError(t, err)
	drop, err := p.DropTablesSQL(db)
	require.NoError(t, err)

	both, err := p.CreateTablesSQL(db, true)
	require.NoError(t, err)
	assert.Equal(t, append(drop.Statements(), create.Statements()...), both.Statements())
}

func TestCreateTablesExecutes(t *testing.T) {
	p := newTestPlatform()
	db := companyModel()
	conn := &recordingConn{}

	report, err := p.CreateTables(context.Background(), conn, db, false, false)
	require.NoError(t, err)
	assert.False(t, report.Failed())

	script, err := p.CreateTablesSQL(db, false)
	require.NoError(t, err)
	assert.Equal(t, script.Statements(), conn.executed)
	assert.Equal(t, len(conn.executed), report.Executed)
}

func TestCreateTablesAbortsOnFailure(t *testing.T) {
	p := newTestPlatform()
	conn := &recordingConn{failOn: "CREATE INDEX"}

	report, err := p.CreateTables(context.Background(), conn, companyModel(), false, false)
	require.Error(t, err)
	assert.ErrorIs(t, err, ddlerr.ErrExecution)
	assert.ErrorIs(t, err, errRejected)

	var ee *ddlerr.ExecutionError
	require.ErrorAs(t, err, &ee)
	assert.Contains(t, ee.Statement, "CREATE INDEX IDX_person_name")
	assert.Equal(t, len(conn.executed), ee.Index)
	assert.Equal(t, len(conn.executed), report.Executed)
}

func TestCreateTablesContinueOnError(t *testing.T) {
	p := newTestPlatform()
	conn := &recordingConn{failOn: "CREATE INDEX"}

	report, err := p.CreateTables(context.Background(), conn, companyModel(), false, true)
	require.NoError(t, err)
	require.True(t, report.Failed())
	require.Len(t, report.Failures, 1)

	failure := report.Failures[0]
	assert.ErrorIs(t, failure.Err, errRejected)
	assert.Contains(t, failure.String(), "rejected by backend")

	// statements after the failure still ran
	assert.Contains(t, conn.executed[len(conn.executed)-1], "ADD CONSTRAINT FK_person_dept_id")
}

func TestCreateTablesDropFirstToleratesDropFailures(t *testing.T) {
	p := newTestPlatform()
	conn := &recordingConn{failOn: "DROP"}

	report, err := p.CreateTables(context.Background(), conn, companyModel(), true, false)
	require.NoError(t, err)
	assert.False(t, report.Failed())

	for _, stmt := range conn.executed {
		assert.NotContains(t, stmt, "DROP")
	}
}

func TestPlatformDropTables(t *testing.T) {
	p := newTestPlatform()
	conn := &recordingConn{}

	report, err := p.DropTables(context.Background(), conn, companyModel(), false)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"ALTER TABLE person DROP CONSTRAINT FK_person_dept_id",
		"DROP TABLE person",
		"DROP TABLE dept",
	}, conn.executed)
	assert.Equal(t, 3, report.Executed)
}

func TestAlterTablesReadsLiveModel(t *testing.T) {
	p := newTestPlatform()
	conn := &recordingConn{md: memoryFromModel(companyModel())}

	desired := companyModel()
	person := desired.FindTable("person", false)
	person.Columns = append(person.Columns, &model.Column{Name: "age", Type: model.TypeInteger})

	report, err := p.AlterTables(context.Background(), conn, desired, ReadOptions{}, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"ALTER TABLE person ADD COLUMN age INTEGER"}, conn.executed)
	assert.Equal(t, 1, report.Executed)
	assert.Empty(t, report.Warnings)
}

func TestAlterTablesIntrospectionFailure(t *testing.T) {
	md := memoryFromModel(companyModel())
	md.Failures = map[string]error{"columns": errRejected}
	conn := &recordingConn{md: md}

	_, err := newTestPlatform().AlterTables(context.Background(), conn, companyModel(), ReadOptions{}, false)
	assert.ErrorIs(t, err, ddlerr.ErrIntrospection)
	assert.Empty(t, conn.executed)
}

func TestDatabaseLifecycleUnsupported(t *testing.T) {
	p := newTestPlatform()
	cfg := ConnectionConfig{Driver: "test", URL: "test://db"}

	err := p.CreateDatabase(context.Background(), nil, cfg)
	assert.ErrorIs(t, err, ddlerr.ErrUnsupportedFeature)

	err = p.DropDatabase(context.Background(), nil, cfg)
	assert.ErrorIs(t, err, ddlerr.ErrUnsupportedFeature)
}

type recordingLifecycle struct {
	created, dropped []ConnectionConfig
}

func (l *recordingLifecycle) CreateDatabase(_ context.Context, _ Connector, cfg ConnectionConfig, logger *slog.Logger) error {
	logger.Debug("create", slog.String("url", cfg.URL))
	l.created = append(l.created, cfg)
	return nil
}

func (l *recordingLifecycle) DropDatabase(_ context.Context, _ Connector, cfg ConnectionConfig, logger *slog.Logger) error {
	logger.Debug("drop", slog.String("url", cfg.URL))
	l.dropped = append(l.dropped, cfg)
	return nil
}

func TestDatabaseLifecycleDelegates(t *testing.T) {
	lc := &recordingLifecycle{}
	p := New(Definition{Info: NewInfo("test"), Lifecycle: lc})
	cfg := ConnectionConfig{Driver: "test", URL: "test://db"}

	require.NoError(t, p.CreateDatabase(context.Background(), nil, cfg))
	require.NoError(t, p.DropDatabase(context.Background(), nil, cfg))
	assert.Equal(t, []ConnectionConfig{cfg}, lc.created)
	assert.Equal(t, []ConnectionConfig{cfg}, lc.dropped)
}

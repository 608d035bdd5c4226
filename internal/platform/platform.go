// Package platform binds dialect settings, the DDL builder and the model
// reader into one façade per target database.
package platform

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tordrt/ddlkit/internal/ddlerr"
	"github.com/tordrt/ddlkit/internal/metadata"
	"github.com/tordrt/ddlkit/internal/model"
)

// Connection is a caller-owned database session. The platform uses it for
// the duration of one call and never closes it.
type Connection interface {
	Exec(ctx context.Context, stmt string) error
	MetaData() metadata.MetaData
}

// ConnectionCloser is a Connection the platform opened itself.
type ConnectionCloser interface {
	Connection
	Close() error
}

// Connector opens connections from driver settings.
type Connector interface {
	Connect(ctx context.Context, driver, url, username, password string) (ConnectionCloser, error)
}

// ConnectionConfig describes how to reach a database server.
type ConnectionConfig struct {
	Driver     string
	URL        string
	Username   string
	Password   string
	Parameters map[string]string
}

// Lifecycle creates and drops whole databases, for dialects that can. The
// logger is the one the platform was configured with.
type Lifecycle interface {
	CreateDatabase(ctx context.Context, conn Connector, cfg ConnectionConfig, logger *slog.Logger) error
	DropDatabase(ctx context.Context, conn Connector, cfg ConnectionConfig, logger *slog.Logger) error
}

// Definition is everything a dialect contributes.
type Definition struct {
	Info          Info
	Types         *TypeMap
	Hooks         Hooks
	AutoIncrement AutoIncrement
	ReaderHooks   ReaderHooks
	Lifecycle     Lifecycle // nil when databases cannot be created programmatically
}

// Platform is the façade over one dialect. It holds no mutable state after
// construction.
type Platform struct {
	info      Info
	builder   *Builder
	reader    *Reader
	lifecycle Lifecycle
	logger    *slog.Logger
}

// New builds a platform from a dialect definition.
func New(def Definition, opts ...Option) *Platform {
	s := settings{logger: slog.Default()}
	for _, opt := range opts {
		opt(&s)
	}
	info := def.Info
	info.Strict = s.strict
	info.CaseSensitive = s.caseSensitive
	info.DelimitedIdentifierMode = s.delimited

	types := def.Types
	if types == nil {
		types = NewTypeMap()
	}
	logger := s.logger
	return &Platform{
		info:      info,
		builder:   NewBuilder(info, types, def.Hooks, def.AutoIncrement, logger),
		reader:    NewReader(info, types, def.ReaderHooks, logger),
		lifecycle: def.Lifecycle,
		logger:    logger,
	}
}

// Name returns the dialect name.
func (p *Platform) Name() string { return p.info.Name }

// Info returns the effective dialect settings.
func (p *Platform) Info() Info { return p.info }

// Builder returns the DDL builder.
func (p *Platform) Builder() *Builder { return p.builder }

// Reader returns the model reader.
func (p *Platform) Reader() *Reader { return p.reader }

// CreateTablesSQL returns the script creating the database tables, optionally
// preceded by the script dropping them.
func (p *Platform) CreateTablesSQL(db *model.Database, dropFirst bool) (*Script, error) {
	create, err := p.builder.CreateTables(db)
	if err != nil {
		return nil, err
	}
	if !dropFirst {
		return create, nil
	}
	script, err := p.builder.DropTables(db)
	if err != nil {
		return nil, err
	}
	script.Append(create)
	return script, nil
}

// CreateTables creates the tables of db through conn. With dropFirst the
// tables are dropped beforehand; failures of those drops are expected and
// always tolerated.
func (p *Platform) CreateTables(ctx context.Context, conn Connection, db *model.Database, dropFirst, continueOnError bool) (*Report, error) {
	report := &Report{}
	if dropFirst {
		drop, err := p.builder.DropTables(db)
		if err != nil {
			return nil, err
		}
		dropReport, _ := p.Execute(ctx, conn, drop, true)
		report.Warnings = append(report.Warnings, dropReport.Warnings...)
	}
	create, err := p.builder.CreateTables(db)
	if err != nil {
		return nil, err
	}
	createReport, err := p.Execute(ctx, conn, create, continueOnError)
	report.merge(createReport)
	return report, err
}

// DropTablesSQL returns the script dropping the database tables.
func (p *Platform) DropTablesSQL(db *model.Database) (*Script, error) {
	return p.builder.DropTables(db)
}

// DropTables drops the tables of db through conn.
func (p *Platform) DropTables(ctx context.Context, conn Connection, db *model.Database, continueOnError bool) (*Report, error) {
	script, err := p.builder.DropTables(db)
	if err != nil {
		return nil, err
	}
	return p.Execute(ctx, conn, script, continueOnError)
}

// AlterTablesSQL returns the script turning live into desired.
func (p *Platform) AlterTablesSQL(live, desired *model.Database) (*Script, error) {
	return p.builder.AlterDatabase(live, desired)
}

// AlterTables reads the live model through conn and applies the changes
// needed to reach desired.
func (p *Platform) AlterTables(ctx context.Context, conn Connection, desired *model.Database, opts ReadOptions, continueOnError bool) (*Report, error) {
	live, warnings, err := p.ReadModelFromDatabase(ctx, conn, opts)
	if err != nil {
		return nil, err
	}
	script, err := p.builder.AlterDatabase(live, desired)
	if err != nil {
		return nil, err
	}
	report, err := p.Execute(ctx, conn, script, continueOnError)
	if report != nil {
		report.Warnings = append(warnings, report.Warnings...)
	}
	return report, err
}

// ReadModelFromDatabase reads the model of the database behind conn.
func (p *Platform) ReadModelFromDatabase(ctx context.Context, conn Connection, opts ReadOptions) (*model.Database, []ddlerr.Warning, error) {
	return p.reader.Read(ctx, conn.MetaData(), opts)
}

// CreateDatabase creates a new database, for dialects that support it.
func (p *Platform) CreateDatabase(ctx context.Context, conn Connector, cfg ConnectionConfig) error {
	if p.lifecycle == nil {
		return ddlerr.Unsupported(p.info.Name, "creating databases")
	}
	p.logger.Info("creating database", slog.String("dialect", p.info.Name), slog.String("driver", cfg.Driver))
	return p.lifecycle.CreateDatabase(ctx, conn, cfg, p.logger)
}

// DropDatabase drops a database, for dialects that support it.
func (p *Platform) DropDatabase(ctx context.Context, conn Connector, cfg ConnectionConfig) error {
	if p.lifecycle == nil {
		return ddlerr.Unsupported(p.info.Name, "dropping databases")
	}
	p.logger.Info("dropping database", slog.String("dialect", p.info.Name), slog.String("driver", cfg.Driver))
	return p.lifecycle.DropDatabase(ctx, conn, cfg, p.logger)
}

// Execute runs the statements of script in order. Without continueOnError the
// first failure aborts the run and is returned as a *ddlerr.ExecutionError;
// with it every failure is collected into the report.
func (p *Platform) Execute(ctx context.Context, conn Connection, script *Script, continueOnError bool) (*Report, error) {
	report := &Report{Warnings: append([]ddlerr.Warning(nil), script.Warnings()...)}
	for i, stmt := range script.Statements() {
		p.logger.Debug("executing statement", slog.Int("index", i), slog.String("sql", stmt))
		if err := conn.Exec(ctx, stmt); err != nil {
			failure := StatementFailure{Index: i, Statement: stmt, Err: err}
			if !continueOnError {
				return report, &ddlerr.ExecutionError{Index: i, Statement: stmt, Err: err}
			}
			p.logger.Warn("statement failed", slog.Int("index", i), slog.String("error", err.Error()))
			report.Failures = append(report.Failures, failure)
			continue
		}
		report.Executed++
	}
	return report, nil
}

// StatementFailure is a statement the backend rejected during a tolerant run.
type StatementFailure struct {
	Index     int
	Statement string
	Err       error
}

func (f StatementFailure) String() string {
	return fmt.Sprintf("statement %d failed: %v", f.Index, f.Err)
}

// Report summarises an executed script.
type Report struct {
	Executed int
	Failures []StatementFailure
	Warnings []ddlerr.Warning
}

// Failed reports whether any statement was rejected.
func (r *Report) Failed() bool {
	return len(r.Failures) > 0
}

func (r *Report) merge(other *Report) {
	if other == nil {
		return
	}
	r.Executed += other.Executed
	r.Failures = append(r.Failures, other.Failures...)
	r.Warnings = append(r.Warnings, other.Warnings...)
}

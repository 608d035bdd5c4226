// Package dialect defines the supported database dialects and the registry
// that constructs platforms for them by name.
package dialect

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/tordrt/ddlkit/internal/platform"
)

// ErrUnknownPlatform is returned when no dialect is registered under a name.
var ErrUnknownPlatform = errors.New("unknown platform")

// Constructor returns a fresh definition of a dialect.
type Constructor func() platform.Definition

type builtin struct {
	name     string
	ctor     Constructor
	drivers  []string
	prefixes []string
}

var builtins = []builtin{
	{"axion", Axion, []string{"org.axiondb.jdbc.AxionDriver"}, []string{"jdbc:axiondb:"}},
	{"cloudscape", Cloudscape, []string{"COM.cloudscape.core.JDBCDriver", "COM.cloudscape.core.RmiJdbcDriver"}, []string{"jdbc:cloudscape:", "jdbc:rmi:"}},
	{"db2", DB2, []string{"com.ibm.db2.jcc.DB2Driver", "COM.ibm.db2.jdbc.app.DB2Driver", "go_ibm_db"}, []string{"jdbc:db2:", "jdbc:db2j:net:", "jdbc:db2os390:"}},
	{"derby", Derby, derbyDrivers, []string{"jdbc:derby:"}},
	{"firebird", Firebird, []string{"org.firebirdsql.jdbc.FBDriver", "firebirdsql"}, []string{"jdbc:firebirdsql:", "firebirdsql://"}},
	{"hsqldb", HsqlDb, []string{"org.hsqldb.jdbcDriver", "org.hsqldb.jdbc.JDBCDriver"}, []string{"jdbc:hsqldb:"}},
	{"interbase", Interbase, []string{"interbase.interclient.Driver"}, []string{"jdbc:interbase:"}},
	{"maxdb", MaxDB, nil, []string{"jdbc:maxdb:"}},
	{"mckoi", McKoi, []string{"com.mckoi.JDBCDriver"}, []string{"jdbc:mckoi:"}},
	{"mssql", MSSQL, []string{"com.microsoft.sqlserver.jdbc.SQLServerDriver", "com.microsoft.jdbc.sqlserver.SQLServerDriver", "sqlserver", "mssql"}, []string{"jdbc:sqlserver:", "jdbc:microsoft:sqlserver:", "jdbc:jtds:sqlserver:", "sqlserver://"}},
	{"mysql", MySQL, []string{"com.mysql.jdbc.Driver", "com.mysql.cj.jdbc.Driver", "mysql"}, []string{"jdbc:mysql:", "mysql://"}},
	{"oracle", Oracle, []string{"oracle.jdbc.driver.OracleDriver", "oracle.jdbc.OracleDriver", "oracle", "godror"}, []string{"jdbc:oracle:", "oracle://"}},
	{"postgresql", PostgreSQL, []string{"org.postgresql.Driver", "pgx", "postgres"}, []string{"jdbc:postgresql:", "postgres://", "postgresql://"}},
	{"sapdb", SapDB, []string{"com.sap.dbtech.jdbc.DriverSapDB"}, []string{"jdbc:sapdb:"}},
	{"sqlite", SQLite, []string{"sqlite3", "sqlite", "org.sqlite.JDBC"}, []string{"jdbc:sqlite:", "sqlite://", "file:"}},
	{"sybase", Sybase, []string{"com.sybase.jdbc2.jdbc.SybDriver", "com.sybase.jdbc3.jdbc.SybDriver"}, []string{"jdbc:sybase:", "jdbc:jtds:sybase:"}},
}

// Registry maps platform names to dialect constructors. It is an explicit
// object: callers create one at startup and pass it where platforms are built.
type Registry struct {
	constructors map[string]Constructor
	drivers      map[string]string
	prefixes     map[string]string
}

// NewRegistry returns a registry holding every built-in dialect.
func NewRegistry() *Registry {
	r := &Registry{
		constructors: make(map[string]Constructor),
		drivers:      make(map[string]string),
		prefixes:     make(map[string]string),
	}
	for _, b := range builtins {
		r.Register(b.name, b.ctor)
		for _, d := range b.drivers {
			r.RegisterDriver(d, b.name)
		}
		for _, p := range b.prefixes {
			r.RegisterURLPrefix(p, b.name)
		}
	}
	return r
}

// Register adds or replaces the dialect registered under name.
func (r *Registry) Register(name string, ctor Constructor) {
	r.constructors[strings.ToLower(name)] = ctor
}

// RegisterDriver makes Detect resolve a driver name to the platform.
func (r *Registry) RegisterDriver(driver, name string) {
	r.drivers[strings.ToLower(driver)] = strings.ToLower(name)
}

// RegisterURLPrefix makes Detect resolve connection URLs starting with prefix
// to the platform.
func (r *Registry) RegisterURLPrefix(prefix, name string) {
	r.prefixes[strings.ToLower(prefix)] = strings.ToLower(name)
}

// Names returns the registered platform names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.constructors))
	for name := range r.constructors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Definition returns a fresh definition of the named dialect.
func (r *Registry) Definition(name string) (platform.Definition, error) {
	ctor, ok := r.constructors[strings.ToLower(name)]
	if !ok {
		return platform.Definition{}, fmt.Errorf("%w: %s", ErrUnknownPlatform, name)
	}
	return ctor(), nil
}

// Create builds a platform for the named dialect.
func (r *Registry) Create(name string, opts ...platform.Option) (*platform.Platform, error) {
	def, err := r.Definition(name)
	if err != nil {
		return nil, err
	}
	return platform.New(def, opts...), nil
}

// Detect guesses the platform from a driver name and connection URL. The
// URL wins when both are known; the longest matching URL prefix is used.
func (r *Registry) Detect(driver, url string) (string, bool) {
	lower := strings.ToLower(url)
	best := ""
	for prefix := range r.prefixes {
		if strings.HasPrefix(lower, prefix) && len(prefix) > len(best) {
			best = prefix
		}
	}
	if best != "" {
		return r.prefixes[best], true
	}
	if name, ok := r.drivers[strings.ToLower(driver)]; ok {
		return name, true
	}
	return "", false
}

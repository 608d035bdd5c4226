package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tordrt/ddlkit/internal/config"
	"github.com/tordrt/ddlkit/internal/db"
	"github.com/tordrt/ddlkit/internal/ddlerr"
	"github.com/tordrt/ddlkit/internal/dialect"
	"github.com/tordrt/ddlkit/internal/logging"
	"github.com/tordrt/ddlkit/internal/model"
	"github.com/tordrt/ddlkit/internal/platform"
	"github.com/tordrt/ddlkit/internal/xmlmodel"
)

// flagKeys maps config keys to the flags overriding them.
var flagKeys = map[string]string{
	"platform":                    "platform",
	"connection.driver":           "driver",
	"connection.url":              "url",
	"connection.username":         "username",
	"connection.password":         "password",
	"reader.catalog":              "catalog",
	"reader.schema":               "schema",
	"reader.table_types":          "table-types",
	"build.strict":                "strict",
	"build.case_sensitive":        "case-sensitive",
	"build.delimited_identifiers": "delimited",
	"build.continue_on_error":     "continue-on-error",
	"build.drop_first":            "drop-first",
	"log.level":                   "log-level",
	"log.format":                  "log-format",
}

// app holds what every command needs once flags and config are resolved.
type app struct {
	v        *viper.Viper
	cfg      *config.Config
	logger   *slog.Logger
	registry *dialect.Registry
	connect  platform.Connector
}

func newRootCmd() *cobra.Command {
	a := &app{
		v:        config.New(),
		registry: dialect.NewRegistry(),
		connect:  &db.Connector{},
	}
	var configFile string

	rootCmd := &cobra.Command{
		Use:   "ddlkit",
		Short: "Create, alter and read database schemas across SQL dialects",
		Long: `ddlkit turns XML schema descriptors into DDL for Derby, Firebird, HSQLDB, MySQL,
PostgreSQL, Oracle, SQL Server, DB2, SQLite and more, applies them to live databases
and reads the schema of a live database back into a descriptor.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := config.BindFlags(a.v, cmd.Flags(), flagKeys); err != nil {
				return err
			}
			cfg, err := config.Load(a.v, configFile)
			if err != nil {
				return err
			}
			a.cfg = cfg

			level, err := logging.ParseLevel(cfg.Log.Level)
			if err != nil {
				return err
			}
			format, err := logging.ParseFormat(cfg.Log.Format)
			if err != nil {
				return err
			}
			a.logger = logging.InitLogger(cmd.ErrOrStderr(), level, format)
			return nil
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&configFile, "config", "c", "", "Config file (yaml, json or toml)")
	flags.StringP("platform", "p", "", "Target platform (default: detected from --driver or --url)")
	flags.String("driver", "", "Database driver: pgx, mysql, sqlite or sqlite3")
	flags.StringP("url", "u", "", "Database connection URL")
	flags.String("username", "", "Database user, overrides the URL")
	flags.String("password", "", "Database password, overrides the URL")
	flags.String("catalog", "", "Catalog to read (default: platform default)")
	flags.StringP("schema", "s", "", "Schema pattern to read (default: platform default, e.g. public)")
	flags.StringSlice("table-types", nil, "Table types to read (default: TABLE)")
	flags.Bool("strict", false, "Fail on constructs the platform cannot express instead of skipping them")
	flags.Bool("case-sensitive", false, "Compare table and column names exactly")
	flags.Bool("delimited", false, "Quote every identifier")
	flags.String("log-level", "warn", "Log level: debug, info, warn or error")
	flags.String("log-format", "text", "Log format: text or json")

	rootCmd.AddCommand(
		newPlatformsCmd(a),
		newSQLCmd(a),
		newCreateDBCmd(a),
		newDropDBCmd(a),
		newCreateTablesCmd(a),
		newDropTablesCmd(a),
		newAlterCmd(a),
		newReadCmd(a),
	)
	return rootCmd
}

// platform resolves the target platform from the config, falling back to
// detection from the driver and URL.
func (a *app) platform() (*platform.Platform, error) {
	name := a.cfg.Platform
	if name == "" {
		detected, ok := a.registry.Detect(a.cfg.Connection.Driver, a.cfg.Connection.URL)
		if !ok {
			return nil, fmt.Errorf("cannot detect the platform, use --platform")
		}
		name = detected
	}
	opts := append(a.cfg.PlatformOptions(), platform.WithLogger(a.logger))
	return a.registry.Create(name, opts...)
}

func (a *app) open(ctx context.Context) (platform.ConnectionCloser, error) {
	c := a.cfg.ConnectionConfig()
	if c.URL == "" {
		return nil, fmt.Errorf("--url must be specified")
	}
	conn, err := a.connect.Connect(ctx, c.Driver, c.URL, c.Username, c.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to connect: %w", err)
	}
	return conn, nil
}

func (a *app) closeConn(conn platform.ConnectionCloser) {
	if err := conn.Close(); err != nil {
		a.logger.Warn("failed to close connection", slog.Any("error", err))
	}
}

func loadModel(path string) (*model.Database, error) {
	m, err := xmlmodel.LoadFile(path)
	if err != nil {
		return nil, err
	}
	if err := m.Validate(model.ValidateOptions{}); err != nil {
		return nil, err
	}
	return m, nil
}

func (a *app) logWarnings(warnings []ddlerr.Warning) {
	for _, w := range warnings {
		a.logger.Warn(w.Message,
			slog.String("table", w.Table),
			slog.String("object", w.Object))
	}
}

// finish logs the report and turns rejected statements into an error.
func (a *app) finish(w io.Writer, report *platform.Report, err error) error {
	if report != nil {
		a.logWarnings(report.Warnings)
		for _, f := range report.Failures {
			a.logger.Error(f.String(), slog.String("statement", f.Statement))
		}
		fmt.Fprintf(w, "%d statements executed, %d failed\n", report.Executed, len(report.Failures))
	}
	if err != nil {
		return err
	}
	if report != nil && report.Failed() {
		return fmt.Errorf("%d statements failed", len(report.Failures))
	}
	return nil
}

// splitList splits a comma-separated flag value, dropping blanks.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

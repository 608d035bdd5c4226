package dialect

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"regexp"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/tordrt/ddlkit/internal/ddlerr"
	"github.com/tordrt/ddlkit/internal/model"
	"github.com/tordrt/ddlkit/internal/platform"
)

// PostgreSQL targets PostgreSQL 8 and later.
func PostgreSQL() platform.Definition {
	info := platform.NewInfo("PostgreSql")
	info.MaxIdentifierLength = 63
	info.IdentifierCaseFold = platform.FoldLower
	info.ForeignKeysEmbedded = false
	info.LastIdentityValueReadable = true
	info.AddReservedWords("ANALYSE", "ANALYZE", "LIMIT", "OFFSET", "RETURNING", "WINDOW")

	types := platform.NewTypeMap().
		Set(model.TypeBit, "BOOLEAN").
		Set(model.TypeTinyInt, "SMALLINT").
		Set(model.TypeFloat, "DOUBLE PRECISION").
		Set(model.TypeDouble, "DOUBLE PRECISION").
		Set(model.TypeLongVarchar, "TEXT").
		Set(model.TypeClob, "TEXT").
		SetPlain(model.TypeBinary, "BYTEA").
		SetPlain(model.TypeVarBinary, "BYTEA").
		Set(model.TypeLongVarBinary, "BYTEA").
		Set(model.TypeBlob, "BYTEA").
		Alias("INT2", model.TypeSmallInt).
		Alias("INT4", model.TypeInteger).
		Alias("INT", model.TypeInteger).
		Alias("INT8", model.TypeBigInt).
		Alias("FLOAT4", model.TypeReal).
		Alias("FLOAT8", model.TypeDouble).
		Alias("BOOL", model.TypeBoolean).
		Alias("CHARACTER VARYING", model.TypeVarchar).
		Alias("CHARACTER", model.TypeChar).
		Alias("BPCHAR", model.TypeChar).
		Alias("TIMESTAMP WITHOUT TIME ZONE", model.TypeTimestamp).
		Alias("TIME WITHOUT TIME ZONE", model.TypeTime).
		Alias("SERIAL", model.TypeInteger).
		Alias("BIGSERIAL", model.TypeBigInt).
		Alias("SMALLSERIAL", model.TypeSmallInt)

	return platform.Definition{
		Info:  info,
		Types: types,
		AutoIncrement: platform.SerialAutoIncrement{Types: map[model.TypeCode]string{
			model.TypeInteger:  "SERIAL",
			model.TypeBigInt:   "BIGSERIAL",
			model.TypeSmallInt: "SMALLSERIAL",
		}},
		Hooks: platform.Hooks{
			DropTable: dropTableCascade("CASCADE"),
			ModifyColumn: stepwiseModify{
				alter:      "ALTER COLUMN ",
				setType:    " TYPE ",
				setNotNull: " SET NOT NULL",
				dropNull:   " DROP NOT NULL",
				setDefault: " SET DEFAULT ",
				noDefault:  " DROP DEFAULT",
			}.hook,
		},
		ReaderHooks: platform.ReaderHooks{
			DefaultSchemaPattern: "public",
			IsInternalPrimaryKeyIndex: func(t *model.Table, idx *model.Index) bool {
				return strings.EqualFold(idx.Name, t.Name+"_pkey") || strings.EqualFold(idx.Name, t.PrimaryKeyName)
			},
			AdjustColumn: postgresColumn,
		},
		Lifecycle: postgresLifecycle{},
	}
}

// postgresColumn recognises serial columns by their nextval default and
// strips the type cast the server appends to literal defaults.
func postgresColumn(_ *model.Table, c *model.Column) {
	if c.Default == nil {
		return
	}
	d := strings.TrimSpace(*c.Default)
	if hasPrefixFold(d, "nextval(") {
		c.AutoIncrement = true
		c.Default = nil
		return
	}
	for {
		if len(d) >= 2 && d[0] == '(' && d[len(d)-1] == ')' {
			d = d[1 : len(d)-1]
			continue
		}
		i := strings.LastIndex(d, "::")
		if i <= 0 || strings.Contains(d[i:], "'") {
			break
		}
		d = strings.TrimSpace(d[:i])
	}
	c.Default = model.StringPtr(platform.UnquoteDefault(d))
}

type postgresLifecycle struct{}

var dbnameKeyword = regexp.MustCompile(`dbname=\S+`)

// maintenanceURL returns the URL of the postgres maintenance database on the
// same server, along with the database named by connString.
func (postgresLifecycle) maintenanceURL(connString string) (string, string, error) {
	cfg, err := pgx.ParseConfig(connString)
	if err != nil {
		return "", "", fmt.Errorf("parse connection string: %w", err)
	}
	if cfg.Database == "" {
		return "", "", errNoDatabaseName
	}
	if strings.Contains(connString, "://") {
		u, err := url.Parse(connString)
		if err != nil {
			return "", "", fmt.Errorf("parse connection url: %w", err)
		}
		u.Path = "/postgres"
		return u.String(), cfg.Database, nil
	}
	return dbnameKeyword.ReplaceAllString(connString, "dbname=postgres"), cfg.Database, nil
}

func (l postgresLifecycle) CreateDatabase(ctx context.Context, conn platform.Connector, cfg platform.ConnectionConfig, logger *slog.Logger) error {
	server, name, err := l.maintenanceURL(cfg.URL)
	if err != nil {
		return &ddlerr.ResourceError{Op: "open connection", Err: err}
	}
	stmt := "CREATE DATABASE " + pgx.Identifier{name}.Sanitize()
	for _, k := range sortedKeys(cfg.Parameters) {
		stmt += " " + k + " " + cfg.Parameters[k]
	}
	logger.Debug("creating database", slog.String("database", name))
	return withConnection(ctx, conn, cfg, server, func(c platform.Connection) error {
		return execOne(ctx, c, stmt)
	})
}

func (l postgresLifecycle) DropDatabase(ctx context.Context, conn platform.Connector, cfg platform.ConnectionConfig, logger *slog.Logger) error {
	server, name, err := l.maintenanceURL(cfg.URL)
	if err != nil {
		return &ddlerr.ResourceError{Op: "open connection", Err: err}
	}
	logger.Debug("dropping database", slog.String("database", name))
	return withConnection(ctx, conn, cfg, server, func(c platform.Connection) error {
		return execOne(ctx, c, "DROP DATABASE "+pgx.Identifier{name}.Sanitize())
	})
}

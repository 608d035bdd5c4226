package dialect

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-sql-driver/mysql"

	"github.com/tordrt/ddlkit/internal/ddlerr"
	"github.com/tordrt/ddlkit/internal/model"
	"github.com/tordrt/ddlkit/internal/platform"
)

// MySQL targets MySQL 4.1 and later with InnoDB tables.
func MySQL() platform.Definition {
	info := platform.NewInfo("MySQL")
	info.IdentifierQuoteChar = "`"
	info.MaxIdentifierLength = 64
	info.IdentifierCaseFold = platform.FoldPreserve
	info.SupportsMixedCaseIdentifiers = true
	info.ForeignKeysEmbedded = false
	info.IndicesEmbedded = true
	info.IndexColumnSizeSupported = true
	info.EscapeBackslashInStrings = true
	info.BooleanLiteralsAsNumbers = true
	info.DefaultValuesForLongTypes = false
	info.AutoIncrementNeedsPrimaryKey = true
	info.LastIdentityValueReadable = true
	info.OnUpdateActions = []model.Action{model.ActionCascade, model.ActionSetNull, model.ActionRestrict}
	info.OnDeleteActions = []model.Action{model.ActionCascade, model.ActionSetNull, model.ActionRestrict}
	info.AddReservedWords("KEYS", "RANGE", "READ", "RENAME", "REPLACE", "SCHEMA", "SHOW", "STATUS")

	types := platform.NewTypeMap().
		Set(model.TypeBit, "TINYINT(1)").
		Set(model.TypeBoolean, "TINYINT(1)").
		Set(model.TypeReal, "DOUBLE").
		Set(model.TypeFloat, "DOUBLE").
		Set(model.TypeNumeric, "DECIMAL").
		Set(model.TypeLongVarchar, "MEDIUMTEXT").
		Set(model.TypeClob, "LONGTEXT").
		Set(model.TypeLongVarBinary, "MEDIUMBLOB").
		Set(model.TypeBlob, "LONGBLOB").
		Set(model.TypeTimestamp, "DATETIME").
		Alias("INT", model.TypeInteger).
		Alias("TEXT", model.TypeLongVarchar).
		Alias("BLOB", model.TypeLongVarBinary).
		Alias("TIMESTAMP", model.TypeTimestamp)

	return platform.Definition{
		Info:          info,
		Types:         types,
		AutoIncrement: platform.InlineAutoIncrement{Modifier: "AUTO_INCREMENT"},
		Hooks: platform.Hooks{
			DropForeignKey: func(e *platform.Emitter, t *model.Table, fk *model.ForeignKey) {
				e.Statement("ALTER TABLE ", e.TableName(t), " DROP FOREIGN KEY ", e.Ident(platform.ForeignKeyName(t, fk)))
			},
			DropIndex: func(e *platform.Emitter, t *model.Table, idx *model.Index) {
				e.Statement("DROP INDEX ", e.Ident(platform.IndexName(t, idx)), " ON ", e.TableName(t))
			},
			RenameTable:  renameTableStatement,
			ModifyColumn: modifyColumnWith("MODIFY COLUMN"),
		},
		ReaderHooks: platform.ReaderHooks{
			IsInternalPrimaryKeyIndex: func(_ *model.Table, idx *model.Index) bool {
				return strings.EqualFold(idx.Name, "PRIMARY")
			},
			// InnoDB names the index it creates for a key after the key
			IsInternalForeignKeyIndex: func(_ *model.Table, fk *model.ForeignKey, idx *model.Index) bool {
				return strings.EqualFold(idx.Name, fk.Name)
			},
			AdjustColumn: mysqlColumn,
		},
		Lifecycle: mysqlLifecycle{},
	}
}

// mysqlColumn drops the zero-date and CURRENT_TIMESTAMP style defaults the
// server reports for NOT NULL temporal columns that were declared without one.
func mysqlColumn(_ *model.Table, c *model.Column) {
	if c.Default == nil || c.Type.Category() != model.CategoryTemporal {
		return
	}
	if strings.HasPrefix(*c.Default, "0000-00-00") {
		c.Default = nil
	}
}

var errNoDatabaseName = errors.New("connection URL names no database")

type mysqlLifecycle struct{}

// serverDSN splits a DSN into the DSN of the server and the database name.
func (mysqlLifecycle) serverDSN(dsn string) (string, string, error) {
	cfg, err := mysql.ParseDSN(strings.TrimPrefix(dsn, "mysql://"))
	if err != nil {
		return "", "", fmt.Errorf("parse dsn: %w", err)
	}
	name := cfg.DBName
	if name == "" {
		return "", "", errNoDatabaseName
	}
	cfg.DBName = ""
	return cfg.FormatDSN(), name, nil
}

func (l mysqlLifecycle) CreateDatabase(ctx context.Context, conn platform.Connector, cfg platform.ConnectionConfig, logger *slog.Logger) error {
	server, name, err := l.serverDSN(cfg.URL)
	if err != nil {
		return &ddlerr.ResourceError{Op: "open connection", Err: err}
	}
	stmt := "CREATE DATABASE " + mysqlIdent(name)
	for _, k := range sortedKeys(cfg.Parameters) {
		stmt += " " + k + " " + cfg.Parameters[k]
	}
	logger.Debug("creating database", slog.String("database", name))
	return withConnection(ctx, conn, cfg, server, func(c platform.Connection) error {
		return execOne(ctx, c, stmt)
	})
}

func (l mysqlLifecycle) DropDatabase(ctx context.Context, conn platform.Connector, cfg platform.ConnectionConfig, logger *slog.Logger) error {
	server, name, err := l.serverDSN(cfg.URL)
	if err != nil {
		return &ddlerr.ResourceError{Op: "open connection", Err: err}
	}
	logger.Debug("dropping database", slog.String("database", name))
	return withConnection(ctx, conn, cfg, server, func(c platform.Connection) error {
		return execOne(ctx, c, "DROP DATABASE "+mysqlIdent(name))
	})
}

func mysqlIdent(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

package dialect

import (
	"github.com/tordrt/ddlkit/internal/metadata"
	"github.com/tordrt/ddlkit/internal/model"
	"github.com/tordrt/ddlkit/internal/platform"
)

// SQLite targets SQLite 3. Foreign keys are declared inside CREATE TABLE and
// other structural changes go through a table rebuild. The rebuilt table is
// created under a temporary name and renamed into place, since renaming the
// live table away would rewrite the foreign keys of its children.
func SQLite() platform.Definition {
	info := platform.NewInfo("SQLite")
	info.IdentifierCaseFold = platform.FoldPreserve
	info.SupportsMixedCaseIdentifiers = true
	info.ForeignKeysEmbedded = true
	info.AlterAddForeignKeySupported = false
	info.SupportsAlterForDrop = false
	info.SupportsAlterColumn = false
	info.RebuildIntoNewTable = true
	info.BooleanLiteralsAsNumbers = true
	info.AutoIncrementNeedsPrimaryKey = true
	info.LastIdentityValueReadable = true
	info.AddReservedWords("AUTOINCREMENT", "GLOB", "PRAGMA", "REINDEX", "VACUUM")

	types := platform.NewTypeMap().
		Set(model.TypeLongVarchar, "TEXT").
		Set(model.TypeClob, "TEXT").
		SetPlain(model.TypeBinary, "BLOB").
		SetPlain(model.TypeVarBinary, "BLOB").
		Set(model.TypeLongVarBinary, "BLOB").
		Alias("INT", model.TypeInteger).
		Alias("DATETIME", model.TypeTimestamp)

	return platform.Definition{
		Info:          info,
		Types:         types,
		AutoIncrement: sqliteAutoIncrement{},
		Hooks: platform.Hooks{
			WriteEmbeddedPrimaryKey: func(e *platform.Emitter, t *model.Table) {
				pk := t.PrimaryKeyColumns()
				if len(pk) == 1 && pk[0].AutoIncrement {
					return
				}
				cols := make([]string, len(pk))
				for i, c := range pk {
					cols[i] = c.Name
				}
				e.Print("PRIMARY KEY (", e.Idents(cols), ")")
			},
			// an enforced foreign key would delete or reject the child rows
			// when the live table is dropped
			WrapRebuild: func(e *platform.Emitter, _ *model.Table, rebuild func()) {
				e.Statement("PRAGMA foreign_keys = OFF")
				rebuild()
				e.Statement("PRAGMA foreign_keys = ON")
			},
		},
		ReaderHooks: platform.ReaderHooks{
			IsInternalPrimaryKeyIndex: namePrefixed("sqlite_autoindex_"),
			SkipTable: func(row metadata.TableRow) bool {
				return hasPrefixFold(row.Name, "sqlite_")
			},
		},
	}
}

// sqliteAutoIncrement declares the column as INTEGER PRIMARY KEY AUTOINCREMENT,
// the only form SQLite accepts.
type sqliteAutoIncrement struct{}

func (sqliteAutoIncrement) ColumnType(*model.Column, string) string { return "INTEGER" }

func (sqliteAutoIncrement) WriteColumnModifier(e *platform.Emitter, t *model.Table, c *model.Column) {
	pk := t.PrimaryKeyColumns()
	if len(pk) != 1 || pk[0] != c {
		e.Unsupported(t.Name, c.Name, "auto-increment column %s.%s outside a single-column primary key", t.Name, c.Name)
		return
	}
	e.Print(" PRIMARY KEY AUTOINCREMENT")
}

func (sqliteAutoIncrement) CreateAuxiliary(*platform.Emitter, *model.Table, *model.Column) {}

func (sqliteAutoIncrement) DropAuxiliary(*platform.Emitter, *model.Table, *model.Column) {}

package dialect

import (
	"github.com/tordrt/ddlkit/internal/model"
	"github.com/tordrt/ddlkit/internal/platform"
)

// SapDB targets SapDB 7.4.
func SapDB() platform.Definition {
	return sapFamily("SapDB")
}

// MaxDB is the MySQL-branded successor of SapDB with the same dialect.
func MaxDB() platform.Definition {
	return sapFamily("MaxDB")
}

func sapFamily(name string) platform.Definition {
	info := platform.NewInfo(name)
	info.MaxIdentifierLength = 32
	info.ForeignKeysEmbedded = false
	info.OnUpdateActions = nil
	info.OnDeleteActions = []model.Action{model.ActionCascade, model.ActionSetNull, model.ActionSetDefault, model.ActionRestrict}
	info.DefaultValuesForLongTypes = false
	info.AddReservedWords("FIXED", "LONG", "SERIAL")

	types := platform.NewTypeMap().
		Set(model.TypeBigInt, "FIXED(38,0)").
		Set(model.TypeDecimal, "FIXED").
		Set(model.TypeNumeric, "FIXED").
		Set(model.TypeTinyInt, "SMALLINT").
		Set(model.TypeReal, "FLOAT").
		Set(model.TypeDouble, "DOUBLE PRECISION").
		Set(model.TypeBinary, "CHAR({size}) BYTE").
		Set(model.TypeVarBinary, "VARCHAR({size}) BYTE").
		Set(model.TypeLongVarchar, "LONG VARCHAR").
		Set(model.TypeClob, "LONG").
		Set(model.TypeLongVarBinary, "LONG BYTE").
		Set(model.TypeBlob, "LONG BYTE").
		Set(model.TypeBit, "BOOLEAN")

	return platform.Definition{
		Info:          info,
		Types:         types,
		AutoIncrement: platform.DefaultAutoIncrement{Expression: "SERIAL(1)"},
		Hooks: platform.Hooks{
			AddColumn:    addColumnBare,
			DropColumn:   dropColumnBare,
			ModifyColumn: modifyColumnWith("MODIFY"),
			RenameTable:  renameTableStatement,
			DropForeignKey: func(e *platform.Emitter, t *model.Table, fk *model.ForeignKey) {
				e.Statement("ALTER TABLE ", e.TableName(t), " DROP FOREIGN KEY ", e.Ident(platform.ForeignKeyName(t, fk)))
			},
		},
		ReaderHooks: platform.ReaderHooks{
			IsInternalPrimaryKeyIndex: namePrefixed("SYSPRIMARYKEYINDEX"),
			AdjustColumn: func(_ *model.Table, c *model.Column) {
				if c.Default != nil && hasPrefixFold(*c.Default, "DEFAULT SERIAL") {
					c.AutoIncrement = true
					c.Default = nil
				}
			},
		},
	}
}

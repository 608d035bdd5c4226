package dialect

import (
	"github.com/tordrt/ddlkit/internal/metadata"
	"github.com/tordrt/ddlkit/internal/model"
	"github.com/tordrt/ddlkit/internal/platform"
)

// Firebird runs DDL inside transactions and fills auto-increment columns
// from a generator and a BEFORE INSERT trigger.
func Firebird() platform.Definition {
	return firebirdFamily("Firebird")
}

// Interbase is the commercial ancestor of Firebird and shares its idiom.
func Interbase() platform.Definition {
	return firebirdFamily("Interbase")
}

func firebirdFamily(name string) platform.Definition {
	info := platform.NewInfo(name)
	info.MaxIdentifierLength = 31
	info.CommentPrefix = "/*"
	info.CommentSuffix = "*/"
	info.ForeignKeysEmbedded = false
	info.AutoCommitDDL = false
	info.SupportsRenameTable = false
	info.BooleanLiteralsAsNumbers = true
	info.OnUpdateActions = []model.Action{model.ActionCascade, model.ActionSetNull, model.ActionSetDefault}
	info.OnDeleteActions = []model.Action{model.ActionCascade, model.ActionSetNull, model.ActionSetDefault}
	info.AddReservedWords("ACTIVE", "POSITION", "TRIGGER", "GENERATOR", "VALUE", "TYPE")

	types := platform.NewTypeMap().
		Set(model.TypeBigInt, "DECIMAL(18,0)").
		Set(model.TypeBit, "DECIMAL(1,0)").
		Set(model.TypeBoolean, "DECIMAL(1,0)").
		Set(model.TypeTinyInt, "SMALLINT").
		Set(model.TypeDouble, "DOUBLE PRECISION").
		Set(model.TypeReal, "FLOAT").
		Set(model.TypeLongVarchar, "BLOB SUB_TYPE TEXT").
		Set(model.TypeClob, "BLOB SUB_TYPE TEXT").
		SetPlain(model.TypeBinary, "BLOB").
		SetPlain(model.TypeVarBinary, "BLOB").
		Set(model.TypeLongVarBinary, "BLOB")

	modify := stepwiseModify{
		alter:      "ALTER ",
		setType:    " TYPE ",
		setNotNull: " SET NOT NULL",
		dropNull:   " DROP NOT NULL",
		setDefault: " SET DEFAULT ",
		noDefault:  " DROP DEFAULT",
	}

	return platform.Definition{
		Info:          info,
		Types:         types,
		AutoIncrement: platform.GeneratorAutoIncrement{},
		Hooks: platform.Hooks{
			AddColumn:    addColumnBare,
			DropColumn:   dropColumnBare,
			ModifyColumn: modify.hook,
			RenameTable: func(e *platform.Emitter, from, _ string) {
				e.Unsupported(from, "", "renaming table %s", from)
			},
		},
		ReaderHooks: platform.ReaderHooks{
			// RDB$PRIMARY and RDB$FOREIGN indices back the constraints
			IsInternalPrimaryKeyIndex: namePrefixed("RDB$PRIMARY"),
			IsInternalForeignKeyIndex: fkIndexPrefixed("RDB$FOREIGN"),
			SkipTable: func(row metadata.TableRow) bool {
				return hasPrefixFold(row.Name, "RDB$") || hasPrefixFold(row.Name, "MON$")
			},
		},
	}
}

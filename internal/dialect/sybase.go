package dialect

import (
	"github.com/tordrt/ddlkit/internal/model"
	"github.com/tordrt/ddlkit/internal/platform"
)

// Sybase targets Sybase ASE 12.5 and later. Columns default to NOT NULL on
// Sybase, so nullable columns are declared explicitly.
func Sybase() platform.Definition {
	info := platform.NewInfo("Sybase")
	info.MaxIdentifierLength = 30
	info.IdentifierCaseFold = platform.FoldPreserve
	info.SupportsMixedCaseIdentifiers = true
	info.ForeignKeysEmbedded = false
	info.ExplicitNullRequired = true
	info.OnDeleteActions = nil
	info.OnUpdateActions = nil
	info.BooleanLiteralsAsNumbers = true
	info.DefaultValuesForLongTypes = false
	info.LastIdentityValueReadable = true
	info.AddReservedWords("IDENTITY", "PROC", "TRAN")

	types := platform.NewTypeMap().
		Set(model.TypeBigInt, "DECIMAL(19,0)").
		Set(model.TypeBoolean, "BIT").
		Set(model.TypeDouble, "DOUBLE PRECISION").
		Set(model.TypeDate, "DATETIME").
		Set(model.TypeTime, "DATETIME").
		Set(model.TypeTimestamp, "DATETIME").
		Set(model.TypeLongVarchar, "TEXT").
		Set(model.TypeClob, "TEXT").
		Set(model.TypeLongVarBinary, "IMAGE").
		Set(model.TypeBlob, "IMAGE").
		Alias("INT", model.TypeInteger).
		Alias("UNIVARCHAR", model.TypeVarchar)

	return platform.Definition{
		Info:          info,
		Types:         types,
		AutoIncrement: platform.InlineAutoIncrement{Modifier: "IDENTITY"},
		Hooks: platform.Hooks{
			AddColumn:    addColumnBare,
			DropColumn:   dropColumnBare,
			DropIndex:    dropIndexQualified,
			RenameTable:  spRename,
			ModifyColumn: modifyColumnWith("MODIFY"),
		},
		ReaderHooks: platform.ReaderHooks{
			AdjustColumn: mssqlDefault,
		},
	}
}

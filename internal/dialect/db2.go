package dialect

import (
	"github.com/tordrt/ddlkit/internal/metadata"
	"github.com/tordrt/ddlkit/internal/model"
	"github.com/tordrt/ddlkit/internal/platform"
)

// DB2 targets DB2 UDB 8. Columns cannot be altered or dropped in place, so
// such changes rebuild the table.
func DB2() platform.Definition {
	info := platform.NewInfo("DB2")
	info.MaxIdentifierLength = 18
	info.ForeignKeysEmbedded = false
	info.SupportsAlterColumn = false
	info.SupportsAlterForDrop = false
	info.OnDeleteActions = []model.Action{model.ActionCascade, model.ActionSetNull, model.ActionRestrict}
	info.OnUpdateActions = []model.Action{model.ActionRestrict}
	info.BooleanLiteralsAsNumbers = true
	info.DefaultValuesForLongTypes = false
	info.LastIdentityValueReadable = true

	types := forBitDataTypes(platform.NewTypeMap()).
		Set(model.TypeBit, "SMALLINT").
		Set(model.TypeBoolean, "SMALLINT").
		Set(model.TypeTinyInt, "SMALLINT").
		Set(model.TypeFloat, "DOUBLE").
		Set(model.TypeNumeric, "DECIMAL")

	return platform.Definition{
		Info:          info,
		Types:         types,
		AutoIncrement: platform.InlineAutoIncrement{Modifier: "GENERATED BY DEFAULT AS IDENTITY"},
		Hooks: platform.Hooks{
			RenameTable: renameTableStatement,
		},
		ReaderHooks: platform.ReaderHooks{
			IsInternalPrimaryKeyIndex: namePrefixed("SQL"),
			IsInternalForeignKeyIndex: fkIndexPrefixed("SQL"),
			SkipTable: func(row metadata.TableRow) bool {
				return hasPrefixFold(row.Schema, "SYS")
			},
			AdjustColumn: derbyIdentity,
		},
	}
}

package dialect

import (
	"github.com/tordrt/ddlkit/internal/model"
	"github.com/tordrt/ddlkit/internal/platform"
)

// Axion is an embedded database without foreign keys or column changes.
func Axion() platform.Definition {
	info := platform.NewInfo("Axion")
	info.ForeignKeysSupported = false
	info.AlterAddForeignKeySupported = false
	info.SupportsAlterColumn = false
	info.SupportsAlterForDrop = false
	info.SupportsNonUniqueIndices = true
	info.NullAsDefaultAllowed = false

	types := platform.NewTypeMap().
		Set(model.TypeBit, "BOOLEAN").
		Set(model.TypeTinyInt, "SHORT").
		Set(model.TypeSmallInt, "SHORT").
		Set(model.TypeBigInt, "LONG").
		Set(model.TypeReal, "FLOAT").
		Set(model.TypeDouble, "FLOAT").
		Set(model.TypeNumeric, "NUMBER").
		Set(model.TypeDecimal, "NUMBER").
		// Axion has no long types; the maximal length keeps them apart from
		// plain VARCHAR and VARBINARY when read back.
		Set(model.TypeLongVarchar, "VARCHAR(2147483647)").
		Set(model.TypeLongVarBinary, "VARBINARY(2147483647)")

	return platform.Definition{
		Info:          info,
		Types:         types,
		AutoIncrement: platform.UnsupportedAutoIncrement{},
		Hooks: platform.Hooks{
			DropTable: func(e *platform.Emitter, t *model.Table) {
				e.Statement("DROP TABLE IF EXISTS ", e.TableName(t))
			},
		},
	}
}

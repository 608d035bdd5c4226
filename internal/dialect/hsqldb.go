package dialect

import (
	"github.com/tordrt/ddlkit/internal/model"
	"github.com/tordrt/ddlkit/internal/platform"
)

// HsqlDb targets HSQLDB 1.8 and later.
func HsqlDb() platform.Definition {
	info := platform.NewInfo("HsqlDb")
	info.MaxIdentifierLength = 128
	info.ForeignKeysEmbedded = false
	info.OnUpdateActions = []model.Action{model.ActionCascade, model.ActionSetNull, model.ActionSetDefault}
	info.LastIdentityValueReadable = true

	types := platform.NewTypeMap().
		Set(model.TypeBit, "BOOLEAN").
		Set(model.TypeBlob, "LONGVARBINARY").
		Set(model.TypeClob, "LONGVARCHAR").
		Set(model.TypeFloat, "DOUBLE")

	return platform.Definition{
		Info:          info,
		Types:         types,
		AutoIncrement: platform.InlineAutoIncrement{Modifier: "GENERATED BY DEFAULT AS IDENTITY(START WITH 1)"},
		Hooks: platform.Hooks{
			DropTable: func(e *platform.Emitter, t *model.Table) {
				e.Statement("DROP TABLE ", e.TableName(t), " IF EXISTS")
			},
			ModifyColumn: modifyColumnWith("ALTER COLUMN"),
		},
		ReaderHooks: platform.ReaderHooks{
			// the catalog is not filterable and schemas differ between versions
			DefaultCatalogPattern:     "",
			DefaultSchemaPattern:      "",
			IsInternalPrimaryKeyIndex: namePrefixed("SYS_PK_"),
			IsInternalForeignKeyIndex: fkIndexPrefixed("SYS_IDX_"),
		},
	}
}

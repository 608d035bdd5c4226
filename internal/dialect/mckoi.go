package dialect

import (
	"github.com/tordrt/ddlkit/internal/model"
	"github.com/tordrt/ddlkit/internal/platform"
)

// McKoi draws auto-increment values from the table's unique key counter.
func McKoi() platform.Definition {
	info := platform.NewInfo("McKoi")
	info.ForeignKeysEmbedded = true
	info.SupportsAlterColumn = true
	info.SupportsRenameTable = false
	info.OnUpdateActions = []model.Action{model.ActionCascade, model.ActionSetNull, model.ActionSetDefault}

	types := platform.NewTypeMap().
		Set(model.TypeBit, "BOOLEAN").
		Set(model.TypeLongVarchar, "LONGVARCHAR").
		Set(model.TypeLongVarBinary, "LONGVARBINARY")

	return platform.Definition{
		Info:          info,
		Types:         types,
		AutoIncrement: platform.DefaultAutoIncrement{Expression: "UNIQUEKEY('{table}')"},
		Hooks: platform.Hooks{
			DropTable: func(e *platform.Emitter, t *model.Table) {
				e.Statement("DROP TABLE IF EXISTS ", e.TableName(t))
			},
			RenameTable: func(e *platform.Emitter, from, _ string) {
				e.Unsupported(from, "", "renaming table %s", from)
			},
		},
		ReaderHooks: platform.ReaderHooks{
			AdjustColumn: func(_ *model.Table, c *model.Column) {
				if c.Default != nil && hasPrefixFold(*c.Default, "UNIQUEKEY(") {
					c.AutoIncrement = true
					c.Default = nil
				}
			},
		},
	}
}

package dialect

import (
	"strings"

	"github.com/tordrt/ddlkit/internal/metadata"
	"github.com/tordrt/ddlkit/internal/model"
	"github.com/tordrt/ddlkit/internal/platform"
)

// Oracle targets Oracle 8 and later. Auto-increment columns are filled by a
// sequence and a row trigger.
func Oracle() platform.Definition {
	info := platform.NewInfo("Oracle")
	info.MaxIdentifierLength = 30
	info.ForeignKeysEmbedded = false
	info.OnDeleteActions = []model.Action{model.ActionCascade, model.ActionSetNull}
	info.OnUpdateActions = nil
	info.DefaultValuesForLongTypes = false
	info.BooleanLiteralsAsNumbers = true
	info.AddReservedWords("ACCESS", "LEVEL", "MODE", "NUMBER", "RAW", "ROWID", "SIZE", "UID")

	types := platform.NewTypeMap().
		Set(model.TypeBigInt, "NUMBER(38)").
		Set(model.TypeBit, "NUMBER(1)").
		Set(model.TypeBoolean, "NUMBER(1)").
		Set(model.TypeDecimal, "NUMBER").
		Set(model.TypeNumeric, "NUMBER").
		Set(model.TypeInteger, "INTEGER").
		Set(model.TypeSmallInt, "NUMBER(5)").
		Set(model.TypeTinyInt, "NUMBER(3)").
		Set(model.TypeDouble, "DOUBLE PRECISION").
		Set(model.TypeVarchar, "VARCHAR2").
		Set(model.TypeLongVarchar, "CLOB").
		Set(model.TypeBinary, "RAW").
		Set(model.TypeVarBinary, "RAW").
		Set(model.TypeLongVarBinary, "BLOB").
		Set(model.TypeTime, "DATE").
		Alias("NVARCHAR2", model.TypeVarchar).
		Alias("NCHAR", model.TypeChar).
		Alias("NCLOB", model.TypeClob).
		Alias("LONG RAW", model.TypeLongVarBinary).
		Alias("LONG", model.TypeLongVarchar)

	return platform.Definition{
		Info:          info,
		Types:         types,
		AutoIncrement: platform.SequenceAutoIncrement{},
		Hooks: platform.Hooks{
			DropTable:    dropTableCascade("CASCADE CONSTRAINTS"),
			AddColumn:    addColumnBare,
			ModifyColumn: modifyColumnWith("MODIFY"),
		},
		ReaderHooks: platform.ReaderHooks{
			DefaultTableTypes: []string{"TABLE"},
			// SYS_C indices back constraints declared without a name
			IsInternalPrimaryKeyIndex: func(t *model.Table, idx *model.Index) bool {
				return hasPrefixFold(idx.Name, "SYS_C") || strings.EqualFold(idx.Name, t.PrimaryKeyName)
			},
			SkipTable: func(row metadata.TableRow) bool {
				// tables in the recycle bin
				return hasPrefixFold(row.Name, "BIN$")
			},
			AdjustColumn: func(_ *model.Table, c *model.Column) {
				if c.Default != nil {
					c.Default = model.StringPtr(platform.UnquoteDefault(strings.TrimSpace(*c.Default)))
				}
			},
		},
	}
}

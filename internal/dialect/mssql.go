package dialect

import (
	"strings"

	"github.com/tordrt/ddlkit/internal/model"
	"github.com/tordrt/ddlkit/internal/platform"
)

// MSSQL targets Microsoft SQL Server 2000 and later.
func MSSQL() platform.Definition {
	info := platform.NewInfo("MsSql")
	info.IdentifierQuoteChar = "["
	info.MaxIdentifierLength = 128
	info.IdentifierCaseFold = platform.FoldPreserve
	info.SupportsMixedCaseIdentifiers = true
	info.ForeignKeysEmbedded = false
	info.OnDeleteActions = []model.Action{model.ActionCascade}
	info.OnUpdateActions = []model.Action{model.ActionCascade}
	info.BooleanLiteralsAsNumbers = true
	info.DefaultValuesForLongTypes = false
	info.LastIdentityValueReadable = true
	info.AddReservedWords("IDENTITY", "PROC", "PROCEDURE", "TOP", "TRAN", "TRANSACTION")

	types := platform.NewTypeMap().
		Set(model.TypeBigInt, "DECIMAL(19,0)").
		Set(model.TypeBit, "BIT").
		Set(model.TypeBoolean, "BIT").
		Set(model.TypeDouble, "FLOAT").
		Set(model.TypeDate, "DATETIME").
		Set(model.TypeTime, "DATETIME").
		Set(model.TypeTimestamp, "DATETIME").
		Set(model.TypeLongVarchar, "TEXT").
		Set(model.TypeClob, "TEXT").
		Set(model.TypeLongVarBinary, "IMAGE").
		Set(model.TypeBlob, "IMAGE").
		Alias("INT", model.TypeInteger).
		Alias("NVARCHAR", model.TypeVarchar).
		Alias("NCHAR", model.TypeChar).
		Alias("NTEXT", model.TypeLongVarchar).
		Alias("SMALLDATETIME", model.TypeTimestamp)

	return platform.Definition{
		Info:          info,
		Types:         types,
		AutoIncrement: platform.InlineAutoIncrement{Modifier: "IDENTITY(1,1)"},
		Hooks: platform.Hooks{
			AddColumn:    addColumnBare,
			DropIndex:    dropIndexQualified,
			RenameTable:  spRename,
			ModifyColumn: modifyColumnWith("ALTER COLUMN"),
		},
		ReaderHooks: platform.ReaderHooks{
			DefaultSchemaPattern: "dbo",
			// PK__person__3213E83F backs an unnamed primary key
			IsInternalPrimaryKeyIndex: func(t *model.Table, idx *model.Index) bool {
				return hasPrefixFold(idx.Name, "PK__") || strings.EqualFold(idx.Name, t.PrimaryKeyName)
			},
			AdjustColumn: mssqlDefault,
		},
	}
}

// mssqlDefault unwraps the parentheses SQL Server puts around stored defaults,
// e.g. (('abc')) or ((0)).
func mssqlDefault(_ *model.Table, c *model.Column) {
	if c.Default == nil {
		return
	}
	d := strings.TrimSpace(*c.Default)
	for len(d) >= 2 && d[0] == '(' && d[len(d)-1] == ')' {
		d = strings.TrimSpace(d[1 : len(d)-1])
	}
	c.Default = model.StringPtr(platform.UnquoteDefault(d))
}

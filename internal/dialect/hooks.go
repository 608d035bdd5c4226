package dialect

import (
	"strings"

	"github.com/tordrt/ddlkit/internal/model"
	"github.com/tordrt/ddlkit/internal/platform"
)

// addColumnBare is ALTER TABLE ... ADD without the COLUMN keyword.
func addColumnBare(e *platform.Emitter, t *model.Table, c *model.Column) {
	e.Print("ALTER TABLE ", e.TableName(t), " ADD ")
	e.WriteColumn(t, c)
	e.EndStatement()
}

// dropColumnBare is ALTER TABLE ... DROP without the COLUMN keyword.
func dropColumnBare(e *platform.Emitter, t *model.Table, c *model.Column) {
	e.Statement("ALTER TABLE ", e.TableName(t), " DROP ", e.Ident(c.Name))
}

func renameTableStatement(e *platform.Emitter, from, to string) {
	e.Statement("RENAME TABLE ", e.Ident(from), " TO ", e.Ident(to))
}

func spRename(e *platform.Emitter, from, to string) {
	e.Statement("EXEC sp_rename ", platform.QuoteString(e.Info(), from), ", ", platform.QuoteString(e.Info(), to))
}

func dropIndexQualified(e *platform.Emitter, t *model.Table, idx *model.Index) {
	e.Statement("DROP INDEX ", e.TableName(t), ".", e.Ident(platform.IndexName(t, idx)))
}

func dropTableCascade(suffix string) func(*platform.Emitter, *model.Table) {
	return func(e *platform.Emitter, t *model.Table) {
		e.Statement("DROP TABLE ", e.TableName(t), " ", suffix)
	}
}

// modifyColumnWith redefines the whole column, e.g. ALTER TABLE t MODIFY <column>.
func modifyColumnWith(keyword string) func(*platform.Emitter, *model.Table, *model.Column) {
	return func(e *platform.Emitter, t *model.Table, c *model.Column) {
		e.Print("ALTER TABLE ", e.TableName(t), " ", keyword, " ")
		e.WriteColumn(t, c)
		e.EndStatement()
	}
}

// stepwiseModify changes type, nullability and default of a column in
// separate statements, for dialects whose ALTER COLUMN takes one change at a time.
type stepwiseModify struct {
	alter      string // "ALTER COLUMN " or "ALTER "
	setType    string // " TYPE "
	setNotNull string
	dropNull   string
	setDefault string
	noDefault  string
}

func (m stepwiseModify) hook(e *platform.Emitter, t *model.Table, c *model.Column) {
	prefix := "ALTER TABLE " + e.TableName(t) + " " + m.alter + e.Ident(c.Name)

	// the serial or identity part of an auto-increment column stays as it is
	plain := *c
	plain.AutoIncrement = false
	e.Statement(prefix, m.setType, e.ColumnType(&plain))

	if c.Required {
		e.Statement(prefix, m.setNotNull)
	} else {
		e.Statement(prefix, m.dropNull)
	}
	if c.AutoIncrement {
		return
	}
	if literal, ok := e.DefaultLiteral(c); ok {
		e.Statement(prefix, m.setDefault, literal)
	} else {
		e.Statement(prefix, m.noDefault)
	}
}

func hasPrefixFold(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}

// namePrefixed returns an index predicate matching names that start with prefix.
func namePrefixed(prefix string) func(*model.Table, *model.Index) bool {
	return func(_ *model.Table, idx *model.Index) bool {
		return hasPrefixFold(idx.Name, prefix)
	}
}

func fkIndexPrefixed(prefix string) func(*model.Table, *model.ForeignKey, *model.Index) bool {
	return func(_ *model.Table, _ *model.ForeignKey, idx *model.Index) bool {
		return hasPrefixFold(idx.Name, prefix)
	}
}

// forBitDataTypes is the binary type family of DB2 and its descendants.
func forBitDataTypes(m *platform.TypeMap) *platform.TypeMap {
	return m.
		Set(model.TypeBinary, "CHAR({size}) FOR BIT DATA").
		Set(model.TypeVarBinary, "VARCHAR({size}) FOR BIT DATA").
		Set(model.TypeLongVarBinary, "LONG VARCHAR FOR BIT DATA").
		Set(model.TypeLongVarchar, "LONG VARCHAR")
}

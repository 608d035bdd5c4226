package platform

import (
	"strings"

	"github.com/tordrt/ddlkit/internal/model"
)

// AutoIncrement is the strategy a dialect uses for auto-increment columns.
// DropAuxiliary must remove exactly the objects CreateAuxiliary creates.
type AutoIncrement interface {
	// ColumnType may replace the native type of the column, e.g. with SERIAL.
	ColumnType(c *model.Column, native string) string
	// WriteColumnModifier appends the inline modifier to the column definition.
	WriteColumnModifier(e *Emitter, t *model.Table, c *model.Column)
	// CreateAuxiliary emits the objects created after the table.
	CreateAuxiliary(e *Emitter, t *model.Table, c *model.Column)
	// DropAuxiliary emits the teardown run before the table is dropped.
	DropAuxiliary(e *Emitter, t *model.Table, c *model.Column)
}

// InlineAutoIncrement writes a modifier such as IDENTITY or AUTO_INCREMENT
// into the column definition. A {table} placeholder is replaced with the
// table name.
type InlineAutoIncrement struct {
	Modifier string
}

func (a InlineAutoIncrement) ColumnType(_ *model.Column, native string) string { return native }

func (a InlineAutoIncrement) WriteColumnModifier(e *Emitter, t *model.Table, _ *model.Column) {
	e.Print(" ", strings.ReplaceAll(a.Modifier, "{table}", t.Name))
}

func (a InlineAutoIncrement) CreateAuxiliary(*Emitter, *model.Table, *model.Column) {}

func (a InlineAutoIncrement) DropAuxiliary(*Emitter, *model.Table, *model.Column) {}

// DefaultAutoIncrement fills the column through its DEFAULT clause, e.g.
// DEFAULT SERIAL(1). A {table} placeholder is replaced with the table name.
type DefaultAutoIncrement struct {
	Expression string
}

// DefaultExpression returns the DEFAULT clause value for the column.
func (a DefaultAutoIncrement) DefaultExpression(t *model.Table, _ *model.Column) string {
	return strings.ReplaceAll(a.Expression, "{table}", t.Name)
}

func (a DefaultAutoIncrement) ColumnType(_ *model.Column, native string) string { return native }

func (a DefaultAutoIncrement) WriteColumnModifier(*Emitter, *model.Table, *model.Column) {}

func (a DefaultAutoIncrement) CreateAuxiliary(*Emitter, *model.Table, *model.Column) {}

func (a DefaultAutoIncrement) DropAuxiliary(*Emitter, *model.Table, *model.Column) {}

// SerialAutoIncrement swaps the column type for a serial pseudo-type.
type SerialAutoIncrement struct {
	Types map[model.TypeCode]string
}

func (a SerialAutoIncrement) ColumnType(c *model.Column, native string) string {
	if serial, ok := a.Types[c.Type]; ok {
		return serial
	}
	return native
}

func (a SerialAutoIncrement) WriteColumnModifier(*Emitter, *model.Table, *model.Column) {}

func (a SerialAutoIncrement) CreateAuxiliary(*Emitter, *model.Table, *model.Column) {}

func (a SerialAutoIncrement) DropAuxiliary(*Emitter, *model.Table, *model.Column) {}

// GeneratorAutoIncrement creates a generator and a BEFORE INSERT trigger that
// fills the column from it when the inserted value is NULL.
type GeneratorAutoIncrement struct{}

// GeneratorName returns the generator backing the column.
func GeneratorName(t *model.Table, c *model.Column) string {
	return "gen_" + t.Name + "_" + c.Name
}

// TriggerName returns the trigger populating the column.
func TriggerName(t *model.Table, c *model.Column) string {
	return "trg_" + t.Name + "_" + c.Name
}

func (GeneratorAutoIncrement) ColumnType(_ *model.Column, native string) string { return native }

func (GeneratorAutoIncrement) WriteColumnModifier(*Emitter, *model.Table, *model.Column) {}

func (GeneratorAutoIncrement) CreateAuxiliary(e *Emitter, t *model.Table, c *model.Column) {
	gen := e.Ident(GeneratorName(t, c))
	col := e.Ident(c.Name)
	e.Statement("CREATE GENERATOR ", gen)
	e.Println("CREATE TRIGGER ", e.Ident(TriggerName(t, c)), " FOR ", e.TableName(t))
	e.Println("ACTIVE BEFORE INSERT POSITION 0 AS")
	e.Println("BEGIN IF (NEW.", col, " IS NULL) THEN")
	e.Println("NEW.", col, " = GEN_ID(", gen, ", 1);")
	e.Print("END")
	e.EndStatement()
}

func (GeneratorAutoIncrement) DropAuxiliary(e *Emitter, t *model.Table, c *model.Column) {
	e.Statement("DROP TRIGGER ", e.Ident(TriggerName(t, c)))
	e.Statement("DROP GENERATOR ", e.Ident(GeneratorName(t, c)))
}

// SequenceAutoIncrement creates a sequence and a row trigger reading from it.
type SequenceAutoIncrement struct{}

// SequenceName returns the sequence backing the column.
func SequenceName(t *model.Table, c *model.Column) string {
	return "seq_" + t.Name + "_" + c.Name
}

func (SequenceAutoIncrement) ColumnType(_ *model.Column, native string) string { return native }

func (SequenceAutoIncrement) WriteColumnModifier(*Emitter, *model.Table, *model.Column) {}

func (SequenceAutoIncrement) CreateAuxiliary(e *Emitter, t *model.Table, c *model.Column) {
	seq := e.Ident(SequenceName(t, c))
	col := e.Ident(c.Name)
	e.Statement("CREATE SEQUENCE ", seq)
	e.Println("CREATE OR REPLACE TRIGGER ", e.Ident(TriggerName(t, c)), " BEFORE INSERT ON ", e.TableName(t))
	e.Println("FOR EACH ROW WHEN (new.", col, " IS NULL)")
	e.Println("BEGIN SELECT ", seq, ".nextval INTO :new.", col, " FROM dual;")
	e.Print("END")
	e.EndStatement()
}

func (SequenceAutoIncrement) DropAuxiliary(e *Emitter, t *model.Table, c *model.Column) {
	e.Statement("DROP TRIGGER ", e.Ident(TriggerName(t, c)))
	e.Statement("DROP SEQUENCE ", e.Ident(SequenceName(t, c)))
}

// UnsupportedAutoIncrement reports every auto-increment column as unsupported.
type UnsupportedAutoIncrement struct{}

func (UnsupportedAutoIncrement) ColumnType(_ *model.Column, native string) string { return native }

func (UnsupportedAutoIncrement) WriteColumnModifier(e *Emitter, t *model.Table, c *model.Column) {
	e.Unsupported(t.Name, c.Name, "auto-increment column %s.%s", t.Name, c.Name)
}

func (UnsupportedAutoIncrement) CreateAuxiliary(*Emitter, *model.Table, *model.Column) {}

func (UnsupportedAutoIncrement) DropAuxiliary(*Emitter, *model.Table, *model.Column) {}

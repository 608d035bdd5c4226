package platform

import (
	"log/slog"
	"strconv"
	"strings"

	"github.com/tordrt/ddlkit/internal/ddlerr"
	"github.com/tordrt/ddlkit/internal/model"
)

// Hooks are the statement shapes a dialect may replace. A nil hook selects
// the generic form.
type Hooks struct {
	WriteColumn             func(e *Emitter, t *model.Table, c *model.Column)
	WriteEmbeddedPrimaryKey func(e *Emitter, t *model.Table)
	WriteExternalForeignKey func(e *Emitter, t *model.Table, fk *model.ForeignKey)
	DropTable               func(e *Emitter, t *model.Table)
	DropForeignKey          func(e *Emitter, t *model.Table, fk *model.ForeignKey)
	DropIndex               func(e *Emitter, t *model.Table, idx *model.Index)
	RenameTable             func(e *Emitter, from, to string)
	AddColumn               func(e *Emitter, t *model.Table, c *model.Column)
	DropColumn              func(e *Emitter, t *model.Table, c *model.Column)
	ModifyColumn            func(e *Emitter, t *model.Table, c *model.Column)

	// WrapRebuild surrounds the statements rebuilding t; rebuild emits them.
	WrapRebuild func(e *Emitter, t *model.Table, rebuild func())
}

// Builder linearises models into DDL for one dialect. It keeps no state
// between runs and may be shared by concurrent callers.
type Builder struct {
	info   Info
	types  *TypeMap
	hooks  Hooks
	auto   AutoIncrement
	logger *slog.Logger
}

// NewBuilder returns a builder for the dialect settings.
func NewBuilder(info Info, types *TypeMap, hooks Hooks, auto AutoIncrement, logger *slog.Logger) *Builder {
	if types == nil {
		types = NewTypeMap()
	}
	if auto == nil {
		auto = UnsupportedAutoIncrement{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{info: info, types: types, hooks: hooks, auto: auto, logger: logger}
}

// Info returns the dialect settings the builder emits for.
func (b *Builder) Info() Info { return b.info }

// CreateTables emits the CREATE statements for every table of the database.
func (b *Builder) CreateTables(db *model.Database) (*Script, error) {
	if err := db.Validate(b.info.ValidateOptions()); err != nil {
		return nil, err
	}
	e := b.newEmitter(db)
	e.createTables(db.Tables)
	return e.finish()
}

// CreateTable emits the CREATE statements for a single table of the database.
func (b *Builder) CreateTable(db *model.Database, t *model.Table) (*Script, error) {
	if err := db.Validate(b.info.ValidateOptions()); err != nil {
		return nil, err
	}
	e := b.newEmitter(db)
	e.createTables([]*model.Table{t})
	return e.finish()
}

// DropTables emits the statements dropping every table of the database:
// foreign keys first, then tables in reverse dependency order.
func (b *Builder) DropTables(db *model.Database) (*Script, error) {
	e := b.newEmitter(db)
	plan := planCreation(db.Tables, b.info)
	if b.info.ForeignKeysSupported && b.info.AlterAddForeignKeySupported {
		for _, t := range plan.reversed() {
			for _, fk := range t.ForeignKeys {
				e.DropForeignKey(t, fk)
			}
		}
	}
	for _, t := range plan.reversed() {
		e.dropTable(t)
	}
	e.Commit()
	return e.finish()
}

// DropTable emits the statements dropping a single table and its auxiliary objects.
func (b *Builder) DropTable(db *model.Database, t *model.Table) (*Script, error) {
	e := b.newEmitter(db)
	if b.info.ForeignKeysSupported && b.info.AlterAddForeignKeySupported {
		for _, fk := range t.ForeignKeys {
			e.DropForeignKey(t, fk)
		}
	}
	e.dropTable(t)
	e.Commit()
	return e.finish()
}

// Emit runs fn against a fresh emitter for db and returns what it wrote. It
// lets callers assemble scripts from individual statement shapes.
func (b *Builder) Emit(db *model.Database, fn func(e *Emitter)) (*Script, error) {
	e := b.newEmitter(db)
	fn(e)
	return e.finish()
}

func (e *Emitter) finish() (*Script, error) {
	if e.err != nil {
		return nil, e.err
	}
	return e.script, nil
}

func (e *Emitter) createTables(tables []*model.Table) {
	info := e.b.info
	plan := planCreation(tables, info)

	for _, t := range plan.tables {
		e.writeCreateTable(t, plan.external)
		if !info.PrimaryKeyEmbedded && t.HasPrimaryKey() {
			e.writeExternalPrimaryKey(t)
		}
		if !info.IndicesEmbedded {
			for _, idx := range t.Indices {
				e.CreateIndex(t, idx)
			}
		}
	}
	e.Commit()

	for _, t := range plan.tables {
		for _, c := range t.AutoIncrementColumns() {
			e.b.auto.CreateAuxiliary(e, t, c)
		}
	}

	for _, t := range plan.tables {
		for _, fk := range t.ForeignKeys {
			if plan.external[fk] {
				e.WriteExternalForeignKey(t, fk)
				e.Commit()
			}
		}
	}
}

func (e *Emitter) writeCreateTable(t *model.Table, external map[*model.ForeignKey]bool) {
	info := e.b.info
	e.Comment(t.Name)
	e.Println("CREATE TABLE ", e.TableName(t))
	e.Println("(")

	var clauses []func()
	for _, c := range t.Columns {
		clauses = append(clauses, func() { e.WriteColumn(t, c) })
	}
	if info.PrimaryKeyEmbedded && t.HasPrimaryKey() {
		clauses = append(clauses, func() { e.WriteEmbeddedPrimaryKey(t) })
	}
	if info.IndicesEmbedded {
		for _, idx := range t.Indices {
			if e.indexSupported(t, idx) {
				clauses = append(clauses, func() { e.writeEmbeddedIndex(t, idx) })
			}
		}
	}
	for _, fk := range t.ForeignKeys {
		if !external[fk] && e.foreignKeySupported(t, fk) {
			clauses = append(clauses, func() { e.writeEmbeddedForeignKey(t, fk) })
		}
	}

	var lines []string
	for _, clause := range clauses {
		start := e.buf.Len()
		clause()
		line := e.buf.String()[start:]
		e.truncate(start)
		if strings.TrimSpace(line) != "" {
			lines = append(lines, "    "+line)
		}
	}
	e.Print(strings.Join(lines, ",\n"), "\n)")
	e.EndStatement()
}

func (e *Emitter) truncate(n int) {
	s := e.buf.String()[:n]
	e.buf.Reset()
	e.buf.WriteString(s)
}

func unsupportedType(dialect string, c *model.Column) error {
	return ddlerr.Unsupported(dialect, "type %s of column %s", c.Type, c.Name)
}

// WriteColumn writes a column definition.
func (e *Emitter) WriteColumn(t *model.Table, c *model.Column) {
	if h := e.b.hooks.WriteColumn; h != nil {
		h(e, t, c)
		return
	}
	e.WriteGenericColumn(t, c)
}

// WriteGenericColumn writes name, type, default, nullability and the
// auto-increment modifier of a column.
func (e *Emitter) WriteGenericColumn(t *model.Table, c *model.Column) {
	e.Print(e.Ident(c.Name), " ", e.ColumnType(c))
	if d, ok := e.b.auto.(DefaultAutoIncrement); ok && c.AutoIncrement {
		e.Print(" DEFAULT ", d.DefaultExpression(t, c))
	} else if literal, ok := e.DefaultLiteral(c); ok {
		e.Print(" DEFAULT ", literal)
	}
	switch {
	case c.Required:
		e.Print(" NOT NULL")
	case e.b.info.ExplicitNullRequired:
		e.Print(" NULL")
	}
	if c.AutoIncrement {
		e.b.auto.WriteColumnModifier(e, t, c)
	}
}

// ColumnType returns the native type of the column, with the dialect default
// size applied when the column has none.
func (e *Emitter) ColumnType(c *model.Column) string {
	size := c.Size
	if size == 0 && c.Type.HasSize() {
		size = e.b.info.DefaultSizeFor(c.Type)
	}
	native, ok := e.b.types.ToNative(c.Type, size, c.Scale)
	if !ok || (c.Type == model.TypeOther && c.NativeType != "") {
		if c.NativeType == "" {
			e.Fail(unsupportedType(e.b.info.Name, c))
			return ""
		}
		native = c.NativeType
	}
	if c.AutoIncrement {
		native = e.b.auto.ColumnType(c, native)
	}
	return native
}

// PrimaryKeyName returns the constraint name of the table's primary key.
func PrimaryKeyName(t *model.Table) string {
	if t.PrimaryKeyName != "" {
		return t.PrimaryKeyName
	}
	return "PK_" + t.Name
}

// ForeignKeyName returns the declared name of the key or its generated name.
func ForeignKeyName(t *model.Table, fk *model.ForeignKey) string {
	if fk.Name != "" {
		return fk.Name
	}
	return "FK_" + t.Name + "_" + strings.Join(fk.LocalColumns(), "_")
}

// IndexName returns the declared name of the index or its generated name.
func IndexName(t *model.Table, idx *model.Index) string {
	if idx.Name != "" {
		return idx.Name
	}
	return "IDX_" + t.Name + "_" + strings.Join(idx.ColumnNames(), "_")
}

func pkColumnNames(t *model.Table) []string {
	var names []string
	for _, c := range t.PrimaryKeyColumns() {
		names = append(names, c.Name)
	}
	return names
}

// WriteEmbeddedPrimaryKey writes the PRIMARY KEY clause of CREATE TABLE.
func (e *Emitter) WriteEmbeddedPrimaryKey(t *model.Table) {
	if h := e.b.hooks.WriteEmbeddedPrimaryKey; h != nil {
		h(e, t)
		return
	}
	e.Print("PRIMARY KEY (", e.Idents(pkColumnNames(t)), ")")
}

func (e *Emitter) writeExternalPrimaryKey(t *model.Table) {
	e.Statement("ALTER TABLE ", e.TableName(t), " ADD CONSTRAINT ", e.Ident(PrimaryKeyName(t)),
		" PRIMARY KEY (", e.Idents(pkColumnNames(t)), ")")
}

func (e *Emitter) indexColumns(idx *model.Index) string {
	parts := make([]string, len(idx.Columns))
	for i, c := range idx.Columns {
		parts[i] = e.Ident(c.Name)
		if c.Size > 0 && e.b.info.IndexColumnSizeSupported {
			parts[i] += "(" + strconv.Itoa(c.Size) + ")"
		}
	}
	return strings.Join(parts, ", ")
}

func (e *Emitter) indexSupported(t *model.Table, idx *model.Index) bool {
	if idx.Unique || e.b.info.SupportsNonUniqueIndices {
		return true
	}
	e.Unsupported(t.Name, IndexName(t, idx), "non-unique index %s on %s", IndexName(t, idx), t.Name)
	return false
}

// CreateIndex emits CREATE [UNIQUE] INDEX for the index.
func (e *Emitter) CreateIndex(t *model.Table, idx *model.Index) {
	if !e.indexSupported(t, idx) {
		return
	}
	e.Print("CREATE ")
	if idx.Unique {
		e.Print("UNIQUE ")
	}
	e.Statement("INDEX ", e.Ident(IndexName(t, idx)), " ON ", e.TableName(t), " (", e.indexColumns(idx), ")")
}

func (e *Emitter) writeEmbeddedIndex(t *model.Table, idx *model.Index) {
	if idx.Unique {
		e.Print("UNIQUE ")
	}
	e.Print("INDEX ", e.Ident(IndexName(t, idx)), " (", e.indexColumns(idx), ")")
}

// DropIndex emits the statement removing the index.
func (e *Emitter) DropIndex(t *model.Table, idx *model.Index) {
	if h := e.b.hooks.DropIndex; h != nil {
		h(e, t, idx)
		return
	}
	e.Statement("DROP INDEX ", e.Ident(IndexName(t, idx)))
}

func (e *Emitter) foreignKeySupported(t *model.Table, fk *model.ForeignKey) bool {
	if e.b.info.ForeignKeysSupported {
		return true
	}
	e.Unsupported(t.Name, ForeignKeyName(t, fk), "foreign key %s on %s", ForeignKeyName(t, fk), t.Name)
	return false
}

func (e *Emitter) writeForeignKeyBody(t *model.Table, fk *model.ForeignKey) {
	info := e.b.info
	e.Print("CONSTRAINT ", e.Ident(ForeignKeyName(t, fk)),
		" FOREIGN KEY (", e.Idents(fk.LocalColumns()), ")",
		" REFERENCES ", e.Ident(fk.ForeignTable), " (", e.Idents(fk.ForeignColumns()), ")")
	if fk.OnDelete != model.ActionNone {
		if info.SupportsOnDelete(fk.OnDelete) {
			e.Print(" ON DELETE ", fk.OnDelete.SQL())
		} else {
			e.Unsupported(t.Name, ForeignKeyName(t, fk), "ON DELETE %s", fk.OnDelete.SQL())
		}
	}
	if fk.OnUpdate != model.ActionNone {
		if info.SupportsOnUpdate(fk.OnUpdate) {
			e.Print(" ON UPDATE ", fk.OnUpdate.SQL())
		} else {
			e.Unsupported(t.Name, ForeignKeyName(t, fk), "ON UPDATE %s", fk.OnUpdate.SQL())
		}
	}
}

func (e *Emitter) writeEmbeddedForeignKey(t *model.Table, fk *model.ForeignKey) {
	e.writeForeignKeyBody(t, fk)
}

// WriteExternalForeignKey emits ALTER TABLE ... ADD CONSTRAINT for the key.
func (e *Emitter) WriteExternalForeignKey(t *model.Table, fk *model.ForeignKey) {
	if !e.foreignKeySupported(t, fk) {
		return
	}
	if !e.b.info.AlterAddForeignKeySupported {
		e.Unsupported(t.Name, ForeignKeyName(t, fk), "adding foreign key %s to existing table %s", ForeignKeyName(t, fk), t.Name)
		return
	}
	if h := e.b.hooks.WriteExternalForeignKey; h != nil {
		h(e, t, fk)
		return
	}
	e.Print("ALTER TABLE ", e.TableName(t), " ADD ")
	e.writeForeignKeyBody(t, fk)
	e.EndStatement()
}

// DropForeignKey emits the statement removing the key.
func (e *Emitter) DropForeignKey(t *model.Table, fk *model.ForeignKey) {
	if !e.b.info.ForeignKeysSupported {
		return
	}
	if h := e.b.hooks.DropForeignKey; h != nil {
		h(e, t, fk)
		return
	}
	e.Statement("ALTER TABLE ", e.TableName(t), " DROP CONSTRAINT ", e.Ident(ForeignKeyName(t, fk)))
}

func (e *Emitter) dropTable(t *model.Table) {
	cols := t.AutoIncrementColumns()
	for i := len(cols) - 1; i >= 0; i-- {
		e.b.auto.DropAuxiliary(e, t, cols[i])
	}
	e.DropTableStatement(t)
}

// DropTableStatement emits DROP TABLE for the table.
func (e *Emitter) DropTableStatement(t *model.Table) {
	if h := e.b.hooks.DropTable; h != nil {
		h(e, t)
		return
	}
	e.Statement("DROP TABLE ", e.TableName(t))
}

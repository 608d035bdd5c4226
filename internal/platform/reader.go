package platform

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/tordrt/ddlkit/internal/ddlerr"
	"github.com/tordrt/ddlkit/internal/metadata"
	"github.com/tordrt/ddlkit/internal/model"
)

// ReaderHooks adapt model reading to the naming conventions and metadata gaps
// of a dialect. Nil predicates select the generic behavior.
type ReaderHooks struct {
	DefaultCatalogPattern string
	DefaultSchemaPattern  string
	DefaultTableTypes     []string

	// IsInternalPrimaryKeyIndex reports whether an index covering exactly the
	// primary key columns was created by the database to back the key.
	IsInternalPrimaryKeyIndex func(t *model.Table, idx *model.Index) bool
	// IsInternalForeignKeyIndex is the same for an index covering exactly the
	// local columns of a foreign key.
	IsInternalForeignKeyIndex func(t *model.Table, fk *model.ForeignKey, idx *model.Index) bool

	SkipTable    func(row metadata.TableRow) bool
	AdjustColumn func(t *model.Table, c *model.Column)
	AdjustTable  func(t *model.Table)
}

// ReadOptions select what part of the database is read. Empty fields fall
// back to the dialect defaults.
type ReadOptions struct {
	Name       string
	Catalog    string
	Schema     string
	TableTypes []string
}

// Reader builds models from database metadata. It never writes to the database.
type Reader struct {
	info   Info
	types  *TypeMap
	hooks  ReaderHooks
	logger *slog.Logger
}

// NewReader returns a reader for the dialect.
func NewReader(info Info, types *TypeMap, hooks ReaderHooks, logger *slog.Logger) *Reader {
	if types == nil {
		types = NewTypeMap()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Reader{info: info, types: types, hooks: hooks, logger: logger}
}

type readRun struct {
	r        *Reader
	md       metadata.MetaData
	typeInfo map[string]metadata.TypeInfoRow
	warnings []ddlerr.Warning
}

// Read reconstructs the model of the tables visible through md.
func (r *Reader) Read(ctx context.Context, md metadata.MetaData, opts ReadOptions) (*model.Database, []ddlerr.Warning, error) {
	catalog := opts.Catalog
	if catalog == "" {
		catalog = r.hooks.DefaultCatalogPattern
	}
	schema := opts.Schema
	if schema == "" {
		schema = r.hooks.DefaultSchemaPattern
	}
	types := opts.TableTypes
	if len(types) == 0 {
		types = r.hooks.DefaultTableTypes
	}
	if len(types) == 0 {
		types = []string{"TABLE"}
	}

	run := &readRun{r: r, md: md, typeInfo: make(map[string]metadata.TypeInfoRow)}
	typeRows, err := md.TypeInfo(ctx)
	if err != nil {
		return nil, nil, &ddlerr.IntrospectionError{Op: "type info", Err: err}
	}
	for _, row := range typeRows {
		run.typeInfo[strings.ToUpper(row.TypeName)] = row
	}

	tableRows, err := md.Tables(ctx, catalog, schema, types)
	if err != nil {
		return nil, nil, &ddlerr.IntrospectionError{Op: "tables", Err: err}
	}

	db := &model.Database{Name: opts.Name}
	for _, row := range tableRows {
		if r.hooks.SkipTable != nil && r.hooks.SkipTable(row) {
			continue
		}
		t, err := run.readTable(ctx, row)
		if err != nil {
			return nil, nil, err
		}
		db.AddTable(t)
	}
	run.resolveForeignKeys(db)

	r.logger.Debug("read model",
		slog.String("dialect", r.info.Name),
		slog.Int("tables", len(db.Tables)),
		slog.Int("warnings", len(run.warnings)))
	return db, run.warnings, nil
}

func (run *readRun) readTable(ctx context.Context, row metadata.TableRow) (*model.Table, error) {
	r := run.r
	t := &model.Table{
		Name:        row.Name,
		Schema:      row.Schema,
		Catalog:     row.Catalog,
		Description: row.Remarks,
		Type:        row.Type,
	}

	columns, err := run.md.Columns(ctx, row.Catalog, row.Schema, row.Name)
	if err != nil {
		return nil, &ddlerr.IntrospectionError{Op: "columns", Table: row.Name, Err: err}
	}
	for _, cr := range columns {
		c := run.column(cr)
		if r.hooks.AdjustColumn != nil {
			r.hooks.AdjustColumn(t, c)
		}
		t.Columns = append(t.Columns, c)
	}

	pks, err := run.md.PrimaryKeys(ctx, row.Catalog, row.Schema, row.Name)
	if err != nil {
		return nil, &ddlerr.IntrospectionError{Op: "primary keys", Table: row.Name, Err: err}
	}
	slices.SortStableFunc(pks, func(a, b metadata.PrimaryKeyRow) int { return a.KeySeq - b.KeySeq })
	var pkColumns []string
	for _, pk := range pks {
		c := t.FindColumn(pk.Column, r.info.CaseSensitive)
		if c == nil {
			return nil, &ddlerr.IntrospectionError{Op: "primary keys", Table: row.Name,
				Err: fmt.Errorf("unknown primary key column %s", pk.Column)}
		}
		c.PrimaryKey = true
		c.Required = true
		pkColumns = append(pkColumns, c.Name)
		if pk.Name != "" {
			t.PrimaryKeyName = pk.Name
		}
	}

	imported, err := run.md.ImportedKeys(ctx, row.Catalog, row.Schema, row.Name)
	if err != nil {
		return nil, &ddlerr.IntrospectionError{Op: "imported keys", Table: row.Name, Err: err}
	}
	t.ForeignKeys = groupForeignKeys(t, imported)

	indexRows, err := run.md.IndexInfo(ctx, row.Catalog, row.Schema, row.Name)
	if err != nil {
		return nil, &ddlerr.IntrospectionError{Op: "index info", Table: row.Name, Err: err}
	}
	for _, idx := range groupIndices(indexRows) {
		if run.isInternal(t, pkColumns, idx) {
			continue
		}
		t.Indices = append(t.Indices, idx)
	}

	if r.hooks.AdjustTable != nil {
		r.hooks.AdjustTable(t)
	}
	return t, nil
}

// column translates a column row. The native type name is resolved through
// the dialect type map first, then the database type info, then the code the
// driver reported.
func (run *readRun) column(cr metadata.ColumnRow) *model.Column {
	c := &model.Column{
		Name:          cr.Name,
		Required:      !cr.Nullable,
		AutoIncrement: cr.AutoIncrement,
		Description:   cr.Remarks,
		NativeType:    cr.TypeName,
	}

	code, size, scale, ok := run.r.types.FromNative(cr.TypeName)
	if !ok {
		code = cr.DataType
		base := strings.ToUpper(strings.TrimSpace(cr.TypeName))
		if i := strings.IndexByte(base, '('); i >= 0 {
			base = strings.TrimSpace(base[:i])
		}
		if ti, found := run.typeInfo[base]; found {
			code = ti.DataType
			c.AutoIncrement = c.AutoIncrement || ti.AutoIncrement
		}
	}
	c.Type = code
	if code.HasSize() {
		if size == 0 {
			size = cr.Size
		}
		c.Size = size
	}
	if code.HasScale() {
		if scale == 0 {
			scale = cr.DecimalDigits
		}
		c.Scale = scale
	}
	if cr.Default != nil {
		c.Default = model.StringPtr(UnquoteDefault(*cr.Default))
	}
	return c
}

// groupForeignKeys folds imported key rows into keys. Rows of one key share
// its name; unnamed keys start anew at key sequence 1 or when the referenced
// table changes.
func groupForeignKeys(t *model.Table, rows []metadata.ImportedKeyRow) []*model.ForeignKey {
	type group struct {
		fk   *model.ForeignKey
		seqs []int
	}
	var groups []*group
	var current *group
	var currentRow metadata.ImportedKeyRow
	for _, row := range rows {
		start := current == nil
		if !start {
			if row.FKName != "" || currentRow.FKName != "" {
				start = row.FKName != currentRow.FKName
			} else {
				start = row.KeySeq <= 1 || row.PKTable != currentRow.PKTable
			}
		}
		if start {
			current = &group{fk: &model.ForeignKey{
				Name:         row.FKName,
				ForeignTable: row.PKTable,
				OnDelete:     row.DeleteRule,
				OnUpdate:     row.UpdateRule,
			}}
			groups = append(groups, current)
		}
		current.fk.References = append(current.fk.References, model.Reference{Local: row.FKColumn, Foreign: row.PKColumn})
		current.seqs = append(current.seqs, row.KeySeq)
		currentRow = row
	}

	fks := make([]*model.ForeignKey, 0, len(groups))
	for _, g := range groups {
		order := make([]int, len(g.seqs))
		for i := range order {
			order[i] = i
		}
		slices.SortStableFunc(order, func(a, b int) int { return g.seqs[a] - g.seqs[b] })
		refs := make([]model.Reference, len(order))
		for i, o := range order {
			refs[i] = g.fk.References[o]
		}
		g.fk.References = refs
		if g.fk.Name == "" {
			g.fk.Name = ForeignKeyName(t, g.fk)
		}
		fks = append(fks, g.fk)
	}
	return fks
}

func groupIndices(rows []metadata.IndexInfoRow) []*model.Index {
	type group struct {
		idx  *model.Index
		ords []int
	}
	var order []string
	groups := make(map[string]*group)
	for _, row := range rows {
		if row.Statistic || row.IndexName == "" || row.Column == "" {
			continue
		}
		g, ok := groups[row.IndexName]
		if !ok {
			g = &group{idx: &model.Index{Name: row.IndexName, Unique: !row.NonUnique}}
			groups[row.IndexName] = g
			order = append(order, row.IndexName)
		}
		g.idx.Columns = append(g.idx.Columns, model.IndexColumn{Name: row.Column})
		g.ords = append(g.ords, row.OrdinalPosition)
	}

	indices := make([]*model.Index, 0, len(order))
	for _, name := range order {
		g := groups[name]
		pos := make([]int, len(g.ords))
		for i := range pos {
			pos[i] = i
		}
		slices.SortStableFunc(pos, func(a, b int) int { return g.ords[a] - g.ords[b] })
		cols := make([]model.IndexColumn, len(pos))
		for i, p := range pos {
			cols[i] = g.idx.Columns[p]
		}
		g.idx.Columns = cols
		indices = append(indices, g.idx)
	}
	return indices
}

func (run *readRun) isInternal(t *model.Table, pkColumns []string, idx *model.Index) bool {
	r := run.r
	cs := r.info.CaseSensitive
	if len(pkColumns) > 0 && namesEqual(idx.ColumnNames(), pkColumns, cs) {
		internal := idx.Unique
		if r.hooks.IsInternalPrimaryKeyIndex != nil {
			internal = r.hooks.IsInternalPrimaryKeyIndex(t, idx)
		}
		if internal {
			return true
		}
	}
	if r.hooks.IsInternalForeignKeyIndex == nil {
		return false
	}
	for _, fk := range t.ForeignKeys {
		if namesEqual(idx.ColumnNames(), fk.LocalColumns(), cs) && r.hooks.IsInternalForeignKeyIndex(t, fk, idx) {
			return true
		}
	}
	return false
}

// resolveForeignKeys aligns referenced table names with the read tables and
// warns about keys whose table was not read.
func (run *readRun) resolveForeignKeys(db *model.Database) {
	cs := run.r.info.CaseSensitive
	for _, t := range db.Tables {
		for _, fk := range t.ForeignKeys {
			target := db.FindTable(fk.ForeignTable, cs)
			if target == nil {
				run.warn(ddlerr.Warning{
					Kind:    ddlerr.WarnDanglingReference,
					Table:   t.Name,
					Object:  fk.Name,
					Message: fmt.Sprintf("foreign key references unknown table %s", fk.ForeignTable),
				})
				continue
			}
			fk.ForeignTable = target.Name
		}
	}
}

func (run *readRun) warn(w ddlerr.Warning) {
	run.warnings = append(run.warnings, w)
	run.r.logger.Warn(w.Message,
		slog.String("dialect", run.r.info.Name),
		slog.String("kind", string(w.Kind)),
		slog.String("table", w.Table),
		slog.String("object", w.Object))
}

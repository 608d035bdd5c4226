package platform

import (
	"slices"
	"strings"

	"github.com/tordrt/ddlkit/internal/model"
)

// Changes is the structural difference between a live and a desired model.
type Changes struct {
	AddedTables   []*model.Table // desired tables missing from the live model
	DroppedTables []*model.Table // live tables missing from the desired model
	Tables        []*TableChanges
}

// Empty reports whether the models are structurally equal.
func (c *Changes) Empty() bool {
	return len(c.AddedTables) == 0 && len(c.DroppedTables) == 0 && len(c.Tables) == 0
}

// TableChanges is the difference of one table present in both models.
type TableChanges struct {
	Live    *model.Table
	Desired *model.Table

	AddedColumns       []*model.Column
	DroppedColumns     []*model.Column
	ModifiedColumns    []ColumnChange
	AddedIndices       []*model.Index
	DroppedIndices     []*model.Index
	AddedForeignKeys   []*model.ForeignKey
	DroppedForeignKeys []*model.ForeignKey
	PrimaryKeyChanged  bool

	// Rebuild is set when the dialect cannot apply the changes in place and
	// the table is recreated and its rows copied over.
	Rebuild bool
}

// ColumnChange pairs the live and desired definition of a modified column.
type ColumnChange struct {
	Live    *model.Column
	Desired *model.Column
}

func (tc *TableChanges) empty() bool {
	return len(tc.AddedColumns) == 0 && len(tc.DroppedColumns) == 0 && len(tc.ModifiedColumns) == 0 &&
		len(tc.AddedIndices) == 0 && len(tc.DroppedIndices) == 0 &&
		len(tc.AddedForeignKeys) == 0 && len(tc.DroppedForeignKeys) == 0 && !tc.PrimaryKeyChanged
}

// Compare computes the changes turning live into desired. Tables and columns
// are matched by name, foreign keys and indices by structure.
func (b *Builder) Compare(live, desired *model.Database) *Changes {
	cs := b.info.CaseSensitive
	changes := &Changes{}

	for _, dt := range desired.Tables {
		lt := live.FindTable(dt.Name, cs)
		if lt == nil {
			changes.AddedTables = append(changes.AddedTables, dt)
			continue
		}
		if tc := b.compareTable(lt, dt); !tc.empty() {
			changes.Tables = append(changes.Tables, tc)
		}
	}
	for _, lt := range live.Tables {
		if desired.FindTable(lt.Name, cs) == nil {
			changes.DroppedTables = append(changes.DroppedTables, lt)
		}
	}
	slices.SortStableFunc(changes.Tables, func(a, b *TableChanges) int {
		return compareNames(a.Desired.Name, b.Desired.Name)
	})
	return changes
}

func compareNames(a, b string) int {
	if c := strings.Compare(strings.ToUpper(a), strings.ToUpper(b)); c != 0 {
		return c
	}
	return strings.Compare(a, b)
}

func (b *Builder) compareTable(live, desired *model.Table) *TableChanges {
	info := b.info
	cs := info.CaseSensitive
	tc := &TableChanges{Live: live, Desired: desired}

	for _, dc := range desired.Columns {
		lc := live.FindColumn(dc.Name, cs)
		switch {
		case lc == nil:
			tc.AddedColumns = append(tc.AddedColumns, dc)
		case !b.columnsEqual(lc, dc):
			tc.ModifiedColumns = append(tc.ModifiedColumns, ColumnChange{Live: lc, Desired: dc})
		}
	}
	for _, lc := range live.Columns {
		if desired.FindColumn(lc.Name, cs) == nil {
			tc.DroppedColumns = append(tc.DroppedColumns, lc)
		}
	}

	tc.PrimaryKeyChanged = !namesEqual(pkColumnNames(live), pkColumnNames(desired), cs)

	for _, idx := range desired.Indices {
		if !slices.ContainsFunc(live.Indices, func(l *model.Index) bool { return indicesEqual(l, idx, cs) }) {
			tc.AddedIndices = append(tc.AddedIndices, idx)
		}
	}
	for _, idx := range live.Indices {
		if !slices.ContainsFunc(desired.Indices, func(d *model.Index) bool { return indicesEqual(idx, d, cs) }) {
			tc.DroppedIndices = append(tc.DroppedIndices, idx)
		}
	}
	for _, fk := range desired.ForeignKeys {
		if !slices.ContainsFunc(live.ForeignKeys, func(l *model.ForeignKey) bool { return foreignKeysEqual(l, fk, cs) }) {
			tc.AddedForeignKeys = append(tc.AddedForeignKeys, fk)
		}
	}
	for _, fk := range live.ForeignKeys {
		if !slices.ContainsFunc(desired.ForeignKeys, func(d *model.ForeignKey) bool { return foreignKeysEqual(fk, d, cs) }) {
			tc.DroppedForeignKeys = append(tc.DroppedForeignKeys, fk)
		}
	}

	tc.Rebuild = b.needsRebuild(tc)
	return tc
}

func (b *Builder) needsRebuild(tc *TableChanges) bool {
	info := b.info
	if tc.PrimaryKeyChanged {
		return true
	}
	if len(tc.DroppedColumns) > 0 && !info.SupportsAlterForDrop {
		return true
	}
	if len(tc.ModifiedColumns) > 0 && !info.SupportsAlterColumn {
		return true
	}
	for _, m := range tc.ModifiedColumns {
		if m.Live.AutoIncrement != m.Desired.AutoIncrement {
			return true
		}
	}
	for _, c := range tc.AddedColumns {
		if c.Required && c.Default != nil && !info.SupportsAddColumnDefault {
			return true
		}
	}
	if info.ForeignKeysSupported && !info.AlterAddForeignKeySupported &&
		(len(tc.AddedForeignKeys) > 0 || len(tc.DroppedForeignKeys) > 0) {
		return true
	}
	return false
}

// nativeType is the spelling used to compare column types, so that aliases of
// the same native type compare equal.
func (b *Builder) nativeType(c *model.Column) string {
	size := c.Size
	if size == 0 && c.Type.HasSize() {
		size = b.info.DefaultSizeFor(c.Type)
	}
	native, ok := b.types.ToNative(c.Type, size, c.Scale)
	if !ok || c.Type == model.TypeOther {
		native = c.NativeType
	}
	return strings.ToUpper(native)
}

func (b *Builder) columnsEqual(live, desired *model.Column) bool {
	if b.nativeType(live) != b.nativeType(desired) {
		return false
	}
	if live.Required != desired.Required || live.AutoIncrement != desired.AutoIncrement {
		return false
	}
	if desired.AutoIncrement {
		return true
	}
	switch {
	case live.Default == nil && desired.Default == nil:
		return true
	case live.Default == nil || desired.Default == nil:
		return false
	}
	return FormatLiteral(b.info, desired.Type, *live.Default) == FormatLiteral(b.info, desired.Type, *desired.Default)
}

func namesEqual(a, b []string, caseSensitive bool) bool {
	return slices.EqualFunc(a, b, func(x, y string) bool { return model.NamesEqual(x, y, caseSensitive) })
}

func indicesEqual(a, b *model.Index, caseSensitive bool) bool {
	if a.Unique != b.Unique {
		return false
	}
	return slices.EqualFunc(a.Columns, b.Columns, func(x, y model.IndexColumn) bool {
		return model.NamesEqual(x.Name, y.Name, caseSensitive) && x.Size == y.Size
	})
}

func foreignKeysEqual(a, b *model.ForeignKey, caseSensitive bool) bool {
	if !model.NamesEqual(a.ForeignTable, b.ForeignTable, caseSensitive) {
		return false
	}
	if a.OnDelete != b.OnDelete || a.OnUpdate != b.OnUpdate {
		return false
	}
	return slices.EqualFunc(a.References, b.References, func(x, y model.Reference) bool {
		return model.NamesEqual(x.Local, y.Local, caseSensitive) && model.NamesEqual(x.Foreign, y.Foreign, caseSensitive)
	})
}

// AlterDatabase emits the statements turning live into desired.
func (b *Builder) AlterDatabase(live, desired *model.Database) (*Script, error) {
	if err := desired.Validate(b.info.ValidateOptions()); err != nil {
		return nil, err
	}
	e := b.newEmitter(desired)
	e.alter(live, b.Compare(live, desired))
	return e.finish()
}

// alter writes the change set in a fixed order: foreign key and index drops,
// column drops and rebuilds, column adds and modifications, index and foreign
// key adds, table drops and finally new tables.
func (e *Emitter) alter(live *model.Database, changes *Changes) {
	info := e.b.info
	cs := info.CaseSensitive
	changes = e.emittable(changes)

	rebuilt := make(map[string]*TableChanges)
	modified := make(map[string]bool) // "table\x00column" of columns altered in place
	for _, tc := range changes.Tables {
		if tc.Rebuild {
			rebuilt[foldName(tc.Live.Name, cs)] = tc
			continue
		}
		for _, m := range tc.ModifiedColumns {
			modified[foldName(tc.Live.Name, cs)+"\x00"+foldName(m.Live.Name, cs)] = true
		}
	}
	touches := func(t *model.Table, fk *model.ForeignKey) bool {
		if _, ok := rebuilt[foldName(t.Name, cs)]; ok {
			return true
		}
		if _, ok := rebuilt[foldName(fk.ForeignTable, cs)]; ok {
			return true
		}
		for _, r := range fk.References {
			if modified[foldName(t.Name, cs)+"\x00"+foldName(r.Local, cs)] ||
				modified[foldName(fk.ForeignTable, cs)+"\x00"+foldName(r.Foreign, cs)] {
				return true
			}
		}
		return false
	}
	canAlterForeignKeys := info.ForeignKeysSupported && info.AlterAddForeignKeySupported

	// 1. foreign keys that disappear, change, or sit on rebuilt tables or modified columns
	var dropFKs []tableFK
	if canAlterForeignKeys {
		for _, lt := range live.Tables {
			tc := changesFor(changes, lt)
			for _, fk := range lt.ForeignKeys {
				if (tc != nil && slices.Contains(tc.DroppedForeignKeys, fk)) || touches(lt, fk) {
					dropFKs = append(dropFKs, tableFK{lt, fk})
				}
			}
		}
	}
	sortTableFKs(dropFKs)
	dropped := make(map[*model.ForeignKey]bool)
	for _, d := range dropFKs {
		e.DropForeignKey(d.table, d.fk)
		dropped[d.fk] = true
	}

	// 2. indices that disappear, change, or belong to rebuilt tables
	var dropIdx []tableIndex
	for _, tc := range changes.Tables {
		indices := tc.DroppedIndices
		if tc.Rebuild {
			indices = tc.Live.Indices
		}
		for _, idx := range indices {
			dropIdx = append(dropIdx, tableIndex{tc.Live, idx})
		}
	}
	sortTableIndices(dropIdx)
	for _, d := range dropIdx {
		e.DropIndex(d.table, d.idx)
	}

	// 3. column drops and rebuilds
	for _, tc := range changes.Tables {
		if tc.Rebuild {
			e.rebuildTable(tc)
			continue
		}
		for _, c := range tc.DroppedColumns {
			if c.AutoIncrement {
				e.b.auto.DropAuxiliary(e, tc.Live, c)
			}
			e.DropColumn(tc.Live, c)
		}
	}

	// 4. column adds
	for _, tc := range changes.Tables {
		if tc.Rebuild {
			continue
		}
		for _, c := range tc.AddedColumns {
			e.AddColumn(tc.Desired, c)
			if c.AutoIncrement {
				e.b.auto.CreateAuxiliary(e, tc.Desired, c)
			}
		}
	}

	// 5. in-place modifications
	for _, tc := range changes.Tables {
		if tc.Rebuild {
			continue
		}
		for _, m := range tc.ModifiedColumns {
			e.ModifyColumn(tc.Desired, m.Desired)
		}
	}

	// 6. index adds
	var addIdx []tableIndex
	for _, tc := range changes.Tables {
		indices := tc.AddedIndices
		if tc.Rebuild {
			if info.IndicesEmbedded {
				continue
			}
			indices = tc.Desired.Indices
		}
		for _, idx := range indices {
			addIdx = append(addIdx, tableIndex{tc.Desired, idx})
		}
	}
	sortTableIndices(addIdx)
	for _, a := range addIdx {
		e.CreateIndex(a.table, a.idx)
	}

	// 7. foreign key adds; keys to new tables wait until those exist
	var addFKs, laterFKs []tableFK
	if canAlterForeignKeys {
		for _, dt := range e.db.Tables {
			lt := live.FindTable(dt.Name, cs)
			if lt == nil {
				continue
			}
			tc := changesFor(changes, lt)
			for _, fk := range dt.ForeignKeys {
				added := tc != nil && slices.Contains(tc.AddedForeignKeys, fk)
				readded := !added && slices.ContainsFunc(dropFKs, func(d tableFK) bool {
					return d.table == lt && foreignKeysEqual(d.fk, fk, cs)
				})
				if !added && !readded {
					continue
				}
				if live.FindTable(fk.ForeignTable, cs) == nil {
					laterFKs = append(laterFKs, tableFK{dt, fk})
				} else {
					addFKs = append(addFKs, tableFK{dt, fk})
				}
			}
		}
	}
	sortTableFKs(addFKs)
	for _, a := range addFKs {
		e.WriteExternalForeignKey(a.table, a.fk)
		e.Commit()
	}

	// 8. tables that disappear
	if len(changes.DroppedTables) > 0 {
		plan := planCreation(changes.DroppedTables, info)
		if canAlterForeignKeys {
			for _, t := range plan.reversed() {
				for _, fk := range t.ForeignKeys {
					if !dropped[fk] {
						e.DropForeignKey(t, fk)
					}
				}
			}
		}
		for _, t := range plan.reversed() {
			e.dropTable(t)
		}
		e.Commit()
	}

	// 9. new tables
	if len(changes.AddedTables) > 0 {
		e.createTables(changes.AddedTables)
	}
	sortTableFKs(laterFKs)
	for _, a := range laterFKs {
		e.WriteExternalForeignKey(a.table, a.fk)
		e.Commit()
	}
}

// emittable drops the tables whose changes need a rebuild the dialect cannot
// express, reporting each of them once. Nothing is emitted for such a table.
func (e *Emitter) emittable(changes *Changes) *Changes {
	if e.b.info.SupportsRenameTable {
		return changes
	}
	out := *changes
	out.Tables = nil
	for _, tc := range changes.Tables {
		if tc.Rebuild {
			e.Unsupported(tc.Live.Name, "", "rebuilding table %s without renaming tables", tc.Live.Name)
			continue
		}
		out.Tables = append(out.Tables, tc)
	}
	return &out
}

// rebuildTable recreates a table under its desired definition and copies the
// rows of the columns both definitions share.
func (e *Emitter) rebuildTable(tc *TableChanges) {
	if h := e.b.hooks.WrapRebuild; h != nil {
		h(e, tc.Desired, func() { e.rebuildTableBody(tc) })
		return
	}
	e.rebuildTableBody(tc)
}

func (e *Emitter) rebuildTableBody(tc *TableChanges) {
	info := e.b.info
	for _, c := range tc.Live.AutoIncrementColumns() {
		e.b.auto.DropAuxiliary(e, tc.Live, c)
	}

	if info.RebuildIntoNewTable {
		// the live table keeps its name until it is dropped, so references
		// from other tables are never rewritten to a temporary name
		staged := stagedCopy(tc.Desired)
		e.createRebuilt(staged)
		e.copyRows(tc, staged.Name, tc.Live.Name)
		e.DropTableStatement(tc.Live)
		e.RenameTable(staged.Name, tc.Desired.Name)
		e.Commit()
		e.createRebuiltAuxiliaries(tc.Desired)
		return
	}

	old := tc.Live.Clone()
	old.Name = tc.Live.Name + "_"
	e.RenameTable(tc.Live.Name, old.Name)
	e.createRebuilt(tc.Desired)
	e.createRebuiltAuxiliaries(tc.Desired)
	e.copyRows(tc, tc.Desired.Name, old.Name)
	e.DropTableStatement(old)
	e.Commit()
}

// stagedCopy is t under a temporary name, with the constraint names it would
// get under its own name.
func stagedCopy(t *model.Table) *model.Table {
	staged := t.Clone()
	staged.Name = t.Name + "_new"
	for i, fk := range staged.ForeignKeys {
		if fk.Name == "" {
			fk.Name = ForeignKeyName(t, t.ForeignKeys[i])
		}
	}
	return staged
}

func (e *Emitter) createRebuilt(t *model.Table) {
	info := e.b.info
	external := make(map[*model.ForeignKey]bool)
	if info.AlterAddForeignKeySupported || !info.ForeignKeysEmbedded {
		for _, fk := range t.ForeignKeys {
			external[fk] = true
		}
	}
	e.writeCreateTable(t, external)
	if !info.PrimaryKeyEmbedded && t.HasPrimaryKey() {
		e.writeExternalPrimaryKey(t)
	}
	e.Commit()
}

func (e *Emitter) createRebuiltAuxiliaries(t *model.Table) {
	for _, c := range t.AutoIncrementColumns() {
		e.b.auto.CreateAuxiliary(e, t, c)
	}
}

// copyRows copies the columns the live and desired definitions share.
func (e *Emitter) copyRows(tc *TableChanges, to, from string) {
	var common []string
	for _, c := range tc.Desired.Columns {
		if tc.Live.FindColumn(c.Name, e.b.info.CaseSensitive) != nil {
			common = append(common, c.Name)
		}
	}
	if len(common) == 0 {
		return
	}
	cols := e.Idents(common)
	e.Statement("INSERT INTO ", e.Ident(to), " (", cols, ") SELECT ", cols, " FROM ", e.Ident(from))
}

func changesFor(changes *Changes, live *model.Table) *TableChanges {
	for _, tc := range changes.Tables {
		if tc.Live == live {
			return tc
		}
	}
	return nil
}

func foldName(name string, caseSensitive bool) string {
	if caseSensitive {
		return name
	}
	return strings.ToUpper(name)
}

type tableFK struct {
	table *model.Table
	fk    *model.ForeignKey
}

type tableIndex struct {
	table *model.Table
	idx   *model.Index
}

func sortTableFKs(list []tableFK) {
	slices.SortStableFunc(list, func(a, b tableFK) int {
		if c := compareNames(a.table.Name, b.table.Name); c != 0 {
			return c
		}
		return compareNames(ForeignKeyName(a.table, a.fk), ForeignKeyName(b.table, b.fk))
	})
}

func sortTableIndices(list []tableIndex) {
	slices.SortStableFunc(list, func(a, b tableIndex) int {
		if c := compareNames(a.table.Name, b.table.Name); c != 0 {
			return c
		}
		return compareNames(IndexName(a.table, a.idx), IndexName(b.table, b.idx))
	})
}

// AddColumn emits the statement adding a column to an existing table.
func (e *Emitter) AddColumn(t *model.Table, c *model.Column) {
	if h := e.b.hooks.AddColumn; h != nil {
		h(e, t, c)
		return
	}
	e.Print("ALTER TABLE ", e.TableName(t), " ADD COLUMN ")
	e.WriteColumn(t, c)
	e.EndStatement()
}

// DropColumn emits the statement removing a column.
func (e *Emitter) DropColumn(t *model.Table, c *model.Column) {
	if h := e.b.hooks.DropColumn; h != nil {
		h(e, t, c)
		return
	}
	e.Statement("ALTER TABLE ", e.TableName(t), " DROP COLUMN ", e.Ident(c.Name))
}

// ModifyColumn emits the statements changing a column to its new definition.
func (e *Emitter) ModifyColumn(t *model.Table, c *model.Column) {
	if h := e.b.hooks.ModifyColumn; h != nil {
		h(e, t, c)
		return
	}
	e.Print("ALTER TABLE ", e.TableName(t), " ALTER COLUMN ")
	e.WriteColumn(t, c)
	e.EndStatement()
}

// RenameTable emits the statement renaming a table.
func (e *Emitter) RenameTable(from, to string) {
	if h := e.b.hooks.RenameTable; h != nil {
		h(e, from, to)
		return
	}
	e.Statement("ALTER TABLE ", e.Ident(from), " RENAME TO ", e.Ident(to))
}

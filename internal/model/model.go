// Package model is the vendor-neutral in-memory representation of a
// relational schema.
//
// The model is passive data. Foreign keys reference their target table by
// name only; resolution against the owning Database happens on demand.
package model

import "strings"

// Database is a named container of tables.
type Database struct {
	Name    string
	Version string
	Tables  []*Table
}

// Table is a named set of columns with its constraints and indices.
type Table struct {
	Name        string
	Schema      string
	Catalog     string
	Description string
	Type        string // table type as reported by metadata, e.g. "TABLE"

	Columns     []*Column
	ForeignKeys []*ForeignKey
	Indices     []*Index

	// PrimaryKeyName is the constraint name reported by the database, if any.
	PrimaryKeyName string
}

// Column is a single table column.
type Column struct {
	Name          string
	Type          TypeCode
	Size          int // 0 when unspecified
	Scale         int // 0 when unspecified
	Default       *string
	Required      bool
	PrimaryKey    bool
	AutoIncrement bool
	Description   string

	// NativeType is the spelling reported by the database, informational only.
	NativeType string
}

// Action is a referential action of a foreign key.
type Action string

const (
	ActionNone       Action = ""
	ActionCascade    Action = "cascade"
	ActionSetNull    Action = "setnull"
	ActionSetDefault Action = "setdefault"
	ActionRestrict   Action = "restrict"
)

// SQL returns the keyword form of the action.
func (a Action) SQL() string {
	switch a {
	case ActionCascade:
		return "CASCADE"
	case ActionSetNull:
		return "SET NULL"
	case ActionSetDefault:
		return "SET DEFAULT"
	case ActionRestrict:
		return "RESTRICT"
	default:
		return "NO ACTION"
	}
}

// Reference pairs a local column with the foreign column it points to.
type Reference struct {
	Local   string
	Foreign string
}

// ForeignKey imports rows of another table.
type ForeignKey struct {
	Name         string
	ForeignTable string
	References   []Reference
	OnDelete     Action
	OnUpdate     Action
}

// IndexColumn is one column of an index, optionally with a prefix size.
type IndexColumn struct {
	Name string
	Size int
}

// Index is a (possibly unique) index. Unique constraints are indices with Unique set.
type Index struct {
	Name    string
	Unique  bool
	Columns []IndexColumn
}

// NamesEqual compares two identifiers under the given case policy.
func NamesEqual(a, b string, caseSensitive bool) bool {
	if caseSensitive {
		return a == b
	}
	return strings.EqualFold(a, b)
}

// FindTable returns the table with the given name, or nil.
func (d *Database) FindTable(name string, caseSensitive bool) *Table {
	for _, t := range d.Tables {
		if NamesEqual(t.Name, name, caseSensitive) {
			return t
		}
	}
	return nil
}

// AddTable appends a table and returns it.
func (d *Database) AddTable(t *Table) *Table {
	d.Tables = append(d.Tables, t)
	return t
}

// FindColumn returns the column with the given name, or nil.
func (t *Table) FindColumn(name string, caseSensitive bool) *Column {
	for _, c := range t.Columns {
		if NamesEqual(c.Name, name, caseSensitive) {
			return c
		}
	}
	return nil
}

// ColumnIndex returns the position of the named column, or -1.
func (t *Table) ColumnIndex(name string, caseSensitive bool) int {
	for i, c := range t.Columns {
		if NamesEqual(c.Name, name, caseSensitive) {
			return i
		}
	}
	return -1
}

// FindIndex returns the index with the given name, or nil.
func (t *Table) FindIndex(name string, caseSensitive bool) *Index {
	for _, idx := range t.Indices {
		if NamesEqual(idx.Name, name, caseSensitive) {
			return idx
		}
	}
	return nil
}

// FindForeignKey returns the foreign key with the given name, or nil.
func (t *Table) FindForeignKey(name string, caseSensitive bool) *ForeignKey {
	for _, fk := range t.ForeignKeys {
		if NamesEqual(fk.Name, name, caseSensitive) {
			return fk
		}
	}
	return nil
}

// PrimaryKeyColumns returns the primary key columns in column order.
func (t *Table) PrimaryKeyColumns() []*Column {
	var pk []*Column
	for _, c := range t.Columns {
		if c.PrimaryKey {
			pk = append(pk, c)
		}
	}
	return pk
}

// HasPrimaryKey reports whether any column is part of the primary key.
func (t *Table) HasPrimaryKey() bool {
	return len(t.PrimaryKeyColumns()) > 0
}

// AutoIncrementColumns returns the auto-increment columns in column order.
func (t *Table) AutoIncrementColumns() []*Column {
	var cols []*Column
	for _, c := range t.Columns {
		if c.AutoIncrement {
			cols = append(cols, c)
		}
	}
	return cols
}

// Uniques returns the unique indices of the table.
func (t *Table) Uniques() []*Index {
	var out []*Index
	for _, idx := range t.Indices {
		if idx.Unique {
			out = append(out, idx)
		}
	}
	return out
}

// ColumnNames returns the names of the index columns in order.
func (i *Index) ColumnNames() []string {
	names := make([]string, len(i.Columns))
	for n, c := range i.Columns {
		names[n] = c.Name
	}
	return names
}

// LocalColumns returns the local column names of the key in order.
func (fk *ForeignKey) LocalColumns() []string {
	names := make([]string, len(fk.References))
	for i, r := range fk.References {
		names[i] = r.Local
	}
	return names
}

// ForeignColumns returns the referenced column names of the key in order.
func (fk *ForeignKey) ForeignColumns() []string {
	names := make([]string, len(fk.References))
	for i, r := range fk.References {
		names[i] = r.Foreign
	}
	return names
}

// StringPtr returns a pointer to s, for populating Column.Default.
func StringPtr(s string) *string {
	return &s
}

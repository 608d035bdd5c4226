package model

// Clone returns a deep copy of the database.
func (d *Database) Clone() *Database {
	out := &Database{Name: d.Name, Version: d.Version}
	for _, t := range d.Tables {
		out.Tables = append(out.Tables, t.Clone())
	}
	return out
}

// Clone returns a deep copy of the table.
func (t *Table) Clone() *Table {
	out := *t
	out.Columns = make([]*Column, len(t.Columns))
	for i, c := range t.Columns {
		out.Columns[i] = c.Clone()
	}
	out.ForeignKeys = make([]*ForeignKey, len(t.ForeignKeys))
	for i, fk := range t.ForeignKeys {
		cp := *fk
		cp.References = append([]Reference(nil), fk.References...)
		out.ForeignKeys[i] = &cp
	}
	out.Indices = make([]*Index, len(t.Indices))
	for i, idx := range t.Indices {
		cp := *idx
		cp.Columns = append([]IndexColumn(nil), idx.Columns...)
		out.Indices[i] = &cp
	}
	return &out
}

// Clone returns a copy of the column.
func (c *Column) Clone() *Column {
	out := *c
	if c.Default != nil {
		out.Default = StringPtr(*c.Default)
	}
	return &out
}

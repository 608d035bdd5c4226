package model

import (
	"fmt"
	"strings"

	"github.com/tordrt/ddlkit/internal/ddlerr"
)

// ValidateOptions tunes the checks performed by Validate.
type ValidateOptions struct {
	// CaseSensitive compares names exactly instead of case-folded.
	CaseSensitive bool
	// SingleAutoIncrement rejects tables with more than one auto-increment column.
	SingleAutoIncrement bool
	// AutoIncrementNeedsKey rejects auto-increment columns that neither belong
	// to the primary key nor lead an index.
	AutoIncrementNeedsKey bool
}

// Validate checks every structural invariant of the model and reports all
// violations at once. It returns nil or a *ddlerr.ValidationError.
func (d *Database) Validate(opts ValidateOptions) error {
	v := &validator{db: d, opts: opts}
	v.run()
	if len(v.violations) == 0 {
		return nil
	}
	return &ddlerr.ValidationError{Violations: v.violations}
}

type validator struct {
	db         *Database
	opts       ValidateOptions
	violations []ddlerr.Violation
}

func (v *validator) addf(path, format string, args ...any) {
	v.violations = append(v.violations, ddlerr.Violation{Path: path, Message: fmt.Sprintf(format, args...)})
}

func (v *validator) key(name string) string {
	if v.opts.CaseSensitive {
		return name
	}
	return strings.ToUpper(name)
}

func (v *validator) run() {
	seen := make(map[string]bool)
	for i, t := range v.db.Tables {
		if t.Name == "" {
			v.addf(fmt.Sprintf("table#%d", i), "table has no name")
			continue
		}
		if seen[v.key(t.Name)] {
			v.addf(t.Name, "duplicate table name")
		}
		seen[v.key(t.Name)] = true
		v.table(t)
	}
}

func (v *validator) table(t *Table) {
	if len(t.Columns) == 0 {
		v.addf(t.Name, "table has no columns")
	}

	seen := make(map[string]bool)
	autoIncrements := 0
	for i, c := range t.Columns {
		if c.Name == "" {
			v.addf(fmt.Sprintf("%s.column#%d", t.Name, i), "column has no name")
			continue
		}
		path := t.Name + "." + c.Name
		if seen[v.key(c.Name)] {
			v.addf(path, "duplicate column name")
		}
		seen[v.key(c.Name)] = true

		if c.PrimaryKey && !c.Required {
			v.addf(path, "primary key column must be required")
		}
		if c.Scale != 0 && !c.Type.HasScale() {
			v.addf(path, "scale %d given for non-decimal type %s", c.Scale, c.Type)
		}
		if c.Size < 0 || c.Scale < 0 {
			v.addf(path, "negative size or scale")
		}
		if c.Size > 0 && c.Scale > c.Size {
			v.addf(path, "scale %d exceeds size %d", c.Scale, c.Size)
		}
		if c.AutoIncrement {
			autoIncrements++
			if !c.Type.IsNumeric() {
				v.addf(path, "auto-increment column must be numeric, got %s", c.Type)
			}
			if v.opts.AutoIncrementNeedsKey && !c.PrimaryKey && !v.leadsIndex(t, c) {
				v.addf(path, "auto-increment column must be a key column")
			}
		}
	}
	if v.opts.SingleAutoIncrement && autoIncrements > 1 {
		v.addf(t.Name, "table has %d auto-increment columns, at most one allowed", autoIncrements)
	}

	indexNames := make(map[string]bool)
	for i, idx := range t.Indices {
		path := fmt.Sprintf("%s/index#%d", t.Name, i)
		if idx.Name != "" {
			path = t.Name + "/" + idx.Name
			if indexNames[v.key(idx.Name)] {
				v.addf(path, "duplicate index name")
			}
			indexNames[v.key(idx.Name)] = true
		}
		if len(idx.Columns) == 0 {
			v.addf(path, "index has no columns")
		}
		for _, ic := range idx.Columns {
			if t.FindColumn(ic.Name, v.opts.CaseSensitive) == nil {
				v.addf(path, "index column %s does not exist", ic.Name)
			}
		}
	}

	for i, fk := range t.ForeignKeys {
		v.foreignKey(t, i, fk)
	}
}

func (v *validator) leadsIndex(t *Table, c *Column) bool {
	for _, idx := range t.Indices {
		if len(idx.Columns) > 0 && NamesEqual(idx.Columns[0].Name, c.Name, v.opts.CaseSensitive) {
			return true
		}
	}
	return false
}

func (v *validator) foreignKey(t *Table, pos int, fk *ForeignKey) {
	path := fmt.Sprintf("%s/fk#%d", t.Name, pos)
	if fk.Name != "" {
		path = t.Name + "/" + fk.Name
	}
	if len(fk.References) == 0 {
		v.addf(path, "foreign key has no references")
	}
	foreign := v.db.FindTable(fk.ForeignTable, v.opts.CaseSensitive)
	if foreign == nil {
		v.addf(path, "foreign table %s does not exist", fk.ForeignTable)
	}
	for _, ref := range fk.References {
		local := t.FindColumn(ref.Local, v.opts.CaseSensitive)
		if local == nil {
			v.addf(path, "local column %s does not exist", ref.Local)
		}
		if foreign == nil {
			continue
		}
		remote := foreign.FindColumn(ref.Foreign, v.opts.CaseSensitive)
		if remote == nil {
			v.addf(path, "foreign column %s.%s does not exist", foreign.Name, ref.Foreign)
			continue
		}
		if local != nil && !local.Type.AssignableFrom(remote.Type) {
			v.addf(path, "column %s (%s) is not compatible with %s.%s (%s)",
				local.Name, local.Type, foreign.Name, remote.Name, remote.Type)
		}
	}
}

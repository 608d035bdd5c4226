// Package formatter writes human-readable descriptions of a model: a compact
// text form, markdown, and one file per table for large schemas.
package formatter

import (
	"fmt"
	"strings"

	"github.com/tordrt/ddlkit/internal/model"
)

// columnType prefers the spelling the database reported over the abstract type.
func columnType(c *model.Column) string {
	if c.NativeType != "" {
		return c.NativeType
	}
	switch {
	case c.Size > 0 && c.Scale > 0:
		return fmt.Sprintf("%s(%d,%d)", c.Type, c.Size, c.Scale)
	case c.Size > 0:
		return fmt.Sprintf("%s(%d)", c.Type, c.Size)
	default:
		return c.Type.String()
	}
}

func primaryKeyNames(t *model.Table) []string {
	var names []string
	for _, c := range t.PrimaryKeyColumns() {
		names = append(names, c.Name)
	}
	return names
}

// isUniqueColumn reports whether c alone is covered by a unique index.
func isUniqueColumn(t *model.Table, c *model.Column) bool {
	for _, idx := range t.Uniques() {
		if len(idx.Columns) == 1 && strings.EqualFold(idx.Columns[0].Name, c.Name) {
			return true
		}
	}
	return false
}

// cardinality is 1:1 when the local columns of fk are themselves unique.
func cardinality(t *model.Table, fk *model.ForeignKey) string {
	local := fk.LocalColumns()
	if sameNames(local, primaryKeyNames(t)) {
		return "1:1"
	}
	for _, idx := range t.Uniques() {
		if sameNames(local, idx.ColumnNames()) {
			return "1:1"
		}
	}
	return "N:1"
}

func sameNames(a, b []string) bool {
	if len(a) == 0 || len(a) != len(b) {
		return false
	}
	for i := range a {
		if !strings.EqualFold(a[i], b[i]) {
			return false
		}
	}
	return true
}

// columnList renders one column bare and several in parentheses.
func columnList(names []string) string {
	if len(names) == 1 {
		return names[0]
	}
	return "(" + strings.Join(names, ", ") + ")"
}

// target renders the referenced side of fk, e.g. dept.id or dept(code, region).
func target(fk *model.ForeignKey) string {
	cols := fk.ForeignColumns()
	if len(cols) == 1 {
		return fk.ForeignTable + "." + cols[0]
	}
	return fk.ForeignTable + "(" + strings.Join(cols, ", ") + ")"
}

func actions(fk *model.ForeignKey) string {
	var parts []string
	if fk.OnDelete != model.ActionNone {
		parts = append(parts, "ON DELETE "+fk.OnDelete.SQL())
	}
	if fk.OnUpdate != model.ActionNone {
		parts = append(parts, "ON UPDATE "+fk.OnUpdate.SQL())
	}
	return strings.Join(parts, " ")
}

// IncomingRelation is a foreign key of another table pointing at a table
type IncomingRelation struct {
	SourceTable string
	ForeignKey  *model.ForeignKey
	Cardinality string
}

// findIncomingRelations finds all foreign keys pointing to table
func findIncomingRelations(db *model.Database, table string) []IncomingRelation {
	var incoming []IncomingRelation
	for _, t := range db.Tables {
		for _, fk := range t.ForeignKeys {
			if strings.EqualFold(fk.ForeignTable, table) {
				incoming = append(incoming, IncomingRelation{
					SourceTable: t.Name,
					ForeignKey:  fk,
					Cardinality: cardinality(t, fk),
				})
			}
		}
	}
	return incoming
}

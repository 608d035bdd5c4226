package formatter

import (
	"fmt"
	"io"
	"strings"

	"github.com/tordrt/ddlkit/internal/model"
)

// TextFormatter formats a model as compact text
type TextFormatter struct {
	writer io.Writer
}

// NewTextFormatter creates a new text formatter
func NewTextFormatter(w io.Writer) *TextFormatter {
	return &TextFormatter{writer: w}
}

// Format writes the model in compact text format
func (f *TextFormatter) Format(db *model.Database) error {
	for i, table := range db.Tables {
		if i > 0 {
			_, _ = fmt.Fprintln(f.writer) // Blank line between tables
		}
		f.formatTable(table)
	}
	return nil
}

func (f *TextFormatter) formatTable(table *model.Table) {
	// Table header with primary key
	pkStr := ""
	if pk := primaryKeyNames(table); len(pk) > 0 {
		pkStr = fmt.Sprintf(" (PK: %s)", strings.Join(pk, ", "))
	}
	_, _ = fmt.Fprintf(f.writer, "TABLE %s%s\n", table.Name, pkStr)
	if table.Description != "" {
		_, _ = fmt.Fprintf(f.writer, "  -- %s\n", table.Description)
	}

	for _, col := range table.Columns {
		_, _ = fmt.Fprintf(f.writer, "  %s\n", f.formatColumn(table, col))
	}

	if len(table.ForeignKeys) > 0 {
		_, _ = fmt.Fprintln(f.writer)
		_, _ = fmt.Fprintln(f.writer, "  RELATIONS:")
		for _, fk := range table.ForeignKeys {
			line := fmt.Sprintf("    %s → %s (%s)", columnList(fk.LocalColumns()), target(fk), cardinality(table, fk))
			if a := actions(fk); a != "" {
				line += " " + a
			}
			_, _ = fmt.Fprintln(f.writer, line)
		}
	}

	if len(table.Indices) > 0 {
		_, _ = fmt.Fprintln(f.writer)
		_, _ = fmt.Fprintln(f.writer, "  INDEXES:")
		for _, idx := range table.Indices {
			unique := ""
			if idx.Unique {
				unique = " UNIQUE"
			}
			_, _ = fmt.Fprintf(f.writer, "    %s (%s)%s\n", idx.Name, strings.Join(idx.ColumnNames(), ", "), unique)
		}
	}
}

func (f *TextFormatter) formatColumn(table *model.Table, col *model.Column) string {
	parts := []string{col.Name + ":", columnType(col)}

	if col.AutoIncrement {
		parts = append(parts, "AUTO_INCREMENT")
	}
	if isUniqueColumn(table, col) {
		parts = append(parts, "UNIQUE")
	}
	if col.Required {
		parts = append(parts, "NOT NULL")
	}
	if col.Default != nil {
		parts = append(parts, fmt.Sprintf("DEFAULT %s", *col.Default))
	}
	if col.Description != "" {
		parts = append(parts, "-- "+col.Description)
	}

	return strings.Join(parts, " ")
}

package formatter

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/tordrt/ddlkit/internal/model"
)

const (
	FormatMarkdown = "markdown"
	FormatText     = "text"
)

// MultiFileFormatter writes a model to multiple files in a directory
type MultiFileFormatter struct {
	OutputDir    string
	OutputFormat string // "text" or "markdown"
}

// NewMultiFileFormatter creates a new multi-file formatter
func NewMultiFileFormatter(outputDir, format string) *MultiFileFormatter {
	return &MultiFileFormatter{
		OutputDir:    outputDir,
		OutputFormat: format,
	}
}

// Format writes an overview file and one file per table
func (f *MultiFileFormatter) Format(db *model.Database) error {
	if err := os.MkdirAll(f.OutputDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if err := f.writeFile("_overview", func(w io.Writer) { f.writeOverview(w, db) }); err != nil {
		return fmt.Errorf("failed to write overview: %w", err)
	}

	for _, table := range db.Tables {
		if err := f.writeFile(table.Name, func(w io.Writer) { f.writeTable(w, db, table) }); err != nil {
			return fmt.Errorf("failed to write table file for %s: %w", table.Name, err)
		}
	}

	return nil
}

func (f *MultiFileFormatter) writeFile(name string, write func(io.Writer)) (err error) {
	file, err := os.Create(filepath.Join(f.OutputDir, name+f.getFileExtension()))
	if err != nil {
		return err
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	write(file)
	return nil
}

func (f *MultiFileFormatter) writeOverview(w io.Writer, db *model.Database) {
	if f.OutputFormat == FormatMarkdown {
		_, _ = fmt.Fprintf(w, "# Schema Overview\n\n")
		_, _ = fmt.Fprintf(w, "Each table has a corresponding file: `<table_name>%s`\n\n", f.getFileExtension())
		_, _ = fmt.Fprintf(w, "## Tables\n\n")
	} else {
		_, _ = fmt.Fprintf(w, "SCHEMA OVERVIEW\n")
		_, _ = fmt.Fprintf(w, "Each table has a file: <table_name>%s\n\n", f.getFileExtension())
	}

	// Sort tables alphabetically
	sorted := make([]*model.Table, len(db.Tables))
	copy(sorted, db.Tables)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Name < sorted[j].Name
	})

	for _, table := range sorted {
		var targets []string
		for _, fk := range table.ForeignKeys {
			targets = append(targets, fk.ForeignTable)
		}
		if f.OutputFormat == FormatMarkdown {
			_, _ = fmt.Fprintf(w, "- **%s**", table.Name)
		} else {
			_, _ = fmt.Fprintf(w, "%s", table.Name)
		}
		if len(targets) > 0 {
			_, _ = fmt.Fprintf(w, " (references: %s)", strings.Join(targets, ", "))
		}
		_, _ = fmt.Fprintln(w)
	}
}

// writeTable writes a single table followed by the keys referencing it
func (f *MultiFileFormatter) writeTable(w io.Writer, db *model.Database, table *model.Table) {
	incoming := findIncomingRelations(db, table.Name)

	if f.OutputFormat == FormatMarkdown {
		NewMarkdownFormatter(w).FormatTable(table)
		if len(incoming) > 0 {
			_, _ = fmt.Fprintf(w, "### Referenced by\n\n")
			for _, rel := range incoming {
				_, _ = fmt.Fprintf(w, "- %s.%s → %s (%s)\n",
					rel.SourceTable, columnList(rel.ForeignKey.LocalColumns()),
					columnList(rel.ForeignKey.ForeignColumns()), rel.Cardinality)
			}
			_, _ = fmt.Fprintln(w)
		}
		return
	}

	NewTextFormatter(w).formatTable(table)
	if len(incoming) > 0 {
		_, _ = fmt.Fprintln(w)
		_, _ = fmt.Fprintln(w, "  REFERENCED BY:")
		for _, rel := range incoming {
			_, _ = fmt.Fprintf(w, "    %s.%s → %s (%s)\n",
				rel.SourceTable, columnList(rel.ForeignKey.LocalColumns()),
				columnList(rel.ForeignKey.ForeignColumns()), rel.Cardinality)
		}
	}
}

func (f *MultiFileFormatter) getFileExtension() string {
	if f.OutputFormat == FormatMarkdown {
		return ".md"
	}
	return ".txt"
}

package xmlmodel

import (
	"fmt"
	"io"
	"strconv"

	"github.com/antchfx/xmlquery"

	"github.com/tordrt/ddlkit/internal/model"
)

// Write serialises db as a descriptor that Load reads back to an equal model.
func Write(w io.Writer, db *model.Database) error {
	doc := &xmlquery.Node{Type: xmlquery.DocumentNode}
	decl := &xmlquery.Node{Type: xmlquery.DeclarationNode, Data: "xml"}
	xmlquery.AddAttr(decl, "version", "1.0")
	xmlquery.AddAttr(decl, "encoding", "UTF-8")
	xmlquery.AddChild(doc, decl)

	root := element(doc, "database")
	xmlquery.AddAttr(root, "name", db.Name)
	if db.Version != "" {
		xmlquery.AddAttr(root, "version", db.Version)
	}

	for _, t := range db.Tables {
		tn := element(root, "table")
		xmlquery.AddAttr(tn, "name", t.Name)
		optionalAttr(tn, "description", t.Description)

		for _, c := range t.Columns {
			writeColumn(element(tn, "column"), c)
		}
		for _, fk := range t.ForeignKeys {
			fn := element(tn, "foreign-key")
			xmlquery.AddAttr(fn, "foreignTable", fk.ForeignTable)
			optionalAttr(fn, "name", fk.Name)
			optionalAttr(fn, "onDelete", string(fk.OnDelete))
			optionalAttr(fn, "onUpdate", string(fk.OnUpdate))
			for _, ref := range fk.References {
				rn := element(fn, "reference")
				xmlquery.AddAttr(rn, "local", ref.Local)
				xmlquery.AddAttr(rn, "foreign", ref.Foreign)
			}
		}
		for _, idx := range t.Indices {
			kind, colKind := "index", "index-column"
			if idx.Unique {
				kind, colKind = "unique", "unique-column"
			}
			in := element(tn, kind)
			optionalAttr(in, "name", idx.Name)
			for _, col := range idx.Columns {
				cn := element(in, colKind)
				xmlquery.AddAttr(cn, "name", col.Name)
				if col.Size > 0 {
					xmlquery.AddAttr(cn, "size", strconv.Itoa(col.Size))
				}
			}
		}
	}

	if err := doc.WriteWithOptions(w, xmlquery.WithEmptyTagSupport(), xmlquery.WithIndentation("  ")); err != nil {
		return fmt.Errorf("failed to write schema: %w", err)
	}
	_, err := io.WriteString(w, "\n")
	return err
}

func writeColumn(n *xmlquery.Node, c *model.Column) {
	xmlquery.AddAttr(n, "name", c.Name)
	if c.PrimaryKey {
		xmlquery.AddAttr(n, "primaryKey", "true")
	}
	if c.Required {
		xmlquery.AddAttr(n, "required", "true")
	}
	xmlquery.AddAttr(n, "type", c.Type.String())
	switch {
	case c.Size > 0 && c.Scale > 0:
		xmlquery.AddAttr(n, "size", fmt.Sprintf("%d,%d", c.Size, c.Scale))
	case c.Size > 0:
		xmlquery.AddAttr(n, "size", strconv.Itoa(c.Size))
	}
	if c.Default != nil {
		xmlquery.AddAttr(n, "default", *c.Default)
	}
	if c.AutoIncrement {
		xmlquery.AddAttr(n, "autoIncrement", "true")
	}
	optionalAttr(n, "description", c.Description)
}

func element(parent *xmlquery.Node, name string) *xmlquery.Node {
	n := &xmlquery.Node{Type: xmlquery.ElementNode, Data: name}
	xmlquery.AddChild(parent, n)
	return n
}

func optionalAttr(n *xmlquery.Node, name, value string) {
	if value != "" {
		xmlquery.AddAttr(n, name, value)
	}
}

// Package xmlmodel reads and writes the XML schema descriptor:
//
//	<database name="company">
//	  <table name="person">
//	    <column name="id" type="INTEGER" primaryKey="true" autoIncrement="true"/>
//	    <column name="name" type="VARCHAR" size="64" required="true" default="unknown"/>
//	    <foreign-key foreignTable="dept" onDelete="cascade">
//	      <reference local="dept_id" foreign="id"/>
//	    </foreign-key>
//	    <index name="IDX_person_name"><index-column name="name"/></index>
//	    <unique name="UQ_person_email"><unique-column name="email"/></unique>
//	  </table>
//	</database>
//
// Loading checks the descriptor syntax only; model invariants are checked by
// model.Database.Validate.
package xmlmodel

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/antchfx/xmlquery"
	"github.com/antchfx/xpath"

	"github.com/tordrt/ddlkit/internal/model"
)

var (
	databaseExpr   = xpath.MustCompile("/database")
	tableExpr      = xpath.MustCompile("table")
	columnExpr     = xpath.MustCompile("column")
	foreignKeyExpr = xpath.MustCompile("foreign-key")
	referenceExpr  = xpath.MustCompile("reference")
	indexExpr      = xpath.MustCompile("index")
	indexColExpr   = xpath.MustCompile("index-column")
	uniqueExpr     = xpath.MustCompile("unique")
	uniqueColExpr  = xpath.MustCompile("unique-column")
)

// LoadFile loads the descriptor stored at path.
func LoadFile(path string) (*model.Database, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open schema file: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// Load parses a descriptor into a model.
func Load(r io.Reader) (*model.Database, error) {
	doc, err := xmlquery.ParseWithOptions(r, xmlquery.ParserOptions{WithLineNumbers: true})
	if err != nil {
		return nil, fmt.Errorf("failed to parse schema: %w", err)
	}
	root := xmlquery.QuerySelector(doc, databaseExpr)
	if root == nil {
		return nil, fmt.Errorf("failed to parse schema: no <database> root element")
	}

	db := &model.Database{
		Name:    root.SelectAttr("name"),
		Version: root.SelectAttr("version"),
	}
	for _, tn := range xmlquery.QuerySelectorAll(root, tableExpr) {
		t, err := loadTable(tn)
		if err != nil {
			return nil, err
		}
		db.Tables = append(db.Tables, t)
	}
	return db, nil
}

// descriptorError locates a problem in the source document.
func descriptorError(n *xmlquery.Node, format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	if n.LineNumber > 0 {
		return fmt.Errorf("line %d: <%s>: %s", n.LineNumber, n.Data, msg)
	}
	return fmt.Errorf("<%s>: %s", n.Data, msg)
}

func loadTable(n *xmlquery.Node) (*model.Table, error) {
	t := &model.Table{
		Name:        n.SelectAttr("name"),
		Description: n.SelectAttr("description"),
	}
	if t.Name == "" {
		return nil, descriptorError(n, "missing name")
	}

	for _, cn := range xmlquery.QuerySelectorAll(n, columnExpr) {
		c, err := loadColumn(cn)
		if err != nil {
			return nil, err
		}
		t.Columns = append(t.Columns, c)
	}

	for _, fn := range xmlquery.QuerySelectorAll(n, foreignKeyExpr) {
		fk, err := loadForeignKey(fn)
		if err != nil {
			return nil, err
		}
		t.ForeignKeys = append(t.ForeignKeys, fk)
	}

	for _, in := range xmlquery.QuerySelectorAll(n, indexExpr) {
		idx, err := loadIndex(in, indexColExpr, false)
		if err != nil {
			return nil, err
		}
		t.Indices = append(t.Indices, idx)
	}
	for _, un := range xmlquery.QuerySelectorAll(n, uniqueExpr) {
		idx, err := loadIndex(un, uniqueColExpr, true)
		if err != nil {
			return nil, err
		}
		t.Indices = append(t.Indices, idx)
	}
	return t, nil
}

func loadColumn(n *xmlquery.Node) (*model.Column, error) {
	c := &model.Column{
		Name:        n.SelectAttr("name"),
		Description: n.SelectAttr("description"),
	}
	if c.Name == "" {
		return nil, descriptorError(n, "missing name")
	}

	typeName := n.SelectAttr("type")
	if typeName == "" {
		typeName = "VARCHAR"
	}
	code, err := model.ParseTypeCode(typeName)
	if err != nil {
		return nil, descriptorError(n, "column %s: %v", c.Name, err)
	}
	c.Type = code

	// size is "<size>" or "<precision>,<scale>"
	if size := n.SelectAttr("size"); size != "" {
		sizePart, scalePart, hasScale := strings.Cut(size, ",")
		if c.Size, err = strconv.Atoi(strings.TrimSpace(sizePart)); err != nil {
			return nil, descriptorError(n, "column %s: invalid size %q", c.Name, size)
		}
		if hasScale {
			if c.Scale, err = strconv.Atoi(strings.TrimSpace(scalePart)); err != nil {
				return nil, descriptorError(n, "column %s: invalid size %q", c.Name, size)
			}
		}
	}
	if scale := n.SelectAttr("scale"); scale != "" {
		if c.Scale, err = strconv.Atoi(scale); err != nil {
			return nil, descriptorError(n, "column %s: invalid scale %q", c.Name, scale)
		}
	}

	if c.PrimaryKey, err = boolAttr(n, "primaryKey"); err != nil {
		return nil, err
	}
	if c.Required, err = boolAttr(n, "required"); err != nil {
		return nil, err
	}
	if c.AutoIncrement, err = boolAttr(n, "autoIncrement"); err != nil {
		return nil, err
	}
	if n.HasAttr("default") {
		c.Default = model.StringPtr(n.SelectAttr("default"))
	}
	return c, nil
}

func boolAttr(n *xmlquery.Node, name string) (bool, error) {
	v := n.SelectAttr(name)
	if v == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, descriptorError(n, "invalid %s %q", name, v)
	}
	return b, nil
}

func loadForeignKey(n *xmlquery.Node) (*model.ForeignKey, error) {
	fk := &model.ForeignKey{
		Name:         n.SelectAttr("name"),
		ForeignTable: n.SelectAttr("foreignTable"),
	}
	if fk.ForeignTable == "" {
		return nil, descriptorError(n, "missing foreignTable")
	}

	var err error
	if fk.OnDelete, err = actionAttr(n, "onDelete"); err != nil {
		return nil, err
	}
	if fk.OnUpdate, err = actionAttr(n, "onUpdate"); err != nil {
		return nil, err
	}

	for _, rn := range xmlquery.QuerySelectorAll(n, referenceExpr) {
		ref := model.Reference{Local: rn.SelectAttr("local"), Foreign: rn.SelectAttr("foreign")}
		if ref.Local == "" || ref.Foreign == "" {
			return nil, descriptorError(rn, "reference needs local and foreign")
		}
		fk.References = append(fk.References, ref)
	}
	return fk, nil
}

var actions = map[string]model.Action{
	"":           model.ActionNone,
	"none":       model.ActionNone,
	"cascade":    model.ActionCascade,
	"setnull":    model.ActionSetNull,
	"setdefault": model.ActionSetDefault,
	"restrict":   model.ActionRestrict,
}

func actionAttr(n *xmlquery.Node, name string) (model.Action, error) {
	v := n.SelectAttr(name)
	a, ok := actions[strings.ToLower(v)]
	if !ok {
		return model.ActionNone, descriptorError(n, "invalid %s %q", name, v)
	}
	return a, nil
}

func loadIndex(n *xmlquery.Node, columns *xpath.Expr, unique bool) (*model.Index, error) {
	idx := &model.Index{Name: n.SelectAttr("name"), Unique: unique}
	for _, cn := range xmlquery.QuerySelectorAll(n, columns) {
		col := model.IndexColumn{Name: cn.SelectAttr("name")}
		if col.Name == "" {
			return nil, descriptorError(cn, "missing name")
		}
		if size := cn.SelectAttr("size"); size != "" {
			var err error
			if col.Size, err = strconv.Atoi(size); err != nil {
				return nil, descriptorError(cn, "invalid size %q", size)
			}
		}
		idx.Columns = append(idx.Columns, col)
	}
	return idx, nil
}

package platform

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tordrt/ddlkit/internal/ddlerr"
	"github.com/tordrt/ddlkit/internal/metadata"
	"github.com/tordrt/ddlkit/internal/model"
)

func companyMetadata() *metadata.Memory {
	return &metadata.Memory{
		TableRows: []metadata.TableRow{
			{Name: "person", Type: "TABLE", Remarks: "people"},
			{Name: "dept", Type: "TABLE"},
			{Name: "v_person", Type: "VIEW"},
		},
		ColumnRows: []metadata.ColumnRow{
			{Table: "person", Name: "id", TypeName: "INTEGER", DataType: model.TypeInteger, Size: 10, OrdinalPosition: 1},
			{Table: "person", Name: "name", TypeName: "VARCHAR", DataType: model.TypeVarchar, Size: 64, Nullable: true, OrdinalPosition: 2, Default: model.StringPtr("'n/a'")},
			{Table: "person", Name: "dept_id", TypeName: "INTEGER", DataType: model.TypeInteger, Nullable: true, OrdinalPosition: 3},
			{Table: "person", Name: "salary", TypeName: "DECIMAL(10,2)", DataType: model.TypeDecimal, Nullable: true, OrdinalPosition: 4},
			{Table: "person", Name: "shape", TypeName: "GEOMETRY", DataType: model.TypeOther, Nullable: true, OrdinalPosition: 5},
			{Table: "dept", Name: "id", TypeName: "INT4", DataType: model.TypeInteger, OrdinalPosition: 1},
			{Table: "dept", Name: "code", TypeName: "CHAR", DataType: model.TypeChar, Size: 4, OrdinalPosition: 2},
		},
		PrimaryKeyRows: []metadata.PrimaryKeyRow{
			{Table: "person", Column: "id", KeySeq: 1, Name: "PK_PERSON"},
			{Table: "dept", Column: "code", KeySeq: 2},
			{Table: "dept", Column: "id", KeySeq: 1},
		},
		ImportedRows: []metadata.ImportedKeyRow{
			{PKTable: "DEPT", PKColumn: "id", FKTable: "person", FKColumn: "dept_id", KeySeq: 1, DeleteRule: model.ActionCascade},
		},
		IndexRows: []metadata.IndexInfoRow{
			{Table: "person", Statistic: true},
			{Table: "person", IndexName: "PERSON_PK", Column: "id", OrdinalPosition: 1},
			{Table: "person", IndexName: "IDX_NAME_DEPT", NonUnique: true, Column: "dept_id", OrdinalPosition: 2},
			{Table: "person", IndexName: "IDX_NAME_DEPT", NonUnique: true, Column: "name", OrdinalPosition: 1},
			{Table: "person", IndexName: "IDX_DEPT", NonUnique: true, Column: "dept_id", OrdinalPosition: 1},
		},
		TypeRows: []metadata.TypeInfoRow{
			{TypeName: "INT4", DataType: model.TypeInteger},
		},
	}
}

func TestReaderRead(t *testing.T) {
	r := NewReader(NewInfo("test"), nil, ReaderHooks{}, nil)

	db, warnings, err := r.Read(context.Background(), companyMetadata(), ReadOptions{Name: "company"})
	require.NoError(t, err)
	assert.Empty(t, warnings)
	assert.Equal(t, "company", db.Name)
	require.Len(t, db.Tables, 2)

	person := db.FindTable("person", false)
	require.NotNil(t, person)
	assert.Equal(t, "people", person.Description)
	assert.Equal(t, "PK_PERSON", person.PrimaryKeyName)
	require.Len(t, person.Columns, 5)

	id := person.Columns[0]
	assert.True(t, id.PrimaryKey)
	assert.True(t, id.Required)
	assert.Equal(t, 0, id.Size)

	name := person.Columns[1]
	assert.Equal(t, model.TypeVarchar, name.Type)
	assert.Equal(t, 64, name.Size)
	require.NotNil(t, name.Default)
	assert.Equal(t, "n/a", *name.Default)

	salary := person.Columns[3]
	assert.Equal(t, model.TypeDecimal, salary.Type)
	assert.Equal(t, 10, salary.Size)
	assert.Equal(t, 2, salary.Scale)

	shape := person.Columns[4]
	assert.Equal(t, model.TypeOther, shape.Type)
	assert.Equal(t, "GEOMETRY", shape.NativeType)

	require.Len(t, person.ForeignKeys, 1)
	fk := person.ForeignKeys[0]
	assert.Equal(t, "dept", fk.ForeignTable)
	assert.Equal(t, "FK_person_dept_id", fk.Name)
	assert.Equal(t, model.ActionCascade, fk.OnDelete)

	// the unique index over the primary key is internal
	require.Len(t, person.Indices, 2)
	assert.Equal(t, "IDX_NAME_DEPT", person.Indices[0].Name)
	assert.Equal(t, []string{"name", "dept_id"}, person.Indices[0].ColumnNames())
	assert.Equal(t, "IDX_DEPT", person.Indices[1].Name)

	dept := db.FindTable("dept", false)
	require.NotNil(t, dept)
	assert.Equal(t, model.TypeInteger, dept.Columns[0].Type)
	assert.Equal(t, []*model.Column{dept.Columns[0], dept.Columns[1]}, dept.PrimaryKeyColumns())
	assert.Equal(t, 4, dept.Columns[1].Size)
}

func TestReaderHooks(t *testing.T) {
	hooks := ReaderHooks{
		DefaultTableTypes: []string{"TABLE", "VIEW"},
		SkipTable:         func(row metadata.TableRow) bool { return row.Name == "dept" },
		IsInternalForeignKeyIndex: func(_ *model.Table, _ *model.ForeignKey, idx *model.Index) bool {
			return idx.Name == "IDX_DEPT"
		},
		AdjustColumn: func(_ *model.Table, c *model.Column) {
			if c.Name == "id" {
				c.AutoIncrement = true
			}
		},
	}
	r := NewReader(NewInfo("test"), nil, hooks, nil)

	db, warnings, err := r.Read(context.Background(), companyMetadata(), ReadOptions{})
	require.NoError(t, err)

	require.Len(t, db.Tables, 2)
	assert.Equal(t, "person", db.Tables[0].Name)
	assert.Equal(t, "v_person", db.Tables[1].Name)

	person := db.Tables[0]
	assert.True(t, person.Columns[0].AutoIncrement)
	require.Len(t, person.Indices, 1)
	assert.Equal(t, "IDX_NAME_DEPT", person.Indices[0].Name)

	// dept was skipped, so the key dangles
	require.Len(t, warnings, 1)
	assert.Equal(t, ddlerr.WarnDanglingReference, warnings[0].Kind)
	assert.Equal(t, "person", warnings[0].Table)
}

func TestReaderGroupsUnnamedForeignKeys(t *testing.T) {
	md := &metadata.Memory{
		TableRows: []metadata.TableRow{{Name: "line", Type: "TABLE"}, {Name: "orders", Type: "TABLE"}, {Name: "product", Type: "TABLE"}},
		ColumnRows: []metadata.ColumnRow{
			{Table: "line", Name: "order_no", TypeName: "INTEGER", OrdinalPosition: 1},
			{Table: "line", Name: "order_rev", TypeName: "INTEGER", OrdinalPosition: 2},
			{Table: "line", Name: "product_id", TypeName: "INTEGER", OrdinalPosition: 3},
		},
		ImportedRows: []metadata.ImportedKeyRow{
			{PKTable: "orders", PKColumn: "no", FKTable: "line", FKColumn: "order_no", KeySeq: 1},
			{PKTable: "orders", PKColumn: "rev", FKTable: "line", FKColumn: "order_rev", KeySeq: 2},
			{PKTable: "product", PKColumn: "id", FKTable: "line", FKColumn: "product_id", KeySeq: 1},
		},
	}

	db, _, err := NewReader(NewInfo("test"), nil, ReaderHooks{}, nil).Read(context.Background(), md, ReadOptions{})
	require.NoError(t, err)

	line := db.FindTable("line", false)
	require.Len(t, line.ForeignKeys, 2)
	assert.Equal(t, []string{"order_no", "order_rev"}, line.ForeignKeys[0].LocalColumns())
	assert.Equal(t, []string{"no", "rev"}, line.ForeignKeys[0].ForeignColumns())
	assert.Equal(t, "FK_line_order_no_order_rev", line.ForeignKeys[0].Name)
	assert.Equal(t, "product", line.ForeignKeys[1].ForeignTable)
}

func TestReaderIntrospectionFailure(t *testing.T) {
	boom := errors.New("connection reset")
	for _, op := range []string{"tables", "columns", "primary keys", "imported keys", "index info", "type info"} {
		t.Run(op, func(t *testing.T) {
			md := companyMetadata()
			md.Failures = map[string]error{op: boom}

			_, _, err := NewReader(NewInfo("test"), nil, ReaderHooks{}, nil).Read(context.Background(), md, ReadOptions{})
			require.Error(t, err)
			assert.ErrorIs(t, err, ddlerr.ErrIntrospection)
			assert.ErrorIs(t, err, boom)

			var ie *ddlerr.IntrospectionError
			require.ErrorAs(t, err, &ie)
			assert.Equal(t, op, ie.Op)
		})
	}
}

func TestReaderRoundTrip(t *testing.T) {
	b := newTestBuilder(nil)
	desired := companyModel()
	_, err := b.CreateTables(desired)
	require.NoError(t, err)

	md := memoryFromModel(desired)
	read, warnings, err := NewReader(NewInfo("test"), nil, ReaderHooks{}, nil).Read(context.Background(), md, ReadOptions{})
	require.NoError(t, err)
	assert.Empty(t, warnings)

	assert.True(t, b.Compare(read, desired).Empty(), "read model differs from the created one")
}

// memoryFromModel produces the metadata a database would report after
// running the CREATE script of db through the generic builder.
func memoryFromModel(db *model.Database) *metadata.Memory {
	md := &metadata.Memory{}
	types := NewTypeMap()
	for _, t := range db.Tables {
		md.TableRows = append(md.TableRows, metadata.TableRow{Name: t.Name, Type: "TABLE"})
		for i, c := range t.Columns {
			native, _ := types.ToNative(c.Type, c.Size, c.Scale)
			md.ColumnRows = append(md.ColumnRows, metadata.ColumnRow{
				Table: t.Name, Name: c.Name, TypeName: native, DataType: c.Type,
				Nullable: !c.Required, Default: c.Default, OrdinalPosition: i + 1,
			})
			if c.PrimaryKey {
				md.PrimaryKeyRows = append(md.PrimaryKeyRows, metadata.PrimaryKeyRow{Table: t.Name, Column: c.Name, KeySeq: 1})
				md.IndexRows = append(md.IndexRows, metadata.IndexInfoRow{Table: t.Name, IndexName: "SYS_PK_" + t.Name, Column: c.Name, OrdinalPosition: 1})
			}
		}
		for _, fk := range t.ForeignKeys {
			for i, r := range fk.References {
				md.ImportedRows = append(md.ImportedRows, metadata.ImportedKeyRow{
					PKTable: fk.ForeignTable, PKColumn: r.Foreign, FKTable: t.Name, FKColumn: r.Local, KeySeq: i + 1,
				})
			}
		}
		for _, idx := range t.Indices {
			for i, c := range idx.Columns {
				md.IndexRows = append(md.IndexRows, metadata.IndexInfoRow{
					Table: t.Name, IndexName: idx.Name, NonUnique: !idx.Unique, Column: c.Name, OrdinalPosition: i + 1,
				})
			}
		}
	}
	return md
}

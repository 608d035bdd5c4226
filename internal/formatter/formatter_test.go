package formatter

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tordrt/ddlkit/internal/model"
)

func companyModel() *model.Database {
	return &model.Database{
		Name: "company",
		Tables: []*model.Table{
			{
				Name: "person",
				Columns: []*model.Column{
					{Name: "id", Type: model.TypeInteger, PrimaryKey: true, Required: true, AutoIncrement: true},
					{Name: "email", Type: model.TypeVarchar, Size: 128, Required: true},
					{Name: "dept_id", Type: model.TypeInteger, NativeType: "int4"},
					{Name: "salary", Type: model.TypeDecimal, Size: 10, Scale: 2, Default: model.StringPtr("0")},
				},
				ForeignKeys: []*model.ForeignKey{
					{Name: "FK_person_dept", ForeignTable: "dept", OnDelete: model.ActionCascade,
						References: []model.Reference{{Local: "dept_id", Foreign: "id"}}},
				},
				Indices: []*model.Index{
					{Name: "UQ_person_email", Unique: true, Columns: []model.IndexColumn{{Name: "email"}}},
				},
			},
			{
				Name:        "dept",
				Description: "departments",
				Columns: []*model.Column{
					{Name: "id", Type: model.TypeInteger, PrimaryKey: true, Required: true},
				},
			},
		},
	}
}

func TestTextFormatter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewTextFormatter(&buf).Format(companyModel()))

	want := `TABLE person (PK: id)
  id: INTEGER AUTO_INCREMENT NOT NULL
  email: VARCHAR(128) UNIQUE NOT NULL
  dept_id: int4
  salary: DECIMAL(10,2) DEFAULT 0

  RELATIONS:
    dept_id → dept.id (N:1) ON DELETE CASCADE

  INDEXES:
    UQ_person_email (email) UNIQUE

TABLE dept (PK: id)
  -- departments
  id: INTEGER NOT NULL
`
	assert.Equal(t, want, buf.String())
}

func TestMarkdownFormatter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewMarkdownFormatter(&buf).Format(companyModel()))

	out := buf.String()
	assert.Contains(t, out, "# company\n\n")
	assert.Contains(t, out, "- **id:** INTEGER, PK, AUTO_INCREMENT, NOT NULL\n")
	assert.Contains(t, out, "- **email:** VARCHAR(128), UNIQUE, NOT NULL\n")
	assert.Contains(t, out, "- dept_id → dept.id (N:1), ON DELETE CASCADE\n")
	assert.Contains(t, out, "- UQ_person_email on (email), unique\n")
	assert.Contains(t, out, "## dept\n\ndepartments\n\n")
}

func TestCardinality(t *testing.T) {
	table := &model.Table{
		Name: "passport",
		Columns: []*model.Column{
			{Name: "person_id", Type: model.TypeInteger, PrimaryKey: true},
			{Name: "issuer_id", Type: model.TypeInteger},
		},
	}
	onPK := &model.ForeignKey{ForeignTable: "person", References: []model.Reference{{Local: "person_id", Foreign: "id"}}}
	plain := &model.ForeignKey{ForeignTable: "issuer", References: []model.Reference{{Local: "issuer_id", Foreign: "id"}}}

	assert.Equal(t, "1:1", cardinality(table, onPK))
	assert.Equal(t, "N:1", cardinality(table, plain))

	table.Indices = []*model.Index{{Unique: true, Columns: []model.IndexColumn{{Name: "issuer_id"}}}}
	assert.Equal(t, "1:1", cardinality(table, plain))
}

func TestMultiFileFormatter(t *testing.T) {
	for _, format := range []string{FormatMarkdown, FormatText} {
		t.Run(format, func(t *testing.T) {
			dir := filepath.Join(t.TempDir(), "schema")
			require.NoError(t, NewMultiFileFormatter(dir, format).Format(companyModel()))

			ext := ".txt"
			if format == FormatMarkdown {
				ext = ".md"
			}

			overview, err := os.ReadFile(filepath.Join(dir, "_overview"+ext))
			require.NoError(t, err)
			assert.Contains(t, string(overview), "person")
			assert.Contains(t, string(overview), "(references: dept)")

			dept, err := os.ReadFile(filepath.Join(dir, "dept"+ext))
			require.NoError(t, err)
			assert.Contains(t, string(dept), "person.dept_id → id (N:1)")

			_, err = os.Stat(filepath.Join(dir, "person"+ext))
			assert.NoError(t, err)
		})
	}
}

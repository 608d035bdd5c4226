package dialect

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tordrt/ddlkit/internal/metadata"
	"github.com/tordrt/ddlkit/internal/model"
	"github.com/tordrt/ddlkit/internal/platform"
)

var whitespace = regexp.MustCompile(`\s+`)

func normalized(script *platform.Script) []string {
	stmts := script.Statements()
	for i, s := range stmts {
		stmts[i] = strings.TrimSpace(whitespace.ReplaceAllString(s, " "))
	}
	return stmts
}

func companyModel() *model.Database {
	return &model.Database{
		Name: "company",
		Tables: []*model.Table{
			{
				Name: "person",
				Columns: []*model.Column{
					{Name: "id", Type: model.TypeInteger, PrimaryKey: true, Required: true},
					{Name: "name", Type: model.TypeVarchar, Size: 64, Required: true, Default: model.StringPtr("unknown")},
					{Name: "dept_id", Type: model.TypeInteger},
				},
				ForeignKeys: []*model.ForeignKey{
					{ForeignTable: "dept", References: []model.Reference{{Local: "dept_id", Foreign: "id"}}},
				},
				Indices: []*model.Index{
					{Name: "IDX_person_name", Columns: []model.IndexColumn{{Name: "name"}}},
				},
			},
			{
				Name: "dept",
				Columns: []*model.Column{
					{Name: "id", Type: model.TypeInteger, PrimaryKey: true, Required: true},
					{Name: "title", Type: model.TypeVarchar, Size: 32},
				},
			},
		},
	}
}

func TestRegistryNames(t *testing.T) {
	names := NewRegistry().Names()

	assert.Equal(t, []string{
		"axion", "cloudscape", "db2", "derby", "firebird", "hsqldb", "interbase", "maxdb",
		"mckoi", "mssql", "mysql", "oracle", "postgresql", "sapdb", "sqlite", "sybase",
	}, names)
}

func TestRegistryCreate(t *testing.T) {
	r := NewRegistry()

	p, err := r.Create("PostgreSQL", platform.WithStrict(true))
	require.NoError(t, err)
	assert.Equal(t, "PostgreSql", p.Name())
	assert.True(t, p.Info().Strict)

	_, err = r.Create("ingres")
	assert.True(t, errors.Is(err, ErrUnknownPlatform))
}

func TestRegistryRegister(t *testing.T) {
	r := NewRegistry()
	r.Register("custom", func() platform.Definition {
		def := SQLite()
		def.Info.Name = "Custom"
		return def
	})
	r.RegisterURLPrefix("custom:", "custom")

	name, ok := r.Detect("", "custom:/tmp/db")
	require.True(t, ok)
	p, err := r.Create(name)
	require.NoError(t, err)
	assert.Equal(t, "Custom", p.Name())
}

func TestRegistryDetect(t *testing.T) {
	tests := []struct {
		driver string
		url    string
		want   string
	}{
		{"", "jdbc:derby:test", "derby"},
		{"org.hsqldb.jdbcDriver", "", "hsqldb"},
		{"", "jdbc:db2j:net://localhost/test", "db2"},
		{"", "postgres://user@localhost/shop", "postgresql"},
		{"", "jdbc:jtds:sybase://localhost/shop", "sybase"},
		{"", "jdbc:jtds:sqlserver://localhost/shop", "mssql"},
		{"mysql", "root@tcp(localhost)/shop", "mysql"},
		{"org.firebirdsql.jdbc.FBDriver", "jdbc:firebirdsql:localhost:/db/shop.fdb", "firebird"},
		// the URL takes precedence over the driver
		{"org.hsqldb.jdbcDriver", "jdbc:mysql://localhost/shop", "mysql"},
	}
	r := NewRegistry()
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			got, ok := r.Detect(tt.driver, tt.url)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}

	_, ok := r.Detect("com.example.Driver", "jdbc:example:test")
	assert.False(t, ok)
}

func TestTypeMappingIsStable(t *testing.T) {
	r := NewRegistry()
	for _, name := range r.Names() {
		t.Run(name, func(t *testing.T) {
			def, err := r.Definition(name)
			require.NoError(t, err)

			for _, code := range model.AllTypeCodes {
				size := def.Info.DefaultSizeFor(code)
				native, ok := def.Types.ToNative(code, size, 0)
				if !ok {
					continue
				}
				back, backSize, backScale, ok := def.Types.FromNative(native)
				require.True(t, ok, "%s does not read back %s", name, native)
				if backSize == 0 && back.HasSize() {
					backSize = def.Info.DefaultSizeFor(back)
				}
				again, ok := def.Types.ToNative(back, backSize, backScale)
				require.True(t, ok)
				assert.Equal(t, strings.ToUpper(native), strings.ToUpper(again), "%s: %s", name, code)
			}
		})
	}
}

// internalPrimaryKeyIndex is the name each database gives the index backing
// a primary key.
var internalPrimaryKeyIndex = map[string]func(table string) string{
	"cloudscape": func(string) string { return "SQL060812080915790" },
	"db2":        func(string) string { return "SQL060812080915790" },
	"derby":      func(string) string { return "SQL060812080915790" },
	"firebird":   func(string) string { return "RDB$PRIMARY1" },
	"interbase":  func(string) string { return "RDB$PRIMARY1" },
	"hsqldb":     func(string) string { return "SYS_PK_10042" },
	"maxdb":      func(string) string { return "SYSPRIMARYKEYINDEX" },
	"sapdb":      func(string) string { return "SYSPRIMARYKEYINDEX" },
	"mssql":      func(t string) string { return "PK__" + t + "__3213E83F" },
	"mysql":      func(string) string { return "PRIMARY" },
	"oracle":     func(string) string { return "SYS_C0011" },
	"postgresql": func(t string) string { return t + "_pkey" },
	"sqlite":     func(t string) string { return "sqlite_autoindex_" + t + "_1" },
}

// reportedMetadata is what the database reports after running the CREATE
// script of db for the dialect.
func reportedMetadata(name string, def platform.Definition, db *model.Database) *metadata.Memory {
	pkIndex := internalPrimaryKeyIndex[name]
	if pkIndex == nil {
		pkIndex = func(t string) string { return "PK_" + t }
	}
	md := &metadata.Memory{}
	for _, t := range db.Tables {
		md.TableRows = append(md.TableRows, metadata.TableRow{
			Catalog: def.ReaderHooks.DefaultCatalogPattern,
			Schema:  def.ReaderHooks.DefaultSchemaPattern,
			Name:    t.Name,
			Type:    "TABLE",
		})
		for i, c := range t.Columns {
			size := c.Size
			if size == 0 {
				size = def.Info.DefaultSizeFor(c.Type)
			}
			native, _ := def.Types.ToNative(c.Type, size, c.Scale)
			md.ColumnRows = append(md.ColumnRows, metadata.ColumnRow{
				Table: t.Name, Name: c.Name, TypeName: native, DataType: c.Type, Size: size,
				Nullable: !c.Required, Default: c.Default, OrdinalPosition: i + 1,
			})
			if c.PrimaryKey {
				md.PrimaryKeyRows = append(md.PrimaryKeyRows, metadata.PrimaryKeyRow{Table: t.Name, Column: c.Name, KeySeq: 1})
				md.IndexRows = append(md.IndexRows, metadata.IndexInfoRow{Table: t.Name, IndexName: pkIndex(t.Name), Column: c.Name, OrdinalPosition: 1})
			}
		}
		for _, fk := range t.ForeignKeys {
			for i, ref := range fk.References {
				md.ImportedRows = append(md.ImportedRows, metadata.ImportedKeyRow{
					PKTable: fk.ForeignTable, PKColumn: ref.Foreign, FKTable: t.Name, FKColumn: ref.Local, KeySeq: i + 1,
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

func TestReadBackCreatedModel(t *testing.T) {
	r := NewRegistry()
	for _, name := range r.Names() {
		t.Run(name, func(t *testing.T) {
			def, err := r.Definition(name)
			require.NoError(t, err)
			p := platform.New(def)

			desired := companyModel()
			if !def.Info.ForeignKeysSupported {
				for _, tbl := range desired.Tables {
					tbl.ForeignKeys = nil
				}
			}
			script, err := p.CreateTablesSQL(desired, false)
			require.NoError(t, err)
			assert.Empty(t, script.Warnings())

			read, warnings, err := p.Reader().Read(context.Background(), reportedMetadata(name, def, desired), platform.ReadOptions{})
			require.NoError(t, err)
			assert.Empty(t, warnings)
			assert.True(t, p.Builder().Compare(read, desired).Empty(), "read model differs from the created one")
		})
	}
}

func cyclicModel() *model.Database {
	table := func(name, ref string) *model.Table {
		return &model.Table{
			Name: name,
			Columns: []*model.Column{
				{Name: "id", Type: model.TypeInteger, PrimaryKey: true, Required: true},
				{Name: ref + "_id", Type: model.TypeInteger},
			},
			ForeignKeys: []*model.ForeignKey{
				{ForeignTable: ref, References: []model.Reference{{Local: ref + "_id", Foreign: "id"}}},
			},
		}
	}
	return &model.Database{Name: "cycle", Tables: []*model.Table{table("a", "b"), table("b", "a")}}
}

func TestCreateTablesWithCycles(t *testing.T) {
	r := NewRegistry()
	for _, name := range r.Names() {
		t.Run(name, func(t *testing.T) {
			p, err := r.Create(name)
			require.NoError(t, err)

			script, err := p.CreateTablesSQL(cyclicModel(), false)
			require.NoError(t, err)
			sql := strings.Join(script.Statements(), "\n")

			if !p.Info().ForeignKeysSupported {
				assert.NotContains(t, sql, "FOREIGN KEY")
				assert.NotEmpty(t, script.Warnings())
				return
			}
			assert.Contains(t, sql, "FK_a_b_id")
			assert.Contains(t, sql, "FK_b_a_id")
			if !p.Info().AlterAddForeignKeySupported {
				return
			}
			// both tables exist before either key is added
			first := strings.Index(sql, "FOREIGN KEY")
			assert.Greater(t, first, strings.Index(sql, "CREATE TABLE b"))
		})
	}
}

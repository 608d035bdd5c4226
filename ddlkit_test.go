package ddlkit

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tordrt/ddlkit/internal/db"
	"github.com/tordrt/ddlkit/internal/ddlerr"
	"github.com/tordrt/ddlkit/internal/model"
)

const shopSchema = `<?xml version="1.0"?>
<database name="shop">
  <table name="users">
    <column name="id" type="INTEGER" primaryKey="true" required="true" autoIncrement="true"/>
    <column name="email" type="VARCHAR" size="128" required="true"/>
  </table>
  <table name="orders">
    <column name="id" type="INTEGER" primaryKey="true" required="true"/>
    <column name="user_id" type="INTEGER" required="true"/>
    <foreign-key foreignTable="users" onDelete="cascade">
      <reference local="user_id" foreign="id"/>
    </foreign-key>
    <index name="IDX_orders_user">
      <index-column name="user_id"/>
    </index>
  </table>
  <table name="schema_migrations">
    <column name="version" type="VARCHAR" size="32" primaryKey="true" required="true"/>
  </table>
</database>
`

func writeSchema(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "schema.xml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

// createDatabase creates the shop tables in a fresh SQLite file and returns its URL.
func createDatabase(t *testing.T) string {
	t.Helper()
	ctx := context.Background()
	url := "sqlite://" + filepath.Join(t.TempDir(), "shop.db")

	m, err := LoadModel(writeSchema(t, shopSchema))
	require.NoError(t, err)
	p, err := NewPlatform("sqlite", nil)
	require.NoError(t, err)

	conn, err := (&db.Connector{}).Connect(ctx, "", url, "", "")
	require.NoError(t, err)
	defer conn.Close()

	_, err = p.CreateTables(ctx, conn, m, false, false)
	require.NoError(t, err)
	return url
}

func TestPlatforms(t *testing.T) {
	names := Platforms()
	assert.Contains(t, names, "derby")
	assert.Contains(t, names, "sqlite")
	assert.Equal(t, names, NewRegistry().Names())
}

func TestLoadModelRejectsInvalidModel(t *testing.T) {
	path := writeSchema(t, `<database name="x">
  <table name="orders">
    <column name="user_id" type="INTEGER"/>
    <foreign-key foreignTable="users"><reference local="user_id" foreign="id"/></foreign-key>
  </table>
</database>`)

	_, err := LoadModel(path)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ddlerr.ErrModelInvariant))
}

func TestWriteCreateSQL(t *testing.T) {
	m, err := LoadModel(writeSchema(t, shopSchema))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteCreateSQL(&buf, "mysql", m, nil))
	out := buf.String()
	assert.Contains(t, out, "CREATE TABLE users\n(")
	assert.Contains(t, out, "AUTO_INCREMENT")
	assert.Less(t, strings.Index(out, "CREATE TABLE users\n("), strings.Index(out, "FOREIGN KEY"))

	err = WriteCreateSQL(&buf, "ingres", m, nil)
	assert.Error(t, err)
}

func TestWriteCreateSQLStrict(t *testing.T) {
	m, err := LoadModel(writeSchema(t, shopSchema))
	require.NoError(t, err)

	// Oracle has no ON UPDATE actions; ON DELETE CASCADE is fine
	var buf bytes.Buffer
	require.NoError(t, WriteCreateSQL(&buf, "oracle", m, &Options{Strict: true}))

	m.FindTable("orders", false).ForeignKeys[0].OnUpdate = model.ActionCascade
	err = WriteCreateSQL(&buf, "oracle", m, &Options{Strict: true})
	assert.True(t, errors.Is(err, ddlerr.ErrUnsupportedFeature))
}

func TestReadModel(t *testing.T) {
	ctx := context.Background()
	url := createDatabase(t)

	tests := []struct {
		name       string
		url        string
		opts       *ReadOptions
		wantTables []string
		wantErr    bool
	}{
		{
			name:       "all tables",
			url:        url,
			wantTables: []string{"orders", "schema_migrations", "users"},
		},
		{
			name:       "specific tables",
			url:        url,
			opts:       &ReadOptions{Tables: []string{"users", "orders"}},
			wantTables: []string{"orders", "users"},
		},
		{
			name:       "excluded tables",
			url:        url,
			opts:       &ReadOptions{ExcludeTables: []string{"schema_migrations"}},
			wantTables: []string{"orders", "users"},
		},
		{
			name:    "invalid URL scheme",
			url:     "invalid://test.db",
			wantErr: true,
		},
		{
			name:    "empty URL",
			url:     "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := ReadModel(ctx, tt.url, tt.opts)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)

			var names []string
			for _, table := range m.Tables {
				names = append(names, table.Name)
			}
			assert.ElementsMatch(t, tt.wantTables, names)
		})
	}
}

func TestReadModelKeepsStructure(t *testing.T) {
	m, err := ReadModel(context.Background(), createDatabase(t), nil)
	require.NoError(t, err)

	orders := m.FindTable("orders", false)
	require.NotNil(t, orders)
	require.Len(t, orders.ForeignKeys, 1)
	assert.Equal(t, "users", orders.ForeignKeys[0].ForeignTable)
	assert.Equal(t, model.ActionCascade, orders.ForeignKeys[0].OnDelete)
	require.Len(t, orders.Indices, 1)
	assert.Equal(t, "IDX_orders_user", orders.Indices[0].Name)

	users := m.FindTable("users", false)
	require.NotNil(t, users)
	assert.True(t, users.FindColumn("id", false).AutoIncrement)
}

func TestWriteAlterSQL(t *testing.T) {
	ctx := context.Background()
	url := createDatabase(t)

	desired, err := LoadModel(writeSchema(t, shopSchema))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteAlterSQL(ctx, &buf, url, desired, nil))
	assert.Empty(t, strings.TrimSpace(buf.String()))

	users := desired.FindTable("users", false)
	users.Columns = append(users.Columns, &model.Column{Name: "nickname", Type: model.TypeVarchar, Size: 32})

	buf.Reset()
	require.NoError(t, WriteAlterSQL(ctx, &buf, url, desired, nil))
	assert.Contains(t, buf.String(), "ALTER TABLE users ADD COLUMN nickname VARCHAR(32)")
}

func TestDescribeModel(t *testing.T) {
	m, err := LoadModel(writeSchema(t, shopSchema))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, DescribeModel(m, &OutputOptions{Writer: &buf}))
	assert.Contains(t, buf.String(), "## orders")

	buf.Reset()
	require.NoError(t, DescribeModel(m, &OutputOptions{Writer: &buf, Format: "text"}))
	assert.Contains(t, buf.String(), "TABLE orders (PK: id)")

	dir := filepath.Join(t.TempDir(), "docs")
	require.NoError(t, DescribeModel(m, &OutputOptions{OutputDir: dir}))
	_, err = os.Stat(filepath.Join(dir, "_overview.md"))
	assert.NoError(t, err)

	assert.Error(t, DescribeModel(m, &OutputOptions{Writer: &buf, Format: "html"}))
}

func TestNewPlatformOptions(t *testing.T) {
	p, err := NewPlatform("postgresql", &Options{CaseSensitive: true})
	require.NoError(t, err)
	assert.True(t, p.Info().CaseSensitive)

	p, err = NewPlatform("mysql", nil)
	require.NoError(t, err)
	assert.False(t, p.Info().DelimitedIdentifierMode)
}

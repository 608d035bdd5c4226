package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ulikunitz/xz"

	"github.com/tordrt/ddlkit/internal/model"
	"github.com/tordrt/ddlkit/internal/xmlmodel"
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
  </table>
</database>
`

func writeSchema(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "shop.xml")
	require.NoError(t, os.WriteFile(path, []byte(shopSchema), 0o600))
	return path
}

// execute runs the CLI with args and returns what it wrote to stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), err
}

func TestFilterTables(t *testing.T) {
	tests := []struct {
		name       string
		tables     []string
		names      []string
		keep       bool
		wantTables []string
	}{
		{
			name:       "exclude single table",
			tables:     []string{"users", "posts", "comments"},
			names:      []string{"posts"},
			wantTables: []string{"users", "comments"},
		},
		{
			name:       "exclude multiple tables",
			tables:     []string{"users", "posts", "comments", "likes"},
			names:      []string{"posts", "likes"},
			wantTables: []string{"users", "comments"},
		},
		{
			name:       "exclude non-existent table",
			tables:     []string{"users", "posts"},
			names:      []string{"products"},
			wantTables: []string{"users", "posts"},
		},
		{
			name:       "exclude all tables",
			tables:     []string{"users", "posts"},
			names:      []string{"users", "POSTS"},
			wantTables: []string{},
		},
		{
			name:       "keep named tables",
			tables:     []string{"users", "posts", "comments"},
			names:      []string{"comments", "Users"},
			keep:       true,
			wantTables: []string{"users", "comments"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &model.Database{}
			for _, name := range tt.tables {
				m.Tables = append(m.Tables, &model.Table{Name: name})
			}

			filterTables(m, tt.names, tt.keep)

			got := []string{}
			for _, table := range m.Tables {
				got = append(got, table.Name)
			}
			assert.Equal(t, tt.wantTables, got)
		})
	}
}

func TestSplitList(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"single table", "users", []string{"users"}},
		{"multiple tables", "users,posts,comments", []string{"users", "posts", "comments"}},
		{"tables with spaces", "users, posts , comments", []string{"users", "posts", "comments"}},
		{"blank entries", "users,,", []string{"users"}},
		{"empty string", "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, splitList(tt.input))
		})
	}
}

func TestPlatformsCommand(t *testing.T) {
	out, err := execute(t, "platforms")
	require.NoError(t, err)
	assert.Contains(t, out, "postgresql\n")
	assert.Contains(t, out, "firebird\n")
}

func TestSQLCommand(t *testing.T) {
	schema := writeSchema(t)

	out, err := execute(t, "sql", "--platform", "postgresql", schema)
	require.NoError(t, err)
	assert.Contains(t, out, "CREATE TABLE users")
	assert.Contains(t, out, "SERIAL")
	assert.Contains(t, out, "ON DELETE CASCADE")

	out, err = execute(t, "sql", "-p", "postgresql", "--drop", schema)
	require.NoError(t, err)
	assert.Contains(t, out, "DROP TABLE users")
	assert.NotContains(t, out, "CREATE TABLE")
}

func TestSQLCommandErrors(t *testing.T) {
	schema := writeSchema(t)

	tests := []struct {
		name string
		args []string
	}{
		{"no platform", []string{"sql", schema}},
		{"unknown platform", []string{"sql", "-p", "ingres", schema}},
		{"drop and alter", []string{"sql", "-p", "mysql", "--drop", "--alter", schema}},
		{"missing file", []string{"sql", "-p", "mysql", filepath.Join(t.TempDir(), "none.xml")}},
		{"alter without url", []string{"sql", "-p", "mysql", "--alter", schema}},
		{"bad log level", []string{"sql", "-p", "mysql", "--log-level", "loud", schema}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, tt.args...)
			assert.Error(t, err)
		})
	}
}

func TestSQLCommandCompress(t *testing.T) {
	schema := writeSchema(t)
	output := filepath.Join(t.TempDir(), "create.sql")

	_, err := execute(t, "sql", "-p", "mysql", "--compress", "-o", output, schema)
	require.NoError(t, err)

	f, err := os.Open(output + ".xz")
	require.NoError(t, err)
	defer f.Close()

	r, err := xz.NewReader(f)
	require.NoError(t, err)
	data, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Contains(t, string(data), "CREATE TABLE users")
}

func TestConfigFile(t *testing.T) {
	schema := writeSchema(t)
	cfg := filepath.Join(t.TempDir(), "ddlkit.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("platform: mysql\nbuild:\n  delimited_identifiers: true\n"), 0o600))

	out, err := execute(t, "sql", "--config", cfg, schema)
	require.NoError(t, err)
	assert.Contains(t, out, "CREATE TABLE `users`")

	// flags win over the file
	out, err = execute(t, "sql", "--config", cfg, "-p", "postgresql", schema)
	require.NoError(t, err)
	assert.Contains(t, out, `CREATE TABLE "users"`)
}

func TestSQLiteLifecycle(t *testing.T) {
	schema := writeSchema(t)
	url := "sqlite://" + filepath.Join(t.TempDir(), "shop.db")

	out, err := execute(t, "create-tables", "--url", url, schema)
	require.NoError(t, err)
	assert.Contains(t, out, "0 failed")

	out, err = execute(t, "read", "--url", url, "--name", "shop")
	require.NoError(t, err)
	read, err := xmlmodel.Load(strings.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, "shop", read.Name)
	require.NotNil(t, read.FindTable("orders", false))
	assert.Len(t, read.FindTable("orders", false).ForeignKeys, 1)

	out, err = execute(t, "read", "--url", url, "--format", "text", "--tables", "users")
	require.NoError(t, err)
	assert.Contains(t, out, "TABLE users")
	assert.NotContains(t, out, "TABLE orders")

	// nothing to change after creating the same descriptor
	out, err = execute(t, "sql", "--url", url, "--alter", schema)
	require.NoError(t, err)
	assert.Empty(t, out)

	out, err = execute(t, "drop-tables", "--url", url, schema)
	require.NoError(t, err)
	assert.Contains(t, out, "0 failed")

	out, err = execute(t, "read", "--url", url, "--format", "text")
	require.NoError(t, err)
	assert.NotContains(t, out, "TABLE users")
}

func TestReadCommandErrors(t *testing.T) {
	url := "sqlite://" + filepath.Join(t.TempDir(), "empty.db")

	tests := []struct {
		name string
		args []string
	}{
		{"invalid format", []string{"read", "--url", url, "--format", "html"}},
		{"output and output dir", []string{"read", "--url", url, "-o", "a.txt", "-d", "docs"}},
		{"xml into output dir", []string{"read", "--url", url, "-d", "docs"}},
		{"no url", []string{"read", "-p", "sqlite"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, tt.args...)
			assert.Error(t, err)
		})
	}
}

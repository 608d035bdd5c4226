//go:build integration
// +build integration

package integration

import (
	"context"
	"testing"

	"github.com/tordrt/ddlkit/internal/dialect"
	"github.com/tordrt/ddlkit/internal/model"
	"github.com/tordrt/ddlkit/internal/platform"
)

// shopModel is the schema every backend test creates, reads back and alters.
func shopModel() *model.Database {
	return &model.Database{
		Name: "shop",
		Tables: []*model.Table{
			{
				Name: "users",
				Columns: []*model.Column{
					{Name: "id", Type: model.TypeInteger, PrimaryKey: true, Required: true, AutoIncrement: true},
					{Name: "username", Type: model.TypeVarchar, Size: 64, Required: true},
					{Name: "email", Type: model.TypeVarchar, Size: 128},
					{Name: "status", Type: model.TypeVarchar, Size: 16, Default: model.StringPtr("active")},
				},
				Indices: []*model.Index{
					{Name: "UQ_users_email", Unique: true, Columns: []model.IndexColumn{{Name: "email"}}},
				},
			},
			{
				Name: "orders",
				Columns: []*model.Column{
					{Name: "id", Type: model.TypeInteger, PrimaryKey: true, Required: true},
					{Name: "user_id", Type: model.TypeInteger, Required: true},
					{Name: "total", Type: model.TypeDecimal, Size: 10, Scale: 2},
				},
				ForeignKeys: []*model.ForeignKey{
					{
						Name:         "FK_orders_user",
						ForeignTable: "users",
						References:   []model.Reference{{Local: "user_id", Foreign: "id"}},
						OnDelete:     model.ActionCascade,
					},
				},
				Indices: []*model.Index{
					{Name: "IDX_orders_user", Columns: []model.IndexColumn{{Name: "user_id"}}},
				},
			},
		},
	}
}

func newPlatform(t *testing.T, name string) *platform.Platform {
	t.Helper()
	p, err := dialect.NewRegistry().Create(name)
	if err != nil {
		t.Fatalf("Failed to create platform %s: %v", name, err)
	}
	return p
}

// runShopLifecycle creates the shop tables, checks what the reader sees,
// adds a column through the alter engine and drops everything again.
func runShopLifecycle(t *testing.T, p *platform.Platform, conn platform.Connection, opts platform.ReadOptions) {
	t.Helper()
	ctx := context.Background()
	desired := shopModel()

	// leftovers from an earlier run
	_, _ = p.DropTables(ctx, conn, desired, true)

	report, err := p.CreateTables(ctx, conn, desired, false, false)
	if err != nil {
		t.Fatalf("Failed to create tables: %v", err)
	}
	if report.Failed() {
		t.Fatalf("Create tables reported failures: %v", report.Failures)
	}
	defer func() {
		if _, err := p.DropTables(ctx, conn, shopModel(), true); err != nil {
			t.Errorf("Failed to drop tables: %v", err)
		}
	}()

	live, _, err := p.ReadModelFromDatabase(ctx, conn, opts)
	if err != nil {
		t.Fatalf("Failed to read model: %v", err)
	}

	verifyTablesExist(t, live, []string{"users", "orders"})
	users := findTable(live, "users")
	if users == nil {
		t.Fatal("Users table not found")
	}
	verifyPrimaryKey(t, users, []string{"id"})
	verifyColumns(t, users, []string{"id", "username", "email", "status"})
	verifyAutoIncrement(t, users, "id")
	verifyIndex(t, live, "users", "UQ_users_email", []string{"email"})
	verifyForeignKey(t, live, "orders", "user_id", "users")
	verifyIndex(t, live, "orders", "IDX_orders_user", []string{"user_id"})

	if changes := p.Builder().Compare(live, desired); !changes.Empty() {
		t.Errorf("Expected no changes after creating the model, got %+v", changes)
	}

	desired.FindTable("users", false).Columns = append(desired.FindTable("users", false).Columns,
		&model.Column{Name: "nickname", Type: model.TypeVarchar, Size: 32})
	report, err = p.AlterTables(ctx, conn, desired, opts, false)
	if err != nil {
		t.Fatalf("Failed to alter tables: %v", err)
	}
	if report.Failed() {
		t.Fatalf("Alter tables reported failures: %v", report.Failures)
	}

	live, _, err = p.ReadModelFromDatabase(ctx, conn, opts)
	if err != nil {
		t.Fatalf("Failed to read model after alter: %v", err)
	}
	verifyColumns(t, findTable(live, "users"), []string{"nickname"})
}

// verifyTablesExist checks that all expected tables are present in the model
func verifyTablesExist(t *testing.T, m *model.Database, expectedTables []string) {
	t.Helper()

	for _, tableName := range expectedTables {
		if findTable(m, tableName) == nil {
			t.Errorf("Expected table %s not found in model", tableName)
		}
	}
}

// verifyColumns checks that expected columns exist in a table
func verifyColumns(t *testing.T, table *model.Table, expectedColumns []string) {
	t.Helper()

	if table == nil {
		t.Fatal("Table not found")
	}
	for _, colName := range expectedColumns {
		if table.FindColumn(colName, false) == nil {
			t.Errorf("Expected column %s not found in %s table", colName, table.Name)
		}
	}
}

// verifyPrimaryKey checks that a table has the expected primary key
func verifyPrimaryKey(t *testing.T, table *model.Table, expectedPK []string) {
	t.Helper()

	pk := table.PrimaryKeyColumns()
	if len(pk) != len(expectedPK) {
		t.Errorf("Expected primary key %v, got %d columns", expectedPK, len(pk))
		return
	}
	for i, name := range expectedPK {
		if !model.NamesEqual(pk[i].Name, name, false) {
			t.Errorf("Expected primary key %v, got %s at %d", expectedPK, pk[i].Name, i)
		}
	}
}

func verifyAutoIncrement(t *testing.T, table *model.Table, columnName string) {
	t.Helper()

	col := table.FindColumn(columnName, false)
	if col == nil || !col.AutoIncrement {
		t.Errorf("Expected %s.%s to be auto-increment", table.Name, columnName)
	}
}

// verifyForeignKey checks that a foreign key relationship exists
func verifyForeignKey(t *testing.T, m *model.Database, tableName, sourceColumn, targetTable string) {
	t.Helper()

	table := findTable(m, tableName)
	if table == nil {
		t.Fatalf("Table %s not found", tableName)
	}

	for _, fk := range table.ForeignKeys {
		if !model.NamesEqual(fk.ForeignTable, targetTable, false) {
			continue
		}
		for _, ref := range fk.References {
			if model.NamesEqual(ref.Local, sourceColumn, false) {
				return
			}
		}
	}

	t.Errorf("Expected foreign key relationship from %s.%s to %s not found", tableName, sourceColumn, targetTable)
}

// verifyIndex checks that an index exists with the expected columns
func verifyIndex(t *testing.T, m *model.Database, tableName, indexName string, expectedColumns []string) {
	t.Helper()

	table := findTable(m, tableName)
	if table == nil {
		t.Fatalf("Table %s not found", tableName)
	}

	idx := table.FindIndex(indexName, false)
	if idx == nil {
		t.Errorf("Expected index %s on %s table not found", indexName, tableName)
		return
	}
	got := idx.ColumnNames()
	if len(got) != len(expectedColumns) {
		t.Errorf("Expected index %s on %v, got %v", indexName, expectedColumns, got)
		return
	}
	for i, col := range expectedColumns {
		if !model.NamesEqual(got[i], col, false) {
			t.Errorf("Expected index %s on %v, got %v", indexName, expectedColumns, got)
			return
		}
	}
}

func findTable(m *model.Database, tableName string) *model.Table {
	return m.FindTable(tableName, false)
}

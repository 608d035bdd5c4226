package dialect

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tordrt/ddlkit/internal/model"
	"github.com/tordrt/ddlkit/internal/platform"
)

func TestAutoIncrementColumnDefinitions(t *testing.T) {
	tests := []struct {
		name string
		def  func() platform.Definition
		want string
	}{
		{"derby", Derby, "CREATE TABLE person ( id INTEGER NOT NULL GENERATED BY DEFAULT AS IDENTITY, name VARCHAR(32), PRIMARY KEY (id) )"},
		{"db2", DB2, "CREATE TABLE person ( id INTEGER NOT NULL GENERATED BY DEFAULT AS IDENTITY, name VARCHAR(32), PRIMARY KEY (id) )"},
		{"mssql", MSSQL, "CREATE TABLE person ( id INTEGER NOT NULL IDENTITY(1,1), name VARCHAR(32), PRIMARY KEY (id) )"},
		{"sybase", Sybase, "CREATE TABLE person ( id INTEGER NOT NULL IDENTITY, name VARCHAR(32) NULL, PRIMARY KEY (id) )"},
		{"mckoi", McKoi, "CREATE TABLE person ( id INTEGER DEFAULT UNIQUEKEY('person') NOT NULL, name VARCHAR(32), PRIMARY KEY (id) )"},
		{"sapdb", SapDB, "CREATE TABLE person ( id INTEGER DEFAULT SERIAL(1) NOT NULL, name VARCHAR(32), PRIMARY KEY (id) )"},
		{"sqlite", SQLite, "CREATE TABLE person ( id INTEGER NOT NULL PRIMARY KEY AUTOINCREMENT, name VARCHAR(32) )"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			script, err := platform.New(tt.def()).CreateTablesSQL(autoIncrementModel(), false)
			require.NoError(t, err)
			assert.Equal(t, tt.want, normalized(script)[0])
		})
	}
}

func TestOracleSequenceAutoIncrement(t *testing.T) {
	p := platform.New(Oracle())

	script, err := p.CreateTablesSQL(autoIncrementModel(), false)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"CREATE TABLE person ( id INTEGER NOT NULL, name VARCHAR2(32), PRIMARY KEY (id) )",
		"CREATE SEQUENCE seq_person_id",
		"CREATE OR REPLACE TRIGGER trg_person_id BEFORE INSERT ON person FOR EACH ROW WHEN (new.id IS NULL) " +
			"BEGIN SELECT seq_person_id.nextval INTO :new.id FROM dual; END",
	}, normalized(script))

	drop, err := p.DropTablesSQL(autoIncrementModel())
	require.NoError(t, err)
	assert.Equal(t, []string{
		"DROP TRIGGER trg_person_id",
		"DROP SEQUENCE seq_person_id",
		"DROP TABLE person CASCADE CONSTRAINTS",
	}, normalized(drop))
}

func TestOracleRejectsOnUpdate(t *testing.T) {
	db := companyModel()
	db.Tables[0].ForeignKeys[0].OnUpdate = model.ActionCascade

	_, err := platform.New(Oracle(), platform.WithStrict(true)).CreateTablesSQL(db, false)
	assert.Error(t, err)

	script, err := platform.New(Oracle()).CreateTablesSQL(db, false)
	require.NoError(t, err)
	assert.Len(t, script.Warnings(), 1)
	assert.NotContains(t, script.String(), "ON UPDATE")
}

func TestRenameAndIndexStatements(t *testing.T) {
	table := &model.Table{Name: "person"}
	idx := &model.Index{Name: "IDX_person_name", Columns: []model.IndexColumn{{Name: "name"}}}
	tests := []struct {
		name   string
		def    func() platform.Definition
		rename string
		drop   string
	}{
		{"mssql", MSSQL, "EXEC sp_rename 'person', 'person_'", "DROP INDEX person.IDX_person_name"},
		{"sybase", Sybase, "EXEC sp_rename 'person', 'person_'", "DROP INDEX person.IDX_person_name"},
		{"db2", DB2, "RENAME TABLE person TO person_", "DROP INDEX IDX_person_name"},
		{"sqlite", SQLite, "ALTER TABLE person RENAME TO person_", "DROP INDEX IDX_person_name"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := platform.New(tt.def()).Builder()
			db := &model.Database{Tables: []*model.Table{table}}
			script, err := b.Emit(db, func(e *platform.Emitter) {
				e.RenameTable("person", "person_")
				e.DropIndex(table, idx)
			})
			require.NoError(t, err)
			assert.Equal(t, []string{tt.rename, tt.drop}, normalized(script))
		})
	}
}

func TestRebuildWhenColumnsCannotBeAltered(t *testing.T) {
	for _, def := range []func() platform.Definition{DB2, Cloudscape} {
		p := platform.New(def())
		t.Run(p.Name(), func(t *testing.T) {
			live := companyModel()
			desired := companyModel()
			desired.Tables[1].Columns[1].Size = 128

			script, err := p.AlterTablesSQL(live, desired)
			require.NoError(t, err)
			stmts := normalized(script)
			assert.Contains(t, stmts, "INSERT INTO dept (id, title) SELECT id, title FROM dept_")
			assert.Contains(t, stmts, "DROP TABLE dept_")
		})
	}
}

func TestSQLiteRebuildKeepsReferencingTables(t *testing.T) {
	p := platform.New(SQLite())
	live := companyModel()
	desired := companyModel()
	desired.Tables[1].Columns[1].Size = 128

	script, err := p.AlterTablesSQL(live, desired)
	require.NoError(t, err)

	// dept is never renamed away, so the foreign key of person keeps naming it
	assert.Equal(t, []string{
		"PRAGMA foreign_keys = OFF",
		"CREATE TABLE dept_new ( id INTEGER NOT NULL, title VARCHAR(128), PRIMARY KEY (id) )",
		"INSERT INTO dept_new (id, title) SELECT id, title FROM dept",
		"DROP TABLE dept",
		"ALTER TABLE dept_new RENAME TO dept",
		"PRAGMA foreign_keys = ON",
	}, normalized(script))
}

func TestSQLiteAddsRequiredColumnWithDefault(t *testing.T) {
	p := platform.New(SQLite())
	live := companyModel()
	desired := companyModel()
	desired.Tables[0].Columns = append(desired.Tables[0].Columns,
		&model.Column{Name: "age", Type: model.TypeInteger, Required: true, Default: model.StringPtr("0")})

	script, err := p.AlterTablesSQL(live, desired)
	require.NoError(t, err)
	assert.Equal(t, []string{"ALTER TABLE person ADD COLUMN age INTEGER DEFAULT 0 NOT NULL"}, normalized(script))
}

func TestSybaseDefaultsAreUnwrapped(t *testing.T) {
	tests := map[string]string{
		"(('abc'))": "abc",
		"((0))":     "0",
		"'x'":       "x",
	}
	for reported, want := range tests {
		c := &model.Column{Name: "c", Default: model.StringPtr(reported)}
		mssqlDefault(nil, c)
		assert.Equal(t, want, *c.Default, reported)
	}
}

func TestAxionWithoutForeignKeys(t *testing.T) {
	script, err := platform.New(Axion()).CreateTablesSQL(companyModel(), false)
	require.NoError(t, err)

	assert.NotContains(t, script.String(), "FOREIGN KEY")
	require.Len(t, script.Warnings(), 1)
	assert.Equal(t, "person", script.Warnings()[0].Table)
}

func TestAxionLongTypesReadBack(t *testing.T) {
	def := Axion()

	tests := []struct {
		code   model.TypeCode
		native string
	}{
		{model.TypeLongVarchar, "VARCHAR(2147483647)"},
		{model.TypeLongVarBinary, "VARBINARY(2147483647)"},
		{model.TypeVarchar, "VARCHAR(254)"},
	}

	for _, tt := range tests {
		t.Run(tt.code.String(), func(t *testing.T) {
			native, ok := def.Types.ToNative(tt.code, def.Info.DefaultSizeFor(tt.code), 0)
			require.True(t, ok)
			assert.Equal(t, tt.native, native)

			back, _, _, ok := def.Types.FromNative(native)
			require.True(t, ok)
			assert.Equal(t, tt.code, back)
		})
	}
}

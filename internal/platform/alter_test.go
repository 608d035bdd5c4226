package platform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tordrt/ddlkit/internal/model"
)

func TestCompareEqualModels(t *testing.T) {
	b := newTestBuilder(nil)
	live := companyModel()
	desired := companyModel()
	// aliases of the same spelling, case differences and generated names are no change
	desired.Tables[0].Name = "PERSON"
	desired.Tables[0].Columns[1].Type = model.TypeVarchar
	desired.Tables[0].ForeignKeys[0].Name = "fk_other_name"
	desired.Tables[0].Indices[0].Name = "idx_other_name"

	changes := b.Compare(live, desired)
	assert.True(t, changes.Empty())

	script, err := b.AlterDatabase(live, desired)
	require.NoError(t, err)
	assert.Empty(t, script.Statements())
}

func TestAlterAddRequiredColumnWithDefault(t *testing.T) {
	live := companyModel()
	desired := companyModel()
	person := desired.FindTable("person", false)
	person.Columns = append(person.Columns, &model.Column{
		Name: "age", Type: model.TypeInteger, Required: true, Default: model.StringPtr("0"),
	})

	t.Run("in place", func(t *testing.T) {
		script, err := newTestBuilder(nil).AlterDatabase(live, desired)
		require.NoError(t, err)
		assert.Equal(t, []string{"ALTER TABLE person ADD COLUMN age INTEGER DEFAULT 0 NOT NULL"}, script.Statements())
	})

	t.Run("rebuild", func(t *testing.T) {
		b := newTestBuilder(func(i *Info) { i.SupportsAddColumnDefault = false })
		changes := b.Compare(live, desired)
		require.Len(t, changes.Tables, 1)
		assert.True(t, changes.Tables[0].Rebuild)

		script, err := b.AlterDatabase(live, desired)
		require.NoError(t, err)
		assert.Equal(t, []string{
			"ALTER TABLE person DROP CONSTRAINT FK_person_dept_id",
			"DROP INDEX IDX_person_name",
			"ALTER TABLE person RENAME TO person_",
			"CREATE TABLE person ( id INTEGER NOT NULL, name VARCHAR(64), dept_id INTEGER, age INTEGER DEFAULT 0 NOT NULL, PRIMARY KEY (id) )",
			"INSERT INTO person (id, name, dept_id) SELECT id, name, dept_id FROM person_",
			"DROP TABLE person_",
			"CREATE INDEX IDX_person_name ON person (name)",
			"ALTER TABLE person ADD CONSTRAINT FK_person_dept_id FOREIGN KEY (dept_id) REFERENCES dept (id)",
		}, normalized(script))
	})
}

func TestAlterDropColumn(t *testing.T) {
	live := companyModel()
	live.FindTable("dept", false).Columns = append(live.FindTable("dept", false).Columns,
		&model.Column{Name: "budget", Type: model.TypeDecimal, Size: 12, Scale: 2})
	desired := companyModel()

	script, err := newTestBuilder(nil).AlterDatabase(live, desired)
	require.NoError(t, err)
	assert.Equal(t, []string{"ALTER TABLE dept DROP COLUMN budget"}, script.Statements())

	script, err = newTestBuilder(func(i *Info) { i.SupportsAlterForDrop = false }).AlterDatabase(live, desired)
	require.NoError(t, err)
	stmts := normalized(script)
	assert.Equal(t, []string{
		"ALTER TABLE person DROP CONSTRAINT FK_person_dept_id",
		"ALTER TABLE dept RENAME TO dept_",
		"CREATE TABLE dept ( id INTEGER NOT NULL, name VARCHAR(32) NOT NULL, PRIMARY KEY (id) )",
		"INSERT INTO dept (id, name) SELECT id, name FROM dept_",
		"DROP TABLE dept_",
		"ALTER TABLE person ADD CONSTRAINT FK_person_dept_id FOREIGN KEY (dept_id) REFERENCES dept (id)",
	}, stmts)
}

func TestAlterModifyColumn(t *testing.T) {
	live := companyModel()
	desired := companyModel()
	desired.FindTable("person", false).FindColumn("name", false).Size = 128

	script, err := newTestBuilder(nil).AlterDatabase(live, desired)
	require.NoError(t, err)
	assert.Equal(t, []string{"ALTER TABLE person ALTER COLUMN name VARCHAR(128)"}, script.Statements())

	b := newTestBuilder(func(i *Info) { i.SupportsAlterColumn = false })
	changes := b.Compare(live, desired)
	require.Len(t, changes.Tables, 1)
	assert.True(t, changes.Tables[0].Rebuild)
}

func TestAlterModifiedForeignKeyColumn(t *testing.T) {
	live := companyModel()
	desired := companyModel()
	desired.FindTable("person", false).FindColumn("dept_id", false).Required = true

	script, err := newTestBuilder(nil).AlterDatabase(live, desired)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"ALTER TABLE person DROP CONSTRAINT FK_person_dept_id",
		"ALTER TABLE person ALTER COLUMN dept_id INTEGER NOT NULL",
		"ALTER TABLE person ADD CONSTRAINT FK_person_dept_id FOREIGN KEY (dept_id) REFERENCES dept (id)",
	}, script.Statements())
}

func TestAlterIndicesAndForeignKeys(t *testing.T) {
	live := companyModel()
	desired := companyModel()
	person := desired.FindTable("person", false)
	person.Indices = []*model.Index{
		{Name: "UQ_person_name", Unique: true, Columns: []model.IndexColumn{{Name: "name"}}},
	}
	person.ForeignKeys[0].OnDelete = model.ActionCascade

	script, err := newTestBuilder(nil).AlterDatabase(live, desired)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"ALTER TABLE person DROP CONSTRAINT FK_person_dept_id",
		"DROP INDEX IDX_person_name",
		"CREATE UNIQUE INDEX UQ_person_name ON person (name)",
		"ALTER TABLE person ADD CONSTRAINT FK_person_dept_id FOREIGN KEY (dept_id) REFERENCES dept (id) ON DELETE CASCADE",
	}, script.Statements())
}

func TestAlterTablesAddedAndDropped(t *testing.T) {
	live := companyModel()
	live.AddTable(&model.Table{Name: "legacy", Columns: []*model.Column{idColumn()}})

	desired := companyModel()
	desired.AddTable(&model.Table{Name: "project", Columns: []*model.Column{idColumn()}})
	person := desired.FindTable("person", false)
	person.Columns = append(person.Columns, &model.Column{Name: "project_id", Type: model.TypeInteger})
	person.ForeignKeys = append(person.ForeignKeys, &model.ForeignKey{
		ForeignTable: "project", References: []model.Reference{{Local: "project_id", Foreign: "id"}},
	})

	script, err := newTestBuilder(nil).AlterDatabase(live, desired)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"ALTER TABLE person ADD COLUMN project_id INTEGER",
		"DROP TABLE legacy",
		"CREATE TABLE project ( id INTEGER NOT NULL, PRIMARY KEY (id) )",
		"ALTER TABLE person ADD CONSTRAINT FK_person_project_id FOREIGN KEY (project_id) REFERENCES project (id)",
	}, normalized(script))
}

func TestAlterAutoIncrementAuxiliaries(t *testing.T) {
	live := &model.Database{Tables: []*model.Table{{Name: "t", Columns: []*model.Column{idColumn()}}}}
	desired := &model.Database{Tables: []*model.Table{{Name: "t", Columns: []*model.Column{
		idColumn(),
		{Name: "seq", Type: model.TypeInteger, AutoIncrement: true},
	}}}}

	info := NewInfo("test")
	info.AutoCommitDDL = false
	b := NewBuilder(info, nil, Hooks{}, GeneratorAutoIncrement{}, nil)

	script, err := b.AlterDatabase(live, desired)
	require.NoError(t, err)
	stmts := normalized(script)
	require.Len(t, stmts, 3)
	assert.Equal(t, "ALTER TABLE t ADD COLUMN seq INTEGER", stmts[0])
	assert.Equal(t, "CREATE GENERATOR gen_t_seq", stmts[1])
	assert.Contains(t, stmts[2], "CREATE TRIGGER trg_t_seq FOR t")

	script, err = b.AlterDatabase(desired, live)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"DROP TRIGGER trg_t_seq",
		"DROP GENERATOR gen_t_seq",
		"ALTER TABLE t DROP COLUMN seq",
	}, script.Statements())
}

func TestAlterPrimaryKeyChangeRebuilds(t *testing.T) {
	live := companyModel()
	desired := companyModel()
	dept := desired.FindTable("dept", false)
	dept.FindColumn("name", false).PrimaryKey = true

	changes := newTestBuilder(nil).Compare(live, desired)
	require.Len(t, changes.Tables, 1)
	assert.True(t, changes.Tables[0].PrimaryKeyChanged)
	assert.True(t, changes.Tables[0].Rebuild)
}

package db

import (
	"context"
	"database/sql"
	"strings"

	"github.com/tordrt/ddlkit/internal/metadata"
)

// SQLiteMetaData reads the SQLite catalog through sqlite_master and the
// table-valued pragma functions. SQLite has neither catalogs nor schemas.
type SQLiteMetaData struct {
	db *sql.DB
}

var _ metadata.MetaData = (*SQLiteMetaData)(nil)

// Tables lists tables and views
func (m *SQLiteMetaData) Tables(ctx context.Context, _, _ string, types []string) ([]metadata.TableRow, error) {
	query := `
		SELECT name, type
		FROM sqlite_master
		WHERE type IN ('table', 'view')
		ORDER BY name
	`

	rows, err := m.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tables []metadata.TableRow
	for rows.Next() {
		var row metadata.TableRow
		var reported string
		if err := rows.Scan(&row.Name, &reported); err != nil {
			return nil, err
		}
		row.Type = tableType(reported)
		if wantsType(types, row.Type) {
			tables = append(tables, row)
		}
	}

	return tables, rows.Err()
}

// Columns lists the columns of a table
func (m *SQLiteMetaData) Columns(ctx context.Context, _, _, table string) ([]metadata.ColumnRow, error) {
	autoInc, err := m.declaresAutoIncrement(ctx, table)
	if err != nil {
		return nil, err
	}

	query := `SELECT cid, name, type, "notnull", dflt_value, pk FROM pragma_table_info(?) ORDER BY cid`

	rows, err := m.db.QueryContext(ctx, query, table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var columns []metadata.ColumnRow
	pkCount := 0
	for rows.Next() {
		col := metadata.ColumnRow{Table: table}
		var cid, notNull, pk int
		var defaultVal sql.NullString

		if err := rows.Scan(&cid, &col.Name, &col.TypeName, &notNull, &defaultVal, &pk); err != nil {
			return nil, err
		}

		col.OrdinalPosition = cid + 1
		col.DataType = metadata.GuessTypeCode(col.TypeName)
		col.Nullable = notNull == 0
		if defaultVal.Valid {
			col.Default = &defaultVal.String
		}
		if pk > 0 {
			pkCount++
			col.AutoIncrement = autoInc && strings.EqualFold(col.TypeName, "INTEGER")
		}

		columns = append(columns, col)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// AUTOINCREMENT is only legal on a single-column INTEGER PRIMARY KEY
	if pkCount != 1 {
		for i := range columns {
			columns[i].AutoIncrement = false
		}
	}
	return columns, nil
}

// declaresAutoIncrement reports whether the CREATE TABLE statement of table
// uses the AUTOINCREMENT keyword, which pragma_table_info does not expose.
func (m *SQLiteMetaData) declaresAutoIncrement(ctx context.Context, table string) (bool, error) {
	var ddl sql.NullString
	err := m.db.QueryRowContext(ctx, `SELECT sql FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&ddl)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return strings.Contains(strings.ToUpper(ddl.String), "AUTOINCREMENT"), nil
}

// PrimaryKeys lists the primary key columns of a table
func (m *SQLiteMetaData) PrimaryKeys(ctx context.Context, _, _, table string) ([]metadata.PrimaryKeyRow, error) {
	query := `SELECT name, pk FROM pragma_table_info(?) WHERE pk > 0 ORDER BY pk`

	rows, err := m.db.QueryContext(ctx, query, table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pk []metadata.PrimaryKeyRow
	for rows.Next() {
		row := metadata.PrimaryKeyRow{Table: table}
		if err := rows.Scan(&row.Column, &row.KeySeq); err != nil {
			return nil, err
		}
		pk = append(pk, row)
	}

	return pk, rows.Err()
}

// ImportedKeys lists the foreign key columns of a table. SQLite does not
// keep constraint names, so the rows are unnamed and grouped by id.
func (m *SQLiteMetaData) ImportedKeys(ctx context.Context, _, _, table string) ([]metadata.ImportedKeyRow, error) {
	query := `
		SELECT "table", "from", "to", seq, on_update, on_delete
		FROM pragma_foreign_key_list(?)
		ORDER BY id, seq
	`

	rows, err := m.db.QueryContext(ctx, query, table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []metadata.ImportedKeyRow
	for rows.Next() {
		row := metadata.ImportedKeyRow{FKTable: table}
		var to sql.NullString
		var seq int
		var updateRule, deleteRule string
		if err := rows.Scan(&row.PKTable, &row.FKColumn, &to, &seq, &updateRule, &deleteRule); err != nil {
			return nil, err
		}
		// a NULL target column means the referenced primary key
		row.PKColumn = to.String
		row.KeySeq = seq + 1
		row.UpdateRule = ruleAction(updateRule)
		row.DeleteRule = ruleAction(deleteRule)
		keys = append(keys, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range keys {
		if keys[i].PKColumn != "" {
			continue
		}
		pk, err := m.PrimaryKeys(ctx, "", "", keys[i].PKTable)
		if err != nil {
			return nil, err
		}
		if seq := keys[i].KeySeq - 1; seq < len(pk) {
			keys[i].PKColumn = pk[seq].Column
		}
	}
	return keys, nil
}

// IndexInfo lists the index columns of a table, including the automatic
// indices backing PRIMARY KEY and UNIQUE constraints.
func (m *SQLiteMetaData) IndexInfo(ctx context.Context, _, _, table string) ([]metadata.IndexInfoRow, error) {
	query := `
		SELECT il.name, il."unique", ii.name, ii.seqno
		FROM pragma_index_list(?) il
		JOIN pragma_index_info(il.name) ii
		ORDER BY il.name, ii.seqno
	`

	rows, err := m.db.QueryContext(ctx, query, table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var indexes []metadata.IndexInfoRow
	for rows.Next() {
		row := metadata.IndexInfoRow{Table: table}
		var unique, seqno int
		var column sql.NullString
		if err := rows.Scan(&row.IndexName, &unique, &column, &seqno); err != nil {
			return nil, err
		}
		// expression index parts have no column
		if !column.Valid {
			continue
		}
		row.NonUnique = unique == 0
		row.Column = column.String
		row.OrdinalPosition = seqno + 1
		indexes = append(indexes, row)
	}

	return indexes, rows.Err()
}

// TypeInfo is empty: SQLite keeps declared type names verbatim.
func (m *SQLiteMetaData) TypeInfo(context.Context) ([]metadata.TypeInfoRow, error) {
	return nil, nil
}

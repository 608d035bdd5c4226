package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/tordrt/ddlkit/internal/metadata"
	"github.com/tordrt/ddlkit/internal/model"
)

// MySQLMetaData reads the MySQL catalog. MySQL calls its databases schemas
// but reports them as catalogs, so rows carry the database in Catalog and an
// empty Schema. An empty catalog means the connection's current database.
type MySQLMetaData struct {
	db *sql.DB
}

var _ metadata.MetaData = (*MySQLMetaData)(nil)

const currentDatabase = "COALESCE(NULLIF(?, ''), DATABASE())"

// Tables lists the tables of the catalog
func (m *MySQLMetaData) Tables(ctx context.Context, catalog, _ string, types []string) ([]metadata.TableRow, error) {
	query := `
		SELECT table_schema, table_name, table_type, COALESCE(table_comment, '')
		FROM information_schema.tables
		WHERE table_schema = ` + currentDatabase + `
		ORDER BY table_name
	`

	rows, err := m.db.QueryContext(ctx, query, catalog)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tables []metadata.TableRow
	for rows.Next() {
		var row metadata.TableRow
		var reported string
		if err := rows.Scan(&row.Catalog, &row.Name, &reported, &row.Remarks); err != nil {
			return nil, err
		}
		row.Type = tableType(reported)
		if wantsType(types, row.Type) {
			tables = append(tables, row)
		}
	}

	return tables, rows.Err()
}

// Columns lists the columns of a table. column_type carries the full native
// spelling, e.g. "varchar(64)" or "enum('a','b')".
func (m *MySQLMetaData) Columns(ctx context.Context, catalog, _, table string) ([]metadata.ColumnRow, error) {
	query := `
		SELECT
			c.column_name,
			c.column_type,
			c.data_type,
			c.is_nullable,
			c.column_default,
			COALESCE(c.character_maximum_length, c.numeric_precision, c.datetime_precision, 0),
			COALESCE(c.numeric_scale, 0),
			c.ordinal_position,
			c.extra,
			COALESCE(c.column_comment, '')
		FROM information_schema.columns c
		WHERE c.table_schema = ` + currentDatabase + ` AND c.table_name = ?
		ORDER BY c.ordinal_position
	`

	rows, err := m.db.QueryContext(ctx, query, catalog, table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var columns []metadata.ColumnRow
	for rows.Next() {
		col := metadata.ColumnRow{Table: table}
		var dataType, nullable, extra string
		var defaultVal sql.NullString
		var size int64

		if err := rows.Scan(&col.Name, &col.TypeName, &dataType, &nullable, &defaultVal,
			&size, &col.DecimalDigits, &col.OrdinalPosition, &extra, &col.Remarks); err != nil {
			return nil, err
		}

		col.DataType = metadata.GuessTypeCode(dataType)
		col.Nullable = nullable == "YES"
		col.Size = clampSize(size)
		col.AutoIncrement = strings.Contains(strings.ToLower(extra), "auto_increment")
		if defaultVal.Valid {
			col.Default = &defaultVal.String
		}

		// enum and set columns read back as strings; their values go to the remarks
		if dataType == "enum" || dataType == "set" {
			values, err := enumValues(col.TypeName)
			if err != nil {
				return nil, err
			}
			col.DataType = model.TypeVarchar
			if col.Remarks == "" {
				col.Remarks = dataType + ": " + strings.Join(values, ", ")
			}
		}

		columns = append(columns, col)
	}

	return columns, rows.Err()
}

// clampSize keeps LONGTEXT-sized lengths (4294967295) inside int on 32-bit builds.
func clampSize(size int64) int {
	const maxInt = int(^uint(0) >> 1)
	if size > int64(maxInt) {
		return maxInt
	}
	return int(size)
}

// PrimaryKeys lists the primary key columns of a table
func (m *MySQLMetaData) PrimaryKeys(ctx context.Context, catalog, _, table string) ([]metadata.PrimaryKeyRow, error) {
	query := `
		SELECT column_name, ordinal_position
		FROM information_schema.key_column_usage
		WHERE table_schema = ` + currentDatabase + `
			AND table_name = ?
			AND constraint_name = 'PRIMARY'
		ORDER BY ordinal_position
	`

	rows, err := m.db.QueryContext(ctx, query, catalog, table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pk []metadata.PrimaryKeyRow
	for rows.Next() {
		row := metadata.PrimaryKeyRow{Table: table, Name: "PRIMARY"}
		if err := rows.Scan(&row.Column, &row.KeySeq); err != nil {
			return nil, err
		}
		pk = append(pk, row)
	}

	return pk, rows.Err()
}

// ImportedKeys lists the foreign key columns of a table with their
// referential rules.
func (m *MySQLMetaData) ImportedKeys(ctx context.Context, catalog, _, table string) ([]metadata.ImportedKeyRow, error) {
	query := `
		SELECT
			kcu.constraint_name,
			kcu.column_name,
			kcu.referenced_table_name,
			kcu.referenced_column_name,
			kcu.ordinal_position,
			rc.update_rule,
			rc.delete_rule
		FROM information_schema.key_column_usage kcu
		JOIN information_schema.referential_constraints rc
			ON rc.constraint_schema = kcu.table_schema
			AND rc.constraint_name = kcu.constraint_name
			AND rc.table_name = kcu.table_name
		WHERE kcu.table_schema = ` + currentDatabase + `
			AND kcu.table_name = ?
			AND kcu.referenced_table_name IS NOT NULL
		ORDER BY kcu.constraint_name, kcu.ordinal_position
	`

	rows, err := m.db.QueryContext(ctx, query, catalog, table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []metadata.ImportedKeyRow
	for rows.Next() {
		row := metadata.ImportedKeyRow{FKTable: table}
		var updateRule, deleteRule string
		if err := rows.Scan(&row.FKName, &row.FKColumn, &row.PKTable, &row.PKColumn, &row.KeySeq, &updateRule, &deleteRule); err != nil {
			return nil, err
		}
		row.UpdateRule = ruleAction(updateRule)
		row.DeleteRule = ruleAction(deleteRule)
		keys = append(keys, row)
	}

	return keys, rows.Err()
}

// IndexInfo lists the index columns of a table. sub_part is the prefix
// length of partially indexed columns.
func (m *MySQLMetaData) IndexInfo(ctx context.Context, catalog, _, table string) ([]metadata.IndexInfoRow, error) {
	query := `
		SELECT s.index_name, s.non_unique, s.column_name, s.seq_in_index
		FROM information_schema.statistics s
		WHERE s.table_schema = ` + currentDatabase + `
			AND s.table_name = ?
		ORDER BY s.index_name, s.seq_in_index
	`

	rows, err := m.db.QueryContext(ctx, query, catalog, table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var indexes []metadata.IndexInfoRow
	for rows.Next() {
		row := metadata.IndexInfoRow{Table: table}
		var nonUnique int
		if err := rows.Scan(&row.IndexName, &nonUnique, &row.Column, &row.OrdinalPosition); err != nil {
			return nil, err
		}
		row.NonUnique = nonUnique != 0
		indexes = append(indexes, row)
	}

	return indexes, rows.Err()
}

// TypeInfo is empty: column_type already names every MySQL type precisely.
func (m *MySQLMetaData) TypeInfo(context.Context) ([]metadata.TypeInfoRow, error) {
	return nil, nil
}

// enumValues parses the values of an enum or set column type.
// MySQL stores enum types as "enum('value1','value2','value3')"
func enumValues(columnType string) ([]string, error) {
	lower := strings.ToLower(columnType)
	if !strings.HasPrefix(lower, "enum(") && !strings.HasPrefix(lower, "set(") {
		return nil, nil
	}

	// Extract the part between enum( and )
	start := strings.Index(columnType, "(")
	end := strings.LastIndex(columnType, ")")
	if start == -1 || end == -1 || start >= end {
		return nil, fmt.Errorf("invalid enum type format: %s", columnType)
	}

	var values []string
	for _, part := range strings.Split(columnType[start+1:end], ",") {
		part = strings.TrimSpace(part)
		// Remove surrounding quotes
		if len(part) >= 2 && part[0] == '\'' && part[len(part)-1] == '\'' {
			part = part[1 : len(part)-1]
		}
		values = append(values, part)
	}

	return values, nil
}

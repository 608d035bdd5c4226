package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/tordrt/ddlkit/internal/metadata"
	"github.com/tordrt/ddlkit/internal/model"
)

// PostgresMetaData reads the PostgreSQL catalog.
type PostgresMetaData struct {
	conn *pgx.Conn
}

var _ metadata.MetaData = (*PostgresMetaData)(nil)

// Tables lists the tables of the schemas matching schemaPattern
func (m *PostgresMetaData) Tables(ctx context.Context, _, schemaPattern string, types []string) ([]metadata.TableRow, error) {
	query := `
		SELECT t.table_catalog, t.table_schema, t.table_name, t.table_type,
			COALESCE(obj_description(format('%I.%I', t.table_schema, t.table_name)::regclass, 'pg_class'), '')
		FROM information_schema.tables t
		WHERE t.table_schema LIKE $1
			AND t.table_schema NOT IN ('pg_catalog', 'information_schema')
		ORDER BY t.table_schema, t.table_name
	`

	rows, err := m.conn.Query(ctx, query, likePattern(schemaPattern))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tables []metadata.TableRow
	for rows.Next() {
		var row metadata.TableRow
		var reported string
		if err := rows.Scan(&row.Catalog, &row.Schema, &row.Name, &reported, &row.Remarks); err != nil {
			return nil, err
		}
		row.Type = tableType(reported)
		if wantsType(types, row.Type) {
			tables = append(tables, row)
		}
	}

	return tables, rows.Err()
}

// shortTypeNames are the spellings the type parser knows for the verbose
// information_schema names.
var shortTypeNames = map[string]string{
	"timestamp with time zone":    "timestamptz",
	"timestamp without time zone": "timestamp",
	"time with time zone":         "timetz",
	"time without time zone":      "time",
	"character varying":           "varchar",
	"character":                   "char",
}

// udtNames spells out the internal names of array element types.
var udtNames = map[string]string{
	"int2":   "smallint",
	"int4":   "integer",
	"int8":   "bigint",
	"float4": "real",
	"float8": "double precision",
	"bool":   "boolean",
}

// nativeTypeName rebuilds the declared type of a column, e.g. varchar(64),
// numeric(10,2) or integer[].
func nativeTypeName(dataType, udtName string, charMaxLength, precision, scale *int) string {
	switch dataType {
	case "ARRAY":
		elem, ok := strings.CutPrefix(udtName, "_")
		if !ok {
			return "array"
		}
		if long, known := udtNames[elem]; known {
			elem = long
		}
		return elem + "[]"
	case "USER-DEFINED":
		return udtName
	case "numeric":
		if precision != nil && scale != nil {
			return fmt.Sprintf("numeric(%d,%d)", *precision, *scale)
		}
		return dataType
	}

	name, ok := shortTypeNames[dataType]
	if !ok {
		return dataType
	}
	if charMaxLength != nil && (name == "varchar" || name == "char") {
		return fmt.Sprintf("%s(%d)", name, *charMaxLength)
	}
	return name
}

// Columns lists the columns of a table
func (m *PostgresMetaData) Columns(ctx context.Context, _, schema, table string) ([]metadata.ColumnRow, error) {
	query := `
		SELECT
			c.column_name,
			c.data_type,
			c.udt_name,
			c.is_nullable,
			c.column_default,
			c.character_maximum_length,
			c.numeric_precision,
			c.numeric_scale,
			c.ordinal_position,
			COALESCE(col_description(format('%I.%I', c.table_schema, c.table_name)::regclass, c.ordinal_position::int), '')
		FROM information_schema.columns c
		WHERE c.table_schema = $1 AND c.table_name = $2
		ORDER BY c.ordinal_position
	`

	rows, err := m.conn.Query(ctx, query, schema, table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var columns []metadata.ColumnRow
	for rows.Next() {
		col := metadata.ColumnRow{Table: table}
		var dataType, udtName, nullable string
		var charMaxLength, precision, scale *int

		if err := rows.Scan(&col.Name, &dataType, &udtName, &nullable, &col.Default,
			&charMaxLength, &precision, &scale, &col.OrdinalPosition, &col.Remarks); err != nil {
			return nil, err
		}

		col.Nullable = nullable == "YES"
		col.TypeName = nativeTypeName(dataType, udtName, charMaxLength, precision, scale)
		col.DataType = metadata.GuessTypeCode(col.TypeName)
		switch {
		case charMaxLength != nil:
			col.Size = *charMaxLength
		case precision != nil:
			col.Size = *precision
		}
		if scale != nil {
			col.DecimalDigits = *scale
		}

		columns = append(columns, col)
	}

	return columns, rows.Err()
}

// PrimaryKeys lists the primary key columns of a table
func (m *PostgresMetaData) PrimaryKeys(ctx context.Context, _, schema, table string) ([]metadata.PrimaryKeyRow, error) {
	query := `
		SELECT kcu.column_name, kcu.ordinal_position, kcu.constraint_name
		FROM information_schema.key_column_usage kcu
		JOIN information_schema.table_constraints tc
			ON tc.constraint_name = kcu.constraint_name
			AND tc.table_schema = kcu.table_schema
			AND tc.table_name = kcu.table_name
		WHERE kcu.table_schema = $1
			AND kcu.table_name = $2
			AND tc.constraint_type = 'PRIMARY KEY'
		ORDER BY kcu.ordinal_position
	`

	rows, err := m.conn.Query(ctx, query, schema, table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pk []metadata.PrimaryKeyRow
	for rows.Next() {
		row := metadata.PrimaryKeyRow{Table: table}
		if err := rows.Scan(&row.Column, &row.KeySeq, &row.Name); err != nil {
			return nil, err
		}
		pk = append(pk, row)
	}

	return pk, rows.Err()
}

// ImportedKeys lists the foreign key columns of a table. information_schema
// cannot pair the columns of composite keys, so pg_constraint is read directly.
func (m *PostgresMetaData) ImportedKeys(ctx context.Context, _, schema, table string) ([]metadata.ImportedKeyRow, error) {
	query := `
		SELECT
			con.conname,
			ft.relname,
			fa.attname,
			a.attname,
			k.ord,
			con.confupdtype::text,
			con.confdeltype::text
		FROM pg_constraint con
		JOIN pg_class t ON t.oid = con.conrelid
		JOIN pg_namespace n ON n.oid = t.relnamespace
		JOIN pg_class ft ON ft.oid = con.confrelid
		CROSS JOIN LATERAL unnest(con.conkey, con.confkey) WITH ORDINALITY AS k(attnum, fattnum, ord)
		JOIN pg_attribute a ON a.attrelid = con.conrelid AND a.attnum = k.attnum
		JOIN pg_attribute fa ON fa.attrelid = con.confrelid AND fa.attnum = k.fattnum
		WHERE con.contype = 'f' AND n.nspname = $1 AND t.relname = $2
		ORDER BY con.conname, k.ord
	`

	rows, err := m.conn.Query(ctx, query, schema, table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []metadata.ImportedKeyRow
	for rows.Next() {
		row := metadata.ImportedKeyRow{FKTable: table}
		var updateRule, deleteRule string
		if err := rows.Scan(&row.FKName, &row.PKTable, &row.PKColumn, &row.FKColumn, &row.KeySeq, &updateRule, &deleteRule); err != nil {
			return nil, err
		}
		row.UpdateRule = ruleAction(updateRule)
		row.DeleteRule = ruleAction(deleteRule)
		keys = append(keys, row)
	}

	return keys, rows.Err()
}

// IndexInfo lists the index columns of a table, including the primary key index
func (m *PostgresMetaData) IndexInfo(ctx context.Context, _, schema, table string) ([]metadata.IndexInfoRow, error) {
	query := `
		SELECT
			i.relname AS index_name,
			NOT ix.indisunique AS non_unique,
			a.attname,
			k.ord
		FROM pg_class t
		JOIN pg_index ix ON t.oid = ix.indrelid
		JOIN pg_class i ON i.oid = ix.indexrelid
		JOIN pg_namespace n ON n.oid = t.relnamespace
		CROSS JOIN LATERAL unnest(ix.indkey::int2[]) WITH ORDINALITY AS k(attnum, ord)
		JOIN pg_attribute a ON a.attrelid = t.oid AND a.attnum = k.attnum
		WHERE t.relkind = 'r'
			AND n.nspname = $1
			AND t.relname = $2
		ORDER BY i.relname, k.ord
	`

	rows, err := m.conn.Query(ctx, query, schema, table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var indexes []metadata.IndexInfoRow
	for rows.Next() {
		row := metadata.IndexInfoRow{Table: table}
		if err := rows.Scan(&row.IndexName, &row.NonUnique, &row.Column, &row.OrdinalPosition); err != nil {
			return nil, err
		}
		indexes = append(indexes, row)
	}

	return indexes, rows.Err()
}

// TypeInfo reports the serial pseudo-types, which information_schema shows
// as plain integers with a nextval default.
func (m *PostgresMetaData) TypeInfo(context.Context) ([]metadata.TypeInfoRow, error) {
	return []metadata.TypeInfoRow{
		{TypeName: "serial", DataType: model.TypeInteger, Precision: 10, AutoIncrement: true},
		{TypeName: "bigserial", DataType: model.TypeBigInt, Precision: 19, AutoIncrement: true},
		{TypeName: "smallserial", DataType: model.TypeSmallInt, Precision: 5, AutoIncrement: true},
	}, nil
}

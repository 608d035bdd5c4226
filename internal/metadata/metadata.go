// Package metadata defines the generic database metadata surface the model
// reader walks. Implementations live next to the live connections in
// internal/db; Memory is an in-process implementation.
//
// Every call returns fully materialised rows: implementations own and release
// whatever cursors they open before returning, on every exit path.
package metadata

import (
	"context"

	"github.com/tordrt/ddlkit/internal/model"
)

// MetaData is the platform-provided metadata interface.
type MetaData interface {
	// Tables lists tables matching the filters. Empty catalog/schema means no filter;
	// an empty types slice means all table types.
	Tables(ctx context.Context, catalog, schemaPattern string, types []string) ([]TableRow, error)
	// Columns lists the columns of a table in ordinal order.
	Columns(ctx context.Context, catalog, schema, table string) ([]ColumnRow, error)
	// PrimaryKeys lists the primary key columns of a table.
	PrimaryKeys(ctx context.Context, catalog, schema, table string) ([]PrimaryKeyRow, error)
	// ImportedKeys lists the foreign key columns of a table.
	ImportedKeys(ctx context.Context, catalog, schema, table string) ([]ImportedKeyRow, error)
	// IndexInfo lists the index columns of a table.
	IndexInfo(ctx context.Context, catalog, schema, table string) ([]IndexInfoRow, error)
	// TypeInfo lists the native types known to the database.
	TypeInfo(ctx context.Context) ([]TypeInfoRow, error)
}

// TableRow describes one table.
type TableRow struct {
	Catalog string
	Schema  string
	Name    string
	Type    string
	Remarks string
}

// ColumnRow describes one column.
type ColumnRow struct {
	Table           string
	Name            string
	DataType        model.TypeCode // code reported by the driver; used when TypeName is unknown
	TypeName        string         // native spelling, possibly with size, e.g. "varchar(64)"
	Size            int
	DecimalDigits   int
	Nullable        bool
	Default         *string
	Remarks         string
	OrdinalPosition int
	AutoIncrement   bool
}

// PrimaryKeyRow is one column of a primary key.
type PrimaryKeyRow struct {
	Table  string
	Column string
	KeySeq int
	Name   string
}

// ImportedKeyRow is one column pair of a foreign key.
type ImportedKeyRow struct {
	PKTable    string
	PKColumn   string
	FKTable    string
	FKColumn   string
	KeySeq     int
	UpdateRule model.Action
	DeleteRule model.Action
	FKName     string
	PKName     string
}

// IndexInfoRow is one column of an index.
type IndexInfoRow struct {
	Table           string
	NonUnique       bool
	IndexName       string
	OrdinalPosition int
	Column          string
	Statistic       bool // table statistic row, not an index
}

// TypeInfoRow describes one native type.
type TypeInfoRow struct {
	TypeName      string
	DataType      model.TypeCode
	Precision     int
	AutoIncrement bool
}

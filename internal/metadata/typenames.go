package metadata

import (
	"strings"

	"github.com/tordrt/ddlkit/internal/model"
)

// genericTypeCodes maps common native base names to abstract codes. Drivers
// that do not report a numeric type code use it to fill ColumnRow.DataType.
var genericTypeCodes = map[string]model.TypeCode{
	"BIT":               model.TypeBit,
	"BOOL":              model.TypeBoolean,
	"BOOLEAN":           model.TypeBoolean,
	"TINYINT":           model.TypeTinyInt,
	"SMALLINT":          model.TypeSmallInt,
	"INT2":              model.TypeSmallInt,
	"MEDIUMINT":         model.TypeInteger,
	"INT":               model.TypeInteger,
	"INT4":              model.TypeInteger,
	"INTEGER":           model.TypeInteger,
	"SERIAL":            model.TypeInteger,
	"BIGINT":            model.TypeBigInt,
	"INT8":              model.TypeBigInt,
	"BIGSERIAL":         model.TypeBigInt,
	"REAL":              model.TypeReal,
	"FLOAT4":            model.TypeReal,
	"FLOAT":             model.TypeFloat,
	"FLOAT8":            model.TypeDouble,
	"DOUBLE":            model.TypeDouble,
	"DOUBLE PRECISION":  model.TypeDouble,
	"DECIMAL":           model.TypeDecimal,
	"DEC":               model.TypeDecimal,
	"NUMERIC":           model.TypeNumeric,
	"NUMBER":            model.TypeNumeric,
	"CHAR":              model.TypeChar,
	"CHARACTER":         model.TypeChar,
	"BPCHAR":            model.TypeChar,
	"NCHAR":             model.TypeChar,
	"VARCHAR":           model.TypeVarchar,
	"VARCHAR2":          model.TypeVarchar,
	"NVARCHAR":          model.TypeVarchar,
	"CHARACTER VARYING": model.TypeVarchar,
	"TEXT":              model.TypeLongVarchar,
	"LONGTEXT":          model.TypeLongVarchar,
	"MEDIUMTEXT":        model.TypeLongVarchar,
	"LONG VARCHAR":      model.TypeLongVarchar,
	"CLOB":              model.TypeClob,
	"BINARY":            model.TypeBinary,
	"VARBINARY":         model.TypeVarBinary,
	"BYTEA":             model.TypeLongVarBinary,
	"LONGBLOB":          model.TypeLongVarBinary,
	"MEDIUMBLOB":        model.TypeLongVarBinary,
	"IMAGE":             model.TypeLongVarBinary,
	"BLOB":              model.TypeBlob,
	"DATE":              model.TypeDate,
	"TIME":              model.TypeTime,
	"TIMETZ":            model.TypeTime,
	"DATETIME":          model.TypeTimestamp,
	"TIMESTAMP":         model.TypeTimestamp,
	"TIMESTAMPTZ":       model.TypeTimestamp,
}

// GuessTypeCode maps a native type spelling to an abstract code using only its
// base name, e.g. "varchar(64)" -> VARCHAR, "int(11) unsigned" -> INTEGER.
func GuessTypeCode(native string) model.TypeCode {
	base := strings.ToUpper(strings.TrimSpace(native))
	if i := strings.IndexByte(base, '('); i >= 0 {
		base = strings.TrimSpace(base[:i])
	}
	if code, ok := genericTypeCodes[base]; ok {
		return code
	}
	// "timestamp without time zone", "integer unsigned", ...
	if fields := strings.Fields(base); len(fields) > 0 {
		if code, ok := genericTypeCodes[fields[0]]; ok {
			return code
		}
	}
	return model.TypeOther
}

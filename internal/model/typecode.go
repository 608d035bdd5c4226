package model

import (
	"fmt"
	"strings"
)

// TypeCode is an abstract SQL type, independent of any dialect spelling.
// The values are the standard ones reported by database metadata drivers.
type TypeCode int

const (
	TypeBit           TypeCode = -7
	TypeTinyInt       TypeCode = -6
	TypeSmallInt      TypeCode = 5
	TypeInteger       TypeCode = 4
	TypeBigInt        TypeCode = -5
	TypeFloat         TypeCode = 6
	TypeReal          TypeCode = 7
	TypeDouble        TypeCode = 8
	TypeNumeric       TypeCode = 2
	TypeDecimal       TypeCode = 3
	TypeChar          TypeCode = 1
	TypeVarchar       TypeCode = 12
	TypeLongVarchar   TypeCode = -1
	TypeDate          TypeCode = 91
	TypeTime          TypeCode = 92
	TypeTimestamp     TypeCode = 93
	TypeBinary        TypeCode = -2
	TypeVarBinary     TypeCode = -3
	TypeLongVarBinary TypeCode = -4
	TypeNull          TypeCode = 0
	TypeOther         TypeCode = 1111
	TypeBlob          TypeCode = 2004
	TypeClob          TypeCode = 2005
	TypeBoolean       TypeCode = 16
)

// AllTypeCodes lists every abstract type in a fixed order.
var AllTypeCodes = []TypeCode{
	TypeInteger, TypeBigInt, TypeSmallInt, TypeTinyInt, TypeBit, TypeBoolean,
	TypeReal, TypeFloat, TypeDouble, TypeDecimal, TypeNumeric,
	TypeChar, TypeVarchar, TypeLongVarchar, TypeClob,
	TypeBinary, TypeVarBinary, TypeLongVarBinary, TypeBlob,
	TypeDate, TypeTime, TypeTimestamp, TypeNull, TypeOther,
}

var typeNames = map[TypeCode]string{
	TypeBit:           "BIT",
	TypeTinyInt:       "TINYINT",
	TypeSmallInt:      "SMALLINT",
	TypeInteger:       "INTEGER",
	TypeBigInt:        "BIGINT",
	TypeFloat:         "FLOAT",
	TypeReal:          "REAL",
	TypeDouble:        "DOUBLE",
	TypeNumeric:       "NUMERIC",
	TypeDecimal:       "DECIMAL",
	TypeChar:          "CHAR",
	TypeVarchar:       "VARCHAR",
	TypeLongVarchar:   "LONGVARCHAR",
	TypeDate:          "DATE",
	TypeTime:          "TIME",
	TypeTimestamp:     "TIMESTAMP",
	TypeBinary:        "BINARY",
	TypeVarBinary:     "VARBINARY",
	TypeLongVarBinary: "LONGVARBINARY",
	TypeNull:          "NULL",
	TypeOther:         "OTHER",
	TypeBlob:          "BLOB",
	TypeClob:          "CLOB",
	TypeBoolean:       "BOOLEAN",
}

func (c TypeCode) String() string {
	if name, ok := typeNames[c]; ok {
		return name
	}
	return fmt.Sprintf("TYPE(%d)", int(c))
}

// ParseTypeCode resolves an abstract type name such as "VARCHAR" (case-insensitive).
func ParseTypeCode(name string) (TypeCode, error) {
	upper := strings.ToUpper(strings.TrimSpace(name))
	for code, n := range typeNames {
		if n == upper {
			return code, nil
		}
	}
	return TypeOther, fmt.Errorf("unknown type %q", name)
}

// Category groups type codes for assignment compatibility.
type Category int

const (
	CategoryOther Category = iota
	CategoryNumeric
	CategoryCharacter
	CategoryBinary
	CategoryTemporal
	CategoryBoolean
)

// Category returns the family the type belongs to.
func (c TypeCode) Category() Category {
	switch c {
	case TypeTinyInt, TypeSmallInt, TypeInteger, TypeBigInt,
		TypeFloat, TypeReal, TypeDouble, TypeNumeric, TypeDecimal:
		return CategoryNumeric
	case TypeChar, TypeVarchar, TypeLongVarchar, TypeClob:
		return CategoryCharacter
	case TypeBinary, TypeVarBinary, TypeLongVarBinary, TypeBlob:
		return CategoryBinary
	case TypeDate, TypeTime, TypeTimestamp:
		return CategoryTemporal
	case TypeBit, TypeBoolean:
		return CategoryBoolean
	default:
		return CategoryOther
	}
}

// IsNumeric reports whether the type holds numbers.
func (c TypeCode) IsNumeric() bool { return c.Category() == CategoryNumeric }

// IsInteger reports whether the type is an exact whole-number type.
func (c TypeCode) IsInteger() bool {
	switch c {
	case TypeTinyInt, TypeSmallInt, TypeInteger, TypeBigInt:
		return true
	}
	return false
}

// HasScale reports whether a scale is meaningful for the type.
func (c TypeCode) HasScale() bool {
	return c == TypeDecimal || c == TypeNumeric
}

// HasSize reports whether the type takes a length or precision.
func (c TypeCode) HasSize() bool {
	switch c {
	case TypeChar, TypeVarchar, TypeBinary, TypeVarBinary, TypeDecimal, TypeNumeric:
		return true
	}
	return false
}

// IsLong reports whether the type is a large object type.
func (c TypeCode) IsLong() bool {
	switch c {
	case TypeLongVarchar, TypeLongVarBinary, TypeClob, TypeBlob:
		return true
	}
	return false
}

// IsText reports whether default values of the type are rendered as string literals.
func (c TypeCode) IsText() bool {
	return c.Category() == CategoryCharacter
}

// AssignableFrom reports whether a value of type other can be stored in a column of type c.
func (c TypeCode) AssignableFrom(other TypeCode) bool {
	if c == other {
		return true
	}
	cc, oc := c.Category(), other.Category()
	if cc == CategoryOther || oc == CategoryOther {
		return false
	}
	if cc == oc {
		return true
	}
	// BIT/BOOLEAN are frequently stored as small numbers.
	return (cc == CategoryBoolean && oc == CategoryNumeric) || (cc == CategoryNumeric && oc == CategoryBoolean)
}

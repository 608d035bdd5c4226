package platform

import (
	"strconv"
	"strings"
	"time"

	"github.com/tordrt/ddlkit/internal/model"
)

var (
	dateLayouts      = []string{"2006-01-02"}
	timeLayouts      = []string{"15:04:05", "15:04:05.999999999", "15:04"}
	timestampLayouts = []string{
		"2006-01-02 15:04:05.999999999",
		"2006-01-02T15:04:05.999999999",
		"2006-01-02T15:04:05Z07:00",
		"2006-01-02 15:04:05Z07:00",
		"2006-01-02 15:04",
		"2006-01-02",
	}
)

// DefaultLiteral renders the default value of the column as a SQL literal.
// It reports false when no DEFAULT clause is to be written.
func (e *Emitter) DefaultLiteral(c *model.Column) (string, bool) {
	info := e.b.info
	if c.Default == nil || c.AutoIncrement {
		return "", false
	}
	if c.Type.IsLong() && !info.DefaultValuesForLongTypes {
		return "", false
	}
	value := *c.Default
	if strings.EqualFold(strings.TrimSpace(value), "NULL") {
		if !info.NullAsDefaultAllowed {
			return "", false
		}
		return "NULL", true
	}
	return FormatLiteral(info, c.Type, value), true
}

// FormatLiteral renders value as a literal of the given type. Temporal values
// that do not parse, such as CURRENT_TIMESTAMP, are emitted unchanged.
func FormatLiteral(info Info, code model.TypeCode, value string) string {
	switch code.Category() {
	case model.CategoryCharacter:
		return QuoteString(info, value)
	case model.CategoryBoolean:
		return booleanLiteral(info, value)
	case model.CategoryTemporal:
		return temporalLiteral(code, value)
	case model.CategoryNumeric:
		if _, err := strconv.ParseFloat(strings.TrimSpace(value), 64); err == nil {
			return strings.TrimSpace(value)
		}
		return value
	case model.CategoryBinary:
		return QuoteString(info, value)
	default:
		return value
	}
}

// QuoteString renders a string literal, doubling single quotes and, on
// dialects that treat it as an escape, backslashes.
func QuoteString(info Info, s string) string {
	if info.EscapeBackslashInStrings {
		s = strings.ReplaceAll(s, `\`, `\\`)
	}
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

func booleanLiteral(info Info, value string) string {
	var b bool
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "true", "1", "t", "y", "yes":
		b = true
	case "false", "0", "f", "n", "no":
		b = false
	default:
		return value
	}
	switch {
	case info.BooleanLiteralsAsNumbers && b:
		return "1"
	case info.BooleanLiteralsAsNumbers:
		return "0"
	case b:
		return "TRUE"
	default:
		return "FALSE"
	}
}

func temporalLiteral(code model.TypeCode, value string) string {
	trimmed := strings.TrimSpace(strings.Trim(strings.TrimSpace(value), "'"))
	switch code {
	case model.TypeDate:
		if t, ok := parseAny(dateLayouts, trimmed); ok {
			return "'" + t.Format("2006-01-02") + "'"
		}
	case model.TypeTime:
		if t, ok := parseAny(timeLayouts, trimmed); ok {
			return "'" + t.Format("15:04:05") + "'"
		}
	case model.TypeTimestamp:
		if t, ok := parseAny(timestampLayouts, trimmed); ok {
			return "'" + t.Format("2006-01-02 15:04:05.000") + "'"
		}
	}
	return value
}

func parseAny(layouts []string, s string) (time.Time, bool) {
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// UnquoteDefault strips one level of string literal quoting from a default
// value read from metadata; doubled quotes inside the literal collapse to one.
func UnquoteDefault(s string) string {
	t := strings.TrimSpace(s)
	if len(t) >= 2 && t[0] == '\'' && t[len(t)-1] == '\'' {
		return strings.ReplaceAll(t[1:len(t)-1], "''", "'")
	}
	return s
}

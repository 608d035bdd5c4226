package metadata

import (
	"context"
	"sort"
	"strings"
)

// Memory is an in-process MetaData fed with rows directly. It backs tests and
// offline tooling that already holds a metadata snapshot.
type Memory struct {
	TableRows      []TableRow
	ColumnRows     []ColumnRow
	PrimaryKeyRows []PrimaryKeyRow
	ImportedRows   []ImportedKeyRow
	IndexRows      []IndexInfoRow
	TypeRows       []TypeInfoRow

	// Failures makes the named operation ("tables", "columns", "primary keys",
	// "imported keys", "index info", "type info") return the given error.
	Failures map[string]error
}

var _ MetaData = (*Memory)(nil)

func (m *Memory) fail(op string) error {
	if m.Failures == nil {
		return nil
	}
	return m.Failures[op]
}

func (m *Memory) Tables(_ context.Context, catalog, schemaPattern string, types []string) ([]TableRow, error) {
	if err := m.fail("tables"); err != nil {
		return nil, err
	}
	var out []TableRow
	for _, t := range m.TableRows {
		if catalog != "" && !strings.EqualFold(t.Catalog, catalog) {
			continue
		}
		if schemaPattern != "" && !MatchPattern(schemaPattern, t.Schema) {
			continue
		}
		if len(types) > 0 && !containsFold(types, t.Type) {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

func (m *Memory) Columns(_ context.Context, _, _, table string) ([]ColumnRow, error) {
	if err := m.fail("columns"); err != nil {
		return nil, err
	}
	var out []ColumnRow
	for _, c := range m.ColumnRows {
		if c.Table == table {
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].OrdinalPosition < out[j].OrdinalPosition })
	return out, nil
}

func (m *Memory) PrimaryKeys(_ context.Context, _, _, table string) ([]PrimaryKeyRow, error) {
	if err := m.fail("primary keys"); err != nil {
		return nil, err
	}
	var out []PrimaryKeyRow
	for _, pk := range m.PrimaryKeyRows {
		if pk.Table == table {
			out = append(out, pk)
		}
	}
	return out, nil
}

func (m *Memory) ImportedKeys(_ context.Context, _, _, table string) ([]ImportedKeyRow, error) {
	if err := m.fail("imported keys"); err != nil {
		return nil, err
	}
	var out []ImportedKeyRow
	for _, fk := range m.ImportedRows {
		if fk.FKTable == table {
			out = append(out, fk)
		}
	}
	return out, nil
}

func (m *Memory) IndexInfo(_ context.Context, _, _, table string) ([]IndexInfoRow, error) {
	if err := m.fail("index info"); err != nil {
		return nil, err
	}
	var out []IndexInfoRow
	for _, idx := range m.IndexRows {
		if idx.Table == table {
			out = append(out, idx)
		}
	}
	return out, nil
}

func (m *Memory) TypeInfo(_ context.Context) ([]TypeInfoRow, error) {
	if err := m.fail("type info"); err != nil {
		return nil, err
	}
	return append([]TypeInfoRow(nil), m.TypeRows...), nil
}

// MatchPattern matches a metadata search pattern where % matches any run of
// characters and _ matches a single character. Matching is case-insensitive.
func MatchPattern(pattern, s string) bool {
	p := []rune(strings.ToUpper(pattern))
	r := []rune(strings.ToUpper(s))
	return matchRunes(p, r)
}

func matchRunes(p, s []rune) bool {
	for len(p) > 0 {
		switch p[0] {
		case '%':
			for i := 0; i <= len(s); i++ {
				if matchRunes(p[1:], s[i:]) {
					return true
				}
			}
			return false
		case '_':
			if len(s) == 0 {
				return false
			}
		default:
			if len(s) == 0 || s[0] != p[0] {
				return false
			}
		}
		p, s = p[1:], s[1:]
	}
	return len(s) == 0
}

func containsFold(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}

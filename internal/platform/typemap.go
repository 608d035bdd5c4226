package platform

import (
	"strconv"
	"strings"

	"github.com/tordrt/ddlkit/internal/model"
)

// TypeMap maps abstract type codes to native spellings and back.
//
// A spelling is either a bare name ("VARCHAR"), to which "(size)" or
// "(size,scale)" is appended for sized types, a template with {size} and
// {scale} placeholders ("VARCHAR({size}) FOR BIT DATA"), or a fixed spelling
// ("DECIMAL(18,0)") that is emitted verbatim. Spellings registered with
// SetPlain never take arguments, e.g. "BYTEA" for a sized binary type.
//
// A TypeMap is filled while its dialect is constructed and only read afterwards.
type TypeMap struct {
	native  map[model.TypeCode]string
	plain   map[model.TypeCode]bool
	aliases map[string]model.TypeCode

	exact map[string]model.TypeCode // canonical fixed spellings
	shape map[string]model.TypeCode // argument-free shapes
}

// NewTypeMap returns a map spelling every abstract type by its standard name.
func NewTypeMap() *TypeMap {
	m := &TypeMap{
		native:  make(map[model.TypeCode]string),
		plain:   make(map[model.TypeCode]bool),
		aliases: make(map[string]model.TypeCode),
	}
	for _, code := range model.AllTypeCodes {
		m.native[code] = code.String()
	}
	m.rebuild()
	return m
}

// Clone returns an independent copy, for dialects derived from another one.
func (m *TypeMap) Clone() *TypeMap {
	out := &TypeMap{native: cloneMap(m.native), plain: cloneMap(m.plain), aliases: cloneMap(m.aliases)}
	out.rebuild()
	return out
}

// Set registers the native spelling for a type code.
func (m *TypeMap) Set(code model.TypeCode, spelling string) *TypeMap {
	m.native[code] = spelling
	delete(m.plain, code)
	m.rebuild()
	return m
}

// SetPlain registers a spelling that is emitted without size or scale.
func (m *TypeMap) SetPlain(code model.TypeCode, spelling string) *TypeMap {
	m.native[code] = spelling
	m.plain[code] = true
	m.rebuild()
	return m
}

// Alias makes the reverse lookup of a native name resolve to code, taking
// precedence over spellings registered with Set.
func (m *TypeMap) Alias(nativeName string, code model.TypeCode) *TypeMap {
	m.aliases[strings.ToUpper(strings.TrimSpace(nativeName))] = code
	m.rebuild()
	return m
}

// Spelling returns the registered spelling for the code.
func (m *TypeMap) Spelling(code model.TypeCode) (string, bool) {
	s, ok := m.native[code]
	return s, ok
}

// ToNative renders the native type for a code with the given size and scale.
// Size must already be resolved against the dialect default.
func (m *TypeMap) ToNative(code model.TypeCode, size, scale int) (string, bool) {
	spelling, ok := m.native[code]
	if !ok {
		return "", false
	}
	if strings.Contains(spelling, "{size}") || strings.Contains(spelling, "{scale}") {
		r := strings.NewReplacer("{size}", strconv.Itoa(size), "{scale}", strconv.Itoa(scale))
		return r.Replace(spelling), true
	}
	if m.plain[code] || !code.HasSize() || size <= 0 || strings.Contains(spelling, "(") {
		return spelling, true
	}
	if code.HasScale() && scale > 0 {
		return spelling + "(" + strconv.Itoa(size) + "," + strconv.Itoa(scale) + ")", true
	}
	return spelling + "(" + strconv.Itoa(size) + ")", true
}

// FromNative resolves a native spelling to its abstract code, size and scale.
// It reports false when the spelling is unknown to the dialect.
func (m *TypeMap) FromNative(spelling string) (code model.TypeCode, size, scale int, ok bool) {
	parsed, err := parseNativeType(spelling)
	if err != nil {
		return model.TypeOther, 0, 0, false
	}
	if code, ok := m.exact[parsed.canonical()]; ok {
		return code, 0, 0, true
	}
	code, ok = m.shape[parsed.shape()]
	if !ok {
		return model.TypeOther, 0, 0, false
	}
	if code.HasSize() && len(parsed.Args) > 0 {
		size = parsed.Args[0]
	}
	if code.HasScale() && len(parsed.Args) > 1 {
		scale = parsed.Args[1]
	}
	return code, size, scale, true
}

// rebuild recomputes the reverse lookup tables. A spelling whose shape matches
// the code's own name claims the shape first; remaining codes follow in
// model.AllTypeCodes order, so the first registration of a shared spelling wins.
func (m *TypeMap) rebuild() {
	m.exact = make(map[string]model.TypeCode)
	m.shape = make(map[string]model.TypeCode)

	claim := func(code model.TypeCode, canonicalOnly bool) {
		spelling, ok := m.native[code]
		if !ok {
			return
		}
		templated := strings.Contains(spelling, "{")
		parsed, err := parseNativeType(strings.NewReplacer("{size}", "1", "{scale}", "0").Replace(spelling))
		if err != nil {
			return
		}
		if canonicalOnly && parsed.shape() != code.String() {
			return
		}
		if len(parsed.Args) > 0 && !templated {
			if _, taken := m.exact[parsed.canonical()]; !taken {
				m.exact[parsed.canonical()] = code
			}
			return
		}
		if _, taken := m.shape[parsed.shape()]; !taken {
			m.shape[parsed.shape()] = code
		}
	}
	for _, code := range model.AllTypeCodes {
		claim(code, true)
	}
	for _, code := range model.AllTypeCodes {
		claim(code, false)
	}
	for name, code := range m.aliases {
		if parsed, err := parseNativeType(name); err == nil {
			if len(parsed.Args) > 0 {
				m.exact[parsed.canonical()] = code
			} else {
				m.shape[parsed.shape()] = code
			}
		}
	}
}

package platform

import (
	"slices"
	"strings"

	"github.com/tordrt/ddlkit/internal/model"
)

// CaseFold is the case a dialect folds unquoted identifiers to.
type CaseFold int

const (
	FoldUpper CaseFold = iota
	FoldLower
	FoldPreserve
)

// Apply folds s according to the policy.
func (f CaseFold) Apply(s string) string {
	switch f {
	case FoldUpper:
		return strings.ToUpper(s)
	case FoldLower:
		return strings.ToLower(s)
	default:
		return s
	}
}

// Info enumerates the capabilities and syntactic knobs of a dialect.
//
// Info is a value: dialect constructors fill it in once and the platform
// hands out copies. The maps behind DefaultSizeFor and IsReserved are only
// written during construction.
type Info struct {
	Name string

	// Identifiers
	MaxIdentifierLength           int    // 0 means unlimited
	IdentifierQuoteChar           string // empty means identifiers are never quoted
	DelimitedIdentifiersSupported bool
	IdentifierCaseFold            CaseFold
	SupportsMixedCaseIdentifiers  bool

	// Constraint placement
	PrimaryKeyEmbedded           bool
	ForeignKeysEmbedded          bool
	IndicesEmbedded              bool
	ForeignKeysSupported         bool
	AlterAddForeignKeySupported  bool
	SupportsNonUniqueIndices     bool
	IndexColumnSizeSupported     bool
	OnDeleteActions              []model.Action
	OnUpdateActions              []model.Action
	SingleAutoIncrementPerTable  bool
	AutoIncrementNeedsPrimaryKey bool // or the leading column of an index

	// Statement framing
	CommentPrefix       string
	CommentSuffix       string
	StatementTerminator string
	AutoCommitDDL       bool

	// Alter support
	SupportsAlterForDrop     bool
	SupportsAlterColumn      bool
	SupportsAddColumnDefault bool
	SupportsRenameTable      bool // table rebuilds need it
	RebuildIntoNewTable      bool // rebuild under a temporary name instead of renaming the live table away

	// Values
	NullAsDefaultAllowed      bool
	DefaultValuesForLongTypes bool
	LastIdentityValueReadable bool
	ExplicitNullRequired      bool
	BooleanLiteralsAsNumbers  bool
	EscapeBackslashInStrings  bool

	// Caller switches, set through Options.
	Strict                  bool
	CaseSensitive           bool
	DelimitedIdentifierMode bool

	defaultSizes  map[model.TypeCode]int
	reservedWords map[string]bool
}

var allActions = []model.Action{model.ActionCascade, model.ActionSetNull, model.ActionSetDefault, model.ActionRestrict}

// NewInfo returns the generic defaults every dialect starts from.
func NewInfo(name string) Info {
	info := Info{
		Name:                          name,
		IdentifierQuoteChar:           `"`,
		DelimitedIdentifiersSupported: true,
		IdentifierCaseFold:            FoldUpper,
		PrimaryKeyEmbedded:            true,
		ForeignKeysSupported:          true,
		AlterAddForeignKeySupported:   true,
		SupportsNonUniqueIndices:      true,
		OnDeleteActions:               allActions,
		OnUpdateActions:               allActions,
		SingleAutoIncrementPerTable:   true,
		CommentPrefix:                 "--",
		StatementTerminator:           ";",
		AutoCommitDDL:                 true,
		SupportsAlterForDrop:          true,
		SupportsAlterColumn:           true,
		SupportsAddColumnDefault:      true,
		SupportsRenameTable:           true,
		NullAsDefaultAllowed:          true,
		DefaultValuesForLongTypes:     true,
		defaultSizes: map[model.TypeCode]int{
			model.TypeChar:      254,
			model.TypeVarchar:   254,
			model.TypeBinary:    254,
			model.TypeVarBinary: 254,
			model.TypeDecimal:   15,
			model.TypeNumeric:   15,
		},
		reservedWords: make(map[string]bool),
	}
	info.AddReservedWords(sql92ReservedWords...)
	return info
}

// SetDefaultSize sets the fallback size used when a column omits one.
func (i *Info) SetDefaultSize(code model.TypeCode, size int) {
	i.defaultSizes = cloneMap(i.defaultSizes)
	i.defaultSizes[code] = size
}

// DefaultSizeFor returns the fallback size for the type, or 0.
func (i Info) DefaultSizeFor(code model.TypeCode) int {
	return i.defaultSizes[code]
}

// AddReservedWords extends the reserved word list of the dialect.
func (i *Info) AddReservedWords(words ...string) {
	i.reservedWords = cloneMap(i.reservedWords)
	for _, w := range words {
		i.reservedWords[strings.ToUpper(w)] = true
	}
}

// IsReserved reports whether the identifier is a reserved word of the dialect.
func (i Info) IsReserved(name string) bool {
	return i.reservedWords[strings.ToUpper(name)]
}

// SupportsOnDelete reports whether the ON DELETE action can be emitted.
func (i Info) SupportsOnDelete(a model.Action) bool {
	return a == model.ActionNone || slices.Contains(i.OnDeleteActions, a)
}

// SupportsOnUpdate reports whether the ON UPDATE action can be emitted.
func (i Info) SupportsOnUpdate(a model.Action) bool {
	return a == model.ActionNone || slices.Contains(i.OnUpdateActions, a)
}

// ValidateOptions derives the model validation settings for the dialect.
func (i Info) ValidateOptions() model.ValidateOptions {
	return model.ValidateOptions{
		CaseSensitive:         i.CaseSensitive,
		SingleAutoIncrement:   i.SingleAutoIncrementPerTable,
		AutoIncrementNeedsKey: i.AutoIncrementNeedsPrimaryKey,
	}
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m)+1)
	for k, v := range m {
		out[k] = v
	}
	return out
}

var sql92ReservedWords = []string{
	"ADD", "ALL", "ALTER", "AND", "ANY", "AS", "ASC", "BETWEEN", "BY", "CASCADE",
	"CASE", "CHECK", "COLUMN", "CONSTRAINT", "CREATE", "CROSS", "CURRENT_DATE",
	"CURRENT_TIME", "CURRENT_TIMESTAMP", "DEFAULT", "DELETE", "DESC", "DISTINCT",
	"DROP", "ELSE", "END", "EXISTS", "FOREIGN", "FROM", "FULL", "GRANT", "GROUP",
	"HAVING", "IN", "INDEX", "INNER", "INSERT", "INTO", "IS", "JOIN", "KEY", "LEFT",
	"LIKE", "NOT", "NULL", "ON", "OR", "ORDER", "OUTER", "PRIMARY", "REFERENCES",
	"RIGHT", "SELECT", "SET", "TABLE", "THEN", "TO", "UNION", "UNIQUE", "UPDATE",
	"USER", "VALUES", "WHEN", "WHERE", "WITH",
}

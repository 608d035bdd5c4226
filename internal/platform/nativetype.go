package platform

import (
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// nativeType is the parsed form of a native type spelling such as
// "DECIMAL(18,0)", "VARCHAR(32) FOR BIT DATA" or "int(11) unsigned".
type nativeType struct {
	Words  []string `parser:"@Ident+"`
	Args   []int    `parser:"( '(' @Int ( ',' @Int )* ')' )?"`
	Suffix []string `parser:"@Ident*"`
}

var nativeTypeLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_$]*`},
	{Name: "Int", Pattern: `[0-9]+`},
	{Name: "Punct", Pattern: `[(),]`},
	{Name: "Whitespace", Pattern: `\s+`},
})

var nativeTypeParser = participle.MustBuild[nativeType](
	participle.Lexer(nativeTypeLexer),
	participle.Elide("Whitespace"),
)

func parseNativeType(s string) (*nativeType, error) {
	return nativeTypeParser.ParseString("", s)
}

// shape is the spelling with its arguments removed, e.g. "VARCHAR FOR BIT DATA".
func (n *nativeType) shape() string {
	parts := append(append([]string(nil), n.Words...), n.Suffix...)
	return strings.ToUpper(strings.Join(parts, " "))
}

// canonical is the normalised full spelling, e.g. "DECIMAL(18,0)".
func (n *nativeType) canonical() string {
	var b strings.Builder
	b.WriteString(strings.ToUpper(strings.Join(n.Words, " ")))
	if len(n.Args) > 0 {
		b.WriteByte('(')
		for i, a := range n.Args {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(strconv.Itoa(a))
		}
		b.WriteByte(')')
	}
	if len(n.Suffix) > 0 {
		b.WriteByte(' ')
		b.WriteString(strings.ToUpper(strings.Join(n.Suffix, " ")))
	}
	return b.String()
}

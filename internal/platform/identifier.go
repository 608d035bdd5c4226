package platform

import (
	"encoding/hex"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/zeebo/blake3"
)

var plainIdentifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// IsPlainIdentifier reports whether name can be emitted without quotes on any
// dialect, reserved words aside.
func IsPlainIdentifier(name string) bool {
	return plainIdentifier.MatchString(name)
}

// ShortenName truncates name to at most max bytes without splitting a rune.
// Truncated names end in an underscore and up to eight hex digits of the full
// name's hash, so distinct long names sharing a prefix stay distinct. A max of
// zero or less means unlimited.
func ShortenName(name string, max int) string {
	if max <= 0 || len(name) <= max {
		return name
	}
	digits := min(8, max-2)
	if digits < 1 {
		return truncateRunes(name, max)
	}
	sum := blake3.Sum256([]byte(name))
	hash := strings.ToUpper(hex.EncodeToString(sum[:4]))
	return truncateRunes(name, max-digits-1) + "_" + hash[:digits]
}

// truncateRunes cuts s to at most n bytes on a rune boundary.
func truncateRunes(s string, n int) string {
	if n >= len(s) {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

// QuoteRequirement describes why an identifier cannot be emitted bare.
type QuoteRequirement int

const (
	QuoteNone     QuoteRequirement = iota
	QuoteOptional                  // quoting preserves case or is requested, the bare form is still valid
	QuoteRequired                  // the bare form is not a valid identifier
)

// QuoteRequirement classifies an identifier against the dialect rules.
func (i Info) QuoteRequirement(name string) QuoteRequirement {
	if !IsPlainIdentifier(name) || i.IsReserved(name) {
		return QuoteRequired
	}
	if i.DelimitedIdentifierMode {
		return QuoteOptional
	}
	if i.CaseSensitive && !i.SupportsMixedCaseIdentifiers && name != i.IdentifierCaseFold.Apply(name) {
		return QuoteOptional
	}
	return QuoteNone
}

// CanQuote reports whether the dialect has delimited identifiers at all.
func (i Info) CanQuote() bool {
	return i.DelimitedIdentifiersSupported && i.IdentifierQuoteChar != ""
}

// Quote wraps name in the dialect quote characters, doubling embedded quotes.
func (i Info) Quote(name string) string {
	open := i.IdentifierQuoteChar
	closing := open
	if open == "[" {
		closing = "]"
	}
	return open + strings.ReplaceAll(name, closing, closing+closing) + closing
}

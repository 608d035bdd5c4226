package platform

import (
	"io"
	"strings"

	"github.com/tordrt/ddlkit/internal/ddlerr"
)

type scriptEntry struct {
	text    string
	comment bool
}

// Script is the ordered output of one emission run.
type Script struct {
	entries  []scriptEntry
	warnings []ddlerr.Warning

	terminator    string
	commentPrefix string
	commentSuffix string
}

func newScript(info Info) *Script {
	return &Script{
		terminator:    info.StatementTerminator,
		commentPrefix: info.CommentPrefix,
		commentSuffix: info.CommentSuffix,
	}
}

// Statements returns the statements without terminators or comments, in order.
func (s *Script) Statements() []string {
	var out []string
	for _, e := range s.entries {
		if !e.comment {
			out = append(out, e.text)
		}
	}
	return out
}

// Warnings returns the warnings recorded while the script was built.
func (s *Script) Warnings() []ddlerr.Warning {
	return s.warnings
}

// Empty reports whether the script holds no statements.
func (s *Script) Empty() bool {
	return len(s.Statements()) == 0
}

// Append adds the entries and warnings of other to s.
func (s *Script) Append(other *Script) {
	s.entries = append(s.entries, other.entries...)
	s.warnings = append(s.warnings, other.warnings...)
}

// WriteTo renders the script. Statements end with the dialect terminator and a
// newline; comments are framed with the dialect comment prefix and suffix.
func (s *Script) WriteTo(w io.Writer) (int64, error) {
	var total int64
	for _, e := range s.entries {
		n, err := io.WriteString(w, s.render(e))
		total += int64(n)
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

func (s *Script) String() string {
	var b strings.Builder
	_, _ = s.WriteTo(&b)
	return b.String()
}

func (s *Script) render(e scriptEntry) string {
	if !e.comment {
		return e.text + s.terminator + "\n"
	}
	line := s.commentPrefix + " " + e.text
	if s.commentSuffix != "" {
		line += " " + s.commentSuffix
	}
	return line + "\n"
}

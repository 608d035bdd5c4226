package platform

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/tordrt/ddlkit/internal/ddlerr"
	"github.com/tordrt/ddlkit/internal/model"
)

// Emitter accumulates the statements of one emission run. Dialect hooks write
// through it. The first error recorded is sticky: later writes are ignored and
// the run reports that error.
type Emitter struct {
	b      *Builder
	db     *model.Database
	script *Script
	buf    strings.Builder
	err    error
	warned map[string]bool
}

func (b *Builder) newEmitter(db *model.Database) *Emitter {
	return &Emitter{
		b:      b,
		db:     db,
		script: newScript(b.info),
		warned: make(map[string]bool),
	}
}

// Info returns the dialect settings of the run.
func (e *Emitter) Info() Info { return e.b.info }

// Types returns the dialect type map.
func (e *Emitter) Types() *TypeMap { return e.b.types }

// Database returns the model the run emits, used for resolving foreign tables.
func (e *Emitter) Database() *model.Database { return e.db }

// Err returns the first error recorded in the run.
func (e *Emitter) Err() error { return e.err }

// Print appends text to the current statement.
func (e *Emitter) Print(parts ...string) {
	if e.err != nil {
		return
	}
	for _, p := range parts {
		e.buf.WriteString(p)
	}
}

// Printf appends formatted text to the current statement.
func (e *Emitter) Printf(format string, args ...any) {
	if e.err != nil {
		return
	}
	fmt.Fprintf(&e.buf, format, args...)
}

// Println appends text followed by a line break.
func (e *Emitter) Println(parts ...string) {
	e.Print(parts...)
	e.Print("\n")
}

// EndStatement closes the current statement. Empty statements are dropped.
func (e *Emitter) EndStatement() {
	text := strings.TrimRight(e.buf.String(), " \t\r\n")
	e.buf.Reset()
	if e.err != nil || text == "" {
		return
	}
	e.script.entries = append(e.script.entries, scriptEntry{text: text})
}

// Statement writes a complete one-line statement.
func (e *Emitter) Statement(parts ...string) {
	e.Print(parts...)
	e.EndStatement()
}

// Comment adds a comment line between statements.
func (e *Emitter) Comment(text string) {
	if e.err != nil {
		return
	}
	e.script.entries = append(e.script.entries, scriptEntry{text: text, comment: true})
}

// Commit emits COMMIT when the dialect does not commit DDL implicitly.
func (e *Emitter) Commit() {
	if !e.b.info.AutoCommitDDL {
		e.Statement("COMMIT")
	}
}

// Fail records err unless an earlier error is already recorded.
func (e *Emitter) Fail(err error) {
	if e.err == nil && err != nil {
		e.err = err
	}
}

// Warn records a warning and logs it. Identical warnings are recorded once.
func (e *Emitter) Warn(kind ddlerr.WarningKind, table, object, format string, args ...any) {
	w := ddlerr.Warning{Kind: kind, Table: table, Object: object, Message: fmt.Sprintf(format, args...)}
	key := string(kind) + "\x00" + w.String()
	if e.warned[key] {
		return
	}
	e.warned[key] = true
	e.script.warnings = append(e.script.warnings, w)
	e.b.logger.Warn(w.Message,
		slog.String("dialect", e.b.info.Name),
		slog.String("kind", string(kind)),
		slog.String("table", table),
		slog.String("object", object))
}

// Unsupported fails the run in strict mode and records a warning otherwise.
// The construct itself is never emitted.
func (e *Emitter) Unsupported(table, object, format string, args ...any) {
	if e.b.info.Strict {
		e.Fail(ddlerr.Unsupported(e.b.info.Name, format, args...))
		return
	}
	e.Warn(ddlerr.WarnUnsupportedFeature, table, object, format, args...)
}

// Ident renders an identifier: shortened to the dialect limit and quoted when
// the dialect rules or the caller switches require it.
func (e *Emitter) Ident(name string) string {
	short := e.shorten(name)
	info := e.b.info
	switch info.QuoteRequirement(short) {
	case QuoteRequired:
		if !info.CanQuote() {
			e.Fail(ddlerr.Unsupported(info.Name, "identifier %q without quoting", short))
			return short
		}
		return info.Quote(short)
	case QuoteOptional:
		if info.CanQuote() {
			return info.Quote(short)
		}
	}
	return short
}

// Idents renders a comma separated identifier list.
func (e *Emitter) Idents(names []string) string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = e.Ident(n)
	}
	return strings.Join(out, ", ")
}

func (e *Emitter) shorten(name string) string {
	max := e.b.info.MaxIdentifierLength
	short := ShortenName(name, max)
	if short != name {
		e.Warn(ddlerr.WarnIdentifierTooLong, "", name, "identifier longer than %d characters shortened to %s", max, short)
	}
	return short
}

// TableName renders the name of a table.
func (e *Emitter) TableName(t *model.Table) string {
	return e.Ident(t.Name)
}

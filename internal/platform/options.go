package platform

import "log/slog"

type settings struct {
	strict        bool
	caseSensitive bool
	delimited     bool
	logger        *slog.Logger
}

// Option configures a Platform.
type Option func(*settings)

// WithStrict makes unsupported constructs fail emission instead of being
// skipped with a warning.
func WithStrict(strict bool) Option {
	return func(s *settings) { s.strict = strict }
}

// WithCaseSensitive matches names exactly and quotes identifiers whose
// spelling the dialect would otherwise fold.
func WithCaseSensitive(caseSensitive bool) Option {
	return func(s *settings) { s.caseSensitive = caseSensitive }
}

// WithDelimitedIdentifiers quotes every identifier the dialect can quote.
func WithDelimitedIdentifiers(delimited bool) Option {
	return func(s *settings) { s.delimited = delimited }
}

// WithLogger sets the logger used for warnings and executed statements.
func WithLogger(logger *slog.Logger) Option {
	return func(s *settings) { s.logger = logger }
}

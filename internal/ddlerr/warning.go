package ddlerr

import "fmt"

// WarningKind classifies the expected conditions the toolkit recovers from.
type WarningKind string

const (
	WarnUnsupportedFeature WarningKind = "unsupported-feature"
	WarnDanglingReference  WarningKind = "dangling-reference"
	WarnIdentifierTooLong  WarningKind = "identifier-too-long"
	WarnSkippedObject      WarningKind = "skipped-object"
)

// Warning is a recovered condition reported alongside a successful result.
type Warning struct {
	Kind    WarningKind
	Table   string
	Object  string
	Message string
}

func (w Warning) String() string {
	switch {
	case w.Table != "" && w.Object != "":
		return fmt.Sprintf("%s.%s: %s", w.Table, w.Object, w.Message)
	case w.Table != "":
		return fmt.Sprintf("%s: %s", w.Table, w.Message)
	default:
		return w.Message
	}
}

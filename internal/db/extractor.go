// Package db connects to live databases and exposes their catalogs through
// the generic metadata interface.
package db

import (
	"strings"

	"github.com/tordrt/ddlkit/internal/model"
)

// ruleAction maps the referential rule names reported by information_schema
// to model actions. NO ACTION maps to the absent action.
func ruleAction(rule string) model.Action {
	switch strings.ToUpper(strings.TrimSpace(rule)) {
	case "CASCADE", "C":
		return model.ActionCascade
	case "SET NULL", "N":
		return model.ActionSetNull
	case "SET DEFAULT", "D":
		return model.ActionSetDefault
	case "RESTRICT", "R":
		return model.ActionRestrict
	default:
		return model.ActionNone
	}
}

// tableType maps information_schema table types to the metadata vocabulary.
func tableType(reported string) string {
	switch strings.ToUpper(reported) {
	case "BASE TABLE", "TABLE":
		return "TABLE"
	case "VIEW":
		return "VIEW"
	case "LOCAL TEMPORARY", "GLOBAL TEMPORARY":
		return "TEMPORARY"
	default:
		return strings.ToUpper(reported)
	}
}

func wantsType(types []string, t string) bool {
	if len(types) == 0 {
		return true
	}
	for _, want := range types {
		if strings.EqualFold(want, t) {
			return true
		}
	}
	return false
}

func likePattern(pattern string) string {
	if pattern == "" {
		return "%"
	}
	return pattern
}

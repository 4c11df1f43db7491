package mutation

import (
	"regexp"
	"sort"
)

// titleLiteralRe captures the first quoted literal of the VALUES list,
// which the prompt contract places the dance title in.
var titleLiteralRe = regexp.MustCompile(`(?is)VALUES\s*\(\s*'((?:[^']|'')*)'`)

// Plan reorders extracted statements so reference-table inserts always
// precede the dance insert, and pulls the dance title out as the semantic
// key for the duplicate check. The provider cannot be trusted to order its
// own statements; executed out of order, the dance insert's foreign-key
// subselects would resolve to null.
func Plan(statements []Statement) []Statement {
	planned := make([]Statement, len(statements))
	copy(planned, statements)

	sort.SliceStable(planned, func(i, j int) bool {
		return planned[i].Kind.priority() < planned[j].Kind.priority()
	})

	for i := range planned {
		if planned[i].Kind == KindDanceInsert {
			planned[i].SemanticKey = danceTitle(planned[i].RawSQL)
		}
	}

	return planned
}

// danceTitle extracts the title literal from a dance insert. Doubled
// single quotes (SQL escaping) are collapsed. Empty when no literal is
// found; the executor then runs the statement without a duplicate check
// and relies on the store's uniqueness constraint.
func danceTitle(raw string) string {
	m := titleLiteralRe.FindStringSubmatch(raw)
	if m == nil {
		return ""
	}
	return unescapeSQLString(m[1])
}

func unescapeSQLString(s string) string {
	out := make([]rune, 0, len(s))
	runes := []rune(s)
	for i := 0; i < len(runes); i++ {
		out = append(out, runes[i])
		if runes[i] == '\'' && i+1 < len(runes) && runes[i+1] == '\'' {
			i++
		}
	}
	return string(out)
}

package mutation

import (
	"regexp"
	"strings"
)

// fenceRe matches fenced blocks tagged sql. The tag is part of the prompt's
// output-format contract, so matching is intentionally literal.
var fenceRe = regexp.MustCompile("(?s)```sql\\s*(.*?)```")

// The three statement shapes the prompt contract requests. Classification
// is literal pattern matching on table and column names, not SQL parsing;
// a statement matching none of these is tagged unknown and never executed.
var (
	categoryInsertRe = regexp.MustCompile(
		`(?is)^INSERT\s+OR\s+IGNORE\s+INTO\s+categories\s*\(\s*name\s*\)\s*VALUES\s*\(`)

	countryInsertRe = regexp.MustCompile(
		`(?is)^INSERT\s+OR\s+IGNORE\s+INTO\s+countries\s*\(\s*name\s*,\s*code\s*\)\s*VALUES\s*\(`)

	danceInsertRe = regexp.MustCompile(
		`(?is)^INSERT\s+INTO\s+dances\s*\(\s*title\s*,`)

	categorySubselectRe = regexp.MustCompile(
		`(?is)\(\s*SELECT\s+id\s+FROM\s+categories\s+WHERE\s+name\s*=`)

	countrySubselectRe = regexp.MustCompile(
		`(?is)\(\s*SELECT\s+id\s+FROM\s+countries\s+WHERE\s+name\s*=`)
)

// Extract scans raw assistant text for fenced sql blocks and splits each
// into classified statements. No fence means an empty result: the reply is
// pure text and nothing touches the store.
func Extract(reply string) []Statement {
	var statements []Statement

	for _, match := range fenceRe.FindAllStringSubmatch(reply, -1) {
		for _, raw := range splitStatements(match[1]) {
			statements = append(statements, Statement{
				RawSQL: raw,
				Kind:   classify(raw),
			})
		}
	}

	return statements
}

// splitStatements splits a fenced block on statement terminators and drops
// empty fragments. Semicolons inside quoted literals are respected, since
// dance titles may legitimately contain them.
func splitStatements(block string) []string {
	var (
		out     []string
		current strings.Builder
		inQuote bool
	)

	for _, r := range block {
		switch {
		case r == '\'':
			inQuote = !inQuote
			current.WriteRune(r)
		case r == ';' && !inQuote:
			if s := strings.TrimSpace(current.String()); s != "" {
				out = append(out, s)
			}
			current.Reset()
		default:
			current.WriteRune(r)
		}
	}
	if s := strings.TrimSpace(current.String()); s != "" {
		out = append(out, s)
	}

	return out
}

func classify(raw string) Kind {
	switch {
	case categoryInsertRe.MatchString(raw):
		return KindCategoryInsert
	case countryInsertRe.MatchString(raw):
		return KindCountryInsert
	case danceInsertRe.MatchString(raw) &&
		categorySubselectRe.MatchString(raw) &&
		countrySubselectRe.MatchString(raw):
		return KindDanceInsert
	default:
		return KindUnknown
	}
}

// HasExecutable reports whether at least one statement is of a known kind.
func HasExecutable(statements []Statement) bool {
	for _, s := range statements {
		if s.Kind != KindUnknown {
			return true
		}
	}
	return false
}

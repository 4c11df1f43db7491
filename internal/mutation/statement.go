// Package mutation turns fenced SQL in assistant replies into safe,
// ordered, duplicate-free store writes.
package mutation

// Kind classifies an extracted statement against the three shapes the
// prompt contract allows. Anything else is KindUnknown and never executes.
type Kind string

const (
	KindCategoryInsert Kind = "category-insert"
	KindCountryInsert  Kind = "country-insert"
	KindDanceInsert    Kind = "dance-insert"
	KindUnknown        Kind = "unknown"
)

// priority orders statements so reference-table inserts run before the
// dependent dance insert, whose foreign-key subselects need them resolved.
func (k Kind) priority() int {
	switch k {
	case KindCategoryInsert:
		return 0
	case KindCountryInsert:
		return 1
	case KindDanceInsert:
		return 2
	default:
		return 3
	}
}

// Statement is one SQL statement extracted from an assistant reply.
// Created transiently per request; never persisted.
type Statement struct {
	RawSQL string
	Kind   Kind

	// SemanticKey is the human-meaningful value checked for prior
	// existence (the dance title). Empty for reference-table inserts,
	// whose OR IGNORE form is naturally idempotent.
	SemanticKey string
}

// Status is the result of attempting one statement.
type Status string

const (
	StatusExecuted         Status = "executed"
	StatusSkippedDuplicate Status = "skipped-duplicate"
	StatusFailed           Status = "failed"
)

// Outcome pairs a statement with what happened to it.
type Outcome struct {
	Statement Statement
	Status    Status
	Detail    string
}

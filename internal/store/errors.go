package store

import (
	"errors"

	"github.com/mattn/go-sqlite3"
)

// Sentinel errors for store operations. Use errors.Is() in calling code.
var (
	// ErrNotFound indicates the requested row does not exist.
	ErrNotFound = errors.New("row not found")
)

// IsConstraintViolation reports whether err is a SQLite uniqueness or
// foreign-key constraint failure. The mutation executor treats these as
// per-statement failures, not as reasons to fail the request.
func IsConstraintViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code == sqlite3.ErrConstraint
	}
	return false
}

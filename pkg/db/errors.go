package db

import "strings"

// IsUniqueViolation reports whether the provided error is a unique-constraint
// violation. A named constraint matches either by name or by the driver's
// generic duplicate-key text; Postgres names the constraint in its message,
// SQLite names the columns instead.
func IsUniqueViolation(err error, constraintName string) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	if constraintName != "" && strings.Contains(msg, constraintName) {
		return true
	}
	return strings.Contains(msg, "duplicate key value") ||
		strings.Contains(msg, "UNIQUE constraint failed")
}

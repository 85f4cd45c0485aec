package transactions

import (
	"errors"
	"sort"
	"strings"
)

// ErrNotFound is returned both when a transaction does not exist and when
// it exists under a different owner. The two cases must stay
// indistinguishable so an id cannot be probed for existence.
var ErrNotFound = errors.New("transaction not found")

// ValidationError maps a field name to the problems found on it. All
// field errors for a payload are collected before it is returned, not
// just the first one.
type ValidationError map[string][]string

func (e ValidationError) Error() string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f+": "+strings.Join(e[f], "; "))
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

func (e ValidationError) add(field, msg string) {
	e[field] = append(e[field], msg)
}

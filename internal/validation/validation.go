// Package validation checks transaction feed records before they reach the
// ledger. Invalid tags and quantities are caught here, at construction time,
// rather than during replay.
package validation

import (
	"fmt"
	"strings"
)

// Error collects field-specific validation failures for one record.
type Error struct {
	Fields map[string]string
}

func (e *Error) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for field, msg := range e.Fields {
		msgs = append(msgs, fmt.Sprintf("%s: %s", field, msg))
	}
	return strings.Join(msgs, "; ")
}

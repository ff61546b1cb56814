package schema

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidSchema is matched by every structural error returned from New and
// Parse.
var ErrInvalidSchema = errors.New("schema: invalid schema")

// Issue is a single structural problem found while loading a schema.
type Issue struct {
	// Path locates the offending node, for example "steps[1].fields[2]".
	Path    string `json:"path,omitempty"`
	Message string `json:"message"`
}

func (i Issue) String() string {
	if i.Path == "" {
		return i.Message
	}
	return i.Path + ": " + i.Message
}

// Error aggregates every issue found in a schema. A schema with any issue
// cannot start a workflow.
type Error struct {
	Issues []Issue
}

func (e *Error) Error() string {
	if e == nil || len(e.Issues) == 0 {
		return ErrInvalidSchema.Error()
	}
	const maxShown = 3
	var b strings.Builder
	b.WriteString(ErrInvalidSchema.Error())
	b.WriteString(": ")
	limit := len(e.Issues)
	if limit > maxShown {
		limit = maxShown
	}
	for i := 0; i < limit; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(e.Issues[i].String())
	}
	if len(e.Issues) > limit {
		fmt.Fprintf(&b, "; ... (total %d)", len(e.Issues))
	}
	return b.String()
}

// Unwrap lets errors.Is match ErrInvalidSchema.
func (e *Error) Unwrap() error {
	return ErrInvalidSchema
}

// AsError extracts a *Error from err.
func AsError(err error) (*Error, bool) {
	var schemaErr *Error
	if errors.As(err, &schemaErr) {
		return schemaErr, true
	}
	return nil, false
}

type issueList []Issue

func (l *issueList) add(path, format string, args ...any) {
	*l = append(*l, Issue{Path: path, Message: fmt.Sprintf(format, args...)})
}

func (l issueList) err() error {
	if len(l) == 0 {
		return nil
	}
	return &Error{Issues: append([]Issue(nil), l...)}
}

func stepPath(stepIdx int) string {
	return fmt.Sprintf("steps[%d]", stepIdx)
}

func fieldPath(stepIdx, fieldIdx int) string {
	return fmt.Sprintf("steps[%d].fields[%d]", stepIdx, fieldIdx)
}

package wizard

import (
	"fmt"
	"sort"
	"strings"
)

// ValidationError carries one message per offending field. Every offending
// field is reported in a single response instead of stopping at the first.
type ValidationError struct {
	Fields map[string]string
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: message}}
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for field, msg := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", field, msg))
	}
	sort.Strings(parts)
	return strings.Join(parts, "; ")
}

// FieldErrors accumulates validation failures across a whole step.
type FieldErrors struct {
	fields map[string]string
}

func NewFieldErrors() *FieldErrors {
	return &FieldErrors{fields: map[string]string{}}
}

func (f *FieldErrors) Add(field, message string) {
	if _, seen := f.fields[field]; !seen {
		f.fields[field] = message
	}
}

func (f *FieldErrors) Empty() bool { return len(f.fields) == 0 }

// Err returns a ValidationError when any field failed, nil otherwise.
func (f *FieldErrors) Err() error {
	if f.Empty() {
		return nil
	}
	return &ValidationError{Fields: f.fields}
}

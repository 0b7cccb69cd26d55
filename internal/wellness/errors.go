// ABOUTME: Error values returned by the wellness service.
// ABOUTME: ValidationError carries per-field messages that surfaces show to users.
package wellness

import (
	"errors"
	"sort"
	"strings"

	"github.com/harperreed/cortitrack/internal/storage"
)

var (
	// ErrUnauthorized is returned when the acting principal lacks permission for an operation.
	ErrUnauthorized = errors.New("wellness: unauthorized")
	// ErrEmptyPatch is returned when an edit carries no metric values.
	ErrEmptyPatch = errors.New("wellness: patch has no metric fields")
	// ErrInvalidGaugeSettings wraps gauge settings that fail validation.
	ErrInvalidGaugeSettings = errors.New("wellness: invalid gauge settings")
	// ErrNotFound is the storage sentinel, re-exported for surfaces.
	ErrNotFound = storage.ErrNotFound
)

// ValidationError captures field level validation issues that callers can surface to users.
type ValidationError struct {
	FieldErrors map[string]string
}

// Error implements the error interface.
func (v *ValidationError) Error() string {
	if v == nil || len(v.FieldErrors) == 0 {
		return "validation failed"
	}
	fields := make([]string, 0, len(v.FieldErrors))
	for field := range v.FieldErrors {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, v.FieldErrors[field])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// HasErrors reports whether any field level issues were recorded.
func (v *ValidationError) HasErrors() bool {
	return v != nil && len(v.FieldErrors) > 0
}

func (v *ValidationError) add(field, message string) {
	if v.FieldErrors == nil {
		v.FieldErrors = make(map[string]string)
	}
	v.FieldErrors[field] = message
}

// orNil returns v as an error only when it holds field errors.
func (v *ValidationError) orNil() error {
	if v.HasErrors() {
		return v
	}
	return nil
}

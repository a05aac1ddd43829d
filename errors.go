package xenv

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
)

// ErrInvalidTarget is returned when the load target is not a non-nil pointer
// to a struct.
var ErrInvalidTarget = errors.New("xenv: target must be a non-nil pointer to a struct")

// NotFoundError reports a required key that no source, test override or
// default could resolve.
type NotFoundError struct {
	Key string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("failed to read environment variable '%s'", e.Key)
}

// ParseError reports a raw value its parser rejected. For arrays Value is the
// failing token.
type ParseError struct {
	Key          string
	Value        string
	ExpectedType string
	Err          error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse environment variable '%s' with value '%s' (expected type: %s)",
		e.Key, e.Value, e.ExpectedType)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ValidationError reports a parsed value a validator rejected.
type ValidationError struct {
	Key     string
	Value   string
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for environment variable '%s' with value '%s': %s",
		e.Key, e.Value, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// MultipleError aggregates field failures when WithAllErrors is set.
type MultipleError struct {
	Errors []error
}

func (e *MultipleError) Error() string {
	lines := make([]string, len(e.Errors))
	for i, err := range e.Errors {
		lines[i] = fmt.Sprintf("  %d. %v", i+1, err)
	}

	return "multiple errors occurred while loading environment variables:\n" + strings.Join(lines, "\n")
}

func (e *MultipleError) Unwrap() []error {
	return e.Errors
}

// StructValidationError wraps the error returned by the Validate method of an
// assembled struct.
type StructValidationError struct {
	Type reflect.Type
	Err  error
}

func (e *StructValidationError) Error() string {
	return fmt.Sprintf("validation failed for %s: %v", e.Type, e.Err)
}

func (e *StructValidationError) Unwrap() error {
	return e.Err
}

// UnknownKeysError lists keys of settings files that no field consumes.
type UnknownKeysError struct {
	// Keys maps file paths to their unknown keys.
	Keys map[string][]string
}

func (e *UnknownKeysError) Error() string {
	if len(e.Keys) == 0 {
		return "unknown keys found in settings"
	}

	parts := make([]string, 0, len(e.Keys))
	for file, keys := range e.Keys {
		sorted := append([]string(nil), keys...)
		sort.Strings(sorted)
		parts = append(parts, fmt.Sprintf("%s: %s", file, strings.Join(sorted, ", ")))
	}
	sort.Strings(parts)

	return fmt.Sprintf("unknown keys found in settings files: %s", strings.Join(parts, "; "))
}

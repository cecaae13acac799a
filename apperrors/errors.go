package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrConfig       = errors.New("configuration error")
	ErrInvalidInput = errors.New("invalid input")
)

// ConfigError reports a required table or column that is absent from the store.
// It is always fatal for the operation that hit it.
type ConfigError struct {
	Table  string
	Column string
}

func (e *ConfigError) Error() string {
	if e.Column == "" {
		return fmt.Sprintf("required table %q not found", e.Table)
	}
	return fmt.Sprintf("required column %q not found in table %q", e.Column, e.Table)
}

func (e *ConfigError) Is(target error) bool { return target == ErrConfig }

// NotFoundError reports a lookup key with no matching row.
type NotFoundError struct {
	Entity string
	Key    string
}

func (e *NotFoundError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("%s: empty key", e.Entity)
	}
	return fmt.Sprintf("%s not found: %s", e.Entity, e.Key)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// ValidationError wraps payload validation failures.
type ValidationError struct {
	Err error
}

func (e *ValidationError) Error() string { return "invalid input: " + e.Err.Error() }

func (e *ValidationError) Unwrap() error { return e.Err }

func (e *ValidationError) Is(target error) bool { return target == ErrInvalidInput }

func NewConfigError(table, column string) error {
	return &ConfigError{Table: table, Column: column}
}

func NewNotFoundError(entity, key string) error {
	return &NotFoundError{Entity: entity, Key: key}
}

func NewValidationError(err error) error {
	return &ValidationError{Err: err}
}

// HTTPStatus maps an error onto the response code handlers return.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

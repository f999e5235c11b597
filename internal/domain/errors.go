package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Domain errors
var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrExpenseNotFound    = errors.New("expense not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrKeyNotFound        = errors.New("key not found")
	ErrInvalidCredentials = errors.New("Invalid credentials")
	ErrNoActiveSession    = errors.New("no active session")
)

// Validation constants
const (
	MinDescriptionLength = 3
	MaxDescriptionLength = 200
	MinUsernameLength    = 3
	MinPasswordLength    = 6
)

// MaxExpenseAmount is the largest amount a single expense may carry
var MaxExpenseAmount = mustDecimal("1000000")

// FieldError is a single field-level validation failure
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError carries every field that failed validation.
// It is recovered at the input boundary and never crosses it.
type ValidationError struct {
	Fields map[string]string
}

// NewValidationError creates a ValidationError for a single field
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: message}}
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	parts := make([]string, 0, len(e.Fields))
	for _, fe := range e.FieldErrors() {
		parts = append(parts, fe.Field+": "+fe.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Is lets errors.Is(err, ErrInvalidInput) match any validation failure
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// Add records a message for field; the first message per field wins
func (e *ValidationError) Add(field, message string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	if _, exists := e.Fields[field]; !exists {
		e.Fields[field] = message
	}
}

// HasErrors reports whether any field failed
func (e *ValidationError) HasErrors() bool {
	return e != nil && len(e.Fields) > 0
}

// FieldErrors returns the field errors sorted by field name
func (e *ValidationError) FieldErrors() []FieldError {
	result := make([]FieldError, 0, len(e.Fields))
	for field, msg := range e.Fields {
		result = append(result, FieldError{Field: field, Message: msg})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Field < result[j].Field })
	return result
}

// Transport error messages shown to the user
const (
	MsgRateLimited = "Too many requests. Please try again in a few moments."
	MsgNotFound    = "Resource not found. Please try again."
)

// TransportError is returned when the remote data service fails.
// Message is display-ready.
type TransportError struct {
	Status  int
	Message string
	Err     error
}

func (e *TransportError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("transport error (status %d): %s", e.Status, e.Message)
	}
	return "transport error: " + e.Message
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// PersistenceError is returned when durable local storage fails
type PersistenceError struct {
	Op  string
	Key string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// Package errors provides the error types used across the catalogsync
// engine. Typed errors support errors.Is/errors.As checks so callers can
// distinguish malformed input from allocator exhaustion or store failures.
package errors

import (
	"errors"
	"fmt"
)

// New returns an error that formats as the given text.
// It's an alias for the standard library errors.New for convenience.
var New = errors.New

// As is an alias for the standard library errors.As.
var As = errors.As

// Common sentinel errors for the catalogsync engine.
var (
	// ErrMalformedRecord indicates a record missing its required shape
	// (no usable name field, or a non-integer identifier).
	ErrMalformedRecord = errors.New("malformed record")

	// ErrAllocatorExhausted indicates the identifier space is densely
	// used and no free identifier could be issued. Practically
	// unreachable; treated as an invariant violation.
	ErrAllocatorExhausted = errors.New("identifier allocator exhausted")

	// ErrInvalidInput indicates that provided input was invalid.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotFound indicates that a requested resource was not found.
	ErrNotFound = errors.New("not found")

	// ErrUnknownCollection indicates a reference to a collection type
	// the engine has no reference table entry for.
	ErrUnknownCollection = errors.New("unknown collection")
)

// MalformedRecordError reports a record that cannot be reconciled.
// The record is skipped and the failure surfaces in the run report.
type MalformedRecordError struct {
	Collection string
	Index      int
	Message    string
}

// Error implements the error interface.
func (e *MalformedRecordError) Error() string {
	if e.Collection != "" {
		return fmt.Sprintf("malformed record in %s at index %d: %s", e.Collection, e.Index, e.Message)
	}
	return fmt.Sprintf("malformed record at index %d: %s", e.Index, e.Message)
}

// Is implements errors.Is support.
func (e *MalformedRecordError) Is(target error) bool {
	return target == ErrMalformedRecord
}

// NewMalformedRecordError creates a new MalformedRecordError.
func NewMalformedRecordError(collection string, index int, message string) *MalformedRecordError {
	return &MalformedRecordError{Collection: collection, Index: index, Message: message}
}

// AllocatorExhaustedError reports that no identifier at or above the
// starting candidate was free. Fatal for the current collection's step.
type AllocatorExhaustedError struct {
	Start int
	Used  int
}

// Error implements the error interface.
func (e *AllocatorExhaustedError) Error() string {
	return fmt.Sprintf("no free identifier at or above %d (%d in use)", e.Start, e.Used)
}

// Is implements errors.Is support.
func (e *AllocatorExhaustedError) Is(target error) bool {
	return target == ErrAllocatorExhausted
}

// ValidationError represents a validation failure.
type ValidationError struct {
	Field   string
	Value   any
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for field %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

// Is implements errors.Is support.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// CollectionError represents a failure while reconciling one collection.
// Other collections in the same run proceed independently.
type CollectionError struct {
	Collection string
	Op         string // "resolve", "match", "merge", "rewrite"
	Err        error
}

// Error implements the error interface.
func (e *CollectionError) Error() string {
	return fmt.Sprintf("reconciling %s (%s): %v", e.Collection, e.Op, e.Err)
}

// Unwrap implements errors.Unwrap.
func (e *CollectionError) Unwrap() error {
	return e.Err
}

// NewCollectionError creates a new CollectionError.
func NewCollectionError(collection, op string, err error) *CollectionError {
	return &CollectionError{Collection: collection, Op: op, Err: err}
}

// ParseError represents an error when parsing data formats.
type ParseError struct {
	Format  string // "json", "yaml"
	File    string
	Message string
	Err     error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	if e.File != "" {
		return fmt.Sprintf("parse error in %s file %s: %s", e.Format, e.File, e.Message)
	}
	return fmt.Sprintf("%s parse error: %s", e.Format, e.Message)
}

// Unwrap implements errors.Unwrap.
func (e *ParseError) Unwrap() error {
	return e.Err
}

// StoreError represents an error from the run-history store.
type StoreError struct {
	Op  string // "open", "record", "list", "migrate"
	Err error
}

// Error implements the error interface.
func (e *StoreError) Error() string {
	return fmt.Sprintf("run store %s: %v", e.Op, e.Err)
}

// Unwrap implements errors.Unwrap.
func (e *StoreError) Unwrap() error {
	return e.Err
}

// Helper wrapping functions for common patterns.

// WrapParse wraps an error as a ParseError.
func WrapParse(format, file string, err error) error {
	if err == nil {
		return nil
	}
	return &ParseError{Format: format, File: file, Message: err.Error(), Err: err}
}

// WrapStore wraps an error as a StoreError.
func WrapStore(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StoreError{Op: op, Err: err}
}

// IsMalformedRecord checks if an error is a malformed record error.
func IsMalformedRecord(err error) bool {
	return errors.Is(err, ErrMalformedRecord)
}

// IsAllocatorExhausted checks if an error is an allocator exhaustion error.
func IsAllocatorExhausted(err error) bool {
	return errors.Is(err, ErrAllocatorExhausted)
}

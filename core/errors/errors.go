// Package errors provides standardized error types and helpers for the mtcat codebase.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for the catalog error taxonomy.
var (
	// ErrInvalidIdentifier indicates a dataset identifier field violates the grammar
	ErrInvalidIdentifier = errors.New("invalid identifier")
	// ErrMalformedIdentifier indicates an identifier string does not split into the expected segments
	ErrMalformedIdentifier = errors.New("malformed identifier string")
	// ErrArchiveSpec indicates an archive entry is missing member information
	ErrArchiveSpec = errors.New("incomplete archive spec")
	// ErrInvalidEntryShape indicates an entry's fields are inconsistent with its container format
	ErrInvalidEntryShape = errors.New("invalid entry shape")
	// ErrEmptyEntry indicates a missing entry in an experiment list
	ErrEmptyEntry = errors.New("empty entry")
	// ErrEntryNotFound indicates an index lookup failed
	ErrEntryNotFound = errors.New("entry not found")
	// ErrInvalidTag indicates a language tag cannot be canonicalized
	ErrInvalidTag = errors.New("invalid language tag")
)

// IdentifierError represents a dataset identifier grammar violation with context
type IdentifierError struct {
	Field  string // Field that failed validation ("group", "name", "version", "langs")
	Value  string // Value that failed validation
	Reason string // Human-readable reason
	Err    error  // Underlying error, if any
}

func (e *IdentifierError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("invalid identifier %s %q: %s", e.Field, e.Value, e.Reason)
	}
	return fmt.Sprintf("invalid identifier: %s", e.Reason)
}

func (e *IdentifierError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrInvalidIdentifier, e.Err}
	}
	return []error{ErrInvalidIdentifier}
}

// ParseError represents a malformed identifier string. The message carries the
// expected template and a remediation hint, both surfaced to the user verbatim.
type ParseError struct {
	Input    string // String that failed to parse
	Template string // Expected format, e.g. <group>-<name>-<version>-<l1>-<l2>
	Hint     string // Remediation hint for the user
}

func (e *ParseError) Error() string {
	msg := fmt.Sprintf("dataset ID expected in format: %s; but given %q", e.Template, e.Input)
	if e.Hint != "" {
		msg += ". " + e.Hint
	}
	return msg
}

func (e *ParseError) Unwrap() error {
	return ErrMalformedIdentifier
}

// ArchiveSpecError represents an archive entry missing required member information
type ArchiveSpecError struct {
	ID      string // Dataset identifier of the offending entry
	Missing string // Name of the missing field ("in_paths" or "in_ext")
}

func (e *ArchiveSpecError) Error() string {
	return fmt.Sprintf("archive entry %s: %s is required for archive formats", e.ID, e.Missing)
}

func (e *ArchiveSpecError) Unwrap() error {
	return ErrArchiveSpec
}

// EntryShapeError represents an entry whose fields are inconsistent with its
// container format, e.g. a plain-file entry carrying archive member paths.
type EntryShapeError struct {
	ID     string // Dataset identifier of the offending entry
	Ext    string // Outer extension of the entry
	Reason string // Human-readable reason
}

func (e *EntryShapeError) Error() string {
	if e.Ext != "" {
		return fmt.Sprintf("entry %s (ext %s): %s", e.ID, e.Ext, e.Reason)
	}
	return fmt.Sprintf("entry %s: %s", e.ID, e.Reason)
}

func (e *EntryShapeError) Unwrap() error {
	return ErrInvalidEntryShape
}

// EmptyEntryError represents a missing element in an experiment's entry lists
type EmptyEntryError struct {
	List  string // List containing the missing element ("train", "tests", "experiments")
	Index int    // Position of the missing element
}

func (e *EmptyEntryError) Error() string {
	return fmt.Sprintf("%s[%d] is empty", e.List, e.Index)
}

func (e *EmptyEntryError) Unwrap() error {
	return ErrEmptyEntry
}

// NotFoundError represents a failed index lookup
type NotFoundError struct {
	Name  string // Dataset name that was looked up
	Langs string // Language pair of the lookup
	Err   error  // Underlying error, if any
}

func (e *NotFoundError) Error() string {
	if e.Langs != "" {
		return fmt.Sprintf("entry not found: %s for %s", e.Name, e.Langs)
	}
	return fmt.Sprintf("entry not found: %s", e.Name)
}

func (e *NotFoundError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrEntryNotFound
}

// InvalidTagError represents a language tag that cannot be canonicalized
type InvalidTagError struct {
	Raw    string // Raw tag string as supplied
	Reason string // Human-readable reason
}

func (e *InvalidTagError) Error() string {
	return fmt.Sprintf("invalid language tag %q: %s", e.Raw, e.Reason)
}

func (e *InvalidTagError) Unwrap() error {
	return ErrInvalidTag
}

// Helper functions for creating common errors

// NewIdentifier creates an IdentifierError
func NewIdentifier(field, value, reason string) *IdentifierError {
	return &IdentifierError{
		Field:  field,
		Value:  value,
		Reason: reason,
	}
}

// NewParse creates a ParseError
func NewParse(input, template, hint string) *ParseError {
	return &ParseError{
		Input:    strings.TrimSpace(input),
		Template: template,
		Hint:     hint,
	}
}

// NewArchiveSpec creates an ArchiveSpecError
func NewArchiveSpec(id, missing string) *ArchiveSpecError {
	return &ArchiveSpecError{
		ID:      id,
		Missing: missing,
	}
}

// NewEntryShape creates an EntryShapeError
func NewEntryShape(id, ext, reason string) *EntryShapeError {
	return &EntryShapeError{
		ID:     id,
		Ext:    ext,
		Reason: reason,
	}
}

// NewEmptyEntry creates an EmptyEntryError
func NewEmptyEntry(list string, index int) *EmptyEntryError {
	return &EmptyEntryError{
		List:  list,
		Index: index,
	}
}

// NewNotFound creates a NotFoundError
func NewNotFound(name, langs string) *NotFoundError {
	return &NotFoundError{
		Name:  name,
		Langs: langs,
	}
}

// NewInvalidTag creates an InvalidTagError
func NewInvalidTag(raw, reason string) *InvalidTagError {
	return &InvalidTagError{
		Raw:    raw,
		Reason: reason,
	}
}

// Wrap adds context to an error. If err is nil, returns nil.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf adds formatted context to an error. If err is nil, returns nil.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	message := fmt.Sprintf(format, args...)
	return fmt.Errorf("%s: %w", message, err)
}

// Is wraps errors.Is for convenience
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As wraps errors.As for convenience
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

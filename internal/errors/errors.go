// Package errors provides the coded domain errors returned by the deck editor.
package errors

import (
	"errors"
)

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Card validation errors
	CodeInvalidCategory      Code = "INVALID_CATEGORY"
	CodeTooManyGaps          Code = "TOO_MANY_GAPS"
	CodeGapsOutsideStatement Code = "GAPS_OUTSIDE_STATEMENT"
	CodeMissingGap           Code = "MISSING_GAP"
	CodeEmptyText            Code = "EMPTY_TEXT"
	CodeInvalidText          Code = "INVALID_TEXT"
	CodeDuplicateCard        Code = "DUPLICATE_CARD"

	// Lookup errors
	CodeUnknownDeck Code = "UNKNOWN_DECK"
	CodeInvalidID   Code = "INVALID_ID"

	// Permission errors
	CodeInsufficientPermissions Code = "INSUFFICIENT_PERMISSIONS"
	CodePrivateDeck             Code = "PRIVATE_DECK"

	// Conflict errors
	CodeNameTaken       Code = "NAME_TAKEN"
	CodeInvalidDeckName Code = "INVALID_DECK_NAME"

	// Infrastructure errors
	CodePersistenceFailed  Code = "PERSISTENCE_FAILED"
	CodeInteractionTimeout Code = "INTERACTION_TIMEOUT"
	CodeCancelled          Code = "CANCELLED"

	// Command surface errors
	CodeSyntax         Code = "SYNTAX"
	CodeUnknownCommand Code = "UNKNOWN_COMMAND"
)

// Kind groups codes into the families callers usually branch on.
type Kind string

const (
	KindUnknown     Kind = "unknown"
	KindValidation  Kind = "validation"
	KindLookup      Kind = "lookup"
	KindPermission  Kind = "permission"
	KindConflict    Kind = "conflict"
	KindPersistence Kind = "persistence"
	KindTimeout     Kind = "timeout"
	KindSyntax      Kind = "syntax"
)

// Kind maps the code to its family.
func (c Code) Kind() Kind {
	switch c {
	case CodeInvalidCategory,
		CodeTooManyGaps,
		CodeGapsOutsideStatement,
		CodeMissingGap,
		CodeEmptyText,
		CodeInvalidText,
		CodeDuplicateCard:
		return KindValidation
	case CodeUnknownDeck, CodeInvalidID:
		return KindLookup
	case CodeInsufficientPermissions, CodePrivateDeck:
		return KindPermission
	case CodeNameTaken, CodeInvalidDeckName:
		return KindConflict
	case CodePersistenceFailed:
		return KindPersistence
	case CodeInteractionTimeout, CodeCancelled:
		return KindTimeout
	case CodeSyntax, CodeUnknownCommand:
		return KindSyntax
	default:
		return KindUnknown
	}
}

// Title is the short heading shown above the error body.
func (c Code) Title() string {
	switch c {
	case CodeInvalidCategory:
		return "Invalid Category"
	case CodeTooManyGaps:
		return "Too Many Gaps"
	case CodeGapsOutsideStatement:
		return "Gaps Outside Statement"
	case CodeMissingGap:
		return "Missing Gap"
	case CodeEmptyText:
		return "Empty Text"
	case CodeInvalidText:
		return "Invalid Text"
	case CodeDuplicateCard:
		return "Duplicate Card"
	case CodeUnknownDeck:
		return "Unknown Deck"
	case CodeInvalidID:
		return "Invalid ID"
	case CodeInsufficientPermissions:
		return "Insufficient Permissions"
	case CodePrivateDeck:
		return "Private Deck"
	case CodeNameTaken:
		return "Name Taken"
	case CodeInvalidDeckName:
		return "Invalid Deck Name"
	case CodePersistenceFailed:
		return "Internal Error"
	case CodeInteractionTimeout:
		return "Timed Out"
	case CodeCancelled:
		return "Cancelled"
	case CodeSyntax:
		return "Syntax"
	case CodeUnknownCommand:
		return "Unknown Command"
	default:
		return "Error"
	}
}

// Error is the domain error type with structured metadata.
type Error struct {
	Code     Code              // Machine-readable error code
	Message  string            // User-facing explanation
	Metadata map[string]string // Additional context (deck, id, usage...)
	Cause    error             // Wrapped underlying error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

// Unwrap returns the underlying cause for error chain traversal.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error by code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// Title returns the heading for the error's code.
func (e *Error) Title() string {
	return e.Code.Title()
}

// New creates a simple domain error with a code and message.
func New(code Code, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
	}
}

// WithMetadata creates a domain error carrying extra context.
func WithMetadata(code Code, message string, metadata map[string]string) *Error {
	return &Error{
		Code:     code,
		Message:  message,
		Metadata: metadata,
	}
}

// Wrap creates a domain error that wraps an underlying cause.
func Wrap(code Code, message string, cause error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// GetCode extracts the error code from any error.
// Returns CodeUnknown if the error is not a domain error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeUnknown
}

// IsCode checks if the error has the specified code.
func IsCode(err error, code Code) bool {
	return GetCode(err) == code
}

// GetMetadata extracts metadata from an error if present.
func GetMetadata(err error) map[string]string {
	var e *Error
	if errors.As(err, &e) {
		return e.Metadata
	}
	return nil
}

// As returns the domain error in err's chain, or nil.
func As(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return nil
}

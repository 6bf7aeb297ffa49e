// Package errors provides structured error types for the table schema engine.
// Every error carries a category, a code and a message; construction failures
// and write-compatibility failures live in disjoint categories so callers can
// tell a malformed schema apart from a rejected write.
package errors

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrorCategory classifies errors by the component that raised them.
type ErrorCategory string

const (
	ErrCategorySchema    ErrorCategory = "SCHEMA"
	ErrCategoryCompat    ErrorCategory = "COMPAT"
	ErrCategoryCatalog   ErrorCategory = "CATALOG"
	ErrCategoryTransport ErrorCategory = "TRANSPORT"
	ErrCategoryInternal  ErrorCategory = "INTERNAL"
)

// Error codes for each category.
const (
	// Schema construction codes
	CodeColumnNameExists       = "COLUMN_NAME_EXISTS"
	CodeColumnIDExists         = "COLUMN_ID_EXISTS"
	CodeKeyColumnType          = "KEY_COLUMN_TYPE"
	CodeNullKeyColumn          = "NULL_KEY_COLUMN"
	CodeTimestampKeyExists     = "TIMESTAMP_KEY_EXISTS"
	CodeMissingTimestampKey    = "MISSING_TIMESTAMP_KEY"
	CodeInvalidTsidSchema      = "INVALID_TSID_SCHEMA"
	CodeInvalidArrowField      = "INVALID_ARROW_FIELD"
	CodeInvalidArrowMetaValue  = "INVALID_ARROW_META_VALUE"
	CodeInvalidColumn          = "INVALID_COLUMN"
	CodeInvalidProjectionIndex = "INVALID_PROJECTION_INDEX"
	CodeBuilderConsumed        = "BUILDER_CONSUMED"
	CodeInvalidWireMessage     = "INVALID_WIRE_MESSAGE"
	CodeInvalidDefinition      = "INVALID_DEFINITION"

	// Write compatibility codes
	CodeIncompatWriteColumn = "INCOMPAT_WRITE_COLUMN"
	CodeMissingWriteColumn  = "MISSING_WRITE_COLUMN"
	CodeWriteMoreColumn     = "WRITE_MORE_COLUMN"
	CodeIncompatDataType    = "INCOMPAT_DATA_TYPE"
	CodeNotNullable         = "NOT_NULLABLE"

	// Catalog codes
	CodeTableNotFound   = "TABLE_NOT_FOUND"
	CodeVersionNotFound = "VERSION_NOT_FOUND"
	CodeCorruptSchema   = "CORRUPT_SCHEMA"
	CodeStoreFailed     = "STORE_FAILED"

	// Transport codes
	CodeCodecFailed = "CODEC_FAILED"

	// Internal codes
	CodeUnexpected = "UNEXPECTED"
)

// SchemaError is the structured error type used throughout the module.
type SchemaError struct {
	Category ErrorCategory
	Code     string
	Message  string
	Details  map[string]interface{}
	Cause    error
}

// Error returns a formatted error string.
func (e *SchemaError) Error() string {
	msg := e.Message
	if len(e.Details) > 0 {
		msg += " (" + formatDetails(e.Details) + ")"
	}
	if e.Cause != nil {
		return fmt.Sprintf("[%s:%s] %s: %v", e.Category, e.Code, msg, e.Cause)
	}
	return fmt.Sprintf("[%s:%s] %s", e.Category, e.Code, msg)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *SchemaError) Unwrap() error {
	return e.Cause
}

// Is reports whether the target matches this error's category and code.
func (e *SchemaError) Is(target error) bool {
	var t *SchemaError
	if errors.As(target, &t) {
		return e.Category == t.Category && e.Code == t.Code
	}
	return false
}

// New creates a new SchemaError.
func New(category ErrorCategory, code, message string) *SchemaError {
	return &SchemaError{
		Category: category,
		Code:     code,
		Message:  message,
	}
}

// Wrap creates a new SchemaError wrapping an existing error.
func Wrap(category ErrorCategory, code, message string, cause error) *SchemaError {
	return &SchemaError{
		Category: category,
		Code:     code,
		Message:  message,
		Cause:    cause,
	}
}

// WithDetails returns a copy of the error with additional details.
func (e *SchemaError) WithDetails(details map[string]interface{}) *SchemaError {
	cp := *e
	cp.Details = details
	return &cp
}

// AsSchemaError finds the first SchemaError in err's chain.
func AsSchemaError(err error) (*SchemaError, bool) {
	var se *SchemaError
	ok := errors.As(err, &se)
	return se, ok
}

// GetCategory extracts the error category from an error chain.
// Returns empty string if the error is not a SchemaError.
func GetCategory(err error) ErrorCategory {
	var se *SchemaError
	if errors.As(err, &se) {
		return se.Category
	}
	return ""
}

// GetCode extracts the error code from an error chain.
// Returns empty string if the error is not a SchemaError.
func GetCode(err error) string {
	var se *SchemaError
	if errors.As(err, &se) {
		return se.Code
	}
	return ""
}

// HasCode reports whether err is a SchemaError with the given category and code.
func HasCode(err error, category ErrorCategory, code string) bool {
	return errors.Is(err, New(category, code, ""))
}

func formatDetails(details map[string]interface{}) string {
	keys := make([]string, 0, len(details))
	for k := range details {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, details[k]))
	}
	return strings.Join(parts, ", ")
}

// Convenience constructors for common errors.

func NewSchemaError(code, message string) *SchemaError {
	return New(ErrCategorySchema, code, message)
}

func NewCompatError(code, message string, cause error) *SchemaError {
	return Wrap(ErrCategoryCompat, code, message, cause)
}

func NewCatalogError(code, message string, cause error) *SchemaError {
	return Wrap(ErrCategoryCatalog, code, message, cause)
}

func NewTransportError(code, message string, cause error) *SchemaError {
	return Wrap(ErrCategoryTransport, code, message, cause)
}

func NewInternalError(message string, cause error) *SchemaError {
	return Wrap(ErrCategoryInternal, CodeUnexpected, message, cause)
}

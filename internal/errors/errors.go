package errors

import (
	stderrors "errors"
	"fmt"
)

// DoctorError is the structured error type for envdoctor.
// It carries enough context to be logged, rendered for the CLI, or encoded as JSON.
type DoctorError struct {
	// Code is the unique error code (e.g., "ERR_301_TOOL_MISSING").
	Code string

	// Message is the human-readable error message.
	Message string

	// Category is the error category (Config, FS, Command, etc.).
	Category Category

	// Severity is the error severity level.
	Severity Severity

	// Details contains additional context as key-value pairs.
	Details map[string]string

	// Cause is the underlying error that caused this error.
	Cause error

	// Suggestion is an actionable suggestion for the user.
	Suggestion string
}

// Error implements the error interface.
func (e *DoctorError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for error chain support.
func (e *DoctorError) Unwrap() error {
	return e.Cause
}

// Is matches another DoctorError by code.
func (e *DoctorError) Is(target error) bool {
	if t, ok := target.(*DoctorError); ok {
		return e.Code == t.Code
	}
	return false
}

// WithDetail adds a key-value detail to the error.
func (e *DoctorError) WithDetail(key, value string) *DoctorError {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// WithSuggestion adds an actionable suggestion for the user.
func (e *DoctorError) WithSuggestion(suggestion string) *DoctorError {
	e.Suggestion = suggestion
	return e
}

// New creates a new DoctorError with the given code and message.
// Category and severity are derived from the code.
func New(code string, message string, cause error) *DoctorError {
	return &DoctorError{
		Code:     code,
		Message:  message,
		Category: categoryFromCode(code),
		Severity: severityFromCode(code),
		Cause:    cause,
	}
}

// Wrap creates a DoctorError from an existing error.
func Wrap(code string, err error) *DoctorError {
	if err == nil {
		return nil
	}
	return New(code, err.Error(), err)
}

// ConfigError creates a configuration-related error.
func ConfigError(message string, cause error) *DoctorError {
	return New(ErrCodeConfigInvalid, message, cause)
}

// InternalError creates an internal error.
func InternalError(message string, cause error) *DoctorError {
	return New(ErrCodeInternal, message, cause)
}

// IsFatal reports whether err (or anything it wraps) is a fatal DoctorError.
func IsFatal(err error) bool {
	var de *DoctorError
	if stderrors.As(err, &de) {
		return de.Severity == SeverityFatal
	}
	return false
}

// GetCode extracts the error code from the first DoctorError in the chain.
// Returns empty string if there is none.
func GetCode(err error) string {
	var de *DoctorError
	if stderrors.As(err, &de) {
		return de.Code
	}
	return ""
}

// GetCategory extracts the category from the first DoctorError in the chain.
func GetCategory(err error) Category {
	var de *DoctorError
	if stderrors.As(err, &de) {
		return de.Category
	}
	return ""
}

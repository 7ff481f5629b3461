// Package errors provides structured error handling for envdoctor.
//
// Error codes follow the pattern ERR_XXX_DESCRIPTION where:
//   - 1XX: Configuration errors
//   - 2XX: Filesystem errors
//   - 3XX: External command errors
//   - 4XX: Validation errors
//   - 5XX: Internal errors
package errors

// Category defines error categories for classification.
type Category string

const (
	// CategoryConfig indicates configuration-related errors.
	CategoryConfig Category = "CONFIG"
	// CategoryFS indicates filesystem errors.
	CategoryFS Category = "FS"
	// CategoryCommand indicates failures of external commands.
	CategoryCommand Category = "COMMAND"
	// CategoryValidation indicates input validation errors.
	CategoryValidation Category = "VALIDATION"
	// CategoryInternal indicates unexpected internal errors.
	CategoryInternal Category = "INTERNAL"
)

// Severity defines error severity levels.
type Severity string

const (
	// SeverityFatal aborts the run.
	SeverityFatal Severity = "FATAL"
	// SeverityError means the operation failed but the run continues.
	SeverityError Severity = "ERROR"
	// SeverityWarning means a degraded signal, the run continues.
	SeverityWarning Severity = "WARNING"
)

// Error codes organized by category.
const (
	// Config errors (100-199)
	ErrCodeConfigInvalid = "ERR_102_CONFIG_INVALID"

	// Filesystem errors (200-299)
	ErrCodePathNotFound = "ERR_201_PATH_NOT_FOUND"
	ErrCodePathAccess   = "ERR_202_PATH_ACCESS"

	// External command errors (300-399)
	ErrCodeToolMissing    = "ERR_301_TOOL_MISSING"
	ErrCodeCommandTimeout = "ERR_302_COMMAND_TIMEOUT"
	ErrCodeCommandFailed  = "ERR_303_COMMAND_FAILED"

	// Validation errors (400-499)
	ErrCodeInvalidInput = "ERR_401_INVALID_INPUT"

	// Internal errors (500-599)
	ErrCodeInternal = "ERR_501_INTERNAL"
)

// categoryFromCode extracts category from error code.
func categoryFromCode(code string) Category {
	if len(code) < 7 {
		return CategoryInternal
	}

	switch code[4] {
	case '1':
		return CategoryConfig
	case '2':
		return CategoryFS
	case '3':
		return CategoryCommand
	case '4':
		return CategoryValidation
	default:
		return CategoryInternal
	}
}

// severityFromCode determines severity based on error code.
func severityFromCode(code string) Severity {
	switch code {
	case ErrCodeToolMissing, ErrCodeInternal:
		return SeverityFatal
	case ErrCodeCommandTimeout:
		return SeverityWarning
	default:
		return SeverityError
	}
}

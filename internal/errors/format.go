package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"strings"
)

// asDoctorError returns the first DoctorError in err's chain. Anything else
// is reported as an internal error.
func asDoctorError(err error) *DoctorError {
	var de *DoctorError
	if stderrors.As(err, &de) {
		return de
	}
	return Wrap(ErrCodeInternal, err)
}

// FormatForCLI renders err for a terminal: message, optional hint, code.
func FormatForCLI(err error) string {
	if err == nil {
		return ""
	}
	de := asDoctorError(err)

	var sb strings.Builder
	fmt.Fprintf(&sb, "Error: %s\n", de.Message)
	if de.Suggestion != "" {
		fmt.Fprintf(&sb, "  Hint: %s\n", de.Suggestion)
	}
	fmt.Fprintf(&sb, "  Code: %s\n", de.Code)
	return sb.String()
}

// jsonError is the wire form of a DoctorError.
type jsonError struct {
	Code       string            `json:"code"`
	Message    string            `json:"message"`
	Category   Category          `json:"category"`
	Severity   Severity          `json:"severity"`
	Details    map[string]string `json:"details,omitempty"`
	Suggestion string            `json:"suggestion,omitempty"`
	Cause      string            `json:"cause,omitempty"`
}

// FormatJSON encodes err as a single JSON object, used in place of the
// report when a --json run fails.
func FormatJSON(err error) ([]byte, error) {
	if err == nil {
		return json.Marshal(nil)
	}
	de := asDoctorError(err)

	je := jsonError{
		Code:       de.Code,
		Message:    de.Message,
		Category:   de.Category,
		Severity:   de.Severity,
		Details:    de.Details,
		Suggestion: de.Suggestion,
	}
	if de.Cause != nil {
		je.Cause = de.Cause.Error()
	}
	return json.Marshal(je)
}

// FormatForLog flattens err into slog attribute pairs.
func FormatForLog(err error) []any {
	if err == nil {
		return nil
	}
	var de *DoctorError
	if !stderrors.As(err, &de) {
		return []any{"error", err.Error()}
	}

	attrs := []any{
		"error_code", de.Code,
		"message", de.Message,
		"category", string(de.Category),
		"severity", string(de.Severity),
	}
	if de.Cause != nil {
		attrs = append(attrs, "cause", de.Cause.Error())
	}
	if de.Suggestion != "" {
		attrs = append(attrs, "suggestion", de.Suggestion)
	}
	for k, v := range de.Details {
		attrs = append(attrs, "detail_"+k, v)
	}
	return attrs
}

// Package mcp exposes the environment check as a Model Context Protocol
// server over stdio.
package mcp

import (
	"context"
	"errors"
	"fmt"

	derrors "github.com/Aman-CERP/envdoctor/internal/errors"
)

// Custom MCP error codes for envdoctor.
const (
	// ErrCodeConfigInvalid indicates the workspace configuration could not be loaded.
	ErrCodeConfigInvalid = -32001

	// ErrCodeCheckFailed indicates the check could not complete.
	ErrCodeCheckFailed = -32002

	// ErrCodeTimeout indicates the request timed out or was cancelled.
	ErrCodeTimeout = -32003

	// Standard JSON-RPC error codes.
	ErrCodeInvalidParams  = -32602
	ErrCodeMethodNotFound = -32601
	ErrCodeInternalError  = -32603
)

// MCPError represents an MCP protocol error with code and message.
type MCPError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface.
func (e *MCPError) Error() string {
	return fmt.Sprintf("MCP error %d: %s", e.Code, e.Message)
}

// MapError converts internal errors to MCP errors.
func MapError(err error) *MCPError {
	if err == nil {
		return nil
	}

	var mcpErr *MCPError
	if errors.As(err, &mcpErr) {
		return mcpErr
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return &MCPError{Code: ErrCodeTimeout, Message: "Request timed out."}
	case errors.Is(err, context.Canceled):
		return &MCPError{Code: ErrCodeTimeout, Message: "Request was canceled."}
	}

	var de *derrors.DoctorError
	if errors.As(err, &de) {
		return mapDoctorError(de)
	}

	return &MCPError{Code: ErrCodeInternalError, Message: "Internal server error."}
}

// NewInvalidParamsError creates an error for invalid parameters with a custom message.
func NewInvalidParamsError(msg string) *MCPError {
	return &MCPError{Code: ErrCodeInvalidParams, Message: msg}
}

// NewMethodNotFoundError creates an error for unknown tools.
func NewMethodNotFoundError(name string) *MCPError {
	return &MCPError{
		Code:    ErrCodeMethodNotFound,
		Message: fmt.Sprintf("Tool '%s' not found.", name),
	}
}

func mapDoctorError(de *derrors.DoctorError) *MCPError {
	message := de.Message
	if de.Suggestion != "" {
		message = fmt.Sprintf("%s %s", de.Message, de.Suggestion)
	}

	switch de.Category {
	case derrors.CategoryConfig:
		return &MCPError{Code: ErrCodeConfigInvalid, Message: message}
	case derrors.CategoryValidation:
		return &MCPError{Code: ErrCodeInvalidParams, Message: message}
	case derrors.CategoryCommand, derrors.CategoryFS:
		return &MCPError{Code: ErrCodeCheckFailed, Message: message}
	default:
		return &MCPError{Code: ErrCodeInternalError, Message: message}
	}
}

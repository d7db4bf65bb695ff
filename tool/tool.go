// Package tool implements the tool dispatch subsystem: named, opaque
// capabilities that accept one free-text argument and return free-text output
// (sending email, posting to a social network, web search, ...).
//
// Tools are registered once at startup into a Registry that is read-only while
// requests are processed. Registry.Execute never panics and never lets a
// handler failure escape untyped: every failure surfaces as *Error with a
// stable Code so the orchestrator can turn it into text for the model.
package tool

import (
	"context"
	"errors"
	"fmt"
)

// Error codes reported by *Error.
const (
	// CodeNotFound means no handler is registered under the requested name.
	CodeNotFound = "NOT_FOUND"
	// CodeExecution means the handler returned an error, panicked or timed out.
	CodeExecution = "EXECUTION_ERROR"
)

// Tool defines the interface for extending agents with external capabilities.
//
// Implementations should:
//   - Provide a unique snake_case name
//   - Describe the expected free-text input in Description
//   - Honour ctx cancellation for any blocking I/O
//   - Be safe for concurrent use
type Tool interface {
	// Name returns the unique identifier for this tool.
	Name() string

	// Description returns a human-readable description of what this tool does
	// and how its input string is interpreted.
	Description() string

	// Call executes the tool with the raw input text produced by the model.
	Call(ctx context.Context, input string) (string, error)
}

// Error represents a failure to execute a tool.
type Error struct {
	Tool    string `json:"tool"`    // Name of the tool that failed
	Code    string `json:"code"`    // Error code for categorization
	Message string `json:"message"` // Error message
	Err     error  `json:"-"`       // Underlying cause, if any
}

func (e *Error) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("tool error [%s] in %s: %s", e.Code, e.Tool, e.Message)
	}
	return fmt.Sprintf("tool error in %s: %s", e.Tool, e.Message)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error { return e.Err }

// NewError creates a new Error with the specified details.
func NewError(tool, message, code string) *Error {
	return &Error{
		Tool:    tool,
		Message: message,
		Code:    code,
	}
}

// IsNotFound reports whether err is a *Error with CodeNotFound.
func IsNotFound(err error) bool {
	var te *Error
	return errors.As(err, &te) && te.Code == CodeNotFound
}

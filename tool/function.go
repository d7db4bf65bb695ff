package tool

import "context"

// FunctionTool is a generic adapter that exposes a plain Go function as a Tool.
//
// A FunctionTool has no internal mutable state after construction and is safe
// for concurrent use when fn is.
type FunctionTool struct {
	// Tool identifier (snake_case recommended)
	name string
	// Human-readable description shown to models
	description string
	// User supplied implementation
	fn func(ctx context.Context, input string) (string, error)
}

// NewFunctionTool constructs a FunctionTool.
//
// Example:
//
//	echo := NewFunctionTool(
//	  "echo",
//	  "Repeat the input back",
//	  func(_ context.Context, in string) (string, error) { return in, nil },
//	)
func NewFunctionTool(name, description string, fn func(ctx context.Context, input string) (string, error)) *FunctionTool {
	return &FunctionTool{
		name:        name,
		description: description,
		fn:          fn,
	}
}

// Name returns the unique tool name used for dispatch.
func (t *FunctionTool) Name() string { return t.name }

// Description returns the short natural language description exposed to models.
func (t *FunctionTool) Description() string { return t.description }

// Call invokes the wrapped function.
func (t *FunctionTool) Call(ctx context.Context, input string) (string, error) {
	return t.fn(ctx, input)
}

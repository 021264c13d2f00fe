package tool

import (
	"context"
	"errors"
	"fmt"
)

// ErrUnknownTool is returned when a dispatched name has no registration.
var ErrUnknownTool = errors.New("unknown tool")

// ExecutionError distinguishes a tool that ran and failed from a tool that
// was never found.
type ExecutionError struct {
	Tool string
	Err  error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("tool %s failed: %v", e.Tool, e.Err)
}

func (e *ExecutionError) Unwrap() error {
	return e.Err
}

// Tool is the capability contract every registered tool must satisfy.
type Tool interface {
	// Name returns the unique identifier for this tool
	Name() string

	// Description returns a brief description of what this tool does
	Description() string

	// Parameters returns the JSON schema for the tool's parameters
	Parameters() map[string]any

	// Run executes the tool with arguments resolved from the model's
	// streamed JSON. The returned text is passed back verbatim as the
	// tool-role message content.
	Run(ctx context.Context, args map[string]any) (string, error)
}

// Execution is the outcome of one tool invocation.
type Execution struct {
	Name      string
	Arguments map[string]any
	Content   string
}

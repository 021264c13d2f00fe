package tool

import (
	"context"
	"fmt"
	"sync"

	"github.com/siquick/web-agent/internal/llm"
)

// Registry mediates between the agent and individual tools. Definitions are
// advertised in registration order so completion requests are deterministic.
type Registry struct {
	tools map[string]Tool
	order []string
	mu    sync.RWMutex
}

func NewRegistry() *Registry {
	return &Registry{
		tools: make(map[string]Tool),
	}
}

func (r *Registry) Register(tool Tool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := tool.Name()
	if _, exists := r.tools[name]; exists {
		return fmt.Errorf("tool %s already registered", name)
	}

	r.tools[name] = tool
	r.order = append(r.order, name)
	return nil
}

func (r *Registry) Get(name string) (Tool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tool, exists := r.tools[name]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTool, name)
	}

	return tool, nil
}

// List returns all registered tools in registration order.
func (r *Registry) List() []Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tools := make([]Tool, 0, len(r.order))
	for _, name := range r.order {
		tools = append(tools, r.tools[name])
	}
	return tools
}

// Definitions returns the advertised schema list for completion requests.
func (r *Registry) Definitions() []*llm.ToolDefinition {
	tools := r.List()
	defs := make([]*llm.ToolDefinition, len(tools))

	for i, t := range tools {
		defs[i] = &llm.ToolDefinition{
			Type: "function",
			Function: &llm.FunctionDef{
				Name:        t.Name(),
				Description: t.Description(),
				Parameters:  t.Parameters(),
			},
		}
	}

	return defs
}

// Execute dispatches one call by name. An unregistered name yields
// ErrUnknownTool; a tool that runs and fails yields an *ExecutionError.
func (r *Registry) Execute(ctx context.Context, name string, args map[string]any) (*Execution, error) {
	t, err := r.Get(name)
	if err != nil {
		return nil, err
	}

	if args == nil {
		args = map[string]any{}
	}

	content, err := t.Run(ctx, args)
	if err != nil {
		return nil, &ExecutionError{Tool: name, Err: err}
	}

	return &Execution{
		Name:      name,
		Arguments: args,
		Content:   content,
	}, nil
}

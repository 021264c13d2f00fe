package builtin

import (
	"context"
	"encoding/json"
)

// EchoTool is a diagnostic tool that reflects arguments back to the model.
type EchoTool struct{}

func NewEchoTool() *EchoTool {
	return &EchoTool{}
}

func (t *EchoTool) Name() string {
	return "echo"
}

func (t *EchoTool) Description() string {
	return "Diagnostic tool: returns the provided arguments so you can reason step-by-step."
}

func (t *EchoTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"message": map[string]any{
				"type":        "string",
				"description": "Arbitrary text to echo back.",
			},
		},
		"required":             []string{"message"},
		"additionalProperties": false,
	}
}

func (t *EchoTool) Run(ctx context.Context, args map[string]any) (string, error) {
	payload, err := json.Marshal(map[string]string{
		"echo": stringArg(args, "message"),
	})
	if err != nil {
		return "", err
	}
	return string(payload), nil
}

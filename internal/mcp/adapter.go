package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// ToolAdapter exposes an MCP tool as an agent capability. Tool names are
// namespaced "<server>_<tool>" so multiple servers cannot collide.
type ToolAdapter struct {
	client         *Client
	mcpTool        *mcp.Tool
	namespacedName string
}

func NewToolAdapter(client *Client, mcpTool *mcp.Tool) *ToolAdapter {
	return &ToolAdapter{
		client:         client,
		mcpTool:        mcpTool,
		namespacedName: fmt.Sprintf("%s_%s", client.Name(), mcpTool.Name),
	}
}

func (a *ToolAdapter) Name() string {
	return a.namespacedName
}

func (a *ToolAdapter) Description() string {
	desc := a.mcpTool.Description
	if desc == "" {
		desc = fmt.Sprintf("MCP tool from %s server", a.client.Name())
	}
	return fmt.Sprintf("%s\n\n[MCP Server: %s]", desc, a.client.Name())
}

// Parameters returns the MCP tool's input schema. The SDK types the schema
// as `any`, so fall back through a marshal round-trip when it is not
// already a map.
func (a *ToolAdapter) Parameters() map[string]any {
	empty := map[string]any{
		"type":       "object",
		"properties": map[string]any{},
	}

	if a.mcpTool.InputSchema == nil {
		return empty
	}
	if schema, ok := a.mcpTool.InputSchema.(map[string]any); ok {
		return schema
	}

	schemaBytes, err := json.Marshal(a.mcpTool.InputSchema)
	if err != nil {
		return empty
	}
	var schema map[string]any
	if err := json.Unmarshal(schemaBytes, &schema); err != nil {
		return empty
	}
	return schema
}

// Run calls the MCP server and flattens the content blocks to text. A
// tool-level error result comes back as a plain error so the dispatcher
// reports it as an execution failure.
func (a *ToolAdapter) Run(ctx context.Context, args map[string]any) (string, error) {
	result, err := a.client.CallTool(ctx, a.mcpTool.Name, args)
	if err != nil {
		return "", err
	}

	if result.IsError {
		return "", fmt.Errorf("%s", formatError(result))
	}

	return formatContent(result.Content), nil
}

// formatContent converts MCP content blocks to a single text blob.
func formatContent(content []mcp.Content) string {
	var parts []string

	for _, item := range content {
		switch c := item.(type) {
		case *mcp.TextContent:
			parts = append(parts, c.Text)
		case *mcp.ImageContent:
			parts = append(parts, fmt.Sprintf("[Image: %s]", c.MIMEType))
		case *mcp.AudioContent:
			parts = append(parts, fmt.Sprintf("[Audio: %s]", c.MIMEType))
		default:
			data, err := json.Marshal(item)
			if err != nil {
				parts = append(parts, fmt.Sprintf("[Unknown content type: %T]", item))
			} else {
				parts = append(parts, string(data))
			}
		}
	}

	return strings.Join(parts, "\n")
}

func formatError(result *mcp.CallToolResult) string {
	if len(result.Content) > 0 {
		return formatContent(result.Content)
	}
	return "MCP tool returned an error"
}

package builtin

import (
	"context"
	"fmt"
	"strings"

	"github.com/siquick/web-agent/internal/exa"
)

type WebSearchTool struct {
	client *exa.Client
}

func NewWebSearchTool(client *exa.Client) *WebSearchTool {
	return &WebSearchTool{client: client}
}

func (t *WebSearchTool) Name() string {
	return "web_search"
}

func (t *WebSearchTool) Description() string {
	return "Execute a real-time web search and return contextualized snippets suitable for grounding responses with citations."
}

func (t *WebSearchTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"query": map[string]any{
				"type":        "string",
				"description": "The refined search query to look up.",
			},
			"num_results": map[string]any{
				"type":        "integer",
				"description": "Maximum number of search results to fetch.",
				"default":     5,
			},
		},
		"required":             []string{"query"},
		"additionalProperties": false,
	}
}

func (t *WebSearchTool) Run(ctx context.Context, args map[string]any) (string, error) {
	query := stringArg(args, "query")
	if query == "" {
		return "", fmt.Errorf("web_search requires a non-empty string 'query'")
	}
	numResults := intArg(args, "num_results", 5)

	resp, err := t.client.Search(ctx, query, numResults)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	for i, result := range resp.Results {
		fmt.Fprintf(&b, "<result %s id=%d> %s</result>\n", result.URL, i+1, result.Text)
	}
	if b.Len() == 0 {
		return "No search results found.", nil
	}
	return b.String(), nil
}

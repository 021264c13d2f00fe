package builtin

import (
	"context"
	"fmt"
	"strings"

	"github.com/siquick/web-agent/internal/exa"
)

type URLContentTool struct {
	client *exa.Client
}

func NewURLContentTool(client *exa.Client) *URLContentTool {
	return &URLContentTool{client: client}
}

func (t *URLContentTool) Name() string {
	return "fetch_url_content"
}

func (t *URLContentTool) Description() string {
	return "Retrieve the contents of a URL and return it as markdown for grounding or summarisation."
}

func (t *URLContentTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"url": map[string]any{
				"type":        "string",
				"description": "The URL to fetch.",
			},
			"max_characters": map[string]any{
				"type":        "integer",
				"description": "Maximum number of characters to retrieve from the page text.",
				"default":     8000,
			},
		},
		"required":             []string{"url"},
		"additionalProperties": false,
	}
}

func (t *URLContentTool) Run(ctx context.Context, args map[string]any) (string, error) {
	url := stringArg(args, "url")
	if url == "" {
		return "", fmt.Errorf("fetch_url_content requires a non-empty string 'url'")
	}
	maxCharacters := intArg(args, "max_characters", 8000)

	resp, err := t.client.Contents(ctx, url)
	if err != nil {
		return "", err
	}

	if len(resp.Results) == 0 {
		return unavailableReport(url, resp.Statuses), nil
	}

	result := resp.Results[0]
	title := strings.TrimSpace(result.Title)
	if title == "" {
		title = url
	}

	text := result.Text
	if maxCharacters > 3 && len(text) > maxCharacters {
		text = strings.TrimRight(text[:maxCharacters-3], " \t\n") + "..."
	}

	parts := []string{"# " + title}
	if summary := strings.TrimSpace(result.Summary); summary != "" {
		parts = append(parts, "## Summary\n"+summary)
	}
	if body := strings.TrimSpace(text); body != "" {
		parts = append(parts, "## Content\n"+body)
	}
	return strings.Join(parts, "\n\n"), nil
}

func unavailableReport(url string, statuses []exa.Status) string {
	var statusLines []string
	for _, entry := range statuses {
		id := entry.ID
		if id == "" {
			id = url
		}
		parts := []string{strings.ToUpper(entry.Status)}
		if entry.Error != nil {
			if entry.Error.Tag != "" {
				parts = append(parts, entry.Error.Tag)
			}
			if entry.Error.HTTPStatusCode != 0 {
				parts = append(parts, fmt.Sprintf("HTTP %d", entry.Error.HTTPStatusCode))
			}
		}
		statusLines = append(statusLines, fmt.Sprintf("- %s: %s", id, strings.Join(parts, " | ")))
	}

	statusBlock := "- No additional status metadata returned."
	if len(statusLines) > 0 {
		statusBlock = strings.Join(statusLines, "\n")
	}

	return strings.Join([]string{
		"# Content Unavailable",
		fmt.Sprintf("Unable to retrieve content for [%s](%s).", url, url),
		"",
		"## Retrieval Status",
		statusBlock,
		"",
		"Consider visiting the page manually or providing an alternative source.",
	}, "\n")
}

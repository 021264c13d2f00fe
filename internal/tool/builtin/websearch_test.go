package builtin

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/siquick/web-agent/internal/exa"
)

func searchServer(t *testing.T, results []exa.Result) (*exa.Client, *map[string]any) {
	t.Helper()
	var payload map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&payload)
		json.NewEncoder(w).Encode(exa.Response{Results: results})
	}))
	t.Cleanup(server.Close)
	return exa.NewClient("k").WithBaseURL(server.URL), &payload
}

func TestWebSearchTool_Formatting(t *testing.T) {
	client, _ := searchServer(t, []exa.Result{
		{URL: "https://a.example", Text: "first snippet"},
		{URL: "https://b.example", Text: "second snippet"},
	})
	tool := NewWebSearchTool(client)

	output, err := tool.Run(context.Background(), map[string]any{"query": "anything"})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	want := "<result https://a.example id=1> first snippet</result>\n" +
		"<result https://b.example id=2> second snippet</result>\n"
	if output != want {
		t.Errorf("Unexpected formatting:\ngot:  %q\nwant: %q", output, want)
	}
}

func TestWebSearchTool_NoResults(t *testing.T) {
	client, _ := searchServer(t, nil)
	tool := NewWebSearchTool(client)

	output, err := tool.Run(context.Background(), map[string]any{"query": "obscure"})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if output != "No search results found." {
		t.Errorf("Expected empty-result message, got: %q", output)
	}
}

func TestWebSearchTool_MissingQuery(t *testing.T) {
	client, _ := searchServer(t, nil)
	tool := NewWebSearchTool(client)

	if _, err := tool.Run(context.Background(), map[string]any{}); err == nil {
		t.Error("Expected error for missing query")
	}
	if _, err := tool.Run(context.Background(), map[string]any{"query": "   "}); err == nil {
		t.Error("Expected error for blank query")
	}
}

func TestWebSearchTool_NumResults(t *testing.T) {
	client, payload := searchServer(t, nil)
	tool := NewWebSearchTool(client)

	tool.Run(context.Background(), map[string]any{"query": "x", "num_results": float64(2)})
	if (*payload)["numResults"] != float64(2) {
		t.Errorf("Expected explicit num_results forwarded, got: %v", (*payload)["numResults"])
	}

	tool.Run(context.Background(), map[string]any{"query": "x"})
	if (*payload)["numResults"] != float64(5) {
		t.Errorf("Expected default of 5 results, got: %v", (*payload)["numResults"])
	}
}

func TestWebSearchTool_Schema(t *testing.T) {
	tool := NewWebSearchTool(nil)
	params := tool.Parameters()

	required, _ := params["required"].([]string)
	if len(required) != 1 || required[0] != "query" {
		t.Errorf("Expected query required, got: %v", params["required"])
	}
	if !strings.Contains(tool.Description(), "search") {
		t.Errorf("Expected a search description, got: %q", tool.Description())
	}
}

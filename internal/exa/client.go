// Package exa is a minimal client for the Exa search API, covering the two
// endpoints the agent tools need: /search with contents and /contents.
package exa

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultBaseURL = "https://api.exa.ai"

type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

func NewClient(apiKey string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    defaultBaseURL,
		apiKey:     apiKey,
	}
}

// WithBaseURL overrides the API endpoint; used in tests.
func (c *Client) WithBaseURL(baseURL string) *Client {
	c.baseURL = strings.TrimRight(baseURL, "/")
	return c
}

type Result struct {
	ID      string `json:"id"`
	URL     string `json:"url"`
	Title   string `json:"title"`
	Text    string `json:"text"`
	Summary string `json:"summary"`
}

type Status struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Error  *struct {
		Tag            string `json:"tag"`
		HTTPStatusCode int    `json:"httpStatusCode"`
	} `json:"error"`
}

type Response struct {
	Results  []Result `json:"results"`
	Statuses []Status `json:"statuses"`
}

// Search runs a web search with full-text contents enabled.
func (c *Client) Search(ctx context.Context, query string, numResults int) (*Response, error) {
	payload := map[string]any{
		"query":      query,
		"type":       "auto",
		"numResults": numResults,
		"contents":   map[string]any{"text": true},
	}
	return c.post(ctx, "/search", payload)
}

// Contents retrieves the page text and a short summary for a single URL,
// live-crawling as a fallback when the index has no copy.
func (c *Client) Contents(ctx context.Context, url string) (*Response, error) {
	payload := map[string]any{
		"urls":             []string{url},
		"text":             true,
		"summary":          map[string]any{"query": "Concise summary"},
		"livecrawl":        "fallback",
		"livecrawlTimeout": 15000,
	}
	return c.post(ctx, "/contents", payload)
}

func (c *Client) post(ctx context.Context, path string, payload map[string]any) (*Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("exa request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read exa response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet := string(data)
		if len(snippet) > 200 {
			snippet = snippet[:200]
		}
		return nil, fmt.Errorf("exa %s returned %d: %s", path, resp.StatusCode, snippet)
	}

	var parsed Response
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("decode exa response: %w", err)
	}
	return &parsed, nil
}

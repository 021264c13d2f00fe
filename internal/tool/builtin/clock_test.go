package builtin

import (
	"context"
	"encoding/json"
	"testing"
	"time"
)

func TestCurrentTimeTool_UTC(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skip("tzdata unavailable")
	}
	fixed := time.Date(2025, 3, 14, 9, 26, 53, 0, loc)

	tool := NewCurrentTimeTool()
	tool.now = func() time.Time { return fixed }

	output, err := tool.Run(context.Background(), map[string]any{})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	var payload map[string]string
	if err := json.Unmarshal([]byte(output), &payload); err != nil {
		t.Fatalf("Expected JSON output, got: %q", output)
	}
	if payload["current_time"] != "2025-03-14T13:26:53Z" {
		t.Errorf("Expected UTC RFC3339 timestamp, got: %q", payload["current_time"])
	}
}

func TestEchoTool_RoundTrip(t *testing.T) {
	tool := NewEchoTool()

	output, err := tool.Run(context.Background(), map[string]any{"message": "ping"})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	var payload map[string]string
	if err := json.Unmarshal([]byte(output), &payload); err != nil {
		t.Fatalf("Expected JSON output, got: %q", output)
	}
	if payload["echo"] != "ping" {
		t.Errorf("Expected echoed message, got: %q", payload["echo"])
	}
}

func TestArgumentCoercion(t *testing.T) {
	args := map[string]any{
		"s":     "  padded  ",
		"f":     float64(7),
		"i":     3,
		"other": true,
	}

	if got := stringArg(args, "s"); got != "padded" {
		t.Errorf("Expected trimmed string, got: %q", got)
	}
	if got := stringArg(args, "missing"); got != "" {
		t.Errorf("Expected empty string for missing key, got: %q", got)
	}
	if got := intArg(args, "f", 0); got != 7 {
		t.Errorf("Expected float64 coerced to int, got: %d", got)
	}
	if got := intArg(args, "i", 0); got != 3 {
		t.Errorf("Expected int passed through, got: %d", got)
	}
	if got := intArg(args, "other", 9); got != 9 {
		t.Errorf("Expected fallback for non-numeric value, got: %d", got)
	}
	if got := intArg(args, "missing", 5); got != 5 {
		t.Errorf("Expected fallback for missing key, got: %d", got)
	}
}

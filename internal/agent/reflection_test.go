package agent

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/siquick/web-agent/internal/logger"
)

func testLogger() *logger.Logger {
	return logger.NewLogger(io.Discard, logger.LevelError)
}

func TestReflector_Evaluate_PlainJSON(t *testing.T) {
	gateway := &fakeGateway{callResults: []string{
		`{"requires_more_context": true, "reason": "Only one source checked.", "follow_up_instruction": "Search for a second source.", "suggested_query": "golang scheduler design"}`,
	}}
	reflector := NewReflector(gateway, "openrouter/qwen-3-32b", testLogger())

	record, err := reflector.Evaluate(context.Background(), "how does the go scheduler work", "answer", nil)
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if !record.RequiresMoreContext {
		t.Error("Expected requires_more_context true")
	}
	if record.Reason != "Only one source checked." {
		t.Errorf("Expected reason carried through, got: %q", record.Reason)
	}
	if record.FollowUpInstruction != "Search for a second source." {
		t.Errorf("Expected instruction carried through, got: %q", record.FollowUpInstruction)
	}
	if record.SuggestedQuery != "golang scheduler design" {
		t.Errorf("Expected suggested query carried through, got: %q", record.SuggestedQuery)
	}
}

func TestReflector_Evaluate_FencedJSON(t *testing.T) {
	gateway := &fakeGateway{callResults: []string{
		"```json\n{\"requires_more_context\": false, \"reason\": \"Coverage is adequate.\", \"follow_up_instruction\": \"None.\"}\n```",
	}}
	reflector := NewReflector(gateway, "m", testLogger())

	record, err := reflector.Evaluate(context.Background(), "q", "a", nil)
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if record.RequiresMoreContext {
		t.Error("Expected requires_more_context false")
	}
	if record.Reason != "Coverage is adequate." {
		t.Errorf("Expected fenced JSON parsed, got reason: %q", record.Reason)
	}
}

func TestReflector_Evaluate_ProseEmbeddedJSON(t *testing.T) {
	gateway := &fakeGateway{callResults: []string{
		`After reviewing the history, my verdict is {"requires_more_context": false, "reason": "All sub-questions covered.", "follow_up_instruction": "Stop here."} as stated.`,
	}}
	reflector := NewReflector(gateway, "m", testLogger())

	record, err := reflector.Evaluate(context.Background(), "q", "a", nil)
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if record.Reason != "All sub-questions covered." {
		t.Errorf("Expected embedded object recovered, got reason: %q", record.Reason)
	}
}

func TestReflector_Evaluate_UnparseableFailsOpen(t *testing.T) {
	gateway := &fakeGateway{callResults: []string{
		"I think more searching might help, but I cannot say.",
	}}
	reflector := NewReflector(gateway, "m", testLogger())

	record, err := reflector.Evaluate(context.Background(), "q", "a", nil)
	if err != nil {
		t.Fatalf("Expected fail-open instead of error, got: %v", err)
	}
	if record.RequiresMoreContext {
		t.Error("Expected fail-open verdict to not require more context")
	}
	if record.Reason != "Could not parse reflection JSON." {
		t.Errorf("Expected fail-open reason, got: %q", record.Reason)
	}
}

func TestReflector_Evaluate_MissingInstructionDefaults(t *testing.T) {
	gateway := &fakeGateway{callResults: []string{
		`{"requires_more_context": false, "reason": "Fine."}`,
	}}
	reflector := NewReflector(gateway, "m", testLogger())

	record, err := reflector.Evaluate(context.Background(), "q", "a", nil)
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if record.FollowUpInstruction != noActionRequired {
		t.Errorf("Expected default instruction when context is sufficient, got: %q", record.FollowUpInstruction)
	}
}

func TestReflector_Evaluate_MissingInstructionWhenInsufficient(t *testing.T) {
	gateway := &fakeGateway{callResults: []string{
		`{"requires_more_context": true, "reason": "Gap."}`,
	}}
	reflector := NewReflector(gateway, "m", testLogger())

	record, err := reflector.Evaluate(context.Background(), "q", "a", nil)
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if record.FollowUpInstruction != "" {
		t.Errorf("Expected no default instruction when more context is required, got: %q", record.FollowUpInstruction)
	}
}

func TestReflector_Evaluate_ToolHistoryInPayload(t *testing.T) {
	gateway := &fakeGateway{callResults: []string{
		`{"requires_more_context": false, "reason": "ok", "follow_up_instruction": ""}`,
	}}
	reflector := NewReflector(gateway, "m", testLogger())

	history := []ToolCallRecord{{
		Name:          "web_search",
		Arguments:     map[string]any{"query": "tides"},
		OutputPreview: "result snippet",
	}}
	if _, err := reflector.Evaluate(context.Background(), "when is high tide", "at noon", history); err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}

	if len(gateway.callQueries) != 1 {
		t.Fatalf("Expected one judgment call, got %d", len(gateway.callQueries))
	}
	payload := gateway.callQueries[0]
	for _, want := range []string{`"question":"when is high tide"`, `"web_search"`, `"result snippet"`} {
		if !strings.Contains(payload, want) {
			t.Errorf("Expected payload to contain %s, got: %s", want, payload)
		}
	}
}

func TestReflector_Evaluate_GatewayError(t *testing.T) {
	cause := errors.New("upstream 502")
	gateway := &fakeGateway{callErr: cause}
	reflector := NewReflector(gateway, "m", testLogger())

	_, err := reflector.Evaluate(context.Background(), "q", "a", nil)
	if !errors.Is(err, cause) {
		t.Errorf("Expected transport error propagated, got: %v", err)
	}
}

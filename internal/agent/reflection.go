package agent

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/siquick/web-agent/internal/llm"
	"github.com/siquick/web-agent/internal/logger"
)

const noActionRequired = "No further action required."

// Reflector issues the secondary judgment deciding whether gathered tool
// evidence is sufficient. It deliberately fails open: an unparseable verdict
// defaults to "sufficient, stop" so a run can terminate instead of looping
// on judgments it cannot read.
type Reflector struct {
	gateway llm.Gateway
	model   string
	log     *logger.Logger
}

func NewReflector(gateway llm.Gateway, model string, log *logger.Logger) *Reflector {
	return &Reflector{gateway: gateway, model: model, log: log}
}

// Evaluate runs one judgment completion over the question, the candidate
// answer, and the condensed tool history. The only error it returns is a
// gateway transport failure.
func (r *Reflector) Evaluate(ctx context.Context, question, answer string, toolHistory []ToolCallRecord) (ReflectionRecord, error) {
	input, err := json.Marshal(map[string]any{
		"question":     question,
		"answer":       answer,
		"tool_history": toolHistory,
	})
	if err != nil {
		return ReflectionRecord{}, err
	}

	raw, err := r.gateway.Call(ctx, reflectionPrompt(), string(input), r.model)
	if err != nil {
		return ReflectionRecord{}, err
	}

	data, ok := parseReflectionJSON(raw)
	if !ok {
		r.log.Warn("Failed to parse reflection response; defaulting to accept.")
		data = map[string]any{
			"requires_more_context": false,
			"reason":                "Could not parse reflection JSON.",
			"follow_up_instruction": "",
		}
	}

	record := ReflectionRecord{
		RequiresMoreContext: boolField(data, "requires_more_context"),
		Reason:              stringField(data, "reason"),
		SuggestedQuery:      stringField(data, "suggested_query"),
		Raw:                 data,
	}

	if instruction, present := data["follow_up_instruction"].(string); present {
		record.FollowUpInstruction = instruction
	} else if !record.RequiresMoreContext {
		record.FollowUpInstruction = noActionRequired
	}

	return record, nil
}

// parseReflectionJSON recovers a JSON object from loosely structured model
// output. Pipeline, first success wins: parse the raw text, strip a fenced
// block wrapper when the whole text is one, then scan for the first balanced
// {...} substring.
func parseReflectionJSON(raw string) (map[string]any, bool) {
	trimmed := strings.TrimSpace(raw)

	if data, ok := parseJSONObject(trimmed); ok {
		return data, true
	}

	if interior, ok := stripFence(trimmed); ok {
		if data, ok := parseJSONObject(interior); ok {
			return data, true
		}
	}

	for start := strings.IndexByte(trimmed, '{'); start >= 0; {
		candidate, ok := balancedObject(trimmed[start:])
		if ok {
			if data, ok := parseJSONObject(candidate); ok {
				return data, true
			}
		}
		next := strings.IndexByte(trimmed[start+1:], '{')
		if next < 0 {
			break
		}
		start += 1 + next
	}

	return nil, false
}

func parseJSONObject(s string) (map[string]any, bool) {
	var data map[string]any
	if err := json.Unmarshal([]byte(s), &data); err != nil {
		return nil, false
	}
	return data, true
}

// stripFence removes a ``` wrapper when the whole text matches that shape,
// tolerating a language tag on the opening fence.
func stripFence(s string) (string, bool) {
	if !strings.HasPrefix(s, "```") || !strings.HasSuffix(s, "```") {
		return "", false
	}
	body := strings.TrimSuffix(s, "```")
	firstLine, rest, found := strings.Cut(body, "\n")
	if !found || !strings.HasPrefix(firstLine, "```") {
		return "", false
	}
	return strings.TrimSpace(rest), true
}

// balancedObject returns the prefix of s that forms one brace-balanced
// object, counting depth outside string literals.
func balancedObject(s string) (string, bool) {
	depth := 0
	inString := false
	escaped := false

	for i := 0; i < len(s); i++ {
		c := s[i]
		if escaped {
			escaped = false
			continue
		}
		if inString {
			switch c {
			case '\\':
				escaped = true
			case '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[:i+1], true
			}
		}
	}
	return "", false
}

func boolField(data map[string]any, key string) bool {
	value, _ := data[key].(bool)
	return value
}

func stringField(data map[string]any, key string) string {
	value, _ := data[key].(string)
	return value
}

package agent

// outputPreviewLimit bounds the slice of tool output kept for audit records
// and reflection input. The full output still reaches the model verbatim.
const outputPreviewLimit = 500

// ToolCallRecord captures one tool invocation for audit and reflection
// input. Immutable once created.
type ToolCallRecord struct {
	Name          string         `json:"name"`
	Arguments     map[string]any `json:"arguments"`
	OutputPreview string         `json:"output_preview"`
}

// ReflectionRecord is the recovered verdict of one reflection round. Raw
// keeps the judgment payload for diagnostics.
type ReflectionRecord struct {
	RequiresMoreContext bool           `json:"requires_more_context"`
	Reason              string         `json:"reason"`
	FollowUpInstruction string         `json:"follow_up_instruction"`
	SuggestedQuery      string         `json:"suggested_query,omitempty"`
	Raw                 map[string]any `json:"raw,omitempty"`
}

// Result is the terminal artifact of one run. RefinedQuery currently always
// equals the original question; it is kept so callers see the query the
// agent was steered toward.
type Result struct {
	Answer       string             `json:"answer"`
	RefinedQuery string             `json:"refined_query"`
	ToolCalls    []ToolCallRecord   `json:"tool_calls"`
	Reflections  []ReflectionRecord `json:"reflections"`
}

func preview(output string) string {
	if len(output) > outputPreviewLimit {
		return output[:outputPreviewLimit]
	}
	return output
}

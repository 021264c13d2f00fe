package llm

import "strings"

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// ContentPart is one typed segment of a multi-part message body. Only
// "text" parts carry meaning for this agent; other part types are ignored.
type ContentPart struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

type Message struct {
	Role       Role
	Content    string
	Parts      []ContentPart
	ToolCalls  []*ToolCall
	ToolCallID string
	Name       string
}

// Text flattens the message body to plain text. Plain content wins; otherwise
// the text-typed parts are joined with single spaces.
func (m Message) Text() string {
	if m.Content != "" {
		return m.Content
	}
	if len(m.Parts) == 0 {
		return ""
	}
	chunks := make([]string, 0, len(m.Parts))
	for _, part := range m.Parts {
		if part.Type == "text" && part.Text != "" {
			chunks = append(chunks, part.Text)
		}
	}
	return strings.TrimSpace(strings.Join(chunks, " "))
}

type ToolCall struct {
	ID       string
	Type     string
	Function *FunctionCall
}

type FunctionCall struct {
	Name      string
	Arguments string
}

type StopReason string

const (
	StopReasonStop      StopReason = "stop"
	StopReasonLength    StopReason = "length"
	StopReasonToolCalls StopReason = "tool_calls"
)

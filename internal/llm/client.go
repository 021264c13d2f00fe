package llm

import (
	"context"
	"errors"
)

// ErrStreamingNotSupported is returned by ChatStream when the resolved
// model/provider combination cannot stream; callers fall back to Chat.
var ErrStreamingNotSupported = errors.New("streaming not supported for model")

// Gateway is the completion service abstraction. One gateway instance may
// serve many configured models; requests carry the model id and each call is
// self-contained, so concurrent runs can share a gateway safely.
type Gateway interface {
	Chat(ctx context.Context, req *ChatRequest) (*ChatResponse, error)
	ChatStream(ctx context.Context, req *ChatRequest) (StreamReader, error)

	// Call is the simple non-streaming variant used for secondary
	// judgments and summary updates: one system prompt, one query,
	// plain text back.
	Call(ctx context.Context, systemPrompt, query, model string) (string, error)
}

type ChatRequest struct {
	Model       string
	Messages    []Message
	Tools       []*ToolDefinition
	Temperature float32
	TopP        float32
	MaxTokens   int
}

type ChatResponse struct {
	Message    Message
	StopReason StopReason
}

type ToolDefinition struct {
	Type     string
	Function *FunctionDef
}

type FunctionDef struct {
	Name        string
	Description string
	Parameters  map[string]any
}

// StreamReader yields partial completion updates in arrival order.
type StreamReader interface {
	Recv() (*Delta, error)
	Close() error
}

// Delta is one partial update from a streaming completion. A delta may carry
// a content fragment (plain or as typed parts), tool-call fragments keyed by
// position index, and a finish marker once the turn is done.
type Delta struct {
	Content      string
	Parts        []ContentPart
	ToolCalls    []ToolCallDelta
	FinishReason StopReason
	Done         bool
}

type ToolCallDelta struct {
	Index     int
	ID        string
	Name      string
	Arguments string
}

package agent

import (
	"fmt"
	"sort"
	"strings"

	"github.com/siquick/web-agent/internal/llm"
)

// aggregateCallbacks receive fragments as they arrive. onContent fires for
// every non-empty content fragment; onToolCallStart fires once per tool-call
// index, the first time a fragment reveals its name (arguments are unknown
// at that point).
type aggregateCallbacks struct {
	onContent       func(fragment string)
	onToolCallStart func(name string)
}

type partialToolCall struct {
	id        string
	name      string
	arguments string
	announced bool
}

// aggregate folds a stream of partial updates into one assistant message.
// Content fragments concatenate in arrival order, whether delivered plain or
// as typed parts. Tool-call fragments accumulate per index: argument text is
// concatenated while id and name are overwritten whenever newly supplied.
// Aggregation stops on an explicit finish marker (stop or tool_calls) or on
// stream exhaustion.
func aggregate(reader llm.StreamReader, callbacks aggregateCallbacks) (llm.Message, error) {
	defer reader.Close()

	var content strings.Builder
	calls := make(map[int]*partialToolCall)

	for {
		delta, err := reader.Recv()
		if err != nil {
			return llm.Message{}, err
		}
		if delta.Done {
			break
		}

		if fragment := contentFragment(delta); fragment != "" {
			content.WriteString(fragment)
			if callbacks.onContent != nil {
				callbacks.onContent(fragment)
			}
		}

		for _, tc := range delta.ToolCalls {
			call, exists := calls[tc.Index]
			if !exists {
				call = &partialToolCall{}
				calls[tc.Index] = call
			}
			if tc.ID != "" {
				call.id = tc.ID
			}
			if tc.Name != "" {
				call.name = tc.Name
			}
			call.arguments += tc.Arguments

			if !call.announced && call.name != "" {
				call.announced = true
				if callbacks.onToolCallStart != nil {
					callbacks.onToolCallStart(call.name)
				}
			}
		}

		if delta.FinishReason == llm.StopReasonStop || delta.FinishReason == llm.StopReasonToolCalls {
			break
		}
	}

	return llm.Message{
		Role:      llm.RoleAssistant,
		Content:   content.String(),
		ToolCalls: finalizeToolCalls(calls),
	}, nil
}

func contentFragment(delta *llm.Delta) string {
	if delta.Content != "" {
		return delta.Content
	}
	var fragment strings.Builder
	for _, part := range delta.Parts {
		if part.Type == "text" {
			fragment.WriteString(part.Text)
		}
	}
	return fragment.String()
}

// finalizeToolCalls orders accumulated calls by index and assigns synthetic
// ids where the stream never supplied one.
func finalizeToolCalls(calls map[int]*partialToolCall) []*llm.ToolCall {
	if len(calls) == 0 {
		return nil
	}

	indices := make([]int, 0, len(calls))
	for index := range calls {
		indices = append(indices, index)
	}
	sort.Ints(indices)

	result := make([]*llm.ToolCall, 0, len(indices))
	for _, index := range indices {
		call := calls[index]
		id := call.id
		if id == "" {
			id = fmt.Sprintf("tool_call_%d", index)
		}
		result = append(result, &llm.ToolCall{
			ID:   id,
			Type: "function",
			Function: &llm.FunctionCall{
				Name:      call.name,
				Arguments: call.arguments,
			},
		})
	}
	return result
}

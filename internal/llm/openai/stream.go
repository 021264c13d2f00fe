package openai

import (
	"errors"
	"fmt"
	"io"

	"github.com/siquick/web-agent/internal/llm"

	openai "github.com/sashabaranov/go-openai"
)

// StreamReader adapts an SDK completion stream into llm.Delta updates.
// It performs no aggregation; folding deltas into a message is the
// aggregator's job.
type StreamReader struct {
	stream *openai.ChatCompletionStream
}

func (s *StreamReader) Recv() (*llm.Delta, error) {
	resp, err := s.stream.Recv()
	if errors.Is(err, io.EOF) {
		return &llm.Delta{Done: true}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("stream recv error: %w", err)
	}

	if len(resp.Choices) == 0 {
		// Some providers emit keep-alive chunks without choices.
		return &llm.Delta{}, nil
	}

	choice := resp.Choices[0]
	delta := &llm.Delta{
		Content: choice.Delta.Content,
	}

	for _, tc := range choice.Delta.ToolCalls {
		index := 0
		if tc.Index != nil {
			index = *tc.Index
		}
		delta.ToolCalls = append(delta.ToolCalls, llm.ToolCallDelta{
			Index:     index,
			ID:        tc.ID,
			Name:      tc.Function.Name,
			Arguments: tc.Function.Arguments,
		})
	}

	switch choice.FinishReason {
	case openai.FinishReasonStop:
		delta.FinishReason = llm.StopReasonStop
	case openai.FinishReasonToolCalls:
		delta.FinishReason = llm.StopReasonToolCalls
	case openai.FinishReasonLength:
		delta.FinishReason = llm.StopReasonLength
	}

	return delta, nil
}

func (s *StreamReader) Close() error {
	s.stream.Close()
	return nil
}

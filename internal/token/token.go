// Package token wraps a tiktoken encoder for budget accounting. o200k_base
// covers GPT-4o and is a reasonable approximation for Qwen.
package token

import (
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

const encodingName = "o200k_base"

var (
	once sync.Once
	enc  *tiktoken.Tiktoken
	err  error
)

func encoder() (*tiktoken.Tiktoken, error) {
	once.Do(func() {
		enc, err = tiktoken.GetEncoding(encodingName)
	})
	return enc, err
}

// Codec counts and trims text at token boundaries.
type Codec interface {
	Count(text string) int
	Trim(text string, maxTokens int) string
}

// Tiktoken is the production Codec.
type Tiktoken struct{}

func (Tiktoken) Count(text string) int {
	if text == "" {
		return 0
	}
	e, err := encoder()
	if err != nil {
		// Rough fallback keeps budgets functional if the encoding
		// tables cannot be loaded.
		return len(text) / 4
	}
	return len(e.Encode(text, nil, nil))
}

func (Tiktoken) Trim(text string, maxTokens int) string {
	if text == "" || maxTokens <= 0 {
		return ""
	}
	e, err := encoder()
	if err != nil {
		if len(text) <= maxTokens*4 {
			return text
		}
		return text[:maxTokens*4]
	}
	tokens := e.Encode(text, nil, nil)
	if len(tokens) <= maxTokens {
		return text
	}
	return e.Decode(tokens[:maxTokens])
}

package tool

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// trailingComma matches a comma followed only by whitespace and closing
// brackets through the end of the text.
var trailingComma = regexp.MustCompile(`,(\s*[}\]]*\s*)$`)

// DecodeArguments recovers a JSON argument object from streamed tool-call
// argument text, which may arrive truncated or unbalanced. The pipeline is
// first-success-wins: parse as-is, then close unmatched openers, then strip a
// trailing comma before closing. On total failure the arguments degrade to an
// empty object and the returned error describes why; it is advisory only and
// must never abort the dispatch.
func DecodeArguments(raw string) (map[string]any, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return map[string]any{}, nil
	}

	if args, ok := parseObject(trimmed); ok {
		return args, nil
	}

	if patched, changed := closeBrackets(trimmed); changed {
		if args, ok := parseObject(patched); ok {
			return args, nil
		}
	}

	if stripped := trailingComma.ReplaceAllString(trimmed, "$1"); stripped != trimmed {
		candidate, _ := closeBrackets(stripped)
		if args, ok := parseObject(candidate); ok {
			return args, nil
		}
	}

	return map[string]any{}, fmt.Errorf("unrecoverable tool arguments: %.120q", raw)
}

func parseObject(s string) (map[string]any, bool) {
	var args map[string]any
	if err := json.Unmarshal([]byte(s), &args); err != nil {
		return nil, false
	}
	if args == nil {
		args = map[string]any{}
	}
	return args, true
}

// closeBrackets appends the closers for any unmatched `{`/`[` openers,
// terminating an unclosed string first. The scan is string- and
// escape-aware so brackets inside values are not miscounted. The second
// return reports whether anything was patched.
func closeBrackets(s string) (string, bool) {
	var stack []byte
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
			stack = append(stack, '}')
		case '[':
			stack = append(stack, ']')
		case '}', ']':
			if len(stack) > 0 && stack[len(stack)-1] == c {
				stack = stack[:len(stack)-1]
			}
		}
	}

	if !inString && len(stack) == 0 {
		return s, false
	}

	var b strings.Builder
	b.WriteString(s)
	if inString {
		b.WriteByte('"')
	}
	for i := len(stack) - 1; i >= 0; i-- {
		b.WriteByte(stack[i])
	}
	return b.String(), true
}

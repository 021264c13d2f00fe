package builtin

import "strings"

// stringArg extracts a trimmed string argument, or "" when absent or not a
// string.
func stringArg(args map[string]any, key string) string {
	value, ok := args[key].(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(value)
}

// intArg extracts an integer argument. Decoded JSON numbers arrive as
// float64; plain ints are accepted for direct callers.
func intArg(args map[string]any, key string, fallback int) int {
	switch value := args[key].(type) {
	case float64:
		return int(value)
	case int:
		return value
	default:
		return fallback
	}
}

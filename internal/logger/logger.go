package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

// Level represents the log level
type Level int

const (
	LevelDebug Level = iota // Debug information (only shown with --verbose)
	LevelInfo               // Important steps
	LevelTool               // Tool call related
	LevelAgent              // Agent response
	LevelError              // Error messages
)

// ANSI color codes for terminal output
const (
	ColorReset  = "\033[0m"
	ColorRed    = "\033[31m"
	ColorGreen  = "\033[32m"
	ColorYellow = "\033[33m"
	ColorBlue   = "\033[34m"
	ColorCyan   = "\033[36m"
	ColorGray   = "\033[90m"
	ColorBold   = "\033[1m"
)

// Logger provides leveled, sectioned logging for agent runs.
type Logger struct {
	writer    io.Writer
	level     Level
	showTime  bool
	colorMode bool
}

// NewLogger creates a new Logger instance
func NewLogger(w io.Writer, level Level) *Logger {
	if w == nil {
		w = os.Stdout
	}
	return &Logger{
		writer:    w,
		level:     level,
		showTime:  true,
		colorMode: true,
	}
}

// SetColorMode enables or disables colored output
func (l *Logger) SetColorMode(enabled bool) {
	l.colorMode = enabled
}

// SetShowTime enables or disables timestamp display
func (l *Logger) SetShowTime(enabled bool) {
	l.showTime = enabled
}

// Debug logs debug information (only shown in verbose mode)
func (l *Logger) Debug(format string, args ...any) {
	if l.level <= LevelDebug {
		l.log(ColorGray, "DEBUG", format, args...)
	}
}

// Info logs general information
func (l *Logger) Info(format string, args ...any) {
	if l.level <= LevelInfo {
		l.log(ColorBlue, "INFO", format, args...)
	}
}

// Warn logs recoverable problems (malformed arguments, parse fallbacks)
func (l *Logger) Warn(format string, args ...any) {
	if l.level <= LevelInfo {
		l.log(ColorYellow, "WARN", format, args...)
	}
}

// Error logs error messages
func (l *Logger) Error(format string, args ...any) {
	l.log(ColorRed, "ERROR", format, args...)
}

// Answer logs the agent's candidate answer with structured formatting
func (l *Logger) Answer(content string) {
	if l.level <= LevelAgent {
		l.printSection(ColorGreen, "Answer", content)
	}
}

// ToolCall logs a tool call with its resolved arguments
func (l *Logger) ToolCall(toolName string, args string) {
	if l.level <= LevelTool {
		l.printSection(ColorCyan, fmt.Sprintf("Tool Call: %s", toolName), l.formatJSON(args))
	}
}

// ToolResult logs a tool execution result, truncated for readability.
func (l *Logger) ToolResult(toolName string, output string, duration time.Duration) {
	if l.level <= LevelTool {
		const maxLines = 2
		const maxLength = 500

		lines := strings.Split(strings.TrimRight(output, "\n"), "\n")
		display := output
		truncatedLines := false

		if len(lines) > maxLines {
			display = strings.Join(lines[:maxLines], "\n")
			truncatedLines = true
		}
		if len(display) > maxLength {
			display = display[:maxLength] + "..."
		} else if truncatedLines {
			display += "\n..."
		}

		header := fmt.Sprintf("Tool Result: %s (%s)", toolName, duration.Round(time.Millisecond))
		l.printSection(ColorCyan, header, display)
	}
}

// Reflection logs a reflection verdict.
func (l *Logger) Reflection(requiresMoreContext bool, reason string) {
	if l.level <= LevelAgent {
		verdict := "sufficient, stop"
		color := ColorGreen
		if requiresMoreContext {
			verdict = "more context required"
			color = ColorYellow
		}
		l.printSection(color, fmt.Sprintf("Reflection: %s", verdict), reason)
	}
}

// RunStart logs the beginning of an agent run
func (l *Logger) RunStart(question string) {
	l.printBanner(ColorCyan, "Run Started", question)
}

// RunEnd logs the completion of an agent run with statistics
func (l *Logger) RunEnd(duration time.Duration, toolCalls, reflections int) {
	summary := fmt.Sprintf("Duration: %s | Tool Calls: %d | Reflections: %d",
		duration.Round(time.Millisecond), toolCalls, reflections)
	l.printBanner(ColorGreen, "Run Completed", summary)
}

// log is the core logging method
func (l *Logger) log(color, level, format string, args ...any) {
	timestamp := ""
	if l.showTime {
		timestamp = time.Now().Format("15:04:05") + " "
	}

	msg := fmt.Sprintf(format, args...)

	if l.colorMode {
		fmt.Fprintf(l.writer, "%s%s[%s]%s %s\n",
			color, timestamp, level, ColorReset, msg)
	} else {
		fmt.Fprintf(l.writer, "%s[%s] %s\n", timestamp, level, msg)
	}
}

// printSection prints a formatted section with header and content
func (l *Logger) printSection(color, header, content string) {
	separator := strings.Repeat("─", 60)

	if l.colorMode {
		fmt.Fprintf(l.writer, "\n%s%s%s%s\n", ColorBold, color, header, ColorReset)
		fmt.Fprintf(l.writer, "%s%s%s\n", color, separator, ColorReset)
		fmt.Fprintf(l.writer, "%s\n", content)
		fmt.Fprintf(l.writer, "%s%s%s\n\n", color, separator, ColorReset)
	} else {
		fmt.Fprintf(l.writer, "\n%s\n%s\n%s\n%s\n\n", header, separator, content, separator)
	}
}

// printBanner prints a prominent banner for run start/end
func (l *Logger) printBanner(color, title, subtitle string) {
	separator := strings.Repeat("═", 70)

	if l.colorMode {
		fmt.Fprintf(l.writer, "\n%s%s%s%s\n", ColorBold, color, separator, ColorReset)
		fmt.Fprintf(l.writer, "%s%s  %s%s\n", ColorBold, color, title, ColorReset)
		if subtitle != "" {
			fmt.Fprintf(l.writer, "%s  %s%s\n", color, subtitle, ColorReset)
		}
		fmt.Fprintf(l.writer, "%s%s%s%s\n\n", ColorBold, color, separator, ColorReset)
	} else {
		fmt.Fprintf(l.writer, "\n%s\n  %s\n", separator, title)
		if subtitle != "" {
			fmt.Fprintf(l.writer, "  %s\n", subtitle)
		}
		fmt.Fprintf(l.writer, "%s\n\n", separator)
	}
}

// formatJSON formats JSON strings adaptively based on length.
// Short JSON (< 80 chars) stays compact, long JSON gets pretty-printed.
func (l *Logger) formatJSON(jsonStr string) string {
	compact := strings.TrimSpace(jsonStr)
	if len(compact) < 80 {
		return compact
	}

	var obj interface{}
	if err := json.Unmarshal([]byte(compact), &obj); err != nil {
		return compact
	}

	pretty, err := json.MarshalIndent(obj, "", "  ")
	if err != nil {
		return compact
	}
	return string(pretty)
}

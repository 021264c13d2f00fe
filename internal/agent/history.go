package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/siquick/web-agent/internal/llm"
	"github.com/siquick/web-agent/internal/logger"
	"github.com/siquick/web-agent/internal/token"
)

const (
	// 30% of a 65536-token context window.
	defaultSummaryTokenLimit = 19660
	defaultChunkTokenLimit   = 4000
	defaultRecentTokenBudget = 20000
	defaultMinMessages       = 6
	summaryTrimMargin        = 10
)

// Summarizer folds a transcript chunk into a rolling summary:
// previous-summary + next-chunk -> new-summary. The gateway-backed
// implementation lives in NewSummarizer; tests substitute pure functions.
type Summarizer func(ctx context.Context, existingSummary, chunk string) (string, error)

// NewSummarizer returns the production summary-update operation backed by a
// non-streaming gateway call.
func NewSummarizer(gateway llm.Gateway, model string, maxTokens int) Summarizer {
	return func(ctx context.Context, existingSummary, chunk string) (string, error) {
		hasExisting := strings.TrimSpace(existingSummary) != ""
		prompt := summarizerPrompt(hasExisting, maxTokens)

		query := strings.TrimSpace(chunk)
		if hasExisting {
			query = fmt.Sprintf("Existing summary:\n%s\n\nNew conversation segment:\n%s",
				strings.TrimSpace(existingSummary), strings.TrimSpace(chunk))
		}

		updated, err := gateway.Call(ctx, prompt, query, model)
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(updated), nil
	}
}

// HistoryCompactor turns prior conversation turns into one bounded context
// block: an optional rolling summary plus a recent window that is always
// computed independently of the summary.
type HistoryCompactor struct {
	summarize Summarizer
	tokens    token.Codec
	log       *logger.Logger

	SummaryTokenLimit int
	ChunkTokenLimit   int
	RecentTokenBudget int
	MinMessages       int
}

func NewHistoryCompactor(summarize Summarizer, tokens token.Codec, log *logger.Logger) *HistoryCompactor {
	return &HistoryCompactor{
		summarize:         summarize,
		tokens:            tokens,
		log:               log,
		SummaryTokenLimit: defaultSummaryTokenLimit,
		ChunkTokenLimit:   defaultChunkTokenLimit,
		RecentTokenBudget: defaultRecentTokenBudget,
		MinMessages:       defaultMinMessages,
	}
}

type normalizedMessage struct {
	role    llm.Role
	content string
}

// Compact produces the context block for the caller-supplied history.
// Summarization failures degrade to the recent window alone; compaction
// never fails a run.
func (c *HistoryCompactor) Compact(ctx context.Context, history []llm.Message) string {
	normalized := normalizeHistory(history)
	if len(normalized) == 0 {
		return ""
	}

	summary := ""
	if len(normalized) >= c.MinMessages {
		summary = c.rollingSummary(ctx, normalized)
	}

	recent := c.recentWindow(normalized)

	var sections []string
	if summary != "" {
		sections = append(sections, "Conversation summary:\n"+strings.TrimSpace(summary))
	}
	if len(recent) > 0 {
		sections = append(sections, "Recent exchanges:\n"+strings.Join(recent, "\n"))
	}

	context := strings.TrimSpace(strings.Join(sections, "\n\n"))
	if context != "" {
		context += "\n"
	}
	return context
}

// normalizeHistory drops unsupported roles, flattens multi-part content to
// plain text, and drops empty results.
func normalizeHistory(history []llm.Message) []normalizedMessage {
	normalized := make([]normalizedMessage, 0, len(history))
	for _, message := range history {
		switch message.Role {
		case llm.RoleSystem, llm.RoleUser, llm.RoleAssistant:
		default:
			continue
		}
		content := strings.TrimSpace(message.Text())
		if content == "" {
			continue
		}
		normalized = append(normalized, normalizedMessage{role: message.Role, content: content})
	}
	return normalized
}

func (c *HistoryCompactor) rollingSummary(ctx context.Context, normalized []normalizedMessage) string {
	summary := ""
	for _, chunk := range c.transcriptChunks(normalized) {
		updated, err := c.summarize(ctx, summary, chunk)
		if err != nil {
			c.log.Warn("Failed to generate conversation summary: %v", err)
			return ""
		}
		summary = c.boundSummary(updated)
	}
	return summary
}

// boundSummary deterministically trims a summary update that exceeded its
// token budget, at a token boundary with a small safety margin.
func (c *HistoryCompactor) boundSummary(summary string) string {
	if c.tokens.Count(summary) <= c.SummaryTokenLimit {
		return summary
	}
	trimmed := strings.TrimRight(c.tokens.Trim(summary, c.SummaryTokenLimit-summaryTrimMargin), " \t\n")
	if c.tokens.Count(trimmed) >= c.SummaryTokenLimit {
		trimmed = strings.TrimRight(c.tokens.Trim(trimmed, c.SummaryTokenLimit-1), " \t\n")
	}
	return trimmed
}

// transcriptChunks partitions the transcript into token-bounded chunks. A
// chunk accumulates lines until adding the next would exceed the per-chunk
// budget; a single line is never split.
func (c *HistoryCompactor) transcriptChunks(normalized []normalizedMessage) []string {
	var chunks []string
	var lines []string
	currentTokens := 0

	for _, entry := range normalized {
		line := formatHistoryLine(entry)
		lineTokens := c.tokens.Count(line)
		if len(lines) > 0 && currentTokens+lineTokens > c.ChunkTokenLimit {
			chunks = append(chunks, strings.Join(lines, "\n"))
			lines = nil
			currentTokens = 0
		}
		lines = append(lines, line)
		currentTokens += lineTokens
	}
	if len(lines) > 0 {
		chunks = append(chunks, strings.Join(lines, "\n"))
	}
	return chunks
}

// recentWindow walks messages newest to oldest within the recent-context
// token budget, then restores chronological order. At least one message is
// always included, even when it alone exceeds the budget.
func (c *HistoryCompactor) recentWindow(normalized []normalizedMessage) []string {
	var lines []string
	runningTokens := 0

	for i := len(normalized) - 1; i >= 0; i-- {
		line := formatHistoryLine(normalized[i])
		lineTokens := c.tokens.Count(line)
		if len(lines) > 0 && runningTokens+lineTokens > c.RecentTokenBudget {
			break
		}
		lines = append(lines, line)
		runningTokens += lineTokens
	}

	for i, j := 0, len(lines)-1; i < j; i, j = i+1, j-1 {
		lines[i], lines[j] = lines[j], lines[i]
	}
	return lines
}

func formatHistoryLine(entry normalizedMessage) string {
	return fmt.Sprintf("%s: %s", roleLabel(entry.role), entry.content)
}

func roleLabel(role llm.Role) string {
	switch role {
	case llm.RoleSystem:
		return "System"
	case llm.RoleUser:
		return "User"
	case llm.RoleAssistant:
		return "Assistant"
	default:
		return string(role)
	}
}

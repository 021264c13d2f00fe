package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/siquick/web-agent/internal/config"
	"github.com/siquick/web-agent/internal/llm"
	"github.com/siquick/web-agent/internal/logger"
	"github.com/siquick/web-agent/internal/token"
	"github.com/siquick/web-agent/internal/tool"
)

const (
	defaultMaxTurns            = 6
	defaultMaxReflectionRounds = 1

	samplingTemperature = 0.1
	samplingTopP        = 0.95
	samplingMaxTokens   = 2000
)

// ErrTurnBudgetExhausted is returned when the turn budget runs out before
// the model produces a tool-free answer.
var ErrTurnBudgetExhausted = errors.New("turn budget exhausted without a final answer")

// Config carries per-agent overrides. Zero values fall back to defaults at
// construction time.
type Config struct {
	Model               string
	MaxTurns            int
	MaxReflectionRounds int
}

// Agent drives the multi-turn tool-use loop: it sends the conversation to
// the model, dispatches requested tool calls, gates candidate answers
// through reflection, and terminates with a final answer or a budget error.
type Agent struct {
	cfg      *config.Config
	gateway  llm.Gateway
	registry *tool.Registry
	log      *logger.Logger
	tokens   token.Codec

	model               string
	maxTurns            int
	maxReflectionRounds int
}

func New(cfg *config.Config, gateway llm.Gateway, registry *tool.Registry, log *logger.Logger, agentCfg *Config) *Agent {
	a := &Agent{
		cfg:                 cfg,
		gateway:             gateway,
		registry:            registry,
		log:                 log,
		tokens:              token.Tiktoken{},
		maxTurns:            defaultMaxTurns,
		maxReflectionRounds: defaultMaxReflectionRounds,
	}
	if agentCfg != nil {
		a.model = agentCfg.Model
		if agentCfg.MaxTurns > 0 {
			a.maxTurns = agentCfg.MaxTurns
		}
		if agentCfg.MaxReflectionRounds > 0 {
			a.maxReflectionRounds = agentCfg.MaxReflectionRounds
		}
	}
	return a
}

// Run executes one question to completion. The model override, when set,
// applies only to this run; resolution happens once, up front, so a run
// never switches models midway. Prior conversation turns arrive through
// history and are compacted into the opening user message.
func (a *Agent) Run(ctx context.Context, question string, history []llm.Message, model string, sink Sink) (*Result, error) {
	canonical, err := a.resolveModel(model)
	if err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	started := time.Now()
	a.log.RunStart(question)
	a.emit(sink, Event{Type: EventRunStart, RunID: runID, Model: canonical, Question: question})

	compactor := NewHistoryCompactor(
		NewSummarizer(a.gateway, canonical, defaultSummaryTokenLimit),
		a.tokens,
		a.log,
	)
	historyContext := compactor.Compact(ctx, history)

	messages := []llm.Message{
		{Role: llm.RoleSystem, Content: agentSystemPrompt()},
		{Role: llm.RoleUser, Content: openingMessage(historyContext, question)},
	}

	reflector := NewReflector(a.gateway, canonical, a.log)

	var toolRecords []ToolCallRecord
	var reflections []ReflectionRecord
	reflectionRounds := 0

	for turn := 1; turn <= a.maxTurns; turn++ {
		message, streamed, err := a.complete(ctx, canonical, messages, runID, turn, sink)
		if err != nil {
			return nil, err
		}

		if len(message.ToolCalls) == 0 {
			answer := message.Text()

			if len(toolRecords) > 0 && reflectionRounds < a.maxReflectionRounds {
				reflectionRounds++
				record, err := reflector.Evaluate(ctx, question, answer, toolRecords)
				if err != nil {
					return nil, err
				}
				reflections = append(reflections, record)
				a.log.Reflection(record.RequiresMoreContext, record.Reason)
				a.emit(sink, Event{Type: EventReflection, RunID: runID, Turn: turn, Reflection: &record})

				if record.RequiresMoreContext {
					messages = append(messages, message)
					messages = append(messages, reflectionFeedback(record)...)
					continue
				}
			}

			result := &Result{
				Answer:       answer,
				RefinedQuery: question,
				ToolCalls:    toolRecords,
				Reflections:  reflections,
			}
			a.log.Answer(answer)
			a.log.RunEnd(time.Since(started), len(toolRecords), len(reflections))
			a.emit(sink, Event{Type: EventAnswerFinal, RunID: runID, Turn: turn, Content: answer, Result: result})
			return result, nil
		}

		messages = append(messages, message)

		for _, call := range message.ToolCalls {
			name := call.Function.Name

			args, decodeErr := tool.DecodeArguments(call.Function.Arguments)
			if decodeErr != nil {
				a.log.Warn("Recovering malformed arguments for tool %s: %v", name, decodeErr)
			}

			if !streamed {
				a.emit(sink, Event{Type: EventToolCallStart, RunID: runID, Turn: turn, ToolName: name})
			}
			a.log.ToolCall(name, call.Function.Arguments)

			dispatchStart := time.Now()
			execution, err := a.registry.Execute(ctx, name, args)
			if err != nil {
				return nil, err
			}
			a.log.ToolResult(name, execution.Content, time.Since(dispatchStart))

			messages = append(messages, llm.Message{
				Role:       llm.RoleTool,
				Content:    execution.Content,
				ToolCallID: call.ID,
				Name:       name,
			})

			record := ToolCallRecord{
				Name:          name,
				Arguments:     execution.Arguments,
				OutputPreview: preview(execution.Content),
			}
			toolRecords = append(toolRecords, record)
			a.emit(sink, Event{
				Type:          EventToolCallFinish,
				RunID:         runID,
				Turn:          turn,
				ToolName:      name,
				ToolArguments: execution.Arguments,
				OutputPreview: record.OutputPreview,
			})
		}
	}

	return nil, ErrTurnBudgetExhausted
}

// complete issues one model turn, streaming when the resolved model allows
// it and falling back to a blocking completion otherwise. The returned flag
// reports whether tool-call starts were already announced by the stream.
func (a *Agent) complete(ctx context.Context, model string, messages []llm.Message, runID string, turn int, sink Sink) (llm.Message, bool, error) {
	request := a.request(model, messages)

	reader, err := a.gateway.ChatStream(ctx, request)
	if err != nil {
		if !errors.Is(err, llm.ErrStreamingNotSupported) {
			return llm.Message{}, false, err
		}
		a.log.Debug("Streaming disabled for %s; using blocking completion.", model)
		response, err := a.gateway.Chat(ctx, request)
		if err != nil {
			return llm.Message{}, false, err
		}
		return response.Message, false, nil
	}

	message, err := aggregate(reader, aggregateCallbacks{
		onContent: func(fragment string) {
			a.emit(sink, Event{Type: EventAnswerStream, RunID: runID, Turn: turn, Content: fragment})
		},
		onToolCallStart: func(name string) {
			a.emit(sink, Event{Type: EventToolCallStart, RunID: runID, Turn: turn, ToolName: name})
		},
	})
	if err != nil {
		return llm.Message{}, false, err
	}
	return message, true, nil
}

func (a *Agent) request(model string, messages []llm.Message) *llm.ChatRequest {
	return &llm.ChatRequest{
		Model:       model,
		Messages:    messages,
		Tools:       a.registry.Definitions(),
		Temperature: samplingTemperature,
		TopP:        samplingTopP,
		MaxTokens:   samplingMaxTokens,
	}
}

func (a *Agent) resolveModel(override string) (string, error) {
	name := override
	if name == "" {
		name = a.model
	}
	if name == "" {
		name = a.cfg.DefaultModelID()
	}
	return a.cfg.Canonical(name)
}

func openingMessage(historyContext, question string) string {
	var b strings.Builder
	if historyContext != "" {
		b.WriteString(historyContext)
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "User question: %s\n", question)
	fmt.Fprintf(&b, "Suggested starting web search query: %s\n", question)
	b.WriteString("Call tools when additional information is required.")
	return b.String()
}

// reflectionFeedback turns an insufficient verdict into steering messages
// for the next turn: a system message carrying the inspector's reasoning
// and, when a query was suggested, a user nudge toward it.
func reflectionFeedback(record ReflectionRecord) []llm.Message {
	var b strings.Builder
	b.WriteString("Reflection feedback indicates more work is needed.\n")
	fmt.Fprintf(&b, "Reason: %s\n", record.Reason)
	fmt.Fprintf(&b, "Instruction: %s", record.FollowUpInstruction)
	if record.SuggestedQuery != "" {
		fmt.Fprintf(&b, "\nSuggested query: %s", record.SuggestedQuery)
	}

	messages := []llm.Message{{Role: llm.RoleSystem, Content: b.String()}}
	if record.SuggestedQuery != "" {
		messages = append(messages, llm.Message{
			Role:    llm.RoleUser,
			Content: "Follow the reflection guidance. Consider searching for: " + record.SuggestedQuery,
		})
	}
	return messages
}

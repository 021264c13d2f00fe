package agent

// EventType discriminates run lifecycle events pushed to an external sink.
type EventType string

const (
	EventRunStart       EventType = "run/start"
	EventAnswerStream   EventType = "answer/stream"
	EventToolCallStart  EventType = "tool_call/start"
	EventToolCallFinish EventType = "tool_call/finish"
	EventReflection     EventType = "reflection"
	EventAnswerFinal    EventType = "answer/final"
)

// Event is one lifecycle milestone. Events are ephemeral: they are pushed to
// the sink in order and never persisted or replayed. Fields beyond Type and
// RunID are populated per variant.
type Event struct {
	Type          EventType         `json:"type"`
	RunID         string            `json:"run_id"`
	Model         string            `json:"model,omitempty"`
	Question      string            `json:"question,omitempty"`
	Turn          int               `json:"turn,omitempty"`
	Content       string            `json:"content,omitempty"`
	ToolName      string            `json:"tool_name,omitempty"`
	ToolArguments map[string]any    `json:"tool_arguments,omitempty"`
	OutputPreview string            `json:"output_preview,omitempty"`
	Reflection    *ReflectionRecord `json:"reflection,omitempty"`
	Result        *Result           `json:"result,omitempty"`
}

// Sink receives lifecycle events. Sinks are the one crossing into external
// code within a run, so every call is guarded: a panicking sink is logged
// and ignored, never allowed to alter the run's outcome.
type Sink func(Event)

func (a *Agent) emit(sink Sink, event Event) {
	if sink == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			a.log.Warn("Event sink failed on %s: %v", event.Type, r)
		}
	}()
	sink(event)
}

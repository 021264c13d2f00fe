package builtin

import (
	"context"
	"encoding/json"
	"time"
)

type CurrentTimeTool struct {
	now func() time.Time
}

func NewCurrentTimeTool() *CurrentTimeTool {
	return &CurrentTimeTool{now: time.Now}
}

func (t *CurrentTimeTool) Name() string {
	return "current_time_utc"
}

func (t *CurrentTimeTool) Description() string {
	return "Return the current UTC timestamp in ISO-8601 format for temporal grounding."
}

func (t *CurrentTimeTool) Parameters() map[string]any {
	return map[string]any{
		"type":                 "object",
		"properties":           map[string]any{},
		"additionalProperties": false,
	}
}

func (t *CurrentTimeTool) Run(ctx context.Context, args map[string]any) (string, error) {
	payload, err := json.Marshal(map[string]string{
		"current_time": t.now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return "", err
	}
	return string(payload), nil
}

package openai

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/siquick/web-agent/internal/config"
	"github.com/siquick/web-agent/internal/llm"
	"github.com/siquick/web-agent/internal/logger"

	openai "github.com/sashabaranov/go-openai"
)

var _ llm.Gateway = (*Gateway)(nil)

// Gateway routes completion requests to OpenAI-compatible providers from the
// configured registry. Clients are built lazily, once per provider; a missing
// credential surfaces on first use of that provider.
type Gateway struct {
	cfg *config.Config
	log *logger.Logger

	mu      sync.Mutex
	clients map[string]*openai.Client
}

func NewGateway(cfg *config.Config, log *logger.Logger) *Gateway {
	return &Gateway{
		cfg:     cfg,
		log:     log,
		clients: make(map[string]*openai.Client),
	}
}

func (g *Gateway) resolve(model string) (config.ModelConfig, config.ProviderConfig, error) {
	modelCfg, err := g.cfg.Model(model)
	if err != nil {
		return config.ModelConfig{}, config.ProviderConfig{}, err
	}
	providerCfg, err := g.cfg.Provider(modelCfg.ProviderID)
	if err != nil {
		return config.ModelConfig{}, config.ProviderConfig{}, err
	}
	return modelCfg, providerCfg, nil
}

func (g *Gateway) client(provider config.ProviderConfig) (*openai.Client, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if client, ok := g.clients[provider.ID]; ok {
		return client, nil
	}

	apiKey := provider.ResolvedAPIKey()
	if apiKey == "" {
		hint := strings.Join(provider.APIKeyEnvs, ", ")
		if hint == "" {
			hint = "an api_key in config"
		}
		return nil, fmt.Errorf("no API key available for provider %q: set one of %s", provider.Label, hint)
	}

	clientCfg := openai.DefaultConfig(apiKey)
	clientCfg.BaseURL = strings.TrimRight(provider.BaseURL, "/")
	client := openai.NewClientWithConfig(clientCfg)

	g.log.Debug("Created client for provider %q", provider.Label)
	g.clients[provider.ID] = client
	return client, nil
}

func (g *Gateway) Chat(ctx context.Context, req *llm.ChatRequest) (*llm.ChatResponse, error) {
	modelCfg, providerCfg, err := g.resolve(req.Model)
	if err != nil {
		return nil, err
	}
	client, err := g.client(providerCfg)
	if err != nil {
		return nil, err
	}

	resp, err := client.CreateChatCompletion(ctx, g.request(modelCfg, req, false))
	if err != nil {
		return nil, fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no choices in completion response")
	}

	choice := resp.Choices[0]
	return &llm.ChatResponse{
		Message:    convertResponseMessage(choice.Message),
		StopReason: convertFinishReason(choice.FinishReason),
	}, nil
}

func (g *Gateway) ChatStream(ctx context.Context, req *llm.ChatRequest) (llm.StreamReader, error) {
	modelCfg, providerCfg, err := g.resolve(req.Model)
	if err != nil {
		return nil, err
	}
	if !g.cfg.StreamingEnabled(modelCfg.ID) {
		return nil, fmt.Errorf("%w: %s", llm.ErrStreamingNotSupported, modelCfg.ID)
	}
	client, err := g.client(providerCfg)
	if err != nil {
		return nil, err
	}

	stream, err := client.CreateChatCompletionStream(ctx, g.request(modelCfg, req, true))
	if err != nil {
		return nil, fmt.Errorf("chat stream failed: %w", err)
	}
	return &StreamReader{stream: stream}, nil
}

// Call issues a single non-streaming system+user completion and returns the
// assistant text. Used by the reflection gate and the history summarizer.
func (g *Gateway) Call(ctx context.Context, systemPrompt, query, model string) (string, error) {
	resp, err := g.Chat(ctx, &llm.ChatRequest{
		Model: model,
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: systemPrompt},
			{Role: llm.RoleUser, Content: query},
		},
		Temperature: 0.1,
		TopP:        0.95,
		MaxTokens:   1024,
	})
	if err != nil {
		return "", err
	}
	return resp.Message.Text(), nil
}

func (g *Gateway) request(modelCfg config.ModelConfig, req *llm.ChatRequest, stream bool) openai.ChatCompletionRequest {
	return openai.ChatCompletionRequest{
		Model:       modelCfg.ModelName,
		Messages:    convertMessages(req.Messages),
		Tools:       convertTools(req.Tools),
		Temperature: req.Temperature,
		TopP:        req.TopP,
		MaxTokens:   req.MaxTokens,
		Stream:      stream,
	}
}

func convertMessages(msgs []llm.Message) []openai.ChatCompletionMessage {
	result := make([]openai.ChatCompletionMessage, len(msgs))
	for i, msg := range msgs {
		ocMsg := openai.ChatCompletionMessage{
			Role:    string(msg.Role),
			Content: msg.Text(),
		}

		if len(msg.ToolCalls) > 0 {
			ocMsg.ToolCalls = make([]openai.ToolCall, len(msg.ToolCalls))
			for j, tc := range msg.ToolCalls {
				ocMsg.ToolCalls[j] = openai.ToolCall{
					ID:   tc.ID,
					Type: openai.ToolTypeFunction,
					Function: openai.FunctionCall{
						Name:      tc.Function.Name,
						Arguments: tc.Function.Arguments,
					},
				}
			}
		}

		if msg.Role == llm.RoleTool {
			ocMsg.ToolCallID = msg.ToolCallID
			ocMsg.Name = msg.Name
		}

		result[i] = ocMsg
	}
	return result
}

func convertTools(tools []*llm.ToolDefinition) []openai.Tool {
	if len(tools) == 0 {
		return nil
	}
	result := make([]openai.Tool, len(tools))
	for i, t := range tools {
		result[i] = openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        t.Function.Name,
				Description: t.Function.Description,
				Parameters:  t.Function.Parameters,
			},
		}
	}
	return result
}

func convertResponseMessage(msg openai.ChatCompletionMessage) llm.Message {
	result := llm.Message{
		Role:    llm.Role(msg.Role),
		Content: msg.Content,
	}
	for _, tc := range msg.ToolCalls {
		result.ToolCalls = append(result.ToolCalls, &llm.ToolCall{
			ID:   tc.ID,
			Type: string(tc.Type),
			Function: &llm.FunctionCall{
				Name:      tc.Function.Name,
				Arguments: tc.Function.Arguments,
			},
		})
	}
	return result
}

func convertFinishReason(reason openai.FinishReason) llm.StopReason {
	switch reason {
	case openai.FinishReasonToolCalls:
		return llm.StopReasonToolCalls
	case openai.FinishReasonLength:
		return llm.StopReasonLength
	default:
		return llm.StopReasonStop
	}
}

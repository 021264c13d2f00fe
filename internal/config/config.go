package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrUnsupportedModel is returned when a requested model id does not match
// any configured model. Callers reject such requests before a run starts.
var ErrUnsupportedModel = errors.New("unsupported model")

// Config is the complete web-agent configuration: the provider/model
// registry the gateway routes through, plus optional MCP tool servers.
type Config struct {
	Providers    []ProviderConfig `yaml:"providers"`
	Models       []ModelConfig    `yaml:"models"`
	DefaultModel string           `yaml:"default_model"`
	MCP          MCPConfig        `yaml:"mcp"`
}

// ProviderConfig describes one OpenAI-compatible inference endpoint.
type ProviderConfig struct {
	ID                string   `yaml:"id"`
	Label             string   `yaml:"label"`
	BaseURL           string   `yaml:"base_url"`
	APIKey            string   `yaml:"api_key"`
	APIKeyEnvs        []string `yaml:"api_key_envs"`
	SupportsStreaming *bool    `yaml:"supports_streaming"`
}

// ResolvedAPIKey returns the literal key if set (after ${VAR} expansion),
// otherwise the first non-empty value among the configured env vars.
func (p ProviderConfig) ResolvedAPIKey() string {
	if key := ExpandEnv(p.APIKey); key != "" {
		return key
	}
	for _, env := range p.APIKeyEnvs {
		if value := os.Getenv(env); value != "" {
			return value
		}
	}
	return ""
}

func (p ProviderConfig) StreamingSupported() bool {
	if p.SupportsStreaming == nil {
		return true
	}
	return *p.SupportsStreaming
}

// ModelConfig maps a public model id onto a provider's underlying model name.
type ModelConfig struct {
	ID                string `yaml:"id"`
	ProviderID        string `yaml:"provider_id"`
	ModelName         string `yaml:"model_name"`
	DisplayName       string `yaml:"display_name"`
	Description       string `yaml:"description"`
	SupportsStreaming *bool  `yaml:"supports_streaming"`
}

func (m ModelConfig) ResolvedDisplayName() string {
	if m.DisplayName != "" {
		return m.DisplayName
	}
	return m.ModelName
}

// MCPConfig contains MCP tool-server settings.
type MCPConfig struct {
	Servers []MCPServerConfig `yaml:"servers"`
}

// MCPServerConfig defines a single MCP server whose tools are exposed as
// agent capabilities.
type MCPServerConfig struct {
	Name      string            `yaml:"name"`
	Transport string            `yaml:"transport"`
	Command   string            `yaml:"command"`
	Args      []string          `yaml:"args"`
	Env       map[string]string `yaml:"env"`
	Disabled  bool              `yaml:"disabled"`
}

// Default returns the built-in registry: OpenRouter and the Hugging Face
// inference router, each serving Qwen3-32B variants.
func Default() *Config {
	return &Config{
		Providers: []ProviderConfig{
			{
				ID:         "openrouter",
				Label:      "OpenRouter",
				BaseURL:    "https://openrouter.ai/api/v1",
				APIKeyEnvs: []string{"OPENROUTER_API_KEY", "OPENAI_API_KEY"},
			},
			{
				ID:         "huggingface",
				Label:      "Hugging Face Inference Router",
				BaseURL:    "https://router.huggingface.co/v1",
				APIKeyEnvs: []string{"HF_TOKEN", "HUGGINGFACEHUB_API_TOKEN"},
			},
		},
		Models: []ModelConfig{
			{
				ID:          "openrouter/qwen-3-32b",
				ProviderID:  "openrouter",
				ModelName:   "qwen/qwen3-32b",
				DisplayName: "Qwen 3 32B (OpenRouter)",
				Description: "General-purpose 32B model served via OpenRouter.",
			},
			{
				ID:          "huggingface/qwen3-32b-groq",
				ProviderID:  "huggingface",
				ModelName:   "Qwen/Qwen3-32B:groq",
				DisplayName: "Qwen 3 32B (HF - Groq)",
				Description: "Qwen 3 32B hosted on Hugging Face via the Groq backend.",
			},
			{
				ID:          "huggingface/qwen3-32b-cerebras",
				ProviderID:  "huggingface",
				ModelName:   "Qwen/Qwen3-32B:cerebras",
				DisplayName: "Qwen 3 32B (HF - Cerebras)",
				Description: "Qwen 3 32B hosted on Hugging Face via the Cerebras backend.",
			},
		},
	}
}

// Load reads and parses the YAML config file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config YAML: %w", err)
	}

	if len(cfg.Providers) == 0 && len(cfg.Models) == 0 {
		defaults := Default()
		cfg.Providers = defaults.Providers
		cfg.Models = defaults.Models
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// LoadWithDefaults loads config with fallback to conventional locations.
// When no file exists, the built-in registry is used.
func LoadWithDefaults() (*Config, error) {
	locations := []string{
		"./webagent.yaml",
		"./configs/webagent.yaml",
	}

	if home, err := os.UserHomeDir(); err == nil {
		locations = append(locations, filepath.Join(home, ".config", "webagent", "webagent.yaml"))
	}

	locations = append(locations, "/etc/webagent/webagent.yaml")

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return Load(loc)
		}
	}

	return Default(), nil
}

// Validate checks config correctness.
func (c *Config) Validate() error {
	if len(c.Models) == 0 {
		return fmt.Errorf("at least one model must be configured")
	}

	providers := make(map[string]bool, len(c.Providers))
	for i, provider := range c.Providers {
		if provider.ID == "" {
			return fmt.Errorf("provider #%d: id cannot be empty", i+1)
		}
		if providers[provider.ID] {
			return fmt.Errorf("duplicate provider id: %s", provider.ID)
		}
		if provider.BaseURL == "" {
			return fmt.Errorf("provider %s: base_url is required", provider.ID)
		}
		providers[provider.ID] = true
	}

	models := make(map[string]bool, len(c.Models))
	for i, model := range c.Models {
		if model.ID == "" {
			return fmt.Errorf("model #%d: id cannot be empty", i+1)
		}
		if models[model.ID] {
			return fmt.Errorf("duplicate model id: %s", model.ID)
		}
		if model.ModelName == "" {
			return fmt.Errorf("model %s: model_name is required", model.ID)
		}
		if !providers[model.ProviderID] {
			return fmt.Errorf("model %s references unknown provider %q", model.ID, model.ProviderID)
		}
		models[model.ID] = true
	}

	if c.DefaultModel != "" && !models[c.DefaultModel] {
		return fmt.Errorf("default_model %q is not a configured model", c.DefaultModel)
	}

	for i, server := range c.MCP.Servers {
		if err := server.Validate(); err != nil {
			if server.Name != "" {
				return fmt.Errorf("mcp server %s: %w", server.Name, err)
			}
			return fmt.Errorf("mcp server #%d: %w", i+1, err)
		}
	}

	return nil
}

// Validate checks a single MCP server entry. Server names feed into
// namespaced tool names, so they must satisfy OpenAI tool-name rules.
func (s *MCPServerConfig) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	for _, ch := range s.Name {
		if !((ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || (ch >= '0' && ch <= '9') || ch == '_' || ch == '-') {
			return fmt.Errorf("server name %q contains invalid character %q", s.Name, ch)
		}
	}
	if s.Transport != "stdio" {
		return fmt.Errorf("unsupported transport: %q (only 'stdio' is supported)", s.Transport)
	}
	if s.Command == "" {
		return fmt.Errorf("command is required")
	}
	return nil
}

// Model resolves a model by registry id, falling back to lookup by the
// underlying provider model name for compatibility.
func (c *Config) Model(name string) (ModelConfig, error) {
	target := strings.TrimSpace(name)
	if target == "" {
		target = c.DefaultModelID()
	}
	for _, model := range c.Models {
		if model.ID == target {
			return model, nil
		}
	}
	for _, model := range c.Models {
		if model.ModelName == target {
			return model, nil
		}
	}
	return ModelConfig{}, fmt.Errorf("%w: %s", ErrUnsupportedModel, target)
}

// Provider returns the provider a model belongs to.
func (c *Config) Provider(id string) (ProviderConfig, error) {
	for _, provider := range c.Providers {
		if provider.ID == id {
			return provider, nil
		}
	}
	return ProviderConfig{}, fmt.Errorf("unknown provider: %s", id)
}

// Canonical maps any accepted model spelling onto its registry id.
func (c *Config) Canonical(name string) (string, error) {
	model, err := c.Model(name)
	if err != nil {
		return "", err
	}
	return model.ID, nil
}

// DefaultModelID returns the configured default, or the first model.
func (c *Config) DefaultModelID() string {
	if c.DefaultModel != "" {
		return c.DefaultModel
	}
	if len(c.Models) > 0 {
		return c.Models[0].ID
	}
	return ""
}

// SupportedModelIDs lists every configured model id, in config order.
func (c *Config) SupportedModelIDs() []string {
	ids := make([]string, len(c.Models))
	for i, model := range c.Models {
		ids[i] = model.ID
	}
	return ids
}

func (c *Config) IsSupportedModel(name string) bool {
	_, err := c.Model(name)
	return err == nil
}

// StreamingEnabled reports whether the resolved model may stream. The model
// setting overrides the provider default.
func (c *Config) StreamingEnabled(name string) bool {
	model, err := c.Model(name)
	if err != nil {
		return false
	}
	if model.SupportsStreaming != nil {
		return *model.SupportsStreaming
	}
	provider, err := c.Provider(model.ProviderID)
	if err != nil {
		return false
	}
	return provider.StreamingSupported()
}

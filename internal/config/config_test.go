package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestDefault_Valid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Expected built-in registry to validate, got: %v", err)
	}
	if cfg.DefaultModelID() != "openrouter/qwen-3-32b" {
		t.Errorf("Expected first model as default, got: %s", cfg.DefaultModelID())
	}
	if len(cfg.SupportedModelIDs()) != 3 {
		t.Errorf("Expected three built-in models, got: %v", cfg.SupportedModelIDs())
	}
}

func TestConfig_Canonical(t *testing.T) {
	cfg := Default()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"by registry id", "openrouter/qwen-3-32b", "openrouter/qwen-3-32b"},
		{"by provider model name", "qwen/qwen3-32b", "openrouter/qwen-3-32b"},
		{"hf variant by model name", "Qwen/Qwen3-32B:groq", "huggingface/qwen3-32b-groq"},
		{"empty falls back to default", "", "openrouter/qwen-3-32b"},
		{"whitespace trimmed", "  openrouter/qwen-3-32b  ", "openrouter/qwen-3-32b"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := cfg.Canonical(tt.input)
			if err != nil {
				t.Fatalf("Canonical(%q) failed: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("Canonical(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestConfig_Canonical_Unsupported(t *testing.T) {
	cfg := Default()
	_, err := cfg.Canonical("gpt-5-mini")
	if !errors.Is(err, ErrUnsupportedModel) {
		t.Errorf("Expected ErrUnsupportedModel, got: %v", err)
	}
	if cfg.IsSupportedModel("gpt-5-mini") {
		t.Error("Expected IsSupportedModel false for unknown model")
	}
}

func TestConfig_StreamingEnabled(t *testing.T) {
	off := false
	on := true
	cfg := &Config{
		Providers: []ProviderConfig{
			{ID: "p1", BaseURL: "https://example.com/v1"},
			{ID: "p2", BaseURL: "https://example.com/v1", SupportsStreaming: &off},
		},
		Models: []ModelConfig{
			{ID: "m1", ProviderID: "p1", ModelName: "n1"},
			{ID: "m2", ProviderID: "p2", ModelName: "n2"},
			{ID: "m3", ProviderID: "p2", ModelName: "n3", SupportsStreaming: &on},
		},
	}

	if !cfg.StreamingEnabled("m1") {
		t.Error("Expected streaming on by provider default")
	}
	if cfg.StreamingEnabled("m2") {
		t.Error("Expected provider opt-out to apply")
	}
	if !cfg.StreamingEnabled("m3") {
		t.Error("Expected model setting to override provider opt-out")
	}
	if cfg.StreamingEnabled("missing") {
		t.Error("Expected unknown model to report streaming off")
	}
}

func TestConfig_Validate_Failures(t *testing.T) {
	tests := []struct {
		name string
		cfg  *Config
	}{
		{"no models", &Config{}},
		{"missing base url", &Config{
			Providers: []ProviderConfig{{ID: "p"}},
			Models:    []ModelConfig{{ID: "m", ProviderID: "p", ModelName: "n"}},
		}},
		{"duplicate model id", &Config{
			Providers: []ProviderConfig{{ID: "p", BaseURL: "https://x/v1"}},
			Models: []ModelConfig{
				{ID: "m", ProviderID: "p", ModelName: "n"},
				{ID: "m", ProviderID: "p", ModelName: "n2"},
			},
		}},
		{"unknown provider reference", &Config{
			Providers: []ProviderConfig{{ID: "p", BaseURL: "https://x/v1"}},
			Models:    []ModelConfig{{ID: "m", ProviderID: "ghost", ModelName: "n"}},
		}},
		{"bad default model", &Config{
			Providers:    []ProviderConfig{{ID: "p", BaseURL: "https://x/v1"}},
			Models:       []ModelConfig{{ID: "m", ProviderID: "p", ModelName: "n"}},
			DefaultModel: "elsewhere",
		}},
		{"bad mcp server name", &Config{
			Providers: []ProviderConfig{{ID: "p", BaseURL: "https://x/v1"}},
			Models:    []ModelConfig{{ID: "m", ProviderID: "p", ModelName: "n"}},
			MCP: MCPConfig{Servers: []MCPServerConfig{
				{Name: "bad name!", Command: "server"},
			}},
		}},
		{"mcp sse transport", &Config{
			Providers: []ProviderConfig{{ID: "p", BaseURL: "https://x/v1"}},
			Models:    []ModelConfig{{ID: "m", ProviderID: "p", ModelName: "n"}},
			MCP: MCPConfig{Servers: []MCPServerConfig{
				{Name: "srv", Transport: "sse", Command: "server"},
			}},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.cfg.Validate(); err == nil {
				t.Error("Expected validation to fail")
			}
		})
	}
}

func TestLoad_YAMLWithEnvExpansion(t *testing.T) {
	t.Setenv("TEST_WEBAGENT_KEY", "sk-test-123")

	path := filepath.Join(t.TempDir(), "webagent.yaml")
	yaml := `
providers:
  - id: local
    label: Local
    base_url: https://example.com/v1
    api_key: ${TEST_WEBAGENT_KEY}
models:
  - id: local/test
    provider_id: local
    model_name: test-model
default_model: local/test
`
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.DefaultModelID() != "local/test" {
		t.Errorf("Expected default model from file, got: %s", cfg.DefaultModelID())
	}
	provider, err := cfg.Provider("local")
	if err != nil {
		t.Fatal(err)
	}
	if provider.ResolvedAPIKey() != "sk-test-123" {
		t.Errorf("Expected env-expanded key, got: %q", provider.ResolvedAPIKey())
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "webagent.yaml")
	if err := os.WriteFile(path, []byte("models: [unclosed"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("Expected parse error for invalid YAML")
	}
}

func TestProviderConfig_ResolvedAPIKey_EnvFallback(t *testing.T) {
	t.Setenv("FALLBACK_KEY_B", "value-b")

	provider := ProviderConfig{
		APIKeyEnvs: []string{"FALLBACK_KEY_A", "FALLBACK_KEY_B"},
	}
	if got := provider.ResolvedAPIKey(); got != "value-b" {
		t.Errorf("Expected first non-empty env value, got: %q", got)
	}
}

func TestExpandEnv(t *testing.T) {
	t.Setenv("EXPAND_TEST_VAR", "hello")

	tests := []struct {
		input string
		want  string
	}{
		{"${EXPAND_TEST_VAR}", "hello"},
		{"$EXPAND_TEST_VAR", "hello"},
		{"prefix-${EXPAND_TEST_VAR}-suffix", "prefix-hello-suffix"},
		{"${UNSET_VAR_XYZ}", ""},
		{"no variables here", "no variables here"},
	}
	for _, tt := range tests {
		if got := ExpandEnv(tt.input); got != tt.want {
			t.Errorf("ExpandEnv(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

package adapter

import (
	"testing"

	"github.com/orbitchat/orbit-chat/internal/config"
)

func factoryConfig(provider, key string) *config.Configuration {
	cfg := &config.Configuration{}
	cfg.AI.Provider = provider
	cfg.AI.RequestTimeoutSeconds = 30
	switch provider {
	case config.ProviderOpenAI:
		cfg.AI.OpenAI.APIKey = key
	case config.ProviderAnthropic:
		cfg.AI.Anthropic.APIKey = key
	case config.ProviderGoogle:
		cfg.AI.Google.APIKey = key
	}
	return cfg
}

func TestNew_ProviderSelection(t *testing.T) {
	tests := []struct {
		name     string
		provider string
		key      string
		wantName string
	}{
		{name: "openai with key", provider: config.ProviderOpenAI, key: "sk-test", wantName: "openai"},
		{name: "anthropic with key", provider: config.ProviderAnthropic, key: "sk-ant-test", wantName: "anthropic"},
		{name: "google with key", provider: config.ProviderGoogle, key: "AIzaTest", wantName: "google"},
		{name: "mock explicitly", provider: config.ProviderMock, key: "", wantName: "mock"},
		{name: "openai without key falls back", provider: config.ProviderOpenAI, key: "", wantName: "mock"},
		{name: "anthropic without key falls back", provider: config.ProviderAnthropic, key: "", wantName: "mock"},
		{name: "google without key falls back", provider: config.ProviderGoogle, key: "", wantName: "mock"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := New(factoryConfig(tt.provider, tt.key), &staticHistory{}, nil)
			if got := gen.Name(); got != tt.wantName {
				t.Errorf("New().Name() = %q, want %q", got, tt.wantName)
			}
		})
	}
}

func TestNew_ModelOverridesApply(t *testing.T) {
	cfg := factoryConfig(config.ProviderOpenAI, "sk-test")
	cfg.AI.OpenAI.Model = "gpt-4o-mini"

	gen := New(cfg, &staticHistory{}, nil)
	a, ok := gen.(*OpenAIAdapter)
	if !ok {
		t.Fatalf("New() = %T, want *OpenAIAdapter", gen)
	}
	if a.model != "gpt-4o-mini" {
		t.Errorf("model = %q, want override %q", a.model, "gpt-4o-mini")
	}
}

// Package adapter provides implementations for external AI provider integrations.
// It uses the Adapter pattern to abstract provider-specific APIs behind a common interface.
package adapter

import (
	"context"
	"log/slog"
	"time"

	"github.com/orbitchat/orbit-chat/internal/config"
	"github.com/orbitchat/orbit-chat/internal/domain"
)

// Generator defines the interface for AI provider adapters.
// All provider implementations must satisfy this interface.
type Generator interface {
	// Generate produces one assistant reply for the given user text.
	// conversationID lets history-aware providers read prior turns.
	Generate(ctx context.Context, conversationID, userText string) (string, error)

	// Name returns the provider's identifier string.
	Name() string
}

// History gives adapters read access to a conversation's recent messages,
// newest first. Only the OpenAI adapter uses it; the other vendors are
// called single-turn.
type History interface {
	RecentMessages(ctx context.Context, conversationID string, limit int) ([]domain.Message, error)
}

// New builds the process-wide Generator from configuration. The provider is
// chosen exactly once here; a selected provider with no credential falls back
// to the mock adapter so the server stays usable without any keys.
func New(cfg *config.Configuration, history History, logger *slog.Logger) Generator {
	if logger == nil {
		logger = slog.Default()
	}

	timeout := time.Duration(cfg.AI.RequestTimeoutSeconds) * time.Second
	effective := cfg.EffectiveProvider()

	if effective != cfg.AI.Provider {
		logger.Warn("selected AI provider has no API key, using mock responses",
			slog.String("selected", cfg.AI.Provider),
		)
	}

	switch effective {
	case config.ProviderOpenAI:
		return NewOpenAIAdapter(cfg.AI.OpenAI.APIKey, history,
			WithOpenAIModel(cfg.AI.OpenAI.Model),
			WithOpenAITimeout(timeout),
		)
	case config.ProviderAnthropic:
		return NewAnthropicAdapter(cfg.AI.Anthropic.APIKey,
			WithAnthropicModel(cfg.AI.Anthropic.Model),
			WithAnthropicTimeout(timeout),
		)
	case config.ProviderGoogle:
		return NewGoogleAdapter(cfg.AI.Google.APIKey,
			WithGoogleModel(cfg.AI.Google.Model),
			WithGoogleTimeout(timeout),
		)
	default:
		return NewMockAdapter()
	}
}

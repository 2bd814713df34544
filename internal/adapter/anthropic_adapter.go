// Package adapter provides implementations for external AI provider integrations.
package adapter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/orbitchat/orbit-chat/internal/domain"
)

const (
	// DefaultAnthropicBaseURL is the default Anthropic API endpoint.
	DefaultAnthropicBaseURL = "https://api.anthropic.com/v1"

	// DefaultAnthropicModel is used when no model override is configured.
	DefaultAnthropicModel = "claude-3-sonnet-20240229"

	// anthropicVersion is the required API version header value.
	anthropicVersion = "2023-06-01"
)

// AnthropicAdapter implements Generator for the Anthropic messages API.
// Calls are single-turn: no conversation history is injected.
type AnthropicAdapter struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
}

// AnthropicOption is a functional option for configuring AnthropicAdapter.
type AnthropicOption func(*AnthropicAdapter)

// WithAnthropicBaseURL sets a custom base URL for the Anthropic API.
func WithAnthropicBaseURL(url string) AnthropicOption {
	return func(a *AnthropicAdapter) {
		a.baseURL = strings.TrimSuffix(url, "/")
	}
}

// WithAnthropicModel sets the model name. An empty value keeps the default.
func WithAnthropicModel(model string) AnthropicOption {
	return func(a *AnthropicAdapter) {
		if model != "" {
			a.model = model
		}
	}
}

// WithAnthropicHTTPClient sets a custom HTTP client.
func WithAnthropicHTTPClient(client *http.Client) AnthropicOption {
	return func(a *AnthropicAdapter) {
		a.httpClient = client
	}
}

// WithAnthropicTimeout sets the HTTP client timeout.
func WithAnthropicTimeout(timeout time.Duration) AnthropicOption {
	return func(a *AnthropicAdapter) {
		if timeout > 0 {
			a.httpClient.Timeout = timeout
		}
	}
}

// NewAnthropicAdapter creates a new AnthropicAdapter with the given API key.
func NewAnthropicAdapter(apiKey string, opts ...AnthropicOption) *AnthropicAdapter {
	a := &AnthropicAdapter{
		apiKey:  apiKey,
		baseURL: DefaultAnthropicBaseURL,
		model:   DefaultAnthropicModel,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Name returns the provider identifier.
func (a *AnthropicAdapter) Name() string {
	return "anthropic"
}

// Generate performs a single-turn messages request.
func (a *AnthropicAdapter) Generate(ctx context.Context, _ string, userText string) (string, error) {
	if a.apiKey == "" {
		return "", &domain.ProviderConfigError{Provider: "Anthropic"}
	}

	req := anthropicRequest{
		Model:     a.model,
		MaxTokens: maxCompletionTokens,
		Messages: []anthropicMessage{
			{Role: "user", Content: userText},
		},
	}

	body, err := json.Marshal(req)
	if err != nil {
		return "", &domain.ProviderCallError{Provider: "Anthropic", Err: fmt.Errorf("marshal request: %w", err)}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		a.baseURL+"/messages", bytes.NewReader(body))
	if err != nil {
		return "", &domain.ProviderCallError{Provider: "Anthropic", Err: err}
	}
	httpReq.Header.Set("x-api-key", a.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("anthropic-version", anthropicVersion)

	resp, err := a.httpClient.Do(httpReq)
	if err != nil {
		return "", &domain.ProviderCallError{Provider: "Anthropic", Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &domain.ProviderCallError{Provider: "Anthropic", Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		return "", &domain.ProviderCallError{
			Provider: "Anthropic",
			Err:      fmt.Errorf("status %d: %s", resp.StatusCode, string(respBody)),
		}
	}

	var message anthropicResponse
	if err := json.Unmarshal(respBody, &message); err != nil {
		return "", &domain.ProviderCallError{Provider: "Anthropic", Err: fmt.Errorf("unmarshal response: %w", err)}
	}

	if len(message.Content) == 0 {
		return "", &domain.ProviderCallError{Provider: "Anthropic", Err: fmt.Errorf("response contained no content blocks")}
	}

	return message.Content[0].Text, nil
}

// ============================================================================
// Anthropic API Types
// ============================================================================

// anthropicRequest represents a messages API request.
type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	Messages  []anthropicMessage `json:"messages"`
}

// anthropicMessage is one chat turn in Anthropic role/content form.
type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// anthropicResponse represents a messages API response.
type anthropicResponse struct {
	ID      string                  `json:"id"`
	Model   string                  `json:"model"`
	Role    string                  `json:"role"`
	Content []anthropicContentBlock `json:"content"`
}

// anthropicContentBlock is one block of the reply content.
type anthropicContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

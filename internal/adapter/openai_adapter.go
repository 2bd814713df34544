// Package adapter provides implementations for external AI provider integrations.
package adapter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/orbitchat/orbit-chat/internal/domain"
)

const (
	// DefaultOpenAIBaseURL is the default OpenAI API endpoint.
	DefaultOpenAIBaseURL = "https://api.openai.com/v1"

	// DefaultOpenAIModel is used when no model override is configured.
	DefaultOpenAIModel = "gpt-3.5-turbo"

	// DefaultTimeout is the default HTTP client timeout.
	DefaultTimeout = 30 * time.Second

	// HistoryWindow is how many recent messages are injected as context.
	HistoryWindow = 10

	// SystemPrompt is the fixed instruction prepended to every request.
	SystemPrompt = "You are a helpful AI assistant. Provide clear, concise, and helpful responses to user questions."

	maxCompletionTokens = 1000
	samplingTemperature = 0.7
)

// OpenAIAdapter implements Generator for the OpenAI chat completion API.
// It is the only adapter that injects conversation history: the most recent
// ten messages, oldest first, between the system prompt and the new turn.
type OpenAIAdapter struct {
	apiKey     string
	baseURL    string
	model      string
	history    History
	httpClient *http.Client
	logger     *slog.Logger
}

// OpenAIOption is a functional option for configuring OpenAIAdapter.
type OpenAIOption func(*OpenAIAdapter)

// WithOpenAIBaseURL sets a custom base URL for the OpenAI API.
func WithOpenAIBaseURL(url string) OpenAIOption {
	return func(a *OpenAIAdapter) {
		a.baseURL = strings.TrimSuffix(url, "/")
	}
}

// WithOpenAIModel sets the model name. An empty value keeps the default.
func WithOpenAIModel(model string) OpenAIOption {
	return func(a *OpenAIAdapter) {
		if model != "" {
			a.model = model
		}
	}
}

// WithOpenAIHTTPClient sets a custom HTTP client.
func WithOpenAIHTTPClient(client *http.Client) OpenAIOption {
	return func(a *OpenAIAdapter) {
		a.httpClient = client
	}
}

// WithOpenAITimeout sets the HTTP client timeout.
func WithOpenAITimeout(timeout time.Duration) OpenAIOption {
	return func(a *OpenAIAdapter) {
		if timeout > 0 {
			a.httpClient.Timeout = timeout
		}
	}
}

// WithOpenAILogger sets a custom logger.
func WithOpenAILogger(logger *slog.Logger) OpenAIOption {
	return func(a *OpenAIAdapter) {
		a.logger = logger
	}
}

// NewOpenAIAdapter creates a new OpenAIAdapter with the given API key and
// history source.
func NewOpenAIAdapter(apiKey string, history History, opts ...OpenAIOption) *OpenAIAdapter {
	a := &OpenAIAdapter{
		apiKey:  apiKey,
		baseURL: DefaultOpenAIBaseURL,
		model:   DefaultOpenAIModel,
		history: history,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Name returns the provider identifier.
func (a *OpenAIAdapter) Name() string {
	return "openai"
}

// Generate performs a chat completion request with conversation context.
func (a *OpenAIAdapter) Generate(ctx context.Context, conversationID, userText string) (string, error) {
	if a.apiKey == "" {
		return "", &domain.ProviderConfigError{Provider: "OpenAI"}
	}

	messages, err := a.contextMessages(ctx, conversationID, userText)
	if err != nil {
		return "", &domain.ProviderCallError{Provider: "OpenAI", Err: err}
	}

	req := openAIRequest{
		Model:       a.model,
		Messages:    messages,
		MaxTokens:   maxCompletionTokens,
		Temperature: samplingTemperature,
	}

	a.logger.Debug("openai request",
		slog.String("model", a.model),
		slog.Int("messages", len(messages)),
		slog.Int("prompt_tokens_estimate", estimateRequestTokens(messages)),
	)

	body, err := json.Marshal(req)
	if err != nil {
		return "", &domain.ProviderCallError{Provider: "OpenAI", Err: fmt.Errorf("marshal request: %w", err)}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		a.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", &domain.ProviderCallError{Provider: "OpenAI", Err: err}
	}
	httpReq.Header.Set("Authorization", "Bearer "+a.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := a.httpClient.Do(httpReq)
	if err != nil {
		return "", &domain.ProviderCallError{Provider: "OpenAI", Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &domain.ProviderCallError{Provider: "OpenAI", Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		return "", &domain.ProviderCallError{
			Provider: "OpenAI",
			Err:      fmt.Errorf("status %d: %s", resp.StatusCode, string(respBody)),
		}
	}

	var completion openAIResponse
	if err := json.Unmarshal(respBody, &completion); err != nil {
		return "", &domain.ProviderCallError{Provider: "OpenAI", Err: fmt.Errorf("unmarshal response: %w", err)}
	}

	if len(completion.Choices) == 0 {
		return "", &domain.ProviderCallError{Provider: "OpenAI", Err: fmt.Errorf("response contained no choices")}
	}

	return completion.Choices[0].Message.Content, nil
}

// contextMessages assembles the outbound message list: system prompt, the
// most recent HistoryWindow messages in chronological order, then the new
// user turn.
func (a *OpenAIAdapter) contextMessages(ctx context.Context, conversationID, userText string) ([]openAIMessage, error) {
	recent, err := a.history.RecentMessages(ctx, conversationID, HistoryWindow)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}

	messages := make([]openAIMessage, 0, len(recent)+2)
	messages = append(messages, openAIMessage{Role: "system", Content: SystemPrompt})

	// recent is newest-first; walk backwards for chronological order.
	for i := len(recent) - 1; i >= 0; i-- {
		role := "assistant"
		if recent[i].Sender == domain.SenderUser {
			role = "user"
		}
		messages = append(messages, openAIMessage{Role: role, Content: recent[i].Content})
	}

	messages = append(messages, openAIMessage{Role: "user", Content: userText})
	return messages, nil
}

// ============================================================================
// OpenAI API Types
// ============================================================================

// openAIRequest represents a chat completion request.
type openAIRequest struct {
	Model       string          `json:"model"`
	Messages    []openAIMessage `json:"messages"`
	MaxTokens   int             `json:"max_tokens"`
	Temperature float64         `json:"temperature"`
}

// openAIMessage is one chat turn in OpenAI role/content form.
type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// openAIResponse represents a chat completion response.
type openAIResponse struct {
	ID      string         `json:"id"`
	Object  string         `json:"object"`
	Created int64          `json:"created"`
	Model   string         `json:"model"`
	Choices []openAIChoice `json:"choices"`
	Usage   openAIUsage    `json:"usage"`
}

// openAIChoice is a single completion candidate.
type openAIChoice struct {
	Index        int           `json:"index"`
	Message      openAIMessage `json:"message"`
	FinishReason string        `json:"finish_reason"`
}

// openAIUsage contains token accounting for a completion.
type openAIUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

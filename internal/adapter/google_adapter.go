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
	// DefaultGoogleBaseURL is the default Gemini API endpoint.
	DefaultGoogleBaseURL = "https://generativelanguage.googleapis.com/v1"

	// DefaultGoogleModel is used when no model override is configured.
	DefaultGoogleModel = "gemini-1.5-flash"
)

// GoogleAdapter implements Generator for the Gemini generateContent API.
// Calls are single-turn and the credential travels as a query parameter,
// which is the vendor's convention rather than an Authorization header.
type GoogleAdapter struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
}

// GoogleOption is a functional option for configuring GoogleAdapter.
type GoogleOption func(*GoogleAdapter)

// WithGoogleBaseURL sets a custom base URL for the Gemini API.
func WithGoogleBaseURL(url string) GoogleOption {
	return func(a *GoogleAdapter) {
		a.baseURL = strings.TrimSuffix(url, "/")
	}
}

// WithGoogleModel sets the model name. An empty value keeps the default.
func WithGoogleModel(model string) GoogleOption {
	return func(a *GoogleAdapter) {
		if model != "" {
			a.model = model
		}
	}
}

// WithGoogleHTTPClient sets a custom HTTP client.
func WithGoogleHTTPClient(client *http.Client) GoogleOption {
	return func(a *GoogleAdapter) {
		a.httpClient = client
	}
}

// WithGoogleTimeout sets the HTTP client timeout.
func WithGoogleTimeout(timeout time.Duration) GoogleOption {
	return func(a *GoogleAdapter) {
		if timeout > 0 {
			a.httpClient.Timeout = timeout
		}
	}
}

// NewGoogleAdapter creates a new GoogleAdapter with the given API key.
func NewGoogleAdapter(apiKey string, opts ...GoogleOption) *GoogleAdapter {
	a := &GoogleAdapter{
		apiKey:  apiKey,
		baseURL: DefaultGoogleBaseURL,
		model:   DefaultGoogleModel,
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
func (a *GoogleAdapter) Name() string {
	return "google"
}

// Generate performs a single-turn generateContent request.
func (a *GoogleAdapter) Generate(ctx context.Context, _ string, userText string) (string, error) {
	if a.apiKey == "" {
		return "", &domain.ProviderConfigError{Provider: "Google"}
	}

	req := geminiRequest{
		Contents: []geminiContent{
			{Parts: []geminiPart{{Text: userText}}},
		},
		GenerationConfig: geminiGenerationConfig{
			Temperature:     samplingTemperature,
			MaxOutputTokens: maxCompletionTokens,
		},
	}

	body, err := json.Marshal(req)
	if err != nil {
		return "", &domain.ProviderCallError{Provider: "Google", Err: fmt.Errorf("marshal request: %w", err)}
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", a.baseURL, a.model, a.apiKey)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", &domain.ProviderCallError{Provider: "Google", Err: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := a.httpClient.Do(httpReq)
	if err != nil {
		return "", &domain.ProviderCallError{Provider: "Google", Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &domain.ProviderCallError{Provider: "Google", Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		var geminiErr geminiErrorResponse
		if err := json.Unmarshal(respBody, &geminiErr); err == nil && geminiErr.Error.Message != "" {
			return "", &domain.ProviderCallError{
				Provider: "Google",
				Err:      fmt.Errorf("status %d: %s", resp.StatusCode, geminiErr.Error.Message),
			}
		}
		return "", &domain.ProviderCallError{
			Provider: "Google",
			Err:      fmt.Errorf("status %d: %s", resp.StatusCode, string(respBody)),
		}
	}

	var generated geminiResponse
	if err := json.Unmarshal(respBody, &generated); err != nil {
		return "", &domain.ProviderCallError{Provider: "Google", Err: fmt.Errorf("unmarshal response: %w", err)}
	}

	if len(generated.Candidates) == 0 || len(generated.Candidates[0].Content.Parts) == 0 {
		return "", &domain.ProviderCallError{Provider: "Google", Err: fmt.Errorf("response contained no candidates")}
	}

	return generated.Candidates[0].Content.Parts[0].Text, nil
}

// ============================================================================
// Gemini API Types
// ============================================================================

// geminiRequest represents a generateContent request.
type geminiRequest struct {
	Contents         []geminiContent        `json:"contents"`
	GenerationConfig geminiGenerationConfig `json:"generationConfig,omitempty"`
}

// geminiContent represents a content block.
type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

// geminiPart represents a part of a content block.
type geminiPart struct {
	Text string `json:"text,omitempty"`
}

// geminiGenerationConfig contains generation parameters.
type geminiGenerationConfig struct {
	Temperature     float64 `json:"temperature,omitempty"`
	MaxOutputTokens int     `json:"maxOutputTokens,omitempty"`
}

// geminiResponse represents a generateContent response.
type geminiResponse struct {
	Candidates []geminiCandidate `json:"candidates"`
}

// geminiCandidate represents a single generated candidate.
type geminiCandidate struct {
	Content      geminiContent `json:"content"`
	FinishReason string        `json:"finishReason"`
	Index        int           `json:"index"`
}

// geminiErrorResponse represents an error response from the Gemini API.
type geminiErrorResponse struct {
	Error geminiErrorDetail `json:"error"`
}

// geminiErrorDetail contains error details.
type geminiErrorDetail struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  string `json:"status"`
}

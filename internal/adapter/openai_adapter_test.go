package adapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/orbitchat/orbit-chat/internal/domain"
)

// staticHistory serves a fixed newest-first message slice.
type staticHistory struct {
	messages []domain.Message
}

func (h *staticHistory) RecentMessages(_ context.Context, _ string, limit int) ([]domain.Message, error) {
	if len(h.messages) > limit {
		return h.messages[:limit], nil
	}
	return h.messages, nil
}

// newCompletionServer returns an httptest server speaking the chat completion
// wire format, capturing each decoded request.
func newCompletionServer(t *testing.T, reply string, captured *openAIRequest) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("request path = %s, want /chat/completions", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("Authorization = %q, want %q", got, "Bearer test-key")
		}
		if err := json.NewDecoder(r.Body).Decode(captured); err != nil {
			t.Errorf("decode request: %v", err)
		}

		resp := openAIResponse{
			ID:    "chatcmpl-1",
			Model: captured.Model,
			Choices: []openAIChoice{
				{Message: openAIMessage{Role: "assistant", Content: reply}},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
}

func TestOpenAIGenerate_Success(t *testing.T) {
	var captured openAIRequest
	srv := newCompletionServer(t, "Hello there!", &captured)
	defer srv.Close()

	adapter := NewOpenAIAdapter("test-key", &staticHistory{},
		WithOpenAIBaseURL(srv.URL),
	)

	got, err := adapter.Generate(context.Background(), "conv-1", "Hi")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if got != "Hello there!" {
		t.Errorf("Generate() = %q, want %q", got, "Hello there!")
	}

	if captured.Model != DefaultOpenAIModel {
		t.Errorf("model = %q, want default %q", captured.Model, DefaultOpenAIModel)
	}
	if captured.MaxTokens != 1000 {
		t.Errorf("max_tokens = %d, want 1000", captured.MaxTokens)
	}
	if captured.Temperature != 0.7 {
		t.Errorf("temperature = %v, want 0.7", captured.Temperature)
	}
}

func TestOpenAIGenerate_HistoryWindow(t *testing.T) {
	// Eleven prior messages, newest first; only the most recent ten may go
	// out, in chronological order, between the system prompt and the new
	// user turn.
	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	history := &staticHistory{}
	for i := 10; i >= 0; i-- {
		sender := domain.SenderUser
		if i%2 == 1 {
			sender = domain.SenderAI
		}
		history.messages = append(history.messages, domain.Message{
			Sender:    sender,
			Content:   fmt.Sprintf("turn-%d", i),
			Timestamp: base.Add(time.Duration(i) * time.Second),
		})
	}

	var captured openAIRequest
	srv := newCompletionServer(t, "ok", &captured)
	defer srv.Close()

	adapter := NewOpenAIAdapter("test-key", history, WithOpenAIBaseURL(srv.URL))
	if _, err := adapter.Generate(context.Background(), "conv-1", "newest question"); err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	// system + 10 history + new turn.
	if len(captured.Messages) != 12 {
		t.Fatalf("outbound messages = %d, want 12", len(captured.Messages))
	}

	if captured.Messages[0].Role != "system" || captured.Messages[0].Content != SystemPrompt {
		t.Errorf("messages[0] = %+v, want the system prompt", captured.Messages[0])
	}

	// turn-0, the oldest, must be evicted; turns 1..10 follow in order.
	for i := 0; i < 10; i++ {
		want := fmt.Sprintf("turn-%d", i+1)
		got := captured.Messages[i+1]
		if got.Content != want {
			t.Errorf("messages[%d].content = %q, want %q", i+1, got.Content, want)
		}
		wantRole := "user"
		if (i+1)%2 == 1 {
			wantRole = "assistant"
		}
		if got.Role != wantRole {
			t.Errorf("messages[%d].role = %q, want %q", i+1, got.Role, wantRole)
		}
	}

	last := captured.Messages[len(captured.Messages)-1]
	if last.Role != "user" || last.Content != "newest question" {
		t.Errorf("final message = %+v, want the new user turn", last)
	}
}

func TestOpenAIGenerate_MissingKey(t *testing.T) {
	adapter := NewOpenAIAdapter("", &staticHistory{})

	_, err := adapter.Generate(context.Background(), "conv-1", "Hi")
	if err == nil {
		t.Fatal("Generate() error = nil, want ProviderConfigError")
	}

	var cfgErr *domain.ProviderConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("Generate() error = %v, want ProviderConfigError", err)
	}
	if cfgErr.Provider != "OpenAI" {
		t.Errorf("provider = %q, want OpenAI", cfgErr.Provider)
	}
}

func TestOpenAIGenerate_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		fmt.Fprint(w, `{"error": {"message": "rate limited"}}`)
	}))
	defer srv.Close()

	adapter := NewOpenAIAdapter("test-key", &staticHistory{}, WithOpenAIBaseURL(srv.URL))

	_, err := adapter.Generate(context.Background(), "conv-1", "Hi")
	if !domain.IsProviderError(err) {
		t.Fatalf("Generate() error = %v, want a provider error", err)
	}
}

func TestOpenAIGenerate_EmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id": "chatcmpl-1", "choices": []}`)
	}))
	defer srv.Close()

	adapter := NewOpenAIAdapter("test-key", &staticHistory{}, WithOpenAIBaseURL(srv.URL))

	_, err := adapter.Generate(context.Background(), "conv-1", "Hi")
	if !domain.IsProviderError(err) {
		t.Fatalf("Generate() error = %v, want a provider error", err)
	}
}

func TestOpenAIModelOverride(t *testing.T) {
	var captured openAIRequest
	srv := newCompletionServer(t, "ok", &captured)
	defer srv.Close()

	adapter := NewOpenAIAdapter("test-key", &staticHistory{},
		WithOpenAIBaseURL(srv.URL),
		WithOpenAIModel("gpt-4o"),
	)
	if _, err := adapter.Generate(context.Background(), "conv-1", "Hi"); err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if captured.Model != "gpt-4o" {
		t.Errorf("model = %q, want override %q", captured.Model, "gpt-4o")
	}
}

package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/orbitchat/orbit-chat/internal/domain"
)

func newGenerateContentServer(t *testing.T, reply string, captured *geminiRequest) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, ":generateContent") {
			t.Errorf("request path = %s, want a :generateContent call", r.URL.Path)
		}
		// The credential travels as a query parameter, not a header.
		if got := r.URL.Query().Get("key"); got != "test-key" {
			t.Errorf("key query param = %q, want %q", got, "test-key")
		}
		if got := r.Header.Get("Authorization"); got != "" {
			t.Errorf("Authorization = %q, want unset", got)
		}
		if err := json.NewDecoder(r.Body).Decode(captured); err != nil {
			t.Errorf("decode request: %v", err)
		}

		resp := geminiResponse{
			Candidates: []geminiCandidate{
				{Content: geminiContent{Role: "model", Parts: []geminiPart{{Text: reply}}}},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
}

func TestGoogleGenerate_Success(t *testing.T) {
	var captured geminiRequest
	srv := newGenerateContentServer(t, "Sure thing.", &captured)
	defer srv.Close()

	adapter := NewGoogleAdapter("test-key", WithGoogleBaseURL(srv.URL))

	got, err := adapter.Generate(context.Background(), "conv-1", "Explain recursion")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if got != "Sure thing." {
		t.Errorf("Generate() = %q, want %q", got, "Sure thing.")
	}

	if len(captured.Contents) != 1 || len(captured.Contents[0].Parts) != 1 {
		t.Fatalf("contents = %+v, want a single single-part content", captured.Contents)
	}
	if captured.Contents[0].Parts[0].Text != "Explain recursion" {
		t.Errorf("prompt text = %q, want %q", captured.Contents[0].Parts[0].Text, "Explain recursion")
	}
	if captured.GenerationConfig.MaxOutputTokens != 1000 {
		t.Errorf("maxOutputTokens = %d, want 1000", captured.GenerationConfig.MaxOutputTokens)
	}
	if captured.GenerationConfig.Temperature != 0.7 {
		t.Errorf("temperature = %v, want 0.7", captured.GenerationConfig.Temperature)
	}
}

func TestGoogleGenerate_ModelInPath(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"candidates": [{"content": {"parts": [{"text": "ok"}]}}]}`)
	}))
	defer srv.Close()

	adapter := NewGoogleAdapter("test-key",
		WithGoogleBaseURL(srv.URL),
		WithGoogleModel("gemini-1.5-pro"),
	)
	if _, err := adapter.Generate(context.Background(), "conv-1", "Hi"); err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if want := "/models/gemini-1.5-pro:generateContent"; gotPath != want {
		t.Errorf("path = %q, want %q", gotPath, want)
	}
}

func TestGoogleGenerate_MissingKey(t *testing.T) {
	adapter := NewGoogleAdapter("")

	_, err := adapter.Generate(context.Background(), "conv-1", "Hi")
	if !domain.IsProviderError(err) {
		t.Fatalf("Generate() error = %v, want a provider error", err)
	}
}

func TestGoogleGenerate_APIErrorMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"error": {"code": 400, "message": "API key not valid", "status": "INVALID_ARGUMENT"}}`)
	}))
	defer srv.Close()

	adapter := NewGoogleAdapter("bad-key", WithGoogleBaseURL(srv.URL))

	_, err := adapter.Generate(context.Background(), "conv-1", "Hi")
	if !domain.IsProviderError(err) {
		t.Fatalf("Generate() error = %v, want a provider error", err)
	}
	if !strings.Contains(err.Error(), "API key not valid") {
		t.Errorf("error = %q, want vendor message surfaced", err.Error())
	}
}

func TestGoogleGenerate_NoCandidates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"candidates": []}`)
	}))
	defer srv.Close()

	adapter := NewGoogleAdapter("test-key", WithGoogleBaseURL(srv.URL))

	_, err := adapter.Generate(context.Background(), "conv-1", "Hi")
	if !domain.IsProviderError(err) {
		t.Fatalf("Generate() error = %v, want a provider error", err)
	}
}

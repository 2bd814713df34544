// Package adapter provides implementations for external AI provider integrations.
package adapter

import (
	"context"
	"math/rand"
	"sync"
)

// MockDisclaimer is appended to every mock reply so clients (and tests) can
// tell canned responses from real provider output.
const MockDisclaimer = "This is a mock response. To use real AI, please configure an AI provider API key in your environment variables."

// mockReplies are the canned openers the mock adapter picks from.
var mockReplies = []string{
	"That's an interesting question! Let me help you with that.",
	"I understand what you're asking. Here's what I think...",
	"Great question! Let me break this down for you.",
	"I'd be happy to help you with that. Here's my response...",
	"That's a thoughtful question. Let me provide some insights...",
	"I can definitely help you with that. Here's what I know...",
	"Interesting! Let me share my thoughts on this topic...",
	"I'm here to help! Let me give you a comprehensive answer...",
}

// MockAdapter implements Generator without any network access. It serves
// as the fallback when no provider credential is configured and as the
// deterministic-enough substitute in tests.
type MockAdapter struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// MockOption is a functional option for configuring MockAdapter.
type MockOption func(*MockAdapter)

// WithMockSeed fixes the random source, making reply selection reproducible.
func WithMockSeed(seed int64) MockOption {
	return func(m *MockAdapter) {
		m.rng = rand.New(rand.NewSource(seed))
	}
}

// NewMockAdapter creates a new MockAdapter.
func NewMockAdapter(opts ...MockOption) *MockAdapter {
	m := &MockAdapter{}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// Name returns the provider identifier.
func (m *MockAdapter) Name() string {
	return "mock"
}

// Generate returns one canned opener concatenated with the disclaimer.
// It never fails.
func (m *MockAdapter) Generate(_ context.Context, _ string, _ string) (string, error) {
	m.mu.Lock()
	var idx int
	if m.rng != nil {
		idx = m.rng.Intn(len(mockReplies))
	} else {
		idx = rand.Intn(len(mockReplies))
	}
	m.mu.Unlock()

	return mockReplies[idx] + " " + MockDisclaimer, nil
}

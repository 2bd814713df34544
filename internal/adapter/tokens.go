// Package adapter provides implementations for external AI provider integrations.
package adapter

// estimateTokens gives a rough token count for a piece of text using the
// common ~4 characters per token heuristic. Good enough for debug logging;
// not a substitute for the provider's own accounting.
func estimateTokens(text string) int {
	if len(text) == 0 {
		return 0
	}
	n := len(text) / 4
	if n == 0 {
		n = 1
	}
	return n
}

// estimateRequestTokens sums the estimate over an outbound message list.
func estimateRequestTokens(messages []openAIMessage) int {
	total := 0
	for _, m := range messages {
		total += estimateTokens(m.Content)
	}
	return total
}

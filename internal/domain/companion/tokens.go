package companion

import (
	"strings"
	"unicode/utf8"
)

// EstimateCounter approximates token counts without a tokenizer.
type EstimateCounter struct{}

// Count returns roughly one token per four characters, never fewer than the word count.
func (EstimateCounter) Count(text string) int {
	return EstimateTokens(text)
}

// EstimateTokens approximates the token count of text.
func EstimateTokens(text string) int {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return 0
	}
	words := len(strings.Fields(trimmed))
	tokens := utf8.RuneCountInString(trimmed) / 4
	if tokens < words {
		tokens = words
	}
	if tokens == 0 {
		tokens = 1
	}
	return tokens
}

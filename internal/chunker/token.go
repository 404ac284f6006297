package chunker

import "strings"

// Tokenizer counts sub-word units in a string. The merge thresholds are
// expressed in these units. EstimateTokens is the built-in default; a
// real tokenizer can be plugged in by the host.
type Tokenizer func(string) int

// EstimateTokens gives a rough token count using a words heuristic.
// The merge policy only needs a stable approximation.
func EstimateTokens(text string) int {
	if text == "" {
		return 0
	}
	words := len(strings.Fields(text))
	// Roughly 1.33 tokens per word for English text.
	tokens := int(float64(words) * 1.33)
	if tokens < 1 && len(text) > 0 {
		tokens = 1
	}
	return tokens
}

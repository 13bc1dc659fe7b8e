package router

import "strings"

// EstimateTokens guesses how many tokens text will consume. It averages
// a word count against a bytes/4 heuristic, which tracks real
// tokenizers closely enough for routing and cost estimates.
func EstimateTokens(text string) int {
	words := len(strings.Fields(text))
	return (words + len(text)/4) / 2
}

package llm

import "strings"

const charsPerToken = 4

// EstimateTokens approximates the token count of a prose prompt for request
// logging. Runs of whitespace count as a single character.
func EstimateTokens(prompt string) int {
	normalized := strings.Join(strings.Fields(prompt), " ")
	n := len([]rune(normalized))
	return max(1, (n+charsPerToken-1)/charsPerToken)
}

package match

import (
	"strings"
)

// MinSuggestSimilarity is the similarity below which Closest gives up.
const MinSuggestSimilarity = 0.5

// Normalize folds case and treats '-', ' ' and '_' alike.
func Normalize(s string) string {
	return strings.NewReplacer("-", "_", " ", "_").Replace(strings.ToLower(strings.TrimSpace(s)))
}

// Closest returns the candidate most similar to input after normalization.
// Ties go to the earlier candidate. ok is false when nothing reaches
// MinSuggestSimilarity.
func Closest(input string, candidates []string) (best string, ok bool) {
	norm := Normalize(input)
	bestScore := -1.0

	for _, c := range candidates {
		score := Similarity(norm, Normalize(c))
		if score > bestScore {
			best, bestScore = c, score
		}
	}

	if bestScore < MinSuggestSimilarity {
		return "", false
	}

	return best, true
}

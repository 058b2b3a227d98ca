// Package similarity scores how alike two canonical comment texts are.
// The scorer is a strategy interface so an alternative measure (for
// example embedding cosine similarity) can be substituted without touching
// the deduplication engine's control flow.
package similarity

import "strings"

// Scorer computes a symmetric similarity score in [0, 1] between two
// canonical texts. Score(a, a) is always 1.
type Scorer interface {
	Score(a, b string) float64
}

// Jaccard scores texts by the Jaccard index of their unique
// whitespace-delimited word sets.
type Jaccard struct{}

// NewJaccard returns the default word-set scorer.
func NewJaccard() Jaccard {
	return Jaccard{}
}

// Score returns |intersection| / |union| of the two word sets.
// Two empty texts score 1; an empty text against a non-empty one scores 0.
func (Jaccard) Score(a, b string) float64 {
	setA := wordSet(a)
	setB := wordSet(b)

	if len(setA) == 0 && len(setB) == 0 {
		return 1.0
	}
	if len(setA) == 0 || len(setB) == 0 {
		return 0.0
	}

	intersection := 0
	for word := range setA {
		if setB[word] {
			intersection++
		}
	}

	union := len(setA) + len(setB) - intersection
	return float64(intersection) / float64(union)
}

func wordSet(text string) map[string]bool {
	words := strings.Fields(text)
	set := make(map[string]bool, len(words))
	for _, w := range words {
		set[w] = true
	}
	return set
}

package search

import fuzzy "github.com/paul-mannino/go-fuzzywuzzy"

// Scorer produces similarity scores in [0, 100] over two lowercase
// strings. Implementations must be deterministic for identical inputs.
type Scorer interface {
	// TokenSetRatio is an order-independent shared-token overlap measure.
	TokenSetRatio(a, b string) int

	// PartialRatio is a best-aligning substring overlap measure.
	PartialRatio(a, b string) int
}

type fuzzScorer struct{}

// NewScorer returns the default Scorer, backed by the fuzzywuzzy ratio
// family.
func NewScorer() Scorer {
	return fuzzScorer{}
}

func (fuzzScorer) TokenSetRatio(a, b string) int {
	return fuzzy.TokenSetRatio(a, b)
}

func (fuzzScorer) PartialRatio(a, b string) int {
	return fuzzy.PartialRatio(a, b)
}

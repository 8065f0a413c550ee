package search

import "strings"

// Thresholds holds the fuzzy-match cutoffs. Live term search, live
// passage search and link building each carry their own cutoff; the
// values have diverged historically (query-time passage matching admits
// >80 while link building requires >=90). Unifying them would change
// existing result sets.
type Thresholds struct {
	// TermFuzzy is the token-set cutoff for term search (match is >).
	TermFuzzy int

	// PassageFuzzy is the partial-ratio cutoff for live passage search
	// (match is >).
	PassageFuzzy int

	// LinkFuzzy is the partial-ratio cutoff for link building (match is
	// >=).
	LinkFuzzy int
}

// DefaultThresholds returns the cutoffs the index was originally built
// with.
func DefaultThresholds() Thresholds {
	return Thresholds{
		TermFuzzy:    90,
		PassageFuzzy: 80,
		LinkFuzzy:    90,
	}
}

// Matcher decides whether a term occurs in a passage and whether a term
// or passage matches a user query, in exact (substring) or fuzzy
// (similarity) mode.
type Matcher struct {
	scorer Scorer
	t      Thresholds
}

// NewMatcher creates a matcher over the given scorer and thresholds
func NewMatcher(scorer Scorer, t Thresholds) *Matcher {
	return &Matcher{scorer: scorer, t: t}
}

// TermMatchesQuery reports whether a glossary term matches the query.
// Exact mode is plain substring containment; fuzzy mode accepts a
// whole-word occurrence of the query or a token-set score above the term
// cutoff.
func (m *Matcher) TermMatchesQuery(term, query string, exact bool) bool {
	q := Normalize(query)
	if exact {
		return strings.Contains(Normalize(term), q)
	}
	return ContainsWord(term, q) || m.scorer.TokenSetRatio(q, Normalize(term)) > m.t.TermFuzzy
}

// PassageMatchesQuery reports whether a passage text matches the query
func (m *Matcher) PassageMatchesQuery(text, query string, exact bool) bool {
	q := Normalize(query)
	if exact {
		return strings.Contains(Normalize(text), q)
	}
	return m.scorer.PartialRatio(q, Normalize(text)) > m.t.PassageFuzzy
}

// LinkMatch reports whether a term should be linked to a passage. The
// fuzzy path accepts a whole-word occurrence or a partial-ratio score at
// or above the link cutoff.
func (m *Matcher) LinkMatch(term, text string, exact bool) bool {
	if exact {
		return strings.Contains(Normalize(text), Normalize(term))
	}
	return ContainsWord(text, term) || m.scorer.PartialRatio(Normalize(term), Normalize(text)) >= m.t.LinkFuzzy
}

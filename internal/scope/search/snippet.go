package search

import "strings"

const (
	// SearchContextWords is the half-width of search-result snippets.
	SearchContextWords = 40

	// LinkContextWords is the half-width of term-link snippets.
	LinkContextWords = 50

	// linkFallbackRunes bounds the fallback excerpt when the term is not
	// found in the passage text.
	linkFallbackRunes = 300
)

const ellipsis = "…"

// SearchSnippet extracts a word window around the first word that
// contains query (not necessarily as a whole word), case-insensitively.
// The window spans words [i-contextWords, i+contextWords). If no word
// contains the query, the first 2*contextWords words are returned. This
// form never appends an ellipsis; live search renders its own truncation
// cues.
func SearchSnippet(text, query string, contextWords int) string {
	if text == "" {
		return ""
	}
	words := strings.Fields(text)
	q := strings.ToLower(query)

	for i, w := range words {
		if strings.Contains(strings.ToLower(w), q) {
			start := max(i-contextWords, 0)
			end := min(i+contextWords, len(words))
			return strings.Join(words[start:end], " ")
		}
	}
	if len(words) > contextWords*2 {
		words = words[:contextWords*2]
	}
	return strings.Join(words, " ")
}

// LinkSnippet extracts a word window around the first case-insensitive
// substring occurrence of term in the raw text. The window spans words
// [i-contextWords, i+contextWords+1) where i is the first word whose
// offset is at or past the match. If the term is not found at all, the
// first 300 characters plus an ellipsis are returned; otherwise an
// ellipsis is appended only when the window ends before the last word.
// Term-link listings depend on these exact fallback shapes.
func LinkSnippet(text, term string, contextWords int) string {
	if text == "" || term == "" {
		return ""
	}
	matchStart := strings.Index(strings.ToLower(text), strings.ToLower(term))
	if matchStart < 0 {
		runes := []rune(text)
		if len(runes) > linkFallbackRunes {
			runes = runes[:linkFallbackRunes]
		}
		return string(runes) + ellipsis
	}

	words := SplitWords(text)
	matchIdx := 0
	for i, w := range words {
		if w.Offset >= matchStart {
			matchIdx = i
			break
		}
	}

	start := max(matchIdx-contextWords, 0)
	end := min(matchIdx+contextWords+1, len(words))
	parts := make([]string, 0, end-start)
	for _, w := range words[start:end] {
		parts = append(parts, w.Text)
	}
	snippet := strings.Join(parts, " ")
	if end < len(words) {
		snippet += ellipsis
	}
	return snippet
}

// Package search implements term/passage matching, context snippet
// extraction and the search orchestrator over a corpus store.
package search

import (
	"regexp"
	"strings"
)

// Normalize lowercases s for comparison. No stemming, no locale rules;
// punctuation stays attached to its word.
func Normalize(s string) string {
	return strings.ToLower(s)
}

// nonWord matches any rune that does not belong to a word: word runes are
// letters, digits and underscore in any script. regexp's \b is ASCII-only,
// so boundaries are spelled out with rune classes to keep non-ASCII terms
// matching whole words.
const nonWord = `[^\p{L}\p{N}_]`

// ContainsWord reports whether needle occurs in haystack as a whole word,
// case-insensitively. A word occurrence is delimited by non-word
// characters or string edges, so "fetish" does not match inside
// "fetishism".
func ContainsWord(haystack, needle string) bool {
	if needle == "" {
		return false
	}
	re, err := regexp.Compile(`(?i)(?:\A|` + nonWord + `)` + regexp.QuoteMeta(needle) + `(?:` + nonWord + `|\z)`)
	if err != nil {
		return false
	}
	return re.MatchString(haystack)
}

// Word is a whitespace-delimited token with its byte offset in the
// original string.
type Word struct {
	Text   string
	Offset int
}

// SplitWords splits s on runs of whitespace, locating each word at its
// first occurrence at or after the end of the previous word. Offsets are
// what snippet extraction aligns windows against.
func SplitWords(s string) []Word {
	fields := strings.Fields(s)
	words := make([]Word, 0, len(fields))
	idx := 0
	for _, f := range fields {
		pos := strings.Index(s[idx:], f)
		if pos < 0 {
			pos = 0
		}
		off := idx + pos
		words = append(words, Word{Text: f, Offset: off})
		idx = off + len(f)
	}
	return words
}

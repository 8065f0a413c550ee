package search

import (
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// numberedText builds n distinct words "w000 w001 ..." with word i
// replaced where the test needs an anchor.
func numberedText(n int, replace map[int]string) string {
	words := make([]string, n)
	for i := range words {
		words[i] = fmt.Sprintf("w%03d", i)
	}
	for i, w := range replace {
		words[i] = w
	}
	return strings.Join(words, " ")
}

func TestSearchSnippetCentersMatch(t *testing.T) {
	text := numberedText(100, map[int]string{50: "fetishism"})

	snip := SearchSnippet(text, "fetish", SearchContextWords)
	words := strings.Fields(snip)

	require.Len(t, words, 80)
	assert.Equal(t, "w010", words[0])
	assert.Equal(t, "w089", words[79])
	assert.Contains(t, words, "fetishism")
}

func TestSearchSnippetMatchNearStart(t *testing.T) {
	text := numberedText(100, map[int]string{2: "fetishism"})

	snip := SearchSnippet(text, "fetishism", SearchContextWords)
	words := strings.Fields(snip)

	require.Len(t, words, 42)
	assert.Equal(t, "w000", words[0])
}

func TestSearchSnippetFallback(t *testing.T) {
	text := numberedText(100, nil)

	snip := SearchSnippet(text, "absent", SearchContextWords)
	words := strings.Fields(snip)

	require.Len(t, words, 80, "fallback is the first 2*contextWords words")
	assert.Equal(t, "w079", words[79])
	assert.NotContains(t, snip, "…", "search snippets never carry an ellipsis")
}

func TestSearchSnippetShortText(t *testing.T) {
	snip := SearchSnippet("The fetishism of commodities", "fetish", SearchContextWords)
	assert.Equal(t, "The fetishism of commodities", snip)

	assert.Equal(t, "", SearchSnippet("", "anything", SearchContextWords))
}

func TestSearchSnippetWindowBound(t *testing.T) {
	for _, anchor := range []int{0, 1, 40, 200, 499} {
		text := numberedText(500, map[int]string{anchor: "fetishism"})
		snip := SearchSnippet(text, "fetishism", SearchContextWords)
		assert.LessOrEqual(t, len(strings.Fields(snip)), 2*SearchContextWords+1,
			"anchor at %d", anchor)
	}
}

func TestLinkSnippetCentersMatch(t *testing.T) {
	text := numberedText(200, map[int]string{100: "fetishism"})

	snip := LinkSnippet(text, "fetishism", LinkContextWords)
	words := strings.Fields(snip)

	require.Len(t, words, 101)
	assert.Equal(t, "w050", words[0])
	assert.True(t, strings.HasSuffix(snip, "…"), "window ends before the last word")
}

func TestLinkSnippetNoEllipsisAtTextEnd(t *testing.T) {
	text := numberedText(200, map[int]string{195: "fetishism"})

	snip := LinkSnippet(text, "fetishism", LinkContextWords)

	assert.True(t, strings.HasSuffix(snip, "w199"))
	assert.False(t, strings.HasSuffix(snip, "…"))
}

func TestLinkSnippetCaseInsensitive(t *testing.T) {
	snip := LinkSnippet("The Fetishism of commodities", "fetishism", LinkContextWords)
	assert.Equal(t, "The Fetishism of commodities", snip)
}

func TestLinkSnippetFallback(t *testing.T) {
	text := strings.Repeat("лабор ", 100) // multibyte, 600 runes

	snip := LinkSnippet(text, "absent", LinkContextWords)

	assert.True(t, strings.HasSuffix(snip, "…"))
	assert.Equal(t, 301, utf8.RuneCountInString(snip), "300 characters plus the ellipsis")
}

func TestLinkSnippetFallbackShortText(t *testing.T) {
	snip := LinkSnippet("short text", "absent", LinkContextWords)
	assert.Equal(t, "short text…", snip)
}

func TestLinkSnippetEmptyInputs(t *testing.T) {
	assert.Equal(t, "", LinkSnippet("", "term", LinkContextWords))
	assert.Equal(t, "", LinkSnippet("text", "", LinkContextWords))
}

func TestLinkSnippetWindowBound(t *testing.T) {
	for _, anchor := range []int{0, 50, 250, 499} {
		text := numberedText(500, map[int]string{anchor: "fetishism"})
		snip := LinkSnippet(text, "fetishism", LinkContextWords)
		assert.LessOrEqual(t, len(strings.Fields(snip)), 2*LinkContextWords+2,
			"anchor at %d", anchor)
	}
}

package links

import (
	"context"
	"fmt"
	"sort"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/concordlabs/concord/internal/scope/corpus"
	"github.com/concordlabs/concord/internal/scope/search"
)

const fetishismText = "The fetishism of commodities has its origin in the peculiar social character of the labour that produces them."

func intPtr(n int) *int { return &n }

func seedStore(t *testing.T) *corpus.Memory {
	t.Helper()
	ctx := context.Background()
	store := corpus.NewMemory()

	_, err := store.InsertWork(ctx, corpus.Work{Title: "Capital, Volume I"})
	require.NoError(t, err)
	require.NoError(t, store.InsertChapter(ctx, corpus.Chapter{ID: 1, WorkID: 1, ChapterNumber: 1, Title: "The Commodity"}))
	require.NoError(t, store.InsertPassage(ctx, corpus.Passage{
		ID: "1.ch1.p1", WorkID: 1, ChapterID: 1, Paragraph: 1, Text: fetishismText,
	}))
	require.NoError(t, store.InsertPassage(ctx, corpus.Passage{
		ID: "1.ch1.p2", WorkID: 1, ChapterID: 1, Paragraph: 2,
		Text: "Exchange produces a social relation between the products of labour.",
	}))
	require.NoError(t, store.InsertTerm(ctx, corpus.Term{ID: "fetishism", WorkID: 1, Term: "fetishism"}))
	require.NoError(t, store.InsertTerm(ctx, corpus.Term{ID: "money", WorkID: 1, Term: "money"}))
	return store
}

func newBuilder(store corpus.Store) *Builder {
	matcher := search.NewMatcher(search.NewScorer(), search.DefaultThresholds())
	return NewBuilder(store, matcher, zerolog.Nop())
}

// linkPairs lists the store's current (term, passage) link pairs sorted.
func linkPairs(t *testing.T, store *corpus.Memory, termIDs ...string) []string {
	t.Helper()
	ctx := context.Background()
	var pairs []string
	for _, id := range termIDs {
		views, err := store.GetLinks(ctx, id, nil, 0, 1000)
		require.NoError(t, err)
		for _, v := range views {
			pairs = append(pairs, id+"|"+v.PassageID)
		}
	}
	sort.Strings(pairs)
	return pairs
}

func TestRebuildExact(t *testing.T) {
	store := seedStore(t)
	b := newBuilder(store)

	created, err := b.Rebuild(context.Background(), nil, true)
	require.NoError(t, err)
	assert.Equal(t, 1, created, "only the fetishism passage contains a term verbatim")

	pairs := linkPairs(t, store, "fetishism", "money")
	assert.Equal(t, []string{"fetishism|1.ch1.p1"}, pairs)
}

func TestRebuildStoresSnippet(t *testing.T) {
	store := seedStore(t)
	b := newBuilder(store)

	_, err := b.Rebuild(context.Background(), nil, true)
	require.NoError(t, err)

	views, err := store.GetLinks(context.Background(), "fetishism", nil, 0, 10)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Contains(t, views[0].TextSnippet, "fetishism")
}

func TestRebuildIdempotent(t *testing.T) {
	store := seedStore(t)
	b := newBuilder(store)
	ctx := context.Background()

	created1, err := b.Rebuild(ctx, nil, true)
	require.NoError(t, err)
	first := linkPairs(t, store, "fetishism", "money")

	created2, err := b.Rebuild(ctx, nil, true)
	require.NoError(t, err)
	second := linkPairs(t, store, "fetishism", "money")

	assert.Equal(t, created1, created2)
	assert.Equal(t, first, second, "an unchanged corpus rebuilds to an identical link set")
}

func TestRebuildFuzzyWholeWord(t *testing.T) {
	store := seedStore(t)
	b := newBuilder(store)

	created, err := b.Rebuild(context.Background(), nil, false)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, created, 1)

	exists, err := store.LinkExists(context.Background(), "fetishism", "1.ch1.p1")
	require.NoError(t, err)
	assert.True(t, exists, "whole-word occurrence always links in fuzzy mode")
}

func TestRebuildScopedLeavesOtherWorks(t *testing.T) {
	ctx := context.Background()
	store := seedStore(t)
	_, err := store.InsertWork(ctx, corpus.Work{Title: "Wage Labour and Capital"})
	require.NoError(t, err)
	require.NoError(t, store.InsertChapter(ctx, corpus.Chapter{ID: 2, WorkID: 2, ChapterNumber: 1, Title: "Wages"}))
	require.NoError(t, store.InsertPassage(ctx, corpus.Passage{
		ID: "2.ch2.p1", WorkID: 2, ChapterID: 2, Paragraph: 1, Text: "Wages and money.",
	}))
	require.NoError(t, store.InsertTerm(ctx, corpus.Term{ID: "wages", WorkID: 2, Term: "wages"}))
	b := newBuilder(store)

	_, err = b.Rebuild(ctx, nil, true)
	require.NoError(t, err)
	exists, err := store.LinkExists(ctx, "wages", "2.ch2.p1")
	require.NoError(t, err)
	require.True(t, exists)

	// Rebuilding work 1 must not touch work 2's rows
	_, err = b.Rebuild(ctx, intPtr(1), true)
	require.NoError(t, err)
	exists, err = store.LinkExists(ctx, "wages", "2.ch2.p1")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestRebuildNeverLinksAcrossWorks(t *testing.T) {
	ctx := context.Background()
	store := seedStore(t)
	_, err := store.InsertWork(ctx, corpus.Work{Title: "Wage Labour and Capital"})
	require.NoError(t, err)
	require.NoError(t, store.InsertPassage(ctx, corpus.Passage{
		ID: "2.ch2.p1", WorkID: 2, ChapterID: 2, Paragraph: 1,
		Text: "The fetishism returns in another form.",
	}))
	b := newBuilder(store)

	_, err = b.Rebuild(ctx, nil, true)
	require.NoError(t, err)

	exists, err := store.LinkExists(ctx, "fetishism", "2.ch2.p1")
	require.NoError(t, err)
	assert.False(t, exists, "full rebuild pairs terms and passages of the same work only")
}

func TestUpdateIncremental(t *testing.T) {
	ctx := context.Background()
	store := seedStore(t)
	_, err := store.InsertWork(ctx, corpus.Work{Title: "Wage Labour and Capital"})
	require.NoError(t, err)
	require.NoError(t, store.InsertChapter(ctx, corpus.Chapter{ID: 2, WorkID: 2, ChapterNumber: 1, Title: "Wages"}))
	require.NoError(t, store.InsertPassage(ctx, corpus.Passage{
		ID: "2.ch2.p1", WorkID: 2, ChapterID: 2, Paragraph: 1,
		Text: "The fetishism of money reappears here.",
	}))
	b := newBuilder(store)

	added, err := b.Update(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, added, "terms from the whole corpus apply to the new work")

	views, err := store.GetLinks(ctx, "fetishism", intPtr(2), 0, 10)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, 2, views[0].WorkID, "incremental links carry the passage's work id")
}

func TestUpdateSkipsExistingLinks(t *testing.T) {
	ctx := context.Background()
	store := seedStore(t)
	require.NoError(t, store.InsertLink(ctx, corpus.TermPassageLink{
		TermID: "fetishism", PassageID: "1.ch1.p1", WorkID: 1, TextSnippet: "old snippet",
	}))
	b := newBuilder(store)

	added, err := b.Update(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 0, added, "existing pairs are skipped")

	views, err := store.GetLinks(ctx, "fetishism", nil, 0, 10)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, "old snippet", views[0].TextSnippet, "existing rows are left untouched")
}

func TestUpdateWholeWordOnly(t *testing.T) {
	ctx := context.Background()
	store := corpus.NewMemory()
	_, err := store.InsertWork(ctx, corpus.Work{Title: "Test Work"})
	require.NoError(t, err)
	require.NoError(t, store.InsertChapter(ctx, corpus.Chapter{ID: 1, WorkID: 1, ChapterNumber: 1, Title: "One"}))
	require.NoError(t, store.InsertPassage(ctx, corpus.Passage{
		ID: "1.ch1.p1", WorkID: 1, ChapterID: 1, Paragraph: 1,
		Text: "A discussion of fetishisms in the plural only.",
	}))
	require.NoError(t, store.InsertTerm(ctx, corpus.Term{ID: "fetishism", WorkID: 1, Term: "fetishism"}))
	b := newBuilder(store)

	added, err := b.Update(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 0, added, "incremental mode never links on fuzzy similarity")
}

func TestRenumberPreservesLinks(t *testing.T) {
	ctx := context.Background()
	store := seedStore(t)
	b := newBuilder(store)

	_, err := b.Rebuild(ctx, nil, true)
	require.NoError(t, err)
	before, err := store.CountLinks(ctx, "fetishism", nil)
	require.NoError(t, err)
	require.Equal(t, 1, before)

	require.NoError(t, store.RenumberPassage(ctx, "1.ch1.p1", "42"))

	after, err := store.CountLinks(ctx, "fetishism", nil)
	require.NoError(t, err)
	assert.Equal(t, before, after)

	views, err := store.GetLinks(ctx, "fetishism", nil, 0, 10)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, "42", views[0].PassageID)
	exists, err := store.LinkExists(ctx, "fetishism", "1.ch1.p1")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestRebuildManyPassages(t *testing.T) {
	ctx := context.Background()
	store := corpus.NewMemory()
	_, err := store.InsertWork(ctx, corpus.Work{Title: "Test Work"})
	require.NoError(t, err)
	require.NoError(t, store.InsertChapter(ctx, corpus.Chapter{ID: 1, WorkID: 1, ChapterNumber: 1, Title: "One"}))
	for i := 1; i <= 30; i++ {
		text := fmt.Sprintf("Paragraph %d on production.", i)
		if i%3 == 0 {
			text = fmt.Sprintf("Paragraph %d concerns surplus value directly.", i)
		}
		require.NoError(t, store.InsertPassage(ctx, corpus.Passage{
			ID: fmt.Sprintf("1.ch1.p%d", i), WorkID: 1, ChapterID: 1, Paragraph: i, Text: text,
		}))
	}
	require.NoError(t, store.InsertTerm(ctx, corpus.Term{ID: "surplus-value", WorkID: 1, Term: "surplus value"}))
	b := newBuilder(store)

	created, err := b.Rebuild(ctx, nil, true)
	require.NoError(t, err)
	assert.Equal(t, 10, created)

	count, err := store.CountLinks(ctx, "surplus-value", nil)
	require.NoError(t, err)
	assert.Equal(t, 10, count)
}

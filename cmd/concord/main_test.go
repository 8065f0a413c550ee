package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/concordlabs/concord/internal/scope/corpus"
)

func TestRenumberAll(t *testing.T) {
	ctx := context.Background()
	store := corpus.NewMemory()
	_, err := store.InsertWork(ctx, corpus.Work{Title: "Test Work"})
	require.NoError(t, err)
	require.NoError(t, store.InsertChapter(ctx, corpus.Chapter{ID: 1, WorkID: 1, ChapterNumber: 1, Title: "One"}))
	require.NoError(t, store.InsertPassage(ctx, corpus.Passage{ID: "1.ch1.p1", WorkID: 1, ChapterID: 1, Paragraph: 1, Text: "first"}))
	require.NoError(t, store.InsertPassage(ctx, corpus.Passage{ID: "1.ch1.p2", WorkID: 1, ChapterID: 1, Paragraph: 2, Text: "second"}))
	require.NoError(t, store.InsertTerm(ctx, corpus.Term{ID: "first", WorkID: 1, Term: "first"}))
	require.NoError(t, store.InsertLink(ctx, corpus.TermPassageLink{TermID: "first", PassageID: "1.ch1.p1", WorkID: 1}))

	renumbered, total, err := renumberAll(ctx, store)
	require.NoError(t, err)
	assert.Equal(t, 2, renumbered)
	assert.Equal(t, 2, total)

	p, err := store.GetPassage(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "first", p.Text)
	p, err = store.GetPassage(ctx, "2")
	require.NoError(t, err)
	assert.Equal(t, "second", p.Text)

	exists, err := store.LinkExists(ctx, "first", "1")
	require.NoError(t, err)
	assert.True(t, exists, "links follow the passage through the rename")
}

// Target ids already held by later passages must not be clobbered while
// the loop is mid-run.
func TestRenumberAllSwapsHeldIDs(t *testing.T) {
	ctx := context.Background()
	store := corpus.NewMemory()
	_, err := store.InsertWork(ctx, corpus.Work{Title: "Test Work"})
	require.NoError(t, err)
	require.NoError(t, store.InsertChapter(ctx, corpus.Chapter{ID: 1, WorkID: 1, ChapterNumber: 1, Title: "One"}))
	require.NoError(t, store.InsertPassage(ctx, corpus.Passage{ID: "2", WorkID: 1, ChapterID: 1, Paragraph: 1, Text: "first"}))
	require.NoError(t, store.InsertPassage(ctx, corpus.Passage{ID: "1", WorkID: 1, ChapterID: 1, Paragraph: 2, Text: "second"}))

	renumbered, total, err := renumberAll(ctx, store)
	require.NoError(t, err)
	assert.Equal(t, 2, renumbered)
	assert.Equal(t, 2, total)

	p, err := store.GetPassage(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "first", p.Text)
	p, err = store.GetPassage(ctx, "2")
	require.NoError(t, err)
	assert.Equal(t, "second", p.Text)
}

func TestRenumberAllAlreadySequential(t *testing.T) {
	ctx := context.Background()
	store := corpus.NewMemory()
	_, err := store.InsertWork(ctx, corpus.Work{Title: "Test Work"})
	require.NoError(t, err)
	require.NoError(t, store.InsertPassage(ctx, corpus.Passage{ID: "1", WorkID: 1, ChapterID: 1, Paragraph: 1, Text: "first"}))
	require.NoError(t, store.InsertPassage(ctx, corpus.Passage{ID: "2", WorkID: 1, ChapterID: 1, Paragraph: 2, Text: "second"}))

	renumbered, total, err := renumberAll(ctx, store)
	require.NoError(t, err)
	assert.Equal(t, 0, renumbered, "a sequential corpus is left untouched")
	assert.Equal(t, 2, total)
}

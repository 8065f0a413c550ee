// Package links builds and maintains the materialized term-passage link
// index.
package links

import (
	"context"
	"fmt"

	"github.com/concordlabs/concord/internal/scope/corpus"
	"github.com/concordlabs/concord/internal/scope/search"
	"github.com/rs/zerolog"
)

// Builder scans terms against passages and writes link rows. It is the
// only writer of the link index; everything else treats the index as a
// derived cache.
type Builder struct {
	store   corpus.Store
	matcher *search.Matcher
	logger  zerolog.Logger
}

// NewBuilder creates a link index builder
func NewBuilder(store corpus.Store, matcher *search.Matcher, logger zerolog.Logger) *Builder {
	return &Builder{
		store:   store,
		matcher: matcher,
		logger:  logger,
	}
}

// Rebuild recomputes the link index from scratch for the whole corpus or
// one work. Every term is evaluated against every passage of the same
// work under the link predicate, a term-link snippet is precomputed per
// hit, and the store swaps the scoped link set in a single transaction.
// Safe to re-invoke after a failure; the result set does not depend on
// scan order. Returns the number of links created.
func (b *Builder) Rebuild(ctx context.Context, workID *int, exact bool) (int, error) {
	terms, err := b.store.GetTerms(ctx, workID)
	if err != nil {
		return 0, fmt.Errorf("failed to load terms: %w", err)
	}
	passages, err := b.store.GetPassages(ctx, corpus.PassageFilter{WorkID: workID})
	if err != nil {
		return 0, fmt.Errorf("failed to load passages: %w", err)
	}

	var built []corpus.TermPassageLink
	for _, p := range passages {
		for _, t := range terms {
			if t.Term == "" || t.WorkID != p.WorkID {
				continue
			}
			if !b.matcher.LinkMatch(t.Term, p.Text, exact) {
				continue
			}
			built = append(built, corpus.TermPassageLink{
				TermID:      t.ID,
				PassageID:   p.ID,
				WorkID:      p.WorkID,
				TextSnippet: search.LinkSnippet(p.Text, t.Term, search.LinkContextWords),
			})
		}
	}

	created, err := b.store.ReplaceLinks(ctx, workID, built)
	if err != nil {
		return 0, fmt.Errorf("failed to replace links: %w", err)
	}

	b.logger.Info().
		Int("terms", len(terms)).
		Int("passages", len(passages)).
		Int("links", created).
		Bool("exact", exact).
		Msg("link index rebuilt")
	return created, nil
}

// Update adds links for a newly onboarded work without touching existing
// rows. Terms come from the whole corpus, not just the work, and only the
// whole-word predicate applies. Returns the number of links added.
func (b *Builder) Update(ctx context.Context, workID int) (int, error) {
	terms, err := b.store.GetTerms(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to load terms: %w", err)
	}
	passages, err := b.store.GetPassages(ctx, corpus.PassageFilter{WorkID: &workID})
	if err != nil {
		return 0, fmt.Errorf("failed to load passages: %w", err)
	}

	added := 0
	for _, p := range passages {
		for _, t := range terms {
			if t.Term == "" {
				continue
			}
			if !search.ContainsWord(p.Text, t.Term) {
				continue
			}
			exists, err := b.store.LinkExists(ctx, t.ID, p.ID)
			if err != nil {
				return added, fmt.Errorf("failed to check link: %w", err)
			}
			if exists {
				continue
			}
			link := corpus.TermPassageLink{
				TermID:      t.ID,
				PassageID:   p.ID,
				WorkID:      p.WorkID,
				TextSnippet: search.LinkSnippet(p.Text, t.Term, search.LinkContextWords),
			}
			if err := b.store.InsertLink(ctx, link); err != nil {
				return added, fmt.Errorf("failed to insert link: %w", err)
			}
			added++
		}
	}

	b.logger.Info().
		Int("work_id", workID).
		Int("links_added", added).
		Msg("link index updated")
	return added, nil
}

package search

import (
	"context"
	"errors"
	"fmt"

	"github.com/concordlabs/concord/internal/scope/corpus"
	"github.com/rs/zerolog"
)

// maxTermResults caps the glossary portion of a search result page.
const maxTermResults = 10

// PassageResult is one matched passage with its display snippet and
// denormalized chapter/section titles.
type PassageResult struct {
	ID            string
	WorkID        int
	ChapterID     int
	SectionNumber *int
	Paragraph     int
	Text          string
	Translation   string
	TextSnippet   string
	ChapterTitle  string
	SectionTitle  *string
}

// Results is one page of combined term and passage matches.
type Results struct {
	Query         string
	Terms         []corpus.Term
	Passages      []PassageResult
	TotalPassages int
	Page          int
	PageSize      int
}

// Service is the search orchestrator. All operations are stateless
// transformations over the store snapshot at call time.
type Service struct {
	store   corpus.Store
	matcher *Matcher
	logger  zerolog.Logger
}

// NewService creates a search service over the given store and matcher
func NewService(store corpus.Store, matcher *Matcher, logger zerolog.Logger) *Service {
	return &Service{
		store:   store,
		matcher: matcher,
		logger:  logger,
	}
}

// Search matches query against terms and passages, optionally scoped to
// a work. Terms are capped at the first 10 matches in corpus order;
// passages are paginated (1-based) over the full filtered set with no
// re-sorting. Query length and page bounds are validated by the caller.
func (s *Service) Search(ctx context.Context, query string, exact bool, page, pageSize int, workID *int) (*Results, error) {
	terms, err := s.store.GetTerms(ctx, workID)
	if err != nil {
		return nil, fmt.Errorf("failed to load terms: %w", err)
	}
	var matchedTerms []corpus.Term
	for _, t := range terms {
		if !s.matcher.TermMatchesQuery(t.Term, query, exact) {
			continue
		}
		matchedTerms = append(matchedTerms, t)
		if len(matchedTerms) >= maxTermResults {
			break
		}
	}

	passages, err := s.store.GetPassages(ctx, corpus.PassageFilter{WorkID: workID})
	if err != nil {
		return nil, fmt.Errorf("failed to load passages: %w", err)
	}
	var matched []corpus.Passage
	for _, p := range passages {
		if s.matcher.PassageMatchesQuery(p.Text, query, exact) {
			matched = append(matched, p)
		}
	}
	total := len(matched)

	offset := (page - 1) * pageSize
	var pageSlice []corpus.Passage
	if offset < len(matched) {
		end := min(offset+pageSize, len(matched))
		pageSlice = matched[offset:end]
	}

	results := make([]PassageResult, 0, len(pageSlice))
	for _, p := range pageSlice {
		r := PassageResult{
			ID:            p.ID,
			WorkID:        p.WorkID,
			ChapterID:     p.ChapterID,
			SectionNumber: p.SectionNumber,
			Paragraph:     p.Paragraph,
			Text:          p.Text,
			Translation:   p.Translation,
			TextSnippet:   SearchSnippet(p.Text, query, SearchContextWords),
		}
		chapter, err := s.store.GetChapter(ctx, p.ChapterID)
		if err != nil && !errors.Is(err, corpus.ErrNotFound) {
			return nil, fmt.Errorf("failed to resolve chapter %d: %w", p.ChapterID, err)
		}
		if chapter != nil {
			r.ChapterTitle = chapter.Title
		}
		if p.SectionNumber != nil {
			section, err := s.store.GetSection(ctx, p.ChapterID, *p.SectionNumber)
			if err != nil && !errors.Is(err, corpus.ErrNotFound) {
				return nil, fmt.Errorf("failed to resolve section %d.%d: %w", p.ChapterID, *p.SectionNumber, err)
			}
			if section != nil {
				title := section.Title
				r.SectionTitle = &title
			}
		}
		results = append(results, r)
	}

	s.logger.Debug().
		Str("query", query).
		Bool("exact", exact).
		Int("terms", len(matchedTerms)).
		Int("total_passages", total).
		Int("page", page).
		Msg("search completed")

	return &Results{
		Query:         query,
		Terms:         matchedTerms,
		Passages:      results,
		TotalPassages: total,
		Page:          page,
		PageSize:      pageSize,
	}, nil
}

// TermPassages returns one page of the materialized link listing for a
// term, with the total link count. Snippets come from the index as built,
// not recomputed per request.
func (s *Service) TermPassages(ctx context.Context, termID string, page, pageSize int, workID *int) ([]corpus.LinkView, int, error) {
	if _, err := s.store.GetTerm(ctx, termID); err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	views, err := s.store.GetLinks(ctx, termID, workID, offset, pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to load links: %w", err)
	}
	count, err := s.store.CountLinks(ctx, termID, workID)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count links: %w", err)
	}
	return views, count, nil
}

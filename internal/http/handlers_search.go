package httpapi

import (
	"net/http"
	"unicode/utf8"

	"github.com/concordlabs/concord/internal/scope/corpus"
)

// minQueryLength is enforced here at the boundary; the core assumes
// queries have already been validated.
const minQueryLength = 2

// HandleSearch matches a query against glossary terms and passage text.
// ?q= is required (min 2 chars); ?exact=true switches substring mode;
// ?page/?page_size paginate passages; ?work_id scopes to one work.
func (h *Handler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if utf8.RuneCountInString(q) < minQueryLength {
		writeError(w, http.StatusBadRequest, "query must be at least 2 characters", "INVALID_QUERY")
		return
	}
	exact := r.URL.Query().Get("exact") == "true"

	page, pageSize, err := h.pagination(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), "INVALID_QUERY")
		return
	}
	workID, err := optionalWorkID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "work_id must be an integer", "INVALID_QUERY")
		return
	}

	results, err := h.service.Search(r.Context(), q, exact, page, pageSize, workID)
	if err != nil {
		h.writeStoreError(w, err, "search")
		return
	}

	passages := make([]PassageSearchResult, 0, len(results.Passages))
	for _, p := range results.Passages {
		passages = append(passages, PassageSearchResult{
			ID:           p.ID,
			Chapter:      p.ChapterID,
			Section:      p.SectionNumber,
			Paragraph:    p.Paragraph,
			Text:         p.Text,
			Translation:  p.Translation,
			TextSnippet:  p.TextSnippet,
			ChapterTitle: p.ChapterTitle,
			SectionTitle: p.SectionTitle,
			WorkID:       p.WorkID,
		})
	}
	terms := results.Terms
	if terms == nil {
		terms = []corpus.Term{}
	}

	h.logger.Info().
		Str("query", q).
		Bool("exact", exact).
		Int("terms", len(terms)).
		Int("total_passages", results.TotalPassages).
		Msg("search served")

	writeJSON(w, http.StatusOK, SearchResponse{
		Query:         results.Query,
		Terms:         terms,
		Passages:      passages,
		TotalPassages: results.TotalPassages,
		Page:          results.Page,
		PageSize:      results.PageSize,
	})
}

package httpapi

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/concordlabs/concord/internal/scope/corpus"
)

// HandleListWorks lists all works
func (h *Handler) HandleListWorks(w http.ResponseWriter, r *http.Request) {
	works, err := h.store.GetWorks(r.Context())
	if err != nil {
		h.writeStoreError(w, err, "works")
		return
	}
	if works == nil {
		works = []corpus.Work{}
	}
	writeJSON(w, http.StatusOK, works)
}

// HandleGetWork returns one work
func (h *Handler) HandleGetWork(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "workID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "work id must be an integer", "INVALID_QUERY")
		return
	}
	work, err := h.store.GetWork(r.Context(), id)
	if err != nil {
		h.writeStoreError(w, err, "work")
		return
	}
	writeJSON(w, http.StatusOK, work)
}

// HandleListTerms lists glossary terms, optionally scoped to a work
func (h *Handler) HandleListTerms(w http.ResponseWriter, r *http.Request) {
	workID, err := optionalWorkID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "work_id must be an integer", "INVALID_QUERY")
		return
	}
	terms, err := h.store.GetTerms(r.Context(), workID)
	if err != nil {
		h.writeStoreError(w, err, "terms")
		return
	}
	if terms == nil {
		terms = []corpus.Term{}
	}
	writeJSON(w, http.StatusOK, terms)
}

// HandleGetTerm returns one glossary term
func (h *Handler) HandleGetTerm(w http.ResponseWriter, r *http.Request) {
	term, err := h.store.GetTerm(r.Context(), chi.URLParam(r, "termID"))
	if err != nil {
		h.writeStoreError(w, err, "term")
		return
	}
	writeJSON(w, http.StatusOK, term)
}

// HandleListChapters lists chapters, optionally scoped to a work
func (h *Handler) HandleListChapters(w http.ResponseWriter, r *http.Request) {
	workID, err := optionalWorkID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "work_id must be an integer", "INVALID_QUERY")
		return
	}
	chapters, err := h.store.GetChapters(r.Context(), workID)
	if err != nil {
		h.writeStoreError(w, err, "chapters")
		return
	}
	if chapters == nil {
		chapters = []corpus.Chapter{}
	}
	writeJSON(w, http.StatusOK, chapters)
}

// HandleChapterData returns the reader payload for one chapter: title,
// passages, sections, glossary terms, the part it belongs to and
// prev/next navigation
func (h *Handler) HandleChapterData(w http.ResponseWriter, r *http.Request) {
	chapterID, err := strconv.Atoi(chi.URLParam(r, "chapterID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "chapter id must be an integer", "INVALID_QUERY")
		return
	}
	workID, err := optionalWorkID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "work_id must be an integer", "INVALID_QUERY")
		return
	}
	ctx := r.Context()

	chapter, err := h.store.GetChapter(ctx, chapterID)
	if err != nil {
		h.writeStoreError(w, err, "chapter")
		return
	}
	if workID != nil && chapter.WorkID != *workID {
		writeError(w, http.StatusNotFound, "chapter not found", "NOT_FOUND")
		return
	}

	passages, err := h.store.GetPassages(ctx, corpus.PassageFilter{WorkID: workID, ChapterID: &chapterID})
	if err != nil {
		h.writeStoreError(w, err, "passages")
		return
	}
	sections, err := h.store.GetSections(ctx, workID, &chapterID)
	if err != nil {
		h.writeStoreError(w, err, "sections")
		return
	}
	terms, err := h.store.GetTerms(ctx, workID)
	if err != nil {
		h.writeStoreError(w, err, "terms")
		return
	}

	resp := ChapterDataResponse{
		Title:    chapter.Title,
		Passages: passages,
		Sections: sections,
		Terms:    terms,
	}
	if resp.Passages == nil {
		resp.Passages = []corpus.Passage{}
	}
	if resp.Sections == nil {
		resp.Sections = []corpus.Section{}
	}
	if resp.Terms == nil {
		resp.Terms = []corpus.Term{}
	}

	// Current part: the one whose chapter range covers this chapter
	parts, err := h.store.GetParts(ctx, workID)
	if err != nil {
		h.writeStoreError(w, err, "parts")
		return
	}
	for _, p := range parts {
		if p.StartChapter <= chapterID && chapterID <= p.EndChapter {
			resp.Part = &PartInfo{Number: p.Number, Title: p.Title}
			break
		}
	}

	resp.PrevChapter = h.chapterNav(r, chapterID-1, workID)
	resp.NextChapter = h.chapterNav(r, chapterID+1, workID)

	writeJSON(w, http.StatusOK, resp)
}

// chapterNav resolves a neighbouring chapter for reader navigation
func (h *Handler) chapterNav(r *http.Request, id int, workID *int) *ChapterNav {
	c, err := h.store.GetChapter(r.Context(), id)
	if err != nil || c == nil {
		return nil
	}
	if workID != nil && c.WorkID != *workID {
		return nil
	}
	return &ChapterNav{ID: c.ID, Title: c.Title, WorkID: c.WorkID}
}

// HandlePassageFootnotes lists a passage's footnotes in order
func (h *Handler) HandlePassageFootnotes(w http.ResponseWriter, r *http.Request) {
	passageID := chi.URLParam(r, "passageID")
	notes, err := h.store.GetFootnotes(r.Context(), passageID)
	if err != nil {
		h.writeStoreError(w, err, "footnotes")
		return
	}
	if notes == nil {
		notes = []corpus.Footnote{}
	}
	writeJSON(w, http.StatusOK, notes)
}

// HandleTableOfContents groups chapters and their sections under parts
func (h *Handler) HandleTableOfContents(w http.ResponseWriter, r *http.Request) {
	workID, err := optionalWorkID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "work_id must be an integer", "INVALID_QUERY")
		return
	}
	ctx := r.Context()

	parts, err := h.store.GetParts(ctx, workID)
	if err != nil {
		h.writeStoreError(w, err, "parts")
		return
	}
	chapters, err := h.store.GetChapters(ctx, workID)
	if err != nil {
		h.writeStoreError(w, err, "chapters")
		return
	}
	sections, err := h.store.GetSections(ctx, workID, nil)
	if err != nil {
		h.writeStoreError(w, err, "sections")
		return
	}

	sectionsByChapter := make(map[int][]SectionMeta)
	for _, sec := range sections {
		sectionsByChapter[sec.ChapterID] = append(sectionsByChapter[sec.ChapterID], SectionMeta{
			Section: sec.SectionNumber,
			Title:   sec.Title,
		})
	}

	toc := []PartTOC{}
	for _, part := range parts {
		var partChapters []ChapterTOC
		for _, ch := range chapters {
			if ch.ID < part.StartChapter || ch.ID > part.EndChapter {
				continue
			}
			secs := sectionsByChapter[ch.ID]
			if secs == nil {
				secs = []SectionMeta{}
			}
			partChapters = append(partChapters, ChapterTOC{
				ID:       ch.ID,
				Title:    ch.Title,
				Sections: secs,
			})
		}
		if len(partChapters) == 0 {
			continue
		}
		toc = append(toc, PartTOC{
			Number:   part.Number,
			Title:    part.Title,
			Chapters: partChapters,
		})
	}

	writeJSON(w, http.StatusOK, toc)
}

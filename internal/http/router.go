package httpapi

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Router builds the API route tree
func Router(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)

	// Routes
	r.Get("/health", h.HandleHealth)
	r.Get("/works", h.HandleListWorks)
	r.Get("/works/{workID}", h.HandleGetWork)
	r.Get("/terms", h.HandleListTerms)
	r.Get("/terms/{termID}", h.HandleGetTerm)
	r.Get("/terms/{termID}/passages", h.HandleTermPassages)
	r.Get("/terms/{termID}/passage_count", h.HandleTermPassageCount)
	r.Get("/chapters", h.HandleListChapters)
	r.Get("/chapter_data/{chapterID}", h.HandleChapterData)
	r.Get("/passages/{passageID}/footnotes", h.HandlePassageFootnotes)
	r.Get("/parts_with_chapters_sections", h.HandleTableOfContents)
	r.Get("/search", h.HandleSearch)
	r.Post("/links/rebuild", h.HandleRebuildLinks)
	r.Post("/links/update", h.HandleUpdateLinks)

	return r
}

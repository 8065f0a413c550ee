package httpapi

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/concordlabs/concord/internal/scope/corpus"
)

// HandleTermPassages lists the passages linked to a term from the
// materialized index, paginated
func (h *Handler) HandleTermPassages(w http.ResponseWriter, r *http.Request) {
	termID := chi.URLParam(r, "termID")

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

	views, total, err := h.service.TermPassages(r.Context(), termID, page, pageSize, workID)
	if err != nil {
		h.writeStoreError(w, err, "term")
		return
	}
	if views == nil {
		views = []corpus.LinkView{}
	}

	writeJSON(w, http.StatusOK, TermPassagesResponse{
		TermID:   termID,
		Passages: views,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	})
}

// HandleTermPassageCount returns a term's link count
func (h *Handler) HandleTermPassageCount(w http.ResponseWriter, r *http.Request) {
	termID := chi.URLParam(r, "termID")
	workID, err := optionalWorkID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "work_id must be an integer", "INVALID_QUERY")
		return
	}

	count, err := h.store.CountLinks(r.Context(), termID, workID)
	if err != nil {
		h.writeStoreError(w, err, "term")
		return
	}
	writeJSON(w, http.StatusOK, PassageCountResponse{Count: count})
}

// HandleRebuildLinks runs a full link index rebuild, optionally scoped to
// one work. ?exact=true uses substring matching instead of the fuzzy
// link predicate. The rebuild commits atomically; a failure leaves the
// previous index in place.
func (h *Handler) HandleRebuildLinks(w http.ResponseWriter, r *http.Request) {
	workID, err := optionalWorkID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "work_id must be an integer", "INVALID_QUERY")
		return
	}
	exact := r.URL.Query().Get("exact") == "true"

	created, err := h.builder.Rebuild(r.Context(), workID, exact)
	if err != nil {
		h.writeStoreError(w, err, "rebuild")
		return
	}
	writeJSON(w, http.StatusOK, RebuildResponse{LinksCreated: created})
}

// HandleUpdateLinks runs the incremental whole-word link pass for one
// work. ?work_id is required.
func (h *Handler) HandleUpdateLinks(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("work_id")
	if raw == "" {
		writeError(w, http.StatusBadRequest, "work_id is required", "INVALID_QUERY")
		return
	}
	workID, err := strconv.Atoi(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "work_id must be an integer", "INVALID_QUERY")
		return
	}

	added, err := h.builder.Update(r.Context(), workID)
	if err != nil {
		h.writeStoreError(w, err, "update")
		return
	}
	writeJSON(w, http.StatusOK, UpdateLinksResponse{LinksAdded: added})
}

package httpapi

import "net/http"

// HandleHealth returns API health status and the number of indexed works
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	works, err := h.store.GetWorks(r.Context())
	if err != nil {
		h.writeStoreError(w, err, "works")
		return
	}

	writeJSON(w, http.StatusOK, HealthResponse{
		Status: "healthy",
		Works:  len(works),
	})
}

package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/concordlabs/concord/internal/scope/corpus"
	"github.com/concordlabs/concord/internal/scope/links"
	"github.com/concordlabs/concord/internal/scope/search"
	"github.com/rs/zerolog"
)

// Handler contains HTTP handlers for the API
type Handler struct {
	store       corpus.Store
	service     *search.Service
	builder     *links.Builder
	maxPageSize int
	logger      zerolog.Logger
}

// NewHandler creates a new HTTP handler
func NewHandler(store corpus.Store, service *search.Service, builder *links.Builder, maxPageSize int, logger zerolog.Logger) *Handler {
	return &Handler{
		store:       store,
		service:     service,
		builder:     builder,
		maxPageSize: maxPageSize,
		logger:      logger,
	}
}

// Helper functions used across all handlers

// writeJSON writes a JSON response with the given status code
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes an error response with the given status code
func writeError(w http.ResponseWriter, status int, message, code string) {
	writeJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}

// writeStoreError maps store errors to HTTP statuses
func (h *Handler) writeStoreError(w http.ResponseWriter, err error, what string) {
	if errors.Is(err, corpus.ErrNotFound) {
		writeError(w, http.StatusNotFound, what+" not found", "NOT_FOUND")
		return
	}
	if errors.Is(err, corpus.ErrIntegrity) {
		writeError(w, http.StatusConflict, err.Error(), "INTEGRITY_VIOLATION")
		return
	}
	h.logger.Error().Err(err).Msg("store error")
	writeError(w, http.StatusInternalServerError, "internal error", "INTERNAL")
}

// queryInt parses an integer query parameter, using fallback when absent
func queryInt(r *http.Request, key string, fallback int) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback, nil
	}
	return strconv.Atoi(raw)
}

// optionalWorkID parses the optional work_id query parameter
func optionalWorkID(r *http.Request) (*int, error) {
	raw := r.URL.Query().Get("work_id")
	if raw == "" {
		return nil, nil
	}
	id, err := strconv.Atoi(raw)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

// pagination parses and bounds page/page_size. Pagination is 1-based.
func (h *Handler) pagination(r *http.Request) (page, pageSize int, err error) {
	page, err = queryInt(r, "page", 1)
	if err != nil || page < 1 {
		return 0, 0, errInvalidPage
	}
	pageSize, err = queryInt(r, "page_size", 10)
	if err != nil || pageSize < 1 || pageSize > h.maxPageSize {
		return 0, 0, errInvalidPageSize
	}
	return page, pageSize, nil
}

var (
	errInvalidPage     = errors.New("page must be a positive integer")
	errInvalidPageSize = errors.New("page_size out of bounds")
)

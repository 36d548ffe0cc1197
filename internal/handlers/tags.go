package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// TagHandlers serves the fixed tag vocabulary used for filtering and the
// suggestion form.
type TagHandlers struct {
	tags []string
}

// NewTagHandlers constructs tag endpoints over the configured vocabulary.
func NewTagHandlers(tags []string) *TagHandlers {
	copied := make([]string, len(tags))
	copy(copied, tags)
	return &TagHandlers{tags: copied}
}

// Routes registers the tag endpoints on the given router.
func (h *TagHandlers) Routes(r chi.Router) {
	r.Get("/", h.list)
}

type tagListResponse struct {
	Tags []string `json:"tags"`
}

func (h *TagHandlers) list(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, tagListResponse{Tags: h.tags})
}

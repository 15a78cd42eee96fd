package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/chordbook/internal/storage"
)

// MediaHandler serves stored audio files.
type MediaHandler struct {
	media *storage.Media
}

// NewMediaHandler creates a handler over the media store.
func NewMediaHandler(media *storage.Media) *MediaHandler {
	return &MediaHandler{media: media}
}

// ServeFile handles GET /media/{filename}.
func (h *MediaHandler) ServeFile(w http.ResponseWriter, r *http.Request) {
	abs, err := h.media.Path(chi.URLParam(r, "filename"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if !h.media.Exists(chi.URLParam(r, "filename")) {
		http.NotFound(w, r)
		return
	}
	http.ServeFile(w, r, abs)
}

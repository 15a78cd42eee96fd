package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/chordbook/internal/songservice"
	"github.com/starford/chordbook/internal/storage"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
// media, if non-nil, enables audio uploads.
func NewRouter(svc *songservice.Service, authEnabled bool, token string, sseHandler http.Handler, media *storage.Media) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Songs CRUD.
	r.Get("/songs", h.ListSongs)
	r.Post("/songs", h.CreateSong)
	r.Post("/songs/import", h.ImportSong)
	r.Route("/songs/{id}", func(r chi.Router) {
		r.Get("/", h.GetSong)
		r.Put("/", h.UpdateSong)
		r.Delete("/", h.DeleteSong)
		r.Get("/versions", h.Versions)
		r.Get("/versions/{n}", h.Version)
		r.Get("/render", h.RenderSong)
		r.Get("/pdf", h.RenderPDF)
		r.Put("/transpose", h.SetTranspose)

		// Block edits.
		r.Post("/blocks/{blockID}/notes", h.PlaceNote)
		r.Delete("/blocks/{blockID}/notes/{index}", h.DeleteNote)
		r.Post("/blocks/{blockID}/cells", h.CycleCell)
		r.Post("/blocks/{blockID}/instruments", h.AddInstrument)

		if media != nil {
			r.Post("/audio", h.UploadAudio)
		}
	})

	// Stateless helpers.
	r.Post("/render", h.RenderDocument)
	r.Get("/chords/transpose", h.TransposeChord)
	r.Get("/tunings", h.Tunings)
	r.Get("/instruments", h.Instruments)

	// Search.
	r.Get("/search", h.Search)

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}

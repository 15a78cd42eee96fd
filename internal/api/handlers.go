package api

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/starford/chordbook/internal/checksum"
	"github.com/starford/chordbook/internal/drumtab"
	"github.com/starford/chordbook/internal/index"
	"github.com/starford/chordbook/internal/pitch"
	"github.com/starford/chordbook/internal/render"
	"github.com/starford/chordbook/internal/song"
	"github.com/starford/chordbook/internal/songservice"
	"github.com/starford/chordbook/internal/storage"
	"github.com/starford/chordbook/internal/tuning"
)

const maxBodyBytes = 10 << 20

// Handler holds API route handlers.
type Handler struct {
	svc *songservice.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *songservice.Service) *Handler {
	return &Handler{svc: svc}
}

// decodeSong reads a song document in the boundary shape from the body.
func decodeSong(w http.ResponseWriter, r *http.Request) (*song.Song, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("failed to read body"))
		return nil, false
	}
	s, err := song.Decode(body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid song document"))
		return nil, false
	}
	return s, true
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return false
	}
	return true
}

// ListSongs handles GET /api/songs.
//
//	@Summary		List songs with optional pagination and sorting
//	@Tags			songs
//	@Produce		json
//	@Param			limit	query		int		false	"Page size"
//	@Param			offset	query		int		false	"Page offset"
//	@Param			sort	query		string	false	"Sort field"	Enums(updated, title, artist)
//	@Success		200		{object}	SongListResponse
//	@Security		BearerAuth
//	@Router			/songs [get]
func (h *Handler) ListSongs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))

	items, total, err := h.svc.List(r.Context(), limit, offset, q.Get("sort"))
	if err != nil {
		writeError(w, "list songs", err)
		return
	}
	writeJSON(w, http.StatusOK, SongListResponse{Songs: items, Total: total})
}

// GetSong handles GET /api/songs/{id}.
//
//	@Summary		Get a single song document
//	@Tags			songs
//	@Produce		json
//	@Param			id	path		string	true	"Song id"
//	@Success		200	{object}	SongDetail
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/songs/{id} [get]
func (h *Handler) GetSong(w http.ResponseWriter, r *http.Request) {
	d, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, "get song", err)
		return
	}
	w.Header().Set("ETag", checksum.ETag(d.Checksum))
	writeJSON(w, http.StatusOK, d)
}

// CreateSong handles POST /api/songs.
//
//	@Summary		Create a new song
//	@Tags			songs
//	@Accept			json
//	@Produce		json
//	@Success		201	{object}	SongDetail
//	@Failure		400	{object}	errResponse
//	@Failure		409	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/songs [post]
func (h *Handler) CreateSong(w http.ResponseWriter, r *http.Request) {
	s, ok := decodeSong(w, r)
	if !ok {
		return
	}
	d, err := h.svc.Create(r.Context(), s)
	if err != nil {
		writeError(w, "create song", err)
		return
	}
	writeJSON(w, http.StatusCreated, d)
}

// UpdateSong handles PUT /api/songs/{id}.
//
//	@Summary		Replace a song with optimistic concurrency
//	@Tags			songs
//	@Accept			json
//	@Produce		json
//	@Param			id			path	string	true	"Song id"
//	@Param			If-Match	header	string	false	"SHA-256 checksum for optimistic concurrency"
//	@Success		200	{object}	SongDetail
//	@Failure		400	{object}	errResponse
//	@Failure		404	{object}	errResponse
//	@Failure		409	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/songs/{id} [put]
func (h *Handler) UpdateSong(w http.ResponseWriter, r *http.Request) {
	s, ok := decodeSong(w, r)
	if !ok {
		return
	}
	ifMatch := checksum.FromETag(r.Header.Get("If-Match"))

	d, err := h.svc.Update(r.Context(), chi.URLParam(r, "id"), s, ifMatch)
	if err != nil {
		writeError(w, "update song", err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// DeleteSong handles DELETE /api/songs/{id}.
//
//	@Summary		Delete a song
//	@Tags			songs
//	@Param			id	path	string	true	"Song id"
//	@Success		204	"Song deleted"
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/songs/{id} [delete]
func (h *Handler) DeleteSong(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, "delete song", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Versions handles GET /api/songs/{id}/versions.
func (h *Handler) Versions(w http.ResponseWriter, r *http.Request) {
	vs, err := h.svc.Versions(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, "list versions", err)
		return
	}
	writeJSON(w, http.StatusOK, VersionListResponse{Versions: vs})
}

// Version handles GET /api/songs/{id}/versions/{n}.
func (h *Handler) Version(w http.ResponseWriter, r *http.Request) {
	n, err := strconv.Atoi(chi.URLParam(r, "n"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("version must be a number"))
		return
	}
	s, err := h.svc.Version(r.Context(), chi.URLParam(r, "id"), n)
	if err != nil {
		writeError(w, "get version", err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

// RenderSong handles GET /api/songs/{id}/render.
//
//	@Summary		Render a song as text, HTML or structured JSON
//	@Tags			render
//	@Produce		plain,html,json
//	@Param			id		path	string	true	"Song id"
//	@Param			format	query	string	false	"Output format"	Enums(text, html, json)
//	@Param			view	query	string	false	"Block filter"	Enums(full, drummer)
//	@Success		200
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/songs/{id}/render [get]
func (h *Handler) RenderSong(w http.ResponseWriter, r *http.Request) {
	out, err := h.svc.Render(r.Context(), chi.URLParam(r, "id"), render.ParseView(r.URL.Query().Get("view")))
	if err != nil {
		writeError(w, "render song", err)
		return
	}
	writeRendered(w, r.URL.Query().Get("format"), out)
}

// RenderDocument handles POST /api/render: a song document in, its
// rendering out. Nothing is stored.
func (h *Handler) RenderDocument(w http.ResponseWriter, r *http.Request) {
	s, ok := decodeSong(w, r)
	if !ok {
		return
	}
	out := h.svc.RenderDocument(s, render.ParseView(r.URL.Query().Get("view")))
	writeRendered(w, r.URL.Query().Get("format"), out)
}

func writeRendered(w http.ResponseWriter, format string, out render.Output) {
	switch format {
	case "", "text":
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = io.WriteString(w, render.Text(out))
	case "html":
		page, err := render.HTML(out)
		if err != nil {
			writeError(w, "render html", err)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(page)
	case "json":
		writeJSON(w, http.StatusOK, out)
	default:
		writeJSON(w, http.StatusBadRequest, errorBody("format must be text, html or json"))
	}
}

// RenderPDF handles GET /api/songs/{id}/pdf.
func (h *Handler) RenderPDF(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	view := render.ParseView(r.URL.Query().Get("view"))
	if _, err := h.svc.Get(r.Context(), id); err != nil {
		writeError(w, "render pdf", err)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `inline; filename="`+id+`.pdf"`)
	if err := h.svc.RenderPDF(r.Context(), id, view, w); err != nil {
		slog.Error("render pdf failed", slog.String("id", id), slog.String("error", err.Error()))
	}
}

// ImportSong handles POST /api/songs/import.
//
//	@Summary		Import a plain-text song sheet
//	@Tags			songs
//	@Accept			json
//	@Produce		json
//	@Param			body	body		ImportRequest	true	"Sheet text"
//	@Success		200		{object}	SongDetail	"Preview (save=false)"
//	@Success		201		{object}	SongDetail	"Stored (save=true)"
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/songs/import [post]
func (h *Handler) ImportSong(w http.ResponseWriter, r *http.Request) {
	var req ImportRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("text is required"))
		return
	}
	d, err := h.svc.Import(r.Context(), req.Text, req.Save)
	if err != nil {
		writeError(w, "import song", err)
		return
	}
	status := http.StatusOK
	if req.Save {
		status = http.StatusCreated
	}
	writeJSON(w, status, d)
}

// PlaceNote handles POST /api/songs/{id}/blocks/{blockID}/notes.
func (h *Handler) PlaceNote(w http.ResponseWriter, r *http.Request) {
	var req PlaceNoteRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	d, idx, err := h.svc.PlaceNote(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "blockID"), req.X, req.Y)
	if err != nil {
		writeError(w, "place note", err)
		return
	}
	writeJSON(w, http.StatusCreated, PlaceNoteResponse{Index: idx, Song: d})
}

// DeleteNote handles DELETE /api/songs/{id}/blocks/{blockID}/notes/{index}.
func (h *Handler) DeleteNote(w http.ResponseWriter, r *http.Request) {
	i, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("index must be a number"))
		return
	}
	d, err := h.svc.DeleteNote(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "blockID"), i)
	if err != nil {
		writeError(w, "delete note", err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// CycleCell handles POST /api/songs/{id}/blocks/{blockID}/cells.
func (h *Handler) CycleCell(w http.ResponseWriter, r *http.Request) {
	var req CellRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	d, err := h.svc.CycleDrumCell(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "blockID"), req.Row, req.Col)
	if err != nil {
		writeError(w, "cycle cell", err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// AddInstrument handles POST /api/songs/{id}/blocks/{blockID}/instruments.
func (h *Handler) AddInstrument(w http.ResponseWriter, r *http.Request) {
	var req InstrumentRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	d, err := h.svc.AddInstrument(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "blockID"), req.Name, req.Code)
	if err != nil {
		writeError(w, "add instrument", err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// SetTranspose handles PUT /api/songs/{id}/transpose.
func (h *Handler) SetTranspose(w http.ResponseWriter, r *http.Request) {
	var req TransposeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	d, err := h.svc.SetTranspose(r.Context(), chi.URLParam(r, "id"), req.Transpose)
	if err != nil {
		writeError(w, "set transpose", err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// UploadAudio handles POST /api/songs/{id}/audio (multipart/form-data, field "file").
//
//	@Summary		Attach an audio recording to a song
//	@Tags			media
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			id		path		string	true	"Song id"
//	@Param			file	formData	file	true	"Audio file (mp3, ogg, wav, flac, m4a)"
//	@Success		201		{object}	MediaUploadResponse
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Failure		409		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/songs/{id}/audio [post]
func (h *Handler) UploadAudio(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, storage.MaxMediaBytes+1<<20)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("file too large or invalid multipart"))
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("missing 'file' field in multipart form"))
		return
	}
	defer file.Close()

	d, err := h.svc.AttachAudio(r.Context(), chi.URLParam(r, "id"), header.Filename, file)
	if err != nil {
		writeError(w, "upload audio", err)
		return
	}
	writeJSON(w, http.StatusCreated, MediaUploadResponse{
		Filename: strings.TrimPrefix(d.Song.AudioURL, storage.MediaURLPrefix),
		URL:      d.Song.AudioURL,
		Song:     d,
	})
}

// TransposeChord handles GET /api/chords/transpose.
func (h *Handler) TransposeChord(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	symbol := q.Get("symbol")
	if symbol == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'symbol' is required"))
		return
	}
	n, err := strconv.Atoi(q.Get("semitones"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'semitones' must be an integer"))
		return
	}
	writeJSON(w, http.StatusOK, TransposeChordResponse{
		Symbol:     symbol,
		Semitones:  n,
		Transposed: pitch.TransposeChord(symbol, n),
	})
}

// Tunings handles GET /api/tunings.
func (h *Handler) Tunings(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"tunings": tuning.All()})
}

// Instruments handles GET /api/instruments.
func (h *Handler) Instruments(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"instruments": drumtab.Instruments()})
}

// Search handles GET /api/search.
//
//	@Summary		Full-text search across songs
//	@Tags			search
//	@Produce		json
//	@Param			q		query		string	true	"Search query"
//	@Param			limit	query		int		false	"Max results"
//	@Success		200		{object}	SearchResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/search [get]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'q' is required"))
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	results, err := h.svc.Search(r.Context(), q, limit)
	if err != nil {
		writeError(w, "search", err)
		return
	}
	writeJSON(w, http.StatusOK, SearchResponse{Results: searchResults(results)})
}

func searchResults(in []index.SearchResult) []SearchResult {
	out := make([]SearchResult, len(in))
	for i, r := range in {
		out[i] = SearchResult{ID: r.ID, Title: r.Title, Artist: r.Artist, Snippet: r.Snippet}
	}
	return out
}

package api

import (
	"github.com/starford/chordbook/internal/models"
	"github.com/starford/chordbook/internal/songservice"
)

// SongDetail is the full song response type (aliased from the domain layer).
type SongDetail = songservice.SongDetail

// SongListResponse wraps paginated song listings.
type SongListResponse struct {
	Songs []models.SongSummary `json:"songs" validate:"required"`
	Total int                  `json:"total" example:"42" validate:"required"`
}

// SearchResult is a single search hit in the API response.
type SearchResult struct {
	ID      string `json:"id" example:"3f2a" validate:"required"`
	Title   string `json:"title" example:"Wonderwall" validate:"required"`
	Artist  string `json:"artist" example:"Oasis"`
	Snippet string `json:"snippet" example:"...matched text..." validate:"required"`
}

// SearchResponse wraps search results.
type SearchResponse struct {
	Results []SearchResult `json:"results" validate:"required"`
}

// VersionListResponse wraps a song's revision history.
type VersionListResponse struct {
	Versions []models.Version `json:"versions" validate:"required"`
}

// ImportRequest is the request body for importing a plain-text sheet.
type ImportRequest struct {
	Text string `json:"text" example:"[Verse]\nC G\nHello" validate:"required"`
	Save bool   `json:"save" example:"true"`
}

// PlaceNoteRequest is a click on the fretboard diagram.
type PlaceNoteRequest struct {
	X float64 `json:"x" example:"190" validate:"required"`
	Y float64 `json:"y" example:"53" validate:"required"`
}

// PlaceNoteResponse reports the new note index with the updated song.
type PlaceNoteResponse struct {
	Index int         `json:"index" example:"0"`
	Song  *SongDetail `json:"song"`
}

// CellRequest addresses one drum grid cell.
type CellRequest struct {
	Row int `json:"row" example:"0"`
	Col int `json:"col" example:"3"`
}

// InstrumentRequest adds an instrument row to a drum grid.
type InstrumentRequest struct {
	Name string `json:"name" example:"Cowbell" validate:"required"`
	Code string `json:"code" example:"CB" validate:"required"`
}

// TransposeRequest sets the render-time transposition of a song.
type TransposeRequest struct {
	Transpose int `json:"transpose" example:"2"`
}

// TransposeChordResponse is the result of transposing one chord symbol.
type TransposeChordResponse struct {
	Symbol     string `json:"symbol" example:"Am7" validate:"required"`
	Semitones  int    `json:"semitones" example:"2"`
	Transposed string `json:"transposed" example:"Bm7" validate:"required"`
}

// MediaUploadResponse is returned after a successful audio upload.
type MediaUploadResponse struct {
	Filename string      `json:"filename" example:"take1.mp3" validate:"required"`
	URL      string      `json:"url" example:"/media/take1.mp3" validate:"required"`
	Song     *SongDetail `json:"song"`
}

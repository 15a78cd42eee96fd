package song

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/starford/chordbook/internal/drumtab"
	"github.com/starford/chordbook/internal/tuning"
)

// document is the boundary shape exchanged with the persistence layer.
type document struct {
	ID         *string         `json:"id"`
	Title      string          `json:"title"`
	Artist     string          `json:"artist"`
	Duration   string          `json:"duration"`
	AudioURL   *string         `json:"audio_url"`
	SongBlocks json.RawMessage `json:"song_blocks"`
	Tuning     *string         `json:"tuning"`
	Capo       *int            `json:"capo"`
	Transpose  *int            `json:"transpose"`
}

type outDocument struct {
	ID         *string     `json:"id"`
	Title      string      `json:"title"`
	Artist     string      `json:"artist"`
	Duration   string      `json:"duration"`
	AudioURL   *string     `json:"audio_url"`
	SongBlocks []wireBlock `json:"song_blocks"`
	Tuning     string      `json:"tuning"`
	Capo       int         `json:"capo"`
	Transpose  int         `json:"transpose"`
}

// wireBlock is the flattened union of every block variant.
type wireBlock struct {
	ID         string  `json:"id"`
	Type       Kind    `json:"type"`
	Label      string  `json:"label"`
	Content    *string `json:"content,omitempty"`
	Height     *int    `json:"height,omitempty"`
	Strings    *int    `json:"strings,omitempty"`
	EditMode   *bool   `json:"editMode,omitempty"`
	Notes      []Note  `json:"notes,omitempty"`
	OriginalID *string `json:"originalId,omitempty"`

	Instruments []drumtab.Instrument `json:"instruments,omitempty"`
}

// Decode parses a song document. Missing tuning, capo and transpose default
// to E_STANDARD, 0 and 0; song_blocks that is not an array yields no blocks;
// blocks with an unknown type are skipped.
func Decode(data []byte) (*Song, error) {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("song: decode: %w", err)
	}

	s := &Song{
		Title:    doc.Title,
		Artist:   doc.Artist,
		Duration: doc.Duration,
		Tuning:   tuning.Default,
	}
	if doc.ID != nil {
		s.ID = *doc.ID
	}
	if doc.AudioURL != nil {
		s.AudioURL = *doc.AudioURL
	}
	if doc.Tuning != nil && *doc.Tuning != "" {
		s.Tuning = *doc.Tuning
	}
	if doc.Capo != nil {
		s.Capo = *doc.Capo
	}
	if doc.Transpose != nil {
		s.Transpose = *doc.Transpose
	}

	var raw []wireBlock
	if trimmed := bytes.TrimSpace(doc.SongBlocks); len(trimmed) > 0 && trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &raw); err != nil {
			return nil, fmt.Errorf("song: decode blocks: %w", err)
		}
	}
	for _, w := range raw {
		if b := w.block(); b != nil {
			s.Blocks = append(s.Blocks, b)
		}
	}
	return s, nil
}

// Encode serializes s in the boundary shape.
func Encode(s *Song) ([]byte, error) {
	out := outDocument{
		Title:      s.Title,
		Artist:     s.Artist,
		Duration:   s.Duration,
		SongBlocks: make([]wireBlock, 0, len(s.Blocks)),
		Tuning:     s.Tuning,
		Capo:       s.Capo,
		Transpose:  s.Transpose,
	}
	if out.Tuning == "" {
		out.Tuning = tuning.Default
	}
	if s.ID != "" {
		id := s.ID
		out.ID = &id
	}
	if s.AudioURL != "" {
		u := s.AudioURL
		out.AudioURL = &u
	}
	for _, b := range s.Blocks {
		out.SongBlocks = append(out.SongBlocks, toWire(b))
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("song: encode: %w", err)
	}
	return data, nil
}

// MarshalJSON implements json.Marshaler using the boundary shape.
func (s *Song) MarshalJSON() ([]byte, error) {
	return Encode(s)
}

// UnmarshalJSON implements json.Unmarshaler using the boundary shape.
func (s *Song) UnmarshalJSON(data []byte) error {
	decoded, err := Decode(data)
	if err != nil {
		return err
	}
	*s = *decoded
	return nil
}

func (w wireBlock) block() Block {
	h := Header{ID: w.ID, Label: w.Label}
	switch w.Type {
	case KindLyrics:
		b := &Lyrics{Header: h, Content: deref(w.Content)}
		if w.Height != nil {
			b.Height = *w.Height
		}
		return b
	case KindTab:
		b := &Tab{Header: h, Strings: DefaultStrings, Notes: w.Notes}
		if w.Strings != nil {
			b.Strings = *w.Strings
		}
		if w.EditMode != nil {
			b.EditMode = *w.EditMode
		}
		return b
	case KindDrumTab:
		return &DrumTab{Header: h, Content: deref(w.Content), Instruments: w.Instruments}
	case KindReference:
		return &Reference{Header: h, OriginalID: deref(w.OriginalID)}
	}
	return nil
}

func toWire(b Block) wireBlock {
	w := wireBlock{ID: b.BlockID(), Type: b.Kind(), Label: b.BlockLabel()}
	switch v := b.(type) {
	case *Lyrics:
		w.Content = &v.Content
		w.Height = &v.Height
	case *Tab:
		w.Strings = &v.Strings
		w.EditMode = &v.EditMode
		w.Notes = v.Notes
	case *DrumTab:
		w.Content = &v.Content
		w.Instruments = v.Instruments
	case *Reference:
		w.OriginalID = &v.OriginalID
	}
	return w
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

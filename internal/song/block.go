package song

import "github.com/starford/chordbook/internal/drumtab"

// Kind discriminates the Block variants.
type Kind string

// Block kinds as they appear on the wire.
const (
	KindLyrics    Kind = "lyrics"
	KindTab       Kind = "tab"
	KindDrumTab   Kind = "drum_tab"
	KindReference Kind = "reference"
)

// Block is one titled unit of song content. The set of implementations is
// closed: *Lyrics, *Tab, *DrumTab and *Reference.
type Block interface {
	BlockID() string
	BlockLabel() string
	SetLabel(label string)
	Kind() Kind
	sealed()
}

// Header carries the attributes common to every block.
type Header struct {
	ID    string
	Label string
}

// BlockID returns the block identifier.
func (h *Header) BlockID() string { return h.ID }

// BlockLabel returns the display name.
func (h *Header) BlockLabel() string { return h.Label }

// SetLabel renames the block.
func (h *Header) SetLabel(label string) { h.Label = label }

func (h *Header) sealed() {}

// Lyrics holds multi-line text with inline [chord] annotations.
type Lyrics struct {
	Header
	Content string
	Height  int
}

// Kind implements Block.
func (*Lyrics) Kind() Kind { return KindLyrics }

// Allowed string counts for tab blocks.
const (
	MinStrings     = 6
	MaxStrings     = 8
	DefaultStrings = 6
)

// Tab is guitar tablature stored as positioned fretboard notes.
type Tab struct {
	Header
	Strings  int
	EditMode bool
	Notes    []Note
}

// Kind implements Block.
func (*Tab) Kind() Kind { return KindTab }

// StringCount returns Strings clamped into the supported range.
func (t *Tab) StringCount() int {
	switch {
	case t.Strings < MinStrings:
		return DefaultStrings
	case t.Strings > MaxStrings:
		return MaxStrings
	}
	return t.Strings
}

// Notation markers understood by the tab renderer.
const (
	NotationHammerOn = "h"
	NotationPullOff  = "p"
	NotationBend     = "b"
	NotationSlide    = "/"
)

// Note is a single fretted note. Fret is canonical: it already includes the
// tuning offset and capo that were active when the note was placed, so it
// names the position on a standard-tuned fretboard without capo.
type Note struct {
	String     int     `json:"string"`
	Fret       int     `json:"fret"`
	Position   float64 `json:"position"`
	Notation   string  `json:"notation,omitempty"`
	BendTarget *int    `json:"bendTarget,omitempty"`
}

// DrumTab is a text grid, one "<code><pad>|<pattern>|" line per instrument.
// Instruments names the codes the default kit does not know.
type DrumTab struct {
	Header
	Content     string
	Instruments []drumtab.Instrument
}

// Rows parses the grid with the block's own instrument names.
func (d *DrumTab) Rows() []drumtab.Row {
	return drumtab.ParseWith(d.Content, d.Instruments)
}

// SetRows stores rows as the grid content and keeps the names the text
// cannot carry.
func (d *DrumTab) SetRows(rows []drumtab.Row) {
	d.Content = drumtab.Serialize(rows)
	d.Instruments = drumtab.Custom(rows)
}

// Kind implements Block.
func (*DrumTab) Kind() Kind { return KindDrumTab }

// Reference shows another block's content under its own label.
type Reference struct {
	Header
	OriginalID string
}

// Kind implements Block.
func (*Reference) Kind() Kind { return KindReference }

// Clone returns a deep copy of b.
func Clone(b Block) Block {
	switch v := b.(type) {
	case *Lyrics:
		c := *v
		return &c
	case *Tab:
		c := *v
		c.Notes = make([]Note, len(v.Notes))
		for i, n := range v.Notes {
			if n.BendTarget != nil {
				bt := *n.BendTarget
				n.BendTarget = &bt
			}
			c.Notes[i] = n
		}
		return &c
	case *DrumTab:
		c := *v
		c.Instruments = append([]drumtab.Instrument(nil), v.Instruments...)
		return &c
	case *Reference:
		c := *v
		return &c
	}
	return nil
}

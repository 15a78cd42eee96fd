// Package render turns a song document into display-ready sections for the
// preview and print outputs. Text, HTML and PDF formatters share the same
// section data and differ only in markup.
package render

import (
	"strings"

	"github.com/starford/chordbook/internal/chordline"
	"github.com/starford/chordbook/internal/fretboard"
	"github.com/starford/chordbook/internal/song"
)

// UnknownSection is shown in place of a reference whose target is missing.
const UnknownSection = "Unknown Section"

// LineKind tags a rendered line for styling.
type LineKind string

const (
	LineChords LineKind = "chords"
	LineLyrics LineKind = "lyrics"
	LineTab    LineKind = "tab"
	LineDrum   LineKind = "drum"
	LineNotice LineKind = "notice"
)

// Line is one output line of a section.
type Line struct {
	Kind LineKind `json:"kind"`
	Text string   `json:"text"`
}

// Section is the rendered form of one block. Label is always the block's own
// label; Kind is the kind of the block it resolved to, empty for a
// placeholder.
type Section struct {
	ID          string    `json:"id"`
	Label       string    `json:"label"`
	Kind        song.Kind `json:"kind,omitempty"`
	Reference   bool      `json:"reference,omitempty"`
	Placeholder bool      `json:"placeholder,omitempty"`
	Lines       []Line    `json:"lines"`
}

// Output is a rendered song.
type Output struct {
	Title    string       `json:"title"`
	Artist   string       `json:"artist,omitempty"`
	Context  song.Context `json:"context"`
	Sections []Section    `json:"sections"`
}

// View selects which block kinds appear in the output.
type View string

const (
	ViewFull    View = "full"
	ViewDrummer View = "drummer"
)

// ParseView maps a query value onto a View. Unknown values yield ViewFull.
func ParseView(s string) View {
	if View(strings.ToLower(strings.TrimSpace(s))) == ViewDrummer {
		return ViewDrummer
	}
	return ViewFull
}

// Keeps reports whether sections of kind k belong in the view. Placeholders
// are kept in every view.
func (v View) Keeps(k song.Kind) bool {
	if v != ViewDrummer {
		return true
	}
	return k == "" || k == song.KindLyrics || k == song.KindDrumTab
}

// Options control a render pass.
type Options struct {
	Geometry fretboard.Geometry
	View     View
}

// DefaultOptions renders every block with the stock fretboard geometry.
func DefaultOptions() Options {
	return Options{Geometry: fretboard.DefaultGeometry(), View: ViewFull}
}

// Document renders s under its own context.
func Document(s *song.Song, opts Options) Output {
	out := Blocks(s.Blocks, s.Context(), opts)
	out.Title = s.Title
	out.Artist = s.Artist
	return out
}

// Blocks renders blocks in stored order under ctx. A reference renders its
// target's content under its own heading; an unresolved one becomes a
// placeholder and the rest of the document still renders.
func Blocks(blocks []song.Block, ctx song.Context, opts Options) Output {
	if opts.View == "" {
		opts.View = ViewFull
	}
	lookup := song.NewLookup(blocks)
	out := Output{Context: ctx, Sections: make([]Section, 0, len(blocks))}
	for _, b := range blocks {
		sec := Section{ID: b.BlockID(), Label: b.BlockLabel(), Reference: b.Kind() == song.KindReference}
		target, ok := lookup.Resolve(b)
		if !ok {
			sec.Placeholder = true
			sec.Lines = []Line{{Kind: LineNotice, Text: UnknownSection}}
			out.Sections = append(out.Sections, sec)
			continue
		}
		sec.Kind = target.Kind()
		if !opts.View.Keeps(sec.Kind) {
			continue
		}
		sec.Lines = blockLines(target, ctx, opts)
		out.Sections = append(out.Sections, sec)
	}
	return out
}

func blockLines(b song.Block, ctx song.Context, opts Options) []Line {
	switch v := b.(type) {
	case *song.Lyrics:
		content := chordline.TransposeContent(v.Content, ctx.Transpose)
		var lines []Line
		for _, r := range chordline.ParseContent(content) {
			lines = append(lines,
				Line{Kind: LineChords, Text: r.ChordLine},
				Line{Kind: LineLyrics, Text: r.LyricLine},
			)
		}
		return lines
	case *song.Tab:
		text := fretboard.RenderTabText(v, ctx, opts.Geometry)
		if text == fretboard.OutOfRange {
			return []Line{{Kind: LineNotice, Text: text}}
		}
		return splitLines(text, LineTab)
	case *song.DrumTab:
		return splitLines(v.Content, LineDrum)
	}
	return nil
}

func splitLines(text string, kind LineKind) []Line {
	parts := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	lines := make([]Line, len(parts))
	for i, p := range parts {
		lines[i] = Line{Kind: kind, Text: p}
	}
	return lines
}

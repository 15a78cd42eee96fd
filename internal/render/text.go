package render

import (
	"strconv"
	"strings"

	"github.com/starford/chordbook/internal/tuning"
)

// HeaderLines returns the metadata lines printed above the first section.
// They use the "key: value" hints the importer reads back.
func HeaderLines(out Output) []string {
	var lines []string
	if out.Title != "" {
		lines = append(lines, "title: "+out.Title)
	}
	if out.Artist != "" {
		lines = append(lines, "artist: "+out.Artist)
	}
	if out.Context.Tuning != "" && out.Context.Tuning != tuning.Default {
		lines = append(lines, "tuning: "+tuning.Resolve(out.Context.Tuning).Name)
	}
	if out.Context.Capo > 0 {
		lines = append(lines, "capo: "+strconv.Itoa(out.Context.Capo))
	}
	return lines
}

// Heading is the text form of a section heading.
func Heading(sec Section) string {
	return "[" + sec.Label + "]"
}

// Visible returns the lines of sec that are printed. A chord line is
// dropped when its lyric line carries no chords.
func Visible(sec Section) []Line {
	out := make([]Line, 0, len(sec.Lines))
	for _, l := range sec.Lines {
		if l.Kind == LineChords && l.Text == "" {
			continue
		}
		out = append(out, l)
	}
	return out
}

// Text renders out as plain monospace text.
func Text(out Output) string {
	var b strings.Builder
	head := HeaderLines(out)
	for _, l := range head {
		b.WriteString(l)
		b.WriteByte('\n')
	}
	for i, sec := range out.Sections {
		if i > 0 || len(head) > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(Heading(sec))
		b.WriteByte('\n')
		for _, l := range Visible(sec) {
			b.WriteString(l.Text)
			b.WriteByte('\n')
		}
	}
	return b.String()
}

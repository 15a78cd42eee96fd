// Package chordline splits lyric lines with inline [chord] annotations into
// an aligned chord line and lyric line, and transposes those annotations.
package chordline

import (
	"regexp"
	"strings"

	"golang.org/x/text/width"

	"github.com/starford/chordbook/internal/pitch"
)

var chordTokenRe = regexp.MustCompile(`\[([^\[\]]*)\]`)

// Rendered is one source line split for monospace display.
type Rendered struct {
	ChordLine string `json:"chordLine"`
	LyricLine string `json:"lyricLine"`
}

// ParseLineForRender builds a chord line and a lyric line of equal visual
// length: each chord is written into the chord line at its column while the
// lyric line receives spaces of the same width, and plain text advances the
// chord line by blanks. Empty or whitespace-only input yields single spaces
// so the rendered line keeps its height.
func ParseLineForRender(line string) Rendered {
	if strings.TrimSpace(line) == "" {
		return Rendered{ChordLine: " ", LyricLine: " "}
	}

	var chords, lyrics strings.Builder
	last := 0
	for _, m := range chordTokenRe.FindAllStringSubmatchIndex(line, -1) {
		text := line[last:m[0]]
		lyrics.WriteString(text)
		chords.WriteString(blank(Width(text)))

		chord := line[m[2]:m[3]]
		chords.WriteString(chord)
		lyrics.WriteString(blank(Width(chord)))
		last = m[1]
	}
	tail := line[last:]
	lyrics.WriteString(tail)
	chords.WriteString(blank(Width(tail)))

	return Rendered{
		ChordLine: strings.TrimRight(chords.String(), " \t"),
		LyricLine: strings.TrimRight(lyrics.String(), " \t"),
	}
}

// ParseContent renders every line of a lyrics block.
func ParseContent(content string) []Rendered {
	lines := strings.Split(strings.ReplaceAll(content, "\r\n", "\n"), "\n")
	out := make([]Rendered, len(lines))
	for i, l := range lines {
		out[i] = ParseLineForRender(l)
	}
	return out
}

// TransposeLine replaces every [X] in line with [X transposed by amount].
func TransposeLine(line string, amount int) string {
	if amount%12 == 0 {
		return line
	}
	return chordTokenRe.ReplaceAllStringFunc(line, func(tok string) string {
		inner := tok[1 : len(tok)-1]
		return "[" + pitch.TransposeChord(inner, amount) + "]"
	})
}

// TransposeContent applies TransposeLine to every line of content.
func TransposeContent(content string, amount int) string {
	if amount%12 == 0 {
		return content
	}
	lines := strings.Split(content, "\n")
	for i, l := range lines {
		lines[i] = TransposeLine(l, amount)
	}
	return strings.Join(lines, "\n")
}

// Chords returns the chord symbols in line in order of appearance.
func Chords(line string) []string {
	var out []string
	for _, m := range chordTokenRe.FindAllStringSubmatch(line, -1) {
		out = append(out, m[1])
	}
	return out
}

// Width returns the monospace column width of s. East Asian wide and
// fullwidth runes occupy two columns.
func Width(s string) int {
	n := 0
	for _, r := range s {
		switch width.LookupRune(r).Kind() {
		case width.EastAsianWide, width.EastAsianFullwidth:
			n += 2
		default:
			n++
		}
	}
	return n
}

func blank(n int) string {
	return strings.Repeat(" ", n)
}

// Package pitch implements chromatic note arithmetic for chord symbols.
package pitch

import "regexp"

// Scale is the sharp-named chromatic scale used for every transposed output.
var Scale = [12]string{"A", "A#", "B", "C", "C#", "D", "D#", "E", "F", "F#", "G", "G#"}

// flatToSharp covers the flat spellings that are not enharmonically a natural note.
var flatToSharp = map[string]string{
	"Bb": "A#",
	"Db": "C#",
	"Eb": "D#",
	"Gb": "F#",
	"Ab": "G#",
}

var chordRe = regexp.MustCompile(`^([A-G])([#b]?)(.*)$`)

// Index returns the position of a note name in Scale. Flat spellings are
// normalized first. ok is false for names outside the table (Cb, Fb, E#...).
func Index(note string) (idx int, ok bool) {
	if sharp, found := flatToSharp[note]; found {
		note = sharp
	}
	for i, n := range Scale {
		if n == note {
			return i, true
		}
	}
	return 0, false
}

// Shift moves a scale index by semitones, wrapping into 0..11.
func Shift(idx, semitones int) int {
	return ((idx+semitones)%12 + 12) % 12
}

// Split separates a chord symbol into its root note and the remainder
// (quality, extension, slash bass). ok is false when symbol has no A-G root.
func Split(symbol string) (root, rest string, ok bool) {
	m := chordRe.FindStringSubmatch(symbol)
	if m == nil {
		return "", symbol, false
	}
	return m[1] + m[2], m[3], true
}

// TransposeChord shifts the root of a chord symbol by semitones. The result
// always uses sharp spelling; the remainder is kept verbatim. Symbols that do
// not parse are returned unchanged.
func TransposeChord(symbol string, semitones int) string {
	root, rest, ok := Split(symbol)
	if !ok {
		return symbol
	}
	idx, ok := Index(root)
	if !ok {
		return symbol
	}
	return Scale[Shift(idx, semitones)] + rest
}

// IsChord reports whether symbol starts with a transposable root.
func IsChord(symbol string) bool {
	root, _, ok := Split(symbol)
	if !ok {
		return false
	}
	_, ok = Index(root)
	return ok
}

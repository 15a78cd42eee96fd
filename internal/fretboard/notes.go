package fretboard

import (
	"github.com/starford/chordbook/internal/song"
)

// AddNote appends a note played at fret on string str. The stored fret has
// the placement offset of ctx added. It returns the new note index, or -1 if
// the string or fret is outside the block's range.
func AddNote(b *song.Tab, str, fret int, position float64, ctx song.Context) int {
	if str < 0 || str >= b.StringCount() || fret < 0 || !finite(position) {
		return -1
	}
	b.Notes = append(b.Notes, song.Note{
		String:   str,
		Fret:     StoredFret(fret, ctx),
		Position: position,
	})
	return len(b.Notes) - 1
}

// PlaceAt adds a note from a diagram click. ok is false when the click does
// not land on the fretboard.
func PlaceAt(b *song.Tab, x, y float64, ctx song.Context, g Geometry) (int, bool) {
	spot, ok := g.FromCoordinate(x, y, b.StringCount())
	if !ok {
		return -1, false
	}
	i := AddNote(b, spot.String, spot.Fret, spot.Position, ctx)
	return i, i >= 0
}

// DeleteNote removes note i. Out-of-range indexes are ignored.
func DeleteNote(b *song.Tab, i int) bool {
	if i < 0 || i >= len(b.Notes) {
		return false
	}
	b.Notes = append(b.Notes[:i], b.Notes[i+1:]...)
	return true
}

// MoveNote changes the string and horizontal position of note i, keeping
// its stored fret.
func MoveNote(b *song.Tab, i, newString int, newPosition float64) bool {
	if i < 0 || i >= len(b.Notes) || newString < 0 || newString >= b.StringCount() || !finite(newPosition) {
		return false
	}
	b.Notes[i].String = newString
	b.Notes[i].Position = newPosition
	return true
}

// DragNote drops note i at a diagram coordinate. String, position and fret
// are all recomputed from the drop point using the placement offset of ctx,
// exactly as a fresh placement would.
func DragNote(b *song.Tab, i int, x, y float64, ctx song.Context, g Geometry) bool {
	if i < 0 || i >= len(b.Notes) {
		return false
	}
	spot, ok := g.FromCoordinate(x, y, b.StringCount())
	if !ok {
		return false
	}
	n := &b.Notes[i]
	n.String = spot.String
	n.Fret = StoredFret(spot.Fret, ctx)
	n.Position = spot.Position
	return true
}

// SetNotation marks note i with a notation marker. bendFret, when given, is
// the bend target as played under ctx.
func SetNotation(b *song.Tab, i int, notation string, bendFret *int, ctx song.Context) bool {
	if i < 0 || i >= len(b.Notes) {
		return false
	}
	n := &b.Notes[i]
	n.Notation = notation
	n.BendTarget = nil
	if notation == song.NotationBend && bendFret != nil && *bendFret >= 0 {
		stored := StoredFret(*bendFret, ctx)
		n.BendTarget = &stored
	}
	return true
}

// Glyph is one note drawn on the interactive diagram.
type Glyph struct {
	Index    int     `json:"index"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Fret     int     `json:"fret"`
	Label    string  `json:"label"`
	Selected bool    `json:"selected"`
}

// Overlay lays out the visible notes of b under ctx. Notes whose displayed
// fret is negative are left out; they stay in the model. selected is the
// index of the highlighted note, or -1.
func Overlay(b *song.Tab, ctx song.Context, g Geometry, selected int) []Glyph {
	out := make([]Glyph, 0, len(b.Notes))
	for i, n := range b.Notes {
		label, fret, ok := noteToken(n, ctx, b.StringCount())
		if !ok {
			continue
		}
		out = append(out, Glyph{
			Index:    i,
			X:        n.Position,
			Y:        g.StringY(n.String),
			Fret:     fret,
			Label:    label,
			Selected: i == selected,
		})
	}
	return out
}

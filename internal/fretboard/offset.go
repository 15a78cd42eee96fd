// Package fretboard maintains the positioned notes of a tab block and maps
// between diagram coordinates, canonical frets and rendered tablature.
package fretboard

import (
	"github.com/starford/chordbook/internal/song"
	"github.com/starford/chordbook/internal/tuning"
)

// Phase selects which offsets contribute to the total offset.
type Phase int

const (
	// Placement is the moment a note is put on the fretboard: tuning + capo.
	Placement Phase = iota
	// Render is display time: tuning + capo + transpose.
	Render
)

// TotalOffset is the single place where the offset convention lives. Stored
// frets are canonical (standard tuning, no capo); placement adds the
// placement offset and rendering subtracts the render offset.
func TotalOffset(ctx song.Context, phase Phase) int {
	off := tuning.Resolve(ctx.Tuning).Offset + ctx.Capo
	if phase == Render {
		off += ctx.Transpose
	}
	return off
}

// StoredFret converts a fret as physically played under ctx into the
// canonical fret kept in the model.
func StoredFret(selected int, ctx song.Context) int {
	return selected + TotalOffset(ctx, Placement)
}

// DisplayedFret converts a canonical fret into the fret shown under ctx.
// A negative result means the note is out of range for ctx.
func DisplayedFret(stored int, ctx song.Context) int {
	return stored - TotalOffset(ctx, Render)
}

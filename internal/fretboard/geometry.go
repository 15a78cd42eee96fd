package fretboard

import "math"

// Geometry is the presentation-layer coordinate system of the fretboard
// diagram. It is the only place pixel sizes enter the model.
type Geometry struct {
	NutWidth      float64 `yaml:"nut_width" json:"nutWidth"`
	FretSpacing   float64 `yaml:"fret_spacing" json:"fretSpacing"`
	StringSpacing float64 `yaml:"string_spacing" json:"stringSpacing"`
	ColumnWidth   float64 `yaml:"column_width" json:"columnWidth"`
	MaxFrets      int     `yaml:"max_frets" json:"maxFrets"`
}

// DefaultGeometry matches the editor's stock diagram.
func DefaultGeometry() Geometry {
	return Geometry{
		NutWidth:      40,
		FretSpacing:   50,
		StringSpacing: 24,
		ColumnWidth:   20,
		MaxFrets:      24,
	}
}

// Spot is a (string, fret) pair plus the horizontal position it was taken at.
type Spot struct {
	String   int
	Fret     int
	Position float64
}

// FromCoordinate maps a click at (x, y) to a string and fret. ok is false for
// non-finite input and for points outside the instrument's strings or frets.
func (g Geometry) FromCoordinate(x, y float64, stringCount int) (Spot, bool) {
	if !finite(x) || !finite(y) || g.StringSpacing <= 0 || g.FretSpacing <= 0 {
		return Spot{}, false
	}
	str := int(math.Floor(y / g.StringSpacing))
	fret := int(math.Round((x - g.NutWidth) / g.FretSpacing))
	if str < 0 || str >= stringCount || fret < 0 || fret > g.MaxFrets {
		return Spot{}, false
	}
	return Spot{String: str, Fret: fret, Position: x}, true
}

// StringY returns the vertical centre of string i.
func (g Geometry) StringY(i int) float64 {
	return float64(i)*g.StringSpacing + g.StringSpacing/2
}

// Column buckets a horizontal position into a tab text column.
func (g Geometry) Column(position float64) int {
	if g.ColumnWidth <= 0 || !finite(position) {
		return 0
	}
	return max(0, int(math.Floor((position-g.NutWidth)/g.ColumnWidth)))
}

// PositionForColumn is the inverse of Column, returning the left edge of col.
func (g Geometry) PositionForColumn(col int) float64 {
	return g.NutWidth + float64(col)*g.ColumnWidth
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

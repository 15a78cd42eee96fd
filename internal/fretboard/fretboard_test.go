package fretboard

import (
	"math"
	"strings"
	"testing"

	"github.com/starford/chordbook/internal/song"
)

func ctx(tuning string, capo, transpose int) song.Context {
	return song.Context{Tuning: tuning, Capo: capo, Transpose: transpose}
}

func newTab() *song.Tab {
	return &song.Tab{Header: song.Header{ID: "t", Label: "Riff"}, Strings: 6}
}

func TestTotalOffset(t *testing.T) {
	c := ctx("D_STANDARD", 3, 1)
	if got := TotalOffset(c, Placement); got != 1 {
		t.Errorf("placement offset = %d, want -2+3 = 1", got)
	}
	if got := TotalOffset(c, Render); got != 2 {
		t.Errorf("render offset = %d, want -2+3+1 = 2", got)
	}
	if got := TotalOffset(ctx("UNKNOWN", 0, 0), Render); got != 0 {
		t.Errorf("unknown tuning offset = %d, want 0", got)
	}
}

func TestPlacementRoundTrip(t *testing.T) {
	b := newTab()
	placed := ctx("E_STANDARD", 2, 0)
	i := AddNote(b, 0, 5, 40, placed)
	if i != 0 {
		t.Fatalf("AddNote index = %d", i)
	}
	if b.Notes[0].Fret != 7 {
		t.Fatalf("stored fret = %d, want 7", b.Notes[0].Fret)
	}

	if got := DisplayedFret(b.Notes[0].Fret, ctx("E_STANDARD", 0, 0)); got != 7 {
		t.Errorf("displayed without capo = %d, want 7", got)
	}
	if got := DisplayedFret(b.Notes[0].Fret, placed); got != 5 {
		t.Errorf("displayed under original context = %d, want 5", got)
	}
}

func TestRoundTripAcrossContexts(t *testing.T) {
	for _, tu := range []string{"E_STANDARD", "EB_STANDARD", "D_STANDARD", "B_STANDARD"} {
		for capo := 0; capo <= 7; capo++ {
			c := ctx(tu, capo, 0)
			for fret := 0; fret <= 12; fret++ {
				if got := DisplayedFret(StoredFret(fret, c), c); got != fret {
					t.Fatalf("%s capo %d fret %d round-trips to %d", tu, capo, fret, got)
				}
			}
		}
	}
}

func TestAddNote_Rejects(t *testing.T) {
	b := newTab()
	c := song.DefaultContext()
	if AddNote(b, 6, 1, 40, c) != -1 {
		t.Error("string 6 on a 6-string tab should be rejected")
	}
	if AddNote(b, 0, -1, 40, c) != -1 {
		t.Error("negative fret should be rejected")
	}
	if AddNote(b, 0, 1, math.NaN(), c) != -1 {
		t.Error("NaN position should be rejected")
	}
	if len(b.Notes) != 0 {
		t.Errorf("notes = %d, want 0", len(b.Notes))
	}
}

func TestFromCoordinate(t *testing.T) {
	g := DefaultGeometry()

	spot, ok := g.FromCoordinate(190, 53, 6)
	if !ok || spot.String != 2 || spot.Fret != 3 || spot.Position != 190 {
		t.Errorf("FromCoordinate(190, 53) = %+v, %v", spot, ok)
	}
	spot, ok = g.FromCoordinate(210, 0, 6)
	if !ok || spot.Fret != 3 || spot.String != 0 {
		t.Errorf("rounding: %+v, %v", spot, ok)
	}

	bad := [][2]float64{
		{math.NaN(), 10},
		{100, math.Inf(1)},
		{100, -1},
		{100, 6*24 + 1},
		{40 + 25*50, 10},
		{-100, 10},
	}
	for _, p := range bad {
		if _, ok := g.FromCoordinate(p[0], p[1], 6); ok {
			t.Errorf("FromCoordinate(%v, %v) should be rejected", p[0], p[1])
		}
	}

	if _, ok := g.FromCoordinate(100, 7*24+1, 8); !ok {
		t.Error("string 7 should be valid on an 8-string")
	}
}

func TestPlaceAt(t *testing.T) {
	b := newTab()
	i, ok := PlaceAt(b, 90, 30, ctx("E_STANDARD", 1, 0), DefaultGeometry())
	if !ok || i != 0 {
		t.Fatalf("PlaceAt = %d, %v", i, ok)
	}
	n := b.Notes[0]
	if n.String != 1 || n.Fret != 2 || n.Position != 90 {
		t.Errorf("note = %+v, want string 1 stored fret 1+1", n)
	}
	if _, ok := PlaceAt(b, math.NaN(), 30, song.DefaultContext(), DefaultGeometry()); ok {
		t.Error("NaN click should be a no-op")
	}
}

func TestMoveKeepsFret_DragRecomputes(t *testing.T) {
	b := newTab()
	g := DefaultGeometry()
	AddNote(b, 0, 5, 40, ctx("E_STANDARD", 2, 0))

	if !MoveNote(b, 0, 3, 120) {
		t.Fatal("MoveNote failed")
	}
	if n := b.Notes[0]; n.String != 3 || n.Position != 120 || n.Fret != 7 {
		t.Errorf("after move = %+v, want fret unchanged", n)
	}
	if MoveNote(b, 5, 0, 0) || MoveNote(b, 0, 9, 0) {
		t.Error("invalid move should be rejected")
	}

	// Drop at fret 3 on string 1 with capo 4.
	if !DragNote(b, 0, 40+3*50, 30, ctx("E_STANDARD", 4, 0), g) {
		t.Fatal("DragNote failed")
	}
	if n := b.Notes[0]; n.String != 1 || n.Fret != 7 || n.Position != 190 {
		t.Errorf("after drag = %+v, want stored 3+4", n)
	}
	if DragNote(b, 0, -500, 30, song.DefaultContext(), g) {
		t.Error("drag off the board should be a no-op")
	}
}

func TestDeleteNote(t *testing.T) {
	b := newTab()
	c := song.DefaultContext()
	AddNote(b, 0, 1, 40, c)
	AddNote(b, 1, 2, 60, c)
	if !DeleteNote(b, 0) {
		t.Fatal("DeleteNote failed")
	}
	if len(b.Notes) != 1 || b.Notes[0].Fret != 2 {
		t.Errorf("notes = %+v", b.Notes)
	}
	if DeleteNote(b, 3) || DeleteNote(b, -1) {
		t.Error("out of range delete should be ignored")
	}
}

func TestSuppressionKeepsModel(t *testing.T) {
	b := newTab()
	g := DefaultGeometry()
	AddNote(b, 0, 1, 40, song.DefaultContext())

	high := ctx("E_STANDARD", 3, 0)
	if got := Overlay(b, high, g, -1); len(got) != 0 {
		t.Errorf("overlay = %+v, want no glyphs", got)
	}
	if got := RenderTabText(b, high, g); got != OutOfRange {
		t.Errorf("tab text = %q, want out of range sentinel", got)
	}
	if len(b.Notes) != 1 {
		t.Fatal("suppressed note was removed from the model")
	}

	back := song.DefaultContext()
	if got := Overlay(b, back, g, -1); len(got) != 1 || got[0].Fret != 1 {
		t.Errorf("overlay after revert = %+v", got)
	}
	if got := RenderTabText(b, back, g); !strings.HasPrefix(got, "e |1") {
		t.Errorf("tab after revert = %q", got)
	}
}

func TestOverlay(t *testing.T) {
	b := newTab()
	g := DefaultGeometry()
	c := song.DefaultContext()
	AddNote(b, 2, 3, 190, c)
	AddNote(b, 0, 0, 40, c)
	SetNotation(b, 0, song.NotationHammerOn, nil, c)

	got := Overlay(b, c, g, 1)
	if len(got) != 2 {
		t.Fatalf("glyphs = %d, want 2", len(got))
	}
	if got[0].X != 190 || got[0].Y != g.StringY(2) || got[0].Label != "3h" || got[0].Selected {
		t.Errorf("glyph 0 = %+v", got[0])
	}
	if !got[1].Selected || got[1].Index != 1 {
		t.Errorf("glyph 1 = %+v", got[1])
	}
}

func TestRenderTabText_ColumnPacking(t *testing.T) {
	b := newTab()
	c := song.DefaultContext()
	AddNote(b, 0, 7, 100, c)
	AddNote(b, 0, 5, 40, c)
	AddNote(b, 1, 12, 40, c)

	got := strings.Split(RenderTabText(b, c, DefaultGeometry()), "\n")
	want := []string{
		"e |5--7-|",
		"B |12---|",
		"G |-----|",
		"D |-----|",
		"A |-----|",
		"E |-----|",
	}
	if len(got) != len(want) {
		t.Fatalf("lines = %d, want %d:\n%s", len(got), len(want), strings.Join(got, "\n"))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestRenderTabText_CatchUpPadding(t *testing.T) {
	b := newTab()
	c := song.DefaultContext()
	AddNote(b, 5, 0, 40+4*20, c) // column 4

	lines := strings.Split(RenderTabText(b, c, DefaultGeometry()), "\n")
	if lines[5] != "E |----0-|" {
		t.Errorf("low E = %q", lines[5])
	}
	if lines[0] != "e |------|" {
		t.Errorf("high e = %q", lines[0])
	}
}

func TestRenderTabText_SameStringSameColumn(t *testing.T) {
	b := newTab()
	c := song.DefaultContext()
	AddNote(b, 0, 3, 41, c)
	AddNote(b, 0, 5, 45, c)

	lines := strings.Split(RenderTabText(b, c, DefaultGeometry()), "\n")
	if lines[0] != "e |3-5-|" {
		t.Errorf("high e = %q", lines[0])
	}
}

func TestRenderTabText_TransposeAndTuning(t *testing.T) {
	b := newTab()
	AddNote(b, 0, 5, 40, ctx("D_STANDARD", 0, 0))

	lines := strings.Split(RenderTabText(b, ctx("D_STANDARD", 0, 0), DefaultGeometry()), "\n")
	if lines[0] != "d |5-|" {
		t.Errorf("line = %q, want d |5-|", lines[0])
	}
	lines = strings.Split(RenderTabText(b, ctx("D_STANDARD", 0, 2), DefaultGeometry()), "\n")
	if lines[0] != "d |3-|" {
		t.Errorf("transposed line = %q, want d |3-|", lines[0])
	}
}

func TestRenderTabText_Bend(t *testing.T) {
	b := newTab()
	c := ctx("E_STANDARD", 2, 0)
	AddNote(b, 1, 5, 40, c)
	target := 7
	SetNotation(b, 0, song.NotationBend, &target, c)

	lines := strings.Split(RenderTabText(b, c, DefaultGeometry()), "\n")
	if lines[1] != "B |5b7-|" {
		t.Errorf("bend line = %q", lines[1])
	}
}

func TestRenderTabText_EmptyBlock(t *testing.T) {
	got := RenderTabText(newTab(), song.DefaultContext(), DefaultGeometry())
	if got == OutOfRange {
		t.Fatal("empty block should render a blank staff, not the sentinel")
	}
	lines := strings.Split(got, "\n")
	if len(lines) != 6 || lines[0] != "e |"+strings.Repeat("-", 16)+"|" {
		t.Errorf("empty staff = %q", got)
	}
}

func TestRenderTabText_SevenString(t *testing.T) {
	b := &song.Tab{Strings: 7}
	AddNote(b, 6, 0, 40, song.DefaultContext())
	lines := strings.Split(RenderTabText(b, song.DefaultContext(), DefaultGeometry()), "\n")
	if len(lines) != 7 || lines[6] != "B |0-|" {
		t.Errorf("7-string = %q", lines)
	}
}

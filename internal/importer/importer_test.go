package importer

import (
	"reflect"
	"strings"
	"testing"

	"github.com/starford/chordbook/internal/chordline"
	"github.com/starford/chordbook/internal/fretboard"
	"github.com/starford/chordbook/internal/render"
	"github.com/starford/chordbook/internal/song"
)

const sheet = `title: Wish
artist: Band
capo: 2
tuning: Drop D

[Intro]
e|-----0---|
B|---1-----|
G|-2-------|
D|---------|
A|---------|
D|---------|

[Verse]
C       G
Hello there
Am
  words

Chorus
[F]La la

[Verse]

[Chorus]
HH|x-x-|
BD|o---|
`

func TestImport_Sheet(t *testing.T) {
	res := Import(sheet, fretboard.DefaultGeometry())

	if res.Title != "Wish" || res.Artist != "Band" {
		t.Errorf("title/artist = %q/%q", res.Title, res.Artist)
	}
	if res.Context.Capo != 2 || res.Context.Tuning != "DROP_D" {
		t.Errorf("context = %+v", res.Context)
	}

	var kinds, labels []string
	for _, b := range res.Blocks {
		kinds = append(kinds, string(b.Kind()))
		labels = append(labels, b.BlockLabel())
	}
	wantKinds := []string{"tab", "lyrics", "lyrics", "reference", "drum_tab"}
	wantLabels := []string{"Intro", "Verse", "Chorus", "Verse", "Chorus"}
	if !reflect.DeepEqual(kinds, wantKinds) || !reflect.DeepEqual(labels, wantLabels) {
		t.Fatalf("blocks = %v %v", kinds, labels)
	}

	verse := res.Blocks[1].(*song.Lyrics)
	if verse.Content != "[C]Hello th[G]ere\n[Am]  words" {
		t.Errorf("verse = %q", verse.Content)
	}
	if got := res.Blocks[2].(*song.Lyrics).Content; got != "[F]La la" {
		t.Errorf("chorus = %q", got)
	}
	ref := res.Blocks[3].(*song.Reference)
	if ref.OriginalID != verse.ID {
		t.Errorf("reference points at %q, want %q", ref.OriginalID, verse.ID)
	}
	if got := res.Blocks[4].(*song.DrumTab).Content; got != "HH|x-x-|\nBD|o---|" {
		t.Errorf("drums = %q", got)
	}

	seen := map[string]bool{}
	for _, b := range res.Blocks {
		if b.BlockID() == "" || seen[b.BlockID()] {
			t.Errorf("bad block id %q", b.BlockID())
		}
		seen[b.BlockID()] = true
	}
}

func TestImport_TabNotesUseHintedContext(t *testing.T) {
	g := fretboard.DefaultGeometry()
	res := Import(sheet, g)
	tab := res.Blocks[0].(*song.Tab)

	if tab.StringCount() != 6 || len(tab.Notes) != 3 {
		t.Fatalf("tab = %d strings, %d notes", tab.StringCount(), len(tab.Notes))
	}
	n := tab.Notes[0]
	if n.String != 0 || n.Position != g.PositionForColumn(5) || n.Fret != 2 {
		t.Errorf("first note = %+v, want string 0 stored 0+capo", n)
	}

	lines := strings.Split(fretboard.RenderTabText(tab, res.Context, g), "\n")
	if !strings.Contains(lines[0], "0") || !strings.Contains(lines[1], "1") || !strings.Contains(lines[2], "2") {
		t.Errorf("rendered under import context:\n%s", strings.Join(lines, "\n"))
	}
}

func TestImport_Notation(t *testing.T) {
	text := "e|--5h7--8b10--3p0--|\nB|--------------------|"
	res := Import(text, fretboard.DefaultGeometry())
	if len(res.Blocks) != 1 {
		t.Fatalf("blocks = %d", len(res.Blocks))
	}
	tab := res.Blocks[0].(*song.Tab)
	var got []string
	for _, n := range tab.Notes {
		tok := n.Notation
		if n.BendTarget != nil {
			tok += "@" + string(rune('0'+*n.BendTarget%10))
		}
		got = append(got, tok)
	}
	want := []string{"h", "", "b@0", "p", ""}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("notations = %q, want %q", got, want)
	}
	if tab.Label != "Tab" {
		t.Errorf("label = %q", tab.Label)
	}
}

func TestImport_SevenStringStaff(t *testing.T) {
	staff := strings.Repeat("x|--1--|\n", 7)
	tab := Import(staff, fretboard.DefaultGeometry()).Blocks[0].(*song.Tab)
	if tab.Strings != 7 || len(tab.Notes) != 7 {
		t.Errorf("strings = %d, notes = %d", tab.Strings, len(tab.Notes))
	}
}

func TestImport_ChordLineWithoutLyric(t *testing.T) {
	res := Import("[Intro]\nG   D   Em  C\n\n", fretboard.DefaultGeometry())
	if len(res.Blocks) != 1 {
		t.Fatalf("blocks = %d", len(res.Blocks))
	}
	got := res.Blocks[0].(*song.Lyrics).Content
	if got != "[G]    [D]    [Em]    [C]" {
		t.Errorf("content = %q", got)
	}
}

func TestImport_NormalizesAndDefaults(t *testing.T) {
	// "e" followed by a combining acute composes to a single rune.
	res := Import("Café\r\nsecond line", fretboard.DefaultGeometry())
	if res.Context != song.DefaultContext() {
		t.Errorf("context = %+v", res.Context)
	}
	got := res.Blocks[0].(*song.Lyrics)
	if got.Content != "Caf\u00e9\nsecond line" || got.Label != "Lyrics" {
		t.Errorf("lyrics = %+v", got)
	}
}

func TestImport_UnknownTuningIgnored(t *testing.T) {
	res := Import("tuning: open banjo\ncapo: none\nla", fretboard.DefaultGeometry())
	if res.Context.Tuning != "E_STANDARD" || res.Context.Capo != 0 {
		t.Errorf("context = %+v", res.Context)
	}
}

func TestImport_EmptyHeaderFirstTime(t *testing.T) {
	res := Import("[Outro]\n", fretboard.DefaultGeometry())
	if len(res.Blocks) != 1 || res.Blocks[0].Kind() != song.KindLyrics || res.Blocks[0].BlockLabel() != "Outro" {
		t.Errorf("blocks = %+v", res.Blocks)
	}
}

func TestHeaderDetection(t *testing.T) {
	cases := map[string]bool{
		"[Verse 1]":      true,
		"Chorus:":        true,
		"Pre-Chorus":     true,
		"Bridge (x2)":    true,
		"[Am]":           false,
		"Verse of mine":  false,
		"[C]with lyrics": false,
	}
	for line, want := range cases {
		if _, got := header(line); got != want {
			t.Errorf("header(%q) = %v, want %v", line, got, want)
		}
	}
}

func TestMerge_WideRunes(t *testing.T) {
	// Each CJK rune is two columns wide, so column 4 falls after two runes.
	got := Merge("C   G", "你好世界")
	if got != "[C]你好[G]世界" {
		t.Errorf("Merge = %q", got)
	}
	if got := Merge("      D", "abc"); got != "abc   [D]" {
		t.Errorf("Merge past end = %q", got)
	}
}

func TestImport_RenderedTextRoundTrip(t *testing.T) {
	s := song.New("Again")
	s.Blocks = []song.Block{&song.Lyrics{Header: song.Header{ID: "v", Label: "Verse"}, Content: "[C]Test [G]line"}}
	text := render.Text(render.Document(s, render.DefaultOptions()))

	res := Import(text, fretboard.DefaultGeometry())
	if res.Title != "Again" || len(res.Blocks) != 1 || res.Blocks[0].BlockLabel() != "Verse" {
		t.Fatalf("re-import = %+v", res)
	}
	got := chordline.Chords(res.Blocks[0].(*song.Lyrics).Content)
	if !reflect.DeepEqual(got, []string{"C", "G"}) {
		t.Errorf("chords = %v", got)
	}
}

func TestResult_Song(t *testing.T) {
	res := Import(sheet, fretboard.DefaultGeometry())
	s := res.Song()
	if s.Title != "Wish" || s.Capo != 2 || len(s.Blocks) != 5 {
		t.Errorf("song = %+v", s)
	}
	if err := s.Validate(); err != nil {
		t.Errorf("imported song invalid: %v", err)
	}
}

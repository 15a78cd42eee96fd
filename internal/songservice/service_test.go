package songservice

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/starford/chordbook/internal/apperr"
	"github.com/starford/chordbook/internal/render"
	"github.com/starford/chordbook/internal/song"
	"github.com/starford/chordbook/internal/testutil"
)

type event struct{ kind, id, sum string }

func newService(t *testing.T, opts ...Option) (*Service, *[]event) {
	t.Helper()
	_, store := testutil.TestLibrary(t)
	db := testutil.TestDB(t)
	events := &[]event{}
	opts = append(opts, WithNotifier(func(kind, id, sum string) {
		*events = append(*events, event{kind, id, sum})
	}))
	return NewService(store, db, opts...), events
}

func create(t *testing.T, svc *Service) *SongDetail {
	t.Helper()
	d, err := svc.Create(context.Background(), testutil.SampleSong())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	return d
}

func TestCreateAndGet(t *testing.T) {
	svc, events := newService(t)
	ctx := context.Background()
	d := create(t, svc)
	if d.Song.ID == "" {
		t.Fatal("expected assigned id")
	}
	if d.Checksum == "" {
		t.Error("expected checksum")
	}

	got, err := svc.Get(ctx, d.Song.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Song.Title != "Sample" || len(got.Song.Blocks) != 4 {
		t.Errorf("song = %+v", got.Song)
	}
	if got.Checksum != d.Checksum {
		t.Errorf("checksum %s != %s", got.Checksum, d.Checksum)
	}
	if len(*events) != 1 || (*events)[0] != (event{"created", d.Song.ID, d.Checksum}) {
		t.Errorf("events = %v", *events)
	}
}

func TestCreate_Duplicate(t *testing.T) {
	svc, _ := newService(t)
	d := create(t, svc)
	s := testutil.SampleSong()
	s.ID = d.Song.ID
	if _, err := svc.Create(context.Background(), s); !errors.Is(err, apperr.ErrAlreadyExists) {
		t.Errorf("err = %v, want ErrAlreadyExists", err)
	}
}

func TestCreate_Invalid(t *testing.T) {
	svc, events := newService(t)
	s := testutil.SampleSong()
	s.Capo = -1
	if _, err := svc.Create(context.Background(), s); !errors.Is(err, apperr.ErrInvalid) {
		t.Errorf("err = %v, want ErrInvalid", err)
	}
	s = testutil.SampleSong()
	s.Tuning = "BANJO"
	if _, err := svc.Create(context.Background(), s); !errors.Is(err, apperr.ErrInvalid) {
		t.Errorf("err = %v, want ErrInvalid", err)
	}
	if len(*events) != 0 {
		t.Errorf("unexpected events %v", *events)
	}
}

func TestCreate_AssignsBlockIDs(t *testing.T) {
	svc, _ := newService(t)
	s := song.New("Blank ids")
	s.Blocks = []song.Block{&song.Lyrics{Header: song.Header{Label: "A"}}, &song.Lyrics{Header: song.Header{Label: "B"}}}
	d, err := svc.Create(context.Background(), s)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	a, b := d.Song.Blocks[0].BlockID(), d.Song.Blocks[1].BlockID()
	if a == "" || b == "" || a == b {
		t.Errorf("ids = %q, %q", a, b)
	}
}

func TestUpdate_IfMatch(t *testing.T) {
	svc, events := newService(t)
	ctx := context.Background()
	d := create(t, svc)
	id := d.Song.ID

	s := testutil.SampleSong()
	s.Title = "Renamed"
	if _, err := svc.Update(ctx, id, s, "stale"); !errors.Is(err, apperr.ErrConflict) {
		t.Fatalf("err = %v, want ErrConflict", err)
	}
	up, err := svc.Update(ctx, id, s, d.Checksum)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if up.Song.ID != id || up.Checksum == d.Checksum {
		t.Errorf("update = %+v", up)
	}

	vs, err := svc.Versions(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if len(vs) != 2 {
		t.Fatalf("versions = %d, want 2", len(vs))
	}
	first, err := svc.Version(ctx, id, vs[0].Number)
	if err != nil {
		t.Fatal(err)
	}
	if first.Title != "Sample" {
		t.Errorf("first version title = %q", first.Title)
	}
	if last := (*events)[len(*events)-1]; last.kind != "updated" {
		t.Errorf("last event = %v", last)
	}
}

func TestUpdate_NotFound(t *testing.T) {
	svc, _ := newService(t)
	if _, err := svc.Update(context.Background(), "missing", testutil.SampleSong(), ""); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestDelete(t *testing.T) {
	svc, events := newService(t)
	ctx := context.Background()
	d := create(t, svc)
	if err := svc.Delete(ctx, d.Song.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := svc.Get(ctx, d.Song.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("Get after delete err = %v", err)
	}
	if err := svc.Delete(ctx, d.Song.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("second delete err = %v", err)
	}
	if last := (*events)[len(*events)-1]; last != (event{"deleted", d.Song.ID, ""}) {
		t.Errorf("last event = %v", last)
	}
	items, total, err := svc.List(ctx, 10, 0, "")
	if err != nil || total != 0 || len(items) != 0 {
		t.Errorf("List = %v, %d, %v", items, total, err)
	}
}

func TestListAndSearch(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	create(t, svc)
	other := song.New("Another")
	other.Blocks = []song.Block{&song.Lyrics{Header: song.Header{ID: "c", Label: "Chorus"}, Content: "[G]moonlight"}}
	if _, err := svc.Create(ctx, other); err != nil {
		t.Fatal(err)
	}

	items, total, err := svc.List(ctx, 10, 0, "title")
	if err != nil {
		t.Fatal(err)
	}
	if total != 2 || items[0].Title != "Another" || items[1].BlockCount != 4 {
		t.Errorf("List = %+v (total %d)", items, total)
	}

	res, err := svc.Search(ctx, "moonlight", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(res) != 1 || res[0].Title != "Another" {
		t.Errorf("Search = %+v", res)
	}
}

func TestPlaceNote_UsesPlacementOffset(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	s := testutil.SampleSong()
	s.Capo = 2
	d, err := svc.Create(ctx, s)
	if err != nil {
		t.Fatal(err)
	}

	up, idx, err := svc.PlaceNote(ctx, d.Song.ID, "riff", 190, 53)
	if err != nil {
		t.Fatalf("PlaceNote: %v", err)
	}
	if idx != 1 {
		t.Errorf("idx = %d, want 1", idx)
	}
	tab := up.Song.Blocks[1].(*song.Tab)
	if n := tab.Notes[1]; n.String != 2 || n.Fret != 5 {
		t.Errorf("note = %+v, want string 2 stored fret 5", n)
	}

	got, _ := svc.Get(ctx, d.Song.ID)
	if len(got.Song.Blocks[1].(*song.Tab).Notes) != 2 {
		t.Error("note not persisted")
	}
}

func TestPlaceNote_Errors(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	id := create(t, svc).Song.ID

	if _, _, err := svc.PlaceNote(ctx, id, "riff", -500, 10); !errors.Is(err, apperr.ErrInvalid) {
		t.Errorf("off fretboard err = %v", err)
	}
	if _, _, err := svc.PlaceNote(ctx, id, "verse", 190, 53); !errors.Is(err, apperr.ErrInvalid) {
		t.Errorf("lyrics block err = %v", err)
	}
	if _, _, err := svc.PlaceNote(ctx, id, "nope", 190, 53); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("missing block err = %v", err)
	}
	if _, _, err := svc.PlaceNote(ctx, "nope", "riff", 190, 53); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("missing song err = %v", err)
	}
}

func TestDeleteNote(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	id := create(t, svc).Song.ID

	d, err := svc.DeleteNote(ctx, id, "riff", 0)
	if err != nil {
		t.Fatalf("DeleteNote: %v", err)
	}
	if n := len(d.Song.Blocks[1].(*song.Tab).Notes); n != 0 {
		t.Errorf("notes = %d", n)
	}
	if _, err := svc.DeleteNote(ctx, id, "riff", 0); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestDrumEdits(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	id := create(t, svc).Song.ID

	d, err := svc.CycleDrumCell(ctx, id, "groove", 0, 1)
	if err != nil {
		t.Fatalf("CycleDrumCell: %v", err)
	}
	if got := d.Song.Blocks[2].(*song.DrumTab).Content; got != "HH|xxx-|\nSD|--o-|" {
		t.Errorf("content = %q", got)
	}
	if _, err := svc.CycleDrumCell(ctx, id, "groove", 5, 0); !errors.Is(err, apperr.ErrInvalid) {
		t.Errorf("out of range err = %v", err)
	}

	d, err = svc.AddInstrument(ctx, id, "groove", "Cowbell", "CB")
	if err != nil {
		t.Fatalf("AddInstrument: %v", err)
	}
	if got := d.Song.Blocks[2].(*song.DrumTab).Content; !strings.HasSuffix(got, "\nCB|----|") {
		t.Errorf("content = %q", got)
	}

	// The custom name survives a reload from disk.
	d, err = svc.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	rows := d.Song.Blocks[2].(*song.DrumTab).Rows()
	if got := rows[len(rows)-1]; got.Instrument != "Cowbell" || got.ShortCode != "CB" {
		t.Errorf("reloaded row = %+v, want Cowbell/CB", got)
	}
	if _, err := svc.CycleDrumCell(ctx, id, "groove", 2, 0); err != nil {
		t.Fatalf("CycleDrumCell: %v", err)
	}
	d, _ = svc.Get(ctx, id)
	if in := d.Song.Blocks[2].(*song.DrumTab).Instruments; len(in) != 1 || in[0].Name != "Cowbell" {
		t.Errorf("instruments after cell edit = %+v", in)
	}

	if _, err := svc.AddInstrument(ctx, id, "groove", "", "X"); !errors.Is(err, apperr.ErrInvalid) {
		t.Errorf("empty name err = %v", err)
	}
}

func TestSetTranspose_RenderOnly(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	id := create(t, svc).Song.ID

	d, err := svc.SetTranspose(ctx, id, 2)
	if err != nil {
		t.Fatal(err)
	}
	if got := d.Song.Blocks[0].(*song.Lyrics).Content; got != "[Am]la la [C]la" {
		t.Errorf("stored content changed: %q", got)
	}

	text, err := svc.RenderText(ctx, id, render.ViewFull)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(text, "Bm") || !strings.Contains(text, "D") {
		t.Errorf("text not transposed:\n%s", text)
	}
}

func TestRenderFormats(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	id := create(t, svc).Song.ID

	out, err := svc.Render(ctx, id, render.ViewDrummer)
	if err != nil {
		t.Fatal(err)
	}
	for _, sec := range out.Sections {
		if sec.Kind == song.KindTab {
			t.Error("drummer view kept a tab section")
		}
	}

	page, err := svc.RenderHTML(ctx, id, render.ViewFull)
	if err != nil || !bytes.Contains(page, []byte("<html")) {
		t.Errorf("RenderHTML = %d bytes, %v", len(page), err)
	}

	var buf bytes.Buffer
	if err := svc.RenderPDF(ctx, id, render.ViewFull, &buf); err != nil {
		t.Fatalf("RenderPDF: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF")) {
		t.Error("not a PDF")
	}

	if _, err := svc.RenderText(ctx, "missing", render.ViewFull); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v", err)
	}
}

func TestImport(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	sheet := "title: Imported\n\n[Verse]\nC       G\nHello there\n"

	preview, err := svc.Import(ctx, sheet, false)
	if err != nil {
		t.Fatal(err)
	}
	if preview.Song.ID != "" || preview.Song.Title != "Imported" {
		t.Errorf("preview = %+v", preview.Song)
	}
	if _, total, _ := svc.List(ctx, 10, 0, ""); total != 0 {
		t.Error("preview import was saved")
	}

	saved, err := svc.Import(ctx, sheet, true)
	if err != nil {
		t.Fatal(err)
	}
	if saved.Song.ID == "" || len(saved.Song.Blocks) != 1 {
		t.Errorf("saved = %+v", saved.Song)
	}
}

func TestAttachAudio(t *testing.T) {
	ctx := context.Background()
	ogg := []byte("OggS\x00\x02\x00\x00")

	plain, _ := newService(t)
	id := create(t, plain).Song.ID
	if _, err := plain.AttachAudio(ctx, id, "a.ogg", bytes.NewReader(ogg)); !errors.Is(err, apperr.ErrInvalid) {
		t.Errorf("without media err = %v", err)
	}

	svc, _ := newService(t, WithMedia(testutil.TestMedia(t)))
	id = create(t, svc).Song.ID
	d, err := svc.AttachAudio(ctx, id, "take.ogg", bytes.NewReader(ogg))
	if err != nil {
		t.Fatalf("AttachAudio: %v", err)
	}
	if d.Song.AudioURL != "/media/take.ogg" {
		t.Errorf("AudioURL = %q", d.Song.AudioURL)
	}
	if _, err := svc.AttachAudio(ctx, "missing", "b.ogg", bytes.NewReader(ogg)); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("missing song err = %v", err)
	}
}

func TestAttachAudio_RemovesFileWhenSaveFails(t *testing.T) {
	ctx := context.Background()
	media := testutil.TestMedia(t)
	svc, _ := newService(t, WithMedia(media))

	// Decodes fine but fails validation on save.
	if err := svc.store.Write("broken", []byte(`{"title":"Broken","capo":-1,"song_blocks":[]}`)); err != nil {
		t.Fatal(err)
	}

	_, err := svc.AttachAudio(ctx, "broken", "take.ogg", bytes.NewReader([]byte("OggS\x00\x02\x00\x00")))
	if !errors.Is(err, apperr.ErrInvalid) {
		t.Fatalf("err = %v, want ErrInvalid", err)
	}
	if media.Exists("take.ogg") {
		t.Error("audio file left behind after failed attach")
	}
}

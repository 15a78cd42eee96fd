package index

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/starford/chordbook/internal/apperr"
	"github.com/starford/chordbook/internal/models"
	"github.com/starford/chordbook/internal/song"
	"github.com/starford/chordbook/internal/storage"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	f, err := os.CreateTemp("", "chordbook-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	f.Close()
	t.Cleanup(func() { os.Remove(f.Name()) })

	db, err := Open(f.Name())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func summary(id, title, cs string) models.SongSummary {
	return models.SongSummary{ID: id, Title: title, Tuning: "E_STANDARD", Checksum: cs, UpdatedAt: time.Now()}
}

func TestSchemaCreation(t *testing.T) {
	db := testDB(t)
	var count int
	if err := db.conn.QueryRow(`SELECT count(*) FROM songs`).Scan(&count); err != nil {
		t.Fatalf("songs table missing: %v", err)
	}
	if err := db.conn.QueryRow(`SELECT count(*) FROM song_versions`).Scan(&count); err != nil {
		t.Fatalf("song_versions table missing: %v", err)
	}
}

func TestUpsertAndGet(t *testing.T) {
	db := testDB(t)
	row := summary("s1", "Hello", "abc123")
	row.Artist, row.Capo, row.BlockCount = "Band", 2, 3
	if err := db.UpsertSong(row, "verse words", []byte(`{"title":"Hello"}`)); err != nil {
		t.Fatalf("UpsertSong: %v", err)
	}
	cs, err := db.GetChecksum("s1")
	if err != nil || cs != "abc123" {
		t.Errorf("checksum = %q, %v", cs, err)
	}
	got, err := db.GetSong("s1")
	if err != nil {
		t.Fatalf("GetSong: %v", err)
	}
	if got.Artist != "Band" || got.Capo != 2 || got.BlockCount != 3 {
		t.Errorf("song = %+v", got)
	}
}

func TestGetSong_NotFound(t *testing.T) {
	db := testDB(t)
	if _, err := db.GetSong("missing"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
	cs, err := db.GetChecksum("missing")
	if err != nil || cs != "" {
		t.Errorf("GetChecksum = %q, %v", cs, err)
	}
}

func TestVersions(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertSong(summary("v", "One", "1"), "", []byte("doc-1"))
	_ = db.UpsertSong(summary("v", "One", "1"), "", []byte("doc-1"))
	_ = db.UpsertSong(summary("v", "Two", "2"), "", []byte("doc-2"))

	vs, err := db.Versions("v")
	if err != nil {
		t.Fatalf("Versions: %v", err)
	}
	if len(vs) != 2 || vs[0].Number != 1 || vs[1].Number != 2 || vs[1].Checksum != "2" {
		t.Fatalf("versions = %+v, want 2 (unchanged re-index is not a version)", vs)
	}
	doc, err := db.Version("v", 1)
	if err != nil || string(doc) != "doc-1" {
		t.Errorf("Version(1) = %q, %v", doc, err)
	}
	if _, err := db.Version("v", 9); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("Version(9) err = %v", err)
	}
}

func TestDeleteKeepsHistory(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertSong(summary("d", "Gone", "x"), "body", []byte("doc"))
	if err := db.DeleteSong("d"); err != nil {
		t.Fatalf("DeleteSong: %v", err)
	}
	if cs, _ := db.GetChecksum("d"); cs != "" {
		t.Errorf("deleted song still has checksum %q", cs)
	}
	vs, _ := db.Versions("d")
	if len(vs) != 1 {
		t.Errorf("versions after delete = %d, want 1", len(vs))
	}
}

func TestListSongs(t *testing.T) {
	db := testDB(t)
	base := time.Now()
	for i, title := range []string{"banana", "Apple", "cherry"} {
		row := summary(title, title, title)
		row.Artist = string(rune('z' - i))
		row.UpdatedAt = base.Add(time.Duration(i) * time.Minute)
		_ = db.UpsertSong(row, "", []byte("{}"))
	}

	items, total, err := db.ListSongs(2, 0, "title")
	if err != nil {
		t.Fatalf("ListSongs: %v", err)
	}
	if total != 3 || len(items) != 2 || items[0].Title != "Apple" || items[1].Title != "banana" {
		t.Errorf("by title = %+v (total %d)", items, total)
	}

	items, _, _ = db.ListSongs(10, 0, "")
	if items[0].Title != "cherry" {
		t.Errorf("default sort should be newest first, got %q", items[0].Title)
	}

	items, _, _ = db.ListSongs(10, 0, "artist")
	if items[0].Artist != "x" {
		t.Errorf("by artist first = %+v", items[0])
	}

	items, _, _ = db.ListSongs(10, 5, "title")
	if len(items) != 0 {
		t.Errorf("offset past end = %+v", items)
	}
}

func TestSearch_Basic(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertSong(summary("s", "Search Me", "1"), "Verse\nuniqueword appears here", []byte("{}"))

	results, err := db.Search("uniqueword", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 || results[0].ID != "s" {
		t.Errorf("search results = %+v, want 1 hit for s", results)
	}
}

func writeSong(t *testing.T, dir, id, title, lyrics string) {
	t.Helper()
	s := song.New(title)
	s.ID = id
	s.Blocks = []song.Block{&song.Lyrics{Header: song.Header{ID: "v", Label: "Verse"}, Content: lyrics}}
	data, err := song.Encode(s)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, id+".json"), data, 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestSync(t *testing.T) {
	dir := t.TempDir()
	store, err := storage.NewFS(dir)
	if err != nil {
		t.Fatal(err)
	}
	db := testDB(t)

	writeSong(t, dir, "one", "First", "[C]hello")
	writeSong(t, dir, "two", "Second", "[G]world")
	_ = db.UpsertSong(summary("stale", "Stale", "s"), "", []byte("{}"))

	if err := Sync(db, store, quietLogger()); err != nil {
		t.Fatalf("Sync: %v", err)
	}
	all, _ := db.AllChecksums()
	if len(all) != 2 || all["one"] == "" || all["two"] == "" {
		t.Errorf("checksums after sync = %v", all)
	}
	got, _ := db.GetSong("one")
	if got == nil || got.Title != "First" || got.BlockCount != 1 {
		t.Errorf("song one = %+v", got)
	}

	// Changing a document re-indexes it and records a version.
	writeSong(t, dir, "one", "First (live)", "[C]hello again")
	_ = Sync(db, store, quietLogger())
	vs, _ := db.Versions("one")
	if len(vs) != 2 {
		t.Errorf("versions = %d, want 2", len(vs))
	}
}

func TestSync_SkipsUndecodable(t *testing.T) {
	dir := t.TempDir()
	store, _ := storage.NewFS(dir)
	db := testDB(t)
	_ = os.WriteFile(filepath.Join(dir, "bad.json"), []byte("{not json"), 0o644)
	writeSong(t, dir, "good", "Good", "la")

	if err := Sync(db, store, quietLogger()); err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if cs, _ := db.GetChecksum("bad"); cs != "" {
		t.Error("bad document should not be indexed")
	}
	if cs, _ := db.GetChecksum("good"); cs == "" {
		t.Error("good document should be indexed")
	}
}

func TestSearchText(t *testing.T) {
	s := song.New("x")
	s.Blocks = []song.Block{
		&song.Lyrics{Header: song.Header{ID: "a", Label: "Verse"}, Content: "[C]words"},
		&song.Tab{Header: song.Header{ID: "b", Label: "Riff"}},
	}
	if got := SearchText(s); got != "Verse\n[C]words\n\nRiff" {
		t.Errorf("SearchText = %q", got)
	}
}

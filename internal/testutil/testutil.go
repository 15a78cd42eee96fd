// Package testutil provides shared test helpers for setting up song
// libraries and index databases.
package testutil

import (
	"os"
	"testing"

	"github.com/starford/chordbook/internal/index"
	"github.com/starford/chordbook/internal/song"
	"github.com/starford/chordbook/internal/storage"
)

// TestDB creates a temporary SQLite database that is automatically cleaned up.
func TestDB(t *testing.T) *index.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "chordbook-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := index.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestLibrary creates a temporary library directory with a storage.FS.
func TestLibrary(t *testing.T) (string, *storage.FS) {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.NewFS(dir)
	if err != nil {
		t.Fatal(err)
	}
	return dir, store
}

// TestMedia creates a temporary media store.
func TestMedia(t *testing.T) *storage.Media {
	t.Helper()
	m, err := storage.NewMedia(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return m
}

// SampleSong returns a song with one block of every kind: a verse, a one
// note tab, a drum groove and a reference back to the verse.
func SampleSong() *song.Song {
	s := song.New("Sample")
	s.Artist = "Band"
	s.Blocks = []song.Block{
		&song.Lyrics{Header: song.Header{ID: "verse", Label: "Verse"}, Content: "[Am]la la [C]la"},
		&song.Tab{Header: song.Header{ID: "riff", Label: "Riff"}, Strings: 6,
			Notes: []song.Note{{String: 0, Fret: 3, Position: 0}}},
		&song.DrumTab{Header: song.Header{ID: "groove", Label: "Groove"}, Content: "HH|x-x-|\nSD|--o-|"},
		&song.Reference{Header: song.Header{ID: "verse-2", Label: "Verse"}, OriginalID: "verse"},
	}
	return s
}

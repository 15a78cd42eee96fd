package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/chordbook/internal/apperr"
)

func tempLibrary(t *testing.T) *FS {
	t.Helper()
	fs, err := NewFS(t.TempDir())
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	return fs
}

func TestWriteAndRead(t *testing.T) {
	s := tempLibrary(t)
	content := []byte(`{"title":"Hello"}`)
	if err := s.Write("song-1", content); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := s.Read("song-1")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(got) != string(content) {
		t.Errorf("content mismatch: got %q", got)
	}
	if _, err := os.Stat(filepath.Join(s.Root(), "song-1.json")); err != nil {
		t.Errorf("document file missing: %v", err)
	}
}

func TestReadMissing(t *testing.T) {
	s := tempLibrary(t)
	_, err := s.Read("nope")
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("err = %v, want os.ErrNotExist", err)
	}
}

func TestDelete(t *testing.T) {
	s := tempLibrary(t)
	_ = s.Write("del", []byte("{}"))
	if err := s.Delete("del"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Read("del"); err == nil {
		t.Error("expected error reading deleted song")
	}
}

func TestList(t *testing.T) {
	s := tempLibrary(t)
	_ = s.Write("a", []byte("{}"))
	_ = s.Write("b", []byte(`{"x":1}`))
	_ = os.WriteFile(filepath.Join(s.Root(), "readme.txt"), []byte("not a song"), 0o644)
	_ = os.Mkdir(filepath.Join(s.Root(), "sub.json"), 0o755)

	items, err := s.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("len = %d, want 2", len(items))
	}
	for _, it := range items {
		if it.Checksum == "" || it.UpdatedAt.IsZero() {
			t.Errorf("incomplete metadata: %+v", it)
		}
	}
}

func TestBadIDsRejected(t *testing.T) {
	s := tempLibrary(t)
	cases := []string{
		"../../etc/passwd",
		"../outside",
		"/etc/shadow",
		"",
		"a/b",
		".hidden",
	}
	for _, id := range cases {
		if _, err := s.Read(id); !errors.Is(err, apperr.ErrInvalid) {
			t.Errorf("Read(%q) err = %v, want ErrInvalid", id, err)
		}
		if err := s.Write(id, []byte("x")); err == nil {
			t.Errorf("expected error for write to %q", id)
		}
	}
}

func TestIDFromPath(t *testing.T) {
	cases := map[string]string{
		"/lib/abc-1.json": "abc-1",
		"x.json":          "x",
	}
	for p, want := range cases {
		if got, ok := IDFromPath(p); !ok || got != want {
			t.Errorf("IDFromPath(%q) = %q, %v", p, got, ok)
		}
	}
	for _, p := range []string{"a.md", ".chordbook-tmp-123", ".x.json"} {
		if _, ok := IDFromPath(p); ok {
			t.Errorf("IDFromPath(%q) should not match", p)
		}
	}
}

func TestAtomicWriteNoLeftovers(t *testing.T) {
	s := tempLibrary(t)
	_ = s.Write("atomic", []byte("original"))
	if err := s.Write("atomic", []byte("updated")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, _ := s.Read("atomic")
	if string(got) != "updated" {
		t.Errorf("expected updated content, got %q", got)
	}
	matches, _ := filepath.Glob(filepath.Join(s.root, ".chordbook-tmp-*"))
	if len(matches) != 0 {
		t.Errorf("leftover temp files: %v", matches)
	}
}

func TestNewFS_CreatesDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "library")
	if _, err := NewFS(dir); err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		t.Errorf("library dir not created: %v", err)
	}
}

func TestNewFS_FileNotDir(t *testing.T) {
	f, _ := os.CreateTemp("", "chordbook-test-*")
	_ = f.Close()
	defer os.Remove(f.Name())
	if _, err := NewFS(f.Name()); err == nil {
		t.Error("expected error when root is a file")
	}
}

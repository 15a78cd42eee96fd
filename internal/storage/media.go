package storage

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/starford/chordbook/internal/apperr"
)

// MaxMediaBytes caps a single audio upload.
const MaxMediaBytes = 50 << 20 // 50 MB

// MediaURLPrefix is the URL path media files are served under.
const MediaURLPrefix = "/media/"

var (
	audioExtensions = map[string]bool{
		".mp3": true, ".ogg": true, ".wav": true, ".flac": true, ".m4a": true,
	}

	// MimeToExt maps audio content types onto stored file extensions.
	MimeToExt = map[string]string{
		"audio/mpeg":  ".mp3",
		"audio/mp3":   ".mp3",
		"audio/ogg":   ".ogg",
		"audio/wav":   ".wav",
		"audio/wave":  ".wav",
		"audio/x-wav": ".wav",
		"audio/flac":  ".flac",
		"audio/mp4":   ".m4a",
		"audio/x-m4a": ".m4a",
	}

	unsafeNameRe = regexp.MustCompile(`[^a-zA-Z0-9._-]`)
)

// Media stores audio files referenced by songs in a flat directory.
type Media struct {
	root string
}

// NewMedia creates a media store rooted at dir, creating it when missing.
func NewMedia(dir string) (*Media, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("storage: resolve media dir: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("storage: create media dir: %w", err)
	}
	return &Media{root: abs}, nil
}

// Root returns the absolute media directory.
func (m *Media) Root() string { return m.root }

// SanitizeName strips path components and unsafe characters from name.
// An empty result is replaced with a random name carrying ext.
func SanitizeName(name, ext string) string {
	name = filepath.Base(name)
	name = unsafeNameRe.ReplaceAllString(name, "_")
	if name == "" || name == "." || name == "_" {
		if ext == "" {
			ext = ".bin"
		}
		name = uuid.NewString() + ext
	}
	return name
}

// Path returns the absolute path of a stored file. Names containing path
// separators or traversal are rejected.
func (m *Media) Path(name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("storage: media name is required: %w", apperr.ErrInvalid)
	}
	cleaned := filepath.Clean(name)
	if cleaned != filepath.Base(cleaned) || strings.Contains(cleaned, "..") {
		return "", fmt.Errorf("storage: invalid media name %q: %w", name, apperr.ErrInvalid)
	}
	return filepath.Join(m.root, cleaned), nil
}

// Exists reports whether name is stored.
func (m *Media) Exists(name string) bool {
	abs, err := m.Path(name)
	if err != nil {
		return false
	}
	info, err := os.Stat(abs)
	return err == nil && !info.IsDir()
}

// Save validates and stores an audio file. The name is sanitized first and
// the stored name is returned. Existing files are never overwritten.
func (m *Media) Save(name string, r io.Reader) (string, int64, error) {
	name = SanitizeName(name, "")
	ext := strings.ToLower(filepath.Ext(name))
	if !audioExtensions[ext] {
		return "", 0, fmt.Errorf("storage: unsupported audio extension %q (allowed: mp3, ogg, wav, flac, m4a): %w", ext, apperr.ErrInvalid)
	}

	data, err := io.ReadAll(io.LimitReader(r, MaxMediaBytes+1))
	if err != nil {
		return "", 0, fmt.Errorf("storage: read media: %w", err)
	}
	if len(data) > MaxMediaBytes {
		return "", 0, fmt.Errorf("storage: media too large (max %d bytes): %w", MaxMediaBytes, apperr.ErrInvalid)
	}
	if err := checkAudioMagic(data, ext); err != nil {
		return "", 0, err
	}

	abs, err := m.Path(name)
	if err != nil {
		return "", 0, err
	}
	if m.Exists(name) {
		return "", 0, fmt.Errorf("storage: media %s: %w", name, apperr.ErrAlreadyExists)
	}

	tmp, err := os.CreateTemp(m.root, ".chordbook-tmp-*")
	if err != nil {
		return "", 0, fmt.Errorf("storage: create temp: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return "", 0, fmt.Errorf("storage: write temp: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return "", 0, fmt.Errorf("storage: close temp: %w", err)
	}
	if err := os.Rename(tmpName, abs); err != nil {
		_ = os.Remove(tmpName)
		return "", 0, fmt.Errorf("storage: rename: %w", err)
	}
	return name, int64(len(data)), nil
}

// Remove deletes a stored file. Removing a missing file is not an error.
func (m *Media) Remove(name string) error {
	abs, err := m.Path(name)
	if err != nil {
		return err
	}
	if err := os.Remove(abs); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("storage: remove media: %w", err)
	}
	return nil
}

// URL returns the served URL path of a stored file.
func URL(name string) string {
	return MediaURLPrefix + name
}

// checkAudioMagic verifies the container signature matches ext.
func checkAudioMagic(data []byte, ext string) error {
	var ok bool
	switch ext {
	case ".mp3":
		ok = bytes.HasPrefix(data, []byte("ID3")) ||
			(len(data) >= 2 && data[0] == 0xFF && data[1]&0xE0 == 0xE0)
	case ".ogg":
		ok = bytes.HasPrefix(data, []byte("OggS"))
	case ".wav":
		ok = len(data) >= 12 && bytes.Equal(data[:4], []byte("RIFF")) && bytes.Equal(data[8:12], []byte("WAVE"))
	case ".flac":
		ok = bytes.HasPrefix(data, []byte("fLaC"))
	case ".m4a":
		ok = len(data) >= 8 && bytes.Equal(data[4:8], []byte("ftyp"))
	}
	if !ok {
		return fmt.Errorf("storage: content does not match extension %s: %w", ext, apperr.ErrInvalid)
	}
	return nil
}

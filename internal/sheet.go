package internal

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/starford/chordbook/internal/importer"
	"github.com/starford/chordbook/internal/render"
	"github.com/starford/chordbook/internal/song"
)

// loadSheet reads a song from path. JSON documents are decoded as stored;
// anything else is treated as a plain-text chord sheet and imported.
func loadSheet(cfg *Config, path string) (*song.Song, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if strings.EqualFold(filepath.Ext(path), ".json") {
		sg, err := song.Decode(data)
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", path, err)
		}
		return sg, nil
	}
	return importer.Import(string(data), cfg.Render.Geometry).Song(), nil
}

// RenderFile renders the song at path to w as text, html or pdf.
func RenderFile(cfg *Config, path, format, view string, w io.Writer) error {
	sg, err := loadSheet(cfg, path)
	if err != nil {
		return err
	}
	out := render.Document(sg, render.Options{Geometry: cfg.Render.Geometry, View: render.ParseView(view)})

	switch format {
	case "", "text":
		_, err = io.WriteString(w, render.Text(out))
	case "html":
		var page []byte
		if page, err = render.HTML(out); err == nil {
			_, err = w.Write(page)
		}
	case "pdf":
		err = render.WritePDF(w, out, cfg.Render.Print)
	default:
		return fmt.Errorf("unknown format %q (text, html or pdf)", format)
	}
	return err
}

// ImportFile converts the plain-text sheet at path into a song document and
// writes its JSON encoding to w.
func ImportFile(cfg *Config, path string, w io.Writer) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	enc, err := song.Encode(importer.Import(string(data), cfg.Render.Geometry).Song())
	if err != nil {
		return err
	}
	_, err = w.Write(append(enc, '\n'))
	return err
}

// Package songservice coordinates the song library, the index and the core
// editing and rendering operations.
package songservice

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/starford/chordbook/internal/apperr"
	"github.com/starford/chordbook/internal/checksum"
	"github.com/starford/chordbook/internal/drumtab"
	"github.com/starford/chordbook/internal/fretboard"
	"github.com/starford/chordbook/internal/importer"
	"github.com/starford/chordbook/internal/index"
	"github.com/starford/chordbook/internal/models"
	"github.com/starford/chordbook/internal/render"
	"github.com/starford/chordbook/internal/song"
	"github.com/starford/chordbook/internal/storage"
)

// SongDetail is a song document plus its storage checksum.
type SongDetail struct {
	Song      *song.Song `json:"song"`
	Checksum  string     `json:"checksum"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Notifier receives song change events (created, updated, deleted) with the
// new document checksum, empty for deletions.
type Notifier func(kind, id, sum string)

// Service coordinates storage and index operations.
type Service struct {
	store    storage.Provider
	db       index.SongIndex
	media    *storage.Media
	geometry fretboard.Geometry
	print    render.PrintOptions
	notify   Notifier

	// mu serializes read-modify-write edits.
	mu sync.Mutex
}

// Option configures a Service.
type Option func(*Service)

// WithGeometry sets the fretboard geometry used for placement and rendering.
func WithGeometry(g fretboard.Geometry) Option {
	return func(s *Service) { s.geometry = g }
}

// WithPrint sets the PDF print options.
func WithPrint(p render.PrintOptions) Option {
	return func(s *Service) { s.print = p }
}

// WithNotifier registers a change listener.
func WithNotifier(n Notifier) Option {
	return func(s *Service) { s.notify = n }
}

// WithMedia enables audio attachments.
func WithMedia(m *storage.Media) Option {
	return func(s *Service) { s.media = m }
}

// NewService creates a new song service.
func NewService(store storage.Provider, db index.SongIndex, opts ...Option) *Service {
	s := &Service{
		store:    store,
		db:       db,
		geometry: fretboard.DefaultGeometry(),
		print:    render.DefaultPrintOptions(),
		notify:   func(string, string, string) {},
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Geometry returns the configured fretboard geometry.
func (s *Service) Geometry() fretboard.Geometry { return s.geometry }

// Get reads and decodes a song.
func (s *Service) Get(_ context.Context, id string) (*SongDetail, error) {
	sg, data, err := s.load(id)
	if err != nil {
		return nil, err
	}
	detail := &SongDetail{Song: sg, Checksum: checksum.Sum(data), UpdatedAt: time.Now().UTC()}
	if row, err := s.db.GetSong(id); err == nil {
		detail.UpdatedAt = row.UpdatedAt
	}
	return detail, nil
}

// Create stores a new song. An id is assigned when the song has none.
func (s *Service) Create(_ context.Context, sg *song.Song) (*SongDetail, error) {
	if sg.ID == "" {
		sg.ID = song.NewID()
	} else if _, err := s.store.Read(sg.ID); err == nil {
		return nil, fmt.Errorf("songservice: create %s: %w", sg.ID, apperr.ErrAlreadyExists)
	}
	detail, err := s.save(sg)
	if err != nil {
		return nil, err
	}
	s.notify("created", sg.ID, detail.Checksum)
	return detail, nil
}

// Update replaces a stored song. A non-empty ifMatch must equal the current
// checksum.
func (s *Service) Update(_ context.Context, id string, sg *song.Song, ifMatch string) (*SongDetail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, data, err := s.load(id)
	if err != nil {
		return nil, err
	}
	if ifMatch != "" && ifMatch != checksum.Sum(data) {
		return nil, fmt.Errorf("songservice: update %s: %w", id, apperr.ErrConflict)
	}
	sg.ID = id
	detail, err := s.save(sg)
	if err != nil {
		return nil, err
	}
	s.notify("updated", id, detail.Checksum)
	return detail, nil
}

// Delete removes a song from storage and index. Version history is kept.
func (s *Service) Delete(_ context.Context, id string) error {
	if err := s.store.Delete(id); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("songservice: delete %s: %w", id, apperr.ErrNotFound)
		}
		return err
	}
	if err := s.db.DeleteSong(id); err != nil {
		return err
	}
	s.notify("deleted", id, "")
	return nil
}

// List returns a page of song summaries and the total count.
func (s *Service) List(_ context.Context, limit, offset int, sort string) ([]models.SongSummary, int, error) {
	rows, total, err := s.db.ListSongs(limit, offset, sort)
	if err != nil {
		return nil, 0, err
	}
	if rows == nil {
		rows = []models.SongSummary{}
	}
	return rows, total, nil
}

// Search delegates full-text search to the index.
func (s *Service) Search(_ context.Context, query string, limit int) ([]index.SearchResult, error) {
	return s.db.Search(query, limit)
}

// Versions lists the stored revisions of a song, oldest first.
func (s *Service) Versions(_ context.Context, id string) ([]models.Version, error) {
	vs, err := s.db.Versions(id)
	if err != nil {
		return nil, err
	}
	if vs == nil {
		vs = []models.Version{}
	}
	return vs, nil
}

// Version decodes revision n of a song.
func (s *Service) Version(_ context.Context, id string, n int) (*song.Song, error) {
	data, err := s.db.Version(id, n)
	if err != nil {
		return nil, err
	}
	return song.Decode(data)
}

// Render builds the document rendering of a stored song.
func (s *Service) Render(ctx context.Context, id string, view render.View) (render.Output, error) {
	d, err := s.Get(ctx, id)
	if err != nil {
		return render.Output{}, err
	}
	return s.RenderDocument(d.Song, view), nil
}

// RenderDocument renders a song that need not be stored.
func (s *Service) RenderDocument(sg *song.Song, view render.View) render.Output {
	return render.Document(sg, render.Options{Geometry: s.geometry, View: view})
}

// RenderText renders a stored song as plain text.
func (s *Service) RenderText(ctx context.Context, id string, view render.View) (string, error) {
	out, err := s.Render(ctx, id, view)
	if err != nil {
		return "", err
	}
	return render.Text(out), nil
}

// RenderHTML renders a stored song as a standalone HTML page.
func (s *Service) RenderHTML(ctx context.Context, id string, view render.View) ([]byte, error) {
	out, err := s.Render(ctx, id, view)
	if err != nil {
		return nil, err
	}
	return render.HTML(out)
}

// RenderPDF writes the print rendering of a stored song to w.
func (s *Service) RenderPDF(ctx context.Context, id string, view render.View, w io.Writer) error {
	out, err := s.Render(ctx, id, view)
	if err != nil {
		return err
	}
	return render.WritePDF(w, out, s.print)
}

// Import parses a plain-text song sheet. With save the result is stored as
// a new song.
func (s *Service) Import(ctx context.Context, text string, save bool) (*SongDetail, error) {
	sg := importer.Import(text, s.geometry).Song()
	if !save {
		return &SongDetail{Song: sg}, nil
	}
	return s.Create(ctx, sg)
}

// PlaceNote adds a note to a tab block from a fretboard click and returns
// the new note index.
func (s *Service) PlaceNote(ctx context.Context, id, blockID string, x, y float64) (*SongDetail, int, error) {
	idx := -1
	d, err := s.edit(ctx, id, func(sg *song.Song) error {
		tab, err := tabBlock(sg, blockID)
		if err != nil {
			return err
		}
		i, ok := fretboard.PlaceAt(tab, x, y, sg.Context(), s.geometry)
		if !ok {
			return fmt.Errorf("click (%g, %g) is off the fretboard: %w", x, y, apperr.ErrInvalid)
		}
		idx = i
		return nil
	})
	return d, idx, err
}

// DeleteNote removes note i from a tab block.
func (s *Service) DeleteNote(ctx context.Context, id, blockID string, i int) (*SongDetail, error) {
	return s.edit(ctx, id, func(sg *song.Song) error {
		tab, err := tabBlock(sg, blockID)
		if err != nil {
			return err
		}
		if !fretboard.DeleteNote(tab, i) {
			return fmt.Errorf("note %d: %w", i, apperr.ErrNotFound)
		}
		return nil
	})
}

// CycleDrumCell advances one drum grid cell to the next symbol.
func (s *Service) CycleDrumCell(ctx context.Context, id, blockID string, row, col int) (*SongDetail, error) {
	return s.edit(ctx, id, func(sg *song.Song) error {
		drum, err := drumBlock(sg, blockID)
		if err != nil {
			return err
		}
		content, ok := drumtab.CycleContent(drum.Content, row, col)
		if !ok {
			return fmt.Errorf("cell %d,%d: %w", row, col, apperr.ErrInvalid)
		}
		drum.Content = content
		return nil
	})
}

// AddInstrument appends an instrument row to a drum block.
func (s *Service) AddInstrument(ctx context.Context, id, blockID, name, code string) (*SongDetail, error) {
	return s.edit(ctx, id, func(sg *song.Song) error {
		drum, err := drumBlock(sg, blockID)
		if err != nil {
			return err
		}
		rows, err := drumtab.AddInstrument(drum.Rows(), name, code)
		if err != nil {
			return fmt.Errorf("%w: %w", apperr.ErrInvalid, err)
		}
		drum.SetRows(rows)
		return nil
	})
}

// SetTranspose changes the render-time transposition of a song.
func (s *Service) SetTranspose(ctx context.Context, id string, n int) (*SongDetail, error) {
	return s.edit(ctx, id, func(sg *song.Song) error {
		sg.Transpose = n
		return nil
	})
}

// AttachAudio stores an audio file and links it from the song.
func (s *Service) AttachAudio(ctx context.Context, id, filename string, r io.Reader) (*SongDetail, error) {
	if s.media == nil {
		return nil, fmt.Errorf("songservice: media storage is disabled: %w", apperr.ErrInvalid)
	}
	if _, _, err := s.load(id); err != nil {
		return nil, err
	}
	name, _, err := s.media.Save(filename, r)
	if err != nil {
		return nil, err
	}
	d, err := s.edit(ctx, id, func(sg *song.Song) error {
		sg.AudioURL = storage.URL(name)
		return nil
	})
	if err != nil {
		if rmErr := s.media.Remove(name); rmErr != nil {
			slog.Warn("songservice: remove orphaned audio", slog.String("name", name), slog.String("error", rmErr.Error()))
		}
		return nil, err
	}
	return d, nil
}

// edit applies fn to the stored song and saves the result.
func (s *Service) edit(_ context.Context, id string, fn func(*song.Song) error) (*SongDetail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sg, _, err := s.load(id)
	if err != nil {
		return nil, err
	}
	if err := fn(sg); err != nil {
		return nil, fmt.Errorf("songservice: edit %s: %w", id, err)
	}
	detail, err := s.save(sg)
	if err != nil {
		return nil, err
	}
	s.notify("updated", id, detail.Checksum)
	return detail, nil
}

func (s *Service) load(id string) (*song.Song, []byte, error) {
	data, err := s.store.Read(id)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil, fmt.Errorf("songservice: song %s: %w", id, apperr.ErrNotFound)
		}
		return nil, nil, err
	}
	sg, err := song.Decode(data)
	if err != nil {
		return nil, nil, fmt.Errorf("songservice: song %s: %w", id, err)
	}
	sg.ID = id
	return sg, data, nil
}

// save validates, writes and indexes sg. Blocks without an id get one.
func (s *Service) save(sg *song.Song) (*SongDetail, error) {
	if err := assignBlockIDs(sg); err != nil {
		return nil, fmt.Errorf("songservice: %w: %w", apperr.ErrInvalid, err)
	}
	if err := sg.Validate(); err != nil {
		return nil, fmt.Errorf("songservice: %w: %w", apperr.ErrInvalid, err)
	}
	data, err := song.Encode(sg)
	if err != nil {
		return nil, err
	}
	if err := s.store.Write(sg.ID, data); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	if err := index.IndexDocument(s.db, sg.ID, data, now); err != nil {
		return nil, err
	}
	return &SongDetail{Song: sg, Checksum: checksum.Sum(data), UpdatedAt: now}, nil
}

func assignBlockIDs(sg *song.Song) error {
	missing := false
	for _, b := range sg.Blocks {
		if b.BlockID() == "" {
			missing = true
			break
		}
	}
	if !missing {
		return nil
	}
	blocks := sg.Blocks
	sg.Blocks = make([]song.Block, 0, len(blocks))
	for _, b := range blocks {
		if err := sg.AddBlock(b); err != nil {
			return err
		}
	}
	return nil
}

func tabBlock(sg *song.Song, blockID string) (*song.Tab, error) {
	b, _, ok := sg.Find(blockID)
	if !ok {
		return nil, fmt.Errorf("block %s: %w", blockID, apperr.ErrNotFound)
	}
	tab, ok := b.(*song.Tab)
	if !ok {
		return nil, fmt.Errorf("block %s is %s, not tab: %w", blockID, b.Kind(), apperr.ErrInvalid)
	}
	return tab, nil
}

func drumBlock(sg *song.Song, blockID string) (*song.DrumTab, error) {
	b, _, ok := sg.Find(blockID)
	if !ok {
		return nil, fmt.Errorf("block %s: %w", blockID, apperr.ErrNotFound)
	}
	drum, ok := b.(*song.DrumTab)
	if !ok {
		return nil, fmt.Errorf("block %s is %s, not drum_tab: %w", blockID, b.Kind(), apperr.ErrInvalid)
	}
	return drum, nil
}

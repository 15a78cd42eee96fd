package index

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/starford/chordbook/internal/checksum"
	"github.com/starford/chordbook/internal/models"
	"github.com/starford/chordbook/internal/song"
	"github.com/starford/chordbook/internal/storage"
)

// Sync walks the library and brings the index up to date:
//   - new/changed documents are decoded and upserted
//   - documents removed from disk are deleted from the index
func Sync(db *DB, store storage.Provider, logger *slog.Logger) error {
	metas, err := store.List()
	if err != nil {
		return err
	}

	checksums, err := db.AllChecksums()
	if err != nil {
		return err
	}

	disk := make(map[string]struct{}, len(metas))
	for _, m := range metas {
		disk[m.ID] = struct{}{}

		if checksums[m.ID] == m.Checksum {
			continue
		}

		data, err := store.Read(m.ID)
		if err != nil {
			logger.Warn("sync: read failed", slog.String("id", m.ID), slog.String("error", err.Error()))
			continue
		}
		if err := IndexDocument(db, m.ID, data, m.UpdatedAt); err != nil {
			logger.Warn("sync: index failed", slog.String("id", m.ID), slog.String("error", err.Error()))
		} else {
			logger.Debug("sync: indexed", slog.String("id", m.ID))
		}
	}

	// Remove stale entries.
	for id := range checksums {
		if _, ok := disk[id]; !ok {
			if err := db.DeleteSong(id); err != nil {
				logger.Warn("sync: delete failed", slog.String("id", id), slog.String("error", err.Error()))
			} else {
				logger.Debug("sync: removed stale", slog.String("id", id))
			}
		}
	}

	return nil
}

// IndexDocument decodes a stored song document and upserts it. The document
// itself is recorded as a version.
func IndexDocument(db SongIndex, id string, data []byte, at time.Time) error {
	s, err := song.Decode(data)
	if err != nil {
		return fmt.Errorf("index: decode %s: %w", id, err)
	}
	if at.IsZero() {
		at = time.Now().UTC()
	}
	row := models.SongSummary{
		ID:         id,
		Title:      s.Title,
		Artist:     s.Artist,
		Tuning:     s.Tuning,
		Capo:       s.Capo,
		Transpose:  s.Transpose,
		BlockCount: len(s.Blocks),
		Checksum:   checksum.Sum(data),
		UpdatedAt:  at,
	}
	return db.UpsertSong(row, SearchText(s), data)
}

// SearchText is the searchable body of a song: block labels, lyrics and
// drum grids, one block per paragraph.
func SearchText(s *song.Song) string {
	var parts []string
	for _, b := range s.Blocks {
		text := b.BlockLabel()
		switch v := b.(type) {
		case *song.Lyrics:
			text += "\n" + v.Content
		case *song.DrumTab:
			text += "\n" + v.Content
		}
		parts = append(parts, text)
	}
	return strings.Join(parts, "\n\n")
}

package index

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/starford/chordbook/internal/apperr"
	"github.com/starford/chordbook/internal/models"
)

// SearchResult represents one search hit.
type SearchResult struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Artist  string `json:"artist"`
	Snippet string `json:"snippet"`
}

const songColumns = `id, title, artist, tuning, capo, transpose, block_count, checksum, updated_at`

// UpsertSong inserts or replaces a song row and its FTS entry, and appends
// document as a new version when its checksum differs from the latest one.
func (db *DB) UpsertSong(row models.SongSummary, body string, document []byte) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	_, err = tx.Exec(`
		INSERT INTO songs (id, title, artist, tuning, capo, transpose, block_count, checksum, body, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title       = excluded.title,
			artist      = excluded.artist,
			tuning      = excluded.tuning,
			capo        = excluded.capo,
			transpose   = excluded.transpose,
			block_count = excluded.block_count,
			checksum    = excluded.checksum,
			body        = excluded.body,
			updated_at  = excluded.updated_at
	`, row.ID, row.Title, row.Artist, row.Tuning, row.Capo, row.Transpose, row.BlockCount, row.Checksum, body, row.UpdatedAt)
	if err != nil {
		return fmt.Errorf("index: upsert song: %w", err)
	}

	// FTS upsert (no-op when FTS5 tag is absent).
	if err := ftsUpsert(tx, row.ID, row.Title, row.Artist, body); err != nil {
		return err
	}

	var last sql.NullString
	var n int
	err = tx.QueryRow(`
		SELECT checksum, number FROM song_versions
		WHERE song_id = ? ORDER BY number DESC LIMIT 1
	`, row.ID).Scan(&last, &n)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("index: latest version: %w", err)
	}
	if !last.Valid || last.String != row.Checksum {
		_, err = tx.Exec(`
			INSERT INTO song_versions (song_id, number, checksum, document, created_at)
			VALUES (?, ?, ?, ?, ?)
		`, row.ID, n+1, row.Checksum, document, row.UpdatedAt)
		if err != nil {
			return fmt.Errorf("index: insert version: %w", err)
		}
	}

	return tx.Commit()
}

// DeleteSong removes a song and its FTS entry. Its version history is kept.
func (db *DB) DeleteSong(id string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	ftsDelete(tx, id)
	_, _ = tx.Exec(`DELETE FROM songs WHERE id = ?`, id)

	return tx.Commit()
}

// GetChecksum returns the stored checksum for a song, or empty string if not found.
func (db *DB) GetChecksum(id string) (string, error) {
	var cs string
	err := db.conn.QueryRow(`SELECT checksum FROM songs WHERE id = ?`, id).Scan(&cs)
	if err != nil {
		return "", nil // not found is fine
	}
	return cs, nil
}

// GetSong returns the indexed summary of one song.
func (db *DB) GetSong(id string) (*models.SongSummary, error) {
	row := db.conn.QueryRow(`SELECT `+songColumns+` FROM songs WHERE id = ?`, id)
	s, err := scanSong(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("index: get song: %w", err)
	}
	return s, nil
}

// ListSongs returns a page of songs and the total count. sort is one of
// "title", "artist" or "updated" (default, newest first).
func (db *DB) ListSongs(limit, offset int, sort string) ([]models.SongSummary, int, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	order := "updated_at DESC, id"
	switch sort {
	case "title":
		order = "title COLLATE NOCASE, id"
	case "artist":
		order = "artist COLLATE NOCASE, title COLLATE NOCASE, id"
	}

	var total int
	if err := db.conn.QueryRow(`SELECT COUNT(*) FROM songs`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("index: count songs: %w", err)
	}

	rows, err := db.conn.Query(`SELECT `+songColumns+` FROM songs ORDER BY `+order+` LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("index: list songs: %w", err)
	}
	defer rows.Close()

	out := []models.SongSummary{}
	for rows.Next() {
		s, err := scanSong(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("index: scan song: %w", err)
		}
		out = append(out, *s)
	}
	return out, total, rows.Err()
}

// AllChecksums returns id → checksum for every indexed song.
func (db *DB) AllChecksums() (map[string]string, error) {
	rows, err := db.conn.Query(`SELECT id, checksum FROM songs`)
	if err != nil {
		return nil, fmt.Errorf("index: all checksums: %w", err)
	}
	defer rows.Close()
	out := make(map[string]string)
	for rows.Next() {
		var id, cs string
		if err := rows.Scan(&id, &cs); err != nil {
			return nil, err
		}
		out[id] = cs
	}
	return out, rows.Err()
}

// Versions lists the stored revisions of a song, oldest first.
func (db *DB) Versions(id string) ([]models.Version, error) {
	rows, err := db.conn.Query(`
		SELECT song_id, number, checksum, created_at FROM song_versions
		WHERE song_id = ? ORDER BY number
	`, id)
	if err != nil {
		return nil, fmt.Errorf("index: versions: %w", err)
	}
	defer rows.Close()

	out := []models.Version{}
	for rows.Next() {
		var v models.Version
		if err := rows.Scan(&v.SongID, &v.Number, &v.Checksum, &v.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// Version returns the document stored as revision number of song id.
func (db *DB) Version(id string, number int) ([]byte, error) {
	var doc []byte
	err := db.conn.QueryRow(`
		SELECT document FROM song_versions WHERE song_id = ? AND number = ?
	`, id, number).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("index: version: %w", err)
	}
	return doc, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSong(r scanner) (*models.SongSummary, error) {
	var s models.SongSummary
	err := r.Scan(&s.ID, &s.Title, &s.Artist, &s.Tuning, &s.Capo, &s.Transpose, &s.BlockCount, &s.Checksum, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Package models defines the library-level types shared by storage, the
// index and the service layer.
package models

import "time"

// SongMetadata is a lightweight representation returned by storage listings.
type SongMetadata struct {
	ID        string    `json:"id"`
	Checksum  string    `json:"checksum"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SongSummary is one row of a song listing.
type SongSummary struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Artist     string    `json:"artist"`
	Tuning     string    `json:"tuning"`
	Capo       int       `json:"capo"`
	Transpose  int       `json:"transpose"`
	BlockCount int       `json:"block_count"`
	Checksum   string    `json:"checksum"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Version is one stored revision of a song document.
type Version struct {
	SongID    string    `json:"song_id"`
	Number    int       `json:"number"`
	Checksum  string    `json:"checksum"`
	CreatedAt time.Time `json:"created_at"`
}

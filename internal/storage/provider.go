// Package storage defines the song library file-system abstraction.
package storage

import "github.com/starford/chordbook/internal/models"

// Provider is the interface for song document persistence. Documents are
// addressed by song id.
type Provider interface {
	// List returns metadata for every stored song document.
	List() ([]models.SongMetadata, error)
	// Read returns the raw document bytes of song id.
	Read(id string) ([]byte, error)
	// Write atomically stores the document of song id.
	Write(id string, content []byte) error
	// Delete removes the document of song id.
	Delete(id string) error
}

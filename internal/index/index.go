package index

import "github.com/starford/chordbook/internal/models"

// SongIndex defines the interface for song indexing operations.
// Consumers should depend on this interface rather than the concrete *DB type
// to facilitate testing with mocks.
type SongIndex interface {
	UpsertSong(row models.SongSummary, body string, document []byte) error
	DeleteSong(id string) error
	GetChecksum(id string) (string, error)
	GetSong(id string) (*models.SongSummary, error)
	ListSongs(limit, offset int, sort string) ([]models.SongSummary, int, error)
	Search(query string, limit int) ([]SearchResult, error)
	Versions(id string) ([]models.Version, error)
	Version(id string, number int) ([]byte, error)
	AllChecksums() (map[string]string, error)
	Close() error
}

// Verify *DB satisfies SongIndex at compile time.
var _ SongIndex = (*DB)(nil)

// Package song defines the song document: an ordered sequence of typed
// content blocks plus the tuning, capo and transpose context they render under.
package song

import (
	"github.com/google/uuid"

	"github.com/starford/chordbook/internal/tuning"
)

// Song is the root aggregate handed between the core and its persistence layer.
// An empty ID means the song has not been persisted yet.
type Song struct {
	ID        string
	Title     string
	Artist    string
	Duration  string
	AudioURL  string
	Tuning    string
	Capo      int
	Transpose int
	Blocks    []Block
}

// New returns a blank song in the default context.
func New(title string) *Song {
	return &Song{Title: title, Tuning: tuning.Default}
}

// Context is the musical state a song renders under.
type Context struct {
	Tuning    string `json:"tuning"`
	Capo      int    `json:"capo"`
	Transpose int    `json:"transpose"`
}

// DefaultContext is standard tuning, no capo, no transpose.
func DefaultContext() Context {
	return Context{Tuning: tuning.Default}
}

// Context returns the song's current musical context.
func (s *Song) Context() Context {
	return Context{Tuning: s.Tuning, Capo: s.Capo, Transpose: s.Transpose}
}

// SetContext replaces tuning, capo and transpose in one step.
func (s *Song) SetContext(c Context) {
	s.Tuning = c.Tuning
	s.Capo = c.Capo
	s.Transpose = c.Transpose
}

// NewID returns a fresh opaque identifier for songs and blocks.
func NewID() string {
	return uuid.NewString()
}

package song

import (
	"errors"
	"fmt"

	"github.com/starford/chordbook/internal/chordline"
)

// Edit errors.
var (
	ErrDuplicateID   = errors.New("duplicate block id")
	ErrBlockNotFound = errors.New("block not found")
	ErrBadReference  = errors.New("reference must target a non-reference block")
)

// Find returns the block with the given id.
func (s *Song) Find(id string) (Block, int, bool) {
	for i, b := range s.Blocks {
		if b.BlockID() == id {
			return b, i, true
		}
	}
	return nil, -1, false
}

// Resolve follows a reference block to its target. Non-reference blocks
// resolve to themselves. ok is false for dangling references and for
// references that point at another reference.
func (s *Song) Resolve(b Block) (Block, bool) {
	return resolve(b, func(id string) (Block, bool) {
		target, _, ok := s.Find(id)
		return target, ok
	})
}

// Lookup indexes blocks by id so many references resolve without rescanning
// the block list. Like Find, the first block with a given id wins.
type Lookup map[string]Block

// NewLookup indexes blocks.
func NewLookup(blocks []Block) Lookup {
	l := make(Lookup, len(blocks))
	for _, b := range blocks {
		if _, seen := l[b.BlockID()]; !seen {
			l[b.BlockID()] = b
		}
	}
	return l
}

// Resolve behaves like Song.Resolve over the indexed blocks.
func (l Lookup) Resolve(b Block) (Block, bool) {
	return resolve(b, func(id string) (Block, bool) {
		target, ok := l[id]
		return target, ok
	})
}

func resolve(b Block, find func(string) (Block, bool)) (Block, bool) {
	ref, isRef := b.(*Reference)
	if !isRef {
		return b, true
	}
	target, found := find(ref.OriginalID)
	if !found {
		return nil, false
	}
	if _, chained := target.(*Reference); chained {
		return nil, false
	}
	return target, true
}

// AddBlock appends b, assigning an id when it has none.
func (s *Song) AddBlock(b Block) error {
	return s.InsertBlock(len(s.Blocks), b)
}

// InsertBlock places b at index (clamped to the block range).
func (s *Song) InsertBlock(index int, b Block) error {
	if b.BlockID() == "" {
		setID(b, NewID())
	}
	if _, _, exists := s.Find(b.BlockID()); exists {
		return fmt.Errorf("song: insert %s: %w", b.BlockID(), ErrDuplicateID)
	}
	if ref, ok := b.(*Reference); ok {
		target, _, found := s.Find(ref.OriginalID)
		if found && target.Kind() == KindReference {
			return fmt.Errorf("song: insert %s: %w", b.BlockID(), ErrBadReference)
		}
	}
	index = max(0, min(index, len(s.Blocks)))
	s.Blocks = append(s.Blocks, nil)
	copy(s.Blocks[index+1:], s.Blocks[index:])
	s.Blocks[index] = b
	return nil
}

// InsertReference appends a reference to originalID labelled label. When
// originalID is itself a reference, the new block points at its target.
func (s *Song) InsertReference(originalID, label string) (*Reference, error) {
	target, _, found := s.Find(originalID)
	if !found {
		return nil, fmt.Errorf("song: reference %s: %w", originalID, ErrBlockNotFound)
	}
	if r, chained := target.(*Reference); chained {
		originalID = r.OriginalID
	}
	if label == "" {
		label = target.BlockLabel()
	}
	ref := &Reference{Header: Header{ID: NewID(), Label: label}, OriginalID: originalID}
	if err := s.AddBlock(ref); err != nil {
		return nil, err
	}
	return ref, nil
}

// RemoveBlock deletes the block with id. References to it are left in place
// and render as unknown sections.
func (s *Song) RemoveBlock(id string) error {
	_, i, found := s.Find(id)
	if !found {
		return fmt.Errorf("song: remove %s: %w", id, ErrBlockNotFound)
	}
	s.Blocks = append(s.Blocks[:i], s.Blocks[i+1:]...)
	return nil
}

// MoveBlock moves the block with id to position to.
func (s *Song) MoveBlock(id string, to int) error {
	b, i, found := s.Find(id)
	if !found {
		return fmt.Errorf("song: move %s: %w", id, ErrBlockNotFound)
	}
	s.Blocks = append(s.Blocks[:i], s.Blocks[i+1:]...)
	to = max(0, min(to, len(s.Blocks)))
	s.Blocks = append(s.Blocks, nil)
	copy(s.Blocks[to+1:], s.Blocks[to:])
	s.Blocks[to] = b
	return nil
}

// RenameBlock changes the label of the block with id.
func (s *Song) RenameBlock(id, label string) error {
	b, _, found := s.Find(id)
	if !found {
		return fmt.Errorf("song: rename %s: %w", id, ErrBlockNotFound)
	}
	b.SetLabel(label)
	return nil
}

// BakeTranspose rewrites every chord in lyrics blocks by the current
// transpose amount and resets Transpose to zero. Tab and drum blocks are
// untouched; tab frets keep rendering under the remaining tuning and capo.
func (s *Song) BakeTranspose() {
	if s.Transpose == 0 {
		return
	}
	for _, b := range s.Blocks {
		if l, ok := b.(*Lyrics); ok {
			l.Content = chordline.TransposeContent(l.Content, s.Transpose)
		}
	}
	s.Transpose = 0
}

// Clone returns a deep copy of the song.
func (s *Song) Clone() *Song {
	c := *s
	c.Blocks = make([]Block, len(s.Blocks))
	for i, b := range s.Blocks {
		c.Blocks[i] = Clone(b)
	}
	return &c
}

func setID(b Block, id string) {
	switch v := b.(type) {
	case *Lyrics:
		v.ID = id
	case *Tab:
		v.ID = id
	case *DrumTab:
		v.ID = id
	case *Reference:
		v.ID = id
	}
}

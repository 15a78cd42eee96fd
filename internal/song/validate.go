package song

import (
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"github.com/starford/chordbook/internal/tuning"
)

// Validate checks the document invariants a save must satisfy: unique block
// ids, a known tuning, a non-negative capo, supported tab string counts and
// references that do not target other references. Dangling references are
// allowed.
func (s *Song) Validate() error {
	if err := validation.ValidateStruct(s,
		validation.Field(&s.Tuning, validation.Required, validation.In(anySlice(tuning.Keys())...)),
		validation.Field(&s.Capo, validation.Min(0)),
		validation.Field(&s.AudioURL, is.RequestURI),
	); err != nil {
		return fmt.Errorf("song: %w", err)
	}

	lookup := NewLookup(s.Blocks)
	seen := make(map[string]struct{}, len(s.Blocks))
	for i, b := range s.Blocks {
		if b.BlockID() == "" {
			return fmt.Errorf("song: block %d has no id", i)
		}
		if _, dup := seen[b.BlockID()]; dup {
			return fmt.Errorf("song: block %s: %w", b.BlockID(), ErrDuplicateID)
		}
		seen[b.BlockID()] = struct{}{}

		switch v := b.(type) {
		case *Tab:
			if err := validation.Validate(v.Strings, validation.Min(MinStrings), validation.Max(MaxStrings)); err != nil {
				return fmt.Errorf("song: block %s strings: %w", v.ID, err)
			}
		case *Reference:
			if target, ok := lookup[v.OriginalID]; ok && target.Kind() == KindReference {
				return fmt.Errorf("song: block %s: %w", v.ID, ErrBadReference)
			}
		}
	}
	return nil
}

func anySlice(in []string) []any {
	out := make([]any, len(in))
	for i, s := range in {
		out[i] = s
	}
	return out
}

package session

import (
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/scribeworks/redline/internal/model"
)

// Applier is the editor collaborator contract. Apply receives the full
// diff set, relocation hints included, and re-locates each target span in
// its current live content; Discard drops any visual diff markers for the
// area without touching content.
type Applier interface {
	Apply(diffAreaID string, diffs []model.Diff) error
	Discard(diffAreaID string)
}

// Dispatcher translates a session resolution into a single instruction to
// the editor collaborator. It performs no text surgery itself: the live
// document may have drifted from the session's captured old content since
// the proposal was generated, so application always targets the editor's
// current content, and a discard never falls back to overwriting the
// document with the proposal's new content.
type Dispatcher struct {
	applier Applier
}

// NewDispatcher wires a dispatcher to the editor collaborator.
func NewDispatcher(a Applier) *Dispatcher {
	return &Dispatcher{applier: a}
}

// Apply instructs the editor to apply the session's diffs against its
// current live content.
func (d *Dispatcher) Apply(s *Session) error {
	log.Debug().Str("area", s.DiffAreaID).Int("diffs", len(s.Diffs)).Msg("dispatching apply")
	if err := d.applier.Apply(s.DiffAreaID, s.Diffs); err != nil {
		return fmt.Errorf("apply diff area %s: %w", s.DiffAreaID, err)
	}
	return nil
}

// Discard instructs the editor to drop the area's diff markers, leaving
// content untouched.
func (d *Dispatcher) Discard(s *Session) {
	log.Debug().Str("area", s.DiffAreaID).Msg("dispatching discard")
	d.applier.Discard(s.DiffAreaID)
}

// Package editor provides an in-memory editor collaborator: a document
// buffer that applies proposed diffs against its current live content via
// relocation, and tracks visual diff markers per diff area.
package editor

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/scribeworks/redline/internal/model"
	"github.com/scribeworks/redline/internal/relocate"
)

// Buffer holds live document content. The user may keep typing while a
// proposal is under review, so application never assumes the content
// still matches the proposal's captured original: every diff is re-located
// before splicing.
type Buffer struct {
	mu      sync.Mutex
	content string
	locator *relocate.Locator
	markers map[string]bool
}

// NewBuffer creates a buffer with initial content.
func NewBuffer(content string) *Buffer {
	return &Buffer{
		content: content,
		locator: relocate.NewLocator(),
		markers: make(map[string]bool),
	}
}

// Content returns the current live content.
func (b *Buffer) Content() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.content
}

// SetContent replaces the live content, as user edits do.
func (b *Buffer) SetContent(content string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.content = content
}

// MarkArea records that visual diff markers exist for an area.
func (b *Buffer) MarkArea(diffAreaID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.markers[diffAreaID] = true
}

// HasMarkers reports whether an area still has visual diff markers.
func (b *Buffer) HasMarkers(diffAreaID string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.markers[diffAreaID]
}

// Apply splices every diff into the live content, re-locating each target
// span first. Splices happen on a working copy and commit only when all
// diffs land, so a relocation failure leaves the document exactly as it
// was. Confidence and strategy of each relocation are written back onto
// the diff records as display hints.
func (b *Buffer) Apply(diffAreaID string, diffs []model.Diff) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	work := b.content
	for i := range diffs {
		d := &diffs[i]
		if d.ElementType == model.ElementReplaceWhole {
			work = d.NewText
			d.Confidence = 1.0
			d.Strategy = model.StrategyExact
			continue
		}

		m, err := b.locator.Locate(work, d)
		if err != nil {
			log.Warn().
				Str("area", diffAreaID).
				Str("diff", d.DiffID).
				Str("type", d.DiffType.String()).
				Err(err).
				Msg("relocation failed, apply aborted")
			return fmt.Errorf("diff %s: %w", d.DiffID, err)
		}
		d.Confidence = m.Confidence
		d.Strategy = m.Strategy
		work = work[:m.Start] + d.NewText + work[m.End:]
	}

	b.content = work
	delete(b.markers, diffAreaID)
	return nil
}

// Discard drops the area's visual markers and leaves content untouched.
func (b *Buffer) Discard(diffAreaID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.markers, diffAreaID)
}

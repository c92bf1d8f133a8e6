// Package session tracks diff review sessions: a set of proposed diffs
// bound to one document region, reviewed paragraph by paragraph and
// resolved to exactly one of applied or discarded.
package session

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/scribeworks/redline/internal/diff"
	"github.com/scribeworks/redline/internal/model"
)

// State of a review session.
type State int

const (
	StatePending State = iota
	StateApplied
	StateDiscarded
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateApplied:
		return "applied"
	case StateDiscarded:
		return "discarded"
	default:
		return "unknown"
	}
}

// Session binds a proposal's diffs and content pair to a document region
// under review. It is owned by the Manager; surfaces observe and mutate
// it only through the Manager's transitions.
type Session struct {
	DiffAreaID string
	Diffs      []model.Diff
	OldContent string
	NewContent string
	FilePath   string

	// Generation increases per document with each opened session, so a
	// caller holding a stale proposal can detect that a newer one already
	// replaced it before clobbering an in-review session.
	Generation uint64

	paragraphs []model.Paragraph
	confirmed  map[string]struct{}
}

// ParagraphView is one paragraph plus its confirmation flag, for review
// surfaces to draw.
type ParagraphView struct {
	model.Paragraph
	Confirmed bool
}

// Paragraphs returns the session's review units in order.
func (s *Session) Paragraphs() []ParagraphView {
	views := make([]ParagraphView, len(s.paragraphs))
	for i, p := range s.paragraphs {
		_, ok := s.confirmed[p.ID]
		views[i] = ParagraphView{Paragraph: p, Confirmed: ok}
	}
	return views
}

// ConfirmedCount returns how many paragraphs have been confirmed.
func (s *Session) ConfirmedCount() int { return len(s.confirmed) }

// Manager owns at most one live session per document. Opening a proposal
// for a document that already has a pending session replaces it outright;
// the newest proposal always wins and no merge of two pending sessions
// exists.
type Manager struct {
	dispatcher   *Dispatcher
	gap          int
	contextChars int

	mu          sync.Mutex
	sessions    map[string]*Session
	generations map[string]uint64
}

// NewManager creates a Manager that resolves sessions against the given
// editor collaborator. gap is the paragraph grouping threshold and
// contextChars the per-record context capture width; zero means the
// default for either.
func NewManager(applier Applier, gap, contextChars int) *Manager {
	return &Manager{
		dispatcher:   NewDispatcher(applier),
		gap:          gap,
		contextChars: contextChars,
		sessions:     make(map[string]*Session),
		generations:  make(map[string]uint64),
	}
}

// Open validates a proposal and opens a pending session for doc. When the
// proposal carries pre-computed diffs they are lowered directly into
// paragraphs; otherwise the content pair goes through the differ. A prior
// pending session for doc is dropped, not merged.
func (m *Manager) Open(doc string, p model.Proposal) (*Session, error) {
	if err := p.Validate(); err != nil {
		log.Warn().Str("doc", doc).Err(err).Msg("proposal rejected at ingestion")
		return nil, err
	}

	changes := diff.Lower(p.Diffs)
	paragraphs := diff.Group(changes, m.gap)

	m.mu.Lock()
	defer m.mu.Unlock()

	if old, ok := m.sessions[doc]; ok {
		log.Info().
			Str("doc", doc).
			Str("old_area", old.DiffAreaID).
			Str("new_area", p.DiffAreaID).
			Int("confirmed_dropped", len(old.confirmed)).
			Msg("pending session replaced by new proposal")
	}

	m.generations[doc]++
	s := &Session{
		DiffAreaID: p.DiffAreaID,
		Diffs:      p.Diffs,
		OldContent: p.OldContent,
		NewContent: p.NewContent,
		FilePath:   p.FilePath,
		Generation: m.generations[doc],
		paragraphs: paragraphs,
		confirmed:  make(map[string]struct{}),
	}
	m.sessions[doc] = s
	return s, nil
}

// OpenPair opens a session from a raw content pair when no pre-computed
// diffs are available, routing through the record differ first.
func (m *Manager) OpenPair(doc, filePath, oldContent, newContent string) (*Session, error) {
	p, err := diff.BuildProposal(filePath, oldContent, newContent, m.contextChars)
	if err != nil {
		return nil, err
	}
	if len(p.Diffs) == 0 {
		return nil, fmt.Errorf("%w: contents are identical", model.ErrMalformedProposal)
	}
	return m.Open(doc, p)
}

// Get returns the pending session for doc, or nil.
func (m *Manager) Get(doc string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessions[doc]
}

// Generation returns the latest session generation for doc. Callers with
// an out-of-order proposal compare against this before opening.
func (m *Manager) Generation(doc string) uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.generations[doc]
}

// ConfirmParagraph marks one paragraph as reviewed. Confirming the last
// remaining paragraph does not apply the session; only ConfirmAll does.
// An unknown paragraph id is a no-op: ids go stale when a session is
// silently replaced, and a late click must not be an error.
func (m *Manager) ConfirmParagraph(doc, paragraphID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[doc]
	if !ok {
		log.Warn().Str("doc", doc).Str("paragraph", paragraphID).Msg("confirm on document without session")
		return
	}
	if !s.hasParagraph(paragraphID) {
		log.Warn().
			Str("doc", doc).
			Str("area", s.DiffAreaID).
			Str("paragraph", paragraphID).
			Msg("confirm on unknown paragraph id")
		return
	}
	s.confirmed[paragraphID] = struct{}{}
}

func (s *Session) hasParagraph(id string) bool {
	for _, p := range s.paragraphs {
		if p.ID == id {
			return true
		}
	}
	return false
}

// ConfirmAll resolves the session to applied regardless of which
// paragraphs were individually confirmed, emitting exactly one apply
// instruction with the session's full diff set, then clears the session.
// A failed apply still resolves the session; retrying means opening a new
// proposal. Calling it with no pending session is a no-op.
func (m *Manager) ConfirmAll(doc string) error {
	m.mu.Lock()
	s, ok := m.sessions[doc]
	if ok {
		delete(m.sessions, doc)
	}
	m.mu.Unlock()

	if !ok {
		return nil
	}
	return m.dispatcher.Apply(s)
}

// Reject resolves the session to discarded, emitting exactly one discard
// instruction, then clears the session. Rejecting twice is a no-op, not
// an error, to tolerate duplicate UI events.
func (m *Manager) Reject(doc string) {
	m.mu.Lock()
	s, ok := m.sessions[doc]
	if ok {
		delete(m.sessions, doc)
	}
	m.mu.Unlock()

	if !ok {
		return
	}
	m.dispatcher.Discard(s)
}

// Clear drops the pending session for doc without emitting any
// instruction. Used when the document itself closes mid-review.
func (m *Manager) Clear(doc string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, doc)
}

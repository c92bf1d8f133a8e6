package session

import (
	"errors"
	"fmt"
	"testing"

	"github.com/scribeworks/redline/internal/model"
)

// fakeApplier records every instruction the manager dispatches.
type fakeApplier struct {
	applies  []string
	diffSets [][]model.Diff
	discards []string
	applyErr error
}

func (f *fakeApplier) Apply(areaID string, diffs []model.Diff) error {
	f.applies = append(f.applies, areaID)
	f.diffSets = append(f.diffSets, diffs)
	return f.applyErr
}

func (f *fakeApplier) Discard(areaID string) {
	f.discards = append(f.discards, areaID)
}

// threeParagraphProposal builds a proposal whose diffs group into three
// paragraphs: insertions at lines 1, 10 and 20 sit farther apart than
// the grouping gap.
func threeParagraphProposal(areaID string) model.Proposal {
	var diffs []model.Diff
	for i, line := range []int{1, 10, 20} {
		diffs = append(diffs, model.Diff{
			DiffID:     fmt.Sprintf("diff_%d", i),
			DiffAreaID: areaID,
			DiffType:   model.DiffInsertion,
			NewText:    fmt.Sprintf("inserted %d", i),
			StartLine:  line,
			EndLine:    line,
		})
	}
	return model.Proposal{
		DiffAreaID: areaID,
		Diffs:      diffs,
		OldContent: "old",
		NewContent: "new",
	}
}

func TestOpenGroupsParagraphs(t *testing.T) {
	m := NewManager(&fakeApplier{}, 0, 0)

	s, err := m.Open("doc", threeParagraphProposal("diff_area_1"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if got := len(s.Paragraphs()); got != 3 {
		t.Fatalf("expected 3 paragraphs, got %d", got)
	}
	if s.Generation != 1 {
		t.Errorf("expected generation 1, got %d", s.Generation)
	}
	for i, p := range s.Paragraphs() {
		if p.Confirmed {
			t.Errorf("paragraph %d confirmed on open", i)
		}
	}
}

func TestOpenRejectsMalformed(t *testing.T) {
	m := NewManager(&fakeApplier{}, 0, 0)

	_, err := m.Open("doc", model.Proposal{DiffAreaID: "diff_area_1", OldContent: "a", NewContent: "b"})
	if !errors.Is(err, model.ErrMalformedProposal) {
		t.Fatalf("expected ErrMalformedProposal, got %v", err)
	}
	if m.Get("doc") != nil {
		t.Error("rejected proposal left a session behind")
	}
}

func TestOpenReplacesPendingSession(t *testing.T) {
	m := NewManager(&fakeApplier{}, 0, 0)

	first, err := m.Open("doc", threeParagraphProposal("diff_area_1"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	m.ConfirmParagraph("doc", first.Paragraphs()[0].ID)
	if first.ConfirmedCount() != 1 {
		t.Fatalf("expected 1 confirmation, got %d", first.ConfirmedCount())
	}

	second, err := m.Open("doc", threeParagraphProposal("diff_area_2"))
	if err != nil {
		t.Fatalf("replacement Open failed: %v", err)
	}
	if second.ConfirmedCount() != 0 {
		t.Errorf("replacement session inherited %d confirmations", second.ConfirmedCount())
	}
	if second.Generation != 2 {
		t.Errorf("expected generation 2 after replacement, got %d", second.Generation)
	}
	if got := m.Get("doc").DiffAreaID; got != "diff_area_2" {
		t.Errorf("expected live session for diff_area_2, got %s", got)
	}
	if m.Generation("doc") != 2 {
		t.Errorf("expected manager generation 2, got %d", m.Generation("doc"))
	}
}

func TestConfirmParagraphStaleIDNoop(t *testing.T) {
	m := NewManager(&fakeApplier{}, 0, 0)

	s, err := m.Open("doc", threeParagraphProposal("diff_area_1"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	m.ConfirmParagraph("doc", "para_gone")
	m.ConfirmParagraph("other-doc", s.Paragraphs()[0].ID)
	if s.ConfirmedCount() != 0 {
		t.Errorf("stale confirmations were recorded: %d", s.ConfirmedCount())
	}
}

func TestConfirmLastParagraphDoesNotApply(t *testing.T) {
	applier := &fakeApplier{}
	m := NewManager(applier, 0, 0)

	s, err := m.Open("doc", threeParagraphProposal("diff_area_1"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	for _, p := range s.Paragraphs() {
		m.ConfirmParagraph("doc", p.ID)
	}

	if len(applier.applies) != 0 {
		t.Errorf("confirming every paragraph dispatched %d applies", len(applier.applies))
	}
	if m.Get("doc") == nil {
		t.Error("session resolved without an explicit confirm-all")
	}
}

func TestConfirmAllAppliesFullDiffSet(t *testing.T) {
	applier := &fakeApplier{}
	m := NewManager(applier, 0, 0)

	s, err := m.Open("doc", threeParagraphProposal("diff_area_1"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	// Only one of three paragraphs individually confirmed.
	m.ConfirmParagraph("doc", s.Paragraphs()[0].ID)

	if err := m.ConfirmAll("doc"); err != nil {
		t.Fatalf("ConfirmAll failed: %v", err)
	}
	if len(applier.applies) != 1 {
		t.Fatalf("expected exactly 1 apply instruction, got %d", len(applier.applies))
	}
	if applier.applies[0] != "diff_area_1" {
		t.Errorf("apply targeted area %s", applier.applies[0])
	}
	if len(applier.diffSets[0]) != 3 {
		t.Errorf("expected the full diff set of 3, got %d", len(applier.diffSets[0]))
	}
	if m.Get("doc") != nil {
		t.Error("session survived confirm-all")
	}
}

func TestConfirmAllWithoutSession(t *testing.T) {
	applier := &fakeApplier{}
	m := NewManager(applier, 0, 0)

	if err := m.ConfirmAll("doc"); err != nil {
		t.Fatalf("ConfirmAll on empty manager returned %v", err)
	}
	if len(applier.applies) != 0 {
		t.Errorf("dispatched %d applies with no session", len(applier.applies))
	}
}

func TestConfirmAllFailureStillResolves(t *testing.T) {
	applier := &fakeApplier{applyErr: errors.New("no editor connected")}
	m := NewManager(applier, 0, 0)

	if _, err := m.Open("doc", threeParagraphProposal("diff_area_1")); err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if err := m.ConfirmAll("doc"); err == nil {
		t.Fatal("expected apply error to propagate")
	}
	if m.Get("doc") != nil {
		t.Error("failed apply left the session pending; retry needs a new proposal")
	}
}

func TestRejectIdempotent(t *testing.T) {
	applier := &fakeApplier{}
	m := NewManager(applier, 0, 0)

	if _, err := m.Open("doc", threeParagraphProposal("diff_area_1")); err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	m.Reject("doc")
	m.Reject("doc")

	if len(applier.discards) != 1 {
		t.Fatalf("expected exactly 1 discard instruction, got %d", len(applier.discards))
	}
	if applier.discards[0] != "diff_area_1" {
		t.Errorf("discard targeted area %s", applier.discards[0])
	}
	if len(applier.applies) != 0 {
		t.Errorf("reject dispatched %d applies", len(applier.applies))
	}
	if m.Get("doc") != nil {
		t.Error("session survived reject")
	}
}

func TestClearEmitsNothing(t *testing.T) {
	applier := &fakeApplier{}
	m := NewManager(applier, 0, 0)

	if _, err := m.Open("doc", threeParagraphProposal("diff_area_1")); err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	m.Clear("doc")

	if m.Get("doc") != nil {
		t.Error("session survived clear")
	}
	if len(applier.applies) != 0 || len(applier.discards) != 0 {
		t.Error("clear dispatched an instruction")
	}
}

func TestOpenPairIdenticalContents(t *testing.T) {
	m := NewManager(&fakeApplier{}, 0, 0)

	_, err := m.OpenPair("doc", "doc.md", "same", "same")
	if !errors.Is(err, model.ErrMalformedProposal) {
		t.Fatalf("expected ErrMalformedProposal, got %v", err)
	}
}

func TestOpenPairComputesRecords(t *testing.T) {
	m := NewManager(&fakeApplier{}, 0, 0)

	s, err := m.OpenPair("doc", "doc.md", "one\ntwo\nthree", "one\n2\nthree")
	if err != nil {
		t.Fatalf("OpenPair failed: %v", err)
	}
	if len(s.Diffs) == 0 {
		t.Fatal("expected computed diff records")
	}
	if len(s.Paragraphs()) == 0 {
		t.Fatal("expected at least one paragraph")
	}
	if s.FilePath != "doc.md" {
		t.Errorf("unexpected file path %q", s.FilePath)
	}
}

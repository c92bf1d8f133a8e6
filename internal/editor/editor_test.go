package editor

import (
	"strings"
	"testing"

	"github.com/scribeworks/redline/internal/diff"
	"github.com/scribeworks/redline/internal/model"
	"github.com/scribeworks/redline/internal/relocate"
)

func TestApplyEdit(t *testing.T) {
	buf := NewBuffer("intro\nHello world\noutro")
	buf.MarkArea("diff_area_1")

	diffs := []model.Diff{{
		DiffID:       "diff_1",
		DiffType:     model.DiffEdit,
		OriginalText: "Hello world",
		NewText:      "Hello Go",
	}}
	if err := buf.Apply("diff_area_1", diffs); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	if got := buf.Content(); got != "intro\nHello Go\noutro" {
		t.Errorf("unexpected content %q", got)
	}
	if diffs[0].Strategy != model.StrategyExact || diffs[0].Confidence != 1.0 {
		t.Errorf("relocation hints not written back: %s at %v", diffs[0].Strategy, diffs[0].Confidence)
	}
	if buf.HasMarkers("diff_area_1") {
		t.Error("markers survived a successful apply")
	}
}

func TestApplyAgainstDriftedContent(t *testing.T) {
	// The user typed a heading after the proposal was computed; the
	// target span re-locates in the drifted content.
	buf := NewBuffer("# New heading\n\nthe old wording stands\n")

	err := buf.Apply("diff_area_1", []model.Diff{{
		DiffID:            "diff_1",
		DiffType:          model.DiffEdit,
		OriginalText:      "the old wording stands",
		NewText:           "the new wording stands",
		OriginalStartLine: 1,
	}})
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if got := buf.Content(); got != "# New heading\n\nthe new wording stands\n" {
		t.Errorf("unexpected content %q", got)
	}
}

func TestApplyFailureLeavesContentUntouched(t *testing.T) {
	original := "nothing matching here"
	buf := NewBuffer(original)

	diffs := []model.Diff{
		{
			DiffID:       "diff_1",
			DiffType:     model.DiffEdit,
			OriginalText: "nothing matching",
			NewText:      "something matching",
		},
		{
			DiffID:            "diff_2",
			DiffType:          model.DiffEdit,
			OriginalText:      "a span that was deleted by the user entirely",
			NewText:           "x",
			OriginalStartLine: 1,
		},
	}
	err := buf.Apply("diff_area_1", diffs)
	if err == nil {
		t.Fatal("expected relocation failure")
	}
	if !strings.Contains(err.Error(), "diff_2") {
		t.Errorf("error should name the failing diff: %v", err)
	}
	// The first diff located fine, but nothing may commit.
	if got := buf.Content(); got != original {
		t.Errorf("failed apply changed content to %q", got)
	}
}

func TestApplyWholeReplace(t *testing.T) {
	buf := NewBuffer("the entire old document\nwith two lines")

	diffs := []model.Diff{{
		DiffID:      "diff_1",
		DiffType:    model.DiffEdit,
		ElementType: model.ElementReplaceWhole,
		NewText:     "fresh document",
	}}
	if err := buf.Apply("diff_area_1", diffs); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if got := buf.Content(); got != "fresh document" {
		t.Errorf("unexpected content %q", got)
	}
	if diffs[0].Confidence != 1.0 {
		t.Errorf("whole replacement should report confidence 1.0, got %v", diffs[0].Confidence)
	}
}

func TestDiscardLeavesContent(t *testing.T) {
	buf := NewBuffer("untouchable")
	buf.MarkArea("diff_area_1")

	buf.Discard("diff_area_1")

	if got := buf.Content(); got != "untouchable" {
		t.Errorf("discard changed content to %q", got)
	}
	if buf.HasMarkers("diff_area_1") {
		t.Error("markers survived discard")
	}
}

// Records computed from a content pair and applied to a buffer holding
// the old content must reproduce the new content exactly.
func TestRecordsRoundTrip(t *testing.T) {
	for _, tc := range []struct {
		name string
		old  string
		new  string
	}{
		{"mid line insertion", "Hello world", "Hello brave world"},
		{"line edit", "alpha\nbeta\ngamma", "alpha\nbravo\ngamma"},
		{"deletion", "keep\ndrop this line\nkeep too", "keep\nkeep too"},
		{"whole replace", "aaa bbb ccc", "xyz qrs tuv"},
	} {
		p, err := diff.BuildProposal("doc.md", tc.old, tc.new, 0)
		if err != nil {
			t.Fatalf("%s: BuildProposal failed: %v", tc.name, err)
		}

		buf := NewBuffer(tc.old)
		if err := buf.Apply(p.DiffAreaID, p.Diffs); err != nil {
			t.Fatalf("%s: Apply failed: %v", tc.name, err)
		}
		if got := buf.Content(); got != tc.new {
			t.Errorf("%s: expected %q, got %q", tc.name, tc.new, got)
		}
		for i, d := range p.Diffs {
			if d.Strategy == "" {
				t.Errorf("%s: diff %d has no relocation strategy", tc.name, i)
			}
			if d.Confidence < relocate.MinConfidence {
				t.Errorf("%s: diff %d below minimum confidence: %v", tc.name, i, d.Confidence)
			}
		}
	}
}

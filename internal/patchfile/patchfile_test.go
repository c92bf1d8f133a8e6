package patchfile

import (
	"strings"
	"testing"

	"github.com/scribeworks/redline/internal/model"
)

const samplePatch = `diff --git a/doc.md b/doc.md
--- a/doc.md
+++ b/doc.md
@@ -1,2 +1,3 @@
 # Title
-Old description
+New description
+Added line
@@ -10,2 +11,1 @@
 closing words
-stale footnote
`

func TestParse(t *testing.T) {
	diffs, err := Parse(samplePatch, "diff_area_1")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(diffs) != 2 {
		t.Fatalf("expected 2 diffs, got %d", len(diffs))
	}

	// First hunk: removal plus additions lowers to an edit.
	d0 := diffs[0]
	if d0.DiffType != model.DiffEdit {
		t.Errorf("expected edit, got %s", d0.DiffType)
	}
	if d0.OriginalText != "Old description" {
		t.Errorf("unexpected original text %q", d0.OriginalText)
	}
	if d0.NewText != "New description\nAdded line" {
		t.Errorf("unexpected new text %q", d0.NewText)
	}
	if d0.OriginalStartLine != 2 || d0.OriginalEndLine != 2 {
		t.Errorf("unexpected original lines %d..%d", d0.OriginalStartLine, d0.OriginalEndLine)
	}
	if d0.StartLine != 2 || d0.EndLine != 3 {
		t.Errorf("unexpected new lines %d..%d", d0.StartLine, d0.EndLine)
	}
	if d0.ContextBefore != "# Title" {
		t.Errorf("unexpected context before %q", d0.ContextBefore)
	}
	if d0.DiffAreaID != "diff_area_1" {
		t.Errorf("diff not bound to area: %q", d0.DiffAreaID)
	}

	// Second hunk: removal only lowers to a deletion.
	d1 := diffs[1]
	if d1.DiffType != model.DiffDeletion {
		t.Errorf("expected deletion, got %s", d1.DiffType)
	}
	if d1.OriginalText != "stale footnote" {
		t.Errorf("unexpected original text %q", d1.OriginalText)
	}
	if d1.OriginalStartLine != 11 {
		t.Errorf("unexpected original start line %d", d1.OriginalStartLine)
	}
	if d1.ContextBefore != "closing words" {
		t.Errorf("unexpected context before %q", d1.ContextBefore)
	}
	if d1.NewText != "" {
		t.Errorf("deletion carries new text %q", d1.NewText)
	}

	for i, d := range diffs {
		if err := d.Validate(); err != nil {
			t.Errorf("diff %d fails validation: %v", i, err)
		}
	}
}

func TestParseSplitsHunkOnInteriorContext(t *testing.T) {
	// Two change runs inside one hunk, separated by a context line, must
	// come out as two records with their own line spans and contexts.
	patch := `diff --git a/doc.md b/doc.md
--- a/doc.md
+++ b/doc.md
@@ -1,4 +1,4 @@
 intro
-first old
+first new
 middle
-second old
+second new
`
	diffs, err := Parse(patch, "diff_area_1")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(diffs) != 2 {
		t.Fatalf("expected 2 diffs, got %d", len(diffs))
	}

	d0 := diffs[0]
	if d0.DiffType != model.DiffEdit {
		t.Errorf("expected edit, got %s", d0.DiffType)
	}
	if d0.OriginalText != "first old" || d0.NewText != "first new" {
		t.Errorf("first run carries wrong text: %q -> %q", d0.OriginalText, d0.NewText)
	}
	if d0.OriginalStartLine != 2 || d0.OriginalEndLine != 2 {
		t.Errorf("unexpected first-run lines %d..%d", d0.OriginalStartLine, d0.OriginalEndLine)
	}
	if d0.ContextBefore != "intro" || d0.ContextAfter != "middle" {
		t.Errorf("unexpected first-run context %q / %q", d0.ContextBefore, d0.ContextAfter)
	}

	d1 := diffs[1]
	if d1.OriginalText != "second old" || d1.NewText != "second new" {
		t.Errorf("second run carries wrong text: %q -> %q", d1.OriginalText, d1.NewText)
	}
	if d1.OriginalStartLine != 4 || d1.StartLine != 4 {
		t.Errorf("unexpected second-run lines %d / %d", d1.OriginalStartLine, d1.StartLine)
	}
	if d1.ContextBefore != "middle" || d1.ContextAfter != "" {
		t.Errorf("unexpected second-run context %q / %q", d1.ContextBefore, d1.ContextAfter)
	}
}

func TestParseInvalid(t *testing.T) {
	// Hunk header declares more lines than the fragment carries.
	truncated := `diff --git a/x b/x
--- a/x
+++ b/x
@@ -1,3 +1,1 @@
 only one line
`
	if _, err := Parse(truncated, "diff_area_1"); err == nil {
		t.Error("expected error for malformed patch")
	}
}

func TestFormatAndReparse(t *testing.T) {
	p := &model.Proposal{
		DiffAreaID: "diff_area_1",
		FilePath:   "doc.md",
		Diffs: []model.Diff{{
			DiffID:            "diff_1",
			DiffType:          model.DiffEdit,
			OriginalText:      "old line",
			OriginalStartLine: 4,
			OriginalEndLine:   4,
			NewText:           "new line one\nnew line two",
			StartLine:         4,
			EndLine:           5,
		}},
	}

	out := Format(p)
	for _, want := range []string{
		"diff --git a/doc.md b/doc.md",
		"--- a/doc.md",
		"+++ b/doc.md",
		"@@ -4,1 +4,2 @@",
		"-old line",
		"+new line one",
		"+new line two",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("formatted patch missing %q:\n%s", want, out)
		}
	}

	back, err := Parse(out, "diff_area_2")
	if err != nil {
		t.Fatalf("re-parsing formatted patch failed: %v", err)
	}
	if len(back) != 1 {
		t.Fatalf("expected 1 diff from re-parse, got %d", len(back))
	}
	if back[0].DiffType != model.DiffEdit {
		t.Errorf("expected edit, got %s", back[0].DiffType)
	}
	if back[0].OriginalText != "old line" || back[0].NewText != "new line one\nnew line two" {
		t.Errorf("re-parse lost content: %q -> %q", back[0].OriginalText, back[0].NewText)
	}
	if back[0].OriginalStartLine != 4 || back[0].StartLine != 4 {
		t.Errorf("re-parse lost positions: %d / %d", back[0].OriginalStartLine, back[0].StartLine)
	}
}

func TestFormatDefaultName(t *testing.T) {
	p := &model.Proposal{Diffs: []model.Diff{{
		DiffType:          model.DiffInsertion,
		NewText:           "added",
		StartLine:         1,
		OriginalStartLine: 1,
	}}}
	out := Format(p)
	if !strings.Contains(out, "a/document b/document") {
		t.Errorf("expected fallback file name, got:\n%s", out)
	}
}

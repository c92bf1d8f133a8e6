package model

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestDiffTypeJSON(t *testing.T) {
	for _, tc := range []struct {
		dt   DiffType
		wire string
	}{
		{DiffEdit, `"Edit"`},
		{DiffInsertion, `"Insertion"`},
		{DiffDeletion, `"Deletion"`},
	} {
		b, err := json.Marshal(tc.dt)
		if err != nil {
			t.Fatalf("marshal %s: %v", tc.dt, err)
		}
		if string(b) != tc.wire {
			t.Errorf("expected %s, got %s", tc.wire, b)
		}
		var back DiffType
		if err := json.Unmarshal(b, &back); err != nil {
			t.Fatalf("unmarshal %s: %v", b, err)
		}
		if back != tc.dt {
			t.Errorf("round trip changed %s to %s", tc.dt, back)
		}
	}

	var dt DiffType
	if err := json.Unmarshal([]byte(`"Rename"`), &dt); err == nil {
		t.Error("expected error for unknown diff type")
	}
}

func TestDiffValidate(t *testing.T) {
	for _, tc := range []struct {
		name string
		diff Diff
		ok   bool
	}{
		{"valid edit", Diff{DiffType: DiffEdit, OriginalText: "a", NewText: "b"}, true},
		{"edit missing new text", Diff{DiffType: DiffEdit, OriginalText: "a"}, false},
		{"edit missing original", Diff{DiffType: DiffEdit, NewText: "b"}, false},
		{"whole replace edit", Diff{DiffType: DiffEdit, ElementType: ElementReplaceWhole}, true},
		{"valid insertion", Diff{DiffType: DiffInsertion, NewText: "b"}, true},
		{"insertion with original", Diff{DiffType: DiffInsertion, OriginalText: "a", NewText: "b"}, false},
		{"valid deletion", Diff{DiffType: DiffDeletion, OriginalText: "a"}, true},
		{"deletion with new text", Diff{DiffType: DiffDeletion, OriginalText: "a", NewText: "b"}, false},
		{"unknown type", Diff{DiffType: DiffType(9)}, false},
	} {
		err := tc.diff.Validate()
		if tc.ok && err != nil {
			t.Errorf("%s: unexpected error %v", tc.name, err)
		}
		if !tc.ok && err == nil {
			t.Errorf("%s: expected error", tc.name)
		}
	}
}

func TestProposalUnmarshalMissingContent(t *testing.T) {
	full := `{"diff_area_id":"diff_area_1","diffs":[],"old_content":"","new_content":""}`
	var p Proposal
	if err := json.Unmarshal([]byte(full), &p); err != nil {
		t.Fatalf("empty strings are valid content, got %v", err)
	}

	for _, raw := range []string{
		`{"diff_area_id":"diff_area_1","diffs":[],"new_content":"b"}`,
		`{"diff_area_id":"diff_area_1","diffs":[],"old_content":"a"}`,
	} {
		var p Proposal
		err := json.Unmarshal([]byte(raw), &p)
		if !errors.Is(err, ErrMalformedProposal) {
			t.Errorf("expected ErrMalformedProposal for %s, got %v", raw, err)
		}
	}
}

func TestProposalValidate(t *testing.T) {
	valid := Proposal{
		DiffAreaID: "diff_area_1",
		Diffs:      []Diff{{DiffType: DiffInsertion, NewText: "x"}},
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid proposal rejected: %v", err)
	}

	noArea := valid
	noArea.DiffAreaID = ""
	if err := noArea.Validate(); !errors.Is(err, ErrMalformedProposal) {
		t.Errorf("expected ErrMalformedProposal for missing area id, got %v", err)
	}

	noDiffs := valid
	noDiffs.Diffs = nil
	if err := noDiffs.Validate(); !errors.Is(err, ErrMalformedProposal) {
		t.Errorf("expected ErrMalformedProposal for empty diffs, got %v", err)
	}

	badDiff := valid
	badDiff.Diffs = []Diff{{DiffType: DiffInsertion, OriginalText: "a", NewText: "x"}}
	if err := badDiff.Validate(); !errors.Is(err, ErrMalformedProposal) {
		t.Errorf("expected ErrMalformedProposal for invalid diff, got %v", err)
	}
}

func TestParagraphIDStable(t *testing.T) {
	change := Change{
		Type:     ChangeModify,
		Line:     4,
		OldLines: []string{"before"},
		NewLines: []string{"after"},
	}

	a := ParagraphID(4, change)
	b := ParagraphID(4, change)
	if a != b {
		t.Errorf("same input produced ids %s and %s", a, b)
	}
	if ParagraphID(5, change) == a {
		t.Error("different start line produced the same id")
	}

	other := change
	other.NewLines = []string{"different"}
	if ParagraphID(4, other) == a {
		t.Error("different content produced the same id")
	}
}

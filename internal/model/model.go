// Package model defines the core data types shared across redline.
package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"hash/fnv"
)

// DiffType categorizes a proposed change.
type DiffType int

const (
	DiffEdit DiffType = iota
	DiffInsertion
	DiffDeletion
)

func (t DiffType) String() string {
	switch t {
	case DiffEdit:
		return "Edit"
	case DiffInsertion:
		return "Insertion"
	case DiffDeletion:
		return "Deletion"
	default:
		return "unknown"
	}
}

// MarshalJSON encodes the diff type as its wire name.
func (t DiffType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON decodes a wire name into a DiffType.
func (t *DiffType) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	switch s {
	case "Edit":
		*t = DiffEdit
	case "Insertion":
		*t = DiffInsertion
	case "Deletion":
		*t = DiffDeletion
	default:
		return fmt.Errorf("unknown diff type %q", s)
	}
	return nil
}

// Element types for non-plain-text spans. ElementReplaceWhole marks a
// whole-document replacement, which is summarized rather than rendered
// character by character.
const (
	ElementText         = "text"
	ElementTable        = "table"
	ElementImage        = "image"
	ElementCodeBlock    = "code_block"
	ElementReplaceWhole = "replace_whole"
)

// Relocation strategies reported alongside a re-found target span.
const (
	StrategyExact   = "exact"
	StrategyContext = "context"
	StrategyFuzzy   = "fuzzy"
)

// Diff is one atomic proposed change to a document. Line numbers are
// 1-indexed. ContextBefore/ContextAfter carry surrounding plain text used
// to re-find the target span if the live document has drifted since the
// diff was computed; Confidence and Strategy are filled in by relocation
// and treated as opaque display hints everywhere else.
type Diff struct {
	DiffID     string   `json:"diff_id"`
	DiffAreaID string   `json:"diff_area_id"`
	DiffType   DiffType `json:"diff_type"`

	OriginalText      string `json:"original_text"`
	OriginalStartLine int    `json:"original_start_line"`
	OriginalEndLine   int    `json:"original_end_line"`

	NewText   string `json:"new_text"`
	StartLine int    `json:"start_line"`
	EndLine   int    `json:"end_line"`

	ContextBefore     string  `json:"context_before,omitempty"`
	ContextAfter      string  `json:"context_after,omitempty"`
	ElementType       string  `json:"element_type,omitempty"`
	ElementIdentifier string  `json:"element_identifier,omitempty"`
	Confidence        float64 `json:"confidence,omitempty"`
	Strategy          string  `json:"strategy,omitempty"`
}

// Validate checks the structural invariants of a single diff record.
func (d *Diff) Validate() error {
	switch d.DiffType {
	case DiffInsertion:
		if d.OriginalText != "" {
			return errors.New("insertion carries original text")
		}
	case DiffDeletion:
		if d.NewText != "" {
			return errors.New("deletion carries new text")
		}
	case DiffEdit:
		if d.ElementType == ElementReplaceWhole {
			break
		}
		if d.OriginalText == "" || d.NewText == "" {
			return errors.New("edit requires both original and new text")
		}
	default:
		return fmt.Errorf("unknown diff type %d", d.DiffType)
	}
	return nil
}

// ChangeType categorizes a differ output change.
type ChangeType int

const (
	ChangeInsert ChangeType = iota
	ChangeDelete
	ChangeModify
)

func (t ChangeType) String() string {
	switch t {
	case ChangeInsert:
		return "insert"
	case ChangeDelete:
		return "delete"
	case ChangeModify:
		return "modify"
	default:
		return "unknown"
	}
}

// CharOp is a character-level edit operation within a changed line.
type CharOp int

const (
	CharEqual CharOp = iota
	CharInsert
	CharDelete
)

// CharEdit is one span of a character-level diff.
type CharEdit struct {
	Op   CharOp
	Text string
}

// Change is the internal differ output: one line-level change, optionally
// refined with character-level edits. Line is the zero-based position in
// the new text (for deletions, the position the removed lines would have
// occupied in the surviving document). Ephemeral: lives only for the
// duration of one render or merge pass.
type Change struct {
	Type     ChangeType
	Line     int
	OldLines []string
	NewLines []string
	Edits    []CharEdit
}

// Paragraph is a contiguous group of changes presented together for
// review. Its ID is a pure function of the start line and the first
// change's content, so re-running grouping over identical input yields
// identical ids and recorded confirmations stay valid across re-renders.
type Paragraph struct {
	ID        string
	StartLine int
	EndLine   int
	Changes   []Change
}

// ParagraphID derives a stable paragraph identifier from the paragraph's
// start line and the content of its first change.
func ParagraphID(startLine int, firstChange Change) string {
	h := fnv.New64a()
	fmt.Fprintf(h, "%d:%s:%d", startLine, firstChange.Type, firstChange.Line)
	for _, l := range firstChange.OldLines {
		h.Write([]byte{0})
		h.Write([]byte(l))
	}
	for _, l := range firstChange.NewLines {
		h.Write([]byte{1})
		h.Write([]byte(l))
	}
	return fmt.Sprintf("para_%016x", h.Sum64())
}

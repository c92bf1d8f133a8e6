package model

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrMalformedProposal is returned when an edit proposal is structurally
// invalid and must be rejected at ingestion. Legitimately empty content
// (a valid empty string) is not malformed.
var ErrMalformedProposal = errors.New("malformed proposal")

// Proposal is the inbound edit-proposal event produced by the AI tool-call
// collaborator: a set of pre-computed diffs bound to one diff area, plus
// the content pair they were computed from.
type Proposal struct {
	DiffAreaID string `json:"diff_area_id"`
	Diffs      []Diff `json:"diffs"`
	OldContent string `json:"old_content"`
	NewContent string `json:"new_content"`
	FilePath   string `json:"file_path,omitempty"`
}

// UnmarshalJSON rejects proposals whose old_content or new_content keys
// are absent. An explicit empty string is valid; a missing field is not,
// and the distinction is lost once decoded into plain strings.
func (p *Proposal) UnmarshalJSON(b []byte) error {
	type alias Proposal
	aux := struct {
		OldContent *string `json:"old_content"`
		NewContent *string `json:"new_content"`
		*alias
	}{alias: (*alias)(p)}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	if aux.OldContent == nil {
		return fmt.Errorf("%w: missing old_content", ErrMalformedProposal)
	}
	if aux.NewContent == nil {
		return fmt.Errorf("%w: missing new_content", ErrMalformedProposal)
	}
	p.OldContent = *aux.OldContent
	p.NewContent = *aux.NewContent
	return nil
}

// Validate checks the proposal's required fields. A failing proposal must
// not open a review session.
func (p *Proposal) Validate() error {
	if p.DiffAreaID == "" {
		return fmt.Errorf("%w: missing diff_area_id", ErrMalformedProposal)
	}
	if len(p.Diffs) == 0 {
		return fmt.Errorf("%w: empty diffs", ErrMalformedProposal)
	}
	for i := range p.Diffs {
		if err := p.Diffs[i].Validate(); err != nil {
			return fmt.Errorf("%w: diff %d: %v", ErrMalformedProposal, i, err)
		}
	}
	return nil
}

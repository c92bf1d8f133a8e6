package diff

import "github.com/scribeworks/redline/internal/model"

// Merge collapses an adjacent delete-then-insert pair reporting the same
// line into a single modify change carrying both sides and the
// concatenation of their character-level edits (delete's first). The pass
// is greedy and single-step: a delete is only paired with the immediately
// following insert, never with a later one, even if they represent the
// same logical edit. No content is dropped; every input line survives in
// exactly one output change.
func Merge(changes []model.Change) []model.Change {
	if len(changes) < 2 {
		return changes
	}

	merged := make([]model.Change, 0, len(changes))
	for i := 0; i < len(changes); i++ {
		cur := changes[i]
		if i+1 < len(changes) &&
			cur.Type == model.ChangeDelete &&
			changes[i+1].Type == model.ChangeInsert &&
			cur.Line == changes[i+1].Line {
			next := changes[i+1]
			edits := make([]model.CharEdit, 0, len(cur.Edits)+len(next.Edits))
			edits = append(edits, cur.Edits...)
			edits = append(edits, next.Edits...)
			merged = append(merged, model.Change{
				Type:     model.ChangeModify,
				Line:     cur.Line,
				OldLines: cur.OldLines,
				NewLines: next.NewLines,
				Edits:    edits,
			})
			i++
			continue
		}
		merged = append(merged, cur)
	}
	return merged
}

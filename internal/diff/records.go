package diff

import (
	"errors"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/scribeworks/redline/internal/model"
	"github.com/scribeworks/redline/internal/relocate"
)

// ErrContentTooLarge is returned when either side of a content pair
// exceeds the record differ's size guard.
var ErrContentTooLarge = errors.New("content too large, edit in smaller sections")

const maxContentSize = 10 << 20 // 10MB per side

// NewAreaID mints a diff area identifier.
func NewAreaID() string { return "diff_area_" + uuid.NewString() }

func newDiffID() string { return "diff_" + uuid.NewString() }

// Records computes Diff records for a content pair. The diff runs over
// the visible plain text of both sides, with positions mapped back into
// the marked-up source for line numbers and context capture, so a record
// boundary never lands inside a tag. Adjacent deletion/insertion records
// are merged into edits, nearby records are coalesced, and a single edit
// spanning most of the document collapses into one whole-replacement
// record. contextChars is how much surrounding text each record captures
// for relocation; zero means the default.
func Records(oldContent, newContent string, contextChars int) ([]model.Diff, error) {
	if len(oldContent) > maxContentSize || len(newContent) > maxContentSize {
		return nil, ErrContentTooLarge
	}
	if contextChars <= 0 {
		contextChars = relocate.ContextChars
	}

	oldMap := relocate.BuildPositionMap(oldContent)
	newMap := relocate.BuildPositionMap(newContent)

	dmp := diffmatchpatch.New()
	ops := dmp.DiffMain(oldMap.Text, newMap.Text, false)
	ops = dmp.DiffCleanupSemantic(ops)

	var diffs []model.Diff
	oldPos, newPos := 0, 0 // rune positions in the plain text
	for _, op := range ops {
		n := utf8.RuneCountInString(op.Text)
		switch op.Type {
		case diffmatchpatch.DiffEqual:
			oldPos += n
			newPos += n

		case diffmatchpatch.DiffDelete:
			startLine := relocate.LineOf(oldContent, oldMap.SourcePos(oldPos))
			endLine := relocate.LineOf(oldContent, oldMap.SourcePos(oldPos+n)-1)
			before, after := relocate.ExtractContext(oldContent, startLine, endLine, contextChars)
			newLine := relocate.LineOf(newContent, newMap.SourcePos(newPos))
			diffs = append(diffs, model.Diff{
				DiffID:            newDiffID(),
				DiffType:          model.DiffDeletion,
				OriginalText:      op.Text,
				OriginalStartLine: startLine,
				OriginalEndLine:   endLine,
				StartLine:         newLine,
				EndLine:           newLine,
				ContextBefore:     before,
				ContextAfter:      after,
			})
			oldPos += n

		case diffmatchpatch.DiffInsert:
			insertLine := relocate.LineOf(oldContent, oldMap.SourcePos(oldPos))
			// Character-precise context around the insertion point. The
			// anchor's end is the point itself, so relocation can place a
			// mid-line insertion without a surviving span to search for.
			before, after := surround(oldMap.Text, oldPos, contextChars)
			startLine := relocate.LineOf(newContent, newMap.SourcePos(newPos))
			endLine := relocate.LineOf(newContent, newMap.SourcePos(newPos+n)-1)
			diffs = append(diffs, model.Diff{
				DiffID:            newDiffID(),
				DiffType:          model.DiffInsertion,
				NewText:           op.Text,
				OriginalStartLine: insertLine,
				OriginalEndLine:   insertLine,
				StartLine:         startLine,
				EndLine:           endLine,
				ContextBefore:     before,
				ContextAfter:      after,
			})
			newPos += n
		}
	}

	diffs = mergeDeleteInsert(diffs)
	diffs = coalesceNearby(diffs)
	diffs = detectWholeReplace(diffs, oldContent, newContent)
	return diffs, nil
}

// mergeDeleteInsert turns a deletion immediately followed by an insertion
// at the same or adjacent lines into a single edit record, keeping the
// deletion's context.
func mergeDeleteInsert(diffs []model.Diff) []model.Diff {
	merged := make([]model.Diff, 0, len(diffs))
	for i := 0; i < len(diffs); i++ {
		cur := diffs[i]
		if i+1 < len(diffs) &&
			cur.DiffType == model.DiffDeletion &&
			diffs[i+1].DiffType == model.DiffInsertion &&
			sameOrAdjacent(cur.OriginalStartLine, cur.OriginalEndLine, diffs[i+1].OriginalStartLine) &&
			sameOrAdjacent(cur.EndLine, cur.EndLine, diffs[i+1].StartLine) {
			next := diffs[i+1]
			merged = append(merged, model.Diff{
				DiffID:            newDiffID(),
				DiffType:          model.DiffEdit,
				OriginalText:      cur.OriginalText,
				OriginalStartLine: cur.OriginalStartLine,
				OriginalEndLine:   max(cur.OriginalEndLine, next.OriginalEndLine),
				NewText:           next.NewText,
				StartLine:         next.StartLine,
				EndLine:           next.EndLine,
				ContextBefore:     cur.ContextBefore,
				ContextAfter:      cur.ContextAfter,
			})
			i++
			continue
		}
		merged = append(merged, cur)
	}
	return merged
}

// surround returns up to n runes of text on each side of the rune
// position pos.
func surround(text string, pos, n int) (before, after string) {
	r := []rune(text)
	if pos > len(r) {
		pos = len(r)
	}
	return string(r[max(0, pos-n):pos]), string(r[pos:min(len(r), pos+n)])
}

func sameOrAdjacent(startLine, endLine, nextStart int) bool {
	return startLine == nextStart || endLine+1 == nextStart || (endLine == nextStart && endLine > 0)
}

// coalesceNearby merges runs of records into one record, extending the
// run while each next record falls within three lines of the run's end,
// cutting record count for character-level diffs that fragment a single
// logical edit.
func coalesceNearby(diffs []model.Diff) []model.Diff {
	var out []model.Diff
	for i := 0; i < len(diffs); {
		cur := diffs[i]
		acc := cur
		j := i + 1
		for j < len(diffs) {
			next := diffs[j]
			near := acc.OriginalStartLine == next.OriginalStartLine ||
				acc.OriginalEndLine+1 == next.OriginalStartLine ||
				(acc.OriginalEndLine < next.OriginalStartLine && next.OriginalStartLine <= acc.OriginalEndLine+3)
			if !near {
				break
			}
			acc.OriginalText += next.OriginalText
			acc.NewText += next.NewText
			acc.OriginalEndLine = max(acc.OriginalEndLine, next.OriginalEndLine)
			acc.EndLine = max(acc.EndLine, next.EndLine)
			if acc.ContextAfter == "" {
				acc.ContextAfter = next.ContextAfter
			}
			j++
		}
		if j > i+1 {
			acc.DiffID = newDiffID()
			switch {
			case cur.DiffType == model.DiffDeletion && acc.NewText == "":
				acc.DiffType = model.DiffDeletion
			case cur.DiffType == model.DiffInsertion && acc.OriginalText == "":
				acc.DiffType = model.DiffInsertion
			default:
				acc.DiffType = model.DiffEdit
			}
		}
		out = append(out, acc)
		i = j
	}
	return out
}

// detectWholeReplace collapses a lone edit covering more than half of
// either side into a single replace_whole record, which review surfaces
// summarize instead of rendering character by character.
func detectWholeReplace(diffs []model.Diff, oldContent, newContent string) []model.Diff {
	if len(diffs) != 1 || diffs[0].DiffType != model.DiffEdit {
		return diffs
	}
	oldChars := utf8.RuneCountInString(oldContent)
	newChars := utf8.RuneCountInString(newContent)
	origChars := utf8.RuneCountInString(diffs[0].OriginalText)
	editChars := utf8.RuneCountInString(diffs[0].NewText)
	if oldChars == 0 || (origChars <= oldChars/2 && editChars <= newChars/2) {
		return diffs
	}
	return []model.Diff{{
		DiffID:            newDiffID(),
		DiffType:          model.DiffEdit,
		OriginalText:      oldContent,
		OriginalStartLine: 1,
		OriginalEndLine:   1,
		NewText:           newContent,
		StartLine:         1,
		EndLine:           1,
		ElementType:       model.ElementReplaceWhole,
	}}
}

// BuildProposal computes records for a content pair and binds them to a
// freshly minted diff area.
func BuildProposal(filePath, oldContent, newContent string, contextChars int) (model.Proposal, error) {
	diffs, err := Records(oldContent, newContent, contextChars)
	if err != nil {
		return model.Proposal{}, err
	}
	areaID := NewAreaID()
	for i := range diffs {
		diffs[i].DiffAreaID = areaID
	}
	return model.Proposal{
		DiffAreaID: areaID,
		Diffs:      diffs,
		OldContent: oldContent,
		NewContent: newContent,
		FilePath:   filePath,
	}, nil
}

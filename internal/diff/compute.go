// Package diff computes structured changes between two versions of a
// document's text: a line-level diff refined with per-line character
// diffs, adjacent delete/insert merging, and grouping into reviewable
// paragraphs.
package diff

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/scribeworks/redline/internal/model"
)

// Compute produces the ordered change list between oldText and newText.
// Changes are reported at zero-based positions in the new text; deletions
// do not advance the position, so a run of deleted lines reports the line
// they would have occupied in the surviving document. Pure function:
// identical inputs always yield identical output, and Compute(a, a) is
// empty for any a.
func Compute(oldText, newText string) []model.Change {
	if oldText == newText {
		return nil
	}

	dmp := diffmatchpatch.New()
	rOld, rNew, lineArray := dmp.DiffLinesToRunes(oldText, newText)
	lineDiffs := dmp.DiffMainRunes(rOld, rNew, false)
	lineDiffs = dmp.DiffCleanupMerge(lineDiffs)

	var changes []model.Change
	line := 0 // current position in the new text
	for _, d := range lineDiffs {
		lines := decodeLines(d.Text, lineArray)
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			line += len(lines)
		case diffmatchpatch.DiffInsert:
			for _, l := range lines {
				l = strings.TrimSuffix(l, "\n")
				if l != "" {
					changes = append(changes, model.Change{
						Type:     model.ChangeInsert,
						Line:     line,
						NewLines: []string{l},
						Edits:    charDiff("", l),
					})
				}
				line++
			}
		case diffmatchpatch.DiffDelete:
			for _, l := range lines {
				l = strings.TrimSuffix(l, "\n")
				if l == "" {
					continue
				}
				changes = append(changes, model.Change{
					Type:     model.ChangeDelete,
					Line:     line,
					OldLines: []string{l},
					Edits:    charDiff(l, ""),
				})
			}
		}
	}
	return changes
}

// decodeLines maps a rune-encoded diff text back to the original lines
// using the lineArray produced by DiffLinesToRunes. Each decoded line
// keeps its trailing newline except possibly the last line of the input.
func decodeLines(s string, lineArray []string) []string {
	if s == "" {
		return nil
	}
	out := make([]string, 0, len(s))
	for _, r := range s {
		idx := int(r)
		if idx >= 0 && idx < len(lineArray) {
			out = append(out, lineArray[idx])
		}
	}
	return out
}

// charDiff computes a character-level edit script between two lines.
func charDiff(oldLine, newLine string) []model.CharEdit {
	if oldLine == newLine {
		return nil
	}
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(oldLine, newLine, false)
	diffs = dmp.DiffCleanupSemantic(diffs)

	edits := make([]model.CharEdit, 0, len(diffs))
	for _, d := range diffs {
		var op model.CharOp
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			op = model.CharEqual
		case diffmatchpatch.DiffInsert:
			op = model.CharInsert
		case diffmatchpatch.DiffDelete:
			op = model.CharDelete
		}
		edits = append(edits, model.CharEdit{Op: op, Text: d.Text})
	}
	return edits
}

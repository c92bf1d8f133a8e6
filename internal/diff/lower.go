package diff

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/scribeworks/redline/internal/model"
)

// Display caps for lowered edit records: an edit's rendered text is
// truncated to maxDisplayChars and maxDisplayLines, bounding render cost
// on large edits. Only the rendered representation is truncated; the
// underlying Diff record keeps its full text.
const (
	maxDisplayChars = 500
	maxDisplayLines = 20
)

const ellipsis = "…"

// Lower converts externally supplied (possibly relocated) diff records
// into the internal change representation, bypassing the differ. Content
// is only split on newline when it actually contains one, so markup
// fragments stay atomic instead of breaking mid-tag.
func Lower(diffs []model.Diff) []model.Change {
	var changes []model.Change
	for i := range diffs {
		d := &diffs[i]
		switch d.DiffType {
		case model.DiffDeletion:
			if strings.TrimSpace(d.OriginalText) == "" {
				continue
			}
			changes = append(changes, model.Change{
				Type:     model.ChangeDelete,
				Line:     zeroBased(d.OriginalStartLine),
				OldLines: DisplayLines(d.OriginalText),
			})
		case model.DiffInsertion:
			if strings.TrimSpace(d.NewText) == "" {
				continue
			}
			changes = append(changes, model.Change{
				Type:     model.ChangeInsert,
				Line:     zeroBased(d.StartLine),
				NewLines: DisplayLines(d.NewText),
			})
		case model.DiffEdit:
			if d.ElementType == model.ElementReplaceWhole {
				summary := ReplaceSummary(d.NewText)
				changes = append(changes, model.Change{
					Type:     model.ChangeModify,
					Line:     0,
					NewLines: []string{summary},
				})
				continue
			}
			oldLines := DisplayLines(d.OriginalText)
			newLines := DisplayLines(d.NewText)
			changes = append(changes, model.Change{
				Type:     model.ChangeModify,
				Line:     zeroBased(d.StartLine),
				OldLines: oldLines,
				NewLines: newLines,
				Edits:    charDiff(strings.Join(oldLines, "\n"), strings.Join(newLines, "\n")),
			})
		}
	}
	return changes
}

// ReplaceSummary is the size-based one-liner shown for a whole-document
// replacement. Full replacements are never rendered character by
// character.
func ReplaceSummary(newText string) string {
	return fmt.Sprintf("full text (%d chars) will be replaced",
		utf8.RuneCountInString(newText))
}

func zeroBased(line int) int {
	if line < 1 {
		return 0
	}
	return line - 1
}

// DisplayLines prepares text for rendering: truncate to the display caps
// and split on newline only if the text contains one. Every review
// surface routes record text through it before drawing.
func DisplayLines(text string) []string {
	if utf8.RuneCountInString(text) > maxDisplayChars {
		text = string([]rune(text)[:maxDisplayChars]) + ellipsis
	}
	if !strings.Contains(text, "\n") {
		return []string{text}
	}
	lines := strings.Split(text, "\n")
	if len(lines) > maxDisplayLines {
		lines = append(lines[:maxDisplayLines:maxDisplayLines], ellipsis)
	}
	return lines
}

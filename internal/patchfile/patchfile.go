// Package patchfile converts between proposals and git-style unified
// diffs, so a review session can be exported for audit and a patch file
// can serve as an alternate proposal source.
package patchfile

import (
	"fmt"
	"strings"

	"github.com/bluekeyes/go-gitdiff/gitdiff"

	"github.com/scribeworks/redline/internal/model"
)

// Parse reads a unified diff and lowers each contiguous run of changed
// lines into a Diff record. Runs with both removed and added lines become
// edits; add-only and delete-only runs become insertions and deletions.
// The context lines around each run populate the relocation context
// fields.
func Parse(raw, diffAreaID string) ([]model.Diff, error) {
	files, _, err := gitdiff.Parse(strings.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("parsing patch: %w", err)
	}

	var diffs []model.Diff
	n := 0
	for _, f := range files {
		for _, frag := range f.TextFragments {
			for _, d := range fragmentDiffs(frag) {
				n++
				d.DiffID = fmt.Sprintf("diff_patch_%d", n)
				d.DiffAreaID = diffAreaID
				diffs = append(diffs, d)
			}
		}
	}
	return diffs, nil
}

// block is a maximal run of same-kind fragment lines: either pure context
// or a contiguous stretch of removals and additions.
type block struct {
	context  bool
	ctx      []string
	removed  []string
	added    []string
	oldStart int
	newStart int
}

// fragmentDiffs splits a hunk on its interior context lines, one record
// per contiguous change run. A hunk with two change runs separated by
// context must not collapse into one record spanning lines it does not
// touch.
func fragmentDiffs(frag *gitdiff.TextFragment) []model.Diff {
	oldLine := int(frag.OldPosition)
	newLine := int(frag.NewPosition)

	var blocks []*block
	last := func(context bool) *block {
		if len(blocks) == 0 || blocks[len(blocks)-1].context != context {
			blocks = append(blocks, &block{context: context, oldStart: oldLine, newStart: newLine})
		}
		return blocks[len(blocks)-1]
	}
	for _, line := range frag.Lines {
		text := strings.TrimSuffix(line.Line, "\n")
		switch line.Op {
		case gitdiff.OpContext:
			b := last(true)
			b.ctx = append(b.ctx, text)
			oldLine++
			newLine++
		case gitdiff.OpDelete:
			b := last(false)
			b.removed = append(b.removed, text)
			oldLine++
		case gitdiff.OpAdd:
			b := last(false)
			b.added = append(b.added, text)
			newLine++
		}
	}

	var diffs []model.Diff
	for i, b := range blocks {
		if b.context {
			continue
		}
		d := model.Diff{
			OriginalText:      strings.Join(b.removed, "\n"),
			OriginalStartLine: b.oldStart,
			OriginalEndLine:   b.oldStart + max(len(b.removed)-1, 0),
			NewText:           strings.Join(b.added, "\n"),
			StartLine:         b.newStart,
			EndLine:           b.newStart + max(len(b.added)-1, 0),
		}
		if i > 0 && blocks[i-1].context {
			d.ContextBefore = strings.Join(blocks[i-1].ctx, "\n")
		}
		if i+1 < len(blocks) && blocks[i+1].context {
			d.ContextAfter = strings.Join(blocks[i+1].ctx, "\n")
		}
		switch {
		case len(b.removed) > 0 && len(b.added) > 0:
			d.DiffType = model.DiffEdit
		case len(b.added) > 0:
			d.DiffType = model.DiffInsertion
		default:
			d.DiffType = model.DiffDeletion
		}
		diffs = append(diffs, d)
	}
	return diffs
}

// Format renders a proposal's diffs as a unified diff for one file.
func Format(p *model.Proposal) string {
	name := p.FilePath
	if name == "" {
		name = "document"
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("diff --git a/%s b/%s\n", name, name))
	b.WriteString(fmt.Sprintf("--- a/%s\n", name))
	b.WriteString(fmt.Sprintf("+++ b/%s\n", name))

	for i := range p.Diffs {
		d := &p.Diffs[i]
		oldLines := contentLines(d.OriginalText)
		newLines := contentLines(d.NewText)
		b.WriteString(fmt.Sprintf("@@ -%d,%d +%d,%d @@\n",
			d.OriginalStartLine, len(oldLines),
			d.StartLine, len(newLines)))
		for _, l := range oldLines {
			b.WriteString("-" + l + "\n")
		}
		for _, l := range newLines {
			b.WriteString("+" + l + "\n")
		}
	}
	return b.String()
}

func contentLines(text string) []string {
	if text == "" {
		return nil
	}
	return strings.Split(strings.TrimSuffix(text, "\n"), "\n")
}

package diff

import "github.com/scribeworks/redline/internal/model"

// DefaultGap is the proximity threshold for grouping changes into
// paragraphs: changes within this many lines of the current paragraph's
// end extend it, anything farther starts a new one.
const DefaultGap = 3

// Group partitions an ordered change list into contiguous paragraphs.
// Every change lands in exactly one paragraph, paragraphs are ordered and
// non-overlapping by line range, and an empty paragraph cannot exist.
// Paragraph ids are content-derived, so grouping the same changes twice
// yields the same ids.
func Group(changes []model.Change, gap int) []model.Paragraph {
	if gap <= 0 {
		gap = DefaultGap
	}

	var paragraphs []model.Paragraph
	var cur *model.Paragraph
	for _, c := range changes {
		if cur != nil && c.Line-cur.EndLine <= gap {
			cur.EndLine = c.Line
			cur.Changes = append(cur.Changes, c)
			continue
		}
		if cur != nil {
			paragraphs = append(paragraphs, *cur)
		}
		cur = &model.Paragraph{
			ID:        model.ParagraphID(c.Line, c),
			StartLine: c.Line,
			EndLine:   c.Line,
			Changes:   []model.Change{c},
		}
	}
	if cur != nil {
		paragraphs = append(paragraphs, *cur)
	}
	return paragraphs
}

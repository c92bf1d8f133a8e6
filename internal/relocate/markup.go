// Package relocate re-finds a diff's target span in live document content
// that may have drifted from the content the diff was computed against.
// It also provides the plain-text view of marked-up content that the diff
// pipeline works on: diffs are computed over visible text only, so a span
// boundary can never land inside a tag.
package relocate

import "strings"

var entityReplacer = strings.NewReplacer(
	"&nbsp;", " ",
	"&lt;", "<",
	"&gt;", ">",
	"&amp;", "&",
	"&quot;", "\"",
	"&apos;", "'",
)

// StripTags removes markup tags from text and decodes common entities.
// It tolerates incomplete fragments: quoted attribute values may contain
// '>' without ending the tag.
func StripTags(text string) string {
	var b strings.Builder
	inTag := false
	inQuotes := false
	var quote rune

	for _, ch := range text {
		if inTag {
			switch {
			case !inQuotes && (ch == '\'' || ch == '"'):
				inQuotes = true
				quote = ch
			case inQuotes && ch == quote:
				inQuotes = false
			case !inQuotes && ch == '>':
				inTag = false
			}
			continue
		}
		if ch == '<' {
			inTag = true
			inQuotes = false
			continue
		}
		b.WriteRune(ch)
	}
	return entityReplacer.Replace(b.String())
}

// PositionMap is the plain-text projection of marked-up content together
// with a mapping from plain-text rune positions back to source rune
// positions. All positions are rune counts, not byte offsets.
type PositionMap struct {
	Text   string
	Source string

	textToSource []int
	sourceRunes  int
}

// BuildPositionMap extracts the visible text of source and records, for
// every visible rune, its position in the source.
func BuildPositionMap(source string) *PositionMap {
	m := &PositionMap{Source: source}

	var b strings.Builder
	inTag := false
	inQuotes := false
	var quote rune

	pos := 0
	for _, ch := range source {
		if inTag {
			switch {
			case !inQuotes && (ch == '\'' || ch == '"'):
				inQuotes = true
				quote = ch
			case inQuotes && ch == quote:
				inQuotes = false
			case !inQuotes && ch == '>':
				inTag = false
			}
		} else if ch == '<' {
			inTag = true
			inQuotes = false
		} else {
			b.WriteRune(ch)
			m.textToSource = append(m.textToSource, pos)
		}
		pos++
	}

	m.Text = b.String()
	m.sourceRunes = pos
	return m
}

// SourcePos maps a plain-text rune position to the corresponding source
// rune position. Positions past the end of the text map to the end of the
// source.
func (m *PositionMap) SourcePos(textPos int) int {
	if textPos >= 0 && textPos < len(m.textToSource) {
		return m.textToSource[textPos]
	}
	return m.sourceRunes
}

// LineOf returns the 1-indexed line number of a source rune position.
func LineOf(source string, runePos int) int {
	line := 1
	count := 0
	for _, ch := range source {
		if count >= runePos {
			break
		}
		if ch == '\n' {
			line++
		}
		count++
	}
	return line
}

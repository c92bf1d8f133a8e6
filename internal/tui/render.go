package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/scribeworks/redline/internal/diff"
	"github.com/scribeworks/redline/internal/model"
	"github.com/scribeworks/redline/internal/session"
)

// renderedLine is a single line of review output ready for display.
type renderedLine struct {
	Num     int    // 0 means not applicable (headers)
	Sign    string // "+", "-", or ""
	Content string
	Header  bool

	// Syntax highlighting tokens (nil = no highlighting)
	Tokens []diff.Token
}

func (l renderedLine) render(width int) string {
	if l.Header {
		return paraHeaderStyle.Render(truncate(l.Content, width))
	}

	num := "    "
	if l.Num > 0 {
		num = lineNumberStyle.Render(fmt.Sprintf("%d", l.Num))
	}

	content := l.Content
	if l.Tokens != nil {
		var b strings.Builder
		for _, t := range l.Tokens {
			if t.Color != "" {
				b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(t.Color)).Render(t.Text))
			} else {
				b.WriteString(t.Text)
			}
		}
		content = b.String()
	}

	switch l.Sign {
	case "+":
		return num + " " + addedLineStyle.Render("+ ") + truncate(content, width-7)
	case "-":
		return num + " " + deletedLineStyle.Render("- ") + truncate(content, width-7)
	default:
		return num + "   " + truncate(content, width-7)
	}
}

func truncate(s string, width int) string {
	if width <= 0 {
		return s
	}
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	return string(r[:width-1]) + "…"
}

// renderParagraph produces a paragraph's change lines. Deleted content
// shows with a minus, inserted with a plus; modifications show both
// sides.
func renderParagraph(p session.ParagraphView) []renderedLine {
	lines := []renderedLine{{
		Header:  true,
		Content: fmt.Sprintf("¶ lines %d–%d", p.StartLine, p.EndLine),
	}}
	for _, c := range p.Changes {
		for _, old := range c.OldLines {
			lines = append(lines, renderedLine{Num: c.Line + 1, Sign: "-", Content: old})
		}
		for _, nw := range c.NewLines {
			lines = append(lines, renderedLine{Num: c.Line + 1, Sign: "+", Content: nw})
		}
	}
	return lines
}

// renderRecords produces the raw diff record view. Record text is capped
// by the display limits, whole replacements show only a size summary, and
// code block records get syntax highlighting keyed off their element
// identifier.
func renderRecords(diffs []model.Diff) []renderedLine {
	var lines []renderedLine
	for i := range diffs {
		d := &diffs[i]
		header := fmt.Sprintf("%s  lines %d–%d", d.DiffType, d.OriginalStartLine, d.OriginalEndLine)
		if d.ElementType != "" {
			header += "  [" + d.ElementType + "]"
		}
		if d.Strategy != "" {
			header += fmt.Sprintf("  (%s %.0f%%)", d.Strategy, d.Confidence*100)
		}
		lines = append(lines, renderedLine{Header: true, Content: header})

		if d.ElementType == model.ElementReplaceWhole {
			lines = append(lines, renderedLine{Content: diff.ReplaceSummary(d.NewText)})
			continue
		}
		lines = append(lines, recordLines(d.OriginalText, "-", d.ElementType, d.ElementIdentifier)...)
		lines = append(lines, recordLines(d.NewText, "+", d.ElementType, d.ElementIdentifier)...)
	}
	return lines
}

func recordLines(text, sign, elementType, elementIdentifier string) []renderedLine {
	if text == "" {
		return nil
	}
	raw := diff.DisplayLines(strings.TrimSuffix(text, "\n"))

	var highlighted []diff.HighlightedLine
	if elementType == model.ElementCodeBlock {
		highlighted = diff.HighlightLines(elementIdentifier, raw)
	}

	lines := make([]renderedLine, 0, len(raw))
	for i, l := range raw {
		rl := renderedLine{Sign: sign, Content: l}
		if highlighted != nil && i < len(highlighted) {
			rl.Tokens = highlighted[i].Tokens
		}
		lines = append(lines, rl)
	}
	return lines
}

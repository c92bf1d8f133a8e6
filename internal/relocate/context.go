package relocate

import "strings"

// ContextChars is the default amount of surrounding text captured on each
// side of a diff's target span for later relocation.
const ContextChars = 100

// ExtractContext captures up to contextChars characters of plain text
// before and after a 1-indexed target line range of content. Nearby lines
// are preferred: up to three lines adjacent to the target are taken first
// and the window only widens (five more lines) when that yields less than
// half the requested context. Markup tags are stripped so the captured
// context is always plain text.
func ExtractContext(content string, startLine, endLine, contextChars int) (before, after string) {
	lines := strings.Split(content, "\n")
	total := len(lines)
	if total == 0 || startLine < 1 || startLine > total {
		return "", ""
	}

	before = contextBefore(lines, startLine, contextChars)
	after = contextAfter(lines, endLine, total, contextChars)
	return before, after
}

func contextBefore(lines []string, startLine, contextChars int) string {
	nearby := min(3, startLine-1)
	from := startLine - 1 - nearby

	var b strings.Builder
	for i := from; i < startLine-1; i++ {
		b.WriteString(lines[i])
		b.WriteByte('\n')
	}
	text := b.String()

	if runeLen(text) < contextChars/2 && from > 0 {
		var ext strings.Builder
		for i := max(0, from-5); i < from; i++ {
			ext.WriteString(lines[i])
			ext.WriteByte('\n')
		}
		text = tail(ext.String()+text, contextChars)
	}

	if text == "" {
		return ""
	}
	return StripTags(tail(text, contextChars))
}

func contextAfter(lines []string, endLine, total, contextChars int) string {
	to := min(endLine+3, total)

	var b strings.Builder
	for i := endLine; i < to; i++ {
		b.WriteString(lines[i])
		b.WriteByte('\n')
	}
	text := b.String()

	if runeLen(text) < contextChars/2 && to < total {
		var ext strings.Builder
		for i := to; i < min(to+5, total); i++ {
			ext.WriteString(lines[i])
			ext.WriteByte('\n')
		}
		text = head(text+ext.String(), contextChars)
	}

	if text == "" {
		return ""
	}
	return StripTags(head(text, contextChars))
}

func runeLen(s string) int { return len([]rune(s)) }

// tail keeps at most n trailing runes.
func tail(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[len(r)-n:])
}

// head keeps at most n leading runes.
func head(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

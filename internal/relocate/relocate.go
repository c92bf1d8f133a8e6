package relocate

import (
	"errors"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/scribeworks/redline/internal/model"
)

// ErrSpanNotFound is returned when no candidate span clears MinConfidence.
var ErrSpanNotFound = errors.New("target span not found in live content")

// MinConfidence is the lowest match confidence accepted from the fuzzy
// strategy. Below it, applying the diff would risk splicing the wrong
// span, so relocation fails instead.
const MinConfidence = 0.5

// Match is a re-found target span in live content. Start and End are byte
// offsets; for insertions Start == End (the insertion point).
type Match struct {
	Start      int
	End        int
	Confidence float64
	Strategy   string
}

// Locator re-finds diff target spans in live content. Strategies are
// tried in order: exact substring match, context-anchored search, then
// fuzzy bitap matching near the expected offset.
type Locator struct {
	dmp *diffmatchpatch.DiffMatchPatch
}

// NewLocator returns a Locator with a wide match window, since a document
// being typed in can drift well past the default distance.
func NewLocator() *Locator {
	dmp := diffmatchpatch.New()
	dmp.MatchDistance = 2000
	return &Locator{dmp: dmp}
}

// Locate re-finds the target span of d in content.
func (l *Locator) Locate(content string, d *model.Diff) (Match, error) {
	if d.DiffType == model.DiffInsertion || d.OriginalText == "" {
		return l.locateInsertion(content, d)
	}

	target := d.OriginalText
	if idx := strings.Index(content, target); idx >= 0 {
		if strings.Index(content[idx+1:], target) < 0 {
			return Match{Start: idx, End: idx + len(target), Confidence: 1.0, Strategy: model.StrategyExact}, nil
		}
		// Multiple occurrences: pick the one preceded by the captured
		// context, falling back to the first.
		if m, ok := l.disambiguate(content, target, d.ContextBefore); ok {
			return m, nil
		}
		return Match{Start: idx, End: idx + len(target), Confidence: 0.8, Strategy: model.StrategyExact}, nil
	}

	if m, ok := l.locateByContext(content, d); ok {
		return m, nil
	}
	return l.locateFuzzy(content, d)
}

// locateInsertion finds the insertion point for a diff with no original
// text, anchoring on surrounding context and falling back to the line
// offset the diff was computed at.
func (l *Locator) locateInsertion(content string, d *model.Diff) (Match, error) {
	if d.ContextBefore != "" {
		if idx := strings.Index(content, anchorTail(d.ContextBefore)); idx >= 0 {
			pos := idx + len(anchorTail(d.ContextBefore))
			return Match{Start: pos, End: pos, Confidence: 0.9, Strategy: model.StrategyContext}, nil
		}
	}
	if d.ContextAfter != "" {
		if idx := strings.Index(content, anchorHead(d.ContextAfter)); idx >= 0 {
			return Match{Start: idx, End: idx, Confidence: 0.9, Strategy: model.StrategyContext}, nil
		}
	}
	pos := lineOffset(content, d.OriginalStartLine)
	return Match{Start: pos, End: pos, Confidence: MinConfidence, Strategy: model.StrategyFuzzy}, nil
}

func (l *Locator) disambiguate(content, target, contextBefore string) (Match, bool) {
	anchor := anchorTail(contextBefore)
	if anchor == "" {
		return Match{}, false
	}
	from := 0
	for {
		idx := strings.Index(content[from:], target)
		if idx < 0 {
			return Match{}, false
		}
		idx += from
		window := content[max(0, idx-len(anchor)-50):idx]
		if strings.Contains(window, anchor) {
			return Match{Start: idx, End: idx + len(target), Confidence: 0.95, Strategy: model.StrategyContext}, true
		}
		from = idx + 1
	}
}

// locateByContext anchors on the captured preceding context and searches
// for the (possibly drifted) target right after it.
func (l *Locator) locateByContext(content string, d *model.Diff) (Match, bool) {
	anchor := anchorTail(d.ContextBefore)
	if anchor == "" {
		return Match{}, false
	}
	idx := strings.Index(content, anchor)
	if idx < 0 {
		return Match{}, false
	}
	from := idx + len(anchor)
	m, err := l.matchNear(content, d.OriginalText, from)
	if err != nil {
		return Match{}, false
	}
	m.Strategy = model.StrategyContext
	return m, true
}

func (l *Locator) locateFuzzy(content string, d *model.Diff) (Match, error) {
	return l.matchNear(content, d.OriginalText, lineOffset(content, d.OriginalStartLine))
}

// matchNear runs a bitap search for the head of target around loc and
// scores the candidate span against the full target.
func (l *Locator) matchNear(content, target string, loc int) (Match, error) {
	pattern := bitapPattern(target)
	if pattern == "" {
		return Match{}, ErrSpanNotFound
	}
	start := l.dmp.MatchMain(content, pattern, min(loc, len(content)))
	if start < 0 {
		return Match{}, ErrSpanNotFound
	}
	end := min(start+len(target), len(content))
	confidence := l.similarity(content[start:end], target)
	if confidence < MinConfidence {
		return Match{}, ErrSpanNotFound
	}
	return Match{Start: start, End: end, Confidence: confidence, Strategy: model.StrategyFuzzy}, nil
}

// similarity is the Levenshtein ratio of two strings, in runes.
func (l *Locator) similarity(a, b string) float64 {
	if a == b {
		return 1.0
	}
	la, lb := len([]rune(a)), len([]rune(b))
	longest := max(la, lb)
	if longest == 0 {
		return 0.0
	}
	diffs := l.dmp.DiffMain(a, b, false)
	return 1.0 - float64(l.dmp.DiffLevenshtein(diffs))/float64(longest)
}

// bitapPattern truncates target to the bitap engine's 32-byte pattern
// limit without splitting a rune.
func bitapPattern(target string) string {
	const maxBits = 32
	if len(target) <= maxBits {
		return target
	}
	cut := maxBits
	for cut > 0 && !isRuneStart(target[cut]) {
		cut--
	}
	return target[:cut]
}

func isRuneStart(b byte) bool { return b&0xC0 != 0x80 }

// anchorTail returns the trailing portion of a context-before string that
// is short enough to expect verbatim in drifted content. Whitespace is
// kept: for insertions the anchor's end is the insertion point itself.
func anchorTail(context string) string {
	return tail(context, 30)
}

// anchorHead is the leading counterpart for context-after anchoring.
func anchorHead(context string) string {
	return head(context, 30)
}

// lineOffset returns the byte offset of the start of a 1-indexed line.
func lineOffset(content string, line int) int {
	if line <= 1 {
		return 0
	}
	offset := 0
	for i := 1; i < line; i++ {
		nl := strings.IndexByte(content[offset:], '\n')
		if nl < 0 {
			return len(content)
		}
		offset += nl + 1
	}
	return offset
}

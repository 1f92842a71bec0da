package document

import (
	"strings"

	"github.com/exeal/alpha-sub008/textpos"
)

// lineStore is the ordered sequence of lines backing a Document. It
// always holds at least one line, even for an empty document.
type lineStore struct {
	lines []textpos.LineContent
}

func newLineStore() *lineStore {
	return &lineStore{lines: []textpos.LineContent{{}}}
}

func (s *lineStore) numberOfLines() uint { return uint(len(s.lines)) }

func (s *lineStore) lineLength(line uint) uint { return s.lines[line].Length() }

func (s *lineStore) lineText(line uint) string { return s.lines[line].Text }

func (s *lineStore) documentEnd() textpos.Position {
	last := uint(len(s.lines)) - 1
	return textpos.Position{Line: last, OffsetInLine: s.lines[last].Length()}
}

func (s *lineStore) region() textpos.Region {
	return textpos.Region{First: textpos.Zero(), Second: s.documentEnd()}
}

// reset replaces all content with a single empty line at revision 0.
func (s *lineStore) reset() {
	s.lines = []textpos.LineContent{{}}
}

// substring reconstructs the literal text spanning r, including whatever
// line terminators separate the lines it crosses.
func (s *lineStore) substring(r textpos.Region) string {
	if r.First.Line == r.Second.Line {
		return sliceRunes(s.lines[r.First.Line].Text, r.First.OffsetInLine, r.Second.OffsetInLine)
	}
	var b strings.Builder
	first := s.lines[r.First.Line]
	b.WriteString(sliceRunes(first.Text, r.First.OffsetInLine, first.Length()))
	b.WriteString(first.Newline.Literal())
	for line := r.First.Line + 1; line < r.Second.Line; line++ {
		b.WriteString(s.lines[line].Text)
		b.WriteString(s.lines[line].Newline.Literal())
	}
	last := s.lines[r.Second.Line]
	b.WriteString(sliceRunes(last.Text, 0, r.Second.OffsetInLine))
	return b.String()
}

func sliceRunes(s string, from, to uint) string {
	if from == 0 && to == uint(len([]rune(s))) {
		return s
	}
	r := []rune(s)
	return string(r[from:to])
}

// lineFragment is one line's worth of inserted text plus the terminator
// that followed it in the source, as produced by splitLines.
type lineFragment struct {
	text    string
	newline textpos.NewlineKind
	hasTerm bool
}

// splitLines breaks text into line fragments, recognizing any of
// LF/CR/CRLF/NEL/LS/PS as a terminator. The final fragment never has a
// terminator of its own; it simply runs to the end of text.
func splitLines(text string) []lineFragment {
	var frags []lineFragment
	start := 0
	for i := 0; i < len(text); {
		if kind, width, ok := textpos.ScanNewline(text, i); ok {
			frags = append(frags, lineFragment{text: text[start:i], newline: kind, hasTerm: true})
			i += width
			start = i
			continue
		}
		i++
	}
	frags = append(frags, lineFragment{text: text[start:], hasTerm: false})
	return frags
}

// replacePlan is the pure outcome of computing a replace: the lines that
// would result, and the Change/erased-text pair that describes it. Kept
// separate from commit so Document can run listener veto hooks on a
// computed Change before any mutation is visible.
type replacePlan struct {
	region   textpos.Region
	newLines []textpos.LineContent
	change   textpos.Change
	erased   string
}

// planReplace computes, without mutating the store, what erasing r and
// inserting text at r.First would produce.
func (s *lineStore) planReplace(r textpos.Region, text string) replacePlan {
	erasedText := s.substring(r)

	frags := splitLines(text)

	firstLine := s.lines[r.First.Line]
	lastLine := s.lines[r.Second.Line]

	prefix := sliceRunes(firstLine.Text, 0, r.First.OffsetInLine)
	suffix := sliceRunes(lastLine.Text, r.Second.OffsetInLine, lastLine.Length())
	tailNewline := lastLine.Newline

	newLines := make([]textpos.LineContent, 0, len(frags))
	for i, f := range frags {
		switch {
		case len(frags) == 1:
			newLines = append(newLines, textpos.LineContent{Text: prefix + f.text + suffix, Newline: tailNewline})
		case i == 0:
			nl := f.newline
			if !f.hasTerm {
				nl = firstLine.Newline
			}
			newLines = append(newLines, textpos.LineContent{Text: prefix + f.text, Newline: nl})
		case i == len(frags)-1:
			newLines = append(newLines, textpos.LineContent{Text: f.text + suffix, Newline: tailNewline})
		default:
			newLines = append(newLines, textpos.LineContent{Text: f.text, Newline: f.newline})
		}
	}

	insertedEnd := textpos.Position{
		Line:         r.First.Line + uint(len(newLines)) - 1,
		OffsetInLine: uint(len([]rune(newLines[len(newLines)-1].Text))) - uint(len([]rune(suffix))),
	}
	if len(newLines) == 1 {
		insertedEnd.OffsetInLine = r.First.OffsetInLine + uint(len([]rune(text)))
	}

	return replacePlan{
		region:   r,
		newLines: newLines,
		change:   textpos.Change{Erased: r, InsertedEnd: insertedEnd, Inserted: text},
		erased:   erasedText,
	}
}

// commit applies a previously computed plan to the store.
func (s *lineStore) commit(p replacePlan) {
	r := p.region
	tail := append([]textpos.LineContent(nil), s.lines[r.Second.Line+1:]...)
	s.lines = append(s.lines[:r.First.Line], p.newLines...)
	s.lines = append(s.lines, tail...)
}

// bumpRevisions marks every line touched by [first,last] with rev, so a
// renderer tracking per-line revision can cache lines it knows are
// unaffected, the way buffer.go stamps changed lines.
func (s *lineStore) bumpRevisions(first, last uint, rev uint) {
	for i := first; i <= last && i < uint(len(s.lines)); i++ {
		s.lines[i].Revision = rev
	}
}

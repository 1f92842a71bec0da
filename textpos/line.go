package textpos

// LineContent is one stored line: its text (without the terminator),
// the document revision it was last touched at, and the kind of newline
// that followed it (meaningless, by convention NewlineLF, on the final
// line of a document).
type LineContent struct {
	Text     string
	Revision uint
	Newline  NewlineKind
}

// Length is the number of runes in Text. Document positions are counted
// in runes, not bytes, so multi-byte characters count as one column.
func (l LineContent) Length() uint {
	return uint(len([]rune(l.Text)))
}

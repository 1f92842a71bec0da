package point

import (
	"reflect"
	"sort"

	"github.com/exeal/alpha-sub008/textpos"
)

// Direction selects which way Bookmarker.Next searches.
type Direction int

const (
	DirectionForward Direction = iota
	DirectionBackward
)

// BadPositionError is returned by Next when "from" is not a valid line.
type BadPositionError struct {
	Line uint
}

func (e *BadPositionError) Error() string {
	return "point: bookmark line out of range"
}

// Listener is notified whenever a line's mark state flips, grounded on
// Ascension's BookmarkListener (see ascension/test/src/bookmarker-test.cpp).
type Listener func(line uint, marked bool)

// Bookmarker is an adapting, unordered set of marked line numbers that
// shifts and prunes itself across document edits.
type Bookmarker struct {
	marks     []uint // always kept sorted, deduplicated
	listeners []Listener
}

// NewBookmarker returns an empty Bookmarker.
func NewBookmarker() *Bookmarker {
	return &Bookmarker{}
}

func (b *Bookmarker) indexOf(line uint) (int, bool) {
	i := sort.Search(len(b.marks), func(i int) bool { return b.marks[i] >= line })
	if i < len(b.marks) && b.marks[i] == line {
		return i, true
	}
	return i, false
}

func (b *Bookmarker) notify(line uint, marked bool) {
	for _, l := range b.listeners {
		l(line, marked)
	}
}

// AddListener registers a callback fired when Mark, SetMark or Toggle
// flips a line's state, and when ApplyChange drops a mark.
func (b *Bookmarker) AddListener(l Listener) { b.listeners = append(b.listeners, l) }

// RemoveListener unregisters l. It is a no-op if l was never added.
// Listeners are matched by their function's code pointer (via reflect),
// so two closures made from the same function literal count as the same
// listener and the first one registered is removed.
func (b *Bookmarker) RemoveListener(l Listener) {
	idx := -1
	for i := range b.listeners {
		if funcsEqual(b.listeners[i], l) {
			idx = i
			break
		}
	}
	if idx >= 0 {
		b.listeners = append(b.listeners[:idx], b.listeners[idx+1:]...)
	}
}

func funcsEqual(a, b Listener) bool {
	return reflect.ValueOf(a).Pointer() == reflect.ValueOf(b).Pointer()
}

// Mark sets line as bookmarked.
func (b *Bookmarker) Mark(line uint) { b.SetMark(line, true) }

// SetMark sets or clears line's bookmark state.
func (b *Bookmarker) SetMark(line uint, marked bool) {
	i, present := b.indexOf(line)
	if marked == present {
		return
	}
	if marked {
		b.marks = append(b.marks, 0)
		copy(b.marks[i+1:], b.marks[i:])
		b.marks[i] = line
	} else {
		b.marks = append(b.marks[:i], b.marks[i+1:]...)
	}
	b.notify(line, marked)
}

// Toggle flips line's bookmark state and returns the new state.
func (b *Bookmarker) Toggle(line uint) bool {
	_, present := b.indexOf(line)
	b.SetMark(line, !present)
	return !present
}

// IsMarked reports whether line carries a bookmark.
func (b *Bookmarker) IsMarked(line uint) bool {
	_, present := b.indexOf(line)
	return present
}

// NumberOfMarks returns the current mark count.
func (b *Bookmarker) NumberOfMarks() int { return len(b.marks) }

// Clear removes every mark without notifying listeners;
// Document.ResetContent calls it.
func (b *Bookmarker) Clear() {
	b.marks = b.marks[:0]
}

// Marks returns the marked lines in ascending order. The returned slice
// is a copy; callers may not mutate Bookmarker state through it.
func (b *Bookmarker) Marks() []uint {
	out := make([]uint, len(b.marks))
	copy(out, b.marks)
	return out
}

// Next returns the step-th bookmark from "from" in the given direction.
// wrap permits wrapping past either end of [0, lineCount). step=0 returns
// from itself if it is marked. ok is false if no such bookmark exists.
// Returns a BadPositionError if from >= lineCount.
func (b *Bookmarker) Next(from uint, dir Direction, wrap bool, step uint, lineCount uint) (line uint, ok bool, err error) {
	if from >= lineCount {
		return 0, false, &BadPositionError{Line: from}
	}
	if step == 0 {
		if b.IsMarked(from) {
			return from, true, nil
		}
		step = 1
	}
	i, present := b.indexOf(from)
	n := len(b.marks)
	if n == 0 {
		return 0, false, nil
	}
	if dir == DirectionForward {
		idx := i
		if present {
			idx++
		}
		idx += int(step) - 1
		if idx < n {
			return b.marks[idx], true, nil
		}
		if !wrap {
			return 0, false, nil
		}
		idx -= n
		if idx >= 0 && idx < n {
			return b.marks[idx], true, nil
		}
		return 0, false, nil
	}

	// Backward.
	idx := i - 1
	idx -= int(step) - 1
	if idx >= 0 {
		return b.marks[idx], true, nil
	}
	if !wrap {
		return 0, false, nil
	}
	idx += n
	if idx >= 0 && idx < n {
		return b.marks[idx], true, nil
	}
	return 0, false, nil
}

// ApplyChange implements Adapter: lines entirely consumed by the erased
// region are dropped, and surviving lines at or after the erased region's
// end shift by the change's net line delta.
func (b *Bookmarker) ApplyChange(c textpos.Change) {
	e1, e2 := c.Erased.First, c.Erased.Second
	shift := int(c.InsertedEnd.Line) - int(e2.Line)

	out := b.marks[:0]
	changed := false
	for _, line := range b.marks {
		if lineEntirelyErased(line, e1, e2) {
			changed = true
			b.notify(line, false)
			continue
		}
		newLine := line
		if line >= e2.Line && shift != 0 {
			nl := int(line) + shift
			if nl < 0 {
				nl = 0
			}
			newLine = uint(nl)
		}
		out = append(out, newLine)
	}
	b.marks = dedupSorted(out)
	_ = changed
}

func lineEntirelyErased(line uint, e1, e2 textpos.Position) bool {
	if e2.Line <= e1.Line {
		return false
	}
	switch {
	case line == e1.Line:
		return e1.OffsetInLine == 0
	case line > e1.Line && line < e2.Line:
		return true
	default:
		return false
	}
}

func dedupSorted(lines []uint) []uint {
	sort.Slice(lines, func(i, j int) bool { return lines[i] < lines[j] })
	out := lines[:0]
	var last uint
	haveLast := false
	for _, l := range lines {
		if haveLast && l == last {
			continue
		}
		out = append(out, l)
		last = l
		haveLast = true
	}
	return out
}

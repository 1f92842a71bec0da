// Package undo implements a two-stack undo/redo engine: atomic inverses,
// compound grouping, adjacency merging and boundary insertion. It knows
// nothing about lines or listeners; it is driven by whatever Document
// feeds it through RecordChange, and replays itself through the small
// Target interface below so it never has to import the document package.
package undo

import "github.com/exeal/alpha-sub008/textpos"

// Target is the subset of Document an Engine needs to replay an inverse.
// Document satisfies this by calling through to its own Replace pipeline
// with undo recording disabled. revision is the document revision the
// target should carry once the replay completes, letting Undo/Redo walk
// the revision counter back and forth instead of only ever advancing it.
type Target interface {
	ReplaceNoRecord(region textpos.Region, text string, revision uint) (textpos.Position, error)
}

// recordKind tags the three record variants: a single replace, a group of
// records undone/redone together, and a barrier that stops merging.
type recordKind int

const (
	kindAtomic recordKind = iota
	kindCompound
	kindBoundary
)

// record is a node in one of the two stacks. For kindAtomic it stores the
// original change verbatim (erased region, inserted end, inserted text)
// plus the text that change erased — enough both to build the inverse
// replace and, before that, to test two consecutive atomic records for
// adjacency. revBefore/revAfter are the document revisions that bracketed
// the original change; they stay fixed as the record flips between the
// undo and redo stacks, so replaying it in either direction always lands
// the document on the correct side of the boundary.
type record struct {
	kind     recordKind
	change   textpos.Change
	erased   string    // text the original change erased
	children []*record // Compound: child records, oldest first

	revBefore uint
	revAfter  uint
}

func (r *record) isBoundary() bool { return r.kind == kindBoundary }

// inverseRegion is the region the original change's inserted text now
// occupies — replacing it with r.erased undoes the change.
func (r *record) inverseRegion() textpos.Region {
	return textpos.Region{First: r.change.Erased.First, Second: r.change.InsertedEnd}
}

// Engine owns the undo and redo stacks and the currently-open compound
// frame(s), if any.
type Engine struct {
	undoStack []*record
	redoStack []*record
	compound  []*record // stack of open compound frames
}

// New returns an empty Engine.
func New() *Engine { return &Engine{} }

// RecordChange is called by Document after every successfully applied
// change that Document itself decided to record (i.e. not one replayed
// from Undo/Redo), with the change itself, the text it erased, and the
// document's revision once the change had been applied.
func (e *Engine) RecordChange(c textpos.Change, erasedText string, revisionAfter uint) {
	if c.IsNoop() {
		return
	}
	rec := &record{kind: kindAtomic, change: c, erased: erasedText, revBefore: revisionAfter - 1, revAfter: revisionAfter}

	if len(e.compound) > 0 {
		top := e.compound[len(e.compound)-1]
		top.children = append(top.children, rec)
		return
	}

	if e.tryMergeIntoTop(rec) {
		e.redoStack = e.redoStack[:0]
		return
	}

	e.undoStack = append(e.undoStack, rec)
	e.redoStack = e.redoStack[:0]
}

// tryMergeIntoTop attempts to merge rec into the top of undoStack under
// the adjacency rule below. Returns true if merged.
func (e *Engine) tryMergeIntoTop(rec *record) bool {
	if len(e.undoStack) == 0 {
		return false
	}
	top := e.undoStack[len(e.undoStack)-1]
	if top.kind != kindAtomic {
		return false
	}
	return mergeAtomic(top, rec)
}

// mergeAtomic merges rec into prev when both are non-compound and their
// *original* changes are textually adjacent: either both pure insertions
// with rec's insertion starting exactly where prev's ended, or both pure
// erasures with rec's erased region abutting prev's on either side.
func mergeAtomic(prev, rec *record) bool {
	prevInsert := prev.change.IsPureInsert()
	recInsert := rec.change.IsPureInsert()
	prevErase := prev.change.IsPureErase()
	recErase := rec.change.IsPureErase()

	switch {
	case prevInsert && recInsert:
		// Both changes were pure insertions (no erased text either).
		if !rec.change.Erased.First.Equal(prev.change.InsertedEnd) {
			return false
		}
		prev.change.InsertedEnd = rec.change.InsertedEnd
		prev.change.Inserted += rec.change.Inserted
		prev.revAfter = rec.revAfter
		return true

	case prevErase && recErase:
		// Both changes were pure erasures (nothing inserted back).
		switch {
		case rec.change.Erased.Second.Equal(prev.change.Erased.First):
			// Backspace-style: newly erased region ends where the
			// previous one began. The merged region grows backward and
			// the freshly erased text is prepended.
			prev.change.Erased.First = rec.change.Erased.First
			prev.change.InsertedEnd = rec.change.InsertedEnd
			prev.erased = rec.erased + prev.erased
			prev.revAfter = rec.revAfter
			return true
		case rec.change.Erased.First.Equal(prev.change.Erased.First):
			// Forward-delete-style: repeated deletes at a fixed point.
			// The buffer has already shrunk, so rec's erased region
			// describes text that used to sit right after what prev
			// erased; the merged region grows forward and the freshly
			// erased text is appended.
			prev.change.Erased.Second = growLineEnd(prev.change.Erased, rec.change.Erased)
			prev.erased += rec.erased
			prev.revAfter = rec.revAfter
			return true
		}
		return false
	}
	return false
}

// growLineEnd computes the new Second bound of a merged forward-delete
// erasure: prevRegion's end extended by recRegion's own line/column
// extent (since recRegion.First coincides with prevRegion.First, its
// extent is exactly the additional span consumed).
func growLineEnd(prevRegion, recRegion textpos.Region) textpos.Position {
	deltaLines := int(recRegion.Second.Line) - int(recRegion.First.Line)
	if deltaLines == 0 {
		return textpos.Position{
			Line:         prevRegion.Second.Line,
			OffsetInLine: prevRegion.Second.OffsetInLine + (recRegion.Second.OffsetInLine - recRegion.First.OffsetInLine),
		}
	}
	return textpos.Position{Line: prevRegion.Second.Line + uint(deltaLines), OffsetInLine: recRegion.Second.OffsetInLine}
}

// InsertBoundary pushes a Boundary record unless the stack already ends
// in one, and is a no-op inside an open compound frame.
func (e *Engine) InsertBoundary() {
	if len(e.compound) > 0 {
		return
	}
	if n := len(e.undoStack); n > 0 && e.undoStack[n-1].isBoundary() {
		return
	}
	e.undoStack = append(e.undoStack, &record{kind: kindBoundary})
}

// BeginCompound opens a new compound frame, stacking if one is already
// open.
func (e *Engine) BeginCompound() {
	e.compound = append(e.compound, &record{kind: kindCompound})
}

// EndCompound closes the innermost compound frame. An empty outermost
// frame is discarded; a non-empty one is pushed as a single Compound
// record. Nested frames fold their children into their parent frame.
func (e *Engine) EndCompound() {
	if len(e.compound) == 0 {
		return
	}
	n := len(e.compound)
	frame := e.compound[n-1]
	e.compound = e.compound[:n-1]

	if len(frame.children) == 0 {
		return
	}
	frame.revBefore = frame.children[0].revBefore
	frame.revAfter = frame.children[len(frame.children)-1].revAfter

	if len(e.compound) > 0 {
		parent := e.compound[len(e.compound)-1]
		parent.children = append(parent.children, frame)
		return
	}

	e.undoStack = append(e.undoStack, frame)
	e.redoStack = e.redoStack[:0]
}

// InCompound reports whether a compound frame is currently open.
func (e *Engine) InCompound() bool { return len(e.compound) > 0 }

// Reset clears both stacks and any open compound frame. Called by
// Document.ResetContent.
func (e *Engine) Reset() {
	e.undoStack = nil
	e.redoStack = nil
	e.compound = nil
}

// Position returns the current depth of the undo stack, a snapshot a
// caller can later hand back to GlueFrom. Modeled on a command-glue pair
// (backend/commands/glue.go's MarkUndoGroupsForGluingCommand /
// GlueMarkedUndoGroupsCommand), which lets a higher-level command
// sequence mark "here" and later fuse everything since into one undo
// step.
func (e *Engine) Position() int { return len(e.undoStack) }

// GlueFrom merges every record from index mark to the top of the undo
// stack into a single Compound record, as if the whole span had been
// wrapped in one BeginCompound/EndCompound. A no-op if mark is out of
// range or names fewer than two records.
func (e *Engine) GlueFrom(mark int) {
	if mark < 0 || mark >= len(e.undoStack)-1 {
		return
	}
	var glued []*record
	for _, r := range e.undoStack[mark:] {
		if !r.isBoundary() {
			glued = append(glued, r)
		}
	}
	if len(glued) < 2 {
		return
	}
	frame := &record{
		kind:      kindCompound,
		children:  glued,
		revBefore: glued[0].revBefore,
		revAfter:  glued[len(glued)-1].revAfter,
	}
	e.undoStack = append(e.undoStack[:mark], frame)
}

// NumberOfUndoableChanges counts non-boundary records on the undo stack.
func (e *Engine) NumberOfUndoableChanges() int { return countNonBoundary(e.undoStack) }

// NumberOfRedoableChanges counts non-boundary records on the redo stack.
func (e *Engine) NumberOfRedoableChanges() int { return countNonBoundary(e.redoStack) }

func countNonBoundary(stack []*record) int {
	n := 0
	for _, r := range stack {
		if !r.isBoundary() {
			n++
		}
	}
	return n
}

// Undo pops and replays the inverse of n undoable changes (trailing
// boundaries are skipped and discarded), pushing each change's own
// inverse onto the redo stack. Returns an error if n exceeds the number
// of undoable changes, or if replay fails partway through a compound —
// in which case the partially-applied children are themselves undone
// before the error propagates.
func (e *Engine) Undo(n int, target Target) error {
	return e.run(n, target, &e.undoStack, &e.redoStack, true)
}

// Redo is the mirror of Undo, replaying from the redo stack back onto the
// undo stack.
func (e *Engine) Redo(n int, target Target) error {
	return e.run(n, target, &e.redoStack, &e.undoStack, false)
}

func (e *Engine) run(n int, target Target, from, to *[]*record, isUndo bool) error {
	if n < 1 {
		return errInvalidCount
	}
	if n > countNonBoundary(*from) {
		return errInvalidCount
	}

	for done := 0; done < n; {
		rec := popNonBoundary(from)
		if rec == nil {
			break
		}
		inverse, err := replayRecord(rec, target, isUndo)
		if err != nil {
			return err
		}
		*to = append(*to, inverse)
		done++
	}
	return nil
}

func popNonBoundary(stack *[]*record) *record {
	for len(*stack) > 0 {
		n := len(*stack)
		rec := (*stack)[n-1]
		*stack = (*stack)[:n-1]
		if rec.isBoundary() {
			continue
		}
		return rec
	}
	return nil
}

// replayRecord executes rec's inverse against target and returns a record
// describing the inverse of the inverse (i.e. the original change again),
// suitable for pushing onto the opposite stack. A compound's children are
// always stored oldest-first; isUndo controls which direction they are
// actually played in, since undoing a group must replay its newest child
// first while redoing it must replay its oldest child first.
func replayRecord(rec *record, target Target, isUndo bool) (*record, error) {
	targetRevision := rec.revAfter
	if isUndo {
		targetRevision = rec.revBefore
	}

	switch rec.kind {
	case kindAtomic:
		before := rec.inverseRegion()
		end, err := target.ReplaceNoRecord(before, rec.erased, targetRevision)
		if err != nil {
			return nil, err
		}
		redo := &record{
			kind: kindAtomic,
			change: textpos.Change{
				Erased:      before,
				InsertedEnd: end,
				Inserted:    rec.erased,
			},
			erased:    substrOf(rec.change),
			revBefore: rec.revBefore,
			revAfter:  rec.revAfter,
		}
		return redo, nil
	case kindCompound:
		n := len(rec.children)
		playOrder := make([]int, n)
		for i := range playOrder {
			if isUndo {
				playOrder[i] = n - 1 - i
			} else {
				playOrder[i] = i
			}
		}

		redoChildren := make([]*record, n)
		for pos, idx := range playOrder {
			redoChild, err := replayRecord(rec.children[idx], target, isUndo)
			if err != nil {
				// Roll back whatever of this compound already got undone,
				// in the reverse of the order just played.
				for j := pos - 1; j >= 0; j-- {
					replayRecord(redoChildren[playOrder[j]], target, !isUndo)
				}
				return nil, err
			}
			redoChildren[idx] = redoChild
		}
		return &record{kind: kindCompound, children: redoChildren, revBefore: rec.revBefore, revAfter: rec.revAfter}, nil
	default:
		return nil, errInvalidCount
	}
}

// substrOf returns the text the original change inserted, which is what
// its inverse's own inverse (i.e. redoing) would need to erase back out;
// since rec.change.Inserted already holds exactly that text, this just
// makes the call site above read plainly.
func substrOf(c textpos.Change) string { return c.Inserted }

var errInvalidCount = invalidCountError{}

type invalidCountError struct{}

func (invalidCountError) Error() string { return "undo: invalid undo/redo count" }

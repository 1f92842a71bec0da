package undo

import (
	"testing"

	"github.com/exeal/alpha-sub008/textpos"
)

// fakeTarget is a single-line, rune-indexed buffer good enough to exercise
// Engine.Undo/Redo without pulling in the document package.
type fakeTarget struct {
	text     []rune
	revision uint
}

func newFakeTarget(s string) *fakeTarget { return &fakeTarget{text: []rune(s)} }

func (f *fakeTarget) String() string { return string(f.text) }

func (f *fakeTarget) ReplaceNoRecord(r textpos.Region, text string, revision uint) (textpos.Position, error) {
	f.revision = revision
	from, to := r.First.OffsetInLine, r.Second.OffsetInLine
	ins := []rune(text)
	out := append([]rune(nil), f.text[:from]...)
	out = append(out, ins...)
	out = append(out, f.text[to:]...)
	f.text = out
	return textpos.Position{OffsetInLine: from + uint(len(ins))}, nil
}

func posAt(col uint) textpos.Position { return textpos.Position{OffsetInLine: col} }

func insertChange(at, end uint, text string) textpos.Change {
	return textpos.Change{Erased: textpos.MakeEmpty(posAt(at)), InsertedEnd: posAt(end), Inserted: text}
}

func TestRecordChangeMergesAdjacentInsertions(t *testing.T) {
	e := New()
	e.RecordChange(insertChange(0, 1, "a"), "", 1)
	e.RecordChange(insertChange(1, 2, "b"), "", 2)
	e.RecordChange(insertChange(2, 3, "c"), "", 3)

	if got := e.NumberOfUndoableChanges(); got != 1 {
		t.Fatalf("expected 3 adjacent insertions to merge into 1 record, got %d", got)
	}

	target := newFakeTarget("abc")
	if err := e.Undo(1, target); err != nil {
		t.Fatalf("Undo: %v", err)
	}
	if target.String() != "" {
		t.Fatalf("after undoing the merged insertion, text = %q, want empty", target.String())
	}
	if target.revision != 0 {
		t.Fatalf("undoing the whole merged record should walk the revision back to 0, got %d", target.revision)
	}
}

func TestRecordChangeDoesNotMergeNonAdjacent(t *testing.T) {
	e := New()
	e.RecordChange(insertChange(0, 1, "a"), "", 1)
	e.RecordChange(insertChange(5, 6, "z"), "", 2)
	if got := e.NumberOfUndoableChanges(); got != 2 {
		t.Fatalf("expected non-adjacent insertions to stay separate, got %d records", got)
	}
}

func TestInsertBoundaryStopsMerging(t *testing.T) {
	e := New()
	e.RecordChange(insertChange(0, 1, "a"), "", 1)
	e.InsertBoundary()
	e.RecordChange(insertChange(1, 2, "b"), "", 2)
	if got := e.NumberOfUndoableChanges(); got != 2 {
		t.Fatalf("expected boundary to block the merge, got %d undoable records", got)
	}
}

func TestUndoRedoRoundTrip(t *testing.T) {
	e := New()
	c := insertChange(0, 5, "hello")
	e.RecordChange(c, "", 1)

	target := newFakeTarget("hello")
	if err := e.Undo(1, target); err != nil {
		t.Fatalf("Undo: %v", err)
	}
	if target.String() != "" {
		t.Fatalf("after Undo, text = %q, want empty", target.String())
	}
	if target.revision != 0 {
		t.Fatalf("after Undo, revision = %d, want 0", target.revision)
	}
	if e.NumberOfRedoableChanges() != 1 {
		t.Fatal("expected 1 redoable change after undo")
	}

	if err := e.Redo(1, target); err != nil {
		t.Fatalf("Redo: %v", err)
	}
	if target.String() != "hello" {
		t.Fatalf("after Redo, text = %q, want %q", target.String(), "hello")
	}
	if target.revision != 1 {
		t.Fatalf("after Redo, revision = %d, want 1", target.revision)
	}
}

func TestCompoundChangeUndoesAsOneUnit(t *testing.T) {
	e := New()
	e.BeginCompound()
	e.RecordChange(insertChange(0, 1, "a"), "", 1)
	e.RecordChange(insertChange(1, 2, "b"), "", 2)
	e.EndCompound()

	if got := e.NumberOfUndoableChanges(); got != 1 {
		t.Fatalf("expected the compound to count as 1 undoable change, got %d", got)
	}

	target := newFakeTarget("ab")
	if err := e.Undo(1, target); err != nil {
		t.Fatalf("Undo compound: %v", err)
	}
	if target.String() != "" {
		t.Fatalf("after undoing the compound, text = %q, want empty", target.String())
	}
	if target.revision != 0 {
		t.Fatalf("after undoing the compound, revision = %d, want 0", target.revision)
	}
	if e.NumberOfRedoableChanges() != 1 {
		t.Fatal("expected the undone compound to land on the redo stack as one unit")
	}

	if err := e.Redo(1, target); err != nil {
		t.Fatalf("Redo compound: %v", err)
	}
	if target.String() != "ab" {
		t.Fatalf("after redoing the compound, text = %q, want %q", target.String(), "ab")
	}
	if target.revision != 2 {
		t.Fatalf("after redoing the compound, revision = %d, want 2", target.revision)
	}
}

func TestGlueFromFusesRecords(t *testing.T) {
	e := New()
	e.RecordChange(insertChange(0, 1, "a"), "", 1)
	mark := e.Position()
	e.RecordChange(insertChange(5, 6, "z"), "", 2)
	e.RecordChange(insertChange(9, 10, "q"), "", 3)
	e.GlueFrom(mark)

	if got := e.NumberOfUndoableChanges(); got != 2 {
		t.Fatalf("expected glue to fuse the last two records into one, leaving 2 undoable changes, got %d", got)
	}
}

func TestUndoCountExceedsAvailableIsError(t *testing.T) {
	e := New()
	e.RecordChange(insertChange(0, 1, "a"), "", 1)
	if err := e.Undo(5, newFakeTarget("a")); err == nil {
		t.Fatal("expected an error when undoing more changes than recorded")
	}
}

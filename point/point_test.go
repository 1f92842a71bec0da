package point

import (
	"testing"

	"github.com/exeal/alpha-sub008/textpos"
)

type fakeRegistry struct {
	registered   []Adapter
	unregistered []Adapter
}

func (r *fakeRegistry) Register(a Adapter)   { r.registered = append(r.registered, a) }
func (r *fakeRegistry) Unregister(a Adapter) { r.unregistered = append(r.unregistered, a) }

func TestPointRegistersAndReleases(t *testing.T) {
	reg := &fakeRegistry{}
	p := NewPoint(reg, textpos.Position{Line: 0, OffsetInLine: 3})
	if len(reg.registered) != 1 {
		t.Fatalf("expected 1 registration, got %d", len(reg.registered))
	}
	p.Release()
	if len(reg.unregistered) != 1 {
		t.Fatalf("expected 1 unregistration, got %d", len(reg.unregistered))
	}
	// Releasing twice is a no-op.
	p.Release()
	if len(reg.unregistered) != 1 {
		t.Fatalf("expected release to be idempotent, got %d unregistrations", len(reg.unregistered))
	}
}

func TestPointAdaptsByGravity(t *testing.T) {
	c := textpos.Change{
		Erased:      textpos.MakeEmpty(textpos.Position{Line: 0, OffsetInLine: 5}),
		InsertedEnd: textpos.Position{Line: 0, OffsetInLine: 8},
		Inserted:    "abc",
	}

	forward := &Point{pos: textpos.Position{Line: 0, OffsetInLine: 5}, gravity: Forward, adapts: true}
	forward.ApplyChange(c)
	if forward.Position() != (textpos.Position{Line: 0, OffsetInLine: 8}) {
		t.Errorf("forward gravity point did not follow insertion: %v", forward.Position())
	}

	backward := &Point{pos: textpos.Position{Line: 0, OffsetInLine: 5}, gravity: Backward, adapts: true}
	backward.ApplyChange(c)
	if backward.Position() != (textpos.Position{Line: 0, OffsetInLine: 5}) {
		t.Errorf("backward gravity point moved: %v", backward.Position())
	}
}

func TestPointNonAdaptingIgnoresChanges(t *testing.T) {
	p := &Point{pos: textpos.Position{Line: 0, OffsetInLine: 5}, adapts: false}
	p.ApplyChange(textpos.Change{
		Erased:      textpos.MakeEmpty(textpos.Position{Line: 0, OffsetInLine: 0}),
		InsertedEnd: textpos.Position{Line: 0, OffsetInLine: 2},
		Inserted:    "xy",
	})
	if p.Position() != (textpos.Position{Line: 0, OffsetInLine: 5}) {
		t.Errorf("non-adapting point moved: %v", p.Position())
	}
}

func TestBookmarkerMarkToggleAndListener(t *testing.T) {
	b := NewBookmarker()
	var events []struct {
		line   uint
		marked bool
	}
	b.AddListener(func(line uint, marked bool) {
		events = append(events, struct {
			line   uint
			marked bool
		}{line, marked})
	})

	b.Mark(3)
	b.Mark(1)
	if !b.IsMarked(3) || !b.IsMarked(1) {
		t.Fatal("expected lines 1 and 3 marked")
	}
	if got := b.Marks(); len(got) != 2 || got[0] != 1 || got[1] != 3 {
		t.Fatalf("Marks() = %v, want sorted [1 3]", got)
	}
	if still := b.Toggle(3); still {
		t.Fatal("toggling a marked line should unmark it")
	}
	if b.IsMarked(3) {
		t.Fatal("line 3 should be unmarked after toggle")
	}
	if len(events) != 3 {
		t.Fatalf("expected 3 listener events, got %d", len(events))
	}
}

func TestBookmarkerRemoveListener(t *testing.T) {
	b := NewBookmarker()
	calls := 0
	l := func(line uint, marked bool) { calls++ }
	b.AddListener(l)
	b.RemoveListener(l)
	b.Mark(0)
	if calls != 0 {
		t.Fatalf("expected removed listener to not fire, got %d calls", calls)
	}
}

func TestBookmarkerApplyChangeDropsLineReplacedEntirely(t *testing.T) {
	b := NewBookmarker()
	b.Mark(1)
	b.Mark(5)

	// Erase exactly line 1 (start to the start of line 2) and replace it
	// with one new line of text: the erased/inserted line count matches,
	// so nothing shifts, but per the bookmark-on-fully-erased-line
	// resolution the mark must not transfer onto the replacement line.
	c := textpos.Change{
		Erased:      textpos.Region{First: textpos.Position{Line: 1, OffsetInLine: 0}, Second: textpos.Position{Line: 2, OffsetInLine: 0}},
		InsertedEnd: textpos.Position{Line: 2, OffsetInLine: 0},
		Inserted:    "NEW\n",
	}
	b.ApplyChange(c)

	if b.IsMarked(1) {
		t.Fatal("bookmark on a fully-erased line must be dropped, not transferred to its replacement")
	}
	if !b.IsMarked(5) {
		t.Fatal("bookmark on an untouched line should survive unchanged")
	}
}

func TestBookmarkerApplyChangeShiftsFollowingLines(t *testing.T) {
	b := NewBookmarker()
	b.Mark(5)

	// Erase line 1 outright (no replacement): every mark from line 2
	// onward shifts up by the one line removed.
	c := textpos.Change{
		Erased:      textpos.Region{First: textpos.Position{Line: 1, OffsetInLine: 0}, Second: textpos.Position{Line: 2, OffsetInLine: 0}},
		InsertedEnd: textpos.Position{Line: 1, OffsetInLine: 0},
	}
	b.ApplyChange(c)

	if b.IsMarked(5) {
		t.Fatal("mark should have shifted off line 5")
	}
	if !b.IsMarked(4) {
		t.Fatal("mark following the deleted line should shift down by one")
	}
}

func TestBookmarkerNextWrap(t *testing.T) {
	b := NewBookmarker()
	b.Mark(2)
	b.Mark(7)

	line, ok, err := b.Next(3, DirectionForward, false, 1, 10)
	if err != nil || !ok || line != 7 {
		t.Fatalf("Next forward from 3 = (%d,%v,%v), want (7,true,nil)", line, ok, err)
	}

	_, ok, err = b.Next(8, DirectionForward, false, 1, 10)
	if err != nil || ok {
		t.Fatalf("Next forward from 8 without wrap should find nothing, got ok=%v err=%v", ok, err)
	}

	line, ok, err = b.Next(8, DirectionForward, true, 1, 10)
	if err != nil || !ok || line != 2 {
		t.Fatalf("Next forward from 8 with wrap = (%d,%v,%v), want (2,true,nil)", line, ok, err)
	}

	if _, _, err := b.Next(20, DirectionForward, false, 1, 10); err == nil {
		t.Fatal("expected BadPositionError for out-of-range from")
	}
}

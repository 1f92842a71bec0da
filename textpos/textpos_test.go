package textpos

import "testing"

func TestPositionCompare(t *testing.T) {
	cases := []struct {
		p, q Position
		want int
	}{
		{Position{0, 0}, Position{0, 0}, 0},
		{Position{0, 1}, Position{0, 2}, -1},
		{Position{1, 0}, Position{0, 5}, 1},
		{Position{2, 3}, Position{2, 3}, 0},
	}
	for _, c := range cases {
		if got := c.p.Compare(c.q); got != c.want {
			t.Errorf("%v.Compare(%v) = %d, want %d", c.p, c.q, got, c.want)
		}
	}
}

func TestScanNewline(t *testing.T) {
	cases := []struct {
		s        string
		i        int
		wantKind NewlineKind
		wantLen  int
		wantOK   bool
	}{
		{"a\r\nb", 1, NewlineCRLF, 2, true},
		{"a\rb", 1, NewlineCR, 1, true},
		{"a\nb", 1, NewlineLF, 1, true},
		{"abc", 1, 0, 0, false},
	}
	for _, c := range cases {
		kind, width, ok := ScanNewline(c.s, c.i)
		if ok != c.wantOK || (ok && (kind != c.wantKind || width != c.wantLen)) {
			t.Errorf("ScanNewline(%q,%d) = (%v,%d,%v), want (%v,%d,%v)",
				c.s, c.i, kind, width, ok, c.wantKind, c.wantLen, c.wantOK)
		}
	}
}

func TestRegionEncompasses(t *testing.T) {
	outer := MakeSingleLine(0, 0, 10)
	inner := MakeSingleLine(0, 2, 5)
	if !Encompasses(outer, inner) {
		t.Fatal("expected outer to encompass inner")
	}
	if Encompasses(inner, outer) {
		t.Fatal("expected inner to not encompass outer")
	}
}

func TestChangeTranslatePureInsertGravity(t *testing.T) {
	c := Change{
		Erased:      MakeEmpty(Position{0, 5}),
		InsertedEnd: Position{0, 8},
		Inserted:    "abc",
	}
	if got := c.Translate(Position{0, 5}, true); got != (Position{0, 8}) {
		t.Errorf("forward gravity: got %v, want (0,8)", got)
	}
	if got := c.Translate(Position{0, 5}, false); got != (Position{0, 5}) {
		t.Errorf("backward gravity: got %v, want (0,5)", got)
	}
}

func TestChangeTranslateAfterMultilineInsert(t *testing.T) {
	// Erase nothing at (0,5); insert "x\ny\nz" (two newlines), ending at (2,1).
	c := Change{
		Erased:      MakeEmpty(Position{0, 5}),
		InsertedEnd: Position{2, 1},
		Inserted:    "x\ny\nz",
	}
	got := c.Translate(Position{0, 10}, true)
	want := Position{Line: 2, OffsetInLine: 6}
	if got != want {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestChangeTranslateInsideErasedCollapses(t *testing.T) {
	c := Change{
		Erased:      MakeSingleLine(0, 2, 8),
		InsertedEnd: Position{0, 3},
		Inserted:    "ab",
	}
	got := c.Translate(Position{0, 5}, true)
	want := Position{0, 2}
	if got != want {
		t.Errorf("got %v, want %v", got, want)
	}
}

package textpos

// Region is an ordered pair of Positions, first <= second. Unlike a
// selection range (an offset pair A,B where A can be greater than B to
// record selection direction), a textpos.Region only ever describes a
// span of the document and is always normalized: First <= Second.
type Region struct {
	First  Position
	Second Position
}

// ZeroRegion is the empty region at the origin.
func ZeroRegion() Region { return Region{} }

// MakeEmpty returns the zero-width region at p.
func MakeEmpty(p Position) Region { return Region{First: p, Second: p} }

// MakeSingleLine builds the half-open region [line,begin) .. [line,end) on
// a single line. Panics if end < begin rather than silently swapping.
func MakeSingleLine(line uint, begin, end uint) Region {
	if end < begin {
		panic("textpos: MakeSingleLine end before begin")
	}
	return Region{
		First:  Position{Line: line, OffsetInLine: begin},
		Second: Position{Line: line, OffsetInLine: end},
	}
}

// NewRegion builds a Region from two Positions in either order, normalizing
// so First <= Second.
func NewRegion(a, b Position) Region {
	if b.Less(a) {
		a, b = b, a
	}
	return Region{First: a, Second: b}
}

// IsEmpty reports whether the region spans zero positions.
func (r Region) IsEmpty() bool { return r.First == r.Second }

// Contains reports whether p lies within [First, Second].
func (r Region) Contains(p Position) bool {
	return !p.Less(r.First) && !r.Second.Less(p)
}

// Encompasses reports whether outer fully contains inner.
func Encompasses(outer, inner Region) bool {
	return !inner.First.Less(outer.First) && !outer.Second.Less(inner.Second)
}

// Intersects reports whether the two regions share any position, including
// a shared boundary when one of them is empty.
func (r Region) Intersects(other Region) bool {
	if r.Second.Less(other.First) || other.Second.Less(r.First) {
		return false
	}
	return true
}

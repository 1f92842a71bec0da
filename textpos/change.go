package textpos

// Change is the immutable record of a single document mutation: the
// Region that was erased and the text that was inserted in its place,
// starting at Erased.First. It carries everything Point, Bookmarker and
// LexicalPartitioner need to adapt their own state, and everything
// UndoEngine needs to build the inverse.
//
// InsertedEnd is the position immediately after the inserted text, i.e.
// Erased.First translated forward by Inserted's own line/column extent.
// It is carried explicitly (rather than recomputed by every listener)
// because computing it requires scanning Inserted for newlines exactly
// once.
type Change struct {
	Erased      Region
	InsertedEnd Position
	Inserted    string
}

// IsPureInsert reports whether the change erased nothing.
func (c Change) IsPureInsert() bool { return c.Erased.IsEmpty() }

// IsPureErase reports whether the change inserted nothing.
func (c Change) IsPureErase() bool { return c.Inserted == "" }

// IsNoop reports whether the change has no observable effect at all.
func (c Change) IsNoop() bool { return c.IsPureInsert() && c.IsPureErase() }

// LineDelta is the net number of lines the change adds (positive) or
// removes (negative): (InsertedEnd.Line - Erased.Second.Line).
func (c Change) LineDelta() int {
	return int(c.InsertedEnd.Line) - int(c.Erased.Second.Line)
}

// Translate applies the point adaptation rule to an arbitrary position p,
// given this change. Gravity only matters when p sits exactly on the
// erased region's starting boundary. Point, the partitioner's shift phase
// (forward gravity) and Document's narrowing bounds (backward gravity for
// the beginning, forward for the end) all call it, rather than
// duplicating the rule at every call site.
func (c Change) Translate(p Position, forwardGravity bool) Position {
	e1, e2, ins := c.Erased.First, c.Erased.Second, c.InsertedEnd

	switch {
	case p.Less(e1):
		return p
	case p.Equal(e1) && e1.Equal(e2):
		// Pure insertion at p itself.
		if forwardGravity {
			return ins
		}
		return e1
	case p.Equal(e1):
		if forwardGravity {
			return ins
		}
		return e1
	case p.Less(e2):
		// Strictly inside the erased region.
		return e1
	case p.Equal(e2):
		return ins
	default:
		// p > e2: translate by (ins - e2).
		lineDelta := int(ins.Line) - int(e2.Line)
		newLine := int(p.Line) + lineDelta
		if newLine < 0 {
			newLine = 0
		}
		np := Position{Line: uint(newLine)}
		if uint(newLine) == ins.Line {
			offDelta := int(ins.OffsetInLine) - int(e2.OffsetInLine)
			newOff := int(p.OffsetInLine) + offDelta
			if newOff < 0 {
				newOff = 0
			}
			np.OffsetInLine = uint(newOff)
		} else {
			np.OffsetInLine = p.OffsetInLine
		}
		return np
	}
}

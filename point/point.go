// Package point implements adaptive document positions (Point) and the
// line-bookmark set (Bookmarker). Both types depend only on textpos, not
// on the document package itself: a Document registers them as
// textpos.Change listeners through the small Registry interface below,
// so document and point never import one another.
package point

import "github.com/exeal/alpha-sub008/textpos"

// Gravity decides which side of a pure insertion a Point sticks to.
type Gravity int

const (
	// Forward gravity moves the point to the end of an insertion made
	// exactly at its position.
	Forward Gravity = iota
	// Backward gravity keeps the point at the start of an insertion made
	// exactly at its position.
	Backward
)

// Adapter receives every textpos.Change a Document applies, in the order
// they occur, and is expected to update its own position/state from it.
type Adapter interface {
	ApplyChange(c textpos.Change)
}

// Registry is the subset of Document's surface a Point needs to register
// and unregister itself. Document satisfies this interface.
type Registry interface {
	Register(a Adapter)
	Unregister(a Adapter)
}

// Point is a Position that rewrites itself in response to document
// changes, per its gravity setting.
type Point struct {
	reg     Registry
	pos     textpos.Position
	gravity Gravity
	adapts  bool
}

// NewPoint creates a Point bound to reg (normally a *document.Document)
// at the given position with forward gravity, and registers it for
// change notifications.
func NewPoint(reg Registry, pos textpos.Position) *Point {
	p := &Point{reg: reg, pos: pos, gravity: Forward, adapts: true}
	if reg != nil {
		reg.Register(p)
	}
	return p
}

// Position returns the point's current position.
func (p *Point) Position() textpos.Position { return p.pos }

// MoveTo forcibly relocates the point, bypassing adaptation.
func (p *Point) MoveTo(pos textpos.Position) { p.pos = pos }

// SetGravity changes the point's gravity for future adaptations.
func (p *Point) SetGravity(g Gravity) { p.gravity = g }

// Gravity returns the point's current gravity.
func (p *Point) Gravity() Gravity { return p.gravity }

// SetAdapts toggles whether the point rewrites itself on ApplyChange.
// A non-adapting point keeps stale coordinates across edits; the caller
// is responsible for whatever that implies.
func (p *Point) SetAdapts(adapts bool) { p.adapts = adapts }

// Adapts reports whether the point currently adapts to document changes.
func (p *Point) Adapts() bool { return p.adapts }

// Release unregisters the point from its Document. The Document never
// owns a Point, so there is nothing to free beyond this link.
func (p *Point) Release() {
	if p.reg != nil {
		p.reg.Unregister(p)
		p.reg = nil
	}
}

// ApplyChange implements Adapter.
func (p *Point) ApplyChange(c textpos.Change) {
	if !p.adapts {
		return
	}
	p.pos = c.Translate(p.pos, p.gravity == Forward)
}

// Reset moves the point to the origin; called by Document.ResetContent
// on adapting points.
func (p *Point) Reset() {
	if p.adapts {
		p.pos = textpos.Zero()
	}
}

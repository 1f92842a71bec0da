// Package partition implements an incremental lexical partitioner: a
// sorted cover of (start, content type) records kept in sync with
// document edits by re-running a small set of TransitionRules over the
// smallest affected window. Modeled on backend/textmate's grammar engine
// (itself a different, grammar-file driven partitioner over the same
// kind of Buffer/Region primitives).
package partition

import "github.com/exeal/alpha-sub008/textpos"

// ContentType is an opaque label assigned to every document position.
type ContentType uint

const (
	// DefaultContentType is the type the first partition always starts
	// with, by convention.
	DefaultContentType ContentType = 0
	// UndeterminedContentType is reserved for "no rule matched", for
	// callers that want to distinguish that from a legitimate zero value.
	UndeterminedContentType ContentType = ^ContentType(0)
)

// Partition is one entry in the partitioner's sorted cover.
type Partition struct {
	Start       textpos.Position
	ContentType ContentType
}

// Source is the slice of Document a LexicalPartitioner needs to scan
// text and know where the document ends. Document satisfies this.
type Source interface {
	LineCount() uint
	LineText(line uint) string
	DocumentEnd() textpos.Position
}

// LexicalPartitioner owns a sorted, invariant-preserving partition cover
// and the ordered set of TransitionRules that produce it.
type LexicalPartitioner struct {
	rules        []TransitionRule
	partitions   []Partition
	notify       func(changed textpos.Region)
	lastMatchLen uint // scratch, set by fire and consumed by scan within one step
}

// New returns a partitioner that will apply rules in the given order:
// at any scan position, the first rule whose Source() equals the current
// state and whose Match fires wins.
func New(rules ...TransitionRule) *LexicalPartitioner {
	return &LexicalPartitioner{rules: append([]TransitionRule(nil), rules...)}
}

// SetNotifier registers the callback invoked after every rescan with the
// sub-region whose partitions changed. Document.SetPartitioner does not
// set a notifier; without one, the changed sub-region is not reported.
func (p *LexicalPartitioner) SetNotifier(fn func(changed textpos.Region)) { p.notify = fn }

// Install seeds the partitioner and scans the whole of src, as required
// by Document.SetPartitioner.
func (p *LexicalPartitioner) Install(src Source) {
	p.partitions = []Partition{{Start: textpos.Zero(), ContentType: DefaultContentType}}
	end := src.DocumentEnd()
	produced, _ := p.scan(src, textpos.Zero(), end, DefaultContentType, true)
	p.partitions = produced
	if p.notify != nil {
		p.notify(textpos.Region{First: textpos.Zero(), Second: end})
	}
}

// HandleChange re-synchronizes the partition cover after a document
// change by shifting unaffected partitions, rescanning the smallest
// affected window, and splicing the result back in.
func (p *LexicalPartitioner) HandleChange(src Source, c textpos.Change) {
	shifted := p.shift(c)
	p.partitions = shifted // scan's convergence check reads this as baseline

	scanStart := textpos.BOL(c.Erased.First.Line)
	produced, scanEnd := p.scan(src, scanStart, c.InsertedEnd, stateAtIn(shifted, scanStart), false)

	spliced := make([]Partition, 0, len(shifted)+len(produced))
	for _, part := range shifted {
		if part.Start.Less(scanStart) {
			appendDedup(&spliced, part)
		}
	}
	for _, part := range produced {
		appendDedup(&spliced, part)
	}
	for _, part := range shifted {
		if !part.Start.Less(scanEnd) {
			appendDedup(&spliced, part)
		}
	}
	p.partitions = spliced

	if p.notify != nil {
		p.notify(textpos.Region{First: scanStart, Second: scanEnd})
	}
}

// shift translates every partition whose start sits at or after the
// erased region's end forward by the change's net extent, and collapses
// any partition whose start lies strictly inside the erased region down
// to the erased region's beginning.
func (p *LexicalPartitioner) shift(c textpos.Change) []Partition {
	out := make([]Partition, 0, len(p.partitions))
	for _, part := range p.partitions {
		switch {
		case part.Start.Less(c.Erased.First):
			appendDedup(&out, part)
		case part.Start.Less(c.Erased.Second):
			appendDedup(&out, Partition{Start: c.Erased.First, ContentType: part.ContentType})
		default:
			appendDedup(&out, Partition{Start: c.Translate(part.Start, true), ContentType: part.ContentType})
		}
	}
	if len(out) == 0 || !out[0].Start.Equal(textpos.Zero()) {
		out = append([]Partition{{Start: textpos.Zero(), ContentType: DefaultContentType}}, out...)
	}
	return out
}

// scan walks characters from start, firing TransitionRules in
// registration order, until it has passed stopAfter *and* (unless
// forceFull) its running state matches what the pre-existing partitions
// already say at the current position. It returns the produced partition
// sequence (always beginning with an entry at start) and the position
// scanning actually stopped at.
func (p *LexicalPartitioner) scan(src Source, start, stopAfter textpos.Position, initialState ContentType, forceFull bool) ([]Partition, textpos.Position) {
	produced := []Partition{{Start: start, ContentType: initialState}}
	state := initialState
	pos := start
	baseline := p.partitions // the shifted cover scan should converge against

	for {
		if pos.Line >= src.LineCount() {
			return produced, pos
		}
		line := src.LineText(pos.Line)
		runes := []rune(line)
		n := uint(len(runes))
		if pos.OffsetInLine > n {
			pos.OffsetInLine = n
		}

		if pos.OffsetInLine == n {
			if fired, newState := p.fire(line, pos.OffsetInLine, state); fired {
				if newState != state {
					state = newState
					appendDedup(&produced, Partition{Start: pos, ContentType: state})
				}
			}
			if pos.Line+1 >= src.LineCount() {
				return produced, pos
			}
			pos = textpos.BOL(pos.Line + 1)
		} else if fired, newState := p.fire(line, pos.OffsetInLine, state); fired {
			matchLen := p.lastMatchLen
			if newState != state {
				state = newState
				appendDedup(&produced, Partition{Start: pos, ContentType: state})
			}
			pos = textpos.Position{Line: pos.Line, OffsetInLine: pos.OffsetInLine + matchLen}
		} else {
			pos = textpos.Position{Line: pos.Line, OffsetInLine: pos.OffsetInLine + 1}
		}

		if !forceFull && !pos.Less(stopAfter) && state == stateAtIn(baseline, pos) {
			return produced, pos
		}
		if forceFull && pos.Line >= src.LineCount() {
			return produced, pos
		}
	}
}

// fire tries every rule whose Source() equals state, in registration
// order, and returns the first that matches along with its destination
// state. The matched length is stashed in p.lastMatchLen for the caller,
// since Go methods here return at most two values by convention in this
// package and the length is only needed by the immediate caller.
func (p *LexicalPartitioner) fire(line string, offset uint, state ContentType) (bool, ContentType) {
	for _, r := range p.rules {
		if r.Source() != state {
			continue
		}
		if n := r.Match(line, offset); n > 0 {
			p.lastMatchLen = n
			return true, r.Destination()
		}
	}
	return false, state
}

// PartitionAt returns the content type and region of the partition
// covering pos.
func (p *LexicalPartitioner) PartitionAt(pos, docEnd textpos.Position) (ContentType, textpos.Region) {
	idx := indexAt(p.partitions, pos)
	ct := p.partitions[idx].ContentType
	end := docEnd
	if idx+1 < len(p.partitions) {
		end = p.partitions[idx+1].Start
	}
	return ct, textpos.Region{First: p.partitions[idx].Start, Second: end}
}

// Partitions returns a copy of the current partition cover, for
// debug-mode consistency checks and tests.
func (p *LexicalPartitioner) Partitions() []Partition {
	out := make([]Partition, len(p.partitions))
	copy(out, p.partitions)
	return out
}

// CheckConsistency verifies that the cover starts at (0,0) and that no
// run of three consecutive partitions shares one start. Intended for
// debug builds and tests, not the hot path.
func (p *LexicalPartitioner) CheckConsistency() error {
	if len(p.partitions) == 0 || !p.partitions[0].Start.Equal(textpos.Zero()) {
		return errConsistency{"first partition does not start at (0,0)"}
	}
	for i := 2; i < len(p.partitions); i++ {
		if p.partitions[i].Start.Equal(p.partitions[i-1].Start) && p.partitions[i-1].Start.Equal(p.partitions[i-2].Start) {
			return errConsistency{"three consecutive partitions share a start"}
		}
	}
	return nil
}

type errConsistency struct{ reason string }

func (e errConsistency) Error() string { return "partition: " + e.reason }

func appendDedup(list *[]Partition, p Partition) {
	n := len(*list)
	if n > 0 && (*list)[n-1].ContentType == p.ContentType {
		return
	}
	*list = append(*list, p)
}

func stateAtIn(list []Partition, pos textpos.Position) ContentType {
	idx := indexAt(list, pos)
	return list[idx].ContentType
}

// indexAt returns the greatest index k with list[k].Start <= pos.
func indexAt(list []Partition, pos textpos.Position) int {
	lo, hi := 0, len(list)
	for lo < hi {
		mid := (lo + hi) / 2
		if list[mid].Start.LessEq(pos) {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	if lo == 0 {
		return 0
	}
	return lo - 1
}

// Package document implements the mutable line store, change protocol,
// narrowing, and listener notification that the rest of this module's
// subsystems (point, undo, partition) hang off of.
package document

import (
	"github.com/exeal/alpha-sub008/internal/log"
	"github.com/exeal/alpha-sub008/internal/prof"
	"github.com/exeal/alpha-sub008/partition"
	"github.com/exeal/alpha-sub008/point"
	"github.com/exeal/alpha-sub008/textpos"
	"github.com/exeal/alpha-sub008/undo"
)

// Document coordinates a lineStore, an undo.Engine, a point.Bookmarker
// and an optional partition.LexicalPartitioner behind one change
// protocol: every mutation is validated, offered to listeners for veto,
// applied, recorded, and only then announced.
type Document struct {
	lines       *lineStore
	undo        *undo.Engine
	bookmarks   *point.Bookmarker
	partitioner *partition.LexicalPartitioner

	accessibleRegion textpos.Region

	revision      uint
	savedRevision uint
	modified      bool
	readOnly      bool

	recordChanges  bool
	inNotification bool

	adapters map[point.Adapter]struct{}

	changeListeners []ChangeListener
	regionListeners []AccessibleRegionListener
	modListeners    []ModificationSignListener
	roListeners     []ReadOnlySignListener
	propListeners   []PropertyListener

	properties map[string]string
	settings   *Settings
}

// New returns an empty, single-empty-line Document.
func New() *Document {
	d := &Document{
		lines:         newLineStore(),
		undo:          undo.New(),
		bookmarks:     point.NewBookmarker(),
		recordChanges: true,
		adapters:      make(map[point.Adapter]struct{}),
		properties:    make(map[string]string),
		settings:      NewSettings(nil),
	}
	d.accessibleRegion = d.lines.region()
	return d
}

// --- queries ---

func (d *Document) NumberOfLines() uint             { return d.lines.numberOfLines() }
func (d *Document) LineCount() uint                 { return d.lines.numberOfLines() } // satisfies partition.Source
func (d *Document) LineText(line uint) string       { return d.lines.lineText(line) }
func (d *Document) LineLength(line uint) uint        { return d.lines.lineLength(line) }
func (d *Document) DocumentEnd() textpos.Position    { return d.lines.documentEnd() }
func (d *Document) Region() textpos.Region           { return d.lines.region() }
func (d *Document) AccessibleRegion() textpos.Region { return d.accessibleRegion }
func (d *Document) IsNarrowed() bool                 { return d.accessibleRegion != d.lines.region() }
func (d *Document) RevisionNumber() uint             { return d.revision }
func (d *Document) IsModified() bool                 { return d.modified }
func (d *Document) IsReadOnly() bool                 { return d.readOnly }
func (d *Document) Bookmarks() *point.Bookmarker     { return d.bookmarks }
func (d *Document) Settings() *Settings              { return d.settings }

// Length is the total rune count of the document's text, counting one
// position per line terminator between lines.
func (d *Document) Length() uint {
	n := d.lines.numberOfLines()
	total := uint(0)
	for i := uint(0); i < n; i++ {
		total += d.lines.lineLength(i)
	}
	if n > 1 {
		total += n - 1
	}
	return total
}

func (d *Document) Substring(r textpos.Region) string { return d.lines.substring(r) }

func (d *Document) NumberOfUndoableChanges() int { return d.undo.NumberOfUndoableChanges() }
func (d *Document) NumberOfRedoableChanges() int { return d.undo.NumberOfRedoableChanges() }

// Property returns a named document property, e.g. "TITLE".
func (d *Document) Property(key string) string { return d.properties[key] }

// SetProperty sets a named document property and notifies listeners.
func (d *Document) SetProperty(key, value string) {
	d.properties[key] = value
	d.fireProperty(key)
}

// --- registry (point.Registry) ---

func (d *Document) Register(a point.Adapter)   { d.adapters[a] = struct{}{} }
func (d *Document) Unregister(a point.Adapter) { delete(d.adapters, a) }

// --- mutation ---

// Replace erases region (which must lie inside AccessibleRegion) and
// inserts text at region.First, returning the end position of the
// inserted text.
func (d *Document) Replace(region textpos.Region, text string) (textpos.Position, error) {
	return d.replace(region, text, true, 0)
}

// Insert is Replace over an empty region at at.
func (d *Document) Insert(at textpos.Position, text string) (textpos.Position, error) {
	return d.Replace(textpos.Region{First: at, Second: at}, text)
}

// Erase is Replace with no inserted text.
func (d *Document) Erase(region textpos.Region) (textpos.Position, error) {
	return d.Replace(region, "")
}

// ReplaceNoRecord implements undo.Target: the engine calls this to
// replay an inverse, bypassing undo recording (the engine itself pushes
// the redo/undo record after a successful replay). revision is the
// revision the document should carry once this replay lands, which the
// engine derives from the record being undone or redone, so undoing back
// to a saved state clears the modified flag instead of only ever
// incrementing it.
func (d *Document) ReplaceNoRecord(region textpos.Region, text string, revision uint) (textpos.Position, error) {
	return d.replace(region, text, false, revision)
}

func (d *Document) replace(region textpos.Region, text string, record bool, targetRevision uint) (textpos.Position, error) {
	if d.inNotification {
		return textpos.Position{}, &IllegalStateError{Reason: "mutation attempted from within a change notification"}
	}
	if d.readOnly {
		return textpos.Position{}, &ReadOnlyDocumentError{}
	}
	if err := d.validateRegion(region); err != nil {
		return textpos.Position{}, err
	}
	if !textpos.Encompasses(d.accessibleRegion, region) {
		return textpos.Position{}, &DocumentAccessViolationError{Region: region}
	}

	if region.IsEmpty() && text == "" {
		return region.First, nil
	}

	e := prof.Enter("document.replace")
	defer e.Exit()

	plan := d.lines.planReplace(region, text)

	d.inNotification = true
	vetoErr := d.fireAboutToBeChanged(plan.change)
	d.inNotification = false
	if vetoErr != nil {
		return textpos.Position{}, vetoErr
	}

	d.lines.commit(plan)
	if record {
		d.revision++
	} else {
		d.revision = targetRevision
	}
	d.lines.bumpRevisions(plan.change.Erased.First.Line, plan.change.InsertedEnd.Line, d.revision)

	if record {
		d.undo.RecordChange(plan.change, plan.erased, d.revision)
	}

	d.updateNarrowing(plan.change)

	for a := range d.adapters {
		a.ApplyChange(plan.change)
	}
	d.bookmarks.ApplyChange(plan.change)

	if d.partitioner != nil {
		e2 := prof.Enter("partition.rescan")
		d.partitioner.HandleChange(d, plan.change)
		e2.Exit()
	}

	wasModified := d.modified
	d.modified = d.revision != d.savedRevision

	d.inNotification = true
	d.fireChanged(plan.change)
	d.inNotification = false

	if d.modified != wasModified {
		d.fireModificationSignChanged()
	}

	log.Fine("document: replaced %v with %d runes, revision now %d", region, len([]rune(text)), d.revision)
	return plan.change.InsertedEnd, nil
}

func (d *Document) validateRegion(r textpos.Region) error {
	n := d.lines.numberOfLines()
	if r.First.Line >= n {
		return &BadPositionError{Pos: r.First, Reason: "line out of range"}
	}
	if r.Second.Line >= n {
		return &BadPositionError{Pos: r.Second, Reason: "line out of range"}
	}
	if r.First.OffsetInLine > d.lines.lineLength(r.First.Line) {
		return &BadPositionError{Pos: r.First, Reason: "offset beyond line length"}
	}
	if r.Second.OffsetInLine > d.lines.lineLength(r.Second.Line) {
		return &BadPositionError{Pos: r.Second, Reason: "offset beyond line length"}
	}
	if r.Second.Less(r.First) {
		return &BadRegionError{Region: r, Reason: "first > second"}
	}
	return nil
}

// updateNarrowing keeps the accessible region consistent with an applied
// change, using the same forward/backward-gravity rule Point uses: the
// beginning tracks backward gravity (stays put on an insertion at its own
// position), the end tracks forward gravity (follows the insertion).
func (d *Document) updateNarrowing(c textpos.Change) {
	d.accessibleRegion.First = c.Translate(d.accessibleRegion.First, false)
	d.accessibleRegion.Second = c.Translate(d.accessibleRegion.Second, true)
}

// --- lifecycle ---

// ResetContent rewinds the document to a single empty line, clearing
// undo history, bookmarks, narrowing, revision and the modified flag.
func (d *Document) ResetContent() {
	d.lines.reset()
	d.undo.Reset()
	d.bookmarks.Clear()
	d.accessibleRegion = d.lines.region()
	d.revision = 0
	d.savedRevision = 0
	d.modified = false
	for a := range d.adapters {
		if p, ok := a.(interface{ Reset() }); ok {
			p.Reset()
		}
	}
}

// SetReadOnly toggles whether mutating calls are refused.
func (d *Document) SetReadOnly(readOnly bool) {
	if readOnly == d.readOnly {
		return
	}
	d.readOnly = readOnly
	d.fireReadOnlySignChanged()
}

// MarkUnmodified snapshots the current revision as the saved revision.
func (d *Document) MarkUnmodified() {
	d.savedRevision = d.revision
	if d.modified {
		d.modified = false
		d.fireModificationSignChanged()
	}
}

// SetModified forces IsModified true regardless of revision.
func (d *Document) SetModified() {
	if !d.modified {
		d.modified = true
		d.fireModificationSignChanged()
	}
}

// --- narrowing ---

// NarrowToRegion restricts mutation to r.
func (d *Document) NarrowToRegion(r textpos.Region) error {
	if err := d.validateRegion(r); err != nil {
		return err
	}
	d.accessibleRegion = r
	d.fireAccessibleRegionChanged()
	return nil
}

// Widen restores the accessible region to the whole document.
func (d *Document) Widen() {
	d.accessibleRegion = d.lines.region()
	d.fireAccessibleRegionChanged()
}

// --- partitioner ---

// SetPartitioner installs p as the document's sole partitioner, calling
// Install to seed it over the whole current content. A nil p removes
// partitioning.
func (d *Document) SetPartitioner(p *partition.LexicalPartitioner) {
	d.partitioner = p
	if p != nil {
		p.Install(d)
	}
}

func (d *Document) Partitioner() *partition.LexicalPartitioner { return d.partitioner }

// --- undo/redo ---

func (d *Document) InsertUndoBoundary() { d.undo.InsertBoundary() }
func (d *Document) BeginCompoundChange() { d.undo.BeginCompound() }
func (d *Document) EndCompoundChange()   { d.undo.EndCompound() }
func (d *Document) UndoPosition() int    { return d.undo.Position() }
func (d *Document) GlueUndoFrom(mark int) { d.undo.GlueFrom(mark) }

// Undo replays the inverse of the last n recorded changes.
func (d *Document) Undo(n int) error { return d.undo.Undo(n, d) }

// Redo replays the last n undone changes.
func (d *Document) Redo(n int) error { return d.undo.Redo(n, d) }

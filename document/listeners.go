package document

import "github.com/exeal/alpha-sub008/textpos"

// ChangeListener is notified on both sides of every applied change.
// DocumentAboutToBeChanged may veto by returning a non-nil error (the
// Document wraps it in DocumentCantChangeError if it isn't already one);
// DocumentChanged is purely informational and its return value, if any,
// is not inspected.
type ChangeListener interface {
	DocumentAboutToBeChanged(d *Document, c textpos.Change) error
	DocumentChanged(d *Document, c textpos.Change)
}

// AccessibleRegionListener is notified after narrowing or widening.
type AccessibleRegionListener interface {
	AccessibleRegionChanged(d *Document)
}

// ModificationSignListener is notified when IsModified's value flips.
type ModificationSignListener interface {
	ModificationSignChanged(d *Document)
}

// ReadOnlySignListener is notified when IsReadOnly's value flips.
type ReadOnlySignListener interface {
	ReadOnlySignChanged(d *Document)
}

// PropertyListener is notified when a named property changes, e.g. the
// TITLE property TextFileDocumentInput updates on revert.
type PropertyListener interface {
	PropertyChanged(d *Document, key string)
}

func (d *Document) AddChangeListener(l ChangeListener) { d.changeListeners = append(d.changeListeners, l) }
func (d *Document) AddAccessibleRegionListener(l AccessibleRegionListener) {
	d.regionListeners = append(d.regionListeners, l)
}
func (d *Document) AddModificationSignListener(l ModificationSignListener) {
	d.modListeners = append(d.modListeners, l)
}
func (d *Document) AddReadOnlySignListener(l ReadOnlySignListener) {
	d.roListeners = append(d.roListeners, l)
}
func (d *Document) AddPropertyListener(l PropertyListener) { d.propListeners = append(d.propListeners, l) }

func (d *Document) fireAboutToBeChanged(c textpos.Change) error {
	for _, l := range d.changeListeners {
		if err := l.DocumentAboutToBeChanged(d, c); err != nil {
			if _, ok := err.(*DocumentCantChangeError); ok {
				return err
			}
			return &DocumentCantChangeError{Reason: err.Error()}
		}
	}
	return nil
}

func (d *Document) fireChanged(c textpos.Change) {
	for _, l := range d.changeListeners {
		l.DocumentChanged(d, c)
	}
}

func (d *Document) fireAccessibleRegionChanged() {
	for _, l := range d.regionListeners {
		l.AccessibleRegionChanged(d)
	}
}

func (d *Document) fireModificationSignChanged() {
	for _, l := range d.modListeners {
		l.ModificationSignChanged(d)
	}
}

func (d *Document) fireReadOnlySignChanged() {
	for _, l := range d.roListeners {
		l.ReadOnlySignChanged(d)
	}
}

func (d *Document) fireProperty(key string) {
	for _, l := range d.propListeners {
		l.PropertyChanged(d, key)
	}
}

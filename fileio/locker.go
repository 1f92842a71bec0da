package fileio

import (
	"errors"
	"sync"
)

// LockType selects the locking discipline TextFileDocumentInput applies
// to its bound path.
type LockType int

const (
	LockNone LockType = iota
	LockShared
	LockExclusive
)

// LockMode is the locking policy a TextFileDocumentInput is configured
// with. OnlyAsEditing defers acquisition until
// TextFileDocumentInput.IsChangeable is called; Document does not call
// IsChangeable itself, and the lock is not released when the document
// returns to unmodified.
type LockMode struct {
	Type          LockType
	OnlyAsEditing bool
}

type lockState struct {
	exclusive   bool
	sharedCount int
}

// FileLocker hands out advisory, process-local locks keyed by path. No
// library in this module's dependency set offers cross-platform advisory
// file locking, so this is a deliberate stdlib-only component: see
// DESIGN.md for the justification.
type FileLocker struct {
	mu   sync.Mutex
	held map[string]*lockState
}

// NewFileLocker returns an empty locker.
func NewFileLocker() *FileLocker { return &FileLocker{held: make(map[string]*lockState)} }

var errAlreadyLocked = errors.New("path is already locked by another holder")

// Acquire attempts to take a lock of typ on path. It returns true if the
// lock was acquired exclusively by this process or as a fresh shared
// holder, false if a pre-existing shared holder was detected (shared
// mode only). Exclusive mode fails with an error if any other holder,
// shared or exclusive, already exists.
func (l *FileLocker) Acquire(path string, typ LockType) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	st := l.held[path]
	switch typ {
	case LockNone:
		return true, nil
	case LockShared:
		if st == nil {
			l.held[path] = &lockState{sharedCount: 1}
			return true, nil
		}
		if st.exclusive {
			return false, &IOError{Op: "lock", Path: path, Err: errAlreadyLocked}
		}
		st.sharedCount++
		return false, nil
	case LockExclusive:
		if st != nil {
			return false, &IOError{Op: "lock", Path: path, Err: errAlreadyLocked}
		}
		l.held[path] = &lockState{exclusive: true}
		return true, nil
	default:
		return false, nil
	}
}

// Release drops one holder's claim on path, removing the entry entirely
// once the last shared holder (or the sole exclusive holder) releases.
func (l *FileLocker) Release(path string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	st := l.held[path]
	if st == nil {
		return
	}
	if st.exclusive || st.sharedCount <= 1 {
		delete(l.held, path)
		return
	}
	st.sharedCount--
}

package fileio

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/exeal/alpha-sub008/document"
	"github.com/exeal/alpha-sub008/internal/log"
	"github.com/exeal/alpha-sub008/textpos"
	"github.com/rjeczalik/notify"
)

// TriggerReason names the circumstance under which a document's bound
// file was found to have an unexpected time stamp.
type TriggerReason int

const (
	TriggerFirstModification TriggerReason = iota
	TriggerOverwriteFile
	TriggerClientInvocation
)

// UnexpectedFileTimeStampDirector is asked for permission whenever a
// bound file's on-disk time stamp moved without this process's doing.
// Returning false aborts whatever operation triggered the check.
type UnexpectedFileTimeStampDirector interface {
	QueryAboutUnexpectedDocumentFileTimeStamp(doc *document.Document, trigger TriggerReason) bool
}

// AbortedError is returned when a director refuses an operation.
type AbortedError struct{ Reason string }

func (e *AbortedError) Error() string { return "fileio: aborted: " + e.Reason }

// EncoderFactory resolves an encoding name to an Encoder. The module
// ships only UTF8Encoder; a host embedding richer codecs supplies its
// own factory.
type EncoderFactory func(name string) (Encoder, error)

func defaultEncoderFactory(name string) (Encoder, error) {
	if name == "" || name == "UTF-8" || name == "utf-8" {
		return NewUTF8Encoder(), nil
	}
	return nil, &UnsupportedEncodingError{Name: name}
}

// TextFileDocumentInput binds a Document to a file on disk: reverting
// (load), writing (atomic save), lock management and time-stamp
// surveillance, the way view.go's buffer ties together loadFile,
// SaveAs/nonAtomicSave and the fsnotify-driven watch goroutine.
type TextFileDocumentInput struct {
	doc      *document.Document
	fileName string

	Encoding           string
	SubstitutionPolicy SubstitutionPolicy
	EncoderFactory     EncoderFactory
	UnicodeByteOrderMark bool
	Newline            textpos.NewlineKind

	lockMode LockMode
	locker   *FileLocker
	locked   bool

	director UnexpectedFileTimeStampDirector

	savedRevision         uint
	userLastWriteTime     time.Time
	internalLastWriteTime time.Time

	fileNameListeners []func(*TextFileDocumentInput)

	watchCh chan notify.EventInfo
}

// NewTextFileDocumentInput returns an unbound input using locker for
// advisory locking (NewFileLocker() if the caller has no shared one).
func NewTextFileDocumentInput(locker *FileLocker) *TextFileDocumentInput {
	return &TextFileDocumentInput{
		Encoding:       "UTF-8",
		EncoderFactory: defaultEncoderFactory,
		Newline:        textpos.NewlineLF,
		locker:         locker,
	}
}

// SetLockMode changes the locking discipline applied on the next Bind
// (or immediately, if already bound and not OnlyAsEditing).
func (in *TextFileDocumentInput) SetLockMode(mode LockMode) {
	if in.locked {
		in.releaseLock()
	}
	in.lockMode = mode
	if in.fileName != "" && mode.Type != LockNone && !mode.OnlyAsEditing {
		in.acquireLock()
	}
}

// SetTimeStampDirector installs the director consulted whenever an
// unexpected on-disk time stamp is observed.
func (in *TextFileDocumentInput) SetTimeStampDirector(d UnexpectedFileTimeStampDirector) {
	in.director = d
}

// AddFileNameListener registers l to be called whenever Bind or Unbind
// changes the bound path.
func (in *TextFileDocumentInput) AddFileNameListener(l func(*TextFileDocumentInput)) {
	in.fileNameListeners = append(in.fileNameListeners, l)
}

func (in *TextFileDocumentInput) fireFileNameChanged() {
	for _, l := range in.fileNameListeners {
		l(in)
	}
}

// FileName is the bound absolute path, or "" if unbound.
func (in *TextFileDocumentInput) FileName() string { return in.fileName }

// Bind associates doc with fileName, which must already exist on disk;
// use Revert afterward to actually load its content. Binding to a new
// path while a lock is held releases the old path's lock first.
func (in *TextFileDocumentInput) Bind(doc *document.Document, fileName string) error {
	abs, err := filepath.Abs(fileName)
	if err != nil {
		return &IOError{Op: "bind", Path: fileName, Err: err}
	}
	if _, err := os.Stat(abs); err != nil {
		return &IOError{Op: "stat", Path: abs, Err: err}
	}

	wasLocked := in.locked
	if wasLocked {
		in.releaseLock()
	}
	in.doc = doc
	in.fileName = abs
	if wasLocked || (in.lockMode.Type != LockNone && !in.lockMode.OnlyAsEditing) {
		in.acquireLock()
	}
	in.fireFileNameChanged()
	return nil
}

// Unbind releases any lock and surveillance on the current path and
// forgets it. The Document itself is left untouched.
func (in *TextFileDocumentInput) Unbind() {
	in.StopSurveillance()
	in.releaseLock()
	in.fileName = ""
	in.fireFileNameChanged()
}

// Revert discards the Document's content and reloads it from the bound
// file through an Encoder resolved for encoding (empty string keeps the
// input's current Encoding).
func (in *TextFileDocumentInput) Revert(encoding string) error {
	if in.fileName == "" {
		return &IOError{Op: "revert", Path: "", Err: os.ErrInvalid}
	}
	if encoding == "" {
		encoding = in.Encoding
	}
	enc, err := in.EncoderFactory(encoding)
	if err != nil {
		return err
	}
	enc.SetSubstitutionPolicy(in.SubstitutionPolicy)

	buf, err := Open(in.fileName, OpenRead, enc)
	if err != nil {
		return err
	}

	in.doc.ResetContent()
	pos := textpos.Zero()
	runes := make([]rune, 4096)
	for {
		n, _, err := buf.Underflow(runes)
		if n > 0 {
			var werr error
			pos, werr = in.doc.ReplaceNoRecord(textpos.Region{First: pos, Second: pos}, string(runes[:n]), in.doc.RevisionNumber()+1)
			if werr != nil {
				buf.Close()
				return werr
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			buf.Close()
			return err
		}
	}
	if err := buf.Close(); err != nil {
		return err
	}

	in.Encoding = encoding
	in.doc.SetProperty("TITLE", in.fileName)
	in.doc.MarkUnmodified()
	in.savedRevision = in.doc.RevisionNumber()
	in.refreshTimeStamps()
	log.Info("fileio: reverted %s from disk (%s)", in.fileName, encoding)
	return nil
}

// Write saves the Document's content back to the bound file: encode
// into a sibling temp file, close it, replace the original by rename,
// and restore the lock. Nothing is written if the document is not
// modified.
func (in *TextFileDocumentInput) Write() error {
	if in.fileName == "" {
		return &IOError{Op: "write", Path: "", Err: os.ErrInvalid}
	}
	if !in.doc.IsModified() {
		return nil
	}
	if in.doc.IsReadOnly() {
		return &IOError{Op: "write", Path: in.fileName, Err: os.ErrPermission}
	}

	if in.director != nil {
		if stamp, err := currentTimeStamp(in.fileName); err == nil && stamp.After(in.internalLastWriteTime) {
			if !in.director.QueryAboutUnexpectedDocumentFileTimeStamp(in.doc, TriggerOverwriteFile) {
				return &AbortedError{Reason: "bound file changed on disk since last read"}
			}
		}
	}

	enc, err := in.EncoderFactory(in.Encoding)
	if err != nil {
		return err
	}
	enc.SetSubstitutionPolicy(in.SubstitutionPolicy)

	dir := filepath.Dir(in.fileName)
	tmp, err := os.CreateTemp(dir, filepath.Base(in.fileName)+".tmp-*")
	if err != nil {
		return &IOError{Op: "create-temp", Path: dir, Err: err}
	}
	tmpPath := tmp.Name()
	tmp.Close()

	buf, err := Open(tmpPath, OpenWriteTruncate, enc)
	if err != nil {
		os.Remove(tmpPath)
		return err
	}
	text := []rune(in.doc.Substring(in.doc.Region()))
	if err := buf.Sync(text, in.UnicodeByteOrderMark); err != nil {
		buf.CloseAndDiscard()
		return err
	}
	if err := buf.Close(); err != nil {
		os.Remove(tmpPath)
		return &IOError{Op: "close", Path: tmpPath, Err: err}
	}

	if fi, err := os.Stat(in.fileName); err == nil {
		os.Chmod(tmpPath, fi.Mode())
	}

	hadLock := in.locked
	in.releaseLock()

	if err := os.Rename(tmpPath, in.fileName); err != nil {
		os.Remove(tmpPath)
		return &LostDiskFileError{Path: in.fileName, Err: err}
	}

	if hadLock {
		in.acquireLock()
	}

	in.savedRevision = in.doc.RevisionNumber()
	in.doc.MarkUnmodified()
	in.refreshTimeStamps()
	log.Info("fileio: wrote %s (%s)", in.fileName, in.Encoding)
	return nil
}

// CheckTimeStamp reports whether the in-memory content is still current
// with the on-disk file, consulting the director if not. It returns
// false only when a director explicitly refused.
func (in *TextFileDocumentInput) CheckTimeStamp() bool {
	if in.fileName == "" {
		return true
	}
	stamp, err := currentTimeStamp(in.fileName)
	if err != nil {
		return true
	}
	if !stamp.After(in.userLastWriteTime) {
		return true
	}
	if in.director != nil && !in.director.QueryAboutUnexpectedDocumentFileTimeStamp(in.doc, TriggerClientInvocation) {
		return false
	}
	in.userLastWriteTime = stamp
	return true
}

// IsChangeable reports whether the document may be mutated right now,
// lazily acquiring an OnlyAsEditing lock if none is held yet and, while
// the document is unmodified, consulting the director if the file moved
// under us since the last read.
func (in *TextFileDocumentInput) IsChangeable() bool {
	if in.fileName == "" {
		return true
	}
	if in.director != nil && !in.doc.IsModified() {
		if stamp, err := currentTimeStamp(in.fileName); err == nil && stamp.After(in.internalLastWriteTime) {
			if !in.director.QueryAboutUnexpectedDocumentFileTimeStamp(in.doc, TriggerFirstModification) {
				return false
			}
		}
	}
	if in.lockMode.OnlyAsEditing && !in.locked {
		in.acquireLock()
	}
	return true
}

func (in *TextFileDocumentInput) acquireLock() {
	if in.lockMode.Type == LockNone || in.fileName == "" {
		return
	}
	const maxAttempts = 3
	var err error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if _, err = in.locker.Acquire(in.fileName, in.lockMode.Type); err == nil {
			in.locked = true
			return
		}
	}
	log.Error("fileio: could not lock %s after %d attempts: %s", in.fileName, maxAttempts, err)
}

func (in *TextFileDocumentInput) releaseLock() {
	if !in.locked {
		return
	}
	in.locker.Release(in.fileName)
	in.locked = false
}

func (in *TextFileDocumentInput) refreshTimeStamps() {
	stamp, err := currentTimeStamp(in.fileName)
	if err != nil {
		return
	}
	in.userLastWriteTime = stamp
	in.internalLastWriteTime = stamp
}

func currentTimeStamp(path string) (time.Time, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return time.Time{}, err
	}
	return fi.ModTime(), nil
}

// StartSurveillance watches the bound file's directory for writes and
// renames, calling CheckTimeStamp whenever one touches the bound path.
// It uses rjeczalik/notify rather than a polling loop.
func (in *TextFileDocumentInput) StartSurveillance() error {
	if in.fileName == "" {
		return &IOError{Op: "watch", Path: "", Err: os.ErrInvalid}
	}
	in.StopSurveillance()
	ch := make(chan notify.EventInfo, 8)
	if err := notify.Watch(filepath.Dir(in.fileName), ch, notify.Write, notify.Rename, notify.Remove); err != nil {
		return &IOError{Op: "watch", Path: in.fileName, Err: err}
	}
	in.watchCh = ch
	target := in.fileName
	go func() {
		for ev := range ch {
			if filepath.Clean(ev.Path()) == filepath.Clean(target) {
				in.CheckTimeStamp()
			}
		}
	}()
	return nil
}

// StopSurveillance cancels a watch started by StartSurveillance. It is
// a no-op if none is active.
func (in *TextFileDocumentInput) StopSurveillance() {
	if in.watchCh == nil {
		return
	}
	notify.Stop(in.watchCh)
	close(in.watchCh)
	in.watchCh = nil
}

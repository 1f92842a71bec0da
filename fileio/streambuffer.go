package fileio

import (
	"io"
	"io/ioutil"
	"os"
)

// OpenMode restricts TextFileStreamBuffer to the four ways a bound file
// can be opened.
type OpenMode int

const (
	OpenRead OpenMode = iota
	OpenWrite
	OpenWriteTruncate
	OpenWriteAppend
)

// TextFileStreamBuffer adapts between a Unicode rune buffer and a byte
// file through an Encoder, the way view.go's nonAtomicSave reads/writes
// a whole file in one shot, but exposed as an underflow/sync pair of
// calls a caller can drive incrementally instead of one WriteFile call.
type TextFileStreamBuffer struct {
	file *os.File
	path string
	enc  Encoder
	mode OpenMode

	data    []byte // read path: the whole file, read up front
	readPos int

	preAppendEnd int64 // write|append: offset write resumes from, for CloseAndDiscard
}

// Open opens path in mode, wiring enc for any conversion the caller later
// performs through Underflow/Sync. Read and write|append modes eagerly
// read the existing content (read needs it to decode; append needs it so
// an auto-detect encoding can still be probed).
func Open(path string, mode OpenMode, enc Encoder) (*TextFileStreamBuffer, error) {
	var flag int
	switch mode {
	case OpenRead:
		flag = os.O_RDONLY
	case OpenWrite:
		flag = os.O_RDWR | os.O_CREATE
	case OpenWriteTruncate:
		flag = os.O_RDWR | os.O_CREATE | os.O_TRUNC
	case OpenWriteAppend:
		flag = os.O_RDWR | os.O_CREATE
	}
	f, err := os.OpenFile(path, flag, 0644)
	if err != nil {
		return nil, &IOError{Op: "open", Path: path, Err: err}
	}
	b := &TextFileStreamBuffer{file: f, path: path, enc: enc, mode: mode}

	if mode == OpenRead || mode == OpenWriteAppend {
		data, err := ioutil.ReadAll(f)
		if err != nil {
			f.Close()
			return nil, &IOError{Op: "read", Path: path, Err: err}
		}
		b.data = data
	}
	if mode == OpenWriteAppend {
		end, err := f.Seek(0, io.SeekEnd)
		if err != nil {
			f.Close()
			return nil, &IOError{Op: "seek", Path: path, Err: err}
		}
		b.preAppendEnd = end
	}
	return b, nil
}

// Probe returns up to n bytes from the start of the read buffer, for an
// EncodingDetector to sniff before the real Encoder is constructed.
func (b *TextFileStreamBuffer) Probe(n int) []byte {
	if n > len(b.data) {
		n = len(b.data)
	}
	return b.data[:n]
}

// Underflow decodes more runes from the mapped read buffer into out,
// returning how many were written and the Encoder's result.
func (b *TextFileStreamBuffer) Underflow(out []rune) (int, Result, error) {
	if b.readPos >= len(b.data) {
		return 0, ResultCompleted, io.EOF
	}
	flags := Flags(0)
	if b.readPos == 0 {
		flags |= FlagBeginningOfBuffer
	}
	remaining := b.data[b.readPos:]
	if len(remaining) <= cap(out)*4 { // a generous worst-case UTF-8 width bound
		flags |= FlagEndOfBuffer
	}
	b.enc.SetFlags(flags)
	result, written, consumed := b.enc.ToUnicode(out, remaining)
	b.readPos += consumed
	switch result {
	case ResultMalformedInput:
		return written, result, &MalformedInputError{Offset: b.readPos}
	case ResultUnmappableCharacter:
		return written, result, &UnmappableCharacterError{}
	}
	return written, result, nil
}

// Sync converts text to bytes and writes it all in a single system call,
// looping internally on InsufficientBuffer to drain partial conversions.
// bom requests a byte-order mark on the first chunk; append mode always
// suppresses it regardless of the argument.
func (b *TextFileStreamBuffer) Sync(text []rune, bom bool) error {
	if b.mode == OpenWriteAppend {
		bom = false
	}
	var out []byte
	chunk := make([]byte, 4096)
	remaining := text
	first := true
	for {
		flags := Flags(0)
		if first {
			flags |= FlagBeginningOfBuffer
			if bom {
				flags |= FlagUnicodeByteOrderMark
			}
		}
		if len(remaining) <= len(chunk)/4 {
			flags |= FlagEndOfBuffer
		}
		b.enc.SetFlags(flags)
		result, written, consumed := b.enc.FromUnicode(chunk, remaining)
		out = append(out, chunk[:written]...)
		remaining = remaining[consumed:]
		first = false

		switch result {
		case ResultUnmappableCharacter:
			return &UnmappableCharacterError{}
		case ResultMalformedInput:
			return &MalformedInputError{Offset: len(text) - len(remaining)}
		case ResultInsufficientBuffer:
			continue
		case ResultCompleted:
			if len(remaining) == 0 {
				if _, err := b.file.Write(out); err != nil {
					return &IOError{Op: "write", Path: b.path, Err: err}
				}
				return nil
			}
		}
	}
}

// Close flushes and releases the underlying file.
func (b *TextFileStreamBuffer) Close() error {
	return b.file.Close()
}

// CloseAndDiscard undoes a write-mode open: for out|trunc and out it
// deletes the file outright; for out|app it truncates back to the
// pre-open end of file. Read mode behaves like Close.
func (b *TextFileStreamBuffer) CloseAndDiscard() error {
	switch b.mode {
	case OpenRead:
		return b.Close()
	case OpenWriteAppend:
		if err := b.file.Truncate(b.preAppendEnd); err != nil {
			b.file.Close()
			return &IOError{Op: "truncate", Path: b.path, Err: err}
		}
		return b.Close()
	default:
		path := b.path
		if err := b.file.Close(); err != nil {
			return &IOError{Op: "close", Path: path, Err: err}
		}
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return &IOError{Op: "remove", Path: path, Err: err}
		}
		return nil
	}
}

// Package fileio implements the external-collaborator half of the
// engine: binding a Document to an on-disk file, encoding I/O through a
// pluggable Encoder, locking, and time-stamp surveillance. The engine
// defines no character-encoding tables or detectors of its own; it only
// consumes the Encoder interface below, so any such table lives outside
// this module.
package fileio

// Result is the outcome of one Encoder conversion step.
type Result int

const (
	ResultCompleted Result = iota
	ResultInsufficientBuffer
	ResultUnmappableCharacter
	ResultMalformedInput
)

// Flags are passed to SetFlags to tell the Encoder where a conversion
// chunk sits relative to the whole buffer.
type Flags uint

const (
	FlagUnicodeByteOrderMark Flags = 1 << iota
	FlagBeginningOfBuffer
	FlagEndOfBuffer
)

// SubstitutionPolicy controls what an Encoder does with a character or
// byte sequence it cannot convert.
type SubstitutionPolicy int

const (
	SubstitutionPolicyFail SubstitutionPolicy = iota
	SubstitutionPolicyReplace
	SubstitutionPolicyIgnore
)

// Properties identifies an encoding by name and IANA MIB enum.
type Properties struct {
	Name string
	MIB  int
}

// Encoder converts between a Unicode character buffer and a byte buffer.
// The engine is otherwise encoding-agnostic; callers supply a concrete
// Encoder (this module ships only UTF8Encoder, the identity case).
type Encoder interface {
	Properties() Properties
	SetSubstitutionPolicy(policy SubstitutionPolicy)
	SetFlags(flags Flags)
	// FromUnicode converts as much of in as fits in out, returning the
	// result and the number of runes/bytes consumed.
	FromUnicode(out []byte, in []rune) (result Result, bytesWritten int, runesConsumed int)
	// ToUnicode converts as much of in as fits in out.
	ToUnicode(out []rune, in []byte) (result Result, runesWritten int, bytesConsumed int)
	ResetEncodingState()
	ResetDecodingState()
}

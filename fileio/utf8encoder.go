package fileio

import "unicode/utf8"

// UTF8Encoder is the identity Encoder: Unicode text stored in this
// module's types is already UTF-8, so conversion is a straight copy with
// per-call buffer-capacity bookkeeping. It is the only Encoder this
// module ships; anything else is a caller-supplied implementation of the
// Encoder interface (real codec tables are explicitly out of scope).
type UTF8Encoder struct {
	policy SubstitutionPolicy
	flags  Flags
}

func NewUTF8Encoder() *UTF8Encoder { return &UTF8Encoder{} }

func (e *UTF8Encoder) Properties() Properties { return Properties{Name: "UTF-8", MIB: 106} }

func (e *UTF8Encoder) SetSubstitutionPolicy(policy SubstitutionPolicy) { e.policy = policy }
func (e *UTF8Encoder) SetFlags(flags Flags)                            { e.flags = flags }
func (e *UTF8Encoder) ResetEncodingState()                             {}
func (e *UTF8Encoder) ResetDecodingState()                             {}

// FromUnicode implements Encoder.
func (e *UTF8Encoder) FromUnicode(out []byte, in []rune) (Result, int, int) {
	written, consumed := 0, 0
	for _, r := range in {
		n := utf8.RuneLen(r)
		if n < 0 {
			n = utf8.RuneLen(utf8.RuneError)
		}
		if written+n > len(out) {
			return ResultInsufficientBuffer, written, consumed
		}
		n = utf8.EncodeRune(out[written:], r)
		written += n
		consumed++
	}
	return ResultCompleted, written, consumed
}

// ToUnicode implements Encoder.
func (e *UTF8Encoder) ToUnicode(out []rune, in []byte) (Result, int, int) {
	written, consumed := 0, 0
	for consumed < len(in) {
		if written >= len(out) {
			return ResultInsufficientBuffer, written, consumed
		}
		r, size := utf8.DecodeRune(in[consumed:])
		if r == utf8.RuneError && size <= 1 {
			if size == 0 {
				return ResultInsufficientBuffer, written, consumed
			}
			if e.policy == SubstitutionPolicyFail {
				return ResultMalformedInput, written, consumed
			}
		}
		out[written] = r
		written++
		consumed += size
	}
	return ResultCompleted, written, consumed
}

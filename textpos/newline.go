package textpos

// NewlineKind tags the line terminator that followed a LineContent's text,
// or a document-level default when the line itself carries no opinion.
type NewlineKind int

const (
	NewlineLF NewlineKind = iota
	NewlineCR
	NewlineCRLF
	NewlineNEL
	NewlineLS
	NewlinePS
	// NewlineUseIntrinsic means "whatever this line's own stored kind is";
	// only meaningful as a write-time option, never stored on a line.
	NewlineUseIntrinsic
	// NewlineUseDocumentInput means "the document's default newline",
	// likewise only meaningful as a write-time option.
	NewlineUseDocumentInput
)

// IsLiteral reports whether k has a concrete code-point representation,
// i.e. is not one of the two write-time-only placeholders.
func (k NewlineKind) IsLiteral() bool {
	return k != NewlineUseIntrinsic && k != NewlineUseDocumentInput
}

// Literal returns the code points for k. Panics if !k.IsLiteral().
func (k NewlineKind) Literal() string {
	switch k {
	case NewlineLF:
		return "\n"
	case NewlineCR:
		return "\r"
	case NewlineCRLF:
		return "\r\n"
	case NewlineNEL:
		return ""
	case NewlineLS:
		return " "
	case NewlinePS:
		return " "
	default:
		panic("textpos: Literal called on a non-literal NewlineKind")
	}
}

func (k NewlineKind) String() string {
	switch k {
	case NewlineLF:
		return "LF"
	case NewlineCR:
		return "CR"
	case NewlineCRLF:
		return "CRLF"
	case NewlineNEL:
		return "NEL"
	case NewlineLS:
		return "LS"
	case NewlinePS:
		return "PS"
	case NewlineUseIntrinsic:
		return "USE_INTRINSIC"
	case NewlineUseDocumentInput:
		return "USE_DOCUMENT_INPUT"
	default:
		return "UNKNOWN"
	}
}

// newlineTable lists the literal kinds in the scan order used to recognize
// a terminator at a given offset: longer sequences (CRLF) must be probed
// before their prefix (CR) matches.
var newlineTable = []NewlineKind{NewlineCRLF, NewlineCR, NewlineLF, NewlineNEL, NewlineLS, NewlinePS}

// ScanNewline looks for a recognized line terminator starting at byte
// offset i in s (s is assumed valid UTF-8). It returns the matched kind
// and the number of bytes it occupies, or ok=false if none matched at i.
func ScanNewline(s string, i int) (kind NewlineKind, width int, ok bool) {
	for _, k := range newlineTable {
		lit := k.Literal()
		if i+len(lit) <= len(s) && s[i:i+len(lit)] == lit {
			return k, len(lit), true
		}
	}
	return 0, 0, false
}

package partition

import (
	"unicode"

	"github.com/limetext/rubex"
)

// matchSpan is a half-open byte span, the same A/B pair shape
// quarnster/parser.Node.Range and textmate's MatchObject use for capture
// offsets; RegexRule keeps its own copy rather than importing the parser
// package just for this one struct.
type matchSpan struct{ A, B int }

// TransitionRule tests whether content of type Source() transitions to
// Destination() at a given offset into line, and if so how many runes
// the transition consumes. A return of 0 means no match; the caller
// treats any n > 0 as authoritative and does not try further rules at
// that position.
type TransitionRule interface {
	Source() ContentType
	Destination() ContentType
	Match(line string, offset uint) uint
}

// LiteralRule fires on an exact (optionally case-insensitive, optionally
// escapable) substring match at offset. An empty Trigger matches only at
// end of line, for rules that care about "this line ended while still in
// state X" rather than any particular character.
type LiteralRule struct {
	SourceType    ContentType
	DestType      ContentType
	Trigger       string
	Escape        rune // 0 disables escape handling
	CaseSensitive bool
}

func (r *LiteralRule) Source() ContentType      { return r.SourceType }
func (r *LiteralRule) Destination() ContentType { return r.DestType }

// Match implements TransitionRule.
func (r *LiteralRule) Match(line string, offset uint) uint {
	runes := []rune(line)
	if r.Trigger == "" {
		if offset == uint(len(runes)) {
			return 1
		}
		return 0
	}
	trig := []rune(r.Trigger)
	if int(offset)+len(trig) > len(runes) {
		return 0
	}
	if r.Escape != 0 && offset > 0 && runes[offset-1] == r.Escape {
		return 0
	}
	for i, want := range trig {
		got := runes[int(offset)+i]
		if !r.CaseSensitive {
			got, want = unicode.ToLower(got), unicode.ToLower(want)
		}
		if got != want {
			return 0
		}
	}
	return uint(len(trig))
}

// RegexRule fires when its pattern matches anchored exactly at offset,
// compiled through rubex the same way view.go's rubex.Compile(ws) and
// textmate/language.go's Regex wrapper build their own regexes. A
// zero-width match still consumes one rune, so the scanner always makes
// forward progress.
type RegexRule struct {
	SourceType ContentType
	DestType   ContentType
	re         *rubex.Regexp
}

// NewRegexRule compiles pattern once, up front, so Match never returns an
// error: a bad pattern is a programming error, caught at setup time.
func NewRegexRule(source, dest ContentType, pattern string) (*RegexRule, error) {
	re, err := rubex.Compile(pattern)
	if err != nil {
		return nil, err
	}
	return &RegexRule{SourceType: source, DestType: dest, re: re}, nil
}

func (r *RegexRule) Source() ContentType      { return r.SourceType }
func (r *RegexRule) Destination() ContentType { return r.DestType }

// Match implements TransitionRule. rubex reports byte offsets; Match
// converts the matched byte span back to a rune count since Position
// columns are counted in runes.
func (r *RegexRule) Match(line string, offset uint) uint {
	runes := []rune(line)
	if offset > uint(len(runes)) {
		return 0
	}
	sub := string(runes[offset:])
	loc := r.re.FindStringIndex(sub)
	if loc == nil {
		return 0
	}
	span := matchSpan{A: loc[0], B: loc[1]}
	if span.A != 0 {
		return 0
	}
	if span.B == 0 {
		return 1
	}
	return uint(len([]rune(sub[:span.B])))
}

// WordSetRule fires when one of a fixed set of keywords matches at
// offset, the longest match winning when several keywords share a
// prefix. This supplements the literal/regex pair with the common case
// of "one of these N reserved words", which a grammar would otherwise
// have to spell out as an alternation regex.
type WordSetRule struct {
	SourceType    ContentType
	DestType      ContentType
	Words         []string
	CaseSensitive bool
}

func (r *WordSetRule) Source() ContentType      { return r.SourceType }
func (r *WordSetRule) Destination() ContentType { return r.DestType }

// Match implements TransitionRule.
func (r *WordSetRule) Match(line string, offset uint) uint {
	runes := []rune(line)
	best := uint(0)
	for _, w := range r.Words {
		wr := []rune(w)
		if int(offset)+len(wr) > len(runes) {
			continue
		}
		match := true
		for i, want := range wr {
			got := runes[int(offset)+i]
			if !r.CaseSensitive {
				got, want = unicode.ToLower(got), unicode.ToLower(want)
			}
			if got != want {
				match = false
				break
			}
		}
		if match && uint(len(wr)) > best {
			best = uint(len(wr))
		}
	}
	return best
}

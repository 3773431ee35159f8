package score

import (
	"github.com/antchfx/xmlquery"
)

// Spanner types that join notes.
const (
	Tie  = "Tie"
	Slur = "Slur"
)

// Spanners returns the spanners of the given type below a chord, in document order.
// An empty kind selects both ties and slurs.
func Spanners(chord *xmlquery.Node, kind string) []*xmlquery.Node {
	if kind == "" {
		return Select(chord, ".//Spanner[@type='Tie' or @type='Slur']")
	}
	return Select(chord, ".//Spanner[@type='"+kind+"']")
}

// HasNext reports whether the spanner points forward, i.e. starts here.
func HasNext(spanner *xmlquery.Node) bool {
	return SelectOne(spanner, ".//next") != nil
}

// HasPrev reports whether the spanner points backward, i.e. ends here.
func HasPrev(spanner *xmlquery.Node) bool {
	return SelectOne(spanner, ".//prev") != nil
}

// StartsSpan reports whether the chord starts a spanner of the given type.
func StartsSpan(chord *xmlquery.Node, kind string) bool {
	for _, s := range Spanners(chord, kind) {
		if HasNext(s) {
			return true
		}
	}
	return false
}

// ContinuesSpan reports whether the chord ends a spanner of the given type.
func ContinuesSpan(chord *xmlquery.Node, kind string) bool {
	for _, s := range Spanners(chord, kind) {
		if HasPrev(s) {
			return true
		}
	}
	return false
}

// IsContinuation reports whether the chord is the tail of a tie or slur.
// Such chords carry no syllable of their own.
func IsContinuation(chord *xmlquery.Node) bool {
	return ContinuesSpan(chord, Tie) || ContinuesSpan(chord, Slur)
}

// SpanState follows ties and slurs through one voice of one measure.
type SpanState struct {
	slur, tie bool
}

// Eligible reports whether the chord gets its own syllable and advances the state.
// Continuations and chords inside an open tie or slur are not eligible; the chord that
// starts the span is.
func (s *SpanState) Eligible(chord *xmlquery.Node) bool {
	if IsContinuation(chord) {
		if ContinuesSpan(chord, Slur) {
			s.slur = false
		}
		if ContinuesSpan(chord, Tie) {
			s.tie = false
		}
		return false
	}
	startsSlur := StartsSpan(chord, Slur)
	startsTie := StartsSpan(chord, Tie)
	if s.slur && !startsSlur {
		return false
	}
	if s.tie && !startsTie {
		return false
	}
	if startsSlur {
		s.slur = true
	}
	if startsTie {
		s.tie = true
	}
	return true
}

// Pitch returns the pitch of a chord's first Note, or -1.
func Pitch(chord *xmlquery.Node) int {
	n := Element(chord, "Note")
	if n == nil {
		return -1
	}
	return Int(n, "pitch", -1)
}

// Notes returns the Note elements of a chord.
func Notes(chord *xmlquery.Node) []*xmlquery.Node {
	return Elements(chord, "Note")
}

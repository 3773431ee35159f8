package score

import (
	"strconv"

	"github.com/antchfx/xmlquery"
)

// TimeSig is a time signature.
type TimeSig struct {
	Num, Denom int
}

// CommonTime is the signature assumed before the first TimeSig.
var CommonTime = TimeSig{Num: 4, Denom: 4}

// ReadTimeSig reads a TimeSig element.
func ReadTimeSig(n *xmlquery.Node) (TimeSig, bool) {
	sig := TimeSig{Num: Int(n, "sigN", 0), Denom: Int(n, "sigD", 0)}
	if sig.Num <= 0 || sig.Denom <= 0 {
		return TimeSig{}, false
	}
	return sig, true
}

// Fraction returns the measure length in whole notes.
func (s TimeSig) Fraction() Fraction {
	return Fraction{Num: s.Num, Denom: s.Denom}
}

// Ticks returns the measure length.
func (s TimeSig) Ticks(r Resolver) int {
	return s.Fraction().Ticks(r.Whole)
}

// Node builds a TimeSig element.
func (s TimeSig) Node() *xmlquery.Node {
	return NewElement("TimeSig",
		NewTextElement("sigN", strconv.Itoa(s.Num)),
		NewTextElement("sigD", strconv.Itoa(s.Denom)))
}

// NewKeySig builds a KeySig element with the given accidental count.
func NewKeySig(accidental int) *xmlquery.Node {
	return NewElement("KeySig", NewTextElement("accidental", strconv.Itoa(accidental)))
}

// MeasureSignature returns the first element of the given kind (Clef, KeySig, TimeSig) in any voice of a measure.
func MeasureSignature(measure *xmlquery.Node, kind string) *xmlquery.Node {
	for _, v := range Elements(measure, "voice") {
		if n := Element(v, kind); n != nil {
			return n
		}
	}
	return nil
}

// ClefType returns the concert clef type of the first Clef in the staff, or "G".
func ClefType(staff *xmlquery.Node) string {
	clef := SelectOne(staff, ".//Clef")
	if clef == nil {
		return "G"
	}
	t := Text(clef, "concertClefType")
	if t == "" {
		return "G"
	}
	return t
}

package score

import (
	"strconv"
	"strings"

	"github.com/antchfx/xmlquery"
)

// DefaultWhole is the tick count of a whole note when the document carries no division.
const DefaultWhole = 128

// Resolver converts duration tokens to ticks.
type Resolver struct {
	// Whole is the number of ticks in a whole note.
	Whole int
}

// NewResolver returns a resolver for a document with the given ticks per quarter.
func NewResolver(division int) Resolver {
	if division <= 0 {
		return Resolver{Whole: DefaultWhole}
	}
	return Resolver{Whole: 4 * division}
}

// durationDivisors maps a durationType to the fraction of a whole note it lasts, as num/denom.
var durationDivisors = map[string][2]int{
	"long":    {4, 1},
	"breve":   {2, 1},
	"whole":   {1, 1},
	"half":    {1, 2},
	"quarter": {1, 4},
	"eighth":  {1, 8},
	"16th":    {1, 16},
	"32nd":    {1, 32},
	"64th":    {1, 64},
	"128th":   {1, 128},
}

// encodable lists the base values the inverse lookup may produce, longest first.
var encodable = []string{"whole", "half", "quarter", "eighth", "16th", "32nd", "64th"}

func (r Resolver) base(token string) int {
	token = strings.TrimSpace(token)
	if f, ok := durationDivisors[token]; ok {
		return r.Whole * f[0] / f[1]
	}
	if frac, ok := ParseFraction(token); ok {
		return frac.Ticks(r.Whole)
	}
	return 0
}

// Duration resolves a duration token ("eighth" or "N/D") with the given number of dots.
// Unknown tokens give 0.
func (r Resolver) Duration(token string, dots int) int {
	ret := r.base(token)
	add := ret
	for i := 0; i < dots && i < 3; i++ {
		add /= 2
		ret += add
	}
	return ret
}

// DurationString is Duration with the dot count given as text, as stored in the document.
func (r Resolver) DurationString(token, dots string) int {
	d, err := strconv.Atoi(strings.TrimSpace(dots))
	if err != nil {
		d = 0
	}
	return r.Duration(token, d)
}

// EventDuration returns the length of a Chord or Rest element.
// Full-measure rests use their explicit duration fraction.
func (r Resolver) EventDuration(n *xmlquery.Node) int {
	token := Text(n, "durationType")
	if token == "measure" {
		token = Text(n, "duration")
	}
	return r.DurationString(token, Text(n, "dots"))
}

// Encode finds a durationType and dot count lasting exactly ticks.
func (r Resolver) Encode(ticks int) (token string, dots int, ok bool) {
	for _, t := range encodable {
		for d := 0; d <= 3; d++ {
			if r.Duration(t, d) == ticks {
				return t, d, true
			}
		}
	}
	return "", 0, false
}

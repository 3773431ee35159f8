package score

import (
	"fmt"
	"strconv"
	"strings"
)

// Fraction is a length in whole notes, as written in "len" attributes and location markers.
type Fraction struct {
	Num, Denom int
}

func gcd(a, b int) int {
	if a < 0 {
		a = -a
	}
	if b < 0 {
		b = -b
	}
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

// ParseFraction parses "N/D".
func ParseFraction(s string) (Fraction, bool) {
	num, denom, found := strings.Cut(strings.TrimSpace(s), "/")
	if !found {
		return Fraction{}, false
	}
	n, err := strconv.Atoi(strings.TrimSpace(num))
	if err != nil {
		return Fraction{}, false
	}
	d, err := strconv.Atoi(strings.TrimSpace(denom))
	if err != nil || d <= 0 {
		return Fraction{}, false
	}
	return Fraction{Num: n, Denom: d}, true
}

// Reduce returns the fraction in lowest terms.
func (f Fraction) Reduce() Fraction {
	g := gcd(f.Num, f.Denom)
	if g == 0 {
		return f
	}
	return Fraction{Num: f.Num / g, Denom: f.Denom / g}
}

// Equal compares by value, so 2/4 equals 1/2.
func (f Fraction) Equal(o Fraction) bool {
	return f.Num*o.Denom == o.Num*f.Denom
}

// Ticks converts to ticks given the ticks of a whole note.
func (f Fraction) Ticks(whole int) int {
	if f.Denom == 0 {
		return 0
	}
	return whole * f.Num / f.Denom
}

func (f Fraction) String() string {
	return fmt.Sprintf("%d/%d", f.Num, f.Denom)
}

package score

import (
	"github.com/antchfx/xmlquery"
)

// Syllabic roles.
const (
	Single = "single"
	Begin  = "begin"
	Middle = "middle"
	End    = "end"
)

// Lyric is the content of a Lyrics element.
type Lyric struct {
	Syllabic string
	Text     string
	// Verse is the raw "no" value; empty means the first verse.
	Verse string
}

// DefaultVerse reports whether the lyric belongs to the first verse.
func (l Lyric) DefaultVerse() bool {
	return l.Verse == "" || l.Verse == "0"
}

// Continues reports whether the word goes on after this syllable.
func (l Lyric) Continues() bool {
	return l.Syllabic == Begin || l.Syllabic == Middle
}

// ReadLyric reads a Lyrics element.
func ReadLyric(n *xmlquery.Node) Lyric {
	l := Lyric{
		Syllabic: Text(n, "syllabic"),
		Text:     Text(n, "text"),
		Verse:    Text(n, "no"),
	}
	if l.Syllabic == "" {
		l.Syllabic = Single
	}
	return l
}

// Node builds a Lyrics element.
func (l Lyric) Node() *xmlquery.Node {
	n := NewElement("Lyrics")
	if !l.DefaultVerse() {
		xmlquery.AddChild(n, NewTextElement("no", l.Verse))
	}
	if l.Syllabic != "" && l.Syllabic != Single {
		xmlquery.AddChild(n, NewTextElement("syllabic", l.Syllabic))
	}
	xmlquery.AddChild(n, NewTextElement("text", l.Text))
	return n
}

// ChordLyrics returns the Lyrics elements of a chord.
func ChordLyrics(chord *xmlquery.Node) []*xmlquery.Node {
	return Elements(chord, "Lyrics")
}

// DefaultLyric returns the first-verse lyric of a chord.
func DefaultLyric(chord *xmlquery.Node) (Lyric, bool) {
	for _, n := range ChordLyrics(chord) {
		l := ReadLyric(n)
		if l.DefaultVerse() {
			return l, true
		}
	}
	return Lyric{}, false
}

// ExportLyric returns the first-verse lyric, falling back to the second verse when the first is
// missing or blank.
func ExportLyric(chord *xmlquery.Node) (Lyric, bool) {
	var first, second *Lyric
	for _, n := range ChordLyrics(chord) {
		l := ReadLyric(n)
		switch {
		case l.DefaultVerse() && first == nil:
			first = &l
		case l.Verse == "1":
			second = &l
		}
	}
	if first != nil && first.Text != "" {
		return *first, true
	}
	if second != nil {
		return *second, true
	}
	if first != nil {
		return *first, true
	}
	return Lyric{}, false
}

// RemoveLyrics drops every Lyrics element of the chord for which drop returns true.
func RemoveLyrics(chord *xmlquery.Node, drop func(l Lyric) bool) {
	Filter(chord, func(c *xmlquery.Node) bool {
		return c.Type != xmlquery.ElementNode || c.Data != "Lyrics" || !drop(ReadLyric(c))
	})
}

// ClearDefaultLyric removes the first-verse lyrics of a chord.
func ClearDefaultLyric(chord *xmlquery.Node) {
	RemoveLyrics(chord, Lyric.DefaultVerse)
}

// SetDefaultLyric replaces the first-verse lyric of a chord.
// The new element takes the place of the old one, or goes in front of the first Note.
func SetDefaultLyric(chord *xmlquery.Node, l Lyric) {
	l.Verse = ""
	replaced := false
	var kids []*xmlquery.Node
	for c := chord.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == xmlquery.ElementNode && c.Data == "Lyrics" && ReadLyric(c).DefaultVerse() {
			if !replaced {
				kids = append(kids, l.Node())
				replaced = true
			}
			continue
		}
		if c.Type == xmlquery.ElementNode && c.Data == "Note" && !replaced {
			kids = append(kids, l.Node())
			replaced = true
		}
		kids = append(kids, c)
	}
	if !replaced {
		kids = append(kids, l.Node())
	}
	ReplaceChildren(chord, kids)
}

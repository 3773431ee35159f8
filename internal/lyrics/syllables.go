package lyrics

import (
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/divVerent/choirsplit/internal/score"
)

// Placeholder marks an eligible chord without a lyric.
const Placeholder = "_"

// Syllable is the lyric of one eligible chord. A zero Syllable is an empty slot.
type Syllable struct {
	Syllabic string
	Text     string
}

// Empty reports whether the syllable is a placeholder.
func (s Syllable) Empty() bool {
	return s.Syllabic == ""
}

// Lyric converts the syllable to a first-verse lyric.
func (s Syllable) Lyric() score.Lyric {
	return score.Lyric{Syllabic: s.Syllabic, Text: s.Text}
}

// Normalize returns text in NFC form.
func Normalize(text string) string {
	return norm.NFC.String(text)
}

// Token renders the lyric of one chord: its text, with a trailing hyphen if the word goes on.
func Token(l score.Lyric) string {
	text := strings.Join(strings.Fields(Normalize(l.Text)), " ")
	if text == "" {
		return Placeholder
	}
	if l.Continues() {
		return text + "-"
	}
	return text
}

// MergeTokens joins per-chord tokens into a line, gluing syllables of one word with hyphens.
func MergeTokens(tokens []string) string {
	var words []string
	for _, tok := range tokens {
		n := len(words)
		if n > 0 && tok != Placeholder && strings.HasSuffix(words[n-1], "-") {
			words[n-1] += tok
			continue
		}
		words = append(words, tok)
	}
	return strings.Join(words, " ")
}

// SplitLine splits a line into words. A word ending in a hyphen absorbs the next one,
// unless that is a placeholder.
func SplitLine(line string) []string {
	var tokens []string
	for _, f := range strings.Fields(line) {
		n := len(tokens)
		if n > 0 && f != Placeholder && strings.HasSuffix(tokens[n-1], "-") {
			tokens[n-1] += f
			continue
		}
		tokens = append(tokens, Normalize(f))
	}
	return tokens
}

// EndsWord reports whether the last token leaves no word open.
func EndsWord(tokens []string) bool {
	if len(tokens) == 0 {
		return true
	}
	last := tokens[len(tokens)-1]
	return last == Placeholder || !strings.HasSuffix(last, "-")
}

// TokensToSyllables expands words into one syllable per chord.
// If continued is set, the first word carries on a word from the previous measure.
func TokensToSyllables(tokens []string, continued bool) []Syllable {
	var out []Syllable
	for idx, tok := range tokens {
		if tok == Placeholder {
			out = append(out, Syllable{})
			continue
		}
		open := strings.HasSuffix(tok, "-")
		var parts []string
		for _, p := range strings.Split(strings.TrimRight(tok, "-"), "-") {
			if p != "" {
				parts = append(parts, p)
			}
		}
		for i, p := range parts {
			openStart := i > 0 || (idx == 0 && continued)
			openEnd := i < len(parts)-1 || open
			out = append(out, Syllable{Syllabic: syllabic(openStart, openEnd), Text: p})
		}
	}
	return out
}

func syllabic(openStart, openEnd bool) string {
	switch {
	case openStart && openEnd:
		return score.Middle
	case openStart:
		return score.End
	case openEnd:
		return score.Begin
	}
	return score.Single
}

// SyllablesToTokens is the inverse of TokensToSyllables.
func SyllablesToTokens(syls []Syllable) []string {
	var tokens, word []string
	flush := func(open bool) {
		if len(word) == 0 {
			return
		}
		tok := strings.Join(word, "-")
		if open {
			tok += "-"
		}
		tokens = append(tokens, tok)
		word = nil
	}
	for _, s := range syls {
		if s.Empty() {
			flush(true)
			tokens = append(tokens, Placeholder)
			continue
		}
		word = append(word, s.Text)
		if s.Syllabic != score.Begin && s.Syllabic != score.Middle {
			flush(false)
		}
	}
	flush(true)
	return tokens
}

package lyrics

import (
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/antchfx/xmlquery"

	"github.com/divVerent/choirsplit/internal/score"
)

// ByMeasure holds token lines by 1-based measure number and staff id.
type ByMeasure map[int]map[int][]string

func (b ByMeasure) set(measure, staff int, tokens []string) {
	if b[measure] == nil {
		b[measure] = map[int][]string{}
	}
	b[measure][staff] = tokens
}

func (b ByMeasure) get(measure, staff int) ([]string, bool) {
	t, ok := b[measure][staff]
	return t, ok
}

// eligibleChords returns the chords of voice 0 of a measure that get a syllable of their own.
// The other chords are passed to skip, if given.
func eligibleChords(measure *xmlquery.Node, skip func(chord *xmlquery.Node)) []*xmlquery.Node {
	voices := score.Elements(measure, "voice")
	if len(voices) == 0 {
		return nil
	}
	var st score.SpanState
	var out []*xmlquery.Node
	for _, chord := range score.Elements(voices[0], "Chord") {
		if st.Eligible(chord) {
			out = append(out, chord)
		} else if skip != nil {
			skip(chord)
		}
	}
	return out
}

// ExportTokens collects one token per eligible chord of every measure and staff.
func ExportTokens(doc *score.Document) (ByMeasure, error) {
	staves, err := doc.Staves()
	if err != nil {
		return nil, err
	}
	out := ByMeasure{}
	for _, staff := range staves {
		id := score.StaffID(staff)
		for mi, m := range score.Elements(staff, "Measure") {
			if len(score.Elements(m, "voice")) == 0 {
				continue
			}
			tokens := []string{}
			for _, chord := range eligibleChords(m, nil) {
				l, ok := score.ExportLyric(chord)
				if !ok {
					tokens = append(tokens, Placeholder)
					continue
				}
				tokens = append(tokens, Token(l))
			}
			out.set(mi+1, id, tokens)
		}
	}
	return out, nil
}

// Format renders token lines in the text form.
func (b ByMeasure) Format() string {
	measures := make([]int, 0, len(b))
	for m := range b {
		measures = append(measures, m)
	}
	sort.Ints(measures)
	var sb strings.Builder
	for _, m := range measures {
		fmt.Fprintf(&sb, "# Measure %d\n", m)
		staves := make([]int, 0, len(b[m]))
		for s := range b[m] {
			staves = append(staves, s)
		}
		sort.Ints(staves)
		for _, s := range staves {
			tokens := b[m][s]
			fmt.Fprintf(&sb, "%s\n", strings.TrimRight(fmt.Sprintf("%d [%d]: %s", s, len(tokens), MergeTokens(tokens)), " "))
		}
	}
	return sb.String()
}

// Export renders the first-verse lyrics of the document in the text form.
func Export(doc *score.Document) (string, error) {
	b, err := ExportTokens(doc)
	if err != nil {
		return "", err
	}
	return b.Format(), nil
}

// ParseText reads the text form. Lines that do not parse are skipped.
func ParseText(txt string) ByMeasure {
	out := ByMeasure{}
	measure := 0
	for i, raw := range strings.Split(txt, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		parsed, err := parseLine(line)
		if err != nil {
			if !strings.HasPrefix(line, "#") {
				log.Printf("Skipping lyric line %d: %v.", i+1, err)
			}
			continue
		}
		if parsed.Header != nil {
			measure = parsed.Header.Measure
			continue
		}
		sl := parsed.Staff
		if measure == 0 {
			log.Printf("Skipping lyric line %d: no measure header before it.", i+1)
			continue
		}
		tokens := SplitLine(strings.Join(sl.Tokens, " "))
		if sl.Count != nil {
			if n := len(TokensToSyllables(tokens, false)); n != *sl.Count {
				log.Printf("Skipping lyric line %d: %d syllables, but %d announced.", i+1, n, *sl.Count)
				continue
			}
		}
		out.set(measure, sl.Staff, tokens)
	}
	return out
}

// ImportText applies lyrics in the text form to the document.
func ImportText(doc *score.Document, txt string) error {
	return Import(doc, ParseText(txt))
}

// Import writes token lines into the first verse of voice 0.
// Only the measures and staves present in b are edited. Chords inside a tie or slur lose their
// first-verse lyric, and every other verse is deleted.
func Import(doc *score.Document, b ByMeasure) error {
	if err := AddRestsToEmptyMeasures(doc); err != nil {
		return err
	}
	staves, err := doc.Staves()
	if err != nil {
		return err
	}
	for _, staff := range staves {
		id := score.StaffID(staff)
		for mi, m := range score.Elements(staff, "Measure") {
			tokens, ok := b.get(mi+1, id)
			if !ok {
				continue
			}
			prev, _ := b.get(mi, id)
			syls := TokensToSyllables(tokens, !EndsWord(prev))
			next := 0
			for _, chord := range eligibleChords(m, score.ClearDefaultLyric) {
				if next >= len(syls) || syls[next].Empty() {
					score.ClearDefaultLyric(chord)
				} else {
					score.SetDefaultLyric(chord, syls[next].Lyric())
				}
				next++
			}
			if next < len(syls) {
				log.Printf("Staff %d measure %d: %d syllables left over.", id, mi+1, len(syls)-next)
			}
		}
	}
	for _, chord := range score.Select(doc.Root, "//Chord") {
		score.RemoveLyrics(chord, func(l score.Lyric) bool {
			return !l.DefaultVerse()
		})
		if score.IsContinuation(chord) {
			score.ClearDefaultLyric(chord)
		}
	}
	return nil
}

// EligibleCounts returns the number of eligible chords by staff id and 1-based measure.
func EligibleCounts(doc *score.Document) (map[int]map[int]int, error) {
	staves, err := doc.Staves()
	if err != nil {
		return nil, err
	}
	out := map[int]map[int]int{}
	for _, staff := range staves {
		id := score.StaffID(staff)
		counts := map[int]int{}
		for mi, m := range score.Elements(staff, "Measure") {
			counts[mi+1] = len(eligibleChords(m, nil))
		}
		out[id] = counts
	}
	return out, nil
}

// AddRestsToEmptyMeasures gives every voice without a Chord or Rest a full-measure rest.
// Measures without any voice get one.
func AddRestsToEmptyMeasures(doc *score.Document) error {
	staves, err := doc.Staves()
	if err != nil {
		return err
	}
	for _, staff := range staves {
		sig := score.CommonTime
		for _, m := range score.Elements(staff, "Measure") {
			if ts := score.MeasureSignature(m, "TimeSig"); ts != nil {
				if s, ok := score.ReadTimeSig(ts); ok {
					sig = s
				}
			}
			voices := score.Elements(m, "voice")
			if len(voices) == 0 {
				v := score.NewElement("voice")
				xmlquery.AddChild(m, v)
				voices = append(voices, v)
			}
			for _, v := range voices {
				if score.Element(v, "Chord") != nil || score.Element(v, "Rest") != nil {
					continue
				}
				xmlquery.AddChild(v, score.NewElement("Rest", score.NewTextElement("durationType", sig.Fraction().String())))
			}
		}
	}
	return nil
}

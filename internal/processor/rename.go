package processor

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/antchfx/xmlquery"

	"github.com/divVerent/choirsplit/internal/score"
)

var partLetters = map[rune]string{
	'S': "Soprano",
	'A': "Alto",
	'T': "Tenor",
	'B': "Bass",
	'M': "Men",
	'W': "Women",
}

// PartName is the short and full name of one part.
type PartName struct {
	Short, Full string
}

// PartNames expands a part string such as "SSAATTBB" into names.
// Runs of one or two letters are numbered S1, S2; longer runs are numbered in pairs S1-1, S1-2, S2-1, ...
// where an odd last part of a run is just numbered by its pair, e.g. S2.
func PartNames(partString string) ([]PartName, error) {
	letters := []rune(strings.ToUpper(strings.TrimSpace(partString)))
	if len(letters) == 0 {
		return nil, fmt.Errorf("empty part string")
	}
	for _, l := range letters {
		if _, ok := partLetters[l]; !ok {
			return nil, fmt.Errorf("invalid part letter %q in %q; allowed are S, A, T, B, M, W", l, partString)
		}
	}
	var out []PartName
	for i := 0; i < len(letters); {
		l := letters[i]
		run := 1
		for i+run < len(letters) && letters[i+run] == l {
			run++
		}
		for k := 0; k < run; k++ {
			var suffix string
			switch {
			case run < 3:
				suffix = fmt.Sprint(k + 1)
			case k%2 == 1:
				suffix = fmt.Sprintf("%d-2", k/2+1)
			case k+1 < run:
				suffix = fmt.Sprintf("%d-1", k/2+1)
			default:
				suffix = fmt.Sprint(k/2 + 1)
			}
			out = append(out, PartName{
				Short: string(l) + suffix,
				Full:  partLetters[l] + " " + suffix,
			})
		}
		i += run
	}
	return out, nil
}

// RenameParts names the first parts of the score after the part string.
func RenameParts(doc *score.Document, partString string) error {
	names, err := PartNames(partString)
	if err != nil {
		return err
	}
	parts, err := doc.Parts()
	if err != nil {
		return err
	}
	if len(parts) < len(names) {
		return fmt.Errorf("part string %q names %d parts, but the score has only %d", partString, len(names), len(parts))
	}
	for i, name := range names {
		part := parts[i]
		if score.Element(part, "trackName") != nil {
			score.SetText(part, "trackName", name.Full)
		}
		inst := score.Element(part, "Instrument")
		if inst == nil {
			continue
		}
		for tag, text := range map[string]string{"longName": name.Full, "shortName": name.Short, "trackName": name.Full} {
			if score.Element(inst, tag) != nil {
				score.SetText(inst, tag, text)
			}
		}
	}
	return nil
}

const clickName = "Click"

// clickRests fills length ticks with eighth rests, ending with a shorter rest if the measure
// is not a whole number of eighths, e.g. 7/16.
func clickRests(r score.Resolver, length int) []*xmlquery.Node {
	var out []*xmlquery.Node
	eighth := r.Duration("eighth", 0)
	t := 0
	for ; t+eighth <= length; t += eighth {
		out = append(out, score.NewElement("Rest", score.NewTextElement("durationType", "eighth")))
	}
	if t < length {
		if token, dots, ok := r.Encode(length - t); ok {
			rest := score.NewElement("Rest", score.NewTextElement("durationType", token))
			if dots > 0 {
				xmlquery.AddChild(rest, score.NewTextElement("dots", strconv.Itoa(dots)))
			}
			out = append(out, rest)
		}
	}
	return out
}

// AddClickStaff appends a part and staff of eighth rests that follows the time signatures of the
// first staff, for use as a metronome track. It does nothing if the score already has one.
func AddClickStaff(doc *score.Document) error {
	s, err := doc.Score()
	if err != nil {
		return err
	}
	parts, err := doc.Parts()
	if err != nil {
		return err
	}
	staves, err := doc.Staves()
	if err != nil {
		return err
	}
	for _, part := range parts {
		if score.Text(part, "trackName") == clickName {
			return nil
		}
	}

	id := 0
	for _, staff := range staves {
		id = max(id, score.StaffID(staff))
	}
	id++

	part := score.NewElement("Part",
		score.NewElement("Staff",
			score.NewElement("StaffType", score.NewTextElement("name", "stdNormal")),
			score.NewTextElement("distOffset", "50")),
		score.NewTextElement("trackName", clickName),
		score.NewElement("Instrument",
			score.NewTextElement("longName", clickName),
			score.NewTextElement("shortName", clickName),
			score.NewTextElement("trackName", clickName),
			score.NewTextElement("instrumentId", "keyboard.piano")))
	score.SetStaffID(score.Element(part, "Staff"), id)
	score.Element(score.Element(part, "Staff"), "StaffType").SetAttr("group", "pitched")
	score.InsertAfter(parts[len(parts)-1], part)

	staff := score.NewElement("Staff")
	score.SetStaffID(staff, id)
	r := doc.Resolver(0)
	sig, prev := score.CommonTime, score.TimeSig{}
	for mi, m := range score.Elements(staves[0], "Measure") {
		if ts := score.MeasureSignature(m, "TimeSig"); ts != nil {
			if t, ok := score.ReadTimeSig(ts); ok {
				sig = t
			}
		}
		voice := score.NewElement("voice")
		if mi == 0 || sig != prev {
			xmlquery.AddChild(voice, sig.Node())
		}
		prev = sig
		for _, rest := range clickRests(r, sig.Ticks(r)) {
			xmlquery.AddChild(voice, rest)
		}
		xmlquery.AddChild(staff, score.NewElement("Measure", voice))
	}
	xmlquery.AddChild(s, staff)
	return nil
}

package processor

import (
	"fmt"
	"log"
	"sort"
	"strconv"

	"github.com/antchfx/xmlquery"

	"github.com/divVerent/choirsplit/internal/score"
)

type flaggedMeasure struct {
	staff   int
	measure *xmlquery.Node
	length  int // Ticks the time signature allows.
}

// repairCorruptedMeasures trims trailing rests of measures whose declared length disagrees with
// their time signature. A measure index is repaired in all staves at once or not at all.
func repairCorruptedMeasures(c *Context) error {
	staves, err := c.Doc.Staves()
	if err != nil {
		return err
	}
	flagged := map[int][]flaggedMeasure{}
	for _, staff := range staves {
		sig := score.CommonTime
		for mi, m := range score.Elements(staff, "Measure") {
			if ts := score.MeasureSignature(m, "TimeSig"); ts != nil {
				if s, ok := score.ReadTimeSig(ts); ok {
					sig = s
				}
			}
			declared, ok := score.ParseFraction(m.SelectAttr("len"))
			if !ok || declared.Equal(sig.Fraction()) {
				continue
			}
			flagged[mi] = append(flagged[mi], flaggedMeasure{
				staff:   score.StaffID(staff),
				measure: m,
				length:  sig.Ticks(c.Resolver),
			})
		}
	}

	indices := make([]int, 0, len(flagged))
	for mi := range flagged {
		indices = append(indices, mi)
	}
	sort.Ints(indices)

	for _, mi := range indices {
		repairMeasure(c, mi, flagged[mi])
	}
	return nil
}

func repairMeasure(c *Context, mi int, measures []flaggedMeasure) {
	var edits []func()
	longest := 0
	for _, f := range measures {
		for _, v := range score.Elements(f.measure, "voice") {
			longest = max(longest, c.Resolver.VoiceLength(v))
			edit, err := planVoiceRepair(c.Resolver, v, f.length)
			if err != nil {
				c.Warnf(UnfixableMeasure, f.staff, mi, "%v", err)
				return
			}
			if edit != nil {
				edits = append(edits, edit)
			}
		}
	}
	if len(edits) == 0 && longest < measures[0].length {
		// Short measure, e.g. a pickup.
		return
	}
	for _, edit := range edits {
		edit()
	}
	for _, f := range measures {
		f.measure.RemoveAttr("len")
	}
	log.Printf("Measure %d: repaired declared length in %d staves.", mi+1, len(measures))
}

// planVoiceRepair returns an edit that trims voice to length ticks, or nil if it already fits.
func planVoiceRepair(r score.Resolver, voice *xmlquery.Node, length int) (func(), error) {
	kids := score.Elements(voice, "")
	t := 0
	for i, n := range kids {
		d := r.Advance(n)
		end := t + d
		switch {
		case end <= length && t < length, d == 0:
			t = end
			continue
		case t < length:
			// Straddles the boundary.
			if n.Data != "Rest" {
				return nil, fmt.Errorf("%s at %d overshoots the measure end at %d", n.Data, t, length)
			}
			if hasChord(kids[i+1:]) {
				return nil, fmt.Errorf("chord after the measure end at %d", length)
			}
			token, dots, ok := r.Encode(length - t)
			if !ok {
				return nil, fmt.Errorf("no duration type lasts %d ticks", length-t)
			}
			kept := kids[:i+1]
			return func() {
				shortenRest(n, token, dots)
				score.ReplaceChildren(voice, kept)
			}, nil
		default:
			// Starts exactly at or after the boundary.
			if n.Data != "Rest" {
				return nil, fmt.Errorf("%s at %d lies beyond the measure end at %d", n.Data, t, length)
			}
			if hasChord(kids[i+1:]) {
				return nil, fmt.Errorf("chord after the measure end at %d", length)
			}
			kept := kids[:i]
			return func() {
				score.ReplaceChildren(voice, kept)
			}, nil
		}
	}
	return nil, nil
}

func hasChord(nodes []*xmlquery.Node) bool {
	for _, n := range nodes {
		if n.Data == "Chord" {
			return true
		}
	}
	return false
}

func shortenRest(rest *xmlquery.Node, token string, dots int) {
	score.Filter(rest, func(c *xmlquery.Node) bool {
		return c.Data != "dots" && c.Data != "duration"
	})
	score.SetText(rest, "durationType", token)
	if dots > 0 {
		score.InsertAfter(score.Element(rest, "durationType"), score.NewTextElement("dots", strconv.Itoa(dots)))
	}
}

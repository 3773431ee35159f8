package processor

import (
	"github.com/antchfx/xmlquery"

	"github.com/divVerent/choirsplit/internal/score"
)

// setStem sets the stem direction of a chord, placing a new StemDirection before the first Note.
func setStem(chord *xmlquery.Node, dir string) {
	if sd := score.Element(chord, "StemDirection"); sd != nil {
		score.ReplaceChildren(sd, []*xmlquery.Node{{Type: xmlquery.TextNode, Data: dir}})
		return
	}
	sd := score.NewTextElement("StemDirection", dir)
	if note := score.Element(chord, "Note"); note != nil {
		kids := []*xmlquery.Node{}
		for n := chord.FirstChild; n != nil; n = n.NextSibling {
			if n == note {
				kids = append(kids, sd)
			}
			kids = append(kids, n)
		}
		score.ReplaceChildren(chord, kids)
		return
	}
	xmlquery.AddChild(chord, sd)
}

// detectReversed finds the measures of a split staff whose voice 0 is the lower line.
// Measures without any stem direction get stems inferred from pitch first: the highest of each set
// of coinciding chords points up, the others down.
func detectReversed(c *Context, staff *xmlquery.Node) {
	id := score.StaffID(staff)
	chords := c.Resolver.Chords(staff)

	var order []position
	groups := map[position][]score.Event{}
	stemmed := map[int]bool{}
	for _, ev := range chords {
		p := position{ev.Measure, ev.Time}
		if _, ok := groups[p]; !ok {
			order = append(order, p)
		}
		groups[p] = append(groups[p], ev)
		if score.Element(ev.Node, "StemDirection") != nil {
			stemmed[ev.Measure] = true
		}
	}

	for _, p := range order {
		g := groups[p]
		if stemmed[p.Measure] || len(g) < 2 {
			continue
		}
		highest := 0
		for i, ev := range g {
			// Strictly higher, so the first in document order wins among equal pitches.
			if score.Pitch(ev.Node) > score.Pitch(g[highest].Node) {
				highest = i
			}
		}
		for i, ev := range g {
			if i == highest {
				setStem(ev.Node, "up")
			} else {
				setStem(ev.Node, "down")
			}
		}
	}

	for _, ev := range chords {
		stem := score.Text(ev.Node, "StemDirection")
		if stem == "" {
			continue
		}
		want := 1
		if stem == "up" {
			want = 0
		}
		if want == ev.Voice {
			continue
		}
		if c.Reversed[id] == nil {
			c.Reversed[id] = map[int]bool{}
		}
		c.Reversed[id][ev.Measure] = true
	}
}

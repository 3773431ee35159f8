package processor

import (
	"github.com/antchfx/xmlquery"

	"github.com/divVerent/choirsplit/internal/score"
)

var signatureKinds = []string{"Clef", "KeySig", "TimeSig"}

// defaultSignature returns what measure 1 starts with when a kind was never seen.
func defaultSignature(kind string) *xmlquery.Node {
	switch kind {
	case "KeySig":
		return score.NewKeySig(0)
	case "TimeSig":
		return score.CommonTime.Node()
	}
	return nil
}

// filterStaff keeps the given line of a staff and cleans presentation elements.
// Unsplit staves (Both) are only cleaned.
func filterStaff(c *Context, staff *xmlquery.Node, dir Direction) {
	if dir != Both {
		pruneVoices(c, staff, dir)
	}
	for _, sd := range score.Select(staff, ".//StemDirection") {
		score.ReplaceChildren(sd, []*xmlquery.Node{{Type: xmlquery.TextNode, Data: "up"}})
	}
	for _, expr := range c.Config.stripElements() {
		for _, n := range score.Select(staff, expr) {
			score.Remove(n)
		}
	}
	stretch := c.Config.fermataTimeStretch()
	for _, f := range score.Select(staff, ".//Fermata") {
		score.SetText(f, "timeStretch", stretch)
	}
}

// pruneVoices removes the other line from each measure and moves the signatures to the
// start of the remaining voice.
func pruneVoices(c *Context, staff *xmlquery.Node, dir Direction) {
	id := score.StaffID(staff)
	current := map[string]*xmlquery.Node{}
	for mi, m := range score.Elements(staff, "Measure") {
		voices := score.Elements(m, "voice")
		if len(voices) == 0 {
			continue
		}

		var seed []*xmlquery.Node
		for _, kind := range signatureKinds {
			own := score.MeasureSignature(m, kind)
			if own != nil {
				current[kind] = score.Clone(own)
			} else if mi == 0 {
				current[kind] = defaultSignature(kind)
			}
			switch {
			case current[kind] == nil:
			case own != nil, mi == 0, !c.Config.SparseSignatures:
				seed = append(seed, score.Clone(current[kind]))
			}
		}

		// Voice 0 is the upper line unless the measure is reversed.
		remove := 0
		if (dir == Up) != c.IsReversed(id, mi) {
			remove = 1
		}
		var kept *xmlquery.Node
		if len(voices) > 1 {
			if remove < len(voices) {
				score.Remove(voices[remove])
			}
			kept = score.Elements(m, "voice")[0]
		} else {
			kept = voices[0]
			for _, chord := range score.Elements(kept, "Chord") {
				dropNote(chord, remove == 0)
			}
		}

		for _, v := range score.Elements(m, "voice") {
			score.Filter(v, func(n *xmlquery.Node) bool {
				switch n.Data {
				case "Clef", "KeySig", "TimeSig":
					return n.Type != xmlquery.ElementNode
				}
				return true
			})
		}
		score.Prepend(kept, seed...)
	}
}

// dropNote removes the highest or lowest note of a chord with more than one.
// Among equal pitches the last is the highest and the first the lowest.
func dropNote(chord *xmlquery.Node, highest bool) {
	notes := score.Notes(chord)
	if len(notes) < 2 {
		return
	}
	pick := 0
	for i, n := range notes {
		p, q := score.Int(n, "pitch", 0), score.Int(notes[pick], "pitch", 0)
		if (highest && p >= q) || (!highest && p < q) {
			pick = i
		}
	}
	score.Remove(notes[pick])
}

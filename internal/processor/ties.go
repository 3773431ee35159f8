package processor

import (
	"fmt"

	"github.com/antchfx/xmlquery"

	"github.com/divVerent/choirsplit/internal/score"
)

// SpanPair is a chord starting a tie and the chord after it in the same voice.
type SpanPair struct {
	Start, End *xmlquery.Node
}

// SpanIndex maps the position of every tie starter, across all staves, to its pair.
// Slurs are phrasing of one staff and are never carried over.
// The first pair recorded at a position wins.
type SpanIndex struct {
	pairs map[position]SpanPair
}

// BuildSpanIndex records the tie pairs of the given staves.
func BuildSpanIndex(r score.Resolver, staves []*xmlquery.Node) *SpanIndex {
	idx := &SpanIndex{pairs: map[position]SpanPair{}}
	type pending struct {
		pos  position
		node *xmlquery.Node
	}
	for _, staff := range staves {
		open := map[int]pending{} // By voice; pairs may cross bar lines.
		_ = r.ForEachChord(staff, func(ev score.Event) error {
			key := ev.Voice
			if p, ok := open[key]; ok {
				idx.add(p.pos, SpanPair{Start: p.node, End: ev.Node})
				delete(open, key)
			}
			if score.StartsSpan(ev.Node, score.Tie) {
				open[key] = pending{pos: position{ev.Measure, ev.Time}, node: ev.Node}
			}
			return nil
		})
	}
	return idx
}

func (idx *SpanIndex) add(p position, pair SpanPair) {
	if _, ok := idx.pairs[p]; ok {
		return
	}
	idx.pairs[p] = pair
}

// Lookup returns the pair starting at a position.
func (idx *SpanIndex) Lookup(measure, time int) (SpanPair, bool) {
	pair, ok := idx.pairs[position{measure, time}]
	return pair, ok
}

// tieCandidate is two consecutive chords of one voice that lost their tie.
type tieCandidate struct {
	first, second score.Event
}

// A tieCheck rejects a candidate for the recorded pair with a reason, or returns nil.
type tieCheck func(r score.Resolver, cand tieCandidate, pair SpanPair) error

// tieChecks must all pass for a candidate to be accepted.
var tieChecks = []tieCheck{
	pairHasSpanners,
	durationsMatch,
}

func pairHasSpanners(r score.Resolver, cand tieCandidate, pair SpanPair) error {
	if startSpanner(pair.Start) == nil || endSpanner(pair.End) == nil {
		return fmt.Errorf("recorded pair at %d has no spanner to copy", cand.first.Time)
	}
	return nil
}

func durationsMatch(r score.Resolver, cand tieCandidate, pair SpanPair) error {
	if r.EventDuration(cand.first.Node) != r.EventDuration(pair.Start) ||
		r.EventDuration(cand.second.Node) != r.EventDuration(pair.End) {
		return fmt.Errorf("durations at %d differ from the tied notes", cand.first.Time)
	}
	return nil
}

// startSpanner returns the tie of a chord pointing forward.
func startSpanner(chord *xmlquery.Node) *xmlquery.Node {
	for _, s := range score.Spanners(chord, score.Tie) {
		if score.HasNext(s) {
			return s
		}
	}
	return nil
}

// endSpanner returns the tie of a chord pointing backward.
func endSpanner(chord *xmlquery.Node) *xmlquery.Node {
	for _, s := range score.Spanners(chord, score.Tie) {
		if score.HasPrev(s) {
			return s
		}
	}
	return nil
}

// findTieCandidates returns the pairs of consecutive chords of a staff that carry no tie
// although a tie starts at the first one's position in some staff.
func findTieCandidates(r score.Resolver, idx *SpanIndex, staff *xmlquery.Node) []tieCandidate {
	var out []tieCandidate
	open := map[int]score.Event{}
	_ = r.ForEachChord(staff, func(ev score.Event) error {
		key := ev.Voice
		bare := len(score.Spanners(ev.Node, score.Tie)) == 0
		if first, ok := open[key]; ok {
			delete(open, key)
			if bare {
				out = append(out, tieCandidate{first: first, second: ev})
			}
		}
		if _, ok := idx.Lookup(ev.Measure, ev.Time); ok && bare {
			open[key] = ev
		}
		return nil
	})
	return out
}

// copySpanner attaches a copy of a tie to the first note of a chord, turned into a slur when the
// candidate pitches differ.
func copySpanner(spanner, chord *xmlquery.Node, kind string) {
	note := score.Element(chord, "Note")
	if note == nil {
		return
	}
	s := score.Clone(spanner)
	s.SetAttr("type", kind)
	for _, inner := range score.Elements(s, "") {
		if inner.Data == score.Tie || inner.Data == score.Slur {
			inner.Data = kind
		}
	}
	xmlquery.AddChild(note, s)
}

// repairTies restores ties that splitting separated from their notes.
func repairTies(c *Context) error {
	staves, err := c.Doc.Staves()
	if err != nil {
		return err
	}
	idx := BuildSpanIndex(c.Resolver, staves)
	for _, staff := range staves {
		id := score.StaffID(staff)
	candidates:
		for _, cand := range findTieCandidates(c.Resolver, idx, staff) {
			pair, _ := idx.Lookup(cand.first.Measure, cand.first.Time)
			for _, check := range tieChecks {
				if err := check(c.Resolver, cand, pair); err != nil {
					c.Warnf(UnmatchedTie, id, cand.first.Measure, "%v", err)
					continue candidates
				}
			}
			kind := score.Tie
			if score.Pitch(cand.first.Node) != score.Pitch(cand.second.Node) {
				kind = score.Slur
			}
			copySpanner(startSpanner(pair.Start), cand.first.Node, kind)
			copySpanner(endSpanner(pair.End), cand.second.Node, kind)
		}
	}
	return nil
}

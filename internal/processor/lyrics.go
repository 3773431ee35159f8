package processor

import (
	"sort"

	"github.com/antchfx/xmlquery"

	"github.com/divVerent/choirsplit/internal/lyrics"
	"github.com/divVerent/choirsplit/internal/score"
)

// position is a time position within a staff.
type position struct {
	Measure, Time int
}

func (p position) less(o position) bool {
	if p.Measure != o.Measure {
		return p.Measure < o.Measure
	}
	return p.Time < o.Time
}

// LyricIndex holds lyrics by time position, across all staves.
type LyricIndex struct {
	records []lyrics.Record
	byPos   map[position][]int
	keys    []position // Sorted; nil when stale.
}

// NewLyricIndex indexes the given records.
func NewLyricIndex(recs []lyrics.Record) *LyricIndex {
	x := &LyricIndex{byPos: map[position][]int{}}
	for _, r := range recs {
		x.Add(r)
	}
	return x
}

// Add indexes one more record. Records at the same position keep their insertion order.
func (x *LyricIndex) Add(r lyrics.Record) {
	p := position{r.Measure, r.Time}
	if _, ok := x.byPos[p]; !ok {
		x.keys = nil
	}
	x.byPos[p] = append(x.byPos[p], len(x.records))
	x.records = append(x.records, r)
}

// Records returns all records sorted by staff, measure and time.
func (x *LyricIndex) Records() []lyrics.Record {
	out := append([]lyrics.Record(nil), x.records...)
	lyrics.SortRecords(out)
	return out
}

// Len returns the number of records.
func (x *LyricIndex) Len() int {
	return len(x.records)
}

// At returns the records at a time position.
func (x *LyricIndex) At(measure, time int) []lyrics.Record {
	idx := x.byPos[position{measure, time}]
	out := make([]lyrics.Record, len(idx))
	for i, j := range idx {
		out[i] = x.records[j]
	}
	return out
}

func (x *LyricIndex) sortedKeys() []position {
	if x.keys == nil {
		x.keys = make([]position, 0, len(x.byPos))
		for p := range x.byPos {
			x.keys = append(x.keys, p)
		}
		sort.Slice(x.keys, func(i, j int) bool {
			return x.keys[i].less(x.keys[j])
		})
	}
	return x.keys
}

// neighbors returns the closest indexed positions before and after p within p's measure.
func (x *LyricIndex) neighbors(p position) (prev, next *position) {
	keys := x.sortedKeys()
	i := sort.Search(len(keys), func(i int) bool {
		return !keys[i].less(p)
	})
	if i > 0 && keys[i-1].Measure == p.Measure {
		prev = &keys[i-1]
	}
	j := i
	if j < len(keys) && keys[j] == p {
		j++
	}
	if j < len(keys) && keys[j].Measure == p.Measure {
		next = &keys[j]
	}
	return prev, next
}

// lyricQuery asks for the lyric of a chord of a resulting staff.
type lyricQuery struct {
	Staff int // Original staff id.
	Voice int // Line wanted: 0 upper, 1 lower.
	position
}

// A lyricMatcher picks a record for the query among the candidates at its position, or has no opinion.
type lyricMatcher func(q lyricQuery, candidates []lyrics.Record) (lyrics.Record, bool)

// lyricMatchers are tried in order; the first match wins.
var lyricMatchers = []lyricMatcher{
	upperStaffSecondVerse,
	firstVerse(sameStaffAndVoice),
	firstVerse(sameStaff),
	firstVerse(sameVoice),
	firstVerse(anyCandidate),
}

// upperStaffSecondVerse gives the upper line of a staff the second verse (no 1) that the original
// staff with id q.Staff-2 carries at the same position. Only that one staff is consulted.
func upperStaffSecondVerse(q lyricQuery, candidates []lyrics.Record) (lyrics.Record, bool) {
	if q.Voice != 0 {
		return lyrics.Record{}, false
	}
	for _, r := range candidates {
		if r.Staff == q.Staff-2 && r.Verse == "1" {
			r.Verse = ""
			return r, true
		}
	}
	return lyrics.Record{}, false
}

func firstVerse(m lyricMatcher) lyricMatcher {
	return func(q lyricQuery, candidates []lyrics.Record) (lyrics.Record, bool) {
		var first []lyrics.Record
		for _, r := range candidates {
			if r.Lyric().DefaultVerse() {
				first = append(first, r)
			}
		}
		return m(q, first)
	}
}

func sameStaffAndVoice(q lyricQuery, candidates []lyrics.Record) (lyrics.Record, bool) {
	for _, r := range candidates {
		if r.Staff == q.Staff && r.Voice == q.Voice {
			return r, true
		}
	}
	return lyrics.Record{}, false
}

func sameStaff(q lyricQuery, candidates []lyrics.Record) (lyrics.Record, bool) {
	for _, r := range candidates {
		if r.Staff == q.Staff {
			return r, true
		}
	}
	return lyrics.Record{}, false
}

func sameVoice(q lyricQuery, candidates []lyrics.Record) (lyrics.Record, bool) {
	for _, r := range candidates {
		if r.Voice == q.Voice {
			return r, true
		}
	}
	return lyrics.Record{}, false
}

func anyCandidate(q lyricQuery, candidates []lyrics.Record) (lyrics.Record, bool) {
	if len(candidates) == 0 {
		return lyrics.Record{}, false
	}
	return candidates[0], true
}

// find returns the best lyric for the query.
func (x *LyricIndex) find(q lyricQuery) (score.Lyric, bool) {
	candidates := x.At(q.Measure, q.Time)
	if len(candidates) == 0 {
		return score.Lyric{}, false
	}
	for _, m := range lyricMatchers {
		if r, ok := m(q, candidates); ok {
			return r.Lyric(), true
		}
	}
	return score.Lyric{}, false
}

// hasStaffMeasure reports whether the original staff had any lyric in the measure.
func (x *LyricIndex) hasStaffMeasure(staff, measure int) bool {
	for _, r := range x.records {
		if r.Staff == staff && r.Measure == measure {
			return true
		}
	}
	return false
}

// collectLyrics indexes the lyrics of a staff. Voices of reversed measures are swapped,
// so voice 0 always means the upper line.
func collectLyrics(c *Context, staff *xmlquery.Node) {
	id := score.StaffID(staff)
	for _, ev := range c.Resolver.Chords(staff) {
		voice := ev.Voice
		if voice < 2 && c.IsReversed(id, ev.Measure) {
			voice = 1 - voice
		}
		for _, n := range score.ChordLyrics(ev.Node) {
			l := score.ReadLyric(n)
			c.Lyrics.Add(lyrics.Record{
				Staff:    id,
				Measure:  ev.Measure,
				Voice:    voice,
				Time:     ev.Time,
				Text:     l.Text,
				Syllabic: l.Syllabic,
				Verse:    l.Verse,
			})
		}
	}
}

// queryVoice returns the line a chord of a staff asks for.
func queryVoice(dir Direction, voice int) int {
	switch dir {
	case Up:
		return 0
	case Down:
		return 1
	}
	return voice
}

type lyricSlot struct {
	ev    score.Event
	found *score.Lyric
}

// redistributeLyrics attaches the best indexed lyric to every chord of a resulting staff.
// Chords without a match borrow from the neighboring indexed positions of the same measure.
func redistributeLyrics(c *Context, staff *xmlquery.Node) {
	id := score.StaffID(staff)
	orig := c.Original(id)
	dir := c.Direction(id)
	query := func(ev score.Event, p position) lyricQuery {
		return lyricQuery{Staff: orig, Voice: queryVoice(dir, ev.Voice), position: p}
	}

	var slots []lyricSlot
	for _, ev := range c.Resolver.Chords(staff) {
		s := lyricSlot{ev: ev}
		if l, ok := c.Lyrics.find(query(ev, position{ev.Measure, ev.Time})); ok {
			score.SetDefaultLyric(ev.Node, l)
			s.found = &l
		}
		slots = append(slots, s)
	}

	for i, s := range slots {
		if s.found != nil || score.IsContinuation(s.ev.Node) {
			continue
		}
		p := position{s.ev.Measure, s.ev.Time}
		prev, next := c.Lyrics.neighbors(p)
		if prev != nil {
			if l, ok := c.Lyrics.find(query(s.ev, *prev)); ok && differs(l, slots, i-1) {
				score.SetDefaultLyric(s.ev.Node, l)
				continue
			}
		}
		if next != nil {
			if l, ok := c.Lyrics.find(query(s.ev, *next)); ok && differs(l, slots, i+1) {
				score.SetDefaultLyric(s.ev.Node, l)
				continue
			}
		}
		if c.Lyrics.hasStaffMeasure(orig, s.ev.Measure) && s.ev.Voice == 0 && !insideSpan(slots, i) {
			c.Warnf(UnmatchedLyric, id, s.ev.Measure, "no lyric for chord at %d", s.ev.Time)
		}
	}
}

// differs reports whether l is not the lyric found directly for slot i.
func differs(l score.Lyric, slots []lyricSlot, i int) bool {
	if i < 0 || i >= len(slots) || slots[i].found == nil {
		return true
	}
	return slots[i].found.Text != l.Text
}

// insideSpan reports whether slot i sits within an open tie or slur of its voice and measure.
func insideSpan(slots []lyricSlot, i int) bool {
	ev := slots[i].ev
	var st score.SpanState
	for _, s := range slots[:i+1] {
		if s.ev.Measure != ev.Measure || s.ev.Voice != ev.Voice {
			continue
		}
		if !st.Eligible(s.ev.Node) && s.ev.Node == ev.Node {
			return true
		}
	}
	return false
}

// clearContinuationLyrics removes first-verse lyrics from chords that continue a tie or slur.
func clearContinuationLyrics(staff *xmlquery.Node) {
	for _, m := range score.Elements(staff, "Measure") {
		for _, v := range score.Elements(m, "voice") {
			var st score.SpanState
			for _, chord := range score.Elements(v, "Chord") {
				if !st.Eligible(chord) {
					score.ClearDefaultLyric(chord)
				}
			}
		}
	}
}

package rehearsal

import (
	"fmt"
	"log"
	"sort"
	"strconv"
	"strings"

	"github.com/antchfx/xmlquery"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/divVerent/choirsplit/internal/lyrics"
	"github.com/divVerent/choirsplit/internal/score"
)

// TicksPerQuarter is the MIDI resolution of the rehearsal tracks.
const TicksPerQuarter = 480

// AllKey names the track set where every line has the focus velocity.
const AllKey = "all"

// note is one sounding pitch in MIDI ticks.
type note struct {
	Start, End int64
	Pitch      uint8
	Lyric      string
}

// line is the notes of one staff.
type line struct {
	Staff int
	Name  string
	Notes []note
}

// timeSig is a time signature change in score ticks.
type timeSig struct {
	Time int64
	Sig  score.TimeSig
}

// ScoreTempo returns the quarter note tempo of the first tempo marking, or 0.
// MuseScore stores it in quarters per second.
func ScoreTempo(doc *score.Document) float64 {
	n := score.SelectOne(doc.Root, "//Tempo/tempo")
	if n == nil {
		return 0
	}
	qps, err := strconv.ParseFloat(strings.TrimSpace(n.InnerText()), 64)
	if err != nil || qps <= 0 {
		return 0
	}
	return qps * 60
}

// measureStarts returns the start of every measure in score ticks, plus the end of the score,
// and the time signature changes. A measure lasts as long as its longest voice in any staff, or
// its time signature if all are empty.
func measureStarts(r score.Resolver, staves []*xmlquery.Node) ([]int, []timeSig) {
	n := 0
	for _, staff := range staves {
		n = max(n, len(score.Elements(staff, "Measure")))
	}
	lengths := make([]int, n)
	sigs := make([]score.TimeSig, n)
	sig := score.CommonTime
	if len(staves) > 0 {
		for mi, m := range score.Elements(staves[0], "Measure") {
			if ts := score.MeasureSignature(m, "TimeSig"); ts != nil {
				if t, ok := score.ReadTimeSig(ts); ok {
					sig = t
				}
			}
			sigs[mi] = sig
		}
	}
	for _, staff := range staves {
		for mi, m := range score.Elements(staff, "Measure") {
			for _, v := range score.Elements(m, "voice") {
				lengths[mi] = max(lengths[mi], r.VoiceLength(v))
			}
		}
	}

	starts := make([]int, n+1)
	var changes []timeSig
	for mi := range lengths {
		if sigs[mi].Num == 0 {
			sigs[mi] = sig
		}
		if lengths[mi] == 0 {
			lengths[mi] = sigs[mi].Ticks(r)
		}
		starts[mi+1] = starts[mi] + lengths[mi]
		if mi == 0 || sigs[mi] != sigs[mi-1] {
			changes = append(changes, timeSig{Time: int64(starts[mi]), Sig: sigs[mi]})
		}
	}
	return starts, changes
}

// toMIDI converts score ticks to MIDI ticks.
func toMIDI(r score.Resolver, t int) int64 {
	return int64(t) * 4 * TicksPerQuarter / int64(r.Whole)
}

// staffNames maps staff ids to the track names of their parts.
func staffNames(doc *score.Document) map[int]string {
	names := map[int]string{}
	parts, err := doc.Parts()
	if err != nil {
		return names
	}
	for _, part := range parts {
		name := score.Text(part, "trackName")
		for _, stub := range score.Elements(part, "Staff") {
			if name != "" {
				names[score.StaffID(stub)] = name
			}
		}
	}
	return names
}

// collectLine gathers the notes of a staff. Tied notes of the same pitch become one note.
func collectLine(r score.Resolver, staff *xmlquery.Node, starts []int) []note {
	var notes []note
	// open maps voice and pitch to the note a tie may extend.
	type openKey struct{ voice, pitch int }
	open := map[openKey]int{}
	_ = r.ForEachChord(staff, func(ev score.Event) error {
		start := starts[ev.Measure] + ev.Time
		end := start + r.EventDuration(ev.Node)
		if end <= start {
			return nil // Grace notes.
		}
		tied := score.ContinuesSpan(ev.Node, score.Tie)
		text := ""
		if l, ok := score.ExportLyric(ev.Node); ok && strings.TrimSpace(l.Text) != "" {
			text = lyrics.Token(l)
		}
		for _, n := range score.Notes(ev.Node) {
			pitch := score.Int(n, "pitch", -1)
			if pitch < 0 || pitch > 127 {
				continue
			}
			k := openKey{ev.Voice, pitch}
			if i, ok := open[k]; ok && tied && notes[i].End == toMIDI(r, start) {
				notes[i].End = toMIDI(r, end)
				continue
			}
			open[k] = len(notes)
			notes = append(notes, note{
				Start: toMIDI(r, start),
				End:   toMIDI(r, end),
				Pitch: uint8(pitch),
				Lyric: text,
			})
			text = ""
		}
		return nil
	})
	return notes
}

// channel returns the MIDI channel of the i-th line, skipping the percussion channel.
func channel(i int) uint8 {
	ch := i % 15
	if ch >= 9 {
		ch++
	}
	return uint8(ch)
}

type absEvent struct {
	Time    int64
	Message smf.Message
}

// track turns absolute events into a track.
func track(events []absEvent) smf.Track {
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Time < events[j].Time
	})
	var t smf.Track
	var prev int64
	for _, ev := range events {
		t = append(t, smf.Event{Delta: uint32(ev.Time - prev), Message: ev.Message})
		prev = ev.Time
	}
	sortNoteOffFirstTrack(t)
	return append(t, smf.Event{Message: smf.EOT})
}

// render builds one track set in which only the focused staff, or every staff for focus < 0,
// has the focus velocity.
func render(cfg *Config, bpm float64, sigs []timeSig, r score.Resolver, lines []line, focus int) (*smf.SMF, error) {
	mid := smf.NewSMF1()
	mid.TimeFormat = smf.MetricTicks(TicksPerQuarter)

	conductor := []absEvent{
		{0, smf.MetaTrackSequenceName("Conductor")},
		{0, smf.MetaTempo(bpm)},
	}
	for _, s := range sigs {
		conductor = append(conductor, absEvent{toMIDI(r, int(s.Time)), smf.MetaTimeSig(uint8(s.Sig.Num), uint8(s.Sig.Denom), 24, 8)})
	}
	mid.Tracks = append(mid.Tracks, track(conductor))

	for i, l := range lines {
		vel := cfg.otherVelocity()
		if focus < 0 || focus == l.Staff {
			vel = cfg.focusVelocity()
		}
		ch := channel(i)
		events := []absEvent{
			{0, smf.MetaTrackSequenceName(l.Name)},
			{0, smf.Message(midi.ProgramChange(ch, cfg.program()))},
		}
		for _, n := range l.Notes {
			if n.Lyric != "" && (focus < 0 || focus == l.Staff) {
				events = append(events, absEvent{n.Start, smf.MetaLyric(n.Lyric)})
			}
			events = append(events,
				absEvent{n.Start, smf.Message(midi.NoteOn(ch, n.Pitch, vel))},
				absEvent{n.End, smf.Message(midi.NoteOff(ch, n.Pitch))})
		}
		mid.Tracks = append(mid.Tracks, track(events))
	}

	if err := removeRedundantNoteEvents(mid); err != nil {
		return nil, fmt.Errorf("could not remove redundant note events: %w", err)
	}
	if cfg.TempoFactor > 0 && cfg.TempoFactor != 1 {
		if err := adjustTempo(mid, cfg.TempoFactor); err != nil {
			return nil, fmt.Errorf("could not adjust tempo: %w", err)
		}
	}
	return mid, nil
}

// Render creates the rehearsal tracks of a processed score: one track set per staff with notes,
// keyed by the part name, and one keyed AllKey. scoreBPM is the tempo read from the score before
// processing removed the tempo markings, or 0.
func Render(doc *score.Document, r score.Resolver, cfg *Config, scoreBPM float64) (map[string]*smf.SMF, error) {
	if cfg == nil {
		cfg = &Config{}
	}
	staves, err := doc.Staves()
	if err != nil {
		return nil, err
	}
	starts, sigs := measureStarts(r, staves)
	names := staffNames(doc)
	var lines []line
	for _, staff := range staves {
		id := score.StaffID(staff)
		notes := collectLine(r, staff, starts)
		if len(notes) == 0 {
			continue
		}
		name := names[id]
		if name == "" {
			name = fmt.Sprintf("staff%d", id)
		}
		lines = append(lines, line{Staff: id, Name: name, Notes: notes})
	}
	if len(lines) == 0 {
		return nil, fmt.Errorf("score has no notes")
	}

	bpm := cfg.bpm(scoreBPM)
	log.Printf("Rehearsal tempo: %f bpm.", bpm)
	out := map[string]*smf.SMF{}
	all, err := render(cfg, bpm, sigs, r, lines, -1)
	if err != nil {
		return nil, err
	}
	out[AllKey] = all
	dumpTimeSig(AllKey, all)
	for _, l := range lines {
		key := strings.ReplaceAll(l.Name, " ", "_")
		if _, found := out[key]; found {
			key = fmt.Sprintf("%s_%d", key, l.Staff)
		}
		mid, err := render(cfg, bpm, sigs, r, lines, l.Staff)
		if err != nil {
			return nil, err
		}
		out[key] = mid
	}
	return out, nil
}

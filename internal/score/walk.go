package score

import (
	"errors"

	"github.com/antchfx/xmlquery"
)

// StopIteration can be returned to return without failure.
var StopIteration = errors.New("ForEachEvent: StopIteration")

// Event is one child of a voice together with where it sits.
type Event struct {
	Staff   int
	Measure int // 0-based measure index within the staff.
	Voice   int
	Time    int // Ticks since the start of the measure.
	Node    *xmlquery.Node
}

// Kind returns the element name of the event.
func (e Event) Kind() string {
	return e.Node.Data
}

// Advance returns how far an element moves the time position.
func (r Resolver) Advance(n *xmlquery.Node) int {
	switch n.Data {
	case "Chord", "Rest":
		return r.EventDuration(n)
	case "location":
		f, ok := ParseFraction(Text(n, "fractions"))
		if !ok {
			return 0
		}
		return f.Ticks(r.Whole)
	}
	return 0
}

// ForEachEvent runs the given function for each voice element of a staff, measure by measure and
// voice by voice, with the accumulated time position.
// The element list of each voice is captured before its first yield, so the callback may edit it.
func (r Resolver) ForEachEvent(staff *xmlquery.Node, yield func(ev Event) error) error {
	id := StaffID(staff)
	for mi, m := range Elements(staff, "Measure") {
		for vi, v := range Elements(m, "voice") {
			time := 0
			for _, n := range Elements(v, "") {
				err := yield(Event{Staff: id, Measure: mi, Voice: vi, Time: time, Node: n})
				if errors.Is(err, StopIteration) {
					return nil
				}
				if err != nil {
					return err
				}
				time += r.Advance(n)
			}
		}
	}
	return nil
}

// ForEachChord is ForEachEvent restricted to Chord elements.
func (r Resolver) ForEachChord(staff *xmlquery.Node, yield func(ev Event) error) error {
	return r.ForEachEvent(staff, func(ev Event) error {
		if ev.Node.Data != "Chord" {
			return nil
		}
		return yield(ev)
	})
}

// Chords collects the chord events of a staff.
func (r Resolver) Chords(staff *xmlquery.Node) []Event {
	var out []Event
	_ = r.ForEachChord(staff, func(ev Event) error {
		out = append(out, ev)
		return nil
	})
	return out
}

// VoiceLength returns the total duration of a voice.
func (r Resolver) VoiceLength(voice *xmlquery.Node) int {
	t := 0
	for _, n := range Elements(voice, "") {
		t += r.Advance(n)
	}
	return t
}

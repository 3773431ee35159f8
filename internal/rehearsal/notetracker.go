package rehearsal

import (
	"gitlab.com/gomidi/midi/v2/smf"
)

type key struct {
	ch, note uint8
}

// noteTracker follows which notes sound, so that unisons within a track sound once.
type noteTracker struct {
	activeNotes map[key]int
}

func newNoteTracker() *noteTracker {
	return &noteTracker{
		activeNotes: map[key]int{},
	}
}

// Handle returns whether the message changes what sounds.
// A note start of a sounding note and all but the last of its note ends are redundant.
func (t noteTracker) Handle(msg smf.Message) bool {
	var ch, note, vel uint8
	if msg.GetNoteStart(&ch, &note, &vel) {
		k := key{ch, note}
		t.activeNotes[k]++
		return t.activeNotes[k] == 1
	}
	if msg.GetNoteEnd(&ch, &note) {
		k := key{ch, note}
		if t.activeNotes[k] == 0 {
			return false
		}
		t.activeNotes[k]--
		if t.activeNotes[k] > 0 {
			return false
		}
		delete(t.activeNotes, k)
		return true
	}
	return true
}

// removeRedundantNoteEvents drops overlapping starts and ends of the same note.
func removeRedundantNoteEvents(mid *smf.SMF) error {
	trackers := make([]*noteTracker, len(mid.Tracks))
	for i := range trackers {
		trackers[i] = newNoteTracker()
	}
	return rebuild(mid, func(time int64, track int, msg smf.Message) smf.Message {
		if !trackers[track].Handle(msg) {
			return nil
		}
		return msg
	})
}

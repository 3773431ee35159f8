package rehearsal

import (
	"sort"

	"gitlab.com/gomidi/midi/v2/smf"
)

// sortNoteOffFirstTrack reorders events at the same time so that note ends come first and
// lyrics precede the notes they belong to.
func sortNoteOffFirstTrack(track smf.Track) {
	rank := func(msg smf.Message) int {
		var ch, key, vel uint8
		switch {
		case msg.GetNoteEnd(nil, nil):
			return 0
		case msg.Is(smf.MetaLyricMsg):
			return 1
		case msg.GetNoteStart(&ch, &key, &vel):
			return 2
		}
		return -1 // Meta events stay in front.
	}

	fixup := func(begin, end int) {
		if end <= begin+1 {
			return
		}
		delta := track[begin].Delta
		sort.SliceStable(track[begin:end], func(i, j int) bool {
			return rank(track[begin+i].Message) < rank(track[begin+j].Message)
		})
		track[begin].Delta = delta
		for i := begin + 1; i < end; i++ {
			track[i].Delta = 0
		}
	}

	begin := 0
	for i, ev := range track {
		if ev.Delta != 0 {
			fixup(begin, i)
			begin = i
		}
	}
	fixup(begin, len(track))
}

package rehearsal

import (
	"gitlab.com/gomidi/midi/v2/smf"
)

// adjustTempo scales every tempo event.
func adjustTempo(mid *smf.SMF, factor float64) error {
	return rebuild(mid, func(time int64, track int, msg smf.Message) smf.Message {
		var bpm float64
		if msg.GetMetaTempo(&bpm) {
			return smf.MetaTempo(bpm * factor)
		}
		return msg
	})
}

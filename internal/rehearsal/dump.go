package rehearsal

import (
	"log"

	"gitlab.com/gomidi/midi/v2/smf"
)

// dumpTimeSig prints the tempos and time signatures of a track set in concise form.
func dumpTimeSig(prefix string, mid *smf.SMF) {
	ticks := int64(mid.TimeFormat.(smf.MetricTicks)) * 4
	_ = ForEachEventWithTime(mid, func(time int64, track int, msg smf.Message) error {
		var bpm float64
		var num, denom, cpt, dsqpq uint8
		switch {
		case msg.GetMetaTempo(&bpm):
			log.Printf("%s: @ %d (%d wholes): tempo is %f bpm.", prefix, time, time/ticks, bpm)
		case msg.GetMetaTimeSig(&num, &denom, &cpt, &dsqpq):
			log.Printf("%s: @ %d (%d wholes): %d/%d.", prefix, time, time/ticks, num, denom)
		}
		return nil
	})
}

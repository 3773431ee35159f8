// Package player plays rehearsal tracks to a MIDI output port.
package player

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"time"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/divVerent/choirsplit/internal/rehearsal"
)

// Sender receives MIDI messages; drivers.Out satisfies it.
type Sender interface {
	Send(data []byte) error
}

// Player plays one track set at a time.
type Player struct {
	Out Sender

	// Tempo scales the playback speed; 0 means 1.
	Tempo float64

	// Progress, if set, is called after each sent message with the position and total length.
	Progress func(pos, length time.Duration)

	sleep func(ctx context.Context, d time.Duration) error
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Reload writes and reads back a track set, which resolves the tempo map for TimeAt.
func Reload(mid *smf.SMF) (*smf.SMF, error) {
	var b bytes.Buffer
	if _, err := mid.WriteTo(&b); err != nil {
		return nil, fmt.Errorf("cannot rewrite MIDI: %w", err)
	}
	fixed, err := smf.ReadFrom(&b)
	if err != nil {
		return nil, fmt.Errorf("cannot reread MIDI: %w", err)
	}
	return fixed, nil
}

// Play sends the track set in real time until it ends or ctx is done.
// Notes still sounding when playback stops are released.
func (p *Player) Play(ctx context.Context, mid *smf.SMF) error {
	tempo := p.Tempo
	if tempo <= 0 {
		tempo = 1
	}
	wait := p.sleep
	if wait == nil {
		wait = sleep
	}

	var maxTick int64
	_ = rehearsal.ForEachEventWithTime(mid, func(t int64, track int, msg smf.Message) error {
		maxTick = t
		return nil
	})
	length := time.Microsecond * time.Duration(mid.TimeAt(maxTick))

	sounding := map[[2]uint8]bool{}
	defer func() {
		for k := range sounding {
			if err := p.Out.Send(midi.NoteOff(k[0], k[1])); err != nil {
				log.Printf("Could not release note %d on channel %d: %v.", k[1], k[0], err)
			}
		}
	}()

	var prevT time.Duration
	prevNow := time.Now()
	return rehearsal.ForEachEventWithTime(mid, func(t int64, track int, msg smf.Message) error {
		if msg.IsMeta() {
			return nil
		}
		midiT := time.Microsecond * time.Duration(mid.TimeAt(t))
		if midiT < prevT {
			log.Printf("Playback time went backwards from %v to %v.", prevT, midiT)
			midiT = prevT
		}
		deltaT := midiT - prevT
		prevT = midiT

		newNow := prevNow.Add(time.Duration(float64(deltaT) / tempo))
		if waitTime := time.Until(newNow); waitTime > 0 {
			if err := wait(ctx, waitTime); err != nil {
				return err
			}
		} else if err := ctx.Err(); err != nil {
			return err
		}
		prevNow = newNow

		var ch, key, vel uint8
		switch {
		case msg.GetNoteStart(&ch, &key, &vel):
			sounding[[2]uint8{ch, key}] = true
		case msg.GetNoteEnd(&ch, &key):
			delete(sounding, [2]uint8{ch, key})
		}
		if err := p.Out.Send(midi.Message(msg)); err != nil {
			return err
		}
		if p.Progress != nil {
			p.Progress(midiT, length)
		}
		return nil
	})
}

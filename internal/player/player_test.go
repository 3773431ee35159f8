package player

import (
	"context"
	"errors"
	"testing"
	"time"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	"gitlab.com/gomidi/midi/v2/smf"
)

type recorder struct {
	msgs []midi.Message
}

func (r *recorder) Send(data []byte) error {
	r.msgs = append(r.msgs, midi.Message(data))
	return nil
}

func song(t *testing.T) *smf.SMF {
	t.Helper()
	mid := smf.NewSMF1()
	mid.TimeFormat = smf.MetricTicks(480)
	var tr smf.Track
	tr.Add(0, smf.MetaTempo(120))
	tr.Add(0, midi.NoteOn(0, 60, 100))
	tr.Add(0, midi.NoteOn(0, 64, 100))
	tr.Add(480, midi.NoteOff(0, 60))
	tr.Add(0, midi.NoteOff(0, 64))
	tr.Close(0)
	mid.Add(tr)
	fixed, err := Reload(mid)
	if err != nil {
		t.Fatalf("Reload: %v", err)
	}
	return fixed
}

func TestPlay(t *testing.T) {
	out := &recorder{}
	var slept time.Duration
	var last time.Duration
	p := &Player{
		Out:   out,
		Tempo: 2,
		Progress: func(pos, length time.Duration) {
			last = length
		},
		sleep: func(ctx context.Context, d time.Duration) error {
			slept = max(slept, d)
			return nil
		},
	}
	if err := p.Play(context.Background(), song(t)); err != nil {
		t.Fatalf("Play: %v", err)
	}
	if len(out.msgs) != 4 {
		t.Fatalf("got %d messages, want 4: %v", len(out.msgs), out.msgs)
	}
	// One quarter at 120 bpm.
	if last != 500*time.Millisecond {
		t.Errorf("length: got %v, want 500ms", last)
	}
	// Double tempo waits at most a quarter second for the note offs.
	if slept == 0 || slept > 250*time.Millisecond {
		t.Errorf("slept %v, want up to 250ms", slept)
	}
}

func TestPlayCancelReleasesNotes(t *testing.T) {
	out := &recorder{}
	p := &Player{
		Out: out,
		sleep: func(ctx context.Context, d time.Duration) error {
			return context.Canceled
		},
	}
	err := p.Play(context.Background(), song(t))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Play: got %v, want context.Canceled", err)
	}
	offs := 0
	for _, m := range out.msgs {
		var ch, key uint8
		if m.GetNoteEnd(&ch, &key) {
			offs++
		}
	}
	if offs != 2 {
		t.Errorf("got %d note offs after cancel, want 2: %v", offs, out.msgs)
	}
}

type fakePort struct {
	drivers.Out
	name string
	num  int
}

func (f fakePort) String() string { return f.name }
func (f fakePort) Number() int    { return f.num }

func TestBestPort(t *testing.T) {
	ports := []drivers.Out{
		fakePort{name: "Midi Through Port-0", num: 0},
		fakePort{name: "FLUID Synth", num: 1},
		fakePort{name: "Digital Piano", num: 2},
		fakePort{name: "UM-ONE", num: 3},
	}
	for _, tc := range []struct {
		pattern string
		want    string
		wantErr bool
	}{
		{pattern: "", want: "UM-ONE"},
		{pattern: "FLUID|Piano", want: "Digital Piano"},
		{pattern: "Through", want: "Midi Through Port-0"},
		{pattern: "Organ", wantErr: true},
		{pattern: "(", wantErr: true},
	} {
		got, err := bestPort(ports, tc.pattern)
		if tc.wantErr {
			if err == nil {
				t.Errorf("bestPort(%q): got %v, want error", tc.pattern, got)
			}
			continue
		}
		if err != nil || got.String() != tc.want {
			t.Errorf("bestPort(%q): got %v, %v, want %v", tc.pattern, got, err, tc.want)
		}
	}
	if _, err := bestPort(ports[:1], ""); err == nil {
		t.Errorf("bestPort with only loopback: got no error")
	}
}

package processor

import (
	"strings"
	"testing"

	"github.com/divVerent/choirsplit/internal/score"
)

func TestPartNames(t *testing.T) {
	for _, tc := range []struct {
		in   string
		want string
	}{
		{"SATB", "S1 A1 T1 B1"},
		{"SSAATTBB", "S1 S2 A1 A2 T1 T2 B1 B2"},
		{"sss", "S1-1 S1-2 S2"},
		{"SSSSA", "S1-1 S1-2 S2-1 S2-2 A1"},
		{"MW", "M1 W1"},
	} {
		names, err := PartNames(tc.in)
		if err != nil {
			t.Errorf("PartNames(%q): %v", tc.in, err)
			continue
		}
		var short []string
		for _, n := range names {
			short = append(short, n.Short)
		}
		if got := strings.Join(short, " "); got != tc.want {
			t.Errorf("PartNames(%q): got %q, want %q", tc.in, got, tc.want)
		}
	}
	names, _ := PartNames("TTT")
	if names[2].Full != "Tenor 2" || names[0].Full != "Tenor 1-1" {
		t.Errorf("full names: got %+v", names)
	}
	for _, bad := range []string{"", "SXA"} {
		if _, err := PartNames(bad); err == nil {
			t.Errorf("PartNames(%q): want an error", bad)
		}
	}
}

func TestRenameParts(t *testing.T) {
	doc := mustParse(t, twoStaves(`<Measure><voice/></Measure>`, `<Measure><voice/></Measure>`))
	for _, p := range score.Select(doc.Root, "//Part") {
		score.SetText(p, "trackName", "x")
		score.SetText(score.SetText(p, "Instrument", ""), "longName", "x")
	}
	if err := RenameParts(doc, "SSA"); err == nil {
		t.Errorf("RenameParts with too many names: want an error")
	}
	if err := RenameParts(doc, "TB"); err != nil {
		t.Fatalf("RenameParts: %v", err)
	}
	parts, _ := doc.Parts()
	if got := score.Text(parts[1], "trackName"); got != "Bass 1" {
		t.Errorf("part 2 trackName: got %q", got)
	}
	if got := score.Text(score.Element(parts[0], "Instrument"), "longName"); got != "Tenor 1" {
		t.Errorf("part 1 longName: got %q", got)
	}
}

func TestAddClickStaff(t *testing.T) {
	doc := mustParse(t, twoStaves(`
<Measure><voice><TimeSig><sigN>3</sigN><sigD>4</sigD></TimeSig><Rest><durationType>measure</durationType><duration>3/4</duration></Rest></voice></Measure>
<Measure><voice><Rest><durationType>measure</durationType><duration>3/4</duration></Rest></voice></Measure>
<Measure><voice><TimeSig><sigN>6</sigN><sigD>8</sigD></TimeSig><Rest><durationType>measure</durationType><duration>6/8</duration></Rest></voice></Measure>
<Measure><voice><TimeSig><sigN>7</sigN><sigD>16</sigD></TimeSig><Rest><durationType>measure</durationType><duration>7/16</duration></Rest></voice></Measure>`,
		`<Measure><voice/></Measure>`))
	for i := 0; i < 2; i++ {
		if err := AddClickStaff(doc); err != nil {
			t.Fatalf("AddClickStaff: %v", err)
		}
	}
	parts, _ := doc.Parts()
	if len(parts) != 3 || score.Text(parts[2], "trackName") != "Click" {
		t.Fatalf("got %d parts, want the click part last", len(parts))
	}
	click := doc.Staff(3)
	if click == nil {
		t.Fatalf("no staff 3")
	}
	staves, _ := doc.Staves()
	if len(staves) != 3 {
		t.Errorf("got %d staves, want 3", len(staves))
	}
	measures := score.Elements(click, "Measure")
	if len(measures) != 4 {
		t.Fatalf("got %d measures, want 4", len(measures))
	}
	r := doc.Resolver(0)
	for i, want := range []struct {
		rests int
		sig   bool
		ticks int
	}{{6, true, 96}, {6, false, 96}, {6, true, 96}, {4, true, 56}} {
		v := score.Element(measures[i], "voice")
		if n := len(score.Elements(v, "Rest")); n != want.rests {
			t.Errorf("measure %d: got %d rests, want %d", i+1, n, want.rests)
		}
		if got := score.Element(v, "TimeSig") != nil; got != want.sig {
			t.Errorf("measure %d: got time signature %v, want %v", i+1, got, want.sig)
		}
		if got := r.VoiceLength(v); got != want.ticks {
			t.Errorf("measure %d: clicks last %d ticks, want %d", i+1, got, want.ticks)
		}
	}
}

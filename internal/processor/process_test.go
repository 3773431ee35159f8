package processor

import (
	"errors"
	"testing"

	"github.com/divVerent/choirsplit/internal/lyrics"
	"github.com/divVerent/choirsplit/internal/score"
)

func mustParse(t *testing.T, s string) *score.Document {
	t.Helper()
	doc, err := score.ParseString(s)
	if err != nil {
		t.Fatalf("ParseString: %v", err)
	}
	return doc
}

const twoVoiceScore = `<?xml version="1.0" encoding="UTF-8"?>
<museScore version="4.20">
<Score>
<Division>32</Division>
<Part>
<Staff id="1"><bracket type="1" span="2" col="0"/><barLineSpan>1</barLineSpan></Staff>
<trackName>Women</trackName>
<Instrument><longName>Women</longName><shortName>W.</shortName><trackName>Women</trackName></Instrument>
</Part>
<Staff id="1">
<Measure>
<voice>
<TimeSig><sigN>4</sigN><sigD>4</sigD></TimeSig>
<Tempo><tempo>1.5</tempo><text>q = 90</text></Tempo>
<Chord><durationType>half</durationType><StemDirection>up</StemDirection><Lyrics><text>la</text></Lyrics><Note><pitch>72</pitch></Note></Chord>
<Chord><durationType>half</durationType><Note><pitch>71</pitch></Note></Chord>
</voice>
<voice>
<Rest><durationType>measure</durationType><duration>4/4</duration></Rest>
</voice>
</Measure>
<Measure>
<voice>
<Chord><durationType>quarter</durationType><StemDirection>up</StemDirection><Note><pitch>72</pitch></Note></Chord>
<Rest><durationType>quarter</durationType></Rest>
<Chord><durationType>quarter</durationType><StemDirection>up</StemDirection><Note><pitch>74</pitch></Note></Chord>
<Rest><durationType>quarter</durationType></Rest>
</voice>
<voice>
<Rest><durationType>quarter</durationType></Rest>
<Chord><durationType>quarter</durationType><StemDirection>down</StemDirection><Note><pitch>65</pitch></Note></Chord>
<Rest><durationType>quarter</durationType></Rest>
<Chord><durationType>quarter</durationType><StemDirection>down</StemDirection><Note><pitch>64</pitch></Note></Chord>
</voice>
</Measure>
</Staff>
</Score>
</museScore>`

func TestProcessSplitsTwoVoiceStaff(t *testing.T) {
	doc := mustParse(t, twoVoiceScore)
	res, err := Process(doc, nil, nil, nil)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if len(res.Mapping) != 1 || res.Mapping[1] != 2 {
		t.Errorf("Mapping: got %v, want map[1:2]", res.Mapping)
	}

	staves, err := doc.Staves()
	if err != nil {
		t.Fatalf("Staves: %v", err)
	}
	if len(staves) != 2 || score.StaffID(staves[0]) != 1 || score.StaffID(staves[1]) != 2 {
		t.Fatalf("staves: got %d, want ids 1 and 2", len(staves))
	}
	parts, err := doc.Parts()
	if err != nil {
		t.Fatalf("Parts: %v", err)
	}
	if len(parts) != 2 {
		t.Fatalf("parts: got %d, want 2", len(parts))
	}
	for i, part := range parts {
		if got := score.StaffID(score.Element(part, "Staff")); got != i+1 {
			t.Errorf("part %d: got staff stub %d", i, got)
		}
	}
	if n := len(score.Select(doc.Root, "//bracket | //barLineSpan | //Tempo")); n != 0 {
		t.Errorf("got %d brackets, bar line spans or tempos, want none", n)
	}

	for _, staff := range staves {
		for mi, m := range score.Elements(staff, "Measure") {
			if n := len(score.Elements(m, "voice")); n != 1 {
				t.Errorf("staff %d measure %d: got %d voices, want 1", score.StaffID(staff), mi+1, n)
			}
			if score.MeasureSignature(m, "TimeSig") == nil {
				t.Errorf("staff %d measure %d: no time signature", score.StaffID(staff), mi+1)
			}
		}
		for _, sd := range score.Select(staff, ".//StemDirection") {
			if sd.InnerText() != "up" {
				t.Errorf("staff %d: stem direction %q", score.StaffID(staff), sd.InnerText())
			}
		}
	}

	up := doc.Resolver(0).Chords(staves[0])
	if len(up) != 4 {
		t.Fatalf("upper staff: got %d chords, want 4", len(up))
	}
	if l, ok := score.DefaultLyric(up[0].Node); !ok || l.Text != "la" {
		t.Errorf("upper staff: first chord lyric %+v, %v", l, ok)
	}
	if score.Pitch(up[2].Node) != 72 || up[2].Time != 0 {
		t.Errorf("upper staff measure 2: got pitch %d at %d", score.Pitch(up[2].Node), up[2].Time)
	}
	down := doc.Resolver(0).Chords(staves[1])
	if len(down) != 2 {
		t.Fatalf("lower staff: got %d chords, want 2", len(down))
	}
	if down[0].Time != 32 || score.Pitch(down[0].Node) != 65 {
		t.Errorf("lower staff: got pitch %d at %d", score.Pitch(down[0].Node), down[0].Time)
	}
	if n := len(score.Select(staves[1], ".//Lyrics")); n != 0 {
		t.Errorf("lower staff: got %d lyrics, want none", n)
	}
}

func TestProcessIsIdempotent(t *testing.T) {
	doc := mustParse(t, twoVoiceScore)
	if _, err := Process(doc, nil, nil, nil); err != nil {
		t.Fatalf("Process: %v", err)
	}
	first := doc.String()
	res, err := Process(doc, nil, nil, nil)
	if err != nil {
		t.Fatalf("second Process: %v", err)
	}
	if len(res.Mapping) != 0 {
		t.Errorf("second Process split again: %v", res.Mapping)
	}
	staves, _ := doc.Staves()
	if len(staves) != 2 {
		t.Errorf("second Process: got %d staves, want 2", len(staves))
	}
	if got := doc.String(); got != first {
		t.Errorf("second Process changed the score:\n%s\nwant:\n%s", got, first)
	}
}

func TestProcessStructuralErrors(t *testing.T) {
	for _, tc := range []struct {
		name string
		xml  string
	}{
		{"no score", `<museScore/>`},
		{"no part", `<museScore><Score><Staff id="1"/></Score></museScore>`},
		{"no staff", `<museScore><Score><Part><Staff id="1"/></Part></Score></museScore>`},
		{"part without stub", `<museScore><Score><Part><trackName>x</trackName></Part><Staff id="1"><Measure><voice/></Measure></Staff></Score></museScore>`},
	} {
		_, err := Process(mustParse(t, tc.xml), nil, nil, nil)
		if !errors.Is(err, score.ErrStructure) {
			t.Errorf("%s: got %v, want a structural error", tc.name, err)
		}
	}
}

type fixedCorrector struct {
	got []string
	fix string
}

func (f *fixedCorrector) CorrectLyrics(recs []lyrics.Record) ([]lyrics.Record, bool, error) {
	for _, r := range recs {
		f.got = append(f.got, r.Text)
	}
	out := append([]lyrics.Record(nil), recs...)
	for i := range out {
		out[i].Text = f.fix
	}
	return out, true, nil
}

func TestProcessUsesLyricCorrection(t *testing.T) {
	doc := mustParse(t, twoVoiceScore)
	corr := &fixedCorrector{fix: "lo"}
	res, err := Process(doc, nil, nil, corr)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if len(corr.got) != 1 || corr.got[0] != "la" {
		t.Errorf("corrector got %v, want [la]", corr.got)
	}
	if len(res.Lyrics) != 1 || res.Lyrics[0].Text != "lo" {
		t.Errorf("Result.Lyrics: got %+v", res.Lyrics)
	}
	staff := doc.Staff(1)
	if l, ok := score.DefaultLyric(score.SelectOne(staff, ".//Chord")); !ok || l.Text != "lo" {
		t.Errorf("corrected lyric: got %+v, %v", l, ok)
	}
}

func TestProcessOptions(t *testing.T) {
	doc := mustParse(t, twoVoiceScore)
	_, err := Process(doc, nil, &Options{PartString: "SA", ClickStaff: true}, nil)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	parts, _ := doc.Parts()
	if len(parts) != 3 {
		t.Fatalf("got %d parts, want 3", len(parts))
	}
	for i, want := range []string{"Soprano 1", "Alto 1", "Click"} {
		if got := score.Text(parts[i], "trackName"); got != want {
			t.Errorf("part %d: got %q, want %q", i, got, want)
		}
	}
}

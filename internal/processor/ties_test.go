package processor

import (
	"testing"

	"github.com/divVerent/choirsplit/internal/score"
)

const tieStart = `<Spanner type="Tie"><Tie/><next><location><fractions>1/2</fractions></location></next></Spanner>`
const tieEnd = `<Spanner type="Tie"><prev><location><fractions>-1/2</fractions></location></prev></Spanner>`

func twoStaves(first, second string) string {
	return `<museScore><Score><Division>32</Division>
<Part><Staff id="1"/></Part><Part><Staff id="2"/></Part>
<Staff id="1">` + first + `</Staff><Staff id="2">` + second + `</Staff></Score></museScore>`
}

func TestRepairTies(t *testing.T) {
	tied := `<Measure><voice>
<Chord><durationType>half</durationType><Note><pitch>60</pitch>` + tieStart + `</Note></Chord>
<Chord><durationType>half</durationType><Note><pitch>60</pitch>` + tieEnd + `</Note></Chord>
</voice></Measure>`
	for _, tc := range []struct {
		name     string
		bare     string
		want     string
		warnings int
	}{
		{
			name: "same pitch",
			bare: `<Measure><voice>
<Chord><durationType>half</durationType><Note><pitch>64</pitch></Note></Chord>
<Chord><durationType>half</durationType><Note><pitch>64</pitch></Note></Chord>
</voice></Measure>`,
			want: score.Tie,
		},
		{
			name: "different pitch",
			bare: `<Measure><voice>
<Chord><durationType>half</durationType><Note><pitch>64</pitch></Note></Chord>
<Chord><durationType>half</durationType><Note><pitch>65</pitch></Note></Chord>
</voice></Measure>`,
			want: score.Slur,
		},
		{
			name: "different durations",
			bare: `<Measure><voice>
<Chord><durationType>quarter</durationType><Note><pitch>64</pitch></Note></Chord>
<Rest><durationType>quarter</durationType></Rest>
<Chord><durationType>half</durationType><Note><pitch>64</pitch></Note></Chord>
</voice></Measure>`,
			warnings: 1,
		},
	} {
		doc := mustParse(t, twoStaves(tied, tc.bare))
		c := NewContext(doc, nil)
		if err := repairTies(c); err != nil {
			t.Fatalf("%s: %v", tc.name, err)
		}
		chords := c.Resolver.Chords(doc.Staff(2))
		first, last := chords[0].Node, chords[len(chords)-1].Node
		if tc.want == "" {
			if len(score.Spanners(first, "")) != 0 {
				t.Errorf("%s: unexpected spanner", tc.name)
			}
		} else {
			if !score.StartsSpan(first, tc.want) {
				t.Errorf("%s: first chord does not start a %s", tc.name, tc.want)
			}
			if !score.ContinuesSpan(last, tc.want) {
				t.Errorf("%s: last chord does not end a %s", tc.name, tc.want)
			}
			if tc.want == score.Slur && score.SelectOne(first, ".//Spanner/Slur") == nil {
				t.Errorf("%s: inner element not renamed", tc.name)
			}
		}
		if len(c.Warnings) != tc.warnings {
			t.Errorf("%s: got %d warnings, want %d", tc.name, len(c.Warnings), tc.warnings)
		}
		// The source staff is untouched.
		if n := len(score.Select(doc.Staff(1), ".//Spanner")); n != 2 {
			t.Errorf("%s: source staff has %d spanners, want 2", tc.name, n)
		}
	}
}

func TestSpanIndexAcrossBarLine(t *testing.T) {
	doc := mustParse(t, twoStaves(`
<Measure><voice>
<Chord><durationType>half</durationType><Note><pitch>60</pitch></Note></Chord>
<Chord><durationType>half</durationType><Note><pitch>60</pitch>`+tieStart+`</Note></Chord>
</voice></Measure>
<Measure><voice>
<Chord><durationType>half</durationType><Note><pitch>60</pitch>`+tieEnd+`</Note></Chord>
<Rest><durationType>half</durationType></Rest>
</voice></Measure>`, `<Measure><voice/></Measure>`))
	staves, _ := doc.Staves()
	idx := BuildSpanIndex(doc.Resolver(0), staves)
	pair, ok := idx.Lookup(0, 64)
	if !ok {
		t.Fatalf("no pair at measure 1, 64")
	}
	if !score.ContinuesSpan(pair.End, score.Tie) {
		t.Errorf("pair end is not the tie continuation")
	}
	if _, ok := idx.Lookup(0, 0); ok {
		t.Errorf("unexpected pair at measure 1, 0")
	}
}

func TestRepairTiesIgnoresSlurs(t *testing.T) {
	slurStart := `<Spanner type="Slur"><Slur/><next><location><fractions>1/2</fractions></location></next></Spanner>`
	slurEnd := `<Spanner type="Slur"><prev><location><fractions>-1/2</fractions></location></prev></Spanner>`
	doc := mustParse(t, twoStaves(`<Measure><voice>
<Chord><durationType>half</durationType><Note><pitch>60</pitch>`+slurStart+`</Note></Chord>
<Chord><durationType>half</durationType><Note><pitch>62</pitch>`+slurEnd+`</Note></Chord>
</voice></Measure>`, `<Measure><voice>
<Chord><durationType>half</durationType><Note><pitch>64</pitch></Note></Chord>
<Chord><durationType>half</durationType><Note><pitch>64</pitch></Note></Chord>
</voice></Measure>`))
	c := NewContext(doc, nil)
	staves, _ := doc.Staves()
	if _, ok := BuildSpanIndex(c.Resolver, staves).Lookup(0, 0); ok {
		t.Errorf("slur recorded as a tie pair")
	}
	if err := repairTies(c); err != nil {
		t.Fatalf("repairTies: %v", err)
	}
	for i, ev := range c.Resolver.Chords(doc.Staff(2)) {
		if n := len(score.Spanners(ev.Node, "")); n != 0 {
			t.Errorf("chord %d of the bare staff got %d spanners, want 0", i, n)
		}
	}
	if len(c.Warnings) != 0 {
		t.Errorf("got warnings %v", c.Warnings)
	}
}

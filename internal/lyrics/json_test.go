package lyrics

import (
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/divVerent/choirsplit/internal/score"
)

// quarters builds a 2/4 score of the given staves, each measure holding two quarter chords.
func quarters(staves, measures int) string {
	var b strings.Builder
	b.WriteString(`<museScore><Score><Division>32</Division>`)
	for s := 1; s <= staves; s++ {
		fmt.Fprintf(&b, `<Part><Staff id="%d"/></Part>`, s)
	}
	for s := 1; s <= staves; s++ {
		fmt.Fprintf(&b, `<Staff id="%d">`, s)
		for m := 0; m < measures; m++ {
			b.WriteString(`<Measure><voice>`)
			for i := 0; i < 2; i++ {
				b.WriteString(`<Chord><durationType>quarter</durationType><Note><pitch>60</pitch></Note></Chord>`)
			}
			b.WriteString(`</voice></Measure>`)
		}
		b.WriteString(`</Staff>`)
	}
	b.WriteString(`</Score></museScore>`)
	return b.String()
}

func TestParseJSON(t *testing.T) {
	doc := parse(t, quarters(2, 3))
	data := []byte(`[
		{"measure_start": 3, "S1": "d-e", "2": 5},
		{"measure_start": 1, "S1": "a b c", "2": "Hal-le- lu-jah"}
	]`)
	b, err := ParseJSON(doc, data, map[string]int{"S1": 1}, nil)
	if err != nil {
		t.Fatalf("ParseJSON: %v", err)
	}
	want := ByMeasure{
		1: {1: {"a", "b"}, 2: {"Hal-le-"}},
		2: {1: {"c"}, 2: {"lu-jah"}},
		3: {1: {"d-e"}},
	}
	if !reflect.DeepEqual(b, want) {
		t.Errorf("ParseJSON: got %v, want %v", b, want)
	}

	if err := ImportJSON(doc, data, map[string]int{"S1": 1}, nil); err != nil {
		t.Fatalf("ImportJSON: %v", err)
	}
	got, err := Export(doc)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	wantText := `# Measure 1
1 [2]: a b
2 [2]: Hal-le-
# Measure 2
1 [2]: c _
2 [2]: lu-jah
# Measure 3
1 [2]: d-e
2 [2]: _ _
`
	if got != wantText {
		t.Errorf("Export after ImportJSON: got\n%s\nwant\n%s", got, wantText)
	}
	l, _ := score.DefaultLyric(score.Select(doc.Staff(2), ".//Chord")[2])
	if l.Syllabic != score.Middle {
		t.Errorf("continued syllable: got %q, want middle", l.Syllabic)
	}
}

func TestParseJSONSplit(t *testing.T) {
	doc := parse(t, quarters(4, 1))
	data := []byte(`[{"measure_start": 1, "S1": "a b", "A1": "c d"}]`)
	b, err := ParseJSON(doc, data, map[string]int{"S1": 1, "A1": 2}, []int{1, 2})
	if err != nil {
		t.Fatalf("ParseJSON: %v", err)
	}
	want := ByMeasure{1: {1: {"a", "b"}, 2: {"a", "b"}, 3: {"c", "d"}, 4: {"c", "d"}}}
	if !reflect.DeepEqual(b, want) {
		t.Errorf("ParseJSON with split: got %v, want %v", b, want)
	}
}

func TestParseJSONErrors(t *testing.T) {
	doc := parse(t, quarters(1, 1))
	if _, err := ParseJSON(doc, []byte(`{"not": "an array"}`), nil, nil); err == nil {
		t.Errorf("object input: want an error")
	}
	b, err := ParseJSON(doc, []byte(`[{"S1": "a"}]`), map[string]int{"S1": 1}, nil)
	if err != nil || len(b) != 0 {
		t.Errorf("missing measure_start: got %v, %v", b, err)
	}
	b, err = ParseJSON(doc, []byte(`[{"measure_start": 1, "X9": "a"}]`), map[string]int{"S1": 1}, nil)
	if err != nil || len(b) != 0 {
		t.Errorf("unknown label: got %v, %v", b, err)
	}
}

package processor

import (
	"fmt"
	"log"

	"github.com/antchfx/xmlquery"

	"github.com/divVerent/choirsplit/internal/score"
)

// Vocal part names.
const (
	Soprano = "Soprano"
	Alto    = "Alto"
	Tenor   = "Tenor"
	Bass    = "Bass"
)

// Clef types.
const (
	TrebleClef = "G"
	TenorClef  = "G8vb"
	BassClef   = "F"
)

// PartType is the inferred vocal part of a staff.
type PartType struct {
	Staff   int
	Clef    string
	Lowest  int // -1 without notes.
	Highest int // -1 without notes.
	Name    string
	Index   int // 1-based within a run of staves with the same name.
}

// Slug is the one-letter abbreviation of the part name.
func (p PartType) Slug() string {
	if p.Name == "" {
		return ""
	}
	return p.Name[:1]
}

// Label is the short part name, e.g. "T2".
func (p PartType) Label() string {
	return fmt.Sprintf("%s%d", p.Slug(), p.Index)
}

// LongName is the full part name, e.g. "Tenor 2".
func (p PartType) LongName() string {
	return fmt.Sprintf("%s %d", p.Name, p.Index)
}

// pitchRange returns the lowest and highest pitch of all notes of a staff.
func pitchRange(staff *xmlquery.Node) (int, int) {
	lowest, highest := -1, -1
	for _, n := range score.Select(staff, ".//Note") {
		p := score.Int(n, "pitch", -1)
		if p < 0 {
			continue
		}
		if lowest < 0 || p < lowest {
			lowest = p
		}
		if p > highest {
			highest = p
		}
	}
	return lowest, highest
}

// classify assigns name and clef of one staff. sopranoSeen tells whether an earlier staff is a Soprano.
func classify(p *PartType, sopranoSeen bool) {
	hasNotes := p.Lowest >= 0
	switch p.Clef {
	case BassClef:
		switch {
		case hasNotes && p.Lowest < 50:
			p.Name = Bass
		case p.Highest > 65:
			p.Name = Tenor
		}
	case TrebleClef, TenorClef:
		if hasNotes && p.Lowest < 55 {
			p.Name = Tenor
			p.Clef = TenorClef
		}
		switch {
		case p.Highest > 72:
			p.Name = Soprano
			p.Clef = TrebleClef
		case p.Highest > 68 && sopranoSeen:
			p.Name = Alto
			p.Clef = TrebleClef
		}
		if p.Name == "" && p.Clef == TenorClef {
			p.Name = Tenor
		}
	}
}

// InferPartTypes classifies the given staves in order and numbers runs of equal names.
func InferPartTypes(staves []*xmlquery.Node) []PartType {
	var out []PartType
	sopranoSeen := false
	prev := ""
	index := 0
	for _, staff := range staves {
		p := PartType{
			Staff: score.StaffID(staff),
			Clef:  score.ClefType(staff),
		}
		p.Lowest, p.Highest = pitchRange(staff)
		classify(&p, sopranoSeen)
		if p.Name == Soprano {
			sopranoSeen = true
		}
		if p.Name != prev {
			index = 0
			prev = p.Name
		}
		index++
		p.Index = index
		out = append(out, p)
	}
	return out
}

// applyPartTypes labels the parts and writes the clef variants.
func applyPartTypes(c *Context) error {
	staves, err := c.Doc.Staves()
	if err != nil {
		return err
	}
	parts, err := c.Doc.Parts()
	if err != nil {
		return err
	}
	c.PartTypes = InferPartTypes(staves)
	byStaff := map[int]PartType{}
	for _, p := range c.PartTypes {
		byStaff[p.Staff] = p
		if p.Name == "" {
			log.Printf("Staff %d: no part type (pitch %d..%d, clef %s).", p.Staff, p.Lowest, p.Highest, p.Clef)
			continue
		}
		log.Printf("Staff %d: %s (pitch %d..%d, clef %s).", p.Staff, p.LongName(), p.Lowest, p.Highest, p.Clef)
	}

	for _, part := range parts {
		stub := score.Element(part, "Staff")
		if stub == nil {
			continue
		}
		p, ok := byStaff[score.StaffID(stub)]
		if !ok || p.Name == "" {
			continue
		}
		if score.Element(part, "trackName") != nil {
			score.SetText(part, "trackName", p.Label())
		}
		if inst := score.Element(part, "Instrument"); inst != nil && score.Element(inst, "longName") != nil {
			score.SetText(inst, "longName", p.LongName())
		}
	}

	for _, staff := range staves {
		p := byStaff[score.StaffID(staff)]
		if p.Name == "" {
			continue
		}
		setClef(staff, p.Clef)
	}
	return nil
}

// setClef writes the clef type into the Clefs of a staff that repeat its first clef, adding one to
// the first voice if the staff has none and the clef differs from the default.
func setClef(staff *xmlquery.Node, clef string) {
	first := score.ClefType(staff)
	clefs := score.Select(staff, ".//Clef")
	for _, n := range clefs {
		if t := score.Text(n, "concertClefType"); t != "" && t != first {
			continue
		}
		score.SetText(n, "concertClefType", clef)
		score.SetText(n, "transposingClefType", clef)
	}
	if len(clefs) > 0 || clef == TrebleClef {
		return
	}
	v := score.SelectOne(staff, "Measure/voice")
	if v == nil {
		return
	}
	score.Prepend(v, score.NewElement("Clef",
		score.NewTextElement("concertClefType", clef),
		score.NewTextElement("transposingClefType", clef)))
}

package processor

import (
	"log"

	"github.com/antchfx/xmlquery"

	"github.com/divVerent/choirsplit/internal/score"
)

// splitTargets returns the ids of the staves that hold more than one voice in some measure.
func splitTargets(staves []*xmlquery.Node) map[int]bool {
	targets := map[int]bool{}
	for _, staff := range staves {
		for _, m := range score.Elements(staff, "Measure") {
			if len(score.Elements(m, "voice")) > 1 {
				targets[score.StaffID(staff)] = true
				break
			}
		}
	}
	return targets
}

// separateParts gives every Staff stub of a multi-staff Part a Part of its own.
func separateParts(c *Context) error {
	parts, err := c.Doc.Parts()
	if err != nil {
		return err
	}
	for _, part := range parts {
		stubs := score.Elements(part, "Staff")
		if len(stubs) <= 1 {
			continue
		}
		after := part
		for k := 1; k < len(stubs); k++ {
			p := score.Clone(part)
			i := 0
			score.Filter(p, func(n *xmlquery.Node) bool {
				if n.Type != xmlquery.ElementNode || n.Data != "Staff" {
					return true
				}
				i++
				return i-1 == k
			})
			score.InsertAfter(after, p)
			after = p
		}
		for _, stub := range stubs[1:] {
			score.Remove(stub)
		}
		log.Printf("Part %q: separated into %d parts.", score.Text(part, "trackName"), len(stubs))
	}
	return nil
}

// renumberStaves assigns new ids to the part stubs and to the staves, leaving a gap after each
// split target for its duplicate. Stubs and staves are numbered the same way, as the counter
// restarts for the staves.
func renumberStaves(c *Context, targets map[int]bool) error {
	s, err := c.Doc.Score()
	if err != nil {
		return err
	}
	var stubs []*xmlquery.Node
	for _, part := range score.Elements(s, "Part") {
		stubs = append(stubs, score.Elements(part, "Staff")...)
	}
	for _, list := range [][]*xmlquery.Node{stubs, score.Elements(s, "Staff")} {
		next := 1
		for _, staff := range list {
			orig := score.StaffID(staff)
			score.SetStaffID(staff, next)
			if targets[orig] {
				c.addMapping(next, next+1)
				next += 2
			} else {
				next++
			}
		}
	}
	return nil
}

// duplicateParts inserts a copy of every split part, pointing at the duplicate staff, after it.
func duplicateParts(c *Context) error {
	parts, err := c.Doc.Parts()
	if err != nil {
		return err
	}
	for _, part := range parts {
		stub := score.Element(part, "Staff")
		if stub == nil {
			return &score.StructuralError{Path: "museScore/Score/Part/Staff", Message: "part without a staff"}
		}
		dup, ok := c.Mapping[score.StaffID(stub)]
		if !ok {
			continue
		}
		p := score.Clone(part)
		score.SetStaffID(score.Element(p, "Staff"), dup)
		score.InsertAfter(part, p)
	}
	return nil
}

// duplicateStaff inserts a copy of a split staff, with the duplicate id, after it.
func duplicateStaff(c *Context, staff *xmlquery.Node) *xmlquery.Node {
	dup := score.Clone(staff)
	score.SetStaffID(dup, c.Mapping[score.StaffID(staff)])
	score.InsertAfter(staff, dup)
	return dup
}

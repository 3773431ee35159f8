package processor

import (
	"testing"

	"github.com/divVerent/choirsplit/internal/rehearsal"
)

func TestMergeConfig(t *testing.T) {
	program := uint8(19)
	a := Config{
		FermataTimeStretch: "2",
		PartToStaff:        map[string]int{"S1": 1, "A1": 3},
		Rehearsal:          rehearsal.Config{BPM: 80},
	}
	b := Config{
		Resolution:  256,
		PartToStaff: map[string]int{"A1": 4},
		Rehearsal:   rehearsal.Config{Program: &program},
	}
	got := Merge(a, b)
	if got.Resolution != 256 || got.FermataTimeStretch != "2" {
		t.Errorf("scalars: got %+v", got)
	}
	if got.PartToStaff["S1"] != 1 || got.PartToStaff["A1"] != 4 {
		t.Errorf("PartToStaff: got %v", got.PartToStaff)
	}
	if a.PartToStaff["A1"] != 3 {
		t.Errorf("Merge modified its input")
	}
	if got.Rehearsal.BPM != 80 || got.Rehearsal.Program == nil || *got.Rehearsal.Program != 19 {
		t.Errorf("Rehearsal: got %+v", got.Rehearsal)
	}
}

func TestConfigDefaults(t *testing.T) {
	var c Config
	if c.fermataTimeStretch() != "3" {
		t.Errorf("fermataTimeStretch: got %q", c.fermataTimeStretch())
	}
	if len(c.stripElements()) != len(DefaultStripElements) {
		t.Errorf("stripElements: got %v", c.stripElements())
	}
	if c.PartMapping()["A2"] != 4 {
		t.Errorf("PartMapping: got %v", c.PartMapping())
	}
	if WithDefault(0, 7) != 7 || WithDefault(5, 7) != 5 {
		t.Errorf("WithDefault")
	}
}

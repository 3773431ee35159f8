package processor

import (
	"github.com/divVerent/choirsplit/internal/rehearsal"
)

// Config holds the settings shared by all scores.
type Config struct {
	// Resolution is the number of ticks in a whole note.
	// Zero derives it from the document's Division, or 128 without one.
	Resolution int `yaml:"resolution,omitempty"`

	// FermataTimeStretch is written into every Fermata (default 3).
	FermataTimeStretch string `yaml:"fermata_time_stretch,omitempty"`

	// StripElements are XPath expressions, relative to a staff, of presentation elements to delete.
	StripElements []string `yaml:"strip_elements,omitempty"`

	// SparseSignatures keeps clef, key and time signatures only in the measures that had them,
	// instead of re-inserting the current ones into every measure.
	SparseSignatures bool `yaml:"sparse_signatures,omitempty"`

	// PartToStaff maps part labels of the JSON lyric format to staff ids.
	PartToStaff map[string]int `yaml:"part_to_staff,omitempty"`

	Rehearsal rehearsal.Config `yaml:"rehearsal,omitempty"`
}

// Options describe one score.
type Options struct {
	InputFile       string `yaml:"input_file"`
	InputFileSHA256 string `yaml:"input_file_sha256,omitempty"`
	OutputFile      string `yaml:"output_file,omitempty"`

	// PartString names the resulting parts, e.g. "SSAATTBB".
	PartString string `yaml:"part_string,omitempty"`

	// ClickStaff appends a rest-only staff for a metronome track.
	ClickStaff bool `yaml:"click_staff,omitempty"`

	// RehearsalMIDI requests rehearsal tracks next to the output file.
	RehearsalMIDI bool `yaml:"rehearsal_midi,omitempty"`

	// Config overrides the global config for this score.
	Config Config `yaml:"config,omitempty"`
}

// DefaultStripElements are removed from every staff unless configured otherwise.
var DefaultStripElements = []string{
	".//offset",
	".//Dynamic",
	".//LayoutBreak",
	".//Spanner[@type='HairPin']",
	".//Articulation",
	".//Tempo",
	".//Harmony",
}

// DefaultPartToStaff is the label mapping of the JSON lyric format.
var DefaultPartToStaff = map[string]int{
	"S1": 1,
	"S2": 2,
	"A1": 3,
	"A2": 4,
}

func (c *Config) stripElements() []string {
	if len(c.StripElements) == 0 {
		return DefaultStripElements
	}
	return c.StripElements
}

func (c *Config) fermataTimeStretch() string {
	return WithDefault(c.FermataTimeStretch, "3")
}

// PartMapping returns the label mapping of the JSON lyric format.
func (c *Config) PartMapping() map[string]int {
	if len(c.PartToStaff) == 0 {
		return DefaultPartToStaff
	}
	return c.PartToStaff
}

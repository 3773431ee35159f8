// Package rehearsal renders a split score into MIDI rehearsal tracks, one per voice line.
package rehearsal

// Config controls the rehearsal tracks.
type Config struct {
	// BPM is the quarter note tempo used when the score has no tempo marking.
	BPM float64 `yaml:"bpm,omitempty"`

	// TempoFactor scales all tempos, e.g. 0.8 for practicing slowly.
	TempoFactor float64 `yaml:"tempo_factor,omitempty"`

	// FocusVelocity is the velocity of the line a track is made for.
	FocusVelocity uint8 `yaml:"focus_velocity,omitempty"`

	// OtherVelocity is the velocity of all other lines.
	OtherVelocity uint8 `yaml:"other_velocity,omitempty"`

	// Program is the General MIDI program; defaults to choir aahs.
	Program *uint8 `yaml:"program,omitempty"`
}

const (
	defaultBPM           = 100
	defaultFocusVelocity = 100
	defaultOtherVelocity = 50
	defaultProgram       = 52
)

func (c *Config) bpm(scoreBPM float64) float64 {
	if scoreBPM > 0 {
		return scoreBPM
	}
	if c.BPM > 0 {
		return c.BPM
	}
	return defaultBPM
}

func (c *Config) focusVelocity() uint8 {
	if c.FocusVelocity == 0 {
		return defaultFocusVelocity
	}
	return c.FocusVelocity
}

func (c *Config) otherVelocity() uint8 {
	if c.OtherVelocity == 0 {
		return defaultOtherVelocity
	}
	return c.OtherVelocity
}

func (c *Config) program() uint8 {
	if c.Program == nil {
		return defaultProgram
	}
	return *c.Program
}

package player

import (
	"fmt"
	"regexp"
	"slices"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
)

var (
	badPortsRE       = regexp.MustCompile(`\bMidi Through\b|\bPipeWire-System\b|\bPipeWire-RT-Event\b`)
	usbPortsRE       = regexp.MustCompile(`\bUSB|\bUM-`)
	softSynthPortsRE = regexp.MustCompile(`\bFLUID\b|\bSynth\b|\bTiMidity\b`)
)

// FindBestPort picks an output port among the system's ports.
func FindBestPort(pattern string) (drivers.Out, error) {
	return bestPort(midi.GetOutPorts(), pattern)
}

// bestPort returns the first port matching pattern, or else the best port that is not a loopback.
// Hardware on USB is preferred and software synthesizers are avoided.
func bestPort(ports []drivers.Out, pattern string) (drivers.Out, error) {
	var goodPorts []drivers.Out
	if pattern != "" {
		portRE, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("failed to compile -port RE %v: %w", pattern, err)
		}
		for _, port := range ports {
			if portRE.MatchString(port.String()) {
				goodPorts = append(goodPorts, port)
			}
		}
		if len(goodPorts) == 0 {
			return nil, fmt.Errorf("no port matches %v", pattern)
		}
	} else {
		for _, port := range ports {
			if !badPortsRE.MatchString(port.String()) {
				goodPorts = append(goodPorts, port)
			}
		}
	}
	if len(goodPorts) == 0 {
		return nil, fmt.Errorf("no MIDI output port found")
	}
	return slices.MinFunc(goodPorts, func(a, b drivers.Out) int {
		aUSB := usbPortsRE.MatchString(a.String())
		bUSB := usbPortsRE.MatchString(b.String())
		if aUSB != bUSB {
			if aUSB {
				return -1
			}
			return 1
		}
		aSoftSynth := softSynthPortsRE.MatchString(a.String())
		bSoftSynth := softSynthPortsRE.MatchString(b.String())
		if aSoftSynth != bSoftSynth {
			if aSoftSynth {
				return 1
			}
			return -1
		}
		return a.Number() - b.Number()
	}), nil
}

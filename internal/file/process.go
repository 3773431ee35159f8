package file

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"io"
	"io/fs"
	"log"
	"path"

	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/divVerent/choirsplit/internal/processor"
	"github.com/divVerent/choirsplit/internal/rehearsal"
	"github.com/divVerent/choirsplit/internal/score"
)

// Output is the result of processing one score.
type Output struct {
	Doc    *score.Document
	Result *processor.Result
	// MIDI holds the rehearsal tracks by key, if requested.
	MIDI map[string]*smf.SMF
}

// Process reads, checks and transforms the input file of options. If options carry no checksum
// yet, it is filled in.
func Process(fsys fs.FS, config *processor.Config, options *processor.Options, corrector processor.LyricCorrector) (*Output, error) {
	inBytes, err := fs.ReadFile(fsys, options.InputFile)
	if err != nil {
		return nil, fmt.Errorf("could not read %v: %v", options.InputFile, err)
	}

	sum := fmt.Sprintf("%x", sha256.Sum256(inBytes))

	if options.InputFileSHA256 != "" && options.InputFileSHA256 != sum {
		return nil, fmt.Errorf("mismatching checksum of %v: got %v, want %v", options.InputFile, sum, options.InputFileSHA256)
	}

	doc, err := parseScore(options.InputFile, inBytes)
	if err != nil {
		return nil, err
	}

	if config == nil {
		config = &processor.Config{}
	}
	merged := processor.Merge(*config, options.Config)
	scoreBPM := rehearsal.ScoreTempo(doc)

	result, err := processor.Process(doc, &merged, options, corrector)
	if err != nil {
		return nil, fmt.Errorf("failed to process %v: %w", options.InputFile, err)
	}
	if len(result.Warnings) > 0 {
		log.Printf("%v: %d warnings.", options.InputFile, len(result.Warnings))
	}

	out := &Output{Doc: doc, Result: result}
	if options.RehearsalMIDI {
		out.MIDI, err = rehearsal.Render(doc, doc.Resolver(merged.Resolution), &merged.Rehearsal, scoreBPM)
		if err != nil {
			return nil, fmt.Errorf("could not render rehearsal tracks: %v", err)
		}
	}

	if options.InputFileSHA256 == "" {
		options.InputFileSHA256 = sum
	}
	return out, nil
}

// parseScore reads an mscx document, unpacking it first if it is an mscz archive.
func parseScore(name string, data []byte) (*score.Document, error) {
	var r io.Reader = bytes.NewReader(data)
	if path.Ext(name) == ".mscz" {
		rc, err := ZipUnpacker{}.Unpack(bytes.NewReader(data), int64(len(data)))
		if err != nil {
			return nil, fmt.Errorf("could not unpack %v: %w", name, err)
		}
		defer rc.Close()
		r = rc
	}
	doc, err := score.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("could not parse %v: %w", name, err)
	}
	return doc, nil
}

// WriteMIDI writes the rehearsal tracks as <prefix>.<key>.mid.
func WriteMIDI(prefix string, output map[string]*smf.SMF) error {
	for key, mid := range output {
		name := fmt.Sprintf("%s.%s.mid", prefix, key)
		err := mid.WriteFile(name)
		if err != nil {
			return fmt.Errorf("failed to write %v: %v", name, err)
		}
	}
	return nil
}

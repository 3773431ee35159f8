package file

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"strings"

	"github.com/divVerent/choirsplit/internal/lyrics"
)

// LyricPaths returns the default dump and correction files next to an output file.
func LyricPaths(outputFile string) (dump, fixed string) {
	base := strings.TrimSuffix(outputFile, ".mscx")
	return base + "_lyrics.tsv", base + "_lyrics_fixed.tsv"
}

// TSVCorrector dumps the collected lyrics to a TSV file and reads corrections from another.
type TSVCorrector struct {
	DumpFile  string
	FixedFile string

	// Wait, if set, runs between writing the dump and reading the corrections, e.g. to let a
	// user edit the file.
	Wait func(dumpFile, fixedFile string) error
}

// CorrectLyrics implements processor.LyricCorrector.
func (t *TSVCorrector) CorrectLyrics(recs []lyrics.Record) ([]lyrics.Record, bool, error) {
	if t.DumpFile != "" {
		if err := writeTSV(t.DumpFile, recs); err != nil {
			return nil, false, err
		}
		log.Printf("Wrote %d lyrics to %v.", len(recs), t.DumpFile)
	}
	if t.Wait != nil {
		if err := t.Wait(t.DumpFile, t.FixedFile); err != nil {
			return nil, false, err
		}
	}
	if t.FixedFile == "" {
		return nil, false, nil
	}
	f, err := os.Open(t.FixedFile)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("could not open %v: %v", t.FixedFile, err)
	}
	defer f.Close()
	fixed, err := lyrics.ReadTSV(f)
	if err != nil {
		return nil, false, fmt.Errorf("could not read %v: %v", t.FixedFile, err)
	}
	return fixed, true, nil
}

func writeTSV(name string, recs []lyrics.Record) (err error) {
	f, err := os.Create(name)
	if err != nil {
		return fmt.Errorf("could not create %v: %v", name, err)
	}
	defer func() {
		closeErr := f.Close()
		if closeErr != nil && err == nil {
			err = closeErr
		}
	}()
	return lyrics.WriteTSV(f, recs)
}

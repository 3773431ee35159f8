package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/divVerent/choirsplit/internal/file"
	"github.com/divVerent/choirsplit/internal/processor"
)

var (
	i           = flag.String("i", "", "input file name (mscx or mscz)")
	o           = flag.String("o", "", "output file name (mscx)")
	c           = flag.String("c", "", "optional config file name (YAML)")
	lyricsDump  = flag.String("lyrics_dump", "", "where to dump the collected lyrics (TSV); default <output>_lyrics.tsv")
	lyricsFixed = flag.String("lyrics_fixed", "", "corrected lyrics to use if present (TSV); default <output>_lyrics_fixed.tsv")
	partString  = flag.String("part_string", "", "part names to assign, e.g. SSAATTBB")
	clickStaff  = flag.Bool("click_staff", false, "append a click staff")
	midiPrefix  = flag.String("midi_prefix", "", "if set, write rehearsal MIDI files <prefix>.<part>.mid")
	password    = flag.String("password", os.Getenv("CHOIRSPLIT_PASSWORD"), "passphrase for age encrypted inputs")
)

func Main() error {
	if *i == "" || *o == "" {
		return fmt.Errorf("-i and -o are required")
	}
	abs, err := filepath.Abs(*i)
	if err != nil {
		return fmt.Errorf("failed to resolve %v: %v", *i, err)
	}
	fsys := &file.DecryptFS{FS: os.DirFS(filepath.Dir(abs)), Password: *password}

	config := &processor.Config{}
	if *c != "" {
		config, err = file.ReadConfig(os.DirFS("."), *c)
		if err != nil {
			return fmt.Errorf("failed to read config: %v", err)
		}
	}

	options := &processor.Options{
		InputFile:     filepath.Base(abs),
		OutputFile:    *o,
		PartString:    *partString,
		ClickStaff:    *clickStaff,
		RehearsalMIDI: *midiPrefix != "",
	}

	dump, fixed := file.LyricPaths(*o)
	if *lyricsDump != "" {
		dump = *lyricsDump
	}
	if *lyricsFixed != "" {
		fixed = *lyricsFixed
	}
	corrector := &file.TSVCorrector{DumpFile: dump, FixedFile: fixed}

	output, err := file.Process(fsys, config, options, corrector)
	if err != nil {
		return fmt.Errorf("failed to process: %w", err)
	}
	if err := output.Doc.WriteFile(*o); err != nil {
		return fmt.Errorf("failed to write %v: %v", *o, err)
	}
	if *midiPrefix != "" {
		if err := file.WriteMIDI(strings.TrimSuffix(*midiPrefix, "."), output.MIDI); err != nil {
			return err
		}
	}
	return nil
}

func main() {
	flag.Parse()
	err := Main()
	if err != nil {
		log.Println(err)
		os.Exit(1)
	}
}

package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/term"

	"github.com/divVerent/choirsplit/internal/file"
)

var (
	c           = flag.String("c", "choirsplit.yml", "config file name (YAML)")
	i           = flag.String("i", "", "input file name (YAML)")
	addChecksum = flag.Bool("add_checksum", false, "automatically add checksum to the input YAML")
	oPrefix     = flag.String("o_prefix", "", "output file name prefix for rehearsal MIDI files")
	editLyrics  = flag.Bool("edit_lyrics", false, "pause after dumping the lyrics so they can be corrected")
	password    = flag.String("password", os.Getenv("CHOIRSPLIT_PASSWORD"), "passphrase for age encrypted inputs")
)

var sigIntError = errors.New("interrupted")

func prompt(ask, response string) error {
	fmt.Printf("\n%v\nPress any key...\n", ask)
	buf, err := func() ([]byte, error) {
		save, err := term.MakeRaw(int(os.Stdin.Fd()))
		if err != nil {
			return nil, err
		}
		defer term.Restore(int(os.Stdin.Fd()), save)
		buf := make([]byte, 1)
		_, err = os.Stdin.Read(buf)
		return buf, err
	}()
	if err != nil {
		return err
	}
	if buf[0] == 0x03 {
		return sigIntError
	}
	fmt.Printf("%v\n", response)
	return nil
}

func waitForCorrection(dumpFile, fixedFile string) error {
	return prompt(fmt.Sprintf("Lyrics were written to %v. Save corrections as %v.", dumpFile, fixedFile), "Continuing.")
}

func Main() error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get current directory: %v", err)
	}
	fsys := &file.DecryptFS{FS: os.DirFS(cwd), Password: *password}

	config, err := file.ReadConfig(fsys, *c)
	if err != nil {
		return fmt.Errorf("failed to read config: %v", err)
	}

	options, err := file.ReadOptions(fsys, *i)
	if err != nil {
		return fmt.Errorf("failed to read options: %v", err)
	}
	if options.OutputFile == "" {
		options.OutputFile = strings.TrimSuffix(filepath.Base(options.InputFile), filepath.Ext(options.InputFile)) + ".split.mscx"
	}

	wantChecksum := options.InputFileSHA256 == ""

	dump, fixed := file.LyricPaths(options.OutputFile)
	corrector := &file.TSVCorrector{DumpFile: dump, FixedFile: fixed}
	if *editLyrics {
		corrector.Wait = waitForCorrection
	}

	output, err := file.Process(fsys, config, options, corrector)
	if err != nil {
		return fmt.Errorf("failed to process: %w", err)
	}

	if err := output.Doc.WriteFile(options.OutputFile); err != nil {
		return fmt.Errorf("failed to write %v: %v", options.OutputFile, err)
	}

	if *oPrefix == "" {
		*oPrefix = strings.TrimSuffix(*i, ".yml")
	}
	if err := file.WriteMIDI(*oPrefix, output.MIDI); err != nil {
		return err
	}

	if wantChecksum && *addChecksum {
		err := file.WriteOptions(*i, options)
		if err != nil {
			return fmt.Errorf("failed to write %v: %v", *i, err)
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

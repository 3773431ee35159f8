package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"slices"
	"strings"
	"time"

	"gitlab.com/gomidi/midi/v2"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv"

	"github.com/divVerent/choirsplit/internal/file"
	"github.com/divVerent/choirsplit/internal/player"
	"github.com/divVerent/choirsplit/internal/rehearsal"
)

var (
	c        = flag.String("c", "choirsplit.yml", "config file name (YAML)")
	i        = flag.String("i", "", "input file name (YAML)")
	line     = flag.String("line", rehearsal.AllKey, "rehearsal track to play, e.g. Soprano_1")
	port     = flag.String("port", "", "regular expression to match the preferred output port")
	tempo    = flag.Float64("tempo", 1, "playback speed factor")
	list     = flag.Bool("list", false, "list output ports and rehearsal tracks, then exit")
	password = flag.String("password", os.Getenv("CHOIRSPLIT_PASSWORD"), "passphrase for age encrypted inputs")
)

func Main(ctx context.Context) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get current directory: %v", err)
	}
	fsys := &file.DecryptFS{FS: os.DirFS(cwd), Password: *password}

	config, err := file.ReadConfig(fsys, *c)
	if err != nil {
		return fmt.Errorf("failed to read %v: %w", *c, err)
	}
	options, err := file.ReadOptions(fsys, *i)
	if err != nil {
		return fmt.Errorf("failed to read %v: %w", *i, err)
	}
	options.RehearsalMIDI = true

	output, err := file.Process(fsys, config, options, nil)
	if err != nil {
		return fmt.Errorf("failed to process %v: %w", *i, err)
	}
	var keys []string
	for k := range output.MIDI {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	if *list {
		fmt.Printf("Ports:\n")
		for _, p := range midi.GetOutPorts() {
			fmt.Printf("  %v\n", p)
		}
		fmt.Printf("Tracks: %v\n", strings.Join(keys, " "))
		return nil
	}

	mid, found := output.MIDI[*line]
	if !found {
		return fmt.Errorf("no rehearsal track %q; have %v", *line, strings.Join(keys, " "))
	}
	mid, err = player.Reload(mid)
	if err != nil {
		return err
	}

	out, err := player.FindBestPort(*port)
	if err != nil {
		return err
	}
	if err := out.Open(); err != nil {
		return fmt.Errorf("could not open %v: %w", out, err)
	}
	defer out.Close()
	log.Printf("Playing %v on %v.", *line, out)

	var shown time.Duration
	p := &player.Player{
		Out:   out,
		Tempo: *tempo,
		Progress: func(pos, length time.Duration) {
			if pos-shown < time.Second && pos != length {
				return
			}
			shown = pos
			fmt.Printf("\r%v / %v", pos.Round(time.Second), length.Round(time.Second))
		},
	}
	err = p.Play(ctx, mid)
	fmt.Println()
	return err
}

func main() {
	flag.Parse()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	err := Main(ctx)
	if err != nil && ctx.Err() == nil {
		log.Printf("Error: %v", err)
		stop()
		os.Exit(1)
	}
}

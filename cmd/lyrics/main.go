// Command lyrics exports and imports the first-verse lyrics of an mscx score.
package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"

	"github.com/divVerent/choirsplit/internal/file"
	"github.com/divVerent/choirsplit/internal/lyrics"
	"github.com/divVerent/choirsplit/internal/processor"
	"github.com/divVerent/choirsplit/internal/score"
)

// CLI defines the command-line interface for lyrics.
var CLI struct {
	Export     ExportCmd     `cmd:"" help:"Write the lyrics of a score as text, one line per staff and measure"`
	Import     ImportCmd     `cmd:"" help:"Replace the lyrics of a score from text"`
	ImportJSON ImportJSONCmd `cmd:"" name:"import-json" help:"Replace the lyrics of a score from a JSON array of lines"`
}

// ExportCmd writes the lyric text of a score.
type ExportCmd struct {
	In  string `name:"in" short:"i" required:"" help:"Input score (mscx)" type:"existingfile"`
	Out string `name:"out" short:"o" help:"Output text file; standard output if empty"`
}

func (c *ExportCmd) Run() error {
	doc, err := score.ReadFile(c.In)
	if err != nil {
		return err
	}
	txt, err := lyrics.Export(doc)
	if err != nil {
		return fmt.Errorf("failed to export lyrics: %w", err)
	}
	if c.Out == "" {
		_, err := os.Stdout.WriteString(txt)
		return err
	}
	return os.WriteFile(c.Out, []byte(txt), 0o644)
}

// ImportCmd reads lyric text into a score.
type ImportCmd struct {
	In   string `name:"in" short:"i" required:"" help:"Input score (mscx)" type:"existingfile"`
	Text string `name:"text" short:"t" required:"" help:"Lyric text file" type:"existingfile"`
	Out  string `name:"out" short:"o" required:"" help:"Output score (mscx)"`
}

func (c *ImportCmd) Run() error {
	doc, err := score.ReadFile(c.In)
	if err != nil {
		return err
	}
	txt, err := os.ReadFile(c.Text)
	if err != nil {
		return fmt.Errorf("failed to read %v: %w", c.Text, err)
	}
	if err := lyrics.ImportText(doc, string(txt)); err != nil {
		return fmt.Errorf("failed to import lyrics: %w", err)
	}
	return doc.WriteFile(c.Out)
}

// ImportJSONCmd distributes JSON lyric lines over a score.
type ImportJSONCmd struct {
	In     string `name:"in" short:"i" required:"" help:"Input score (mscx)" type:"existingfile"`
	JSON   string `name:"json" short:"j" required:"" help:"JSON lyric file" type:"existingfile"`
	Out    string `name:"out" short:"o" required:"" help:"Output score (mscx)"`
	Config string `name:"config" short:"c" help:"Config file (YAML) with part_to_staff"`
	Split  []int  `name:"split" help:"Staff ids whose lines also go to the next staff, e.g. 1,3"`
}

func (c *ImportJSONCmd) Run() error {
	config := &processor.Config{}
	if c.Config != "" {
		var err error
		config, err = file.ReadConfig(os.DirFS("."), c.Config)
		if err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}
	}
	doc, err := score.ReadFile(c.In)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(c.JSON)
	if err != nil {
		return fmt.Errorf("failed to read %v: %w", c.JSON, err)
	}
	if err := lyrics.ImportJSON(doc, data, config.PartMapping(), c.Split); err != nil {
		return fmt.Errorf("failed to import lyrics: %w", err)
	}
	return doc.WriteFile(c.Out)
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("lyrics"),
		kong.Description("Lyric interchange for choir scores"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
	)
	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}

// Package processor splits two-voice staves of a choir score into one staff per line.
package processor

import (
	"fmt"
	"log"

	"github.com/divVerent/choirsplit/internal/lyrics"
	"github.com/divVerent/choirsplit/internal/score"
)

// LyricCorrector is an external step that may fix the collected lyrics.
// It returns ok=false when it has no correction to offer.
type LyricCorrector interface {
	CorrectLyrics(recs []lyrics.Record) (fixed []lyrics.Record, ok bool, err error)
}

// Result summarizes a transformation.
type Result struct {
	// Mapping maps each split staff id to the id of its duplicate.
	Mapping   map[int]int
	PartTypes []PartType
	// Lyrics are the collected lyrics, or the corrected ones if a correction was applied.
	Lyrics   []lyrics.Record
	Warnings []Warning
}

// Process transforms doc in place. config and options may be nil; corrector may be nil.
// Only structural problems of the document are returned as errors.
func Process(doc *score.Document, config *Config, options *Options, corrector LyricCorrector) (*Result, error) {
	c := NewContext(doc, config)
	log.Printf("Resolution: %d ticks per whole note.", c.Resolver.Whole)

	if _, err := doc.Parts(); err != nil {
		return nil, err
	}
	if err := repairCorruptedMeasures(c); err != nil {
		return nil, fmt.Errorf("repairing measures: %w", err)
	}
	if err := split(c); err != nil {
		return nil, fmt.Errorf("splitting staves: %w", err)
	}

	staves, err := doc.Staves()
	if err != nil {
		return nil, err
	}
	for _, staff := range staves {
		filterStaff(c, staff, c.Direction(score.StaffID(staff)))
	}
	if err := repairTies(c); err != nil {
		return nil, fmt.Errorf("repairing ties: %w", err)
	}
	if err := applyPartTypes(c); err != nil {
		return nil, fmt.Errorf("inferring part types: %w", err)
	}

	correctLyrics(c, corrector)
	for _, staff := range staves {
		redistributeLyrics(c, staff)
		clearContinuationLyrics(staff)
	}
	for _, n := range score.Select(doc.Root, "//Staff/bracket | //Staff/barLineSpan") {
		score.Remove(n)
	}

	if options != nil {
		if options.PartString != "" {
			if err := RenameParts(doc, options.PartString); err != nil {
				return nil, err
			}
		}
		if options.ClickStaff {
			if err := AddClickStaff(doc); err != nil {
				return nil, err
			}
		}
	}

	return &Result{
		Mapping:   c.Mapping,
		PartTypes: c.PartTypes,
		Lyrics:    c.Lyrics.Records(),
		Warnings:  c.Warnings,
	}, nil
}

// split renumbers the staves, duplicates the parts and staves holding two voices, and indexes the
// lyrics of every original staff.
func split(c *Context) error {
	if err := separateParts(c); err != nil {
		return err
	}
	staves, err := c.Doc.Staves()
	if err != nil {
		return err
	}
	if err := renumberStaves(c, splitTargets(staves)); err != nil {
		return err
	}
	if err := duplicateParts(c); err != nil {
		return err
	}
	c.logMapping()
	for _, staff := range staves {
		if _, ok := c.Mapping[score.StaffID(staff)]; !ok {
			collectLyrics(c, staff)
			continue
		}
		detectReversed(c, staff)
		collectLyrics(c, staff)
		duplicateStaff(c, staff)
	}
	return nil
}

func correctLyrics(c *Context, corrector LyricCorrector) {
	if corrector == nil {
		return
	}
	fixed, ok, err := corrector.CorrectLyrics(c.Lyrics.Records())
	switch {
	case err != nil:
		c.Warnf(NoLyricCorrection, 0, 0, "%v", err)
	case !ok:
		log.Printf("No lyric correction available.")
	default:
		log.Printf("Using %d corrected lyrics.", len(fixed))
		c.Lyrics = NewLyricIndex(fixed)
	}
}

package processor

import (
	"fmt"
	"log"
	"sort"

	"github.com/divVerent/choirsplit/internal/score"
)

// WarningKind classifies non-fatal problems.
type WarningKind int

const (
	UnfixableMeasure WarningKind = iota
	UnmatchedLyric
	UnmatchedTie
	NoLyricCorrection
)

func (k WarningKind) String() string {
	switch k {
	case UnfixableMeasure:
		return "unfixable measure"
	case UnmatchedLyric:
		return "unmatched lyric"
	case UnmatchedTie:
		return "unmatched tie"
	case NoLyricCorrection:
		return "no lyric correction"
	}
	return fmt.Sprintf("WarningKind(%d)", int(k))
}

// Warning is a problem that left part of the score untouched.
// Staff is 0 for warnings about the whole score.
type Warning struct {
	Kind    WarningKind
	Staff   int
	Measure int // 0-based.
	Message string
}

func (w Warning) String() string {
	if w.Staff == 0 {
		return fmt.Sprintf("%v: %s", w.Kind, w.Message)
	}
	return fmt.Sprintf("%v: staff %d measure %d: %s", w.Kind, w.Staff, w.Measure+1, w.Message)
}

// Direction selects which line of a split staff to keep.
type Direction int

const (
	Both Direction = iota // Not split.
	Up
	Down
)

func (d Direction) String() string {
	switch d {
	case Up:
		return "up"
	case Down:
		return "down"
	}
	return "both"
}

// Context is the state of one transformation.
// Every Process call builds a fresh one.
type Context struct {
	Doc      *score.Document
	Config   *Config
	Resolver score.Resolver

	// Mapping maps each split staff id to the id of its duplicate.
	Mapping map[int]int
	// original maps a duplicate back to the split staff.
	original map[int]int

	// Reversed marks, per split staff and measure index, measures whose voice 0 is the lower line.
	Reversed map[int]map[int]bool

	Lyrics    *LyricIndex
	PartTypes []PartType
	Warnings  []Warning
}

// NewContext prepares a transformation of doc.
func NewContext(doc *score.Document, config *Config) *Context {
	if config == nil {
		config = &Config{}
	}
	return &Context{
		Doc:      doc,
		Config:   config,
		Resolver: doc.Resolver(config.Resolution),
		Mapping:  map[int]int{},
		original: map[int]int{},
		Reversed: map[int]map[int]bool{},
		Lyrics:   NewLyricIndex(nil),
	}
}

// Warnf records and logs a warning.
func (c *Context) Warnf(kind WarningKind, staff, measure int, format string, args ...any) {
	w := Warning{
		Kind:    kind,
		Staff:   staff,
		Measure: measure,
		Message: fmt.Sprintf(format, args...),
	}
	log.Printf("Warning: %v.", w)
	c.Warnings = append(c.Warnings, w)
}

func (c *Context) addMapping(orig, dup int) {
	c.Mapping[orig] = dup
	c.original[dup] = orig
}

// Original returns the staff id a staff was split from, or id itself.
func (c *Context) Original(id int) int {
	if o, ok := c.original[id]; ok {
		return o
	}
	return id
}

// Direction returns which line the staff keeps.
func (c *Context) Direction(id int) Direction {
	if _, ok := c.Mapping[id]; ok {
		return Up
	}
	if _, ok := c.original[id]; ok {
		return Down
	}
	return Both
}

// IsReversed reports whether voice 0 is the lower line in the given measure of a staff or its duplicate.
func (c *Context) IsReversed(staff, measure int) bool {
	return c.Reversed[c.Original(staff)][measure]
}

// SplitStaves returns the split staff ids in ascending order.
func (c *Context) SplitStaves() []int {
	ids := make([]int, 0, len(c.Mapping))
	for id := range c.Mapping {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// logMapping prints the staff mapping.
func (c *Context) logMapping() {
	for _, id := range c.SplitStaves() {
		log.Printf("Staff %d: split into %d (up) and %d (down).", id, id, c.Mapping[id])
	}
}

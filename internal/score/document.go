// Package score loads, walks and edits MuseScore mscx documents.
package score

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/antchfx/xmlquery"
)

// Document is one parsed mscx file.
type Document struct {
	Root *xmlquery.Node
}

// Parse reads an mscx document.
// Whitespace between elements is dropped so that Write can re-indent.
func Parse(r io.Reader) (*Document, error) {
	root, err := xmlquery.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parsing mscx: %w", err)
	}
	stripWhitespace(root)
	return &Document{Root: root}, nil
}

// ParseString is Parse for in-memory documents.
func ParseString(s string) (*Document, error) {
	return Parse(strings.NewReader(s))
}

// ReadFile parses the named mscx file.
func ReadFile(name string) (*Document, error) {
	data, err := os.ReadFile(name)
	if err != nil {
		return nil, err
	}
	doc, err := Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%v: %w", name, err)
	}
	return doc, nil
}

// Write serializes the document with two-space indentation.
func (d *Document) Write(w io.Writer) error {
	return d.Root.WriteWithOptions(w, xmlquery.WithIndentation("  "), xmlquery.WithEmptyTagSupport())
}

// String returns the serialized document.
func (d *Document) String() string {
	var b strings.Builder
	_ = d.Write(&b)
	return b.String()
}

// WriteFile writes the document to the named file.
func (d *Document) WriteFile(name string) (err error) {
	f, err := os.Create(name)
	if err != nil {
		return fmt.Errorf("could not create %v: %w", name, err)
	}
	defer func() {
		closeErr := f.Close()
		if closeErr != nil && err == nil {
			err = closeErr
		}
	}()
	err = d.Write(f)
	if err != nil {
		return err
	}
	_, err = io.WriteString(f, "\n")
	return err
}

// Clone returns an independent deep copy.
func (d *Document) Clone() *Document {
	return &Document{Root: Clone(d.Root)}
}

// Score returns the Score element.
func (d *Document) Score() (*xmlquery.Node, error) {
	s := SelectOne(d.Root, "/museScore/Score")
	if s == nil {
		s = SelectOne(d.Root, "//Score")
	}
	if s == nil {
		return nil, &StructuralError{Path: "museScore/Score"}
	}
	return s, nil
}

// Parts returns the Part elements of the score.
func (d *Document) Parts() ([]*xmlquery.Node, error) {
	s, err := d.Score()
	if err != nil {
		return nil, err
	}
	parts := Elements(s, "Part")
	if len(parts) == 0 {
		return nil, &StructuralError{Path: "museScore/Score/Part"}
	}
	return parts, nil
}

// Staves returns the content-bearing Staff elements of the score, i.e. not the Part stubs.
func (d *Document) Staves() ([]*xmlquery.Node, error) {
	s, err := d.Score()
	if err != nil {
		return nil, err
	}
	staves := Elements(s, "Staff")
	if len(staves) == 0 {
		return nil, &StructuralError{Path: "museScore/Score/Staff"}
	}
	return staves, nil
}

// Staff returns the content Staff with the given id, or nil.
func (d *Document) Staff(id int) *xmlquery.Node {
	staves, err := d.Staves()
	if err != nil {
		return nil
	}
	for _, s := range staves {
		if StaffID(s) == id {
			return s
		}
	}
	return nil
}

// Division returns the ticks-per-quarter value of the document, or 0 if absent.
func (d *Document) Division() int {
	s, err := d.Score()
	if err != nil {
		return 0
	}
	return Int(s, "Division", 0)
}

// Resolver returns the duration resolver for this document.
// A positive whole overrides the document's own division.
func (d *Document) Resolver(whole int) Resolver {
	if whole > 0 {
		return Resolver{Whole: whole}
	}
	return NewResolver(d.Division())
}

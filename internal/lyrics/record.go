// Package lyrics converts first-verse lyrics between scores and the text, JSON and TSV forms.
package lyrics

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"sort"
	"strconv"

	"github.com/divVerent/choirsplit/internal/score"
)

// Record is one lyric at a time position, as dumped for correction.
type Record struct {
	Staff    int
	Measure  int // 0-based.
	Voice    int
	Time     int
	Text     string
	Syllabic string
	Verse    string
}

// Lyric returns the lyric content of the record.
func (r Record) Lyric() score.Lyric {
	return score.Lyric{
		Syllabic: r.Syllabic,
		Text:     r.Text,
		Verse:    r.Verse,
	}
}

// tsvHeader are the column names of the position dump.
var tsvHeader = []string{"staff_id", "measure_index", "voice_index", "time_pos", "text", "syllabic", "no"}

// SortRecords orders records by staff, measure and time, keeping the order of equal positions.
func SortRecords(recs []Record) {
	sort.SliceStable(recs, func(i, j int) bool {
		a, b := recs[i], recs[j]
		if a.Staff != b.Staff {
			return a.Staff < b.Staff
		}
		if a.Measure != b.Measure {
			return a.Measure < b.Measure
		}
		return a.Time < b.Time
	})
}

// WriteTSV writes records as a tab separated table with a header row.
func WriteTSV(w io.Writer, recs []Record) error {
	cw := csv.NewWriter(w)
	cw.Comma = '\t'
	if err := cw.Write(tsvHeader); err != nil {
		return fmt.Errorf("could not write TSV header: %w", err)
	}
	for _, r := range recs {
		err := cw.Write([]string{
			strconv.Itoa(r.Staff),
			strconv.Itoa(r.Measure),
			strconv.Itoa(r.Voice),
			strconv.Itoa(r.Time),
			r.Text,
			r.Syllabic,
			r.Verse,
		})
		if err != nil {
			return fmt.Errorf("could not write TSV row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadTSV reads a table written by WriteTSV. Columns are found by header name.
// Rows that cannot be parsed are skipped.
func ReadTSV(r io.Reader) ([]Record, error) {
	cr := csv.NewReader(r)
	cr.Comma = '\t'
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("could not read TSV header: %w", err)
	}
	col := map[string]int{}
	for i, h := range header {
		col[h] = i
	}
	for _, h := range tsvHeader[:4] {
		if _, ok := col[h]; !ok {
			return nil, fmt.Errorf("TSV header lacks column %q", h)
		}
	}
	field := func(row []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}
	var recs []Record
	for line := 2; ; line++ {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		var parseErr *csv.ParseError
		if errors.As(err, &parseErr) {
			log.Printf("Skipping TSV line %d: %v.", line, err)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("could not read TSV line %d: %w", line, err)
		}
		var nums [4]int
		bad := false
		for i, h := range tsvHeader[:4] {
			nums[i], err = strconv.Atoi(field(row, h))
			if err != nil {
				log.Printf("Skipping TSV line %d: bad %s: %v.", line, h, err)
				bad = true
				break
			}
		}
		if bad {
			continue
		}
		syllabic := field(row, "syllabic")
		if syllabic == "" {
			syllabic = score.Single
		}
		recs = append(recs, Record{
			Staff:    nums[0],
			Measure:  nums[1],
			Voice:    nums[2],
			Time:     nums[3],
			Text:     Normalize(field(row, "text")),
			Syllabic: syllabic,
			Verse:    field(row, "no"),
		})
	}
	return recs, nil
}

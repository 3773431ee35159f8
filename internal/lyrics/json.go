package lyrics

import (
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"strconv"

	"github.com/divVerent/choirsplit/internal/score"
)

const measureStartKey = "measure_start"

// jsonLine is one lyric line of one part, starting at a measure.
type jsonLine struct {
	start  int
	tokens []string
}

// parseJSON reads an array of {"measure_start": N, "<label>": "<line>", ...} records.
// The labels are taken from the first record.
func parseJSON(data []byte) (map[string][]jsonLine, error) {
	var rows []map[string]json.RawMessage
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("could not parse lyric JSON: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	if _, ok := rows[0][measureStartKey]; !ok {
		log.Printf("Lyric JSON lacks %s; ignoring it.", measureStartKey)
		return nil, nil
	}
	out := map[string][]jsonLine{}
	for label := range rows[0] {
		if label == measureStartKey {
			continue
		}
		var lines []jsonLine
		for i, row := range rows {
			raw, ok := row[measureStartKey]
			if !ok {
				continue
			}
			var start int
			if err := json.Unmarshal(raw, &start); err != nil {
				log.Printf("Lyric JSON record %d: bad %s: %v.", i, measureStartKey, err)
				continue
			}
			var text string
			if raw, ok := row[label]; ok {
				// Non-string values count as an empty line.
				_ = json.Unmarshal(raw, &text)
			}
			lines = append(lines, jsonLine{start: start, tokens: SplitLine(text)})
		}
		sort.SliceStable(lines, func(i, j int) bool {
			return lines[i].start < lines[j].start
		})
		out[label] = lines
	}
	return out, nil
}

// resolveLabel maps a part label to a staff id. Numeric labels are staff ids.
func resolveLabel(label string, partToStaff map[string]int) (int, bool) {
	if id, err := strconv.Atoi(label); err == nil {
		return id, true
	}
	id, ok := partToStaff[label]
	return id, ok
}

// distribute spreads the syllables of each line over the measures from its start to the next
// line's start, filling each measure's eligible chords in turn.
func distribute(staff int, lines []jsonLine, counts map[int]int, out ByMeasure) {
	last := 0
	for m := range counts {
		last = max(last, m)
	}
	open := false
	for i, line := range lines {
		end := last + 1
		if i+1 < len(lines) {
			end = lines[i+1].start
		}
		syls := TokensToSyllables(line.tokens, open)
		open = !EndsWord(line.tokens)
		used := 0
		for m := line.start; m < end && used < len(syls); m++ {
			n := counts[m]
			if n <= 0 {
				continue
			}
			chunk := syls[used:min(used+n, len(syls))]
			used += len(chunk)
			out.set(m, staff, SyllablesToTokens(chunk))
		}
		if used < len(syls) {
			log.Printf("Staff %d: lyric line at measure %d has %d syllables too many.", staff, line.start, len(syls)-used)
		}
	}
}

// splitStaves duplicates the lines of each listed input staff onto the two staves it was split into.
// The i-th listed staff s becomes s+i and s+i+1.
func splitStaves(b ByMeasure, split []int) ByMeasure {
	if len(split) == 0 {
		return b
	}
	index := map[int]int{}
	for i, s := range split {
		if _, ok := index[s]; !ok {
			index[s] = i
		}
	}
	out := ByMeasure{}
	for m, staves := range b {
		for s, tokens := range staves {
			i, ok := index[s]
			if !ok {
				out.set(m, s, tokens)
				continue
			}
			out.set(m, s+i, tokens)
			out.set(m, s+i+1, append([]string(nil), tokens...))
		}
	}
	return out
}

// ParseJSON turns the array form into token lines, using the eligible chord counts of doc.
func ParseJSON(doc *score.Document, data []byte, partToStaff map[string]int, split []int) (ByMeasure, error) {
	if err := AddRestsToEmptyMeasures(doc); err != nil {
		return nil, err
	}
	parts, err := parseJSON(data)
	if err != nil {
		return nil, err
	}
	counts, err := EligibleCounts(doc)
	if err != nil {
		return nil, err
	}
	labels := make([]string, 0, len(parts))
	for label := range parts {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	out := ByMeasure{}
	for _, label := range labels {
		staff, ok := resolveLabel(label, partToStaff)
		if !ok {
			log.Printf("Lyric JSON: unknown part %q.", label)
			continue
		}
		distribute(staff, parts[label], counts[staff], out)
	}
	return splitStaves(out, split), nil
}

// ImportJSON applies lyrics in the array form to the document.
func ImportJSON(doc *score.Document, data []byte, partToStaff map[string]int, split []int) error {
	b, err := ParseJSON(doc, data, partToStaff, split)
	if err != nil {
		return err
	}
	return Import(doc, b)
}

package table

// records.go turns the raw string records produced by the CSV and spreadsheet
// decoders into a typed Table.
//
// The rules mirror what spreadsheet users expect from a data-frame reader:
//   - the first record is the header
//   - empty header cells become "Unnamed: <index>"
//   - repeated header names get ".1", ".2", ... suffixes
//   - well-known missing markers (NA, NaN, null, ...) are absent values
//   - a column is numeric when all of its present values parse as numbers

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ErrNoHeader is returned when there is no header record to build columns from.
var ErrNoHeader = errors.New("empty file: no columns to parse")

// ErrRaggedRow is returned when a data record has more fields than the header.
var ErrRaggedRow = errors.New("row has more fields than the header")

// numericRegex validates that a string is a plain decimal or scientific number.
var numericRegex = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

// missingMarkers are the cell texts read as absent values.
var missingMarkers = map[string]bool{
	"":         true,
	"#N/A":     true,
	"#N/A N/A": true,
	"#NA":      true,
	"-1.#IND":  true,
	"-1.#QNAN": true,
	"-NaN":     true,
	"-nan":     true,
	"1.#IND":   true,
	"1.#QNAN":  true,
	"<NA>":     true,
	"N/A":      true,
	"NA":       true,
	"NULL":     true,
	"NaN":      true,
	"None":     true,
	"n/a":      true,
	"nan":      true,
	"null":     true,
}

// IsMissing reports whether a raw cell reads as an absent value.
func IsMissing(s string) bool {
	return missingMarkers[strings.TrimSpace(s)]
}

// ParseNumber parses a raw cell as a number.
// Returns false for anything that is not a plain decimal or scientific literal.
func ParseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if !numericRegex.MatchString(s) {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// HeaderNames normalizes a header record into unique column names.
func HeaderNames(header []string) []string {
	names := make([]string, len(header))
	used := make(map[string]bool, len(header))
	suffix := make(map[string]int)
	for i, h := range header {
		name := strings.TrimSpace(h)
		if name == "" {
			name = fmt.Sprintf("Unnamed: %d", i)
		}
		if used[name] {
			base := name
			for used[name] {
				suffix[base]++
				name = fmt.Sprintf("%s.%d", base, suffix[base])
			}
		}
		used[name] = true
		names[i] = name
	}
	return names
}

// FromRecords builds a Table from a header record and data records.
// Short records are padded with absent values; a record longer than the header
// is rejected with ErrRaggedRow.
func FromRecords(header []string, records [][]string) (*Table, error) {
	if len(header) == 0 {
		return nil, ErrNoHeader
	}

	names := HeaderNames(header)
	columns := make([]Column, len(names))
	for i, name := range names {
		columns[i] = Column{Name: name, Values: make([]Value, len(records))}
	}

	for r, rec := range records {
		if len(rec) > len(names) {
			return nil, fmt.Errorf("%w: line %d has %d fields, header has %d",
				ErrRaggedRow, r+2, len(rec), len(names))
		}
		for c := range columns {
			if c >= len(rec) || IsMissing(rec[c]) {
				columns[c].Values[r] = Absent
				continue
			}
			columns[c].Values[r] = Value{Text: rec[c], Present: true}
		}
	}

	for i := range columns {
		inferType(&columns[i])
	}

	return &Table{columns: columns, rows: len(records)}, nil
}

// inferType marks a column numeric when every present value parses, and fills
// in the parsed numbers.
func inferType(c *Column) {
	nums := make([]float64, len(c.Values))
	for r, v := range c.Values {
		if !v.Present {
			continue
		}
		f, ok := ParseNumber(v.Text)
		if !ok {
			c.Type = Text
			return
		}
		nums[r] = f
	}
	c.Type = Numeric
	for r := range c.Values {
		if c.Values[r].Present {
			c.Values[r].Number = nums[r]
		}
	}
}

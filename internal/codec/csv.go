package codec

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/JonMunkholm/DataSweeper/internal/table"
)

// utf8Reader strips a leading UTF-8 BOM (common in files saved by Excel on
// Windows) and replaces invalid byte sequences with U+FFFD.
func utf8Reader(r io.Reader) io.Reader {
	return transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
}

// DecodeCSV parses comma-separated text. The first record is the header.
func DecodeCSV(r io.Reader) (*table.Table, error) {
	reader := csv.NewReader(utf8Reader(r))
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %w", ErrParse, table.ErrNoHeader)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: invalid csv: %w", ErrParse, err)
	}

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: invalid csv: %w", ErrParse, err)
	}

	t, err := table.FromRecords(header, records)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid csv: %w", ErrParse, err)
	}
	return t, nil
}

// EncodeCSV writes t as comma-separated text with a header row and no index
// column. Absent values are written as empty fields.
func EncodeCSV(w io.Writer, t *table.Table) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(t.Names()); err != nil {
		return err
	}

	if t.NumColumns() > 0 {
		record := make([]string, t.NumColumns())
		for r := 0; r < t.NumRows(); r++ {
			for i, v := range t.Row(r) {
				record[i] = ""
				if v.Present {
					record[i] = v.Text
				}
			}
			if err := cw.Write(record); err != nil {
				return err
			}
		}
	}

	cw.Flush()
	return cw.Error()
}

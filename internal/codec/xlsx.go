package codec

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/JonMunkholm/DataSweeper/internal/table"
)

// SheetName is the name of the single sheet written by EncodeExcel.
const SheetName = "Sheet1"

// DecodeExcel reads the first sheet of an .xlsx workbook. The first row is the
// header; rows are padded to the widest row in the sheet. Date cells are read
// as ISO text and boolean cells as TRUE or FALSE.
func DecodeExcel(r io.Reader) (*table.Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid spreadsheet: %w", ErrParse, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: invalid spreadsheet: workbook has no sheets", ErrParse)
	}

	// Raw values keep numbers unformatted so they survive a round trip.
	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("%w: invalid spreadsheet: read sheet %q: %w", ErrParse, sheets[0], err)
	}

	width := 0
	for _, row := range rows {
		width = max(width, len(row))
	}
	if width == 0 {
		return nil, fmt.Errorf("%w: %w", ErrParse, table.ErrNoHeader)
	}

	cells := newCellReader(f, sheets[0])
	for i := 1; i < len(rows); i++ {
		for j, raw := range rows[i] {
			rows[i][j] = cells.value(i, j, raw)
		}
	}

	header := make([]string, width)
	copy(header, rows[0])

	t, err := table.FromRecords(header, rows[1:])
	if err != nil {
		return nil, fmt.Errorf("%w: invalid spreadsheet: %w", ErrParse, err)
	}
	return t, nil
}

// cellReader recovers the cell kinds that raw values flatten into numbers:
// booleans read as 1/0 and dates as serial day counts.
type cellReader struct {
	f         *excelize.File
	sheet     string
	date1904  bool
	dateStyle map[int]bool
}

func newCellReader(f *excelize.File, sheet string) *cellReader {
	cr := &cellReader{f: f, sheet: sheet, dateStyle: map[int]bool{}}
	if props, err := f.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		cr.date1904 = *props.Date1904
	}
	return cr
}

// value returns the text of the cell at zero-based row and col. Booleans
// become TRUE or FALSE and date cells their ISO form; other cells keep raw.
func (cr *cellReader) value(row, col int, raw string) string {
	serial, ok := table.ParseNumber(raw)
	if !ok {
		return raw
	}
	cell, err := excelize.CoordinatesToCellName(col+1, row+1)
	if err != nil {
		return raw
	}

	if typ, err := cr.f.GetCellType(cr.sheet, cell); err == nil && typ == excelize.CellTypeBool {
		if serial != 0 {
			return "TRUE"
		}
		return "FALSE"
	}

	if !cr.isDateCell(cell) {
		return raw
	}
	t, err := excelize.ExcelDateToTime(serial, cr.date1904)
	if err != nil {
		return raw
	}
	return formatDate(t.Round(time.Second), serial)
}

func (cr *cellReader) isDateCell(cell string) bool {
	id, err := cr.f.GetCellStyle(cr.sheet, cell)
	if err != nil || id == 0 {
		return false
	}
	if isDate, ok := cr.dateStyle[id]; ok {
		return isDate
	}

	isDate := false
	if style, err := cr.f.GetStyle(id); err == nil {
		isDate = isDateNumFmt(style.NumFmt)
		if style.CustomNumFmt != nil {
			isDate = isDateFormatCode(*style.CustomNumFmt)
		}
	}
	cr.dateStyle[id] = isDate
	return isDate
}

// isDateNumFmt reports whether a built-in number format id shows a date or time.
func isDateNumFmt(id int) bool {
	switch {
	case id >= 14 && id <= 22,
		id >= 27 && id <= 36,
		id >= 45 && id <= 47,
		id >= 50 && id <= 58:
		return true
	}
	return false
}

// isDateFormatCode reports whether a custom number format contains a date or
// time token outside quoted text, escapes and bracketed modifiers.
func isDateFormatCode(code string) bool {
	inQuote := false
	for i := 0; i < len(code); i++ {
		c := code[i]
		switch {
		case c == '"':
			inQuote = !inQuote
		case inQuote:
		case c == '\\', c == '_', c == '*':
			i++
		case c == '[':
			for i < len(code) && code[i] != ']' {
				i++
			}
		default:
			switch c | 0x20 {
			case 'y', 'm', 'd', 'h', 's':
				return true
			}
		}
	}
	return false
}

// formatDate renders a date cell: time of day only for serials below one,
// the date alone at midnight, otherwise both.
func formatDate(t time.Time, serial float64) string {
	switch {
	case serial < 1:
		return t.Format("15:04:05")
	case t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0:
		return t.Format("2006-01-02")
	default:
		return t.Format("2006-01-02 15:04:05")
	}
}

// EncodeExcel writes t to a single-sheet workbook with a header row and no
// index column. Numeric cells are written as numbers, absent cells are left
// empty.
func EncodeExcel(w io.Writer, t *table.Table) error {
	f := excelize.NewFile()
	defer f.Close()

	sw, err := f.NewStreamWriter(SheetName)
	if err != nil {
		return fmt.Errorf("open stream writer: %w", err)
	}

	if t.NumColumns() > 0 {
		header := make([]interface{}, t.NumColumns())
		for i, name := range t.Names() {
			header[i] = name
		}
		if err := sw.SetRow("A1", header); err != nil {
			return fmt.Errorf("write header: %w", err)
		}

		columns := t.Columns()
		for r := 0; r < t.NumRows(); r++ {
			cells := make([]interface{}, len(columns))
			for i, c := range columns {
				v := c.Values[r]
				switch {
				case !v.Present:
					cells[i] = nil
				case c.Type == table.Numeric:
					cells[i] = v.Number
				default:
					cells[i] = v.Text
				}
			}
			cell, err := excelize.CoordinatesToCellName(1, r+2)
			if err != nil {
				return err
			}
			if err := sw.SetRow(cell, cells); err != nil {
				return fmt.Errorf("write row %d: %w", r+1, err)
			}
		}
	}

	if err := sw.Flush(); err != nil {
		return fmt.Errorf("flush sheet: %w", err)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

package table

import "github.com/montanaflynn/stats"

// DefaultPreviewRows is the number of rows Head shows when asked for n <= 0.
const DefaultPreviewRows = 5

// ColumnInfo describes a column without its values.
type ColumnInfo struct {
	Name    string     `json:"name"`
	Type    ColumnType `json:"type"`
	Missing int        `json:"missing"`
}

// Preview is a read-only view of the first rows of a table.
// Cells hold float64 for numeric values, string for text and nil for absent.
type Preview struct {
	Columns   []ColumnInfo `json:"columns"`
	Rows      [][]any      `json:"rows"`
	TotalRows int          `json:"total_rows"`
}

// Describe returns the column metadata of t.
func Describe(t *Table) []ColumnInfo {
	infos := make([]ColumnInfo, len(t.columns))
	for i, c := range t.columns {
		missing := 0
		for _, v := range c.Values {
			if !v.Present {
				missing++
			}
		}
		infos[i] = ColumnInfo{Name: c.Name, Type: c.Type, Missing: missing}
	}
	return infos
}

// Head returns a preview of the first n rows.
func Head(t *Table, n int) Preview {
	if n <= 0 {
		n = DefaultPreviewRows
	}
	if n > t.rows {
		n = t.rows
	}

	p := Preview{Columns: Describe(t), Rows: make([][]any, n), TotalRows: t.rows}
	for r := 0; r < n; r++ {
		row := make([]any, len(t.columns))
		for i, c := range t.columns {
			row[i] = display(c.Type, c.Values[r])
		}
		p.Rows[r] = row
	}
	return p
}

func display(t ColumnType, v Value) any {
	switch {
	case !v.Present:
		return nil
	case t == Numeric:
		return v.Number
	default:
		return v.Text
	}
}

// DefaultChartSeries is the number of numeric columns BarChart plots.
const DefaultChartSeries = 2

// Series is one plotted column. Absent values are nil.
type Series struct {
	Name   string     `json:"name"`
	Values []*float64 `json:"values"`
}

// Chart is bar chart data indexed by row position.
type Chart struct {
	Rows   int      `json:"rows"`
	Series []Series `json:"series"`
	Min    float64  `json:"min"`
	Max    float64  `json:"max"`
}

// Empty reports whether the chart has nothing to plot.
func (c Chart) Empty() bool { return len(c.Series) == 0 || c.Rows == 0 }

// BarChart takes at most maxSeries numeric columns of t, in table order, and
// returns their values by row position. Min and Max span all plotted values
// and always include zero so bars have a baseline.
func BarChart(t *Table, maxSeries int) Chart {
	if maxSeries <= 0 {
		maxSeries = DefaultChartSeries
	}

	chart := Chart{Rows: t.rows}
	var all stats.Float64Data
	for _, c := range t.NumericColumns() {
		if len(chart.Series) == maxSeries {
			break
		}
		s := Series{Name: c.Name, Values: make([]*float64, len(c.Values))}
		for r, v := range c.Values {
			if !v.Present {
				continue
			}
			n := v.Number
			s.Values[r] = &n
			all = append(all, n)
		}
		chart.Series = append(chart.Series, s)
	}

	if lo, err := stats.Min(all); err == nil && lo < 0 {
		chart.Min = lo
	}
	if hi, err := stats.Max(all); err == nil && hi > 0 {
		chart.Max = hi
	}
	return chart
}

package table

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/montanaflynn/stats"
)

var (
	// ErrEmptyMean is returned by FillMissingMean under FillPolicyError when a
	// numeric column has no present values to average.
	ErrEmptyMean = errors.New("no numeric values to average")

	// ErrUnknownColumn is returned by Select for a name the table lacks.
	ErrUnknownColumn = errors.New("unknown column")

	// ErrDuplicateColumn is returned by Select when a name is requested twice.
	ErrDuplicateColumn = errors.New("duplicate column in selection")
)

// FillPolicy decides what FillMissingMean does with a numeric column that has
// no present values.
type FillPolicy string

const (
	// FillPolicyLeave keeps the column absent and reports it as skipped.
	FillPolicyLeave FillPolicy = "leave"
	// FillPolicyError fails the whole fill without changing anything.
	FillPolicyError FillPolicy = "error"
)

// ParseFillPolicy accepts "leave" or "error", case-insensitively.
func ParseFillPolicy(s string) (FillPolicy, error) {
	switch p := FillPolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case FillPolicyLeave, FillPolicyError:
		return p, nil
	default:
		return "", fmt.Errorf("unknown fill policy %q", s)
	}
}

// cellKey renders a value into a comparable string for its column type.
// Numbers compare by value so "1" and "1.0" are equal; absent equals absent.
func cellKey(t ColumnType, v Value) string {
	if !v.Present {
		return "\x00"
	}
	if t == Numeric {
		return "n" + strconv.FormatFloat(v.Number, 'g', -1, 64)
	}
	return "t" + v.Text
}

// rowKey joins the cell keys of row r with a separator that cannot be
// confused with quoted cell content.
func (t *Table) rowKey(r int) string {
	var b strings.Builder
	for _, c := range t.columns {
		b.WriteString(strconv.Quote(cellKey(c.Type, c.Values[r])))
		b.WriteByte('\x1f')
	}
	return b.String()
}

// DropDuplicates returns a table without rows that equal an earlier row across
// all columns, and the number of rows removed. Row order is preserved.
func DropDuplicates(t *Table) (*Table, int) {
	seen := make(map[string]struct{}, t.rows)
	keep := make([]int, 0, t.rows)
	for r := 0; r < t.rows; r++ {
		k := t.rowKey(r)
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		keep = append(keep, r)
	}
	return t.takeRows(keep), t.rows - len(keep)
}

// takeRows builds a new table from the given row indices.
func (t *Table) takeRows(rows []int) *Table {
	out := &Table{columns: make([]Column, len(t.columns)), rows: len(rows)}
	for i, c := range t.columns {
		values := make([]Value, len(rows))
		for j, r := range rows {
			values[j] = c.Values[r]
		}
		out.columns[i] = Column{Name: c.Name, Type: c.Type, Values: values}
	}
	return out
}

// FillReport describes what FillMissingMean changed.
type FillReport struct {
	Filled  map[string]int     `json:"filled"`            // Cells filled per column
	Means   map[string]float64 `json:"means"`             // Fill value per filled column
	Skipped []string           `json:"skipped,omitempty"` // Numeric columns with no present values
}

// Total returns the number of filled cells across all columns.
func (r FillReport) Total() int {
	n := 0
	for _, c := range r.Filled {
		n += c
	}
	return n
}

// FillMissingMean replaces absent values of every numeric column with the
// mean of that column's present values. Text columns are copied unchanged.
func FillMissingMean(t *Table, policy FillPolicy) (*Table, FillReport, error) {
	report := FillReport{Filled: map[string]int{}, Means: map[string]float64{}}
	out := &Table{columns: make([]Column, len(t.columns)), rows: t.rows}

	for i, c := range t.columns {
		values := make([]Value, len(c.Values))
		copy(values, c.Values)
		out.columns[i] = Column{Name: c.Name, Type: c.Type, Values: values}

		if c.Type != Numeric {
			continue
		}

		present := make(stats.Float64Data, 0, len(values))
		missing := 0
		for _, v := range values {
			if v.Present {
				present = append(present, v.Number)
			} else {
				missing++
			}
		}
		if missing == 0 {
			continue
		}

		mean, err := stats.Mean(present)
		if err != nil || math.IsNaN(mean) {
			if policy == FillPolicyError {
				return nil, FillReport{}, fmt.Errorf("fill column %q: %w", c.Name, ErrEmptyMean)
			}
			report.Skipped = append(report.Skipped, c.Name)
			continue
		}

		fill := NumberValue(mean)
		for r := range values {
			if !values[r].Present {
				values[r] = fill
			}
		}
		report.Filled[c.Name] = missing
		report.Means[c.Name] = mean
	}

	return out, report, nil
}

// Select returns a table holding exactly the named columns in the given order.
// An empty selection yields a table with no columns.
func Select(t *Table, names []string) (*Table, error) {
	out := &Table{columns: make([]Column, 0, len(names)), rows: t.rows}
	picked := make(map[string]bool, len(names))
	for _, name := range names {
		if picked[name] {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateColumn, name)
		}
		idx := t.Index(name)
		if idx < 0 {
			return nil, fmt.Errorf("%w: %q", ErrUnknownColumn, name)
		}
		picked[name] = true
		out.columns = append(out.columns, t.columns[idx])
	}
	return out, nil
}

package templates

import (
	"context"
	"io"
	"strconv"

	"github.com/a-h/templ"

	"github.com/JonMunkholm/DataSweeper/internal/table"
)

const (
	chartWidth  = 720.0
	chartHeight = 260.0
	chartPad    = 32.0
)

var seriesColors = []string{"#2563eb", "#f59e0b", "#16a34a", "#dc2626"}

// BarChart renders grouped bars, one group per row, as inline SVG.
// Absent values leave a gap.
func BarChart(c table.Chart) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := newWriter(ctx, w)
		if c.Empty() {
			h.raw(`<p class="muted">No numeric columns to plot.</p>`)
			return h.err
		}

		span := c.Max - c.Min
		if span == 0 {
			span = 1
		}
		plotW := chartWidth - 2*chartPad
		plotH := chartHeight - 2*chartPad
		y := func(v float64) float64 { return chartPad + (c.Max-v)/span*plotH }
		groupW := plotW / float64(c.Rows)
		barW := groupW / float64(len(c.Series)+1)

		h.raw(`<svg role="img" viewBox="0 0 `, num(chartWidth), ` `, num(chartHeight),
			`" width="100%" xmlns="http://www.w3.org/2000/svg">`)

		zero := y(0)
		h.raw(`<line x1="`, num(chartPad), `" x2="`, num(chartWidth-chartPad),
			`" y1="`, num(zero), `" y2="`, num(zero), `" stroke="#9ca3af"/>`)
		h.raw(`<text x="2" y="`, num(chartPad), `" font-size="10">`)
		h.text(num(c.Max))
		h.raw(`</text><text x="2" y="`, num(chartHeight-chartPad), `" font-size="10">`)
		h.text(num(c.Min))
		h.raw(`</text>`)

		for si, s := range c.Series {
			color := seriesColors[si%len(seriesColors)]
			for r, v := range s.Values {
				if v == nil {
					continue
				}
				top, bottom := y(*v), zero
				if top > bottom {
					top, bottom = bottom, top
				}
				x := chartPad + float64(r)*groupW + float64(si)*barW + barW/2
				h.raw(`<rect x="`, num(x), `" y="`, num(top), `" width="`, num(barW),
					`" height="`, num(bottom-top), `" fill="`, color, `"><title>`)
				h.text(s.Name + " row " + strconv.Itoa(r) + ": " + num(*v))
				h.raw(`</title></rect>`)
			}
		}

		for si, s := range c.Series {
			lx := chartPad + float64(si)*140
			h.raw(`<rect x="`, num(lx), `" y="`, num(chartHeight-14), `" width="10" height="10" fill="`,
				seriesColors[si%len(seriesColors)], `"/><text x="`, num(lx+14), `" y="`, num(chartHeight-5),
				`" font-size="11">`)
			h.text(s.Name)
			h.raw(`</text>`)
		}

		h.raw(`</svg>`)
		return h.err
	})
}

func num(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }

package templates

import (
	"context"
	"io"
	"strconv"

	"github.com/a-h/templ"

	"github.com/JonMunkholm/DataSweeper/internal/codec"
	"github.com/JonMunkholm/DataSweeper/internal/core"
	"github.com/JonMunkholm/DataSweeper/internal/table"
)

// Panel is the per-file view: preview, cleaning controls, chart and export.
type Panel struct {
	Snapshot *core.Snapshot
	Chart    *table.Chart // nil when the chart is hidden
	Notice   string
}

// FilePanel renders one file's section.
func FilePanel(p Panel) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := newWriter(ctx, w)
		snap := p.Snapshot

		h.raw(`<section id="file-`)
		h.text(snap.ID)
		h.raw(`"><h2><a href="`, fileURL(snap.ID, ""), `">`)
		h.text(snap.FileName)
		h.raw(`</a></h2><p class="muted">`)
		h.text(strconv.Itoa(snap.Rows) + " rows, " +
			strconv.Itoa(len(snap.Selected)) + " of " + strconv.Itoa(len(snap.Columns)) + " columns, " +
			snap.Format.Label())
		h.raw(`</p>`)
		h.child(Notice(p.Notice))

		h.raw(`<h3>Clean</h3>`,
			`<form class="inline" method="post" action="`, fileURL(snap.ID, "/dedupe"), `">`,
			`<button type="submit">Remove duplicates</button></form>`,
			`<form class="inline" method="post" action="`, fileURL(snap.ID, "/fill"), `">`,
			`<button type="submit">Fill missing values</button></form>`)

		h.child(columnForm(snap))
		h.child(exportForm(snap.ID))

		h.raw(`<h3>Preview</h3>`)
		h.child(PreviewTable(snap.Preview))

		h.raw(`<h3>Chart</h3>`)
		if p.Chart == nil {
			h.raw(`<a href="`, fileURL(snap.ID, "?chart=1"), `">Show chart</a>`)
		} else {
			h.raw(`<a href="`, fileURL(snap.ID, ""), `">Hide chart</a>`)
			h.child(BarChart(*p.Chart))
		}

		if len(snap.Steps) > 0 {
			h.raw(`<h3>History</h3><ol class="steps">`)
			for _, st := range snap.Steps {
				h.raw(`<li>`)
				h.text(st.Action + ": " + st.Detail)
				h.raw(`</li>`)
			}
			h.raw(`</ol>`)
		}

		h.raw(`</section>`)
		return h.err
	})
}

// columnForm lists selected columns first, in selection order, then the rest.
func columnForm(snap *core.Snapshot) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := newWriter(ctx, w)

		selected := make(map[string]bool, len(snap.Selected))
		ordered := make([]string, 0, len(snap.Columns))
		for _, name := range snap.Selected {
			selected[name] = true
			ordered = append(ordered, name)
		}
		for _, c := range snap.Columns {
			if !selected[c.Name] {
				ordered = append(ordered, c.Name)
			}
		}

		h.raw(`<h3>Columns</h3><form method="post" action="`, fileURL(snap.ID, "/columns"), `">`)
		for _, name := range ordered {
			h.raw(`<label class="inline"><input type="checkbox" name="columns" value="`)
			h.text(name)
			h.raw(`"`)
			if selected[name] {
				h.raw(` checked`)
			}
			h.raw(`> `)
			h.text(name)
			h.raw(`</label> `)
		}
		h.raw(`<button type="submit">Apply</button></form>`)
		return h.err
	})
}

func exportForm(id string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := newWriter(ctx, w)
		h.raw(`<h3>Export</h3><form method="get" action="`, fileURL(id, "/download"), `">`)
		for i, f := range codec.Formats {
			h.raw(`<label class="inline"><input type="radio" name="format" value="`)
			h.text(string(f))
			h.raw(`"`)
			if i == 0 {
				h.raw(` checked`)
			}
			h.raw(`> `)
			h.text(f.Label())
			h.raw(`</label> `)
		}
		h.raw(`<button type="submit">Convert &amp; download</button></form>`)
		return h.err
	})
}

// PreviewTable renders the head of a table. Absent cells show as NaN.
func PreviewTable(p table.Preview) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := newWriter(ctx, w)
		if len(p.Columns) == 0 {
			h.raw(`<p class="muted">No columns selected.</p>`)
			return h.err
		}

		h.raw(`<table><thead><tr>`)
		for _, c := range p.Columns {
			h.raw(`<th>`)
			h.text(c.Name)
			h.raw(`<br><small>`)
			h.text(c.Type.String())
			if c.Missing > 0 {
				h.text(", " + strconv.Itoa(c.Missing) + " missing")
			}
			h.raw(`</small></th>`)
		}
		h.raw(`</tr></thead><tbody>`)
		for _, row := range p.Rows {
			h.raw(`<tr>`)
			for _, cell := range row {
				switch v := cell.(type) {
				case nil:
					h.raw(`<td class="absent">NaN</td>`)
				case float64:
					h.raw(`<td>`)
					h.text(strconv.FormatFloat(v, 'f', -1, 64))
					h.raw(`</td>`)
				case string:
					h.raw(`<td>`)
					h.text(v)
					h.raw(`</td>`)
				}
			}
			h.raw(`</tr>`)
		}
		h.raw(`</tbody></table><p class="muted">Showing `)
		h.text(strconv.Itoa(len(p.Rows)) + " of " + strconv.Itoa(p.TotalRows) + " rows.")
		h.raw(`</p>`)
		return h.err
	})
}

package templates

import (
	"context"
	"io"
	"strconv"

	"github.com/a-h/templ"
)

const styles = `
body{font-family:system-ui,sans-serif;margin:0;background:#f5f6f8;color:#1f2430}
header{background:#1f2430;color:#fff;padding:12px 24px}
header a{color:#fff;text-decoration:none;font-weight:600}
main{max-width:1100px;margin:0 auto;padding:24px}
section{background:#fff;border:1px solid #dde1e7;border-radius:6px;padding:16px;margin-bottom:16px}
table{border-collapse:collapse;font-size:13px;width:100%;overflow-x:auto;display:block}
th,td{border:1px solid #dde1e7;padding:4px 8px;text-align:left;white-space:nowrap}
th small{color:#6b7280;font-weight:normal}
td.absent{color:#9ca3af;font-style:italic}
form.inline{display:inline-block;margin:4px 8px 4px 0}
button{padding:6px 12px;border:1px solid #1f2430;background:#fff;border-radius:4px;cursor:pointer}
.alert{border-left:4px solid #dc2626;background:#fef2f2;padding:8px 12px;margin:8px 0}
.notice{border-left:4px solid #16a34a;background:#f0fdf4;padding:8px 12px;margin:8px 0}
.muted{color:#6b7280;font-size:13px}
ol.steps{font-size:13px;color:#374151}
`

// Page renders a complete document with the given body components.
func Page(title string, body ...templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := newWriter(ctx, w)
		h.raw(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`,
			`<meta name="viewport" content="width=device-width, initial-scale=1">`,
			`<title>`)
		h.text(title)
		h.raw(`</title><style>`, styles, `</style></head><body>`,
			`<header><a href="/">DataSweeper</a></header><main>`)
		for _, c := range body {
			h.child(c)
		}
		h.raw(`</main></body></html>`)
		return h.err
	})
}

// UploadForm renders the multi-file upload form.
func UploadForm(maxFiles int, maxBytes int64) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := newWriter(ctx, w)
		h.raw(`<section><h2>Upload files</h2>`,
			`<form method="post" action="/files" enctype="multipart/form-data">`,
			`<input type="file" name="files" multiple accept=".csv,.xlsx"> `,
			`<button type="submit">Upload</button></form>`,
			`<p class="muted">CSV or Excel (.xlsx), up to `)
		h.text(strconv.Itoa(maxFiles))
		h.raw(` files and `)
		h.text(humanBytes(maxBytes))
		h.raw(` per upload.</p></section>`)
		return h.err
	})
}

// ErrorAlert renders a user-facing error with its support code.
func ErrorAlert(message, action, code string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := newWriter(ctx, w)
		h.raw(`<div class="alert" role="alert"><strong>`)
		h.text(message)
		h.raw(`</strong>`)
		if action != "" {
			h.raw(` `)
			h.text(action)
		}
		if code != "" {
			h.raw(` <span class="muted">(Code: `)
			h.text(code)
			h.raw(`)</span>`)
		}
		h.raw(`</div>`)
		return h.err
	})
}

// FileError renders a rejected file of a batch.
func FileError(fileName, message, action, code string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := newWriter(ctx, w)
		h.raw(`<section><h2>`)
		h.text(fileName)
		h.raw(`</h2>`)
		h.child(ErrorAlert(message, action, code))
		h.raw(`</section>`)
		return h.err
	})
}

// Notice renders a confirmation message.
func Notice(text string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if text == "" {
			return nil
		}
		h := newWriter(ctx, w)
		h.raw(`<div class="notice" role="status">`)
		h.text(text)
		h.raw(`</div>`)
		return h.err
	})
}

func humanBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return strconv.FormatInt(n, 10) + " B"
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return strconv.FormatFloat(float64(n)/float64(div), 'f', 1, 64) + " " + string("KMGTPE"[exp]) + "B"
}

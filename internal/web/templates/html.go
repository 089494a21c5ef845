// Package templates holds the HTML views of the web UI as templ components.
package templates

import (
	"context"
	"io"
	"net/url"

	"github.com/a-h/templ"
)

// htmlWriter writes markup and keeps the first error.
type htmlWriter struct {
	ctx context.Context
	w   io.Writer
	err error
}

func newWriter(ctx context.Context, w io.Writer) *htmlWriter {
	return &htmlWriter{ctx: ctx, w: w}
}

// raw writes trusted markup.
func (h *htmlWriter) raw(parts ...string) {
	for _, s := range parts {
		if h.err != nil {
			return
		}
		_, h.err = io.WriteString(h.w, s)
	}
}

// text writes escaped text.
func (h *htmlWriter) text(s string) {
	h.raw(templ.EscapeString(s))
}

// child renders a nested component.
func (h *htmlWriter) child(c templ.Component) {
	if h.err != nil || c == nil {
		return
	}
	h.err = c.Render(h.ctx, h.w)
}

// fileURL builds an escaped path under /files/{id}.
func fileURL(id string, suffix string) string {
	return templ.EscapeString("/files/" + url.PathEscape(id) + suffix)
}

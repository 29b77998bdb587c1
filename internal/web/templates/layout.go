// Package templates renders the HTML pages and fragments served by the web
// package. Components are plain templ.Component values so they compose with
// templ's rendering and context handling.
package templates

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"
)

// htmlWriter writes markup and escaped text, keeping the first write error.
type htmlWriter struct {
	w   io.Writer
	err error
}

func (h *htmlWriter) raw(s string) {
	if h.err == nil {
		_, h.err = io.WriteString(h.w, s)
	}
}

func (h *htmlWriter) text(s string) {
	h.raw(templ.EscapeString(s))
}

func (h *htmlWriter) textf(format string, args ...any) {
	h.text(fmt.Sprintf(format, args...))
}

func (h *htmlWriter) component(ctx context.Context, c templ.Component) {
	if h.err == nil {
		h.err = c.Render(ctx, h.w)
	}
}

const styles = `body{font-family:system-ui,sans-serif;margin:2rem auto;max-width:60rem;color:#0b0c0c}
table{border-collapse:collapse;width:100%;margin:1rem 0}
th,td{border:1px solid #b1b4b6;padding:.3rem .5rem;text-align:left;vertical-align:top}
.error{color:#d4351c}
.banner{padding:1rem;margin:1rem 0;border-left:5px solid}
.banner.ok{border-color:#00703c}
.banner.bad{border-color:#d4351c}
.alert{padding:1rem;border:3px solid #d4351c}
form label{display:block;margin-top:.8rem}`

// Layout wraps body in the page skeleton.
func Layout(title string, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		h.raw(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8"><title>`)
		h.text(title)
		h.raw(`</title><style>`)
		h.raw(styles)
		h.raw(`</style></head><body><main>`)
		h.component(ctx, body)
		h.raw(`</main></body></html>`)
		return h.err
	})
}

// ErrorAlert renders a user-facing error fragment.
func ErrorAlert(message, action, code string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		h.raw(`<div class="alert" role="alert"><p class="error"><strong>`)
		h.text(message)
		h.raw(`</strong></p>`)
		if action != "" {
			h.raw(`<p>`)
			h.text(action)
			h.raw(`</p>`)
		}
		if code != "" {
			h.raw(`<p><small>Reference: `)
			h.text(code)
			h.raw(`</small></p>`)
		}
		h.raw(`</div>`)
		return h.err
	})
}

// UploadPage is the form for checking a table in the browser. The channel
// picks the endpoint the form posts to.
func UploadPage(channel string) templ.Component {
	return Layout("Check a recipient file", templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		h.raw(`<h1>Check a recipient file</h1><nav><p>`)
		for _, c := range []struct{ value, label string }{
			{"sms", "Text message"}, {"email", "Email"}, {"letter", "Letter"},
		} {
			if c.value == channel {
				h.raw(`<strong>`)
				h.text(c.label)
				h.raw(`</strong> `)
				continue
			}
			h.raw(`<a href="/?channel=`)
			h.text(c.value)
			h.raw(`">`)
			h.text(c.label)
			h.raw(`</a> `)
		}
		h.raw(`</p></nav><form method="post" enctype="multipart/form-data" action="`)
		h.text(string(templ.URL("/api/check/" + channel + "?format=html")))
		h.raw(`">`)
		if channel == "email" || channel == "letter" {
			h.raw(`<label>Subject <input type="text" name="subject"></label>`)
		}
		h.raw(`<label>Message <textarea name="content" rows="6" cols="60"></textarea></label>
<label>Service ID <input type="text" name="service_id"></label>
<label>Allow-list, one recipient per line <textarea name="allow_list" rows="3" cols="60"></textarea></label>
<label>Messages left today <input type="number" min="0" name="remaining_messages"></label>
<label>File <input type="file" name="file" accept=".csv,text/csv" required></label>
<p><button type="submit">Check file</button></p>
</form>`)
		return h.err
	}))
}

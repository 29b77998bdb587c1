package templates

import (
	"context"
	"io"
	"slices"
	"strings"

	"github.com/a-h/templ"

	"github.com/JonMunkholm/recipientcsv/internal/core"
	"github.com/JonMunkholm/recipientcsv/internal/recipient"
)

// ReportPage renders the result of checking one batch.
func ReportPage(s core.Summary, messages map[string]core.UserMessage) templ.Component {
	return Layout("Batch report", templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		h.raw(`<h1>Batch report</h1>`)
		h.component(ctx, reportBanner(s))
		h.component(ctx, batchErrors(s))
		h.component(ctx, errorCounts(s, messages))
		if len(s.ErrorSamples) > 0 {
			h.raw(`<h2>Rows with problems</h2>`)
			h.component(ctx, rowTable(s.Headers, s.ErrorSamples, true))
		}
		if len(s.DuplicateSamples) > 0 {
			h.raw(`<h2>Repeated recipients</h2><table><thead><tr><th>Recipient</th><th>First row</th><th>Repeated in row</th></tr></thead><tbody>`)
			for _, d := range s.DuplicateSamples {
				h.raw(`<tr><td>`)
				h.text(d.Contact)
				h.raw(`</td><td>`)
				h.textf("%d", d.FirstRow)
				h.raw(`</td><td>`)
				h.textf("%d", d.Row)
				h.raw(`</td></tr>`)
			}
			h.raw(`</tbody></table>`)
		}
		if len(s.InitialRows) > 0 {
			h.raw(`<h2>First rows</h2>`)
			h.component(ctx, rowTable(s.Headers, s.InitialRows, false))
		}
		h.raw(`<p><small>Batch `)
		h.text(s.BatchID.String())
		h.raw(`</small></p>`)
		return h.err
	}))
}

func reportBanner(s core.Summary) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		if s.HasErrors() {
			h.raw(`<div class="banner bad">`)
		} else {
			h.raw(`<div class="banner ok">`)
		}
		h.raw(`<p><strong>`)
		switch {
		case s.TimedOut:
			h.textf("Checking stopped after %d rows because it took too long", s.TotalRows)
		case !s.Complete:
			h.textf("The file could not be read to the end (%d rows read)", s.TotalRows)
		case s.HasErrors():
			h.textf("%d of %d %s need fixing", s.InvalidRows, s.TotalRows, plural(s.TotalRows, "row", "rows"))
		default:
			h.textf("%d %s ready to send by %s", s.ValidRows, plural(s.ValidRows, "recipient", "recipients"), s.Channel)
		}
		h.raw(`</strong></p>`)
		if len(s.ExtraColumns) > 0 {
			h.raw(`<p>Columns not used by the template: `)
			h.text(strings.Join(s.ExtraColumns, ", "))
			h.raw(`</p>`)
		}
		if len(s.DuplicateHeaders) > 0 {
			h.raw(`<p>Columns that appear more than once, values combined: `)
			h.text(strings.Join(s.DuplicateHeaders, ", "))
			h.raw(`</p>`)
		}
		if len(s.MissingOptional) > 0 {
			h.raw(`<p>Optional columns left blank: `)
			h.text(strings.Join(s.MissingOptional, ", "))
			h.raw(`</p>`)
		}
		h.raw(`</div>`)
		return h.err
	})
}

func batchErrors(s core.Summary) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if len(s.BatchErrors) == 0 {
			return nil
		}
		h := &htmlWriter{w: w}
		h.raw(`<h2>Problems with the file</h2><ul class="error">`)
		for _, e := range s.BatchErrors {
			h.raw(`<li>`)
			h.text(e.Error())
			h.raw(`</li>`)
		}
		h.raw(`</ul>`)
		return h.err
	})
}

func errorCounts(s core.Summary, messages map[string]core.UserMessage) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if len(s.ErrorCounts) == 0 {
			return nil
		}
		kinds := make([]recipient.Kind, 0, len(s.ErrorCounts))
		for k := range s.ErrorCounts {
			kinds = append(kinds, k)
		}
		slices.Sort(kinds)

		h := &htmlWriter{w: w}
		h.raw(`<h2>Problems by type</h2><table><thead><tr><th>Problem</th><th>Rows</th><th>What to do</th></tr></thead><tbody>`)
		for _, k := range kinds {
			msg, ok := messages[k.String()]
			if !ok {
				msg = core.UserMessage{Message: k.Message()}
			}
			h.raw(`<tr><td>`)
			h.text(msg.Message)
			h.raw(`</td><td>`)
			h.textf("%d", s.ErrorCounts[k])
			h.raw(`</td><td>`)
			h.text(msg.Action)
			h.raw(`</td></tr>`)
		}
		h.raw(`</tbody></table>`)
		return h.err
	})
}

// rowTable shows rows under the table's own headings, numbered by their
// record in the file so they match the spreadsheet.
func rowTable(headers []string, rows []core.RowReport, withErrors bool) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		h.raw(`<table><thead><tr><th>Row</th>`)
		for _, name := range headers {
			h.raw(`<th>`)
			h.text(name)
			h.raw(`</th>`)
		}
		if withErrors {
			h.raw(`<th>Problems</th>`)
		}
		h.raw(`</tr></thead><tbody>`)
		for _, row := range rows {
			h.raw(`<tr><td>`)
			h.textf("%d", row.Record)
			h.raw(`</td>`)
			for i := range headers {
				h.raw(`<td>`)
				if i < len(row.Values) {
					h.text(row.Values[i])
				}
				h.raw(`</td>`)
			}
			if withErrors {
				h.raw(`<td class="error">`)
				for i, e := range row.Errors {
					if i > 0 {
						h.raw(`<br>`)
					}
					h.text(e.Error())
				}
				h.raw(`</td>`)
			}
			h.raw(`</tr>`)
		}
		h.raw(`</tbody></table>`)
		return h.err
	})
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

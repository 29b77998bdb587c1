package core

// row.go holds the row model: one data record mapped onto the header.
//
// Values stay at their header position, so blank leading cells never shift
// later values onto the wrong column. Cells past the header width have no
// column and are dropped; a record shorter than the header reads as blanks.

import (
	"strings"

	"github.com/JonMunkholm/recipientcsv/internal/recipient"
	"github.com/JonMunkholm/recipientcsv/internal/recipient/postal"
)

// CleanCell strips surrounding and zero-width whitespace and unwraps the
// ="..." form spreadsheets use to keep leading zeros.
func CleanCell(s string) string {
	s = recipient.StripObscureWhitespace(s)
	if len(s) >= 3 && strings.HasPrefix(s, `="`) && strings.HasSuffix(s, `"`) {
		s = recipient.StripObscureWhitespace(s[2 : len(s)-1])
	}
	return s
}

// Row is one non-empty data record.
type Row struct {
	// Number is the 1-based position among non-empty data rows.
	Number int `json:"row"`

	// Record is the 1-based record number in the source, header included.
	Record int `json:"record"`

	cells  []string
	schema *Schema
}

// newRow maps a raw record onto the schema's header. It returns nil when
// every cell is blank.
func newRow(schema *Schema, record []string, number, recordNo int) *Row {
	width := schema.index.Len()
	r := &Row{
		Number: number,
		Record: recordNo,
		cells:  make([]string, width),
		schema: schema,
	}

	empty := true
	for i, v := range record {
		if i >= width {
			break
		}
		v = CleanCell(v)
		if v != "" {
			empty = false
		}
		r.cells[i] = v
	}
	if empty {
		return nil
	}
	return r
}

// Cells returns the cleaned values in header order.
func (r *Row) Cells() []string {
	return append([]string(nil), r.cells...)
}

// Get returns the value for a column name. A recipient column that appears
// more than once yields its last value. Any other repeated column yields its
// non-blank values joined by newlines. ok is false when no heading matches.
func (r *Row) Get(name string) (string, bool) {
	idx := r.schema.index
	if r.schema.IsRecipientColumn(name) {
		pos, ok := idx.Lookup(name)
		if !ok {
			return "", false
		}
		return r.cells[pos], true
	}

	positions := idx.Positions(name)
	switch len(positions) {
	case 0:
		return "", false
	case 1:
		return r.cells[positions[0]], true
	}

	var parts []string
	for _, pos := range positions {
		if v := r.cells[pos]; v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, "\n"), true
}

// Value returns Get's value, or "" when the column is absent.
func (r *Row) Value(name string) string {
	v, _ := r.Get(name)
	return v
}

// Recipient returns the raw contact value for SMS and email tables. ok is
// false for letters, which use Address, and when the column is absent.
func (r *Row) Recipient() (string, bool) {
	if r.schema.Channel == ChannelLetter {
		return "", false
	}
	return r.Get(r.schema.Channel.RecipientColumns()[0])
}

// Address parses the row's address columns.
func (r *Row) Address(policy postal.Policy) *postal.Address {
	return postal.FromPersonalisation(r.Get, policy)
}

// Personalisation returns each template placeholder's value keyed by the
// placeholder name as the template writes it. Missing columns read as "".
func (r *Row) Personalisation() map[string]string {
	out := make(map[string]string, len(r.schema.order))
	for _, p := range r.schema.order {
		out[p.Name] = r.Value(p.Name)
	}
	return out
}

// lookup resolves a placeholder name for Substitute. Every placeholder is
// known to the row so that missing optional columns expand to nothing.
func (r *Row) lookup(name string) (string, bool) {
	if v, ok := r.Get(name); ok {
		return v, true
	}
	return "", true
}

// columnName returns the heading to attribute an error in name's column to.
func (r *Row) columnName(name string) string {
	if raw, ok := r.schema.index.Raw(name); ok {
		return raw
	}
	return name
}

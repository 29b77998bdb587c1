package core

// reconcile.go matches a template's placeholders against a table's header.
//
// Reconciliation happens once per table, before any row is read. Extra
// columns are fine. Missing required placeholders and duplicated recipient
// columns are reported once for the whole table. A missing recipient column
// blocks every row.

import (
	"github.com/JonMunkholm/recipientcsv/internal/columns"
	"github.com/JonMunkholm/recipientcsv/internal/recipient"
	"github.com/JonMunkholm/recipientcsv/internal/recipient/postal"
)

// minLetterAddressColumns is how many address columns a letter table needs.
const minLetterAddressColumns = postal.MinLines

// Reconciliation is the outcome of matching placeholders to columns.
type Reconciliation struct {
	// MissingRequired lists required placeholders with no column.
	MissingRequired []string `json:"missing_required,omitempty"`

	// MissingOptional lists conditional placeholders with no column. Their
	// value defaults to empty.
	MissingOptional []string `json:"missing_optional,omitempty"`

	// ExtraColumns lists headings that are neither recipient columns nor
	// placeholders.
	ExtraColumns []string `json:"extra_columns,omitempty"`

	// MissingContactColumn is set when the table has no usable recipient
	// column for the channel.
	MissingContactColumn bool `json:"missing_contact_column,omitempty"`

	// DuplicateRecipientHeaders lists every raw heading of a recipient
	// column that appears more than once.
	DuplicateRecipientHeaders []string `json:"duplicate_recipient_headers,omitempty"`

	// DuplicateHeaders lists other headings that appear more than once,
	// spelt as they first appear. Their values are merged, so they never
	// block a row.
	DuplicateHeaders []string `json:"duplicate_headers,omitempty"`
}

// Blocking reports whether rows can be read but none may be accepted.
func (r Reconciliation) Blocking() bool {
	return r.MissingContactColumn || len(r.MissingRequired) > 0 || len(r.DuplicateRecipientHeaders) > 0
}

// Errors returns the table-level errors implied by the reconciliation.
func (r Reconciliation) Errors() []*recipient.Error {
	var errs []*recipient.Error
	if r.MissingContactColumn {
		errs = append(errs, recipient.New(recipient.RowMissingContactColumn))
	}
	for _, name := range r.MissingRequired {
		errs = append(errs, recipient.New(recipient.RowMissingRequiredPlaceholder).InColumn(name))
	}
	for _, h := range r.DuplicateRecipientHeaders {
		errs = append(errs, recipient.New(recipient.RowDuplicateColumnHeader).InColumn(h))
	}
	return errs
}

// Schema describes how a table's columns relate to a template.
type Schema struct {
	Channel Channel

	index        *columns.Index
	recipient    map[string]bool
	placeholders map[string]Placeholder
	order        []Placeholder
}

// Index returns the header index the schema was built from.
func (s *Schema) Index() *columns.Index { return s.index }

// IsRecipientColumn reports whether name holds contact data for the channel.
func (s *Schema) IsRecipientColumn(name string) bool {
	return s.recipient[columns.Key(name)]
}

// Placeholders returns the personalisation placeholders in template order.
// Recipient placeholders such as ((phone number)) are not included.
func (s *Schema) Placeholders() []Placeholder {
	return append([]Placeholder(nil), s.order...)
}

// Reconcile builds the schema for t over a table header and reports which
// placeholders are missing and which columns are extra.
func Reconcile(t *Template, idx *columns.Index) (*Schema, Reconciliation) {
	s := &Schema{
		Channel:      t.Channel,
		index:        idx,
		recipient:    make(map[string]bool),
		placeholders: make(map[string]Placeholder),
	}
	for _, c := range t.Channel.RecipientColumns() {
		s.recipient[columns.Key(c)] = true
	}

	var rec Reconciliation
	for _, p := range t.Placeholders() {
		k := p.Key()
		if s.recipient[k] {
			continue
		}
		s.placeholders[k] = p
		s.order = append(s.order, p)
		if idx.Has(k) {
			continue
		}
		if p.Optional {
			rec.MissingOptional = append(rec.MissingOptional, p.Name)
		} else {
			rec.MissingRequired = append(rec.MissingRequired, p.Name)
		}
	}

	for _, k := range idx.Keys() {
		if s.recipient[k] {
			continue
		}
		if _, ok := s.placeholders[k]; ok {
			continue
		}
		raw, _ := idx.Raw(k)
		rec.ExtraColumns = append(rec.ExtraColumns, raw)
	}

	rec.MissingContactColumn = !hasRecipientColumns(t.Channel, idx)
	rec.DuplicateRecipientHeaders = duplicateRecipientHeaders(s, idx)
	for _, h := range idx.Collisions() {
		if !s.recipient[columns.Key(h)] {
			rec.DuplicateHeaders = append(rec.DuplicateHeaders, h)
		}
	}
	return s, rec
}

func hasRecipientColumns(ch Channel, idx *columns.Index) bool {
	if ch != ChannelLetter {
		for _, c := range ch.RecipientColumns() {
			if !idx.Has(c) {
				return false
			}
		}
		return true
	}

	withPostcode := append(append([]string(nil), postal.AddressLineKeys...), postal.KeyPostcode)
	withLine7 := append(append([]string(nil), postal.AddressLineKeys...), postal.KeyAddressLine7)
	for _, set := range [][]string{withPostcode, withLine7} {
		n := 0
		for _, c := range set {
			if idx.Has(c) {
				n++
			}
		}
		if n >= minLetterAddressColumns {
			return true
		}
	}
	return false
}

func duplicateRecipientHeaders(s *Schema, idx *columns.Index) []string {
	var out []string
	for i, h := range idx.Headers() {
		k := idx.KeyAt(i)
		if s.recipient[k] && idx.Collided(k) {
			out = append(out, h)
		}
	}
	return out
}

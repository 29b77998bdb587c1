// Package columns maps CSV column headings and template placeholder names
// onto a shared canonical key.
//
// Two names refer to the same column when their keys are equal. A key is the
// name lower-cased with every whitespace rune, underscore and hyphen removed,
// so "Phone Number", "phone_number", "PHONE-NUMBER" and "phone\tnumber" all
// resolve to "phonenumber". Letter case and those separators are the only
// differences the rule ignores: "phone.number" is a distinct column.
package columns

import (
	"strings"
	"unicode"
)

// Key returns the canonical lookup key for a column or placeholder name.
func Key(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range strings.ToLower(name) {
		if r == '_' || r == '-' || unicode.IsSpace(r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Index is an insensitive lookup from column names to positions.
//
// Names that collide on the same key are recorded rather than rejected.
// Lookup returns the last position written for a key; Positions returns every
// one, in header order.
type Index struct {
	headers   []string
	keys      []string
	byKey     map[string][]int
	firstSeen []string
}

// NewIndex builds an index over a header row. Blank headings are kept as
// positions but never resolve by name.
func NewIndex(headers []string) *Index {
	idx := &Index{
		headers: make([]string, len(headers)),
		keys:    make([]string, len(headers)),
		byKey:   make(map[string][]int, len(headers)),
	}
	for i, h := range headers {
		idx.headers[i] = h
		k := Key(strings.TrimSpace(h))
		idx.keys[i] = k
		if k == "" {
			continue
		}
		if _, seen := idx.byKey[k]; !seen {
			idx.firstSeen = append(idx.firstSeen, k)
		}
		idx.byKey[k] = append(idx.byKey[k], i)
	}
	return idx
}

// Lookup returns the position stored for name. When several headings share
// the key, the last one wins.
func (idx *Index) Lookup(name string) (int, bool) {
	pos := idx.byKey[Key(name)]
	if len(pos) == 0 {
		return -1, false
	}
	return pos[len(pos)-1], true
}

// Has reports whether any heading resolves to name.
func (idx *Index) Has(name string) bool {
	return len(idx.byKey[Key(name)]) > 0
}

// Positions returns every position whose heading resolves to name.
func (idx *Index) Positions(name string) []int {
	return idx.byKey[Key(name)]
}

// Raw returns the heading as it appeared in the file for the first position
// that resolves to name.
func (idx *Index) Raw(name string) (string, bool) {
	pos := idx.byKey[Key(name)]
	if len(pos) == 0 {
		return "", false
	}
	return idx.headers[pos[0]], true
}

// KeyAt returns the canonical key of the heading at position i.
func (idx *Index) KeyAt(i int) string {
	if i < 0 || i >= len(idx.keys) {
		return ""
	}
	return idx.keys[i]
}

// Keys returns the distinct keys in the order they first appear.
func (idx *Index) Keys() []string {
	return append([]string(nil), idx.firstSeen...)
}

// Headers returns the raw header row.
func (idx *Index) Headers() []string {
	return append([]string(nil), idx.headers...)
}

// Collided reports whether more than one heading resolves to name.
func (idx *Index) Collided(name string) bool {
	return len(idx.byKey[Key(name)]) > 1
}

// Collisions returns the raw heading of every key that more than one heading
// resolves to, in first-seen order.
func (idx *Index) Collisions() []string {
	var out []string
	for _, k := range idx.firstSeen {
		if pos := idx.byKey[k]; len(pos) > 1 {
			out = append(out, idx.headers[pos[0]])
		}
	}
	return out
}

// Len returns the number of header positions, including blank headings.
func (idx *Index) Len() int {
	return len(idx.headers)
}

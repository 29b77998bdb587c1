package core

import "github.com/zeebo/xxh3"

// DuplicateSample records one repeated contact.
type DuplicateSample struct {
	Contact  string `json:"contact"`
	FirstRow int    `json:"first_row"`
	Row      int    `json:"row"`
}

// duplicateTracker counts rows whose contact was already seen in the table.
// Contacts are bucketed by their xxh3 hash and compared in full within a
// bucket, so two contacts that share a hash are never reported as a repeat.
type duplicateTracker struct {
	seen       map[uint64][]seenContact
	repeats    int
	samples    []DuplicateSample
	maxSamples int
}

type seenContact struct {
	contact  string
	firstRow int
}

func newDuplicateTracker(maxSamples int) *duplicateTracker {
	return &duplicateTracker{
		seen:       make(map[uint64][]seenContact),
		maxSamples: maxSamples,
	}
}

// observe records contact for row and reports whether it was a repeat.
// Blank contacts are ignored.
func (d *duplicateTracker) observe(contact string, row int) bool {
	if contact == "" {
		return false
	}
	h := xxh3.HashString(contact)
	for _, s := range d.seen[h] {
		if s.contact != contact {
			continue
		}
		d.repeats++
		if len(d.samples) < d.maxSamples {
			d.samples = append(d.samples, DuplicateSample{Contact: contact, FirstRow: s.firstRow, Row: row})
		}
		return true
	}
	d.seen[h] = append(d.seen[h], seenContact{contact: contact, firstRow: row})
	return false
}

// Package countries recognises country and territory names written on the
// last line of a postal address and maps them to a Royal Mail postage zone.
package countries

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"
)

//go:embed data/countries.yaml
var countriesYAML []byte

// Postage is a Royal Mail postage zone.
type Postage string

const (
	PostageUK          Postage = "uk"
	PostageEurope      Postage = "europe"
	PostageRestOfWorld Postage = "rest-of-world"
)

// UKName is the canonical name of the United Kingdom.
const UKName = "United Kingdom"

// Country is a recognised country or territory.
type Country struct {
	Name    string
	Postage Postage
}

// International reports whether letters to the country leave the UK
// postage zone.
func (c Country) International() bool {
	return c.Postage != PostageUK
}

// UK returns the United Kingdom.
func UK() Country {
	return Country{Name: UKName, Postage: PostageUK}
}

type table struct {
	byKey map[string]Country
	count int
}

var load = sync.OnceValue(func() *table {
	t, err := parse(countriesYAML)
	if err != nil {
		panic(err)
	}
	return t
})

func parse(b []byte) (*table, error) {
	var zones map[Postage]map[string][]string
	if err := yaml.Unmarshal(b, &zones); err != nil {
		return nil, fmt.Errorf("parse countries: %w", err)
	}

	t := &table{byKey: make(map[string]Country)}
	for zone, names := range zones {
		switch zone {
		case PostageUK, PostageEurope, PostageRestOfWorld:
		default:
			return nil, fmt.Errorf("parse countries: unknown postage zone %q", zone)
		}
		for name, synonyms := range names {
			c := Country{Name: name, Postage: zone}
			t.count++
			for _, n := range append([]string{name}, synonyms...) {
				k := Key(n)
				if prev, dup := t.byKey[k]; dup && prev != c {
					return nil, fmt.Errorf("parse countries: %q maps to both %s and %s", n, prev.Name, c.Name)
				}
				t.byKey[k] = c
			}
		}
	}
	return t, nil
}

var stripMarks = runes.Remove(runes.In(unicode.Mn))

// Key folds a country name for lookup: "&" and "+" read as "and", case,
// spaces and the punctuation " _-',.()" are ignored, and accents are removed
// when the result is then plain ASCII.
func Key(name string) string {
	name = strings.NewReplacer("&", "and", "+", "and").Replace(name)

	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		if strings.ContainsRune(" _-',.()’", r) {
			continue
		}
		b.WriteRune(r)
	}
	key := b.String()

	folded, _, err := transform.String(transform.Chain(norm.NFD, stripMarks, norm.NFC), key)
	if err != nil || !isASCII(folded) {
		return key
	}
	return folded
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] > unicode.MaxASCII {
			return false
		}
	}
	return true
}

// Lookup finds the country a name refers to. A leading "the" is optional,
// so "Gambia" and "The Gambia" both match.
func Lookup(name string) (Country, bool) {
	t := load()
	k := Key(name)
	if k == "" {
		return Country{}, false
	}
	if c, ok := t.byKey[k]; ok {
		return c, true
	}
	if c, ok := t.byKey["the"+k]; ok {
		return c, true
	}
	trimmed := strings.TrimSpace(name)
	if len(trimmed) > 4 && strings.EqualFold(trimmed[:4], "the ") {
		c, ok := t.byKey[Key(trimmed[4:])]
		return c, ok
	}
	return Country{}, false
}

// Count returns the number of canonical countries and territories known.
func Count() int {
	return load().count
}

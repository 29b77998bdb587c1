package postal

import (
	"regexp"
	"strings"
	"unicode"
)

// UK postcode areas, including BF for British Forces and the crown
// dependencies that Royal Mail treats as inland.
var postcodeZones = map[string]bool{}

func init() {
	for _, z := range strings.Fields(`
		AB AL B BA BB BD BF BH BL BN BR BS BT CA CB CF CH CM CO CR CT CV CW
		DA DD DE DG DH DL DN DT DY E EC EH EN EX FK FY G GL GU GY HA HD HG
		HP HR HS HU HX IG IM IP IV JE KA KT KW KY L LA LD LE LL LN LS LU M
		ME MK ML N NE NG NN NP NR NW OL OX PA PE PH PL PO PR RG RH RM S SA
		SE SG SK SL SM SN SO SP SR SS ST SW SY TA TD TF TN TQ TR TS TW UB W
		WA WC WD WF WN WR WS WV YO ZE`) {
		postcodeZones[z] = true
	}
}

var (
	// Anything shaped like a postcode, so a wrong area can be told apart
	// from a line that is not a postcode at all.
	postcodeShape = regexp.MustCompile(`^([A-Z]{1,2})([0-9][0-9A-Z]?)([0-9][A-Z]{2})$`)
	inwardCode    = regexp.MustCompile(`^[0-9][A-BD-HJLNP-UW-Z]{2}$`)
)

// NormalisePostcode removes all whitespace and upper-cases s.
func NormalisePostcode(s string) string {
	return strings.ToUpper(strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s))
}

type postcodeCheck int

const (
	postcodeValid postcodeCheck = iota
	postcodeUnknownArea
	postcodeNotAPostcode
)

func checkPostcode(s string) postcodeCheck {
	m := postcodeShape.FindStringSubmatch(NormalisePostcode(s))
	switch {
	case m == nil || !inwardCode.MatchString(m[3]):
		return postcodeNotAPostcode
	case !postcodeZones[m[1]]:
		return postcodeUnknownArea
	default:
		return postcodeValid
	}
}

// IsRealUKPostcode reports whether s is a correctly formed postcode in a
// known UK area. Spacing and case are ignored.
func IsRealUKPostcode(s string) bool {
	return checkPostcode(s) == postcodeValid
}

// FormatPostcode returns s upper-cased with a single space before the inward
// code, e.g. "sw1a1aa" becomes "SW1A 1AA". ok is false when s is not a real
// UK postcode.
func FormatPostcode(s string) (string, bool) {
	if !IsRealUKPostcode(s) {
		return "", false
	}
	pc := NormalisePostcode(s)
	return pc[:len(pc)-3] + " " + pc[len(pc)-3:], true
}

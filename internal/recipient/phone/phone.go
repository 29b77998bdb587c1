// Package phone validates recipient phone numbers for text messages.
//
// Parsing and classification are separate steps. Parse decides whether a
// string is a deliverable number at all and works out its metadata; Validate
// additionally applies a Policy describing what the sending service may send
// to. Both are pure and safe for concurrent use.
package phone

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/nyaruka/phonenumbers"

	"github.com/JonMunkholm/recipientcsv/internal/recipient"
)

const (
	ukCountryCode = 44
	defaultRegion = "GB"

	// Ofcom reserves 07700 900000 to 07700 900999 for TV and radio drama.
	tvNumberPrefix = "7700900"
)

// Class is the coarse classification of a parsed number.
type Class int

const (
	ClassUnknown Class = iota
	ClassUKMobile
	ClassUKLandline
	ClassInternational
	ClassUKPremiumRate
)

func (c Class) String() string {
	switch c {
	case ClassUKMobile:
		return "uk_mobile"
	case ClassUKLandline:
		return "uk_landline"
	case ClassInternational:
		return "international"
	case ClassUKPremiumRate:
		return "uk_premium_rate"
	default:
		return "unknown"
	}
}

// Policy lists what a sending service is permitted to send to.
type Policy struct {
	AllowInternational bool
	AllowLandline      bool
	AllowPremiumRate   bool
	AllowTVNumbers     bool
}

// DefaultPolicy allows UK mobiles and drama numbers only.
func DefaultPolicy() Policy {
	return Policy{AllowTVNumbers: true}
}

// Number is a parsed, deliverable phone number.
type Number struct {
	E164            string // "+447700900123"
	Class           Class
	CountryCode     int
	Region          string // ISO region, "GB", "JE", "US"...
	Prefix          string // billing prefix, "44" or "1664"
	International   bool   // outside mainland GB, crown dependencies included
	CrownDependency bool
	Landline        bool
	PremiumRate     bool
	TV              bool

	num *phonenumbers.PhoneNumber
}

// Normalised returns the number in E.164 form without the leading plus.
func (n *Number) Normalised() string {
	return strings.TrimPrefix(n.E164, "+")
}

// HumanReadable formats the number the way people write it: national format
// for GB numbers, international format otherwise.
func (n *Number) HumanReadable() string {
	if n.Region == defaultRegion {
		return phonenumbers.Format(n.num, phonenumbers.NATIONAL)
	}
	return phonenumbers.Format(n.num, phonenumbers.INTERNATIONAL)
}

// BillableUnits returns the fragment multiplier for the number's prefix.
func (n *Number) BillableUnits() int {
	if r, ok := RateFor(n.Prefix); ok {
		return r.BillableUnits
	}
	return 1
}

// NumericSenderRequired reports whether the destination rejects
// alphanumeric sender IDs.
func (n *Number) NumericSenderRequired() bool {
	r, ok := RateFor(n.Prefix)
	return ok && !r.Alpha
}

var landlineTypes = map[phonenumbers.PhoneNumberType]bool{
	phonenumbers.FIXED_LINE:           true,
	phonenumbers.FIXED_LINE_OR_MOBILE: true,
	phonenumbers.UAN:                  true,
}

// Premium rate is accepted by Parse and rejected by policy instead.
var deliverableTypes = map[phonenumbers.PhoneNumberType]bool{
	phonenumbers.FIXED_LINE:           true,
	phonenumbers.MOBILE:               true,
	phonenumbers.FIXED_LINE_OR_MOBILE: true,
	phonenumbers.UAN:                  true,
	phonenumbers.PERSONAL_NUMBER:      true,
	phonenumbers.PREMIUM_RATE:         true,
}

// Validate parses raw and applies policy. The returned error is nil when the
// number may be sent to.
func Validate(raw string, policy Policy) (*Number, *recipient.Error) {
	n, err := Parse(raw)
	if err != nil {
		return nil, err
	}
	if err := policy.check(n); err != nil {
		return nil, err
	}
	return n, nil
}

func (p Policy) check(n *Number) *recipient.Error {
	switch {
	case !p.AllowInternational && n.CountryCode != ukCountryCode:
		return recipient.New(recipient.PhoneInternationalNotAllowed)
	case !p.AllowPremiumRate && n.PremiumRate:
		return recipient.New(recipient.PhonePremiumRateNotAllowed)
	case !p.AllowLandline && n.Landline:
		return recipient.New(recipient.PhoneLandlineNotAllowed)
	case !p.AllowTVNumbers && n.TV:
		return recipient.New(recipient.PhoneTVNumberNotAllowed)
	}
	return nil
}

// Parse classifies raw without applying any sending policy.
//
// Numbers that fail as written get a second, lenient attempt with every plus
// sign and any leading zeros removed, which recovers spreadsheet damage such
// as "0+447700900100" or "+07700900100". When both attempts fail the first
// attempt's error is returned.
func Parse(raw string) (*Number, *recipient.Error) {
	num, err := parseStrict(raw)
	if err == nil {
		return newNumber(num), nil
	}
	if err.Kind == recipient.PhoneUnknownCharacter || err.Kind == recipient.PhoneTooShort {
		return nil, err
	}
	lenient := strings.TrimLeft(strings.ReplaceAll(raw, "+", ""), "0")
	if lenient == raw {
		return nil, err
	}
	if num, retryErr := parseStrict(lenient); retryErr == nil {
		return newNumber(num), nil
	}
	return nil, err
}

// E164 returns the canonical form of raw, or false when raw does not parse.
// Policy is not applied, which makes it suitable for comparing numbers.
func E164(raw string) (string, bool) {
	n, err := Parse(raw)
	if err != nil {
		return "", false
	}
	return n.E164, true
}

func parseStrict(raw string) (*phonenumbers.PhoneNumber, *recipient.Error) {
	s := recipient.RemoveZeroWidth(raw)
	for _, r := range s {
		if unicode.IsSpace(r) || strings.ContainsRune("()-+0123456789", r) {
			continue
		}
		return nil, recipient.New(recipient.PhoneUnknownCharacter)
	}
	s = recipient.CollapseWhitespace(s)
	if s == "" {
		return nil, recipient.New(recipient.PhoneTooShort)
	}

	num, err := phonenumbers.Parse(s, defaultRegion)
	if err != nil {
		return nil, recipient.New(recipient.PhoneInvalidNumber)
	}
	if !supportedCountryCode(num.GetCountryCode()) {
		return nil, recipient.New(recipient.PhoneUnsupportedCountryCode)
	}

	if reason := phonenumbers.IsPossibleNumberWithReason(num); reason != phonenumbers.IS_POSSIBLE {
		forced := forceInternational(s)
		if forced == nil {
			return nil, possibilityError(reason)
		}
		num = forced
	}

	if !phonenumbers.IsValidNumber(num) || !deliverableTypes[phonenumbers.GetNumberType(num)] {
		if !isTVNumber(num) {
			return nil, recipient.New(recipient.PhoneInvalidNumber)
		}
	}
	return num, nil
}

// forceInternational retries a number as if it had been written with a
// leading plus, which spreadsheets often strip.
func forceInternational(s string) *phonenumbers.PhoneNumber {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
	num, err := phonenumbers.Parse("+"+digits, "")
	if err != nil {
		return nil
	}
	if !supportedCountryCode(num.GetCountryCode()) || !phonenumbers.IsPossibleNumber(num) {
		return nil
	}
	return num
}

func possibilityError(reason phonenumbers.ValidationResult) *recipient.Error {
	switch reason {
	case phonenumbers.TOO_LONG:
		return recipient.New(recipient.PhoneTooLong)
	case phonenumbers.TOO_SHORT, phonenumbers.IS_POSSIBLE_LOCAL_ONLY:
		return recipient.New(recipient.PhoneTooShort)
	case phonenumbers.INVALID_COUNTRY_CODE:
		return recipient.New(recipient.PhoneUnsupportedCountryCode)
	default:
		return recipient.New(recipient.PhoneInvalidNumber)
	}
}

func isTVNumber(num *phonenumbers.PhoneNumber) bool {
	return num.GetCountryCode() == ukCountryCode &&
		strings.HasPrefix(fmt.Sprint(num.GetNationalNumber()), tvNumberPrefix)
}

var nanpAreaCode = regexp.MustCompile(`^\+(1\d{3})`)

func billingPrefix(num *phonenumbers.PhoneNumber, e164 string) string {
	if num.GetCountryCode() == 1 {
		if m := nanpAreaCode.FindStringSubmatch(e164); m != nil {
			if _, ok := RateFor(m[1]); ok {
				return m[1]
			}
		}
	}
	return fmt.Sprint(num.GetCountryCode())
}

func newNumber(num *phonenumbers.PhoneNumber) *Number {
	e164 := phonenumbers.Format(num, phonenumbers.E164)
	region := phonenumbers.GetRegionCodeForNumber(num)
	if region == "" {
		// Drama numbers fail the library's validity check and carry no region.
		region = phonenumbers.GetRegionCodeForCountryCode(int(num.GetCountryCode()))
	}
	numType := phonenumbers.GetNumberType(num)
	cc := int(num.GetCountryCode())

	n := &Number{
		E164:            e164,
		CountryCode:     cc,
		Region:          region,
		Prefix:          billingPrefix(num, e164),
		International:   region != defaultRegion,
		CrownDependency: cc == ukCountryCode && region != defaultRegion,
		Landline:        cc == ukCountryCode && landlineTypes[numType],
		PremiumRate:     numType == phonenumbers.PREMIUM_RATE,
		TV:              isTVNumber(num),
		num:             num,
	}
	switch {
	case cc != ukCountryCode:
		n.Class = ClassInternational
	case n.Landline:
		n.Class = ClassUKLandline
	case n.PremiumRate:
		n.Class = ClassUKPremiumRate
	default:
		n.Class = ClassUKMobile
	}
	return n
}

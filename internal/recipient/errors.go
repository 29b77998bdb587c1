// Package recipient defines the closed set of validation outcomes shared by
// the phone, email and postal validators and by the table processor.
//
// Anticipated bad input is never reported as an opaque Go error. Every
// problem is an *Error carrying a Kind from the enumeration below, the column
// it was found in and an optional detail value, so callers can switch on the
// kind and build their own wording.
package recipient

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Domain groups kinds by the validator or stage that produces them.
type Domain string

const (
	DomainPhone   Domain = "phone"
	DomainEmail   Domain = "email"
	DomainAddress Domain = "address"
	DomainRow     Domain = "row"
	DomainProcess Domain = "process"
)

// Kind identifies one validation outcome.
type Kind int

const (
	KindUnknown Kind = iota

	// Phone
	PhoneTooShort
	PhoneTooLong
	PhoneInvalidNumber
	PhoneUnknownCharacter
	PhoneLandlineNotAllowed
	PhoneInternationalNotAllowed
	PhonePremiumRateNotAllowed
	PhoneUnsupportedCountryCode
	PhoneTVNumberNotAllowed

	// Email
	EmailInvalidFormat
	EmailTooLong

	// Address
	AddressMissingPostcode
	AddressInvalidPostcodeZone
	AddressInvalidBFPOCountry
	AddressNoFixedAbode
	AddressNotEnoughLines
	AddressTooManyLines
	AddressInvalidCharacters
	AddressInternationalNotAllowed

	// Row and template
	RowMissingRequiredPlaceholder
	RowMissingContactColumn
	RowDuplicateColumnHeader
	RowNotOnAllowList
	RowQRCodeTooLong
	RowMissingPlaceholderValue
	RowMessageTooLong
	RowMessageEmpty
	RowTooManyRows

	// Process
	ProcessTimedOut

	kindCount
)

type kindInfo struct {
	domain Domain
	code   string
	text   string
}

var kinds = [kindCount]kindInfo{
	KindUnknown: {"", "UNKNOWN", "Unknown error"},

	PhoneTooShort:                {DomainPhone, "TOO_SHORT", "Mobile number is too short"},
	PhoneTooLong:                 {DomainPhone, "TOO_LONG", "Mobile number is too long"},
	PhoneInvalidNumber:           {DomainPhone, "INVALID_NUMBER", "Not a valid phone number"},
	PhoneUnknownCharacter:        {DomainPhone, "UNKNOWN_CHARACTER", "Mobile numbers can only include: 0 1 2 3 4 5 6 7 8 9 ( ) + -"},
	PhoneLandlineNotAllowed:      {DomainPhone, "LANDLINE_NOT_ALLOWED", "Not a UK mobile number"},
	PhoneInternationalNotAllowed: {DomainPhone, "INTERNATIONAL_NOT_ALLOWED", "Cannot send to international mobile numbers"},
	PhonePremiumRateNotAllowed:   {DomainPhone, "PREMIUM_RATE_NOT_ALLOWED", "Cannot send to premium rate numbers"},
	PhoneUnsupportedCountryCode:  {DomainPhone, "UNSUPPORTED_COUNTRY_CODE", "Country code not found - double check the mobile number you entered"},
	PhoneTVNumberNotAllowed:      {DomainPhone, "TV_NUMBER_NOT_ALLOWED", "Cannot send to numbers reserved for TV and radio drama"},

	EmailInvalidFormat: {DomainEmail, "INVALID_FORMAT", "Not a valid email address"},
	EmailTooLong:       {DomainEmail, "TOO_LONG", "Email address is too long"},

	AddressMissingPostcode:         {DomainAddress, "MISSING_POSTCODE", "Last line of the address must be a real UK postcode"},
	AddressInvalidPostcodeZone:     {DomainAddress, "INVALID_POSTCODE_ZONE", "Postcode is not in a recognised UK postcode area"},
	AddressInvalidBFPOCountry:      {DomainAddress, "INVALID_BFPO_COUNTRY", "The last line of a BFPO address must not be a country"},
	AddressNoFixedAbode:            {DomainAddress, "NO_FIXED_ABODE", "Cannot send letters to addresses with no fixed abode"},
	AddressNotEnoughLines:          {DomainAddress, "NOT_ENOUGH_LINES", "Address must be at least 3 lines long"},
	AddressTooManyLines:            {DomainAddress, "TOO_MANY_LINES", "Address must be no more than 7 lines long"},
	AddressInvalidCharacters:       {DomainAddress, "INVALID_CHARACTERS", `Address lines must not start with any of the following characters: @ ( ) = [ ] " \ / , < > ~`},
	AddressInternationalNotAllowed: {DomainAddress, "INTERNATIONAL_NOT_ALLOWED", "Cannot send letters to international addresses"},

	RowMissingRequiredPlaceholder: {DomainRow, "MISSING_REQUIRED_PLACEHOLDER", "Missing column for a required placeholder"},
	RowMissingContactColumn:       {DomainRow, "MISSING_CONTACT_COLUMN", "File is missing the recipient column"},
	RowDuplicateColumnHeader:      {DomainRow, "DUPLICATE_COLUMN_HEADER", "Recipient column appears more than once"},
	RowNotOnAllowList:             {DomainRow, "NOT_ON_ALLOWLIST", "Recipient is not on the allow-list"},
	RowQRCodeTooLong:              {DomainRow, "QR_CODE_TOO_LONG", "QR code data is too long"},
	RowMissingPlaceholderValue:    {DomainRow, "MISSING_PLACEHOLDER_VALUE", "Missing"},
	RowMessageTooLong:             {DomainRow, "MESSAGE_TOO_LONG", "Message is too long"},
	RowMessageEmpty:               {DomainRow, "MESSAGE_EMPTY", "Message is empty"},
	RowTooManyRows:                {DomainRow, "TOO_MANY_ROWS", "File has more rows than can be processed"},

	ProcessTimedOut: {DomainProcess, "PROCESSING_TIMED_OUT", "Processing took too long"},
}

// Domain returns the group the kind belongs to.
func (k Kind) Domain() Domain {
	if k <= KindUnknown || k >= kindCount {
		return ""
	}
	return kinds[k].domain
}

// Code returns the wire code, e.g. "TOO_SHORT". Codes are unique within a
// domain; phone and email both use TOO_LONG.
func (k Kind) Code() string {
	if k < KindUnknown || k >= kindCount {
		return kinds[KindUnknown].code
	}
	return kinds[k].code
}

// Message returns the default human-readable text for the kind.
func (k Kind) Message() string {
	if k < KindUnknown || k >= kindCount {
		return kinds[KindUnknown].text
	}
	return kinds[k].text
}

// String returns "domain.CODE".
func (k Kind) String() string {
	if d := k.Domain(); d != "" {
		return string(d) + "." + k.Code()
	}
	return k.Code()
}

// MarshalText encodes the kind as its String form so kinds can key JSON maps.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText parses the String form produced by MarshalText.
func (k *Kind) UnmarshalText(b []byte) error {
	parsed, ok := ParseKind(string(b))
	if !ok {
		return fmt.Errorf("unknown error kind %q", string(b))
	}
	*k = parsed
	return nil
}

// ParseKind looks up a kind by its "domain.CODE" form.
func ParseKind(s string) (Kind, bool) {
	for k := KindUnknown + 1; k < kindCount; k++ {
		if k.String() == s {
			return k, true
		}
	}
	return KindUnknown, false
}

// Kinds returns every defined kind except KindUnknown, in declaration order.
func Kinds() []Kind {
	out := make([]Kind, 0, kindCount-1)
	for k := KindUnknown + 1; k < kindCount; k++ {
		out = append(out, k)
	}
	return out
}

// BatchLevel reports whether the kind describes the whole table rather than
// a single row.
func (k Kind) BatchLevel() bool {
	switch k {
	case RowMissingRequiredPlaceholder, RowMissingContactColumn,
		RowDuplicateColumnHeader, RowTooManyRows, ProcessTimedOut:
		return true
	}
	return false
}

// Error is one typed validation failure.
type Error struct {
	Kind   Kind
	Column string // raw column heading, empty for whole-table errors
	Detail string // optional value that refines the message

	// Limit and Actual carry sizes for capacity errors such as QR_CODE_TOO_LONG
	// and EMAIL TOO_LONG.
	Limit  int
	Actual int
}

// New returns an error of kind k.
func New(k Kind) *Error {
	return &Error{Kind: k}
}

// Newf returns an error of kind k with a formatted detail.
func Newf(k Kind, format string, args ...any) *Error {
	return &Error{Kind: k, Detail: fmt.Sprintf(format, args...)}
}

// InColumn returns a copy of e attributed to column.
func (e *Error) InColumn(column string) *Error {
	c := *e
	c.Column = column
	return &c
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.Column != "" {
		b.WriteString(e.Column)
		b.WriteString(": ")
	}
	b.WriteString(e.Kind.Message())
	if e.Detail != "" {
		b.WriteString(" (")
		b.WriteString(e.Detail)
		b.WriteString(")")
	}
	return b.String()
}

// Is matches another *Error of the same kind, so callers can write
// errors.Is(err, recipient.New(recipient.PhoneTooShort)).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

type errorJSON struct {
	Domain  Domain `json:"domain,omitempty"`
	Code    string `json:"code"`
	Column  string `json:"column,omitempty"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
	Limit   int    `json:"limit,omitempty"`
	Actual  int    `json:"actual,omitempty"`
}

func (e *Error) MarshalJSON() ([]byte, error) {
	return json.Marshal(errorJSON{
		Domain:  e.Kind.Domain(),
		Code:    e.Kind.Code(),
		Column:  e.Column,
		Message: e.Kind.Message(),
		Detail:  e.Detail,
		Limit:   e.Limit,
		Actual:  e.Actual,
	})
}

// KindOf extracts the kind of err, or KindUnknown when err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

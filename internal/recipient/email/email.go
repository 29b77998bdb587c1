// Package email validates recipient email addresses.
//
// The grammar is deliberately narrower than RFC 5322: quoted local parts,
// IP-literal hosts and single-label domains are rejected because they are
// rarely deliverable in practice. Internationalised domain names are
// accepted and checked in their ASCII (punycode) form.
package email

import (
	"regexp"
	"strings"

	"golang.org/x/net/idna"

	"github.com/JonMunkholm/recipientcsv/internal/recipient"
)

const (
	MaxLength      = 320
	maxHostLength  = 253
	maxLabelLength = 63
)

var (
	addressPattern = regexp.MustCompile(`^[a-zA-Z0-9.!#$%&'*+/=?^_` + "`" + `{|}~\-]+@([^.@][^@\s]+)$`)
	labelPattern   = regexp.MustCompile(`(?i)^(xn|[a-z0-9]+)(-?-[a-z0-9]+)*$`)
	tldPattern     = regexp.MustCompile(`(?i)^([a-z]{2,63}|xn--([a-z0-9]+-)*[a-z0-9]+)$`)
)

// Address is a validated email address.
type Address struct {
	Local       string // as written
	Domain      string // lower-cased, Unicode form
	ASCIIDomain string // lower-cased punycode form
}

// String returns the normalised address: the local part unchanged and the
// domain lower-cased.
func (a Address) String() string {
	return a.Local + "@" + a.Domain
}

// Key returns the form used to compare addresses, fully lower-cased.
func (a Address) Key() string {
	return strings.ToLower(a.Local) + "@" + a.ASCIIDomain
}

// Validate checks raw and returns the normalised address.
func Validate(raw string) (Address, *recipient.Error) {
	s := recipient.StripObscureWhitespace(raw)

	if len(s) > MaxLength {
		return Address{}, &recipient.Error{Kind: recipient.EmailTooLong, Limit: MaxLength, Actual: len(s)}
	}

	m := addressPattern.FindStringSubmatch(s)
	if m == nil || strings.Contains(s, "..") {
		return Address{}, recipient.New(recipient.EmailInvalidFormat)
	}

	host := m[1]
	ascii, err := idna.ToASCII(host)
	if err != nil {
		return Address{}, recipient.New(recipient.EmailInvalidFormat)
	}
	if !validHost(ascii) {
		return Address{}, recipient.New(recipient.EmailInvalidFormat)
	}

	return Address{
		Local:       s[:len(s)-len(host)-1],
		Domain:      strings.ToLower(host),
		ASCIIDomain: strings.ToLower(ascii),
	}, nil
}

func validHost(host string) bool {
	parts := strings.Split(host, ".")
	if len(host) > maxHostLength || len(parts) < 2 {
		return false
	}
	for _, p := range parts {
		if p == "" || len(p) > maxLabelLength || !labelPattern.MatchString(p) {
			return false
		}
	}
	return tldPattern.MatchString(parts[len(parts)-1])
}

// Normalise returns the comparison key for raw, falling back to the trimmed,
// lower-cased input when raw is not a valid address.
func Normalise(raw string) string {
	if a, err := Validate(raw); err == nil {
		return a.Key()
	}
	return strings.ToLower(recipient.StripObscureWhitespace(raw))
}

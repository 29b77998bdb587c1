package core

import (
	"strings"

	"github.com/JonMunkholm/recipientcsv/internal/recipient"
	"github.com/JonMunkholm/recipientcsv/internal/recipient/email"
	"github.com/JonMunkholm/recipientcsv/internal/recipient/phone"
)

// NormaliseContact returns the comparison form of a phone number or email
// address: E.164 for numbers, the lower-cased address for email. Anything
// else is trimmed and lower-cased.
func NormaliseContact(raw string) string {
	s := recipient.StripObscureWhitespace(raw)
	if strings.Contains(s, "@") {
		return email.Normalise(s)
	}
	if n, ok := phone.E164(s); ok {
		return n
	}
	return strings.ToLower(s)
}

// AllowList is the set of contacts a restricted service may send to. A nil
// AllowList allows everyone.
type AllowList struct {
	contacts map[string]struct{}
}

// NewAllowList returns an allow-list of phone numbers and email addresses.
// Entries may be written in any format the validators accept.
func NewAllowList(contacts ...string) *AllowList {
	a := &AllowList{contacts: make(map[string]struct{}, len(contacts))}
	for _, c := range contacts {
		if k := NormaliseContact(c); k != "" {
			a.contacts[k] = struct{}{}
		}
	}
	return a
}

// Allows reports whether contact is on the list, ignoring formatting.
func (a *AllowList) Allows(contact string) bool {
	if a == nil {
		return true
	}
	_, ok := a.contacts[NormaliseContact(contact)]
	return ok
}

// Len returns the number of distinct contacts on the list.
func (a *AllowList) Len() int {
	if a == nil {
		return 0
	}
	return len(a.contacts)
}

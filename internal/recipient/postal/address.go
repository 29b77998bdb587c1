// Package postal parses and validates free-text postal addresses for
// letters.
//
// An address is a list of lines. The last line is expected to be a UK
// postcode, a country name, or part of a British Forces (BFPO) footer.
// Validation reports every problem it finds: a single address can be too
// short, have a bad postcode and say "no fixed abode" all at once.
package postal

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/JonMunkholm/recipientcsv/internal/recipient"
	"github.com/JonMunkholm/recipientcsv/internal/recipient/countries"
)

const (
	MinLines = 3
	MaxLines = 7

	invalidLeadingChars = `@()=[]"\/,<>~`
)

// Personalisation keys for address columns.
const (
	KeyPostcode     = "postcode"
	KeyAddressLine7 = "address_line_7"
)

// AddressLineKeys are address_line_1 to address_line_6.
var AddressLineKeys = []string{
	"address_line_1", "address_line_2", "address_line_3",
	"address_line_4", "address_line_5", "address_line_6",
}

var (
	bfpoPattern           = regexp.MustCompile(`^\s*bfpo\s*(?:c/o)?(?:\s*(\d+))?\s*$`)
	noFixedAbodePattern   = regexp.MustCompile(`(?i)no fixed (abode|address)`)
	spaceBeforePunctation = regexp.MustCompile(`[ \t]+([,.])`)
)

// Policy controls which destinations are acceptable.
type Policy struct {
	AllowInternational bool
}

// Address is a parsed postal address.
type Address struct {
	policy Policy

	bfpo    int
	hasBFPO bool
	country countries.Country

	// lines with the BFPO footer and any country line removed
	body []string
}

// Parse splits raw into lines and recognises its postcode, BFPO footer and
// country. It never fails; call Errors or Validate to check the result.
func Parse(raw string, policy Policy) *Address {
	var lines []string
	for _, l := range strings.Split(strings.ReplaceAll(raw, "\r\n", "\n"), "\n") {
		l = strings.TrimRight(recipient.CollapseWhitespace(l), " ,")
		if l == "" {
			continue
		}
		lines = append(lines, spaceBeforePunctation.ReplaceAllString(l, "$1"))
	}

	a := &Address{policy: policy, country: countries.UK()}
	a.bfpo, a.hasBFPO, lines = extractBFPO(lines)

	if n := len(lines); n > 0 {
		if c, ok := countries.Lookup(lines[n-1]); ok {
			a.country = c
			lines = lines[:n-1]
		}
	}
	a.body = lines
	return a
}

// FromPersonalisation builds an address from address_line_1 to
// address_line_6 plus either address_line_7 or postcode. get returns the
// value for a key and whether the column exists.
func FromPersonalisation(get func(key string) (string, bool), policy Policy) *Address {
	keys := append([]string(nil), AddressLineKeys...)
	if _, ok := get(KeyAddressLine7); ok {
		keys = append(keys, KeyAddressLine7)
	} else {
		keys = append(keys, KeyPostcode)
	}

	values := make([]string, len(keys))
	for i, k := range keys {
		values[i], _ = get(k)
	}
	return Parse(strings.Join(values, "\n"), policy)
}

// Validate parses raw and returns the address with every problem found.
func Validate(raw string, policy Policy) (*Address, []*recipient.Error) {
	a := Parse(raw, policy)
	return a, a.Errors()
}

func extractBFPO(lines []string) (int, bool, []string) {
	number := -1
	for _, l := range lines {
		if m := bfpoPattern.FindStringSubmatch(strings.ToLower(l)); m != nil && m[1] != "" {
			n, err := strconv.Atoi(m[1])
			if err == nil {
				number = n
				break
			}
		}
	}
	if number < 0 {
		return 0, false, lines
	}

	kept := lines[:0:0]
	for _, l := range lines {
		if !bfpoPattern.MatchString(strings.ToLower(l)) {
			kept = append(kept, l)
		}
	}
	return number, true, kept
}

// Country returns the destination country, the UK when none was written.
func (a *Address) Country() countries.Country { return a.country }

// International reports whether the address is outside the UK postage zone.
func (a *Address) International() bool { return a.country.International() }

// Postage returns the postage zone.
func (a *Address) Postage() countries.Postage { return a.country.Postage }

// BFPO returns the British Forces Post Office number, if any.
func (a *Address) BFPO() (int, bool) { return a.bfpo, a.hasBFPO }

// Postcode returns the formatted UK postcode from the last body line.
// International addresses have no postcode.
func (a *Address) Postcode() (string, bool) {
	if a.International() || len(a.body) == 0 {
		return "", false
	}
	return FormatPostcode(a.body[len(a.body)-1])
}

// Lines returns the normalised address: postcode formatted, BFPO footer
// rewritten as "BFPO <n>" and the country written with its canonical name.
func (a *Address) Lines() []string {
	var out []string
	pc, hasPC := a.Postcode()

	switch {
	case a.hasBFPO && a.International():
		out = append(out, a.body...)
		out = append(out, a.bfpoLine(), a.country.Name)
	case a.hasBFPO && hasPC:
		out = append(out, a.body[:len(a.body)-1]...)
		out = append(out, pc, a.bfpoLine())
	case a.hasBFPO:
		out = append(out, a.body...)
		out = append(out, a.bfpoLine())
	case a.International():
		out = append(out, a.body...)
		out = append(out, a.country.Name)
	case hasPC:
		out = append(out, a.body[:len(a.body)-1]...)
		out = append(out, pc)
	default:
		out = append(out, a.body...)
	}
	return out
}

func (a *Address) bfpoLine() string {
	return fmt.Sprintf("BFPO %d", a.bfpo)
}

// Normalised returns Lines joined with newlines.
func (a *Address) Normalised() string {
	return strings.Join(a.Lines(), "\n")
}

// AsSingleLine returns Lines joined with ", ".
func (a *Address) AsSingleLine() string {
	return strings.Join(a.Lines(), ", ")
}

// LineCount returns the number of normalised lines.
func (a *Address) LineCount() int {
	return len(a.Lines())
}

// Empty reports whether the address has no content at all.
func (a *Address) Empty() bool {
	return a.LineCount() == 0
}

// NoFixedAbode reports whether the address says the recipient has no fixed
// abode: a line reading just "NFA", or the phrase "no fixed abode" or
// "no fixed address" anywhere.
func (a *Address) NoFixedAbode() bool {
	lines := a.Lines()
	for _, l := range lines {
		if strings.EqualFold(l, "nfa") {
			return true
		}
	}
	return noFixedAbodePattern.MatchString(strings.Join(lines, "\n"))
}

// HasInvalidCharacters reports whether any line starts with a character
// that printing cannot handle.
func (a *Address) HasInvalidCharacters() bool {
	for _, l := range a.Lines() {
		if strings.ContainsAny(l[:1], invalidLeadingChars) {
			return true
		}
	}
	return false
}

// Errors returns every validation problem with the address, or nil.
func (a *Address) Errors() []*recipient.Error {
	var errs []*recipient.Error

	n := a.LineCount()
	if n < MinLines {
		errs = append(errs, &recipient.Error{Kind: recipient.AddressNotEnoughLines, Limit: MinLines, Actual: n})
	}
	if n > MaxLines {
		errs = append(errs, &recipient.Error{Kind: recipient.AddressTooManyLines, Limit: MaxLines, Actual: n})
	}

	if err := a.lastLineError(); err != nil {
		errs = append(errs, err)
	}

	if a.HasInvalidCharacters() {
		errs = append(errs, recipient.New(recipient.AddressInvalidCharacters))
	}
	if a.NoFixedAbode() {
		errs = append(errs, recipient.New(recipient.AddressNoFixedAbode))
	}
	return errs
}

func (a *Address) lastLineError() *recipient.Error {
	if a.International() {
		switch {
		case a.hasBFPO:
			return recipient.Newf(recipient.AddressInvalidBFPOCountry, "%s", a.country.Name)
		case !a.policy.AllowInternational:
			return recipient.Newf(recipient.AddressInternationalNotAllowed, "%s", a.country.Name)
		}
		return nil
	}
	if a.hasBFPO {
		return nil
	}

	last := ""
	if len(a.body) > 0 {
		last = a.body[len(a.body)-1]
	}
	switch checkPostcode(last) {
	case postcodeValid:
		return nil
	case postcodeUnknownArea:
		return recipient.Newf(recipient.AddressInvalidPostcodeZone, "%s", NormalisePostcode(last))
	default:
		return recipient.New(recipient.AddressMissingPostcode)
	}
}

// Valid reports whether Errors is empty.
func (a *Address) Valid() bool {
	return len(a.Errors()) == 0
}

// AsPersonalisation maps the normalised address back onto address_line_1 to
// address_line_7 and postcode. The last line fills both address_line_7 and
// postcode; for BFPO addresses the postcode moves to address_line_6.
func (a *Address) AsPersonalisation() map[string]string {
	lines := a.Lines()
	pc, hasPC := a.Postcode()
	bfpoWithPostcode := a.hasBFPO && hasPC

	out := make(map[string]string, len(AddressLineKeys)+2)
	for _, k := range AddressLineKeys {
		out[k] = ""
	}

	offset := 1
	if bfpoWithPostcode {
		offset = 2
	}
	if len(lines) >= offset {
		for i, l := range lines[:len(lines)-offset] {
			if i >= len(AddressLineKeys) {
				break
			}
			out[AddressLineKeys[i]] = l
		}
	}

	last := ""
	if len(lines) > 0 {
		last = lines[len(lines)-1]
	}
	out[KeyAddressLine7] = last
	out[KeyPostcode] = last

	switch {
	case bfpoWithPostcode:
		out[KeyPostcode] = pc
		out[AddressLineKeys[5]] = pc
	case a.hasBFPO:
		out[KeyPostcode] = ""
	}
	return out
}

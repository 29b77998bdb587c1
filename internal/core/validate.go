package core

// validate.go turns one Row into an Outcome.
//
// Row validation is pure: it reads the row, the schema and the policy and
// touches nothing shared, so rows can be validated on any goroutine. Checks
// that need to see other rows (allow-list and duplicates) run afterwards in
// the processor's single-threaded reduce step.

import (
	"strings"

	"github.com/JonMunkholm/recipientcsv/internal/recipient"
	"github.com/JonMunkholm/recipientcsv/internal/recipient/countries"
	"github.com/JonMunkholm/recipientcsv/internal/recipient/email"
	"github.com/JonMunkholm/recipientcsv/internal/recipient/phone"
	"github.com/JonMunkholm/recipientcsv/internal/recipient/postal"
)

// Policy lists what the sending service is permitted to send to.
type Policy struct {
	AllowInternationalSMS     bool `json:"allow_international_sms"`
	AllowSMSToUKLandline      bool `json:"allow_sms_to_uk_landline"`
	AllowPremiumRate          bool `json:"allow_premium_rate"`
	AllowTVNumbers            bool `json:"allow_tv_numbers"`
	AllowInternationalLetters bool `json:"allow_international_letters"`
}

// DefaultPolicy allows UK mobiles, UK addresses and drama numbers.
func DefaultPolicy() Policy {
	return Policy{AllowTVNumbers: true}
}

func (p Policy) phone() phone.Policy {
	return phone.Policy{
		AllowInternational: p.AllowInternationalSMS,
		AllowLandline:      p.AllowSMSToUKLandline,
		AllowPremiumRate:   p.AllowPremiumRate,
		AllowTVNumbers:     p.AllowTVNumbers,
	}
}

func (p Policy) postal() postal.Policy {
	return postal.Policy{AllowInternational: p.AllowInternationalLetters}
}

// ValidatedRecipient is the accepted form of a row.
type ValidatedRecipient struct {
	Channel Channel `json:"channel"`

	// Contact is the E.164 number, the normalised email address or the
	// address on a single line.
	Contact string `json:"contact"`

	AddressLines  []string          `json:"address_lines,omitempty"`
	Postage       countries.Postage `json:"postage,omitempty"`
	International bool              `json:"international"`
	BillableUnits int               `json:"billable_units,omitempty"`

	Personalisation map[string]string `json:"personalisation"`
}

// Outcome is the result of checking one row. Recipient is set only when
// Errors is empty and the table as a whole can be sent.
type Outcome struct {
	Row       *Row                `json:"row"`
	Recipient *ValidatedRecipient `json:"recipient,omitempty"`
	Errors    []*recipient.Error  `json:"errors,omitempty"`

	// contact is the comparison key used for the allow-list and duplicate
	// checks. Blank when the contact did not validate.
	contact string
}

// Valid reports whether the row had no errors.
func (o *Outcome) Valid() bool {
	return len(o.Errors) == 0
}

// Has reports whether the row carries an error of kind k.
func (o *Outcome) Has(k recipient.Kind) bool {
	for _, e := range o.Errors {
		if e.Kind == k {
			return true
		}
	}
	return false
}

// RowFlags summarises which kinds of problem a row has.
type RowFlags struct {
	BadRecipient   bool `json:"bad_recipient,omitempty"`
	MissingData    bool `json:"missing_data,omitempty"`
	QRCodeTooLong  bool `json:"qr_code_too_long,omitempty"`
	NoFixedAbode   bool `json:"has_no_fixed_abode,omitempty"`
	MessageTooLong bool `json:"message_too_long,omitempty"`
	MessageEmpty   bool `json:"message_empty,omitempty"`
	NotOnAllowList bool `json:"not_on_allow_list,omitempty"`
}

// Flags derives the row flags from the outcome's errors.
func (o *Outcome) Flags() RowFlags {
	var f RowFlags
	for _, e := range o.Errors {
		switch e.Kind {
		case recipient.RowMissingPlaceholderValue:
			f.MissingData = true
		case recipient.RowQRCodeTooLong:
			f.QRCodeTooLong = true
		case recipient.RowMessageTooLong:
			f.MessageTooLong = true
		case recipient.RowMessageEmpty:
			f.MessageEmpty = true
		case recipient.RowNotOnAllowList:
			f.NotOnAllowList = true
		case recipient.AddressNoFixedAbode:
			f.NoFixedAbode = true
			f.BadRecipient = true
		default:
			switch e.Kind.Domain() {
			case recipient.DomainPhone, recipient.DomainEmail, recipient.DomainAddress:
				f.BadRecipient = true
			}
		}
	}
	return f
}

// rowValidator holds everything needed to check rows of one table.
type rowValidator struct {
	template *Template
	schema   *Schema
	rec      Reconciliation
	policy   Policy
}

// validate checks every field of row independently and collects all errors.
func (v *rowValidator) validate(row *Row) *Outcome {
	o := &Outcome{Row: row}
	vr := &ValidatedRecipient{Channel: v.schema.Channel}

	switch v.schema.Channel {
	case ChannelSMS, ChannelEmail:
		o.Errors = append(o.Errors, v.checkContact(row, o, vr)...)
	case ChannelLetter:
		o.Errors = append(o.Errors, v.checkAddress(row, o, vr)...)
	}

	for _, p := range v.schema.order {
		if p.Optional {
			continue
		}
		if val, ok := row.Get(p.Name); ok && val == "" {
			o.Errors = append(o.Errors, recipient.New(recipient.RowMissingPlaceholderValue).InColumn(row.columnName(p.Name)))
		}
	}

	o.Errors = append(o.Errors, v.checkMessage(row)...)

	if len(o.Errors) == 0 && !v.rec.Blocking() {
		vr.Personalisation = row.Personalisation()
		o.Recipient = vr
	}
	return o
}

func (v *rowValidator) checkContact(row *Row, o *Outcome, vr *ValidatedRecipient) []*recipient.Error {
	col := v.schema.Channel.RecipientColumns()[0]
	raw, ok := row.Recipient()
	if !ok {
		return nil
	}
	column := row.columnName(col)
	if raw == "" {
		if len(v.rec.DuplicateRecipientHeaders) > 0 {
			return nil
		}
		return []*recipient.Error{recipient.New(recipient.RowMissingPlaceholderValue).InColumn(column)}
	}

	if v.schema.Channel == ChannelEmail {
		addr, err := email.Validate(raw)
		if err != nil {
			return []*recipient.Error{err.InColumn(column)}
		}
		o.contact = addr.Key()
		vr.Contact = addr.String()
		return nil
	}

	n, err := phone.Validate(raw, v.policy.phone())
	if err != nil {
		return []*recipient.Error{err.InColumn(column)}
	}
	o.contact = n.E164
	vr.Contact = n.E164
	vr.International = n.International
	vr.BillableUnits = n.BillableUnits()
	return nil
}

func (v *rowValidator) checkAddress(row *Row, o *Outcome, vr *ValidatedRecipient) []*recipient.Error {
	if v.rec.MissingContactColumn {
		return nil
	}
	addr := row.Address(v.policy.postal())
	errs := addr.Errors()
	if len(errs) > 0 {
		return errs
	}
	o.contact = strings.ToLower(addr.AsSingleLine())
	vr.Contact = addr.AsSingleLine()
	vr.AddressLines = addr.Lines()
	vr.Postage = addr.Postage()
	vr.International = addr.International()
	return nil
}

// checkMessage personalises the template for the row and runs the
// capacity checks that depend on the merged text.
func (v *rowValidator) checkMessage(row *Row) []*recipient.Error {
	t := v.template
	if t.Channel != ChannelLetter && t.Checks == nil {
		return nil
	}
	subject := Substitute(t.Subject, row.lookup)
	content := Substitute(t.Content, row.lookup)

	var errs []*recipient.Error
	if t.Channel == ChannelLetter {
		if err := CheckQRCodes(content, t.qrLimit()); err != nil {
			errs = append(errs, err)
		}
	}
	if t.Checks != nil {
		errs = append(errs, t.Checks.CheckMessage(t.Channel, subject, content)...)
	}
	return errs
}

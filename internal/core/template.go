package core

// template.go describes the message template a table is checked against.
//
// A template carries a channel and its text. Placeholders are written
// ((name)); ((name??text)) is a conditional placeholder that shows text when
// the row's value for name reads as "yes" and is optional in the table.

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/JonMunkholm/recipientcsv/internal/columns"
	"github.com/JonMunkholm/recipientcsv/internal/recipient"
	"github.com/JonMunkholm/recipientcsv/internal/recipient/postal"
)

// Channel is the message medium.
type Channel string

const (
	ChannelSMS    Channel = "sms"
	ChannelEmail  Channel = "email"
	ChannelLetter Channel = "letter"
)

// ErrUnknownChannel is returned for a channel name that is not recognised.
var ErrUnknownChannel = errors.New("unknown channel")

// ParseChannel accepts a channel name or one of its common aliases.
func ParseChannel(s string) (Channel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "sms", "text", "phone":
		return ChannelSMS, nil
	case "email":
		return ChannelEmail, nil
	case "letter", "post", "postal":
		return ChannelLetter, nil
	}
	return "", fmt.Errorf("%w %q", ErrUnknownChannel, s)
}

// RecipientColumns returns the column names that hold the contact value
// for the channel. Letters use the address line and postcode columns.
func (c Channel) RecipientColumns() []string {
	switch c {
	case ChannelSMS:
		return []string{"phone number"}
	case ChannelEmail:
		return []string{"email address"}
	case ChannelLetter:
		cols := append([]string(nil), postal.AddressLineKeys...)
		return append(cols, postal.KeyAddressLine7, postal.KeyPostcode)
	}
	return nil
}

// QRCodeMaxBytes is the most data a letter QR code may hold and still print
// legibly.
const QRCodeMaxBytes = 504

// placeholderPattern matches ((body)) where body contains no brackets.
var placeholderPattern = regexp.MustCompile(`\(\(([^()]+)\)\)`)

// Placeholder is one distinct variable in a template.
type Placeholder struct {
	Name     string // as first written, without brackets or conditional text
	Optional bool   // every occurrence was conditional
}

// Key returns the insensitive column key for the placeholder.
func (p Placeholder) Key() string {
	return columns.Key(p.Name)
}

type placeholderToken struct {
	name        string
	conditional bool
	text        string
}

func parseToken(body string) placeholderToken {
	name, text, conditional := strings.Cut(body, "??")
	return placeholderToken{
		name:        strings.TrimSpace(name),
		conditional: conditional,
		text:        text,
	}
}

// ParsePlaceholders returns the distinct placeholders in text in order of
// first appearance. Names are compared insensitively. A placeholder that is
// written both plainly and conditionally is required.
func ParsePlaceholders(text string) []Placeholder {
	var out []Placeholder
	seen := make(map[string]int)

	for _, m := range placeholderPattern.FindAllStringSubmatch(text, -1) {
		tok := parseToken(m[1])
		if tok.name == "" {
			continue
		}
		key := columns.Key(tok.name)
		if i, ok := seen[key]; ok {
			if !tok.conditional {
				out[i].Optional = false
			}
			continue
		}
		seen[key] = len(out)
		out = append(out, Placeholder{Name: tok.name, Optional: tok.conditional})
	}
	return out
}

// Substitute replaces placeholders in text using lookup. Plain placeholders
// take the value as is. Conditional placeholders expand to their text when
// the value is truthy and to nothing otherwise. Placeholders lookup does not
// know are left in place.
func Substitute(text string, lookup func(name string) (string, bool)) string {
	return placeholderPattern.ReplaceAllStringFunc(text, func(m string) string {
		tok := parseToken(m[2 : len(m)-2])
		v, ok := lookup(tok.name)
		if !ok {
			return m
		}
		if tok.conditional {
			if Truthy(v) {
				return tok.text
			}
			return ""
		}
		return v
	})
}

// Truthy reports whether a cell value switches a conditional placeholder on.
func Truthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "yes", "y", "true", "t", "1", "include", "show":
		return true
	}
	return false
}

// Template is the message a table's rows will be merged into.
type Template struct {
	Channel Channel
	Subject string
	Content string

	// QRCodeMaxBytes overrides the default QR capacity for letters when
	// non-zero.
	QRCodeMaxBytes int

	// Checks runs message-level checks on each row's personalised text.
	// Nil skips them.
	Checks TemplateChecks
}

// TemplateChecks is implemented by the rendering collaborator to flag
// messages that are too long or empty once personalised. It should return
// errors of kind RowMessageTooLong or RowMessageEmpty.
type TemplateChecks interface {
	CheckMessage(ch Channel, subject, content string) []*recipient.Error
}

// Placeholders returns the distinct placeholders of the subject and content
// together, subject first.
func (t *Template) Placeholders() []Placeholder {
	return ParsePlaceholders(t.Subject + "\n" + t.Content)
}

func (t *Template) qrLimit() int {
	if t.QRCodeMaxBytes > 0 {
		return t.QRCodeMaxBytes
	}
	return QRCodeMaxBytes
}

// Validate checks the template can be used to check a table.
func (t *Template) Validate() error {
	switch t.Channel {
	case ChannelSMS, ChannelEmail, ChannelLetter:
	default:
		return fmt.Errorf("%w %q", ErrUnknownChannel, t.Channel)
	}
	if t.QRCodeMaxBytes < 0 {
		return fmt.Errorf("qr code max bytes must not be negative, got %d", t.QRCodeMaxBytes)
	}
	return nil
}

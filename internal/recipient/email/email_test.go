package email

import (
	"strings"
	"testing"

	"github.com/JonMunkholm/recipientcsv/internal/recipient"
)

func TestValidate_Valid(t *testing.T) {
	valid := []string{
		"email@domain.com",
		"firstname.lastname@domain.com",
		"firstname.o'lastname@domain.com",
		"email@subdomain.domain.com",
		"firstname+lastname@domain.com",
		"1234567890@domain.com",
		"email@domain-one.com",
		"_______@domain.com",
		"email@domain.name",
		"email@domain.superlongtld",
		"email@domain.co.jp",
		"firstname-lastname@domain.com",
		"info@german-financial-services.vermögensberatung",
		"japanese-info@例え.テスト",
		"email@double--hyphen.com",
	}

	for _, raw := range valid {
		t.Run(raw, func(t *testing.T) {
			a, err := Validate(raw)
			if err != nil {
				t.Fatalf("Validate(%q) error: %v", raw, err)
			}
			if a.String() != raw {
				t.Errorf("String() = %q, want %q", a.String(), raw)
			}
		})
	}
}

func TestValidate_Invalid(t *testing.T) {
	invalid := []string{
		"email@123.123.123.123",
		"email@[123.123.123.123]",
		"plainaddress",
		"@no-local-part.com",
		"Outlook Contact <outlook-contact@domain.com>",
		"no-at.domain.com",
		"no-tld@domain",
		";beginning-semicolon@domain.co.uk",
		"middle-semicolon@domain.co;uk",
		"trailing-semicolon@domain.com;",
		`"email+leading-quotes@domain.com`,
		`email+middle"-quotes@domain.com`,
		`"quoted-local-part"@domain.com`,
		"lots-of-dots@domain..gov..uk",
		"two-dots..in-local@domain.com",
		"multiple@domains@domain.com",
		"spaces in local@domain.com",
		"spaces-in-domain@dom ain.com",
		"underscores-in-domain@dom_ain.com",
		"pipe-in-domain@example.com|gov.uk",
		"comma,in-local@gov.uk",
		"comma-in-domain@domain,gov.uk",
		"pound-sign-in-local£@domain.com",
		"domain-starts-with-a-dot@.domain.com",
		"brackets(in)local@domain.com",
		"incorrect-punycode@xn---something.com",
	}

	for _, raw := range invalid {
		t.Run(raw, func(t *testing.T) {
			a, err := Validate(raw)
			if err == nil {
				t.Fatalf("Validate(%q) = %+v, want error", raw, a)
			}
			if err.Kind != recipient.EmailInvalidFormat {
				t.Errorf("kind = %v, want %v", err.Kind, recipient.EmailInvalidFormat)
			}
		})
	}
}

func TestValidate_TooLong(t *testing.T) {
	raw := "email-too-long-" + strings.Repeat("a", 320) + "@example.com"

	_, err := Validate(raw)
	if err == nil {
		t.Fatal("expected an error")
	}
	if err.Kind != recipient.EmailTooLong {
		t.Errorf("kind = %v, want %v", err.Kind, recipient.EmailTooLong)
	}
	if err.Limit != MaxLength || err.Actual != len(raw) {
		t.Errorf("sizes = (%d, %d), want (%d, %d)", err.Limit, err.Actual, MaxLength, len(raw))
	}
}

func TestValidate_StripsWhitespace(t *testing.T) {
	for _, raw := range []string{
		" email@domain.com ",
		"\temail@domain.com",
		"\temail@domain.com\n",
		"\u200bemail@domain.com\u200b",
		"\u00a0email@domain.com",
	} {
		a, err := Validate(raw)
		if err != nil {
			t.Fatalf("Validate(%q): %v", raw, err)
		}
		if a.String() != "email@domain.com" {
			t.Errorf("Validate(%q) = %q, want email@domain.com", raw, a.String())
		}
	}
}

func TestValidate_DomainCaseOnly(t *testing.T) {
	a, err := Validate("First.Last@Example.COM")
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if a.String() != "First.Last@example.com" {
		t.Errorf("String() = %q, want local part preserved and domain lower-cased", a.String())
	}
	if a.Key() != "first.last@example.com" {
		t.Errorf("Key() = %q, want fully lower-cased", a.Key())
	}
}

func TestValidate_Punycode(t *testing.T) {
	a, err := Validate("japanese-info@例え.テスト")
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if !strings.HasPrefix(a.ASCIIDomain, "xn--") {
		t.Errorf("ASCIIDomain = %q, want punycode", a.ASCIIDomain)
	}
}

func TestNormalise(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"TEST@EXAMPLE.COM", "test@example.com"},
		{" test@example.com\n", "test@example.com"},
		{"Not An Address", "not an address"},
	}
	for _, tt := range tests {
		if got := Normalise(tt.in); got != tt.want {
			t.Errorf("Normalise(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

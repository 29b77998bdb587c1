package postal

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/JonMunkholm/recipientcsv/internal/recipient"
	"github.com/JonMunkholm/recipientcsv/internal/recipient/countries"
)

func kindsOf(errs []*recipient.Error) []recipient.Kind {
	var out []recipient.Kind
	for _, e := range errs {
		out = append(out, e.Kind)
	}
	return out
}

func TestParse_Normalises(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{
			name: "postcode formatted",
			raw:  "  123 Example   St. \n City of Town , \n\n sw1a1aa ",
			want: []string{"123 Example St.", "City of Town", "SW1A 1AA"},
		},
		{
			name: "space before punctuation",
			raw:  "Flat 1 , The House\nStreet\nSW1A 1AA",
			want: []string{"Flat 1, The House", "Street", "SW1A 1AA"},
		},
		{
			name: "country canonicalised",
			raw:  "1 Rue\nParis\nfrance",
			want: []string{"1 Rue", "Paris", "France"},
		},
		{
			name: "bfpo footer",
			raw:  "Mx One\nBFPO\nBF1 1AA\nbfpo  123",
			want: []string{"Mx One", "BF1 1AA", "BFPO 123"},
		},
		{
			name: "empty",
			raw:  "\n  \n",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Parse(tt.raw, Policy{}).Lines()
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Lines() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestPostcodes(t *testing.T) {
	valid := []string{"SW1 3EF", "SW13EF", "sw13ef", "SE1 63EF", "N5 1AA", "SO14 6WB", "BF1 3AA", "n5   \t 3Ef", "W1A 1AA"}
	for _, pc := range valid {
		if !IsRealUKPostcode(pc) {
			t.Errorf("IsRealUKPostcode(%q) = false, want true", pc)
		}
	}

	invalid := []string{"N5", "SO144 6WB", "NF1 1AA", "GIR0AA", "GX111AA", "BFPO1234", "", "SW1 1AC"}
	for _, pc := range invalid {
		if IsRealUKPostcode(pc) {
			t.Errorf("IsRealUKPostcode(%q) = true, want false", pc)
		}
	}
}

func TestFormatPostcode(t *testing.T) {
	tests := []struct{ in, want string }{
		{"SW13EF", "SW1 3EF"},
		{"N5     3EF", "N5 3EF"},
		{"n53Ef", "N5 3EF"},
		{"SO146WB", "SO14 6WB"},
		{"BF11AA", "BF1 1AA"},
	}
	for _, tt := range tests {
		got, ok := FormatPostcode(tt.in)
		if !ok || got != tt.want {
			t.Errorf("FormatPostcode(%q) = (%q, %v), want (%q, true)", tt.in, got, ok, tt.want)
		}
	}
	if _, ok := FormatPostcode("GIR0AA"); ok {
		t.Error("expected GIR0AA to be rejected")
	}
}

func TestNoFixedAbode(t *testing.T) {
	tests := []struct {
		raw  string
		want bool
	}{
		{"", false},
		{"123 Example Street\nNFA NFA2024\nSW1 A 1 AA", false},
		{"User with no Fixed Address,\nLondon\nSW1 A 1 AA", true},
		{"A Person\nNFA\nSW1A 1AA", true},
		{"A Person\nNFA,\nSW1A 1AA", true},
		{"A Person\nno fixed Abode\nSW1A 1AA", true},
		{"A Person\nNO FIXED ADDRESS\nSW1A 1AA", true},
		{"nfa\nBerlin\nDeutschland", true},
	}
	for _, tt := range tests {
		if got := Parse(tt.raw, Policy{}).NoFixedAbode(); got != tt.want {
			t.Errorf("NoFixedAbode(%q) = %v, want %v", tt.raw, got, tt.want)
		}
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		policy Policy
		want   []recipient.Kind
	}{
		{"uk address", "UK address\nService can't send internationally\nSW1A 1AA", Policy{}, nil},
		{"uk address, international allowed", "UK address\nStreet\nSW1A 1AA", Policy{AllowInternational: true}, nil},
		{
			"overseas not allowed", "Overseas address\nStreet\nGuinea-Bissau", Policy{},
			[]recipient.Kind{recipient.AddressInternationalNotAllowed},
		},
		{"overseas allowed", "Overseas address\nStreet\nGuinea-Bissau", Policy{AllowInternational: true}, nil},
		{
			"too many lines", "Overly long address\n2\n3\n4\n5\n6\n7\n8", Policy{AllowInternational: true},
			[]recipient.Kind{recipient.AddressTooManyLines, recipient.AddressMissingPostcode},
		},
		{
			"too short", "Address too short\nSW1A 1AA", Policy{AllowInternational: true},
			[]recipient.Kind{recipient.AddressNotEnoughLines},
		},
		{
			"nfa abroad", "House\nNo fixed abode\nFrance", Policy{},
			[]recipient.Kind{recipient.AddressInternationalNotAllowed, recipient.AddressNoFixedAbode},
		},
		{
			"no postcode or country", "No postcode or country\nStreet\n3", Policy{AllowInternational: true},
			[]recipient.Kind{recipient.AddressMissingPostcode},
		},
		{
			"bfpo with country", "International BFPO\nUnit\nBFPO 1\nBF1 1AA\nFrance", Policy{AllowInternational: true},
			[]recipient.Kind{recipient.AddressInvalidBFPOCountry},
		},
		{"bfpo without postcode", "Mx One\nUnit 1\nBFPO 123", Policy{}, nil},
		{
			"invalid zone and nfa", "A Person\nNo fixed abode\nZZ1 1ZZ", Policy{},
			[]recipient.Kind{recipient.AddressInvalidPostcodeZone, recipient.AddressNoFixedAbode},
		},
		{
			"invalid leading character", "=A Person\nStreet\nSW1A 1AA", Policy{},
			[]recipient.Kind{recipient.AddressInvalidCharacters},
		},
		{
			"empty", "", Policy{},
			[]recipient.Kind{recipient.AddressNotEnoughLines, recipient.AddressMissingPostcode},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, errs := Validate(tt.raw, tt.policy)
			if diff := cmp.Diff(tt.want, kindsOf(errs)); diff != "" {
				t.Errorf("error kinds mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestAddress_Metadata(t *testing.T) {
	a := Parse("1 Rue\nParis\nFrance", Policy{AllowInternational: true})
	if !a.International() || a.Postage() != countries.PostageEurope {
		t.Errorf("France: international=%v postage=%q", a.International(), a.Postage())
	}
	if _, ok := a.Postcode(); ok {
		t.Error("expected an international address to have no postcode")
	}

	b := Parse("Mx One\nBFPO 123\nBF1 1AA", Policy{})
	n, ok := b.BFPO()
	if !ok || n != 123 {
		t.Errorf("BFPO() = (%d, %v), want (123, true)", n, ok)
	}
	if got := b.AsSingleLine(); got != "Mx One, BF1 1AA, BFPO 123" {
		t.Errorf("AsSingleLine() = %q", got)
	}
}

func TestFromPersonalisation(t *testing.T) {
	values := map[string]string{
		"address_line_1": "123",
		"address_line_2": "Example Street",
		"address_line_3": "City of Town",
		"postcode":       "SW1A1AA",
	}
	get := func(k string) (string, bool) {
		v, ok := values[k]
		return v, ok
	}

	a := FromPersonalisation(get, Policy{})
	if got := a.Normalised(); got != "123\nExample Street\nCity of Town\nSW1A 1AA" {
		t.Errorf("Normalised() = %q", got)
	}

	values["address_line_7"] = "Chad"
	delete(values, "postcode")
	values["address_line_3"] = ""
	if errs := FromPersonalisation(get, Policy{AllowInternational: true}).Errors(); len(errs) != 0 {
		t.Errorf("expected address_line_7 country to be accepted, got %v", errs)
	}
}

func TestAsPersonalisation(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want map[string]string
	}{
		{
			name: "empty",
			raw:  "",
			want: personalisation("", "", "", "", "", "", "", ""),
		},
		{
			name: "uk",
			raw:  "123 Example Street\nCity of Town\nSW1A1AA",
			want: personalisation("123 Example Street", "City of Town", "", "", "", "", "SW1A 1AA", "SW1A 1AA"),
		},
		{
			name: "too many lines",
			raw:  "One\nTwo\nThree\nFour\nFive\nSix\nSeven\nEight",
			want: personalisation("One", "Two", "Three", "Four", "Five", "Six", "Eight", "Eight"),
		},
		{
			name: "bfpo with postcode",
			raw:  "Mx One\nBFPO\nBFPO 123\nBF1 1AA",
			want: personalisation("Mx One", "", "", "", "", "BF1 1AA", "BFPO 123", "BF1 1AA"),
		},
		{
			name: "bfpo without postcode",
			raw:  "Mx One\nUnit 1\nBFPO\nBFPO 123",
			want: personalisation("Mx One", "Unit 1", "", "", "", "", "BFPO 123", ""),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Parse(tt.raw, Policy{}).AsPersonalisation()
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("AsPersonalisation() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func personalisation(l1, l2, l3, l4, l5, l6, l7, pc string) map[string]string {
	return map[string]string{
		"address_line_1": l1,
		"address_line_2": l2,
		"address_line_3": l3,
		"address_line_4": l4,
		"address_line_5": l5,
		"address_line_6": l6,
		"address_line_7": l7,
		"postcode":       pc,
	}
}

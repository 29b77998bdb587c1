package columns

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestKey(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Phone Number", "phonenumber"},
		{"phone_number", "phonenumber"},
		{"PHONE-NUMBER", "phonenumber"},
		{"  phone number  ", "phonenumber"},
		{"phone\tnumber", "phonenumber"},
		{"phone\u00a0number", "phonenumber"},
		{"phone\r\nnumber", "phonenumber"},
		{"phone.number", "phone.number"},
		{"Address_Line-1", "addressline1"},
		{"", ""},
		{"Ünïcode Name", "ünïcodename"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := Key(tt.in); got != tt.want {
				t.Errorf("Key(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestIndex_Lookup(t *testing.T) {
	idx := NewIndex([]string{"Phone Number", "Name", "", "date"})

	tests := []struct {
		name    string
		wantPos int
		wantOK  bool
	}{
		{"phone_number", 0, true},
		{"PHONENUMBER", 0, true},
		{"name", 1, true},
		{"Date", 3, true},
		{"", -1, false},
		{"missing", -1, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pos, ok := idx.Lookup(tt.name)
			if pos != tt.wantPos || ok != tt.wantOK {
				t.Errorf("Lookup(%q) = (%d, %v), want (%d, %v)", tt.name, pos, ok, tt.wantPos, tt.wantOK)
			}
		})
	}

	if idx.Len() != 4 {
		t.Errorf("Len() = %d, want 4", idx.Len())
	}
}

func TestIndex_SpreadsheetWhitespace(t *testing.T) {
	for _, h := range []string{"Phone Number", "phone  number", " PHONE NUMBER ", "phone\tnumber", "phone\u00a0number"} {
		if !NewIndex([]string{h}).Has("phone number") {
			t.Errorf("NewIndex(%q).Has(phone number) = false, want true", h)
		}
	}
}

func TestIndex_CollisionsLastWriteWins(t *testing.T) {
	idx := NewIndex([]string{"phone number", "name", "Phone_Number", "NAME", "other"})

	pos, ok := idx.Lookup("phone number")
	if !ok || pos != 2 {
		t.Errorf("Lookup(phone number) = (%d, %v), want (2, true)", pos, ok)
	}
	if !idx.Collided("phonenumber") {
		t.Error("expected phone number to be collided")
	}
	if idx.Collided("other") {
		t.Error("did not expect other to be collided")
	}

	if diff := cmp.Diff([]string{"phone number", "name"}, idx.Collisions()); diff != "" {
		t.Errorf("Collisions() mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{1, 3}, idx.Positions("Name")); diff != "" {
		t.Errorf("Positions(Name) mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"phonenumber", "name", "other"}, idx.Keys()); diff != "" {
		t.Errorf("Keys() mismatch (-want +got):\n%s", diff)
	}

	raw, _ := idx.Raw("PHONE-NUMBER")
	if raw != "phone number" {
		t.Errorf("Raw() = %q, want %q", raw, "phone number")
	}
}

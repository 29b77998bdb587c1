package core

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/JonMunkholm/recipientcsv/internal/columns"
)

func testSchema(t *testing.T, tmpl *Template, headers ...string) *Schema {
	t.Helper()
	schema, _ := Reconcile(tmpl, columns.NewIndex(headers))
	return schema
}

func TestCleanCell(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"  hello  ", "hello"},
		{"\u200b07700 900123 ", "07700 900123"},
		{`="07700900123"`, "07700900123"},
		{`=A Person`, "=A Person"},
		{`""`, `""`},
		{"", ""},
	}
	for _, tt := range tests {
		if got := CleanCell(tt.in); got != tt.want {
			t.Errorf("CleanCell(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRow_LeadingEmptyColumns(t *testing.T) {
	schema := testSchema(t, &Template{Channel: ChannelSMS, Content: "((name))"},
		"pad1", "pad2", "phone number", "name")

	row := newRow(schema, []string{"", "", "+447700900123", "Alice"}, 1, 2)
	if row == nil {
		t.Fatal("row with blank leading cells was treated as empty")
	}
	if got := row.Value("phone number"); got != "+447700900123" {
		t.Errorf("phone number = %q, want +447700900123", got)
	}
	if got := row.Value("name"); got != "Alice" {
		t.Errorf("name = %q, want Alice", got)
	}
	if got, ok := row.Recipient(); !ok || got != "+447700900123" {
		t.Errorf("Recipient() = (%q, %v)", got, ok)
	}
}

func TestRow_EmptyRecordIsSkipped(t *testing.T) {
	schema := testSchema(t, &Template{Channel: ChannelSMS}, "phone number", "name")
	if row := newRow(schema, []string{" ", "\u200b", ""}, 1, 2); row != nil {
		t.Errorf("expected nil row, got %+v", row.Cells())
	}
}

func TestRow_ShortAndLongRecords(t *testing.T) {
	schema := testSchema(t, &Template{Channel: ChannelSMS}, "phone number", "name", "code")

	short := newRow(schema, []string{"07723456789"}, 1, 2)
	if diff := cmp.Diff([]string{"07723456789", "", ""}, short.Cells()); diff != "" {
		t.Errorf("short row cells (-want +got):\n%s", diff)
	}
	if v, ok := short.Get("code"); !ok || v != "" {
		t.Errorf("Get(code) = (%q, %v), want (\"\", true)", v, ok)
	}

	long := newRow(schema, []string{"07723456789", "Jo", "1", "extra", " more "}, 2, 3)
	if diff := cmp.Diff([]string{"07723456789", "Jo", "1"}, long.Cells()); diff != "" {
		t.Errorf("long row cells (-want +got):\n%s", diff)
	}
	if blank := newRow(schema, []string{"", "", "", "only past the header"}, 3, 4); blank != nil {
		t.Errorf("row with values only past the header = %+v, want nil", blank.Cells())
	}
	if got := long.Value("code"); got != "1" {
		t.Errorf("code = %q, want 1", got)
	}
}

func TestRow_RepeatedColumns(t *testing.T) {
	schema := testSchema(t, &Template{Channel: ChannelEmail, Content: "((note))"},
		"email address", "note", "Email_Address", "NOTE")

	row := newRow(schema, []string{"first@example.com", "one", "second@example.com", "two"}, 1, 2)

	if got, _ := row.Recipient(); got != "second@example.com" {
		t.Errorf("Recipient() = %q, want the last recipient column", got)
	}
	if got := row.Value("note"); got != "one\ntwo" {
		t.Errorf("note = %q, want values joined", got)
	}
}

func TestRow_Personalisation(t *testing.T) {
	schema := testSchema(t, &Template{Channel: ChannelSMS, Content: "((Name)) ((extra??x)) ((phone number))"},
		"Phone Number", "name", "ignored")

	row := newRow(schema, []string{"07723456789", "Jo", "z"}, 1, 2)
	want := map[string]string{"Name": "Jo", "extra": ""}
	if diff := cmp.Diff(want, row.Personalisation()); diff != "" {
		t.Errorf("Personalisation() mismatch (-want +got):\n%s", diff)
	}
}

func TestRow_Address(t *testing.T) {
	schema := testSchema(t, &Template{Channel: ChannelLetter},
		"address_line_1", "address_line_2", "address_line_3", "postcode")

	row := newRow(schema, []string{"1 Street", "Town", "", "sw1a1aa"}, 1, 2)
	if got := row.Address(DefaultPolicy().postal()).Normalised(); got != "1 Street\nTown\nSW1A 1AA" {
		t.Errorf("Address() = %q", got)
	}
	if got, ok := row.Recipient(); ok || got != "" {
		t.Errorf("letter Recipient() = (%q, %v), want none", got, ok)
	}
}

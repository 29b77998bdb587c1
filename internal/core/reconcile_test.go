package core

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/JonMunkholm/recipientcsv/internal/columns"
	"github.com/JonMunkholm/recipientcsv/internal/recipient"
)

func TestReconcile(t *testing.T) {
	tests := []struct {
		name    string
		tmpl    *Template
		headers []string
		want    Reconciliation
	}{
		{
			name:    "all present with extra column",
			tmpl:    &Template{Channel: ChannelSMS, Content: "Hi ((name))"},
			headers: []string{"Phone Number", "Name", "Notes"},
			want:    Reconciliation{ExtraColumns: []string{"Notes"}},
		},
		{
			name:    "missing required and optional",
			tmpl:    &Template{Channel: ChannelEmail, Content: "((name)) ((code)) ((vip??Welcome back))"},
			headers: []string{"email address", "name"},
			want: Reconciliation{
				MissingRequired: []string{"code"},
				MissingOptional: []string{"vip"},
			},
		},
		{
			name:    "recipient placeholder is not personalisation",
			tmpl:    &Template{Channel: ChannelSMS, Content: "Your number is ((phone number))"},
			headers: []string{"phone_number"},
			want:    Reconciliation{},
		},
		{
			name:    "no contact column",
			tmpl:    &Template{Channel: ChannelSMS, Content: "Hi ((name))"},
			headers: []string{"email address", "name"},
			want: Reconciliation{
				MissingContactColumn: true,
				ExtraColumns:         []string{"email address"},
			},
		},
		{
			name:    "duplicate recipient headers",
			tmpl:    &Template{Channel: ChannelEmail},
			headers: []string{"Email Address", "name", "email_address"},
			want: Reconciliation{
				ExtraColumns:              []string{"name"},
				DuplicateRecipientHeaders: []string{"Email Address", "email_address"},
			},
		},
		{
			name:    "repeated personalisation column",
			tmpl:    &Template{Channel: ChannelSMS, Content: "((name))"},
			headers: []string{"name", "Phone Number", "Name", "notes", "NOTES"},
			want: Reconciliation{
				ExtraColumns:     []string{"notes"},
				DuplicateHeaders: []string{"name", "notes"},
			},
		},
		{
			name:    "letter with three address columns",
			tmpl:    &Template{Channel: ChannelLetter, Content: "Dear ((name))"},
			headers: []string{"Address Line 1", "address_line_2", "Postcode", "name"},
			want:    Reconciliation{},
		},
		{
			name:    "letter with line 7 instead of postcode",
			tmpl:    &Template{Channel: ChannelLetter},
			headers: []string{"address line 1", "address line 2", "address line 7"},
			want:    Reconciliation{},
		},
		{
			name:    "letter with too few address columns",
			tmpl:    &Template{Channel: ChannelLetter},
			headers: []string{"address line 1", "postcode"},
			want:    Reconciliation{MissingContactColumn: true},
		},
		{
			name:    "letter address placeholders are never missing",
			tmpl:    &Template{Channel: ChannelLetter, Content: "((address_line_5))"},
			headers: []string{"address line 1", "address line 2", "postcode"},
			want:    Reconciliation{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, got := Reconcile(tt.tmpl, columns.NewIndex(tt.headers))
			if diff := cmp.Diff(tt.want, got, cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("Reconcile() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestReconcile_HeaderInsensitivity(t *testing.T) {
	tmpl := &Template{Channel: ChannelSMS}
	for _, h := range []string{"Phone Number", "phone  number", " PHONE NUMBER ", "phone_number"} {
		schema, rec := Reconcile(tmpl, columns.NewIndex([]string{h}))
		if rec.MissingContactColumn {
			t.Errorf("%q did not resolve to the phone number column", h)
		}
		if !schema.IsRecipientColumn(h) {
			t.Errorf("IsRecipientColumn(%q) = false", h)
		}
	}
}

func TestReconciliation_Errors(t *testing.T) {
	rec := Reconciliation{
		MissingContactColumn:      true,
		MissingRequired:           []string{"name"},
		DuplicateRecipientHeaders: []string{"a", "b"},
	}
	if !rec.Blocking() {
		t.Error("expected Blocking() to be true")
	}

	var got []recipient.Kind
	for _, e := range rec.Errors() {
		got = append(got, e.Kind)
	}
	want := []recipient.Kind{
		recipient.RowMissingContactColumn,
		recipient.RowMissingRequiredPlaceholder,
		recipient.RowDuplicateColumnHeader,
		recipient.RowDuplicateColumnHeader,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Errors() kinds mismatch (-want +got):\n%s", diff)
	}

	relaxed := Reconciliation{MissingOptional: []string{"x"}, ExtraColumns: []string{"y"}, DuplicateHeaders: []string{"z"}}
	if relaxed.Blocking() || len(relaxed.Errors()) != 0 {
		t.Error("optional, extra and repeated columns must not block")
	}
}

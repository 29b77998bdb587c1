package core

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParsePlaceholders(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []Placeholder
	}{
		{
			name: "plain",
			text: "Hello ((name)), your code is ((code))",
			want: []Placeholder{{Name: "name"}, {Name: "code"}},
		},
		{
			name: "conditional is optional",
			text: "((name))((show_extra??Extra text))",
			want: []Placeholder{{Name: "name"}, {Name: "show_extra", Optional: true}},
		},
		{
			name: "insensitive duplicates keep first spelling",
			text: "((First Name)) ((first_name)) ((FIRST-NAME))",
			want: []Placeholder{{Name: "First Name"}},
		},
		{
			name: "plain use makes conditional required",
			text: "((extra??shown)) then ((extra))",
			want: []Placeholder{{Name: "extra"}},
		},
		{
			name: "nested brackets are not placeholders",
			text: "((a(b))) (single) ((  ))",
			want: nil,
		},
		{
			name: "empty conditional text",
			text: "((flag??))",
			want: []Placeholder{{Name: "flag", Optional: true}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParsePlaceholders(tt.text)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ParsePlaceholders() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSubstitute(t *testing.T) {
	values := map[string]string{"name": "Jo", "show": "Yes", "hide": "no"}
	lookup := func(name string) (string, bool) {
		v, ok := values[name]
		return v, ok
	}

	got := Substitute("Hi ((name)).((show?? Shown.))((hide?? Hidden.)) ((unknown))", lookup)
	want := "Hi Jo. Shown. ((unknown))"
	if got != want {
		t.Errorf("Substitute() = %q, want %q", got, want)
	}
}

func TestTruthy(t *testing.T) {
	for _, v := range []string{"yes", "Y", "TRUE", "t", "1", "include", " show "} {
		if !Truthy(v) {
			t.Errorf("Truthy(%q) = false, want true", v)
		}
	}
	for _, v := range []string{"", "no", "0", "false", "maybe"} {
		if Truthy(v) {
			t.Errorf("Truthy(%q) = true, want false", v)
		}
	}
}

func TestParseChannel(t *testing.T) {
	tests := []struct {
		in      string
		want    Channel
		wantErr bool
	}{
		{"sms", ChannelSMS, false},
		{" Text ", ChannelSMS, false},
		{"email", ChannelEmail, false},
		{"post", ChannelLetter, false},
		{"fax", "", true},
	}
	for _, tt := range tests {
		got, err := ParseChannel(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseChannel(%q) = (%q, %v), want (%q, err=%v)", tt.in, got, err, tt.want, tt.wantErr)
		}
	}
}

func TestTemplate_Placeholders(t *testing.T) {
	tmpl := &Template{Channel: ChannelEmail, Subject: "About ((topic))", Content: "Dear ((name)), ((topic))"}
	want := []Placeholder{{Name: "topic"}, {Name: "name"}}
	if diff := cmp.Diff(want, tmpl.Placeholders()); diff != "" {
		t.Errorf("Placeholders() mismatch (-want +got):\n%s", diff)
	}

	if err := (&Template{Channel: "fax"}).Validate(); err == nil {
		t.Error("expected an unknown channel to be rejected")
	}
}

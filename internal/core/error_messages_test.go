package core

import (
	"errors"
	"fmt"
	"testing"

	"github.com/JonMunkholm/recipientcsv/internal/recipient"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantCode    string
		wantMessage string
	}{
		{
			name:        "nil error returns empty",
			err:         nil,
			wantCode:    "",
			wantMessage: "",
		},
		{
			name:        "phone kind maps by kind",
			err:         recipient.New(recipient.PhoneTooShort),
			wantCode:    "PHN001",
			wantMessage: "Mobile number is too short",
		},
		{
			name:        "wrapped address kind maps by kind",
			err:         fmt.Errorf("row 3: %w", recipient.New(recipient.AddressNoFixedAbode).InColumn("address_line_2")),
			wantCode:    "ADR004",
			wantMessage: "Cannot send letters to addresses with no fixed abode",
		},
		{
			name:        "timeout kind",
			err:         recipient.New(recipient.ProcessTimedOut),
			wantCode:    "PRC001",
			wantMessage: "Checking the file took too long",
		},
		{
			name:        "csv parse error maps by pattern",
			err:         errors.New(`read row 4: parse error on line 4, column 7: bare " in non-quoted-field`),
			wantCode:    "FILE002",
			wantMessage: "File is not a valid CSV",
		},
		{
			name:        "no header",
			err:         ErrNoHeader,
			wantCode:    "FILE003",
			wantMessage: "The file is empty",
		},
		{
			name:        "limiter busy",
			err:         ErrTooManyBatches,
			wantCode:    "REQ001",
			wantMessage: "System is busy checking other files",
		},
		{
			name:        "unknown error returns default",
			err:         errors.New("some random internal error"),
			wantCode:    "ERR000",
			wantMessage: "An unexpected error occurred",
		},
		{
			name:        "case insensitive matching",
			err:         errors.New("CONTEXT CANCELED"),
			wantCode:    "REQ002",
			wantMessage: "Request was cancelled",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapError(tt.err)
			if got.Code != tt.wantCode {
				t.Errorf("MapError() code = %q, want %q", got.Code, tt.wantCode)
			}
			if got.Message != tt.wantMessage {
				t.Errorf("MapError() message = %q, want %q", got.Message, tt.wantMessage)
			}
		})
	}
}

func TestMessageFor_CoversEveryKind(t *testing.T) {
	codes := make(map[string]recipient.Kind)
	for _, k := range recipient.Kinds() {
		msg := MessageFor(k)
		if msg.Code == defaultMessage.Code {
			t.Errorf("%v has no user message", k)
			continue
		}
		if prev, dup := codes[msg.Code]; dup {
			t.Errorf("%v and %v share code %s", prev, k, msg.Code)
		}
		codes[msg.Code] = k
	}
}

func TestFormatUserError(t *testing.T) {
	result := FormatUserError(recipient.New(recipient.EmailTooLong))

	expected := "Email address is too long (Code: EML002). Email addresses must be 320 characters or fewer"
	if result != expected {
		t.Errorf("FormatUserError() = %q, want %q", result, expected)
	}
}

func TestIsUserFacing(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil error is not user facing", nil, false},
		{"validation error is user facing", recipient.New(recipient.RowNotOnAllowList), true},
		{"known pattern is user facing", errors.New("file too large"), true},
		{"unknown error is not user facing", errors.New("random internal error xyz"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsUserFacing(tt.err); got != tt.want {
				t.Errorf("IsUserFacing() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewUserError(t *testing.T) {
	t.Run("nil error returns nil", func(t *testing.T) {
		if got := NewUserError(nil); got != nil {
			t.Errorf("NewUserError(nil) = %v, want nil", got)
		}
	})

	t.Run("wraps technical error with user message", func(t *testing.T) {
		techErr := fmt.Errorf("read header: %w", ErrNoHeader)
		userErr := NewUserError(techErr)

		if userErr.Error() != "The file is empty" {
			t.Errorf("Error() = %q, want user message", userErr.Error())
		}
		if !errors.Is(userErr, ErrNoHeader) {
			t.Error("Unwrap() should return original error")
		}
	})
}

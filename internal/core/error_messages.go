package core

// error_messages.go maps validation kinds and technical errors to messages
// people can act on. Each message has a code for support reference.
//
// # Phone Errors (PHN001-PHN099)
//
//	PHN001 - TOO_SHORT: Mobile number is too short
//	PHN002 - TOO_LONG: Mobile number is too long
//	PHN003 - INVALID_NUMBER: Not a valid phone number
//	PHN004 - UNKNOWN_CHARACTER: Number contains letters or symbols
//	PHN005 - LANDLINE_NOT_ALLOWED: Not a UK mobile number
//	PHN006 - INTERNATIONAL_NOT_ALLOWED: International numbers are switched off
//	PHN007 - PREMIUM_RATE_NOT_ALLOWED: Premium rate numbers cannot be sent to
//	PHN008 - UNSUPPORTED_COUNTRY_CODE: Country code not recognised
//	PHN009 - TV_NUMBER_NOT_ALLOWED: Number is reserved for TV and radio drama
//
// # Email Errors (EML001-EML099)
//
//	EML001 - INVALID_FORMAT: Not a valid email address
//	EML002 - TOO_LONG: Email address is longer than 320 characters
//
// # Address Errors (ADR001-ADR099)
//
//	ADR001 - MISSING_POSTCODE: Last line is not a real UK postcode
//	ADR002 - INVALID_POSTCODE_ZONE: Postcode area does not exist
//	ADR003 - INVALID_BFPO_COUNTRY: BFPO address ends with a country
//	ADR004 - NO_FIXED_ABODE: Address says no fixed abode
//	ADR005 - NOT_ENOUGH_LINES: Fewer than 3 lines
//	ADR006 - TOO_MANY_LINES: More than 7 lines
//	ADR007 - INVALID_CHARACTERS: A line starts with a character printing rejects
//	ADR008 - INTERNATIONAL_NOT_ALLOWED: International letters are switched off
//
// # Row and Table Errors (ROW001-ROW099)
//
//	ROW001 - MISSING_REQUIRED_PLACEHOLDER: A template placeholder has no column
//	ROW002 - MISSING_CONTACT_COLUMN: No recipient column
//	ROW003 - DUPLICATE_COLUMN_HEADER: Recipient column appears twice
//	ROW004 - NOT_ON_ALLOWLIST: Recipient is not on the allow-list
//	ROW005 - QR_CODE_TOO_LONG: QR code holds too much data
//	ROW006 - MISSING_PLACEHOLDER_VALUE: Cell for a placeholder is empty
//	ROW007 - MESSAGE_TOO_LONG: Personalised message is too long
//	ROW008 - MESSAGE_EMPTY: Personalised message is empty
//	ROW009 - TOO_MANY_ROWS: More rows than can be checked
//
// # Processing Errors (PRC001-PRC099)
//
//	PRC001 - PROCESSING_TIMED_OUT: Checking the file took too long
//
// # File and Request Errors (FILE001-FILE099, REQ001-REQ099)
//
// These come from technical errors and are matched on their text:
//
//	FILE001 - "file too large", "request body too large"
//	FILE002 - "parse error", "bare \"", "extraneous"
//	FILE003 - "file has no header row"
//	FILE004 - "no file provided"
//	FILE005 - "rows already consumed"
//	REQ001  - "too many batches"
//	REQ002  - "context canceled"
//	REQ003  - "context deadline exceeded"
//	REQ004  - "unknown channel"
//	REQ005  - "invalid form"
//	REQ006  - "invalid service id"

import (
	"errors"
	"fmt"
	"strings"

	"github.com/JonMunkholm/recipientcsv/internal/recipient"
)

// UserMessage contains a user-friendly error message with actionable guidance.
type UserMessage struct {
	Message string `json:"message"` // What went wrong (user-friendly)
	Action  string `json:"action"`  // What the user should do
	Code    string `json:"code"`    // Error code for support reference
}

var kindMessages = map[recipient.Kind]UserMessage{
	recipient.PhoneTooShort:                {"Mobile number is too short", "Check the number has all its digits", "PHN001"},
	recipient.PhoneTooLong:                 {"Mobile number is too long", "Check for extra digits or two numbers in one cell", "PHN002"},
	recipient.PhoneInvalidNumber:           {"Not a valid phone number", "Check the number is written correctly", "PHN003"},
	recipient.PhoneUnknownCharacter:        {"Mobile numbers can only include: 0 1 2 3 4 5 6 7 8 9 ( ) + -", "Remove letters and symbols from the number", "PHN004"},
	recipient.PhoneLandlineNotAllowed:      {"Not a UK mobile number", "Use a mobile number or ask for landline sending to be switched on", "PHN005"},
	recipient.PhoneInternationalNotAllowed: {"This service cannot send to international mobile numbers", "Remove the row or ask for international sending to be switched on", "PHN006"},
	recipient.PhonePremiumRateNotAllowed:   {"Cannot send to premium rate numbers", "Remove the row", "PHN007"},
	recipient.PhoneUnsupportedCountryCode:  {"Country code not found", "Double check the mobile number you entered", "PHN008"},
	recipient.PhoneTVNumberNotAllowed:      {"Number is reserved for TV and radio drama", "Use a real mobile number", "PHN009"},

	recipient.EmailInvalidFormat: {"Not a valid email address", "Check the address is written correctly", "EML001"},
	recipient.EmailTooLong:       {"Email address is too long", "Email addresses must be 320 characters or fewer", "EML002"},

	recipient.AddressMissingPostcode:         {"Last line of the address must be a real UK postcode", "Add a postcode, or a country for international letters", "ADR001"},
	recipient.AddressInvalidPostcodeZone:     {"Postcode is not in a UK postcode area", "Check the postcode is written correctly", "ADR002"},
	recipient.AddressInvalidBFPOCountry:      {"The last line of a BFPO address must not be a country", "Remove the country from the address", "ADR003"},
	recipient.AddressNoFixedAbode:            {"Cannot send letters to addresses with no fixed abode", "Remove the row", "ADR004"},
	recipient.AddressNotEnoughLines:          {"Address must be at least 3 lines long", "Add the missing address lines", "ADR005"},
	recipient.AddressTooManyLines:            {"Address must be no more than 7 lines long", "Combine some address lines", "ADR006"},
	recipient.AddressInvalidCharacters:       {"Address lines must not start with @ ( ) = [ ] \" \\ / , < > ~", "Remove the character from the start of the line", "ADR007"},
	recipient.AddressInternationalNotAllowed: {"This service cannot send letters abroad", "Remove the row or ask for international letters to be switched on", "ADR008"},

	recipient.RowMissingRequiredPlaceholder: {"A column needed by the template is missing", "Add a column for every placeholder in the template", "ROW001"},
	recipient.RowMissingContactColumn:       {"File is missing the recipient column", "Add a column called 'phone number', 'email address' or the address lines", "ROW002"},
	recipient.RowDuplicateColumnHeader:      {"The recipient column appears more than once", "Delete or rename the extra column", "ROW003"},
	recipient.RowNotOnAllowList:             {"Recipient is not on the allow-list", "In trial mode you can only send to members of your team", "ROW004"},
	recipient.RowQRCodeTooLong:              {"QR code has too much data", "Shorten the link or text in the QR code", "ROW005"},
	recipient.RowMissingPlaceholderValue:    {"Missing", "Fill in the empty cell", "ROW006"},
	recipient.RowMessageTooLong:             {"Message is too long", "Shorten the personalised content", "ROW007"},
	recipient.RowMessageEmpty:               {"Message is empty", "Fill in the content for this row", "ROW008"},
	recipient.RowTooManyRows:                {"File has too many rows", "Split the file into smaller files", "ROW009"},

	recipient.ProcessTimedOut: {"Checking the file took too long", "Try again with a smaller file", "PRC001"},
}

// MessageFor returns the user message for a validation kind.
func MessageFor(k recipient.Kind) UserMessage {
	if msg, ok := kindMessages[k]; ok {
		return msg
	}
	return defaultMessage
}

// errorPattern maps an error substring to a user-friendly message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns defines mappings from technical errors to user-friendly messages.
// Patterns are checked in order and matched case-insensitively; the first
// match wins, so more specific patterns go first.
var errorPatterns = []errorPattern{
	// =========================================================================
	// File Errors (FILE001-FILE005)
	// =========================================================================
	{
		pattern: "file too large",
		msg: UserMessage{
			Message: "File is too large",
			Action:  "Split the file into smaller files",
			Code:    "FILE001",
		},
	},
	{
		pattern: "request body too large",
		msg: UserMessage{
			Message: "File is too large",
			Action:  "Split the file into smaller files",
			Code:    "FILE001",
		},
	},
	{
		pattern: "parse error",
		msg: UserMessage{
			Message: "File is not a valid CSV",
			Action:  "Check quotes are balanced and save the file as CSV",
			Code:    "FILE002",
		},
	},
	{
		pattern: "bare \"",
		msg: UserMessage{
			Message: "File is not a valid CSV",
			Action:  "Check quotes are balanced and save the file as CSV",
			Code:    "FILE002",
		},
	},
	{
		pattern: "extraneous",
		msg: UserMessage{
			Message: "File is not a valid CSV",
			Action:  "Check quotes are balanced and save the file as CSV",
			Code:    "FILE002",
		},
	},
	{
		pattern: "file has no header row",
		msg: UserMessage{
			Message: "The file is empty",
			Action:  "Upload a file with a header row and at least one recipient",
			Code:    "FILE003",
		},
	},
	{
		pattern: "no file provided",
		msg: UserMessage{
			Message: "No file was selected",
			Action:  "Please select a CSV file to upload",
			Code:    "FILE004",
		},
	},
	{
		pattern: "rows already consumed",
		msg: UserMessage{
			Message: "The file has already been read",
			Action:  "Upload the file again",
			Code:    "FILE005",
		},
	},

	// =========================================================================
	// Request Errors (REQ001-REQ006)
	// =========================================================================
	{
		pattern: "too many batches",
		msg: UserMessage{
			Message: "System is busy checking other files",
			Action:  "Please wait a moment and try again",
			Code:    "REQ001",
		},
	},
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "Request was cancelled",
			Action:  "Please try again",
			Code:    "REQ002",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "Request timed out",
			Action:  "Try a smaller file or check your connection",
			Code:    "REQ003",
		},
	},
	{
		pattern: "unknown channel",
		msg: UserMessage{
			Message: "Unknown message type",
			Action:  "Use sms, email or letter",
			Code:    "REQ004",
		},
	},
	{
		pattern: "invalid form",
		msg: UserMessage{
			Message: "The upload could not be read",
			Action:  "Send the file as multipart form data or as a CSV body",
			Code:    "REQ005",
		},
	},
	{
		pattern: "invalid service id",
		msg: UserMessage{
			Message: "Service ID is not valid",
			Action:  "Check the service_id parameter is a UUID",
			Code:    "REQ006",
		},
	},
}

// defaultMessage is returned when no pattern matches (ERR000).
// Support staff should check application logs for the original technical
// error when users report ERR000.
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts an error to a user-friendly message. Validation errors
// map by kind; anything else is matched against known patterns
// (case-insensitive). If nothing matches, a generic fallback message with
// code ERR000 is returned.
//
// Example:
//
//	msg := MapError(recipient.New(recipient.PhoneTooShort))
//	// msg.Code == "PHN001"
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	var verr *recipient.Error
	if errors.As(err, &verr) {
		return MessageFor(verr.Kind)
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// FormatUserError creates a formatted error string for display.
// The format is: "Message (Code: XXX). Action"
//
// Example output: "Mobile number is too short (Code: PHN001). Check the number has all its digits"
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing checks if an error matches a known kind or pattern and
// should be shown to users.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}

// UserError wraps a technical error with a user-friendly message.
// The original error is preserved for logging.
type UserError struct {
	Technical error       // Original technical error for logging
	User      UserMessage // User-friendly message for display
}

func (e *UserError) Error() string {
	return e.User.Message
}

func (e *UserError) Unwrap() error {
	return e.Technical
}

// NewUserError creates a UserError by mapping a technical error to a
// user-friendly message. Returns nil if err is nil.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{
		Technical: err,
		User:      MapError(err),
	}
}

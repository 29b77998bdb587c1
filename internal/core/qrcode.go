package core

import (
	"regexp"
	"strings"

	"github.com/JonMunkholm/recipientcsv/internal/recipient"
)

// A letter paragraph reading "qr: <data>" is printed as a QR code.
var qrCodeParagraph = regexp.MustCompile(`(?i)^\s*qr\s*:\s*(.+)`)

// QRCodeData returns the data of every QR code paragraph in text.
func QRCodeData(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		if m := qrCodeParagraph.FindStringSubmatch(line); m != nil {
			if data := strings.TrimSpace(m[1]); data != "" {
				out = append(out, data)
			}
		}
	}
	return out
}

// CheckQRCodes reports the first QR code in text whose data is longer than
// maxBytes once encoded as UTF-8.
func CheckQRCodes(text string, maxBytes int) *recipient.Error {
	for _, data := range QRCodeData(text) {
		if n := len(data); n > maxBytes {
			return &recipient.Error{
				Kind:   recipient.RowQRCodeTooLong,
				Detail: truncate(data, 40),
				Limit:  maxBytes,
				Actual: n,
			}
		}
	}
	return nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

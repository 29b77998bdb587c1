package recipient

import (
	"strings"
	"unicode"
)

// Zero-width and formatting characters that spreadsheets and copy-paste
// leave in cells. unicode.IsSpace does not cover them.
var zeroWidth = strings.NewReplacer(
	"\u180e", "", "\u200b", "", "\u200c", "", "\u200d", "", "\u2060", "", "\ufeff", "",
)

// RemoveZeroWidth deletes invisible formatting characters from s.
func RemoveZeroWidth(s string) string {
	return zeroWidth.Replace(s)
}

// StripObscureWhitespace removes zero-width characters anywhere in s and
// trims every kind of Unicode whitespace, non-breaking spaces included, from
// both ends.
func StripObscureWhitespace(s string) string {
	return strings.TrimFunc(RemoveZeroWidth(s), unicode.IsSpace)
}

// CollapseWhitespace strips s and folds each internal run of whitespace into
// a single space.
func CollapseWhitespace(s string) string {
	return strings.Join(strings.Fields(RemoveZeroWidth(s)), " ")
}

package importer

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

const minImprovableLength = 20

var whitespace = regexp.MustCompile(`\s+`)

// ImproveDescription tidies upstream text: whitespace runs collapse to one
// space, the first letter is upper-cased and a full stop is added when the
// text has no terminal punctuation. Text shorter than 20 characters is
// returned unchanged.
func ImproveDescription(s string) string {
	if utf8.RuneCountInString(s) < minImprovableLength {
		return s
	}
	out := strings.TrimSpace(whitespace.ReplaceAllString(s, " "))
	if out == "" {
		return out
	}
	r, size := utf8.DecodeRuneInString(out)
	out = string(unicode.ToUpper(r)) + out[size:]
	switch out[len(out)-1] {
	case '.', '!', '?':
	default:
		out += "."
	}
	return out
}

package sanitizer

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Trim strips leading and trailing Unicode whitespace. nil yields "".
func Trim(s *string) string {
	return strings.TrimFunc(deref(s), unicode.IsSpace)
}

// CollapseWhitespace trims s and replaces every maximal whitespace run with a
// single space. nil yields "".
func CollapseWhitespace(s *string) string {
	return TrimAndNormalize(deref(s))
}

// TrimAndNormalize is CollapseWhitespace on a plain string. Bytes that are
// not valid UTF-8 are copied through.
func TrimAndNormalize(s string) string {
	s = strings.TrimFunc(s, unicode.IsSpace)

	if s == "" {
		return ""
	}

	var result strings.Builder
	result.Grow(len(s))
	var lastWasSpace bool

	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		if unicode.IsSpace(r) {
			if !lastWasSpace {
				result.WriteByte(' ')
				lastWasSpace = true
			}
		} else {
			result.WriteString(s[i : i+size])
			lastWasSpace = false
		}
		i += size
	}

	return result.String()
}

func NormalizeLabel(label string) string {
	return lowerValid(TrimAndNormalize(label))
}

// lowerValid lowercases s, leaving bytes that are not valid UTF-8 as they
// are. strings.ToLower would turn them into U+FFFD.
func lowerValid(s string) string {
	if utf8.ValidString(s) {
		return strings.ToLower(s)
	}

	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		if r == utf8.RuneError && size == 1 {
			b.WriteByte(s[i])
		} else {
			b.WriteRune(unicode.ToLower(r))
		}
		i += size
	}
	return b.String()
}

// Package fieldx holds small field transforms applied to inbound records
// before they are stored: name joining, address assembly and lenient
// boolean/integer coercion.
package fieldx

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"fieldnorm/pkg/sanitizer"
)

var truthyPrefixes = []string{"1", "+", "+1", "tru", "tr", "t", "yes", "ye", "y"}

// UpperFirst uppercases the first rune of word. An empty word yields ("", false).
func UpperFirst(word string) (string, bool) {
	if word == "" {
		return "", false
	}
	r, size := utf8.DecodeRuneInString(word)
	return string(unicode.ToUpper(r)) + word[size:], true
}

// JoinNames drops nil and blank names, collapses whitespace, uppercases the
// first letter of every word and joins the result with single spaces.
func JoinNames(names ...*string) string {
	words := make([]string, 0, len(names))
	for _, name := range names {
		for _, w := range strings.Fields(sanitizer.CollapseWhitespace(name)) {
			upper, _ := UpperFirst(w)
			words = append(words, upper)
		}
	}
	return strings.Join(words, " ")
}

func IsBlank(s *string) bool {
	return sanitizer.Trim(s) == ""
}

// EqualFold compares a (or def when a is nil) with b after trimming and
// lowercasing both. A nil b compares as "".
func EqualFold(a, b, def *string) bool {
	if a == nil {
		a = def
	}
	return strings.ToLower(sanitizer.Trim(a)) == strings.ToLower(sanitizer.Trim(b))
}

// ParseBool reports whether the lowercased value starts with a truthy
// prefix such as "1", "+", "t" or "y". Everything else is false.
func ParseBool(value string) bool {
	lower := strings.ToLower(value)
	for _, prefix := range truthyPrefixes {
		if strings.HasPrefix(lower, prefix) {
			return true
		}
	}
	return false
}

// ParseDigits removes every character that is not a Unicode decimal digit
// and parses the rest as an int64. Empty input, overflow or a residue with
// non-ASCII digits yields 0.
func ParseDigits(value *string) int64 {
	if value == nil {
		return 0
	}
	digits := strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, *value)

	n, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return 0
	}
	return n
}

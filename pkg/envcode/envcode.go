// Package envcode recognizes and canonicalizes regulatory waste codes:
// disposal operations (D1, D10.2), recovery operations (R3, R12.01) and
// list-of-waste entries (20 01 01, 16 06 01*).
//
// Recognition never fails with an error. Input that does not conform to a
// family's grammar yields ("", false).
package envcode

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"fieldnorm/pkg/sanitizer"
)

// RecognizeDisposalCode accepts a trimmed D-code (case-insensitive) and
// returns it with the leading letter uppercased.
func RecognizeDisposalCode(text string) (string, bool) {
	return recognizeOperation(text, 'D')
}

// RecognizeRecoveryCode accepts a trimmed R-code (case-insensitive) and
// returns it with the leading letter uppercased.
func RecognizeRecoveryCode(text string) (string, bool) {
	return recognizeOperation(text, 'R')
}

// RecognizeListOfWasteCode keeps only ASCII digits and '*' from text and
// accepts the residue when it is 2, 4 or 6 digits, or 6 digits followed by
// '*'. Surrounding text is discarded, not rejected.
func RecognizeListOfWasteCode(text string) (string, bool) {
	residue := strings.Map(func(r rune) rune {
		if isDigit(r) || r == '*' {
			return r
		}
		return -1
	}, text)

	if !isListOfWaste(residue) {
		return "", false
	}
	return residue, true
}

// RecognizeByFamily dispatches to the recognizer named by family
// (case-insensitive). Empty text, empty family or an unknown family yield
// ("", false).
func RecognizeByFamily(text, family string) (string, bool) {
	if text == "" || family == "" {
		return "", false
	}
	f, ok := ParseFamily(family)
	if !ok {
		return "", false
	}
	return f.Recognize(text)
}

func recognizeOperation(text string, letter byte) (string, bool) {
	trimmed := sanitizer.Trim(&text)
	if !isOperationCode(trimmed, letter) {
		return "", false
	}
	return upperFirst(trimmed), true
}

// isOperationCode matches [Ll]\d{1,2}(\.\d{1,2})? against the whole string,
// where L is letter. \d is any Unicode decimal digit.
func isOperationCode(s string, letter byte) bool {
	if len(s) < 2 || (s[0] != letter && s[0] != letter+('a'-'A')) {
		return false
	}

	i := 1
	n, size := countDecimalDigits(s[i:])
	if n < 1 || n > 2 {
		return false
	}
	i += size

	if i == len(s) {
		return true
	}
	if s[i] != '.' {
		return false
	}
	i++

	n, size = countDecimalDigits(s[i:])
	if n < 1 || n > 2 {
		return false
	}
	return i+size == len(s)
}

// countDecimalDigits counts the leading Unicode decimal digits of s and
// reports their length in bytes.
func countDecimalDigits(s string) (n, size int) {
	for size < len(s) {
		r, w := utf8.DecodeRuneInString(s[size:])
		if r == utf8.RuneError || !unicode.IsDigit(r) {
			break
		}
		n++
		size += w
	}
	return n, size
}

// isListOfWaste matches \d{2}|\d{4}|\d{6}\*? against the whole residue.
func isListOfWaste(s string) bool {
	n := countDigits(s, 0)
	switch {
	case n == len(s):
		return n == 2 || n == 4 || n == 6
	case n == 6 && len(s) == 7:
		return s[6] == '*'
	default:
		return false
	}
}

func countDigits(s string, from int) int {
	n := 0
	for from+n < len(s) && isDigit(rune(s[from+n])) {
		n++
	}
	return n
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func upperFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

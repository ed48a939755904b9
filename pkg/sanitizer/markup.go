package sanitizer

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	OpenGuillemet  = '«'
	CloseGuillemet = '»'
)

// A tag name must start with an ASCII letter, so "<3>" is not a tag.
var reTag = regexp.MustCompile(`</?[a-zA-Z][^>]*>`)

var markupPipeline = Pipeline{
	removeTags,
	collapseBrackets,
	TrimAndNormalize,
}

// StripMarkup removes HTML-like tags, replaces every run of stray '<'
// (optionally separated by whitespace) with '«' and every run of stray '>'
// with '»', then collapses whitespace. nil yields "".
func StripMarkup(s *string) string {
	if s == nil {
		return ""
	}
	return markupPipeline.Apply(*s)
}

func removeTags(s string) string {
	return reTag.ReplaceAllString(s, "")
}

// collapseBrackets folds "<(\s*<)*" into '«' and ">(\s*>)*" into '»'.
// Whitespace after the last bracket of a run is left in place. Bytes that
// are not valid UTF-8 are copied through.
func collapseBrackets(s string) string {
	if !strings.ContainsAny(s, "<>") {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))

	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '<':
			b.WriteRune(OpenGuillemet)
		case '>':
			b.WriteRune(CloseGuillemet)
		default:
			b.WriteByte(c)
			continue
		}

		for {
			j := i + 1
			for j < len(s) {
				r, size := utf8.DecodeRuneInString(s[j:])
				if !unicode.IsSpace(r) {
					break
				}
				j += size
			}
			if j < len(s) && s[j] == c {
				i = j
				continue
			}
			break
		}
	}

	return b.String()
}

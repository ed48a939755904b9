package sanitizer

import "testing"

func TestStripMarkup(t *testing.T) {
	tests := []struct {
		name  string
		input *string
		want  string
	}{
		{
			name:  "nil",
			input: nil,
			want:  "",
		},
		{
			name:  "empty",
			input: ptr(""),
			want:  "",
		},
		{
			name:  "plain text",
			input: ptr("Just plain text."),
			want:  "Just plain text.",
		},
		{
			name:  "tags removed",
			input: ptr("<h1>Hello</h1> <p>World!</p> <tag>Text</tag>"),
			want:  "Hello World! Text",
		},
		{
			name:  "stray brackets on both sides",
			input: ptr("Some numbers <text>   < and > letters."),
			want:  "Some numbers « and » letters.",
		},
		{
			name:  "stray close bracket",
			input: ptr("Some numbers <text>   and > letters."),
			want:  "Some numbers and » letters.",
		},
		{
			name:  "adjacent open brackets",
			input: ptr("Some numbers <text> <<<  and   letters."),
			want:  "Some numbers « and letters.",
		},
		{
			name:  "open brackets separated by whitespace",
			input: ptr("Some numbers <text> <  <  <  and   letters."),
			want:  "Some numbers « and letters.",
		},
		{
			name:  "close brackets separated by whitespace",
			input: ptr("Some numbers <text>  and >  >    >  letters."),
			want:  "Some numbers and » letters.",
		},
		{
			name:  "whitespace around wrapped text",
			input: ptr("   <div>  Line   with     spaces   </div>  "),
			want:  "Line with spaces",
		},
		{
			name:  "tag name must start with a letter",
			input: ptr("<3>"),
			want:  "«3»",
		},
		{
			name:  "tag with attributes",
			input: ptr(`<a href="x" class='y'>link</a>`),
			want:  "link",
		},
		{
			name:  "unterminated tag start",
			input: ptr("a <b"),
			want:  "a «b",
		},
		{
			name:  "mixed runs stay separate",
			input: ptr("< > <"),
			want:  "« » «",
		},
		{
			name:  "invalid utf-8 kept",
			input: ptr("caf\xe9 < b"),
			want:  "caf\xe9 « b",
		},
		{
			name:  "invalid utf-8 inside bracket run",
			input: ptr("\xff< <\xfe"),
			want:  "\xff«\xfe",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := StripMarkup(tt.input)
			if got != tt.want {
				t.Errorf("StripMarkup() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestStripMarkup_Idempotent(t *testing.T) {
	inputs := []string{
		"<h1>Hello</h1> <p>World!</p>",
		"Some numbers <text>   < and > letters.",
		"<3>",
		"  a  <<  b >>  c ",
	}

	for _, in := range inputs {
		once := StripMarkup(&in)
		twice := StripMarkup(&once)
		if once != twice {
			t.Errorf("StripMarkup(%q): %q then %q", in, once, twice)
		}
	}
}

func TestCollapseBrackets_KeepsTrailingWhitespace(t *testing.T) {
	got := collapseBrackets("x < <  y")
	if got != "x «  y" {
		t.Errorf("collapseBrackets() = %q, want %q", got, "x «  y")
	}
}

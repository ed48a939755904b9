package sanitizer

import "testing"

func ptr(s string) *string { return &s }

func TestTrim(t *testing.T) {
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
			name:  "surrounding whitespace",
			input: ptr("  Old     Minotaur \n\n\n  \t \t    "),
			want:  "Old     Minotaur",
		},
		{
			name:  "unicode whitespace",
			input: ptr("  hello　"),
			want:  "hello",
		},
		{
			name:  "only whitespace",
			input: ptr(" \t\n "),
			want:  "",
		},
		{
			name:  "already trimmed",
			input: ptr("a b"),
			want:  "a b",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Trim(tt.input)
			if got != tt.want {
				t.Errorf("Trim() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCollapseWhitespace(t *testing.T) {
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
			name:  "mixed whitespace runs",
			input: ptr("  Old     Minotaur \n\n\n  \t \t    "),
			want:  "Old Minotaur",
		},
		{
			name:  "tabs and newlines between words",
			input: ptr("John's\t\nSalon"),
			want:  "John's Salon",
		},
		{
			name:  "preserve special characters",
			input: ptr(" Café & Spa™ "),
			want:  "Café & Spa™",
		},
		{
			name:  "hebrew characters",
			input: ptr(" תספורת   יוסי "),
			want:  "תספורת יוסי",
		},
		{
			name:  "empty",
			input: ptr(""),
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CollapseWhitespace(tt.input)
			if got != tt.want {
				t.Errorf("CollapseWhitespace() = %q, want %q", got, tt.want)
			}
			again := CollapseWhitespace(&got)
			if again != got {
				t.Errorf("CollapseWhitespace not idempotent: %q -> %q", got, again)
			}
		})
	}
}

func TestTrimAndNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "basic trim",
			input: "  hello  ",
			want:  "hello",
		},
		{
			name:  "multiple spaces",
			input: "hello    world",
			want:  "hello world",
		},
		{
			name:  "tabs and newlines",
			input: "hello\t\nworld",
			want:  "hello world",
		},
		{
			name:  "empty",
			input: "",
			want:  "",
		},
		{
			name:  "only whitespace",
			input: "   ",
			want:  "",
		},
		{
			name:  "invalid utf-8 kept",
			input: " caf\xe9   au\xff lait ",
			want:  "caf\xe9 au\xff lait",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TrimAndNormalize(tt.input)
			if got != tt.want {
				t.Errorf("TrimAndNormalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeLabel(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "convert to lowercase",
			input: "Hazardous Waste",
			want:  "hazardous waste",
		},
		{
			name:  "collapse and trim",
			input: "  HAZARDOUS   Waste  ",
			want:  "hazardous waste",
		},
		{
			name:  "empty string",
			input: "",
			want:  "",
		},
		{
			name:  "invalid utf-8 kept while lowering",
			input: "  Caf\xe9  ÉTÉ ",
			want:  "caf\xe9 été",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeLabel(tt.input)
			if got != tt.want {
				t.Errorf("NormalizeLabel(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

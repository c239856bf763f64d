package utils

import (
	"strings"
	"testing"
)

func TestNormalizeWhitespace(t *testing.T) {
	if got := NormalizeWhitespace("  a \t b\n\nc "); got != "a b c" {
		t.Errorf("NormalizeWhitespace = %q, want %q", got, "a b c")
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name  string
		input string
		width int
		want  string
	}{
		{"disabled", "hello world", 0, "hello world"},
		{"fits", "hello", 5, "hello"},
		{"cut", "hello world", 8, "hello..."},
		{"wide runes", "日本語テキスト", 7, "日本..."},
		{"tiny width", "hello", 2, "he"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Truncate(tt.input, tt.width)
			if got != tt.want {
				t.Errorf("Truncate(%q, %d) = %q, want %q", tt.input, tt.width, got, tt.want)
			}

			if tt.width > 0 && Width(got) > tt.width {
				t.Errorf("Truncate result %q is %d cells wide, limit %d", got, Width(got), tt.width)
			}
		})
	}
}

func TestWrap(t *testing.T) {
	tests := []struct {
		name  string
		input string
		width int
		want  []string
	}{
		{"disabled", "a b c", 0, []string{"a b c"}},
		{"empty", "", 10, []string{""}},
		{"words", "the quick brown fox", 10, []string{"the quick", "brown fox"}},
		{"exact", "abc def", 7, []string{"abc def"}},
		{"long word", "abcdefghij xy", 4, []string{"abcd", "efgh", "ij", "xy"}},
		{"wide runes", "日本 語", 4, []string{"日本", "語"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Wrap(tt.input, tt.width)
			if strings.Join(got, "\n") != strings.Join(tt.want, "\n") || len(got) != len(tt.want) {
				t.Errorf("Wrap(%q, %d) = %q, want %q", tt.input, tt.width, got, tt.want)
			}
		})
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := map[string]string{
		"movie_20240101_120000.json": "movie_20240101_120000.json",
		"../etc/passwd":              "_etc_passwd",
		"my file?.csv":               "my_file_.csv",
		"...":                        "export",
		"":                           "export",
	}

	for input, want := range tests {
		if got := SanitizeFilename(input); got != want {
			t.Errorf("SanitizeFilename(%q) = %q, want %q", input, got, want)
		}
	}
}

// Package utils provides small text helpers shared by the encoders and the CLI.
package utils

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// Ellipsis is appended to truncated text.
const Ellipsis = "..."

// NormalizeWhitespace replaces runs of whitespace with a single space.
func NormalizeWhitespace(str string) string {
	return strings.Join(strings.Fields(str), " ")
}

// Width returns the display width of s in terminal cells.
func Width(s string) int {
	return runewidth.StringWidth(s)
}

// Truncate shortens s to at most width display cells, ending with Ellipsis
// when anything was cut. A width of zero or less disables truncation.
func Truncate(s string, width int) string {
	if width <= 0 || runewidth.StringWidth(s) <= width {
		return s
	}

	if width <= len(Ellipsis) {
		return runewidth.Truncate(s, width, "")
	}

	return runewidth.Truncate(s, width, Ellipsis)
}

// Wrap breaks s into lines of at most width display cells at word
// boundaries. Words wider than width are split by cell. A width of zero or
// less returns s on a single line.
func Wrap(s string, width int) []string {
	if width <= 0 {
		return []string{s}
	}

	var (
		lines []string
		line  strings.Builder
		used  int
	)

	flush := func() {
		lines = append(lines, line.String())
		line.Reset()

		used = 0
	}

	for _, word := range strings.Fields(s) {
		w := runewidth.StringWidth(word)

		for w > width {
			if used > 0 {
				flush()
			}

			head := runewidth.Truncate(word, width, "")
			if head == "" {
				// A single rune wider than the line.
				r := []rune(word)
				head = string(r[0])
			}

			lines = append(lines, head)
			word = word[len(head):]
			w = runewidth.StringWidth(word)
		}

		if word == "" {
			continue
		}

		switch {
		case used == 0:
		case used+1+w <= width:
			line.WriteByte(' ')
			used++
		default:
			flush()
		}

		line.WriteString(word)
		used += w
	}

	if used > 0 || len(lines) == 0 {
		flush()
	}

	return lines
}

// SanitizeFilename replaces every character outside [A-Za-z0-9._-] with an
// underscore and strips leading dots so the result is a plain file name.
func SanitizeFilename(name string) string {
	var b strings.Builder

	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}

	out := strings.TrimLeft(b.String(), ".")
	if out == "" {
		return "export"
	}

	return out
}

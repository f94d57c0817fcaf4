package layout

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// ansiRegex matches ANSI SGR escape sequences.
var ansiRegex = regexp.MustCompile(`\x1b\[[0-9;]*m`)

const resetCode = "\x1b[0m"

// StripANSI removes ANSI escape codes from a string.
func StripANSI(s string) string {
	return ansiRegex.ReplaceAllString(s, "")
}

// VisibleLength returns the visible length of a string (excluding ANSI codes).
func VisibleLength(s string) int {
	return utf8.RuneCountInString(StripANSI(s))
}

// TruncateText truncates text to maxWidth with ellipsis.
// Returns the truncated text and whether truncation occurred.
func TruncateText(text string, maxWidth int, cfg TextConfig) (string, bool) {
	if maxWidth <= 0 {
		return "", true
	}

	runes := []rune(text)
	if len(runes) <= maxWidth {
		return text, false
	}

	ellipsis := []rune(cfg.Ellipsis)
	if maxWidth <= len(ellipsis) {
		return string(ellipsis[:maxWidth]), true
	}

	return string(runes[:maxWidth-len(ellipsis)]) + cfg.Ellipsis, true
}

// TruncatePathFromLeft shortens a slash separated path by dropping leading
// characters, so the deepest folders stay visible: "/A/B/Long" -> ".../Long".
func TruncatePathFromLeft(path string, maxWidth int, cfg TextConfig) string {
	if maxWidth <= 0 {
		return ""
	}

	runes := []rune(path)
	if len(runes) <= maxWidth {
		return path
	}

	ellipsis := []rune(cfg.Ellipsis)
	if maxWidth <= len(ellipsis) {
		return string(ellipsis[:maxWidth])
	}

	return cfg.Ellipsis + string(runes[len(runes)-(maxWidth-len(ellipsis)):])
}

// PadRight pads styled text with spaces to a visible width of width.
func PadRight(s string, width int) string {
	if n := width - VisibleLength(s); n > 0 {
		return s + strings.Repeat(" ", n)
	}
	return s
}

// TruncateANSIAware truncates styled text, preserving ANSI codes.
// Used for tree rows whose titles carry search highlights. A reset code is
// appended after truncation to prevent style bleed.
func TruncateANSIAware(styledText string, maxWidth int, cfg TextConfig) string {
	if maxWidth <= 0 {
		return ""
	}

	if VisibleLength(styledText) <= maxWidth {
		return styledText
	}

	budget := maxWidth - utf8.RuneCountInString(cfg.Ellipsis)
	if budget < 0 {
		budget = 0
	}

	var b strings.Builder
	rest := styledText
	for len(rest) > 0 && budget > 0 {
		if loc := ansiRegex.FindStringIndex(rest); loc != nil && loc[0] == 0 {
			b.WriteString(rest[:loc[1]])
			rest = rest[loc[1]:]
			continue
		}

		r, size := utf8.DecodeRuneInString(rest)
		if r != utf8.RuneError {
			b.WriteRune(r)
			budget--
		}
		rest = rest[size:]
	}

	b.WriteString(cfg.Ellipsis)
	b.WriteString(resetCode)
	return b.String()
}

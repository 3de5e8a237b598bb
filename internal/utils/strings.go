package utils

import "strings"

// Truncate cuts s at maxLen bytes, appending "..." when anything was dropped.
func Truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen < 0 {
		return ""
	}
	return s[:maxLen] + "..."
}

// SafeTruncate truncates on rune boundaries so multibyte characters are never
// split, appending "..." when anything was dropped.
func SafeTruncate(s string, maxLen int) string {
	if maxLen <= 0 || s == "" {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen < 4 {
		return string(runes[:1])
	}
	return string(runes[:maxLen-3]) + "..."
}

// SanitizeOutput strips CSI escape sequences and non-printable bytes from
// subprocess output, keeping newlines and tabs.
func SanitizeOutput(s string) string {
	var b strings.Builder
	inEscape := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '\x1b' && i+1 < len(s) && s[i+1] == '[' {
			inEscape = true
			i++
			continue
		}
		if inEscape {
			// A letter terminates the sequence.
			if (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z') {
				inEscape = false
			}
			continue
		}
		if c >= 32 || c == '\n' || c == '\t' {
			b.WriteByte(c)
		}
	}
	return b.String()
}

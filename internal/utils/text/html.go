package text

import "html"

// EscapeHTML makes user supplied text safe for HTML parse mode.
func EscapeHTML(s string) string {
	return html.EscapeString(s)
}

// Truncate cuts s to at most n runes.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

package text

// isUpper matches A-Z, А-Я and Ё only. Other scripts never count as caps.
func isUpper(r rune) bool {
	return (r >= 'A' && r <= 'Z') || (r >= 'А' && r <= 'Я') || r == 'Ё'
}

// Length counts UTF-16 code units, which is how Telegram measures message length.
func Length(content string) int {
	n := 0
	for _, r := range content {
		if r >= 0x10000 {
			n += 2
			continue
		}
		n++
	}
	return n
}

// CapsPercent is the share of upper-case Latin and Cyrillic letters in content, in percent of Length.
func CapsPercent(content string) float64 {
	total := Length(content)
	if total == 0 {
		return 0
	}
	caps := 0
	for _, r := range content {
		if isUpper(r) {
			caps++
		}
	}
	return float64(caps) / float64(total) * 100
}

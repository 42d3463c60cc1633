package commands

import (
	"regexp"
	"strconv"
	"time"
)

var durationPattern = regexp.MustCompile(`^(\d+)([mhdwM])$`)

var durationUnits = map[string]time.Duration{
	"m": time.Minute,
	"h": time.Hour,
	"d": 24 * time.Hour,
	"w": 7 * 24 * time.Hour,
	"M": 30 * 24 * time.Hour,
}

// ParseDuration reads tokens like 30m, 2h, 1d, 1w or 1M (30 days).
func ParseDuration(token string) (time.Duration, bool) {
	match := durationPattern.FindStringSubmatch(token)
	if match == nil {
		return 0, false
	}
	value, err := strconv.ParseInt(match[1], 10, 64)
	if err != nil || value <= 0 {
		return 0, false
	}
	unit := durationUnits[match[2]]
	if value > int64(maxDuration/unit) {
		return 0, false
	}
	return time.Duration(value) * unit, true
}

// maxDuration bounds tokens so the multiplication cannot overflow.
const maxDuration = 10 * 365 * 24 * time.Hour

// FormatDuration renders d with the largest unit that fits, rounding down.
func FormatDuration(d time.Duration) string {
	seconds := int64(d / time.Second)
	switch {
	case seconds < 60:
		return strconv.FormatInt(seconds, 10) + " сек"
	case seconds < 3600:
		return strconv.FormatInt(seconds/60, 10) + " мин"
	case seconds < 86400:
		return strconv.FormatInt(seconds/3600, 10) + " ч"
	case seconds < 604800:
		return strconv.FormatInt(seconds/86400, 10) + " дн"
	}
	return strconv.FormatInt(seconds/604800, 10) + " нед"
}

package commands

import (
	"testing"
	"time"
)

func TestParseDuration(t *testing.T) {
	t.Parallel()

	tests := []struct {
		token string
		want  time.Duration
		ok    bool
	}{
		{token: "30m", want: 30 * time.Minute, ok: true},
		{token: "1h", want: time.Hour, ok: true},
		{token: "2d", want: 48 * time.Hour, ok: true},
		{token: "1w", want: 7 * 24 * time.Hour, ok: true},
		{token: "1M", want: 30 * 24 * time.Hour, ok: true},
		{token: "1H"},
		{token: "0m"},
		{token: "m"},
		{token: "10"},
		{token: "1h30m"},
		{token: "-1h"},
		{token: "99999999999w"},
		{token: ""},
	}
	for _, tt := range tests {
		got, ok := ParseDuration(tt.token)
		if ok != tt.ok || got != tt.want {
			t.Fatalf("ParseDuration(%q) = %v, %v; want %v, %v", tt.token, got, ok, tt.want, tt.ok)
		}
	}
}

func TestFormatDuration(t *testing.T) {
	t.Parallel()

	tests := map[time.Duration]string{
		45 * time.Second:    "45 сек",
		90 * time.Second:    "1 мин",
		time.Hour:           "1 ч",
		36 * time.Hour:      "1 дн",
		14 * 24 * time.Hour: "2 нед",
		30 * 24 * time.Hour: "4 нед",
	}
	for d, want := range tests {
		if got := FormatDuration(d); got != want {
			t.Fatalf("FormatDuration(%v) = %q, want %q", d, got, want)
		}
	}
}

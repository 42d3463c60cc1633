package text

import (
	"math"
	"testing"
)

func TestCapsPercent(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		want    float64
	}{
		{name: "empty", content: "", want: 0},
		{name: "latin", content: "ABab", want: 50},
		{name: "cyrillic with yo", content: "ЁЖжж", want: 50},
		{name: "digits do not count", content: "AB12", want: 50},
		{name: "emoji counts twice in length", content: "AB😀", want: 50},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := CapsPercent(tt.content); math.Abs(got-tt.want) > 0.001 {
				t.Fatalf("CapsPercent(%q) = %v, want %v", tt.content, got, tt.want)
			}
		})
	}
}

func TestLength(t *testing.T) {
	t.Parallel()

	if got := Length("привет"); got != 6 {
		t.Fatalf("unexpected cyrillic length %d", got)
	}
	if got := Length("👋"); got != 2 {
		t.Fatalf("unexpected emoji length %d", got)
	}
}

func TestEscapeHTMLAndTruncate(t *testing.T) {
	t.Parallel()

	if got := EscapeHTML(`<b>"Tom" & Jerry</b>`); got != "&lt;b&gt;&#34;Tom&#34; &amp; Jerry&lt;/b&gt;" {
		t.Fatalf("unexpected escape %q", got)
	}
	if got := Truncate("привет", 3); got != "при" {
		t.Fatalf("unexpected truncate %q", got)
	}
	if got := Truncate("hi", 5); got != "hi" {
		t.Fatalf("unexpected truncate %q", got)
	}
}

package i18n

import "testing"

func TestGet(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		key  string
		lang string
		want string
	}{
		{name: "source language", key: "Недостаточно звёзд", lang: "ru", want: "Недостаточно звёзд"},
		{name: "empty language", key: "Недостаточно звёзд", lang: "", want: "Недостаточно звёзд"},
		{name: "translated", key: "Недостаточно звёзд", lang: "en", want: "Not enough stars"},
		{name: "case insensitive code", key: "Префикс не найден", lang: " EN ", want: "Prefix not found"},
		{name: "unknown key", key: "нет такого ключа", lang: "en", want: "нет такого ключа"},
		{name: "unknown language", key: "Недостаточно звёзд", lang: "de", want: "Недостаточно звёзд"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Get(tt.key, tt.lang); got != tt.want {
				t.Fatalf("want %q, got %q", tt.want, got)
			}
		})
	}
}

func TestLanguages(t *testing.T) {
	t.Parallel()

	if !IsSupported("EN") || IsSupported("de") {
		t.Fatal("unexpected supported set")
	}
	if got := GetLanguageName("ru"); got != "Русский" {
		t.Fatalf("unexpected name %q", got)
	}
	if got := GetLanguageName("xx"); got != "xx" {
		t.Fatalf("unknown codes are returned as is, got %q", got)
	}
	if list := GetLanguagesList(); len(list) != 2 || list[0] != "en" || list[1] != "ru" {
		t.Fatalf("unexpected list %v", list)
	}
}

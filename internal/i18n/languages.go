package i18n

import (
	"sort"
	"strings"
)

var languageNames = map[string]string{
	"en": "English",
	"ru": "Русский",
}

func GetLanguageName(code string) string {
	normalized := strings.ToLower(code)
	if name, ok := languageNames[normalized]; ok {
		return name
	}
	return code
}

// IsSupported reports whether chats may switch to the given language code.
func IsSupported(code string) bool {
	_, ok := languageNames[strings.ToLower(code)]
	return ok
}

func GetLanguagesList() []string {
	res := make([]string, 0, len(languageNames))
	for code := range languageNames {
		res = append(res, code)
	}
	sort.Strings(res)
	return res
}

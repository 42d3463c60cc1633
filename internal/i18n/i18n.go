// Package i18n translates reply texts. Russian source strings are the keys,
// so the Russian locale never needs a catalog entry.
package i18n

import (
	"strings"
	"sync"

	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v2"

	"github.com/starbot-tg/starbot/resources"
)

const (
	SourceLanguage = "ru"

	catalogPath = "i18n/translations.yml"
)

var state = struct {
	once         sync.Once
	translations map[string]map[string]string
}{}

func load() {
	state.translations = map[string]map[string]string{}
	content, err := resources.FS.ReadFile(catalogPath)
	if err != nil {
		log.WithField("error", err.Error()).Errorln("cant load i18n")
		return
	}
	if err := yaml.Unmarshal(content, &state.translations); err != nil {
		log.WithField("error", err.Error()).Errorln("cant unmarshal i18n")
	}
}

// Get returns the translation of key for lang, or key itself when there is none.
func Get(key, lang string) string {
	lang = strings.ToLower(strings.TrimSpace(lang))
	if lang == "" || lang == SourceLanguage {
		return key
	}
	state.once.Do(load)
	if res, ok := state.translations[key][strings.ToUpper(lang)]; ok && res != "" {
		return res
	}
	log.WithField("lang", lang).Tracef(`no translation for key "%s"`, key)
	return key
}

package config

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"
)

const (
	colorRed         = 31
	colorGreen       = 32
	colorYellow      = 33
	colorBlue        = 36
	colorGray        = 37
	colorLightGreen  = 92
	colorLightYellow = 93
	colorCyan        = 96
)

// LogFormatter renders key=value lines, colored for terminals and plain otherwise.
type LogFormatter struct {
	Colored bool
}

func (f *LogFormatter) Format(entry *log.Entry) ([]byte, error) {
	var b strings.Builder

	f.writePair(&b, "level", strings.ToUpper(entry.Level.String())[:4], levelColor(entry.Level))
	f.writePair(&b, "ts", entry.Time.UTC().Format("2006-01-02 15:04:05.000"), colorLightYellow)

	keys := make([]string, 0, len(entry.Data))
	for k := range entry.Data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		raw, err := json.Marshal(entry.Data[k])
		if err != nil || len(raw) == 0 {
			continue
		}
		s := string(raw)
		valueColor := colorCyan
		if _, err := strconv.ParseFloat(s, 64); err == nil {
			valueColor = colorGreen
		} else if strings.HasPrefix(s, `"`) {
			valueColor = colorLightYellow
		}
		f.writePair(&b, k, s, valueColor)
	}
	f.writePair(&b, "msg", strconv.Quote(entry.Message), colorLightGreen)

	line := strings.NewReplacer("\r", `\r`, "\n", `\n`).Replace(b.String())
	return []byte(line + "\n"), nil
}

func (f *LogFormatter) writePair(b *strings.Builder, key, value string, valueColor int) {
	if b.Len() > 0 {
		b.WriteByte(' ')
	}
	if !f.Colored {
		b.WriteString(key + "=" + value)
		return
	}
	fmt.Fprintf(b, "\x1b[%dm%s\x1b[0m=\x1b[%dm%s\x1b[0m", colorCyan, key, valueColor, value)
}

func levelColor(level log.Level) int {
	switch level {
	case log.DebugLevel, log.TraceLevel:
		return colorGray
	case log.WarnLevel:
		return colorYellow
	case log.ErrorLevel, log.FatalLevel, log.PanicLevel:
		return colorRed
	default:
		return colorBlue
	}
}

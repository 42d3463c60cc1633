package moderation

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"go.uber.org/zap"

	"github.com/starbot-tg/starbot/internal/db"
	"github.com/starbot-tg/starbot/internal/event"
	"github.com/starbot-tg/starbot/internal/infrastructure/telegram"
	"github.com/starbot-tg/starbot/internal/observability"
	"github.com/starbot-tg/starbot/internal/utils/text"
)

const maxReasonRunes = 200

// ModerationKinds are the events that change a member's standing in a chat.
var ModerationKinds = []event.Kind{
	event.KindBan, event.KindSoftBan, event.KindTempBan, event.KindUnban,
	event.KindMute, event.KindTempMute, event.KindUnmute,
	event.KindWarn, event.KindAutoBan, event.KindKick,
	event.KindRestrict, event.KindUnrestrict, event.KindLifted,
}

var kindLabels = map[event.Kind]string{
	event.KindBan:        "🔨 Бан",
	event.KindSoftBan:    "🧹 Софтбан",
	event.KindTempBan:    "⏳ Временный бан",
	event.KindUnban:      "✅ Разбан",
	event.KindMute:       "🔇 Мут",
	event.KindTempMute:   "⏳ Временный мут",
	event.KindUnmute:     "🔊 Размут",
	event.KindWarn:       "⚠️ Предупреждение",
	event.KindAutoBan:    "🚫 Автобан",
	event.KindKick:       "👢 Кик",
	event.KindRestrict:   "🔒 Ограничение",
	event.KindUnrestrict: "🔓 Снятие ограничений",
	event.KindFiltered:   "🧽 Фильтр",
	event.KindLifted:     "⌛ Срок истёк",
	event.KindReport:     "📢 Жалоба",
}

// Audit writes one structured record per event.
func Audit(logger *zap.Logger) event.Handler {
	return func(_ context.Context, e event.Event) {
		fields := []zap.Field{
			zap.String("kind", string(e.Kind)),
			zap.Int64("chat_id", e.ChatID),
			zap.Int64("user_id", e.UserID),
			zap.Int64("actor_id", e.ActorID),
			zap.Time("at", e.At),
		}
		if e.Reason != "" {
			fields = append(fields, zap.String("reason", e.Reason))
		}
		if !e.Until.IsZero() {
			fields = append(fields, zap.Time("until", e.Until))
		}
		logger.Info("moderation event", fields...)
	}
}

// Metrics counts events by kind.
func Metrics() event.Handler {
	return func(_ context.Context, e event.Event) {
		observability.RecordModerationAction(string(e.Kind))
	}
}

type settingsReader interface {
	GetSettings(ctx context.Context, chatID int64) (*db.ChatSettings, error)
}

type sender interface {
	Send(ctx context.Context, m telegram.Message) (int, error)
}

// LogRelay copies moderation events into the chat's log channel, when one is configured.
type LogRelay struct {
	settings settingsReader
	sender   sender
}

func NewLogRelay(settings settingsReader, sender sender) *LogRelay {
	return &LogRelay{settings: settings, sender: sender}
}

func (l *LogRelay) Handle(ctx context.Context, e event.Event) {
	entry := l.getLogEntry().WithFields(log.Fields{
		"method":  "Handle",
		"chat_id": e.ChatID,
		"kind":    string(e.Kind),
	})
	settings, err := l.settings.GetSettings(ctx, e.ChatID)
	if err != nil {
		entry.WithField("error", err.Error()).Warn("cant get settings")
		return
	}
	if settings == nil || settings.LogChannelID == 0 {
		return
	}
	if _, err := l.sender.Send(ctx, telegram.Message{ChatID: settings.LogChannelID, Text: Describe(e)}); err != nil {
		entry.WithField("error", err.Error()).Warn("cant relay to log channel")
	}
}

func (l *LogRelay) getLogEntry() *log.Entry {
	return log.WithField("object", "LogRelay")
}

// Describe renders an event as a single log channel line.
func Describe(e event.Event) string {
	label, ok := kindLabels[e.Kind]
	if !ok {
		label = string(e.Kind)
	}
	line := fmt.Sprintf("%s | чат %d | пользователь %d", label, e.ChatID, e.UserID)
	if e.ActorID != 0 {
		line += fmt.Sprintf(" | админ %d", e.ActorID)
	}
	if !e.Until.IsZero() {
		line += " | до " + e.Until.UTC().Format(time.DateTime)
	}
	if e.Reason != "" {
		line += " | " + text.Truncate(e.Reason, maxReasonRunes)
	}
	return line
}

// Subscribe attaches the audit, metrics and log channel subscribers to the bus.
// A nil audit logger or relay is skipped.
func Subscribe(bus *event.Bus, audit *zap.Logger, relay *LogRelay) {
	if audit != nil {
		bus.Subscribe(Audit(audit))
	}
	bus.Subscribe(Metrics(), append(ModerationKinds, event.KindFiltered)...)
	if relay != nil {
		bus.Subscribe(relay.Handle, ModerationKinds...)
	}
}

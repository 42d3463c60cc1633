package commands

import (
	"strconv"
	"strings"

	"github.com/starbot-tg/starbot/internal/db"
	"github.com/starbot-tg/starbot/internal/i18n"
	"github.com/starbot-tg/starbot/internal/utils/text"
)

const defaultCapsLimit = 70

// updateSettings applies mutate to a copy of the chat settings and stores it.
func (r *Request) updateSettings(mutate func(s *db.ChatSettings)) error {
	settings, err := r.Settings()
	if err != nil {
		return err
	}
	updated := *settings
	mutate(&updated)
	return r.saveSettings(&updated)
}

// switchedOn treats every first argument except "off" as on, including none.
func (r *Request) switchedOn() bool {
	return !strings.EqualFold(r.Arg(0), "off")
}

func (d *Dispatcher) cmdAntispam(r *Request) (Result, error) {
	on := r.switchedOn()
	if err := r.updateSettings(func(s *db.ChatSettings) { s.Antispam = on }); err != nil {
		return Result{}, err
	}
	if on {
		return r.OK(r.T("🛡 Антиспам включён."))
	}
	return r.OK(r.T("🛡 Антиспам отключён."))
}

func (d *Dispatcher) cmdFlood(r *Request) (Result, error) {
	limit, ok := r.IntArg(0)
	if !ok || limit < 1 || limit > 100 {
		return r.Fail(r.T("❌ Укажите число от 1 до 100."))
	}
	if err := r.updateSettings(func(s *db.ChatSettings) { s.FloodLimit = int(limit) }); err != nil {
		return Result{}, err
	}
	return r.OK(r.T("✅ Лимит флуда: %d сообщений/мин", limit))
}

func (d *Dispatcher) cmdBlacklist(r *Request) (Result, error) {
	word := r.ArgsText()
	if _, err := r.store().AddBlacklistWord(r.ctx, r.ChatID(), word); err != nil {
		return Result{}, err
	}
	return r.OK(r.T("✅ Слово \"%s\" добавлено в чёрный список.", text.EscapeHTML(word)))
}

func (d *Dispatcher) cmdWhitelist(r *Request) (Result, error) {
	word := r.ArgsText()
	if _, err := r.store().RemoveBlacklistWord(r.ctx, r.ChatID(), word); err != nil {
		return Result{}, err
	}
	return r.OK(r.T("✅ Слово \"%s\" удалено из чёрного списка.", text.EscapeHTML(word)))
}

func (d *Dispatcher) cmdBadwords(r *Request) (Result, error) {
	words, err := r.store().ListBlacklistWords(r.ctx, r.ChatID())
	if err != nil {
		return Result{}, err
	}
	if len(words) == 0 {
		return r.OK(r.T("📝 Чёрный список слов пуст."))
	}
	return r.OK(r.T("📝 <b>Чёрный список:</b>\n%s", text.EscapeHTML(strings.Join(words, ", "))))
}

// cmdCaps sets the caps percentage; malformed numbers fall back to the default limit.
func (d *Dispatcher) cmdCaps(r *Request) (Result, error) {
	if strings.EqualFold(r.Arg(0), "off") {
		if err := r.updateSettings(func(s *db.ChatSettings) { s.CapsLimit = 0 }); err != nil {
			return Result{}, err
		}
		return r.OK(r.T("✅ Ограничение заглавных букв отключено."))
	}
	limit, ok := r.IntArg(0)
	if !ok || limit <= 0 {
		limit = defaultCapsLimit
	}
	if limit > 100 {
		limit = 100
	}
	if err := r.updateSettings(func(s *db.ChatSettings) { s.CapsLimit = int(limit) }); err != nil {
		return Result{}, err
	}
	return r.OK(r.T("✅ Лимит заглавных букв: %d%%", limit))
}

func (d *Dispatcher) cmdLinks(r *Request) (Result, error) {
	allow := r.switchedOn()
	if err := r.updateSettings(func(s *db.ChatSettings) { s.LinksAllowed = allow }); err != nil {
		return Result{}, err
	}
	if allow {
		return r.OK(r.T("🔗 Ссылки разрешены."))
	}
	return r.OK(r.T("🔗 Ссылки запрещены."))
}

// cmdSetWelcome stores the template only; /welcome toggles it.
func (d *Dispatcher) cmdSetWelcome(r *Request) (Result, error) {
	message := r.ArgsText()
	if err := r.updateSettings(func(s *db.ChatSettings) { s.WelcomeMessage = message }); err != nil {
		return Result{}, err
	}
	return r.OK(r.T("✅ Приветствие установлено:\n%s", text.EscapeHTML(message)))
}

func (d *Dispatcher) cmdSetGoodbye(r *Request) (Result, error) {
	message := r.ArgsText()
	err := r.updateSettings(func(s *db.ChatSettings) {
		s.GoodbyeMessage = message
		s.GoodbyeEnabled = true
	})
	if err != nil {
		return Result{}, err
	}
	return r.OK(r.T("✅ Прощание установлено:\n%s", text.EscapeHTML(message)))
}

func (d *Dispatcher) cmdWelcome(r *Request) (Result, error) {
	on := r.switchedOn()
	if err := r.updateSettings(func(s *db.ChatSettings) { s.WelcomeEnabled = on }); err != nil {
		return Result{}, err
	}
	if on {
		return r.OK(r.T("👋 Приветствия включены."))
	}
	return r.OK(r.T("👋 Приветствия отключены."))
}

func (d *Dispatcher) cmdSetRules(r *Request) (Result, error) {
	rules := r.ArgsText()
	if err := r.updateSettings(func(s *db.ChatSettings) { s.Rules = rules }); err != nil {
		return Result{}, err
	}
	return r.OK(r.T("✅ Правила установлены."))
}

func (d *Dispatcher) cmdRules(r *Request) (Result, error) {
	settings, err := r.Settings()
	if err != nil {
		return Result{}, err
	}
	if settings.Rules == "" {
		return r.OK(r.T("📜 Правила не установлены."))
	}
	return r.OK(r.T("📜 <b>Правила чата:</b>\n\n%s", text.EscapeHTML(settings.Rules)))
}

func (d *Dispatcher) cmdSetLang(r *Request) (Result, error) {
	lang := strings.ToLower(r.Arg(0))
	if !i18n.IsSupported(lang) {
		return r.Fail(r.T("❌ Поддерживаемые языки: %s", strings.Join(i18n.GetLanguagesList(), ", ")))
	}
	if err := r.updateSettings(func(s *db.ChatSettings) { s.Language = lang }); err != nil {
		return Result{}, err
	}
	return r.OK(r.T("🌐 Язык установлен: %s", i18n.GetLanguageName(lang)))
}

// channelArg parses "<id>" or "off" into a channel id, zero meaning disabled.
func (r *Request) channelArg() (int64, bool) {
	if strings.EqualFold(r.Arg(0), "off") {
		return 0, true
	}
	id, err := strconv.ParseInt(r.Arg(0), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return id, true
}

func (d *Dispatcher) cmdLogChannel(r *Request) (Result, error) {
	id, ok := r.channelArg()
	if !ok {
		return r.Fail(r.T("❌ Укажите ID канала или off."))
	}
	if err := r.updateSettings(func(s *db.ChatSettings) { s.LogChannelID = id }); err != nil {
		return Result{}, err
	}
	if id == 0 {
		return r.OK(r.T("📝 Канал логов отключён."))
	}
	return r.OK(r.T("📝 Канал логов: <code>%d</code>", id))
}

func (d *Dispatcher) cmdReportChannel(r *Request) (Result, error) {
	id, ok := r.channelArg()
	if !ok {
		return r.Fail(r.T("❌ Укажите ID канала или off."))
	}
	if err := r.updateSettings(func(s *db.ChatSettings) { s.ReportChannelID = id }); err != nil {
		return Result{}, err
	}
	if id == 0 {
		return r.OK(r.T("📢 Канал жалоб отключён."))
	}
	return r.OK(r.T("📢 Канал жалоб: <code>%d</code>", id))
}

// cmdAutoDelete stores the delay only; the bot does not delete replies on its own.
func (d *Dispatcher) cmdAutoDelete(r *Request) (Result, error) {
	seconds, ok := r.IntArg(0)
	if !ok || seconds < 0 {
		seconds = 0
	}
	if err := r.updateSettings(func(s *db.ChatSettings) { s.AutoDeleteSeconds = int(seconds) }); err != nil {
		return Result{}, err
	}
	if seconds > 0 {
		return r.OK(r.T("🗑 Автоудаление: %d сек.", seconds))
	}
	return r.OK(r.T("🗑 Автоудаление отключено."))
}

func (d *Dispatcher) cmdCleanService(r *Request) (Result, error) {
	on := r.switchedOn()
	if err := r.updateSettings(func(s *db.ChatSettings) { s.CleanService = on }); err != nil {
		return Result{}, err
	}
	if on {
		return r.OK(r.T("🧹 Удаление сервисных сообщений включено."))
	}
	return r.OK(r.T("🧹 Удаление сервисных сообщений отключено."))
}

func (d *Dispatcher) cmdMediaLimit(r *Request) (Result, error) {
	on := r.switchedOn()
	if err := r.updateSettings(func(s *db.ChatSettings) { s.MediaLimit = on }); err != nil {
		return Result{}, err
	}
	if on {
		return r.OK(r.T("🖼 Медиа ограничены."))
	}
	return r.OK(r.T("🖼 Ограничения медиа сняты."))
}

func (d *Dispatcher) cmdStickerLimit(r *Request) (Result, error) {
	on := r.switchedOn()
	if err := r.updateSettings(func(s *db.ChatSettings) { s.StickerLimit = on }); err != nil {
		return Result{}, err
	}
	if on {
		return r.OK(r.T("🎭 Стикеры ограничены."))
	}
	return r.OK(r.T("🎭 Ограничения стикеров сняты."))
}

func (d *Dispatcher) cmdGifLimit(r *Request) (Result, error) {
	on := r.switchedOn()
	if err := r.updateSettings(func(s *db.ChatSettings) { s.GifLimit = on }); err != nil {
		return Result{}, err
	}
	if on {
		return r.OK(r.T("🎬 GIF ограничены."))
	}
	return r.OK(r.T("🎬 Ограничения GIF сняты."))
}

func (d *Dispatcher) cmdVoiceLimit(r *Request) (Result, error) {
	on := r.switchedOn()
	if err := r.updateSettings(func(s *db.ChatSettings) { s.VoiceLimit = on }); err != nil {
		return Result{}, err
	}
	if on {
		return r.OK(r.T("🎤 Голосовые ограничены."))
	}
	return r.OK(r.T("🎤 Ограничения голосовых сняты."))
}

func (d *Dispatcher) cmdForwardLimit(r *Request) (Result, error) {
	on := r.switchedOn()
	if err := r.updateSettings(func(s *db.ChatSettings) { s.ForwardLimit = on }); err != nil {
		return Result{}, err
	}
	if on {
		return r.OK(r.T("↩️ Пересылки ограничены."))
	}
	return r.OK(r.T("↩️ Ограничения пересылок сняты."))
}

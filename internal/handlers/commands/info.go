package commands

import (
	"strconv"
	"strings"

	"github.com/starbot-tg/starbot/internal/db"
	"github.com/starbot-tg/starbot/internal/policy/permissions"
	"github.com/starbot-tg/starbot/internal/trigger"
	"github.com/starbot-tg/starbot/internal/utils/text"
)

const topLimit = 10

var (
	medals = []string{"🥇", "🥈", "🥉"}
	ranks  = []string{"Новичок", "Активист", "Ветеран", "Мастер", "Легенда", "Божество"}
)

// subject is the target of an optional-target command, the invoker otherwise.
func (r *Request) subject() trigger.User {
	if target := r.Target(); target != nil {
		return *target
	}
	return r.Actor()
}

// member loads the chat profile of u; a member without a row reads as a fresh one.
func (r *Request) member(u trigger.User) (*db.User, error) {
	row, err := r.store().GetUser(r.ctx, r.ChatID(), u.ID)
	if err != nil {
		return nil, err
	}
	if row == nil {
		row = &db.User{UserID: u.ID, ChatID: r.ChatID(), Username: u.Username, FirstName: u.FirstName, Level: 1}
	}
	return row, nil
}

func place(i int) string {
	if i < len(medals) {
		return medals[i]
	}
	return strconv.Itoa(i+1) + "."
}

func flag(on bool) string {
	if on {
		return "✅"
	}
	return "❌"
}

func (d *Dispatcher) cmdInfo(r *Request) (Result, error) {
	who := r.subject()
	u, err := r.member(who)
	if err != nil {
		return Result{}, err
	}
	warns, err := r.store().CountWarnings(r.ctx, r.ChatID(), who.ID)
	if err != nil {
		return Result{}, err
	}
	premium, err := d.s.IsPremium(r.ctx, who.ID)
	if err != nil {
		return Result{}, err
	}

	lines := []string{
		r.T("👤 <b>Информация о %s</b>", name(who)),
		"",
		r.T("🆔 ID: <code>%d</code>", who.ID),
		r.T("📛 Имя: %s", name(who)),
	}
	if who.Username != "" {
		lines = append(lines, r.T("👤 Username: @%s", text.EscapeHTML(who.Username)))
	}
	lines = append(lines,
		r.T("⭐ Звёзды: %d", u.Stars),
		r.T("🏆 Репутация: %d", u.Reputation),
		r.T("📊 Уровень: %d", u.Level),
		r.T("💬 Сообщений: %d", u.MessageCount),
		r.T("⚠️ Предупреждений: %d", warns),
	)
	if u.Prefix != "" {
		lines = append(lines, r.T("🏷 Префикс: %s", text.EscapeHTML(u.Prefix)))
	}
	if premium {
		lines = append(lines, r.T("💎 Премиум: Да"))
	}
	return r.OK(strings.Join(lines, "\n"))
}

func (d *Dispatcher) cmdID(r *Request) (Result, error) {
	return r.OK(r.T("🆔 Ваш ID: <code>%d</code>\n💬 ID чата: <code>%d</code>", r.Actor().ID, r.ChatID()))
}

// cmdProfile always shows the invoker.
func (d *Dispatcher) cmdProfile(r *Request) (Result, error) {
	me := r.Actor()
	u, err := r.member(me)
	if err != nil {
		return Result{}, err
	}
	warns, err := r.store().CountWarnings(r.ctx, r.ChatID(), me.ID)
	if err != nil {
		return Result{}, err
	}
	premium, err := d.s.IsPremium(r.ctx, me.ID)
	if err != nil {
		return Result{}, err
	}

	lines := []string{
		r.T("👤 <b>Профиль %s</b>", name(me)),
		"",
		r.T("🆔 ID: <code>%d</code>", me.ID),
	}
	if me.Username != "" {
		lines = append(lines, r.T("📛 Username: @%s", text.EscapeHTML(me.Username)))
	}
	lines = append(lines,
		r.T("⭐ Звёзды: %d", u.Stars),
		r.T("🏆 Репутация: %d", u.Reputation),
		r.T("📊 Уровень: %d (XP: %d)", u.Level, u.XP),
		r.T("💬 Сообщений: %d", u.MessageCount),
		r.T("⚠️ Предупреждений: %d", warns),
	)
	if u.Prefix != "" {
		lines = append(lines, r.T("🏷 Префикс: %s", text.EscapeHTML(u.Prefix)))
	}
	if u.Bio != "" {
		lines = append(lines, r.T("📝 Био: %s", text.EscapeHTML(u.Bio)))
	}
	if premium {
		lines = append(lines, r.T("💎 Статус: Премиум"))
	}
	if _, married := u.PartnerID(); married {
		lines = append(lines, r.T("💑 Женат/замужем"))
	}
	return r.OK(strings.Join(lines, "\n"))
}

func (d *Dispatcher) cmdUsers(r *Request) (Result, error) {
	count, err := r.store().CountUsers(r.ctx, r.ChatID())
	if err != nil {
		return Result{}, err
	}
	return r.OK(r.T("👥 Пользователей в базе: %d", count))
}

func (d *Dispatcher) cmdAdmins(r *Request) (Result, error) {
	admins, err := d.s.GetGateway().Administrators(r.ctx, r.ChatID())
	if err != nil {
		d.getLogEntry().WithField("method", "cmdAdmins").WithField("error", err.Error()).Warn("cant get administrators")
		return r.Fail(r.T("❌ Не удалось получить список админов."))
	}
	var sb strings.Builder
	sb.WriteString(r.T("👑 <b>Администраторы:</b>"))
	sb.WriteString("\n\n")
	for _, admin := range admins {
		status := r.T("⭐ Админ")
		if admin.Status == permissions.StatusCreator {
			status = r.T("👑 Создатель")
		}
		sb.WriteString(status + ": " + text.EscapeHTML(admin.FirstName))
		if admin.Username != "" {
			sb.WriteString(" (@" + text.EscapeHTML(admin.Username) + ")")
		}
		sb.WriteString("\n")
	}
	return r.OK(sb.String())
}

// memberCount reads the platform member count and degrades to zero on failure.
func (d *Dispatcher) memberCount(r *Request) int {
	count, err := d.s.GetGateway().MemberCount(r.ctx, r.ChatID())
	if err != nil {
		d.getLogEntry().WithField("method", "memberCount").WithField("error", err.Error()).Warn("cant get member count")
		return 0
	}
	return count
}

func (d *Dispatcher) cmdChatInfo(r *Request) (Result, error) {
	settings, err := r.Settings()
	if err != nil {
		return Result{}, err
	}
	stats, err := r.store().ChatStats(r.ctx, r.ChatID(), r.now())
	if err != nil {
		return Result{}, err
	}
	title := r.t.ChatTitle
	if title == "" {
		title = settings.Title
	}
	if title == "" {
		title = r.T("Личный чат")
	}

	lines := []string{
		r.T("💬 <b>Информация о чате</b>"),
		"",
		r.T("📛 Название: %s", text.EscapeHTML(title)),
		r.T("🆔 ID: <code>%d</code>", r.ChatID()),
		r.T("👥 Участников: %d", d.memberCount(r)),
		r.T("💬 Всего сообщений: %d", stats.Messages),
		r.T("📅 Сообщений сегодня: %d", stats.MessagesToday),
		r.T("⚠️ Всего предупреждений: %d", stats.Warnings),
		"",
		r.T("⚙️ <b>Настройки:</b>"),
		r.T("• Антиспам: %s", flag(settings.Antispam)),
		r.T("• Приветствие: %s", flag(settings.WelcomeEnabled)),
		r.T("• Ссылки: %s", flag(settings.LinksAllowed)),
		r.T("• Лимит варнов: %d", settings.EffectiveWarnLimit()),
	}
	return r.OK(strings.Join(lines, "\n"))
}

func (d *Dispatcher) cmdTopActivity(r *Request) (Result, error) {
	top, err := r.store().TopUsers(r.ctx, r.ChatID(), db.TopByMessages, topLimit)
	if err != nil {
		return Result{}, err
	}
	if len(top) == 0 {
		return r.OK(r.T("📊 Статистика пуста."))
	}
	var sb strings.Builder
	sb.WriteString(r.T("🏆 <b>Топ активных:</b>"))
	sb.WriteString("\n\n")
	for i, u := range top {
		sb.WriteString(place(i) + " " + r.T("%s: %d сообщ.", dbUserName(u), u.MessageCount) + "\n")
	}
	return r.OK(sb.String())
}

func (d *Dispatcher) cmdTopWarns(r *Request) (Result, error) {
	top, err := r.store().TopWarned(r.ctx, r.ChatID(), topLimit)
	if err != nil {
		return Result{}, err
	}
	if len(top) == 0 {
		return r.OK(r.T("⚠️ Никто не получал предупреждений."))
	}
	var sb strings.Builder
	sb.WriteString(r.T("⚠️ <b>Топ по предупреждениям:</b>"))
	sb.WriteString("\n\n")
	for i, w := range top {
		who := dbUserName(&db.User{UserID: w.UserID, Username: w.Username, FirstName: w.FirstName})
		sb.WriteString(strconv.Itoa(i+1) + ". " + r.T("%s: %d варн(ов)", who, w.Count) + "\n")
	}
	return r.OK(sb.String())
}

func (d *Dispatcher) cmdUserCount(r *Request) (Result, error) {
	return r.OK(r.T("👥 Участников в чате: %d", d.memberCount(r)))
}

func (d *Dispatcher) cmdMessageCount(r *Request) (Result, error) {
	stats, err := r.store().ChatStats(r.ctx, r.ChatID(), r.now())
	if err != nil {
		return Result{}, err
	}
	return r.OK(r.T("💬 Всего сообщений: %d", stats.Messages))
}

func (d *Dispatcher) cmdRank(r *Request) (Result, error) {
	who := r.subject()
	u, err := r.member(who)
	if err != nil {
		return Result{}, err
	}
	level := max(u.Level, 1)
	rank := ranks[min(level/5, len(ranks)-1)]
	return r.OK(r.T("🏅 <b>%s</b>\nРанг: %s\nУровень: %d\nXP: %d/%d", name(who), rank, level, u.XP, level*100))
}

func (d *Dispatcher) cmdReputation(r *Request) (Result, error) {
	who := r.subject()
	u, err := r.member(who)
	if err != nil {
		return Result{}, err
	}
	return r.OK(r.T("🏆 Репутация <b>%s</b>: %d", name(who), u.Reputation))
}

func (d *Dispatcher) cmdRepTop(r *Request) (Result, error) {
	top, err := r.store().TopUsers(r.ctx, r.ChatID(), db.TopByReputation, topLimit)
	if err != nil {
		return Result{}, err
	}
	if len(top) == 0 {
		return r.OK(r.T("🏆 Рейтинг репутации пуст."))
	}
	var sb strings.Builder
	sb.WriteString(r.T("🏆 <b>Топ по репутации:</b>"))
	sb.WriteString("\n\n")
	for i, u := range top {
		sb.WriteString(place(i) + " " + dbUserName(u) + ": " + strconv.FormatInt(u.Reputation, 10) + "\n")
	}
	return r.OK(sb.String())
}

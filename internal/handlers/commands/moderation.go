package commands

import (
	"strconv"
	"strings"
	"time"

	"github.com/starbot-tg/starbot/internal/db"
	"github.com/starbot-tg/starbot/internal/event"
	"github.com/starbot-tg/starbot/internal/infrastructure/telegram"
	"github.com/starbot-tg/starbot/internal/utils/text"
)

const defaultRestrictionToken = "1h"

func (r *Request) reason(parts []string) string {
	reason := strings.TrimSpace(strings.Join(parts, " "))
	if reason == "" {
		return r.T("Не указана")
	}
	return reason
}

func (d *Dispatcher) cmdBan(r *Request) (Result, error) {
	target := *r.Target()
	reason := r.reason(r.Args())
	if err := d.s.GetGateway().Ban(r.ctx, r.ChatID(), target.ID, time.Time{}, false); err != nil {
		return Result{}, err
	}
	r.publish(event.KindBan, target.ID, reason, time.Time{})
	return r.OK(r.T("🚫 <b>%s</b> забанен.\nПричина: %s", name(target), text.EscapeHTML(reason)))
}

// cmdSoftBan removes the member together with their messages but lets them rejoin.
func (d *Dispatcher) cmdSoftBan(r *Request) (Result, error) {
	target := *r.Target()
	reason := r.reason(r.Args())
	gw := d.s.GetGateway()
	if err := gw.Ban(r.ctx, r.ChatID(), target.ID, time.Time{}, true); err != nil {
		return Result{}, err
	}
	if err := gw.Unban(r.ctx, r.ChatID(), target.ID, true); err != nil {
		return Result{}, err
	}
	r.publish(event.KindSoftBan, target.ID, reason, time.Time{})
	return r.OK(r.T("🚫 <b>%s</b> получил софт-бан (удалён с сообщениями).\nПричина: %s", name(target), text.EscapeHTML(reason)))
}

func (d *Dispatcher) cmdTempBan(r *Request) (Result, error) {
	target := *r.Target()
	token := r.Arg(0)
	if token == "" {
		token = defaultRestrictionToken
	}
	duration, ok := ParseDuration(token)
	if !ok {
		return r.Fail(r.T("❌ Неверный формат времени. Пример: 1h, 30m, 1d"))
	}
	reason := r.reason(r.Args()[min(1, len(r.Args())):])
	until := r.now().Add(duration)

	if err := d.s.GetGateway().Ban(r.ctx, r.ChatID(), target.ID, until, false); err != nil {
		return Result{}, err
	}
	if err := r.store().UpsertRestriction(r.ctx, &db.TempRestriction{
		UserID:    target.ID,
		ChatID:    r.ChatID(),
		Type:      db.RestrictionBan,
		AdminID:   r.Actor().ID,
		Reason:    reason,
		ExpiresAt: until,
	}); err != nil {
		return Result{}, err
	}
	r.publish(event.KindTempBan, target.ID, reason, until)
	return r.OK(r.T("⏰ <b>%s</b> забанен на %s.\nПричина: %s", name(target), FormatDuration(duration), text.EscapeHTML(reason)))
}

func (d *Dispatcher) cmdUnban(r *Request) (Result, error) {
	target := *r.Target()
	if err := d.s.GetGateway().Unban(r.ctx, r.ChatID(), target.ID, true); err != nil {
		return Result{}, err
	}
	if err := r.store().DeleteRestriction(r.ctx, r.ChatID(), target.ID, db.RestrictionBan); err != nil {
		return Result{}, err
	}
	r.publish(event.KindUnban, target.ID, "", time.Time{})
	return r.OK(r.T("✅ <b>%s</b> разбанен.", name(target)))
}

// cmdMute mutes for an hour without arguments, for the given duration when the
// first argument is a duration token, and permanently otherwise.
func (d *Dispatcher) cmdMute(r *Request) (Result, error) {
	token := r.Arg(0)
	if token == "" {
		return d.mute(r, time.Hour, nil)
	}
	if duration, ok := ParseDuration(token); ok {
		return d.mute(r, duration, r.Args()[1:])
	}
	return d.mute(r, 0, r.Args())
}

// cmdTempMute insists on a valid duration token when one is given.
func (d *Dispatcher) cmdTempMute(r *Request) (Result, error) {
	token := r.Arg(0)
	if token == "" {
		token = defaultRestrictionToken
	}
	duration, ok := ParseDuration(token)
	if !ok {
		return r.Fail(r.T("❌ Неверный формат времени. Пример: 1h, 30m, 1d"))
	}
	return d.mute(r, duration, r.Args()[min(1, len(r.Args())):])
}

func (d *Dispatcher) mute(r *Request, duration time.Duration, reasonParts []string) (Result, error) {
	target := *r.Target()
	reason := r.reason(reasonParts)
	var until time.Time
	if duration > 0 {
		until = r.now().Add(duration)
	}
	if err := d.s.GetGateway().Restrict(r.ctx, r.ChatID(), target.ID, telegram.Muted, until); err != nil {
		return Result{}, err
	}
	if duration == 0 {
		r.publish(event.KindMute, target.ID, reason, until)
		return r.OK(r.T("🔇 <b>%s</b> замучен.\nПричина: %s", name(target), text.EscapeHTML(reason)))
	}
	if err := r.store().UpsertRestriction(r.ctx, &db.TempRestriction{
		UserID:    target.ID,
		ChatID:    r.ChatID(),
		Type:      db.RestrictionMute,
		AdminID:   r.Actor().ID,
		Reason:    reason,
		ExpiresAt: until,
	}); err != nil {
		return Result{}, err
	}
	r.publish(event.KindTempMute, target.ID, reason, until)
	return r.OK(r.T("🔇 <b>%s</b> замучен на %s.\nПричина: %s", name(target), FormatDuration(duration), text.EscapeHTML(reason)))
}

func (d *Dispatcher) cmdUnmute(r *Request) (Result, error) {
	target := *r.Target()
	if err := d.s.GetGateway().Restrict(r.ctx, r.ChatID(), target.ID, telegram.Full, time.Time{}); err != nil {
		return Result{}, err
	}
	if err := r.store().DeleteRestriction(r.ctx, r.ChatID(), target.ID, db.RestrictionMute); err != nil {
		return Result{}, err
	}
	r.publish(event.KindUnmute, target.ID, "", time.Time{})
	return r.OK(r.T("🔊 <b>%s</b> размучен.", name(target)))
}

func (d *Dispatcher) readOnly(enable bool) HandlerFunc {
	return func(r *Request) (Result, error) {
		if err := r.updateSettings(func(s *db.ChatSettings) { s.ReadOnly = enable }); err != nil {
			return Result{}, err
		}
		if enable {
			return r.OK(r.T("📖 Включён режим только для чтения."))
		}
		return r.OK(r.T("📝 Режим только для чтения отключён."))
	}
}

// cmdWarn appends a warning. The warning that first reaches the chat limit bans
// the target; warnings past the limit are recorded without banning again.
func (d *Dispatcher) cmdWarn(r *Request) (Result, error) {
	target := *r.Target()
	reason := r.reason(r.Args())
	count, err := r.store().AddWarning(r.ctx, &db.Warning{
		UserID:  target.ID,
		ChatID:  r.ChatID(),
		AdminID:   r.Actor().ID,
		Reason:    reason,
		CreatedAt: r.now(),
	})
	if err != nil {
		return Result{}, err
	}
	settings, err := r.Settings()
	if err != nil {
		return Result{}, err
	}
	limit := settings.EffectiveWarnLimit()

	// Checked on every warning, so lowering the limit below a member's
	// count bans them on their next warning.
	if count >= limit {
		if err := d.s.GetGateway().Ban(r.ctx, r.ChatID(), target.ID, time.Time{}, false); err != nil {
			return Result{}, err
		}
		r.publish(event.KindAutoBan, target.ID, reason, time.Time{})
		return r.OK(r.T("⚠️ <b>%s</b> получил %d/%d предупреждений и был забанен.\nПричина: %s",
			name(target), count, limit, text.EscapeHTML(reason)))
	}
	r.publish(event.KindWarn, target.ID, reason, time.Time{})
	return r.OK(r.T("⚠️ <b>%s</b> получил предупреждение (%d/%d).\nПричина: %s",
		name(target), count, limit, text.EscapeHTML(reason)))
}

func (d *Dispatcher) cmdUnwarn(r *Request) (Result, error) {
	target := *r.Target()
	removed, err := r.store().RemoveLastWarning(r.ctx, r.ChatID(), target.ID)
	if err != nil {
		return Result{}, err
	}
	if !removed {
		return r.OK(r.T("❌ У <b>%s</b> нет предупреждений.", name(target)))
	}
	count, err := r.store().CountWarnings(r.ctx, r.ChatID(), target.ID)
	if err != nil {
		return Result{}, err
	}
	return r.OK(r.T("✅ Снято предупреждение с <b>%s</b>. Осталось: %d", name(target), count))
}

// cmdWarns lists the warnings of the target, or of the invoker when there is none.
func (d *Dispatcher) cmdWarns(r *Request) (Result, error) {
	who := r.Actor()
	if target := r.Target(); target != nil {
		who = *target
	}
	warnings, err := r.store().ListWarnings(r.ctx, r.ChatID(), who.ID)
	if err != nil {
		return Result{}, err
	}
	if len(warnings) == 0 {
		return r.OK(r.T("✅ У <b>%s</b> нет предупреждений.", name(who)))
	}
	var sb strings.Builder
	sb.WriteString(r.T("⚠️ <b>Предупреждения %s</b> (%d):", name(who), len(warnings)))
	sb.WriteString("\n\n")
	for i, w := range warnings {
		reason := w.Reason
		if reason == "" {
			reason = r.T("Без причины")
		}
		sb.WriteString(strconv.Itoa(i+1) + ". " + text.EscapeHTML(reason) + " (" + w.CreatedAt.Format("02.01.2006") + ")\n")
	}
	return r.OK(sb.String())
}

func (d *Dispatcher) cmdResetWarns(r *Request) (Result, error) {
	target := *r.Target()
	if _, err := r.store().ResetWarnings(r.ctx, r.ChatID(), target.ID); err != nil {
		return Result{}, err
	}
	return r.OK(r.T("✅ Все предупреждения <b>%s</b> сброшены.", name(target)))
}

func (d *Dispatcher) cmdWarnLimit(r *Request) (Result, error) {
	limit, ok := r.IntArg(0)
	if !ok || limit < 1 || limit > 10 {
		return r.Fail(r.T("❌ Укажите число от 1 до 10."))
	}
	if err := r.updateSettings(func(s *db.ChatSettings) { s.WarnLimit = int(limit) }); err != nil {
		return Result{}, err
	}
	return r.OK(r.T("✅ Лимит предупреждений установлен: %d", limit))
}

// cmdKick bans and immediately unbans so the member can come back.
func (d *Dispatcher) cmdKick(r *Request) (Result, error) {
	target := *r.Target()
	reason := r.reason(r.Args())
	if err := d.kick(r, target.ID); err != nil {
		return Result{}, err
	}
	r.publish(event.KindKick, target.ID, reason, time.Time{})
	return r.OK(r.T("👢 <b>%s</b> кикнут.\nПричина: %s", name(target), text.EscapeHTML(reason)))
}

func (d *Dispatcher) cmdKickMe(r *Request) (Result, error) {
	if err := d.kick(r, r.Actor().ID); err != nil {
		return Result{}, err
	}
	r.publish(event.KindKick, r.Actor().ID, "kickme", time.Time{})
	return r.OK(r.T("👋 %s покинул чат.", name(r.Actor())))
}

func (d *Dispatcher) kick(r *Request, userID int64) error {
	gw := d.s.GetGateway()
	if err := gw.Ban(r.ctx, r.ChatID(), userID, time.Time{}, false); err != nil {
		return err
	}
	return gw.Unban(r.ctx, r.ChatID(), userID, true)
}

func (d *Dispatcher) cmdRestrict(r *Request) (Result, error) {
	target := *r.Target()
	if err := d.s.GetGateway().Restrict(r.ctx, r.ChatID(), target.ID, telegram.Restricted, time.Time{}); err != nil {
		return Result{}, err
	}
	r.publish(event.KindRestrict, target.ID, "", time.Time{})
	return r.OK(r.T("🔒 Права <b>%s</b> ограничены.", name(target)))
}

func (d *Dispatcher) cmdUnrestrict(r *Request) (Result, error) {
	target := *r.Target()
	if err := d.s.GetGateway().Restrict(r.ctx, r.ChatID(), target.ID, telegram.Full, time.Time{}); err != nil {
		return Result{}, err
	}
	r.publish(event.KindUnrestrict, target.ID, "", time.Time{})
	return r.OK(r.T("🔓 Ограничения <b>%s</b> сняты.", name(target)))
}

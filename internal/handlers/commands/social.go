package commands

import (
	"time"
	"unicode/utf8"

	"github.com/pkg/errors"

	"github.com/starbot-tg/starbot/internal/db"
	domainErrors "github.com/starbot-tg/starbot/internal/errors"
	"github.com/starbot-tg/starbot/internal/event"
	"github.com/starbot-tg/starbot/internal/infrastructure/telegram"
	"github.com/starbot-tg/starbot/internal/utils/text"
)

const (
	reputationCooldown = 24 * time.Hour
	defaultAward       = 10
	maxBioLength       = 200
)

var gifts = []string{"🎁", "🎀", "💝", "🌹", "🍫", "🧸", "💎", "🌟"}

// pick returns a uniformly chosen element of items.
func (d *Dispatcher) pick(items []string) string {
	return items[d.randInt(0, len(items)-1)]
}

// cmdReport stores the report and relays it to the report channel when one is configured.
func (d *Dispatcher) cmdReport(r *Request) (Result, error) {
	target := *r.Target()
	reason := r.reason(r.Args())
	if _, err := r.store().AddReport(r.ctx, &db.Report{
		ChatID:         r.ChatID(),
		ReporterID:     r.Actor().ID,
		ReportedUserID: target.ID,
		Reason:         reason,
		Status:         "pending",
	}); err != nil {
		return Result{}, err
	}
	r.publish(event.KindReport, target.ID, reason, time.Time{})

	settings, err := r.Settings()
	if err != nil {
		return Result{}, err
	}
	if settings.ReportChannelID != 0 {
		notice := r.T("📢 Жалоба в чате <code>%d</code>: %s на %s.\nПричина: %s",
			r.ChatID(), bold(r.Actor()), bold(target), text.EscapeHTML(reason))
		if _, err := d.s.GetGateway().Send(r.ctx, telegram.Message{ChatID: settings.ReportChannelID, Text: notice}); err != nil {
			d.getLogEntry().WithField("method", "cmdReport").WithField("error", err.Error()).Warn("cant relay report")
		}
	}
	return r.OK(r.T("📢 Жалоба на <b>%s</b> отправлена.\nПричина: %s", name(target), text.EscapeHTML(reason)))
}

func (d *Dispatcher) cmdCompliment(r *Request) (Result, error) {
	return r.OK("💝 " + bold(r.Actor()) + " говорит " + bold(*r.Target()) + ":\n" + d.pick(compliments))
}

func (d *Dispatcher) cmdThank(r *Request) (Result, error) {
	return r.OK("🙏 " + bold(r.Actor()) + " благодарит " + bold(*r.Target()) + "! Спасибо! 💖")
}

func (d *Dispatcher) cmdHug(r *Request) (Result, error) {
	return r.OK("🤗 " + bold(r.Actor()) + " обнимает " + bold(*r.Target()) + "! 💕")
}

func (d *Dispatcher) cmdGift(r *Request) (Result, error) {
	gift := d.pick(gifts)
	return r.OK(gift + " " + bold(r.Actor()) + " дарит подарок " + bold(*r.Target()) + "! " + gift)
}

// cmdRep gives +1 once per giver and receiver per day.
func (d *Dispatcher) cmdRep(r *Request) (Result, error) {
	target := *r.Target()
	if target.ID == r.Actor().ID {
		return r.Fail(r.T("❌ Нельзя повысить репутацию самому себе!"))
	}
	rep, err := r.store().GiveReputation(r.ctx, r.ChatID(), r.Actor().ID, target.ID, 1, "От пользователя", reputationCooldown, r.now())
	switch {
	case errors.Is(err, domainErrors.ErrCooldown):
		return r.Fail(r.T("⏳ Вы уже повышали репутацию этому пользователю сегодня."))
	case errors.Is(err, domainErrors.ErrSelfTarget):
		return r.Fail(r.T("❌ Нельзя повысить репутацию самому себе!"))
	case err != nil:
		return Result{}, err
	}
	return r.OK(r.T("⬆️ <b>%s</b> повысил репутацию <b>%s</b>!\nТекущая репутация: %d", name(r.Actor()), name(target), rep))
}

// cmdAward grants reputation without a cooldown.
func (d *Dispatcher) cmdAward(r *Request) (Result, error) {
	target := *r.Target()
	points, ok := r.IntArg(0)
	if !ok || points == 0 {
		points = defaultAward
	}
	_, err := r.store().GiveReputation(r.ctx, r.ChatID(), r.Actor().ID, target.ID, points, "Награда от админа", 0, r.now())
	if errors.Is(err, domainErrors.ErrSelfTarget) {
		return r.Fail(r.T("❌ Нельзя повысить репутацию самому себе!"))
	}
	if err != nil {
		return Result{}, err
	}
	return r.OK(r.T("🎖 <b>%s</b> получил +%d репутации!", name(target), points))
}

func (d *Dispatcher) cmdMarry(r *Request) (Result, error) {
	target := *r.Target()
	if target.ID == r.Actor().ID {
		return r.Fail(r.T("❌ Нельзя жениться на себе!"))
	}
	me, err := r.member(r.Actor())
	if err != nil {
		return Result{}, err
	}
	if _, married := me.PartnerID(); married {
		return r.Fail(r.T("💔 Вы уже женаты/замужем!"))
	}
	partner, err := r.member(target)
	if err != nil {
		return Result{}, err
	}
	if _, married := partner.PartnerID(); married {
		return r.Fail(r.T("💔 %s уже женат/замужем!", name(target)))
	}

	err = r.store().Marry(r.ctx, r.ChatID(), r.Actor().ID, target.ID)
	if errors.Is(err, domainErrors.ErrAlreadyMarried) {
		return r.Fail(r.T("💔 %s уже женат/замужем!", name(target)))
	}
	if err != nil {
		return Result{}, err
	}
	return r.OK("💍 " + bold(r.Actor()) + " и " + bold(target) + " теперь женаты! 🎉💕")
}

// cmdAcceptMarry is a congratulation only: /marry already links both members.
func (d *Dispatcher) cmdAcceptMarry(r *Request) (Result, error) {
	return r.OK("💍 " + text.EscapeHTML(r.Actor().FirstName) + " согласился! Поздравляем с браком! 💕")
}

func (d *Dispatcher) cmdDivorce(r *Request) (Result, error) {
	_, err := r.store().Divorce(r.ctx, r.ChatID(), r.Actor().ID)
	if errors.Is(err, domainErrors.ErrNotMarried) {
		return r.Fail(r.T("❌ Вы не состоите в браке."))
	}
	if err != nil {
		return Result{}, err
	}
	return r.OK("😢 Развод оформлен...")
}

func (d *Dispatcher) cmdBio(r *Request) (Result, error) {
	bio := r.ArgsText()
	if utf8.RuneCountInString(bio) > maxBioLength {
		return r.Fail(r.T("❌ Био не должно превышать 200 символов."))
	}
	if err := r.store().SetBio(r.ctx, r.ChatID(), r.Actor().ID, bio); err != nil {
		return Result{}, err
	}
	return r.OK(r.T("✅ Ваше био обновлено: %s", text.EscapeHTML(bio)))
}

func (d *Dispatcher) cmdAFK(r *Request) (Result, error) {
	reason := r.ArgsText()
	if err := r.store().SetAFK(r.ctx, r.ChatID(), r.Actor().ID, reason, r.now()); err != nil {
		return Result{}, err
	}
	msg := "💤 " + text.EscapeHTML(r.Actor().FirstName) + " отошёл"
	if reason != "" {
		msg += ": " + text.EscapeHTML(reason)
	}
	return r.OK(msg)
}

func (d *Dispatcher) cmdBack(r *Request) (Result, error) {
	me, err := r.member(r.Actor())
	if err != nil {
		return Result{}, err
	}
	if !me.IsAFK {
		return r.Fail(r.T("❓ Вы не были в AFK режиме."))
	}
	if _, err := r.store().ClearAFK(r.ctx, r.ChatID(), r.Actor().ID); err != nil {
		return Result{}, err
	}
	return r.OK(r.T("👋 %s вернулся! (был AFK %d мин.)", text.EscapeHTML(r.Actor().FirstName), r.minutesSince(me.AFKSince)))
}

// minutesSince counts whole minutes from since to now, zero when since is unknown.
func (r *Request) minutesSince(since *time.Time) int {
	if since == nil {
		return 0
	}
	return max(int(r.now().Sub(*since)/time.Minute), 0)
}

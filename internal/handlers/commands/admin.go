package commands

import (
	"time"

	"github.com/starbot-tg/starbot/internal/db"
	"github.com/starbot-tg/starbot/internal/utils/text"
)

const (
	defaultGrantStars = 100
	ownerBalance      = 9999999
	premiumMonth      = 30 * 24 * time.Hour
	whoCandidates     = 1000
)

var transformations = []string{"👽", "🤖", "🧛", "🧟", "👻", "🦇", "🐺"}

func (d *Dispatcher) cmdPromote(r *Request) (Result, error) {
	target := *r.Target()
	if err := d.s.GetGateway().Promote(r.ctx, r.ChatID(), target.ID, true); err != nil {
		return Result{}, err
	}
	return r.OK(r.T("👑 <b>%s</b> назначен модератором!", name(target)))
}

func (d *Dispatcher) cmdDemote(r *Request) (Result, error) {
	target := *r.Target()
	if err := d.s.GetGateway().Promote(r.ctx, r.ChatID(), target.ID, false); err != nil {
		return Result{}, err
	}
	return r.OK(r.T("📉 <b>%s</b> снят с должности модератора.", name(target)))
}

func (d *Dispatcher) cmdPin(r *Request) (Result, error) {
	if r.t.ReplyToMessageID == 0 {
		return r.Fail(r.T("❌ Ответьте на сообщение, которое хотите закрепить."))
	}
	if err := d.s.GetGateway().Pin(r.ctx, r.ChatID(), r.t.ReplyToMessageID); err != nil {
		return Result{}, err
	}
	return r.OK(r.T("📌 Сообщение закреплено!"))
}

// cmdUnpin unpins the replied message, or the most recent pin without a reply.
func (d *Dispatcher) cmdUnpin(r *Request) (Result, error) {
	if err := d.s.GetGateway().Unpin(r.ctx, r.ChatID(), r.t.ReplyToMessageID); err != nil {
		return Result{}, err
	}
	return r.OK(r.T("📌 Сообщение откреплено!"))
}

func (d *Dispatcher) cmdInvite(r *Request) (Result, error) {
	link, err := d.s.GetGateway().InviteLink(r.ctx, r.ChatID())
	if err != nil {
		d.getLogEntry().WithField("method", "cmdInvite").WithField("error", err.Error()).Warn("cant export invite link")
		return r.Fail(r.T("❌ Не удалось получить ссылку."))
	}
	return r.OK(r.T("🔗 Ссылка-приглашение:\n%s", link))
}

func (d *Dispatcher) cmdClean(r *Request) (Result, error) {
	return r.OK(r.T("🧹 Функция очистки в разработке."))
}

func (d *Dispatcher) cmdBackup(r *Request) (Result, error) {
	return r.OK(r.T("💾 Резервное копирование в разработке."))
}

func (d *Dispatcher) cmdTest(r *Request) (Result, error) {
	return r.OK(r.T("📝 Тесты в разработке! Следите за обновлениями."))
}

func (d *Dispatcher) cmdGivePremium(r *Request) (Result, error) {
	target := *r.Target()
	months, ok := r.IntArg(0)
	if !ok || months <= 0 {
		months = 1
	}
	if _, err := r.store().GrantSubscription(r.ctx, target.ID, db.SubscriptionPremium, time.Duration(months)*premiumMonth, r.now()); err != nil {
		return Result{}, err
	}
	return r.OK(r.T("💎 <b>%s</b> получил Премиум на %d мес.!", name(target), months))
}

func (d *Dispatcher) cmdGiveStars(r *Request) (Result, error) {
	target := *r.Target()
	amount, ok := r.IntArg(0)
	if !ok || amount <= 0 {
		amount = defaultGrantStars
	}
	if _, err := r.store().AddStars(r.ctx, r.ChatID(), target.ID, amount, db.TxGrant, "Подарок от владельца"); err != nil {
		return Result{}, err
	}
	return r.OK(r.T("⭐ <b>%s</b> получил %d звёзд!", name(target), amount))
}

func (d *Dispatcher) cmdAddCoins(r *Request) (Result, error) {
	target := *r.Target()
	if err := r.store().SetStars(r.ctx, r.ChatID(), target.ID, ownerBalance, db.TxGrant, "addcoins"); err != nil {
		return Result{}, err
	}
	return r.OK(r.T("💰 Баланс пользователя <b>%s</b> установлен на 9,999,999 ⭐!", name(target)))
}

func (d *Dispatcher) cmdFunnyText(r *Request) (Result, error) {
	return r.OK("😂 <b>Смешные фразы активированы!</b> Текст: \"" + d.pick(funnyPhrases) + "\"")
}

func (d *Dispatcher) cmdClown(r *Request) (Result, error) {
	return r.OK("🤡 " + r.firstName() + " получил статус <b>КЛОУН</b> на 1 час! 🎪")
}

func (d *Dispatcher) cmdUnmuteAll(r *Request) (Result, error) {
	return r.OK("🔊 Размут активирован во всех чатах! Теперь можно спамить везде! 😄")
}

func (d *Dispatcher) cmdTransform(r *Request) (Result, error) {
	return r.OK("✨ " + r.firstName() + " превратился в " + d.pick(transformations) + "!")
}

// cmdWho names a random known member of the chat.
func (d *Dispatcher) cmdWho(r *Request) (Result, error) {
	members, err := r.store().ListUsers(r.ctx, r.ChatID(), whoCandidates)
	if err != nil {
		return Result{}, err
	}
	if len(members) == 0 {
		return r.Fail(r.T("❌ В чате нет пользователей."))
	}
	what := r.ArgsText()
	if what == "" {
		what = "сегодня"
	}
	chosen := members[d.randInt(0, len(members)-1)]
	return r.OK(sprintf(d.pick(prophecies), dbUserName(chosen), text.EscapeHTML(what)))
}

package commands

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/starbot-tg/starbot/internal/db"
	domainErrors "github.com/starbot-tg/starbot/internal/errors"
	"github.com/starbot-tg/starbot/internal/infrastructure/telegram"
	"github.com/starbot-tg/starbot/internal/utils/text"
)

const (
	dailyCooldown  = 24 * time.Hour
	weeklyCooldown = 7 * 24 * time.Hour

	premiumPrice = 200

	virtasPerTenStars = 10000
	defaultVirtasBuy  = 10

	shopButtons = 5
)

func (r *Request) firstName() string {
	return text.EscapeHTML(r.Actor().FirstName)
}

func (r *Request) balance() (int64, error) {
	me, err := r.member(r.Actor())
	if err != nil {
		return 0, err
	}
	return me.Stars, nil
}

func (d *Dispatcher) cmdStars(r *Request) (Result, error) {
	stars, err := r.balance()
	if err != nil {
		return Result{}, err
	}
	return r.OK(r.T("⭐ %s, у вас %d звёзд.", r.firstName(), stars))
}

// hoursUntil rounds the remaining cooldown up to whole hours.
func (r *Request) hoursUntil(at time.Time) int {
	return int(math.Ceil(at.Sub(r.now()).Hours()))
}

func (d *Dispatcher) cmdBonus(r *Request) (Result, error) {
	amount := int64(d.randInt(50, 100))
	res, err := r.store().ClaimBonus(r.ctx, r.ChatID(), r.Actor().ID, db.TxDailyBonus, amount, dailyCooldown, r.now())
	if errors.Is(err, domainErrors.ErrCooldown) {
		return r.Fail(r.T("⏳ %s, Бонус можно получить через %d ч.", r.firstName(), r.hoursUntil(res.NextAt)))
	}
	if err != nil {
		return Result{}, err
	}
	return r.OK(r.T("🎁 %s, Вы получили %d ⭐", r.firstName(), res.Amount))
}

func (d *Dispatcher) cmdWeekly(r *Request) (Result, error) {
	amount := int64(d.randInt(300, 499))
	res, err := r.store().ClaimBonus(r.ctx, r.ChatID(), r.Actor().ID, db.TxWeeklyBonus, amount, weeklyCooldown, r.now())
	if errors.Is(err, domainErrors.ErrCooldown) {
		return r.Fail(r.T("⏳ %s, еженедельный бонус можно получить через %d ч.", r.firstName(), r.hoursUntil(res.NextAt)))
	}
	if err != nil {
		return Result{}, err
	}
	return r.OK(r.T("📅 %s получил еженедельный бонус: %d ⭐!", r.firstName(), res.Amount))
}

// transfer moves the first argument's amount from the actor to the target.
// It returns a non-empty rejection when the move did not happen.
func (d *Dispatcher) transfer(r *Request) (amount int64, rejection string, err error) {
	target := *r.Target()
	if target.ID == r.Actor().ID {
		return 0, r.T("❌ Нельзя перевести звёзды самому себе!"), nil
	}
	amount, ok := r.IntArg(0)
	if !ok || amount <= 0 {
		return 0, r.T("❌ Укажите сумму для перевода."), nil
	}
	err = r.store().Transfer(r.ctx, r.ChatID(), r.Actor().ID, target.ID, amount, db.TxTransfer)
	if errors.Is(err, domainErrors.ErrInsufficientFunds) {
		stars, err := r.balance()
		if err != nil {
			return 0, "", err
		}
		return 0, r.T("❌ Недостаточно звёзд! У вас: %d ⭐", stars), nil
	}
	if err != nil {
		return 0, "", err
	}
	return amount, "", nil
}

func (d *Dispatcher) cmdTransfer(r *Request) (Result, error) {
	amount, rejection, err := d.transfer(r)
	switch {
	case err != nil:
		return Result{}, err
	case rejection != "":
		return r.Fail(rejection)
	}
	return r.OK(r.T("✅ %s перевёл %d ⭐ пользователю %s!", r.firstName(), amount, name(*r.Target())))
}

func (d *Dispatcher) cmdPay(r *Request) (Result, error) {
	if r.Target() == nil {
		return r.Fail(r.T("❌ Укажите пользователя и сумму. Пример: /pay @юзер 100"))
	}
	if err := r.rememberTarget(*r.Target()); err != nil {
		return Result{}, err
	}
	amount, rejection, err := d.transfer(r)
	switch {
	case err != nil:
		return Result{}, err
	case rejection != "":
		return r.Fail(rejection)
	}
	return r.OK(r.T("💰 %s отправил %d ⭐ пользователю %s!", r.firstName(), amount, name(*r.Target())))
}

func (d *Dispatcher) cmdTopRich(r *Request) (Result, error) {
	top, err := r.store().TopUsers(r.ctx, r.ChatID(), db.TopByStars, topLimit)
	if err != nil {
		return Result{}, err
	}
	if len(top) == 0 {
		return r.OK(r.T("📊 Топ богачей пуст."))
	}
	var sb strings.Builder
	sb.WriteString(r.T("💰 <b>Топ богачей чата</b>"))
	sb.WriteString("\n\n")
	for i, u := range top {
		sb.WriteString(strconv.Itoa(i+1) + ". " + dbUserName(u) + " — " + strconv.FormatInt(u.Stars, 10) + " ⭐\n")
	}
	return r.OK(sb.String())
}

func (d *Dispatcher) cmdShop(r *Request) (Result, error) {
	prefixes, err := r.store().ListShopPrefixes(r.ctx)
	if err != nil {
		return Result{}, err
	}
	if len(prefixes) == 0 {
		return r.OK(r.T("🏪 Магазин пуст."))
	}
	var (
		sb      strings.Builder
		buttons []telegram.Button
	)
	sb.WriteString(r.T("🏪 <b>Магазин префиксов</b>"))
	sb.WriteString("\n\n")
	for i, p := range prefixes {
		sb.WriteString(strconv.FormatInt(p.ID, 10) + ". " + text.EscapeHTML(p.Display) + " — " + strconv.FormatInt(p.Price, 10) + " ⭐\n")
		if i < shopButtons {
			buttons = append(buttons, telegram.Button{
				Text: p.Display + " (" + strconv.FormatInt(p.Price, 10) + "⭐)",
				Data: "buy_prefix:" + strconv.FormatInt(p.ID, 10),
			})
		}
	}
	sb.WriteString("\n")
	sb.WriteString(r.T("Купить: /buy [номер]"))
	if err := r.ReplyWithKeyboard(sb.String(), [][]telegram.Button{buttons}); err != nil {
		return Result{}, err
	}
	return Result{Success: true, Message: sb.String()}, nil
}

// buyPrefix purchases a prefix and renders the outcome for both /buy and the shop keyboard.
func (d *Dispatcher) buyPrefix(r *Request, prefixID int64) (string, bool, error) {
	prefix, err := r.store().BuyPrefix(r.ctx, r.ChatID(), r.Actor().ID, prefixID, r.now())
	switch {
	case errors.Is(err, domainErrors.ErrNotFound):
		return r.T("Префикс не найден"), false, nil
	case errors.Is(err, domainErrors.ErrInsufficientFunds):
		return r.T("Недостаточно звёзд"), false, nil
	case errors.Is(err, domainErrors.ErrAlreadyOwned):
		return r.T("У вас уже есть этот префикс"), false, nil
	case err != nil:
		return "", false, err
	}
	return r.T("Вы купили префикс %s!", text.EscapeHTML(prefix.Display)), true, nil
}

// cmdBuy accepts a shop number or a prefix name.
func (d *Dispatcher) cmdBuy(r *Request) (Result, error) {
	id, ok := r.IntArg(0)
	if !ok {
		prefix, err := r.store().FindShopPrefix(r.ctx, r.ArgsText())
		if err != nil {
			return Result{}, err
		}
		if prefix == nil {
			return r.Fail(r.T("❌ Укажите номер префикса. Посмотреть: /shop"))
		}
		id = prefix.ID
	}
	msg, bought, err := d.buyPrefix(r, id)
	if err != nil {
		return Result{}, err
	}
	if !bought {
		return r.Fail(msg)
	}
	return r.OK(msg)
}

func (d *Dispatcher) cmdPrefixes(r *Request) (Result, error) {
	owned, err := r.store().ListOwnedPrefixes(r.ctx, r.Actor().ID)
	if err != nil {
		return Result{}, err
	}
	if len(owned) == 0 {
		return r.OK(r.T("🏷 У вас нет префиксов. Посмотреть магазин: /shop"))
	}
	var sb strings.Builder
	sb.WriteString(r.T("🏷 <b>Ваши префиксы:</b>"))
	sb.WriteString("\n\n")
	for i, p := range owned {
		sb.WriteString(strconv.Itoa(i+1) + ". " + text.EscapeHTML(p.Display) + "\n")
	}
	sb.WriteString("\n")
	sb.WriteString(r.T("Установить: /setprefix [номер]"))
	return r.OK(sb.String())
}

// cmdSetPrefix selects one of the owned prefixes by its position in /prefixes.
func (d *Dispatcher) cmdSetPrefix(r *Request) (Result, error) {
	if arg := strings.ToLower(r.Arg(0)); arg == "off" || arg == "none" {
		if err := r.store().SetPrefix(r.ctx, r.ChatID(), r.Actor().ID, ""); err != nil {
			return Result{}, err
		}
		return r.OK(r.T("✅ Префикс снят."))
	}
	owned, err := r.store().ListOwnedPrefixes(r.ctx, r.Actor().ID)
	if err != nil {
		return Result{}, err
	}
	n, ok := r.IntArg(0)
	if !ok || n < 1 || n > int64(len(owned)) {
		return r.Fail(r.T("❌ Неверный номер. Посмотреть: /prefixes"))
	}
	prefix := owned[n-1]
	if err := r.store().SetPrefix(r.ctx, r.ChatID(), r.Actor().ID, prefix.Display); err != nil {
		return Result{}, err
	}
	return r.OK(r.T("✅ Установлен префикс: %s", text.EscapeHTML(prefix.Display)))
}

func (d *Dispatcher) cmdVirtas(r *Request) (Result, error) {
	global, err := r.store().GetGlobalUser(r.ctx, r.Actor().ID)
	if err != nil {
		return Result{}, err
	}
	var virtas int64
	if global != nil {
		virtas = global.Virtas
	}
	return r.OK(r.T("💚 %s, у вас %d виртов.", r.firstName(), virtas))
}

// cmdBuyVirtas converts stars at (stars/10)*10000; amounts must be multiples of ten.
func (d *Dispatcher) cmdBuyVirtas(r *Request) (Result, error) {
	stars, ok := r.IntArg(0)
	if !ok || stars == 0 {
		stars = defaultVirtasBuy
	}
	if stars <= 0 || stars%10 != 0 {
		return r.Fail(r.T("❌ Сумма должна быть кратна 10 ⭐ (напр. /buyvirtas 10)"))
	}
	virtas := stars / 10 * virtasPerTenStars
	_, err := r.store().BuyVirtas(r.ctx, r.ChatID(), r.Actor().ID, stars, virtas)
	if errors.Is(err, domainErrors.ErrInsufficientFunds) {
		return r.Fail(r.T("❌ Недостаточно звёзд! Нужно: %d ⭐", stars))
	}
	if err != nil {
		return Result{}, err
	}
	return r.OK(r.T("✅ Вы купили %d виртов за %d ⭐!", virtas, stars))
}

func (d *Dispatcher) cmdBuyPremium(r *Request) (Result, error) {
	_, err := r.store().BuyPremium(r.ctx, r.ChatID(), r.Actor().ID, premiumPrice, premiumMonth, r.now())
	if errors.Is(err, domainErrors.ErrInsufficientFunds) {
		stars, err := r.balance()
		if err != nil {
			return Result{}, err
		}
		return r.Fail(r.T("❌ Недостаточно звёзд! Стоимость Premium: %d ⭐\nУ вас: %d ⭐\nПополните баланс через /daily или /bonus.", premiumPrice, stars))
	}
	if err != nil {
		return Result{}, err
	}
	return r.OK(r.T("🌟 <b>%s</b>, поздравляем! Вы приобрели Premium доступ на 1 месяц!\n\nТеперь вам доступны:\n✅ /smeshnoy_text\n✅ /kloun\n✅ /unmuteall\n✅ /transform", r.firstName()))
}

package commands

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/starbot-tg/starbot/internal/db"
	domainErrors "github.com/starbot-tg/starbot/internal/errors"
	"github.com/starbot-tg/starbot/internal/utils/text"
)

const (
	defaultBet       = 10
	defaultRandomMax = 100
	fishingPerDay    = 20
)

var (
	diceFaces   = []string{"⚀", "⚁", "⚂", "⚃", "⚄", "⚅"}
	slotSymbols = []string{"🍒", "🍋", "🍊", "🍇", "💎", "7️⃣"}
	fishKinds   = []string{"🐠", "🐟", "🐡", "🦈", "🐙", "🦑", "🦐"}
	cats        = []string{"🐱", "😺", "😸", "😹", "😻", "😼", "😽", "🙀", "😿", "😾"}
	dogs        = []string{"🐶", "🐕", "🦮", "🐕‍🦺", "🐩"}
)

func (d *Dispatcher) cmdCoin(r *Request) (Result, error) {
	if d.randInt(0, 1) == 0 {
		return r.OK("🪙 Орёл!")
	}
	return r.OK("🪙 Решка!")
}

func (d *Dispatcher) cmdRandom(r *Request) (Result, error) {
	upper, ok := r.IntArg(0)
	if !ok || upper <= 0 {
		upper = defaultRandomMax
	}
	roll := d.randInt(1, int(upper))
	return r.OK("🎲 Случайное число (1-" + strconv.FormatInt(upper, 10) + "): <b>" + strconv.Itoa(roll) + "</b>")
}

func (d *Dispatcher) cmdRoll(r *Request) (Result, error) {
	roll := d.randInt(1, len(diceFaces))
	return r.OK("🎲 Вы выбросили: " + diceFaces[roll-1] + " (" + strconv.Itoa(roll) + ")")
}

// stake validates a bet against the current balance and returns a rejection when it cannot be covered.
func (r *Request) stake() (int64, string, error) {
	bet, ok := r.IntArg(0)
	if !ok || bet <= 0 {
		bet = defaultBet
	}
	stars, err := r.balance()
	if err != nil {
		return 0, "", err
	}
	if stars < bet {
		return 0, r.T("❌ Недостаточно звёзд! У вас: %d ⭐", stars), nil
	}
	return bet, "", nil
}

// settle applies a game outcome; a debit that lost a race with another spend is reported as a rejection.
func (r *Request) settle(delta int64, description string) (string, error) {
	_, err := r.store().AddStars(r.ctx, r.ChatID(), r.Actor().ID, delta, db.TxGame, description)
	if errors.Is(err, domainErrors.ErrInsufficientFunds) {
		stars, err := r.balance()
		if err != nil {
			return "", err
		}
		return r.T("❌ Недостаточно звёзд! У вас: %d ⭐", stars), nil
	}
	return "", err
}

// cmdCasino wins 45% of the time and pays x3 one time in ten, x2 otherwise.
func (d *Dispatcher) cmdCasino(r *Request) (Result, error) {
	bet, rejection, err := r.stake()
	switch {
	case err != nil:
		return Result{}, err
	case rejection != "":
		return r.Fail(rejection)
	}
	win := d.randInt(1, 100) <= 45
	multiplier := int64(2)
	if d.randInt(1, 10) == 1 {
		multiplier = 3
	}

	delta, description := -bet, "casino loss"
	if win {
		delta, description = bet*multiplier, "casino win"
	}
	rejection, err = r.settle(delta, description)
	switch {
	case err != nil:
		return Result{}, err
	case rejection != "":
		return r.Fail(rejection)
	}
	if win {
		return r.OK("🎰 " + r.firstName() + " выиграл " + strconv.FormatInt(delta, 10) + " ⭐! 🎉")
	}
	return r.OK("🎰 " + r.firstName() + " проиграл " + strconv.FormatInt(bet, 10) + " ⭐ 😢")
}

// cmdSlot pays bet*10 for three equal symbols and bet*2 for any pair, net of the stake.
func (d *Dispatcher) cmdSlot(r *Request) (Result, error) {
	bet, rejection, err := r.stake()
	switch {
	case err != nil:
		return Result{}, err
	case rejection != "":
		return r.Fail(rejection)
	}
	s1, s2, s3 := d.pick(slotSymbols), d.pick(slotSymbols), d.pick(slotSymbols)

	var win int64
	switch {
	case s1 == s2 && s2 == s3:
		win = bet * 10
	case s1 == s2 || s2 == s3 || s1 == s3:
		win = bet * 2
	}
	delta, description := -bet, "slot loss"
	if win > 0 {
		delta, description = win-bet, "slot win"
	}
	rejection, err = r.settle(delta, description)
	switch {
	case err != nil:
		return Result{}, err
	case rejection != "":
		return r.Fail(rejection)
	}

	msg := "🎰 | " + s1 + " | " + s2 + " | " + s3 + " |\n\n"
	if win > 0 {
		msg += "🎉 " + r.firstName() + " выиграл " + strconv.FormatInt(win, 10) + " ⭐!"
	} else {
		msg += "😢 " + r.firstName() + " проиграл " + strconv.FormatInt(bet, 10) + " ⭐"
	}
	return r.OK(msg)
}

func (d *Dispatcher) cmdGuess(r *Request) (Result, error) {
	guess, ok := r.IntArg(0)
	if !ok || guess < 1 || guess > 10 {
		return r.OK(r.T("🎯 Угадай число от 1 до 10! Используй: /guess [число]"))
	}
	secret := int64(d.randInt(1, 10))
	if guess == secret {
		return r.OK("🎉 Правильно! Загаданное число: " + strconv.FormatInt(secret, 10))
	}
	return r.OK("❌ Неверно! Загаданное число: " + strconv.FormatInt(secret, 10))
}

func (d *Dispatcher) cmdQuiz(r *Request) (Result, error) {
	q := quizzes[d.randInt(0, len(quizzes)-1)]
	return r.OK("❓ <b>Викторина:</b>\n" + q.question + "\n\n<tg-spoiler>Ответ: " + q.answer + "</tg-spoiler>")
}

func (d *Dispatcher) cmdFact(r *Request) (Result, error) {
	return r.OK("💡 <b>Интересный факт:</b>\n" + d.pick(facts))
}

func (d *Dispatcher) cmdJoke(r *Request) (Result, error) {
	return r.OK("😄 " + d.pick(jokes))
}

func (d *Dispatcher) cmdQuote(r *Request) (Result, error) {
	return r.OK("💬 " + d.pick(quotes))
}

func (d *Dispatcher) cmdCat(r *Request) (Result, error) {
	return r.OK(d.pick(cats) + " Мяу!")
}

func (d *Dispatcher) cmdDog(r *Request) (Result, error) {
	return r.OK(d.pick(dogs) + " Гав!")
}

func compatEmoji(percent int) string {
	switch {
	case percent > 80:
		return "💕"
	case percent > 60:
		return "💖"
	case percent > 40:
		return "💗"
	case percent > 20:
		return "💙"
	}
	return "💔"
}

func (d *Dispatcher) cmdCompat(r *Request) (Result, error) {
	percent := d.randInt(0, 100)
	return r.OK(compatEmoji(percent) + " Совместимость " + bold(r.Actor()) + " и " + bold(*r.Target()) + ": " + strconv.Itoa(percent) + "%")
}

func (d *Dispatcher) cmdRate(r *Request) (Result, error) {
	thing := r.ArgsText()
	if thing == "" {
		thing = "это"
	}
	rating := d.randInt(0, 10)
	return r.OK("📊 Оценка \"" + text.EscapeHTML(thing) + "\": " + strconv.Itoa(rating) + "/10\n" +
		strings.Repeat("⭐", rating) + strings.Repeat("☆", 10-rating))
}

// cmdFish allows twenty catches per user per calendar day; the counter is bumped atomically.
func (d *Dispatcher) cmdFish(r *Request) (Result, error) {
	used, err := r.store().IncrementDailyCounter(r.ctx, r.Actor().ID, db.CounterFishing, r.now(), fishingPerDay)
	if errors.Is(err, domainErrors.ErrLimitReached) {
		return r.Fail(r.T("🎣 Вы уже исчерпали лимит рыбалки на сегодня (%d/%d).", fishingPerDay, fishingPerDay))
	}
	if err != nil {
		return Result{}, err
	}
	fish := d.pick(fishKinds)
	weight := d.randInt(5, 54)
	reward := int64(weight / 2)
	if _, err := r.store().AddStars(r.ctx, r.ChatID(), r.Actor().ID, reward, db.TxFishing, fish); err != nil {
		return Result{}, err
	}
	return r.OK("🎣 " + r.firstName() + " поймал " + fish + " весом " + strconv.Itoa(weight) + "кг! Награда: " +
		strconv.FormatInt(reward, 10) + " ⭐ (" + strconv.Itoa(used) + "/" + strconv.Itoa(fishingPerDay) + " за сегодня)")
}

func (d *Dispatcher) cmdDuel(r *Request) (Result, error) {
	target := r.Target()
	if target == nil {
		return r.Fail(r.T("❌ Укажите противника для дуэли: /duel @юзер"))
	}
	if err := r.rememberTarget(*target); err != nil {
		return Result{}, err
	}
	winner := r.Actor()
	if d.randInt(0, 1) == 1 {
		winner = *target
	}
	reward := int64(d.randInt(10, 59))
	if _, err := r.store().AddStars(r.ctx, r.ChatID(), winner.ID, reward, db.TxDuel, "duel"); err != nil {
		return Result{}, err
	}
	return r.OK("⚔️ " + bold(r.Actor()) + " вызвал " + bold(*target) + " на дуэль!\n\n🏆 Победитель: " + bold(winner) +
		"! Награда: " + strconv.FormatInt(reward, 10) + " ⭐")
}

package commands

import (
	"github.com/starbot-tg/starbot/internal/infrastructure/telegram"
	"github.com/starbot-tg/starbot/internal/utils/text"
)

const helpText = `📚 <b>Полный список команд бота</b>

👤 <b>Профиль</b>
/profile - инфо профиля
/balance (или /stars) - баланс звёзд
/id - ваш ID

💰 <b>Экономика</b>
/daily - ежедневная награда ⭐
/weekly - еженедельная награда ⭐
/pay @юзер - отправить звёзды
/top_rich - топ богачей
/shop - магазин префиксов
/virtas - показать виртов

🎮 <b>Игры и казино</b>
/roll - кубик 🎲
/coin - монета 🪙
/slots - слоты 🎰
/casino - казино 🎰
/fish - рыбалка 🎣
/duel @юзер - дуэль ⚔️

💍 <b>Брачная система</b>
/marry @юзер - предложение 💍
/accept_marry - принять 💕
/divorce - развод 😢

💎 <b>Троллинг консоль - Премиум (200⭐)</b>
/smeshnoy_text - смешные фразы
/kloun - статус клоуна
/unmuteall - размут везде ✅
/transform или /превратить - трансформация

⚔️ <b>RP: Боевые (текстовые команды)</b>
ударить, убить, выстрелить, зарезать, отравить, взорвать, сжечь, задушить, толкнуть, пнуть, связать, арестовать, обезглавить, расстрелять

❤️ <b>RP: Позитивные</b>
обнять, целовать, погладить, улыбнуться, подмигнуть, пожать, утешить, похвалить, танец, комплимент, ужин, цветы, серенада

😊 <b>RP: Эмоции</b>
смеяться, плакать, вздохнуть, нахмуриться, удивиться, испугаться, разозлиться, восхититься, усмехнуться

🏃 <b>RP: Физические</b>
бежать, спрятаться, замереть, присесть, лечь, встать, прыгнуть, нырнуть, кивнуть

🔮 <b>RP: Магия</b>
заморозить, поджечь, ослепить, молния, проклятие, снять, исцелить, воскресить

🌟 <b>Команда дня</b>
/кто [текст] - предсказание 🎰

🛡️ <b>Модерация (админам)</b>
/ban, /tempban, /mute, /tempmute, /warn, /kick, /restrict
бан, разбан, мут, размут, кик, варн (можно без /)

⚙️ <b>Настройки чата (админам)</b>
/antispam, /caps, /links, /blacklist, /set_welcome, /set_rules, /media_limit, /set_lang

👑 <b>Команды владельца</b>
/givepremium, /givestars, /addcoins`

const premiumMenuText = `💎 <b>Троллинг консоль - Премиум</b>

Эксклюзивные функции для вас:
🎨 /smeshnoy_text - смешные фразы
🤡 /kloun - статус клоуна на 1 час
🔊 /unmuteall - размут во всех чатах
🦄 /transform - трансформация в 7 образов

Стоимость: 200 ⭐/месяц

Купить: /buypremium`

const premiumOwnedText = `🎨 <b>Троллинг консоль - Премиум</b>

У вас есть доступ к:
✅ /smeshnoy_text - смешные фразы
✅ /kloun - статус клоуна
✅ /unmuteall - размут везде
✅ /transform - трансформация

Стоимость: 200 ⭐/месяц`

var startKeyboard = [][]telegram.Button{
	{{Text: "💰 Донат", Data: "menu:donate"}, {Text: "📜 Команды", Data: "menu:commands"}},
	{{Text: "🎨 Троллинг консоль", Data: "menu:premium"}, {Text: "👑 Владелец", Data: "menu:owner"}},
}

func (d *Dispatcher) cmdStart(r *Request) (Result, error) {
	msg := "Привет, " + r.firstName() + "! 👋\n\nЯ многофункциональный бот. Все команды можно писать на русском языке!\n\nИспользуй кнопки ниже для навигации:"
	if err := r.ReplyWithKeyboard(msg, startKeyboard); err != nil {
		return Result{}, err
	}
	return Result{Success: true, Message: msg}, nil
}

func (d *Dispatcher) cmdHelp(r *Request) (Result, error) {
	return r.OK(helpText)
}

// menuText renders the screen behind a start-menu button; ok is false for unknown sections.
func (d *Dispatcher) menuText(r *Request, section string) (string, bool, error) {
	contact := text.EscapeHTML(d.s.GetPolicy().OwnerContact())
	switch section {
	case "commands":
		return helpText, true, nil
	case "premium":
		premium, err := d.s.IsPremium(r.ctx, r.Actor().ID)
		if err != nil {
			return "", false, err
		}
		if premium {
			return premiumOwnedText, true, nil
		}
		return premiumMenuText, true, nil
	case "donate":
		return "💰 <b>Донат</b>\n\nПоддержать бота можно покупкой Premium: /buypremium\nПо вопросам пишите @" + contact, true, nil
	case "owner":
		return "👑 <b>Владелец бота</b>: @" + contact, true, nil
	}
	return "", false, nil
}

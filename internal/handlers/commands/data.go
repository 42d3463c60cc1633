package commands

var jokes = []string{
	"Почему программисты не любят природу? Слишком много багов! 🐛",
	"Жена программиста: - Сходи в магазин, купи батон хлеба. Если будут яйца - возьми десяток. Программист вернулся с 10 батонами хлеба. 🍞",
	"- Алло, это прачечная? - Нет, это программисты. - А почему вы мне белье стираете? - Мы не стираем, мы логи чистим!",
	"Оптимист видит стакан наполовину полным. Пессимист — наполовину пустым. Программист — стакан вдвое больше, чем нужно.",
	"Почему у программистов всегда холодный кофе? Потому что они пьют Java! ☕",
}

var facts = []string{
	"Первый программист в мире — женщина. Ада Лавлейс написала первую программу в 1843 году.",
	"Название «баг» появилось, когда в 1947 году в компьютер залетела настоящая моль.",
	"Google был изначально назван BackRub из-за анализа обратных ссылок.",
	"Первый домен .com был зарегистрирован в 1985 году — symbolics.com",
	"В космосе нельзя плакать — слезы не падают вниз из-за невесомости. 🚀",
}

var quotes = []string{
	"Единственный способ делать великую работу — любить то, что ты делаешь. — Стив Джобс",
	"Успех — это способность идти от неудачи к неудаче, не теряя энтузиазма. — Уинстон Черчилль",
	"Будь собой — остальные роли уже заняты. — Оскар Уайльд",
	"Жизнь — это то, что происходит с тобой, пока ты строишь планы. — Джон Леннон",
	"Делай что должно, и будь что будет. — Марк Аврелий",
}

var compliments = []string{
	"Ты потрясающий человек! ✨",
	"Твоя улыбка освещает весь чат! 😊",
	"Ты делаешь этот мир лучше! 🌟",
	"Ты умнее, чем думаешь! 🧠",
	"С тобой всегда интересно! 💫",
}

type quizEntry struct {
	question string
	answer   string
}

var quizzes = []quizEntry{
	{"Столица Франции?", "Париж"},
	{"Сколько планет в Солнечной системе?", "8"},
	{"Какой химический символ у золота?", "Au"},
	{"В каком году началась Вторая мировая война?", "1939"},
	{"Самая большая страна в мире?", "Россия"},
}

var funnyPhrases = []string{
	"чево картошка утонула",
	"это как так-то произошло?",
	"мля, кто это вообще сделал?",
	"ахахаха, смотрите что произошло!",
	"это не может быть правдой!",
}

// prophecies are filled with the chosen member and the question text.
var prophecies = []string{
	"Ясно вижу, что %s %s 🔮",
	"Звезды говорят, что %s %s ✨",
	"Думаю, что %s %s 🤔",
	"По карте видно, что %s %s 🃏",
	"Хрустальный шар показывает, что %s %s 🎱",
}

type roleplay struct {
	keyword  string
	template string
}

// roleplays are matched as substrings in this order; the first hit wins.
var roleplays = []roleplay{
	{"ударить", "👊 {user} ударил {target}!"},
	{"убить", "☠️ {user} убил {target}!"},
	{"выстрелить", "🔫 {user} выстрелил в {target}!"},
	{"зарезать", "🔪 {user} зарезал {target}!"},
	{"отравить", "☠️ {user} отравил {target}!"},
	{"взорвать", "💣 {user} взорвал {target}!"},
	{"сжечь", "🔥 {user} сжёг {target}!"},
	{"задушить", "😵 {user} задушил {target}!"},
	{"толкнуть", "💥 {user} толкнул {target}!"},
	{"пнуть", "🦶 {user} пнул {target}!"},
	{"связать", "🔗 {user} связал {target}!"},
	{"арестовать", "🚔 {user} арестовал {target}!"},
	{"обезглавить", "⚔️ {user} обезглавил {target}!"},
	{"расстрелять", "🔫 {user} расстрелял {target}!"},
	{"обнять", "🤗 {user} обнял {target}!"},
	{"целовать", "💋 {user} поцеловал {target}!"},
	{"поцеловать", "💋 {user} поцеловал {target}!"},
	{"погладить", "🤚 {user} погладил {target}!"},
	{"улыбнуться", "😊 {user} улыбнулся {target}!"},
	{"подмигнуть", "😉 {user} подмигнул {target}!"},
	{"пожать", "🤝 {user} пожал руку {target}!"},
	{"утешить", "🥺 {user} утешил {target}!"},
	{"похвалить", "👏 {user} похвалил {target}!"},
	{"танец", "💃 {user} танцует с {target}!"},
	{"комплимент", "✨ {user} сделал комплимент {target}!"},
	{"ужин", "🍽️ {user} зовёт {target} на ужин!"},
	{"цветы", "🌹 {user} дарит цветы {target}!"},
	{"серенада", "🎵 {user} поёт серенаду {target}!"},
	{"смеяться", "😂 {user} смеётся над {target}!"},
	{"плакать", "😭 {user} плачет рядом с {target}!"},
	{"вздохнуть", "😔 {user} вздохнул перед {target}!"},
	{"нахмуриться", "😠 {user} нахмурился на {target}!"},
	{"удивиться", "😮 {user} удивился {target}!"},
	{"испугаться", "😨 {user} испугался {target}!"},
	{"разозлиться", "😡 {user} разозлился на {target}!"},
	{"восхититься", "🤩 {user} восхитился {target}!"},
	{"усмехнуться", "😏 {user} усмехнулся {target}!"},
	{"бежать", "🏃 {user} бежит к {target}!"},
	{"спрятаться", "🙈 {user} спрятался от {target}!"},
	{"замереть", "🧊 {user} замер перед {target}!"},
	{"присесть", "🪑 {user} присел рядом с {target}!"},
	{"лечь", "🛏️ {user} лёг рядом с {target}!"},
	{"встать", "⬆️ {user} встал перед {target}!"},
	{"прыгнуть", "🦘 {user} прыгнул на {target}!"},
	{"нырнуть", "🤿 {user} нырнул с {target}!"},
	{"кивнуть", "👤 {user} кивнул {target}!"},
	{"заморозить", "❄️ {user} заморозил {target}!"},
	{"поджечь", "🔥 {user} поджёг {target}!"},
	{"ослепить", "👁️ {user} ослепил {target}!"},
	{"молния", "⚡ {user} ударил молнией {target}!"},
	{"проклятие", "🔮 {user} наложил проклятие на {target}!"},
	{"снять", "🌟 {user} снял проклятие с {target}!"},
	{"исцелить", "💚 {user} исцелил {target}!"},
	{"воскресить", "✝️ {user} воскресил {target}!"},
}

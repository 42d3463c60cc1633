package commands

import (
	"github.com/starbot-tg/starbot/internal/policy/permissions"
)

const (
	capAdmin   = permissions.CapabilityAdmin
	capOwner   = permissions.CapabilityOwner
	capPremium = permissions.CapabilityPremium
)

// commandTable lists every command the bot understands.
func (d *Dispatcher) commandTable() *Registry {
	reg := NewRegistry()

	// moderation
	reg.MustRegister(
		Descriptor{Name: "ban", Capability: capAdmin, Target: true, Handler: d.cmdBan},
		Descriptor{Name: "softban", Capability: capAdmin, Target: true, Handler: d.cmdSoftBan},
		Descriptor{Name: "tempban", Capability: capAdmin, Target: true, Handler: d.cmdTempBan},
		Descriptor{Name: "unban", Capability: capAdmin, Target: true, Handler: d.cmdUnban},
		Descriptor{Name: "mute", Capability: capAdmin, Target: true, Handler: d.cmdMute},
		Descriptor{Name: "tempmute", Capability: capAdmin, Target: true, Handler: d.cmdTempMute},
		Descriptor{Name: "unmute", Capability: capAdmin, Target: true, Handler: d.cmdUnmute},
		Descriptor{Name: "ro", Capability: capAdmin, Handler: d.readOnly(true)},
		Descriptor{Name: "unro", Capability: capAdmin, Handler: d.readOnly(false)},
		Descriptor{Name: "warn", Capability: capAdmin, Target: true, Handler: d.cmdWarn},
		Descriptor{Name: "unwarn", Capability: capAdmin, Target: true, Handler: d.cmdUnwarn},
		Descriptor{Name: "warns", Handler: d.cmdWarns},
		Descriptor{Name: "resetwarns", Capability: capAdmin, Target: true, Handler: d.cmdResetWarns},
		Descriptor{Name: "warnlimit", Capability: capAdmin, Handler: d.cmdWarnLimit},
		Descriptor{Name: "kick", Capability: capAdmin, Target: true, Handler: d.cmdKick},
		Descriptor{Name: "kickme", Handler: d.cmdKickMe},
		Descriptor{Name: "restrict", Capability: capAdmin, Target: true, Handler: d.cmdRestrict},
		Descriptor{Name: "unrestrict", Capability: capAdmin, Target: true, Handler: d.cmdUnrestrict},
	)

	// chat settings
	reg.MustRegister(
		Descriptor{Name: "antispam", Capability: capAdmin, Handler: d.cmdAntispam},
		Descriptor{Name: "flood", Capability: capAdmin, Handler: d.cmdFlood},
		Descriptor{
			Name: "blacklist", Capability: capAdmin, MinArgs: 1,
			Usage:   "❌ Укажите слово для добавления в чёрный список.",
			Handler: d.cmdBlacklist,
		},
		Descriptor{
			Name: "whitelist", Capability: capAdmin, MinArgs: 1,
			Usage:   "❌ Укажите слово для удаления из чёрного списка.",
			Handler: d.cmdWhitelist,
		},
		Descriptor{Name: "badwords", Handler: d.cmdBadwords},
		Descriptor{Name: "caps", Capability: capAdmin, Handler: d.cmdCaps},
		Descriptor{Name: "links", Capability: capAdmin, Handler: d.cmdLinks},
		Descriptor{
			Name: "set_welcome", Capability: capAdmin, MinArgs: 1,
			Usage:   "❌ Укажите текст приветствия. Используйте {username} для имени.",
			Handler: d.cmdSetWelcome,
		},
		Descriptor{
			Name: "set_goodbye", Capability: capAdmin, MinArgs: 1,
			Usage:   "❌ Укажите текст прощания.",
			Handler: d.cmdSetGoodbye,
		},
		Descriptor{Name: "welcome", Capability: capAdmin, Handler: d.cmdWelcome},
		Descriptor{
			Name: "set_rules", Capability: capAdmin, MinArgs: 1,
			Usage:   "❌ Укажите правила чата.",
			Handler: d.cmdSetRules,
		},
		Descriptor{Name: "rules", Handler: d.cmdRules},
		Descriptor{Name: "set_lang", Capability: capAdmin, Handler: d.cmdSetLang},
		Descriptor{Name: "log_channel", Capability: capAdmin, Handler: d.cmdLogChannel},
		Descriptor{Name: "report_channel", Capability: capAdmin, Handler: d.cmdReportChannel},
		Descriptor{Name: "auto_delete", Capability: capAdmin, Handler: d.cmdAutoDelete},
		Descriptor{Name: "clean_service", Capability: capAdmin, Handler: d.cmdCleanService},
		Descriptor{Name: "media_limit", Capability: capAdmin, Handler: d.cmdMediaLimit},
		Descriptor{Name: "sticker_limit", Capability: capAdmin, Handler: d.cmdStickerLimit},
		Descriptor{Name: "gif_limit", Capability: capAdmin, Handler: d.cmdGifLimit},
		Descriptor{Name: "voice_limit", Capability: capAdmin, Handler: d.cmdVoiceLimit},
		Descriptor{Name: "forward_limit", Capability: capAdmin, Handler: d.cmdForwardLimit},
	)

	// information
	reg.MustRegister(
		Descriptor{Name: "info", Aliases: []string{"whois"}, Handler: d.cmdInfo},
		Descriptor{Name: "id", Handler: d.cmdID},
		Descriptor{Name: "profile", Aliases: []string{"me", "my_stats"}, Handler: d.cmdProfile},
		Descriptor{Name: "users", Handler: d.cmdUsers},
		Descriptor{Name: "admins", Aliases: []string{"adminlist", "mods", "modlist"}, Handler: d.cmdAdmins},
		Descriptor{Name: "chat_info", Aliases: []string{"stats"}, Handler: d.cmdChatInfo},
		Descriptor{Name: "top_activity", Aliases: []string{"top", "leaderboard"}, Handler: d.cmdTopActivity},
		Descriptor{Name: "top_warns", Handler: d.cmdTopWarns},
		Descriptor{Name: "user_count", Handler: d.cmdUserCount},
		Descriptor{Name: "message_count", Handler: d.cmdMessageCount},
		Descriptor{Name: "rank", Aliases: []string{"level"}, Handler: d.cmdRank},
		Descriptor{Name: "reputation", Aliases: []string{"karma"}, Handler: d.cmdReputation},
		Descriptor{Name: "rep_top", Handler: d.cmdRepTop},
	)

	// social
	reg.MustRegister(
		Descriptor{Name: "report", Target: true, Handler: d.cmdReport},
		Descriptor{Name: "compliment", Target: true, Handler: d.cmdCompliment},
		Descriptor{Name: "thank", Target: true, Handler: d.cmdThank},
		Descriptor{Name: "hug", Target: true, Handler: d.cmdHug},
		Descriptor{Name: "gift", Target: true, Handler: d.cmdGift},
		Descriptor{Name: "rep", Target: true, Handler: d.cmdRep},
		Descriptor{Name: "award", Capability: capAdmin, Target: true, Handler: d.cmdAward},
		Descriptor{Name: "marry", Target: true, Handler: d.cmdMarry},
		Descriptor{Name: "accept_marry", Aliases: []string{"accept"}, Handler: d.cmdAcceptMarry},
		Descriptor{Name: "divorce", Handler: d.cmdDivorce},
		Descriptor{
			Name: "bio", MinArgs: 1,
			Usage:   "❌ Укажите текст для био.",
			Handler: d.cmdBio,
		},
		Descriptor{Name: "afk", Handler: d.cmdAFK},
		Descriptor{Name: "back", Handler: d.cmdBack},
	)

	// economy
	reg.MustRegister(
		Descriptor{Name: "stars", Aliases: []string{"balance"}, Handler: d.cmdStars},
		Descriptor{Name: "bonus", Aliases: []string{"daily"}, Handler: d.cmdBonus},
		Descriptor{Name: "weekly", Handler: d.cmdWeekly},
		Descriptor{Name: "transfer", Target: true, Handler: d.cmdTransfer},
		Descriptor{Name: "pay", Handler: d.cmdPay},
		Descriptor{Name: "toprich", Aliases: []string{"top_rich"}, Handler: d.cmdTopRich},
		Descriptor{Name: "shop", Handler: d.cmdShop},
		Descriptor{Name: "buy", Handler: d.cmdBuy},
		Descriptor{Name: "prefixes", Aliases: []string{"myprefixes"}, Handler: d.cmdPrefixes},
		Descriptor{Name: "setprefix", Handler: d.cmdSetPrefix},
		Descriptor{Name: "virtas", Handler: d.cmdVirtas},
		Descriptor{Name: "buyvirtas", Handler: d.cmdBuyVirtas},
		Descriptor{Name: "buypremium", Aliases: []string{"troling", "trolling", "консоль", "premium"}, Handler: d.cmdBuyPremium},
	)

	// games
	reg.MustRegister(
		Descriptor{Name: "coin", Handler: d.cmdCoin},
		Descriptor{Name: "random", Handler: d.cmdRandom},
		Descriptor{Name: "roll", Aliases: []string{"dice"}, Handler: d.cmdRoll},
		Descriptor{Name: "casino", Handler: d.cmdCasino},
		Descriptor{Name: "slot", Aliases: []string{"slots"}, Handler: d.cmdSlot},
		Descriptor{Name: "guess", Handler: d.cmdGuess},
		Descriptor{Name: "quiz", Aliases: []string{"trivia"}, Handler: d.cmdQuiz},
		Descriptor{Name: "compat", Target: true, Handler: d.cmdCompat},
		Descriptor{Name: "rate", Handler: d.cmdRate},
		Descriptor{Name: "joke", Handler: d.cmdJoke},
		Descriptor{Name: "fact", Handler: d.cmdFact},
		Descriptor{Name: "quote", Handler: d.cmdQuote},
		Descriptor{Name: "cat", Handler: d.cmdCat},
		Descriptor{Name: "dog", Handler: d.cmdDog},
		Descriptor{Name: "fish", Handler: d.cmdFish},
		Descriptor{Name: "duel", Handler: d.cmdDuel},
	)

	// chat administration
	reg.MustRegister(
		Descriptor{Name: "promote", Capability: capAdmin, Target: true, Handler: d.cmdPromote},
		Descriptor{Name: "demote", Capability: capAdmin, Target: true, Handler: d.cmdDemote},
		Descriptor{Name: "pin", Capability: capAdmin, Handler: d.cmdPin},
		Descriptor{Name: "unpin", Capability: capAdmin, Handler: d.cmdUnpin},
		Descriptor{Name: "invite", Capability: capAdmin, Handler: d.cmdInvite},
		Descriptor{Name: "clean", Aliases: []string{"clean_all"}, Capability: capAdmin, Handler: d.cmdClean},
		Descriptor{Name: "backup", Capability: capAdmin, Handler: d.cmdBackup},
		Descriptor{Name: "test", Capability: capAdmin, Handler: d.cmdTest},
	)

	// owner
	reg.MustRegister(
		Descriptor{Name: "givepremium", Capability: capOwner, Target: true, Handler: d.cmdGivePremium},
		Descriptor{Name: "givestars", Capability: capOwner, Target: true, Handler: d.cmdGiveStars},
		Descriptor{Name: "addcoins", Capability: capOwner, Target: true, Handler: d.cmdAddCoins},
	)

	// troll console
	reg.MustRegister(
		Descriptor{Name: "smeshnoy_text", Aliases: []string{"смешный_текст"}, Capability: capPremium, Handler: d.cmdFunnyText},
		Descriptor{Name: "kloun", Aliases: []string{"клоун"}, Capability: capPremium, Handler: d.cmdClown},
		Descriptor{Name: "unmuteall", Aliases: []string{"размут"}, Capability: capPremium, Handler: d.cmdUnmuteAll},
		Descriptor{Name: "transform", Aliases: []string{"превратить"}, Capability: capPremium, Handler: d.cmdTransform},
		Descriptor{Name: "кто", Handler: d.cmdWho},
	)

	reg.MustRegister(
		Descriptor{Name: "start", Handler: d.cmdStart},
		Descriptor{Name: "help", Handler: d.cmdHelp},
	)
	return reg
}

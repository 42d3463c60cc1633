package commands

import (
	"strings"

	"github.com/starbot-tg/starbot/internal/db"
	"github.com/starbot-tg/starbot/internal/event"
	"github.com/starbot-tg/starbot/internal/trigger"
	"github.com/starbot-tg/starbot/internal/utils/text"
)

// moderationWords map bare Russian words to the command they run. Order matters.
var moderationWords = []struct {
	word    string
	command string
}{
	{"бан", "ban"},
	{"разбан", "unban"},
	{"мут", "mute"},
	{"размут", "unmute"},
	{"кик", "kick"},
	{"варн", "warn"},
}

const (
	defaultWelcome = "Добро пожаловать, {username}! 👋"
	defaultGoodbye = "До свидания, {username}! 👋"
)

// handleContent is the pass every non-command message goes through: bare-word
// moderation, roleplay, service messages, filters and then the AFK and level
// side effects, which run even when a filter removed the message.
func (d *Dispatcher) handleContent(r *Request) (Result, error) {
	t := r.t
	switch t.Kind {
	case trigger.KindNewMembers:
		return d.welcome(r)
	case trigger.KindLeftMember:
		return d.goodbye(r)
	}

	if t.From.ID != 0 {
		if _, err := r.store().RecordActivity(r.ctx, t.ChatID, t.From.ID, r.now()); err != nil {
			return Result{}, err
		}
	}

	lower := strings.ToLower(t.Text)
	if desc, args, ok := d.moderationWord(lower, t.Text); ok {
		return d.execute(r, desc, args)
	}
	if rp, ok := matchRoleplay(lower); ok {
		return r.OK(d.roleplayText(r, rp))
	}

	settings, err := r.Settings()
	if err != nil {
		return Result{}, err
	}
	res := Result{Success: true, Message: "processed"}

	filtered, err := d.filterText(r, settings, lower)
	if err != nil {
		return Result{}, err
	}
	if !filtered {
		filtered, err = d.filterMedia(r, settings)
		if err != nil {
			return Result{}, err
		}
	}
	if filtered {
		res.Message = "filtered"
	}

	if err := d.announceAFK(r); err != nil {
		return Result{}, err
	}
	if t.From.ID == 0 {
		return res, nil
	}
	back, err := r.store().ClearAFK(r.ctx, t.ChatID, t.From.ID)
	if err != nil {
		return Result{}, err
	}
	if back {
		if err := r.Reply("👋 С возвращением, " + r.firstName() + "!"); err != nil {
			return Result{}, err
		}
	}
	level, leveled, err := r.store().LevelUp(r.ctx, t.ChatID, t.From.ID)
	if err != nil {
		return Result{}, err
	}
	if leveled {
		if err := r.Reply(sprintf("🎉 %s достиг уровня %d!", r.firstName(), level)); err != nil {
			return Result{}, err
		}
	}
	return res, nil
}

// moderationWord matches a bare moderation word at the start of the message.
// It is a plain prefix test, so "банан" bans too.
func (d *Dispatcher) moderationWord(lower, original string) (*Descriptor, []string, bool) {
	for _, w := range moderationWords {
		if !strings.HasPrefix(lower, w.word) {
			continue
		}
		desc, ok := d.registry.Lookup(w.command)
		if !ok {
			return nil, nil, false
		}
		args := strings.Split(original, " ")[1:]
		return desc, args, true
	}
	return nil, nil, false
}

func matchRoleplay(lower string) (roleplay, bool) {
	if lower == "" {
		return roleplay{}, false
	}
	for _, rp := range roleplays {
		if strings.Contains(lower, rp.keyword) {
			return rp, true
		}
	}
	return roleplay{}, false
}

func (d *Dispatcher) roleplayText(r *Request, rp roleplay) string {
	// mentions win over the reply author here, unlike command targets
	target := "кого-то"
	switch {
	case len(r.t.MentionedUsers) > 0:
		target = name(r.t.MentionedUsers[0])
	case r.t.ReplyTo != nil:
		target = name(*r.t.ReplyTo)
	}
	msg := strings.Replace(rp.template, "{user}", r.firstName(), 1)
	return strings.Replace(msg, "{target}", target, 1)
}

func (d *Dispatcher) welcome(r *Request) (Result, error) {
	settings, err := r.Settings()
	if err != nil {
		return Result{}, err
	}
	for _, member := range r.t.NewMembers {
		if err := r.rememberTarget(member); err != nil {
			return Result{}, err
		}
		if !settings.WelcomeEnabled {
			continue
		}
		template := settings.WelcomeMessage
		if template == "" {
			template = defaultWelcome
		}
		if err := r.Reply(strings.Replace(template, "{username}", greetingName(member), 1)); err != nil {
			return Result{}, err
		}
	}
	d.cleanService(r, settings)
	return Result{Success: true, Message: "welcome"}, nil
}

func (d *Dispatcher) goodbye(r *Request) (Result, error) {
	settings, err := r.Settings()
	if err != nil {
		return Result{}, err
	}
	if settings.GoodbyeEnabled && r.t.LeftMember != nil {
		template := settings.GoodbyeMessage
		if template == "" {
			template = defaultGoodbye
		}
		if err := r.Reply(strings.Replace(template, "{username}", greetingName(*r.t.LeftMember), 1)); err != nil {
			return Result{}, err
		}
	}
	d.cleanService(r, settings)
	return Result{Success: true, Message: "goodbye"}, nil
}

func greetingName(u trigger.User) string {
	switch {
	case u.FirstName != "":
		return text.EscapeHTML(u.FirstName)
	case u.Username != "":
		return text.EscapeHTML(u.Username)
	}
	return "друг"
}

func (d *Dispatcher) cleanService(r *Request, settings *db.ChatSettings) {
	if settings.CleanService {
		d.deleteMessage(r)
	}
}

// deleteMessage removes the triggering message. A failure is only logged:
// the bot may lack the right in this chat and the pass has to go on.
func (d *Dispatcher) deleteMessage(r *Request) {
	if err := d.s.GetGateway().DeleteMessage(r.ctx, r.t.ChatID, r.t.MessageID); err != nil {
		d.getLogEntry().WithField("method", "deleteMessage").WithField("error", err.Error()).Warn("cant delete message")
	}
}

// filterText applies the antispam filters in order and stops at the first hit.
func (d *Dispatcher) filterText(r *Request, settings *db.ChatSettings, lower string) (bool, error) {
	if !settings.Antispam || r.t.Text == "" {
		return false, nil
	}
	words, err := r.store().ListBlacklistWords(r.ctx, r.t.ChatID)
	if err != nil {
		return false, err
	}
	for _, word := range words {
		if word != "" && strings.Contains(lower, strings.ToLower(word)) {
			return true, d.filtered(r, "blacklist", r.T("⚠️ %s, ваше сообщение удалено за использование запрещённых слов.", mention(r.Actor())))
		}
	}

	if !settings.LinksAllowed && r.t.HasLinks {
		admin, err := r.IsAdmin()
		if err != nil {
			return false, err
		}
		if !admin {
			return true, d.filtered(r, "links", r.T("⚠️ %s, ссылки запрещены в этом чате.", mention(r.Actor())))
		}
	}

	if settings.CapsLimit > 0 && text.Length(r.t.Text) > 10 && text.CapsPercent(r.t.Text) > float64(settings.CapsLimit) {
		return true, d.filtered(r, "caps", r.T("⚠️ %s, слишком много заглавных букв!", mention(r.Actor())))
	}
	return false, nil
}

func (d *Dispatcher) filtered(r *Request, reason, notice string) error {
	d.deleteMessage(r)
	r.publish(event.KindFiltered, r.Actor().ID, reason, r.now())
	return r.Reply(notice)
}

// filterMedia runs every media limit; the message is deleted once if any of them
// matched. Only the photo and video limit tells the chat about it.
func (d *Dispatcher) filterMedia(r *Request, settings *db.ChatSettings) (bool, error) {
	t := r.t
	photoOrVideo := t.MediaKind == trigger.MediaPhoto || t.MediaKind == trigger.MediaVideo
	checks := []struct {
		on     bool
		reason string
		notice bool
	}{
		{settings.MediaLimit && photoOrVideo, "media", true},
		{settings.StickerLimit && t.MediaKind == trigger.MediaSticker, "sticker", false},
		{settings.GifLimit && t.MediaKind == trigger.MediaAnimation, "gif", false},
		{settings.VoiceLimit && t.MediaKind == trigger.MediaVoice, "voice", false},
		{settings.ForwardLimit && t.IsForwarded, "forward", false},
	}

	var (
		reasons []string
		notify  bool
	)
	for _, c := range checks {
		if !c.on {
			continue
		}
		reasons = append(reasons, c.reason)
		notify = notify || c.notice
	}
	if len(reasons) == 0 {
		return false, nil
	}
	admin, err := r.IsAdmin()
	if err != nil || admin {
		return false, err
	}

	d.deleteMessage(r)
	r.publish(event.KindFiltered, r.Actor().ID, strings.Join(reasons, ","), r.now())
	if notify {
		return true, r.Reply(r.T("⚠️ %s, фото и видео запрещены в этом чате.", mention(r.Actor())))
	}
	return true, nil
}

// announceAFK tells the chat about every mentioned user who is away.
func (d *Dispatcher) announceAFK(r *Request) error {
	for _, u := range r.t.MentionedUsers {
		member, err := r.store().GetUser(r.ctx, r.t.ChatID, u.ID)
		if err != nil {
			return err
		}
		if member == nil || !member.IsAFK {
			continue
		}
		msg := sprintf("💤 %s отошёл %d мин. назад", dbUserName(member), r.minutesSince(member.AFKSince))
		if member.AFKReason != "" {
			msg += ": " + text.EscapeHTML(member.AFKReason)
		}
		if err := r.Reply(msg); err != nil {
			return err
		}
	}
	return nil
}

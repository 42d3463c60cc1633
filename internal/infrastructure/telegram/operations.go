package telegram

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	api "github.com/OvyFlash/telegram-bot-api"
	"github.com/pkg/errors"
)

// Button is one inline keyboard button carrying callback data.
type Button struct {
	Text string
	Data string
}

// Message is an outgoing HTML message.
type Message struct {
	ChatID   int64
	Text     string
	ReplyTo  int
	Keyboard [][]Button
}

// Member is the slice of a chat member the bot cares about.
type Member struct {
	UserID    int64
	FirstName string
	Username  string
	Status    string
	IsBot     bool
}

const (
	StatusCreator       = "creator"
	StatusAdministrator = "administrator"
)

// Operations wraps the Bot API calls the bot issues, one request per call.
type Operations struct {
	bot *api.BotAPI
}

func NewOperations(bot *api.BotAPI) *Operations {
	return &Operations{bot: bot}
}

func (o *Operations) Send(ctx context.Context, m Message) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	msg := api.NewMessage(m.ChatID, m.Text)
	msg.ParseMode = api.ModeHTML
	if m.ReplyTo != 0 {
		msg.ReplyParameters.MessageID = m.ReplyTo
		msg.ReplyParameters.ChatID = m.ChatID
		msg.ReplyParameters.AllowSendingWithoutReply = true
	}
	if markup := keyboard(m.Keyboard); markup != nil {
		msg.ReplyMarkup = markup
	}
	sent, err := o.bot.Send(msg)
	if err != nil {
		return 0, errors.Wrap(err, "send message")
	}
	return sent.MessageID, nil
}

func (o *Operations) EditText(ctx context.Context, chatID int64, messageID int, text string, buttons [][]Button) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	edit := api.NewEditMessageText(chatID, messageID, text)
	edit.ParseMode = api.ModeHTML
	edit.ReplyMarkup = keyboard(buttons)
	_, err := o.bot.Send(edit)
	return errors.Wrap(err, "edit message text")
}

func (o *Operations) AnswerCallback(ctx context.Context, callbackID, text string, alert bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	cb := api.NewCallback(callbackID, text)
	cb.ShowAlert = alert
	_, err := o.bot.Request(cb)
	return errors.Wrap(err, "answer callback")
}

func (o *Operations) DeleteMessage(ctx context.Context, chatID int64, messageID int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := o.bot.Request(api.NewDeleteMessage(chatID, messageID))
	return errors.Wrap(err, "delete message")
}

// Ban bans the user; a zero until means forever.
func (o *Operations) Ban(ctx context.Context, chatID, userID int64, until time.Time, revokeMessages bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	config := api.BanChatMemberConfig{
		ChatMemberConfig: api.ChatMemberConfig{
			ChatConfig: api.ChatConfig{
				ChatID: chatID,
			},
			UserID: userID,
		},
		UntilDate:      unix(until),
		RevokeMessages: revokeMessages,
	}
	if _, err := o.bot.Request(config); err != nil {
		if strings.Contains(err.Error(), "not enough rights") {
			return errors.WithMessage(err, "not enough rights to ban user")
		}
		return errors.Wrap(err, "ban user")
	}
	return nil
}

func (o *Operations) Unban(ctx context.Context, chatID, userID int64, onlyIfBanned bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	config := api.UnbanChatMemberConfig{
		ChatMemberConfig: api.ChatMemberConfig{
			ChatConfig: api.ChatConfig{
				ChatID: chatID,
			},
			UserID: userID,
		},
		OnlyIfBanned: onlyIfBanned,
	}
	_, err := o.bot.Request(config)
	return errors.Wrap(err, "unban user")
}

// Restrict applies the permission set until the given time; a zero until means forever.
func (o *Operations) Restrict(ctx context.Context, chatID, userID int64, perms Permissions, until time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	config := api.RestrictChatMemberConfig{
		ChatMemberConfig: api.ChatMemberConfig{
			ChatConfig: api.ChatConfig{
				ChatID: chatID,
			},
			UserID: userID,
		},
		UntilDate:   unix(until),
		Permissions: perms.api(),
	}
	_, err := o.bot.Request(config)
	return errors.Wrap(err, "restrict user")
}

func (o *Operations) Promote(ctx context.Context, chatID, userID int64, promote bool) error {
	params := api.Params{
		"chat_id": strconv.FormatInt(chatID, 10),
		"user_id": strconv.FormatInt(userID, 10),
	}
	flag := strconv.FormatBool(promote)
	for _, right := range []string{
		"can_manage_chat", "can_delete_messages", "can_manage_video_chats", "can_restrict_members",
		"can_change_info", "can_invite_users", "can_pin_messages",
	} {
		params[right] = flag
	}
	_, err := o.call(ctx, "promoteChatMember", params)
	return errors.Wrap(err, "promote member")
}

func (o *Operations) MemberStatus(ctx context.Context, chatID, userID int64) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	member, err := o.bot.GetChatMember(api.GetChatMemberConfig{
		ChatConfigWithUser: api.ChatConfigWithUser{
			ChatConfig: api.ChatConfig{
				ChatID: chatID,
			},
			UserID: userID,
		},
	})
	if err != nil {
		return "", errors.Wrap(err, "get chat member")
	}
	return member.Status, nil
}

func (o *Operations) Administrators(ctx context.Context, chatID int64) ([]Member, error) {
	raw, err := o.call(ctx, "getChatAdministrators", api.Params{"chat_id": strconv.FormatInt(chatID, 10)})
	if err != nil {
		return nil, errors.Wrap(err, "get chat administrators")
	}
	var members []api.ChatMember
	if err := json.Unmarshal(raw, &members); err != nil {
		return nil, errors.Wrap(err, "decode chat administrators")
	}
	res := make([]Member, 0, len(members))
	for _, m := range members {
		if m.User == nil {
			continue
		}
		res = append(res, Member{
			UserID:    m.User.ID,
			FirstName: m.User.FirstName,
			Username:  m.User.UserName,
			Status:    m.Status,
			IsBot:     m.User.IsBot,
		})
	}
	return res, nil
}

func (o *Operations) MemberCount(ctx context.Context, chatID int64) (int, error) {
	raw, err := o.call(ctx, "getChatMemberCount", api.Params{"chat_id": strconv.FormatInt(chatID, 10)})
	if err != nil {
		return 0, errors.Wrap(err, "get chat member count")
	}
	var count int
	return count, errors.Wrap(json.Unmarshal(raw, &count), "decode member count")
}

func (o *Operations) Pin(ctx context.Context, chatID int64, messageID int) error {
	_, err := o.call(ctx, "pinChatMessage", api.Params{
		"chat_id":    strconv.FormatInt(chatID, 10),
		"message_id": strconv.Itoa(messageID),
	})
	return errors.Wrap(err, "pin message")
}

// Unpin unpins one message, or the most recent pin when messageID is zero.
func (o *Operations) Unpin(ctx context.Context, chatID int64, messageID int) error {
	params := api.Params{"chat_id": strconv.FormatInt(chatID, 10)}
	if messageID != 0 {
		params["message_id"] = strconv.Itoa(messageID)
	}
	_, err := o.call(ctx, "unpinChatMessage", params)
	return errors.Wrap(err, "unpin message")
}

func (o *Operations) InviteLink(ctx context.Context, chatID int64) (string, error) {
	raw, err := o.call(ctx, "exportChatInviteLink", api.Params{"chat_id": strconv.FormatInt(chatID, 10)})
	if err != nil {
		return "", errors.Wrap(err, "export invite link")
	}
	var link string
	return link, errors.Wrap(json.Unmarshal(raw, &link), "decode invite link")
}

func (o *Operations) SetWebhook(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	wh, err := api.NewWebhook(url)
	if err != nil {
		return errors.Wrap(err, "build webhook")
	}
	_, err = o.bot.Request(wh)
	return errors.Wrap(err, "set webhook")
}

func (o *Operations) call(ctx context.Context, endpoint string, params api.Params) (json.RawMessage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	resp, err := o.bot.MakeRequest(endpoint, params)
	if err != nil {
		return nil, err
	}
	return resp.Result, nil
}

func keyboard(rows [][]Button) *api.InlineKeyboardMarkup {
	if len(rows) == 0 {
		return nil
	}
	markupRows := make([][]api.InlineKeyboardButton, 0, len(rows))
	for _, row := range rows {
		buttons := make([]api.InlineKeyboardButton, 0, len(row))
		for _, b := range row {
			buttons = append(buttons, api.NewInlineKeyboardButtonData(b.Text, b.Data))
		}
		markupRows = append(markupRows, api.NewInlineKeyboardRow(buttons...))
	}
	markup := api.NewInlineKeyboardMarkup(markupRows...)
	return &markup
}

func unix(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.Unix()
}

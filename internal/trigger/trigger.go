// Package trigger turns raw webhook payloads into flat Trigger records.
package trigger

import (
	"encoding/json"
	"strings"

	api "github.com/OvyFlash/telegram-bot-api"
)

type Kind string

const (
	KindUnknown    Kind = "unknown"
	KindCallback   Kind = "callback"
	KindMessage    Kind = "message"
	KindCommand    Kind = "command"
	KindNewMembers Kind = "new_members"
	KindLeftMember Kind = "left_member"
)

const (
	MediaPhoto     = "photo"
	MediaVideo     = "video"
	MediaAudio     = "audio"
	MediaVoice     = "voice"
	MediaSticker   = "sticker"
	MediaDocument  = "document"
	MediaAnimation = "animation"
)

type User struct {
	ID        int64
	IsBot     bool
	FirstName string
	LastName  string
	Username  string
}

// Trigger is the canonical form of one update. Every field is zero when Kind is KindUnknown.
type Trigger struct {
	Kind     Kind
	UpdateID int64
	Edited   bool

	ChatID    int64
	ChatType  string
	ChatTitle string
	MessageID int

	From User
	Text string

	Command string
	Args    []string

	// ReplyTo is the author of the replied message.
	ReplyTo          *User
	ReplyToMessageID int
	MentionedUsers   []User
	NewMembers       []User
	LeftMember       *User

	MediaKind   string
	HasLinks    bool
	IsForwarded bool

	CallbackID   string
	CallbackData string
}

func (t *Trigger) IsCommand() bool {
	return t.Command != ""
}

func (t *Trigger) IsCallback() bool {
	return t.Kind == KindCallback
}

func (t *Trigger) HasMedia() bool {
	return t.MediaKind != ""
}

// CallbackAction splits callback data into its action and parameters.
func (t *Trigger) CallbackAction() (string, []string) {
	if t.CallbackData == "" {
		return "", nil
	}
	parts := strings.Split(t.CallbackData, ":")
	return parts[0], parts[1:]
}

// legacyForward holds the forward_* fields that predate forward_origin. The
// Bot API types no longer declare them, but older clients still send them.
type legacyForward struct {
	ForwardFrom     *api.User `json:"forward_from"`
	ForwardFromChat *api.Chat `json:"forward_from_chat"`
	ForwardDate     int64     `json:"forward_date"`
}

func (f *legacyForward) present() bool {
	return f != nil && (f.ForwardFrom != nil || f.ForwardFromChat != nil || f.ForwardDate != 0)
}

// Parse never fails: anything it cannot interpret becomes an unknown trigger.
func Parse(payload []byte) Trigger {
	var upd api.Update
	if err := json.Unmarshal(payload, &upd); err != nil {
		return Trigger{Kind: KindUnknown}
	}

	if cq := upd.CallbackQuery; cq != nil {
		t := Trigger{
			Kind:         KindCallback,
			UpdateID:     int64(upd.UpdateID),
			CallbackID:   cq.ID,
			CallbackData: cq.Data,
			ChatType:     "private",
		}
		if u := user(cq.From); u != nil {
			t.From = *u
		}
		if m := cq.Message; m != nil {
			t.ChatID = m.Chat.ID
			t.ChatType = m.Chat.Type
			t.ChatTitle = m.Chat.Title
			t.MessageID = m.MessageID
			t.Text = m.Text
		}
		return t
	}

	msg, edited := upd.Message, false
	if msg == nil && upd.EditedMessage != nil {
		msg, edited = upd.EditedMessage, true
	}
	if msg == nil {
		return Trigger{Kind: KindUnknown}
	}

	t := Trigger{
		Kind:      KindMessage,
		UpdateID:  int64(upd.UpdateID),
		Edited:    edited,
		ChatID:    msg.Chat.ID,
		ChatType:  msg.Chat.Type,
		ChatTitle: msg.Chat.Title,
		MessageID: msg.MessageID,
		Text:      msg.Text,
	}
	if t.Text == "" {
		t.Text = msg.Caption
	}
	if u := user(msg.From); u != nil {
		t.From = *u
	}
	if msg.ReplyToMessage != nil {
		t.ReplyTo = user(msg.ReplyToMessage.From)
		t.ReplyToMessageID = msg.ReplyToMessage.MessageID
	}

	if strings.HasPrefix(t.Text, "/") {
		t.Command, t.Args = splitCommand(t.Text)
	}

	for _, e := range append(append([]api.MessageEntity{}, msg.Entities...), msg.CaptionEntities...) {
		switch e.Type {
		case "url", "text_link":
			t.HasLinks = true
		case "text_mention":
			if u := user(e.User); u != nil {
				t.MentionedUsers = append(t.MentionedUsers, *u)
			}
		}
	}

	t.MediaKind = mediaKind(msg)
	t.IsForwarded = msg.ForwardOrigin != nil || legacyForwardOf(payload, edited).present()

	for i := range msg.NewChatMembers {
		t.NewMembers = append(t.NewMembers, *user(&msg.NewChatMembers[i]))
	}
	t.LeftMember = user(msg.LeftChatMember)

	switch {
	case len(t.NewMembers) > 0:
		t.Kind = KindNewMembers
	case t.LeftMember != nil:
		t.Kind = KindLeftMember
	case t.Command != "":
		t.Kind = KindCommand
	}
	return t
}

func legacyForwardOf(payload []byte, edited bool) *legacyForward {
	var upd struct {
		Message       *legacyForward `json:"message"`
		EditedMessage *legacyForward `json:"edited_message"`
	}
	if err := json.Unmarshal(payload, &upd); err != nil {
		return nil
	}
	if edited {
		return upd.EditedMessage
	}
	return upd.Message
}

func user(u *api.User) *User {
	if u == nil {
		return nil
	}
	return &User{
		ID:        u.ID,
		IsBot:     u.IsBot,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Username:  u.UserName,
	}
}

func splitCommand(text string) (string, []string) {
	var tokens []string
	for _, token := range strings.Split(text, " ") {
		if token != "" {
			tokens = append(tokens, token)
		}
	}
	if len(tokens) == 0 {
		return "", nil
	}
	name := strings.TrimPrefix(tokens[0], "/")
	if i := strings.Index(name, "@"); i >= 0 {
		name = name[:i]
	}
	return strings.ToLower(name), tokens[1:]
}

func mediaKind(m *api.Message) string {
	switch {
	case len(m.Photo) > 0:
		return MediaPhoto
	case m.Video != nil:
		return MediaVideo
	case m.Audio != nil:
		return MediaAudio
	case m.Voice != nil:
		return MediaVoice
	case m.Sticker != nil:
		return MediaSticker
	case m.Document != nil:
		return MediaDocument
	case m.Animation != nil:
		return MediaAnimation
	}
	return ""
}

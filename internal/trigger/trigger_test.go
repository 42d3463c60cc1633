package trigger

import (
	"encoding/json"
	"reflect"
	"testing"

	api "github.com/OvyFlash/telegram-bot-api"
)

func TestParseUnknownPayloads(t *testing.T) {
	t.Parallel()

	for name, payload := range map[string]string{
		"malformed":    `{"update_id": `,
		"empty object": `{}`,
		"channel post": `{"update_id": 5, "channel_post": {"message_id": 1, "chat": {"id": -1}}}`,
		"not json":     `OK`,
	} {
		got := Parse([]byte(payload))
		if !reflect.DeepEqual(got, Trigger{Kind: KindUnknown}) {
			t.Fatalf("%s: expected zero unknown trigger, got %#v", name, got)
		}
	}
}

func TestParseCommand(t *testing.T) {
	t.Parallel()

	got := Parse([]byte(`{
		"update_id": 10,
		"message": {
			"message_id": 77,
			"from": {"id": 1, "first_name": "Ann", "username": "ann"},
			"chat": {"id": -100, "type": "supergroup", "title": "Chat"},
			"text": "/TempBan@StarBot  1h  spam",
			"reply_to_message": {"message_id": 70, "from": {"id": 2, "first_name": "Bob"}, "chat": {"id": -100}}
		}
	}`))

	if got.Kind != KindCommand {
		t.Fatalf("expected command, got %s", got.Kind)
	}
	if got.Command != "tempban" {
		t.Fatalf("unexpected command %q", got.Command)
	}
	if !reflect.DeepEqual(got.Args, []string{"1h", "spam"}) {
		t.Fatalf("unexpected args %#v", got.Args)
	}
	if got.ReplyTo == nil || got.ReplyTo.ID != 2 || got.ReplyToMessageID != 70 {
		t.Fatalf("unexpected reply target %#v", got.ReplyTo)
	}
	if got.UpdateID != 10 || got.MessageID != 77 || got.ChatID != -100 || got.From.ID != 1 {
		t.Fatalf("unexpected ids %#v", got)
	}
	if got.ChatType != "supergroup" || got.ChatTitle != "Chat" {
		t.Fatalf("unexpected chat fields %#v", got)
	}
}

func TestParseCaptionAndEntities(t *testing.T) {
	t.Parallel()

	got := Parse([]byte(`{
		"update_id": 11,
		"edited_message": {
			"message_id": 5,
			"from": {"id": 1, "first_name": "Ann"},
			"chat": {"id": -100, "type": "group"},
			"caption": "look @bob and Carl",
			"photo": [{"file_id": "x"}],
			"video": {"file_id": "y"},
			"caption_entities": [
				{"type": "mention", "offset": 5, "length": 4},
				{"type": "text_mention", "offset": 14, "length": 4, "user": {"id": 3, "first_name": "Carl"}},
				{"type": "text_link", "offset": 0, "length": 4, "url": "https://example.com"}
			]
		}
	}`))

	if got.Kind != KindMessage || !got.Edited {
		t.Fatalf("expected edited message, got %#v", got)
	}
	if got.Text != "look @bob and Carl" {
		t.Fatalf("caption fallback failed: %q", got.Text)
	}
	if !got.HasLinks {
		t.Fatalf("text_link must count as a link")
	}
	// plain @username mentions carry no user and are never collected
	if len(got.MentionedUsers) != 1 || got.MentionedUsers[0].ID != 3 {
		t.Fatalf("unexpected mentions %#v", got.MentionedUsers)
	}
	if got.MediaKind != MediaPhoto {
		t.Fatalf("photo must win over video, got %q", got.MediaKind)
	}
}

func TestParseForwardShapes(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"origin":    `"forward_origin": {"type": "user", "date": 1, "sender_user": {"id": 9}}`,
		"from":      `"forward_from": {"id": 9, "first_name": "X"}`,
		"from chat": `"forward_from_chat": {"id": -5, "type": "channel"}`,
		"date":      `"forward_date": 1700000000`,
	}
	for name, field := range cases {
		got := Parse([]byte(`{"update_id": 1, "message": {"message_id": 1, "chat": {"id": -1}, "text": "hi", ` + field + `}}`))
		if !got.IsForwarded {
			t.Fatalf("%s: expected forwarded", name)
		}
	}

	got := Parse([]byte(`{"update_id": 1, "message": {"message_id": 1, "chat": {"id": -1}, "text": "hi", "forward_origin": null}}`))
	if got.IsForwarded {
		t.Fatalf("null forward_origin is not a forward")
	}
}

func TestParseEventPrecedence(t *testing.T) {
	t.Parallel()

	joined := Parse([]byte(`{"update_id": 1, "message": {
		"message_id": 1, "chat": {"id": -1}, "text": "/start",
		"new_chat_members": [{"id": 4, "first_name": "New"}],
		"left_chat_member": {"id": 5, "first_name": "Old"}
	}}`))
	if joined.Kind != KindNewMembers || len(joined.NewMembers) != 1 {
		t.Fatalf("new members must win, got %#v", joined)
	}

	left := Parse([]byte(`{"update_id": 1, "message": {
		"message_id": 1, "chat": {"id": -1}, "text": "/start",
		"left_chat_member": {"id": 5, "first_name": "Old"}
	}}`))
	if left.Kind != KindLeftMember || left.LeftMember.ID != 5 {
		t.Fatalf("left member must win over command, got %#v", left)
	}
	if left.Command != "start" {
		t.Fatalf("command is still extracted, got %q", left.Command)
	}
}

func TestParseCallback(t *testing.T) {
	t.Parallel()

	got := Parse([]byte(`{"update_id": 3, "callback_query": {
		"id": "cb-1",
		"from": {"id": 8, "first_name": "Eve"},
		"data": "set_prefix:🐣:Новичок",
		"message": {"message_id": 40, "chat": {"id": -7, "type": "group"}, "text": "shop"}
	}}`))
	if got.Kind != KindCallback || got.CallbackID != "cb-1" {
		t.Fatalf("unexpected callback %#v", got)
	}
	if got.ChatID != -7 || got.MessageID != 40 || got.From.ID != 8 {
		t.Fatalf("unexpected callback ids %#v", got)
	}
	action, params := got.CallbackAction()
	if action != "set_prefix" || !reflect.DeepEqual(params, []string{"🐣", "Новичок"}) {
		t.Fatalf("unexpected callback split %q %#v", action, params)
	}

	orphan := Parse([]byte(`{"update_id": 4, "callback_query": {"id": "cb-2", "from": {"id": 8}, "data": "noop"}}`))
	if orphan.ChatID != 0 || orphan.MessageID != 0 || orphan.Kind != KindCallback {
		t.Fatalf("callback without message must zero chat fields, got %#v", orphan)
	}
}

func TestSplitCommandDropsEmptyTokens(t *testing.T) {
	t.Parallel()

	name, args := splitCommand("/Warn   спам  ")
	if name != "warn" {
		t.Fatalf("unexpected name %q", name)
	}
	if !reflect.DeepEqual(args, []string{"спам"}) {
		t.Fatalf("unexpected args %#v", args)
	}
}

func TestParseBotAPIUpdate(t *testing.T) {
	t.Parallel()

	payload, err := json.Marshal(api.Update{
		UpdateID: 21,
		Message: &api.Message{
			MessageID: 6,
			From:      &api.User{ID: 1, FirstName: "Ann", UserName: "ann"},
			Chat:      api.Chat{ID: -100, Type: "supergroup"},
			Caption:   "see https://example.com",
			Sticker:   &api.Sticker{FileID: "s"},
			CaptionEntities: []api.MessageEntity{
				{Type: "url", Offset: 4, Length: 19},
			},
			ForwardOrigin: &api.MessageOrigin{Type: "hidden_user", Date: 1},
		},
	})
	if err != nil {
		t.Fatalf("marshal update: %v", err)
	}

	got := Parse(payload)
	if got.Kind != KindMessage || got.UpdateID != 21 || got.From.Username != "ann" {
		t.Fatalf("unexpected trigger %#v", got)
	}
	if got.MediaKind != MediaSticker || !got.HasLinks || !got.IsForwarded {
		t.Fatalf("unexpected flags %#v", got)
	}
}

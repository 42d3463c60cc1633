package telegram

import (
	"testing"
	"time"
)

func TestPermissionsMapping(t *testing.T) {
	t.Parallel()

	muted := Muted.api()
	if muted.CanSendMessages || muted.CanSendPhotos || muted.CanSendOtherMessages || muted.CanAddWebPagePreviews {
		t.Fatalf("muted must forbid everything: %#v", muted)
	}

	restricted := Restricted.api()
	if !restricted.CanSendMessages || restricted.CanSendVideos || restricted.CanSendPolls {
		t.Fatalf("restricted must keep text only: %#v", restricted)
	}

	full := Full.api()
	if !full.CanSendMessages || !full.CanSendVoiceNotes || !full.CanSendOtherMessages || !full.CanAddWebPagePreviews {
		t.Fatalf("full must allow everything: %#v", full)
	}
}

func TestKeyboardAndUnix(t *testing.T) {
	t.Parallel()

	if keyboard(nil) != nil {
		t.Fatalf("empty keyboard must be nil")
	}
	markup := keyboard([][]Button{{{Text: "a", Data: "x:1"}, {Text: "b", Data: "x:2"}}, {{Text: "c", Data: "y"}}})
	if markup == nil || len(markup.InlineKeyboard) != 2 || len(markup.InlineKeyboard[0]) != 2 {
		t.Fatalf("unexpected markup %#v", markup)
	}
	if data := markup.InlineKeyboard[0][1].CallbackData; data == nil || *data != "x:2" {
		t.Fatalf("unexpected callback data %#v", data)
	}

	if unix(time.Time{}) != 0 {
		t.Fatalf("zero time must map to forever")
	}
	at := time.Unix(1700000000, 0)
	if unix(at) != 1700000000 {
		t.Fatalf("unexpected unix %d", unix(at))
	}
}

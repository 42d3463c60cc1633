package moderation

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/starbot-tg/starbot/internal/db"
	"github.com/starbot-tg/starbot/internal/event"
	"github.com/starbot-tg/starbot/internal/infrastructure/telegram"
)

type settingsStub map[int64]*db.ChatSettings

func (s settingsStub) GetSettings(_ context.Context, chatID int64) (*db.ChatSettings, error) {
	return s[chatID], nil
}

type senderStub struct {
	mu   sync.Mutex
	sent []telegram.Message
}

func (s *senderStub) Send(_ context.Context, m telegram.Message) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, m)
	return len(s.sent), nil
}

func (s *senderStub) messages() []telegram.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]telegram.Message(nil), s.sent...)
}

func TestAuditWritesOneRecordPerEvent(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zap.InfoLevel)
	audit := Audit(zap.New(core))

	audit(context.Background(), event.Event{Kind: event.KindWarn, ChatID: -1, UserID: 2, ActorID: 3, Reason: "флуд", At: sweepNow})
	audit(context.Background(), event.Event{Kind: event.KindTempMute, ChatID: -1, UserID: 2, Until: sweepNow.Add(time.Hour), At: sweepNow})

	entries := logs.All()
	if len(entries) != 2 {
		t.Fatalf("expected 2 records, got %d", len(entries))
	}
	first := entries[0].ContextMap()
	if first["kind"] != "warn" || first["reason"] != "флуд" || first["actor_id"] != int64(3) {
		t.Fatalf("unexpected first record %v", first)
	}
	if _, ok := first["until"]; ok {
		t.Fatal("permanent actions carry no until field")
	}
	if _, ok := entries[1].ContextMap()["until"]; !ok {
		t.Fatal("temporary actions carry their expiry")
	}
}

func TestDescribe(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		e    event.Event
		want string
	}{
		{
			name: "ban with reason",
			e:    event.Event{Kind: event.KindBan, ChatID: -100, UserID: 5, ActorID: 9, Reason: "спам"},
			want: "🔨 Бан | чат -100 | пользователь 5 | админ 9 | спам",
		},
		{
			name: "temp mute",
			e:    event.Event{Kind: event.KindTempMute, ChatID: -100, UserID: 5, Until: sweepNow},
			want: "⏳ Временный мут | чат -100 | пользователь 5 | до 2024-05-01 12:00:00",
		},
		{
			name: "unknown kind",
			e:    event.Event{Kind: "custom", ChatID: 1, UserID: 2},
			want: "custom | чат 1 | пользователь 2",
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Describe(tt.e); got != tt.want {
				t.Fatalf("want %q, got %q", tt.want, got)
			}
		})
	}
}

func TestLogRelayNeedsAChannel(t *testing.T) {
	t.Parallel()

	sender := &senderStub{}
	relay := NewLogRelay(settingsStub{
		-100: {ChatID: -100},
		-101: {ChatID: -101, LogChannelID: -300},
	}, sender)

	relay.Handle(context.Background(), event.Event{Kind: event.KindKick, ChatID: -100, UserID: 1})
	relay.Handle(context.Background(), event.Event{Kind: event.KindKick, ChatID: -102, UserID: 1})
	if len(sender.messages()) != 0 {
		t.Fatalf("chats without a log channel relay nothing, got %v", sender.messages())
	}

	relay.Handle(context.Background(), event.Event{Kind: event.KindKick, ChatID: -101, UserID: 1})
	sent := sender.messages()
	if len(sent) != 1 || sent[0].ChatID != -300 || !strings.HasPrefix(sent[0].Text, "👢 Кик") {
		t.Fatalf("unexpected relay %v", sent)
	}
}

func TestSubscribeWiresTheBus(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zap.InfoLevel)
	sender := &senderStub{}
	relay := NewLogRelay(settingsStub{-100: {ChatID: -100, LogChannelID: -300}}, sender)

	bus := event.NewBus(16, time.Minute)
	Subscribe(bus, zap.New(core), relay)

	ctx := context.Background()
	if err := bus.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	bus.Publish(event.Event{Kind: event.KindAutoBan, ChatID: -100, UserID: 4})
	bus.Publish(event.Event{Kind: event.KindReport, ChatID: -100, UserID: 4})
	if err := bus.Stop(ctx); err != nil {
		t.Fatalf("stop: %v", err)
	}

	if logs.Len() != 2 {
		t.Fatalf("audit sees every event, got %d", logs.Len())
	}
	if sent := sender.messages(); len(sent) != 1 || !strings.HasPrefix(sent[0].Text, "🚫 Автобан") {
		t.Fatalf("only moderation actions reach the log channel, got %v", sent)
	}
}

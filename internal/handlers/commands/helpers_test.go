package commands

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/starbot-tg/starbot/internal/bot"
	"github.com/starbot-tg/starbot/internal/config"
	"github.com/starbot-tg/starbot/internal/db"
	"github.com/starbot-tg/starbot/internal/db/sqlstore"
	"github.com/starbot-tg/starbot/internal/event"
	"github.com/starbot-tg/starbot/internal/infrastructure/telegram"
	"github.com/starbot-tg/starbot/internal/policy/permissions"
	"github.com/starbot-tg/starbot/internal/trigger"
)

const testChat = int64(-100777)

var (
	alice = trigger.User{ID: 1, FirstName: "Alice", Username: "alice"}
	bob   = trigger.User{ID: 2, FirstName: "Bob", Username: "bob"}
	carol = trigger.User{ID: 3, FirstName: "Carol"}
	boss  = trigger.User{ID: 99, FirstName: "Boss", Username: "boss"}
)

type restriction struct {
	chatID int64
	userID int64
	perms  telegram.Permissions
	until  time.Time
}

type ban struct {
	userID int64
	until  time.Time
	revoke bool
}

type answer struct {
	id    string
	text  string
	alert bool
}

type gatewayStub struct {
	mu sync.Mutex

	statuses map[int64]string
	admins   []telegram.Member
	failSend bool

	sent         []telegram.Message
	deleted      []int
	bans         []ban
	unbans       []int64
	restrictions []restriction
	promotions   map[int64]bool
	answers      []answer
	edits        []string
	pinned       []int
}

func newGatewayStub() *gatewayStub {
	return &gatewayStub{statuses: map[int64]string{}, promotions: map[int64]bool{}}
}

func (g *gatewayStub) Send(_ context.Context, m telegram.Message) (int, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.failSend {
		return 0, context.DeadlineExceeded
	}
	g.sent = append(g.sent, m)
	return len(g.sent), nil
}

func (g *gatewayStub) EditText(_ context.Context, _ int64, _ int, text string, _ [][]telegram.Button) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.edits = append(g.edits, text)
	return nil
}

func (g *gatewayStub) AnswerCallback(_ context.Context, id, text string, alert bool) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.answers = append(g.answers, answer{id: id, text: text, alert: alert})
	return nil
}

func (g *gatewayStub) DeleteMessage(_ context.Context, _ int64, messageID int) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.deleted = append(g.deleted, messageID)
	return nil
}

func (g *gatewayStub) Ban(_ context.Context, _ int64, userID int64, until time.Time, revoke bool) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.bans = append(g.bans, ban{userID: userID, until: until, revoke: revoke})
	return nil
}

func (g *gatewayStub) Unban(_ context.Context, _ int64, userID int64, _ bool) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.unbans = append(g.unbans, userID)
	return nil
}

func (g *gatewayStub) Restrict(_ context.Context, chatID, userID int64, perms telegram.Permissions, until time.Time) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.restrictions = append(g.restrictions, restriction{chatID: chatID, userID: userID, perms: perms, until: until})
	return nil
}

func (g *gatewayStub) Promote(_ context.Context, _ int64, userID int64, promote bool) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.promotions[userID] = promote
	return nil
}

func (g *gatewayStub) MemberStatus(_ context.Context, _ int64, userID int64) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if status, ok := g.statuses[userID]; ok {
		return status, nil
	}
	return "member", nil
}

func (g *gatewayStub) Administrators(_ context.Context, _ int64) ([]telegram.Member, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.admins, nil
}

func (g *gatewayStub) MemberCount(_ context.Context, _ int64) (int, error) {
	return 42, nil
}

func (g *gatewayStub) Pin(_ context.Context, _ int64, messageID int) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.pinned = append(g.pinned, messageID)
	return nil
}

func (g *gatewayStub) Unpin(_ context.Context, _ int64, _ int) error {
	return nil
}

func (g *gatewayStub) InviteLink(_ context.Context, _ int64) (string, error) {
	return "https://t.me/+invite", nil
}

func (g *gatewayStub) texts() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	res := make([]string, 0, len(g.sent))
	for _, m := range g.sent {
		res = append(res, m.Text)
	}
	return res
}

func (g *gatewayStub) last() string {
	texts := g.texts()
	if len(texts) == 0 {
		return ""
	}
	return texts[len(texts)-1]
}

type publisherStub struct {
	mu     sync.Mutex
	events []event.Event
}

func (p *publisherStub) Publish(e event.Event) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return true
}

func (p *publisherStub) kinds() []event.Kind {
	p.mu.Lock()
	defer p.mu.Unlock()
	res := make([]event.Kind, 0, len(p.events))
	for _, e := range p.events {
		res = append(res, e.Kind)
	}
	return res
}

type harness struct {
	t      *testing.T
	gw     *gatewayStub
	store  *sqlstore.Client
	events *publisherStub
	d      *Dispatcher
	now    time.Time
	rolls  []int
}

// newHarness wires a dispatcher over a fresh sqlite store. Random draws are
// taken from rolls in order; once they run out the lower bound is returned.
func newHarness(t *testing.T, rolls ...int) *harness {
	t.Helper()
	store, err := sqlstore.NewSQLiteClient(context.Background(), t.TempDir(), "test.db")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	h := &harness{
		t:      t,
		gw:     newGatewayStub(),
		store:  store,
		events: &publisherStub{},
		now:    time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		rolls:  rolls,
	}
	policy := permissions.NewPolicy(config.Access{
		OwnerIDs:       []int64{boss.ID},
		OwnerUsernames: []string{"boss"},
	})
	service := bot.NewService(h.gw, store, policy).WithClock(func() time.Time { return h.now })
	h.d = NewDispatcher(service, h.events).WithRand(func(min, max int) int {
		if len(h.rolls) == 0 {
			return min
		}
		v := h.rolls[0]
		h.rolls = h.rolls[1:]
		return v
	})
	return h
}

func (h *harness) makeAdmin(u trigger.User) {
	h.gw.statuses[u.ID] = telegram.StatusAdministrator
}

func command(from trigger.User, line string) *trigger.Trigger {
	fields := strings.Split(strings.TrimPrefix(line, "/"), " ")
	return &trigger.Trigger{
		Kind:      trigger.KindCommand,
		ChatID:    testChat,
		ChatType:  "supergroup",
		ChatTitle: "Test chat",
		MessageID: 10,
		From:      from,
		Text:      line,
		Command:   strings.ToLower(fields[0]),
		Args:      fields[1:],
	}
}

func replyTo(t *trigger.Trigger, u trigger.User) *trigger.Trigger {
	t.ReplyTo = &u
	t.ReplyToMessageID = 9
	return t
}

func message(from trigger.User, text string) *trigger.Trigger {
	return &trigger.Trigger{
		Kind:      trigger.KindMessage,
		ChatID:    testChat,
		ChatType:  "supergroup",
		ChatTitle: "Test chat",
		MessageID: 11,
		From:      from,
		Text:      text,
	}
}

func (h *harness) dispatch(t *trigger.Trigger) Result {
	h.t.Helper()
	res, err := h.d.Dispatch(context.Background(), t)
	if err != nil {
		h.t.Fatalf("dispatch %q: %v", t.Text, err)
	}
	return res
}

func (h *harness) user(u trigger.User) *db.User {
	h.t.Helper()
	row, err := h.store.GetUser(context.Background(), testChat, u.ID)
	if err != nil {
		h.t.Fatalf("get user %d: %v", u.ID, err)
	}
	if row == nil {
		h.t.Fatalf("user %d has no row", u.ID)
	}
	return row
}

func (h *harness) grant(u trigger.User, stars int64) {
	h.t.Helper()
	if _, err := h.store.AddStars(context.Background(), testChat, u.ID, stars, db.TxGrant, "test"); err != nil {
		h.t.Fatalf("grant stars: %v", err)
	}
}

func (h *harness) settings() *db.ChatSettings {
	h.t.Helper()
	s, err := h.store.GetSettings(context.Background(), testChat)
	if err != nil || s == nil {
		h.t.Fatalf("get settings: %v", err)
	}
	return s
}

func (h *harness) updateSettings(mutate func(*db.ChatSettings)) {
	h.t.Helper()
	ctx := context.Background()
	s, err := h.store.EnsureChat(ctx, testChat, "Test chat")
	if err != nil {
		h.t.Fatalf("ensure chat: %v", err)
	}
	mutate(s)
	if err := h.store.SetSettings(ctx, s); err != nil {
		h.t.Fatalf("set settings: %v", err)
	}
}

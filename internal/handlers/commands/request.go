package commands

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/starbot-tg/starbot/internal/db"
	"github.com/starbot-tg/starbot/internal/event"
	"github.com/starbot-tg/starbot/internal/i18n"
	"github.com/starbot-tg/starbot/internal/infrastructure/telegram"
	"github.com/starbot-tg/starbot/internal/trigger"
	"github.com/starbot-tg/starbot/internal/utils/text"
)

// Result is the outcome of one update as reported to the caller.
type Result struct {
	Success bool
	Message string
	// Unknown marks commands that matched nothing in the registry.
	Unknown bool
}

// Request carries one trigger through the dispatcher together with
// lazily loaded chat state. It lives for a single update only.
type Request struct {
	ctx  context.Context
	d    *Dispatcher
	t    *trigger.Trigger
	args []string

	settings *db.ChatSettings
	admin    *bool
}

func (r *Request) Context() context.Context { return r.ctx }

func (r *Request) Trigger() *trigger.Trigger { return r.t }

func (r *Request) Actor() trigger.User { return r.t.From }

func (r *Request) ChatID() int64 { return r.t.ChatID }

func (r *Request) Args() []string { return r.args }

// Arg returns the i-th argument or an empty string.
func (r *Request) Arg(i int) string {
	if i < 0 || i >= len(r.args) {
		return ""
	}
	return r.args[i]
}

func (r *Request) ArgsText() string {
	return strings.Join(r.args, " ")
}

// IntArg parses the i-th argument; it reports false for missing or malformed input.
func (r *Request) IntArg(i int) (int64, bool) {
	v, err := strconv.ParseInt(r.Arg(i), 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func (r *Request) store() db.Client {
	return r.d.s.GetDB()
}

func (r *Request) now() time.Time {
	return r.d.s.Now()
}

func (r *Request) Settings() (*db.ChatSettings, error) {
	if r.settings != nil {
		return r.settings, nil
	}
	settings, err := r.d.s.GetSettings(r.ctx, r.t.ChatID)
	if err != nil {
		return nil, err
	}
	r.settings = settings
	return settings, nil
}

// saveSettings persists a mutated copy and keeps it cached for the rest of the request.
func (r *Request) saveSettings(settings *db.ChatSettings) error {
	if err := r.store().SetSettings(r.ctx, settings); err != nil {
		return err
	}
	r.settings = settings
	return nil
}

func (r *Request) Lang() string {
	if r.settings != nil {
		return r.settings.GetLanguage()
	}
	return r.d.s.GetLanguage(r.ctx, r.t.ChatID)
}

// T translates a system reply. Keys are the Russian source strings in fmt syntax.
func (r *Request) T(key string, args ...any) string {
	return sprintf(i18n.Get(key, r.Lang()), args...)
}

// IsAdmin is evaluated at most once per request.
func (r *Request) IsAdmin() (bool, error) {
	if r.admin != nil {
		return *r.admin, nil
	}
	admin, err := r.d.s.IsAdmin(r.ctx, r.t.ChatID, r.t.From)
	if err != nil {
		return false, err
	}
	r.admin = &admin
	return admin, nil
}

func (r *Request) IsOwner() bool {
	return r.d.s.GetPolicy().IsOwner(r.t.From.ID, r.t.From.Username)
}

// Target prefers the author of the replied message, then the first resolved mention.
// A bare @username argument never resolves.
func (r *Request) Target() *trigger.User {
	if r.t.ReplyTo != nil {
		return r.t.ReplyTo
	}
	if len(r.t.MentionedUsers) > 0 {
		return &r.t.MentionedUsers[0]
	}
	return nil
}

// rememberTarget stores the name fields of a target so lists and tops can render it.
func (r *Request) rememberTarget(u trigger.User) error {
	return r.store().UpsertUser(r.ctx, userRow(r.t.ChatID, u))
}

func (r *Request) Reply(msg string) error {
	_, err := r.d.s.GetGateway().Send(r.ctx, telegram.Message{ChatID: r.t.ChatID, Text: msg})
	return err
}

func (r *Request) ReplyWithKeyboard(msg string, keyboard [][]telegram.Button) error {
	_, err := r.d.s.GetGateway().Send(r.ctx, telegram.Message{ChatID: r.t.ChatID, Text: msg, Keyboard: keyboard})
	return err
}

// OK sends msg and reports success.
func (r *Request) OK(msg string) (Result, error) {
	if err := r.Reply(msg); err != nil {
		return Result{Message: msg}, err
	}
	return Result{Success: true, Message: msg}, nil
}

// Fail sends msg and reports a user-facing failure.
func (r *Request) Fail(msg string) (Result, error) {
	if err := r.Reply(msg); err != nil {
		return Result{Message: msg}, err
	}
	return Result{Message: msg}, nil
}

func (r *Request) publish(kind event.Kind, userID int64, reason string, until time.Time) {
	if r.d.events == nil {
		return
	}
	r.d.events.Publish(event.Event{
		Kind:    kind,
		ChatID:  r.t.ChatID,
		UserID:  userID,
		ActorID: r.t.From.ID,
		Reason:  reason,
		Until:   until,
		At:      r.now(),
	})
}

// name is the HTML-safe display name: first name, then @username, then the id.
func name(u trigger.User) string {
	switch {
	case u.FirstName != "":
		return text.EscapeHTML(u.FirstName)
	case u.Username != "":
		return "@" + text.EscapeHTML(u.Username)
	}
	return "ID:" + strconv.FormatInt(u.ID, 10)
}

func bold(u trigger.User) string {
	return "<b>" + name(u) + "</b>"
}

// mention addresses a user in filter notices.
func mention(u trigger.User) string {
	if u.Username != "" {
		return "@" + text.EscapeHTML(u.Username)
	}
	return name(u)
}

func dbUserName(u *db.User) string {
	return text.EscapeHTML(u.DisplayName())
}

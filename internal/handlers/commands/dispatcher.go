// Package commands is the dispatch and moderation core: it routes a parsed
// trigger to a command handler, a callback handler or the content pass.
package commands

import (
	"context"
	"fmt"

	"github.com/iamwavecut/tool"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/starbot-tg/starbot/internal/bot"
	"github.com/starbot-tg/starbot/internal/db"
	"github.com/starbot-tg/starbot/internal/event"
	"github.com/starbot-tg/starbot/internal/infra"
	"github.com/starbot-tg/starbot/internal/observability"
	"github.com/starbot-tg/starbot/internal/policy/permissions"
	"github.com/starbot-tg/starbot/internal/trigger"
)

// Publisher receives moderation events. *event.Bus implements it.
type Publisher interface {
	Publish(e event.Event) bool
}

type Dispatcher struct {
	s        bot.Service
	events   Publisher
	registry *Registry
	// randInt returns a uniform value in [min, max].
	randInt func(min, max int) int
}

// randIntInclusive widens tool.RandInt, whose upper bound is exclusive.
func randIntInclusive(min, max int) int {
	return tool.RandInt[int](min, max+1)
}

func NewDispatcher(s bot.Service, events Publisher) *Dispatcher {
	d := &Dispatcher{
		s:       s,
		events:  events,
		randInt: randIntInclusive,
	}
	d.registry = d.commandTable()
	return d
}

// WithRand replaces the random source of games and bonuses.
func (d *Dispatcher) WithRand(randInt func(min, max int) int) *Dispatcher {
	d.randInt = randInt
	return d
}

func (d *Dispatcher) Registry() *Registry {
	return d.registry
}

// Handle implements bot.Handler. The dispatcher always ends the handler chain.
func (d *Dispatcher) Handle(ctx context.Context, t *trigger.Trigger) (bool, error) {
	_, err := d.Dispatch(ctx, t)
	return false, err
}

// Dispatch processes one trigger. Gateway and store failures are logged with
// the command name and returned together with a generic failure result.
func (d *Dispatcher) Dispatch(ctx context.Context, t *trigger.Trigger) (Result, error) {
	entry := d.getLogEntry().WithFields(log.Fields{
		"method":  "Dispatch",
		"chat_id": t.ChatID,
		"user_id": t.From.ID,
	})
	if t.Kind == trigger.KindUnknown {
		return Result{Success: true, Message: "ignored"}, nil
	}

	r := &Request{ctx: ctx, d: d, t: t, args: t.Args}
	settings, err := d.upsertIdentity(ctx, t)
	if err != nil {
		entry.WithField("error", err.Error()).Error("cant upsert identity")
		return Result{Message: "identity upsert failed"}, err
	}
	r.settings = settings

	var (
		res   Result
		label string
	)
	switch {
	case t.IsCallback():
		label = "callback"
		res, err = d.handleCallback(r)
	case !t.IsCommand():
		label = "content"
		res, err = d.handleContent(r)
	default:
		desc, ok := d.registry.Lookup(t.Command)
		if !ok {
			entry.WithField("command", t.Command).Trace("unknown command")
			observability.RecordCommand("unknown", "ignored")
			return Result{Success: true, Message: "unknown command", Unknown: true}, nil
		}
		label = desc.Name
		res, err = d.execute(r, desc, t.Args)
		observability.RecordCommand(desc.Name, outcome(res, err))
		err = infra.CommandFailure(err)
	}
	if err != nil {
		entry.WithField("command", label).WithField("error", err.Error()).Error("handler failed")
		return Result{Message: "internal error"}, errors.WithMessagef(err, "handle %s", label)
	}
	return res, nil
}

// upsertIdentity makes sure the actor and the chat have rows before any handler runs.
func (d *Dispatcher) upsertIdentity(ctx context.Context, t *trigger.Trigger) (*db.ChatSettings, error) {
	store := d.s.GetDB()
	if t.From.ID != 0 {
		if err := store.UpsertGlobalUser(ctx, t.From.ID, t.From.Username); err != nil {
			return nil, err
		}
	}
	if t.ChatID == 0 {
		return nil, nil
	}
	if t.From.ID != 0 {
		if err := store.UpsertUser(ctx, userRow(t.ChatID, t.From)); err != nil {
			return nil, err
		}
	}
	return store.EnsureChat(ctx, t.ChatID, t.ChatTitle)
}

// execute runs the capability, arity and target checks of desc and then its handler.
func (d *Dispatcher) execute(r *Request, desc *Descriptor, args []string) (Result, error) {
	r.args = args
	if desc.Capability != permissions.CapabilityNone {
		allowed, err := d.allowed(r, desc.Capability)
		if err != nil {
			return Result{}, err
		}
		if !allowed {
			return r.Fail(d.deniedMessage(r, desc.Capability))
		}
	}
	if len(args) < desc.MinArgs {
		return r.Fail(r.T(desc.Usage))
	}
	if desc.Target {
		target := r.Target()
		if target == nil {
			return r.Fail(r.T("❌ Укажите пользователя (ответьте на сообщение или упомяните)"))
		}
		if err := r.rememberTarget(*target); err != nil {
			return Result{}, err
		}
	}
	return desc.Handler(r)
}

func (d *Dispatcher) allowed(r *Request, c permissions.Capability) (bool, error) {
	switch c {
	case permissions.CapabilityAdmin:
		return r.IsAdmin()
	case permissions.CapabilityOwner:
		return r.IsOwner(), nil
	case permissions.CapabilityPremium:
		return d.s.IsPremium(r.ctx, r.t.From.ID)
	}
	return true, nil
}

func (d *Dispatcher) deniedMessage(r *Request, c permissions.Capability) string {
	switch c {
	case permissions.CapabilityOwner:
		return r.T("⛔ Только владелец может использовать эту команду.")
	case permissions.CapabilityPremium:
		return r.T("💎 Эта команда доступна только для Троллинг консоли!")
	}
	return r.T("⛔ У вас нет прав для этой команды.")
}

func (d *Dispatcher) getLogEntry() *log.Entry {
	return log.WithField("object", "Dispatcher")
}

func userRow(chatID int64, u trigger.User) *db.User {
	return &db.User{
		UserID:    u.ID,
		ChatID:    chatID,
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
	}
}

func outcome(res Result, err error) string {
	switch {
	case err != nil:
		return "error"
	case res.Success:
		return "ok"
	}
	return "rejected"
}

func sprintf(format string, args ...any) string {
	if len(args) == 0 {
		return format
	}
	return fmt.Sprintf(format, args...)
}

package event

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

type Kind string

// Moderation event kinds.
const (
	KindBan        Kind = "ban"
	KindSoftBan    Kind = "softban"
	KindTempBan    Kind = "tempban"
	KindUnban      Kind = "unban"
	KindMute       Kind = "mute"
	KindTempMute   Kind = "tempmute"
	KindUnmute     Kind = "unmute"
	KindWarn       Kind = "warn"
	KindAutoBan    Kind = "autoban"
	KindKick       Kind = "kick"
	KindRestrict   Kind = "restrict"
	KindUnrestrict Kind = "unrestrict"
	KindFiltered   Kind = "filtered"
	KindLifted     Kind = "lifted"
	KindReport     Kind = "report"
)

const (
	defaultQueueSize = 1024
	defaultTTL       = 5 * time.Minute
)

type (
	Event struct {
		Kind    Kind
		ChatID  int64
		UserID  int64
		ActorID int64
		Reason  string
		Until   time.Time
		At      time.Time
	}

	Handler func(ctx context.Context, e Event)

	// Bus is an in-process queue with a single worker fanning events out to subscribers.
	Bus struct {
		q   chan Event
		ttl time.Duration
		now func() time.Time

		subMutex      sync.RWMutex
		subscriptions map[Kind][]Handler
		any           []Handler

		runMutex sync.Mutex
		started  bool
		cancel   context.CancelFunc
		wg       sync.WaitGroup
	}
)

func NewBus(size int, ttl time.Duration) *Bus {
	if size <= 0 {
		size = defaultQueueSize
	}
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Bus{
		q:             make(chan Event, size),
		ttl:           ttl,
		now:           time.Now,
		subscriptions: map[Kind][]Handler{},
	}
}

// Subscribe registers h for the given kinds, or for every kind when none are given.
func (b *Bus) Subscribe(h Handler, kinds ...Kind) {
	b.subMutex.Lock()
	defer b.subMutex.Unlock()
	if len(kinds) == 0 {
		b.any = append(b.any, h)
		return
	}
	for _, kind := range kinds {
		b.subscriptions[kind] = append(b.subscriptions[kind], h)
	}
}

// Publish enqueues e without blocking; it reports false when the queue is full.
func (b *Bus) Publish(e Event) bool {
	if e.At.IsZero() {
		e.At = b.now()
	}
	select {
	case b.q <- e:
		return true
	default:
		b.getLogEntry().WithField("kind", string(e.Kind)).Warn("event queue is full, dropping event")
		return false
	}
}

func (b *Bus) Start(ctx context.Context) error {
	b.runMutex.Lock()
	defer b.runMutex.Unlock()
	if b.started {
		return errors.New("event bus already started")
	}
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	b.cancel = cancel
	b.started = true

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		b.run(runCtx)
	}()
	return nil
}

func (b *Bus) Stop(ctx context.Context) error {
	b.runMutex.Lock()
	if !b.started {
		b.runMutex.Unlock()
		return nil
	}
	b.started = false
	cancel := b.cancel
	b.cancel = nil
	b.runMutex.Unlock()

	cancel()
	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (b *Bus) run(ctx context.Context) {
	entry := b.getLogEntry().WithField("method", "run")
	entry.Trace("event worker started")
	for {
		select {
		case <-ctx.Done():
			b.drain(ctx)
			entry.Debug("event worker stopped")
			return
		case e := <-b.q:
			b.dispatch(ctx, e)
		}
	}
}

// drain delivers whatever is already queued so a shutdown does not lose audit records.
func (b *Bus) drain(ctx context.Context) {
	for {
		select {
		case e := <-b.q:
			b.dispatch(ctx, e)
		default:
			return
		}
	}
}

func (b *Bus) dispatch(ctx context.Context, e Event) {
	if b.now().Sub(e.At) > b.ttl {
		b.getLogEntry().WithField("kind", string(e.Kind)).Debug("skipping expired event")
		return
	}
	b.subMutex.RLock()
	handlers := make([]Handler, 0, len(b.any)+len(b.subscriptions[e.Kind]))
	handlers = append(handlers, b.any...)
	handlers = append(handlers, b.subscriptions[e.Kind]...)
	b.subMutex.RUnlock()

	for _, h := range handlers {
		b.safeCall(ctx, h, e)
	}
}

func (b *Bus) safeCall(ctx context.Context, h Handler, e Event) {
	defer func() {
		if r := recover(); r != nil {
			b.getLogEntry().WithField("kind", string(e.Kind)).WithField("panic", r).Error("event handler panicked")
		}
	}()
	h(ctx, e)
}

func (b *Bus) getLogEntry() *log.Entry {
	return log.WithField("object", "EventBus")
}

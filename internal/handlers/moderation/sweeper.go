// Package moderation holds the background side of moderation: the sweeper
// that lifts expired temporary restrictions and the event subscribers that
// audit, count and relay moderation actions.
package moderation

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/starbot-tg/starbot/internal/db"
	"github.com/starbot-tg/starbot/internal/event"
	"github.com/starbot-tg/starbot/internal/infra"
	"github.com/starbot-tg/starbot/internal/infrastructure/telegram"
	"github.com/starbot-tg/starbot/internal/observability"
)

const (
	defaultSweepInterval    = time.Minute
	defaultSweepConcurrency = 4
	sweepBatch              = 100
	sweeperMaxPanics        = 3

	// maxLiftAttempts bounds retries for rows the platform keeps rejecting,
	// e.g. after the bot was removed from the chat.
	maxLiftAttempts = 8
	maxRetryBackoff = time.Hour
)

type sweepStore interface {
	GetExpiredRestrictions(ctx context.Context, now time.Time, limit int) ([]*db.TempRestriction, error)
	DeleteRestriction(ctx context.Context, chatID, userID int64, kind db.RestrictionType) error
	DeferRestriction(ctx context.Context, chatID, userID int64, kind db.RestrictionType, next time.Time) error
}

type lifter interface {
	Unban(ctx context.Context, chatID, userID int64, onlyIfBanned bool) error
	Restrict(ctx context.Context, chatID, userID int64, perms telegram.Permissions, until time.Time) error
}

// Publisher receives lift events. *event.Bus implements it.
type Publisher interface {
	Publish(e event.Event) bool
}

// Sweeper lifts temporary bans and mutes once they expire. A row is removed only
// after the platform accepted the lift. Failed rows are retried with a growing
// delay so they never hold up newer expirations, and dropped after maxLiftAttempts.
type Sweeper struct {
	store       sweepStore
	gateway     lifter
	events      Publisher
	interval    time.Duration
	concurrency int
	now         func() time.Time

	runMutex  sync.Mutex
	started   bool
	runCancel context.CancelFunc
	workersWg sync.WaitGroup
}

func NewSweeper(store sweepStore, gateway lifter, events Publisher, interval time.Duration, concurrency int) *Sweeper {
	if interval <= 0 {
		interval = defaultSweepInterval
	}
	if concurrency <= 0 {
		concurrency = defaultSweepConcurrency
	}
	return &Sweeper{
		store:       store,
		gateway:     gateway,
		events:      events,
		interval:    interval,
		concurrency: concurrency,
		now:         time.Now,
	}
}

func (s *Sweeper) WithClock(now func() time.Time) *Sweeper {
	s.now = now
	return s
}

func (s *Sweeper) Start(ctx context.Context) error {
	s.runMutex.Lock()
	defer s.runMutex.Unlock()
	if s.started {
		return nil
	}

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.runCancel = cancel

	s.workersWg.Add(1)
	go func() {
		defer s.workersWg.Done()
		infra.GoRecoverable(sweeperMaxPanics, "sweeper", func() { s.loop(runCtx) })
	}()

	s.started = true
	s.getLogEntry().WithField("interval", s.interval.String()).Info("sweeper started")
	return nil
}

func (s *Sweeper) Stop(ctx context.Context) error {
	s.runMutex.Lock()
	if !s.started {
		s.runMutex.Unlock()
		return nil
	}
	s.started = false
	cancel := s.runCancel
	s.runMutex.Unlock()

	if cancel != nil {
		cancel()
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		s.workersWg.Wait()
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-done:
		return nil
	}
}

func (s *Sweeper) loop(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.RunOnce(ctx); err != nil && !isCanceled(err) {
				s.getLogEntry().WithField("method", "loop").WithField("error", err.Error()).Error("sweep failed")
			}
		}
	}
}

// RunOnce lifts every restriction that has expired by now and reports how many were lifted.
func (s *Sweeper) RunOnce(ctx context.Context) (int, error) {
	expired, err := s.store.GetExpiredRestrictions(ctx, s.now(), sweepBatch)
	if err != nil {
		return 0, errors.WithMessage(err, "list expired restrictions")
	}
	if len(expired) == 0 {
		return 0, nil
	}

	var lifted atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for _, r := range expired {
		r := r
		g.Go(func() error {
			if s.lift(gctx, r) {
				lifted.Add(1)
			}
			return nil
		})
	}
	_ = g.Wait()
	return int(lifted.Load()), ctx.Err()
}

// lift never fails the batch: a failed row is deferred or, once out of attempts, dropped.
func (s *Sweeper) lift(ctx context.Context, r *db.TempRestriction) bool {
	entry := s.getLogEntry().WithFields(log.Fields{
		"method":  "lift",
		"chat_id": r.ChatID,
		"user_id": r.UserID,
		"type":    string(r.Type),
	})

	var err error
	switch r.Type {
	case db.RestrictionBan:
		err = s.gateway.Unban(ctx, r.ChatID, r.UserID, true)
	case db.RestrictionMute:
		err = s.gateway.Restrict(ctx, r.ChatID, r.UserID, telegram.Full, time.Time{})
	default:
		entry.Warn("unknown restriction type, dropping row")
	}
	if err != nil {
		entry.WithField("error", err.Error()).WithField("attempts", r.Attempts+1).Warn("cant lift restriction")
		s.retryLater(ctx, entry, r)
		return false
	}

	if err := s.store.DeleteRestriction(ctx, r.ChatID, r.UserID, r.Type); err != nil {
		entry.WithField("error", err.Error()).Error("cant delete lifted restriction")
		observability.RecordSweep(string(r.Type), "failed")
		return false
	}
	observability.RecordSweep(string(r.Type), "lifted")
	if s.events != nil {
		s.events.Publish(event.Event{
			Kind:    event.KindLifted,
			ChatID:  r.ChatID,
			UserID:  r.UserID,
			ActorID: r.AdminID,
			Reason:  string(r.Type),
			At:      s.now(),
		})
	}
	entry.Debug("restriction lifted")
	return true
}

func (s *Sweeper) retryLater(ctx context.Context, entry *log.Entry, r *db.TempRestriction) {
	attempts := r.Attempts + 1
	if attempts >= maxLiftAttempts {
		observability.RecordSweep(string(r.Type), "dropped")
		if err := s.store.DeleteRestriction(ctx, r.ChatID, r.UserID, r.Type); err != nil {
			entry.WithField("error", err.Error()).Error("cant drop restriction")
			return
		}
		entry.Error("restriction dropped after repeated lift failures")
		return
	}
	observability.RecordSweep(string(r.Type), "failed")
	next := s.now().Add(s.retryBackoff(attempts))
	if err := s.store.DeferRestriction(ctx, r.ChatID, r.UserID, r.Type, next); err != nil {
		entry.WithField("error", err.Error()).Error("cant defer restriction")
	}
}

// retryBackoff doubles the sweep interval per failed attempt.
func (s *Sweeper) retryBackoff(attempts int) time.Duration {
	backoff := s.interval
	for i := 1; i < attempts && backoff < maxRetryBackoff; i++ {
		backoff *= 2
	}
	return min(backoff, maxRetryBackoff)
}

func isCanceled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

func (s *Sweeper) getLogEntry() *log.Entry {
	return log.WithField("object", "Sweeper")
}

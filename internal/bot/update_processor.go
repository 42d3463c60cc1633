package bot

import (
	"context"
	"time"

	"github.com/pborman/uuid"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/starbot-tg/starbot/internal/infra"
	"github.com/starbot-tg/starbot/internal/observability"
	"github.com/starbot-tg/starbot/internal/trigger"
)

const (
	outcomeOK        = "ok"
	outcomeFailed    = "failed"
	outcomeDuplicate = "duplicate"
	outcomeIgnored   = "ignored"
)

// ErrPanic marks updates whose processing panicked; the webhook answers those with 500.
var ErrPanic = infra.ErrPanic

type UpdateProcessor struct {
	dedup          Deduplicator
	updateHandlers []Handler
}

func NewUpdateProcessor(dedup Deduplicator, handlers ...Handler) *UpdateProcessor {
	enabledHandlers := make([]Handler, 0, len(handlers))
	for _, handler := range handlers {
		if handler == nil {
			continue
		}
		enabledHandlers = append(enabledHandlers, handler)
	}
	return &UpdateProcessor{
		dedup:          dedup,
		updateHandlers: enabledHandlers,
	}
}

// Process parses one raw update and runs it through the handler chain. It is the
// catch boundary for a single update: a failure here never affects other updates.
func (up *UpdateProcessor) Process(ctx context.Context, payload []byte) (err error) {
	started := time.Now()
	t := trigger.Parse(payload)
	kind := string(t.Kind)

	entry := up.getLogEntry().WithFields(log.Fields{
		"method":      "Process",
		"update_id":   t.UpdateID,
		"correlation": uuid.New(),
		"kind":        kind,
	})
	if t.Command != "" {
		entry = entry.WithField("command", t.Command)
	}

	ctx, span := observability.Tracer().Start(ctx, "update.process")
	span.SetAttributes(
		attribute.Int64("update.id", t.UpdateID),
		attribute.String("update.kind", kind),
		attribute.Int64("chat.id", t.ChatID),
	)
	outcome := outcomeOK
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
		observability.RecordUpdate(kind, outcome, time.Since(started))
	}()

	if t.Kind == trigger.KindUnknown {
		entry.Trace("ignoring unknown update")
		outcome = outcomeIgnored
		return nil
	}

	if up.dedup != nil && t.UpdateID != 0 {
		first, dedupErr := up.dedup.Claim(ctx, t.UpdateID)
		switch {
		case dedupErr != nil:
			entry.WithField("error", dedupErr.Error()).Warn("dedup is unavailable, processing anyway")
		case !first:
			entry.Debug("skipping duplicate update")
			outcome = outcomeDuplicate
			return nil
		}
	}

	if err = up.run(ctx, &t); err != nil {
		outcome = outcomeFailed
		entry.WithField("error", err.Error()).Error("cant process update")
	}
	return err
}

func (up *UpdateProcessor) run(ctx context.Context, t *trigger.Trigger) (err error) {
	defer infra.Recover(&err)
	for _, handler := range up.updateHandlers {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		proceed, err := handler.Handle(ctx, t)
		if err != nil {
			return errors.WithMessage(err, "handling error")
		}
		if !proceed {
			log.Trace("not proceeding")
			return nil
		}
	}
	return nil
}

func (up *UpdateProcessor) getLogEntry() *log.Entry {
	return log.WithField("object", "UpdateProcessor")
}

package observability

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const instrumentationName = "github.com/starbot-tg/starbot"

var (
	updatesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "starbot_updates_total",
			Help: "Webhook updates by trigger kind and outcome",
		},
		[]string{"kind", "outcome"},
	)

	updateProcessingDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "starbot_update_processing_duration_seconds",
			Help:    "Time spent processing one update",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"kind"},
	)

	commandsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "starbot_commands_total",
			Help: "Dispatched commands by name and outcome",
		},
		[]string{"command", "outcome"},
	)

	moderationActionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "starbot_moderation_actions_total",
			Help: "Moderation actions by kind",
		},
		[]string{"action"},
	)

	sweptRestrictionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "starbot_swept_restrictions_total",
			Help: "Expired temporary restrictions handled by the sweeper",
		},
		[]string{"type", "outcome"},
	)

	registerOnce sync.Once
	registerErr  error
)

// Setup owns the process wide audit logger and tracer provider.
type Setup struct {
	Audit          *zap.Logger
	TracerProvider *sdktrace.TracerProvider
}

func Init(_ context.Context, development bool) (*Setup, error) {
	var (
		audit *zap.Logger
		err   error
	)
	if development {
		audit, err = zap.NewDevelopment()
	} else {
		audit, err = zap.NewProduction()
	}
	if err != nil {
		return nil, errors.Wrap(err, "init audit logger")
	}

	if err := Register(prometheus.DefaultRegisterer); err != nil {
		return nil, err
	}

	tp := sdktrace.NewTracerProvider()
	otel.SetTracerProvider(tp)

	return &Setup{
		Audit:          audit.Named("audit"),
		TracerProvider: tp,
	}, nil
}

func (s *Setup) Shutdown(ctx context.Context) error {
	if s == nil {
		return nil
	}
	if s.Audit != nil {
		_ = s.Audit.Sync()
	}
	if s.TracerProvider != nil {
		return errors.Wrap(s.TracerProvider.Shutdown(ctx), "shutdown tracer provider")
	}
	return nil
}

// Register adds the collectors to reg once per process.
func Register(reg prometheus.Registerer) error {
	registerOnce.Do(func() {
		for _, c := range []prometheus.Collector{
			updatesTotal,
			updateProcessingDuration,
			commandsTotal,
			moderationActionsTotal,
			sweptRestrictionsTotal,
		} {
			if err := reg.Register(c); err != nil {
				var already prometheus.AlreadyRegisteredError
				if errors.As(err, &already) {
					continue
				}
				registerErr = errors.Wrap(err, "register collector")
				return
			}
		}
	})
	return registerErr
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

func Tracer() trace.Tracer {
	return otel.Tracer(instrumentationName)
}

func RecordUpdate(kind, outcome string, took time.Duration) {
	updatesTotal.WithLabelValues(kind, outcome).Inc()
	updateProcessingDuration.WithLabelValues(kind).Observe(took.Seconds())
}

func RecordCommand(command, outcome string) {
	commandsTotal.WithLabelValues(command, outcome).Inc()
}

func RecordModerationAction(action string) {
	moderationActionsTotal.WithLabelValues(action).Inc()
}

func RecordSweep(restrictionType, outcome string) {
	sweptRestrictionsTotal.WithLabelValues(restrictionType, outcome).Inc()
}

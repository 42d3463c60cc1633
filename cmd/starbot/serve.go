package main

import (
	"context"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/starbot-tg/starbot/internal/bot"
	"github.com/starbot-tg/starbot/internal/dedup"
	"github.com/starbot-tg/starbot/internal/event"
	"github.com/starbot-tg/starbot/internal/handlers/commands"
	"github.com/starbot-tg/starbot/internal/handlers/moderation"
	"github.com/starbot-tg/starbot/internal/infra"
	"github.com/starbot-tg/starbot/internal/lifecycle"
	"github.com/starbot-tg/starbot/internal/observability"
	"github.com/starbot-tg/starbot/internal/policy/permissions"
	"github.com/starbot-tg/starbot/internal/webhook"
)

const eventQueueSize = 1024

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the webhook endpoint and run the restriction sweeper",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context())
		},
	}
}

func serve(ctx context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	entry := log.WithField("object", "Serve")

	obs, err := observability.Init(ctx, cfg.IsDevelopment())
	if err != nil {
		return err
	}
	defer func() {
		if err := obs.Shutdown(context.Background()); err != nil {
			entry.WithField("error", err.Error()).Warn("cant shutdown observability")
		}
	}()

	store, err := openStore(ctx, cfg)
	if err != nil {
		return errors.WithMessage(err, "open database")
	}
	defer store.Close()

	updates, err := dedup.Open(ctx, cfg.RedisURL)
	if err != nil {
		return errors.WithMessage(err, "open dedup store")
	}
	defer updates.Close()

	gateway := newGateway(cfg)
	service := bot.NewService(gateway, store, permissions.NewPolicy(cfg.Access))

	bus := event.NewBus(eventQueueSize, 0)
	moderation.Subscribe(bus, obs.Audit, moderation.NewLogRelay(service, gateway))

	dispatcher := commands.NewDispatcher(service, bus)
	processor := bot.NewUpdateProcessor(updates, dispatcher)
	server := webhook.NewServer(processor, cfg.Port).
		WithRegistration(gateway, cfg.WebhookURL()).
		WithMetrics(observability.Handler())
	sweeper := moderation.NewSweeper(store, gateway, bus, cfg.SweepInterval(), cfg.Sweeper.MaxConcurrency)

	components := lifecycle.NewRuntime()
	components.Register("events", bus)
	components.Register("sweeper", sweeper)
	components.Register("webhook", server)
	if err := components.Start(ctx); err != nil {
		return err
	}
	entry.WithFields(log.Fields{
		"mode":     cfg.Mode,
		"commands": len(dispatcher.Registry().Names()),
		"dialect":  store.Dialect(),
	}).Info("starbot is running")

	var restart <-chan struct{}
	if cfg.IsDevelopment() {
		restart = infra.MonitorExecutable(ctx, 0)
	}
	waitForShutdown(ctx, restart, entry)

	stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return components.Stop(stopCtx)
}

// waitForShutdown returns on cancellation or once the executable was replaced.
// A monitor that gave up closes restart without a signal and is ignored.
func waitForShutdown(ctx context.Context, restart <-chan struct{}, entry *log.Entry) {
	for {
		select {
		case <-ctx.Done():
			entry.Info("shutting down")
			return
		case _, ok := <-restart:
			if ok {
				entry.Info("executable changed, shutting down")
				return
			}
			restart = nil
		}
	}
}

package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	api "github.com/OvyFlash/telegram-bot-api"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/starbot-tg/starbot/internal/config"
	"github.com/starbot-tg/starbot/internal/db/sqlstore"
	"github.com/starbot-tg/starbot/internal/handlers/moderation"
	"github.com/starbot-tg/starbot/internal/infrastructure/telegram"
)

const (
	gatewayTimeout  = 30 * time.Second
	sweepTimeout    = 5 * time.Minute
	shutdownTimeout = 15 * time.Second
)

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		log.WithField("error", err.Error()).Error("command failed")
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	serve := newServeCmd()
	cmd := &cobra.Command{
		Use:           "starbot",
		Short:         "Telegram group management bot",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          serve.RunE,
	}
	cmd.AddCommand(serve)
	cmd.AddCommand(newMigrateCmd())
	cmd.AddCommand(newSweepCmd())
	return cmd
}

// loadConfig reads the environment and configures logrus from it.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return cfg, errors.WithMessage(err, "load config")
	}
	log.SetFormatter(&config.LogFormatter{Colored: cfg.IsDevelopment()})
	log.SetOutput(os.Stdout)
	log.SetLevel(cfg.Level())
	for _, warning := range cfg.Warnings() {
		log.Warn(warning)
	}
	return cfg, nil
}

func openStore(ctx context.Context, cfg config.Config) (*sqlstore.Client, error) {
	return sqlstore.Open(ctx, sqlstore.Options{
		DatabaseURL:     cfg.DatabaseURL,
		WorkDir:         cfg.WorkDir,
		DefaultLanguage: cfg.DefaultLanguage,
	})
}

// newGateway verifies the token with getMe. When that fails the bot still starts,
// so health checks keep answering while every gateway call reports the error.
func newGateway(cfg config.Config) *telegram.Operations {
	botAPI, err := api.NewBotAPI(cfg.TelegramAPIToken)
	if err != nil {
		log.WithField("error", err.Error()).Warn("cant initialize bot api, continuing unverified")
		botAPI = &api.BotAPI{
			Token:  cfg.TelegramAPIToken,
			Client: &http.Client{Timeout: gatewayTimeout},
			Buffer: 100,
		}
		botAPI.SetAPIEndpoint(api.APIEndpoint)
	} else {
		log.WithField("username", botAPI.Self.UserName).Info("bot api initialized")
	}
	botAPI.Debug = cfg.Level() == log.TraceLevel
	return telegram.NewOperations(botAPI)
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations and exit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			store, err := openStore(ctx, cfg)
			if err != nil {
				return errors.WithMessage(err, "open database")
			}
			defer store.Close()

			n, err := store.Migrate(ctx)
			if err != nil {
				return err
			}
			log.WithField("dialect", store.Dialect()).WithField("applied", n).Info("database is up to date")
			return nil
		},
	}
}

func newSweepCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Lift expired temporary bans and mutes once and exit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), sweepTimeout)
			defer cancel()

			store, err := openStore(ctx, cfg)
			if err != nil {
				return errors.WithMessage(err, "open database")
			}
			defer store.Close()

			sweeper := moderation.NewSweeper(store, newGateway(cfg), nil, cfg.SweepInterval(), cfg.Sweeper.MaxConcurrency)
			lifted, err := sweeper.RunOnce(ctx)
			if err != nil {
				return err
			}
			log.WithField("lifted", lifted).Info("sweep finished")
			return nil
		},
	}
}

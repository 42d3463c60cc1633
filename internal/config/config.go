package config

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/mitchellh/go-homedir"
	"github.com/pkg/errors"
	"github.com/sethvargo/go-envconfig"
	log "github.com/sirupsen/logrus"
)

const (
	ModeDevelopment = "development"
	ModeProduction  = "production"

	WebhookPath = "/webhooks/telegram/action"
)

type (
	Config struct {
		TelegramAPIToken string `env:"TELEGRAM_BOT_TOKEN"`
		DatabaseURL      string `env:"DATABASE_URL"`
		AppURL           string `env:"APP_URL"`
		RenderURL        string `env:"RENDER_EXTERNAL_URL"`
		Port             int    `env:"PORT,default=5000"`
		Mode             string `env:"APP_ENV"`
		NodeEnv          string `env:"NODE_ENV,default=production"`
		LogLevel         string `env:"LOG_LEVEL,default=info"`
		DefaultLanguage  string `env:"DEFAULT_LANGUAGE,default=ru"`
		WorkDir          string `env:"WORK_DIR,default=~/.starbot"`
		RedisURL         string `env:"REDIS_URL"`
		Access           Access
		Sweeper          Sweeper
	}

	// Access lists identities that are privileged regardless of chat membership.
	Access struct {
		OwnerIDs       []int64  `env:"OWNER_IDS,default=1314619424"`
		OwnerUsernames []string `env:"OWNER_USERNAMES,default=n777snickers777"`
		PremiumIDs     []int64  `env:"PREMIUM_IDS,default=1314619424,7977020467"`
	}

	Sweeper struct {
		Interval       time.Duration `env:"SWEEP_INTERVAL,default=1m"`
		DevInterval    time.Duration `env:"SWEEP_DEV_INTERVAL,default=15s"`
		MaxConcurrency int           `env:"SWEEP_CONCURRENCY,default=4"`
	}
)

var (
	once         sync.Once
	globalConfig = &Config{}
	globalErr    error
)

// Load reads .env (when present) and the process environment exactly once.
func Load() (Config, error) {
	once.Do(func() {
		if err := godotenv.Load(); err != nil {
			log.WithField("error", err.Error()).Trace("no .env file loaded")
		}
		cfg, err := Process(context.Background(), envconfig.OsLookuper())
		if err != nil {
			globalErr = err
			return
		}
		log.Traceln("loaded config")
		globalConfig = cfg
	})
	return *globalConfig, globalErr
}

func Get() Config {
	cfg, err := Load()
	if err != nil {
		log.WithField("error", err.Error()).Error("cant load config")
	}
	return cfg
}

// Process builds a Config from an arbitrary lookuper and normalizes derived fields.
func Process(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	cfg := &Config{}
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Lookuper: lookuper,
		Target:   cfg,
	}); err != nil {
		return nil, errors.Wrap(err, "process env config")
	}

	workDir, err := homedir.Expand(cfg.WorkDir)
	if err != nil {
		return nil, errors.Wrap(err, "expand work dir")
	}
	cfg.WorkDir = workDir

	if cfg.Mode == "" {
		cfg.Mode = cfg.NodeEnv
	}
	cfg.Mode = strings.ToLower(strings.TrimSpace(cfg.Mode))
	if cfg.Mode != ModeDevelopment {
		cfg.Mode = ModeProduction
	}
	for i, username := range cfg.Access.OwnerUsernames {
		cfg.Access.OwnerUsernames[i] = strings.TrimPrefix(strings.TrimSpace(username), "@")
	}
	if cfg.Sweeper.MaxConcurrency < 1 {
		cfg.Sweeper.MaxConcurrency = 1
	}
	return cfg, nil
}

func (c Config) IsDevelopment() bool {
	return c.Mode == ModeDevelopment
}

// PublicURL is the externally reachable base URL, empty when unknown.
func (c Config) PublicURL() string {
	base := c.AppURL
	if base == "" {
		base = c.RenderURL
	}
	return strings.TrimRight(strings.TrimSpace(base), "/")
}

// WebhookURL is the full webhook address, empty when no public URL is configured.
func (c Config) WebhookURL() string {
	base := c.PublicURL()
	if base == "" {
		return ""
	}
	return base + WebhookPath
}

func (c Config) SweepInterval() time.Duration {
	if c.IsDevelopment() && c.Sweeper.DevInterval > 0 {
		return c.Sweeper.DevInterval
	}
	if c.Sweeper.Interval <= 0 {
		return time.Minute
	}
	return c.Sweeper.Interval
}

func (c Config) Level() log.Level {
	level, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		return log.InfoLevel
	}
	return level
}

// Warnings lists non-fatal configuration problems worth reporting on startup.
func (c Config) Warnings() []string {
	var warnings []string
	if strings.TrimSpace(c.TelegramAPIToken) == "" {
		warnings = append(warnings, "TELEGRAM_BOT_TOKEN is not set, gateway calls will fail")
	}
	if c.PublicURL() == "" {
		warnings = append(warnings, "APP_URL is not set, webhook registration is skipped")
	}
	return warnings
}

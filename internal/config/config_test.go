package config

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
	log "github.com/sirupsen/logrus"
)

func TestProcessDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := Process(context.Background(), envconfig.MapLookuper(map[string]string{
		"WORK_DIR": t.TempDir(),
	}))
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if cfg.Port != 5000 {
		t.Fatalf("unexpected port: %d", cfg.Port)
	}
	if cfg.Mode != ModeProduction {
		t.Fatalf("unexpected mode: %q", cfg.Mode)
	}
	if len(cfg.Access.OwnerIDs) != 1 || cfg.Access.OwnerIDs[0] != 1314619424 {
		t.Fatalf("unexpected owner ids: %v", cfg.Access.OwnerIDs)
	}
	if len(cfg.Access.PremiumIDs) != 2 {
		t.Fatalf("unexpected premium ids: %v", cfg.Access.PremiumIDs)
	}
	if cfg.WebhookURL() != "" {
		t.Fatalf("webhook url must be empty without a public url, got %q", cfg.WebhookURL())
	}
	if cfg.SweepInterval() != time.Minute {
		t.Fatalf("unexpected sweep interval: %s", cfg.SweepInterval())
	}
	if len(cfg.Warnings()) != 2 {
		t.Fatalf("expected token and url warnings, got %v", cfg.Warnings())
	}
}

func TestProcessDerivedFields(t *testing.T) {
	t.Parallel()

	cfg, err := Process(context.Background(), envconfig.MapLookuper(map[string]string{
		"TELEGRAM_BOT_TOKEN":  "123:abc",
		"RENDER_EXTERNAL_URL": "https://bot.example.com/",
		"NODE_ENV":            "Development",
		"OWNER_USERNAMES":     "@alice, bob",
		"WORK_DIR":            t.TempDir(),
	}))
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if !cfg.IsDevelopment() {
		t.Fatalf("NODE_ENV must select development mode")
	}
	if got := cfg.WebhookURL(); got != "https://bot.example.com"+WebhookPath {
		t.Fatalf("unexpected webhook url: %q", got)
	}
	if cfg.SweepInterval() != 15*time.Second {
		t.Fatalf("development mode must use the dev sweep interval, got %s", cfg.SweepInterval())
	}
	if cfg.Access.OwnerUsernames[0] != "alice" || cfg.Access.OwnerUsernames[1] != "bob" {
		t.Fatalf("usernames must be normalized: %v", cfg.Access.OwnerUsernames)
	}
	if len(cfg.Warnings()) != 0 {
		t.Fatalf("unexpected warnings: %v", cfg.Warnings())
	}
}

func TestLogFormatterPlain(t *testing.T) {
	t.Parallel()

	entry := log.NewEntry(log.New())
	entry.Level = log.WarnLevel
	entry.Message = "line\nbreak"
	entry.Data = log.Fields{"object": "Sweeper", "count": 2}

	out, err := (&LogFormatter{}).Format(entry)
	if err != nil {
		t.Fatalf("format: %v", err)
	}
	line := string(out)
	if !strings.HasPrefix(line, "level=WARN ") {
		t.Fatalf("unexpected prefix: %q", line)
	}
	if !strings.Contains(line, `count=2 object="Sweeper"`) {
		t.Fatalf("fields must be sorted: %q", line)
	}
	if strings.Count(line, "\n") != 1 || !strings.Contains(line, `line\nbreak`) {
		t.Fatalf("newlines must be escaped: %q", line)
	}
}

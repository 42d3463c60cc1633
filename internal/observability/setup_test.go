package observability

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordersIncrementCounters(t *testing.T) {
	before := testutil.ToFloat64(moderationActionsTotal.WithLabelValues("ban"))
	RecordModerationAction("ban")
	RecordModerationAction("ban")
	if got := testutil.ToFloat64(moderationActionsTotal.WithLabelValues("ban")) - before; got != 2 {
		t.Fatalf("unexpected moderation counter delta %v", got)
	}

	before = testutil.ToFloat64(commandsTotal.WithLabelValues("stars", "ok"))
	RecordCommand("stars", "ok")
	if got := testutil.ToFloat64(commandsTotal.WithLabelValues("stars", "ok")) - before; got != 1 {
		t.Fatalf("unexpected command counter delta %v", got)
	}

	before = testutil.ToFloat64(updatesTotal.WithLabelValues("command", "ok"))
	RecordUpdate("command", "ok", 15*time.Millisecond)
	if got := testutil.ToFloat64(updatesTotal.WithLabelValues("command", "ok")) - before; got != 1 {
		t.Fatalf("unexpected update counter delta %v", got)
	}
}

func TestRegisterIsIdempotent(t *testing.T) {
	reg := prometheus.NewRegistry()
	if err := Register(reg); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := Register(reg); err != nil {
		t.Fatalf("second register: %v", err)
	}
}

func TestInitAndShutdown(t *testing.T) {
	setup, err := Init(context.Background(), true)
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	if setup.Audit == nil || setup.TracerProvider == nil {
		t.Fatal("setup is incomplete")
	}
	_, span := Tracer().Start(context.Background(), "test")
	span.End()
	if err := setup.Shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
}

package event

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestBusDeliversToKindAndWildcardSubscribers(t *testing.T) {
	t.Parallel()

	bus := NewBus(8, time.Minute)
	var (
		mu     sync.Mutex
		byKind []Kind
		all    []Kind
		wg     sync.WaitGroup
	)
	wg.Add(3)
	bus.Subscribe(func(_ context.Context, e Event) {
		mu.Lock()
		byKind = append(byKind, e.Kind)
		mu.Unlock()
		wg.Done()
	}, KindWarn)
	bus.Subscribe(func(_ context.Context, e Event) {
		mu.Lock()
		all = append(all, e.Kind)
		mu.Unlock()
		wg.Done()
	})

	if err := bus.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer func() { _ = bus.Stop(context.Background()) }()

	bus.Publish(Event{Kind: KindWarn, ChatID: 1, UserID: 2})
	bus.Publish(Event{Kind: KindBan, ChatID: 1, UserID: 2})
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	if len(byKind) != 1 || byKind[0] != KindWarn {
		t.Fatalf("unexpected kind deliveries: %v", byKind)
	}
	if len(all) != 2 {
		t.Fatalf("unexpected wildcard deliveries: %v", all)
	}
}

func TestBusSkipsExpiredEventsAndSurvivesPanics(t *testing.T) {
	t.Parallel()

	bus := NewBus(8, time.Minute)
	delivered := make(chan Kind, 4)
	bus.Subscribe(func(_ context.Context, e Event) {
		if e.Kind == KindKick {
			panic("handler failure")
		}
		delivered <- e.Kind
	})

	bus.Publish(Event{Kind: KindMute, At: time.Now().Add(-time.Hour)})
	bus.Publish(Event{Kind: KindKick})
	bus.Publish(Event{Kind: KindUnmute})

	if err := bus.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := bus.Stop(context.Background()); err != nil {
		t.Fatalf("stop: %v", err)
	}
	close(delivered)

	var got []Kind
	for kind := range delivered {
		got = append(got, kind)
	}
	if len(got) != 1 || got[0] != KindUnmute {
		t.Fatalf("unexpected deliveries: %v", got)
	}
}

func TestBusPublishDropsWhenFull(t *testing.T) {
	t.Parallel()

	bus := NewBus(1, time.Minute)
	if !bus.Publish(Event{Kind: KindBan}) {
		t.Fatalf("first publish must be accepted")
	}
	if bus.Publish(Event{Kind: KindBan}) {
		t.Fatalf("second publish must be dropped")
	}
}

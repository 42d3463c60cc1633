package commands

import (
	"context"
	"strings"
	"testing"
	"time"
)

func TestTransferConservesStars(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.grant(alice, 100)

	res := h.dispatch(replyTo(command(alice, "/transfer 30"), bob))
	if !res.Success {
		t.Fatalf("transfer failed: %+v", res)
	}
	if a, b := h.user(alice).Stars, h.user(bob).Stars; a != 70 || b != 30 {
		t.Fatalf("expected 70/30, got %d/%d", a, b)
	}

	h.dispatch(replyTo(command(alice, "/pay 500"), bob))
	if h.gw.last() != "❌ Недостаточно звёзд! У вас: 70 ⭐" {
		t.Fatalf("unexpected overdraft reply %q", h.gw.last())
	}
	h.dispatch(replyTo(command(alice, "/pay 10"), alice))
	if h.gw.last() != "❌ Нельзя перевести звёзды самому себе!" {
		t.Fatalf("unexpected self transfer reply %q", h.gw.last())
	}
	h.dispatch(replyTo(command(alice, "/pay -5"), bob))
	if h.gw.last() != "❌ Укажите сумму для перевода." {
		t.Fatalf("unexpected invalid amount reply %q", h.gw.last())
	}
	if a, b := h.user(alice).Stars, h.user(bob).Stars; a+b != 100 {
		t.Fatalf("stars were created or lost: %d+%d", a, b)
	}
}

func TestDailyBonusCooldown(t *testing.T) {
	t.Parallel()

	h := newHarness(t, 70)

	h.dispatch(command(alice, "/daily"))
	if h.gw.last() != "🎁 Alice, Вы получили 70 ⭐" {
		t.Fatalf("unexpected bonus reply %q", h.gw.last())
	}

	h.now = h.now.Add(20 * time.Hour)
	res := h.dispatch(command(alice, "/bonus"))
	if res.Success || h.gw.last() != "⏳ Alice, Бонус можно получить через 4 ч." {
		t.Fatalf("expected cooldown, got %+v %q", res, h.gw.last())
	}
	if h.user(alice).Stars != 70 {
		t.Fatalf("cooldown must not pay, got %d", h.user(alice).Stars)
	}

	h.now = h.now.Add(4 * time.Hour)
	if res := h.dispatch(command(alice, "/bonus")); !res.Success {
		t.Fatalf("bonus must be available after 24h, got %+v", res)
	}
}

func TestWeeklyBonusHasItsOwnCooldown(t *testing.T) {
	t.Parallel()

	h := newHarness(t, 70, 350)
	h.dispatch(command(alice, "/daily"))
	h.dispatch(command(alice, "/weekly"))
	if h.user(alice).Stars != 420 {
		t.Fatalf("expected 420 stars, got %d", h.user(alice).Stars)
	}
	h.now = h.now.Add(6 * 24 * time.Hour)
	if res := h.dispatch(command(alice, "/weekly")); res.Success {
		t.Fatalf("weekly bonus must wait seven days, got %+v", res)
	}
}

// The virtas rate is kept as (stars/10)*10000.
func TestBuyVirtasRate(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.grant(alice, 50)

	h.dispatch(command(alice, "/buyvirtas 15"))
	if !strings.HasPrefix(h.gw.last(), "❌ Сумма должна быть кратна 10") {
		t.Fatalf("unexpected reply %q", h.gw.last())
	}

	h.dispatch(command(alice, "/buyvirtas 20"))
	if h.gw.last() != "✅ Вы купили 20000 виртов за 20 ⭐!" {
		t.Fatalf("unexpected purchase reply %q", h.gw.last())
	}
	global, err := h.store.GetGlobalUser(context.Background(), alice.ID)
	if err != nil || global == nil || global.Virtas != 20000 {
		t.Fatalf("expected 20000 virtas, got %+v %v", global, err)
	}
	if h.user(alice).Stars != 30 {
		t.Fatalf("expected 30 stars left, got %d", h.user(alice).Stars)
	}
}

func TestCasinoOutcomes(t *testing.T) {
	t.Parallel()

	// win with x3, then a loss
	h := newHarness(t, 10, 1, 90, 5)
	h.grant(alice, 100)

	h.dispatch(command(alice, "/casino 20"))
	if h.user(alice).Stars != 160 {
		t.Fatalf("expected 160 after an x3 win, got %d", h.user(alice).Stars)
	}
	h.dispatch(command(alice, "/casino 20"))
	if h.user(alice).Stars != 140 {
		t.Fatalf("expected 140 after a loss, got %d", h.user(alice).Stars)
	}

	h.dispatch(command(alice, "/casino 1000"))
	if h.gw.last() != "❌ Недостаточно звёзд! У вас: 140 ⭐" {
		t.Fatalf("unexpected bet rejection %q", h.gw.last())
	}
}

func TestFishingDailyLimit(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	for i := 0; i < fishingPerDay; i++ {
		if res := h.dispatch(command(alice, "/fish")); !res.Success {
			t.Fatalf("catch %d failed: %+v", i+1, res)
		}
	}
	res := h.dispatch(command(alice, "/fish"))
	if res.Success {
		t.Fatalf("21st catch must be refused, got %+v", res)
	}
	if h.user(alice).Stars != int64(fishingPerDay*2) {
		t.Fatalf("expected %d stars, got %d", fishingPerDay*2, h.user(alice).Stars)
	}

	h.now = h.now.Add(24 * time.Hour)
	if res := h.dispatch(command(alice, "/fish")); !res.Success {
		t.Fatalf("limit must reset the next day, got %+v", res)
	}
}

func TestShopAndPrefixes(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.grant(alice, 150)

	h.dispatch(command(alice, "/shop"))
	sent := h.gw.sent[len(h.gw.sent)-1]
	if len(sent.Keyboard) != 1 || len(sent.Keyboard[0]) != 4 {
		t.Fatalf("expected one row of four buttons, got %v", sent.Keyboard)
	}
	if sent.Keyboard[0][0].Data != "buy_prefix:1" {
		t.Fatalf("unexpected button data %q", sent.Keyboard[0][0].Data)
	}

	h.dispatch(command(alice, "/buy Игрок"))
	if h.gw.last() != "Недостаточно звёзд" {
		t.Fatalf("unexpected reply %q", h.gw.last())
	}
	h.dispatch(command(alice, "/buy 1"))
	if h.gw.last() != "Вы купили префикс 🐣 Новичок!" {
		t.Fatalf("unexpected purchase reply %q", h.gw.last())
	}
	h.dispatch(command(alice, "/buy 1"))
	if h.gw.last() != "У вас уже есть этот префикс" {
		t.Fatalf("unexpected repeat purchase reply %q", h.gw.last())
	}

	h.dispatch(command(alice, "/setprefix 1"))
	if u := h.user(alice); u.Prefix != "🐣 Новичок" || u.Stars != 50 {
		t.Fatalf("unexpected member after purchase: prefix=%q stars=%d", u.Prefix, u.Stars)
	}
}

func TestPremiumPurchaseUnlocksConsole(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.grant(alice, 250)

	h.dispatch(command(alice, "/kloun"))
	if h.gw.last() != "💎 Эта команда доступна только для Троллинг консоли!" {
		t.Fatalf("expected premium denial, got %q", h.gw.last())
	}
	if res := h.dispatch(command(alice, "/trolling")); !res.Success {
		t.Fatalf("premium purchase failed: %+v", res)
	}
	if h.user(alice).Stars != 50 {
		t.Fatalf("expected 50 stars after purchase, got %d", h.user(alice).Stars)
	}
	if res := h.dispatch(command(alice, "/клоун")); !res.Success {
		t.Fatalf("premium command must run after purchase, got %+v", res)
	}
	if res := h.dispatch(command(alice, "/buypremium")); res.Success {
		t.Fatalf("second purchase must be refused for lack of stars, got %+v", res)
	}
}

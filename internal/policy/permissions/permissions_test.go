package permissions

import (
	"testing"

	"github.com/starbot-tg/starbot/internal/config"
)

func TestIsAdminStatus(t *testing.T) {
	t.Parallel()

	for status, want := range map[string]bool{
		"creator":       true,
		"administrator": true,
		"member":        false,
		"restricted":    false,
		"left":          false,
		"":              false,
	} {
		if got := IsAdminStatus(status); got != want {
			t.Fatalf("IsAdminStatus(%q) = %v, want %v", status, got, want)
		}
	}
}

func TestPolicyOwners(t *testing.T) {
	t.Parallel()

	p := NewPolicy(config.Access{
		OwnerIDs:       []int64{42},
		OwnerUsernames: []string{"@Boss"},
		PremiumIDs:     []int64{7},
	})

	if !p.IsOwner(42, "") {
		t.Fatal("owner id is not recognized")
	}
	if !p.IsOwner(1, "boss") {
		t.Fatal("owner username must match case-insensitively")
	}
	if p.IsOwner(1, "") || p.IsOwner(1, "someone") {
		t.Fatal("unexpected owner")
	}
	if !p.IsAlwaysPremium(7) || p.IsAlwaysPremium(42) {
		t.Fatal("unexpected premium allowlist result")
	}
	if got := p.OwnerContact(); got != "Boss" {
		t.Fatalf("OwnerContact() = %q, want Boss", got)
	}

	var nilPolicy *Policy
	if nilPolicy.IsOwner(42, "boss") || nilPolicy.IsAlwaysPremium(7) {
		t.Fatal("nil policy must grant nothing")
	}
}

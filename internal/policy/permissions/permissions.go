package permissions

import (
	"strings"

	"github.com/iamwavecut/tool"

	"github.com/starbot-tg/starbot/internal/config"
)

const (
	StatusCreator       = "creator"
	StatusAdministrator = "administrator"
)

// Capability is what a command requires from the invoker.
type Capability int

const (
	CapabilityNone Capability = iota
	CapabilityAdmin
	CapabilityOwner
	CapabilityPremium
)

func (c Capability) String() string {
	switch c {
	case CapabilityAdmin:
		return "admin"
	case CapabilityOwner:
		return "owner"
	case CapabilityPremium:
		return "premium"
	}
	return "none"
}

// IsAdminStatus reports whether a chat member status grants moderation rights.
func IsAdminStatus(status string) bool {
	return tool.In(status, StatusCreator, StatusAdministrator)
}

// Policy holds the identities that are privileged in every chat.
type Policy struct {
	ownerIDs       map[int64]struct{}
	ownerUsernames map[string]struct{}
	premiumIDs     map[int64]struct{}
	contact        string
}

func NewPolicy(access config.Access) *Policy {
	p := &Policy{
		ownerIDs:       map[int64]struct{}{},
		ownerUsernames: map[string]struct{}{},
		premiumIDs:     map[int64]struct{}{},
	}
	for _, id := range access.OwnerIDs {
		p.ownerIDs[id] = struct{}{}
	}
	for _, raw := range access.OwnerUsernames {
		raw = strings.TrimPrefix(strings.TrimSpace(raw), "@")
		if raw == "" {
			continue
		}
		if p.contact == "" {
			p.contact = raw
		}
		p.ownerUsernames[strings.ToLower(raw)] = struct{}{}
	}
	for _, id := range access.PremiumIDs {
		p.premiumIDs[id] = struct{}{}
	}
	return p
}

// IsOwner matches either the numeric id or the case-insensitive username.
func (p *Policy) IsOwner(userID int64, username string) bool {
	if p == nil {
		return false
	}
	if _, ok := p.ownerIDs[userID]; ok {
		return true
	}
	_, ok := p.ownerUsernames[strings.ToLower(username)]
	return ok && username != ""
}

// IsAlwaysPremium reports users that are premium regardless of their subscription rows.
func (p *Policy) IsAlwaysPremium(userID int64) bool {
	if p == nil {
		return false
	}
	_, ok := p.premiumIDs[userID]
	return ok
}

// OwnerContact is the first configured owner username, shown in menus.
func (p *Policy) OwnerContact() string {
	if p == nil {
		return ""
	}
	return p.contact
}

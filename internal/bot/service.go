package bot

import (
	"context"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/starbot-tg/starbot/internal/db"
	"github.com/starbot-tg/starbot/internal/policy/permissions"
	"github.com/starbot-tg/starbot/internal/trigger"
)

type service struct {
	gateway Gateway
	db      db.Client
	policy  *permissions.Policy
	now     func() time.Time
}

func NewService(gateway Gateway, dbClient db.Client, policy *permissions.Policy) *service {
	return &service{
		gateway: gateway,
		db:      dbClient,
		policy:  policy,
		now:     time.Now,
	}
}

// WithClock replaces the time source, used by tests and the sweep command.
func (s *service) WithClock(now func() time.Time) *service {
	s.now = now
	return s
}

func (s *service) GetGateway() Gateway {
	return s.gateway
}

func (s *service) GetDB() db.Client {
	return s.db
}

func (s *service) GetPolicy() *permissions.Policy {
	return s.policy
}

func (s *service) Now() time.Time {
	return s.now()
}

// IsAdmin treats configured owners as admins everywhere and asks the platform otherwise.
// The answer is never cached: demotions take effect on the next update.
func (s *service) IsAdmin(ctx context.Context, chatID int64, user trigger.User) (bool, error) {
	if s.policy.IsOwner(user.ID, user.Username) {
		return true, nil
	}
	status, err := s.gateway.MemberStatus(ctx, chatID, user.ID)
	if err != nil {
		return false, errors.WithMessage(err, "get member status")
	}
	return permissions.IsAdminStatus(status), nil
}

func (s *service) IsPremium(ctx context.Context, userID int64) (bool, error) {
	if s.policy.IsAlwaysPremium(userID) {
		return true, nil
	}
	global, err := s.db.GetGlobalUser(ctx, userID)
	if err != nil {
		return false, err
	}
	if global != nil && global.IsPremium {
		return true, nil
	}
	sub, err := s.db.GetSubscription(ctx, userID, db.SubscriptionPremium)
	if err != nil {
		return false, err
	}
	return sub != nil && sub.IsActive && sub.ExpiresAt.After(s.now()), nil
}

// GetSettings never returns nil: missing rows are created with defaults.
func (s *service) GetSettings(ctx context.Context, chatID int64) (*db.ChatSettings, error) {
	settings, err := s.db.GetSettings(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if settings != nil {
		return settings, nil
	}
	return s.db.EnsureChat(ctx, chatID, "")
}

func (s *service) GetLanguage(ctx context.Context, chatID int64) string {
	settings, err := s.db.GetSettings(ctx, chatID)
	if err != nil {
		s.getLogEntry().WithField("method", "GetLanguage").WithField("error", err.Error()).Warn("cant get settings")
		return db.DefaultLanguage
	}
	return settings.GetLanguage()
}

func (s *service) getLogEntry() *log.Entry {
	return log.WithField("object", "Service")
}

package bot

import (
	"context"
	"time"

	"github.com/starbot-tg/starbot/internal/db"
	"github.com/starbot-tg/starbot/internal/infrastructure/telegram"
	"github.com/starbot-tg/starbot/internal/policy/permissions"
	"github.com/starbot-tg/starbot/internal/trigger"
)

// Gateway defines the messaging operations handlers may issue
type Gateway interface {
	Send(ctx context.Context, m telegram.Message) (int, error)
	EditText(ctx context.Context, chatID int64, messageID int, text string, buttons [][]telegram.Button) error
	AnswerCallback(ctx context.Context, callbackID, text string, alert bool) error
	DeleteMessage(ctx context.Context, chatID int64, messageID int) error
	Ban(ctx context.Context, chatID, userID int64, until time.Time, revokeMessages bool) error
	Unban(ctx context.Context, chatID, userID int64, onlyIfBanned bool) error
	Restrict(ctx context.Context, chatID, userID int64, perms telegram.Permissions, until time.Time) error
	Promote(ctx context.Context, chatID, userID int64, promote bool) error
	MemberStatus(ctx context.Context, chatID, userID int64) (string, error)
	Administrators(ctx context.Context, chatID int64) ([]telegram.Member, error)
	MemberCount(ctx context.Context, chatID int64) (int, error)
	Pin(ctx context.Context, chatID int64, messageID int) error
	Unpin(ctx context.Context, chatID int64, messageID int) error
	InviteLink(ctx context.Context, chatID int64) (string, error)
}

// ServiceBot defines messaging-specific operations
type ServiceBot interface {
	GetGateway() Gateway
}

// ServiceDB defines database-specific operations
type ServiceDB interface {
	GetDB() db.Client
}

// Service defines the core bot service interface
type Service interface {
	ServiceBot
	ServiceDB
	GetPolicy() *permissions.Policy
	IsAdmin(ctx context.Context, chatID int64, user trigger.User) (bool, error)
	IsPremium(ctx context.Context, userID int64) (bool, error)
	GetSettings(ctx context.Context, chatID int64) (*db.ChatSettings, error)
	GetLanguage(ctx context.Context, chatID int64) string
	Now() time.Time
}

// Handler defines the interface for all update handlers in the system
type Handler interface {
	Handle(ctx context.Context, t *trigger.Trigger) (proceed bool, err error)
}

// Deduplicator remembers processed update ids; Claim reports true only for the first delivery.
type Deduplicator interface {
	Claim(ctx context.Context, updateID int64) (bool, error)
}

package db

import (
	"context"
	"time"
)

type TopOrder string

const (
	TopByStars      TopOrder = "stars"
	TopByMessages   TopOrder = "messages"
	TopByLevel      TopOrder = "level"
	TopByReputation TopOrder = "reputation"
)

// Client is the persistence gateway. Every balance or cooldown mutation is a single
// conditional statement or one transaction, so concurrent updates cannot double-spend.
type Client interface {
	Close() error

	UpsertUser(ctx context.Context, u *User) error
	GetUser(ctx context.Context, chatID, userID int64) (*User, error)
	ListUsers(ctx context.Context, chatID int64, limit int) ([]*User, error)
	CountUsers(ctx context.Context, chatID int64) (int, error)
	TopUsers(ctx context.Context, chatID int64, order TopOrder, limit int) ([]*User, error)
	UpsertGlobalUser(ctx context.Context, userID int64, username string) error
	GetGlobalUser(ctx context.Context, userID int64) (*GlobalUser, error)

	EnsureChat(ctx context.Context, chatID int64, title string) (*ChatSettings, error)
	GetSettings(ctx context.Context, chatID int64) (*ChatSettings, error)
	SetSettings(ctx context.Context, settings *ChatSettings) error
	ChatStats(ctx context.Context, chatID int64, at time.Time) (*ChatStats, error)

	RecordActivity(ctx context.Context, chatID, userID int64, at time.Time) (*User, error)
	LevelUp(ctx context.Context, chatID, userID int64) (level int, leveled bool, err error)
	SetAFK(ctx context.Context, chatID, userID int64, reason string, at time.Time) error
	ClearAFK(ctx context.Context, chatID, userID int64) (bool, error)
	SetBio(ctx context.Context, chatID, userID int64, bio string) error
	SetPrefix(ctx context.Context, chatID, userID int64, prefix string) error

	AddWarning(ctx context.Context, w *Warning) (int, error)
	RemoveLastWarning(ctx context.Context, chatID, userID int64) (bool, error)
	ListWarnings(ctx context.Context, chatID, userID int64) ([]*Warning, error)
	CountWarnings(ctx context.Context, chatID, userID int64) (int, error)
	ResetWarnings(ctx context.Context, chatID, userID int64) (int64, error)
	TopWarned(ctx context.Context, chatID int64, limit int) ([]*WarnCount, error)

	UpsertRestriction(ctx context.Context, r *TempRestriction) error
	DeleteRestriction(ctx context.Context, chatID, userID int64, kind RestrictionType) error
	GetExpiredRestrictions(ctx context.Context, now time.Time, limit int) ([]*TempRestriction, error)
	DeferRestriction(ctx context.Context, chatID, userID int64, kind RestrictionType, next time.Time) error

	AddBlacklistWord(ctx context.Context, chatID int64, word string) (bool, error)
	RemoveBlacklistWord(ctx context.Context, chatID int64, word string) (bool, error)
	ListBlacklistWords(ctx context.Context, chatID int64) ([]string, error)

	AddReport(ctx context.Context, r *Report) (int64, error)

	AddStars(ctx context.Context, chatID, userID, delta int64, kind, description string) (int64, error)
	SetStars(ctx context.Context, chatID, userID, amount int64, kind, description string) error
	Transfer(ctx context.Context, chatID, fromID, toID, amount int64, kind string) error
	ClaimBonus(ctx context.Context, chatID, userID int64, kind string, amount int64, cooldown time.Duration, now time.Time) (*BonusResult, error)
	IncrementDailyCounter(ctx context.Context, userID int64, kind string, at time.Time, limit int) (int, error)

	ListShopPrefixes(ctx context.Context) ([]*ShopPrefix, error)
	GetShopPrefix(ctx context.Context, id int64) (*ShopPrefix, error)
	FindShopPrefix(ctx context.Context, name string) (*ShopPrefix, error)
	BuyPrefix(ctx context.Context, chatID, userID, prefixID int64, now time.Time) (*ShopPrefix, error)
	ListOwnedPrefixes(ctx context.Context, userID int64) ([]*ShopPrefix, error)

	BuyVirtas(ctx context.Context, chatID, userID, stars, virtas int64) (int64, error)
	GetSubscription(ctx context.Context, userID int64, kind string) (*Subscription, error)
	GrantSubscription(ctx context.Context, userID int64, kind string, d time.Duration, now time.Time) (*Subscription, error)
	BuyPremium(ctx context.Context, chatID, userID, price int64, d time.Duration, now time.Time) (*Subscription, error)

	GiveReputation(ctx context.Context, chatID, fromID, toID, delta int64, reason string, cooldown time.Duration, now time.Time) (int64, error)
	Marry(ctx context.Context, chatID, userID, partnerID int64) error
	Divorce(ctx context.Context, chatID, userID int64) (int64, error)
}

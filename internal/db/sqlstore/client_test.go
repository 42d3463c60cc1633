package sqlstore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/starbot-tg/starbot/internal/db"
	domainErrors "github.com/starbot-tg/starbot/internal/errors"
)

const testChat = int64(-100500)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	client, err := NewSQLiteClient(context.Background(), t.TempDir(), "test.db")
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestMigrateIsIdempotent(t *testing.T) {
	t.Parallel()

	client := newTestClient(t)
	n, err := client.Migrate(context.Background())
	require.NoError(t, err)
	require.Zero(t, n)

	prefixes, err := client.ListShopPrefixes(context.Background())
	require.NoError(t, err)
	require.Len(t, prefixes, 4)
}

func TestUpsertUserKeepsCounters(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	client := newTestClient(t)

	require.NoError(t, client.UpsertUser(ctx, &db.User{UserID: 1, ChatID: testChat, Username: "alice", FirstName: "Alice"}))
	_, err := client.AddStars(ctx, testChat, 1, 40, db.TxGrant, "")
	require.NoError(t, err)
	require.NoError(t, client.UpsertUser(ctx, &db.User{UserID: 1, ChatID: testChat, Username: "alice2", FirstName: "Alice"}))

	u, err := client.GetUser(ctx, testChat, 1)
	require.NoError(t, err)
	require.NotNil(t, u)
	require.Equal(t, "alice2", u.Username)
	require.EqualValues(t, 40, u.Stars)
	require.Equal(t, 1, u.Level)

	count, err := client.CountUsers(ctx, testChat)
	require.NoError(t, err)
	require.Equal(t, 1, count)

	missing, err := client.GetUser(ctx, testChat, 999)
	require.NoError(t, err)
	require.Nil(t, missing)
}

func TestTransferConservesStars(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	client := newTestClient(t)

	_, err := client.AddStars(ctx, testChat, 1, 100, db.TxGrant, "")
	require.NoError(t, err)

	require.NoError(t, client.Transfer(ctx, testChat, 1, 2, 30, db.TxTransfer))
	require.ErrorIs(t, client.Transfer(ctx, testChat, 1, 2, 71, db.TxTransfer), domainErrors.ErrInsufficientFunds)
	require.ErrorIs(t, client.Transfer(ctx, testChat, 1, 1, 5, db.TxTransfer), domainErrors.ErrSelfTarget)
	require.ErrorIs(t, client.Transfer(ctx, testChat, 1, 2, 0, db.TxTransfer), domainErrors.ErrInvalidInput)

	from, err := client.GetUser(ctx, testChat, 1)
	require.NoError(t, err)
	to, err := client.GetUser(ctx, testChat, 2)
	require.NoError(t, err)
	require.EqualValues(t, 70, from.Stars)
	require.EqualValues(t, 30, to.Stars)
	require.EqualValues(t, 100, from.Stars+to.Stars)
}

func TestAddStarsRejectsOverdraft(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	client := newTestClient(t)

	balance, err := client.AddStars(ctx, testChat, 1, 10, db.TxGrant, "")
	require.NoError(t, err)
	require.EqualValues(t, 10, balance)

	_, err = client.AddStars(ctx, testChat, 1, -11, db.TxGame, "")
	require.ErrorIs(t, err, domainErrors.ErrInsufficientFunds)

	balance, err = client.AddStars(ctx, testChat, 1, -10, db.TxGame, "")
	require.NoError(t, err)
	require.Zero(t, balance)

	require.NoError(t, client.SetStars(ctx, testChat, 1, 9999999, db.TxGrant, "owner"))
	u, err := client.GetUser(ctx, testChat, 1)
	require.NoError(t, err)
	require.EqualValues(t, 9999999, u.Stars)
}

func TestClaimBonusCooldown(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	client := newTestClient(t)
	now := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)

	res, err := client.ClaimBonus(ctx, testChat, 1, db.TxDailyBonus, 70, 24*time.Hour, now)
	require.NoError(t, err)
	require.EqualValues(t, 70, res.Balance)

	res, err = client.ClaimBonus(ctx, testChat, 1, db.TxDailyBonus, 70, 24*time.Hour, now.Add(23*time.Hour))
	require.ErrorIs(t, err, domainErrors.ErrCooldown)
	require.NotNil(t, res)
	require.True(t, res.NextAt.Equal(now.Add(24*time.Hour)), "next at %s", res.NextAt)

	// the weekly bonus keeps its own clock
	_, err = client.ClaimBonus(ctx, testChat, 1, db.TxWeeklyBonus, 300, 7*24*time.Hour, now.Add(time.Hour))
	require.NoError(t, err)

	res, err = client.ClaimBonus(ctx, testChat, 1, db.TxDailyBonus, 55, 24*time.Hour, now.Add(24*time.Hour))
	require.NoError(t, err)
	require.EqualValues(t, 425, res.Balance)
}

func TestDailyCounterLimit(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	client := newTestClient(t)
	now := time.Date(2026, 1, 10, 8, 0, 0, 0, time.UTC)

	for i := 1; i <= 3; i++ {
		used, err := client.IncrementDailyCounter(ctx, 1, db.CounterFishing, now, 3)
		require.NoError(t, err)
		require.Equal(t, i, used)
	}
	_, err := client.IncrementDailyCounter(ctx, 1, db.CounterFishing, now, 3)
	require.ErrorIs(t, err, domainErrors.ErrLimitReached)

	used, err := client.IncrementDailyCounter(ctx, 1, db.CounterFishing, now.Add(24*time.Hour), 3)
	require.NoError(t, err)
	require.Equal(t, 1, used)
}

func TestReputationCooldown(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	client := newTestClient(t)
	now := time.Date(2026, 1, 10, 8, 0, 0, 0, time.UTC)

	rep, err := client.GiveReputation(ctx, testChat, 1, 2, 1, "", time.Hour, now)
	require.NoError(t, err)
	require.EqualValues(t, 1, rep)

	_, err = client.GiveReputation(ctx, testChat, 1, 2, 1, "", time.Hour, now.Add(30*time.Minute))
	require.ErrorIs(t, err, domainErrors.ErrCooldown)

	rep, err = client.GiveReputation(ctx, testChat, 3, 2, -1, "", time.Hour, now.Add(30*time.Minute))
	require.NoError(t, err)
	require.Zero(t, rep)

	rep, err = client.GiveReputation(ctx, testChat, 1, 2, 1, "", time.Hour, now.Add(time.Hour))
	require.NoError(t, err)
	require.EqualValues(t, 1, rep)

	_, err = client.GiveReputation(ctx, testChat, 2, 2, 1, "", 0, now)
	require.ErrorIs(t, err, domainErrors.ErrSelfTarget)
}

func TestMarriageIsSymmetric(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	client := newTestClient(t)

	require.NoError(t, client.Marry(ctx, testChat, 1, 2))
	require.ErrorIs(t, client.Marry(ctx, testChat, 3, 2), domainErrors.ErrAlreadyMarried)
	require.ErrorIs(t, client.Marry(ctx, testChat, 1, 1), domainErrors.ErrSelfTarget)

	a, err := client.GetUser(ctx, testChat, 1)
	require.NoError(t, err)
	b, err := client.GetUser(ctx, testChat, 2)
	require.NoError(t, err)
	partner, ok := a.PartnerID()
	require.True(t, ok)
	require.EqualValues(t, 2, partner)
	partner, ok = b.PartnerID()
	require.True(t, ok)
	require.EqualValues(t, 1, partner)

	third, err := client.GetUser(ctx, testChat, 3)
	require.NoError(t, err)
	require.Nil(t, third.MarriedTo)

	partner, err = client.Divorce(ctx, testChat, 2)
	require.NoError(t, err)
	require.EqualValues(t, 1, partner)

	_, err = client.Divorce(ctx, testChat, 1)
	require.ErrorIs(t, err, domainErrors.ErrNotMarried)
}

func TestLevelUpNeedsExperience(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	client := newTestClient(t)
	now := time.Now()

	var u *db.User
	var err error
	for i := 0; i < 99; i++ {
		u, err = client.RecordActivity(ctx, testChat, 1, now)
		require.NoError(t, err)
	}
	require.EqualValues(t, 99, u.MessageCount)

	_, leveled, err := client.LevelUp(ctx, testChat, 1)
	require.NoError(t, err)
	require.False(t, leveled)

	_, err = client.RecordActivity(ctx, testChat, 1, now)
	require.NoError(t, err)
	level, leveled, err := client.LevelUp(ctx, testChat, 1)
	require.NoError(t, err)
	require.True(t, leveled)
	require.Equal(t, 2, level)

	stats, err := client.ChatStats(ctx, testChat, now)
	require.NoError(t, err)
	require.EqualValues(t, 100, stats.Messages)
	require.EqualValues(t, 100, stats.MessagesToday)
	require.Equal(t, 1, stats.ActiveToday)
}

func TestAFKRoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	client := newTestClient(t)

	require.NoError(t, client.UpsertUser(ctx, &db.User{UserID: 1, ChatID: testChat}))
	require.NoError(t, client.SetAFK(ctx, testChat, 1, "обед", time.Now()))

	cleared, err := client.ClearAFK(ctx, testChat, 1)
	require.NoError(t, err)
	require.True(t, cleared)

	cleared, err = client.ClearAFK(ctx, testChat, 1)
	require.NoError(t, err)
	require.False(t, cleared)
}

func TestWarningsCount(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	client := newTestClient(t)

	for i := 1; i <= 3; i++ {
		count, err := client.AddWarning(ctx, &db.Warning{UserID: 1, ChatID: testChat, AdminID: 9, Reason: "spam"})
		require.NoError(t, err)
		require.Equal(t, i, count)
	}
	_, err := client.AddWarning(ctx, &db.Warning{UserID: 1, ChatID: testChat + 1, AdminID: 9})
	require.NoError(t, err)

	removed, err := client.RemoveLastWarning(ctx, testChat, 1)
	require.NoError(t, err)
	require.True(t, removed)

	count, err := client.CountWarnings(ctx, testChat, 1)
	require.NoError(t, err)
	require.Equal(t, 2, count)

	top, err := client.TopWarned(ctx, testChat, 10)
	require.NoError(t, err)
	require.Len(t, top, 1)
	require.Equal(t, 2, top[0].Count)

	n, err := client.ResetWarnings(ctx, testChat, 1)
	require.NoError(t, err)
	require.EqualValues(t, 2, n)
}

func TestExpiredRestrictions(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	client := newTestClient(t)
	now := time.Date(2026, 1, 10, 8, 0, 0, 0, time.UTC)

	require.NoError(t, client.UpsertRestriction(ctx, &db.TempRestriction{
		UserID: 1, ChatID: testChat, Type: db.RestrictionMute, AdminID: 9, ExpiresAt: now.Add(-time.Minute),
	}))
	require.NoError(t, client.UpsertRestriction(ctx, &db.TempRestriction{
		UserID: 2, ChatID: testChat, Type: db.RestrictionBan, AdminID: 9, ExpiresAt: now.Add(time.Hour),
	}))
	// a second mute for the same member replaces the first
	require.NoError(t, client.UpsertRestriction(ctx, &db.TempRestriction{
		UserID: 1, ChatID: testChat, Type: db.RestrictionMute, AdminID: 9, ExpiresAt: now.Add(-time.Second),
	}))

	expired, err := client.GetExpiredRestrictions(ctx, now, 10)
	require.NoError(t, err)
	require.Len(t, expired, 1)
	require.Equal(t, db.RestrictionMute, expired[0].Type)
	require.EqualValues(t, 1, expired[0].UserID)

	require.NoError(t, client.DeleteRestriction(ctx, testChat, 1, db.RestrictionMute))
	expired, err = client.GetExpiredRestrictions(ctx, now.Add(2*time.Hour), 10)
	require.NoError(t, err)
	require.Len(t, expired, 1)
	require.Equal(t, db.RestrictionBan, expired[0].Type)

	// a failed lift pushes the row back and counts the attempt
	require.NoError(t, client.DeferRestriction(ctx, testChat, 2, db.RestrictionBan, now.Add(3*time.Hour)))
	expired, err = client.GetExpiredRestrictions(ctx, now.Add(2*time.Hour), 10)
	require.NoError(t, err)
	require.Empty(t, expired)
	expired, err = client.GetExpiredRestrictions(ctx, now.Add(3*time.Hour), 10)
	require.NoError(t, err)
	require.Len(t, expired, 1)
	require.Equal(t, 1, expired[0].Attempts)

	// a new restriction for the same member starts over
	require.NoError(t, client.UpsertRestriction(ctx, &db.TempRestriction{
		UserID: 2, ChatID: testChat, Type: db.RestrictionBan, AdminID: 9, ExpiresAt: now,
	}))
	expired, err = client.GetExpiredRestrictions(ctx, now, 10)
	require.NoError(t, err)
	require.Len(t, expired, 1)
	require.Zero(t, expired[0].Attempts)
}

func TestBlacklistWords(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	client := newTestClient(t)

	added, err := client.AddBlacklistWord(ctx, testChat, "Спам")
	require.NoError(t, err)
	require.True(t, added)

	added, err = client.AddBlacklistWord(ctx, testChat, "спам")
	require.NoError(t, err)
	require.False(t, added)

	words, err := client.ListBlacklistWords(ctx, testChat)
	require.NoError(t, err)
	require.Equal(t, []string{"спам"}, words)

	removed, err := client.RemoveBlacklistWord(ctx, testChat, "СПАМ")
	require.NoError(t, err)
	require.True(t, removed)
}

func TestBuyPrefixOrder(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	client := newTestClient(t)
	now := time.Now()

	prefix, err := client.FindShopPrefix(ctx, "новичок")
	require.NoError(t, err)
	require.NotNil(t, prefix)

	_, err = client.BuyPrefix(ctx, testChat, 1, prefix.ID, now)
	require.ErrorIs(t, err, domainErrors.ErrInsufficientFunds)

	_, err = client.AddStars(ctx, testChat, 1, prefix.Price*2, db.TxGrant, "")
	require.NoError(t, err)

	bought, err := client.BuyPrefix(ctx, testChat, 1, prefix.ID, now)
	require.NoError(t, err)
	require.Equal(t, prefix.Display, bought.Display)

	_, err = client.BuyPrefix(ctx, testChat, 1, prefix.ID, now)
	require.ErrorIs(t, err, domainErrors.ErrAlreadyOwned)

	_, err = client.BuyPrefix(ctx, testChat, 1, 9999, now)
	require.ErrorIs(t, err, domainErrors.ErrNotFound)

	owned, err := client.ListOwnedPrefixes(ctx, 1)
	require.NoError(t, err)
	require.Len(t, owned, 1)

	u, err := client.GetUser(ctx, testChat, 1)
	require.NoError(t, err)
	require.EqualValues(t, prefix.Price, u.Stars)
}

func TestPremiumExtendsSubscription(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	client := newTestClient(t)
	now := time.Date(2026, 1, 10, 8, 0, 0, 0, time.UTC)
	month := 30 * 24 * time.Hour

	_, err := client.BuyPremium(ctx, testChat, 1, 200, month, now)
	require.ErrorIs(t, err, domainErrors.ErrInsufficientFunds)

	_, err = client.AddStars(ctx, testChat, 1, 400, db.TxGrant, "")
	require.NoError(t, err)

	sub, err := client.BuyPremium(ctx, testChat, 1, 200, month, now)
	require.NoError(t, err)
	require.True(t, sub.ExpiresAt.Equal(now.Add(month)))

	sub, err = client.GrantSubscription(ctx, 1, db.SubscriptionPremium, month, now.Add(time.Hour))
	require.NoError(t, err)
	require.True(t, sub.ExpiresAt.Equal(now.Add(2*month)))

	stored, err := client.GetSubscription(ctx, 1, db.SubscriptionPremium)
	require.NoError(t, err)
	require.True(t, stored.IsActive)
	require.True(t, stored.ExpiresAt.Equal(now.Add(2*month)))
}

func TestBuyVirtasIsPerChat(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	client := newTestClient(t)

	_, err := client.AddStars(ctx, testChat, 1, 100, db.TxGrant, "")
	require.NoError(t, err)

	_, err = client.BuyVirtas(ctx, testChat+1, 1, 100, 10)
	require.ErrorIs(t, err, domainErrors.ErrInsufficientFunds)

	virtas, err := client.BuyVirtas(ctx, testChat, 1, 100, 10)
	require.NoError(t, err)
	require.EqualValues(t, 10, virtas)

	global, err := client.GetGlobalUser(ctx, 1)
	require.NoError(t, err)
	require.EqualValues(t, 10, global.Virtas)
}

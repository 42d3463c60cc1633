package sqlstore

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/starbot-tg/starbot/internal/db"
	domainErrors "github.com/starbot-tg/starbot/internal/errors"
)

var bonusColumns = map[string]string{
	db.TxDailyBonus:  "last_bonus",
	db.TxWeeklyBonus: "last_weekly",
}

// AddStars applies a signed delta; a debit that would make the balance negative fails
// with ErrInsufficientFunds and changes nothing.
func (c *Client) AddStars(ctx context.Context, chatID, userID, delta int64, kind, description string) (int64, error) {
	var balance int64
	err := c.inTx(ctx, func(tx *sqlx.Tx) error {
		var err error
		balance, err = c.addStarsTx(ctx, tx, chatID, userID, delta, kind, description)
		return err
	})
	return balance, err
}

func (c *Client) addStarsTx(ctx context.Context, tx *sqlx.Tx, chatID, userID, delta int64, kind, description string) (int64, error) {
	now := c.timestamp()
	if err := ensureUserTx(ctx, tx, chatID, userID, now); err != nil {
		return 0, err
	}
	n, err := txExec(ctx, tx, `
		UPDATE users SET stars = stars + ?, updated_at = ?
		WHERE user_id = ? AND chat_id = ? AND stars + ? >= 0`,
		delta, now, userID, chatID, delta,
	)
	if err != nil {
		return 0, errors.Wrap(err, "update stars")
	}
	if n == 0 {
		return 0, domainErrors.ErrInsufficientFunds
	}
	if err := insertTransactionTx(ctx, tx, chatID, userID, delta, kind, description, now); err != nil {
		return 0, err
	}
	var balance int64
	err = txGet(ctx, tx, &balance, "SELECT stars FROM users WHERE user_id = ? AND chat_id = ?", userID, chatID)
	return balance, errors.Wrap(err, "reload stars")
}

// SetStars overwrites the balance and records the difference in the ledger.
func (c *Client) SetStars(ctx context.Context, chatID, userID, amount int64, kind, description string) error {
	return c.inTx(ctx, func(tx *sqlx.Tx) error {
		now := c.timestamp()
		if err := ensureUserTx(ctx, tx, chatID, userID, now); err != nil {
			return err
		}
		var current int64
		if err := txGet(ctx, tx, &current, "SELECT stars FROM users WHERE user_id = ? AND chat_id = ?", userID, chatID); err != nil {
			return errors.Wrap(err, "read stars")
		}
		if _, err := txExec(ctx, tx, "UPDATE users SET stars = ?, updated_at = ? WHERE user_id = ? AND chat_id = ?",
			amount, now, userID, chatID); err != nil {
			return errors.Wrap(err, "set stars")
		}
		return insertTransactionTx(ctx, tx, chatID, userID, amount-current, kind, description, now)
	})
}

// Transfer moves stars between two members of one chat in a single transaction.
func (c *Client) Transfer(ctx context.Context, chatID, fromID, toID, amount int64, kind string) error {
	if amount <= 0 {
		return domainErrors.ErrInvalidInput
	}
	if fromID == toID {
		return domainErrors.ErrSelfTarget
	}
	return c.inTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := c.addStarsTx(ctx, tx, chatID, fromID, -amount, kind, "to "+itoa(toID)); err != nil {
			return err
		}
		_, err := c.addStarsTx(ctx, tx, chatID, toID, amount, kind, "from "+itoa(fromID))
		return err
	})
}

// ClaimBonus credits amount when the previous claim of this kind is at least cooldown old.
// The check and the credit are one conditional UPDATE.
func (c *Client) ClaimBonus(ctx context.Context, chatID, userID int64, kind string, amount int64, cooldown time.Duration, now time.Time) (*db.BonusResult, error) {
	column, ok := bonusColumns[kind]
	if !ok {
		return nil, errors.WithMessagef(domainErrors.ErrInvalidInput, "unknown bonus kind %q", kind)
	}
	now = ts(now)
	res := &db.BonusResult{Amount: amount}
	err := c.inTx(ctx, func(tx *sqlx.Tx) error {
		if err := ensureUserTx(ctx, tx, chatID, userID, now); err != nil {
			return err
		}
		n, err := txExec(ctx, tx, `
			UPDATE users SET stars = stars + ?, `+column+` = ?, updated_at = ?
			WHERE user_id = ? AND chat_id = ? AND (`+column+` IS NULL OR `+column+` <= ?)`,
			amount, now, now, userID, chatID, now.Add(-cooldown),
		)
		if err != nil {
			return errors.Wrap(err, "claim bonus")
		}
		if n == 0 {
			var last time.Time
			if err := txGet(ctx, tx, &last, "SELECT "+column+" FROM users WHERE user_id = ? AND chat_id = ?", userID, chatID); err != nil {
				return errors.Wrap(err, "read last claim")
			}
			res.NextAt = last.Add(cooldown)
			return domainErrors.ErrCooldown
		}
		if err := insertTransactionTx(ctx, tx, chatID, userID, amount, kind, "", now); err != nil {
			return err
		}
		return errors.Wrap(
			txGet(ctx, tx, &res.Balance, "SELECT stars FROM users WHERE user_id = ? AND chat_id = ?", userID, chatID),
			"reload stars",
		)
	})
	if errors.Is(err, domainErrors.ErrCooldown) {
		return res, err
	}
	if err != nil {
		return nil, err
	}
	return res, nil
}

// IncrementDailyCounter bumps a per-user per-day counter unless it already reached limit.
func (c *Client) IncrementDailyCounter(ctx context.Context, userID int64, kind string, at time.Time, limit int) (int, error) {
	var used int
	err := c.inTx(ctx, func(tx *sqlx.Tx) error {
		n, err := txExec(ctx, tx, `
			INSERT INTO daily_counters (user_id, kind, day, used) VALUES (?, ?, ?, 1)
			ON CONFLICT (user_id, kind, day) DO UPDATE SET used = daily_counters.used + 1
			WHERE daily_counters.used < ?`,
			userID, kind, day(at), limit,
		)
		if err != nil {
			return errors.Wrap(err, "increment daily counter")
		}
		if n == 0 {
			used = limit
			return domainErrors.ErrLimitReached
		}
		return errors.Wrap(
			txGet(ctx, tx, &used, "SELECT used FROM daily_counters WHERE user_id = ? AND kind = ? AND day = ?", userID, kind, day(at)),
			"read daily counter",
		)
	})
	return used, err
}

func (c *Client) ListShopPrefixes(ctx context.Context) ([]*db.ShopPrefix, error) {
	var res []*db.ShopPrefix
	err := c.selectAll(ctx, &res, "SELECT id, name, display, price FROM shop_prefixes ORDER BY price, id")
	return res, errors.Wrap(err, "list shop prefixes")
}

func (c *Client) GetShopPrefix(ctx context.Context, id int64) (*db.ShopPrefix, error) {
	res := &db.ShopPrefix{}
	err := c.get(ctx, res, "SELECT id, name, display, price FROM shop_prefixes WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "get shop prefix")
	}
	return res, nil
}

// FindShopPrefix matches names case-insensitively in Go; sqlite's LOWER only folds ASCII.
func (c *Client) FindShopPrefix(ctx context.Context, name string) (*db.ShopPrefix, error) {
	prefixes, err := c.ListShopPrefixes(ctx)
	if err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	for _, p := range prefixes {
		if strings.EqualFold(p.Name, name) {
			return p, nil
		}
	}
	return nil, nil
}

// BuyPrefix checks balance before ownership, then debits and records ownership atomically.
func (c *Client) BuyPrefix(ctx context.Context, chatID, userID, prefixID int64, now time.Time) (*db.ShopPrefix, error) {
	prefix := &db.ShopPrefix{}
	err := c.inTx(ctx, func(tx *sqlx.Tx) error {
		err := txGet(ctx, tx, prefix, "SELECT id, name, display, price FROM shop_prefixes WHERE id = ?", prefixID)
		if errors.Is(err, sql.ErrNoRows) {
			return domainErrors.ErrNotFound
		}
		if err != nil {
			return errors.Wrap(err, "get shop prefix")
		}
		if err := ensureUserTx(ctx, tx, chatID, userID, ts(now)); err != nil {
			return err
		}
		var stars int64
		if err := txGet(ctx, tx, &stars, "SELECT stars FROM users WHERE user_id = ? AND chat_id = ?", userID, chatID); err != nil {
			return errors.Wrap(err, "read stars")
		}
		if stars < prefix.Price {
			return domainErrors.ErrInsufficientFunds
		}
		var owned int
		if err := txGet(ctx, tx, &owned, "SELECT COUNT(*) FROM user_prefixes WHERE user_id = ? AND prefix_id = ?", userID, prefixID); err != nil {
			return errors.Wrap(err, "check ownership")
		}
		if owned > 0 {
			return domainErrors.ErrAlreadyOwned
		}
		if _, err := c.addStarsTx(ctx, tx, chatID, userID, -prefix.Price, db.TxPurchase, prefix.Name); err != nil {
			return err
		}
		_, err = txExec(ctx, tx, "INSERT INTO user_prefixes (user_id, prefix_id, purchased_at) VALUES (?, ?, ?)",
			userID, prefixID, ts(now))
		return errors.Wrap(err, "insert ownership")
	})
	if err != nil {
		return nil, err
	}
	return prefix, nil
}

func (c *Client) ListOwnedPrefixes(ctx context.Context, userID int64) ([]*db.ShopPrefix, error) {
	var res []*db.ShopPrefix
	err := c.selectAll(ctx, &res, `
		SELECT sp.id, sp.name, sp.display, sp.price
		FROM user_prefixes up JOIN shop_prefixes sp ON sp.id = up.prefix_id
		WHERE up.user_id = ? ORDER BY up.purchased_at, sp.id`,
		userID,
	)
	return res, errors.Wrap(err, "list owned prefixes")
}

// BuyVirtas converts stars of this chat into global virtas and returns the new virtas balance.
func (c *Client) BuyVirtas(ctx context.Context, chatID, userID, stars, virtas int64) (int64, error) {
	if stars <= 0 || virtas <= 0 {
		return 0, domainErrors.ErrInvalidInput
	}
	var balance int64
	err := c.inTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := c.addStarsTx(ctx, tx, chatID, userID, -stars, db.TxVirtas, itoa(virtas)+" virtas"); err != nil {
			return err
		}
		now := c.timestamp()
		if _, err := txExec(ctx, tx, `
			INSERT INTO global_users (user_id, virtas, created_at, updated_at) VALUES (?, ?, ?, ?)
			ON CONFLICT (user_id) DO UPDATE SET
				virtas = global_users.virtas + excluded.virtas,
				updated_at = excluded.updated_at`,
			userID, virtas, now, now,
		); err != nil {
			return errors.Wrap(err, "credit virtas")
		}
		return errors.Wrap(
			txGet(ctx, tx, &balance, "SELECT virtas FROM global_users WHERE user_id = ?", userID),
			"reload virtas",
		)
	})
	return balance, err
}

func (c *Client) GetSubscription(ctx context.Context, userID int64, kind string) (*db.Subscription, error) {
	res := &db.Subscription{}
	err := c.get(ctx, res, `
		SELECT user_id, subscription_type, expires_at, is_active, created_at
		FROM subscriptions WHERE user_id = ? AND subscription_type = ?`,
		userID, kind,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "get subscription")
	}
	return res, nil
}

// GrantSubscription extends an active subscription or starts a new one from now.
func (c *Client) GrantSubscription(ctx context.Context, userID int64, kind string, d time.Duration, now time.Time) (*db.Subscription, error) {
	var res *db.Subscription
	err := c.inTx(ctx, func(tx *sqlx.Tx) error {
		var err error
		res, err = grantSubscriptionTx(ctx, tx, userID, kind, d, ts(now))
		return err
	})
	return res, err
}

// BuyPremium debits price and grants the premium subscription in one transaction.
func (c *Client) BuyPremium(ctx context.Context, chatID, userID, price int64, d time.Duration, now time.Time) (*db.Subscription, error) {
	var res *db.Subscription
	err := c.inTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := c.addStarsTx(ctx, tx, chatID, userID, -price, db.TxPremium, db.SubscriptionPremium); err != nil {
			return err
		}
		var err error
		res, err = grantSubscriptionTx(ctx, tx, userID, db.SubscriptionPremium, d, ts(now))
		return err
	})
	return res, err
}

func grantSubscriptionTx(ctx context.Context, tx *sqlx.Tx, userID int64, kind string, d time.Duration, now time.Time) (*db.Subscription, error) {
	current := &db.Subscription{}
	err := txGet(ctx, tx, current, `
		SELECT user_id, subscription_type, expires_at, is_active, created_at
		FROM subscriptions WHERE user_id = ? AND subscription_type = ?`,
		userID, kind,
	)
	base := now
	switch {
	case errors.Is(err, sql.ErrNoRows):
		current = &db.Subscription{UserID: userID, Type: kind, CreatedAt: now}
	case err != nil:
		return nil, errors.Wrap(err, "read subscription")
	case current.IsActive && current.ExpiresAt.After(now):
		base = ts(current.ExpiresAt)
	}
	current.ExpiresAt = base.Add(d)
	current.IsActive = true

	_, err = txExec(ctx, tx, `
		INSERT INTO subscriptions (user_id, subscription_type, expires_at, is_active, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (user_id, subscription_type) DO UPDATE SET
			expires_at = excluded.expires_at,
			is_active = excluded.is_active`,
		userID, kind, current.ExpiresAt, true, ts(current.CreatedAt),
	)
	if err != nil {
		return nil, errors.Wrap(err, "upsert subscription")
	}
	return current, nil
}

func insertTransactionTx(ctx context.Context, tx *sqlx.Tx, chatID, userID, amount int64, kind, description string, now time.Time) error {
	_, err := txExec(ctx, tx, `
		INSERT INTO star_transactions (user_id, chat_id, amount, kind, description, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		userID, chatID, amount, kind, description, now,
	)
	return errors.Wrap(err, "insert star transaction")
}

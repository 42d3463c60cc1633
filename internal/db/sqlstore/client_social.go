package sqlstore

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	domainErrors "github.com/starbot-tg/starbot/internal/errors"
)

// GiveReputation changes toID's reputation by delta. With a positive cooldown the same giver
// may rate the same member only once per cooldown window.
func (c *Client) GiveReputation(ctx context.Context, chatID, fromID, toID, delta int64, reason string, cooldown time.Duration, now time.Time) (int64, error) {
	if fromID == toID {
		return 0, domainErrors.ErrSelfTarget
	}
	now = ts(now)
	var reputation int64
	err := c.inTx(ctx, func(tx *sqlx.Tx) error {
		if cooldown > 0 {
			n, err := txExec(ctx, tx, `
				INSERT INTO reputation_cooldowns (chat_id, from_user_id, user_id, given_at) VALUES (?, ?, ?, ?)
				ON CONFLICT (chat_id, from_user_id, user_id) DO UPDATE SET given_at = excluded.given_at
				WHERE reputation_cooldowns.given_at <= ?`,
				chatID, fromID, toID, now, now.Add(-cooldown),
			)
			if err != nil {
				return errors.Wrap(err, "reputation cooldown")
			}
			if n == 0 {
				return domainErrors.ErrCooldown
			}
		}
		if err := ensureUserTx(ctx, tx, chatID, toID, now); err != nil {
			return err
		}
		if _, err := txExec(ctx, tx, "UPDATE users SET reputation = reputation + ?, updated_at = ? WHERE user_id = ? AND chat_id = ?",
			delta, now, toID, chatID); err != nil {
			return errors.Wrap(err, "update reputation")
		}
		if _, err := txExec(ctx, tx, `
			INSERT INTO reputation_events (user_id, chat_id, from_user_id, change, reason, created_at)
			VALUES (?, ?, ?, ?, ?, ?)`,
			toID, chatID, fromID, delta, reason, now,
		); err != nil {
			return errors.Wrap(err, "insert reputation event")
		}
		return errors.Wrap(
			txGet(ctx, tx, &reputation, "SELECT reputation FROM users WHERE user_id = ? AND chat_id = ?", toID, chatID),
			"reload reputation",
		)
	})
	return reputation, err
}

// Marry links two unmarried members of a chat symmetrically.
func (c *Client) Marry(ctx context.Context, chatID, userID, partnerID int64) error {
	if userID == partnerID {
		return domainErrors.ErrSelfTarget
	}
	return c.inTx(ctx, func(tx *sqlx.Tx) error {
		now := c.timestamp()
		for _, id := range []int64{userID, partnerID} {
			if err := ensureUserTx(ctx, tx, chatID, id, now); err != nil {
				return err
			}
		}
		for _, pair := range [][2]int64{{userID, partnerID}, {partnerID, userID}} {
			n, err := txExec(ctx, tx, `
				UPDATE users SET married_to = ?, updated_at = ?
				WHERE user_id = ? AND chat_id = ? AND married_to IS NULL`,
				pair[1], now, pair[0], chatID,
			)
			if err != nil {
				return errors.Wrap(err, "marry")
			}
			if n == 0 {
				return domainErrors.ErrAlreadyMarried
			}
		}
		return nil
	})
}

// Divorce clears both sides of a marriage and returns the former partner.
func (c *Client) Divorce(ctx context.Context, chatID, userID int64) (int64, error) {
	var partner int64
	err := c.inTx(ctx, func(tx *sqlx.Tx) error {
		var current sql.NullInt64
		err := txGet(ctx, tx, &current, "SELECT married_to FROM users WHERE user_id = ? AND chat_id = ?", userID, chatID)
		if errors.Is(err, sql.ErrNoRows) || (err == nil && !current.Valid) {
			return domainErrors.ErrNotMarried
		}
		if err != nil {
			return errors.Wrap(err, "read marriage")
		}
		partner = current.Int64
		now := c.timestamp()
		_, err = txExec(ctx, tx, `
			UPDATE users SET married_to = NULL, updated_at = ?
			WHERE chat_id = ? AND ((user_id = ? AND married_to = ?) OR (user_id = ? AND married_to = ?))`,
			now, chatID, userID, partner, partner, userID,
		)
		return errors.Wrap(err, "divorce")
	})
	return partner, err
}

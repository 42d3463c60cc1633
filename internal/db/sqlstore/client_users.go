package sqlstore

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/starbot-tg/starbot/internal/db"
)

const userColumns = `user_id, chat_id, username, first_name, last_name, stars, reputation, level, xp,
	message_count, bio, prefix, is_afk, afk_reason, afk_since, married_to, last_bonus, last_weekly,
	created_at, updated_at`

var topOrders = map[db.TopOrder]string{
	db.TopByStars:      "stars DESC, user_id",
	db.TopByMessages:   "message_count DESC, user_id",
	db.TopByLevel:      "level DESC, xp DESC, user_id",
	db.TopByReputation: "reputation DESC, user_id",
}

// UpsertUser creates the member row or refreshes its name fields. Counters are never touched.
func (c *Client) UpsertUser(ctx context.Context, u *db.User) error {
	now := c.timestamp()
	_, err := c.exec(ctx, `
		INSERT INTO users (user_id, chat_id, username, first_name, last_name, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id, chat_id) DO UPDATE SET
			username = excluded.username,
			first_name = excluded.first_name,
			last_name = excluded.last_name,
			updated_at = excluded.updated_at`,
		u.UserID, u.ChatID, u.Username, u.FirstName, u.LastName, now, now,
	)
	return errors.Wrap(err, "upsert user")
}

func (c *Client) GetUser(ctx context.Context, chatID, userID int64) (*db.User, error) {
	res := &db.User{}
	err := c.get(ctx, res, "SELECT "+userColumns+" FROM users WHERE user_id = ? AND chat_id = ?", userID, chatID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "get user")
	}
	return res, nil
}

func (c *Client) ListUsers(ctx context.Context, chatID int64, limit int) ([]*db.User, error) {
	var res []*db.User
	err := c.selectAll(ctx, &res,
		"SELECT "+userColumns+" FROM users WHERE chat_id = ? ORDER BY message_count DESC, user_id LIMIT ?",
		chatID, limit)
	return res, errors.Wrap(err, "list users")
}

func (c *Client) CountUsers(ctx context.Context, chatID int64) (int, error) {
	var count int
	err := c.get(ctx, &count, "SELECT COUNT(*) FROM users WHERE chat_id = ?", chatID)
	return count, errors.Wrap(err, "count users")
}

func (c *Client) TopUsers(ctx context.Context, chatID int64, order db.TopOrder, limit int) ([]*db.User, error) {
	orderBy, ok := topOrders[order]
	if !ok {
		return nil, errors.Errorf("unknown top order %q", order)
	}
	var res []*db.User
	err := c.selectAll(ctx, &res,
		"SELECT "+userColumns+" FROM users WHERE chat_id = ? ORDER BY "+orderBy+" LIMIT ?",
		chatID, limit)
	return res, errors.Wrap(err, "top users")
}

func (c *Client) UpsertGlobalUser(ctx context.Context, userID int64, username string) error {
	now := c.timestamp()
	_, err := c.exec(ctx, `
		INSERT INTO global_users (user_id, username, created_at, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE SET
			username = excluded.username,
			updated_at = excluded.updated_at`,
		userID, username, now, now,
	)
	return errors.Wrap(err, "upsert global user")
}

func (c *Client) GetGlobalUser(ctx context.Context, userID int64) (*db.GlobalUser, error) {
	res := &db.GlobalUser{}
	err := c.get(ctx, res,
		"SELECT user_id, username, is_premium, virtas, created_at, updated_at FROM global_users WHERE user_id = ?",
		userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "get global user")
	}
	return res, nil
}

func (c *Client) RecordActivity(ctx context.Context, chatID, userID int64, at time.Time) (*db.User, error) {
	res := &db.User{}
	err := c.inTx(ctx, func(tx *sqlx.Tx) error {
		if err := ensureUserTx(ctx, tx, chatID, userID, ts(at)); err != nil {
			return err
		}
		if _, err := txExec(ctx, tx, `
			UPDATE users SET message_count = message_count + 1, xp = xp + 1, updated_at = ?
			WHERE user_id = ? AND chat_id = ?`,
			ts(at), userID, chatID,
		); err != nil {
			return errors.Wrap(err, "increment activity")
		}
		if _, err := txExec(ctx, tx, `
			INSERT INTO message_stats (user_id, chat_id, day, message_count) VALUES (?, ?, ?, 1)
			ON CONFLICT (user_id, chat_id, day) DO UPDATE SET message_count = message_stats.message_count + 1`,
			userID, chatID, day(at),
		); err != nil {
			return errors.Wrap(err, "increment message stats")
		}
		return errors.Wrap(
			txGet(ctx, tx, res, "SELECT "+userColumns+" FROM users WHERE user_id = ? AND chat_id = ?", userID, chatID),
			"reload user",
		)
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// LevelUp advances one level when xp has reached level*100, carrying the remainder over.
func (c *Client) LevelUp(ctx context.Context, chatID, userID int64) (int, bool, error) {
	var level int
	leveled := false
	err := c.inTx(ctx, func(tx *sqlx.Tx) error {
		n, err := txExec(ctx, tx, `
			UPDATE users SET level = level + 1, xp = xp - level * 100
			WHERE user_id = ? AND chat_id = ? AND xp >= level * 100`,
			userID, chatID,
		)
		if err != nil {
			return errors.Wrap(err, "level up")
		}
		leveled = n > 0
		err = txGet(ctx, tx, &level, "SELECT level FROM users WHERE user_id = ? AND chat_id = ?", userID, chatID)
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		return errors.Wrap(err, "reload level")
	})
	return level, leveled, err
}

func (c *Client) SetAFK(ctx context.Context, chatID, userID int64, reason string, at time.Time) error {
	_, err := c.exec(ctx, `
		UPDATE users SET is_afk = ?, afk_reason = ?, afk_since = ?, updated_at = ?
		WHERE user_id = ? AND chat_id = ?`,
		true, reason, ts(at), c.timestamp(), userID, chatID,
	)
	return errors.Wrap(err, "set afk")
}

// ClearAFK reports whether the member actually was AFK.
func (c *Client) ClearAFK(ctx context.Context, chatID, userID int64) (bool, error) {
	n, err := c.exec(ctx, `
		UPDATE users SET is_afk = ?, afk_reason = '', afk_since = NULL, updated_at = ?
		WHERE user_id = ? AND chat_id = ? AND is_afk = ?`,
		false, c.timestamp(), userID, chatID, true,
	)
	if err != nil {
		return false, errors.Wrap(err, "clear afk")
	}
	return n > 0, nil
}

func (c *Client) SetBio(ctx context.Context, chatID, userID int64, bio string) error {
	_, err := c.exec(ctx, "UPDATE users SET bio = ?, updated_at = ? WHERE user_id = ? AND chat_id = ?",
		bio, c.timestamp(), userID, chatID)
	return errors.Wrap(err, "set bio")
}

func (c *Client) SetPrefix(ctx context.Context, chatID, userID int64, prefix string) error {
	_, err := c.exec(ctx, "UPDATE users SET prefix = ?, updated_at = ? WHERE user_id = ? AND chat_id = ?",
		prefix, c.timestamp(), userID, chatID)
	return errors.Wrap(err, "set prefix")
}

// ensureUserTx creates a bare member row so credits to users who never wrote in the chat are not lost.
func ensureUserTx(ctx context.Context, tx *sqlx.Tx, chatID, userID int64, now time.Time) error {
	_, err := txExec(ctx, tx, `
		INSERT INTO users (user_id, chat_id, created_at, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT (user_id, chat_id) DO NOTHING`,
		userID, chatID, now, now,
	)
	return errors.Wrap(err, "ensure user")
}

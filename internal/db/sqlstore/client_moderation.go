package sqlstore

import (
	"context"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/starbot-tg/starbot/internal/db"
)

// AddWarning appends a warning and returns the member's warning count including it.
func (c *Client) AddWarning(ctx context.Context, w *db.Warning) (int, error) {
	if w.CreatedAt.IsZero() {
		w.CreatedAt = c.now()
	}
	var count int
	err := c.inTx(ctx, func(tx *sqlx.Tx) error {
		if err := txGet(ctx, tx, &w.ID, `
			INSERT INTO warnings (user_id, chat_id, admin_id, reason, created_at)
			VALUES (?, ?, ?, ?, ?) RETURNING id`,
			w.UserID, w.ChatID, w.AdminID, w.Reason, ts(w.CreatedAt),
		); err != nil {
			return errors.Wrap(err, "insert warning")
		}
		return errors.Wrap(
			txGet(ctx, tx, &count, "SELECT COUNT(*) FROM warnings WHERE chat_id = ? AND user_id = ?", w.ChatID, w.UserID),
			"count warnings",
		)
	})
	return count, err
}

func (c *Client) RemoveLastWarning(ctx context.Context, chatID, userID int64) (bool, error) {
	n, err := c.exec(ctx, `
		DELETE FROM warnings WHERE id = (
			SELECT id FROM warnings WHERE chat_id = ? AND user_id = ? ORDER BY id DESC LIMIT 1
		)`,
		chatID, userID,
	)
	if err != nil {
		return false, errors.Wrap(err, "remove last warning")
	}
	return n > 0, nil
}

func (c *Client) ListWarnings(ctx context.Context, chatID, userID int64) ([]*db.Warning, error) {
	var res []*db.Warning
	err := c.selectAll(ctx, &res, `
		SELECT id, user_id, chat_id, admin_id, reason, created_at FROM warnings
		WHERE chat_id = ? AND user_id = ? ORDER BY id`,
		chatID, userID,
	)
	return res, errors.Wrap(err, "list warnings")
}

func (c *Client) CountWarnings(ctx context.Context, chatID, userID int64) (int, error) {
	var count int
	err := c.get(ctx, &count, "SELECT COUNT(*) FROM warnings WHERE chat_id = ? AND user_id = ?", chatID, userID)
	return count, errors.Wrap(err, "count warnings")
}

func (c *Client) ResetWarnings(ctx context.Context, chatID, userID int64) (int64, error) {
	n, err := c.exec(ctx, "DELETE FROM warnings WHERE chat_id = ? AND user_id = ?", chatID, userID)
	return n, errors.Wrap(err, "reset warnings")
}

func (c *Client) TopWarned(ctx context.Context, chatID int64, limit int) ([]*db.WarnCount, error) {
	var res []*db.WarnCount
	err := c.selectAll(ctx, &res, `
		SELECT w.user_id AS user_id,
			COALESCE(u.username, '') AS username,
			COALESCE(u.first_name, '') AS first_name,
			COUNT(*) AS warn_count
		FROM warnings w
		LEFT JOIN users u ON u.user_id = w.user_id AND u.chat_id = w.chat_id
		WHERE w.chat_id = ?
		GROUP BY w.user_id, u.username, u.first_name
		ORDER BY warn_count DESC, w.user_id
		LIMIT ?`,
		chatID, limit,
	)
	return res, errors.Wrap(err, "top warned")
}

func (c *Client) UpsertRestriction(ctx context.Context, r *db.TempRestriction) error {
	if r.CreatedAt.IsZero() {
		r.CreatedAt = c.now()
	}
	_, err := c.exec(ctx, `
		INSERT INTO temp_restrictions (user_id, chat_id, restriction_type, admin_id, reason, expires_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id, chat_id, restriction_type) DO UPDATE SET
			admin_id = excluded.admin_id,
			reason = excluded.reason,
			expires_at = excluded.expires_at,
			attempts = 0`,
		r.UserID, r.ChatID, string(r.Type), r.AdminID, r.Reason, ts(r.ExpiresAt), ts(r.CreatedAt),
	)
	return errors.Wrap(err, "upsert restriction")
}

func (c *Client) DeleteRestriction(ctx context.Context, chatID, userID int64, kind db.RestrictionType) error {
	_, err := c.exec(ctx,
		"DELETE FROM temp_restrictions WHERE chat_id = ? AND user_id = ? AND restriction_type = ?",
		chatID, userID, string(kind))
	return errors.Wrap(err, "delete restriction")
}

func (c *Client) GetExpiredRestrictions(ctx context.Context, now time.Time, limit int) ([]*db.TempRestriction, error) {
	var res []*db.TempRestriction
	err := c.selectAll(ctx, &res, `
		SELECT user_id, chat_id, restriction_type, admin_id, reason, expires_at, created_at, attempts
		FROM temp_restrictions WHERE expires_at <= ? ORDER BY expires_at LIMIT ?`,
		ts(now), limit,
	)
	return res, errors.Wrap(err, "get expired restrictions")
}

// DeferRestriction records a failed lift and moves the row behind the others until next.
func (c *Client) DeferRestriction(ctx context.Context, chatID, userID int64, kind db.RestrictionType, next time.Time) error {
	_, err := c.exec(ctx, `
		UPDATE temp_restrictions SET expires_at = ?, attempts = attempts + 1
		WHERE chat_id = ? AND user_id = ? AND restriction_type = ?`,
		ts(next), chatID, userID, string(kind),
	)
	return errors.Wrap(err, "defer restriction")
}

func normalizeWord(word string) string {
	return strings.ToLower(strings.TrimSpace(word))
}

func (c *Client) AddBlacklistWord(ctx context.Context, chatID int64, word string) (bool, error) {
	word = normalizeWord(word)
	if word == "" {
		return false, nil
	}
	n, err := c.exec(ctx, `
		INSERT INTO blacklist_words (chat_id, word, created_at) VALUES (?, ?, ?)
		ON CONFLICT (chat_id, word) DO NOTHING`,
		chatID, word, c.timestamp(),
	)
	if err != nil {
		return false, errors.Wrap(err, "add blacklist word")
	}
	return n > 0, nil
}

func (c *Client) RemoveBlacklistWord(ctx context.Context, chatID int64, word string) (bool, error) {
	n, err := c.exec(ctx, "DELETE FROM blacklist_words WHERE chat_id = ? AND word = ?", chatID, normalizeWord(word))
	if err != nil {
		return false, errors.Wrap(err, "remove blacklist word")
	}
	return n > 0, nil
}

func (c *Client) ListBlacklistWords(ctx context.Context, chatID int64) ([]string, error) {
	var res []string
	err := c.selectAll(ctx, &res, "SELECT word FROM blacklist_words WHERE chat_id = ? ORDER BY word", chatID)
	return res, errors.Wrap(err, "list blacklist words")
}

func (c *Client) AddReport(ctx context.Context, r *db.Report) (int64, error) {
	if r.CreatedAt.IsZero() {
		r.CreatedAt = c.now()
	}
	if r.Status == "" {
		r.Status = "pending"
	}
	unlock := c.lock()
	defer unlock()
	err := c.db.GetContext(ctx, &r.ID, c.db.Rebind(`
		INSERT INTO reports (chat_id, reporter_id, reported_user_id, reason, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?) RETURNING id`),
		r.ChatID, r.ReporterID, r.ReportedUserID, r.Reason, r.Status, ts(r.CreatedAt),
	)
	return r.ID, errors.Wrap(err, "add report")
}

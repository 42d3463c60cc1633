package sqlstore

import (
	"context"
	"database/sql"
	"time"

	"github.com/pkg/errors"

	"github.com/starbot-tg/starbot/internal/db"
)

const settingsColumns = `chat_id, title, antispam, flood_limit, caps_limit, links_allowed, media_limit,
	sticker_limit, gif_limit, voice_limit, forward_limit, welcome_enabled, welcome_message, goodbye_enabled,
	goodbye_message, rules, warn_limit, read_only, language, log_channel_id, report_channel_id,
	auto_delete_seconds, clean_service, created_at, updated_at`

// EnsureChat creates the settings row with defaults when missing and refreshes the chat title.
func (c *Client) EnsureChat(ctx context.Context, chatID int64, title string) (*db.ChatSettings, error) {
	now := c.timestamp()
	if _, err := c.exec(ctx, `
		INSERT INTO chat_settings (chat_id, title, language, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (chat_id) DO UPDATE SET title = excluded.title
		WHERE excluded.title <> '' AND chat_settings.title <> excluded.title`,
		chatID, title, c.defaultLanguage, now, now,
	); err != nil {
		return nil, errors.Wrap(err, "ensure chat")
	}
	settings, err := c.GetSettings(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if settings == nil {
		return nil, errors.WithMessage(db.ErrNotFound, "settings vanished after ensure")
	}
	return settings, nil
}

// GetSettings returns nil without error when the chat has no settings row yet.
func (c *Client) GetSettings(ctx context.Context, chatID int64) (*db.ChatSettings, error) {
	res := &db.ChatSettings{}
	err := c.get(ctx, res, "SELECT "+settingsColumns+" FROM chat_settings WHERE chat_id = ?", chatID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "get settings")
	}
	return res, nil
}

func (c *Client) SetSettings(ctx context.Context, settings *db.ChatSettings) error {
	if settings == nil {
		return errors.New("nil settings")
	}
	now := c.timestamp()
	if settings.CreatedAt.IsZero() {
		settings.CreatedAt = now
	}
	settings.CreatedAt = ts(settings.CreatedAt)
	settings.UpdatedAt = now
	if settings.Language == "" {
		settings.Language = c.defaultLanguage
	}

	unlock := c.lock()
	defer unlock()
	_, err := c.db.NamedExecContext(ctx, `
		INSERT INTO chat_settings (`+settingsColumns+`)
		VALUES (:chat_id, :title, :antispam, :flood_limit, :caps_limit, :links_allowed, :media_limit,
			:sticker_limit, :gif_limit, :voice_limit, :forward_limit, :welcome_enabled, :welcome_message,
			:goodbye_enabled, :goodbye_message, :rules, :warn_limit, :read_only, :language, :log_channel_id,
			:report_channel_id, :auto_delete_seconds, :clean_service, :created_at, :updated_at)
		ON CONFLICT (chat_id) DO UPDATE SET
			title = excluded.title,
			antispam = excluded.antispam,
			flood_limit = excluded.flood_limit,
			caps_limit = excluded.caps_limit,
			links_allowed = excluded.links_allowed,
			media_limit = excluded.media_limit,
			sticker_limit = excluded.sticker_limit,
			gif_limit = excluded.gif_limit,
			voice_limit = excluded.voice_limit,
			forward_limit = excluded.forward_limit,
			welcome_enabled = excluded.welcome_enabled,
			welcome_message = excluded.welcome_message,
			goodbye_enabled = excluded.goodbye_enabled,
			goodbye_message = excluded.goodbye_message,
			rules = excluded.rules,
			warn_limit = excluded.warn_limit,
			read_only = excluded.read_only,
			language = excluded.language,
			log_channel_id = excluded.log_channel_id,
			report_channel_id = excluded.report_channel_id,
			auto_delete_seconds = excluded.auto_delete_seconds,
			clean_service = excluded.clean_service,
			updated_at = excluded.updated_at`,
		settings,
	)
	return errors.Wrap(err, "set settings")
}

func (c *Client) ChatStats(ctx context.Context, chatID int64, at time.Time) (*db.ChatStats, error) {
	res := &db.ChatStats{}
	today := day(at)
	err := c.get(ctx, res, `
		SELECT
			(SELECT COUNT(*) FROM users WHERE chat_id = ?) AS users,
			(SELECT CAST(COALESCE(SUM(message_count), 0) AS BIGINT) FROM users WHERE chat_id = ?) AS messages,
			(SELECT CAST(COALESCE(SUM(message_count), 0) AS BIGINT) FROM message_stats WHERE chat_id = ? AND day = ?) AS messages_today,
			(SELECT COUNT(*) FROM message_stats WHERE chat_id = ? AND day = ?) AS active_today,
			(SELECT COUNT(*) FROM warnings WHERE chat_id = ?) AS warnings`,
		chatID, chatID, chatID, today, chatID, today, chatID,
	)
	if err != nil {
		return nil, errors.Wrap(err, "chat stats")
	}
	return res, nil
}

package db

import (
	"time"

	"github.com/starbot-tg/starbot/internal/errors"
)

const (
	DefaultWarnLimit = 3
	DefaultLanguage  = "ru"
)

var ErrNotFound = errors.ErrNotFound

// ChatSettings holds per-chat moderation toggles and templates. Zero values keep every filter inert.
type ChatSettings struct {
	ChatID            int64     `db:"chat_id"`
	Title             string    `db:"title"`
	Antispam          bool      `db:"antispam"`
	FloodLimit        int       `db:"flood_limit"`
	CapsLimit         int       `db:"caps_limit"`
	LinksAllowed      bool      `db:"links_allowed"`
	MediaLimit        bool      `db:"media_limit"`
	StickerLimit      bool      `db:"sticker_limit"`
	GifLimit          bool      `db:"gif_limit"`
	VoiceLimit        bool      `db:"voice_limit"`
	ForwardLimit      bool      `db:"forward_limit"`
	WelcomeEnabled    bool      `db:"welcome_enabled"`
	WelcomeMessage    string    `db:"welcome_message"`
	GoodbyeEnabled    bool      `db:"goodbye_enabled"`
	GoodbyeMessage    string    `db:"goodbye_message"`
	Rules             string    `db:"rules"`
	WarnLimit         int       `db:"warn_limit"`
	ReadOnly          bool      `db:"read_only"`
	Language          string    `db:"language"`
	LogChannelID      int64     `db:"log_channel_id"`
	ReportChannelID   int64     `db:"report_channel_id"`
	AutoDeleteSeconds int       `db:"auto_delete_seconds"`
	CleanService      bool      `db:"clean_service"`
	CreatedAt         time.Time `db:"created_at"`
	UpdatedAt         time.Time `db:"updated_at"`
}

func DefaultSettings(chatID int64) *ChatSettings {
	return &ChatSettings{
		ChatID:       chatID,
		LinksAllowed: true,
		WarnLimit:    DefaultWarnLimit,
		Language:     DefaultLanguage,
	}
}

// EffectiveWarnLimit guards against rows written before the limit was validated.
func (s *ChatSettings) EffectiveWarnLimit() int {
	if s == nil || s.WarnLimit <= 0 {
		return DefaultWarnLimit
	}
	return s.WarnLimit
}

func (s *ChatSettings) GetLanguage() string {
	if s == nil || s.Language == "" {
		return DefaultLanguage
	}
	return s.Language
}

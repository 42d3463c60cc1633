package db

import (
	"strconv"
	"time"
)

type RestrictionType string

const (
	RestrictionBan  RestrictionType = "ban"
	RestrictionMute RestrictionType = "mute"
)

// Ledger kinds for star transactions.
const (
	TxDailyBonus  = "daily_bonus"
	TxWeeklyBonus = "weekly_bonus"
	TxTransfer    = "transfer"
	TxGift        = "gift"
	TxPurchase    = "purchase"
	TxPremium     = "premium"
	TxVirtas      = "virtas"
	TxGame        = "game"
	TxFishing     = "fishing"
	TxDuel        = "duel"
	TxGrant       = "grant"
)

const (
	SubscriptionPremium = "premium"

	CounterFishing = "fishing"
)

type (
	// User is a member's per-chat profile.
	User struct {
		UserID       int64      `db:"user_id"`
		ChatID       int64      `db:"chat_id"`
		Username     string     `db:"username"`
		FirstName    string     `db:"first_name"`
		LastName     string     `db:"last_name"`
		Stars        int64      `db:"stars"`
		Reputation   int64      `db:"reputation"`
		Level        int        `db:"level"`
		XP           int        `db:"xp"`
		MessageCount int64      `db:"message_count"`
		Bio          string     `db:"bio"`
		Prefix       string     `db:"prefix"`
		IsAFK        bool       `db:"is_afk"`
		AFKReason    string     `db:"afk_reason"`
		AFKSince     *time.Time `db:"afk_since"`
		MarriedTo    *int64     `db:"married_to"`
		LastBonus    *time.Time `db:"last_bonus"`
		LastWeekly   *time.Time `db:"last_weekly"`
		CreatedAt    time.Time  `db:"created_at"`
		UpdatedAt    time.Time  `db:"updated_at"`
	}

	GlobalUser struct {
		UserID    int64     `db:"user_id"`
		Username  string    `db:"username"`
		IsPremium bool      `db:"is_premium"`
		Virtas    int64     `db:"virtas"`
		CreatedAt time.Time `db:"created_at"`
		UpdatedAt time.Time `db:"updated_at"`
	}

	Warning struct {
		ID        int64     `db:"id"`
		UserID    int64     `db:"user_id"`
		ChatID    int64     `db:"chat_id"`
		AdminID   int64     `db:"admin_id"`
		Reason    string    `db:"reason"`
		CreatedAt time.Time `db:"created_at"`
	}

	WarnCount struct {
		UserID    int64  `db:"user_id"`
		Username  string `db:"username"`
		FirstName string `db:"first_name"`
		Count     int    `db:"warn_count"`
	}

	TempRestriction struct {
		UserID    int64           `db:"user_id"`
		ChatID    int64           `db:"chat_id"`
		Type      RestrictionType `db:"restriction_type"`
		AdminID   int64           `db:"admin_id"`
		Reason    string          `db:"reason"`
		ExpiresAt time.Time       `db:"expires_at"`
		CreatedAt time.Time       `db:"created_at"`
		// Attempts counts failed lifts; ExpiresAt then holds the next retry.
		Attempts int `db:"attempts"`
	}

	ShopPrefix struct {
		ID      int64  `db:"id"`
		Name    string `db:"name"`
		Display string `db:"display"`
		Price   int64  `db:"price"`
	}

	StarTransaction struct {
		ID          int64     `db:"id"`
		UserID      int64     `db:"user_id"`
		ChatID      int64     `db:"chat_id"`
		Amount      int64     `db:"amount"`
		Kind        string    `db:"kind"`
		Description string    `db:"description"`
		CreatedAt   time.Time `db:"created_at"`
	}

	ReputationEvent struct {
		ID         int64     `db:"id"`
		UserID     int64     `db:"user_id"`
		ChatID     int64     `db:"chat_id"`
		FromUserID int64     `db:"from_user_id"`
		Change     int64     `db:"change"`
		Reason     string    `db:"reason"`
		CreatedAt  time.Time `db:"created_at"`
	}

	Subscription struct {
		UserID    int64     `db:"user_id"`
		Type      string    `db:"subscription_type"`
		ExpiresAt time.Time `db:"expires_at"`
		IsActive  bool      `db:"is_active"`
		CreatedAt time.Time `db:"created_at"`
	}

	Report struct {
		ID             int64     `db:"id"`
		ChatID         int64     `db:"chat_id"`
		ReporterID     int64     `db:"reporter_id"`
		ReportedUserID int64     `db:"reported_user_id"`
		Reason         string    `db:"reason"`
		Status         string    `db:"status"`
		CreatedAt      time.Time `db:"created_at"`
	}

	ChatStats struct {
		Users         int   `db:"users"`
		Messages      int64 `db:"messages"`
		MessagesToday int64 `db:"messages_today"`
		ActiveToday   int   `db:"active_today"`
		Warnings      int   `db:"warnings"`
	}

	// BonusResult describes a bonus claim; NextAt is set when the claim hit the cooldown.
	BonusResult struct {
		Amount  int64
		Balance int64
		NextAt  time.Time
	}
)

// DisplayName is the first name, falling back to @username and then the numeric id.
func (u *User) DisplayName() string {
	switch {
	case u == nil:
		return ""
	case u.FirstName != "":
		return u.FirstName
	case u.Username != "":
		return "@" + u.Username
	}
	return "ID:" + strconv.FormatInt(u.UserID, 10)
}

func (u *User) PartnerID() (int64, bool) {
	if u == nil || u.MarriedTo == nil {
		return 0, false
	}
	return *u.MarriedTo, true
}

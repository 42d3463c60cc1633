package telegram

import api "github.com/OvyFlash/telegram-bot-api"

// Permissions is the subset of chat permissions the moderation commands toggle.
type Permissions struct {
	SendMessages    bool
	SendMedia       bool
	SendPolls       bool
	SendOther       bool
	WebPagePreviews bool
}

var (
	// Muted forbids everything.
	Muted = Permissions{}
	// Restricted keeps plain text but removes media, polls, stickers and previews.
	Restricted = Permissions{SendMessages: true}
	Full       = Permissions{
		SendMessages:    true,
		SendMedia:       true,
		SendPolls:       true,
		SendOther:       true,
		WebPagePreviews: true,
	}
)

func (p Permissions) api() *api.ChatPermissions {
	return &api.ChatPermissions{
		CanSendMessages:       p.SendMessages,
		CanSendAudios:         p.SendMedia,
		CanSendDocuments:      p.SendMedia,
		CanSendPhotos:         p.SendMedia,
		CanSendVideos:         p.SendMedia,
		CanSendVideoNotes:     p.SendMedia,
		CanSendVoiceNotes:     p.SendMedia,
		CanSendPolls:          p.SendPolls,
		CanSendOtherMessages:  p.SendOther,
		CanAddWebPagePreviews: p.WebPagePreviews,
	}
}

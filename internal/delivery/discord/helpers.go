package discord

import (
	"errors"

	"elobot/internal/application"

	"github.com/bwmarrin/discordgo"
)

// rejectionText maps core rejections to the reply shown to the user. The
// second result is false for unexpected errors.
func rejectionText(err error) (string, bool) {
	switch {
	case errors.Is(err, application.ErrUnknownMatch):
		return "That match was not found.", true
	case errors.Is(err, application.ErrNotPending):
		return "This match has already been resolved or expired.", true
	case errors.Is(err, application.ErrNotParticipant):
		return "You are not a participant in this match.", true
	case errors.Is(err, application.ErrDuplicateReport):
		return "You have already reported a result for this match.", true
	case errors.Is(err, application.ErrAlreadyResolved):
		return "This match has already been resolved.", true
	case errors.Is(err, application.ErrInvalidOpponent):
		return "You cannot challenge a bot or yourself.", true
	case errors.Is(err, application.ErrNotChallengedPlayer):
		return "Only the challenged player can accept or decline this duel!", true
	case errors.Is(err, application.ErrChallengeNotActionable):
		return msgAlreadyHandled, true
	case errors.Is(err, application.ErrSheetsDisabled):
		return "Google Sheets sync is not configured.", true
	default:
		return msgUnexpected, false
	}
}

func memberFromUser(u *discordgo.User, m *discordgo.Member) application.Member {
	name := u.GlobalName
	if name == "" {
		name = u.Username
	}
	if m != nil && m.Nick != "" {
		name = m.Nick
	}
	return application.Member{
		ID:          u.ID,
		DisplayName: name,
		Mention:     u.Mention(),
		IsBot:       u.Bot,
	}
}

// optionUser resolves a user option with the member data Discord sent along.
func optionUser(i *discordgo.Interaction, name string) (*discordgo.User, *discordgo.Member) {
	data := i.ApplicationCommandData()
	for _, opt := range data.Options {
		if opt.Name != name {
			continue
		}
		id, _ := opt.Value.(string)
		if data.Resolved == nil {
			return &discordgo.User{ID: id}, nil
		}
		u := data.Resolved.Users[id]
		if u == nil {
			u = &discordgo.User{ID: id}
		}
		return u, data.Resolved.Members[id]
	}
	return nil, nil
}

func optionString(i *discordgo.Interaction, name string) string {
	for _, opt := range i.ApplicationCommandData().Options {
		if opt.Name == name {
			return opt.StringValue()
		}
	}
	return ""
}

func optionInt(i *discordgo.Interaction, name string, fallback int) int {
	for _, opt := range i.ApplicationCommandData().Options {
		if opt.Name == name {
			return int(opt.IntValue())
		}
	}
	return fallback
}

package discord

import (
	"github.com/bwmarrin/discordgo"
)

func (b *Bot) isAdmin(i *discordgo.Interaction) bool {
	user := interactionUser(i)
	if user == nil {
		return false
	}
	if _, ok := b.adminIDs[user.ID]; ok {
		return true
	}
	if b.adminRoleID == "" || i.Member == nil {
		return false
	}
	for _, role := range i.Member.Roles {
		if role == b.adminRoleID {
			return true
		}
	}
	return false
}

func (b *Bot) inAllowedChannel(i *discordgo.Interaction) bool {
	return b.allowedChannelID == "" || i.ChannelID == b.allowedChannelID
}

func interactionUser(i *discordgo.Interaction) *discordgo.User {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User
	}
	return i.User
}

func (b *Bot) respondMessage(s *discordgo.Session, i *discordgo.Interaction, msg string, ephemeral bool) {
	flags := discordgo.MessageFlags(0)
	if ephemeral {
		flags = discordgo.MessageFlagsEphemeral
	}
	err := s.InteractionRespond(i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: msg,
			Flags:   flags,
		},
	})
	if err != nil {
		b.logger.Error("Failed to respond to interaction: %v", err)
	}
}

func (b *Bot) respondEmbed(s *discordgo.Session, i *discordgo.Interaction, data *discordgo.InteractionResponseData) {
	err := s.InteractionRespond(i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: data,
	})
	if err != nil {
		b.logger.Error("Failed to respond to interaction: %v", err)
	}
}

func (b *Bot) editResponse(s *discordgo.Session, i *discordgo.Interaction, edit *discordgo.WebhookEdit) {
	if _, err := s.InteractionResponseEdit(i, edit); err != nil {
		b.logger.Error("Failed to edit interaction response: %v", err)
	}
}

func (b *Bot) deferResponse(s *discordgo.Session, i *discordgo.Interaction, ephemeral bool) bool {
	resp := &discordgo.InteractionResponse{Type: discordgo.InteractionResponseDeferredChannelMessageWithSource}
	if ephemeral {
		resp.Data = &discordgo.InteractionResponseData{Flags: discordgo.MessageFlagsEphemeral}
	}
	if err := s.InteractionRespond(i, resp); err != nil {
		b.logger.Error("Failed to defer interaction: %v", err)
		return false
	}
	return true
}

func (b *Bot) ensureAdmin(s *discordgo.Session, i *discordgo.Interaction, handler func(*discordgo.Session, *discordgo.Interaction)) {
	if !b.isAdmin(i) {
		b.respondMessage(s, i, msgNoPermission, true)
		return
	}
	handler(s, i)
}

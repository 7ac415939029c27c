package discord

import (
	"fmt"

	"elobot/internal/models"

	"github.com/bwmarrin/discordgo"
)

func (b *Bot) handleAccept(s *discordgo.Session, i *discordgo.Interaction, challengeID string) {
	user := interactionUser(i)
	if i.Message != nil {
		// The response message may not have been bound yet if the fetch in
		// handleChallenge failed or raced with this click.
		_ = b.services.ChallengeService.Bind(challengeID, models.AnnouncementRef{ChannelID: i.ChannelID, MessageID: i.Message.ID})
	}

	ctx, cancel := b.requestContext()
	defer cancel()

	m, err := b.services.ChallengeService.Accept(ctx, challengeID, user.ID)
	if err != nil {
		b.replyError(s, i, "Accept challenge", err)
		return
	}

	err = s.InteractionRespond(i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseUpdateMessage,
		Data: &discordgo.InteractionResponseData{
			Embeds:     []*discordgo.MessageEmbed{acceptedChallengeEmbed(m, b.reportWindow)},
			Components: reportButtons(m.ID),
		},
	})
	if err != nil {
		b.logger.Error("Failed to show report buttons for match %s: %v", m.ID, err)
	}
}

func (b *Bot) handleDecline(s *discordgo.Session, i *discordgo.Interaction, challengeID string) {
	user := interactionUser(i)
	ctx, cancel := b.requestContext()
	defer cancel()

	c, err := b.services.ChallengeService.Decline(ctx, challengeID, user.ID)
	if err != nil {
		b.replyError(s, i, "Decline challenge", err)
		return
	}

	err = s.InteractionRespond(i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseUpdateMessage,
		Data: &discordgo.InteractionResponseData{
			Embeds:     []*discordgo.MessageEmbed{declinedChallengeEmbed(c)},
			Components: []discordgo.MessageComponent{},
		},
	})
	if err != nil {
		b.logger.Error("Failed to update declined challenge %s: %v", challengeID, err)
	}
}

func (b *Bot) handleReport(s *discordgo.Session, i *discordgo.Interaction, matchID string, won bool) {
	user := interactionUser(i)
	report := models.ReportLoss
	if won {
		report = models.ReportWin
	}

	// Reconciliation may call the Discord API, so answer first.
	if !b.deferResponse(s, i, true) {
		return
	}
	ctx, cancel := b.requestContext()
	defer cancel()

	ack, err := b.services.MatchService.SubmitReport(ctx, matchID, user.ID, report)
	if err != nil {
		text, expected := rejectionText(err)
		if !expected {
			b.logger.Error("Report on match %s failed: %v", matchID, err)
		}
		b.editResponse(s, i, &discordgo.WebhookEdit{Content: stringPtr(text)})
		return
	}

	text := fmt.Sprintf("You have reported a **%s**. Waiting for the opponent...", report)
	if ack.Resolution != nil && ack.Resolution.Applied {
		text = fmt.Sprintf("You have reported a **%s**. The match is now %s.", report, ack.Resolution.Status)
	}
	b.editResponse(s, i, &discordgo.WebhookEdit{Content: stringPtr(text)})
}

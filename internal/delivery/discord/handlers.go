package discord

import (
	"bytes"
	"context"
	"fmt"

	"elobot/internal/application"
	"elobot/internal/models"

	"github.com/bwmarrin/discordgo"
)

func (b *Bot) replyError(s *discordgo.Session, i *discordgo.Interaction, op string, err error) {
	text, expected := rejectionText(err)
	if !expected {
		b.logger.Error("%s failed: %v", op, err)
	}
	b.respondMessage(s, i, text, true)
}

func (b *Bot) handleChallenge(s *discordgo.Session, i *discordgo.Interaction) {
	challenger := interactionUser(i)
	opponentUser, opponentMember := optionUser(i, "opponent")
	if challenger == nil || opponentUser == nil {
		b.respondMessage(s, i, msgUnexpected, true)
		return
	}

	ctx, cancel := b.requestContext()
	defer cancel()

	opponent := memberFromUser(opponentUser, opponentMember)
	c, err := b.services.ChallengeService.Issue(ctx, application.IssueRequest{
		Challenger:    memberFromUser(challenger, i.Member),
		Opponent:      opponent,
		OpponentIsBot: opponent.IsBot,
	})
	if err != nil {
		b.replyError(s, i, "Issue challenge", err)
		return
	}

	b.respondEmbed(s, i, &discordgo.InteractionResponseData{
		Content:    mention(c.OpponentID),
		Embeds:     []*discordgo.MessageEmbed{issuedChallengeEmbed(c, b.challengeTimeout)},
		Components: challengeButtons(c.ID),
	})

	msg, err := s.InteractionResponse(i)
	if err != nil {
		b.logger.Warn("Could not fetch challenge message %s: %v", c.ID, err)
		return
	}
	if err := b.services.ChallengeService.Bind(c.ID, models.AnnouncementRef{ChannelID: msg.ChannelID, MessageID: msg.ID}); err != nil {
		b.logger.Debug("Challenge %s answered before it was bound: %v", c.ID, err)
	}
}

func (b *Bot) handleStats(s *discordgo.Session, i *discordgo.Interaction) {
	target, _ := optionUser(i, "player")
	if target == nil {
		target = interactionUser(i)
	}

	ctx, cancel := b.requestContext()
	defer cancel()

	p, err := b.services.MatchService.PlayerStats(ctx, target.ID)
	if err != nil {
		b.replyError(s, i, "Stats", err)
		return
	}
	if p == nil || p.GamesPlayed == 0 {
		name := target.Username
		if p != nil {
			name = p.Name
		}
		b.respondMessage(s, i, fmt.Sprintf("%s has not played any matches yet.", name), true)
		return
	}

	b.respondEmbed(s, i, &discordgo.InteractionResponseData{
		Embeds: []*discordgo.MessageEmbed{statsEmbed(p, target.AvatarURL(""))},
	})
}

func (b *Bot) handleLeaderboard(s *discordgo.Session, i *discordgo.Interaction) {
	ctx, cancel := b.requestContext()
	defer cancel()

	players, err := b.services.MatchService.Leaderboard(ctx, optionInt(i, "top", defaultLeaderboardSize))
	if err != nil {
		b.replyError(s, i, "Leaderboard", err)
		return
	}
	if len(players) == 0 {
		b.respondMessage(s, i, "There is not enough data for a leaderboard yet.", true)
		return
	}

	b.respondEmbed(s, i, &discordgo.InteractionResponseData{
		Embeds: []*discordgo.MessageEmbed{leaderboardEmbed(players)},
	})
}

func (b *Bot) handleMyMatches(s *discordgo.Session, i *discordgo.Interaction) {
	user := interactionUser(i)
	ctx, cancel := b.requestContext()
	defer cancel()

	matches, err := b.services.MatchService.PendingMatches(ctx, user.ID)
	if err != nil {
		b.replyError(s, i, "Pending matches", err)
		return
	}
	if len(matches) == 0 {
		b.respondMessage(s, i, "You have no pending matches!", true)
		return
	}
	if len(matches) > myMatchesLimit {
		matches = matches[:myMatchesLimit]
	}

	var buttons []discordgo.MessageComponent
	for _, m := range matches {
		if m.Announcement.MessageID == "" {
			continue
		}
		label := "Match against " + b.displayName(ctx, m.Opponent(user.ID))
		buttons = append(buttons, jumpButton(label, messageURL(b.guildID, m.Announcement)))
	}

	data := &discordgo.InteractionResponseData{
		Flags: discordgo.MessageFlagsEphemeral,
		Embeds: []*discordgo.MessageEmbed{{
			Title:       "⚔️ Your Pending Matches",
			Description: "Here are your active matches. Click a button to jump directly to the challenge!",
			Color:       colorBlue,
		}},
	}
	if len(buttons) > 0 {
		data.Components = []discordgo.MessageComponent{discordgo.ActionsRow{Components: buttons}}
	}
	b.respondEmbed(s, i, data)
}

func (b *Bot) handleAdminResolve(s *discordgo.Session, i *discordgo.Interaction) {
	matchID := optionString(i, "match_id")
	winner, _ := optionUser(i, "winner")
	if matchID == "" || winner == nil {
		b.respondMessage(s, i, msgUnexpected, true)
		return
	}
	admin := interactionUser(i)

	ctx, cancel := b.requestContext()
	defer cancel()

	res, err := b.services.MatchService.ForceResolve(ctx, matchID, winner.ID, admin.ID)
	if err != nil {
		b.replyError(s, i, "Admin resolve", err)
		return
	}

	b.respondEmbed(s, i, &discordgo.InteractionResponseData{
		Embeds: []*discordgo.MessageEmbed{adminResolutionEmbed(res, admin.ID)},
	})
}

func (b *Bot) handleExport(s *discordgo.Session, i *discordgo.Interaction) {
	if !b.deferResponse(s, i, true) {
		return
	}
	ctx, cancel := b.requestContext()
	defer cancel()

	data, err := b.services.ExportService.LeaderboardWorkbook(ctx)
	if err != nil {
		b.logger.Error("Export error: %v", err)
		b.editResponse(s, i, &discordgo.WebhookEdit{Content: stringPtr("Export failed: " + err.Error())})
		return
	}

	b.editResponse(s, i, &discordgo.WebhookEdit{
		Content: stringPtr("Your leaderboard export is ready!"),
		Files: []*discordgo.File{
			{Name: exportFileName, ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", Reader: bytes.NewReader(data)},
		},
	})
}

func (b *Bot) handleSyncSheet(s *discordgo.Session, i *discordgo.Interaction) {
	if !b.deferResponse(s, i, true) {
		return
	}
	ctx, cancel := b.requestContext()
	defer cancel()

	url, err := b.services.ExportService.SyncLeaderboardSheet(ctx)
	if err != nil {
		text, expected := rejectionText(err)
		if !expected {
			b.logger.Error("Sheet sync error: %v", err)
			text = "Sync failed: " + err.Error()
		}
		b.editResponse(s, i, &discordgo.WebhookEdit{Content: stringPtr(text)})
		return
	}
	b.editResponse(s, i, &discordgo.WebhookEdit{Content: stringPtr("Leaderboard synced: " + url)})
}

// displayName uses the name stored when the player was first challenged.
func (b *Bot) displayName(ctx context.Context, userID string) string {
	p, err := b.services.MatchService.PlayerStats(ctx, userID)
	if err != nil || p == nil || p.Name == "" {
		return "your opponent"
	}
	return p.Name
}

func stringPtr(s string) *string {
	return &s
}

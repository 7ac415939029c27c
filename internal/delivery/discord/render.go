package discord

import (
	"fmt"
	"strings"
	"time"

	"elobot/internal/application"
	"elobot/internal/models"

	"github.com/bwmarrin/discordgo"
)

func messageURL(guildID string, ref models.AnnouncementRef) string {
	return fmt.Sprintf("https://discord.com/channels/%s/%s/%s", guildID, ref.ChannelID, ref.MessageID)
}

func challengeEmbed(color int, description, footer string) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:       "⚔️ A Challenge Has Been Issued! ⚔️",
		Description: description,
		Color:       color,
	}
	if footer != "" {
		embed.Footer = &discordgo.MessageEmbedFooter{Text: footer}
	}
	return embed
}

func issuedChallengeEmbed(c *models.Challenge, timeout time.Duration) *discordgo.MessageEmbed {
	return challengeEmbed(colorOrange,
		fmt.Sprintf("%s has challenged %s. Do you accept?", mention(c.ChallengerID), mention(c.OpponentID)),
		fmt.Sprintf("The opponent has %s to respond.", humanDuration(timeout)))
}

func acceptedChallengeEmbed(m *models.Match, window time.Duration) *discordgo.MessageEmbed {
	return challengeEmbed(colorGreen,
		fmt.Sprintf("%s has accepted the challenge from %s!", mention(m.Player2ID), mention(m.Player1ID)),
		fmt.Sprintf("Match ID: %s | Both players have %s to report the result.", m.ID, humanDuration(window)))
}

func declinedChallengeEmbed(c *models.Challenge) *discordgo.MessageEmbed {
	return challengeEmbed(colorRed,
		fmt.Sprintf("%s has declined the challenge from %s.", mention(c.OpponentID), mention(c.ChallengerID)), "")
}

func challengeButtons(challengeID string) []discordgo.MessageComponent {
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{Components: []discordgo.MessageComponent{
			discordgo.Button{
				Label:    "Accept",
				Style:    discordgo.SuccessButton,
				CustomID: componentID{kindChallenge, actionAccept, challengeID}.String(),
			},
			discordgo.Button{
				Label:    "Decline",
				Style:    discordgo.DangerButton,
				CustomID: componentID{kindChallenge, actionDecline, challengeID}.String(),
			},
		}},
	}
}

func reportButtons(matchID string) []discordgo.MessageComponent {
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{Components: []discordgo.MessageComponent{
			discordgo.Button{
				Label:    "I Won!",
				Style:    discordgo.SuccessButton,
				CustomID: componentID{kindReport, actionWin, matchID}.String(),
			},
			discordgo.Button{
				Label:    "I Lost",
				Style:    discordgo.DangerButton,
				CustomID: componentID{kindReport, actionLoss, matchID}.String(),
			},
		}},
	}
}

func jumpButton(label, url string) discordgo.MessageComponent {
	return discordgo.Button{Label: label, Style: discordgo.LinkButton, URL: url}
}

// resolutionMessage renders the channel post for an automatic resolution.
func resolutionMessage(m *models.Match, r *application.Resolution, guildID, adminRoleID string) *discordgo.MessageSend {
	p1, p2 := mention(m.Player1ID), mention(m.Player2ID)
	msg := &discordgo.MessageSend{}

	switch r.Status {
	case models.MatchConfirmed:
		var sb strings.Builder
		switch {
		case m.Player1Report.IsSet() && m.Player2Report.IsSet():
			fmt.Fprintf(&sb, "✅ **Result Confirmed** for match `%s`. ", m.ID)
		case m.Player1Report.IsSet():
			fmt.Fprintf(&sb, "⌛ **Automatic Result** for match `%s`. Only %s reported. ", m.ID, p1)
		default:
			fmt.Fprintf(&sb, "⌛ **Automatic Result** for match `%s`. Only %s reported. ", m.ID, p2)
		}
		fmt.Fprintf(&sb, "**%s has defeated %s!**\n", mention(r.WinnerID), mention(r.LoserID))
		fmt.Fprintf(&sb, "ELO: %s (`%d`, %+d) | %s (`%d`, %+d)",
			mention(r.WinnerID), r.WinnerNewRating, r.WinnerGain(),
			mention(r.LoserID), r.LoserNewRating, -r.LoserLoss())
		msg.Content = sb.String()

	case models.MatchDisputed:
		admins := "An **admin**"
		if adminRoleID != "" {
			admins = "<@&" + adminRoleID + ">"
			msg.AllowedMentions = &discordgo.MessageAllowedMentions{
				Parse: []discordgo.AllowedMentionType{discordgo.AllowedMentionTypeUsers},
				Roles: []string{adminRoleID},
			}
		}
		msg.Content = fmt.Sprintf("🚨 **Report Conflict** in match `%s` between %s and %s.\n%s needs to resolve it.",
			m.ID, p1, p2, admins)
		if m.Announcement.MessageID != "" {
			msg.Components = []discordgo.MessageComponent{
				discordgo.ActionsRow{Components: []discordgo.MessageComponent{
					jumpButton("Jump to Match", messageURL(guildID, m.Announcement)),
				}},
			}
		}

	case models.MatchTimedOut:
		msg.Content = fmt.Sprintf("❌ **Match Expired** (`%s`). Neither player reported in time.", m.ID)

	case models.MatchErrorPlayerNotFound:
		msg.Content = fmt.Sprintf("Could not resolve match `%s` because a player left the server.", m.ID)

	default:
		msg.Content = fmt.Sprintf("Match `%s` is now %s.", m.ID, r.Status)
	}
	return msg
}

func adminResolutionEmbed(r *application.Resolution, adminID string) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:       "⚖️ Match Resolution by Admin ⚖️",
		Description: fmt.Sprintf("Match `%s` has been resolved by %s.", r.MatchID, mention(adminID)),
		Color:       colorDarkOrange,
	}
	switch r.Status {
	case models.MatchConfirmed:
		embed.Fields = []*discordgo.MessageEmbedField{
			{Name: "Result", Value: fmt.Sprintf("**Winner:** %s\n**Loser:** %s", mention(r.WinnerID), mention(r.LoserID))},
			{Name: "Updated ELO", Value: fmt.Sprintf("%s: `%d`\n%s: `%d`",
				mention(r.WinnerID), r.WinnerNewRating, mention(r.LoserID), r.LoserNewRating)},
		}
	case models.MatchErrorPlayerNotFound:
		embed.Description = fmt.Sprintf("Match `%s` could not be resolved: %s is no longer in the server.",
			r.MatchID, mention(r.MissingPlayerID))
	}
	return embed
}

func statsEmbed(p *models.Player, avatarURL string) *discordgo.MessageEmbed {
	wr := p.WinRate()
	embed := &discordgo.MessageEmbed{
		Title: fmt.Sprintf("📊 Stats for %s", p.Name),
		Color: getColorByWinRate(wr),
		Fields: []*discordgo.MessageEmbedField{
			{Name: "ELO Rating", Value: fmt.Sprintf("**%d**", p.Rating)},
			{Name: "Wins", Value: fmt.Sprintf("%d", p.Wins), Inline: true},
			{Name: "Losses", Value: fmt.Sprintf("%d", p.Losses), Inline: true},
			{Name: "Win Rate", Value: fmt.Sprintf("%.2f%%", wr)},
		},
	}
	if p.GamesPlayed == 0 {
		embed.Color = colorBlue
	}
	if avatarURL != "" {
		embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: avatarURL}
	}
	return embed
}

func leaderboardEmbed(players []models.Player) *discordgo.MessageEmbed {
	var sb strings.Builder
	for idx, p := range players {
		fmt.Fprintf(&sb, "%s **%s** - `%d` ELO (%dW / %dL)\n", getMedalEmoji(idx), p.Name, p.Rating, p.Wins, p.Losses)
	}
	return &discordgo.MessageEmbed{
		Title:       "🏆 Leaderboard 🏆",
		Description: "The top fighters on the server.",
		Color:       colorGold,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Top Players", Value: sb.String()},
		},
	}
}

func getColorByWinRate(winRate float64) int {
	switch {
	case winRate >= winRateExcellent:
		return colorPurple
	case winRate >= winRateGood:
		return colorGreen
	case winRate < winRatePoor:
		return colorRed
	default:
		return colorGray
	}
}

func getMedalEmoji(position int) string {
	switch position {
	case 0:
		return "🥇"
	case 1:
		return "🥈"
	case 2:
		return "🥉"
	default:
		return fmt.Sprintf("**%d.**", position+1)
	}
}

func humanDuration(d time.Duration) string {
	switch {
	case d >= time.Hour && d%time.Hour == 0:
		if d == time.Hour {
			return "1 hour"
		}
		return fmt.Sprintf("%d hours", d/time.Hour)
	case d >= time.Minute && d%time.Minute == 0:
		if d == time.Minute {
			return "1 minute"
		}
		return fmt.Sprintf("%d minutes", d/time.Minute)
	default:
		return d.String()
	}
}

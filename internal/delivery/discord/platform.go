package discord

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"elobot/internal/application"
	"elobot/internal/models"

	"github.com/bwmarrin/discordgo"
)

// Platform exposes the guild to the core: member lookups and rendering of
// lifecycle events onto the announcement messages.
type Platform struct {
	session     *discordgo.Session
	guildID     string
	adminRoleID string
	logger      application.Logger
}

func NewPlatform(session *discordgo.Session, guildID, adminRoleID string, logger application.Logger) *Platform {
	return &Platform{
		session:     session,
		guildID:     guildID,
		adminRoleID: adminRoleID,
		logger:      logger,
	}
}

func (p *Platform) Member(ctx context.Context, userID string) (*application.Member, error) {
	m, err := p.session.GuildMember(p.guildID, userID, discordgo.WithContext(ctx))
	if err != nil {
		if isUnknownMember(err) {
			return nil, application.ErrMemberNotFound
		}
		return nil, fmt.Errorf("failed to fetch guild member: %w", err)
	}
	return toMember(m), nil
}

func (p *Platform) ChallengeExpired(ctx context.Context, c *models.Challenge) error {
	if c.Announcement.MessageID == "" {
		return nil
	}
	embed := challengeEmbed(colorGray,
		fmt.Sprintf("%s's challenge to %s has expired.", mention(c.ChallengerID), mention(c.OpponentID)), "")
	edit := discordgo.NewMessageEdit(c.Announcement.ChannelID, c.Announcement.MessageID).
		SetEmbeds([]*discordgo.MessageEmbed{embed})
	edit.Components = &[]discordgo.MessageComponent{}
	if _, err := p.session.ChannelMessageEditComplex(edit, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("failed to edit challenge message: %w", err)
	}
	return nil
}

// MatchResolved posts the outcome into the channel the match was announced
// in. Admin resolutions are answered by the command itself.
func (p *Platform) MatchResolved(ctx context.Context, m *models.Match, r *application.Resolution) error {
	if r.Trigger == application.TriggerAdmin || m.Announcement.ChannelID == "" {
		return nil
	}
	msg := resolutionMessage(m, r, p.guildID, p.adminRoleID)
	if _, err := p.session.ChannelMessageSendComplex(m.Announcement.ChannelID, msg, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("failed to post match result: %w", err)
	}
	return nil
}

func (p *Platform) DisableReporting(ctx context.Context, ref models.AnnouncementRef) error {
	edit := discordgo.NewMessageEdit(ref.ChannelID, ref.MessageID)
	edit.Components = &[]discordgo.MessageComponent{}
	if _, err := p.session.ChannelMessageEditComplex(edit, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("failed to remove report buttons: %w", err)
	}
	return nil
}

func isUnknownMember(err error) bool {
	var restErr *discordgo.RESTError
	if !errors.As(err, &restErr) {
		return false
	}
	if restErr.Message != nil {
		switch restErr.Message.Code {
		case discordgo.ErrCodeUnknownMember, discordgo.ErrCodeUnknownUser:
			return true
		}
	}
	return restErr.Response != nil && restErr.Response.StatusCode == http.StatusNotFound
}

func toMember(m *discordgo.Member) *application.Member {
	if m == nil || m.User == nil {
		return nil
	}
	return &application.Member{
		ID:          m.User.ID,
		DisplayName: m.DisplayName(),
		Mention:     m.Mention(),
		IsBot:       m.User.Bot,
	}
}

func mention(userID string) string {
	return "<@" + userID + ">"
}

package discord

import (
	"context"
	"strings"
	"time"

	"elobot/internal/application"

	"github.com/bwmarrin/discordgo"
)

type Options struct {
	GuildID          string
	AllowedChannelID string
	AdminUserIDs     []string
	AdminRoleID      string
	ChallengeTimeout time.Duration
	ReportWindow     time.Duration
}

// Bot routes slash commands and button presses to the application services.
// It satisfies services.Service.
type Bot struct {
	session  *discordgo.Session
	services *application.Service
	logger   application.Logger
	commands []*discordgo.ApplicationCommand

	guildID          string
	adminIDs         map[string]struct{}
	adminRoleID      string
	allowedChannelID string
	challengeTimeout time.Duration
	reportWindow     time.Duration

	ctx context.Context
}

func NewSession(token string) (*discordgo.Session, error) {
	s, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, err
	}
	s.Identify.Intents = discordgo.IntentsGuilds
	return s, nil
}

func NewBot(session *discordgo.Session, opts Options, services *application.Service, logger application.Logger) *Bot {
	admins := make(map[string]struct{})
	for _, id := range opts.AdminUserIDs {
		cleanID := strings.TrimSpace(id)
		if cleanID != "" {
			admins[cleanID] = struct{}{}
		}
	}

	return &Bot{
		session:          session,
		services:         services,
		logger:           logger,
		guildID:          opts.GuildID,
		adminIDs:         admins,
		adminRoleID:      opts.AdminRoleID,
		allowedChannelID: opts.AllowedChannelID,
		challengeTimeout: opts.ChallengeTimeout,
		reportWindow:     opts.ReportWindow,
		ctx:              context.Background(),
	}
}

func (b *Bot) Init() error {
	b.addCommands(
		b.newChallengeCommand(),
		b.newStatsCommand(),
		b.newLeaderboardCommand(),
		b.newMyMatchesCommand(),
		b.newAdminResolveCommand(),
		b.newExportCommand(),
		b.newSyncSheetCommand(),
	)
	b.session.AddHandler(b.onReady)
	b.session.AddHandler(b.onInteraction)
	return nil
}

func (b *Bot) Run(ctx context.Context) {
	b.ctx = ctx
	if err := b.session.Open(); err != nil {
		b.logger.Error("Failed to open discord session: %v", err)
		return
	}

	b.logger.Info("Discord Bot Started. Registering slash commands...")
	_, err := b.session.ApplicationCommandBulkOverwrite(b.session.State.User.ID, b.guildID, b.commands)
	if err != nil {
		b.logger.Error("Failed to register commands: %v", err)
		return
	}
	b.logger.Info("Slash commands registered successfully")
}

func (b *Bot) Stop() {
	b.services.ChallengeService.Close()
	if err := b.session.Close(); err != nil {
		b.logger.Error("Failed to close discord session: %v", err)
	}
}

func (b *Bot) onReady(_ *discordgo.Session, r *discordgo.Ready) {
	b.logger.Info("Logged in as %s", r.User.String())
}

func (b *Bot) onInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		b.onCommand(s, i.Interaction)
	case discordgo.InteractionMessageComponent:
		b.onComponent(s, i.Interaction)
	}
}

func (b *Bot) onCommand(s *discordgo.Session, i *discordgo.Interaction) {
	if !b.inAllowedChannel(i) {
		b.respondMessage(s, i, msgWrongChannel, true)
		return
	}

	switch i.ApplicationCommandData().Name {
	case "challenge":
		b.handleChallenge(s, i)
	case "stats":
		b.handleStats(s, i)
	case "leaderboard":
		b.handleLeaderboard(s, i)
	case "my_matches":
		b.handleMyMatches(s, i)
	case "admin_resolve_match":
		b.ensureAdmin(s, i, b.handleAdminResolve)
	case "export":
		b.ensureAdmin(s, i, b.handleExport)
	case "sync_sheet":
		b.ensureAdmin(s, i, b.handleSyncSheet)
	}
}

func (b *Bot) onComponent(s *discordgo.Session, i *discordgo.Interaction) {
	id, err := parseComponentID(i.MessageComponentData().CustomID)
	if err != nil {
		b.logger.Warn("Ignoring component: %v", err)
		return
	}

	switch id.Kind {
	case kindChallenge:
		if id.Action == actionAccept {
			b.handleAccept(s, i, id.ID)
		} else {
			b.handleDecline(s, i, id.ID)
		}
	case kindReport:
		b.handleReport(s, i, id.ID, id.Action == actionWin)
	}
}

// requestContext bounds a handler's calls into the core.
func (b *Bot) requestContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(b.ctx, discordAPITimeout)
}

package discord

import "github.com/bwmarrin/discordgo"

func (b *Bot) addCommands(commands ...*discordgo.ApplicationCommand) {
	b.commands = append(b.commands, commands...)
}

func (b *Bot) newChallengeCommand() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        "challenge",
		Description: "Challenge another player to a ranked match.",
		Options: []*discordgo.ApplicationCommandOption{
			{Type: discordgo.ApplicationCommandOptionUser, Name: "opponent", Description: "The player you want to challenge", Required: true},
		},
	}
}

func (b *Bot) newStatsCommand() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        "stats",
		Description: "Show your stats or another player's stats.",
		Options: []*discordgo.ApplicationCommandOption{
			{Type: discordgo.ApplicationCommandOptionUser, Name: "player", Description: "Player to look up", Required: false},
		},
	}
}

func (b *Bot) newLeaderboardCommand() *discordgo.ApplicationCommand {
	minTop := 1.0
	return &discordgo.ApplicationCommand{
		Name:        "leaderboard",
		Description: "Displays the server's leaderboard.",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionInteger,
				Name:        "top",
				Description: "How many players to show",
				Required:    false,
				MinValue:    &minTop,
				MaxValue:    maxLeaderboardSize,
			},
		},
	}
}

func (b *Bot) newMyMatchesCommand() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        "my_matches",
		Description: "Shows a list of your pending matches.",
	}
}

func (b *Bot) newAdminResolveCommand() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        "admin_resolve_match",
		Description: "[Admin] Manually resolve a match.",
		Options: []*discordgo.ApplicationCommandOption{
			{Type: discordgo.ApplicationCommandOptionString, Name: "match_id", Description: "The ID of the match", Required: true},
			{Type: discordgo.ApplicationCommandOptionUser, Name: "winner", Description: "The player who won", Required: true},
		},
	}
}

func (b *Bot) newExportCommand() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        "export",
		Description: "[Admin] Export the leaderboard to Excel.",
	}
}

func (b *Bot) newSyncSheetCommand() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        "sync_sheet",
		Description: "[Admin] Publish the leaderboard to Google Sheets.",
	}
}

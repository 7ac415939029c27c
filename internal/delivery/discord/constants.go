package discord

import "time"

const (
	// Display limits
	defaultLeaderboardSize = 10
	maxLeaderboardSize     = 25
	myMatchesLimit         = 5

	// Win rate thresholds for color coding
	winRateExcellent = 75.0
	winRateGood      = 60.0
	winRatePoor      = 40.0

	// Embed colors
	colorGold       = 0xFFD700 // Leaderboard
	colorGreen      = 0x2ECC71 // Accepted challenge, good win rate
	colorPurple     = 0x9B59B6 // Excellent win rate
	colorRed        = 0xE74C3C // Declined challenge, poor win rate
	colorGray       = 0x95A5A6 // Expired challenge
	colorBlue       = 0x3498DB // Stats
	colorOrange     = 0xE67E22 // Challenge issued
	colorDarkOrange = 0xA84300 // Admin resolution

	discordAPITimeout = 10 * time.Second

	exportFileName = "leaderboard.xlsx"
)

const (
	msgWrongChannel   = "This command can only be used in the designated ELO channel."
	msgNoPermission   = "You need admin rights to use this command."
	msgUnexpected     = "An unexpected error occurred while running this command."
	msgAlreadyHandled = "This challenge has already been answered or has expired."
)

package application

import "time"

const (
	defaultChallengeTimeout = 240 * time.Second
	defaultReportWindow     = time.Hour
	defaultSweepInterval    = 5 * time.Minute

	// Leaderboard limits
	defaultLeaderboardSize = 10
	maxLeaderboardSize     = 25
	exportLeaderboardSize  = 1000

	// match ids are the leading hex characters of a uuid
	matchIDLength = 8

	reconcileAttempts = 3

	excelSheetName = "Leaderboard"
	sheetTitle     = "ELO Leaderboard"
)

// Timing groups the lifecycle durations. Zero fields fall back to defaults.
type Timing struct {
	ChallengeTimeout time.Duration
	ReportWindow     time.Duration
	SweepInterval    time.Duration
}

func (t Timing) withDefaults() Timing {
	if t.ChallengeTimeout <= 0 {
		t.ChallengeTimeout = defaultChallengeTimeout
	}
	if t.ReportWindow <= 0 {
		t.ReportWindow = defaultReportWindow
	}
	if t.SweepInterval <= 0 {
		t.SweepInterval = defaultSweepInterval
	}
	return t
}

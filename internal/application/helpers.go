package application

import (
	"errors"
	"strings"

	"elobot/internal/models"

	"github.com/google/uuid"
)

func newMatchID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:matchIDLength]
}

func newChallengeID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

func clampLeaderboard(limit int) int {
	switch {
	case limit <= 0:
		return defaultLeaderboardSize
	case limit > maxLeaderboardSize:
		return maxLeaderboardSize
	default:
		return limit
	}
}

func rejectionLabel(err error) string {
	switch {
	case errors.Is(err, ErrUnknownMatch):
		return "unknown_match"
	case errors.Is(err, ErrNotPending):
		return "not_pending"
	case errors.Is(err, ErrNotParticipant):
		return "not_participant"
	case errors.Is(err, ErrDuplicateReport):
		return "duplicate_report"
	case errors.Is(err, ErrInvalidReport):
		return "invalid_report"
	default:
		return "error"
	}
}

var (
	pendingOnly       = []models.MatchStatus{models.MatchPending}
	pendingOrDisputed = []models.MatchStatus{models.MatchPending, models.MatchDisputed}
)

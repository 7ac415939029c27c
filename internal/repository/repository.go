package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"elobot/internal/models"
)

var (
	ErrNotFound       = errors.New("record not found")
	ErrStatusConflict = errors.New("match status does not allow this change")
	ErrNotParticipant = errors.New("player is not a participant of the match")
)

// Result is the outcome committed by ConfirmMatch.
type Result struct {
	WinnerID     string
	LoserID      string
	WinnerRating int
	LoserRating  int
}

// Guard is the precondition of a status change. The current status must be
// one of From and, when Reports is set, both report slots must still hold
// exactly those values.
type Guard struct {
	From    []models.MatchStatus
	Reports *Reports
}

// Reports is a snapshot of both report slots of a match.
type Reports struct {
	Player1 models.Report
	Player2 models.Report
}

// StatusGuard guards on the current status only.
func StatusGuard(from ...models.MatchStatus) Guard {
	return Guard{From: from}
}

// ReportGuard guards on the current status and on both report slots of m.
func ReportGuard(m *models.Match, from ...models.MatchStatus) Guard {
	return Guard{From: from, Reports: &Reports{Player1: m.Player1Report, Player2: m.Player2Report}}
}

func (g Guard) holds(m *models.Match) bool {
	if !containsStatus(g.From, m.Status) {
		return false
	}
	if g.Reports == nil {
		return true
	}
	return m.Player1Report == g.Reports.Player1 && m.Player2Report == g.Reports.Player2
}

// Store is the durable record store for players and matches. Every method is
// atomic at single-record granularity; ConfirmMatch is atomic across the match
// row and both player rows. Point lookups return (nil, nil) on a miss.
type Store interface {
	GetPlayer(ctx context.Context, id string) (*models.Player, error)
	UpsertPlayerIfAbsent(ctx context.Context, id, name string) error
	UpdatePlayerRating(ctx context.Context, id string, newRating, wonDelta, lostDelta int) error
	ListTopPlayers(ctx context.Context, limit int) ([]models.Player, error)

	GetMatch(ctx context.Context, id string) (*models.Match, error)
	CreateMatch(ctx context.Context, m *models.Match) error
	// SetReport records playerID's report. It returns false without writing if
	// that player already reported, and ErrStatusConflict if the match is no
	// longer pending.
	SetReport(ctx context.Context, matchID, playerID string, report models.Report) (bool, error)
	// SetStatus is a maintenance writer: it moves a pending match to status and
	// returns ErrStatusConflict for any other current status. Resolution paths
	// use CompareAndSetStatus or ConfirmMatch instead.
	SetStatus(ctx context.Context, matchID string, status models.MatchStatus) error
	// CompareAndSetStatus moves the match to next only if g holds. It reports
	// whether the swap happened.
	CompareAndSetStatus(ctx context.Context, matchID string, g Guard, next models.MatchStatus) (bool, error)
	// ConfirmMatch sets the match to confirmed and applies the result to both
	// players in one step, guarded like CompareAndSetStatus.
	ConfirmMatch(ctx context.Context, matchID string, g Guard, res Result) (bool, error)
	ListPendingMatchesFor(ctx context.Context, playerID string) ([]models.Match, error)
	ListStaleMatches(ctx context.Context, cutoff time.Time) ([]models.Match, error)

	Close() error
}

func NewRepository(db *sql.DB) Store {
	return NewPostgresStore(db)
}

func containsStatus(list []models.MatchStatus, s models.MatchStatus) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func validateResult(res Result) error {
	if res.WinnerID == "" || res.LoserID == "" || res.WinnerID == res.LoserID {
		return fmt.Errorf("invalid result %q vs %q", res.WinnerID, res.LoserID)
	}
	return nil
}
